package pageport_test

import (
	"testing"

	"github.com/fwojciec/pageport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"six digit hex", "#1A2b3C", "#1a2b3c", true},
		{"three digit hex", "#fa0", "#ffaa00", true},
		{"opaque eight digit hex drops alpha", "#112233ff", "#112233", true},
		{"translucent hex keeps alpha", "#11223380", "#11223380", true},
		{"named color", "Red", "#ff0000", true},
		{"named color with important", "navy !important", "#000080", true},
		{"rgb", "rgb(255, 0, 128)", "#ff0080", true},
		{"rgb space syntax", "rgb(0 128 255)", "#0080ff", true},
		{"rgb percent", "rgb(100%, 0%, 50%)", "#ff0080", true},
		{"rgba opaque", "rgba(0,0,0,1)", "#000000", true},
		{"rgba translucent", "rgba(0, 0, 0, 0.5)", "#00000080", true},
		{"rgb clamps channel", "rgb(300, -5, 0)", "#ff0000", true},
		{"empty", "", "", false},
		{"unknown keyword", "blurple", "", false},
		{"bad hex", "#12345", "", false},
		{"non hex digits", "#gggggg", "", false},
		{"rgb too few channels", "rgb(1,2)", "", false},
		{"rgb garbage", "rgb(a,b,c)", "", false},
		{"extended keyword", "slateblue", "#6a5acd", true},
		{"extended keyword mixed case", "NavajoWhite", "#ffdead", true},
		{"transparent keyword", "transparent", "#00000000", true},
		{"hsl", "hsl(0, 100%, 50%)", "#ff0000", true},
		{"hsla translucent", "hsla(0, 0%, 0%, 0.5)", "#00000080", true},
		{"hsl garbage", "hsl(a, b, c)", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := pageport.NormalizeColor(tt.input)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorOr(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#ffffff", pageport.ColorOr("white", "#000000"))
	assert.Equal(t, "#000000", pageport.ColorOr("not-a-color", "#000000"))
	assert.Empty(t, pageport.ColorOr("", ""))
}

func TestParseShadow(t *testing.T) {
	t.Parallel()

	t.Run("parses lengths and color", func(t *testing.T) {
		t.Parallel()

		sh := pageport.ParseShadow("2px 4px 10px 1px rgba(0, 0, 0, 0.2)")

		require.NotNil(t, sh)
		assert.Equal(t, 2, sh.X)
		assert.Equal(t, 4, sh.Y)
		assert.Equal(t, 10, sh.Blur)
		assert.Equal(t, 1, sh.Spread)
		assert.Equal(t, "#00000033", sh.Color)
		assert.False(t, sh.Inset)
	})

	t.Run("uses first layer only", func(t *testing.T) {
		t.Parallel()

		sh := pageport.ParseShadow("inset 0 1px red, 0 0 5px blue")

		require.NotNil(t, sh)
		assert.True(t, sh.Inset)
		assert.Equal(t, "#ff0000", sh.Color)
		assert.Equal(t, "inset 0px 1px 0px 0px #ff0000", sh.CSS())
	})

	t.Run("malformed color falls back to default", func(t *testing.T) {
		t.Parallel()

		sh := pageport.ParseShadow("1px 1px 3px weird(1)")

		require.NotNil(t, sh)
		assert.Equal(t, pageport.DefaultShadowColor, sh.Color)
	})

	t.Run("returns nil for none and garbage", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, pageport.ParseShadow("none"))
		assert.Nil(t, pageport.ParseShadow(""))
		assert.Nil(t, pageport.ParseShadow("1em 2em"))
		assert.Nil(t, pageport.ParseShadow("black"))
	})
}

func TestParsePixels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 40, pageport.ParsePixels("40px", 0))
	assert.Equal(t, 12, pageport.ParsePixels(" 12 ", 0))
	assert.Equal(t, 50, pageport.ParsePixels("3rem", 50))
	assert.Equal(t, 50, pageport.ParsePixels("", 50))
}

func TestParseInlineStyle(t *testing.T) {
	t.Parallel()

	got := pageport.ParseInlineStyle("Color: red; background-color:#fff;;bogus; text-align : center ")

	assert.Equal(t, map[string]string{
		"color":            "red",
		"background-color": "#fff",
		"text-align":       "center",
	}, got)
}
