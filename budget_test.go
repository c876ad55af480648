package pageport_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/pageport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBudget(t *testing.T) {
	t.Parallel()

	t.Run("no violations within defaults", func(t *testing.T) {
		t.Parallel()

		in := pageport.BudgetInput{
			HTML: "<html></html>",
			CSS:  []string{"body{}"},
			JS:   []string{"console.log(1)"},
		}

		r := pageport.ValidateBudget(in, pageport.DefaultBudget())

		assert.Empty(t, r.Violations)
		assert.True(t, r.CanExport)
		assert.False(t, r.RequiresOverride)
	})

	t.Run("total equals html plus css plus js plus images", func(t *testing.T) {
		t.Parallel()

		in := pageport.BudgetInput{
			HTML:   strings.Repeat("h", 10),
			CSS:    []string{strings.Repeat("c", 3), strings.Repeat("c", 4)},
			JS:     []string{strings.Repeat("j", 5)},
			Images: []pageport.BudgetImage{{Path: "a.png", Size: 100}, {Path: "b.png", Size: 7}},
		}

		r := pageport.ValidateBudget(in, pageport.DefaultBudget())

		assert.Equal(t, int64(10), r.Sizes.HTML)
		assert.Equal(t, int64(7), r.Sizes.CSS)
		assert.Equal(t, int64(5), r.Sizes.JS)
		assert.Equal(t, int64(107), r.Sizes.Images)
		assert.Equal(t, int64(129), r.Sizes.Total)
	})

	t.Run("html over budget is a warning up to 1.5x", func(t *testing.T) {
		t.Parallel()

		b := pageport.Budget{HTML: 100}
		r := pageport.ValidateBudget(pageport.BudgetInput{HTML: strings.Repeat("x", 150)}, b)

		require.Len(t, r.Violations, 1)
		v := r.Violations[0]
		assert.Equal(t, pageport.CategoryHTML, v.Category)
		assert.Equal(t, int64(50), v.ExceededBytes)
		assert.Equal(t, pageport.SeverityWarning, v.Severity)
		assert.NotEmpty(t, v.Recommendation)
		assert.False(t, r.CanExport)
	})

	t.Run("html above 1.5x is critical", func(t *testing.T) {
		t.Parallel()

		b := pageport.Budget{HTML: 100}
		r := pageport.ValidateBudget(pageport.BudgetInput{HTML: strings.Repeat("x", 151)}, b)

		require.Len(t, r.Violations, 1)
		assert.Equal(t, pageport.SeverityCritical, r.Violations[0].Severity)
		assert.Equal(t, 1, r.CriticalCount())
	})

	t.Run("per-file css uses 2x critical factor", func(t *testing.T) {
		t.Parallel()

		b := pageport.Budget{CSSFile: 100}
		in := pageport.BudgetInput{CSS: []string{strings.Repeat("c", 180), strings.Repeat("c", 201)}}

		r := pageport.ValidateBudget(in, b)

		require.Len(t, r.Violations, 2)
		assert.Equal(t, "css[0]", r.Violations[0].Item)
		assert.Equal(t, pageport.SeverityWarning, r.Violations[0].Severity)
		assert.Equal(t, "css[1]", r.Violations[1].Item)
		assert.Equal(t, pageport.SeverityCritical, r.Violations[1].Severity)
	})

	t.Run("per-file js uses 2x critical factor and totals use 1.5x", func(t *testing.T) {
		t.Parallel()

		b := pageport.Budget{JSFile: 100, JSTotal: 100}
		in := pageport.BudgetInput{JS: []string{strings.Repeat("j", 190)}}

		r := pageport.ValidateBudget(in, b)

		require.Len(t, r.Violations, 2)
		assert.Equal(t, pageport.CategoryJSFile, r.Violations[0].Category)
		assert.Equal(t, pageport.SeverityWarning, r.Violations[0].Severity)
		assert.Equal(t, pageport.CategoryJSTotal, r.Violations[1].Category)
		assert.Equal(t, pageport.SeverityCritical, r.Violations[1].Severity)
	})

	t.Run("images checked per file and in total", func(t *testing.T) {
		t.Parallel()

		b := pageport.Budget{ImageFile: 10, ImageTotal: 15, Total: 1000}
		in := pageport.BudgetInput{Images: []pageport.BudgetImage{
			{Path: "hero.jpg", Size: 12},
			{Path: "logo.png", Size: 5},
		}}

		r := pageport.ValidateBudget(in, b)

		require.Len(t, r.Violations, 2)
		assert.Equal(t, "hero.jpg", r.Violations[0].Item)
		assert.Equal(t, pageport.CategoryImageTotal, r.Violations[1].Category)
	})

	t.Run("override allows export and requires acknowledgement", func(t *testing.T) {
		t.Parallel()

		b := pageport.Budget{HTML: 1, AllowOverride: true}
		r := pageport.ValidateBudget(pageport.BudgetInput{HTML: "too big"}, b)

		assert.NotEmpty(t, r.Violations)
		assert.True(t, r.CanExport)
		assert.True(t, r.RequiresOverride)
	})

	t.Run("override without violations does not require override", func(t *testing.T) {
		t.Parallel()

		b := pageport.DefaultBudget()
		b.AllowOverride = true
		r := pageport.ValidateBudget(pageport.BudgetInput{HTML: "ok"}, b)

		assert.True(t, r.CanExport)
		assert.False(t, r.RequiresOverride)
	})
}

func TestBudget_Merge(t *testing.T) {
	t.Parallel()

	b := pageport.Budget{HTML: 42}.Merge(pageport.DefaultBudget())

	assert.Equal(t, int64(42), b.HTML)
	assert.Equal(t, 100*pageport.KiB, b.CSSFile)
	assert.Equal(t, 10*pageport.MiB, b.Total)
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", pageport.FormatBytes(512))
	assert.Equal(t, "2.0 KiB", pageport.FormatBytes(2048))
	assert.Equal(t, "2.00 MiB", pageport.FormatBytes(2*pageport.MiB))
}
