package signature_test

import (
	"context"
	"testing"

	"github.com/fwojciec/pageport"
	"github.com/fwojciec/pageport/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_Verify(t *testing.T) {
	t.Parallel()

	t.Run("clean output scores 100", func(t *testing.T) {
		t.Parallel()

		files := []pageport.File{
			{Path: "content.html", Group: pageport.GroupMarkup, Content: []byte(`<div class="hero"><h1>Hi</h1><img src="data:image/png;base64,AAAA"></div>`)},
			{Path: "style.css", Group: pageport.GroupStyle, Content: []byte(".hero { color: #333; }\n")},
			{Path: "site.js", Group: pageport.GroupScript, Content: []byte("console.log('ready');\n")},
		}

		report, err := signature.NewVerifier(nil).Verify(context.Background(), files, pageport.BuilderPluginFree)

		require.NoError(t, err)
		assert.Equal(t, 100, report.Score)
		assert.True(t, report.IsPluginFree)
		assert.Empty(t, report.Dependencies)
		assert.Equal(t, []string{"No residual dependencies found; the export is self-contained."}, report.Recommendations)
	})

	t.Run("foreign class is critical and cites the family", func(t *testing.T) {
		t.Parallel()

		files := []pageport.File{
			{Path: "content.html", Group: pageport.GroupMarkup, Content: []byte(`<div class="hero elementor-widget"></div>`)},
		}

		report, err := signature.NewVerifier(nil).Verify(context.Background(), files, pageport.BuilderPluginFree)

		require.NoError(t, err)
		require.Len(t, report.Dependencies, 1)
		dep := report.Dependencies[0]
		assert.Equal(t, "elementor", dep.Family)
		assert.Equal(t, "Elementor", dep.Name)
		assert.Equal(t, "content.html", dep.File)
		assert.Equal(t, "elementor-widget", dep.Match)
		assert.Equal(t, pageport.SeverityCritical, dep.Severity)
		assert.True(t, dep.Detected)
		assert.Equal(t, 80, report.Score)
		assert.False(t, report.IsPluginFree)
		assert.Contains(t, report.Recommendations[0], "Elementor")
	})

	t.Run("repeated hits in one file count once", func(t *testing.T) {
		t.Parallel()

		files := []pageport.File{
			{Path: "content.html", Group: pageport.GroupMarkup, Content: []byte(`<p class="et_pb_text">a</p><p class="et_pb_text">b</p>`)},
		}

		report, err := signature.NewVerifier(nil).Verify(context.Background(), files, pageport.BuilderPluginFree)

		require.NoError(t, err)
		assert.Len(t, report.Dependencies, 1)
		assert.Equal(t, 80, report.Score)
	})

	t.Run("target's own family is not flagged", func(t *testing.T) {
		t.Parallel()

		files := []pageport.File{
			{Path: "divi-layout.txt", Group: pageport.GroupMarkup, Content: []byte(`[et_pb_section][et_pb_row][et_pb_column type="4_4"][et_pb_text]Hi[/et_pb_text][/et_pb_column][/et_pb_row][/et_pb_section]`)},
		}

		report, err := signature.NewVerifier(nil).Verify(context.Background(), files, pageport.BuilderDivi)

		require.NoError(t, err)
		assert.Empty(t, report.Dependencies)
		assert.Equal(t, 100, report.Score)
	})

	t.Run("crocoblock output may rely on elementor", func(t *testing.T) {
		t.Parallel()

		files := []pageport.File{
			{Path: "content.html", Group: pageport.GroupMarkup, Content: []byte(`<div class="elementor-section jet-listing"></div>`)},
		}

		report, err := signature.NewVerifier(nil).Verify(context.Background(), files, pageport.BuilderCrocoblock)

		require.NoError(t, err)
		assert.Empty(t, report.Dependencies)
	})

	t.Run("foreign shortcode in own-family output is still critical", func(t *testing.T) {
		t.Parallel()

		files := []pageport.File{
			{Path: "divi-layout.txt", Group: pageport.GroupMarkup, Content: []byte(`[et_pb_text][vc_row][/vc_row][/et_pb_text]`)},
		}

		report, err := signature.NewVerifier(nil).Verify(context.Background(), files, pageport.BuilderDivi)

		require.NoError(t, err)
		require.Len(t, report.Dependencies, 1)
		assert.Equal(t, "wpbakery", report.Dependencies[0].Family)
		assert.Equal(t, "vc_row", report.Dependencies[0].Match)
	})

	t.Run("unknown shortcode is ignored for builder targets", func(t *testing.T) {
		t.Parallel()

		files := []pageport.File{
			{Path: "content.html", Group: pageport.GroupMarkup, Content: []byte(`<p>[my_gallery ids="1,2"]</p>`)},
		}

		report, err := signature.NewVerifier(nil).Verify(context.Background(), files, pageport.BuilderGutenberg)

		require.NoError(t, err)
		assert.Empty(t, report.Dependencies)
	})

	t.Run("unknown shortcode is a warning for plugin-free", func(t *testing.T) {
		t.Parallel()

		files := []pageport.File{
			{Path: "content.html", Group: pageport.GroupMarkup, Content: []byte(`<p>[my_gallery ids="1,2"]</p>`)},
		}

		report, err := signature.NewVerifier(nil).Verify(context.Background(), files, pageport.BuilderPluginFree)

		require.NoError(t, err)
		require.Len(t, report.Dependencies, 1)
		assert.Equal(t, "generic", report.Dependencies[0].Family)
		assert.Equal(t, pageport.SeverityWarning, report.Dependencies[0].Severity)
		assert.Equal(t, 95, report.Score)
		assert.True(t, report.IsPluginFree)
	})

	t.Run("CDATA sections in WXR exports are not shortcodes", func(t *testing.T) {
		t.Parallel()

		wxr := `<item>
  <wp:post_name><![CDATA[pageport-export]]></wp:post_name>
  <wp:status><![CDATA[draft]]></wp:status>
  <wp:post_type><![CDATA[page]]></wp:post_type>
  <wp:comment_status><![CDATA[closed]]></wp:comment_status>
</item>`
		files := []pageport.File{
			{Path: "export.xml", Group: pageport.GroupMarkup, Content: []byte(wxr)},
		}

		report, err := signature.NewVerifier(nil).Verify(context.Background(), files, pageport.BuilderPluginFree)

		require.NoError(t, err)
		assert.Empty(t, report.Dependencies)
		assert.Equal(t, 100, report.Score)
		assert.True(t, report.IsPluginFree)
	})

	t.Run("shortcodes inside CDATA are still reported", func(t *testing.T) {
		t.Parallel()

		files := []pageport.File{
			{Path: "export.xml", Group: pageport.GroupMarkup, Content: []byte(`<content:encoded><![CDATA[<p>[et_pb_text]Hi[/et_pb_text]</p>]]></content:encoded>`)},
		}

		report, err := signature.NewVerifier(nil).Verify(context.Background(), files, pageport.BuilderPluginFree)

		require.NoError(t, err)
		require.Len(t, report.Dependencies, 1)
		assert.Equal(t, "divi", report.Dependencies[0].Family)
		assert.Equal(t, "et_pb_text", report.Dependencies[0].Match)
	})

	t.Run("template functions", func(t *testing.T) {
		t.Parallel()

		php := `<?php
function pageport_setup() {
	add_theme_support( 'title-tag' );
	wp_enqueue_style( 'pageport', get_stylesheet_uri(), array(), '1.0.0' );
	$value = get_field( 'hero' );
	custom_helper( $value );
	$obj->render();
	Foo::bar();
	echo esc_url( get_permalink( get_the_ID() ) );
	echo 'not_a_call( inside string )';
}
add_action( 'after_setup_theme', 'pageport_setup' );
`
		files := []pageport.File{
			{Path: "functions.php", Group: pageport.GroupTemplate, Content: []byte(php)},
		}

		report, err := signature.NewVerifier(nil).Verify(context.Background(), files, pageport.BuilderPluginFree)

		require.NoError(t, err)
		require.Len(t, report.Dependencies, 2)

		byMatch := make(map[string]pageport.DependencyCheck)
		for _, d := range report.Dependencies {
			byMatch[d.Match] = d
		}
		assert.Equal(t, "advanced-custom-fields", byMatch["get_field"].Family)
		assert.Equal(t, pageport.SeverityCritical, byMatch["get_field"].Severity)
		assert.Equal(t, "generic", byMatch["custom_helper"].Family)
		assert.Equal(t, pageport.SeverityWarning, byMatch["custom_helper"].Severity)
		assert.Equal(t, 75, report.Score)
	})

	t.Run("stylesheet and script lines", func(t *testing.T) {
		t.Parallel()

		files := []pageport.File{
			{Path: "assets/custom.css", Group: pageport.GroupStyle, Content: []byte(".hero{}\n.fl-row-content { margin: 0; }\n")},
			{Path: "assets/custom.js", Group: pageport.GroupScript, Content: []byte("var a = 1;\nwindow.bricksData = {};\n")},
		}

		report, err := signature.NewVerifier(nil).Verify(context.Background(), files, pageport.BuilderPluginFree)

		require.NoError(t, err)
		require.Len(t, report.Dependencies, 2)
		assert.Equal(t, "beaver-builder", report.Dependencies[0].Family)
		assert.Equal(t, "assets/custom.css", report.Dependencies[0].File)
		assert.Equal(t, "bricks", report.Dependencies[1].Family)
		assert.Equal(t, "bricksData", report.Dependencies[1].Match)
		assert.Equal(t, 60, report.Score)
	})

	t.Run("images and reports are not scanned", func(t *testing.T) {
		t.Parallel()

		files := []pageport.File{
			{Path: "assets/a.png", Group: pageport.GroupImage, Content: []byte("elementor-widget")},
			{Path: "reports/x.txt", Group: pageport.GroupReport, Content: []byte(`class="elementor"`)},
		}

		report, err := signature.NewVerifier(nil).Verify(context.Background(), files, pageport.BuilderPluginFree)

		require.NoError(t, err)
		assert.Empty(t, report.Dependencies)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := signature.NewVerifier(nil).Verify(ctx, []pageport.File{{Path: "a.html", Group: pageport.GroupMarkup}}, pageport.BuilderPluginFree)

		require.ErrorIs(t, err, context.Canceled)
	})
}
