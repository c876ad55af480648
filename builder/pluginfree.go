package builder

import (
	"context"
	"strings"

	"github.com/fwojciec/pageport"
)

var _ pageport.Builder = (*PluginFree)(nil)

// Plugin-free theme files.
const (
	ThemeStylePath     = "style.css"
	ThemeFunctionsPath = "functions.php"
	ThemeIndexPath     = "index.php"
	ThemeHeaderPath    = "header.php"
	ThemeFooterPath    = "footer.php"
	ThemePagePath      = "page-export.php"
	ThemeContentPath   = "templates/content.html"
	ThemeScriptPath    = "assets/site.js"
)

// pluginFreePrefix namespaces the theme's layout classes.
const pluginFreePrefix = "pp"

// PluginFree renders a standalone theme that only calls core functions.
// Page CSS and JS are folded into the theme's own stylesheet and script.
type PluginFree struct{}

// NewPluginFree creates a plugin-free theme builder.
func NewPluginFree() *PluginFree {
	return &PluginFree{}
}

// ID returns BuilderPluginFree.
func (p *PluginFree) ID() pageport.BuilderID {
	return pageport.BuilderPluginFree
}

// Generate writes the theme files, the rendered content and an importable
// export.xml holding the same content.
func (p *PluginFree) Generate(ctx context.Context, in *pageport.BuildInput) ([]pageport.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content := escapeBrackets(renderDocument(in, pluginFreePrefix))
	xml, err := wxr(in.Theme, content)
	if err != nil {
		return nil, err
	}

	return []pageport.File{
		{Path: ThemeStylePath, Group: pageport.GroupStyle, Content: []byte(themeStylesheet(in))},
		{Path: ThemeFunctionsPath, Group: pageport.GroupTemplate, Content: []byte(themeFunctions)},
		{Path: ThemeIndexPath, Group: pageport.GroupTemplate, Content: []byte(themeIndex)},
		{Path: ThemeHeaderPath, Group: pageport.GroupTemplate, Content: []byte(themeHeader)},
		{Path: ThemeFooterPath, Group: pageport.GroupTemplate, Content: []byte(themeFooter)},
		{Path: ThemePagePath, Group: pageport.GroupTemplate, Content: []byte(themePage)},
		{Path: ThemeContentPath, Group: pageport.GroupMarkup, Content: []byte(content)},
		{Path: ThemeScriptPath, Group: pageport.GroupScript, Content: []byte(themeScript(in))},
		{Path: WXRPath, Group: pageport.GroupMarkup, Content: xml},
	}, nil
}

// Instructions explains how to install the theme.
func (p *PluginFree) Instructions() string {
	return `Plugin-free theme install

1. Zip the theme files (style.css, functions.php, index.php, header.php,
   footer.php, page-export.php, templates/ and assets/) into one folder and
   upload it under Appearance > Themes > Add New > Upload Theme.
2. Activate the theme. No plugins are required.
3. Import export.xml with Tools > Import > WordPress to create the page, or
   create a page and choose the "Pageport Export" template.
4. Upload any images listed in reports/asset-embedding.txt to
   wp-content/uploads/pageport/.`
}

// themeHeaderComment renders the stylesheet header WordPress reads theme
// metadata from. Comment terminators in values are neutralized.
func themeHeaderComment(t pageport.ThemeMetadata) string {
	clean := func(s string) string {
		return strings.ReplaceAll(strings.ReplaceAll(s, "*/", "* /"), "\n", " ")
	}
	var b strings.Builder
	b.WriteString("/*\n")
	b.WriteString("Theme Name: " + clean(title(t)) + "\n")
	if t.SourceURL != "" {
		b.WriteString("Theme URI: " + clean(t.SourceURL) + "\n")
	}
	if t.Author != "" {
		b.WriteString("Author: " + clean(t.Author) + "\n")
	}
	if t.Description != "" {
		b.WriteString("Description: " + clean(t.Description) + "\n")
	}
	b.WriteString("Version: " + clean(version(t)) + "\n")
	b.WriteString("License: GNU General Public License v2 or later\n")
	b.WriteString("Text Domain: " + slug(t) + "\n")
	b.WriteString("*/\n")
	return b.String()
}

const themeLayoutCSS = `
*, *::before, *::after { box-sizing: border-box; }
body { margin: 0; font-family: system-ui, sans-serif; line-height: 1.6; }
img, video, iframe { max-width: 100%; height: auto; }

.pp-section { width: 100%; padding: 40px 0; }
.pp-row { display: flex; flex-wrap: wrap; max-width: 1200px; margin: 0 auto; }
.pp-column { padding: 0 15px; }
.pp-section .button { display: inline-block; padding: 12px 24px; border-radius: 4px; text-decoration: none; }
.pp-section .icon-box { text-align: center; }
.pp-section .testimonial { margin: 0; }
.pp-section .counter-number { display: block; font-size: 2.5em; font-weight: 700; }
.pp-section iframe { aspect-ratio: 16 / 9; width: 100%; border: 0; }

@media (max-width: 768px) {
  .pp-column { flex-basis: 100% !important; }
}
`

func themeStylesheet(in *pageport.BuildInput) string {
	out := themeHeaderComment(in.Theme) + themeLayoutCSS
	if css := joinNonEmpty(in.CSS); css != "" {
		out += "\n/* Page styles */\n" + css
	}
	return out
}

const themeCounterJS = `(function () {
  var counters = document.querySelectorAll('[data-count]');
  if (!('IntersectionObserver' in window)) {
    return;
  }
  var observer = new IntersectionObserver(function (entries) {
    entries.forEach(function (entry) {
      if (!entry.isIntersecting) {
        return;
      }
      var el = entry.target;
      var end = parseInt(el.getAttribute('data-count'), 10) || 0;
      var text = el.textContent;
      var start = null;
      function step(ts) {
        if (start === null) {
          start = ts;
        }
        var progress = Math.min((ts - start) / 1200, 1);
        el.textContent = text.replace(String(end), String(Math.round(end * progress)));
        if (progress < 1) {
          window.requestAnimationFrame(step);
        }
      }
      window.requestAnimationFrame(step);
      observer.unobserve(el);
    });
  });
  counters.forEach(function (el) {
    observer.observe(el);
  });
})();
`

func themeScript(in *pageport.BuildInput) string {
	out := themeCounterJS
	if js := joinNonEmpty(in.JS); js != "" {
		out += "\n" + js
	}
	return out
}

const themeFunctions = `<?php
/**
 * Theme setup and asset loading.
 */

if ( ! defined( 'ABSPATH' ) ) {
	exit;
}

function pageport_setup() {
	add_theme_support( 'title-tag' );
	add_theme_support( 'post-thumbnails' );
	add_theme_support( 'html5', array( 'gallery', 'caption', 'style', 'script' ) );
	register_nav_menus( array( 'primary' => 'Primary Menu' ) );
}
add_action( 'after_setup_theme', 'pageport_setup' );

function pageport_assets() {
	$version = wp_get_theme()->get( 'Version' );
	wp_enqueue_style( 'pageport-style', get_stylesheet_uri(), array(), $version );
	wp_enqueue_script( 'pageport-site', get_template_directory_uri() . '/assets/site.js', array(), $version, true );
}
add_action( 'wp_enqueue_scripts', 'pageport_assets' );

function pageport_content() {
	$file = get_template_directory() . '/templates/content.html';
	if ( file_exists( $file ) ) {
		readfile( $file );
	}
}
`

const themeHeader = `<!DOCTYPE html>
<html <?php language_attributes(); ?>>
<head>
<meta charset="<?php bloginfo( 'charset' ); ?>">
<meta name="viewport" content="width=device-width, initial-scale=1">
<?php wp_head(); ?>
</head>
<body <?php body_class(); ?>>
<?php wp_body_open(); ?>
`

const themeFooter = `<?php wp_footer(); ?>
</body>
</html>
`

const themeIndex = `<?php get_header(); ?>
<main class="pp-main">
<?php
while ( have_posts() ) :
	the_post();
	the_content();
endwhile;
?>
</main>
<?php get_footer(); ?>
`

const themePage = `<?php
/**
 * Template Name: Pageport Export
 */

get_header();
?>
<main class="pp-main">
<?php pageport_content(); ?>
</main>
<?php get_footer(); ?>
`
