package signature

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/fwojciec/pageport"
)

var _ pageport.Verifier = (*Verifier)(nil)

// coreFunctions are platform core and PHP builtin functions that generated
// templates may call without depending on any plugin.
var coreFunctions = map[string]bool{
	// PHP language constructs and builtins.
	"array": true, "isset": true, "empty": true, "defined": true, "define": true,
	"function_exists": true, "file_exists": true, "sprintf": true, "printf": true,
	"implode": true, "explode": true, "str_replace": true, "trim": true,
	"strlen": true, "count": true, "in_array": true, "is_array": true,
	"date": true, "filemtime": true, "basename": true, "dirname": true,
	"readfile": true, "file_get_contents": true,
	"require": true, "require_once": true, "include": true, "include_once": true,
	"echo": true, "print": true, "list": true, "unset": true, "exit": true, "die": true,
	// Platform core.
	"add_action": true, "add_filter": true, "apply_filters": true, "do_action": true,
	"add_theme_support": true, "register_nav_menus": true, "wp_nav_menu": true,
	"wp_enqueue_style": true, "wp_enqueue_script": true, "wp_register_style": true,
	"wp_register_script": true, "wp_add_inline_style": true, "wp_add_inline_script": true,
	"get_stylesheet_uri": true, "get_template_directory_uri": true,
	"get_stylesheet_directory_uri": true, "get_template_directory": true,
	"get_stylesheet_directory": true, "get_theme_file_uri": true, "get_theme_file_path": true,
	"wp_get_theme": true, "wp_head": true, "wp_footer": true, "wp_body_open": true,
	"get_header": true, "get_footer": true, "get_template_part": true,
	"language_attributes": true, "bloginfo": true, "get_bloginfo": true, "body_class": true,
	"post_class": true, "the_content": true, "the_title": true, "the_post": true,
	"have_posts": true, "the_ID": true, "the_permalink": true, "get_permalink": true,
	"home_url": true, "site_url": true, "wp_title": true, "is_front_page": true,
	"is_page": true, "is_page_template": true, "esc_html": true, "esc_attr": true,
	"esc_url": true, "esc_html__": true, "esc_html_e": true, "esc_attr__": true,
	"__": true, "_e": true, "wp_kses_post": true, "wp_upload_dir": true,
	"trailingslashit": true, "untrailingslashit": true, "do_blocks": true,
	"register_block_pattern": true, "wp_is_block_theme": true, "load_theme_textdomain": true,
	"get_the_title": true, "get_the_ID": true, "wp_reset_postdata": true,
}

// phpKeywords look like calls to the function scanner but are not.
var phpKeywords = map[string]bool{
	"if": true, "elseif": true, "while": true, "for": true, "foreach": true,
	"switch": true, "return": true, "function": true, "fn": true, "catch": true,
	"match": true, "new": true, "and": true, "or": true, "not": true,
}

var (
	classAttr       = regexp.MustCompile(`class\s*=\s*["']([^"']*)["']`)
	urlAttr         = regexp.MustCompile(`(?:src|href)\s*=\s*["']([^"']+)["']`)
	phpBlock        = regexp.MustCompile(`(?s)<\?php(.*?)(?:\?>|$)`)
	functionCall    = regexp.MustCompile(`\b([A-Za-z_]\w*)\s*\(`)
	functionDeclare = regexp.MustCompile(`function\s+([A-Za-z_]\w*)\s*\(`)
)

// Verifier re-scans generated files for residual foreign dependencies using
// the same registry that drives elimination.
type Verifier struct {
	registry *Registry
}

// NewVerifier creates a Verifier. A nil registry uses Default().
func NewVerifier(r *Registry) *Verifier {
	if r == nil {
		r = Default()
	}
	return &Verifier{registry: r}
}

// Verify scans markup, template, style and script files. Families the target
// itself relies on are skipped. Each distinct hit per file becomes one
// detected check. Unrecognized shortcodes only count against the plugin-free
// target, whose output must render without any shortcode handler.
// Verification never fails; it only returns ctx errors.
func (v *Verifier) Verify(ctx context.Context, files []pageport.File, target pageport.BuilderID) (*pageport.VerificationReport, error) {
	reg := v.registry.Without(target.Families()...)
	generic := target == pageport.BuilderPluginFree
	c := &collector{seen: make(map[string]bool)}
	declared := declaredFunctions(files)

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content := string(f.Content)
		switch f.Group {
		case pageport.GroupMarkup:
			scanMarkup(v.registry, reg, c, f.Path, content, generic)
		case pageport.GroupTemplate:
			scanMarkup(v.registry, reg, c, f.Path, content, generic)
			scanTemplate(v.registry, reg, c, f.Path, content, declared)
		case pageport.GroupStyle:
			scanLines(c, f.Path, content, reg.MatchCSSLine)
		case pageport.GroupScript:
			scanLines(c, f.Path, content, reg.MatchJSLine)
		}
	}

	score, pluginFree := pageport.Score(c.checks)
	return &pageport.VerificationReport{
		IsPluginFree:    pluginFree,
		Score:           score,
		Dependencies:    c.checks,
		Recommendations: recommendations(c.checks),
	}, nil
}

type collector struct {
	checks []pageport.DependencyCheck
	seen   map[string]bool
}

func (c *collector) add(check pageport.DependencyCheck) {
	key := check.File + "\x00" + check.Family + "\x00" + check.Match
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	check.Detected = true
	c.checks = append(c.checks, check)
}

func (c *collector) critical(f *Family, file, match, what string) {
	c.add(pageport.DependencyCheck{
		Family:   f.ID,
		Name:     f.Name,
		File:     file,
		Match:    match,
		Severity: pageport.SeverityCritical,
		Message:  fmt.Sprintf("%s %s %q still present", f.Name, what, match),
	})
}

// scanMarkup reports foreign classes, asset URLs and shortcodes. full is the
// unfiltered registry; tags it knows but reg excludes belong to the target.
// Unrecognized shortcodes are reported only when generic is set.
func scanMarkup(full, reg *Registry, c *collector, path, content string, generic bool) {
	content = stripCDATA(content)
	for _, m := range classAttr.FindAllStringSubmatch(content, -1) {
		for _, class := range strings.Fields(m[1]) {
			if f, ok := reg.MatchClass(class); ok {
				c.critical(f, path, class, "class")
			}
		}
	}
	for _, m := range urlAttr.FindAllStringSubmatch(content, -1) {
		if f, match, ok := reg.MatchAsset(m[1]); ok {
			c.critical(f, path, match, "asset reference")
		}
	}
	for _, token := range ShortcodePattern.FindAllString(content, -1) {
		tag := ShortcodeTag(token)
		if f, ok := reg.MatchShortcode(tag); ok {
			c.critical(f, path, tag, "shortcode")
			continue
		}
		if _, own := full.MatchShortcode(tag); own || !generic {
			continue
		}
		c.add(pageport.DependencyCheck{
			Family:   "generic",
			Name:     "Unknown shortcode",
			File:     path,
			Match:    tag,
			Severity: pageport.SeverityWarning,
			Message:  fmt.Sprintf("shortcode [%s] requires a plugin to render", tag),
		})
	}
}

// stripCDATA drops CDATA delimiters so their brackets are not read as
// shortcodes. The wrapped text is still scanned.
func stripCDATA(content string) string {
	return strings.NewReplacer("<![CDATA[", "", "]]>", "").Replace(content)
}

// declaredFunctions collects functions declared by any template file. They
// belong to the export itself and may be called from other templates.
func declaredFunctions(files []pageport.File) map[string]bool {
	declared := make(map[string]bool)
	for _, f := range files {
		if f.Group != pageport.GroupTemplate {
			continue
		}
		for _, m := range functionDeclare.FindAllStringSubmatch(string(f.Content), -1) {
			declared[m[1]] = true
		}
	}
	return declared
}

func scanTemplate(full, reg *Registry, c *collector, path, content string, declared map[string]bool) {
	for _, block := range phpBlock.FindAllStringSubmatch(content, -1) {
		code := stripPHPStrings(block[1])
		for _, loc := range functionCall.FindAllStringSubmatchIndex(code, -1) {
			if isMemberCall(code, loc[2]) {
				continue
			}
			name := code[loc[2]:loc[3]]
			if phpKeywords[strings.ToLower(name)] || declared[name] || coreFunctions[name] {
				continue
			}
			if f, ok := reg.MatchFunction(name); ok {
				c.critical(f, path, name, "function")
				continue
			}
			if _, own := full.MatchFunction(name); own {
				continue
			}
			c.add(pageport.DependencyCheck{
				Family:   "generic",
				Name:     "Unknown function",
				File:     path,
				Match:    name,
				Severity: pageport.SeverityWarning,
				Message:  fmt.Sprintf("%s() is not a core function and may require a plugin", name),
			})
		}
	}
}

// isMemberCall reports whether the identifier at i is a variable, method,
// static or namespaced call rather than a plain function call.
func isMemberCall(code string, i int) bool {
	if i == 0 {
		return false
	}
	switch code[i-1] {
	case '$', '\\':
		return true
	case '>', ':':
		return i >= 2 && (code[i-2] == '-' || code[i-2] == ':')
	}
	return false
}

var phpString = regexp.MustCompile(`'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*"`)

// stripPHPStrings blanks out string literals so text inside them is not
// mistaken for calls.
func stripPHPStrings(code string) string {
	return phpString.ReplaceAllString(code, "''")
}

func scanLines(c *collector, path, content string, match func(string) (*Family, string, bool)) {
	for _, line := range strings.Split(content, "\n") {
		if f, m, ok := match(line); ok {
			c.critical(f, path, m, "reference")
		}
	}
}

func recommendations(checks []pageport.DependencyCheck) []string {
	if len(checks) == 0 {
		return []string{"No residual dependencies found; the export is self-contained."}
	}
	perFamily := make(map[string]int)
	names := make(map[string]string)
	for _, c := range checks {
		perFamily[c.Family]++
		names[c.Family] = c.Name
	}
	families := make([]string, 0, len(perFamily))
	for f := range perFamily {
		families = append(families, f)
	}
	sort.Strings(families)

	var out []string
	for _, f := range families {
		if f == "generic" {
			continue
		}
		out = append(out, fmt.Sprintf("Remove %d %s reference(s) or re-run the export with dependency elimination enabled.", perFamily[f], names[f]))
	}
	if n := perFamily["generic"]; n > 0 {
		out = append(out, fmt.Sprintf("Review %d unrecognized shortcode(s) or function call(s); they may need a plugin.", n))
	}
	return out
}
