// Package signature holds the registry of foreign platform signatures shared
// by dependency elimination and plugin-free verification.
package signature

import (
	"regexp"
	"strings"
)

// Family is one platform or plugin family and the patterns that identify it.
type Family struct {
	// ID is the stable family identifier used in reports.
	ID string

	// Name is the human-readable platform name.
	Name string

	// Classes match individual CSS class tokens.
	Classes []*regexp.Regexp

	// Shortcodes are shortcode tag prefixes (e.g. "et_pb_").
	Shortcodes []string

	// Assets match script/style/link URLs, stylesheet lines and script lines.
	Assets []*regexp.Regexp

	// Functions match template function names.
	Functions []*regexp.Regexp
}

// Registry is an immutable, ordered set of families. It is safe for
// concurrent use.
type Registry struct {
	families []*Family
}

// New returns a registry over the given families. Order determines which
// family wins when several match.
func New(families ...*Family) *Registry {
	return &Registry{families: families}
}

var defaultRegistry = New(defaultFamilies()...)

// Default returns the built-in registry.
func Default() *Registry {
	return defaultRegistry
}

// Families returns the registered families in order.
func (r *Registry) Families() []*Family {
	out := make([]*Family, len(r.families))
	copy(out, r.families)
	return out
}

// Family returns the family with the given ID, or nil.
func (r *Registry) Family(id string) *Family {
	for _, f := range r.families {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// Without returns a registry that excludes the given family IDs.
func (r *Registry) Without(ids ...string) *Registry {
	if len(ids) == 0 {
		return r
	}
	skip := make(map[string]bool, len(ids))
	for _, id := range ids {
		skip[id] = true
	}
	var kept []*Family
	for _, f := range r.families {
		if !skip[f.ID] {
			kept = append(kept, f)
		}
	}
	return New(kept...)
}

// MatchClass returns the family whose class signature matches the token.
func (r *Registry) MatchClass(class string) (*Family, bool) {
	if class == "" {
		return nil, false
	}
	for _, f := range r.families {
		for _, re := range f.Classes {
			if re.MatchString(class) {
				return f, true
			}
		}
	}
	return nil, false
}

// MatchShortcode returns the family owning a shortcode tag.
func (r *Registry) MatchShortcode(tag string) (*Family, bool) {
	tag = strings.ToLower(tag)
	for _, f := range r.families {
		for _, prefix := range f.Shortcodes {
			if strings.HasPrefix(tag, prefix) {
				return f, true
			}
		}
	}
	return nil, false
}

// MatchAsset returns the family whose asset signature occurs in s, along
// with the matched text.
func (r *Registry) MatchAsset(s string) (*Family, string, bool) {
	if s == "" {
		return nil, "", false
	}
	for _, f := range r.families {
		for _, re := range f.Assets {
			if m := re.FindString(s); m != "" {
				return f, m, true
			}
		}
	}
	return nil, "", false
}

// MatchFunction returns the family owning a template function name.
func (r *Registry) MatchFunction(name string) (*Family, bool) {
	for _, f := range r.families {
		for _, re := range f.Functions {
			if re.MatchString(name) {
				return f, true
			}
		}
	}
	return nil, false
}

var cssClassToken = regexp.MustCompile(`\.(-?[_a-zA-Z][\w-]*)`)

// MatchCSSLine checks one stylesheet line: class selectors first, then asset
// signatures (imports, urls, custom properties).
func (r *Registry) MatchCSSLine(line string) (*Family, string, bool) {
	for _, m := range cssClassToken.FindAllStringSubmatch(line, -1) {
		if f, ok := r.MatchClass(m[1]); ok {
			return f, "." + m[1], true
		}
	}
	return r.MatchAsset(line)
}

// MatchJSLine checks one script line: asset signatures first, then class
// names referenced in selectors.
func (r *Registry) MatchJSLine(line string) (*Family, string, bool) {
	if f, m, ok := r.MatchAsset(line); ok {
		return f, m, true
	}
	for _, m := range cssClassToken.FindAllStringSubmatch(line, -1) {
		if f, ok := r.MatchClass(m[1]); ok {
			return f, "." + m[1], true
		}
	}
	return nil, "", false
}

// ShortcodePattern matches one opening, closing or self-closing bracket
// shortcode token such as [et_pb_text admin_label="x"] or [/vc_row].
var ShortcodePattern = regexp.MustCompile(`\[/?([A-Za-z_][\w-]*)(?:\s[^\[\]]*)?/?\]`)

// ShortcodeTag extracts the tag name from a shortcode token.
func ShortcodeTag(token string) string {
	m := ShortcodePattern.FindStringSubmatch(token)
	if m == nil {
		return ""
	}
	return m[1]
}
