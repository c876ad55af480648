package builder

import (
	"html"
	"strings"
)

// shortcodeAttrEscaper escapes attribute values: markup characters, quotes
// and the brackets that would end the enclosing tag.
var shortcodeAttrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"[", "&#91;",
	"]", "&#93;",
)

// EscapeShortcodeAttr escapes a value for use inside a quoted shortcode
// attribute.
func EscapeShortcodeAttr(s string) string {
	return shortcodeAttrEscaper.Replace(s)
}

// EscapeShortcodeContent escapes raw content placed between shortcode tags.
// Markup is kept; only brackets are escaped.
func EscapeShortcodeContent(s string) string {
	return escapeBrackets(s)
}

// shortcode writes bracket shortcodes. Attributes keep insertion order and
// empty values are skipped.
type shortcode struct {
	b strings.Builder
}

// open writes [tag k="v" ...]. attrs alternate names and values.
func (s *shortcode) open(tag string, attrs ...string) {
	s.b.WriteString("[" + tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] == "" {
			continue
		}
		s.b.WriteString(" " + attrs[i] + `="` + EscapeShortcodeAttr(attrs[i+1]) + `"`)
	}
	s.b.WriteString("]")
}

func (s *shortcode) close(tag string) {
	s.b.WriteString("[/" + tag + "]\n")
}

func (s *shortcode) newline() {
	s.b.WriteString("\n")
}

// content writes escaped markup between tags.
func (s *shortcode) content(markup string) {
	s.b.WriteString(EscapeShortcodeContent(markup))
}

// text writes escaped plain text between tags.
func (s *shortcode) text(t string) {
	s.b.WriteString(EscapeShortcodeContent(html.EscapeString(t)))
}

// element writes a complete [tag ...]content[/tag].
func (s *shortcode) element(tag, markup string, attrs ...string) {
	s.open(tag, attrs...)
	s.content(markup)
	s.close(tag)
}

func (s *shortcode) String() string {
	return s.b.String()
}
