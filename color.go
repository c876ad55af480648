package pageport

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// NormalizeColor converts a CSS color to lowercase hex. Hex and rgb()
// values are parsed directly; keywords, hsl(), hsla() and hwb() go through
// csscolorparser. Translucent colors keep an alpha byte (#rrggbbaa). The
// boolean is false when the value could not be parsed; the returned string is
// then empty.
func NormalizeColor(s string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimSuffix(v, "!important")
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	if strings.HasPrefix(v, "#") {
		return normalizeHex(v[1:])
	}
	if strings.HasPrefix(v, "rgb") {
		return normalizeRGB(v)
	}
	c, err := csscolorparser.Parse(v)
	if err != nil {
		return "", false
	}
	out := fmt.Sprintf("#%02x%02x%02x", unitByte(c.R), unitByte(c.G), unitByte(c.B))
	if a := unitByte(c.A); a < 255 {
		out += fmt.Sprintf("%02x", a)
	}
	return out, true
}

// ColorOr returns the normalized color, or fallback when s is malformed.
func ColorOr(s, fallback string) string {
	if c, ok := NormalizeColor(s); ok {
		return c
	}
	return fallback
}

func normalizeHex(h string) (string, bool) {
	for _, r := range h {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return "", false
		}
	}
	switch len(h) {
	case 3, 4:
		var b strings.Builder
		b.WriteByte('#')
		for _, r := range h {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		out := b.String()
		if strings.HasSuffix(out, "ff") && len(out) == 9 {
			out = out[:7]
		}
		return out, true
	case 6:
		return "#" + h, true
	case 8:
		if strings.HasSuffix(h, "ff") {
			return "#" + h[:6], true
		}
		return "#" + h, true
	}
	return "", false
}

func normalizeRGB(v string) (string, bool) {
	open := strings.IndexByte(v, '(')
	end := strings.LastIndexByte(v, ')')
	if open < 0 || end < open {
		return "", false
	}
	fn := strings.TrimSpace(v[:open])
	if fn != "rgb" && fn != "rgba" {
		return "", false
	}
	body := v[open+1 : end]
	body = strings.ReplaceAll(body, "/", " ")
	body = strings.ReplaceAll(body, ",", " ")
	parts := strings.Fields(body)
	if len(parts) != 3 && len(parts) != 4 {
		return "", false
	}

	var rgb [3]int
	for i := 0; i < 3; i++ {
		c, ok := parseChannel(parts[i])
		if !ok {
			return "", false
		}
		rgb[i] = c
	}
	out := fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
	if len(parts) == 4 {
		a, ok := parseAlpha(parts[3])
		if !ok {
			return "", false
		}
		if a < 255 {
			out += fmt.Sprintf("%02x", a)
		}
	}
	return out, true
}

func parseChannel(s string) (int, bool) {
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		return clampByte(math.Round(f * 255 / 100)), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clampByte(math.Round(f)), true
}

func parseAlpha(s string) (int, bool) {
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		return clampByte(math.Round(f * 255 / 100)), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clampByte(math.Round(f * 255)), true
}

// unitByte scales a 0..1 channel to a byte.
func unitByte(f float64) int {
	return clampByte(math.Round(f * 255))
}

func clampByte(f float64) int {
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return int(f)
}

// Shadow is a parsed box-shadow value. Lengths are in pixels.
type Shadow struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Blur   int    `json:"blur"`
	Spread int    `json:"spread"`
	Color  string `json:"color"`
	Inset  bool   `json:"inset,omitempty"`
}

// DefaultShadowColor is used when a shadow's color is missing or malformed.
const DefaultShadowColor = "#00000033"

// ParseShadow parses the first layer of a CSS box-shadow value.
// It returns nil for "none", empty input, or input without at least two
// lengths; a malformed color falls back to DefaultShadowColor.
func ParseShadow(s string) *Shadow {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" || v == "none" {
		return nil
	}
	if i := topLevelComma(v); i >= 0 {
		v = v[:i]
	}

	sh := &Shadow{Color: DefaultShadowColor}
	var lengths []int
	color := ""
	for _, tok := range splitKeepingParens(v) {
		if tok == "inset" {
			sh.Inset = true
			continue
		}
		if n, ok := parsePixels(tok); ok {
			lengths = append(lengths, n)
			continue
		}
		color = tok
	}
	if len(lengths) < 2 {
		return nil
	}
	sh.X, sh.Y = lengths[0], lengths[1]
	if len(lengths) > 2 {
		sh.Blur = lengths[2]
	}
	if len(lengths) > 3 {
		sh.Spread = lengths[3]
	}
	if color != "" {
		sh.Color = ColorOr(color, DefaultShadowColor)
	}
	return sh
}

// CSS renders the shadow back to CSS syntax.
func (s *Shadow) CSS() string {
	if s == nil {
		return ""
	}
	out := fmt.Sprintf("%dpx %dpx %dpx %dpx %s", s.X, s.Y, s.Blur, s.Spread, s.Color)
	if s.Inset {
		out = "inset " + out
	}
	return out
}

// topLevelComma returns the index of the first comma outside parentheses, or -1.
func topLevelComma(s string) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func splitKeepingParens(s string) []string {
	var out []string
	var cur strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
			cur.WriteRune(r)
		case r == ')':
			depth--
			cur.WriteRune(r)
		case (r == ' ' || r == '\t') && depth == 0:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// parsePixels parses "12px", "0" or "-3px". Other units are rejected.
func parsePixels(s string) (int, bool) {
	if s == "0" {
		return 0, true
	}
	if !strings.HasSuffix(s, "px") {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
	if err != nil {
		return 0, false
	}
	return int(math.Round(f)), true
}

// ParsePixels parses a pixel length such as "40px" or "40". It returns
// fallback when the value is malformed or uses another unit.
func ParsePixels(s string, fallback int) int {
	v := strings.TrimSpace(strings.ToLower(s))
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if n, ok := parsePixels(v); ok {
		return n
	}
	return fallback
}

// ParseInlineStyle splits a style attribute into lowercase property names and
// their raw values. Malformed declarations are skipped.
func ParseInlineStyle(style string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		out[name] = value
	}
	return out
}
