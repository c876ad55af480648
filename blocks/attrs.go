package blocks

import (
	"math"
	"strconv"
	"strings"
)

// attrs reads loosely typed block attributes as decoded from JSON.
type attrs map[string]any

func (a attrs) str(key string) string {
	if s, ok := a[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// first returns the first non-empty string among keys.
func (a attrs) first(keys ...string) string {
	for _, k := range keys {
		if s := a.str(k); s != "" {
			return s
		}
	}
	return ""
}

func (a attrs) int(key string, fallback int) int {
	switch v := a[key].(type) {
	case float64:
		return int(math.Round(v))
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func (a attrs) bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// path walks nested objects, returning nil when any step is missing.
func (a attrs) path(keys ...string) any {
	var cur any = map[string]any(a)
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[k]
	}
	return cur
}

func (a attrs) pathStr(keys ...string) string {
	s, _ := a.path(keys...).(string)
	return strings.TrimSpace(s)
}
