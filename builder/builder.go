// Package builder generates target-specific page-builder files from the
// document model. Each target grammar lives in its own file; New is the only
// place that knows the full set.
package builder

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pageport"
)

var _ pageport.BuilderRegistry = (*Registry)(nil)

// New returns the builder for id. The switch is exhaustive over
// pageport.BuilderIDs; anything else is EUNSUPPORTED.
func New(id pageport.BuilderID) (pageport.Builder, error) {
	switch id {
	case pageport.BuilderPluginFree:
		return NewPluginFree(), nil
	case pageport.BuilderElementor:
		return NewElementor(), nil
	case pageport.BuilderGutenberg:
		return NewGutenberg(), nil
	case pageport.BuilderDivi:
		return NewDivi(), nil
	case pageport.BuilderBeaver:
		return NewBeaver(), nil
	case pageport.BuilderBricks:
		return NewBricks(), nil
	case pageport.BuilderOxygen:
		return NewOxygen(), nil
	case pageport.BuilderKadence:
		return NewKadence(), nil
	case pageport.BuilderBrizy:
		return NewBrizy(), nil
	case pageport.BuilderOptimizePress:
		return NewOptimizePress(), nil
	case pageport.BuilderCrocoblock:
		return NewCrocoblock(), nil
	}
	return nil, pageport.Errorf(pageport.EUNSUPPORTED, "unknown builder %q", id)
}

// Registry resolves builders through New. Wrap, when set, decorates every
// builder it returns (e.g. with logging).
type Registry struct {
	Wrap func(pageport.Builder) pageport.Builder
}

// NewRegistry creates a Registry without decoration.
func NewRegistry() *Registry {
	return &Registry{}
}

// Builder returns the builder for id.
func (r *Registry) Builder(id pageport.BuilderID) (pageport.Builder, error) {
	b, err := New(id)
	if err != nil {
		return nil, err
	}
	if r.Wrap != nil {
		b = r.Wrap(b)
	}
	return b, nil
}

// Custom asset paths emitted by every builder except plugin-free.
const (
	CustomCSSPath = "assets/custom.css"
	CustomJSPath  = "assets/custom.js"
)

// customAssets returns the page's stylesheets and scripts concatenated into
// one file each. Empty inputs produce no file.
func customAssets(in *pageport.BuildInput) []pageport.File {
	var files []pageport.File
	if css := joinNonEmpty(in.CSS); css != "" {
		files = append(files, pageport.File{Path: CustomCSSPath, Group: pageport.GroupStyle, Content: []byte(css)})
	}
	if js := joinNonEmpty(in.JS); js != "" {
		files = append(files, pageport.File{Path: CustomJSPath, Group: pageport.GroupScript, Content: []byte(js)})
	}
	return files
}

func joinNonEmpty(parts []string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, "\n\n") + "\n"
}

// marshalJSON encodes v as indented JSON without escaping markup characters.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, pageport.Errorf(pageport.EINTERNAL, "failed to encode JSON: %v", err)
	}
	return buf.Bytes(), nil
}

// compactJSON encodes v on one line without escaping markup characters.
func compactJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", pageport.Errorf(pageport.EINTERNAL, "failed to encode JSON: %v", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func title(t pageport.ThemeMetadata) string {
	if t.Name != "" {
		return t.Name
	}
	return "Exported Page"
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(t pageport.ThemeMetadata) string {
	s := t.Slug
	if s == "" {
		s = t.Name
	}
	s = strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if s == "" {
		return "pageport-export"
	}
	return s
}

func version(t pageport.ThemeMetadata) string {
	if t.Version != "" {
		return t.Version
	}
	return "1.0.0"
}

// widgets yields every widget of a section in column order.
func widgets(s *pageport.Section) []*pageport.Widget {
	var out []*pageport.Widget
	for _, c := range s.Columns {
		out = append(out, c.Widgets...)
	}
	return out
}

func sections(in *pageport.BuildInput) []*pageport.Section {
	if in.Document == nil {
		return nil
	}
	return in.Document.Sections
}

// shortID derives a stable six-character identifier from a node ID for
// targets that require short lowercase element IDs.
func shortID(id string) string {
	s := strconv.FormatUint(xxhash.Sum64String(id), 36)
	for len(s) < 6 {
		s = "0" + s
	}
	return s[len(s)-6:]
}
