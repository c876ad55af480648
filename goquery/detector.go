package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pageport"
	"github.com/fwojciec/pageport/signature"
)

var _ pageport.PlatformDetector = (*Detector)(nil)

// generators maps meta generator substrings to family IDs. More specific
// builder names come before the platforms they run on.
var generators = []struct {
	needle string
	family string
}{
	{"elementor", "elementor"},
	{"divi", "divi"},
	{"beaver builder", "beaver-builder"},
	{"wpbakery", "wpbakery"},
	{"visual composer", "wpbakery"},
	{"oxygen", "oxygen"},
	{"bricks", "bricks"},
	{"brizy", "brizy"},
	{"kadence", "kadence"},
	{"optimizepress", "optimizepress"},
	{"wix.com", "wix"},
	{"squarespace", "squarespace"},
	{"webflow", "webflow"},
}

// Detector identifies the page builder or hosted platform that produced a
// captured page. It checks meta generator tags, then counts class tokens
// against the signature registry.
type Detector struct {
	registry *signature.Registry
}

// NewDetector creates a new Detector. A nil registry uses signature.Default().
func NewDetector(r *signature.Registry) *Detector {
	if r == nil {
		r = signature.Default()
	}
	return &Detector{registry: r}
}

// Detect analyzes HTML and returns the identified family ID.
// Returns "" if the platform cannot be determined.
func (d *Detector) Detect(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	// Meta generator tags are the most reliable signal when present
	if family := d.detectFromMetaGenerator(doc); family != "" {
		return family
	}

	return d.detectFromClasses(doc)
}

// detectFromMetaGenerator checks every meta generator tag; sites often carry
// one for the CMS and one for the builder.
func (d *Detector) detectFromMetaGenerator(doc *goquery.Document) string {
	var content []string
	doc.Find("meta[name='generator']").Each(func(_ int, s *goquery.Selection) {
		if c, exists := s.Attr("content"); exists {
			content = append(content, strings.ToLower(c))
		}
	})
	if len(content) == 0 {
		return ""
	}

	joined := strings.Join(content, " ")
	for _, g := range generators {
		if strings.Contains(joined, g.needle) {
			return g.family
		}
	}
	return ""
}

// detectFromClasses returns the family with the most matching class tokens.
// Ties go to the family registered first.
func (d *Detector) detectFromClasses(doc *goquery.Document) string {
	counts := make(map[string]int)
	doc.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		for _, class := range strings.Fields(s.AttrOr("class", "")) {
			if f, ok := d.registry.MatchClass(class); ok {
				counts[f.ID]++
			}
		}
	})

	best, bestCount := "", 0
	for _, f := range d.registry.Families() {
		if n := counts[f.ID]; n > bestCount {
			best, bestCount = f.ID, n
		}
	}
	return best
}
