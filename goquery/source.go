package goquery

import (
	"context"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/pageport"
	xhtml "golang.org/x/net/html"
)

var _ pageport.DataSource = (*ElementSource)(nil)

// sectionTags are body children that open their own section.
var sectionTags = map[string]bool{
	"section": true, "header": true, "footer": true, "main": true, "article": true,
	"div": true, "nav": true, "aside": true, "form": true,
}

// columnMatchers are tried in order; the first yielding 2–6 columns wins.
var columnMatchers = []cascadia.Selector{
	cascadia.MustCompile(`.row > [class*="col"]`),
	cascadia.MustCompile(`[class*="col-"]`),
	cascadia.MustCompile(`[class*="column"]`),
	cascadia.MustCompile(`[class*="grid"] > *`),
	cascadia.MustCompile(`.flex > *`),
}

const (
	minColumns = 2
	maxColumns = 6
)

// ElementSource builds the document model by walking captured markup.
type ElementSource struct {
	html string
}

// NewElementSource creates an ElementSource over a page snapshot.
func NewElementSource(html string) *ElementSource {
	return &ElementSource{html: html}
}

// Kind reports SourceExtractedElements.
func (s *ElementSource) Kind() pageport.SourceKind {
	return pageport.SourceExtractedElements
}

// Build walks the body in document order. Layout containers become sections;
// runs of loose elements and text between them are gathered into implicit
// full-width sections.
func (s *ElementSource) Build(ctx context.Context, ids pageport.IDGenerator) (*pageport.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.html))
	if err != nil {
		return nil, pageport.Errorf(pageport.EINVALID, "failed to parse HTML: %v", err)
	}

	b := &docBuilder{ids: ids, doc: &pageport.Document{Source: pageport.SourceExtractedElements}}
	var loose []*goquery.Selection
	flush := func() {
		if len(loose) == 0 {
			return
		}
		b.implicitSection(loose)
		loose = nil
	}

	var walkErr error
	doc.Find("body").First().Contents().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if walkErr = ctx.Err(); walkErr != nil {
			return false
		}
		n := c.Nodes[0]
		switch n.Type {
		case xhtml.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				loose = append(loose, c)
			}
		case xhtml.ElementNode:
			tag := goquery.NodeName(c)
			switch {
			case skippedTags[tag]:
			case sectionTags[tag]:
				flush()
				b.containerSection(c)
			default:
				loose = append(loose, c)
			}
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	flush()

	return b.doc, nil
}

type docBuilder struct {
	ids pageport.IDGenerator
	doc *pageport.Document
}

func (b *docBuilder) implicitSection(nodes []*goquery.Selection) {
	var widgets []*pageport.Widget
	for _, n := range nodes {
		widgets = b.collect(n, widgets)
	}
	if len(widgets) == 0 {
		return
	}
	b.doc.Sections = append(b.doc.Sections, &pageport.Section{
		ID:       b.ids.NextID(),
		Settings: pageport.SectionSettings{},
		Columns:  []*pageport.Column{b.column(pageport.ColumnSize(1), widgets)},
	})
}

// containerSection turns one layout container into a section. Content of the
// container that sits outside detected columns is kept in a full-width
// section placed before the columns.
func (b *docBuilder) containerSection(c *goquery.Selection) {
	settings := sectionSettings(c)
	cols := detectColumns(c)

	if len(cols) == 0 {
		var widgets []*pageport.Widget
		c.Contents().Each(func(_ int, child *goquery.Selection) {
			widgets = b.collect(child, widgets)
		})
		if len(widgets) == 0 {
			return
		}
		b.doc.Sections = append(b.doc.Sections, &pageport.Section{
			ID:       b.ids.NextID(),
			Settings: settings,
			Columns:  []*pageport.Column{b.column(pageport.ColumnSize(1), widgets)},
		})
		return
	}

	inColumn := make(map[*xhtml.Node]bool, len(cols))
	for _, col := range cols {
		inColumn[col.Nodes[0]] = true
	}
	var outside []*pageport.Widget
	c.Contents().Each(func(_ int, child *goquery.Selection) {
		outside = b.collectOutside(child, inColumn, outside)
	})
	if len(outside) > 0 {
		b.doc.Sections = append(b.doc.Sections, &pageport.Section{
			ID:       b.ids.NextID(),
			Settings: settings,
			Columns:  []*pageport.Column{b.column(pageport.ColumnSize(1), outside)},
		})
	}

	section := &pageport.Section{ID: b.ids.NextID(), Settings: settings}
	size := pageport.ColumnSize(len(cols))
	for _, col := range cols {
		section.Columns = append(section.Columns, b.column(size, b.collect(col, nil)))
	}
	b.doc.Sections = append(b.doc.Sections, section)
}

func (b *docBuilder) column(size int, widgets []*pageport.Widget) *pageport.Column {
	return &pageport.Column{ID: b.ids.NextID(), Size: size, Widgets: widgets}
}

// collect classifies sel, descending into generic containers, and appends
// the resulting widgets to out.
func (b *docBuilder) collect(sel *goquery.Selection, out []*pageport.Widget) []*pageport.Widget {
	n := sel.Nodes[0]
	switch n.Type {
	case xhtml.TextNode:
		if text := cleanText(n.Data); text != "" {
			out = append(out, pageport.NewWidget(b.ids.NextID(), pageport.TextProps{HTML: html.EscapeString(text)}))
		}
		return out
	case xhtml.ElementNode:
	default:
		return out
	}

	if props, ok := Classify(sel); ok {
		return append(out, pageport.NewWidget(b.ids.NextID(), props))
	}
	if skippedTags[goquery.NodeName(sel)] {
		return out
	}
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		out = b.collect(child, out)
	})
	return out
}

// collectOutside is collect restricted to nodes that are not columns and do
// not contain one. Containers holding columns are descended into.
func (b *docBuilder) collectOutside(sel *goquery.Selection, columns map[*xhtml.Node]bool, out []*pageport.Widget) []*pageport.Widget {
	n := sel.Nodes[0]
	if columns[n] {
		return out
	}
	if n.Type == xhtml.ElementNode && containsAny(n, columns) {
		sel.Contents().Each(func(_ int, child *goquery.Selection) {
			out = b.collectOutside(child, columns, out)
		})
		return out
	}
	return b.collect(sel, out)
}

func containsAny(n *xhtml.Node, set map[*xhtml.Node]bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if set[c] || containsAny(c, set) {
			return true
		}
	}
	return false
}

// detectColumns returns the column elements of a container, or nil when the
// container is a single full-width column.
func detectColumns(c *goquery.Selection) []*goquery.Selection {
	for _, m := range columnMatchers {
		found := outermost(c.FindMatcher(m))
		if len(found) >= minColumns && len(found) <= maxColumns {
			return found
		}
	}
	children := c.Children().FilterFunction(func(_ int, s *goquery.Selection) bool {
		return !skippedTags[goquery.NodeName(s)]
	})
	if n := children.Length(); n >= minColumns && n <= maxColumns {
		out := make([]*goquery.Selection, 0, n)
		children.Each(func(_ int, s *goquery.Selection) {
			out = append(out, s)
		})
		return out
	}
	return nil
}

// outermost drops matches nested inside other matches so a column's inner
// grid does not count twice.
func outermost(sel *goquery.Selection) []*goquery.Selection {
	set := make(map[*xhtml.Node]bool, sel.Length())
	for _, n := range sel.Nodes {
		set[n] = true
	}
	var out []*goquery.Selection
	sel.Each(func(_ int, s *goquery.Selection) {
		for p := s.Nodes[0].Parent; p != nil; p = p.Parent {
			if set[p] {
				return
			}
		}
		out = append(out, s)
	})
	return out
}

func sectionSettings(c *goquery.Selection) pageport.SectionSettings {
	style := pageport.ParseInlineStyle(c.AttrOr("style", ""))
	bg := style["background-color"]
	if bg == "" {
		bg = style["background"]
	}
	return pageport.SectionSettings{
		Tag:        goquery.NodeName(c),
		Background: pageport.ColorOr(bg, ""),
		TextColor:  pageport.ColorOr(style["color"], ""),
		Padding:    style["padding"],
		CSSClass:   strings.Join(strings.Fields(c.AttrOr("class", "")), " "),
		Shadow:     pageport.ParseShadow(style["box-shadow"]),
	}
}
