// Package blocks builds the document model from native block-editor data.
package blocks

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pageport"
	ppgoquery "github.com/fwojciec/pageport/goquery"
)

var _ pageport.DataSource = (*Source)(nil)

// Block names with structural meaning.
const (
	nameGroup   = "core/group"
	nameCover   = "core/cover"
	nameColumns = "core/columns"
	nameColumn  = "core/column"
	nameButtons = "core/buttons"
)

// defaultSpacerHeight matches the block editor's spacer default.
const defaultSpacerHeight = 100

// Source builds the document model from a native block list.
type Source struct {
	blocks []pageport.Block
}

// NewSource creates a Source over a block list.
func NewSource(blocks []pageport.Block) *Source {
	return &Source{blocks: blocks}
}

// Decode reads a JSON array of blocks.
func Decode(r io.Reader) ([]pageport.Block, error) {
	var blocks []pageport.Block
	if err := json.NewDecoder(r).Decode(&blocks); err != nil {
		return nil, pageport.Errorf(pageport.EINVALID, "failed to decode blocks: %v", err)
	}
	return blocks, nil
}

// Kind reports SourceNativeBlocks.
func (s *Source) Kind() pageport.SourceKind {
	return pageport.SourceNativeBlocks
}

// Build maps group and cover blocks to sections and columns blocks to
// sections with explicit columns. Consecutive leaf blocks at the top level
// share an implicit full-width section.
func (s *Source) Build(ctx context.Context, ids pageport.IDGenerator) (*pageport.Document, error) {
	b := &docBuilder{ids: ids, doc: &pageport.Document{Source: pageport.SourceNativeBlocks}}

	var loose []*pageport.Widget
	for _, blk := range s.blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch blk.Name {
		case nameGroup, nameCover, nameColumns:
			b.fullWidth(pageport.SectionSettings{}, loose)
			loose = nil
			b.container(blk)
		default:
			loose = b.widgets(blk, loose)
		}
	}
	b.fullWidth(pageport.SectionSettings{}, loose)

	return b.doc, nil
}

type docBuilder struct {
	ids pageport.IDGenerator
	doc *pageport.Document
}

// container emits the sections for one group, cover or columns block.
// Nested containers are flattened into sibling sections in document order.
func (b *docBuilder) container(blk pageport.Block) {
	settings := sectionSettings(blk)
	if blk.Name == nameColumns {
		b.columns(blk, settings)
		return
	}

	var loose []*pageport.Widget
	for _, inner := range blk.InnerBlocks {
		switch inner.Name {
		case nameGroup, nameCover, nameColumns:
			b.fullWidth(settings, loose)
			loose = nil
			b.container(inner)
		default:
			loose = b.widgets(inner, loose)
		}
	}
	b.fullWidth(settings, loose)
}

func (b *docBuilder) columns(blk pageport.Block, settings pageport.SectionSettings) {
	var cols []pageport.Block
	for _, inner := range blk.InnerBlocks {
		if inner.Name == nameColumn {
			cols = append(cols, inner)
		}
	}
	if len(cols) == 0 {
		return
	}

	section := &pageport.Section{ID: b.ids.NextID(), Settings: settings}
	fallback := pageport.ColumnSize(len(cols))
	for _, col := range cols {
		var widgets []*pageport.Widget
		for _, inner := range col.InnerBlocks {
			widgets = b.widgets(inner, widgets)
		}
		section.Columns = append(section.Columns, &pageport.Column{
			ID:      b.ids.NextID(),
			Size:    columnWidth(col.Attrs, fallback),
			Widgets: widgets,
		})
	}
	b.doc.Sections = append(b.doc.Sections, section)
}

func (b *docBuilder) fullWidth(settings pageport.SectionSettings, widgets []*pageport.Widget) {
	if len(widgets) == 0 {
		return
	}
	b.doc.Sections = append(b.doc.Sections, &pageport.Section{
		ID:       b.ids.NextID(),
		Settings: settings,
		Columns: []*pageport.Column{{
			ID:      b.ids.NextID(),
			Size:    pageport.ColumnSize(1),
			Widgets: widgets,
		}},
	})
}

// widgets appends the widgets produced by blk to out. Containers inside a
// column are flattened into their leaf widgets.
func (b *docBuilder) widgets(blk pageport.Block, out []*pageport.Widget) []*pageport.Widget {
	switch blk.Name {
	case nameGroup, nameCover, nameColumns, nameColumn, nameButtons:
		for _, inner := range blk.InnerBlocks {
			out = b.widgets(inner, out)
		}
		return out
	}
	if props, ok := widgetProps(blk); ok {
		return append(out, pageport.NewWidget(b.ids.NextID(), props))
	}
	for _, inner := range blk.InnerBlocks {
		out = b.widgets(inner, out)
	}
	return out
}

// widgetProps maps a leaf block to widget props. Unknown blocks carrying
// markup fall back to raw HTML; unknown wrappers with inner blocks report
// false so the caller descends into them.
func widgetProps(blk pageport.Block) (pageport.Props, bool) {
	a := attrs(blk.Attrs)
	frag := parseFragment(blk.InnerHTML)

	switch blk.Name {
	case "core/heading":
		text := a.str("content")
		if text == "" {
			text = cleanText(frag.Find("h1, h2, h3, h4, h5, h6").First().Text())
		}
		return pageport.HeadingProps{
			Level: pageport.ClampHeadingLevel(a.int("level", 2)),
			Text:  text,
			Align: pageport.NormalizeAlign(a.first("textAlign", "align")),
			Color: textColor(a),
		}, true
	case "core/paragraph":
		html := a.str("content")
		if html == "" {
			html = innerHTML(frag.Find("p").First())
		}
		return pageport.TextProps{
			HTML:  html,
			Align: pageport.NormalizeAlign(a.first("align", "textAlign")),
			Color: textColor(a),
		}, true
	case "core/image":
		img := frag.Find("img").First()
		return pageport.ImageProps{
			Src:    firstNonEmpty(a.str("url"), img.AttrOr("src", "")),
			Alt:    firstNonEmpty(a.str("alt"), img.AttrOr("alt", "")),
			Width:  a.int("width", 0),
			Height: a.int("height", 0),
			Link:   firstNonEmpty(a.str("href"), frag.Find("a").First().AttrOr("href", "")),
		}, true
	case "core/button":
		link := frag.Find("a").First()
		return pageport.ButtonProps{
			Text:       firstNonEmpty(a.str("text"), cleanText(link.Text())),
			URL:        firstNonEmpty(a.str("url"), link.AttrOr("href", "")),
			Background: backgroundColor(a),
			Color:      textColor(a),
			Align:      pageport.NormalizeAlign(a.str("textAlign")),
		}, true
	case "core/list":
		var items []string
		frag.Find("li").Each(func(_ int, li *goquery.Selection) {
			items = append(items, innerHTML(li))
		})
		return pageport.ListProps{Items: items, Ordered: a.bool("ordered")}, true
	case "core/quote", "core/pullquote":
		cite := frag.Find("cite").First()
		text := firstNonEmpty(a.str("value"), cleanText(frag.Find("p").Text()))
		return pageport.QuoteProps{
			Text: text,
			Cite: firstNonEmpty(a.str("citation"), cleanText(cite.Text())),
		}, true
	case "core/separator":
		return pageport.DividerProps{
			Style:  "solid",
			Color:  firstNonEmpty(backgroundColor(a), textColor(a)),
			Weight: 1,
		}, true
	case "core/spacer":
		return pageport.SpacerProps{Height: pageport.ParsePixels(a.str("height"), a.int("height", defaultSpacerHeight))}, true
	case "core/video":
		src := firstNonEmpty(a.str("src"), frag.Find("video").First().AttrOr("src", ""))
		return pageport.VideoProps{URL: src, Provider: pageport.ProviderSelf}, true
	case "core/embed", "core-embed/youtube", "core-embed/vimeo":
		u := a.str("url")
		if v, ok := ppgoquery.VideoFromURL(u); ok {
			return v, true
		}
		return pageport.VideoProps{URL: u, Provider: pageport.ProviderOther}, true
	case "core/html", "core/freeform", "":
		html := firstNonEmpty(a.str("content"), strings.TrimSpace(blk.InnerHTML))
		if html == "" {
			return nil, false
		}
		return pageport.HTMLProps{HTML: html}, true
	}

	if len(blk.InnerBlocks) > 0 {
		return nil, false
	}
	if html := strings.TrimSpace(blk.InnerHTML); html != "" {
		return pageport.HTMLProps{HTML: html}, true
	}
	return nil, false
}

// columnWidth reads a column's width attribute ("33.33%", "50", 25) and
// rounds it down. Missing or unusable widths use fallback.
func columnWidth(raw map[string]any, fallback int) int {
	var w float64
	switch v := raw["width"].(type) {
	case float64:
		w = v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "%"), 64)
		if err != nil {
			return fallback
		}
		w = f
	default:
		return fallback
	}
	n := int(math.Floor(w))
	if n < 1 || n > 100 {
		return fallback
	}
	return n
}

func sectionSettings(blk pageport.Block) pageport.SectionSettings {
	a := attrs(blk.Attrs)
	bg := backgroundColor(a)
	if blk.Name == nameCover && bg == "" {
		bg = pageport.ColorOr(a.first("customOverlayColor", "overlayColor"), "")
	}
	return pageport.SectionSettings{
		Tag:        firstNonEmpty(a.str("tagName"), "section"),
		Background: bg,
		TextColor:  textColor(a),
		Padding:    padding(a.path("style", "spacing", "padding")),
		CSSClass:   strings.Join(strings.Fields(a.str("className")), " "),
		Shadow:     pageport.ParseShadow(a.pathStr("style", "shadow")),
	}
}

func backgroundColor(a attrs) string {
	return pageport.ColorOr(firstNonEmpty(a.pathStr("style", "color", "background"), a.str("backgroundColor")), "")
}

func textColor(a attrs) string {
	return pageport.ColorOr(firstNonEmpty(a.pathStr("style", "color", "text"), a.str("textColor")), "")
}

// padding renders a padding attribute, which is either a CSS shorthand or
// a map of sides, as a CSS shorthand.
func padding(v any) string {
	switch p := v.(type) {
	case string:
		return strings.TrimSpace(p)
	case map[string]any:
		sides := attrs(p)
		parts := make([]string, 0, 4)
		for _, side := range []string{"top", "right", "bottom", "left"} {
			parts = append(parts, firstNonEmpty(sides.str(side), "0"))
		}
		return strings.Join(parts, " ")
	}
	return ""
}

func parseFragment(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return &goquery.Document{Selection: &goquery.Selection{}}
	}
	return doc
}

func innerHTML(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	h, err := sel.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(h)
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
