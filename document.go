package pageport

import "strings"

// SourceKind identifies which data source produced a Document.
type SourceKind string

// Document sources.
const (
	SourceNativeBlocks      SourceKind = "native-blocks"
	SourceExtractedElements SourceKind = "extracted-elements"
)

// Document is the intermediate representation of a captured page.
// It is built once per export and treated as read-only by builders.
type Document struct {
	Source   SourceKind `json:"source"`
	Sections []*Section `json:"sections"`
}

// WidgetCount returns the total number of widgets across all sections.
func (d *Document) WidgetCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, s := range d.Sections {
		for _, c := range s.Columns {
			n += len(c.Widgets)
		}
	}
	return n
}

// Section is a horizontal band of the page holding one or more columns.
type Section struct {
	ID       string          `json:"id"`
	Settings SectionSettings `json:"settings"`
	Columns  []*Column       `json:"columns"`
}

// SectionSettings holds the presentational settings of a section.
// Colors are normalized hex values or empty.
type SectionSettings struct {
	Tag        string  `json:"tag,omitempty"`
	Background string  `json:"background,omitempty"`
	TextColor  string  `json:"textColor,omitempty"`
	Padding    string  `json:"padding,omitempty"`
	CSSClass   string  `json:"cssClass,omitempty"`
	Shadow     *Shadow `json:"shadow,omitempty"`
}

// Column is a vertical slot inside a section. Size is a percentage (1..100).
// Sizes within a section are expected to sum to roughly 100; this is not
// enforced because ⌊100/N⌋ sizing loses the remainder.
type Column struct {
	ID      string    `json:"id"`
	Size    int       `json:"size"`
	Widgets []*Widget `json:"widgets"`
}

// ColumnSize returns the size of each column when n columns share a section.
// The remainder of 100/n is dropped, so 3 columns yield 33 each.
func ColumnSize(n int) int {
	if n <= 1 {
		return 100
	}
	return 100 / n
}

// WidgetKind identifies the content type of a widget.
type WidgetKind string

// Widget kinds.
const (
	WidgetHeading     WidgetKind = "heading"
	WidgetText        WidgetKind = "text"
	WidgetImage       WidgetKind = "image"
	WidgetButton      WidgetKind = "button"
	WidgetIconBox     WidgetKind = "icon-box"
	WidgetTestimonial WidgetKind = "testimonial"
	WidgetCounter     WidgetKind = "counter"
	WidgetVideo       WidgetKind = "video"
	WidgetList        WidgetKind = "list"
	WidgetQuote       WidgetKind = "quote"
	WidgetDivider     WidgetKind = "divider"
	WidgetSpacer      WidgetKind = "spacer"
	WidgetHTML        WidgetKind = "html"
)

// Widget is a leaf content node. Props always matches Kind.
type Widget struct {
	ID    string     `json:"id"`
	Kind  WidgetKind `json:"kind"`
	Props Props      `json:"props"`
}

// NewWidget returns a widget whose kind is derived from its props.
func NewWidget(id string, props Props) *Widget {
	return &Widget{ID: id, Kind: props.Kind(), Props: props}
}

// Props is the property set of one widget kind.
// The interface is sealed; the concrete types below are the only implementations.
type Props interface {
	Kind() WidgetKind
	props()
}

// HeadingProps describes a heading widget.
type HeadingProps struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Align string `json:"align,omitempty"`
	Color string `json:"color,omitempty"`
}

// TextProps describes a rich-text paragraph. HTML is the inner markup.
type TextProps struct {
	HTML  string `json:"html"`
	Align string `json:"align,omitempty"`
	Color string `json:"color,omitempty"`
}

// ImageProps describes an image widget.
type ImageProps struct {
	Src    string `json:"src"`
	Alt    string `json:"alt,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Link   string `json:"link,omitempty"`
}

// ButtonProps describes a call-to-action button.
type ButtonProps struct {
	Text       string  `json:"text"`
	URL        string  `json:"url,omitempty"`
	Background string  `json:"background,omitempty"`
	Color      string  `json:"color,omitempty"`
	Align      string  `json:"align,omitempty"`
	Shadow     *Shadow `json:"shadow,omitempty"`
}

// IconBoxProps describes an icon/feature/service box.
type IconBoxProps struct {
	Icon        string `json:"icon,omitempty"`
	Image       string `json:"image,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// TestimonialProps describes a testimonial or review.
type TestimonialProps struct {
	Content string `json:"content"`
	Author  string `json:"author,omitempty"`
	Role    string `json:"role,omitempty"`
	Image   string `json:"image,omitempty"`
}

// CounterProps describes an animated number counter.
type CounterProps struct {
	End    int    `json:"end"`
	Prefix string `json:"prefix,omitempty"`
	Suffix string `json:"suffix,omitempty"`
	Title  string `json:"title,omitempty"`
}

// Video providers.
const (
	ProviderYouTube = "youtube"
	ProviderVimeo   = "vimeo"
	ProviderSelf    = "self"
	ProviderOther   = "other"
)

// VideoProps describes an embedded or hosted video.
type VideoProps struct {
	URL      string `json:"url"`
	Provider string `json:"provider"`
	VideoID  string `json:"videoId,omitempty"`
}

// ListProps describes a bulleted or numbered list. Items hold inner markup.
type ListProps struct {
	Items   []string `json:"items"`
	Ordered bool     `json:"ordered,omitempty"`
}

// QuoteProps describes a block quote.
type QuoteProps struct {
	Text string `json:"text"`
	Cite string `json:"cite,omitempty"`
}

// DividerProps describes a horizontal rule.
type DividerProps struct {
	Style  string `json:"style,omitempty"`
	Color  string `json:"color,omitempty"`
	Weight int    `json:"weight,omitempty"`
}

// SpacerProps describes vertical whitespace in pixels.
type SpacerProps struct {
	Height int `json:"height"`
}

// HTMLProps is the fallback for markup no other kind matched.
type HTMLProps struct {
	HTML string `json:"html"`
}

func (HeadingProps) Kind() WidgetKind     { return WidgetHeading }
func (TextProps) Kind() WidgetKind        { return WidgetText }
func (ImageProps) Kind() WidgetKind       { return WidgetImage }
func (ButtonProps) Kind() WidgetKind      { return WidgetButton }
func (IconBoxProps) Kind() WidgetKind     { return WidgetIconBox }
func (TestimonialProps) Kind() WidgetKind { return WidgetTestimonial }
func (CounterProps) Kind() WidgetKind     { return WidgetCounter }
func (VideoProps) Kind() WidgetKind       { return WidgetVideo }
func (ListProps) Kind() WidgetKind        { return WidgetList }
func (QuoteProps) Kind() WidgetKind       { return WidgetQuote }
func (DividerProps) Kind() WidgetKind     { return WidgetDivider }
func (SpacerProps) Kind() WidgetKind      { return WidgetSpacer }
func (HTMLProps) Kind() WidgetKind        { return WidgetHTML }

func (HeadingProps) props()     {}
func (TextProps) props()        {}
func (ImageProps) props()       {}
func (ButtonProps) props()      {}
func (IconBoxProps) props()     {}
func (TestimonialProps) props() {}
func (CounterProps) props()     {}
func (VideoProps) props()       {}
func (ListProps) props()        {}
func (QuoteProps) props()       {}
func (DividerProps) props()     {}
func (SpacerProps) props()      {}
func (HTMLProps) props()        {}

// ClampHeadingLevel forces a heading level into the 1..6 range.
// Out-of-range values fall back to 2.
func ClampHeadingLevel(level int) int {
	if level < 1 || level > 6 {
		return 2
	}
	return level
}

// NormalizeAlign maps alignment keywords to left, center, right or justify.
// Unknown values return "".
func NormalizeAlign(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "start":
		return "left"
	case "center", "middle":
		return "center"
	case "right", "end":
		return "right"
	case "justify":
		return "justify"
	}
	return ""
}
