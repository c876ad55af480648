package builder

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fwojciec/pageport"
)

var _ pageport.Builder = (*Beaver)(nil)

// BeaverLayoutPath holds the fl shortcode layout.
const BeaverLayoutPath = "beaver-layout.txt"

// Beaver renders the document as Beaver Builder row, column group, column
// and module shortcodes.
type Beaver struct{}

// NewBeaver creates a Beaver Builder builder.
func NewBeaver() *Beaver {
	return &Beaver{}
}

// ID returns BuilderBeaver.
func (b *Beaver) ID() pageport.BuilderID {
	return pageport.BuilderBeaver
}

// Generate writes beaver-layout.txt.
func (b *Beaver) Generate(ctx context.Context, in *pageport.BuildInput) ([]pageport.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sc shortcode
	for _, s := range sections(in) {
		beaverRow(&sc, s)
	}

	files := []pageport.File{{Path: BeaverLayoutPath, Group: pageport.GroupMarkup, Content: []byte(sc.String())}}
	return append(files, customAssets(in)...), nil
}

// Instructions explains how to import the layout.
func (b *Beaver) Instructions() string {
	return `Beaver Builder import

1. Install and activate Beaver Builder.
2. Create a page, launch Beaver Builder and add an HTML module, or paste
   the contents of beaver-layout.txt into the Text tab of the classic
   editor before launching the builder.
3. Save the result as a template under Builder > Templates for reuse.
4. Add assets/custom.css under Beaver Builder > Layout CSS & Javascript if
   present.`
}

func beaverRow(sc *shortcode, s *pageport.Section) {
	st := s.Settings
	bgType := ""
	if st.Background != "" {
		bgType = "color"
	}
	sc.open("fl_row",
		"node", shortID(s.ID),
		"bg_type", bgType,
		"bg_color", trimHash(st.Background),
		"text_color", trimHash(st.TextColor),
		"padding", st.Padding,
		"class", st.CSSClass,
	)
	sc.newline()
	sc.open("fl_col_group", "node", shortID(s.ID+"/group"))
	sc.newline()
	for _, c := range s.Columns {
		sc.open("fl_col", "node", shortID(c.ID), "size", strconv.Itoa(c.Size))
		sc.newline()
		for _, w := range c.Widgets {
			beaverModule(sc, w)
		}
		sc.close("fl_col")
	}
	sc.close("fl_col_group")
	sc.close("fl_row")
}

// trimHash strips the leading # because Beaver stores bare hex colors.
func trimHash(c string) string {
	if len(c) > 0 && c[0] == '#' {
		return c[1:]
	}
	return c
}

func beaverModule(sc *shortcode, w *pageport.Widget) {
	node := shortID(w.ID)
	switch p := w.Props.(type) {
	case pageport.HeadingProps:
		sc.open("fl_module", "type", "heading", "node", node,
			"heading", p.Text,
			"tag", fmt.Sprintf("h%d", pageport.ClampHeadingLevel(p.Level)),
			"alignment", p.Align,
			"color", trimHash(p.Color),
		)
	case pageport.TextProps:
		sc.open("fl_module", "type", "rich-text", "node", node, "color", trimHash(p.Color))
		sc.content("<p" + style("text-align", p.Align) + ">" + p.HTML + "</p>")
	case pageport.ImageProps:
		linkType := ""
		if p.Link != "" {
			linkType = "url"
		}
		sc.open("fl_module", "type", "photo", "node", node,
			"photo_source", "url",
			"photo_url", p.Src,
			"alt", p.Alt,
			"link_type", linkType,
			"link_url", p.Link,
		)
	case pageport.ButtonProps:
		sc.open("fl_module", "type", "button", "node", node,
			"text", p.Text,
			"link", p.URL,
			"align", p.Align,
			"bg_color", trimHash(p.Background),
			"text_color", trimHash(p.Color),
		)
	case pageport.IconBoxProps:
		imageType := "icon"
		if p.Image != "" {
			imageType = "photo"
		}
		sc.open("fl_module", "type", "callout", "node", node,
			"title", p.Title,
			"image_type", imageType,
			"photo_url", p.Image,
			"icon", p.Icon,
		)
		sc.text(p.Description)
	case pageport.TestimonialProps:
		sc.open("fl_module", "type", "rich-text", "node", node)
		sc.content(renderWidget(w))
	case pageport.CounterProps:
		sc.open("fl_module", "type", "number-counter", "node", node,
			"number", strconv.Itoa(p.End),
			"before_number_text", p.Prefix,
			"after_number_text", p.Suffix,
			"number_type", "standard",
		)
		sc.text(p.Title)
	case pageport.VideoProps:
		if p.Provider == pageport.ProviderSelf {
			sc.open("fl_module", "type", "video", "node", node, "video_type", "media_library", "data", p.URL)
			break
		}
		sc.open("fl_module", "type", "video", "node", node, "video_type", "embed")
		sc.content(renderWidget(w))
	case pageport.DividerProps:
		sc.open("fl_module", "type", "separator", "node", node,
			"color", trimHash(p.Color),
			"style", firstStyle(p.Style),
			"height", strconv.Itoa(max(p.Weight, 1)),
		)
	case pageport.SpacerProps:
		sc.open("fl_module", "type", "html", "node", node)
		sc.content(renderWidget(w))
	default:
		sc.open("fl_module", "type", "html", "node", node)
		sc.content(renderWidget(w))
	}
	sc.close("fl_module")
}
