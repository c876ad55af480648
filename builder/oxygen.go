package builder

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fwojciec/pageport"
)

var _ pageport.Builder = (*Oxygen)(nil)

// OxygenShortcodesPath holds the ct shortcode layout.
const OxygenShortcodesPath = "oxygen-shortcodes.txt"

// Oxygen renders the document as ct shortcodes. Every element carries a
// numeric ct_id, its parent's ct_parent and a JSON ct_options payload.
type Oxygen struct{}

// NewOxygen creates an Oxygen builder.
func NewOxygen() *Oxygen {
	return &Oxygen{}
}

// ID returns BuilderOxygen.
func (o *Oxygen) ID() pageport.BuilderID {
	return pageport.BuilderOxygen
}

// Generate writes oxygen-shortcodes.txt.
func (o *Oxygen) Generate(ctx context.Context, in *pageport.BuildInput) ([]pageport.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ow := &oxygenWriter{}
	for _, s := range sections(in) {
		if err := ow.section(s); err != nil {
			return nil, err
		}
	}

	files := []pageport.File{{Path: OxygenShortcodesPath, Group: pageport.GroupMarkup, Content: []byte(ow.sc.String())}}
	return append(files, customAssets(in)...), nil
}

// Instructions explains how to import the shortcodes.
func (o *Oxygen) Instructions() string {
	return `Oxygen import

1. Install and activate Oxygen.
2. Edit a page with Oxygen, open Manage > Settings > Import/Export or
   paste the contents of oxygen-shortcodes.txt into the page's
   ct_builder_shortcodes field and re-sign shortcodes under
   Oxygen > Settings > Security.
3. Add assets/custom.css as an Oxygen stylesheet if present.`
}

type oxygenWriter struct {
	sc   shortcode
	next int
}

// open writes an element tag and returns its ct_id.
func (w *oxygenWriter) open(tag, name string, parent int, original map[string]any) (int, error) {
	w.next++
	id := w.next
	if original == nil {
		original = map[string]any{}
	}
	opts, err := compactJSON(map[string]any{
		"ct_id":          id,
		"ct_parent":      parent,
		"selector":       fmt.Sprintf("%s-%d-%d", name, id, parent),
		"original":       original,
		"activeselector": false,
	})
	if err != nil {
		return 0, err
	}
	w.sc.open(tag, "ct_id", strconv.Itoa(id), "ct_parent", strconv.Itoa(parent), "ct_options", opts)
	return id, nil
}

func (w *oxygenWriter) section(s *pageport.Section) error {
	st := s.Settings
	original := map[string]any{}
	if st.Tag != "" && sectionTags[st.Tag] {
		original["tag"] = st.Tag
	}
	setIf(original, "background-color", st.Background)
	setIf(original, "color", st.TextColor)
	setIf(original, "custom-css", declarations("padding", st.Padding, "box-shadow", st.Shadow.CSS()))
	setIf(original, "classes", st.CSSClass)

	sid, err := w.open("ct_section", "section", 0, original)
	if err != nil {
		return err
	}
	w.sc.newline()
	cols, err := w.open("ct_new_columns", "new_columns", sid, nil)
	if err != nil {
		return err
	}
	w.sc.newline()
	for _, c := range s.Columns {
		cid, err := w.open("ct_div_block", "div_block", cols, map[string]any{"width": strconv.Itoa(c.Size), "width-unit": "%"})
		if err != nil {
			return err
		}
		w.sc.newline()
		for _, wd := range c.Widgets {
			if err := w.widget(wd, cid); err != nil {
				return err
			}
		}
		w.sc.close("ct_div_block")
	}
	w.sc.close("ct_new_columns")
	w.sc.close("ct_section")
	return nil
}

func setIf(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func (w *oxygenWriter) widget(wd *pageport.Widget, parent int) error {
	var (
		tag, name string
		original  = map[string]any{}
		inner     string
		plain     bool
	)
	switch p := wd.Props.(type) {
	case pageport.HeadingProps:
		tag, name = "ct_headline", "headline"
		original["tag"] = fmt.Sprintf("h%d", pageport.ClampHeadingLevel(p.Level))
		setIf(original, "text-align", p.Align)
		setIf(original, "color", p.Color)
		inner, plain = p.Text, true
	case pageport.TextProps:
		tag, name = "ct_text_block", "text_block"
		setIf(original, "text-align", p.Align)
		setIf(original, "color", p.Color)
		inner = p.HTML
	case pageport.ImageProps:
		tag, name = "ct_image", "image"
		original["src"] = p.Src
		setIf(original, "alt", p.Alt)
		if p.Width > 0 {
			original["width"] = strconv.Itoa(p.Width)
		}
	case pageport.ButtonProps:
		tag, name = "ct_link_button", "link_button"
		original["url"] = p.URL
		setIf(original, "button-color", p.Background)
		setIf(original, "button-text-color", p.Color)
		inner, plain = p.Text, true
	case pageport.VideoProps:
		tag, name = "ct_video", "video"
		original["embed-src"] = videoEmbedURL(p)
		original["video-padding-bottom"] = "56.25%"
	default:
		tag, name = "ct_code_block", "code_block"
		original["code-php"] = renderWidget(wd)
	}

	if _, err := w.open(tag, name, parent, original); err != nil {
		return err
	}
	if plain {
		w.sc.text(inner)
	} else {
		w.sc.content(inner)
	}
	w.sc.close(tag)
	return nil
}
