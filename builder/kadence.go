package builder

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/fwojciec/pageport"
)

var _ pageport.Builder = (*Kadence)(nil)

// KadenceContentPath holds the serialized Kadence blocks.
const KadenceContentPath = "kadence-content.html"

// Kadence renders sections as Kadence row layouts and uses Kadence blocks
// for headings, buttons, info boxes, testimonials, counters and spacers.
// Other kinds fall back to core blocks.
type Kadence struct{}

// NewKadence creates a Kadence builder.
func NewKadence() *Kadence {
	return &Kadence{}
}

// ID returns BuilderKadence.
func (k *Kadence) ID() pageport.BuilderID {
	return pageport.BuilderKadence
}

// Generate writes kadence-content.html.
func (k *Kadence) Generate(ctx context.Context, in *pageport.BuildInput) ([]pageport.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var parts []string
	for _, s := range sections(in) {
		parts = append(parts, kadenceRow(s))
	}
	content := strings.Join(parts, "\n\n")
	if content != "" {
		content += "\n"
	}

	files := []pageport.File{{Path: KadenceContentPath, Group: pageport.GroupMarkup, Content: []byte(content)}}
	return append(files, customAssets(in)...), nil
}

// Instructions explains how to import the blocks.
func (k *Kadence) Instructions() string {
	return `Kadence Blocks import

1. Install and activate the Kadence Blocks plugin.
2. Create a page, open the block editor's Code editor and paste the
   contents of kadence-content.html. Switch back to the Visual editor.
3. Add assets/custom.css under Appearance > Customize > Additional CSS.
4. Upload any images listed in reports/asset-embedding.txt to
   wp-content/uploads/pageport/.`
}

func kadenceUniqueID(id string) string {
	return "_" + shortID(id)
}

func kadenceColLayout(cols []*pageport.Column) string {
	if len(cols) <= 1 {
		return "row"
	}
	for _, c := range cols[1:] {
		if c.Size != cols[0].Size {
			return "custom"
		}
	}
	return "equal"
}

func kadenceRow(s *pageport.Section) string {
	uid := kadenceUniqueID(s.ID)
	attrs := map[string]any{
		"uniqueID":  uid,
		"columns":   len(s.Columns),
		"colLayout": kadenceColLayout(s.Columns),
	}
	if s.Settings.Background != "" {
		attrs["bgColor"] = s.Settings.Background
	}
	if s.Settings.TextColor != "" {
		attrs["textColor"] = s.Settings.TextColor
	}
	if s.Settings.Tag != "" && s.Settings.Tag != "div" && sectionTags[s.Settings.Tag] {
		attrs["htmlTag"] = s.Settings.Tag
	}
	if s.Settings.CSSClass != "" {
		attrs["className"] = s.Settings.CSSClass
	}

	var cols []string
	for i, c := range s.Columns {
		colAttrs := map[string]any{"uniqueID": kadenceUniqueID(c.ID), "id": i + 1}
		if attrs["colLayout"] == "custom" {
			colAttrs["width"] = c.Size
		}
		var ws []string
		for _, w := range c.Widgets {
			ws = append(ws, kadenceWidget(w))
		}
		inner := fmt.Sprintf(`<div class="wp-block-kadence-column kadence-column%s inner-column-%d"><div class="kt-inside-inner-col">`, colAttrs["uniqueID"], i+1) +
			"\n" + strings.Join(ws, "\n\n") + "\n</div></div>"
		cols = append(cols, block("kadence/column", colAttrs, inner))
	}

	open := `<div class="` + strings.TrimSpace("wp-block-kadence-rowlayout alignnone "+s.Settings.CSSClass) + `"` + sectionStyle(s.Settings) + ">"
	row := `<div class="kt-row-column-wrap kt-has-` + strconv.Itoa(len(s.Columns)) + `-columns">` + "\n" + strings.Join(cols, "\n\n") + "\n</div>"
	return block("kadence/rowlayout", attrs, open+"\n"+row+"\n</div>")
}

func kadenceWidget(w *pageport.Widget) string {
	uid := kadenceUniqueID(w.ID)
	switch p := w.Props.(type) {
	case pageport.HeadingProps:
		level := pageport.ClampHeadingLevel(p.Level)
		attrs := map[string]any{"uniqueID": uid, "level": level}
		if p.Align != "" {
			attrs["align"] = p.Align
		}
		if p.Color != "" {
			attrs["color"] = p.Color
		}
		tag := fmt.Sprintf("h%d", level)
		return block("kadence/advancedheading", attrs,
			"<"+tag+` class="kt-adv-heading`+uid+` wp-block-kadence-advancedheading" data-kb-block="kb-adv-heading`+uid+`"`+style("text-align", p.Align, "color", p.Color)+">"+html.EscapeString(p.Text)+"</"+tag+">")
	case pageport.ButtonProps:
		btn := map[string]any{"text": p.Text, "link": p.URL}
		if p.Background != "" {
			btn["background"] = p.Background
		}
		if p.Color != "" {
			btn["color"] = p.Color
		}
		attrs := map[string]any{"uniqueID": uid, "btns": []any{btn}}
		if p.Align != "" {
			attrs["hAlign"] = p.Align
		}
		return block("kadence/advancedbtn", attrs,
			`<div class="wp-block-kadence-advancedbtn kb-buttons-wrap kb-btns`+uid+`"><a class="kb-button kt-button button"`+attr("href", p.URL)+
				style("background-color", p.Background, "color", p.Color, "box-shadow", p.Shadow.CSS())+`><span class="kt-btn-inner-text">`+html.EscapeString(p.Text)+"</span></a></div>")
	case pageport.IconBoxProps:
		attrs := map[string]any{"uniqueID": uid, "title": p.Title, "contentText": p.Description}
		media := ""
		switch {
		case p.Image != "":
			attrs["mediaType"] = "image"
			attrs["mediaImage"] = []any{map[string]any{"url": p.Image}}
			media = `<div class="kt-blocks-info-box-media"><img` + attr("src", p.Image) + ` alt=""/></div>`
		case p.Icon != "":
			attrs["mediaType"] = "icon"
			attrs["mediaIcon"] = []any{map[string]any{"icon": p.Icon}}
			media = `<div class="kt-blocks-info-box-media"><i` + attr("class", p.Icon) + ` aria-hidden="true"></i></div>`
		}
		return block("kadence/infobox", attrs,
			`<div class="wp-block-kadence-infobox kt-info-box`+uid+`"><div class="kt-blocks-info-box-link-wrap">`+media+
				`<div class="kt-infobox-textcontent"><h3 class="kt-blocks-info-box-title">`+html.EscapeString(p.Title)+`</h3><p class="kt-blocks-info-box-text">`+html.EscapeString(p.Description)+"</p></div></div></div>")
	case pageport.TestimonialProps:
		item := map[string]any{"content": p.Content, "title": "", "name": p.Author, "occupation": p.Role}
		if p.Image != "" {
			item["url"] = p.Image
		}
		attrs := map[string]any{"uniqueID": uid, "itemsCount": 1, "testimonials": []any{item}}
		return block("kadence/testimonials", attrs,
			`<div class="wp-block-kadence-testimonials kt-blocks-testimonials-wrap`+uid+`"><div class="kt-testimonial-item-wrap"><div class="kt-testimonial-content">`+
				html.EscapeString(p.Content)+`</div><div class="kt-testimonial-name">`+html.EscapeString(p.Author)+`</div><div class="kt-testimonial-occupation">`+html.EscapeString(p.Role)+"</div></div></div>")
	case pageport.CounterProps:
		attrs := map[string]any{"uniqueID": uid, "start": 0, "end": p.End, "prefix": p.Prefix, "suffix": p.Suffix, "title": p.Title}
		return block("kadence/countup", attrs,
			`<div class="wp-block-kadence-countup kb-count-up-`+strings.TrimPrefix(uid, "_")+` kb-count-up"><div class="kb-count-up-process kb-count-up-number" data-start="0" data-end="`+strconv.Itoa(p.End)+`"`+
				attr("data-prefix", p.Prefix)+attr("data-suffix", p.Suffix)+`>`+html.EscapeString(counterText(p))+`</div><div class="kb-count-up-title">`+html.EscapeString(p.Title)+"</div></div>")
	case pageport.SpacerProps:
		attrs := map[string]any{"uniqueID": uid, "spacerHeight": p.Height, "dividerEnable": false}
		return block("kadence/spacer", attrs,
			`<div class="wp-block-kadence-spacer aligncenter kt-block-spacer`+uid+`"><div class="kt-block-spacer kt-block-spacer-halign-center"`+style("height", px(p.Height))+"></div></div>")
	case pageport.DividerProps:
		attrs := map[string]any{"uniqueID": uid, "spacerHeight": 20, "dividerEnable": true, "dividerStyle": firstStyle(p.Style), "dividerHeight": max(p.Weight, 1)}
		if p.Color != "" {
			attrs["dividerColor"] = p.Color
		}
		return block("kadence/spacer", attrs,
			`<div class="wp-block-kadence-spacer aligncenter kt-block-spacer`+uid+`"><div class="kt-block-spacer kt-block-spacer-halign-center"><hr class="kt-divider"`+style("border-top", dividerBorder(p))+"/></div></div>")
	}
	return gutenbergWidget(w)
}

func firstStyle(s string) string {
	if s == "" {
		return "solid"
	}
	return s
}
