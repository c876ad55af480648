package builder

import (
	"context"
	"fmt"
	"html"
	"strconv"

	"github.com/fwojciec/pageport"
)

var _ pageport.Builder = (*Bricks)(nil)

// BricksTemplatePath holds the importable Bricks template.
const BricksTemplatePath = "bricks-template.json"

// bricksElement is one entry of Bricks' flat element list. Parent is the
// parent's ID, or 0 at the top level.
type bricksElement struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Parent   any            `json:"parent"`
	Children []string       `json:"children"`
	Settings map[string]any `json:"settings"`
	Label    string         `json:"label,omitempty"`
}

type bricksTemplate struct {
	Title        string           `json:"title"`
	TemplateType string           `json:"templateType"`
	Content      []*bricksElement `json:"content"`
	PageSettings []any            `json:"pageSettings"`
	Version      string           `json:"version"`
}

// Bricks renders the document as a flat list of section, container, block
// and leaf elements linked by parent and children IDs.
type Bricks struct{}

// NewBricks creates a Bricks builder.
func NewBricks() *Bricks {
	return &Bricks{}
}

// ID returns BuilderBricks.
func (b *Bricks) ID() pageport.BuilderID {
	return pageport.BuilderBricks
}

// Generate writes bricks-template.json.
func (b *Bricks) Generate(ctx context.Context, in *pageport.BuildInput) ([]pageport.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tpl := bricksTemplate{
		Title:        title(in.Theme),
		TemplateType: "content",
		Content:      []*bricksElement{},
		PageSettings: []any{},
		Version:      "1.9",
	}
	for _, s := range sections(in) {
		tpl.Content = append(tpl.Content, bricksSection(s)...)
	}

	data, err := marshalJSON(tpl)
	if err != nil {
		return nil, err
	}
	files := []pageport.File{{Path: BricksTemplatePath, Group: pageport.GroupMarkup, Content: data}}
	return append(files, customAssets(in)...), nil
}

// Instructions explains how to import the template.
func (b *Bricks) Instructions() string {
	return `Bricks import

1. Activate the Bricks theme.
2. Go to Bricks > Templates and click Import. Choose bricks-template.json.
3. Edit a page with Bricks and insert the template from the template
   library, or copy its elements with right click > Copy.
4. Paste assets/custom.css into Bricks > Settings > Custom code if present.`
}

// bricksSection flattens a section into its elements, parents first.
func bricksSection(s *pageport.Section) []*bricksElement {
	st := s.Settings
	section := &bricksElement{
		ID:       shortID(s.ID),
		Name:     "section",
		Parent:   0,
		Settings: map[string]any{},
	}
	if st.Tag != "" && st.Tag != "section" && sectionTags[st.Tag] {
		section.Settings["tag"] = "custom"
		section.Settings["customTag"] = st.Tag
	}
	if st.Background != "" {
		section.Settings["_background"] = map[string]any{"color": bricksColor(st.Background)}
	}
	if st.TextColor != "" {
		section.Settings["_typography"] = map[string]any{"color": bricksColor(st.TextColor)}
	}
	if box := paddingBox(st.Padding); box != nil {
		section.Settings["_padding"] = map[string]any{
			"top":    strconv.Itoa(box["top"].(int)),
			"right":  strconv.Itoa(box["right"].(int)),
			"bottom": strconv.Itoa(box["bottom"].(int)),
			"left":   strconv.Itoa(box["left"].(int)),
		}
	}
	if st.CSSClass != "" {
		section.Settings["_cssClasses"] = st.CSSClass
	}
	if st.Shadow != nil {
		section.Settings["_boxShadow"] = map[string]any{
			"values": map[string]any{
				"offsetX": strconv.Itoa(st.Shadow.X),
				"offsetY": strconv.Itoa(st.Shadow.Y),
				"blur":    strconv.Itoa(st.Shadow.Blur),
				"spread":  strconv.Itoa(st.Shadow.Spread),
			},
			"color": bricksColor(st.Shadow.Color),
			"inset": st.Shadow.Inset,
		}
	}

	container := &bricksElement{
		ID:       shortID(s.ID + "/container"),
		Name:     "container",
		Parent:   section.ID,
		Settings: map[string]any{"_direction": "row"},
	}
	section.Children = []string{container.ID}

	out := []*bricksElement{section, container}
	for _, c := range s.Columns {
		col := &bricksElement{
			ID:       shortID(c.ID),
			Name:     "block",
			Parent:   container.ID,
			Children: []string{},
			Settings: map[string]any{"_width": strconv.Itoa(c.Size) + "%"},
		}
		container.Children = append(container.Children, col.ID)
		out = append(out, col)
		for _, w := range c.Widgets {
			el := bricksWidget(w)
			el.ID = shortID(w.ID)
			el.Parent = col.ID
			el.Children = []string{}
			col.Children = append(col.Children, el.ID)
			out = append(out, el)
		}
	}
	if container.Children == nil {
		container.Children = []string{}
	}
	return out
}

func bricksColor(hex string) map[string]any {
	return map[string]any{"hex": hex}
}

func bricksLink(u string) map[string]any {
	return map[string]any{"type": "external", "url": u}
}

func bricksWidget(w *pageport.Widget) *bricksElement {
	switch p := w.Props.(type) {
	case pageport.HeadingProps:
		s := map[string]any{"text": p.Text, "tag": fmt.Sprintf("h%d", pageport.ClampHeadingLevel(p.Level))}
		bricksTypography(s, p.Align, p.Color)
		return &bricksElement{Name: "heading", Settings: s}
	case pageport.TextProps:
		s := map[string]any{"text": "<p>" + p.HTML + "</p>"}
		bricksTypography(s, p.Align, p.Color)
		return &bricksElement{Name: "text", Settings: s}
	case pageport.ImageProps:
		s := map[string]any{"image": map[string]any{"url": p.Src, "external": true}, "altText": p.Alt}
		if p.Link != "" {
			s["link"] = bricksLink(p.Link)
		}
		return &bricksElement{Name: "image", Settings: s}
	case pageport.ButtonProps:
		s := map[string]any{"text": p.Text, "link": bricksLink(p.URL)}
		if p.Background != "" {
			s["_background"] = map[string]any{"color": bricksColor(p.Background)}
		}
		bricksTypography(s, p.Align, p.Color)
		return &bricksElement{Name: "button", Settings: s}
	case pageport.IconBoxProps:
		if p.Image != "" {
			return &bricksElement{Name: "text", Settings: map[string]any{"text": renderWidget(w)}}
		}
		s := map[string]any{"content": "<h3>" + html.EscapeString(p.Title) + "</h3><p>" + html.EscapeString(p.Description) + "</p>"}
		if p.Icon != "" {
			s["icon"] = map[string]any{"library": "fontawesomeSolid", "icon": p.Icon}
		}
		return &bricksElement{Name: "icon-box", Settings: s}
	case pageport.TestimonialProps:
		item := map[string]any{"content": p.Content, "name": p.Author, "title": p.Role}
		if p.Image != "" {
			item["image"] = map[string]any{"url": p.Image, "external": true}
		}
		return &bricksElement{Name: "testimonials", Settings: map[string]any{"items": []any{item}}}
	case pageport.CounterProps:
		return &bricksElement{Name: "counter", Settings: map[string]any{
			"countFrom": "0",
			"countTo":   strconv.Itoa(p.End),
			"prefix":    p.Prefix,
			"suffix":    p.Suffix,
		}, Label: p.Title}
	case pageport.VideoProps:
		switch p.Provider {
		case pageport.ProviderYouTube:
			return &bricksElement{Name: "video", Settings: map[string]any{"videoType": "youtube", "youTubeId": p.VideoID}}
		case pageport.ProviderVimeo:
			return &bricksElement{Name: "video", Settings: map[string]any{"videoType": "vimeo", "vimeoId": p.VideoID}}
		case pageport.ProviderSelf:
			return &bricksElement{Name: "video", Settings: map[string]any{"videoType": "file", "fileUrl": p.URL}}
		}
	case pageport.ListProps, pageport.QuoteProps:
		return &bricksElement{Name: "text", Settings: map[string]any{"text": renderWidget(w)}}
	case pageport.DividerProps:
		s := map[string]any{"style": firstStyle(p.Style), "height": strconv.Itoa(max(p.Weight, 1))}
		if p.Color != "" {
			s["color"] = bricksColor(p.Color)
		}
		return &bricksElement{Name: "divider", Settings: s}
	case pageport.SpacerProps:
		return &bricksElement{Name: "div", Settings: map[string]any{"_height": strconv.Itoa(p.Height)}, Label: "Spacer"}
	}
	return &bricksElement{Name: "code", Settings: map[string]any{"code": renderWidget(w), "executeCode": false}}
}

func bricksTypography(s map[string]any, align, color string) {
	t := map[string]any{}
	if align != "" {
		t["text-align"] = align
	}
	if color != "" {
		t["color"] = bricksColor(color)
	}
	if len(t) > 0 {
		s["_typography"] = t
	}
}
