package builder

import (
	"context"
	"strings"

	"github.com/fwojciec/pageport"
)

var _ pageport.Builder = (*Elementor)(nil)

// ElementorTemplatePath holds the importable template.
const ElementorTemplatePath = "elementor-template.json"

// elementorElement is one node of an Elementor template tree.
type elementorElement struct {
	ID         string              `json:"id"`
	ElType     string              `json:"elType"`
	IsInner    bool                `json:"isInner"`
	Settings   map[string]any      `json:"settings"`
	Elements   []*elementorElement `json:"elements"`
	WidgetType string              `json:"widgetType,omitempty"`
}

type elementorTemplate struct {
	Version      string              `json:"version"`
	Title        string              `json:"title"`
	Type         string              `json:"type"`
	Content      []*elementorElement `json:"content"`
	PageSettings []any               `json:"page_settings"`
}

// elementorWidgetFunc maps a widget to an Elementor widget type and its
// settings.
type elementorWidgetFunc func(w *pageport.Widget) (string, map[string]any)

// Elementor renders the document as an Elementor section/column/widget tree.
type Elementor struct{}

// NewElementor creates an Elementor builder.
func NewElementor() *Elementor {
	return &Elementor{}
}

// ID returns BuilderElementor.
func (e *Elementor) ID() pageport.BuilderID {
	return pageport.BuilderElementor
}

// Generate writes elementor-template.json.
func (e *Elementor) Generate(ctx context.Context, in *pageport.BuildInput) ([]pageport.File, error) {
	return elementorFiles(ctx, in, ElementorTemplatePath, elementorWidget)
}

// Instructions explains how to import the template.
func (e *Elementor) Instructions() string {
	return `Elementor import

1. Install and activate Elementor.
2. Go to Templates > Saved Templates and click Import Templates.
3. Choose elementor-template.json and import it.
4. Create a page, edit it with Elementor, open the template library
   (folder icon) and insert the imported template from My Templates.
5. Paste assets/custom.css into Site Settings > Custom CSS if present.`
}

func elementorFiles(ctx context.Context, in *pageport.BuildInput, path string, widget elementorWidgetFunc) ([]pageport.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tpl := elementorTemplate{
		Version:      "0.4",
		Title:        title(in.Theme),
		Type:         "page",
		Content:      []*elementorElement{},
		PageSettings: []any{},
	}
	for _, s := range sections(in) {
		tpl.Content = append(tpl.Content, elementorSection(s, widget))
	}

	data, err := marshalJSON(tpl)
	if err != nil {
		return nil, err
	}
	files := []pageport.File{{Path: path, Group: pageport.GroupMarkup, Content: data}}
	return append(files, customAssets(in)...), nil
}

func elementorSection(s *pageport.Section, widget elementorWidgetFunc) *elementorElement {
	settings := map[string]any{"layout": "boxed"}
	st := s.Settings
	if st.Tag != "" && st.Tag != "div" && sectionTags[st.Tag] {
		settings["html_tag"] = st.Tag
	}
	if st.CSSClass != "" {
		settings["css_classes"] = st.CSSClass
	}
	if st.Background != "" {
		settings["background_background"] = "classic"
		settings["background_color"] = st.Background
	}
	if st.TextColor != "" {
		settings["color_text"] = st.TextColor
	}
	if box := paddingBox(st.Padding); box != nil {
		settings["padding"] = box
	}
	if st.Shadow != nil {
		settings["box_shadow_box_shadow_type"] = "yes"
		settings["box_shadow_box_shadow"] = elementorShadow(st.Shadow)
	}

	section := &elementorElement{
		ID:       shortID(s.ID),
		ElType:   "section",
		Settings: settings,
		Elements: []*elementorElement{},
	}
	for _, c := range s.Columns {
		col := &elementorElement{
			ID:       shortID(c.ID),
			ElType:   "column",
			Settings: map[string]any{"_column_size": c.Size},
			Elements: []*elementorElement{},
		}
		for _, w := range c.Widgets {
			kind, ws := widget(w)
			col.Elements = append(col.Elements, &elementorElement{
				ID:         shortID(w.ID),
				ElType:     "widget",
				WidgetType: kind,
				Settings:   ws,
				Elements:   []*elementorElement{},
			})
		}
		section.Elements = append(section.Elements, col)
	}
	return section
}

func elementorShadow(s *pageport.Shadow) map[string]any {
	return map[string]any{
		"horizontal": s.X,
		"vertical":   s.Y,
		"blur":       s.Blur,
		"spread":     s.Spread,
		"color":      s.Color,
	}
}

func elementorURL(u string) map[string]any {
	return map[string]any{"url": u, "is_external": "", "nofollow": ""}
}

func elementorSize(n int) map[string]any {
	return map[string]any{"unit": "px", "size": n}
}

// paddingBox converts a CSS padding shorthand in pixels to Elementor's
// dimensions object. It returns nil when any value is not in pixels.
func paddingBox(css string) map[string]any {
	parts := strings.Fields(css)
	if len(parts) == 0 || len(parts) > 4 {
		return nil
	}
	vals := make([]int, len(parts))
	for i, p := range parts {
		v := pageport.ParsePixels(p, -1)
		if v < 0 {
			return nil
		}
		vals[i] = v
	}
	var top, right, bottom, left int
	switch len(vals) {
	case 1:
		top, right, bottom, left = vals[0], vals[0], vals[0], vals[0]
	case 2:
		top, right, bottom, left = vals[0], vals[1], vals[0], vals[1]
	case 3:
		top, right, bottom, left = vals[0], vals[1], vals[2], vals[1]
	case 4:
		top, right, bottom, left = vals[0], vals[1], vals[2], vals[3]
	}
	return map[string]any{
		"unit":     "px",
		"top":      top,
		"right":    right,
		"bottom":   bottom,
		"left":     left,
		"isLinked": top == right && right == bottom && bottom == left,
	}
}

func elementorWidget(w *pageport.Widget) (string, map[string]any) {
	switch p := w.Props.(type) {
	case pageport.HeadingProps:
		s := map[string]any{
			"title":       p.Text,
			"header_size": "h" + string(rune('0'+pageport.ClampHeadingLevel(p.Level))),
		}
		if p.Align != "" {
			s["align"] = p.Align
		}
		if p.Color != "" {
			s["title_color"] = p.Color
		}
		return "heading", s
	case pageport.TextProps:
		s := map[string]any{"editor": "<p>" + p.HTML + "</p>"}
		if p.Align != "" {
			s["align"] = p.Align
		}
		if p.Color != "" {
			s["text_color"] = p.Color
		}
		return "text-editor", s
	case pageport.ImageProps:
		s := map[string]any{"image": map[string]any{"url": p.Src, "id": "", "alt": p.Alt}}
		if p.Link != "" {
			s["link_to"] = "custom"
			s["link"] = elementorURL(p.Link)
		}
		if p.Width > 0 {
			s["width"] = elementorSize(p.Width)
		}
		return "image", s
	case pageport.ButtonProps:
		s := map[string]any{"text": p.Text, "link": elementorURL(p.URL)}
		if p.Align != "" {
			s["align"] = p.Align
		}
		if p.Background != "" {
			s["background_color"] = p.Background
		}
		if p.Color != "" {
			s["button_text_color"] = p.Color
		}
		if p.Shadow != nil {
			s["button_box_shadow_box_shadow_type"] = "yes"
			s["button_box_shadow_box_shadow"] = elementorShadow(p.Shadow)
		}
		return "button", s
	case pageport.IconBoxProps:
		if p.Image != "" {
			return "image-box", map[string]any{
				"image":            map[string]any{"url": p.Image, "id": ""},
				"title_text":       p.Title,
				"description_text": p.Description,
			}
		}
		return "icon-box", map[string]any{
			"selected_icon":    map[string]any{"value": p.Icon, "library": iconLibrary(p.Icon)},
			"title_text":       p.Title,
			"description_text": p.Description,
		}
	case pageport.TestimonialProps:
		s := map[string]any{
			"testimonial_content": p.Content,
			"testimonial_name":    p.Author,
			"testimonial_job":     p.Role,
		}
		if p.Image != "" {
			s["testimonial_image"] = map[string]any{"url": p.Image, "id": ""}
		}
		return "testimonial", s
	case pageport.CounterProps:
		return "counter", map[string]any{
			"starting_number": 0,
			"ending_number":   p.End,
			"prefix":          p.Prefix,
			"suffix":          p.Suffix,
			"title":           p.Title,
		}
	case pageport.VideoProps:
		switch p.Provider {
		case pageport.ProviderYouTube:
			return "video", map[string]any{"video_type": "youtube", "youtube_url": p.URL}
		case pageport.ProviderVimeo:
			return "video", map[string]any{"video_type": "vimeo", "vimeo_url": p.URL}
		case pageport.ProviderSelf:
			return "video", map[string]any{"video_type": "hosted", "hosted_url": map[string]any{"url": p.URL, "id": ""}}
		}
		return "html", map[string]any{"html": renderWidget(w)}
	case pageport.ListProps:
		var items []any
		for _, item := range p.Items {
			items = append(items, map[string]any{"text": item, "_id": shortID(w.ID + item)})
		}
		return "icon-list", map[string]any{"icon_list": items}
	case pageport.QuoteProps:
		return "text-editor", map[string]any{"editor": renderWidget(w)}
	case pageport.DividerProps:
		s := map[string]any{"style": firstStyle(p.Style), "weight": elementorSize(max(p.Weight, 1))}
		if p.Color != "" {
			s["color"] = p.Color
		}
		return "divider", s
	case pageport.SpacerProps:
		return "spacer", map[string]any{"space": elementorSize(p.Height)}
	}
	return "html", map[string]any{"html": renderWidget(w)}
}

// iconLibrary guesses the icon set from the class list.
func iconLibrary(icon string) string {
	switch {
	case strings.Contains(icon, "fa-brands") || strings.Contains(icon, "fab "):
		return "fa-brands"
	case strings.Contains(icon, "fa-regular") || strings.Contains(icon, "far "):
		return "fa-regular"
	case strings.Contains(icon, "fa"):
		return "fa-solid"
	}
	return "svg"
}
