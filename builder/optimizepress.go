package builder

import (
	"context"
	"fmt"

	"github.com/fwojciec/pageport"
)

var _ pageport.Builder = (*OptimizePress)(nil)

// OptimizePressPagePath holds the OptimizePress page tree.
const OptimizePressPagePath = "optimizepress-page.json"

type opNode struct {
	Type     string         `json:"type"`
	UUID     string         `json:"uuid"`
	Options  map[string]any `json:"options"`
	Children []*opNode      `json:"children"`
}

// OptimizePress renders the document as a nested page, section, row,
// column and element tree.
type OptimizePress struct{}

// NewOptimizePress creates an OptimizePress builder.
func NewOptimizePress() *OptimizePress {
	return &OptimizePress{}
}

// ID returns BuilderOptimizePress.
func (o *OptimizePress) ID() pageport.BuilderID {
	return pageport.BuilderOptimizePress
}

// Generate writes optimizepress-page.json.
func (o *OptimizePress) Generate(ctx context.Context, in *pageport.BuildInput) ([]pageport.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page := &opNode{Type: "page", UUID: shortID("page"), Options: map[string]any{}, Children: []*opNode{}}
	for _, s := range sections(in) {
		page.Children = append(page.Children, opSection(s))
	}

	data, err := marshalJSON(map[string]any{
		"title":   title(in.Theme),
		"version": "3",
		"data":    page,
	})
	if err != nil {
		return nil, err
	}
	files := []pageport.File{{Path: OptimizePressPagePath, Group: pageport.GroupMarkup, Content: data}}
	return append(files, customAssets(in)...), nil
}

// Instructions explains how to import the page.
func (o *OptimizePress) Instructions() string {
	return `OptimizePress import

1. Install and activate OptimizePress Builder.
2. Go to OptimizePress > Templates > Import and choose
   optimizepress-page.json.
3. Create a page from the imported template and publish it.
4. Add assets/custom.css under the page's Custom CSS settings if present.`
}

func opSection(s *pageport.Section) *opNode {
	st := s.Settings
	opts := map[string]any{}
	setIf(opts, "backgroundColor", st.Background)
	setIf(opts, "color", st.TextColor)
	setIf(opts, "padding", st.Padding)
	setIf(opts, "className", st.CSSClass)
	setIf(opts, "boxShadow", st.Shadow.CSS())
	if st.Tag != "" && sectionTags[st.Tag] {
		opts["htmlTag"] = st.Tag
	}

	row := &opNode{Type: "row", UUID: shortID(s.ID + "/row"), Options: map[string]any{}, Children: []*opNode{}}
	for _, c := range s.Columns {
		col := &opNode{Type: "column", UUID: shortID(c.ID), Options: map[string]any{"width": c.Size}, Children: []*opNode{}}
		for _, w := range c.Widgets {
			el := opElement(w)
			el.UUID = shortID(w.ID)
			el.Children = []*opNode{}
			col.Children = append(col.Children, el)
		}
		row.Children = append(row.Children, col)
	}
	return &opNode{Type: "section", UUID: shortID(s.ID), Options: opts, Children: []*opNode{row}}
}

func opElement(w *pageport.Widget) *opNode {
	opts := map[string]any{}
	switch p := w.Props.(type) {
	case pageport.HeadingProps:
		opts["text"] = p.Text
		opts["tag"] = fmt.Sprintf("h%d", pageport.ClampHeadingLevel(p.Level))
		setIf(opts, "textAlign", p.Align)
		setIf(opts, "color", p.Color)
		return &opNode{Type: "headline", Options: opts}
	case pageport.TextProps:
		opts["text"] = "<p>" + p.HTML + "</p>"
		setIf(opts, "textAlign", p.Align)
		setIf(opts, "color", p.Color)
		return &opNode{Type: "paragraph", Options: opts}
	case pageport.ImageProps:
		opts["src"] = p.Src
		setIf(opts, "alt", p.Alt)
		setIf(opts, "href", p.Link)
		if p.Width > 0 {
			opts["width"] = p.Width
		}
		return &opNode{Type: "image", Options: opts}
	case pageport.ButtonProps:
		opts["text"] = p.Text
		opts["href"] = p.URL
		setIf(opts, "align", p.Align)
		setIf(opts, "backgroundColor", p.Background)
		setIf(opts, "color", p.Color)
		setIf(opts, "boxShadow", p.Shadow.CSS())
		return &opNode{Type: "button", Options: opts}
	case pageport.IconBoxProps:
		opts["title"] = p.Title
		opts["text"] = p.Description
		setIf(opts, "icon", p.Icon)
		setIf(opts, "image", p.Image)
		return &opNode{Type: "feature-block", Options: opts}
	case pageport.TestimonialProps:
		opts["text"] = p.Content
		setIf(opts, "name", p.Author)
		setIf(opts, "title", p.Role)
		setIf(opts, "image", p.Image)
		return &opNode{Type: "testimonial", Options: opts}
	case pageport.CounterProps:
		opts["number"] = p.End
		setIf(opts, "prefix", p.Prefix)
		setIf(opts, "suffix", p.Suffix)
		setIf(opts, "title", p.Title)
		return &opNode{Type: "counter", Options: opts}
	case pageport.VideoProps:
		opts["url"] = p.URL
		opts["provider"] = p.Provider
		return &opNode{Type: "video", Options: opts}
	case pageport.ListProps:
		opts["items"] = p.Items
		opts["ordered"] = p.Ordered
		return &opNode{Type: "bullet-list", Options: opts}
	case pageport.DividerProps:
		opts["style"] = firstStyle(p.Style)
		opts["weight"] = max(p.Weight, 1)
		setIf(opts, "color", p.Color)
		return &opNode{Type: "divider", Options: opts}
	case pageport.SpacerProps:
		opts["height"] = p.Height
		return &opNode{Type: "spacer", Options: opts}
	}
	opts["html"] = renderWidget(w)
	return &opNode{Type: "custom-html", Options: opts}
}
