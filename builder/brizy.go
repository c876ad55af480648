package builder

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"

	"github.com/fwojciec/pageport"
)

var _ pageport.Builder = (*Brizy)(nil)

// BrizyPagePath holds the page envelope with the base64 editor data.
const BrizyPagePath = "brizy-page.json"

// brizyNode is one element of the Brizy editor tree.
type brizyNode struct {
	Type  string         `json:"type"`
	Value map[string]any `json:"value"`
}

// Brizy renders the document as a Brizy editor tree. The tree is encoded as
// JSON, then base64, inside a small page envelope.
type Brizy struct{}

// NewBrizy creates a Brizy builder.
func NewBrizy() *Brizy {
	return &Brizy{}
}

// ID returns BuilderBrizy.
func (b *Brizy) ID() pageport.BuilderID {
	return pageport.BuilderBrizy
}

// Generate writes brizy-page.json.
func (b *Brizy) Generate(ctx context.Context, in *pageport.BuildInput) ([]pageport.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := []*brizyNode{}
	for _, s := range sections(in) {
		items = append(items, brizySection(s))
	}
	tree, err := compactJSON(map[string]any{"items": items})
	if err != nil {
		return nil, err
	}

	page, err := marshalJSON(map[string]any{
		"title":   title(in.Theme),
		"slug":    slug(in.Theme),
		"version": version(in.Theme),
		"data":    base64.StdEncoding.EncodeToString([]byte(tree)),
	})
	if err != nil {
		return nil, err
	}

	files := []pageport.File{{Path: BrizyPagePath, Group: pageport.GroupMarkup, Content: page}}
	return append(files, customAssets(in)...), nil
}

// Instructions explains how to import the page.
func (b *Brizy) Instructions() string {
	return `Brizy import

1. Install and activate Brizy.
2. Create a page and edit it with Brizy.
3. Open the template library, choose Import and select brizy-page.json.
4. Add assets/custom.css under the page's Custom CSS settings if present.`
}

func brizyValue(id string, styles ...string) map[string]any {
	return map[string]any{"_id": shortID(id), "_styles": styles}
}

func brizySection(s *pageport.Section) *brizyNode {
	st := s.Settings
	item := brizyValue(s.ID+"/item", "section-item")
	if st.Background != "" {
		item["bgColorHex"] = st.Background
		item["bgColorOpacity"] = 1
	}
	if box := paddingBox(st.Padding); box != nil {
		item["paddingType"] = "ungrouped"
		item["paddingTop"] = box["top"]
		item["paddingRight"] = box["right"]
		item["paddingBottom"] = box["bottom"]
		item["paddingLeft"] = box["left"]
	}
	if st.CSSClass != "" {
		item["customClassName"] = st.CSSClass
	}
	if st.Shadow != nil {
		item["boxShadow"] = "on"
		item["boxShadowColorHex"] = st.Shadow.Color
		item["boxShadowBlur"] = st.Shadow.Blur
		item["boxShadowSpread"] = st.Shadow.Spread
		item["boxShadowHorizontal"] = st.Shadow.X
		item["boxShadowVertical"] = st.Shadow.Y
	}

	var cols []*brizyNode
	for _, c := range s.Columns {
		col := brizyValue(c.ID, "column")
		col["width"] = c.Size
		var wrappers []*brizyNode
		for _, w := range c.Widgets {
			wrappers = append(wrappers, brizyWrapper(w, st.TextColor))
		}
		col["items"] = nonNil(wrappers)
		cols = append(cols, &brizyNode{Type: "Column", Value: col})
	}
	row := brizyValue(s.ID+"/row", "row", "hide-row-borders", "padding-0")
	row["items"] = nonNil(cols)

	item["items"] = []*brizyNode{{Type: "Row", Value: row}}
	section := brizyValue(s.ID, "section")
	section["items"] = []*brizyNode{{Type: "SectionItem", Value: item}}
	return &brizyNode{Type: "Section", Value: section}
}

func nonNil(nodes []*brizyNode) []*brizyNode {
	if nodes == nil {
		return []*brizyNode{}
	}
	return nodes
}

// brizyWrapper wraps one widget in the Wrapper element Brizy places around
// every leaf.
func brizyWrapper(w *pageport.Widget, textColor string) *brizyNode {
	leaf := brizyWidget(w, textColor)
	wrapper := brizyValue(w.ID+"/wrapper", "wrapper", "wrapper--"+lowerFirst(leaf.Type))
	wrapper["items"] = []*brizyNode{leaf}
	return &brizyNode{Type: "Wrapper", Value: wrapper}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

func brizyWidget(w *pageport.Widget, textColor string) *brizyNode {
	v := brizyValue(w.ID)
	switch p := w.Props.(type) {
	case pageport.HeadingProps:
		level := pageport.ClampHeadingLevel(p.Level)
		v["_styles"] = []string{"richText"}
		v["text"] = fmt.Sprintf("<h%d%s>%s</h%d>", level, style("text-align", p.Align, "color", firstNonEmpty(p.Color, textColor)), html.EscapeString(p.Text), level)
		return &brizyNode{Type: "RichText", Value: v}
	case pageport.TextProps:
		v["_styles"] = []string{"richText"}
		v["text"] = "<p" + style("text-align", p.Align, "color", firstNonEmpty(p.Color, textColor)) + ">" + p.HTML + "</p>"
		return &brizyNode{Type: "RichText", Value: v}
	case pageport.ListProps, pageport.QuoteProps:
		v["_styles"] = []string{"richText"}
		v["text"] = renderWidget(w)
		return &brizyNode{Type: "RichText", Value: v}
	case pageport.ImageProps:
		v["_styles"] = []string{"image"}
		v["imageSrc"] = p.Src
		v["imageExtension"] = ""
		v["alt"] = p.Alt
		if p.Width > 0 {
			v["imageWidth"] = p.Width
		}
		if p.Height > 0 {
			v["imageHeight"] = p.Height
		}
		if p.Link != "" {
			v["linkType"] = "external"
			v["linkExternal"] = p.Link
		}
		return &brizyNode{Type: "Image", Value: v}
	case pageport.ButtonProps:
		v["_styles"] = []string{"button"}
		v["text"] = p.Text
		v["linkType"] = "external"
		v["linkExternal"] = p.URL
		if p.Background != "" {
			v["bgColorHex"] = p.Background
			v["bgColorOpacity"] = 1
		}
		if p.Color != "" {
			v["colorHex"] = p.Color
		}
		return &brizyNode{Type: "Button", Value: v}
	case pageport.CounterProps:
		v["_styles"] = []string{"counter"}
		v["start"] = 0
		v["end"] = p.End
		v["prefixLabel"] = p.Prefix
		v["suffixLabel"] = p.Suffix
		return &brizyNode{Type: "Counter", Value: v}
	case pageport.VideoProps:
		if p.Provider == pageport.ProviderYouTube || p.Provider == pageport.ProviderVimeo {
			v["_styles"] = []string{"video"}
			v["type"] = p.Provider
			v["video"] = p.URL
			return &brizyNode{Type: "Video", Value: v}
		}
	case pageport.DividerProps:
		v["_styles"] = []string{"line"}
		v["borderStyle"] = firstStyle(p.Style)
		v["borderWidth"] = max(p.Weight, 1)
		if p.Color != "" {
			v["borderColorHex"] = p.Color
		}
		return &brizyNode{Type: "Line", Value: v}
	case pageport.SpacerProps:
		v["_styles"] = []string{"spacer"}
		v["height"] = p.Height
		return &brizyNode{Type: "Spacer", Value: v}
	}
	v["_styles"] = []string{"embedCode"}
	v["code"] = renderWidget(w)
	return &brizyNode{Type: "EmbedCode", Value: v}
}
