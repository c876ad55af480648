package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/fwojciec/pageport"
)

var _ pageport.Builder = (*Gutenberg)(nil)

// GutenbergContentPath holds the serialized block markup.
const GutenbergContentPath = "content.html"

// Gutenberg renders the document as comment-delimited core blocks.
type Gutenberg struct{}

// NewGutenberg creates a Gutenberg builder.
func NewGutenberg() *Gutenberg {
	return &Gutenberg{}
}

// ID returns BuilderGutenberg.
func (g *Gutenberg) ID() pageport.BuilderID {
	return pageport.BuilderGutenberg
}

// Generate writes content.html and an importable export.xml.
func (g *Gutenberg) Generate(ctx context.Context, in *pageport.BuildInput) ([]pageport.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var parts []string
	for _, s := range sections(in) {
		parts = append(parts, gutenbergSection(s, gutenbergWidget))
	}
	content := strings.Join(parts, "\n\n")
	if content != "" {
		content += "\n"
	}

	xml, err := wxr(in.Theme, content)
	if err != nil {
		return nil, err
	}

	files := []pageport.File{
		{Path: GutenbergContentPath, Group: pageport.GroupMarkup, Content: []byte(content)},
		{Path: WXRPath, Group: pageport.GroupMarkup, Content: xml},
	}
	return append(files, customAssets(in)...), nil
}

// Instructions explains how to import the blocks.
func (g *Gutenberg) Instructions() string {
	return `Gutenberg (block editor) import

1. In WordPress, go to Tools > Import > WordPress and upload export.xml.
   The page is created as a draft.
2. Alternatively, open a page in the block editor, switch to the Code editor
   (Ctrl+Shift+Alt+M) and paste the contents of content.html.
3. Add assets/custom.css under Appearance > Customize > Additional CSS and
   load assets/custom.js with your theme, if present.
4. Upload any images listed in reports/asset-embedding.txt to
   wp-content/uploads/pageport/.`
}

// blockAttrs serializes block attributes the way the block editor does:
// markup characters and double hyphens are unicode-escaped so the JSON
// cannot end the comment.
func blockAttrs(attrs map[string]any) string {
	data, err := json.Marshal(attrs)
	if err != nil {
		return ""
	}
	return strings.ReplaceAll(string(data), "--", `\u002d\u002d`)
}

// block wraps inner markup in a block comment. The "core/" namespace is
// implied and dropped.
func block(name string, attrs map[string]any, inner string) string {
	name = strings.TrimPrefix(name, "core/")
	open := "<!-- wp:" + name
	if len(attrs) > 0 {
		if a := blockAttrs(attrs); a != "" {
			open += " " + a
		}
	}
	return open + " -->\n" + inner + "\n<!-- /wp:" + name + " -->"
}

// colorStyle returns the style attribute object for text and background
// colors, or nil when both are empty.
func colorStyle(text, background string) map[string]any {
	c := map[string]any{}
	if text != "" {
		c["text"] = text
	}
	if background != "" {
		c["background"] = background
	}
	if len(c) == 0 {
		return nil
	}
	return map[string]any{"color": c}
}

func classAttr(classes ...string) string {
	var kept []string
	for _, c := range classes {
		if c != "" {
			kept = append(kept, c)
		}
	}
	return attr("class", strings.Join(kept, " "))
}

func alignClass(align string) string {
	if align == "" {
		return ""
	}
	return "has-text-align-" + align
}

// gutenbergSection renders a section. Plain single-column sections emit
// their widgets directly; styled ones are wrapped in a group; multi-column
// sections become a columns block.
func gutenbergSection(s *pageport.Section, widget func(*pageport.Widget) string) string {
	var inner string
	if len(s.Columns) > 1 {
		var cols []string
		for _, c := range s.Columns {
			width := strconv.Itoa(c.Size) + "%"
			var ws []string
			for _, w := range c.Widgets {
				ws = append(ws, widget(w))
			}
			cols = append(cols, block("core/column", map[string]any{"width": width},
				`<div class="wp-block-column" style="flex-basis:`+width+`">`+"\n"+strings.Join(ws, "\n\n")+"\n</div>"))
		}
		inner = block("core/columns", nil, `<div class="wp-block-columns">`+"\n"+strings.Join(cols, "\n\n")+"\n</div>")
	} else {
		var ws []string
		for _, w := range widgets(s) {
			ws = append(ws, widget(w))
		}
		inner = strings.Join(ws, "\n\n")
	}

	st := s.Settings
	if st.Background == "" && st.TextColor == "" && st.Padding == "" && st.CSSClass == "" && st.Shadow == nil {
		return inner
	}

	tag := st.Tag
	if !sectionTags[tag] {
		tag = "div"
	}
	attrs := map[string]any{}
	if tag != "div" {
		attrs["tagName"] = tag
	}
	if st.CSSClass != "" {
		attrs["className"] = st.CSSClass
	}
	if cs := colorStyle(st.TextColor, st.Background); cs != nil {
		attrs["style"] = cs
	}
	open := "<" + tag + classAttr("wp-block-group", st.CSSClass) + sectionStyle(st) + ">"
	return block("core/group", attrs, open+"\n"+inner+"\n</"+tag+">")
}

// gutenbergWidget maps one widget to a core block. Kinds without a core
// equivalent become html blocks.
func gutenbergWidget(w *pageport.Widget) string {
	switch p := w.Props.(type) {
	case pageport.HeadingProps:
		level := pageport.ClampHeadingLevel(p.Level)
		attrs := map[string]any{}
		if level != 2 {
			attrs["level"] = level
		}
		if p.Align != "" {
			attrs["textAlign"] = p.Align
		}
		if cs := colorStyle(p.Color, ""); cs != nil {
			attrs["style"] = cs
		}
		tag := fmt.Sprintf("h%d", level)
		return block("core/heading", attrs, "<"+tag+classAttr(alignClass(p.Align))+style("color", p.Color)+">"+html.EscapeString(p.Text)+"</"+tag+">")
	case pageport.TextProps:
		attrs := map[string]any{}
		if p.Align != "" {
			attrs["align"] = p.Align
		}
		if cs := colorStyle(p.Color, ""); cs != nil {
			attrs["style"] = cs
		}
		return block("core/paragraph", attrs, "<p"+classAttr(alignClass(p.Align))+style("color", p.Color)+">"+p.HTML+"</p>")
	case pageport.ImageProps:
		attrs := map[string]any{}
		if p.Width > 0 {
			attrs["width"] = p.Width
		}
		if p.Height > 0 {
			attrs["height"] = p.Height
		}
		if p.Link != "" {
			attrs["linkDestination"] = "custom"
		}
		img := "<img" + attr("src", p.Src) + ` alt="` + html.EscapeString(p.Alt) + `"/>`
		if p.Link != "" {
			img = "<a" + attr("href", p.Link) + ">" + img + "</a>"
		}
		return block("core/image", attrs, `<figure class="wp-block-image">`+img+"</figure>")
	case pageport.ButtonProps:
		attrs := map[string]any{}
		if cs := colorStyle(p.Color, p.Background); cs != nil {
			attrs["style"] = cs
		}
		link := `<a class="wp-block-button__link wp-element-button"` + attr("href", p.URL) +
			style("color", p.Color, "background-color", p.Background, "box-shadow", p.Shadow.CSS()) + ">" + html.EscapeString(p.Text) + "</a>"
		button := block("core/button", attrs, `<div class="wp-block-button">`+link+"</div>")
		var outer map[string]any
		if p.Align != "" {
			outer = map[string]any{"layout": map[string]any{"type": "flex", "justifyContent": p.Align}}
		}
		return block("core/buttons", outer, `<div class="wp-block-buttons">`+"\n"+button+"\n</div>")
	case pageport.IconBoxProps:
		var parts []string
		switch {
		case p.Image != "":
			parts = append(parts, gutenbergWidget(pageport.NewWidget(w.ID, pageport.ImageProps{Src: p.Image})))
		case p.Icon != "":
			parts = append(parts, block("core/html", nil, "<i"+attr("class", p.Icon)+` aria-hidden="true"></i>`))
		}
		parts = append(parts, gutenbergWidget(pageport.NewWidget(w.ID, pageport.HeadingProps{Level: 3, Text: p.Title})))
		if p.Description != "" {
			parts = append(parts, gutenbergWidget(pageport.NewWidget(w.ID, pageport.TextProps{HTML: html.EscapeString(p.Description)})))
		}
		return block("core/group", map[string]any{"className": "icon-box"},
			`<div class="wp-block-group icon-box">`+"\n"+strings.Join(parts, "\n\n")+"\n</div>")
	case pageport.TestimonialProps:
		cite := p.Author
		if p.Role != "" {
			cite = strings.TrimPrefix(cite+", "+p.Role, ", ")
		}
		inner := `<blockquote class="wp-block-quote testimonial"><p>` + html.EscapeString(p.Content) + "</p>"
		if cite != "" {
			inner += "<cite>" + html.EscapeString(cite) + "</cite>"
		}
		return block("core/quote", map[string]any{"className": "testimonial"}, inner+"</blockquote>")
	case pageport.VideoProps:
		switch p.Provider {
		case pageport.ProviderYouTube, pageport.ProviderVimeo:
			u := p.URL
			if p.VideoID != "" {
				u = videoEmbedURL(p)
			}
			attrs := map[string]any{"url": u, "type": "video", "providerNameSlug": p.Provider}
			return block("core/embed", attrs,
				`<figure class="wp-block-embed is-type-video is-provider-`+p.Provider+` wp-block-embed-`+p.Provider+`"><div class="wp-block-embed__wrapper">`+"\n"+html.EscapeString(u)+"\n</div></figure>")
		case pageport.ProviderSelf:
			return block("core/video", nil, `<figure class="wp-block-video"><video controls`+attr("src", p.URL)+`></video></figure>`)
		}
		return block("core/html", nil, renderWidget(w))
	case pageport.ListProps:
		var attrs map[string]any
		tag := "ul"
		if p.Ordered {
			attrs = map[string]any{"ordered": true}
			tag = "ol"
		}
		var items strings.Builder
		for _, item := range p.Items {
			items.WriteString("<li>" + item + "</li>")
		}
		return block("core/list", attrs, "<"+tag+` class="wp-block-list">`+items.String()+"</"+tag+">")
	case pageport.QuoteProps:
		inner := `<blockquote class="wp-block-quote"><p>` + html.EscapeString(p.Text) + "</p>"
		if p.Cite != "" {
			inner += "<cite>" + html.EscapeString(p.Cite) + "</cite>"
		}
		return block("core/quote", nil, inner+"</blockquote>")
	case pageport.DividerProps:
		var attrs map[string]any
		if cs := colorStyle("", p.Color); cs != nil {
			attrs = map[string]any{"style": cs}
		}
		return block("core/separator", attrs, `<hr class="wp-block-separator has-alpha-channel-opacity"`+style("border-top", dividerBorder(p))+"/>")
	case pageport.SpacerProps:
		h := px(p.Height)
		return block("core/spacer", map[string]any{"height": h}, `<div style="height:`+h+`" aria-hidden="true" class="wp-block-spacer"></div>`)
	}
	return block("core/html", nil, renderWidget(w))
}
