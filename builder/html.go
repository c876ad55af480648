package builder

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/fwojciec/pageport"
)

// sectionTags are the wrapper tags a section may keep.
var sectionTags = map[string]bool{
	"section": true, "header": true, "footer": true, "main": true,
	"article": true, "aside": true, "nav": true, "div": true,
}

// style renders a style attribute from property/value pairs, skipping
// empty values. It returns "" when nothing remains.
func style(pairs ...string) string {
	decls := declarations(pairs...)
	if decls == "" {
		return ""
	}
	return ` style="` + html.EscapeString(decls) + `"`
}

// declarations joins property/value pairs into CSS declarations, skipping
// empty values.
func declarations(pairs ...string) string {
	var decls []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			decls = append(decls, pairs[i]+": "+pairs[i+1])
		}
	}
	return strings.Join(decls, "; ")
}

func attr(name, value string) string {
	if value == "" {
		return ""
	}
	return " " + name + `="` + html.EscapeString(value) + `"`
}

func px(n int) string {
	return strconv.Itoa(n) + "px"
}

// videoEmbedURL returns the player URL for hosted providers.
func videoEmbedURL(p pageport.VideoProps) string {
	switch {
	case p.Provider == pageport.ProviderYouTube && p.VideoID != "":
		return "https://www.youtube.com/embed/" + p.VideoID
	case p.Provider == pageport.ProviderVimeo && p.VideoID != "":
		return "https://player.vimeo.com/video/" + p.VideoID
	}
	return p.URL
}

func counterText(p pageport.CounterProps) string {
	return p.Prefix + strconv.Itoa(p.End) + p.Suffix
}

// renderWidget returns self-contained HTML for one widget.
func renderWidget(w *pageport.Widget) string {
	switch p := w.Props.(type) {
	case pageport.HeadingProps:
		level := pageport.ClampHeadingLevel(p.Level)
		return fmt.Sprintf("<h%d%s>%s</h%d>", level, style("text-align", p.Align, "color", p.Color), html.EscapeString(p.Text), level)
	case pageport.TextProps:
		return "<p" + style("text-align", p.Align, "color", p.Color) + ">" + p.HTML + "</p>"
	case pageport.ImageProps:
		img := "<img" + attr("src", p.Src) + ` alt="` + html.EscapeString(p.Alt) + `"`
		if p.Width > 0 {
			img += attr("width", strconv.Itoa(p.Width))
		}
		if p.Height > 0 {
			img += attr("height", strconv.Itoa(p.Height))
		}
		img += ">"
		if p.Link != "" {
			return "<a" + attr("href", p.Link) + ">" + img + "</a>"
		}
		return img
	case pageport.ButtonProps:
		a := `<a class="button"` + attr("href", p.URL) + style("background-color", p.Background, "color", p.Color, "box-shadow", p.Shadow.CSS()) + ">" + html.EscapeString(p.Text) + "</a>"
		if p.Align != "" {
			return "<div" + style("text-align", p.Align) + ">" + a + "</div>"
		}
		return a
	case pageport.IconBoxProps:
		var b strings.Builder
		b.WriteString(`<div class="icon-box">`)
		switch {
		case p.Image != "":
			b.WriteString("<img" + attr("src", p.Image) + ` alt="">`)
		case p.Icon != "":
			b.WriteString("<i" + attr("class", p.Icon) + ` aria-hidden="true"></i>`)
		}
		b.WriteString("<h3>" + html.EscapeString(p.Title) + "</h3>")
		if p.Description != "" {
			b.WriteString("<p>" + html.EscapeString(p.Description) + "</p>")
		}
		b.WriteString("</div>")
		return b.String()
	case pageport.TestimonialProps:
		var b strings.Builder
		b.WriteString(`<figure class="testimonial"><blockquote><p>` + html.EscapeString(p.Content) + "</p></blockquote>")
		if p.Author != "" || p.Role != "" || p.Image != "" {
			b.WriteString("<figcaption>")
			if p.Image != "" {
				b.WriteString("<img" + attr("src", p.Image) + ` alt="">`)
			}
			b.WriteString("<cite>" + html.EscapeString(p.Author) + "</cite>")
			if p.Role != "" {
				b.WriteString("<span>" + html.EscapeString(p.Role) + "</span>")
			}
			b.WriteString("</figcaption>")
		}
		b.WriteString("</figure>")
		return b.String()
	case pageport.CounterProps:
		out := `<div class="counter"><span class="counter-number"` + attr("data-count", strconv.Itoa(p.End)) + ">" + html.EscapeString(counterText(p)) + "</span>"
		if p.Title != "" {
			out += `<span class="counter-title">` + html.EscapeString(p.Title) + "</span>"
		}
		return out + "</div>"
	case pageport.VideoProps:
		if p.Provider == pageport.ProviderSelf {
			return "<video" + attr("src", p.URL) + " controls></video>"
		}
		return "<iframe" + attr("src", videoEmbedURL(p)) + ` allowfullscreen loading="lazy"></iframe>`
	case pageport.ListProps:
		tag := "ul"
		if p.Ordered {
			tag = "ol"
		}
		var b strings.Builder
		b.WriteString("<" + tag + ">")
		for _, item := range p.Items {
			b.WriteString("<li>" + item + "</li>")
		}
		b.WriteString("</" + tag + ">")
		return b.String()
	case pageport.QuoteProps:
		out := "<blockquote><p>" + html.EscapeString(p.Text) + "</p>"
		if p.Cite != "" {
			out += "<cite>" + html.EscapeString(p.Cite) + "</cite>"
		}
		return out + "</blockquote>"
	case pageport.DividerProps:
		return "<hr" + style("border-top", dividerBorder(p)) + ">"
	case pageport.SpacerProps:
		return "<div" + style("height", px(p.Height)) + ` aria-hidden="true"></div>`
	case pageport.HTMLProps:
		return p.HTML
	}
	return ""
}

func dividerBorder(p pageport.DividerProps) string {
	weight := p.Weight
	if weight <= 0 {
		weight = 1
	}
	s := p.Style
	if s == "" {
		s = "solid"
	}
	return strings.TrimSpace(px(weight) + " " + s + " " + p.Color)
}

// renderSection renders a section as plain layout markup: a wrapper, a flex
// row and one block per column.
func renderSection(s *pageport.Section, prefix string) string {
	tag := s.Settings.Tag
	if !sectionTags[tag] {
		tag = "section"
	}
	class := strings.TrimSpace(prefix + "-section " + s.Settings.CSSClass)

	var b strings.Builder
	b.WriteString("<" + tag + attr("id", s.ID) + attr("class", class) + sectionStyle(s.Settings) + ">\n")
	b.WriteString(`<div class="` + prefix + `-row">` + "\n")
	for _, c := range s.Columns {
		b.WriteString(`<div class="` + prefix + `-column"` + style("flex-basis", strconv.Itoa(c.Size)+"%") + ">\n")
		for _, w := range c.Widgets {
			b.WriteString(renderWidget(w) + "\n")
		}
		b.WriteString("</div>\n")
	}
	b.WriteString("</div>\n")
	b.WriteString("</" + tag + ">\n")
	return b.String()
}

func sectionStyle(s pageport.SectionSettings) string {
	return style(
		"background-color", s.Background,
		"color", s.TextColor,
		"padding", s.Padding,
		"box-shadow", s.Shadow.CSS(),
	)
}

// renderDocument renders every section in order.
func renderDocument(in *pageport.BuildInput, prefix string) string {
	var b strings.Builder
	for _, s := range sections(in) {
		b.WriteString(renderSection(s, prefix))
	}
	return b.String()
}

// escapeBrackets turns square brackets into entities so rendered text is
// never read as a shortcode.
func escapeBrackets(s string) string {
	return strings.NewReplacer("[", "&#91;", "]", "&#93;").Replace(s)
}
