package goquery

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pageport"
	"golang.org/x/net/html"
)

// containerTags are generic wrappers that are descended into when no
// widget kind matches them.
var containerTags = map[string]bool{
	"div": true, "section": true, "article": true, "header": true, "footer": true,
	"main": true, "aside": true, "nav": true, "figure": true,
}

// skippedTags never produce widgets. Scripts and styles travel separately
// as custom assets.
var skippedTags = map[string]bool{
	"script": true, "style": true, "link": true, "meta": true, "noscript": true,
	"template": true, "title": true, "base": true,
}

var (
	digits        = regexp.MustCompile(`-?\d[\d,]*`)
	youTubeID     = regexp.MustCompile(`(?:youtube(?:-nocookie)?\.com/(?:embed/|watch\?v=|v/|shorts/)|youtu\.be/)([\w-]{6,})`)
	vimeoID       = regexp.MustCompile(`vimeo\.com/(?:video/)?(\d+)`)
	fontAwesome   = regexp.MustCompile(`\b(fa[srlbd]?|fa-solid|fa-regular|fa-brands|dashicons|bi|icon)\b`)
	headingLevels = map[string]int{"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6}
)

// Classify maps one element to widget props using a fixed priority ladder;
// the first rung that matches wins:
//
//	heading, paragraph, image, button, icon box, testimonial, counter,
//	video, list, quote, divider, spacer, raw HTML.
//
// It returns false for generic containers that match no rung; callers
// descend into those instead of emitting a widget. Every data source and
// builder shares this single ladder.
func Classify(sel *goquery.Selection) (pageport.Props, bool) {
	if sel.Length() == 0 || sel.Nodes[0].Type != html.ElementNode {
		return nil, false
	}
	tag := goquery.NodeName(sel)
	style := pageport.ParseInlineStyle(sel.AttrOr("style", ""))

	if level, ok := headingLevels[tag]; ok {
		return pageport.HeadingProps{
			Level: level,
			Text:  cleanText(sel.Text()),
			Align: alignOf(sel, style),
			Color: pageport.ColorOr(style["color"], ""),
		}, true
	}
	if tag == "p" {
		return pageport.TextProps{
			HTML:  innerHTML(sel),
			Align: alignOf(sel, style),
			Color: pageport.ColorOr(style["color"], ""),
		}, true
	}
	if tag == "img" {
		return imageProps(sel, ""), true
	}
	if tag == "a" && isLinkedImage(sel) {
		return imageProps(sel.Find("img").First(), sel.AttrOr("href", "")), true
	}
	if tag == "button" || hasClassLike(sel, "btn", "button") {
		return buttonProps(sel, style), true
	}
	if hasClassLike(sel, "icon-box", "iconbox", "feature", "service") {
		return iconBoxProps(sel), true
	}
	if hasClassLike(sel, "testimonial", "review") {
		return testimonialProps(sel), true
	}
	if isCounter(sel) {
		return counterProps(sel), true
	}
	if p, ok := videoProps(sel, tag); ok {
		return p, true
	}
	if tag == "ul" || tag == "ol" {
		return listProps(sel, tag == "ol"), true
	}
	if tag == "blockquote" {
		return quoteProps(sel), true
	}
	if tag == "hr" {
		return dividerProps(style), true
	}
	if hasClassLike(sel, "spacer") {
		return pageport.SpacerProps{Height: pageport.ParsePixels(style["height"], 50)}, true
	}
	if containerTags[tag] || skippedTags[tag] {
		return nil, false
	}
	return pageport.HTMLProps{HTML: outerHTML(sel)}, true
}

func imageProps(img *goquery.Selection, link string) pageport.ImageProps {
	style := pageport.ParseInlineStyle(img.AttrOr("style", ""))
	width := pageport.ParsePixels(img.AttrOr("width", ""), pageport.ParsePixels(style["width"], 0))
	height := pageport.ParsePixels(img.AttrOr("height", ""), pageport.ParsePixels(style["height"], 0))
	return pageport.ImageProps{
		Src:    img.AttrOr("src", ""),
		Alt:    img.AttrOr("alt", ""),
		Width:  width,
		Height: height,
		Link:   link,
	}
}

// isLinkedImage reports whether an anchor wraps a single image and no text.
func isLinkedImage(a *goquery.Selection) bool {
	children := a.Children()
	return children.Length() == 1 && goquery.NodeName(children) == "img" && cleanText(a.Text()) == ""
}

func buttonProps(sel *goquery.Selection, style map[string]string) pageport.ButtonProps {
	bg := style["background-color"]
	if bg == "" {
		bg = style["background"]
	}
	url := sel.AttrOr("href", "")
	if url == "" {
		url = sel.Find("a[href]").First().AttrOr("href", "")
	}
	return pageport.ButtonProps{
		Text:       cleanText(sel.Text()),
		URL:        url,
		Background: pageport.ColorOr(bg, ""),
		Color:      pageport.ColorOr(style["color"], ""),
		Align:      alignOf(sel, style),
		Shadow:     pageport.ParseShadow(style["box-shadow"]),
	}
}

func iconBoxProps(sel *goquery.Selection) pageport.IconBoxProps {
	p := pageport.IconBoxProps{
		Title:       cleanText(sel.Find("h1, h2, h3, h4, h5, h6, strong").First().Text()),
		Description: cleanText(sel.Find("p").First().Text()),
		Image:       sel.Find("img").First().AttrOr("src", ""),
	}
	sel.Find("i[class], span[class], svg[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class := s.AttrOr("class", "")
		if fontAwesome.MatchString(class) {
			p.Icon = class
			return false
		}
		return true
	})
	return p
}

func testimonialProps(sel *goquery.Selection) pageport.TestimonialProps {
	content := sel.Find("blockquote, q, .content, .text, p").First()
	return pageport.TestimonialProps{
		Content: cleanText(content.Text()),
		Author:  cleanText(sel.Find(".author, .name, cite, strong").First().Text()),
		Role:    cleanText(sel.Find(".role, .position, .job, .company").First().Text()),
		Image:   sel.Find("img").First().AttrOr("src", ""),
	}
}

var countAttrs = []string{"data-count", "data-target", "data-to"}

func isCounter(sel *goquery.Selection) bool {
	if hasClassLike(sel, "counter") {
		return true
	}
	for _, a := range countAttrs {
		if _, ok := sel.Attr(a); ok {
			return true
		}
	}
	return false
}

func counterProps(sel *goquery.Selection) pageport.CounterProps {
	var p pageport.CounterProps
	number := sel
	for _, a := range countAttrs {
		found := sel.Find("[" + a + "]").First()
		if _, ok := sel.Attr(a); ok {
			found = sel
		}
		if v, ok := found.Attr(a); ok {
			p.End = parseCount(v)
			number = found
			break
		}
	}

	text := cleanText(number.Text())
	if loc := digits.FindStringIndex(text); loc != nil {
		if p.End == 0 {
			p.End = parseCount(text[loc[0]:loc[1]])
		}
		p.Prefix = strings.TrimSpace(text[:loc[0]])
		p.Suffix = strings.TrimSpace(text[loc[1]:])
	}
	if title := sel.Find(".title, .label, .counter-title, p, span").Not("[data-count], [data-target], [data-to]").First(); title.Length() > 0 {
		if t := cleanText(title.Text()); t != text {
			p.Title = t
		}
	}
	return p
}

func parseCount(s string) int {
	m := digits.FindString(s)
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

func videoProps(sel *goquery.Selection, tag string) (pageport.VideoProps, bool) {
	switch tag {
	case "video":
		src := sel.AttrOr("src", "")
		if src == "" {
			src = sel.Find("source[src]").First().AttrOr("src", "")
		}
		return pageport.VideoProps{URL: src, Provider: pageport.ProviderSelf}, true
	case "iframe":
		src := sel.AttrOr("src", "")
		if p, ok := VideoFromURL(src); ok {
			return p, true
		}
	}
	return pageport.VideoProps{}, false
}

// VideoFromURL detects a hosted video provider by URL substring.
func VideoFromURL(u string) (pageport.VideoProps, bool) {
	lower := strings.ToLower(u)
	switch {
	case strings.Contains(lower, "youtube") || strings.Contains(lower, "youtu.be"):
		p := pageport.VideoProps{URL: u, Provider: pageport.ProviderYouTube}
		if m := youTubeID.FindStringSubmatch(u); m != nil {
			p.VideoID = m[1]
		}
		return p, true
	case strings.Contains(lower, "vimeo"):
		p := pageport.VideoProps{URL: u, Provider: pageport.ProviderVimeo}
		if m := vimeoID.FindStringSubmatch(u); m != nil {
			p.VideoID = m[1]
		}
		return p, true
	}
	return pageport.VideoProps{}, false
}

func listProps(sel *goquery.Selection, ordered bool) pageport.ListProps {
	var items []string
	sel.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		items = append(items, innerHTML(li))
	})
	return pageport.ListProps{Items: items, Ordered: ordered}
}

func quoteProps(sel *goquery.Selection) pageport.QuoteProps {
	citeSel := sel.Find("cite, footer").First()
	cite := cleanText(citeSel.Text())
	text := cleanText(sel.Clone().Find("cite, footer").Remove().End().Text())
	return pageport.QuoteProps{Text: text, Cite: cite}
}

func dividerProps(style map[string]string) pageport.DividerProps {
	p := pageport.DividerProps{Style: "solid", Weight: 1}
	for _, key := range []string{"border-top", "border"} {
		v, ok := style[key]
		if !ok {
			continue
		}
		for _, tok := range strings.Fields(v) {
			switch tok {
			case "solid", "dashed", "dotted", "double":
				p.Style = tok
				continue
			}
			if n := pageport.ParsePixels(tok, -1); n >= 0 {
				p.Weight = n
				continue
			}
			if c, ok := pageport.NormalizeColor(tok); ok {
				p.Color = c
			}
		}
		break
	}
	if v := style["border-top-style"]; v != "" {
		p.Style = v
	}
	if v := style["border-top-color"]; v != "" {
		p.Color = pageport.ColorOr(v, p.Color)
	}
	if v := style["border-top-width"]; v != "" {
		p.Weight = pageport.ParsePixels(v, p.Weight)
	}
	if p.Color == "" {
		p.Color = pageport.ColorOr(style["color"], "")
	}
	return p
}

// hasClassLike reports whether any class token contains one of the fragments.
func hasClassLike(sel *goquery.Selection, fragments ...string) bool {
	class, ok := sel.Attr("class")
	if !ok {
		return false
	}
	for _, token := range strings.Fields(strings.ToLower(class)) {
		for _, f := range fragments {
			if strings.Contains(token, f) {
				return true
			}
		}
	}
	return false
}

func alignOf(sel *goquery.Selection, style map[string]string) string {
	if a := pageport.NormalizeAlign(style["text-align"]); a != "" {
		return a
	}
	return pageport.NormalizeAlign(sel.AttrOr("align", ""))
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func innerHTML(sel *goquery.Selection) string {
	h, err := sel.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(h)
}

func outerHTML(sel *goquery.Selection) string {
	h, err := goquery.OuterHtml(sel)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(h)
}
