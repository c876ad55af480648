package goquery

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pageport"
	"github.com/fwojciec/pageport/signature"
	xhtml "golang.org/x/net/html"
)

var _ pageport.Eliminator = (*Eliminator)(nil)

// rawTextTags hold text that is code or verbatim content, not shortcodes.
var rawTextTags = map[string]bool{
	"script": true, "style": true, "textarea": true, "code": true, "pre": true,
}

// Eliminator strips foreign platform syntax from markup, stylesheets and
// scripts using a shared signature registry.
type Eliminator struct {
	registry *signature.Registry
}

// NewEliminator creates an Eliminator. A nil registry uses signature.Default().
func NewEliminator(r *signature.Registry) *Eliminator {
	if r == nil {
		r = signature.Default()
	}
	return &Eliminator{registry: r}
}

// EliminateHTML runs three passes in order: shortcode tokens in text, foreign
// class tokens, then script, style and link nodes that reference a foreign
// platform. When nothing is removed the input is returned unchanged.
func (e *Eliminator) EliminateHTML(ctx context.Context, content string) (*pageport.EliminationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, pageport.Errorf(pageport.EINVALID, "failed to parse HTML: %v", err)
	}

	r := &pageport.EliminationResult{Target: "html", OriginalSize: int64(len(content))}

	e.stripShortcodes(doc.Selection, r)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.stripClasses(doc.Selection, r)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.stripAssetNodes(doc.Selection, r)
	e.warnReferences(doc.Selection, r)

	if len(r.RemovedItems) == 0 {
		r.CleanedContent = content
		r.NewSize = r.OriginalSize
		return r, nil
	}

	out, err := render(doc, isFragment(content))
	if err != nil {
		return nil, pageport.Errorf(pageport.EINTERNAL, "failed to render HTML: %v", err)
	}
	r.CleanedContent = out
	r.NewSize = int64(len(out))
	return r, nil
}

// EliminateCSS removes stylesheet lines that match a signature. A removed
// line that opens a rule takes the rest of that rule with it.
func (e *Eliminator) EliminateCSS(ctx context.Context, name, css string) (*pageport.EliminationResult, error) {
	return eliminateLines(ctx, name, css, e.registry.MatchCSSLine)
}

// EliminateJS removes script lines that match a signature. A removed line
// that opens a block takes the rest of that block with it.
func (e *Eliminator) EliminateJS(ctx context.Context, name, js string) (*pageport.EliminationResult, error) {
	return eliminateLines(ctx, name, js, e.registry.MatchJSLine)
}

func (e *Eliminator) stripShortcodes(root *goquery.Selection, r *pageport.EliminationResult) {
	var visit func(n *xhtml.Node)
	visit = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode && rawTextTags[n.Data] {
			return
		}
		if n.Type == xhtml.TextNode {
			n.Data = e.stripShortcodeText(n.Data, r)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	for _, n := range root.Nodes {
		visit(n)
	}
}

// stripShortcodeText removes shortcode tokens until none remain, so nested
// tokens exposed by an inner removal are caught too.
func (e *Eliminator) stripShortcodeText(text string, r *pageport.EliminationResult) string {
	for {
		tokens := signature.ShortcodePattern.FindAllString(text, -1)
		if len(tokens) == 0 {
			return text
		}
		for _, token := range tokens {
			family := "generic"
			if f, ok := e.registry.MatchShortcode(signature.ShortcodeTag(token)); ok {
				family = f.ID
			}
			r.RemovedItems = append(r.RemovedItems, pageport.RemovedItem{
				Family: family,
				Kind:   pageport.RemovedShortcode,
				Detail: token,
			})
		}
		text = signature.ShortcodePattern.ReplaceAllString(text, "")
	}
}

func (e *Eliminator) stripClasses(root *goquery.Selection, r *pageport.EliminationResult) {
	root.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		class := s.AttrOr("class", "")
		var kept []string
		for _, token := range strings.Fields(class) {
			if f, ok := e.registry.MatchClass(token); ok {
				r.RemovedItems = append(r.RemovedItems, pageport.RemovedItem{
					Family: f.ID,
					Kind:   pageport.RemovedClass,
					Detail: token,
				})
				continue
			}
			kept = append(kept, token)
		}
		switch {
		case len(kept) == 0:
			s.RemoveAttr("class")
		case len(kept) != len(strings.Fields(class)):
			s.SetAttr("class", strings.Join(kept, " "))
		}
	})
}

func (e *Eliminator) stripAssetNodes(root *goquery.Selection, r *pageport.EliminationResult) {
	root.Find("script").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			if f, _, ok := e.registry.MatchAsset(src); ok {
				r.RemovedItems = append(r.RemovedItems, pageport.RemovedItem{Family: f.ID, Kind: pageport.RemovedScript, Detail: src})
				s.Remove()
			}
			return
		}
		if f, m, ok := matchAnyLine(s.Text(), e.registry.MatchJSLine); ok {
			r.RemovedItems = append(r.RemovedItems, pageport.RemovedItem{Family: f.ID, Kind: pageport.RemovedScript, Detail: "inline script referencing " + m})
			s.Remove()
		}
	})
	root.Find("style").Each(func(_ int, s *goquery.Selection) {
		if f, m, ok := matchAnyLine(s.Text(), e.registry.MatchCSSLine); ok {
			r.RemovedItems = append(r.RemovedItems, pageport.RemovedItem{Family: f.ID, Kind: pageport.RemovedStyle, Detail: "inline style referencing " + m})
			s.Remove()
		}
	})
	root.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if f, _, ok := e.registry.MatchAsset(href); ok {
			r.RemovedItems = append(r.RemovedItems, pageport.RemovedItem{Family: f.ID, Kind: pageport.RemovedLink, Detail: href})
			s.Remove()
		}
	})
}

// warnReferences reports foreign URLs on elements that are kept, such as
// images served from a plugin directory or forms posting to a plugin.
func (e *Eliminator) warnReferences(root *goquery.Selection, r *pageport.EliminationResult) {
	root.Find("[src], [href], [action]").Not("script, link").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range []string{"src", "href", "action"} {
			v, ok := s.Attr(attr)
			if !ok {
				continue
			}
			if f, _, ok := e.registry.MatchAsset(v); ok {
				r.Warnings = append(r.Warnings, "<"+goquery.NodeName(s)+"> "+attr+" still points at "+f.Name+": "+v)
			}
		}
	})
}

func matchAnyLine(text string, match func(string) (*signature.Family, string, bool)) (*signature.Family, string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if f, m, ok := match(line); ok {
			return f, m, true
		}
	}
	return nil, "", false
}

func eliminateLines(ctx context.Context, name, content string, match func(string) (*signature.Family, string, bool)) (*pageport.EliminationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := &pageport.EliminationResult{Target: name, OriginalSize: int64(len(content))}

	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	depth := 0
	// pending is set while a removed selector list has not reached its "{".
	pending := false
	for i, line := range lines {
		if depth > 0 {
			depth += braceDelta(line)
			continue
		}
		if pending {
			if strings.Contains(line, "{") {
				pending = false
				if d := braceDelta(line); d > 0 {
					depth = d
				}
			}
			continue
		}
		f, _, ok := match(line)
		if !ok {
			kept = append(kept, line)
			continue
		}
		r.RemovedItems = append(r.RemovedItems, pageport.RemovedItem{
			Family: f.ID,
			Kind:   pageport.RemovedLine,
			Detail: strings.TrimSpace(line),
		})
		d := braceDelta(line)
		switch {
		case d > 0:
			depth = d
		case !strings.Contains(line, "{") && opensList(line, lines[i+1:]):
			pending = true
		default:
			continue
		}
		// Earlier selectors of the same list go with the rule.
		for len(kept) > 0 && strings.HasSuffix(strings.TrimSpace(kept[len(kept)-1]), ",") {
			kept = kept[:len(kept)-1]
		}
	}
	if depth > 0 || pending {
		r.Warnings = append(r.Warnings, name+": unbalanced braces after a removed block")
	}

	if len(r.RemovedItems) == 0 {
		r.CleanedContent = content
	} else {
		r.CleanedContent = strings.Join(kept, "\n")
	}
	r.NewSize = int64(len(r.CleanedContent))
	return r, nil
}

// opensList reports whether a line without a brace continues into a block
// opened on a later line: it ends a selector with a comma, or the next
// non-blank line starts with "{".
func opensList(line string, rest []string) bool {
	if strings.HasSuffix(strings.TrimSpace(line), ",") {
		return true
	}
	for _, next := range rest {
		next = strings.TrimSpace(next)
		if next == "" {
			continue
		}
		return strings.HasPrefix(next, "{")
	}
	return false
}

func braceDelta(line string) int {
	return strings.Count(line, "{") - strings.Count(line, "}")
}

// isFragment reports whether markup lacks a document shell, in which case
// only the body content is rendered back.
func isFragment(content string) bool {
	lower := strings.ToLower(content)
	return !strings.Contains(lower, "<html") && !strings.Contains(lower, "<body")
}

func render(doc *goquery.Document, fragment bool) (string, error) {
	if fragment {
		return doc.Find("body").First().Html()
	}
	var b strings.Builder
	for _, n := range doc.Nodes {
		if err := xhtml.Render(&b, n); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
