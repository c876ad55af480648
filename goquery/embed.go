package goquery

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pageport"
	"github.com/gabriel-vasile/mimetype"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"
)

var _ pageport.Embedder = (*Embedder)(nil)

const reasonMissingBytes = "asset bytes not available"

// Embedder inlines small assets, points medium ones at the media library and
// leaves large ones external.
type Embedder struct {
	// Concurrency bounds how many assets are encoded at once. Defaults to 8.
	Concurrency int
}

// NewEmbedder creates an Embedder with default concurrency.
func NewEmbedder() *Embedder {
	return &Embedder{}
}

// asset is one unique reference and every element that uses it.
type asset struct {
	ref      string
	kind     pageport.AssetKind
	elements []*goquery.Selection

	decision pageport.AssetDecision
	data     []byte
	dataURI  string
}

// Embed rewrites img, stylesheet link and script references in the page and
// decides every listed image. Decisions are reported in first-seen order.
// data: URIs and absolute URLs are neither rewritten nor reported.
func (e *Embedder) Embed(ctx context.Context, in pageport.EmbedInput, opts pageport.EmbedOptions) (*pageport.EmbedResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	def := pageport.DefaultEmbedOptions()
	if opts.InlineThreshold <= 0 {
		opts.InlineThreshold = def.InlineThreshold
	}
	if opts.ImageThreshold <= 0 {
		opts.ImageThreshold = def.ImageThreshold
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(in.HTML))
	if err != nil {
		return nil, pageport.Errorf(pageport.EINVALID, "failed to parse HTML: %v", err)
	}

	assets := collectAssets(doc, in.ImagePaths)
	if err := e.decide(ctx, assets, in.AssetBytes, opts); err != nil {
		return nil, err
	}

	rewritten := false
	for _, a := range assets {
		if rewrite(a) {
			rewritten = true
		}
	}

	out := in.HTML
	if rewritten {
		if out, err = render(doc, isFragment(in.HTML)); err != nil {
			return nil, pageport.Errorf(pageport.EINTERNAL, "failed to render HTML: %v", err)
		}
	}

	r := &pageport.EmbedResult{
		HTML:          out,
		OriginalSize:  int64(len(in.HTML)),
		ProcessedSize: int64(len(out)),
	}
	for _, a := range assets {
		r.Decisions = append(r.Decisions, a.decision)
	}
	r.SizeIncreasePercent = pageport.SizeIncreasePercent(r.OriginalSize, r.ProcessedSize)
	r.Assessment = pageport.AssessSizeIncrease(r.SizeIncreasePercent)
	return r, nil
}

func collectAssets(doc *goquery.Document, imagePaths []string) []*asset {
	var assets []*asset
	byRef := make(map[string]*asset)
	add := func(ref string, kind pageport.AssetKind, el *goquery.Selection) {
		if !isLocalRef(ref) {
			return
		}
		a, ok := byRef[ref]
		if !ok {
			a = &asset{ref: ref, kind: kind}
			byRef[ref] = a
			assets = append(assets, a)
		}
		if el != nil {
			a.elements = append(a.elements, el)
		}
	}

	doc.Find("img[src], link[href], script[src]").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "img":
			add(strings.TrimSpace(s.AttrOr("src", "")), pageport.AssetImage, s)
		case "link":
			if isStylesheet(s) {
				add(strings.TrimSpace(s.AttrOr("href", "")), pageport.AssetStyle, s)
			}
		case "script":
			add(strings.TrimSpace(s.AttrOr("src", "")), pageport.AssetScript, s)
		}
	})
	for _, p := range imagePaths {
		add(strings.TrimSpace(p), pageport.AssetImage, nil)
	}
	return assets
}

func (e *Embedder) decide(ctx context.Context, assets []*asset, files map[string][]byte, opts pageport.EmbedOptions) error {
	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, a := range assets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			threshold := opts.InlineThreshold
			if a.kind == pageport.AssetImage {
				threshold = opts.ImageThreshold
			}
			decideAsset(a, files, threshold)
			return nil
		})
	}
	return g.Wait()
}

func decideAsset(a *asset, files map[string][]byte, threshold int64) {
	a.decision = pageport.AssetDecision{Path: a.ref, Kind: a.kind}
	data, ok := pageport.LookupAsset(files, a.ref)
	if !ok {
		a.decision.Decision = pageport.DecisionExternal
		a.decision.Reason = reasonMissingBytes
		return
	}

	size := int64(len(data))
	a.data = data
	a.decision.SizeBytes = size
	a.decision.Decision = pageport.DecideAsset(size, threshold)

	switch a.decision.Decision {
	case pageport.DecisionInline:
		if a.kind == pageport.AssetImage {
			a.decision.Method = pageport.MethodBase64
			a.dataURI = "data:" + mimetype.Detect(data).String() + ";base64," + base64.StdEncoding.EncodeToString(data)
		} else {
			a.decision.Method = pageport.MethodRaw
		}
		a.decision.Reason = fmt.Sprintf("%s is within the %s inline threshold", pageport.FormatBytes(size), pageport.FormatBytes(threshold))
	case pageport.DecisionWordPress:
		a.decision.Reason = fmt.Sprintf("%s exceeds the %s inline threshold; upload to %s", pageport.FormatBytes(size), pageport.FormatBytes(threshold), pageport.UploadPath(a.ref))
	case pageport.DecisionExternal:
		a.decision.Reason = fmt.Sprintf("%s exceeds %s; keep the original reference", pageport.FormatBytes(size), pageport.FormatBytes(threshold*5))
	}
}

// rewrite applies a decision to every element referencing the asset and
// reports whether the document changed.
func rewrite(a *asset) bool {
	if len(a.elements) == 0 || a.decision.Decision == pageport.DecisionExternal {
		return false
	}
	for _, el := range a.elements {
		switch {
		case a.decision.Decision == pageport.DecisionWordPress && a.kind == pageport.AssetStyle:
			el.SetAttr("href", pageport.UploadPath(a.ref))
		case a.decision.Decision == pageport.DecisionWordPress:
			el.SetAttr("src", pageport.UploadPath(a.ref))
		case a.kind == pageport.AssetImage:
			el.SetAttr("src", a.dataURI)
		case a.kind == pageport.AssetStyle:
			style := &xhtml.Node{Type: xhtml.ElementNode, Data: "style", DataAtom: atom.Style}
			style.AppendChild(&xhtml.Node{Type: xhtml.TextNode, Data: string(a.data)})
			el.ReplaceWithNodes(style)
		case a.kind == pageport.AssetScript:
			el.RemoveAttr("src")
			el.Empty()
			el.AppendNodes(&xhtml.Node{Type: xhtml.TextNode, Data: string(a.data)})
		}
	}
	return true
}

// isLocalRef reports whether a reference points at a bundled file rather
// than an inline data URI or a remote URL.
func isLocalRef(ref string) bool {
	lower := strings.ToLower(ref)
	switch {
	case ref == "":
		return false
	case strings.HasPrefix(lower, "data:"),
		strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "//"):
		return false
	}
	return true
}

func isStylesheet(s *goquery.Selection) bool {
	for _, rel := range strings.Fields(strings.ToLower(s.AttrOr("rel", ""))) {
		if rel == "stylesheet" {
			return true
		}
	}
	return false
}
