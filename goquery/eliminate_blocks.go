package goquery

import (
	"context"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pageport"
)

// markupAttrs are block attributes that carry markup or rich text.
var markupAttrs = []string{"content", "value", "citation"}

// EliminateBlocks cleans native blocks with e. Inner markup and rich-text
// attributes go through EliminateHTML and foreign tokens are dropped from
// className. Removals from every block are merged into one result targeted
// at "blocks". The input tree is left unmodified.
func EliminateBlocks(ctx context.Context, e pageport.Eliminator, blocks []pageport.Block) ([]pageport.Block, *pageport.EliminationResult, error) {
	r := &pageport.EliminationResult{Target: "blocks"}
	out, err := eliminateBlocks(ctx, e, blocks, r)
	if err != nil {
		return nil, nil, err
	}
	return out, r, nil
}

func eliminateBlocks(ctx context.Context, e pageport.Eliminator, blocks []pageport.Block, r *pageport.EliminationResult) ([]pageport.Block, error) {
	if blocks == nil {
		return nil, nil
	}
	out := make([]pageport.Block, len(blocks))
	for i, blk := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cleaned := pageport.Block{Name: blk.Name}

		inner, err := eliminateMarkup(ctx, e, blk.InnerHTML, r)
		if err != nil {
			return nil, err
		}
		cleaned.InnerHTML = inner

		if blk.Attrs != nil {
			cleaned.Attrs = make(map[string]any, len(blk.Attrs))
			for k, v := range blk.Attrs {
				cleaned.Attrs[k] = v
			}
			for _, k := range markupAttrs {
				s, ok := blk.Attrs[k].(string)
				if !ok {
					continue
				}
				if cleaned.Attrs[k], err = eliminateMarkup(ctx, e, s, r); err != nil {
					return nil, err
				}
			}
			if s, ok := blk.Attrs["className"].(string); ok {
				class, err := eliminateClassName(ctx, e, s, r)
				if err != nil {
					return nil, err
				}
				if class == "" {
					delete(cleaned.Attrs, "className")
				} else {
					cleaned.Attrs["className"] = class
				}
			}
		}

		if cleaned.InnerBlocks, err = eliminateBlocks(ctx, e, blk.InnerBlocks, r); err != nil {
			return nil, err
		}
		out[i] = cleaned
	}
	return out, nil
}

func eliminateMarkup(ctx context.Context, e pageport.Eliminator, s string, r *pageport.EliminationResult) (string, error) {
	if strings.TrimSpace(s) == "" {
		return s, nil
	}
	res, err := e.EliminateHTML(ctx, s)
	if err != nil {
		return "", err
	}
	merge(r, res)
	return res.CleanedContent, nil
}

// eliminateClassName runs a class list through e on a placeholder element
// and reads the surviving tokens back.
func eliminateClassName(ctx context.Context, e pageport.Eliminator, class string, r *pageport.EliminationResult) (string, error) {
	if strings.TrimSpace(class) == "" {
		return class, nil
	}
	res, err := e.EliminateHTML(ctx, `<span class="`+html.EscapeString(class)+`"></span>`)
	if err != nil {
		return "", err
	}
	if len(res.RemovedItems) == 0 {
		return class, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.CleanedContent))
	if err != nil {
		return "", pageport.Errorf(pageport.EINTERNAL, "failed to parse cleaned class list: %v", err)
	}
	r.RemovedItems = append(r.RemovedItems, res.RemovedItems...)
	r.Warnings = append(r.Warnings, res.Warnings...)
	r.OriginalSize += int64(len(class))
	kept := strings.Join(strings.Fields(doc.Find("span").First().AttrOr("class", "")), " ")
	r.NewSize += int64(len(kept))
	return kept, nil
}

func merge(r, res *pageport.EliminationResult) {
	r.RemovedItems = append(r.RemovedItems, res.RemovedItems...)
	r.Warnings = append(r.Warnings, res.Warnings...)
	r.OriginalSize += res.OriginalSize
	r.NewSize += res.NewSize
}
