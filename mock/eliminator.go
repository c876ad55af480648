package mock

import (
	"context"

	"github.com/fwojciec/pageport"
)

var (
	_ pageport.Eliminator       = (*Eliminator)(nil)
	_ pageport.PlatformDetector = (*PlatformDetector)(nil)
)

// Eliminator is a mock implementation of pageport.Eliminator.
type Eliminator struct {
	EliminateHTMLFn func(ctx context.Context, html string) (*pageport.EliminationResult, error)
	EliminateCSSFn  func(ctx context.Context, name, css string) (*pageport.EliminationResult, error)
	EliminateJSFn   func(ctx context.Context, name, js string) (*pageport.EliminationResult, error)
}

func (e *Eliminator) EliminateHTML(ctx context.Context, html string) (*pageport.EliminationResult, error) {
	return e.EliminateHTMLFn(ctx, html)
}

func (e *Eliminator) EliminateCSS(ctx context.Context, name, css string) (*pageport.EliminationResult, error) {
	return e.EliminateCSSFn(ctx, name, css)
}

func (e *Eliminator) EliminateJS(ctx context.Context, name, js string) (*pageport.EliminationResult, error) {
	return e.EliminateJSFn(ctx, name, js)
}

// PlatformDetector is a mock implementation of pageport.PlatformDetector.
type PlatformDetector struct {
	DetectFn func(html string) string
}

func (d *PlatformDetector) Detect(html string) string {
	return d.DetectFn(html)
}
