package mock

import (
	"context"

	"github.com/fwojciec/pageport"
)

var _ pageport.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of pageport.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, in pageport.EmbedInput, opts pageport.EmbedOptions) (*pageport.EmbedResult, error)
}

func (e *Embedder) Embed(ctx context.Context, in pageport.EmbedInput, opts pageport.EmbedOptions) (*pageport.EmbedResult, error) {
	return e.EmbedFn(ctx, in, opts)
}
