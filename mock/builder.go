package mock

import (
	"context"

	"github.com/fwojciec/pageport"
)

var (
	_ pageport.Builder         = (*Builder)(nil)
	_ pageport.BuilderRegistry = (*BuilderRegistry)(nil)
)

// Builder is a mock implementation of pageport.Builder.
type Builder struct {
	IDFn           func() pageport.BuilderID
	GenerateFn     func(ctx context.Context, in *pageport.BuildInput) ([]pageport.File, error)
	InstructionsFn func() string
}

func (b *Builder) ID() pageport.BuilderID {
	return b.IDFn()
}

func (b *Builder) Generate(ctx context.Context, in *pageport.BuildInput) ([]pageport.File, error) {
	return b.GenerateFn(ctx, in)
}

func (b *Builder) Instructions() string {
	return b.InstructionsFn()
}

// BuilderRegistry is a mock implementation of pageport.BuilderRegistry.
type BuilderRegistry struct {
	BuilderFn func(id pageport.BuilderID) (pageport.Builder, error)
}

func (r *BuilderRegistry) Builder(id pageport.BuilderID) (pageport.Builder, error) {
	return r.BuilderFn(id)
}
