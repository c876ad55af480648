package mock

import (
	"context"

	"github.com/fwojciec/pageport"
)

var _ pageport.DataSource = (*DataSource)(nil)

// DataSource is a mock implementation of pageport.DataSource.
type DataSource struct {
	KindFn  func() pageport.SourceKind
	BuildFn func(ctx context.Context, ids pageport.IDGenerator) (*pageport.Document, error)
}

func (s *DataSource) Kind() pageport.SourceKind {
	return s.KindFn()
}

func (s *DataSource) Build(ctx context.Context, ids pageport.IDGenerator) (*pageport.Document, error) {
	return s.BuildFn(ctx, ids)
}
