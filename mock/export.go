package mock

import (
	"context"

	"github.com/fwojciec/pageport"
)

var (
	_ pageport.ExportService       = (*ExportService)(nil)
	_ pageport.Packager            = (*Packager)(nil)
	_ pageport.ExportRecordService = (*ExportRecordService)(nil)
)

// ExportService is a mock implementation of pageport.ExportService.
type ExportService struct {
	ExportFn func(ctx context.Context, in *pageport.ExportInput) (*pageport.ExportArtifact, error)
}

func (s *ExportService) Export(ctx context.Context, in *pageport.ExportInput) (*pageport.ExportArtifact, error) {
	return s.ExportFn(ctx, in)
}

// Packager is a mock implementation of pageport.Packager.
type Packager struct {
	PackageFn func(ctx context.Context, a *pageport.ExportArtifact) ([]byte, error)
}

func (p *Packager) Package(ctx context.Context, a *pageport.ExportArtifact) ([]byte, error) {
	return p.PackageFn(ctx, a)
}

// ExportRecordService is a mock implementation of pageport.ExportRecordService.
type ExportRecordService struct {
	CreateExportRecordFn   func(ctx context.Context, rec *pageport.ExportRecord) error
	FindExportRecordByIDFn func(ctx context.Context, id string) (*pageport.ExportRecord, error)
	FindExportRecordsFn    func(ctx context.Context, filter pageport.ExportRecordFilter) ([]*pageport.ExportRecord, error)
}

func (s *ExportRecordService) CreateExportRecord(ctx context.Context, rec *pageport.ExportRecord) error {
	return s.CreateExportRecordFn(ctx, rec)
}

func (s *ExportRecordService) FindExportRecordByID(ctx context.Context, id string) (*pageport.ExportRecord, error) {
	return s.FindExportRecordByIDFn(ctx, id)
}

func (s *ExportRecordService) FindExportRecords(ctx context.Context, filter pageport.ExportRecordFilter) ([]*pageport.ExportRecord, error) {
	return s.FindExportRecordsFn(ctx, filter)
}
