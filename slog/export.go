package slog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/pageport"
)

// Ensure LoggingExportService implements pageport.ExportService.
var _ pageport.ExportService = (*LoggingExportService)(nil)

// LoggingExportService wraps an ExportService with logging.
type LoggingExportService struct {
	next   pageport.ExportService
	logger *slog.Logger
}

// NewLoggingExportService creates a new LoggingExportService.
func NewLoggingExportService(next pageport.ExportService, logger *slog.Logger) *LoggingExportService {
	return &LoggingExportService{next: next, logger: logger}
}

// Export delegates to the wrapped service and logs the operation. Budget
// rejections are logged with their violation counts.
func (s *LoggingExportService) Export(ctx context.Context, in *pageport.ExportInput) (a *pageport.ExportArtifact, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"target", string(in.Target),
			"duration", time.Since(begin),
		}
		if a != nil {
			attrs = append(attrs,
				"source", string(a.Metadata.Source),
				"files", a.Metadata.FileCount,
				"bytes", a.Metadata.TotalSize,
			)
			if a.Metadata.SourcePlatform != "" {
				attrs = append(attrs, "platform", a.Metadata.SourcePlatform)
			}
			if a.Metadata.PluginFreeScore != nil {
				attrs = append(attrs, "score", *a.Metadata.PluginFreeScore)
			}
		}
		var be *pageport.BudgetExceededError
		if errors.As(err, &be) && be.Report != nil {
			attrs = append(attrs,
				"violations", len(be.Report.Violations),
				"critical", be.Report.CriticalCount(),
			)
		}
		attrs = append(attrs, "err", err)

		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelError
		}
		s.logger.Log(ctx, level, "export", attrs...)
	}(time.Now())
	return s.next.Export(ctx, in)
}
