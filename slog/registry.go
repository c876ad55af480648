package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pageport"
)

// Ensure LoggingRegistry implements pageport.BuilderRegistry.
var _ pageport.BuilderRegistry = (*LoggingRegistry)(nil)

// LoggingRegistry wraps a BuilderRegistry so every resolved builder logs its
// generation runs.
type LoggingRegistry struct {
	next   pageport.BuilderRegistry
	logger *slog.Logger
}

// NewLoggingRegistry creates a new LoggingRegistry.
func NewLoggingRegistry(next pageport.BuilderRegistry, logger *slog.Logger) *LoggingRegistry {
	return &LoggingRegistry{next: next, logger: logger}
}

// Builder resolves id through the wrapped registry and wraps the result.
// Unknown ids are logged and the error is returned unchanged.
func (r *LoggingRegistry) Builder(id pageport.BuilderID) (pageport.Builder, error) {
	b, err := r.next.Builder(id)
	if err != nil {
		r.logger.Warn("builder lookup", "builder", string(id), "err", err)
		return nil, err
	}
	return NewLoggingBuilder(b, r.logger), nil
}

// Ensure LoggingBuilder implements pageport.Builder.
var _ pageport.Builder = (*LoggingBuilder)(nil)

// LoggingBuilder wraps a Builder with debug logging.
type LoggingBuilder struct {
	next   pageport.Builder
	logger *slog.Logger
}

// NewLoggingBuilder creates a new LoggingBuilder.
func NewLoggingBuilder(next pageport.Builder, logger *slog.Logger) *LoggingBuilder {
	return &LoggingBuilder{next: next, logger: logger}
}

// ID delegates to the wrapped builder.
func (b *LoggingBuilder) ID() pageport.BuilderID {
	return b.next.ID()
}

// Generate delegates to the wrapped builder and logs the operation.
func (b *LoggingBuilder) Generate(ctx context.Context, in *pageport.BuildInput) (files []pageport.File, err error) {
	defer func(begin time.Time) {
		var size int
		for _, f := range files {
			size += len(f.Content)
		}
		b.logger.Debug("builder generate",
			"builder", string(b.next.ID()),
			"widgets", in.Document.WidgetCount(),
			"files", len(files),
			"bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.Generate(ctx, in)
}

// Instructions delegates to the wrapped builder.
func (b *LoggingBuilder) Instructions() string {
	return b.next.Instructions()
}
