package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/pageport"
)

// Ensure LoggingDetector implements pageport.PlatformDetector.
var _ pageport.PlatformDetector = (*LoggingDetector)(nil)

// LoggingDetector wraps a PlatformDetector with logging.
type LoggingDetector struct {
	next   pageport.PlatformDetector
	logger *slog.Logger
}

// NewLoggingDetector creates a new LoggingDetector.
func NewLoggingDetector(next pageport.PlatformDetector, logger *slog.Logger) *LoggingDetector {
	return &LoggingDetector{next: next, logger: logger}
}

// Detect delegates to the wrapped detector and logs the detected platform.
func (d *LoggingDetector) Detect(html string) string {
	begin := time.Now()
	platform := d.next.Detect(html)
	name := platform
	if name == "" {
		name = "(unknown)"
	}
	d.logger.Info("platform detection",
		"platform", name,
		"duration", time.Since(begin),
	)
	return platform
}
