// Package prometheus instruments the export service with Prometheus metrics.
package prometheus

import (
	"context"
	"time"

	"github.com/fwojciec/pageport"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Ensure ExportService implements pageport.ExportService.
var _ pageport.ExportService = (*ExportService)(nil)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeBudget  = "budget_exceeded"
	OutcomeInvalid = "invalid"
	OutcomeUnknown = "unsupported"
	OutcomeError   = "error"
)

// ExportService wraps an ExportService with export counters, a duration
// histogram, artifact sizes and the last plugin-free score per target.
type ExportService struct {
	next pageport.ExportService

	exports       *prom.CounterVec
	duration      *prom.HistogramVec
	artifactBytes *prom.HistogramVec
	score         *prom.GaugeVec
}

// NewExportService constructs and registers the export metrics. A nil
// registry gets a private one.
func NewExportService(next pageport.ExportService, reg *prom.Registry) *ExportService {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	s := &ExportService{
		next: next,
		exports: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pageport",
			Name:      "exports_total",
			Help:      "Export runs by target builder and outcome",
		}, []string{"target", "outcome"}),
		duration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "pageport",
			Name:      "export_duration_seconds",
			Help:      "Duration of export runs",
			Buckets:   prom.DefBuckets,
		}, []string{"target"}),
		artifactBytes: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "pageport",
			Name:      "artifact_bytes",
			Help:      "Total size of generated artifact files",
			Buckets:   prom.ExponentialBuckets(1024, 4, 8),
		}, []string{"target"}),
		score: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "pageport",
			Name:      "plugin_free_score",
			Help:      "Plugin-free score of the last verified export",
		}, []string{"target"}),
	}
	reg.MustRegister(s.exports, s.duration, s.artifactBytes, s.score)
	return s
}

// Export delegates to the wrapped service and records the run.
func (s *ExportService) Export(ctx context.Context, in *pageport.ExportInput) (a *pageport.ExportArtifact, err error) {
	defer func(begin time.Time) {
		target := string(in.Target)
		s.duration.WithLabelValues(target).Observe(time.Since(begin).Seconds())
		s.exports.WithLabelValues(target, outcome(err)).Inc()
		if a == nil {
			return
		}
		s.artifactBytes.WithLabelValues(target).Observe(float64(a.Metadata.TotalSize))
		if a.Metadata.PluginFreeScore != nil {
			s.score.WithLabelValues(target).Set(float64(*a.Metadata.PluginFreeScore))
		}
	}(time.Now())
	return s.next.Export(ctx, in)
}

func outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	switch pageport.ErrorCode(err) {
	case pageport.EBUDGET:
		return OutcomeBudget
	case pageport.EINVALID:
		return OutcomeInvalid
	case pageport.EUNSUPPORTED:
		return OutcomeUnknown
	}
	return OutcomeError
}

// WriteToTextfile writes the gathered metrics in the text exposition format,
// for node exporter's textfile collector.
func WriteToTextfile(path string, g prom.Gatherer) error {
	return prom.WriteToTextfile(path, g)
}
