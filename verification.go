package pageport

import "context"

// Score penalties per dependency finding.
const (
	CriticalPenalty = 20
	WarningPenalty  = 5

	// PluginFreeMinScore is the lowest score still considered plugin-free.
	PluginFreeMinScore = 90
)

// DependencyCheck is one residual dependency found in generated output.
type DependencyCheck struct {
	Family   string   `json:"family"`
	Name     string   `json:"name"`
	File     string   `json:"file"`
	Match    string   `json:"match"`
	Detected bool     `json:"detected"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// VerificationReport summarizes residual dependencies in an artifact.
type VerificationReport struct {
	IsPluginFree    bool              `json:"isPluginFree"`
	Score           int               `json:"score"`
	Dependencies    []DependencyCheck `json:"dependencies"`
	Recommendations []string          `json:"recommendations"`
}

// CriticalCount returns the number of detected critical checks.
func (r *VerificationReport) CriticalCount() int {
	n := 0
	for _, c := range r.Dependencies {
		if c.Detected && c.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// Score computes the plugin-free score from checks: it starts at 100, loses
// 20 per critical and 5 per warning finding, and never drops below 0.
// The page is plugin-free when the score is at least 90 with no criticals.
func Score(checks []DependencyCheck) (score int, pluginFree bool) {
	score = 100
	critical := 0
	for _, c := range checks {
		if !c.Detected {
			continue
		}
		switch c.Severity {
		case SeverityCritical:
			critical++
			score -= CriticalPenalty
		case SeverityWarning:
			score -= WarningPenalty
		}
	}
	if score < 0 {
		score = 0
	}
	return score, score >= PluginFreeMinScore && critical == 0
}

// Verifier scans generated files for residual foreign dependencies.
// Verification never fails an export; it only lowers the score.
type Verifier interface {
	// Verify scans files generated for target. The target's own platform
	// family is not treated as foreign.
	Verify(ctx context.Context, files []File, target BuilderID) (*VerificationReport, error)
}
