package export

import (
	"fmt"
	"strings"

	"github.com/fwojciec/pageport"
)

// FormatBudgetReport renders the budget validation report. A nil report
// means the stage did not run.
func FormatBudgetReport(r *pageport.BudgetReport, notes []string) string {
	var b strings.Builder
	heading(&b, "Budget Validation")
	if r == nil {
		b.WriteString("Status: skipped\n")
		writeNotes(&b, notes)
		return b.String()
	}

	status := "passed"
	switch {
	case len(r.Violations) > 0 && r.RequiresOverride:
		status = "passed with override"
	case len(r.Violations) > 0:
		status = "failed"
	}
	fmt.Fprintf(&b, "Status: %s\n\n", status)

	b.WriteString("Sizes:\n")
	fmt.Fprintf(&b, "  HTML:   %s\n", pageport.FormatBytes(r.Sizes.HTML))
	fmt.Fprintf(&b, "  CSS:    %s\n", pageport.FormatBytes(r.Sizes.CSS))
	fmt.Fprintf(&b, "  JS:     %s\n", pageport.FormatBytes(r.Sizes.JS))
	fmt.Fprintf(&b, "  Images: %s\n", pageport.FormatBytes(r.Sizes.Images))
	fmt.Fprintf(&b, "  Total:  %s\n", pageport.FormatBytes(r.Sizes.Total))

	if len(r.Violations) > 0 {
		fmt.Fprintf(&b, "\nViolations (%d, %d critical):\n", len(r.Violations), r.CriticalCount())
		for _, v := range r.Violations {
			fmt.Fprintf(&b, "  [%s] %s %s: %s exceeds %s by %s\n",
				v.Severity, v.Category, v.Item,
				pageport.FormatBytes(v.Current), pageport.FormatBytes(v.Budget), pageport.FormatBytes(v.ExceededBytes))
			if v.Recommendation != "" {
				fmt.Fprintf(&b, "      %s\n", v.Recommendation)
			}
		}
	}
	writeNotes(&b, notes)
	return b.String()
}

// FormatEmbeddingReport renders the asset embedding report.
func FormatEmbeddingReport(r *pageport.EmbedResult, notes []string) string {
	var b strings.Builder
	heading(&b, "Asset Embedding")
	if r == nil {
		b.WriteString("Status: skipped\n")
		writeNotes(&b, notes)
		return b.String()
	}

	fmt.Fprintf(&b, "Original size:  %s\n", pageport.FormatBytes(r.OriginalSize))
	fmt.Fprintf(&b, "Processed size: %s\n", pageport.FormatBytes(r.ProcessedSize))
	fmt.Fprintf(&b, "Size increase:  %.1f%% (%s)\n", r.SizeIncreasePercent, r.Assessment)

	if len(r.Decisions) > 0 {
		fmt.Fprintf(&b, "\nDecisions (%d):\n", len(r.Decisions))
		for _, d := range r.Decisions {
			method := ""
			if d.Method != "" {
				method = ", " + d.Method
			}
			fmt.Fprintf(&b, "  %-9s %-6s %s (%s%s): %s\n",
				d.Decision, d.Kind, d.Path, pageport.FormatBytes(d.SizeBytes), method, d.Reason)
		}
	}
	if uploads := r.Uploads(); len(uploads) > 0 {
		b.WriteString("\nUpload to the media library:\n")
		for _, p := range uploads {
			fmt.Fprintf(&b, "  %s -> %s\n", p, pageport.UploadPath(p))
		}
	}
	writeNotes(&b, notes)
	return b.String()
}

// FormatEliminationReport renders the dependency elimination report, one
// block per cleaned piece of content. Nil results mean the stage did not run.
func FormatEliminationReport(results []*pageport.EliminationResult, notes []string) string {
	var b strings.Builder
	heading(&b, "Dependency Elimination")
	if results == nil {
		b.WriteString("Status: skipped\n")
		writeNotes(&b, notes)
		return b.String()
	}

	removed := 0
	for _, r := range results {
		removed += len(r.RemovedItems)
	}
	fmt.Fprintf(&b, "Removed items: %d\n", removed)

	for _, r := range results {
		fmt.Fprintf(&b, "\n%s: %s -> %s, %d removed\n",
			r.Target, pageport.FormatBytes(r.OriginalSize), pageport.FormatBytes(r.NewSize), len(r.RemovedItems))
		for _, item := range r.RemovedItems {
			fmt.Fprintf(&b, "  %s\n", item)
		}
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "  warning: %s\n", w)
		}
	}
	writeNotes(&b, notes)
	return b.String()
}

// FormatVerificationReport renders the plugin-free verification report.
func FormatVerificationReport(r *pageport.VerificationReport, notes []string) string {
	var b strings.Builder
	heading(&b, "Plugin-Free Verification")
	if r == nil {
		b.WriteString("Status: skipped\n")
		writeNotes(&b, notes)
		return b.String()
	}

	verdict := "no"
	if r.IsPluginFree {
		verdict = "yes"
	}
	fmt.Fprintf(&b, "Score: %d/100\n", r.Score)
	fmt.Fprintf(&b, "Plugin-free: %s\n", verdict)

	var detected []pageport.DependencyCheck
	for _, c := range r.Dependencies {
		if c.Detected {
			detected = append(detected, c)
		}
	}
	if len(detected) > 0 {
		fmt.Fprintf(&b, "\nDependencies (%d, %d critical):\n", len(detected), r.CriticalCount())
		for _, c := range detected {
			fmt.Fprintf(&b, "  [%s] %s in %s: %s\n", c.Severity, c.Family, c.File, c.Message)
		}
	}
	if len(r.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", rec)
		}
	}
	writeNotes(&b, notes)
	return b.String()
}

func heading(b *strings.Builder, title string) {
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeNotes(b *strings.Builder, notes []string) {
	if len(notes) == 0 {
		return
	}
	b.WriteString("\nNotes:\n")
	for _, n := range notes {
		fmt.Fprintf(b, "  - %s\n", n)
	}
}
