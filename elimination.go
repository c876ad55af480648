package pageport

import "context"

// Removal kinds reported by the elimination engine.
const (
	RemovedShortcode = "shortcode"
	RemovedClass     = "class"
	RemovedScript    = "script"
	RemovedStyle     = "style"
	RemovedLink      = "link"
	RemovedLine      = "line"
)

// RemovedItem is one thing the elimination engine stripped.
type RemovedItem struct {
	Family string `json:"family"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// String renders the item as a labeled report line.
func (r RemovedItem) String() string {
	return "[" + r.Family + "] " + r.Kind + ": " + r.Detail
}

// EliminationResult is the outcome of stripping one piece of content.
type EliminationResult struct {
	Target         string        `json:"target"`
	RemovedItems   []RemovedItem `json:"removedItems"`
	Warnings       []string      `json:"warnings"`
	OriginalSize   int64         `json:"originalSize"`
	NewSize        int64         `json:"newSize"`
	CleanedContent string        `json:"-"`
}

// Eliminator strips foreign platform markup, classes, scripts and styles.
// Running it on already-cleaned content removes nothing further.
type Eliminator interface {
	// EliminateHTML runs the shortcode, class and asset-node passes over markup.
	EliminateHTML(ctx context.Context, html string) (*EliminationResult, error)

	// EliminateCSS removes stylesheet lines matching a signature.
	EliminateCSS(ctx context.Context, name, css string) (*EliminationResult, error)

	// EliminateJS removes script lines matching a signature.
	EliminateJS(ctx context.Context, name, js string) (*EliminationResult, error)
}

// PlatformDetector identifies the platform family that produced captured
// markup. It returns "" when no platform is recognized.
type PlatformDetector interface {
	Detect(html string) string
}
