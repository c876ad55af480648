package pageport

import (
	"context"
	"path"
	"strings"
)

// Default embedding thresholds.
const (
	DefaultInlineThreshold = 5 * KiB
	DefaultImageThreshold  = 50 * KiB
)

// AssetKind classifies a referenced asset.
type AssetKind string

// Asset kinds.
const (
	AssetImage  AssetKind = "image"
	AssetStyle  AssetKind = "style"
	AssetScript AssetKind = "script"
)

// Decision is the embedding outcome for one asset.
type Decision string

// Embedding decisions.
const (
	DecisionInline    Decision = "inline"
	DecisionWordPress Decision = "wordpress"
	DecisionExternal  Decision = "external"
)

// Inline methods.
const (
	MethodBase64 = "base64"
	MethodRaw    = "raw"
)

// UploadPlaceholderDir is the media-library path that replaces references
// to assets flagged for upload.
const UploadPlaceholderDir = "wp-content/uploads/pageport/"

// UploadPath returns the media-library placeholder for an asset reference.
func UploadPath(ref string) string {
	return UploadPlaceholderDir + path.Base(stripQuery(ref))
}

// LookupAsset finds the bytes for a reference, tolerating a leading "./" or
// "/" and a query string or fragment.
func LookupAsset(files map[string][]byte, ref string) ([]byte, bool) {
	bare := stripQuery(ref)
	for _, c := range []string{ref, bare, trimRelative(ref), trimRelative(bare)} {
		if data, ok := files[c]; ok {
			return data, true
		}
	}
	return nil, false
}

func stripQuery(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i]
	}
	return ref
}

func trimRelative(ref string) string {
	return strings.TrimPrefix(strings.TrimPrefix(ref, "./"), "/")
}

// AssetDecision records how one asset was handled.
type AssetDecision struct {
	Path      string    `json:"path"`
	Kind      AssetKind `json:"kind"`
	SizeBytes int64     `json:"sizeBytes"`
	Decision  Decision  `json:"decision"`
	Method    string    `json:"method,omitempty"`
	Reason    string    `json:"reason"`
}

// DecideAsset applies the size thresholds: up to threshold inclusive is
// inline, up to 5× threshold inclusive is uploaded, anything larger stays
// external.
func DecideAsset(size, threshold int64) Decision {
	switch {
	case size <= threshold:
		return DecisionInline
	case size <= threshold*5:
		return DecisionWordPress
	}
	return DecisionExternal
}

// EmbedAssessment grades the size growth caused by inlining.
type EmbedAssessment string

// Embed assessments.
const (
	AssessmentAcceptable EmbedAssessment = "acceptable"
	AssessmentModerate   EmbedAssessment = "moderate"
	AssessmentStrong     EmbedAssessment = "strong-warning"
)

// AssessSizeIncrease classifies a percentage increase: above 50 is a strong
// warning, above 20 a moderate note, anything else acceptable.
func AssessSizeIncrease(percent float64) EmbedAssessment {
	switch {
	case percent > 50:
		return AssessmentStrong
	case percent > 20:
		return AssessmentModerate
	}
	return AssessmentAcceptable
}

// SizeIncreasePercent returns (processed − original) / original × 100.
// It returns 0 when original is zero.
func SizeIncreasePercent(original, processed int64) float64 {
	if original == 0 {
		return 0
	}
	return float64(processed-original) / float64(original) * 100
}

// EmbedOptions configures the embedding thresholds.
type EmbedOptions struct {
	InlineThreshold int64 `json:"inlineThreshold" yaml:"inline_threshold"`
	ImageThreshold  int64 `json:"imageThreshold" yaml:"image_threshold"`
}

// DefaultEmbedOptions returns the default thresholds.
func DefaultEmbedOptions() EmbedOptions {
	return EmbedOptions{
		InlineThreshold: DefaultInlineThreshold,
		ImageThreshold:  DefaultImageThreshold,
	}
}

// EmbedInput is the content handed to the embedding engine.
type EmbedInput struct {
	HTML       string
	ImagePaths []string
	AssetBytes map[string][]byte
}

// EmbedResult is the output of the embedding pass.
type EmbedResult struct {
	HTML                string          `json:"-"`
	Decisions           []AssetDecision `json:"decisions"`
	OriginalSize        int64           `json:"originalSize"`
	ProcessedSize       int64           `json:"processedSize"`
	SizeIncreasePercent float64         `json:"sizeIncreasePercent"`
	Assessment          EmbedAssessment `json:"assessment"`
}

// Uploads returns the paths of assets flagged for media-library upload.
func (r *EmbedResult) Uploads() []string {
	var out []string
	for _, d := range r.Decisions {
		if d.Decision == DecisionWordPress {
			out = append(out, d.Path)
		}
	}
	return out
}

// Embedder inlines, uploads or externalizes the assets referenced by a page.
type Embedder interface {
	Embed(ctx context.Context, in EmbedInput, opts EmbedOptions) (*EmbedResult, error)
}
