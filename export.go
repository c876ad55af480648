package pageport

import (
	"context"
	"time"
)

// ExportFlags toggles the optional pipeline stages.
type ExportFlags struct {
	EmbedAssets           bool `json:"embedAssets" yaml:"embed_assets"`
	EliminateDependencies bool `json:"eliminateDependencies" yaml:"eliminate_dependencies"`
	ValidateBudget        bool `json:"validateBudget" yaml:"validate_budget"`
	BudgetOverride        bool `json:"budgetOverride" yaml:"budget_override"`
	VerifyPluginFree      bool `json:"verifyPluginFree" yaml:"verify_plugin_free"`
}

// DefaultExportFlags enables every optional stage without override.
func DefaultExportFlags() ExportFlags {
	return ExportFlags{
		EmbedAssets:           true,
		EliminateDependencies: true,
		ValidateBudget:        true,
		VerifyPluginFree:      true,
	}
}

// ExportInput is the normalized input of one export call.
type ExportInput struct {
	HTML         string
	CSS          []string
	JS           []string
	ImagePaths   []string
	AssetBytes   map[string][]byte
	Blocks       []Block
	Target       BuilderID
	Theme        ThemeMetadata
	Flags        ExportFlags
	CustomBudget *Budget
	Embed        *EmbedOptions
}

// Validate returns an error if the input cannot be exported.
func (in *ExportInput) Validate() error {
	if in.Target == "" {
		return Errorf(EINVALID, "target builder required")
	}
	if in.HTML == "" && len(in.Blocks) == 0 {
		return Errorf(EINVALID, "html or native blocks required")
	}
	return nil
}

// ReportName identifies one stage report.
type ReportName string

// Stage reports. Every report is present in every artifact.
const (
	ReportBudget       ReportName = "budget-validation"
	ReportEmbedding    ReportName = "asset-embedding"
	ReportElimination  ReportName = "dependency-elimination"
	ReportVerification ReportName = "plugin-free-verification"
)

// ReportNames returns the stage reports in pipeline order.
func ReportNames() []ReportName {
	return []ReportName{ReportBudget, ReportEmbedding, ReportElimination, ReportVerification}
}

// Path returns the archive path of the report.
func (n ReportName) Path() string {
	return "reports/" + string(n) + ".txt"
}

// ArtifactMetadata summarizes a finished artifact.
type ArtifactMetadata struct {
	BuilderID       BuilderID  `json:"builderId"`
	Source          SourceKind `json:"source"`
	SourcePlatform  string     `json:"sourcePlatform,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	// TotalSize and FileCount cover the generated files only. Stage
	// reports, INSTALL.txt and manifest.json are packaging entries and are
	// listed in the manifest instead.
	TotalSize       int64      `json:"totalSize"`
	FileCount       int        `json:"fileCount"`
	PluginFreeScore *int       `json:"pluginFreeScore,omitempty"`
}

// ExportArtifact is the product of one export: generated files, stage
// reports, install instructions and metadata.
type ExportArtifact struct {
	Files        []File                `json:"files"`
	Reports      map[ReportName]string `json:"reports"`
	Instructions string                `json:"instructions"`
	Metadata     ArtifactMetadata      `json:"metadata"`

	Budget       *BudgetReport        `json:"budget,omitempty"`
	Embedding    *EmbedResult         `json:"embedding,omitempty"`
	Elimination  []*EliminationResult `json:"elimination,omitempty"`
	Verification *VerificationReport  `json:"verification,omitempty"`
}

// FilesByGroup returns the artifact files in group g.
func (a *ExportArtifact) FilesByGroup(g FileGroup) []File {
	var out []File
	for _, f := range a.Files {
		if f.Group == g {
			out = append(out, f)
		}
	}
	return out
}

// File returns the file at path, or nil.
func (a *ExportArtifact) File(path string) *File {
	for i := range a.Files {
		if a.Files[i].Path == path {
			return &a.Files[i]
		}
	}
	return nil
}

// ExportService runs the export pipeline.
type ExportService interface {
	// Export runs every enabled stage and returns the assembled artifact.
	// Returns EBUDGET (as *BudgetExceededError) when the budget gate rejects
	// the input and EUNSUPPORTED for unknown targets.
	Export(ctx context.Context, in *ExportInput) (*ExportArtifact, error)
}

// Packager serializes an artifact into a single archive.
type Packager interface {
	Package(ctx context.Context, a *ExportArtifact) ([]byte, error)
}

// ExportRecord is the persisted summary of one export run.
type ExportRecord struct {
	ID              string     `json:"id"`
	BuilderID       BuilderID  `json:"builderId"`
	Source          SourceKind `json:"source"`
	ThemeName       string     `json:"themeName"`
	// TotalSize and FileCount cover the generated files only. Stage
	// reports, INSTALL.txt and manifest.json are packaging entries and are
	// listed in the manifest instead.
	TotalSize       int64      `json:"totalSize"`
	FileCount       int        `json:"fileCount"`
	PluginFreeScore *int       `json:"pluginFreeScore,omitempty"`
	OutputPath      string     `json:"outputPath"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Validate returns an error if the record contains invalid fields.
func (r *ExportRecord) Validate() error {
	if r.BuilderID == "" {
		return Errorf(EINVALID, "export record builder ID required")
	}
	return nil
}

// NewExportRecord summarizes an artifact written to outputPath.
func NewExportRecord(a *ExportArtifact, theme ThemeMetadata, outputPath string) *ExportRecord {
	return &ExportRecord{
		BuilderID:       a.Metadata.BuilderID,
		Source:          a.Metadata.Source,
		ThemeName:       theme.Name,
		TotalSize:       a.Metadata.TotalSize,
		FileCount:       a.Metadata.FileCount,
		PluginFreeScore: a.Metadata.PluginFreeScore,
		OutputPath:      outputPath,
	}
}

// ExportRecordService stores the history of export runs.
type ExportRecordService interface {
	// CreateExportRecord stores a record and assigns its ID and CreatedAt.
	CreateExportRecord(ctx context.Context, rec *ExportRecord) error

	// FindExportRecordByID retrieves a record by ID.
	// Returns ENOTFOUND if the record does not exist.
	FindExportRecordByID(ctx context.Context, id string) (*ExportRecord, error)

	// FindExportRecords retrieves records matching the filter, newest first.
	FindExportRecords(ctx context.Context, filter ExportRecordFilter) ([]*ExportRecord, error)
}

// ExportRecordFilter represents a filter for FindExportRecords.
type ExportRecordFilter struct {
	BuilderID *BuilderID `json:"builderId"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
