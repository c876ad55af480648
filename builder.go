package pageport

import (
	"context"
	"path"
	"strings"
)

// BuilderID identifies a target page builder.
type BuilderID string

// Supported builders. The set is closed; builder.New switches over it.
const (
	BuilderPluginFree    BuilderID = "plugin-free"
	BuilderElementor     BuilderID = "elementor"
	BuilderGutenberg     BuilderID = "gutenberg"
	BuilderDivi          BuilderID = "divi"
	BuilderBeaver        BuilderID = "beaver-builder"
	BuilderBricks        BuilderID = "bricks"
	BuilderOxygen        BuilderID = "oxygen"
	BuilderKadence       BuilderID = "kadence"
	BuilderBrizy         BuilderID = "brizy"
	BuilderOptimizePress BuilderID = "optimizepress"
	BuilderCrocoblock    BuilderID = "crocoblock"
)

// BuilderIDs returns every supported builder in a stable order.
func BuilderIDs() []BuilderID {
	return []BuilderID{
		BuilderPluginFree,
		BuilderElementor,
		BuilderGutenberg,
		BuilderDivi,
		BuilderBeaver,
		BuilderBricks,
		BuilderOxygen,
		BuilderKadence,
		BuilderBrizy,
		BuilderOptimizePress,
		BuilderCrocoblock,
	}
}

// Families returns the signature families the builder's own output relies
// on. They are not foreign to the target and are skipped during verification.
func (id BuilderID) Families() []string {
	switch id {
	case BuilderPluginFree, BuilderGutenberg:
		return nil
	case BuilderCrocoblock:
		return []string{string(BuilderCrocoblock), string(BuilderElementor)}
	}
	return []string{string(id)}
}

// FileGroup classifies artifact files.
type FileGroup string

// File groups.
const (
	GroupMarkup   FileGroup = "markup"
	GroupStyle    FileGroup = "style"
	GroupScript   FileGroup = "script"
	GroupImage    FileGroup = "image"
	GroupTemplate FileGroup = "template"
	GroupReport   FileGroup = "report"
	GroupManifest FileGroup = "manifest"
)

// File is one generated artifact file. Path is slash-separated and relative.
type File struct {
	Path    string    `json:"path"`
	Group   FileGroup `json:"group"`
	Content []byte    `json:"-"`
}

// ValidatePath returns EINVALID unless p is a clean relative slash path
// that stays inside its root.
func ValidatePath(p string) error {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, `\`) ||
		path.Clean(p) != p || p == ".." || strings.HasPrefix(p, "../") {
		return Errorf(EINVALID, "invalid file path %q", p)
	}
	return nil
}

// ThemeMetadata describes the exported theme or template.
type ThemeMetadata struct {
	Name        string `json:"name" yaml:"name"`
	Slug        string `json:"slug" yaml:"slug"`
	Author      string `json:"author" yaml:"author"`
	Description string `json:"description" yaml:"description"`
	Version     string `json:"version" yaml:"version"`
	SourceURL   string `json:"sourceUrl" yaml:"source_url"`
}

// BuildInput is everything a builder may read. Builders must treat it as
// read-only.
type BuildInput struct {
	Document *Document
	HTML     string
	CSS      []string
	JS       []string
	Theme    ThemeMetadata
}

// Builder generates target-specific files from the document model.
// Implementations are stateless and safe for concurrent use.
type Builder interface {
	// ID returns the builder identifier.
	ID() BuilderID

	// Generate produces the builder's files. It must not mutate in.
	Generate(ctx context.Context, in *BuildInput) ([]File, error)

	// Instructions returns human-readable installation steps.
	Instructions() string
}

// BuilderRegistry resolves builder identifiers.
type BuilderRegistry interface {
	// Builder returns the builder for id.
	// Returns EUNSUPPORTED if id is not a known builder.
	Builder(id BuilderID) (Builder, error)
}
