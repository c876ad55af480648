// Package fs provides file-based storage for export artifacts.
package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fwojciec/pageport"
	"github.com/fwojciec/pageport/zip"
)

// Entries written next to the artifact files, named as in the zip archive.
const (
	InstallPath  = zip.InstallPath
	ManifestPath = zip.ManifestPath
)

// ArtifactStore writes an artifact as a directory with atomic update
// semantics. Files are saved to a temporary directory, then moved atomically
// on Commit.
type ArtifactStore struct {
	baseDir string
	name    string
}

// NewArtifactStore creates a new ArtifactStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewArtifactStore(baseDir, name string) *ArtifactStore {
	return &ArtifactStore{
		baseDir: baseDir,
		name:    name,
	}
}

func (s *ArtifactStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

// Dir returns the final output directory.
func (s *ArtifactStore) Dir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes the artifact files, the stage reports, the install notes and
// manifest.json into the temporary directory. The layout matches the zip
// archive written by zip.Packager.
func (s *ArtifactStore) Save(ctx context.Context, a *pageport.ExportArtifact) error {
	entries, err := zip.Entries(a)
	if err != nil {
		return err
	}
	for _, f := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.write(f.Path, f.Content); err != nil {
			return err
		}
	}
	data, err := zip.NewManifest(a.Metadata, entries).Marshal()
	if err != nil {
		return err
	}
	return s.write(ManifestPath, data)
}

func (s *ArtifactStore) write(rel string, content []byte) error {
	if err := pageport.ValidatePath(rel); err != nil {
		return err
	}
	fullPath := filepath.Join(s.tempDir(), filepath.FromSlash(rel))

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, content, 0644)
}

// Commit replaces the output directory with the saved files.
func (s *ArtifactStore) Commit() error {
	// Remove existing final directory if present
	if err := os.RemoveAll(s.Dir()); err != nil {
		return err
	}

	// Atomically rename temp to final
	return os.Rename(s.tempDir(), s.Dir())
}

// Abort discards the saved files.
func (s *ArtifactStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}
