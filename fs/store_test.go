package fs_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/pageport"
	"github.com/fwojciec/pageport/fs"
	"github.com/fwojciec/pageport/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArtifact() *pageport.ExportArtifact {
	return &pageport.ExportArtifact{
		Files: []pageport.File{
			{Path: "style.css", Group: pageport.GroupStyle, Content: []byte("body{}")},
			{Path: "templates/content.html", Group: pageport.GroupMarkup, Content: []byte("<p>hi</p>")},
		},
		Reports: map[pageport.ReportName]string{
			pageport.ReportBudget: "Budget Validation",
		},
		Instructions: "Upload the theme.",
	}
}

// Story: Atomic Artifact Storage
// The store uses a temp directory for atomic updates

func TestArtifactStore_SaveWritesToTempDirectory(t *testing.T) {
	t.Parallel()

	// Given a store targeting a directory
	base := t.TempDir()
	store := fs.NewArtifactStore(base, "theme")

	// When I save an artifact
	err := store.Save(context.Background(), newArtifact())

	// Then no error occurs
	require.NoError(t, err)

	// And the files exist in the temp directory (not final)
	content, err := os.ReadFile(filepath.Join(base, "theme.tmp", "templates", "content.html"))
	require.NoError(t, err, "file should exist in temp directory")
	assert.Equal(t, "<p>hi</p>", string(content))

	report, err := os.ReadFile(filepath.Join(base, "theme.tmp", "reports", "budget-validation.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Budget Validation", string(report))

	install, err := os.ReadFile(filepath.Join(base, "theme.tmp", fs.InstallPath))
	require.NoError(t, err)
	assert.Contains(t, string(install), "Upload the theme.")

	// And final directory does not exist yet
	_, err = os.Stat(store.Dir())
	assert.True(t, os.IsNotExist(err), "final directory should not exist until commit")
}

func TestArtifactStore_SaveWritesManifest(t *testing.T) {
	t.Parallel()

	// Given an artifact with metadata
	base := t.TempDir()
	store := fs.NewArtifactStore(base, "theme")
	a := newArtifact()
	a.Metadata = pageport.ArtifactMetadata{BuilderID: pageport.BuilderGutenberg, FileCount: 2}

	// When I save and commit it
	require.NoError(t, store.Save(context.Background(), a))
	require.NoError(t, store.Commit())

	// Then manifest.json lists every written file with its checksum
	raw, err := os.ReadFile(filepath.Join(store.Dir(), fs.ManifestPath))
	require.NoError(t, err)
	var m zip.Manifest
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, pageport.BuilderGutenberg, m.Metadata.BuilderID)
	paths := make(map[string]string)
	for _, e := range m.Files {
		paths[e.Path] = e.Checksum
	}
	assert.Equal(t, zip.Checksum([]byte("<p>hi</p>")), paths["templates/content.html"])
	assert.Contains(t, paths, "style.css")
	assert.Contains(t, paths, "reports/budget-validation.txt")
	assert.Contains(t, paths, fs.InstallPath)

	// And reading the directory back skips the manifest and reports
	files, err := fs.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestArtifactStore_CommitMovesFromTempToFinal(t *testing.T) {
	t.Parallel()

	// Given a store with a saved artifact and a stale output directory
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "theme"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "theme", "stale.txt"), []byte("old"), 0644))
	store := fs.NewArtifactStore(base, "theme")
	require.NoError(t, store.Save(context.Background(), newArtifact()))

	// When I commit
	err := store.Commit()

	// Then the final directory holds only the new files
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(base, "theme", "style.css"))
	require.NoError(t, err, "file should exist in final directory after commit")
	_, err = os.Stat(filepath.Join(base, "theme", "stale.txt"))
	assert.True(t, os.IsNotExist(err), "stale files should be replaced")

	// And temp directory is gone
	_, err = os.Stat(filepath.Join(base, "theme.tmp"))
	assert.True(t, os.IsNotExist(err), "temp directory should be removed after commit")
}

func TestArtifactStore_AbortCleansUpTempDirectory(t *testing.T) {
	t.Parallel()

	// Given a store with a saved artifact
	base := t.TempDir()
	store := fs.NewArtifactStore(base, "theme")
	require.NoError(t, store.Save(context.Background(), newArtifact()))

	// When I abort
	err := store.Abort()

	// Then temp directory is gone and nothing was published
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(base, "theme.tmp"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(store.Dir())
	assert.True(t, os.IsNotExist(err))
}

func TestArtifactStore_SaveRejectsEscapingPaths(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store := fs.NewArtifactStore(base, "theme")
	a := newArtifact()
	a.Files = append(a.Files, pageport.File{Path: "../escape.php", Group: pageport.GroupTemplate})

	err := store.Save(context.Background(), a)

	assert.Equal(t, pageport.EINVALID, pageport.ErrorCode(err))
	_, err = os.Stat(filepath.Join(base, "escape.php"))
	assert.True(t, os.IsNotExist(err))
}

func TestArtifactStore_SaveHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := fs.NewArtifactStore(t.TempDir(), "theme").Save(ctx, newArtifact())

	assert.ErrorIs(t, err, context.Canceled)
}
