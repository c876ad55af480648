package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/pageport"
	"github.com/fwojciec/pageport/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArchive(t *testing.T) {
	t.Parallel()

	t.Run("creates parent directories and writes data", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out", "export.zip")

		err := fs.WriteArchive(path, []byte("PK"))

		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("PK"), data)
	})

	t.Run("replaces an existing archive and leaves no temp files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "export.zip")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

		require.NoError(t, fs.WriteArchive(path, []byte("new")))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestReadDir(t *testing.T) {
	t.Parallel()

	t.Run("round-trips a saved artifact without reports", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		store := fs.NewArtifactStore(base, "theme")
		require.NoError(t, store.Save(context.Background(), newArtifact()))
		require.NoError(t, store.Commit())

		files, err := fs.ReadDir(store.Dir())

		require.NoError(t, err)
		assert.ElementsMatch(t, newArtifact().Files, files)
	})

	t.Run("missing directory is not found", func(t *testing.T) {
		t.Parallel()

		_, err := fs.ReadDir(filepath.Join(t.TempDir(), "nope"))

		assert.Equal(t, pageport.ENOTFOUND, pageport.ErrorCode(err))
	})
}

func TestInferGroup(t *testing.T) {
	t.Parallel()

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

	assert.Equal(t, pageport.GroupStyle, fs.InferGroup("style.css", nil))
	assert.Equal(t, pageport.GroupScript, fs.InferGroup("assets/site.js", nil))
	assert.Equal(t, pageport.GroupTemplate, fs.InferGroup("functions.php", nil))
	assert.Equal(t, pageport.GroupMarkup, fs.InferGroup("export.xml", nil))
	assert.Equal(t, pageport.GroupImage, fs.InferGroup("uploads/hero.png", png))
	assert.Equal(t, pageport.GroupMarkup, fs.InferGroup("LICENSE", []byte("GPL")))
}
