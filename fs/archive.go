package fs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/pageport"
	"github.com/gabriel-vasile/mimetype"
)

// WriteArchive writes data to path through a temporary file in the same
// directory, so readers never observe a partial archive.
func WriteArchive(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadDir loads an exported directory back into artifact files. Reports,
// install notes and the manifest are skipped; groups are inferred from the
// file extension, falling back to content sniffing for images.
func ReadDir(dir string) ([]pageport.File, error) {
	var files []pageport.File
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == InstallPath || rel == ManifestPath || strings.HasPrefix(rel, "reports/") {
			return nil
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files = append(files, pageport.File{Path: rel, Group: InferGroup(rel, content), Content: content})
		return nil
	})
	if os.IsNotExist(err) {
		return nil, pageport.Errorf(pageport.ENOTFOUND, "directory not found: %s", dir)
	}
	if err != nil {
		return nil, err
	}
	return files, nil
}

// InferGroup classifies a file by extension, sniffing content for unknown
// extensions.
func InferGroup(path string, content []byte) pageport.FileGroup {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css":
		return pageport.GroupStyle
	case ".js":
		return pageport.GroupScript
	case ".php":
		return pageport.GroupTemplate
	case ".html", ".htm", ".json", ".txt", ".xml":
		return pageport.GroupMarkup
	}
	if strings.HasPrefix(mimetype.Detect(content).String(), "image/") {
		return pageport.GroupImage
	}
	return pageport.GroupMarkup
}
