// Package zip packages export artifacts into a single archive.
package zip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pageport"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

var _ pageport.Packager = (*Packager)(nil)

// Archive entries added next to the artifact files.
const (
	InstallPath  = "INSTALL.txt"
	ManifestPath = "manifest.json"
)

// Manifest describes the archive contents.
type Manifest struct {
	Metadata pageport.ArtifactMetadata `json:"metadata"`
	Files    []ManifestEntry           `json:"files"`
}

// ManifestEntry is one archived file with its xxhash64 checksum.
type ManifestEntry struct {
	Path     string             `json:"path"`
	Group    pageport.FileGroup `json:"group"`
	Size     int64              `json:"size"`
	Checksum string             `json:"checksum"`
}

// Packager writes artifacts as deflate-compressed zip archives.
type Packager struct {
	// Level is the flate compression level. Zero uses flate.DefaultCompression.
	Level int
}

// NewPackager creates a Packager with default compression.
func NewPackager() *Packager {
	return &Packager{}
}

// Package writes the artifact files, the stage reports, INSTALL.txt and
// manifest.json. Entry times are the artifact's creation time so equal
// artifacts produce equal archives.
func (p *Packager) Package(ctx context.Context, a *pageport.ExportArtifact) ([]byte, error) {
	if a == nil {
		return nil, pageport.Errorf(pageport.EINVALID, "artifact required")
	}

	entries, err := Entries(a)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	level := p.Level
	if level == 0 {
		level = flate.DefaultCompression
	}
	w.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	modified := a.Metadata.CreatedAt
	if modified.IsZero() {
		modified = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	for _, f := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := writeEntry(w, f.Path, f.Content, modified); err != nil {
			return nil, err
		}
	}

	data, err := NewManifest(a.Metadata, entries).Marshal()
	if err != nil {
		return nil, err
	}
	if err := writeEntry(w, ManifestPath, data, modified); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Entries lists every file an artifact ships with in archive order: the
// generated files, the stage reports, then INSTALL.txt. Paths that would
// escape the extraction directory are rejected.
func Entries(a *pageport.ExportArtifact) ([]pageport.File, error) {
	entries := append([]pageport.File(nil), a.Files...)
	for _, name := range pageport.ReportNames() {
		if report, ok := a.Reports[name]; ok {
			entries = append(entries, pageport.File{Path: name.Path(), Group: pageport.GroupReport, Content: []byte(report)})
		}
	}
	entries = append(entries, pageport.File{Path: InstallPath, Group: pageport.GroupManifest, Content: []byte(install(a))})

	seen := make(map[string]bool, len(entries))
	for _, f := range entries {
		if err := pageport.ValidatePath(f.Path); err != nil {
			return nil, err
		}
		if f.Path == ManifestPath || seen[f.Path] {
			return nil, pageport.Errorf(pageport.EINVALID, "duplicate archive path %q", f.Path)
		}
		seen[f.Path] = true
	}
	return entries, nil
}

// NewManifest describes entries with their sizes and checksums.
func NewManifest(meta pageport.ArtifactMetadata, entries []pageport.File) *Manifest {
	m := &Manifest{Metadata: meta}
	for _, f := range entries {
		m.Files = append(m.Files, ManifestEntry{
			Path:     f.Path,
			Group:    f.Group,
			Size:     int64(len(f.Content)),
			Checksum: Checksum(f.Content),
		})
	}
	return m
}

// Marshal renders the manifest as indented JSON.
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

func install(a *pageport.ExportArtifact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Builder: %s\n", a.Metadata.BuilderID)
	if a.Metadata.PluginFreeScore != nil {
		fmt.Fprintf(&b, "Plugin-free score: %d/100\n", *a.Metadata.PluginFreeScore)
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(a.Instructions))
	b.WriteString("\n")
	return b.String()
}

func writeEntry(w *zip.Writer, name string, content []byte, modified time.Time) error {
	fw, err := w.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := fw.Write(content); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Checksum returns the xxhash64 of content as lowercase hex.
func Checksum(content []byte) string {
	return fmt.Sprintf("%x", xxhash.Sum64(content))
}

// Open reads an archive written by Package. File groups come from the
// manifest and every checksum is verified. Report, install and manifest
// entries are not returned as files.
func Open(data []byte) (*Manifest, []pageport.File, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, pageport.Errorf(pageport.EINVALID, "failed to read archive: %v", err)
	}

	contents := make(map[string][]byte, len(r.File))
	for _, zf := range r.File {
		if err := pageport.ValidatePath(zf.Name); err != nil {
			return nil, nil, err
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", zf.Name, err)
		}
		b, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", zf.Name, err)
		}
		contents[zf.Name] = b
	}

	raw, ok := contents[ManifestPath]
	if !ok {
		return nil, nil, pageport.Errorf(pageport.EINVALID, "archive has no %s", ManifestPath)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, pageport.Errorf(pageport.EINVALID, "failed to parse manifest: %v", err)
	}

	var files []pageport.File
	for _, e := range m.Files {
		content, ok := contents[e.Path]
		if !ok {
			return nil, nil, pageport.Errorf(pageport.EINVALID, "manifest lists missing file %q", e.Path)
		}
		if Checksum(content) != e.Checksum {
			return nil, nil, pageport.Errorf(pageport.EINVALID, "checksum mismatch for %q", e.Path)
		}
		if e.Group == pageport.GroupReport || e.Group == pageport.GroupManifest {
			continue
		}
		files = append(files, pageport.File{Path: e.Path, Group: e.Group, Content: content})
	}
	return &m, files, nil
}
