package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/pageport"
	"github.com/fwojciec/pageport/blocks"
	"github.com/fwojciec/pageport/export"
	"github.com/fwojciec/pageport/fs"
	ppprom "github.com/fwojciec/pageport/prometheus"
	"github.com/fwojciec/pageport/yaml"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	in, err := c.input(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	artifact, err := deps.Exporter.Export(deps.Ctx, in)
	c.writeMetrics(deps)
	if err != nil {
		var be *pageport.BudgetExceededError
		if errors.As(err, &be) {
			fmt.Fprint(deps.Stderr, export.FormatBudgetReport(be.Report, nil))
			fmt.Fprintln(deps.Stderr, "Hint: Use --override to export anyway")
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	out, err := c.write(deps, artifact, in)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: failed to write output: %s\n", message(err))
		return err
	}

	if deps.Records != nil {
		rec := pageport.NewExportRecord(artifact, in.Theme, out)
		if err := deps.Records.CreateExportRecord(deps.Ctx, rec); err != nil {
			fmt.Fprintf(deps.Stderr, "warning: export not recorded: %s\n", message(err))
		}
	}

	md := artifact.Metadata
	fmt.Fprintf(deps.Stdout, "Exported %d generated files (%s) for %s to %s\n",
		md.FileCount, pageport.FormatBytes(md.TotalSize), md.BuilderID, out)
	if md.SourcePlatform != "" {
		fmt.Fprintf(deps.Stdout, "Source platform: %s\n", md.SourcePlatform)
	}
	if artifact.Budget != nil && len(artifact.Budget.Violations) > 0 {
		fmt.Fprintf(deps.Stdout, "Budget violations: %d (overridden)\n", len(artifact.Budget.Violations))
	}
	if md.PluginFreeScore != nil {
		fmt.Fprintf(deps.Stdout, "Plugin-free score: %d/100\n", *md.PluginFreeScore)
	}
	return nil
}

// input reads every file the command names and merges flags over the
// configuration file.
func (c *ExportCmd) input(deps *Dependencies) (*pageport.ExportInput, error) {
	cfg := deps.Config
	if cfg == nil {
		cfg = &yaml.Config{}
	}

	target := pageport.BuilderID(c.Target)
	if target == "" {
		target = cfg.Target
	}
	if target == "" {
		return nil, pageport.Errorf(pageport.EINVALID, "target builder required: use --target or set target in the config file")
	}

	html, err := os.ReadFile(c.HTML)
	if err != nil {
		return nil, err
	}

	in := &pageport.ExportInput{
		HTML:         string(html),
		Target:       target,
		Theme:        cfg.Theme,
		Flags:        cfg.Flags.Apply(pageport.DefaultExportFlags()),
		CustomBudget: cfg.Budget,
		Embed:        cfg.Embed,
	}

	for _, p := range c.CSS {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		in.CSS = append(in.CSS, string(b))
	}
	for _, p := range c.JS {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		in.JS = append(in.JS, string(b))
	}

	if c.Assets != "" {
		files, err := fs.ReadDir(c.Assets)
		if err != nil {
			return nil, err
		}
		in.AssetBytes = make(map[string][]byte, len(files))
		for _, f := range files {
			in.AssetBytes[f.Path] = f.Content
			if f.Group == pageport.GroupImage {
				in.ImagePaths = append(in.ImagePaths, f.Path)
			}
		}
	}

	if c.Blocks != "" {
		f, err := os.Open(c.Blocks)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if in.Blocks, err = blocks.Decode(f); err != nil {
			return nil, err
		}
	}

	if c.NoEmbed {
		in.Flags.EmbedAssets = false
	}
	if c.NoEliminate {
		in.Flags.EliminateDependencies = false
	}
	if c.NoBudget {
		in.Flags.ValidateBudget = false
	}
	if c.Override {
		in.Flags.BudgetOverride = true
	}
	if c.NoVerify {
		in.Flags.VerifyPluginFree = false
	}

	if c.ThemeName != "" {
		in.Theme.Name = c.ThemeName
	}
	if in.Theme.Name == "" {
		in.Theme.Name = baseName(c.HTML)
	}
	if c.Author != "" {
		in.Theme.Author = c.Author
	}
	if c.SourceURL != "" {
		in.Theme.SourceURL = c.SourceURL
	}
	return in, nil
}

// write stores the artifact as a directory or zip archive and returns the
// output path.
func (c *ExportCmd) write(deps *Dependencies, a *pageport.ExportArtifact, in *pageport.ExportInput) (string, error) {
	if c.Dir != "" {
		dir := filepath.Clean(c.Dir)
		store := fs.NewArtifactStore(filepath.Dir(dir), filepath.Base(dir))
		if err := store.Save(deps.Ctx, a); err != nil {
			_ = store.Abort()
			return "", err
		}
		if err := store.Commit(); err != nil {
			_ = store.Abort()
			return "", err
		}
		return store.Dir(), nil
	}

	out := c.Out
	if out == "" {
		out = filepath.Join(filepath.Dir(c.HTML), fmt.Sprintf("%s-%s.zip", baseName(c.HTML), in.Target))
	}
	data, err := deps.Packager.Package(deps.Ctx, a)
	if err != nil {
		return "", err
	}
	if err := fs.WriteArchive(out, data); err != nil {
		return "", err
	}
	return out, nil
}

func (c *ExportCmd) writeMetrics(deps *Dependencies) {
	if c.MetricsFile == "" || deps.Metrics == nil {
		return
	}
	if err := ppprom.WriteToTextfile(c.MetricsFile, deps.Metrics); err != nil {
		fmt.Fprintf(deps.Stderr, "warning: failed to write metrics: %s\n", err)
	}
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// message renders err for the terminal. Errors outside the application
// code scheme keep their text.
func message(err error) string {
	if pageport.ErrorCode(err) == pageport.EINTERNAL {
		return err.Error()
	}
	return pageport.ErrorMessage(err)
}
