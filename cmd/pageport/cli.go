package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/pageport"
	"github.com/fwojciec/pageport/yaml"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Config   *yaml.Config
	Builders pageport.BuilderRegistry
	Exporter pageport.ExportService
	Verifier pageport.Verifier
	Packager pageport.Packager
	Records  pageport.ExportRecordService
	Metrics  *prom.Registry
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"C" type:"path" help:"YAML configuration file"`
	Verbose bool   `short:"v" help:"Log every pipeline stage"`

	Export   ExportCmd   `cmd:"" help:"Export a captured page for a page builder"`
	Builders BuildersCmd `cmd:"" help:"List supported target builders"`
	History  HistoryCmd  `cmd:"" help:"List recorded exports"`
	Verify   VerifyCmd   `cmd:"" help:"Check an exported directory or archive for plugin dependencies"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	HTML   string   `arg:"" name:"html-file" type:"existingfile" help:"Captured page HTML"`
	Target string   `short:"t" help:"Target builder id (see 'pageport builders')"`
	CSS    []string `name:"css" help:"Stylesheet file (repeatable)"`
	JS     []string `name:"js" help:"Script file (repeatable)"`
	Assets string   `short:"a" type:"existingdir" help:"Directory holding referenced images, fonts and media"`
	Blocks string   `type:"existingfile" help:"Native block tree (JSON) used instead of the HTML structure"`
	Out    string   `short:"o" help:"Output zip archive (default <name>-<target>.zip)"`
	Dir    string   `short:"d" help:"Write the artifact as a directory instead of a zip archive"`

	NoEmbed     bool `help:"Skip asset embedding"`
	NoEliminate bool `help:"Skip dependency elimination"`
	NoBudget    bool `help:"Skip budget validation"`
	Override    bool `help:"Continue despite budget violations"`
	NoVerify    bool `help:"Skip plugin-free verification"`

	ThemeName   string `help:"Theme or template name"`
	Author      string `help:"Theme author"`
	SourceURL   string `name:"source-url" help:"URL the page was captured from"`
	MetricsFile string `help:"Write export metrics in Prometheus text format to this file"`
	Concurrency int    `short:"c" default:"4" help:"Concurrent elimination jobs"`
	RandomIDs   bool   `name:"random-ids" help:"Use random node IDs instead of sequential ones"`
}

// BuildersCmd is the "builders" subcommand.
type BuildersCmd struct{}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Target string `short:"t" help:"Only show exports for this builder"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of exports to show"`
}

// VerifyCmd is the "verify" subcommand.
type VerifyCmd struct {
	Path   string `arg:"" type:"path" help:"Exported directory or zip archive"`
	Target string `short:"t" help:"Builder the files target (read from the manifest for archives)"`
	Strict bool   `help:"Fail unless the files are plugin-free"`
}

// InitCmd is the "init" subcommand.
type InitCmd struct {
	Path  string `arg:"" optional:"" default:"pageport.yaml" help:"Configuration file to write"`
	Force bool   `short:"f" help:"Overwrite an existing file"`
}
