package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pageport"
	"github.com/fwojciec/pageport/builder"
	"github.com/fwojciec/pageport/export"
	ppprom "github.com/fwojciec/pageport/prometheus"
	"github.com/fwojciec/pageport/signature"
	ppslog "github.com/fwojciec/pageport/slog"
	"github.com/fwojciec/pageport/sqlite"
	"github.com/fwojciec/pageport/uuid"
	"github.com/fwojciec/pageport/yaml"
	"github.com/fwojciec/pageport/zip"
	prom "github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by the export history.
	DB *sqlite.DB

	// Export history. Opened from DBPath when nil.
	Records pageport.ExportRecordService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pageport"),
		kong.Description("Export captured web pages to WordPress page builders."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pageport --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	deps.Config = &yaml.Config{}
	if cli.Config != "" {
		cfg, err := yaml.Load(cli.Config)
		if err != nil {
			fmt.Fprintf(stderr, "Hint: Run 'pageport init' to write an example configuration\n")
			return fmt.Errorf("failed to load config %q: %w", cli.Config, err)
		}
		deps.Config = cfg
		if cfg.Database != "" && os.Getenv("PAGEPORT_DB") == "" {
			m.DBPath = cfg.Database
		}
	}

	reg := signature.Default()
	deps.Builders = builder.NewRegistry()
	deps.Verifier = signature.NewVerifier(reg)
	deps.Packager = zip.NewPackager()

	// Only commands touching the export history open the database.
	if cmd == "export" || cmd == "history" {
		records := m.Records
		if records == nil {
			m.DB = sqlite.NewDB(m.DBPath)
			if err := m.DB.Open(); err != nil {
				fmt.Fprintf(stderr, "Hint: Set PAGEPORT_DB to use a different database path\n")
				return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
			}
			defer m.Close()
			records = sqlite.NewExportRecordService(m.DB)
		}
		deps.Records = records
	}

	if cmd == "export" {
		exp := export.New()
		exp.Builders = ppslog.NewLoggingRegistry(deps.Builders, deps.Logger)
		exp.Detector = ppslog.NewLoggingDetector(exp.Detector, deps.Logger)
		exp.Concurrency = cli.Export.Concurrency
		if cli.Export.RandomIDs {
			// Builders that key nodes by ID need a leading letter.
			exp.NewIDs = func() pageport.IDGenerator {
				return &uuid.Generator{Prefix: "n"}
			}
		}
		logger := deps.Logger
		exp.Progress = func(ev export.ProgressEvent) {
			logger.Debug("export stage", "stage", ev.Stage.String(), "skipped", ev.Skipped, "err", ev.Err)
		}

		deps.Metrics = prom.NewRegistry()
		deps.Exporter = ppprom.NewExportService(
			ppslog.NewLoggingExportService(exp, deps.Logger),
			deps.Metrics,
		)
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("PAGEPORT_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "pageport.db"
	}
	dir := filepath.Join(home, ".pageport")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "pageport.db")
}
