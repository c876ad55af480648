package export_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/pageport"
	"github.com/fwojciec/pageport/builder"
	"github.com/fwojciec/pageport/export"
	"github.com/fwojciec/pageport/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fixture wires an Exporter entirely from mocks. Each engine echoes its
// input with a recognizable marker so tests can follow content through the
// pipeline.
type fixture struct {
	exporter *export.Exporter

	mu     sync.Mutex
	events []export.ProgressEvent
	built  *pageport.BuildInput
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{}
	b := &mock.Builder{
		IDFn: func() pageport.BuilderID { return pageport.BuilderGutenberg },
		GenerateFn: func(_ context.Context, in *pageport.BuildInput) ([]pageport.File, error) {
			f.built = in
			return []pageport.File{
				{Path: "content.html", Group: pageport.GroupMarkup, Content: []byte(in.HTML)},
				{Path: "assets/custom.css", Group: pageport.GroupStyle, Content: []byte(strings.Join(in.CSS, "\n"))},
			}, nil
		},
		InstructionsFn: func() string { return "install it" },
	}

	f.exporter = &export.Exporter{
		Builders: &mock.BuilderRegistry{
			BuilderFn: func(id pageport.BuilderID) (pageport.Builder, error) {
				if id != pageport.BuilderGutenberg {
					return nil, pageport.Errorf(pageport.EUNSUPPORTED, "unknown builder %q", id)
				}
				return b, nil
			},
		},
		Embedder: &mock.Embedder{
			EmbedFn: func(_ context.Context, in pageport.EmbedInput, _ pageport.EmbedOptions) (*pageport.EmbedResult, error) {
				return &pageport.EmbedResult{HTML: in.HTML + "<!--embedded-->"}, nil
			},
		},
		Eliminator: &mock.Eliminator{
			EliminateHTMLFn: func(_ context.Context, html string) (*pageport.EliminationResult, error) {
				return &pageport.EliminationResult{Target: "html", CleanedContent: html + "<!--clean-->"}, nil
			},
			EliminateCSSFn: func(_ context.Context, name, css string) (*pageport.EliminationResult, error) {
				return &pageport.EliminationResult{Target: name, CleanedContent: "clean:" + css}, nil
			},
			EliminateJSFn: func(_ context.Context, name, js string) (*pageport.EliminationResult, error) {
				return &pageport.EliminationResult{Target: name, CleanedContent: "clean:" + js}, nil
			},
		},
		Verifier: &mock.Verifier{
			VerifyFn: func(_ context.Context, _ []pageport.File, _ pageport.BuilderID) (*pageport.VerificationReport, error) {
				return &pageport.VerificationReport{IsPluginFree: true, Score: 95}, nil
			},
		},
		Detector: &mock.PlatformDetector{
			DetectFn: func(_ string) string { return "elementor" },
		},
		ElementSource: func(_ string) pageport.DataSource {
			return &mock.DataSource{
				KindFn: func() pageport.SourceKind { return pageport.SourceExtractedElements },
				BuildFn: func(_ context.Context, _ pageport.IDGenerator) (*pageport.Document, error) {
					return &pageport.Document{Source: pageport.SourceExtractedElements}, nil
				},
			}
		},
		BlockSource: func(_ []pageport.Block) pageport.DataSource {
			return &mock.DataSource{
				KindFn: func() pageport.SourceKind { return pageport.SourceNativeBlocks },
				BuildFn: func(_ context.Context, _ pageport.IDGenerator) (*pageport.Document, error) {
					return &pageport.Document{Source: pageport.SourceNativeBlocks}, nil
				},
			}
		},
		Now: func() time.Time { return fixedNow },
		Progress: func(ev export.ProgressEvent) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.events = append(f.events, ev)
		},
	}
	return f
}

func (f *fixture) stages() []export.Stage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []export.Stage
	for _, ev := range f.events {
		out = append(out, ev.Stage)
	}
	return out
}

func (f *fixture) skipped() []export.Stage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []export.Stage
	for _, ev := range f.events {
		if ev.Skipped {
			out = append(out, ev.Stage)
		}
	}
	return out
}

func newInput() *pageport.ExportInput {
	return &pageport.ExportInput{
		HTML:   "<p>hello</p>",
		CSS:    []string{".a{}", ".b{}"},
		JS:     []string{"run();"},
		Target: pageport.BuilderGutenberg,
		Theme:  pageport.ThemeMetadata{Name: "Landing"},
		Flags:  pageport.DefaultExportFlags(),
	}
}

func TestExporter_Export(t *testing.T) {
	t.Parallel()

	t.Run("runs every stage in order", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		a, err := f.exporter.Export(context.Background(), newInput())

		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, []export.Stage{
			export.StageInit,
			export.StageBudgetGate,
			export.StageAssetEmbed,
			export.StageDependencyEliminate,
			export.StageBuilderGenerate,
			export.StageVerify,
			export.StagePackage,
			export.StageDone,
		}, f.stages())
		assert.Empty(t, f.skipped())
	})

	t.Run("builder receives embedded and cleaned content", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		in := newInput()

		_, err := f.exporter.Export(context.Background(), in)

		require.NoError(t, err)
		require.NotNil(t, f.built)
		assert.Equal(t, "<p>hello</p><!--embedded--><!--clean-->", f.built.HTML)
		assert.Equal(t, []string{"clean:.a{}", "clean:.b{}"}, f.built.CSS)
		assert.Equal(t, []string{"clean:run();"}, f.built.JS)
		assert.Equal(t, "Landing", f.built.Theme.Name)
		assert.Equal(t, []string{".a{}", ".b{}"}, in.CSS, "input must not be mutated")
	})

	t.Run("rejects unknown builder before any stage", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		in := newInput()
		in.Target = "wix"

		a, err := f.exporter.Export(context.Background(), in)

		require.Error(t, err)
		assert.Nil(t, a)
		assert.Equal(t, pageport.EUNSUPPORTED, pageport.ErrorCode(err))
		assert.Empty(t, f.stages())
	})

	t.Run("rejects input without content", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		in := newInput()
		in.HTML = ""

		_, err := f.exporter.Export(context.Background(), in)

		assert.Equal(t, pageport.EINVALID, pageport.ErrorCode(err))
		assert.Empty(t, f.stages())
	})

	t.Run("budget violations abort without override", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		in := newInput()
		in.HTML = strings.Repeat("x", 100)
		in.CustomBudget = &pageport.Budget{HTML: 10}

		a, err := f.exporter.Export(context.Background(), in)

		require.Error(t, err)
		assert.Nil(t, a)
		assert.Equal(t, pageport.EBUDGET, pageport.ErrorCode(err))

		var be *pageport.BudgetExceededError
		require.True(t, errors.As(err, &be))
		require.Len(t, be.Report.Violations, 1)
		assert.Equal(t, pageport.CategoryHTML, be.Report.Violations[0].Category)
		assert.Equal(t, pageport.SeverityCritical, be.Report.Violations[0].Severity)
		assert.Nil(t, f.built, "builder must not run")
		assert.Equal(t, []export.Stage{export.StageInit, export.StageAbort}, f.stages())
	})

	t.Run("budget override lets the export proceed", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		in := newInput()
		in.HTML = strings.Repeat("x", 100)
		in.CustomBudget = &pageport.Budget{HTML: 10}
		in.Flags.BudgetOverride = true

		a, err := f.exporter.Export(context.Background(), in)

		require.NoError(t, err)
		require.NotNil(t, a.Budget)
		assert.True(t, a.Budget.RequiresOverride)
		assert.Contains(t, a.Reports[pageport.ReportBudget], "Status: passed with override")
		assert.Contains(t, a.Reports[pageport.ReportBudget], "[critical] html html")
	})

	t.Run("budget counts images from asset bytes", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		in := newInput()
		in.ImagePaths = []string{"img/a.png", "img/missing.png"}
		in.AssetBytes = map[string][]byte{"img/a.png": make([]byte, 300)}

		a, err := f.exporter.Export(context.Background(), in)

		require.NoError(t, err)
		assert.Equal(t, int64(300), a.Budget.Sizes.Images)
		assert.Contains(t, a.Reports[pageport.ReportBudget], "img/missing.png: size unknown")
	})

	t.Run("disabled stages are skipped and still reported", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		in := newInput()
		in.Flags = pageport.ExportFlags{}

		a, err := f.exporter.Export(context.Background(), in)

		require.NoError(t, err)
		assert.Equal(t, []export.Stage{
			export.StageBudgetGate,
			export.StageAssetEmbed,
			export.StageDependencyEliminate,
			export.StageVerify,
		}, f.skipped())
		assert.Equal(t, "<p>hello</p>", f.built.HTML)
		assert.Equal(t, []string{".a{}", ".b{}"}, f.built.CSS)
		assert.Nil(t, a.Metadata.PluginFreeScore)
		for _, name := range pageport.ReportNames() {
			assert.Contains(t, a.Reports[name], "Status: skipped", name)
		}
	})

	t.Run("optional stage failures become report notes", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.exporter.Embedder = &mock.Embedder{
			EmbedFn: func(_ context.Context, _ pageport.EmbedInput, _ pageport.EmbedOptions) (*pageport.EmbedResult, error) {
				return nil, pageport.Errorf(pageport.EINVALID, "broken markup")
			},
		}
		f.exporter.Eliminator.(*mock.Eliminator).EliminateCSSFn = func(_ context.Context, name, css string) (*pageport.EliminationResult, error) {
			if name == "css[1]" {
				return nil, errors.New("boom")
			}
			return &pageport.EliminationResult{Target: name, CleanedContent: "clean:" + css}, nil
		}
		f.exporter.Verifier = &mock.Verifier{
			VerifyFn: func(_ context.Context, _ []pageport.File, _ pageport.BuilderID) (*pageport.VerificationReport, error) {
				return nil, errors.New("scanner crashed")
			},
		}

		a, err := f.exporter.Export(context.Background(), newInput())

		require.NoError(t, err)
		assert.Equal(t, "<p>hello</p><!--clean-->", f.built.HTML)
		assert.Equal(t, []string{"clean:.a{}", ".b{}"}, f.built.CSS)
		assert.Contains(t, a.Reports[pageport.ReportEmbedding], "asset embedding failed, references left unchanged: broken markup")
		assert.Contains(t, a.Reports[pageport.ReportElimination], "css[1]: elimination failed, content kept: boom")
		assert.Contains(t, a.Reports[pageport.ReportVerification], "verification failed: scanner crashed")
		assert.Nil(t, a.Metadata.PluginFreeScore)
	})

	t.Run("generation errors are fatal", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.exporter.Builders = &mock.BuilderRegistry{
			BuilderFn: func(_ pageport.BuilderID) (pageport.Builder, error) {
				return &mock.Builder{
					GenerateFn: func(_ context.Context, _ *pageport.BuildInput) ([]pageport.File, error) {
						return nil, errors.New("template failure")
					},
				}, nil
			},
		}

		a, err := f.exporter.Export(context.Background(), newInput())

		require.Error(t, err)
		assert.Nil(t, a)
		assert.Contains(t, err.Error(), "template failure")
		assert.Equal(t, export.StageAbort, f.stages()[len(f.stages())-1])
	})

	t.Run("native blocks are preferred over markup", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.exporter.ElementSource = func(_ string) pageport.DataSource {
			t.Error("element source must not be used when blocks are present")
			return nil
		}
		in := newInput()
		in.Blocks = []pageport.Block{{Name: "core/paragraph", InnerHTML: "<p>x</p>"}}

		a, err := f.exporter.Export(context.Background(), in)

		require.NoError(t, err)
		assert.Equal(t, pageport.SourceNativeBlocks, a.Metadata.Source)
	})

	t.Run("ships upload-flagged images", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.exporter.Embedder = &mock.Embedder{
			EmbedFn: func(_ context.Context, in pageport.EmbedInput, _ pageport.EmbedOptions) (*pageport.EmbedResult, error) {
				return &pageport.EmbedResult{
					HTML: in.HTML,
					Decisions: []pageport.AssetDecision{
						{Path: "img/logo.png", Kind: pageport.AssetImage, Decision: pageport.DecisionInline},
						{Path: "./img/hero.jpg", Kind: pageport.AssetImage, Decision: pageport.DecisionWordPress},
					},
				}, nil
			},
		}
		in := newInput()
		in.ImagePaths = []string{"img/logo.png", "img/hero.jpg"}
		in.AssetBytes = map[string][]byte{
			"img/logo.png": []byte("logo"),
			"img/hero.jpg": []byte("hero"),
		}

		a, err := f.exporter.Export(context.Background(), in)

		require.NoError(t, err)
		images := a.FilesByGroup(pageport.GroupImage)
		require.Len(t, images, 1)
		assert.Equal(t, "wp-content/uploads/pageport/hero.jpg", images[0].Path)
		assert.Equal(t, []byte("hero"), images[0].Content)
		assert.Contains(t, a.Reports[pageport.ReportEmbedding], "./img/hero.jpg -> wp-content/uploads/pageport/hero.jpg")
	})

	t.Run("fills artifact metadata", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		a, err := f.exporter.Export(context.Background(), newInput())

		require.NoError(t, err)
		assert.Equal(t, pageport.BuilderGutenberg, a.Metadata.BuilderID)
		assert.Equal(t, pageport.SourceExtractedElements, a.Metadata.Source)
		assert.Equal(t, "elementor", a.Metadata.SourcePlatform)
		assert.Equal(t, fixedNow, a.Metadata.CreatedAt)
		assert.Equal(t, 2, a.Metadata.FileCount)
		require.NotNil(t, a.Metadata.PluginFreeScore)
		assert.Equal(t, 95, *a.Metadata.PluginFreeScore)
		assert.Equal(t, "install it", a.Instructions)

		var total int64
		for _, file := range a.Files {
			total += int64(len(file.Content))
		}
		assert.Equal(t, total, a.Metadata.TotalSize)
		assert.Len(t, a.Reports, len(pageport.ReportNames()))
	})

	t.Run("returns context error when canceled", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		a, err := f.exporter.Export(ctx, newInput())

		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, a)
		assert.Nil(t, f.built)
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("exports captured markup to gutenberg blocks", func(t *testing.T) {
		t.Parallel()

		in := &pageport.ExportInput{
			HTML:   `<body><h1>Hi</h1><p>World</p></body>`,
			Target: pageport.BuilderGutenberg,
			Flags:  pageport.DefaultExportFlags(),
		}

		a, err := export.New().Export(context.Background(), in)

		require.NoError(t, err)
		content := a.File(builder.GutenbergContentPath)
		require.NotNil(t, content)
		assert.Equal(t,
			"<!-- wp:heading {\"level\":1} -->\n<h1>Hi</h1>\n<!-- /wp:heading -->\n\n"+
				"<!-- wp:paragraph -->\n<p>World</p>\n<!-- /wp:paragraph -->\n",
			string(content.Content))
		require.NotNil(t, a.Metadata.PluginFreeScore)
		assert.Equal(t, 100, *a.Metadata.PluginFreeScore)
	})

	t.Run("clean plugin-free export is fully plugin-free", func(t *testing.T) {
		t.Parallel()

		in := &pageport.ExportInput{
			HTML:   `<body><h1>Hi</h1><p>World</p></body>`,
			Target: pageport.BuilderPluginFree,
			Flags:  pageport.DefaultExportFlags(),
		}

		a, err := export.New().Export(context.Background(), in)

		require.NoError(t, err)
		require.NotNil(t, a.Verification)
		assert.Empty(t, a.Verification.Dependencies)
		assert.True(t, a.Verification.IsPluginFree)
		require.NotNil(t, a.Metadata.PluginFreeScore)
		assert.Equal(t, 100, *a.Metadata.PluginFreeScore)
	})

	t.Run("every builder scores 100 on clean markup", func(t *testing.T) {
		t.Parallel()

		for _, id := range pageport.BuilderIDs() {
			a, err := export.New().Export(context.Background(), &pageport.ExportInput{
				HTML:   `<body><h1>Hi</h1><p>World</p></body>`,
				Target: id,
				Flags:  pageport.DefaultExportFlags(),
			})

			require.NoError(t, err, id)
			require.NotNil(t, a.Metadata.PluginFreeScore, id)
			assert.Equal(t, 100, *a.Metadata.PluginFreeScore, id)
			assert.True(t, a.Verification.IsPluginFree, id)
		}
	})

	t.Run("extended keyword and hsl colors reach the output as hex", func(t *testing.T) {
		t.Parallel()

		in := &pageport.ExportInput{
			HTML:   `<body><section style="background-color: slateblue; color: hsl(0, 100%, 50%)"><p>x</p></section></body>`,
			Target: pageport.BuilderGutenberg,
			Flags:  pageport.DefaultExportFlags(),
		}

		a, err := export.New().Export(context.Background(), in)

		require.NoError(t, err)
		content := a.File(builder.GutenbergContentPath)
		require.NotNil(t, content)
		assert.Contains(t, string(content.Content), "#6a5acd")
		assert.Contains(t, string(content.Content), "#ff0000")
	})

	t.Run("removes foreign classes and cites the family", func(t *testing.T) {
		t.Parallel()

		in := &pageport.ExportInput{
			HTML:   `<body><div class="hero elementor-widget-heading"><h2>Hi</h2></div></body>`,
			Target: pageport.BuilderPluginFree,
			Flags:  pageport.DefaultExportFlags(),
		}

		a, err := export.New().Export(context.Background(), in)

		require.NoError(t, err)
		assert.Contains(t, a.Reports[pageport.ReportElimination], "[elementor] class: elementor-widget-heading")
		for _, file := range a.Files {
			assert.NotContains(t, string(file.Content), "elementor-widget-heading", file.Path)
		}
	})

	t.Run("native blocks are cleaned of foreign classes and shortcodes", func(t *testing.T) {
		t.Parallel()

		blocks := []pageport.Block{{
			Name:  "core/group",
			Attrs: map[string]any{"className": "elementor-widget-container hero"},
			InnerBlocks: []pageport.Block{
				{Name: "core/paragraph", InnerHTML: `<p class="elementor-widget-container">[et_pb_text]Hello[/et_pb_text]</p>`},
				{Name: "core/html", InnerHTML: `<div class="elementor-widget-container">Raw</div>`},
			},
		}}
		in := &pageport.ExportInput{
			Blocks: blocks,
			Target: pageport.BuilderGutenberg,
			Flags:  pageport.DefaultExportFlags(),
		}

		a, err := export.New().Export(context.Background(), in)

		require.NoError(t, err)
		assert.Equal(t, pageport.SourceNativeBlocks, a.Metadata.Source)
		for _, file := range a.Files {
			assert.NotContains(t, string(file.Content), "elementor-widget-container", file.Path)
			assert.NotContains(t, string(file.Content), "et_pb_text", file.Path)
		}
		content := a.File(builder.GutenbergContentPath)
		require.NotNil(t, content)
		assert.Contains(t, string(content.Content), "Hello")
		assert.Contains(t, a.Reports[pageport.ReportElimination], "[divi] shortcode: [et_pb_text]")
		assert.Contains(t, a.Reports[pageport.ReportElimination], "[elementor] class: elementor-widget-container")
		assert.NotContains(t, a.Reports[pageport.ReportElimination], "Removed items: 0")
		require.NotNil(t, a.Metadata.PluginFreeScore)
		assert.Equal(t, 100, *a.Metadata.PluginFreeScore)
		assert.Equal(t, "elementor-widget-container hero", blocks[0].Attrs["className"])
	})

	t.Run("unknown target is unsupported", func(t *testing.T) {
		t.Parallel()

		_, err := export.New().Export(context.Background(), &pageport.ExportInput{
			HTML:   "<p>x</p>",
			Target: "wix",
		})

		assert.Equal(t, pageport.EUNSUPPORTED, pageport.ErrorCode(err))
	})
}

func TestStage_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "budget-gate", export.StageBudgetGate.String())
	assert.Equal(t, "abort", export.StageAbort.String())
	assert.Equal(t, "stage(42)", export.Stage(42).String())
}
