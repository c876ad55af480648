// Package export provides the export pipeline orchestration.
// It coordinates budget validation, asset embedding, dependency elimination,
// builder generation and plugin-free verification for one captured page.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/pageport"
	"github.com/fwojciec/pageport/blocks"
	"github.com/fwojciec/pageport/builder"
	"github.com/fwojciec/pageport/goquery"
	"github.com/fwojciec/pageport/signature"
	"golang.org/x/sync/errgroup"
)

var _ pageport.ExportService = (*Exporter)(nil)

// Exporter runs the export state machine.
type Exporter struct {
	Builders   pageport.BuilderRegistry
	Embedder   pageport.Embedder
	Eliminator pageport.Eliminator
	Verifier   pageport.Verifier
	Detector   pageport.PlatformDetector

	ElementSource func(html string) pageport.DataSource
	BlockSource   func(blocks []pageport.Block) pageport.DataSource
	NewIDs        func() pageport.IDGenerator

	Concurrency int
	Now         func() time.Time
	Progress    ProgressFunc
}

// New returns an Exporter wired with the default engines. Every engine
// shares one signature registry.
func New() *Exporter {
	reg := signature.Default()
	return &Exporter{
		Builders:   builder.NewRegistry(),
		Embedder:   goquery.NewEmbedder(),
		Eliminator: goquery.NewEliminator(reg),
		Verifier:   signature.NewVerifier(reg),
		Detector:   goquery.NewDetector(reg),
		ElementSource: func(html string) pageport.DataSource {
			return goquery.NewElementSource(html)
		},
		BlockSource: func(b []pageport.Block) pageport.DataSource {
			return blocks.NewSource(b)
		},
		NewIDs: func() pageport.IDGenerator {
			return pageport.NewCounterIDs()
		},
	}
}

// Stage is one state of the export pipeline.
type Stage int

const (
	StageInit Stage = iota
	StageBudgetGate
	StageAssetEmbed
	StageDependencyEliminate
	StageBuilderGenerate
	StageVerify
	StagePackage
	StageDone
	StageAbort
)

func (s Stage) String() string {
	switch s {
	case StageInit:
		return "init"
	case StageBudgetGate:
		return "budget-gate"
	case StageAssetEmbed:
		return "asset-embed"
	case StageDependencyEliminate:
		return "dependency-eliminate"
	case StageBuilderGenerate:
		return "builder-generate"
	case StageVerify:
		return "verify"
	case StagePackage:
		return "package"
	case StageDone:
		return "done"
	case StageAbort:
		return "abort"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// ProgressEvent reports a stage transition.
type ProgressEvent struct {
	Stage   Stage
	Skipped bool
	Err     error
}

// ProgressFunc is a callback for reporting pipeline progress.
type ProgressFunc func(event ProgressEvent)

// run holds the state threaded through the stages of one export.
type run struct {
	in      *pageport.ExportInput
	builder pageport.Builder

	html   string
	css    []string
	js     []string
	blocks []pageport.Block

	artifact *pageport.ExportArtifact
	notes    map[pageport.ReportName][]string
}

func (r *run) note(name pageport.ReportName, format string, args ...any) {
	r.notes[name] = append(r.notes[name], fmt.Sprintf(format, args...))
}

type step struct {
	stage Stage
	fn    func(ctx context.Context, r *run) (skipped bool, err error)
}

// Export runs every enabled stage and returns the assembled artifact. The
// target builder is resolved before any stage runs. Optional stage failures
// become notes in that stage's report; only budget rejection, document
// construction, generation and cancellation are fatal.
func (e *Exporter) Export(ctx context.Context, in *pageport.ExportInput) (*pageport.ExportArtifact, error) {
	if in == nil {
		return nil, pageport.Errorf(pageport.EINVALID, "export input required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	b, err := e.Builders.Builder(in.Target)
	if err != nil {
		return nil, err
	}

	r := &run{
		in:      in,
		builder: b,
		html:    in.HTML,
		css:     append([]string(nil), in.CSS...),
		js:      append([]string(nil), in.JS...),
		blocks:  in.Blocks,
		artifact: &pageport.ExportArtifact{
			Metadata: pageport.ArtifactMetadata{BuilderID: in.Target},
		},
		notes: make(map[pageport.ReportName][]string),
	}
	if e.Detector != nil && in.HTML != "" {
		r.artifact.Metadata.SourcePlatform = e.Detector.Detect(in.HTML)
	}
	e.emit(ProgressEvent{Stage: StageInit})

	steps := []step{
		{StageBudgetGate, e.budgetGate},
		{StageAssetEmbed, e.embedAssets},
		{StageDependencyEliminate, e.eliminate},
		{StageBuilderGenerate, e.generate},
		{StageVerify, e.verify},
		{StagePackage, e.assemble},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		skipped, err := s.fn(ctx, r)
		if err != nil {
			e.emit(ProgressEvent{Stage: StageAbort, Err: err})
			return nil, err
		}
		e.emit(ProgressEvent{Stage: s.stage, Skipped: skipped})
	}

	e.emit(ProgressEvent{Stage: StageDone})
	return r.artifact, nil
}

func (e *Exporter) emit(ev ProgressEvent) {
	if e.Progress != nil {
		e.Progress(ev)
	}
}

func (e *Exporter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

// reason renders err for a report note.
func reason(err error) string {
	var e *pageport.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// budgetGate measures the captured input before any transform.
func (e *Exporter) budgetGate(_ context.Context, r *run) (bool, error) {
	in := r.in
	if !in.Flags.ValidateBudget {
		r.note(pageport.ReportBudget, "budget validation disabled")
		return true, nil
	}

	budget := pageport.DefaultBudget()
	if in.CustomBudget != nil {
		budget = in.CustomBudget.Merge(budget)
	}
	if in.Flags.BudgetOverride {
		budget.AllowOverride = true
	}

	var images []pageport.BudgetImage
	for _, p := range in.ImagePaths {
		data, ok := pageport.LookupAsset(in.AssetBytes, p)
		if !ok {
			r.note(pageport.ReportBudget, "%s: size unknown, not counted", p)
			continue
		}
		images = append(images, pageport.BudgetImage{Path: p, Size: int64(len(data))})
	}

	report := pageport.ValidateBudget(pageport.BudgetInput{
		HTML:   in.HTML,
		CSS:    in.CSS,
		JS:     in.JS,
		Images: images,
	}, budget)
	r.artifact.Budget = report
	if !report.CanExport {
		return false, &pageport.BudgetExceededError{Report: report}
	}
	return false, nil
}

func (e *Exporter) embedAssets(ctx context.Context, r *run) (bool, error) {
	in := r.in
	switch {
	case !in.Flags.EmbedAssets:
		r.note(pageport.ReportEmbedding, "asset embedding disabled")
		return true, nil
	case e.Embedder == nil:
		r.note(pageport.ReportEmbedding, "no embedding engine configured")
		return true, nil
	case r.html == "":
		r.note(pageport.ReportEmbedding, "no markup to embed assets into")
		return true, nil
	}

	opts := pageport.DefaultEmbedOptions()
	if in.Embed != nil {
		opts = *in.Embed
	}
	res, err := e.Embedder.Embed(ctx, pageport.EmbedInput{
		HTML:       r.html,
		ImagePaths: in.ImagePaths,
		AssetBytes: in.AssetBytes,
	}, opts)
	if err != nil {
		if canceled(err) {
			return false, err
		}
		r.note(pageport.ReportEmbedding, "asset embedding failed, references left unchanged: %s", reason(err))
		return false, nil
	}
	r.html = res.HTML
	r.artifact.Embedding = res
	return false, nil
}

// eliminate cleans native blocks, then the markup and every stylesheet and
// script concurrently. A piece that fails keeps its original content.
func (e *Exporter) eliminate(ctx context.Context, r *run) (bool, error) {
	if !r.in.Flags.EliminateDependencies {
		r.note(pageport.ReportElimination, "dependency elimination disabled")
		return true, nil
	}
	if e.Eliminator == nil {
		r.note(pageport.ReportElimination, "no elimination engine configured")
		return true, nil
	}

	var blockResult *pageport.EliminationResult
	if len(r.blocks) > 0 {
		cleaned, res, err := goquery.EliminateBlocks(ctx, e.Eliminator, r.blocks)
		switch {
		case err != nil && canceled(err):
			return false, err
		case err != nil:
			r.note(pageport.ReportElimination, "blocks: elimination failed, content kept: %s", reason(err))
		default:
			r.blocks, blockResult = cleaned, res
		}
	}

	type job struct {
		name  string
		apply func(cleaned string)
		run   func(ctx context.Context) (*pageport.EliminationResult, error)
	}
	var jobs []job
	if r.html != "" {
		html := r.html
		jobs = append(jobs, job{
			name:  "html",
			apply: func(s string) { r.html = s },
			run: func(ctx context.Context) (*pageport.EliminationResult, error) {
				return e.Eliminator.EliminateHTML(ctx, html)
			},
		})
	}
	for i, css := range r.css {
		name := fmt.Sprintf("css[%d]", i)
		jobs = append(jobs, job{
			name:  name,
			apply: func(s string) { r.css[i] = s },
			run: func(ctx context.Context) (*pageport.EliminationResult, error) {
				return e.Eliminator.EliminateCSS(ctx, name, css)
			},
		})
	}
	for i, js := range r.js {
		name := fmt.Sprintf("js[%d]", i)
		jobs = append(jobs, job{
			name:  name,
			apply: func(s string) { r.js[i] = s },
			run: func(ctx context.Context) (*pageport.EliminationResult, error) {
				return e.Eliminator.EliminateJS(ctx, name, js)
			},
		})
	}

	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]*pageport.EliminationResult, len(jobs))
	errs := make([]error, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, j := range jobs {
		g.Go(func() error {
			res, err := j.run(gctx)
			if err != nil && canceled(err) {
				return err
			}
			results[i], errs[i] = res, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	r.artifact.Elimination = make([]*pageport.EliminationResult, 0, len(jobs)+1)
	if blockResult != nil {
		r.artifact.Elimination = append(r.artifact.Elimination, blockResult)
	}
	for i, j := range jobs {
		if errs[i] != nil {
			r.note(pageport.ReportElimination, "%s: elimination failed, content kept: %s", j.name, reason(errs[i]))
			continue
		}
		if results[i] == nil {
			continue
		}
		j.apply(results[i].CleanedContent)
		r.artifact.Elimination = append(r.artifact.Elimination, results[i])
	}
	return false, nil
}

// generate builds the document model and runs the target builder. Native
// blocks are preferred over captured markup when both are present.
func (e *Exporter) generate(ctx context.Context, r *run) (bool, error) {
	src, err := e.source(r)
	if err != nil {
		return false, err
	}
	ids := pageport.IDGenerator(pageport.NewCounterIDs())
	if e.NewIDs != nil {
		ids = e.NewIDs()
	}

	doc, err := src.Build(ctx, ids)
	if err != nil {
		return false, fmt.Errorf("build document: %w", err)
	}
	r.artifact.Metadata.Source = doc.Source

	files, err := r.builder.Generate(ctx, &pageport.BuildInput{
		Document: doc,
		HTML:     r.html,
		CSS:      r.css,
		JS:       r.js,
		Theme:    r.in.Theme,
	})
	if err != nil {
		return false, fmt.Errorf("generate %s: %w", r.in.Target, err)
	}
	r.artifact.Files = files
	r.artifact.Instructions = r.builder.Instructions()
	return false, nil
}

func (e *Exporter) source(r *run) (pageport.DataSource, error) {
	if len(r.blocks) > 0 && e.BlockSource != nil {
		return e.BlockSource(r.blocks), nil
	}
	if r.html != "" && e.ElementSource != nil {
		return e.ElementSource(r.html), nil
	}
	return nil, pageport.Errorf(pageport.EINVALID, "no data source for input")
}

func (e *Exporter) verify(ctx context.Context, r *run) (bool, error) {
	if !r.in.Flags.VerifyPluginFree {
		r.note(pageport.ReportVerification, "plugin-free verification disabled")
		return true, nil
	}
	if e.Verifier == nil {
		r.note(pageport.ReportVerification, "no verifier configured")
		return true, nil
	}

	report, err := e.Verifier.Verify(ctx, r.artifact.Files, r.in.Target)
	if err != nil {
		if canceled(err) {
			return false, err
		}
		r.note(pageport.ReportVerification, "verification failed: %s", reason(err))
		return false, nil
	}
	r.artifact.Verification = report
	score := report.Score
	r.artifact.Metadata.PluginFreeScore = &score
	return false, nil
}

// assemble ships upload-flagged images, renders every stage report and
// finalizes the metadata.
func (e *Exporter) assemble(_ context.Context, r *run) (bool, error) {
	a := r.artifact
	if a.Embedding != nil {
		for _, p := range a.Embedding.Uploads() {
			data, ok := pageport.LookupAsset(r.in.AssetBytes, p)
			if !ok {
				continue
			}
			dst := pageport.UploadPath(p)
			if a.File(dst) != nil {
				r.note(pageport.ReportEmbedding, "%s: upload path %s already taken, skipped", p, dst)
				continue
			}
			a.Files = append(a.Files, pageport.File{Path: dst, Group: pageport.GroupImage, Content: data})
		}
	}

	a.Reports = map[pageport.ReportName]string{
		pageport.ReportBudget:       FormatBudgetReport(a.Budget, r.notes[pageport.ReportBudget]),
		pageport.ReportEmbedding:    FormatEmbeddingReport(a.Embedding, r.notes[pageport.ReportEmbedding]),
		pageport.ReportElimination:  FormatEliminationReport(a.Elimination, r.notes[pageport.ReportElimination]),
		pageport.ReportVerification: FormatVerificationReport(a.Verification, r.notes[pageport.ReportVerification]),
	}

	var total int64
	for _, f := range a.Files {
		total += int64(len(f.Content))
	}
	a.Metadata.TotalSize = total
	a.Metadata.FileCount = len(a.Files)
	a.Metadata.CreatedAt = e.now()
	return false, nil
}
