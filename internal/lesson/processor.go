// Package lesson drives a video from transcription to the finished lesson
// directory, one at a time or in batches.
package lesson

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alnah/go-aula/internal/analyze"
	"github.com/alnah/go-aula/internal/format"
	"github.com/alnah/go-aula/internal/pipeline"
	"github.com/alnah/go-aula/internal/report"
	"github.com/alnah/go-aula/internal/transcript"
)

// Transcriber turns a media file into a stitched transcript.
// *pipeline.Runner satisfies it.
type Transcriber interface {
	Run(ctx context.Context, source string) (pipeline.Result, error)
}

// Analyzer produces the structured analysis. It never fails.
// *analyze.StructuredAnalyzer satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, tr transcript.Transcript) analyze.Analysis
}

// Layout creates the directory a lesson is written into.
type Layout interface {
	Create(title string, modulo, aula int) (string, error)
}

// Compile-time interface compliance checks.
var (
	_ Transcriber = (*pipeline.Runner)(nil)
	_ Analyzer    = (*analyze.StructuredAnalyzer)(nil)
	_ Layout      = report.Layout{}
)

// Status is the outcome of processing one video.
type Status string

// Outcome statuses.
const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Stats summarizes the transcript behind a lesson.
type Stats struct {
	Duration float64
	Words    int
	Segments int
}

// Outcome reports what happened to one video.
type Outcome struct {
	Video     string
	Modulo    int
	Aula      int
	Status    Status
	Err       error
	OutputDir string
	Files     []string
	Analysis  analyze.Analysis
	Stats     Stats
}

// Processor runs transcription, analysis, layout and persistence.
type Processor struct {
	transcriber Transcriber
	analyzer    Analyzer
	layout      Layout
	save        func(dir string, tr transcript.Transcript, r analyze.Result) ([]string, error)
	logger      *slog.Logger
	progress    io.Writer
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithProgress sets where user-facing progress lines go.
func WithProgress(w io.Writer) Option {
	return func(p *Processor) {
		if w != nil {
			p.progress = w
		}
	}
}

// WithSaveFunc replaces report.Save (for testing).
func WithSaveFunc(fn func(string, transcript.Transcript, analyze.Result) ([]string, error)) Option {
	return func(p *Processor) { p.save = fn }
}

// NewProcessor wires a Processor.
func NewProcessor(t Transcriber, a Analyzer, layout Layout, opts ...Option) *Processor {
	p := &Processor{
		transcriber: t,
		analyzer:    a,
		layout:      layout,
		save:        report.Save,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		progress:    io.Discard,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "lesson")
	return p
}

// Process handles one video as module modulo, lesson aula. Failures are
// reported in the Outcome, never returned.
func (p *Processor) Process(ctx context.Context, video string, modulo, aula int) Outcome {
	out := Outcome{Video: video, Modulo: modulo, Aula: aula}
	log := p.logger.With("video", video, "modulo", modulo, "aula", aula)

	fmt.Fprintln(p.progress, "Step 1/4: transcribing video...")
	res, err := p.transcriber.Run(ctx, video)
	if err != nil {
		return p.fail(log, out, fmt.Errorf("transcription: %w", err))
	}
	tr := res.Transcript
	out.Stats = Stats{Duration: tr.Duration, Words: len(tr.Words), Segments: len(tr.Segments)}

	fmt.Fprintln(p.progress, "Step 2/4: analyzing content...")
	out.Analysis = p.analyzer.Analyze(ctx, tr)
	if err := ctx.Err(); err != nil {
		return p.fail(log, out, err)
	}

	fmt.Fprintln(p.progress, "Step 3/4: creating lesson directory...")
	dir, err := p.layout.Create(out.Analysis.Result.Title, modulo, aula)
	if err != nil {
		return p.fail(log, out, err)
	}
	out.OutputDir = dir

	fmt.Fprintln(p.progress, "Step 4/4: saving files...")
	files, err := p.save(dir, tr, out.Analysis.Result)
	out.Files = files
	for _, f := range files {
		fmt.Fprintf(p.progress, "  saved %s\n", f)
	}
	if err != nil {
		return p.fail(log, out, fmt.Errorf("save lesson: %w", err))
	}

	out.Status = StatusSuccess
	log.Info("lesson processed", "dir", dir, "files", len(files), "analysis", out.Analysis.Source,
		"words", out.Stats.Words, "segments", out.Stats.Segments)
	fmt.Fprintf(p.progress, "Lesson created in %s\n", dir)
	fmt.Fprintf(p.progress, "  duration: %s min, words: %s, technologies: %d, concepts: %d\n",
		format.Minutes(out.Stats.Duration), format.Thousands(out.Stats.Words),
		len(out.Analysis.Result.Technologies), len(out.Analysis.Result.Concepts))
	return out
}

func (p *Processor) fail(log *slog.Logger, out Outcome, err error) Outcome {
	out.Status = StatusError
	out.Err = err
	log.Error("lesson failed", "error", err)
	fmt.Fprintf(p.progress, "Processing failed: %v\n", err)
	return out
}
