// Package pipeline drives one media file through probing, chunk planning,
// extraction, transcription with retries and stitching.
//
// A failed chunk never aborts the run: it is logged, recorded in the
// chunk report and leaves a gap in the transcript. Only a failed probe,
// a zero duration or cancellation stop the whole file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-aula/internal/apierr"
	"github.com/alnah/go-aula/internal/audio"
	"github.com/alnah/go-aula/internal/config"
	"github.com/alnah/go-aula/internal/diag"
	"github.com/alnah/go-aula/internal/ffmpeg"
	"github.com/alnah/go-aula/internal/transcribe"
	"github.com/alnah/go-aula/internal/transcript"
)

// Prober returns the duration of a media file in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Extractor writes one chunk of audio to disk.
type Extractor interface {
	Extract(ctx context.Context, req audio.ExtractRequest) (string, error)
}

// Compile-time interface compliance checks.
var (
	_ Prober    = (*audio.Prober)(nil)
	_ Extractor = (*audio.Extractor)(nil)
)

// ChunkReport is the final state of one planned chunk.
type ChunkReport struct {
	Chunk    audio.Chunk
	State    ChunkState
	Attempts int   // Transcription attempts made.
	Err      error // Last error for failed chunks.
}

// Result is the output of a run.
type Result struct {
	Transcript     transcript.Transcript
	Chunks         []ChunkReport
	SourceDuration float64 // Probed media duration.
}

// Succeeded returns the number of chunks that contributed to the transcript.
func (r Result) Succeeded() int {
	n := 0
	for _, c := range r.Chunks {
		if c.State == Succeeded {
			n++
		}
	}
	return n
}

// Runner transcribes media files. It is safe for sequential reuse.
type Runner struct {
	cfg         config.Config
	prober      Prober
	extractor   Extractor
	transcriber transcribe.Transcriber

	logger   *slog.Logger
	dumper   *diag.Dumper
	progress io.Writer
	mu       sync.Mutex // guards progress

	now    func() time.Time
	newID  func() string
	sleep  func(ctx context.Context, d time.Duration) error
	remove func(name string) error
	mkdir  func(path string, perm os.FileMode) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithProgress sets where user-facing progress lines go.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.progress = w
		}
	}
}

// WithDumper enables debug artifacts.
func WithDumper(d *diag.Dumper) Option {
	return func(r *Runner) { r.dumper = d }
}

// WithClock sets the time source for ProcessedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithIDGenerator sets the run ID source.
func WithIDGenerator(fn func() string) Option {
	return func(r *Runner) { r.newID = fn }
}

// WithSleep replaces the backoff wait (for testing).
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Runner) { r.sleep = fn }
}

// WithFileOps replaces chunk directory creation and removal (for testing).
func WithFileOps(mkdir func(string, os.FileMode) error, remove func(string) error) Option {
	return func(r *Runner) {
		r.mkdir = mkdir
		r.remove = remove
	}
}

// NewRunner wires a Runner. cfg supplies chunk size, retries, parallelism,
// temp directory, audio parameters and the provenance recorded in metadata.
func NewRunner(cfg config.Config, p Prober, e Extractor, t transcribe.Transcriber, opts ...Option) *Runner {
	r := &Runner{
		cfg:         cfg,
		prober:      p,
		extractor:   e,
		transcriber: t,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		progress:    io.Discard,
		now:         time.Now,
		newID:       uuid.NewString,
		remove:      os.Remove,
		mkdir:       os.MkdirAll,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "pipeline")
	return r
}

// Run transcribes source. On ErrNothingTranscribed the Result is still
// populated so callers may persist the empty transcript.
func (r *Runner) Run(ctx context.Context, source string) (Result, error) {
	duration, err := r.prober.Duration(ctx, source)
	if err != nil {
		return Result{}, fmt.Errorf("probe %s: %w", source, err)
	}
	if duration <= 0 {
		return Result{}, fmt.Errorf("%s: %w: %v", source, audio.ErrInvalidDuration, duration)
	}

	chunks, err := audio.Plan(duration, r.cfg.ChunkSizeSeconds)
	if err != nil {
		return Result{}, err
	}
	if err := r.mkdir(r.cfg.TempDir, 0o750); err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}

	runID := r.newID()
	log := r.logger.With("run", runID, "source", source)
	log.Info("transcription started", "duration", duration, "chunks", len(chunks),
		"window", r.cfg.ChunkSizeSeconds, "parallel", r.cfg.TranscribeParallel)
	r.printf("Duration: %.2fs. Splitting into %d chunk(s).\n", duration, len(chunks))

	fileName := baseName(source)
	reports := make([]ChunkReport, len(chunks))
	results := make([]*transcript.ChunkResult, len(chunks))

	process := func(ctx context.Context, i int) {
		reports[i], results[i] = r.processChunk(ctx, log, source, fileName, chunks[i], len(chunks))
	}
	if err := r.runAll(ctx, len(chunks), process); err != nil {
		return Result{}, err
	}

	s := transcript.NewStitcher()
	for i, res := range results {
		if res != nil {
			s.Add(transcript.Part{Index: chunks[i].Index, Offset: chunks[i].Start, Result: *res})
		}
	}

	meta := transcript.Metadata{
		OriginalFile:     source,
		FileName:         fileName,
		ChunksProcessed:  len(chunks),
		ChunksSucceeded:  s.Parts(),
		ModelUsed:        r.cfg.GroqModel,
		Language:         r.cfg.GroqLanguage,
		ChunkSizeSeconds: r.cfg.ChunkSizeSeconds,
		ProcessedAt:      transcript.Stamp(r.now()),
		RunID:            runID,
	}
	tr := s.Transcript(meta)
	if err := tr.CheckOrder(); err != nil {
		log.Warn("stitched transcript is not time-ordered", "error", err)
	}

	log.Info("transcription finished", "succeeded", meta.ChunksSucceeded, "planned", meta.ChunksProcessed,
		"words", len(tr.Words), "segments", len(tr.Segments), "transcribed_duration", tr.Duration)

	result := Result{Transcript: tr, Chunks: reports, SourceDuration: duration}
	if meta.ChunksSucceeded == 0 {
		return result, ErrNothingTranscribed
	}
	return result, nil
}

// runAll calls fn for every index, in order when parallelism is 1 and
// through a bounded errgroup otherwise. Only cancellation is an error.
func (r *Runner) runAll(ctx context.Context, n int, fn func(ctx context.Context, i int)) error {
	if r.cfg.TranscribeParallel <= 1 {
		for i := range n {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(ctx, i)
		}
		return ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.TranscribeParallel)
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(gctx, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// chunkRun tracks one chunk through its state machine.
type chunkRun struct {
	report ChunkReport
	log    *slog.Logger
}

func (c *chunkRun) move(next ChunkState) {
	if !c.report.State.CanTransition(next) {
		c.log.Error("chunk state machine violated",
			"error", fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, c.report.State, next))
		return
	}
	c.log.Debug("chunk state", "from", c.report.State.String(), "to", next.String())
	c.report.State = next
}

func (r *Runner) processChunk(
	ctx context.Context,
	log *slog.Logger,
	source, fileName string,
	chunk audio.Chunk,
	total int,
) (ChunkReport, *transcript.ChunkResult) {
	c := &chunkRun{
		report: ChunkReport{Chunk: chunk, State: Pending},
		log:    log.With("chunk", chunk.Index),
	}
	r.printf("\n--- Chunk %d/%d (%s) ---\n", chunk.Index, total, chunk)

	out := audio.ChunkPath(r.cfg.TempDir, fileName, chunk.Index, r.cfg.AudioFormat)
	c.move(Extracting)
	path, err := r.extractor.Extract(ctx, audio.ExtractRequest{
		Source: source,
		Chunk:  chunk,
		Output: out,
		Params: audio.Params{
			SampleRate: r.cfg.AudioSampleRate,
			Channels:   r.cfg.AudioChannels,
			Format:     r.cfg.AudioFormat,
		},
	})
	if err != nil {
		c.move(ExtractionFailed)
		c.report.Err = err
		r.dumper.FFmpegError(chunk.Index, toolOutput(err))
		c.log.Warn("chunk extraction failed", "error", err)
		r.printf("Extraction failed for chunk %d: %v\n", chunk.Index, err)
		r.cleanup(c.log, out)
		return c.report, nil
	}
	c.move(Extracted)
	defer r.cleanup(c.log, path)

	r.printf("Sending chunk %d for transcription...\n", chunk.Index)
	c.move(Transcribing)
	retry := apierr.RetryConfig{
		MaxAttempts: r.cfg.MaxRetries,
		Sleep:       r.sleep,
		OnFailure: func(attempt int, err error, wait time.Duration) {
			r.dumper.ChunkError(chunk.Index, attempt, err)
			c.log.Warn("chunk transcription attempt failed",
				"attempt", attempt, "max_attempts", r.cfg.MaxRetries, "wait", wait, "error", err)
			r.printf("Transcription error for chunk %d (attempt %d/%d): %v\n",
				chunk.Index, attempt, r.cfg.MaxRetries, err)
			if wait > 0 {
				c.move(Retrying)
			}
		},
	}
	res, err := apierr.RetryWithBackoff(ctx, retry, func(attempt int) (transcript.ChunkResult, error) {
		c.report.Attempts = attempt
		if c.report.State == Retrying {
			c.move(Transcribing)
		}
		return r.transcriber.Transcribe(ctx, path)
	}, apierr.AlwaysRetry)
	if err != nil {
		if c.report.State == Retrying {
			c.move(Transcribing)
		}
		c.move(Exhausted)
		c.report.Err = err
		if !errors.Is(err, context.Canceled) {
			c.log.Error("chunk abandoned", "attempts", c.report.Attempts, "error", err)
			r.printf("Giving up on chunk %d after %d attempt(s).\n", chunk.Index, c.report.Attempts)
		}
		return c.report, nil
	}

	c.move(Succeeded)
	r.dumper.ChunkResult(chunk.Index, res)
	c.log.Info("chunk transcribed", "attempts", c.report.Attempts,
		"words", len(res.Words), "segments", len(res.Segments), "duration", res.Duration)
	r.printf("Chunk %d transcribed.\n", chunk.Index)
	return c.report, &res
}

// cleanup removes a chunk file unless debug files are kept.
func (r *Runner) cleanup(log *slog.Logger, path string) {
	if r.cfg.SaveDebugFiles {
		log.Debug("chunk file kept", "path", path)
		return
	}
	if err := r.remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("chunk file not removed", "path", path, "error", err)
	}
}

func (r *Runner) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.progress, format, args...)
}

// toolOutput returns ffmpeg's stderr when err carries it.
func toolOutput(err error) string {
	var toolErr *ffmpeg.ToolError
	if errors.As(err, &toolErr) && toolErr.Stderr != "" {
		return toolErr.Stderr
	}
	return err.Error()
}

// baseName returns the file name of p without its extension.
func baseName(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
