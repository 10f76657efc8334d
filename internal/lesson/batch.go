package lesson

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-aula/internal/apierr"
)

// VideoProcessor handles one video. *Processor satisfies it.
type VideoProcessor interface {
	Process(ctx context.Context, video string, modulo, aula int) Outcome
}

var _ VideoProcessor = (*Processor)(nil)

// Summary collects the outcomes of a batch in processing order.
type Summary struct {
	Outcomes []Outcome
}

func (s Summary) filter(status Status) []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// Succeeded returns the successful outcomes.
func (s Summary) Succeeded() []Outcome { return s.filter(StatusSuccess) }

// Failed returns the failed outcomes.
func (s Summary) Failed() []Outcome { return s.filter(StatusError) }

// Skipped returns the videos the ledger had already seen.
func (s Summary) Skipped() []Outcome { return s.filter(StatusSkipped) }

// Batch processes every video of a directory in order.
type Batch struct {
	proc     VideoProcessor
	ledger   Ledger // Nil disables skipping.
	pause    time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *slog.Logger
	progress io.Writer
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithPause sets the wait between two videos.
func WithPause(d time.Duration) BatchOption {
	return func(b *Batch) { b.pause = d }
}

// WithLedger enables skipping videos recorded as processed.
func WithLedger(l Ledger) BatchOption {
	return func(b *Batch) { b.ledger = l }
}

// WithBatchSleep replaces the pause implementation (for testing).
func WithBatchSleep(fn func(ctx context.Context, d time.Duration) error) BatchOption {
	return func(b *Batch) { b.sleep = fn }
}

// WithBatchLogger sets the structured logger.
func WithBatchLogger(l *slog.Logger) BatchOption {
	return func(b *Batch) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithBatchProgress sets where user-facing progress lines go.
func WithBatchProgress(w io.Writer) BatchOption {
	return func(b *Batch) {
		if w != nil {
			b.progress = w
		}
	}
}

// NewBatch wires a Batch around proc.
func NewBatch(proc VideoProcessor, opts ...BatchOption) *Batch {
	b := &Batch{
		proc:     proc,
		sleep:    apierr.SleepContext,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		progress: io.Discard,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("component", "batch")
	return b
}

// Run discovers the videos under dir and processes them. The error is
// non-nil only when nothing could be attempted (missing directory, no
// videos) or when ctx was cancelled; per-video failures are in the Summary.
func (b *Batch) Run(ctx context.Context, dir string, startModulo int) (Summary, error) {
	var sum Summary

	videos, err := Discover(dir)
	if err != nil {
		return sum, err
	}

	fmt.Fprintf(b.progress, "Found %d video(s) in %s:\n", len(videos), dir)
	for i, v := range videos {
		fmt.Fprintf(b.progress, "  %2d. %s\n", i+1, filepath.Base(v))
	}
	b.logger.Info("batch started", "dir", dir, "videos", len(videos), "start_modulo", startModulo)

	for i, video := range videos {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		modulo, aula := NumberFor(video, i+1, startModulo)

		fmt.Fprintf(b.progress, "\n%s\nVideo %d/%d: %s (module %d, lesson %d)\n%s\n",
			rule, i+1, len(videos), filepath.Base(video), modulo, aula, rule)

		if b.skip(ctx, video) {
			sum.Outcomes = append(sum.Outcomes, Outcome{Video: video, Modulo: modulo, Aula: aula, Status: StatusSkipped})
			fmt.Fprintln(b.progress, "Already processed, skipping.")
			continue
		}

		out := b.proc.Process(ctx, video, modulo, aula)
		sum.Outcomes = append(sum.Outcomes, out)
		if out.Status == StatusSuccess && b.ledger != nil {
			if err := b.ledger.Mark(ctx, video); err != nil {
				b.logger.Warn("ledger not updated", "video", video, "error", err)
			}
		}

		if i < len(videos)-1 && b.pause > 0 {
			fmt.Fprintf(b.progress, "Waiting %s...\n", b.pause)
			if err := b.sleep(ctx, b.pause); err != nil {
				return sum, err
			}
		}
	}

	b.report(sum)
	return sum, nil
}

// skip consults the ledger. A lookup error counts as "not seen".
func (b *Batch) skip(ctx context.Context, video string) bool {
	if b.ledger == nil {
		return false
	}
	seen, err := b.ledger.Seen(ctx, video)
	if err != nil {
		b.logger.Warn("ledger lookup failed", "video", video, "error", err)
		return false
	}
	return seen
}

var rule = strings.Repeat("=", 60)

func (b *Batch) report(sum Summary) {
	ok, failed, skipped := sum.Succeeded(), sum.Failed(), sum.Skipped()
	b.logger.Info("batch finished", "succeeded", len(ok), "failed", len(failed), "skipped", len(skipped))

	fmt.Fprintf(b.progress, "\n%s\nBatch report\n%s\n", rule, rule)
	fmt.Fprintf(b.progress, "Succeeded: %d\nFailed: %d\n", len(ok), len(failed))
	if len(skipped) > 0 {
		fmt.Fprintf(b.progress, "Skipped: %d\n", len(skipped))
	}
	if len(ok) > 0 {
		fmt.Fprintln(b.progress, "\nLessons created:")
		for _, o := range ok {
			fmt.Fprintf(b.progress, "  %s -> %s\n", filepath.Base(o.Video), o.OutputDir)
		}
	}
	if len(failed) > 0 {
		fmt.Fprintln(b.progress, "\nFailed videos:")
		for _, o := range failed {
			fmt.Fprintf(b.progress, "  %s: %v\n", filepath.Base(o.Video), o.Err)
		}
	}
}
