package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-aula/internal/ffmpeg"
)

// Prober reads media durations with ffprobe.
type Prober struct {
	ffprobePath string
	timeout     time.Duration

	// Injectable dependencies (defaults to OS implementations).
	runner toolRunner
	files  fileStatter
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProberRunner sets the tool runner for Prober.
func WithProberRunner(r toolRunner) ProberOption {
	return func(p *Prober) { p.runner = r }
}

// WithProberFileStatter sets the file statter for Prober.
func WithProberFileStatter(f fileStatter) ProberOption {
	return func(p *Prober) { p.files = f }
}

// NewProber creates a Prober. timeout bounds each ffprobe call.
func NewProber(ffprobePath string, timeout time.Duration, opts ...ProberOption) (*Prober, error) {
	if ffprobePath == "" {
		return nil, fmt.Errorf("ffprobePath cannot be empty: %w", ffmpeg.ErrNotFound)
	}
	p := &Prober{
		ffprobePath: ffprobePath,
		timeout:     timeout,
		runner:      ffmpeg.NewExecutor(),
		files:       osFileStatter{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// probeArgs asks ffprobe for the container duration only, as a bare number.
func probeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
}

// Duration returns the media duration of path in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	if _, err := p.files.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return 0, fmt.Errorf("cannot access %s: %w", path, err)
	}

	out, err := p.runner.Run(ctx, p.ffprobePath, probeArgs(path), p.timeout)
	if err != nil {
		return 0, fmt.Errorf("%w for %s: %w", ErrProbeFailed, path, err)
	}
	return parseProbeDuration(out.Stdout)
}

// parseProbeDuration parses ffprobe's bare duration output ("1834.720000").
func parseProbeDuration(stdout string) (float64, error) {
	s := strings.TrimSpace(stdout)
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unexpected ffprobe output %q", ErrProbeFailed, s)
	}
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDuration, d)
	}
	return d, nil
}
