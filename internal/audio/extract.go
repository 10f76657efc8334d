package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alnah/go-aula/internal/ffmpeg"
)

// Params describes the audio encoding of extracted chunks.
type Params struct {
	SampleRate int    // Hz, e.g. 16000.
	Channels   int    // 1 for mono.
	Format     string // ffmpeg audio codec and file extension, e.g. "flac".
}

// ExtractRequest asks for one chunk of Source to be written to Output.
type ExtractRequest struct {
	Source string
	Chunk  Chunk
	Output string
	Params Params
}

// StderrSink receives ffmpeg's diagnostic output after each successful extraction.
type StderrSink func(req ExtractRequest, stderr string)

// Extractor cuts audio chunks out of media files with ffmpeg.
type Extractor struct {
	ffmpegPath string
	timeout    time.Duration
	onStderr   StderrSink

	// Injectable dependencies (defaults to OS implementations).
	runner toolRunner
	files  fileStatter
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithExtractorRunner sets the tool runner for Extractor.
func WithExtractorRunner(r toolRunner) ExtractorOption {
	return func(e *Extractor) { e.runner = r }
}

// WithExtractorFileStatter sets the file statter for Extractor.
func WithExtractorFileStatter(f fileStatter) ExtractorOption {
	return func(e *Extractor) { e.files = f }
}

// WithStderrSink sets a callback for ffmpeg output on success.
func WithStderrSink(fn StderrSink) ExtractorOption {
	return func(e *Extractor) { e.onStderr = fn }
}

// NewExtractor creates an Extractor. timeout bounds each ffmpeg call.
func NewExtractor(ffmpegPath string, timeout time.Duration, opts ...ExtractorOption) (*Extractor, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}
	e := &Extractor{
		ffmpegPath: ffmpegPath,
		timeout:    timeout,
		runner:     ffmpeg.NewExecutor(),
		files:      osFileStatter{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ChunkPath returns where chunk index of fileName is written:
// <dir>/<fileName>_chunk_<index>.<format>.
func ChunkPath(dir, fileName string, index int, format string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_chunk_%d.%s", fileName, index, format))
}

// extractArgs builds the ffmpeg command line. -ss after -i seeks by
// decoding, which is exact for every container.
func extractArgs(req ExtractRequest) []string {
	return []string{
		"-i", req.Source,
		"-ss", formatSeconds(req.Chunk.Start),
		"-t", formatSeconds(req.Chunk.Window),
		"-vn",
		"-ar", strconv.Itoa(req.Params.SampleRate),
		"-ac", strconv.Itoa(req.Params.Channels),
		"-c:a", req.Params.Format,
		"-y", req.Output,
	}
}

// formatSeconds renders seconds without trailing zeros: 600 -> "600", 1.5 -> "1.5".
func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// Extract writes req.Chunk of req.Source to req.Output and returns the
// output path. The caller owns the file and must delete it.
//
// Failures wrap *ffmpeg.ToolError (non-zero exit, with stderr) or
// ffmpeg.ErrTimeout.
func (e *Extractor) Extract(ctx context.Context, req ExtractRequest) (string, error) {
	if _, err := e.files.Stat(req.Source); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, req.Source)
		}
		return "", fmt.Errorf("cannot access %s: %w", req.Source, err)
	}

	out, err := e.runner.Run(ctx, e.ffmpegPath, extractArgs(req), e.timeout)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", req.Chunk, err)
	}
	if e.onStderr != nil {
		e.onStderr(req, out.Stderr)
	}
	return req.Output, nil
}
