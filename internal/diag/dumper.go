// Package diag writes debug artifacts next to the temporary chunk files
// when SAVE_DEBUG_FILES is enabled. A nil *Dumper is valid and writes nothing.
package diag

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Dumper writes diagnostic files under a single directory.
// Write failures are logged and never interrupt the caller.
type Dumper struct {
	dir    string
	logger *slog.Logger
}

// New returns a Dumper writing to <tempDir>/debug. A nil logger discards.
func New(tempDir string, logger *slog.Logger) *Dumper {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dumper{
		dir:    filepath.Join(tempDir, "debug"),
		logger: logger.With("component", "diag"),
	}
}

// Dir returns the debug directory, or "" for a nil Dumper.
func (d *Dumper) Dir() string {
	if d == nil {
		return ""
	}
	return d.dir
}

// FFmpegOutput records ffmpeg's stderr for a successful extraction.
func (d *Dumper) FFmpegOutput(chunk int, stderr string) {
	d.write(fmt.Sprintf("ffmpeg_chunk_%d_output.log", chunk), []byte(stderr))
}

// FFmpegError records ffmpeg's stderr for a failed extraction.
func (d *Dumper) FFmpegError(chunk int, stderr string) {
	d.write(fmt.Sprintf("ffmpeg_chunk_%d_error.log", chunk), []byte(stderr))
}

// ChunkResult records the converted service response for a chunk.
func (d *Dumper) ChunkResult(chunk int, v any) {
	d.writeJSON(fmt.Sprintf("transcription_chunk_%d.json", chunk), v)
}

// ChunkError records a failed transcription attempt.
func (d *Dumper) ChunkError(chunk, attempt int, err error) {
	d.write(fmt.Sprintf("transcription_chunk_%d_error_%d.log", chunk, attempt), []byte(err.Error()))
}

// Text records an arbitrary named artifact, such as an analysis prompt.
func (d *Dumper) Text(name, content string) {
	d.write(name, []byte(content))
}

func (d *Dumper) writeJSON(name string, v any) {
	if d == nil {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		d.logger.Warn("debug file not written", "file", name, "error", err)
		return
	}
	d.write(name, data)
}

func (d *Dumper) write(name string, data []byte) {
	if d == nil {
		return
	}
	if err := os.MkdirAll(d.dir, 0o750); err != nil {
		d.logger.Warn("debug directory not created", "dir", d.dir, "error", err)
		return
	}
	p := filepath.Join(d.dir, name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		d.logger.Warn("debug file not written", "file", p, "error", err)
		return
	}
	d.logger.Debug("debug file written", "file", p)
}
