package ffmpeg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates a media tool binary could not be located.
var ErrNotFound = errors.New("media tool not found")

// ErrTimeout indicates a media tool did not finish within its time limit.
var ErrTimeout = errors.New("media tool timed out")

// ToolError reports a media tool that ran and exited non-zero.
// Stderr carries the tool's diagnostic output.
type ToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	if tail := lastLine(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// lastLine returns the last non-empty line of s. ffmpeg prints the
// actual failure reason last, after banners and stream listings.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
