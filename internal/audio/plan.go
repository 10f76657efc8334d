package audio

import (
	"fmt"
	"math"

	"github.com/alnah/go-aula/internal/format"
)

// Chunk is one fixed window of the source media.
// Chunks are planned, not extracted: no file exists until Extract runs.
type Chunk struct {
	Index  int     // 1-based position in the plan.
	Start  float64 // Offset in the source, in seconds.
	Window float64 // Requested length in seconds. The last chunk may run past the end.
}

// End returns the nominal end of the window. For the last chunk this may
// exceed the media duration; the extractor simply gets less audio.
func (c Chunk) End() float64 {
	return c.Start + c.Window
}

// String returns a human-readable representation for logging.
func (c Chunk) String() string {
	return fmt.Sprintf("chunk %d: %s-%s",
		c.Index,
		format.Duration(format.Seconds(c.Start)),
		format.Duration(format.Seconds(c.End())))
}

// Plan splits [0, duration) into ceil(duration/window) consecutive windows.
// Chunk i (1-based) starts at (i-1)*window. A zero duration yields no chunks.
func Plan(duration float64, window int) ([]Chunk, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}
	if duration < 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDuration, duration)
	}

	w := float64(window)
	n := int(math.Ceil(duration / w))
	chunks := make([]Chunk, n)
	for i := range chunks {
		chunks[i] = Chunk{
			Index:  i + 1,
			Start:  float64(i) * w,
			Window: w,
		}
	}
	return chunks, nil
}
