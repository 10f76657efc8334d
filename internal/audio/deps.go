package audio

import (
	"context"
	"os"
	"time"

	"github.com/alnah/go-aula/internal/ffmpeg"
)

// toolRunner runs ffmpeg or ffprobe with a time limit.
type toolRunner interface {
	Run(ctx context.Context, path string, args []string, timeout time.Duration) (ffmpeg.Output, error)
}

// fileStatter retrieves file information.
type fileStatter interface {
	Stat(name string) (os.FileInfo, error)
}

// Compile-time interface verification.
var (
	_ toolRunner  = (*ffmpeg.Executor)(nil)
	_ fileStatter = osFileStatter{}
)

// osFileStatter implements fileStatter using os.Stat.
type osFileStatter struct{}

func (osFileStatter) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}
