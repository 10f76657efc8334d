package ffmpeg

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// MinMajorVersion is the oldest ffmpeg major version known to handle the
// seek-then-transcode extraction correctly.
const MinMajorVersion = 4

// versionTimeout bounds the "-version" probe.
const versionTimeout = 10 * time.Second

// Resolver locates the ffmpeg and ffprobe binaries.
type Resolver struct {
	env  envProvider
	goos string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(r *Resolver) { r.env = e }
}

// WithPlatform sets the target OS (for testing install instructions).
func WithPlatform(goos string) ResolverOption {
	return func(r *Resolver) { r.goos = goos }
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		env:  osEnvProvider{},
		goos: runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds the binary called name using the following precedence:
//  1. configured (FFMPEG_PATH / FFPROBE_PATH, default ./bin/<name>)
//  2. name on the system PATH
//
// Returns ErrNotFound with install instructions when neither exists.
func (r *Resolver) Resolve(configured, name string) (string, error) {
	if configured != "" {
		if info, err := r.env.Stat(configured); err == nil && !info.IsDir() {
			return configured, nil
		}
	}
	if path, err := r.env.LookPath(name); err == nil {
		return path, nil
	}

	tried := name + " on PATH"
	if configured != "" {
		tried = fmt.Sprintf("%q and %s", configured, tried)
	}
	return "", fmt.Errorf("%w: %s (tried %s)\n\n%s", ErrNotFound, name, tried, r.installInstructions())
}

// installInstructions returns platform-specific instructions.
func (r *Resolver) installInstructions() string {
	switch r.goos {
	case "darwin":
		return `To install FFmpeg (includes ffprobe):
  brew install ffmpeg

Or set FFMPEG_PATH and FFPROBE_PATH to your binaries.`
	case "linux":
		return `To install FFmpeg (includes ffprobe):
  Ubuntu/Debian: sudo apt install ffmpeg
  Fedora:        sudo dnf install ffmpeg
  Arch:          sudo pacman -S ffmpeg

Or set FFMPEG_PATH and FFPROBE_PATH to your binaries.`
	case "windows":
		return `To install FFmpeg (includes ffprobe):
  winget install ffmpeg

Or set FFMPEG_PATH and FFPROBE_PATH to your binaries.`
	default:
		return `Download FFmpeg from https://ffmpeg.org/download.html
and set FFMPEG_PATH and FFPROBE_PATH to your binaries.`
	}
}

// CheckVersion runs "ffmpeg -version" and returns the major version.
// ok is false when the tool cannot be run or its banner cannot be parsed.
func CheckVersion(ctx context.Context, e *Executor, ffmpegPath string) (major int, ok bool) {
	out, err := e.Run(ctx, ffmpegPath, []string{"-version"}, versionTimeout)
	if err != nil {
		return 0, false
	}
	return ParseVersion(out.Stdout)
}

// ParseVersion reads the major version from an ffmpeg banner such as
// "ffmpeg version 6.1.1 Copyright..." or "ffmpeg version n6.1.1-...".
func ParseVersion(banner string) (int, bool) {
	first, _, _ := strings.Cut(banner, "\n")
	var major int
	if _, err := fmt.Sscanf(first, "ffmpeg version %d", &major); err == nil {
		return major, true
	}
	if _, err := fmt.Sscanf(first, "ffmpeg version n%d", &major); err == nil {
		return major, true
	}
	return 0, false
}
