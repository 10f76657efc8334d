package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alnah/go-aula/internal/analyze"
	"github.com/alnah/go-aula/internal/audio"
	"github.com/alnah/go-aula/internal/config"
	"github.com/alnah/go-aula/internal/ffmpeg"
	"github.com/alnah/go-aula/internal/lesson"
	"github.com/alnah/go-aula/internal/pipeline"
	"github.com/alnah/go-aula/internal/transcribe"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have production defaults via DefaultEnv(). Tests override
// specific fields with the With* options or build an Env by hand.
type Env struct {
	// I/O and environment
	Stderr io.Writer
	Stdout io.Writer
	Getenv func(string) string
	Now    func() time.Time

	// Factories for domain objects
	ConfigLoader       ConfigLoader
	ToolResolver       ToolResolver
	MediaFactory       MediaFactory
	TranscriberFactory TranscriberFactory
	CompleterFactory   CompleterFactory
	LedgerFactory      LedgerFactory
}

// ConfigLoader loads the run configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// ToolResolver locates ffmpeg and ffprobe.
type ToolResolver interface {
	Resolve(configured, name string) (string, error)
	CheckVersion(ctx context.Context, ffmpegPath string) (major int, ok bool)
}

// MediaFactory creates the ffprobe and ffmpeg wrappers.
type MediaFactory interface {
	NewProber(ffprobePath string, timeout time.Duration) (pipeline.Prober, error)
	NewExtractor(ffmpegPath string, timeout time.Duration, sink audio.StderrSink) (pipeline.Extractor, error)
}

// TranscriberFactory creates transcription clients.
type TranscriberFactory interface {
	NewTranscriber(s transcribe.Settings) transcribe.Transcriber
}

// CompleterFactory creates analysis model clients.
type CompleterFactory interface {
	NewCompleter(s analyze.GeminiSettings) analyze.Completer
}

// Ledger is a lesson.Ledger holding a connection.
type Ledger interface {
	lesson.Ledger
	io.Closer
}

// LedgerFactory connects to the processed-videos ledger.
type LedgerFactory interface {
	Connect(ctx context.Context, addr, key string) (Ledger, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithToolResolver sets the ffmpeg/ffprobe resolver.
func WithToolResolver(r ToolResolver) EnvOption {
	return func(e *Env) {
		e.ToolResolver = r
	}
}

// WithMediaFactory sets the media tool factory.
func WithMediaFactory(f MediaFactory) EnvOption {
	return func(e *Env) {
		e.MediaFactory = f
	}
}

// WithTranscriberFactory sets the transcriber factory.
func WithTranscriberFactory(f TranscriberFactory) EnvOption {
	return func(e *Env) {
		e.TranscriberFactory = f
	}
}

// WithCompleterFactory sets the analysis client factory.
func WithCompleterFactory(f CompleterFactory) EnvOption {
	return func(e *Env) {
		e.CompleterFactory = f
	}
}

// WithLedgerFactory sets the ledger factory.
func WithLedgerFactory(f LedgerFactory) EnvOption {
	return func(e *Env) {
		e.LedgerFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stderr:             os.Stderr,
		Stdout:             os.Stdout,
		Getenv:             os.Getenv,
		Now:                time.Now,
		ConfigLoader:       config.Loader{},
		ToolResolver:       &defaultToolResolver{resolver: ffmpeg.NewResolver(), exec: ffmpeg.NewExecutor()},
		MediaFactory:       &defaultMediaFactory{},
		TranscriberFactory: &defaultTranscriberFactory{},
		CompleterFactory:   &defaultCompleterFactory{},
		LedgerFactory:      &defaultLedgerFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

type defaultToolResolver struct {
	resolver *ffmpeg.Resolver
	exec     *ffmpeg.Executor
}

func (r *defaultToolResolver) Resolve(configured, name string) (string, error) {
	return r.resolver.Resolve(configured, name)
}

func (r *defaultToolResolver) CheckVersion(ctx context.Context, ffmpegPath string) (int, bool) {
	return ffmpeg.CheckVersion(ctx, r.exec, ffmpegPath)
}

type defaultMediaFactory struct{}

func (defaultMediaFactory) NewProber(ffprobePath string, timeout time.Duration) (pipeline.Prober, error) {
	return audio.NewProber(ffprobePath, timeout)
}

func (defaultMediaFactory) NewExtractor(ffmpegPath string, timeout time.Duration, sink audio.StderrSink) (pipeline.Extractor, error) {
	var opts []audio.ExtractorOption
	if sink != nil {
		opts = append(opts, audio.WithStderrSink(sink))
	}
	return audio.NewExtractor(ffmpegPath, timeout, opts...)
}

type defaultTranscriberFactory struct{}

func (defaultTranscriberFactory) NewTranscriber(s transcribe.Settings) transcribe.Transcriber {
	return transcribe.NewGroqTranscriber(s)
}

type defaultCompleterFactory struct{}

func (defaultCompleterFactory) NewCompleter(s analyze.GeminiSettings) analyze.Completer {
	return analyze.NewGeminiClient(s)
}

type defaultLedgerFactory struct{}

func (defaultLedgerFactory) Connect(ctx context.Context, addr, key string) (Ledger, error) {
	return lesson.ConnectRedisLedger(ctx, addr, key)
}

// Compile-time interface verification.
var (
	_ ConfigLoader       = config.Loader{}
	_ ToolResolver       = (*defaultToolResolver)(nil)
	_ MediaFactory       = (*defaultMediaFactory)(nil)
	_ TranscriberFactory = (*defaultTranscriberFactory)(nil)
	_ CompleterFactory   = (*defaultCompleterFactory)(nil)
	_ LedgerFactory      = (*defaultLedgerFactory)(nil)
	_ Ledger             = (*lesson.RedisLedger)(nil)
)
