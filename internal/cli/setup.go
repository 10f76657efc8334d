package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alnah/go-aula/internal/analyze"
	"github.com/alnah/go-aula/internal/audio"
	"github.com/alnah/go-aula/internal/config"
	"github.com/alnah/go-aula/internal/diag"
	"github.com/alnah/go-aula/internal/ffmpeg"
	"github.com/alnah/go-aula/internal/lesson"
	"github.com/alnah/go-aula/internal/pipeline"
	"github.com/alnah/go-aula/internal/report"
	"github.com/alnah/go-aula/internal/transcribe"
)

// NewLogger returns a text logger on w, at debug level when debug is set.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// stack is what every processing command shares, built from one Config.
type stack struct {
	cfg    config.Config
	logger *slog.Logger
	dumper *diag.Dumper
	runner *pipeline.Runner
}

// checkInput fails fast on a missing input path.
func checkInput(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	return nil
}

// loadConfig loads and validates the configuration.
// Validation order: values -> API key.
func loadConfig(env *Env) (config.Config, error) {
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if cfg.GroqAPIKey == "" {
		return config.Config{}, fmt.Errorf("%w (set it with: export %s=gsk_... or aula config set %s <key>)",
			ErrAPIKeyMissing, config.EnvGroqAPIKey, config.FileKey(config.EnvGroqAPIKey))
	}
	return cfg, nil
}

// setup resolves the media tools and wires the transcription pipeline.
func setup(ctx context.Context, env *Env) (*stack, error) {
	cfg, err := loadConfig(env)
	if err != nil {
		return nil, err
	}
	logger := NewLogger(env.Stderr, cfg.DebugMode)

	ffprobePath, err := env.ToolResolver.Resolve(cfg.FFprobePath, "ffprobe")
	if err != nil {
		return nil, err
	}
	ffmpegPath, err := env.ToolResolver.Resolve(cfg.FFmpegPath, "ffmpeg")
	if err != nil {
		return nil, err
	}
	if major, ok := env.ToolResolver.CheckVersion(ctx, ffmpegPath); ok && major < ffmpeg.MinMajorVersion {
		fmt.Fprintf(env.Stderr, "Warning: ffmpeg %d is older than %d, extraction may be inaccurate\n",
			major, ffmpeg.MinMajorVersion)
	}
	logger.Debug("media tools resolved", "ffmpeg", ffmpegPath, "ffprobe", ffprobePath)

	var dumper *diag.Dumper
	var sink audio.StderrSink
	if cfg.SaveDebugFiles {
		dumper = diag.New(cfg.TempDir, logger)
		sink = func(req audio.ExtractRequest, stderr string) {
			dumper.FFmpegOutput(req.Chunk.Index, stderr)
		}
		fmt.Fprintf(env.Stderr, "Debug files will be saved to %s\n", dumper.Dir())
	}

	prober, err := env.MediaFactory.NewProber(ffprobePath, cfg.RequestTimeout)
	if err != nil {
		return nil, err
	}
	extractor, err := env.MediaFactory.NewExtractor(ffmpegPath, cfg.RequestTimeout, sink)
	if err != nil {
		return nil, err
	}
	transcriber := env.TranscriberFactory.NewTranscriber(transcribe.Settings{
		APIKey:   cfg.GroqAPIKey,
		BaseURL:  cfg.GroqBaseURL,
		Model:    cfg.GroqModel,
		Language: cfg.GroqLanguage,
		Timeout:  cfg.RequestTimeout,
	})

	runner := pipeline.NewRunner(cfg, prober, extractor, transcriber,
		pipeline.WithLogger(logger),
		pipeline.WithProgress(env.Stderr),
		pipeline.WithDumper(dumper),
		pipeline.WithClock(env.Now),
	)
	return &stack{cfg: cfg, logger: logger, dumper: dumper, runner: runner}, nil
}

// analyzer builds the structured analyzer. Without GEMINI_API_KEY every
// analysis uses the keyword heuristic.
func (s *stack) analyzer(env *Env) *analyze.StructuredAnalyzer {
	var client analyze.Completer
	if s.cfg.GeminiAPIKey != "" {
		client = env.CompleterFactory.NewCompleter(analyze.GeminiSettings{
			APIKey:         s.cfg.GeminiAPIKey,
			BaseURL:        s.cfg.GeminiBaseURL,
			Model:          s.cfg.GeminiModel,
			Thinking:       s.cfg.GeminiThinking,
			ThinkingBudget: s.cfg.GeminiThinkingBudget,
			Timeout:        s.cfg.RequestTimeout,
		})
	}

	budgeter := analyze.Budgeter{Max: s.cfg.GeminiMaxContext}
	if s.cfg.TokenizerPath != "" {
		est, err := analyze.NewTokenizerEstimator(config.ExpandPath(s.cfg.TokenizerPath))
		if err != nil {
			s.logger.Warn("tokenizer unavailable, estimating by length", "error", err)
		} else {
			budgeter.Estimator = est
		}
	}

	return analyze.NewStructuredAnalyzer(client, budgeter,
		analyze.WithLogger(s.logger),
		analyze.WithDumper(s.dumper),
		analyze.WithProgress(env.Stderr),
	)
}

// processor wires the full lesson processor.
func (s *stack) processor(env *Env) (*lesson.Processor, error) {
	layout, err := report.NewLayout("", config.ExpandPath(s.cfg.OutputBaseDir), s.cfg.AulaDirPattern)
	if err != nil {
		return nil, err
	}
	return lesson.NewProcessor(s.runner, s.analyzer(env), layout,
		lesson.WithLogger(s.logger),
		lesson.WithProgress(env.Stderr),
	), nil
}
