// Package config builds the immutable run configuration.
//
// Values come from three sources, highest precedence first: the process
// environment, the user config file (~/.config/go-aula/config.yaml) and
// built-in defaults. The file is a flat YAML map keyed by the lower-cased
// environment variable names.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-aula/internal/lang"
)

// Environment variable names.
const (
	EnvChunkSize          = "CHUNK_SIZE_SECONDS"
	EnvGroqAPIKey         = "GROQ_API_KEY"
	EnvGroqModel          = "GROQ_MODEL"
	EnvGroqLanguage       = "GROQ_LANGUAGE"
	EnvGroqBaseURL        = "GROQ_BASE_URL"
	EnvRequestTimeout     = "REQUEST_TIMEOUT"
	EnvMaxRetries         = "MAX_RETRIES"
	EnvTranscribeParallel = "TRANSCRIBE_PARALLEL"
	EnvDebugMode          = "DEBUG_MODE"
	EnvSaveDebugFiles     = "SAVE_DEBUG_FILES"
	EnvFFmpegPath         = "FFMPEG_PATH"
	EnvFFprobePath        = "FFPROBE_PATH"
	EnvTempDir            = "TEMP_DIR_NAME"
	EnvOutputBaseDir      = "OUTPUT_BASE_DIR"
	EnvVideosDir          = "VIDEOS_DIR"
	EnvAudioSampleRate    = "AUDIO_SAMPLE_RATE"
	EnvAudioChannels      = "AUDIO_CHANNELS"
	EnvAudioFormat        = "AUDIO_FORMAT"
	EnvAulaDirPattern     = "AULA_DIR_PATTERN"
	EnvGeminiAPIKey       = "GEMINI_API_KEY"
	EnvGeminiModel        = "GEMINI_MODEL"
	EnvGeminiBaseURL      = "GEMINI_BASE_URL"
	EnvGeminiThinking     = "GEMINI_THINKING"
	EnvGeminiBudget       = "GEMINI_THINKING_BUDGET"
	EnvGeminiMaxContext   = "GEMINI_MAX_CONTEXT"
	EnvTokenizerPath      = "ANALYSIS_TOKENIZER_PATH"
	EnvBatchPause         = "BATCH_PAUSE_SECONDS"
	EnvLedgerRedisAddr    = "LEDGER_REDIS_ADDR"
	EnvLedgerRedisKey     = "LEDGER_REDIS_KEY"
)

// Config holds every tunable of a run. It is built once by a Loader and
// passed by value into constructors.
type Config struct {
	ChunkSizeSeconds int

	GroqAPIKey   string
	GroqModel    string
	GroqLanguage string
	GroqBaseURL  string

	RequestTimeout     time.Duration
	MaxRetries         int
	TranscribeParallel int

	DebugMode      bool
	SaveDebugFiles bool

	FFmpegPath    string
	FFprobePath   string
	TempDir       string
	OutputBaseDir string
	VideosDir     string

	AudioSampleRate int
	AudioChannels   int
	AudioFormat     string

	AulaDirPattern string

	GeminiAPIKey         string
	GeminiModel          string
	GeminiBaseURL        string
	GeminiThinking       bool
	GeminiThinkingBudget int
	GeminiMaxContext     int
	TokenizerPath        string

	BatchPause time.Duration

	LedgerRedisAddr string
	LedgerRedisKey  string
}

// field binds one environment key to its default and its Config slot.
type field struct {
	env string
	def string
	set func(c *Config, v string) error
}

func str(p func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*p(c) = v
		return nil
	}
}

func integer(p func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("not an integer: %q", v)
		}
		*p(c) = n
		return nil
	}
}

// boolean follows the "true"/anything-else convention of the env files
// this tool has always read.
func boolean(p func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		*p(c) = strings.EqualFold(strings.TrimSpace(v), "true")
		return nil
	}
}

func seconds(p func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("not a number of seconds: %q", v)
		}
		*p(c) = time.Duration(n) * time.Second
		return nil
	}
}

var fields = []field{
	{EnvChunkSize, "600", integer(func(c *Config) *int { return &c.ChunkSizeSeconds })},
	{EnvGroqAPIKey, "", str(func(c *Config) *string { return &c.GroqAPIKey })},
	{EnvGroqModel, "whisper-large-v3-turbo", str(func(c *Config) *string { return &c.GroqModel })},
	{EnvGroqLanguage, "pt", str(func(c *Config) *string { return &c.GroqLanguage })},
	{EnvGroqBaseURL, "https://api.groq.com/openai/v1", str(func(c *Config) *string { return &c.GroqBaseURL })},
	{EnvRequestTimeout, "300", seconds(func(c *Config) *time.Duration { return &c.RequestTimeout })},
	{EnvMaxRetries, "3", integer(func(c *Config) *int { return &c.MaxRetries })},
	{EnvTranscribeParallel, "1", integer(func(c *Config) *int { return &c.TranscribeParallel })},
	{EnvDebugMode, "false", boolean(func(c *Config) *bool { return &c.DebugMode })},
	{EnvSaveDebugFiles, "false", boolean(func(c *Config) *bool { return &c.SaveDebugFiles })},
	{EnvFFmpegPath, "./bin/ffmpeg", str(func(c *Config) *string { return &c.FFmpegPath })},
	{EnvFFprobePath, "./bin/ffprobe", str(func(c *Config) *string { return &c.FFprobePath })},
	{EnvTempDir, "temp", str(func(c *Config) *string { return &c.TempDir })},
	{EnvOutputBaseDir, "modulo-{modulo:02d}", str(func(c *Config) *string { return &c.OutputBaseDir })},
	{EnvVideosDir, "videos", str(func(c *Config) *string { return &c.VideosDir })},
	{EnvAudioSampleRate, "16000", integer(func(c *Config) *int { return &c.AudioSampleRate })},
	{EnvAudioChannels, "1", integer(func(c *Config) *int { return &c.AudioChannels })},
	{EnvAudioFormat, "flac", str(func(c *Config) *string { return &c.AudioFormat })},
	{EnvAulaDirPattern, "aula-{numero:02d}-{slug}", str(func(c *Config) *string { return &c.AulaDirPattern })},
	{EnvGeminiAPIKey, "", str(func(c *Config) *string { return &c.GeminiAPIKey })},
	{EnvGeminiModel, "gemini-2.5-flash", str(func(c *Config) *string { return &c.GeminiModel })},
	{EnvGeminiBaseURL, "https://generativelanguage.googleapis.com/v1beta/openai", str(func(c *Config) *string { return &c.GeminiBaseURL })},
	{EnvGeminiThinking, "true", boolean(func(c *Config) *bool { return &c.GeminiThinking })},
	{EnvGeminiBudget, "-1", integer(func(c *Config) *int { return &c.GeminiThinkingBudget })},
	{EnvGeminiMaxContext, "1000000", integer(func(c *Config) *int { return &c.GeminiMaxContext })},
	{EnvTokenizerPath, "", str(func(c *Config) *string { return &c.TokenizerPath })},
	{EnvBatchPause, "3", seconds(func(c *Config) *time.Duration { return &c.BatchPause })},
	{EnvLedgerRedisAddr, "", str(func(c *Config) *string { return &c.LedgerRedisAddr })},
	{EnvLedgerRedisKey, "aula:processed", str(func(c *Config) *string { return &c.LedgerRedisKey })},
}

// Keys returns the config file keys in declaration order.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = FileKey(f.env)
	}
	return keys
}

// FileKey maps an environment variable name to its config file key.
func FileKey(env string) string {
	return strings.ToLower(env)
}

// IsKnownKey reports whether key is a config file key.
func IsKnownKey(key string) bool {
	for _, f := range fields {
		if FileKey(f.env) == key {
			return true
		}
	}
	return false
}

// CheckValue reports whether value parses for the config file key.
func CheckValue(key, value string) error {
	for _, f := range fields {
		if FileKey(f.env) != key {
			continue
		}
		var scratch Config
		if err := f.set(&scratch, value); err != nil {
			return fmt.Errorf("%s: %w: %w", key, ErrInvalidValue, err)
		}
		return nil
	}
	return fmt.Errorf("%q: %w", key, ErrUnknownKey)
}

// EnvKey maps a config file key back to its environment variable name.
func EnvKey(key string) string {
	return strings.ToUpper(key)
}

// Default returns the configuration with no environment and no file.
func Default() Config {
	var c Config
	for _, f := range fields {
		// Defaults are literals above; a failure here is a programming error.
		if err := f.set(&c, f.def); err != nil {
			panic(fmt.Sprintf("config: bad default for %s: %v", f.env, err))
		}
	}
	return c
}

// Loader assembles a Config from the environment and the config file.
type Loader struct {
	// Getenv reads the environment. Nil means os.Getenv.
	Getenv func(string) string

	// FilePath overrides the config file location. Empty means Path().
	FilePath string
}

// Load returns the merged configuration. A missing config file is not an
// error. Malformed values are reported with the key that carried them.
func (l Loader) Load() (Config, error) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	p := l.FilePath
	if p == "" {
		var err error
		if p, err = Path(); err != nil {
			return Config{}, err
		}
	}

	file, err := parseFile(p)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	for _, f := range fields {
		v, source := getenv(f.env), f.env
		if v == "" {
			v, source = file[FileKey(f.env)], FileKey(f.env)
		}
		if v == "" {
			continue
		}
		if err := f.set(&cfg, v); err != nil {
			return Config{}, fmt.Errorf("%s: %w: %w", source, ErrInvalidValue, err)
		}
	}
	return cfg, nil
}

// Validate checks the values the pipeline cannot run without.
func (c Config) Validate() error {
	positives := []struct {
		name string
		v    int64
	}{
		{EnvChunkSize, int64(c.ChunkSizeSeconds)},
		{EnvRequestTimeout, int64(c.RequestTimeout)},
		{EnvMaxRetries, int64(c.MaxRetries)},
		{EnvTranscribeParallel, int64(c.TranscribeParallel)},
		{EnvAudioSampleRate, int64(c.AudioSampleRate)},
		{EnvAudioChannels, int64(c.AudioChannels)},
		{EnvGeminiMaxContext, int64(c.GeminiMaxContext)},
	}
	for _, p := range positives {
		if p.v <= 0 {
			return fmt.Errorf("%s must be positive: %w", p.name, ErrInvalidValue)
		}
	}
	if c.BatchPause < 0 {
		return fmt.Errorf("%s must not be negative: %w", EnvBatchPause, ErrInvalidValue)
	}
	if strings.TrimSpace(c.AudioFormat) == "" {
		return fmt.Errorf("%s is empty: %w", EnvAudioFormat, ErrInvalidValue)
	}
	if err := lang.Validate(c.GroqLanguage); err != nil {
		return fmt.Errorf("%s: %w", EnvGroqLanguage, err)
	}
	return nil
}

// Dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/go-aula.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "go-aula"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "go-aula"), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	d, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
