package cli

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-aula/internal/analyze"
	"github.com/alnah/go-aula/internal/audio"
	"github.com/alnah/go-aula/internal/config"
	"github.com/alnah/go-aula/internal/ffmpeg"
	"github.com/alnah/go-aula/internal/pipeline"
	"github.com/alnah/go-aula/internal/transcribe"
	"github.com/alnah/go-aula/internal/transcript"
)

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	cfg config.Config
	err error

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls++
	return m.cfg, m.err
}

// ---------------------------------------------------------------------------
// Mock ToolResolver
// ---------------------------------------------------------------------------

type mockToolResolver struct {
	// missing lists tool names that cannot be found.
	missing map[string]bool
	major   int
	ok      bool

	mu       sync.Mutex
	resolved []string
}

func (m *mockToolResolver) Resolve(configured, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolved = append(m.resolved, name)
	if m.missing[name] {
		return "", ffmpeg.ErrNotFound
	}
	return "/usr/bin/" + name, nil
}

func (m *mockToolResolver) CheckVersion(ctx context.Context, ffmpegPath string) (int, bool) {
	return m.major, m.ok
}

func (m *mockToolResolver) Resolved() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.resolved...)
}

// ---------------------------------------------------------------------------
// Mock MediaFactory + Prober + Extractor
// ---------------------------------------------------------------------------

type mockProber struct {
	duration float64
	err      error
}

func (m *mockProber) Duration(ctx context.Context, path string) (float64, error) {
	return m.duration, m.err
}

type mockExtractor struct {
	err error

	mu    sync.Mutex
	calls []audio.ExtractRequest
}

func (m *mockExtractor) Extract(ctx context.Context, req audio.ExtractRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if m.err != nil {
		return "", m.err
	}
	return req.Output, nil
}

type mockMediaFactory struct {
	prober    *mockProber
	extractor *mockExtractor

	mu       sync.Mutex
	timeouts []time.Duration
	sink     audio.StderrSink
}

func (m *mockMediaFactory) NewProber(ffprobePath string, timeout time.Duration) (pipeline.Prober, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeouts = append(m.timeouts, timeout)
	return m.prober, nil
}

func (m *mockMediaFactory) NewExtractor(ffmpegPath string, timeout time.Duration, sink audio.StderrSink) (pipeline.Extractor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeouts = append(m.timeouts, timeout)
	m.sink = sink
	return m.extractor, nil
}

func (m *mockMediaFactory) Sink() audio.StderrSink {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sink
}

// ---------------------------------------------------------------------------
// Mock TranscriberFactory + Transcriber
// ---------------------------------------------------------------------------

type mockTranscriber struct {
	result transcript.ChunkResult
	err    error
	// failFor limits err to audio paths containing it; empty fails every call.
	failFor string

	mu    sync.Mutex
	calls []string
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioPath string) (transcript.ChunkResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, audioPath)
	if m.err != nil && (m.failFor == "" || strings.Contains(audioPath, m.failFor)) {
		return transcript.ChunkResult{}, m.err
	}
	return m.result, nil
}

func (m *mockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockTranscriberFactory struct {
	transcriber *mockTranscriber

	mu       sync.Mutex
	settings []transcribe.Settings
}

func (m *mockTranscriberFactory) NewTranscriber(s transcribe.Settings) transcribe.Transcriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = append(m.settings, s)
	return m.transcriber
}

func (m *mockTranscriberFactory) Settings() []transcribe.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]transcribe.Settings(nil), m.settings...)
}

// ---------------------------------------------------------------------------
// Mock CompleterFactory + Completer
// ---------------------------------------------------------------------------

type mockCompleter struct {
	content string
	err     error

	mu    sync.Mutex
	calls int
}

func (m *mockCompleter) Complete(ctx context.Context, system, prompt string) (analyze.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return analyze.Completion{}, m.err
	}
	return analyze.Completion{Content: m.content, PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150}, nil
}

type mockCompleterFactory struct {
	completer *mockCompleter

	mu       sync.Mutex
	settings []analyze.GeminiSettings
}

func (m *mockCompleterFactory) NewCompleter(s analyze.GeminiSettings) analyze.Completer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = append(m.settings, s)
	return m.completer
}

func (m *mockCompleterFactory) Settings() []analyze.GeminiSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]analyze.GeminiSettings(nil), m.settings...)
}

// ---------------------------------------------------------------------------
// Mock LedgerFactory + Ledger
// ---------------------------------------------------------------------------

type mockLedger struct {
	mu     sync.Mutex
	seen   map[string]bool
	closed bool
}

func (m *mockLedger) Seen(ctx context.Context, video string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[video], nil
}

func (m *mockLedger) Mark(ctx context.Context, video string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[video] = true
	return nil
}

func (m *mockLedger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockLedger) Has(video string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[video]
}

func (m *mockLedger) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

type mockLedgerFactory struct {
	ledger *mockLedger
	err    error

	mu    sync.Mutex
	addrs []string
	keys  []string
}

func (m *mockLedgerFactory) Connect(ctx context.Context, addr, key string) (Ledger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addrs = append(m.addrs, addr)
	m.keys = append(m.keys, key)
	if m.err != nil {
		return nil, m.err
	}
	return m.ledger, nil
}

// Compile-time interface verification.
var (
	_ ConfigLoader       = (*mockConfigLoader)(nil)
	_ ToolResolver       = (*mockToolResolver)(nil)
	_ MediaFactory       = (*mockMediaFactory)(nil)
	_ TranscriberFactory = (*mockTranscriberFactory)(nil)
	_ CompleterFactory   = (*mockCompleterFactory)(nil)
	_ LedgerFactory      = (*mockLedgerFactory)(nil)
	_ Ledger             = (*mockLedger)(nil)
)
