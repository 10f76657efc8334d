package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-aula/internal/config"
	"github.com/alnah/go-aula/internal/transcript"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	config      *mockConfigLoader
	tools       *mockToolResolver
	media       *mockMediaFactory
	transcriber *mockTranscriberFactory
	completer   *mockCompleterFactory
	ledger      *mockLedgerFactory
	stderr      *syncBuffer
	stdout      *syncBuffer
}

// sampleChunk is what the mock transcription service returns for any chunk.
func sampleChunk() transcript.ChunkResult {
	return transcript.ChunkResult{
		Text:     "Hoje vamos usar docker run para subir o postgres",
		Language: "pt",
		Duration: 9.5,
		Segments: []transcript.Segment{{ID: 0, Start: 0, End: 9.5, Text: "Hoje vamos usar docker run para subir o postgres"}},
		Words: []transcript.Word{
			{Word: "Hoje", Start: 0, End: 0.4},
			{Word: "vamos", Start: 0.4, End: 0.8},
		},
	}
}

// testConfig returns a valid configuration rooted in a temporary directory.
func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.GroqAPIKey = "test-groq-key"
	cfg.MaxRetries = 1
	cfg.BatchPause = 0
	cfg.TempDir = filepath.Join(root, "temp")
	cfg.OutputBaseDir = filepath.Join(root, "out", "modulo-{modulo:02d}")
	cfg.VideosDir = filepath.Join(root, "videos")
	return cfg
}

// testEnv creates an Env with all dependencies mocked around cfg.
// Returns the Env and the mocks for assertions.
func testEnv(cfg config.Config) (*Env, *testMocks) {
	m := &testMocks{
		config: &mockConfigLoader{cfg: cfg},
		tools:  &mockToolResolver{major: 6, ok: true},
		media: &mockMediaFactory{
			prober:    &mockProber{duration: 10},
			extractor: &mockExtractor{},
		},
		transcriber: &mockTranscriberFactory{transcriber: &mockTranscriber{result: sampleChunk()}},
		completer:   &mockCompleterFactory{completer: &mockCompleter{}},
		ledger:      &mockLedgerFactory{ledger: &mockLedger{seen: map[string]bool{}}},
		stderr:      &syncBuffer{},
		stdout:      &syncBuffer{},
	}

	env := &Env{
		Stderr:             m.stderr,
		Stdout:             m.stdout,
		Getenv:             staticEnv(nil),
		Now:                fixedTime(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)),
		ConfigLoader:       m.config,
		ToolResolver:       m.tools,
		MediaFactory:       m.media,
		TranscriberFactory: m.transcriber,
		CompleterFactory:   m.completer,
		LedgerFactory:      m.ledger,
	}
	return env, m
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// fixedTime returns a function that always returns the given time.
func fixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// staticEnv returns a getenv function that returns values from the given map.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

// testCmd returns a bare command carrying ctx, as cobra passes to RunE.
func testCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	return cmd
}

// createVideo writes a fake video file under dir and returns its path.
func createVideo(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create video dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("fake video"), 0o600); err != nil {
		t.Fatalf("failed to create test video: %v", err)
	}
	return path
}

// assertExists fails when path does not exist.
func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}
