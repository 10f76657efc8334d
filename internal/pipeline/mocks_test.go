package pipeline_test

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/alnah/go-aula/internal/audio"
	"github.com/alnah/go-aula/internal/pipeline"
	"github.com/alnah/go-aula/internal/transcribe"
	"github.com/alnah/go-aula/internal/transcript"
)

// Compile-time interface verification.
var (
	_ pipeline.Prober        = (*mockProber)(nil)
	_ pipeline.Extractor     = (*mockExtractor)(nil)
	_ transcribe.Transcriber = (*mockTranscriber)(nil)
)

type mockProber struct {
	duration float64
	err      error
}

func (m *mockProber) Duration(ctx context.Context, path string) (float64, error) {
	return m.duration, m.err
}

// mockExtractor records requests and fails the chunk indexes in fail.
type mockExtractor struct {
	mu       sync.Mutex
	fail     map[int]error
	requests []audio.ExtractRequest
}

func (m *mockExtractor) Extract(ctx context.Context, req audio.ExtractRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if err := m.fail[req.Chunk.Index]; err != nil {
		return "", err
	}
	return req.Output, nil
}

func (m *mockExtractor) Requests() []audio.ExtractRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]audio.ExtractRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// mockTranscriber returns one word per chunk, keyed by the "_chunk_N"
// suffix of the audio path. failures[N] is the number of leading
// attempts that fail for chunk N.
type mockTranscriber struct {
	mu       sync.Mutex
	failures map[string]int
	err      error
	calls    map[string]int
	onCall   func(path string)
}

func newMockTranscriber() *mockTranscriber {
	return &mockTranscriber{failures: map[string]int{}, calls: map[string]int{}}
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioPath string) (transcript.ChunkResult, error) {
	key := chunkKey(audioPath)

	m.mu.Lock()
	m.calls[key]++
	n := m.calls[key]
	fails := m.failures[key]
	onCall := m.onCall
	m.mu.Unlock()

	if onCall != nil {
		onCall(audioPath)
	}
	if n <= fails {
		return transcript.ChunkResult{}, m.err
	}
	return transcript.ChunkResult{
		Text:     " palavra" + key,
		Duration: 590,
		Segments: []transcript.Segment{{ID: 0, Start: 0.5, End: 2.5, Text: " palavra" + key}},
		Words:    []transcript.Word{{Word: "palavra" + key, Start: 1, End: 2}},
	}, nil
}

func (m *mockTranscriber) Calls(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[key]
}

// chunkKey extracts N from ".../name_chunk_N.flac".
func chunkKey(p string) string {
	_, after, _ := strings.Cut(p, "_chunk_")
	key, _, _ := strings.Cut(after, ".")
	return key
}

// fileOps records removals and never touches the disk.
type fileOps struct {
	mu      sync.Mutex
	removed []string
}

func (f *fileOps) mkdir(string, os.FileMode) error { return nil }

func (f *fileOps) remove(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, name)
	return nil
}

func (f *fileOps) Removed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}
