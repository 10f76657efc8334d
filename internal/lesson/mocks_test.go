package lesson_test

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/alnah/go-aula/internal/analyze"
	"github.com/alnah/go-aula/internal/lesson"
	"github.com/alnah/go-aula/internal/pipeline"
	"github.com/alnah/go-aula/internal/transcript"
)

// ---------------------------------------------------------------------------
// mockTranscriber
// ---------------------------------------------------------------------------

type mockTranscriber struct {
	mu     sync.Mutex
	calls  []string
	result pipeline.Result
	err    error
}

func (m *mockTranscriber) Run(ctx context.Context, source string) (pipeline.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, source)
	return m.result, m.err
}

// ---------------------------------------------------------------------------
// mockAnalyzer
// ---------------------------------------------------------------------------

type mockAnalyzer struct {
	mu       sync.Mutex
	calls    int
	analysis analyze.Analysis
}

func (m *mockAnalyzer) Analyze(ctx context.Context, tr transcript.Transcript) analyze.Analysis {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.analysis
}

func (m *mockAnalyzer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ---------------------------------------------------------------------------
// mockLayout
// ---------------------------------------------------------------------------

type layoutCall struct {
	title        string
	modulo, aula int
}

type mockLayout struct {
	mu    sync.Mutex
	calls []layoutCall
	dir   string
	err   error
}

func (m *mockLayout) Create(title string, modulo, aula int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, layoutCall{title, modulo, aula})
	return m.dir, m.err
}

// ---------------------------------------------------------------------------
// mockProcessor
// ---------------------------------------------------------------------------

type processCall struct {
	video        string
	modulo, aula int
}

type mockProcessor struct {
	mu       sync.Mutex
	calls    []processCall
	failures map[string]error // keyed by video path
	onCall   func(video string)
}

func (m *mockProcessor) Process(ctx context.Context, video string, modulo, aula int) lesson.Outcome {
	m.mu.Lock()
	m.calls = append(m.calls, processCall{video, modulo, aula})
	err := m.failures[video]
	onCall := m.onCall
	m.mu.Unlock()

	if onCall != nil {
		onCall(video)
	}
	out := lesson.Outcome{Video: video, Modulo: modulo, Aula: aula, Status: lesson.StatusSuccess, OutputDir: "out/" + video}
	if err != nil {
		out.Status, out.Err, out.OutputDir = lesson.StatusError, err, ""
	}
	return out
}

func (m *mockProcessor) Calls() []processCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]processCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// ---------------------------------------------------------------------------
// memLedger
// ---------------------------------------------------------------------------

type memLedger struct {
	mu      sync.Mutex
	seen    map[string]bool
	seenErr error
	markErr error
}

func newMemLedger(videos ...string) *memLedger {
	l := &memLedger{seen: map[string]bool{}}
	for _, v := range videos {
		l.seen[v] = true
	}
	return l
}

func (l *memLedger) Seen(ctx context.Context, video string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seenErr != nil {
		return false, l.seenErr
	}
	return l.seen[video], nil
}

func (l *memLedger) Mark(ctx context.Context, video string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.markErr != nil {
		return l.markErr
	}
	l.seen[video] = true
	return nil
}

func (l *memLedger) Has(video string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[video]
}

// ---------------------------------------------------------------------------
// fakeSetStore - stands in for *redis.Client
// ---------------------------------------------------------------------------

type fakeSetStore struct {
	mu   sync.Mutex
	sets map[string]map[string]bool
	err  error
}

func newFakeSetStore() *fakeSetStore {
	return &fakeSetStore{sets: map[string]map[string]bool{}}
}

func (f *fakeSetStore) SIsMember(ctx context.Context, key string, member any) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	return redis.NewBoolResult(f.sets[key][member.(string)], nil)
}

func (f *fakeSetStore) SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	if f.sets[key] == nil {
		f.sets[key] = map[string]bool{}
	}
	var added int64
	for _, m := range members {
		if !f.sets[key][m.(string)] {
			f.sets[key][m.(string)] = true
			added++
		}
	}
	return redis.NewIntResult(added, nil)
}

var errBoom = errors.New("boom")
