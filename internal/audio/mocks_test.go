package audio_test

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/alnah/go-aula/internal/audio"
	"github.com/alnah/go-aula/internal/ffmpeg"
)

// Compile-time interface verification.
var (
	_ audio.ToolRunner  = (*mockRunner)(nil)
	_ audio.FileStatter = (*mockFileStatter)(nil)
)

// mockRunner records tool invocations and returns canned output.
type mockRunner struct {
	mu      sync.Mutex
	RunFunc func(ctx context.Context, path string, args []string, timeout time.Duration) (ffmpeg.Output, error)
	calls   []runCall
}

type runCall struct {
	path    string
	args    []string
	timeout time.Duration
}

func (m *mockRunner) Run(ctx context.Context, path string, args []string, timeout time.Duration) (ffmpeg.Output, error) {
	m.mu.Lock()
	m.calls = append(m.calls, runCall{path: path, args: args, timeout: timeout})
	m.mu.Unlock()
	if m.RunFunc != nil {
		return m.RunFunc(ctx, path, args, timeout)
	}
	return ffmpeg.Output{}, nil
}

func (m *mockRunner) Calls() []runCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]runCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// mockFileStatter reports every file as present unless err is set.
type mockFileStatter struct {
	err error
}

func (m *mockFileStatter) Stat(name string) (os.FileInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return mockFileInfo{}, nil
}

type mockFileInfo struct{}

func (mockFileInfo) Name() string       { return "lesson.mp4" }
func (mockFileInfo) Size() int64        { return 1 << 20 }
func (mockFileInfo) Mode() os.FileMode  { return 0644 }
func (mockFileInfo) ModTime() time.Time { return time.Time{} }
func (mockFileInfo) IsDir() bool        { return false }
func (mockFileInfo) Sys() any           { return nil }
