package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"
)

// Output holds what a tool wrote while running.
type Output struct {
	Stdout string
	Stderr string
}

// runFn runs a binary and captures both output streams.
type runFn func(ctx context.Context, path string, args []string) (Output, error)

// Executor runs ffmpeg and ffprobe with a per-call time limit.
type Executor struct {
	run runFn
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRun sets a custom run function (for testing).
func WithRun(fn runFn) ExecutorOption {
	return func(e *Executor) { e.run = fn }
}

// NewExecutor creates an Executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{run: defaultRun}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the tool at path. A zero timeout means no limit beyond ctx.
//
// Errors:
//   - the tool exited non-zero: *ToolError with its stderr
//   - the time limit elapsed: wraps ErrTimeout
//   - ctx was canceled by the caller: ctx.Err()
//   - the binary could not be started: wrapped exec error
func (e *Executor) Run(ctx context.Context, path string, args []string, timeout time.Duration) (Output, error) {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	out, err := e.run(runCtx, path, args)
	if err == nil {
		return out, nil
	}

	tool := filepath.Base(path)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return out, fmt.Errorf("%s: %w after %v", tool, ErrTimeout, timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, &ToolError{Tool: tool, ExitCode: exitErr.ExitCode(), Stderr: out.Stderr, Err: err}
	}
	return out, fmt.Errorf("run %s: %w", tool, err)
}

// defaultRun is the production implementation.
func defaultRun(ctx context.Context, path string, args []string) (Output, error) {
	cmd := exec.CommandContext(ctx, path, args...) // #nosec G204 -- path comes from config, args are built internally

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return Output{Stdout: stdout.String(), Stderr: stderr.String()}, err
}
