// Package interrupt turns SIGINT/SIGTERM into a two-stage stop: the first
// signal cancels the run context so in-flight chunks and lessons wind down,
// a second one inside the abort window exits the process immediately.
package interrupt

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ExitInterrupt is the exit code for an abort (130 = 128 + SIGINT).
const ExitInterrupt = 130

// abortWindow is how soon after the first signal a second one aborts.
const abortWindow = 2 * time.Second

const (
	stoppingMessage = "\nStopping after the current step... press Ctrl+C again to abort."
	abortMessage    = "\nAborted."
)

// Handler watches for interrupt signals.
type Handler struct {
	mu          sync.Mutex
	firstSignal time.Time
	interrupted bool
	stopped     bool
	cancel      context.CancelFunc
	done        chan struct{}

	exitFunc func(int)
	nowFunc  func() time.Time
	stderr   io.Writer
	release  func()
}

// Options holds injectable dependencies for testing.
type Options struct {
	SigCh    <-chan os.Signal
	ExitFunc func(int)
	NowFunc  func() time.Time
	// Stderr receives the stop and abort notices. It must tolerate writes
	// from the listener goroutine.
	Stderr io.Writer
}

// NewHandler listens for SIGINT and SIGTERM. The returned context is
// cancelled on the first signal.
func NewHandler(parent context.Context) (*Handler, context.Context) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	h, ctx := NewHandlerWithOptions(parent, Options{SigCh: sigCh})
	h.release = func() { signal.Stop(sigCh) }
	return h, ctx
}

// NewHandlerWithOptions builds a handler around an injected signal channel.
// A nil SigCh starts no listener.
func NewHandlerWithOptions(parent context.Context, opts Options) (*Handler, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	h := &Handler{
		cancel:   cancel,
		done:     make(chan struct{}),
		exitFunc: opts.ExitFunc,
		nowFunc:  opts.NowFunc,
		stderr:   opts.Stderr,
		release:  func() {},
	}
	if h.exitFunc == nil {
		h.exitFunc = os.Exit
	}
	if h.nowFunc == nil {
		h.nowFunc = time.Now
	}
	if h.stderr == nil {
		h.stderr = os.Stderr
	}

	if opts.SigCh != nil {
		go h.listen(opts.SigCh)
	}
	return h, ctx
}

func (h *Handler) listen(sigCh <-chan os.Signal) {
	for {
		select {
		case <-h.done:
			return
		case _, ok := <-sigCh:
			if !ok {
				return
			}
			if h.handle() {
				return
			}
		}
	}
}

// handle processes one signal and reports whether listening should end.
func (h *Handler) handle() bool {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return true
	}
	now := h.nowFunc()

	if !h.interrupted || now.Sub(h.firstSignal) > abortWindow {
		// A late second signal restarts the window instead of aborting.
		first := !h.interrupted
		h.interrupted = true
		h.firstSignal = now
		h.mu.Unlock()
		if first {
			fmt.Fprintln(h.stderr, stoppingMessage)
			h.cancel()
		}
		return false
	}
	h.mu.Unlock()

	fmt.Fprintln(h.stderr, abortMessage)
	h.exitFunc(ExitInterrupt)
	return true
}

// WasInterrupted reports whether at least one signal arrived.
func (h *Handler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}

// Stop detaches the handler from the signal channel. It is idempotent.
func (h *Handler) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()

	h.release()
	close(h.done)
	h.cancel()
}
