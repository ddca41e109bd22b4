// Package signal turns interrupt signals into context cancellation for
// chain runs.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages (to avoid circular dependencies)
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// interruptExitCode is the conventional exit status for a process killed
// by SIGINT (128 + signal number).
const interruptExitCode = 130

// Handler listens for SIGINT and SIGTERM on behalf of a run. The first
// signal cancels the run context, which aborts in-flight generation calls
// through their contexts and lets the caller report a clean interrupt. A
// second signal exits the process immediately, covering the case where a
// provider call does not honor cancellation.
type Handler struct {
	ctx         context.Context //nolint:containedctx // the handler owns the run context lifecycle
	cancel      context.CancelFunc
	interrupted chan struct{}
	done        chan struct{} // closed by Stop to end the listener
	once        sync.Once
	stopOnce    sync.Once
	sigChan     chan os.Signal

	// exit runs on the second signal. Replaced in tests.
	exit func(code int)
}

// NewHandler starts listening for SIGINT and SIGTERM and returns a
// handler whose Context is canceled by the first signal.
//
// Usage:
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	ctx = h.Context()
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
		// Buffer of 1 so a signal arriving between receives is not dropped.
		// See: https://pkg.go.dev/os/signal#Notify
		sigChan: make(chan os.Signal, 1),
		exit:    os.Exit,
	}

	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the run context. It is canceled by the first interrupt,
// by Stop, or by the parent context ending.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted returns a channel that closes when the first signal
// arrives. Callers use it to tell a user interrupt apart from other
// failures after a run returns an error.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Stop detaches the handler from signal delivery and cancels the run
// context. Safe to call more than once; run commands defer it.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel()
	})
}

// interrupt cancels the run on the first call. Later calls are no-ops, so
// repeated delivery can never double-close the interrupted channel.
func (h *Handler) interrupt() {
	h.once.Do(func() {
		h.cancel()
		close(h.interrupted)
	})
}

// listen waits for the first signal, then for a second. The two waits are
// separate because the first signal cancels the run context: once that
// happens ctx.Done no longer means anything, and only another signal or
// Stop should end the listener.
func (h *Handler) listen() {
	select {
	case <-h.ctx.Done():
		return
	case <-h.done:
		return
	case <-h.sigChan:
		h.interrupt()
	}

	select {
	case <-h.done:
	case <-h.sigChan:
		h.exit(interruptExitCode)
	}
}
