// Package worker runs service-owned background functions as tracked,
// cancellable handles. Exclusive workers serialize per group so conflicting
// operations (window mounts, rescans) never interleave.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/TermDesk/internal/shared/id"
)

// State is the lifecycle phase of one worker.
type State int32

const (
	StatePending State = iota
	StateRunning
	StateSuccess
	StateError
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateError || s == StateCancelled
}

// Meta describes a worker at submission time.
type Meta struct {
	// Name is the human-readable label shown in logs and diagnostics.
	Name string

	// ServiceID identifies the owning service.
	ServiceID string

	// Group buckets workers for exclusivity. Empty falls back to ServiceID.
	Group string

	// Exclusive serializes the worker behind every other exclusive worker of
	// the same group.
	Exclusive bool

	// Blocking marks work expected to hold an OS thread (filesystem walks,
	// subprocess waits) rather than cooperative polling.
	Blocking bool
}

func (m Meta) group() string {
	if m.Group != "" {
		return m.Group
	}
	return m.ServiceID
}

// Fn is the unit of work. It must honor ctx cancellation.
type Fn func(ctx context.Context) error

// Handle is the tracked identity of one submitted worker.
type Handle struct {
	id   string
	meta Meta

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	state     atomic.Int32
	cancelled atomic.Bool
	startedAt atomic.Int64 // unix nanos, 0 until running
	err       atomic.Value // error
}

func newHandle(parent context.Context, meta Meta) *Handle {
	ctx, cancel := context.WithCancel(parent)
	return &Handle{
		id:     id.NewWorkerID(),
		meta:   meta,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// ID returns the worker's unique id.
func (h *Handle) ID() string { return h.id }

// Meta returns the submission metadata.
func (h *Handle) Meta() Meta { return h.meta }

// State returns the current lifecycle phase.
func (h *Handle) State() State { return State(h.state.Load()) }

// Err returns the failure, nil unless State is StateError or StateCancelled.
func (h *Handle) Err() error {
	if v := h.err.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// Done closes when the worker reaches a terminal state.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the worker finishes or ctx expires.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel requests cancellation. Safe to call any number of times; a worker
// cancelled before running never starts.
func (h *Handle) Cancel() {
	h.cancelled.Store(true)
	h.cancel()
}

// StartedAt returns when the function began running, zero while pending.
func (h *Handle) StartedAt() time.Time {
	n := h.startedAt.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Elapsed returns how long the worker has been running, zero while pending.
func (h *Handle) Elapsed() time.Duration {
	started := h.StartedAt()
	if started.IsZero() {
		return 0
	}
	return time.Since(started)
}

func (h *Handle) markRunning() {
	h.startedAt.Store(time.Now().UnixNano())
	h.state.Store(int32(StateRunning))
}

func (h *Handle) finish(err error) {
	switch {
	case h.cancelled.Load():
		h.state.Store(int32(StateCancelled))
		if err == nil {
			err = context.Canceled
		}
		h.err.Store(err)
	case err != nil:
		h.state.Store(int32(StateError))
		h.err.Store(err)
	default:
		h.state.Store(int32(StateSuccess))
	}
	close(h.done)
}
