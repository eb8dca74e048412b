package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/GriffinCanCode/TermDesk/internal/logging"
)

// Observer is notified whenever a worker changes state. Called from the
// worker's own goroutine; implementations must not block.
type Observer func(h *Handle)

// Scheduler submits workers and enforces per-group exclusivity. It does not
// keep a registry of live handles; the services manager tracks those so the
// watchdog sees exactly the workers it owns.
type Scheduler struct {
	log      *logging.Logger
	observer Observer

	mu     sync.Mutex
	groups map[string]*semaphore.Weighted
}

// NewScheduler builds a scheduler logging through the given logger.
func NewScheduler(log *logging.Logger) *Scheduler {
	return &Scheduler{
		log:    log.Named("worker"),
		groups: make(map[string]*semaphore.Weighted),
	}
}

// SetObserver installs the state-change callback. Must be called before the
// first Submit.
func (s *Scheduler) SetObserver(obs Observer) { s.observer = obs }

// Submit starts fn as a tracked worker and returns its handle immediately.
// Exclusive workers wait for the group slot before running; cancellation
// while queued resolves the handle as cancelled without ever running fn.
func (s *Scheduler) Submit(ctx context.Context, meta Meta, fn Fn) *Handle {
	h := newHandle(ctx, meta)
	s.log.Debug("worker submitted",
		zap.String("id", h.id),
		zap.String("name", meta.Name),
		zap.String("service", meta.ServiceID),
		zap.Bool("exclusive", meta.Exclusive))
	s.notify(h)

	go s.run(h, fn)
	return h
}

func (s *Scheduler) run(h *Handle, fn Fn) {
	if h.meta.Exclusive {
		sem := s.groupSlot(h.meta.group())
		if err := sem.Acquire(h.ctx, 1); err != nil {
			h.finish(err)
			s.notify(h)
			return
		}
		defer sem.Release(1)
	}
	if h.ctx.Err() != nil {
		h.finish(h.ctx.Err())
		s.notify(h)
		return
	}

	h.markRunning()
	s.notify(h)

	err := s.invoke(h, fn)
	h.finish(err)
	s.log.Debug("worker finished",
		zap.String("id", h.id),
		zap.String("name", h.meta.Name),
		zap.String("state", h.State().String()),
		zap.Duration("elapsed", h.Elapsed()),
		zap.Error(h.Err()))
	s.notify(h)
}

// invoke runs fn with panic containment so one misbehaving plugin worker
// cannot take down the desktop.
func (s *Scheduler) invoke(h *Handle, fn Fn) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker %s panicked: %v", h.meta.Name, r)
		}
	}()
	return fn(h.ctx)
}

func (s *Scheduler) groupSlot(group string) *semaphore.Weighted {
	s.mu.Lock()
	defer s.mu.Unlock()
	sem, ok := s.groups[group]
	if !ok {
		sem = semaphore.NewWeighted(1)
		s.groups[group] = sem
	}
	return sem
}

func (s *Scheduler) notify(h *Handle) {
	if s.observer != nil {
		s.observer(h)
	}
}
