package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/TermDesk/internal/config"
	"github.com/GriffinCanCode/TermDesk/internal/database"
	"github.com/GriffinCanCode/TermDesk/internal/events"
	"github.com/GriffinCanCode/TermDesk/internal/logging"
	"github.com/GriffinCanCode/TermDesk/internal/sdk"
	"github.com/GriffinCanCode/TermDesk/internal/shared/paths"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
	"github.com/GriffinCanCode/TermDesk/internal/worker"
)

// Manager constructs the core services, runs them as a unit, and tracks every
// service-owned worker so the watchdog can reap the stuck ones. It is the
// sdk.Services gateway handed to plugin code.
type Manager struct {
	log    *logging.Logger
	bus    *events.Bus
	cfg    *config.Config
	layout paths.Layout
	sched  *worker.Scheduler

	Logging   *LoggingService
	Shells    *ShellService
	Screens   *ScreenService
	Windows   *WindowService
	Apps      *AppService
	Databases *DatabaseService
	Assoc     *FileAssocService

	// order is the fixed startup sequence. Shutdown walks it in reverse,
	// except logging which always stops last.
	order []Service

	started atomic.Bool

	workersMu sync.Mutex
	workers   map[string]*worker.Handle
	reaped    map[string]struct{}

	watchdogStop chan struct{}
	notifyLimit  *rate.Limiter
}

// NewManager constructs every service in the fixed order and wires their
// cross-references. Construction never touches the filesystem; failures here
// are programming errors surfaced before anything starts.
func NewManager(log *logging.Logger, bus *events.Bus, cfg *config.Config, layout paths.Layout, sched *worker.Scheduler) (*Manager, error) {
	m := &Manager{
		log:          log.Named("services"),
		bus:          bus,
		cfg:          cfg,
		layout:       layout,
		sched:        sched,
		workers:      make(map[string]*worker.Handle),
		reaped:       make(map[string]struct{}),
		watchdogStop: make(chan struct{}),
		notifyLimit:  rate.NewLimiter(rate.Every(5*time.Second), 1),
	}

	build := func(name string, fn func() error) error {
		if err := fn(); err != nil {
			return fmt.Errorf("construct %s service: %w", name, err)
		}
		m.log.Debug("service constructed", zap.String("service", name))
		return nil
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"logging", func() error {
			m.Logging = NewLoggingService(log, bus, layout, cfg.Logging)
			return nil
		}},
		{"shells", func() error {
			m.Shells = NewShellService(log, bus, layout, cfg.Plugins)
			return nil
		}},
		{"screens", func() error {
			m.Screens = NewScreenService(log, bus)
			return nil
		}},
		{"windows", func() error {
			m.Windows = NewWindowService(log, bus)
			return nil
		}},
		{"apps", func() error {
			m.Apps = NewAppService(log, bus, layout, cfg.Plugins)
			return nil
		}},
		{"databases", func() error {
			m.Databases = NewDatabaseService(log, layout)
			return nil
		}},
		{"fileassoc", func() error {
			m.Assoc = NewFileAssocService(log, layout)
			return nil
		}},
	}
	for _, step := range steps {
		if err := build(step.name, step.fn); err != nil {
			return nil, err
		}
	}

	m.Windows.SetRunner(m.RunWorker)
	m.Windows.SetOnClosed(m.cascadeAppShutdown)
	m.Apps.SetRunner(m.RunWorker)
	m.Apps.SetWindows(m.Windows)
	m.Apps.SetServices(m)
	m.Shells.SetServices(m)
	m.Screens.SetServices(m)

	m.order = []Service{m.Logging, m.Shells, m.Screens, m.Windows, m.Apps, m.Databases, m.Assoc}
	return m, nil
}

// StartAll starts every service in order. The first failure aborts the
// sequence; nothing after the failed service is started. On success the
// watchdog begins and TopicServicesStarted fires.
func (m *Manager) StartAll(ctx context.Context) error {
	if !m.started.CompareAndSwap(false, true) {
		return nil
	}
	for _, svc := range m.order {
		if err := svc.Start(ctx); err != nil {
			m.started.Store(false)
			return fmt.Errorf("start %s service: %w", svc.ID(), err)
		}
		m.log.Info("service started", zap.String("service", svc.ID()))
	}

	go m.watchdog()
	m.bus.Publish(events.TopicServicesStarted, nil)
	m.log.Info("all services started")
	return nil
}

// StopAll stops every service in reverse order, keeping logging alive until
// everything else has wound down so shutdown itself stays observable.
func (m *Manager) StopAll(ctx context.Context) error {
	if !m.started.CompareAndSwap(true, false) {
		return nil
	}
	close(m.watchdogStop)
	m.cancelAllWorkers()

	var firstErr error
	for i := len(m.order) - 1; i >= 0; i-- {
		svc := m.order[i]
		if svc == Service(m.Logging) {
			continue
		}
		if err := svc.Stop(ctx); err != nil {
			m.log.Warn("service stop failed", zap.String("service", svc.ID()), zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("stop %s service: %w", svc.ID(), err)
			}
		}
	}
	if err := m.Logging.Stop(ctx); err != nil {
		m.log.Warn("service stop failed", zap.String("service", m.Logging.ID()), zap.Error(err))
		if firstErr == nil {
			firstErr = fmt.Errorf("stop %s service: %w", m.Logging.ID(), err)
		}
	}
	m.log.Info("all services stopped")
	return firstErr
}

// cascadeAppShutdown tears down the app process behind a closed window.
func (m *Manager) cascadeAppShutdown(appProcessID string) {
	if err := m.Apps.Shutdown(appProcessID); err != nil {
		m.log.Warn("cascade shutdown failed", zap.String("app", appProcessID), zap.Error(err))
	}
}

// ============================================================================
// Tracked workers and the watchdog
// ============================================================================

// RunWorker submits a worker through the scheduler and tracks it until it
// reaches a terminal state. A failed worker is logged and surfaces a
// throttled desktop notification.
func (m *Manager) RunWorker(ctx context.Context, meta worker.Meta, fn worker.Fn) *worker.Handle {
	h := m.sched.Submit(ctx, meta, fn)

	m.workersMu.Lock()
	m.workers[h.ID()] = h
	m.workersMu.Unlock()

	go func() {
		<-h.Done()
		m.workersMu.Lock()
		delete(m.workers, h.ID())
		delete(m.reaped, h.ID())
		m.workersMu.Unlock()

		if err := h.Err(); err != nil && h.State() == worker.StateError {
			m.log.Error("worker failed",
				zap.String("worker", meta.Name),
				zap.String("service", meta.ServiceID),
				zap.Error(err))
			if m.notifyLimit.Allow() {
				m.notify(types.SeverityWarning, fmt.Sprintf("Worker %q failed: %v", meta.Name, err))
			}
		}
	}()
	return h
}

// TrackedWorkers reports how many workers are currently tracked.
func (m *Manager) TrackedWorkers() int {
	m.workersMu.Lock()
	defer m.workersMu.Unlock()
	return len(m.workers)
}

// watchdog periodically sweeps tracked workers and cancels any that has been
// running past the ceiling. Each handle is cancelled at most once; workers
// flagged Blocking (long filesystem walks) are exempt.
func (m *Manager) watchdog() {
	timer := time.NewTimer(m.cfg.Workers.CheckInterval)
	defer timer.Stop()
	for {
		select {
		case <-m.watchdogStop:
			return
		case <-timer.C:
			m.reapStuck()
			timer.Reset(m.cfg.Workers.CheckInterval)
		}
	}
}

func (m *Manager) reapStuck() {
	ceiling := m.cfg.Workers.Ceiling

	m.workersMu.Lock()
	var stuck []*worker.Handle
	for id, h := range m.workers {
		if _, done := m.reaped[id]; done {
			continue
		}
		if h.Meta().Blocking || h.State() != worker.StateRunning {
			continue
		}
		if h.Elapsed() > ceiling {
			m.reaped[id] = struct{}{}
			stuck = append(stuck, h)
		}
	}
	m.workersMu.Unlock()

	for _, h := range stuck {
		m.log.Warn("cancelling stuck worker",
			zap.String("worker", h.Meta().Name),
			zap.String("service", h.Meta().ServiceID),
			zap.Duration("elapsed", h.Elapsed()),
			zap.Duration("ceiling", ceiling))
		h.Cancel()
		if m.notifyLimit.Allow() {
			m.notify(types.SeverityWarning,
				fmt.Sprintf("Worker %q exceeded %s and was cancelled", h.Meta().Name, ceiling))
		}
	}
}

func (m *Manager) cancelAllWorkers() {
	m.workersMu.Lock()
	handles := make([]*worker.Handle, 0, len(m.workers))
	for _, h := range m.workers {
		handles = append(handles, h)
	}
	m.workersMu.Unlock()
	for _, h := range handles {
		h.Cancel()
	}
}

func (m *Manager) notify(severity types.Severity, msg string) {
	m.bus.Publish(events.TopicNotification, types.Notification{
		Severity: severity,
		Message:  msg,
	})
}

// ============================================================================
// sdk.Services gateway
// ============================================================================

// Logger returns the ambient structured logger.
func (m *Manager) Logger() *logging.Logger { return m.log }

// Bus returns the desktop event bus.
func (m *Manager) Bus() *events.Bus { return m.bus }

// OpenDatabase opens (or returns) the named database for the owner.
func (m *Manager) OpenDatabase(owner, name string) (*database.Process, error) {
	return m.Databases.Open(owner, name)
}

// LaunchApp runs the launch pipeline for the registered app.
func (m *Manager) LaunchApp(plainID string) error {
	return m.Apps.Launch(context.Background(), plainID)
}

// RegisteredApps lists the discovered app descriptors, broken included.
func (m *Manager) RegisteredApps() []sdk.AppDescriptor {
	return m.Apps.Registered()
}

// RecentLogs replays the default logger process's ring buffer.
func (m *Manager) RecentLogs() []types.LogRecord {
	return m.Logging.Recent()
}

// AppForFile resolves which registered app opens the given file.
func (m *Manager) AppForFile(path string) (string, bool) {
	return m.Assoc.AppFor(path)
}

// Submit schedules plugin background work on the tracked worker pool.
func (m *Manager) Submit(meta worker.Meta, fn worker.Fn) {
	m.RunWorker(context.Background(), meta, fn)
}

// DataDir returns the root of the user data directory.
func (m *Manager) DataDir() string { return m.layout.Root }
