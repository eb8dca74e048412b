package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/TermDesk/internal/config"
	"github.com/GriffinCanCode/TermDesk/internal/events"
	"github.com/GriffinCanCode/TermDesk/internal/loader"
	"github.com/GriffinCanCode/TermDesk/internal/logging"
	"github.com/GriffinCanCode/TermDesk/internal/process"
	"github.com/GriffinCanCode/TermDesk/internal/sdk"
	"github.com/GriffinCanCode/TermDesk/internal/shared/paths"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
	"github.com/GriffinCanCode/TermDesk/internal/worker"
)

// rescanDebounce is the quiet period after a plugin-dir change before a
// rescan fires.
const rescanDebounce = 500 * time.Millisecond

// AppProcess is one live launch of a registered app.
type AppProcess struct {
	process.Identity

	Desc    sdk.AppDescriptor
	Content sdk.Widget

	// PlainID and Instance tie the process back to the instance counter so
	// shutdown can return the number to the pool.
	PlainID  string
	Instance int
}

// AppService discovers app plugins and runs the launch pipeline. Discovery
// failures are per-unit: a directory full of broken plugins still yields
// every working one.
type AppService struct {
	log *logging.Logger
	bus *events.Bus
	run WorkerRunner

	dirs      []string
	watchDirs bool

	windows  *WindowService
	services sdk.Services

	mu       sync.RWMutex
	descs    map[string]sdk.AppDescriptor
	failures map[string]error

	scanning atomic.Bool
	reg      *process.Registry[*AppProcess]
	watcher  *loader.Watcher
}

// NewAppService constructs the service. Search order: the user plugin dir,
// then any extra configured dirs.
func NewAppService(log *logging.Logger, bus *events.Bus, layout paths.Layout, cfg config.PluginConfig) *AppService {
	dirs := append([]string{layout.Apps()}, cfg.AppDirs...)
	return &AppService{
		log:       log.Named("apps"),
		bus:       bus,
		dirs:      dirs,
		watchDirs: cfg.Watch,
		descs:     make(map[string]sdk.AppDescriptor),
		failures:  make(map[string]error),
		reg:       process.NewRegistry[*AppProcess](),
	}
}

func (s *AppService) ID() string { return "apps" }

// SetRunner installs the tracked-worker submitter.
func (s *AppService) SetRunner(run WorkerRunner) { s.run = run }

// SetWindows wires the window service the launch pipeline hands off to.
func (s *AppService) SetWindows(w *WindowService) { s.windows = w }

// SetServices wires the gateway handed to plugin content factories.
func (s *AppService) SetServices(services sdk.Services) { s.services = services }

// Start runs the initial discovery scan and, when configured, begins
// watching the plugin directories for changes.
func (s *AppService) Start(ctx context.Context) error {
	if err := s.scan(); err != nil {
		return err
	}
	if s.watchDirs {
		w, err := loader.NewWatcher(s.log, s.dirs, rescanDebounce, func() {
			if err := s.Rescan(context.Background()); err != nil {
				s.log.Warn("watch-triggered rescan rejected", zap.Error(err))
			}
		})
		if err != nil {
			s.log.Warn("plugin watch unavailable", zap.Error(err))
		} else {
			s.watcher = w
		}
	}
	return nil
}

// scan replaces the descriptor table with a fresh pass over the search dirs.
// Only one scan may run at a time.
func (s *AppService) scan() error {
	if !s.scanning.CompareAndSwap(false, true) {
		return ErrScanInFlight
	}
	defer s.scanning.Store(false)

	result := loader.ScanApps(s.log, s.dirs)
	s.mu.Lock()
	s.descs = result.Apps
	s.failures = result.Failures
	s.mu.Unlock()

	for unit, err := range result.Failures {
		s.log.Warn("app unit failed", zap.String("unit", unit), zap.Error(err))
	}
	if len(result.Apps) == 0 {
		s.log.Warn("scan found no app plugins", zap.Strings("dirs", s.dirs))
	}
	return nil
}

// Rescan queues a fresh scan on an exclusive worker. A scan already in
// flight rejects the request instead of queueing behind it.
func (s *AppService) Rescan(ctx context.Context) error {
	if s.scanning.Load() {
		return ErrScanInFlight
	}
	meta := worker.Meta{
		Name:      "app rescan",
		ServiceID: s.ID(),
		Group:     "apps.scan",
		Exclusive: true,
	}
	s.run(ctx, meta, func(context.Context) error {
		err := s.scan()
		if err == nil {
			s.bus.Publish(events.TopicNotification, types.Notification{
				Severity: types.SeverityInfo,
				Message:  "App plugins rescanned",
			})
		}
		return err
	})
	return nil
}

// Registered returns every discovered descriptor, broken included, sorted by
// id so shells render a stable menu.
func (s *AppService) Registered() []sdk.AppDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]sdk.AppDescriptor, 0, len(s.descs))
	for _, d := range s.descs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Failures returns a copy of the per-unit discovery failures.
func (s *AppService) Failures() map[string]error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]error, len(s.failures))
	for k, v := range s.failures {
		out[k] = v
	}
	return out
}

// Descriptor returns the registered descriptor for a plain id.
func (s *AppService) Descriptor(plainID string) (sdk.AppDescriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.descs[plainID]
	return d, ok
}

// Launch gates the request against the registered descriptor, then schedules
// the launch pipeline on a tracked worker and returns. Gate failures (unknown
// id, broken plugin, unsupported mode) come back synchronously; pipeline
// failures surface through worker tracking.
func (s *AppService) Launch(ctx context.Context, plainID string) error {
	desc, ok := s.Descriptor(plainID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownApp, plainID)
	}
	if desc.Broken {
		return fmt.Errorf("%w: %q is missing %s", ErrAppBroken, plainID, strings.Join(desc.Missing, ", "))
	}
	switch desc.Launch {
	case types.LaunchWindow:
	case types.LaunchFullscreen, types.LaunchDaemon:
		return fmt.Errorf("%w: %s mode for %q", ErrNotLaunchable, desc.Launch, plainID)
	default:
		return fmt.Errorf("%w: unknown mode %q for %q", ErrNotLaunchable, desc.Launch, plainID)
	}

	meta := worker.Meta{
		Name:      "launch " + plainID,
		ServiceID: s.ID(),
	}
	s.run(ctx, meta, func(ctx context.Context) error {
		return s.launch(ctx, plainID, desc)
	})
	return nil
}

// launch claims an instance number, constructs the process, registers it,
// builds the content widget, and hands the process to the window service. Any
// failure after the instance is claimed unwinds the claim so numbering never
// leaks.
func (s *AppService) launch(ctx context.Context, plainID string, desc sdk.AppDescriptor) error {
	processID, instance := s.reg.NextProcessID(plainID)
	app := &AppProcess{
		Identity: process.NewIdentity(types.ProcessApp, processID, "appprocess"),
		Desc:     desc,
		PlainID:  plainID,
		Instance: instance,
	}

	unwind := func() {
		s.reg.Release(plainID, instance)
	}

	if err := s.reg.Add(processID, app); err != nil {
		unwind()
		return fmt.Errorf("register app %s: %w", processID, err)
	}

	content, err := desc.NewContent(sdk.Context{
		Type:      types.ProcessApp,
		ProcessID: processID,
		PluginID:  plainID,
		UID:       app.UID(),
		Services:  s.services,
	})
	if err != nil {
		s.teardown(processID)
		return fmt.Errorf("plugin %q content factory: %w", plainID, err)
	}
	if content == nil {
		s.teardown(processID)
		return fmt.Errorf("%w: plugin %q", ErrNilContent, plainID)
	}
	app.Content = content

	if _, err := s.windows.OpenWindow(ctx, app); err != nil {
		s.teardown(processID)
		return fmt.Errorf("open window for %s: %w", processID, err)
	}
	s.log.Info("app launched",
		zap.String("app", processID),
		zap.String("uid", app.UID()),
		zap.Int("instance", instance))
	return nil
}

// Shutdown tears down one app process, returning its instance number to the
// pool. Called by the window service cascade and on direct terminations.
func (s *AppService) Shutdown(processID string) error {
	if err := s.teardown(processID); err != nil {
		return err
	}
	s.log.Info("app shut down", zap.String("app", processID))
	return nil
}

func (s *AppService) teardown(processID string) error {
	app, err := s.reg.Remove(processID)
	if err != nil {
		return err
	}
	s.reg.Release(app.PlainID, app.Instance)
	return nil
}

// Running returns the live app process ids.
func (s *AppService) Running() []string { return s.reg.IDs() }

// Instances returns the in-use instance numbers for a plain id.
func (s *AppService) Instances(plainID string) []int { return s.reg.Instances(plainID) }

// Stop closes the watcher and drops all process records.
func (s *AppService) Stop(ctx context.Context) error {
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			s.log.Warn("watcher close failed", zap.Error(err))
		}
	}
	s.reg.Clear()
	return nil
}
