package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/TermDesk/internal/events"
	"github.com/GriffinCanCode/TermDesk/internal/logging"
	"github.com/GriffinCanCode/TermDesk/internal/process"
	"github.com/GriffinCanCode/TermDesk/internal/sdk"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
	"github.com/GriffinCanCode/TermDesk/internal/worker"
)

// WindowProcess is one materialized window: resolved settings, the app's
// content widget, and any custom frame-slot widgets. The desktop UI consumes
// it via TopicWindowMounted and never mutates it.
type WindowProcess struct {
	process.Identity

	Title    string
	Settings types.WindowSettings
	Styles   types.WindowStyles
	Content  sdk.Widget
	Mounts   map[types.MountPoint]sdk.Widget

	// AppProcessID links the window back to the app process that owns it,
	// for cascade shutdown when the window closes.
	AppProcessID string

	plainID  string
	instance int
}

// WindowService tracks window processes and serializes their mounting so two
// launches never interleave desktop placement.
type WindowService struct {
	log *logging.Logger
	bus *events.Bus
	run WorkerRunner

	reg *process.Registry[*WindowProcess]

	// onClosed is called with the owning app process id after a window is
	// unregistered. Wired to the app service by the manager.
	onClosed func(appProcessID string)

	cancelSub func()
}

// NewWindowService constructs the service. The runner and close callback are
// wired by the manager before StartAll.
func NewWindowService(log *logging.Logger, bus *events.Bus) *WindowService {
	return &WindowService{
		log: log.Named("windows"),
		bus: bus,
		reg: process.NewRegistry[*WindowProcess](),
	}
}

func (s *WindowService) ID() string { return "windows" }

// SetRunner installs the tracked-worker submitter.
func (s *WindowService) SetRunner(run WorkerRunner) { s.run = run }

// SetOnClosed installs the cascade-shutdown callback.
func (s *WindowService) SetOnClosed(fn func(appProcessID string)) { s.onClosed = fn }

// Start subscribes to window close events published by the UI.
func (s *WindowService) Start(ctx context.Context) error {
	ch, cancel := s.bus.Subscribe(events.TopicWindowUnregistered, 32)
	s.cancelSub = cancel
	go func() {
		for ev := range ch {
			windowID, ok := ev.Payload.(string)
			if !ok {
				continue
			}
			s.handleClosed(windowID)
		}
	}()
	return nil
}

// OpenWindow resolves settings for the app process, materializes custom
// mounts, and queues the mount behind every other pending mount. The handle
// resolves when the window has been published to the desktop.
func (s *WindowService) OpenWindow(ctx context.Context, app *AppProcess) (*worker.Handle, error) {
	settings := types.DefaultWindowSettings().Apply(app.Desc.Window)

	var mounts map[types.MountPoint]sdk.Widget
	if len(app.Desc.Mounts) > 0 {
		mounts = make(map[types.MountPoint]sdk.Widget, len(app.Desc.Mounts))
		for point, factory := range app.Desc.Mounts {
			mounts[point] = factory()
		}
	}

	plainID := app.ProcessID() + "-window"
	processID, instance := s.reg.NextProcessID(plainID)
	win := &WindowProcess{
		Identity:     process.NewIdentity(types.ProcessWindow, processID, "windowprocess"),
		Title:        app.Desc.Name,
		Settings:     settings,
		Styles:       app.Desc.Styles,
		Content:      app.Content,
		Mounts:       mounts,
		AppProcessID: app.ProcessID(),
		plainID:      plainID,
		instance:     instance,
	}

	meta := worker.Meta{
		Name:      "mount " + processID,
		ServiceID: s.ID(),
		Group:     "windows.mount",
		Exclusive: true,
	}
	handle := s.run(ctx, meta, func(context.Context) error {
		if err := s.reg.Add(processID, win); err != nil {
			s.reg.Release(plainID, instance)
			return fmt.Errorf("register window %s: %w", processID, err)
		}
		s.bus.Publish(events.TopicWindowMounted, win)
		s.log.Info("window mounted",
			zap.String("window", processID),
			zap.String("app", win.AppProcessID),
			zap.String("uid", win.UID()))
		return nil
	})
	return handle, nil
}

// handleClosed removes the window record and cascades to the owning app.
func (s *WindowService) handleClosed(windowID string) {
	win, err := s.reg.Remove(windowID)
	if err != nil {
		s.log.Warn("close for unknown window", zap.String("window", windowID))
		return
	}
	s.reg.Release(win.plainID, win.instance)
	s.log.Info("window unregistered",
		zap.String("window", windowID),
		zap.String("app", win.AppProcessID))
	if s.onClosed != nil {
		s.onClosed(win.AppProcessID)
	}
}

// Windows returns the live window process ids.
func (s *WindowService) Windows() []string { return s.reg.IDs() }

// Get returns the window registered under the process id.
func (s *WindowService) Get(windowID string) (*WindowProcess, bool) {
	return s.reg.Get(windowID)
}

// Stop drops every window record.
func (s *WindowService) Stop(ctx context.Context) error {
	if s.cancelSub != nil {
		s.cancelSub()
	}
	s.reg.Clear()
	return nil
}
