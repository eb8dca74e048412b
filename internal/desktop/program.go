// Package desktop boots the whole environment: configuration, logging, the
// services manager, and the root terminal program hosting pushed screens.
package desktop

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	_ "github.com/GriffinCanCode/TermDesk/internal/apps"
	_ "github.com/GriffinCanCode/TermDesk/internal/shells"

	"github.com/GriffinCanCode/TermDesk/internal/config"
	"github.com/GriffinCanCode/TermDesk/internal/events"
	"github.com/GriffinCanCode/TermDesk/internal/logging"
	"github.com/GriffinCanCode/TermDesk/internal/screens"
	"github.com/GriffinCanCode/TermDesk/internal/sdk"
	"github.com/GriffinCanCode/TermDesk/internal/services"
	"github.com/GriffinCanCode/TermDesk/internal/shared/paths"
	"github.com/GriffinCanCode/TermDesk/internal/worker"
)

// shutdownTimeout bounds StopAll after the program exits.
const shutdownTimeout = 10 * time.Second

// Run boots the desktop and blocks until the user quits or a signal arrives.
func Run(cfg *config.Config) error {
	layout, err := resolveLayout(cfg)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	if err := layout.EnsureAll(); err != nil {
		return fmt.Errorf("prepare data dir: %w", err)
	}

	// The terminal belongs to the TUI, so zap writes to a file; the tee feeds
	// the logging service's ring once it is up.
	sink := &logging.SwitchableSink{}
	base, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{filepath.Join(layout.Logs(), "desktop.zap.log")},
	})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	log := base.TeeTo(sink)
	defer log.Sync()

	bus := events.New()
	sched := worker.NewScheduler(log)
	manager, err := services.NewManager(log, bus, cfg, layout, sched)
	if err != nil {
		return err
	}
	if err := manager.Screens.Register(screens.Main(manager)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRoot(manager, bus)
	program := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx))

	// Startup runs alongside the program so the first frame paints
	// immediately; the root screen appears when TopicServicesStarted fires.
	errCh := make(chan error, 1)
	go func() {
		if err := manager.StartAll(ctx); err != nil {
			log.Error("startup failed", zap.Error(err))
			errCh <- err
			program.Quit()
			return
		}
		sink.Set(manager.Logging.Default())
		errCh <- nil
	}()

	_, runErr := program.Run()
	root.close()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := manager.StopAll(stopCtx); err != nil {
		log.Warn("shutdown incomplete", zap.Error(err))
	}

	if startErr := <-errCh; startErr != nil {
		return fmt.Errorf("start desktop: %w", startErr)
	}
	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}

func resolveLayout(cfg *config.Config) (paths.Layout, error) {
	if cfg.DataDir != "" {
		return paths.Layout{Root: cfg.DataDir}, nil
	}
	return paths.Default()
}

// root hosts the currently pushed screen. Before the first push it shows a
// boot banner.
type root struct {
	manager *services.Manager

	startedCh <-chan events.Event
	screenCh  <-chan events.Event
	cancels   []func()

	current sdk.Widget
}

func newRoot(manager *services.Manager, bus *events.Bus) *root {
	r := &root{manager: manager}
	var cancel func()
	r.startedCh, cancel = bus.Subscribe(events.TopicServicesStarted, 1)
	r.cancels = append(r.cancels, cancel)
	r.screenCh, cancel = bus.Subscribe(events.TopicScreenPushed, 4)
	r.cancels = append(r.cancels, cancel)
	return r
}

func (r *root) close() {
	for _, cancel := range r.cancels {
		cancel()
	}
}

type pushFailedMsg struct{ err error }

func listen(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ev
	}
}

func (r *root) Init() tea.Cmd {
	return tea.Batch(listen(r.startedCh), listen(r.screenCh))
}

func (r *root) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case events.Event:
		switch msg.Topic {
		case events.TopicServicesStarted:
			push := func() tea.Msg {
				if err := r.manager.Screens.Push(screens.MainID); err != nil {
					return pushFailedMsg{err: err}
				}
				return nil
			}
			return r, tea.Batch(listen(r.startedCh), push)
		case events.TopicScreenPushed:
			cmds := []tea.Cmd{listen(r.screenCh)}
			if pushed, ok := msg.Payload.(services.ScreenPushed); ok {
				r.current = pushed.Root
				cmds = append(cmds, r.current.Init())
			}
			return r, tea.Batch(cmds...)
		}
		return r, nil

	case pushFailedMsg:
		r.manager.Logger().Error("screen push failed", zap.Error(msg.err))
		return r, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+q" {
			return r, tea.Quit
		}
	}

	if r.current == nil {
		return r, nil
	}
	updated, cmd := r.current.Update(msg)
	r.current = updated
	return r, cmd
}

func (r *root) View() string {
	if r.current == nil {
		return "starting services..."
	}
	return r.current.View()
}
