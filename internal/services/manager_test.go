package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/TermDesk/internal/config"
	"github.com/GriffinCanCode/TermDesk/internal/events"
	"github.com/GriffinCanCode/TermDesk/internal/loader"
	"github.com/GriffinCanCode/TermDesk/internal/logging"
	"github.com/GriffinCanCode/TermDesk/internal/sdk"
	"github.com/GriffinCanCode/TermDesk/internal/shared/paths"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
	"github.com/GriffinCanCode/TermDesk/internal/worker"
)

type stubWidget struct{}

func (stubWidget) Init() tea.Cmd                       { return nil }
func (stubWidget) Update(tea.Msg) (tea.Model, tea.Cmd) { return stubWidget{}, nil }
func (stubWidget) View() string                        { return "stub" }

type stubSession struct{}

func (stubSession) Taskbar() sdk.Widget   { return stubWidget{} }
func (stubSession) StartMenu() sdk.Widget { return stubWidget{} }

// Builtins registered once for the whole test binary; the loader registry is
// global.
var registerTestPlugins = sync.OnceFunc(func() {
	loader.RegisterBuiltinShell(sdk.ShellDescriptor{
		ID:         "testshell",
		Name:       "Test Shell",
		NewSession: func(sdk.Context) (sdk.ShellSession, error) { return stubSession{}, nil },
	})
	loader.RegisterBuiltinApp(sdk.AppDescriptor{
		ID:     "stubapp",
		Name:   "Stub App",
		Launch: types.LaunchWindow,
		NewContent: func(sdk.Context) (sdk.Widget, error) {
			return stubWidget{}, nil
		},
	})
	loader.RegisterBuiltinApp(sdk.AppDescriptor{
		ID:     "brokenapp",
		Name:   "Broken App",
		Launch: types.LaunchWindow,
	})
	loader.RegisterBuiltinApp(sdk.AppDescriptor{
		ID:     "daemonapp",
		Name:   "Daemon App",
		Launch: types.LaunchDaemon,
	})
})

func testConfig(t *testing.T) (*config.Config, paths.Layout) {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Plugins.Watch = false
	cfg.Workers.CheckInterval = 20 * time.Millisecond
	cfg.Workers.Ceiling = 60 * time.Millisecond
	return cfg, paths.Layout{Root: cfg.DataDir}
}

func newTestManager(t *testing.T) (*Manager, *events.Bus) {
	t.Helper()
	registerTestPlugins()

	cfg, layout := testConfig(t)
	require.NoError(t, layout.EnsureAll())

	log := logging.NewNop()
	bus := events.New()
	m, err := NewManager(log, bus, cfg, layout, worker.NewScheduler(log))
	require.NoError(t, err)
	return m, bus
}

func startTestManager(t *testing.T) (*Manager, *events.Bus) {
	t.Helper()
	m, bus := newTestManager(t)
	require.NoError(t, m.StartAll(context.Background()))
	t.Cleanup(func() { _ = m.StopAll(context.Background()) })
	return m, bus
}

func waitEvent(t *testing.T, ch <-chan events.Event) events.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("event never arrived")
		return events.Event{}
	}
}

func TestStartAllPublishesServicesStarted(t *testing.T) {
	m, bus := newTestManager(t)
	ch, cancel := bus.Subscribe(events.TopicServicesStarted, 1)
	defer cancel()

	require.NoError(t, m.StartAll(context.Background()))
	defer m.StopAll(context.Background())

	waitEvent(t, ch)
	apps := m.RegisteredApps()
	assert.NotEmpty(t, apps)
}

func TestStartAllIsIdempotent(t *testing.T) {
	m, _ := startTestManager(t)
	assert.NoError(t, m.StartAll(context.Background()))
}

func TestStartAllAbortsOnFirstFailure(t *testing.T) {
	registerTestPlugins()
	cfg, _ := testConfig(t)

	// A file where the data root should be makes the logging service's
	// directory creation fail before anything else runs.
	root := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(root, []byte("x"), 0o644))
	cfg.DataDir = root
	layout := paths.Layout{Root: root}

	log := logging.NewNop()
	bus := events.New()
	m, err := NewManager(log, bus, cfg, layout, worker.NewScheduler(log))
	require.NoError(t, err)

	ch, cancel := bus.Subscribe(events.TopicServicesStarted, 1)
	defer cancel()

	err = m.StartAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start logging service")

	// Later services never ran: no associations table was written.
	_, statErr := os.Stat(layout.Associations())
	assert.True(t, os.IsNotExist(statErr))

	select {
	case <-ch:
		t.Fatal("ServicesStarted fired despite a failed startup")
	default:
	}
}

func TestLaunchMountsWindowAndNumbersInstances(t *testing.T) {
	m, bus := startTestManager(t)
	ch, cancel := bus.Subscribe(events.TopicWindowMounted, 8)
	defer cancel()

	require.NoError(t, m.LaunchApp("stubapp"))
	ev := waitEvent(t, ch)
	win := ev.Payload.(*WindowProcess)
	assert.Equal(t, "stubapp", win.AppProcessID)
	assert.Equal(t, "stubapp-window", win.ProcessID())
	assert.Equal(t, "Stub App", win.Title)
	assert.NotNil(t, win.Content)

	require.NoError(t, m.LaunchApp("stubapp"))
	ev = waitEvent(t, ch)
	win = ev.Payload.(*WindowProcess)
	assert.Equal(t, "stubapp_2", win.AppProcessID)
	assert.Equal(t, "stubapp_2-window", win.ProcessID())

	assert.Equal(t, []string{"stubapp", "stubapp_2"}, m.Apps.Running())
	assert.Equal(t, []int{1, 2}, m.Apps.Instances("stubapp"))
}

func TestLaunchRejectsUnknownBrokenAndDaemon(t *testing.T) {
	m, _ := startTestManager(t)

	err := m.LaunchApp("ghost")
	assert.ErrorIs(t, err, ErrUnknownApp)

	err = m.LaunchApp("brokenapp")
	assert.ErrorIs(t, err, ErrAppBroken)
	assert.Contains(t, err.Error(), "new_content")

	err = m.LaunchApp("daemonapp")
	assert.ErrorIs(t, err, ErrNotLaunchable)

	// No instance numbers leaked from the refused launches.
	assert.Empty(t, m.Apps.Running())
}

func TestWindowCloseCascadesToApp(t *testing.T) {
	m, bus := startTestManager(t)
	mounted, cancel := bus.Subscribe(events.TopicWindowMounted, 4)
	defer cancel()

	require.NoError(t, m.LaunchApp("stubapp"))
	ev := waitEvent(t, mounted)
	win := ev.Payload.(*WindowProcess)
	require.Equal(t, []string{"stubapp"}, m.Apps.Running())

	bus.Publish(events.TopicWindowUnregistered, win.ProcessID())

	require.Eventually(t, func() bool {
		return len(m.Apps.Running()) == 0 && len(m.Windows.Windows()) == 0
	}, 5*time.Second, 10*time.Millisecond)

	// The instance number returned to the pool: a fresh launch gets the bare
	// id again.
	require.NoError(t, m.LaunchApp("stubapp"))
	ev = waitEvent(t, mounted)
	assert.Equal(t, "stubapp", ev.Payload.(*WindowProcess).AppProcessID)
}

func TestBrokenAppStaysListed(t *testing.T) {
	m, _ := startTestManager(t)
	var broken *sdk.AppDescriptor
	for _, d := range m.RegisteredApps() {
		if d.ID == "brokenapp" {
			d := d
			broken = &d
		}
	}
	require.NotNil(t, broken)
	assert.True(t, broken.Broken)
	assert.Contains(t, broken.Missing, "new_content")
}

func TestRescanRejectedWhileInFlight(t *testing.T) {
	m, _ := startTestManager(t)
	m.Apps.scanning.Store(true)
	defer m.Apps.scanning.Store(false)

	err := m.Apps.Rescan(context.Background())
	assert.ErrorIs(t, err, ErrScanInFlight)
}

func TestWatchdogCancelsStuckWorker(t *testing.T) {
	m, _ := startTestManager(t)

	h := m.RunWorker(context.Background(), worker.Meta{Name: "stuck", ServiceID: "test"},
		func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})

	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("watchdog never cancelled the stuck worker")
	}
	assert.Equal(t, worker.StateCancelled, h.State())

	require.Eventually(t, func() bool {
		return m.TrackedWorkers() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatchdogSparesBlockingWorkers(t *testing.T) {
	m, _ := startTestManager(t)

	release := make(chan struct{})
	h := m.RunWorker(context.Background(),
		worker.Meta{Name: "long walk", ServiceID: "test", Blocking: true},
		func(ctx context.Context) error {
			select {
			case <-release:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})

	// Well past the ceiling, the worker must still be running.
	time.Sleep(5 * m.cfg.Workers.Ceiling)
	assert.Equal(t, worker.StateRunning, h.State())

	close(release)
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("worker never finished")
	}
	assert.Equal(t, worker.StateSuccess, h.State())
}

func TestOpenDatabaseThroughGateway(t *testing.T) {
	m, _ := startTestManager(t)

	db, err := m.OpenDatabase("owner-a", "settings")
	require.NoError(t, err)
	require.NoError(t, db.CreateTable("kv", map[string]string{
		"k": "TEXT PRIMARY KEY",
		"v": "TEXT",
	}))

	_, err = m.OpenDatabase("owner-b", "settings")
	assert.ErrorIs(t, err, ErrOwnerConflict)

	again, err := m.OpenDatabase("owner-a", "settings")
	require.NoError(t, err)
	assert.Same(t, db, again)
}

func TestStopAllStopsCleanly(t *testing.T) {
	m, bus := newTestManager(t)
	require.NoError(t, m.StartAll(context.Background()))

	mounted, cancel := bus.Subscribe(events.TopicWindowMounted, 4)
	defer cancel()
	require.NoError(t, m.LaunchApp("stubapp"))
	waitEvent(t, mounted)

	require.NoError(t, m.StopAll(context.Background()))
	assert.Empty(t, m.Apps.Running())
	assert.Empty(t, m.Windows.Windows())

	// Second stop is a no-op.
	assert.NoError(t, m.StopAll(context.Background()))
}
