package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/TermDesk/internal/events"
	"github.com/GriffinCanCode/TermDesk/internal/process"
	"github.com/GriffinCanCode/TermDesk/internal/services"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
)

type fakeContent struct{ body string }

func (f fakeContent) Init() tea.Cmd                       { return nil }
func (f fakeContent) Update(tea.Msg) (tea.Model, tea.Cmd) { return f, nil }
func (f fakeContent) View() string                        { return f.body }

func testWindowProc(id, title string) *services.WindowProcess {
	return &services.WindowProcess{
		Identity: process.NewIdentity(types.ProcessWindow, id, "windowprocess"),
		Title:    title,
		Settings: types.DefaultWindowSettings(),
		Content:  fakeContent{body: "content of " + title},
	}
}

func mount(d *Desktop, proc *services.WindowProcess) *Desktop {
	model, _ := d.Update(BusMsg(events.Event{
		Topic:   events.TopicWindowMounted,
		Payload: proc,
	}))
	return model.(*Desktop)
}

func TestMountedWindowAppearsAndTakesFocus(t *testing.T) {
	bus := events.New()
	d := NewDesktop(bus)
	defer d.Close()

	d = mount(d, testWindowProc("calc-window", "Calculator"))
	require.Len(t, d.windows, 1)
	assert.True(t, d.windows[0].Focused())

	d = mount(d, testWindowProc("clock-window", "Clock"))
	require.Len(t, d.windows, 2)
	assert.False(t, d.windows[0].Focused())
	assert.True(t, d.windows[1].Focused())

	view := d.View()
	assert.Contains(t, view, "Calculator")
	assert.Contains(t, view, "Clock")
}

func TestTabCyclesFocus(t *testing.T) {
	bus := events.New()
	d := NewDesktop(bus)
	defer d.Close()
	d = mount(d, testWindowProc("a-window", "A"))
	d = mount(d, testWindowProc("b-window", "B"))

	model, _ := d.Update(tea.KeyMsg{Type: tea.KeyTab})
	d = model.(*Desktop)
	assert.True(t, d.windows[0].Focused())
	assert.False(t, d.windows[1].Focused())
}

func TestCloseFocusedPublishesUnregistered(t *testing.T) {
	bus := events.New()
	closed, cancel := bus.Subscribe(events.TopicWindowUnregistered, 1)
	defer cancel()

	d := NewDesktop(bus)
	defer d.Close()
	d = mount(d, testWindowProc("calc-window", "Calculator"))

	model, _ := d.Update(tea.KeyMsg{Type: tea.KeyCtrlW})
	d = model.(*Desktop)
	assert.Empty(t, d.windows)

	select {
	case ev := <-closed:
		assert.Equal(t, "calc-window", ev.Payload)
	case <-time.After(time.Second):
		t.Fatal("no unregister event published")
	}
}

func TestNotificationBecomesToastAndExpires(t *testing.T) {
	bus := events.New()
	d := NewDesktop(bus)
	defer d.Close()

	model, _ := d.Update(BusMsg(events.Event{
		Topic:   events.TopicNotification,
		Payload: types.Notification{Severity: types.SeverityWarning, Message: "heads up"},
	}))
	d = model.(*Desktop)
	require.Len(t, d.toasts, 1)
	assert.Contains(t, d.View(), "heads up")

	model, _ = d.Update(toastExpiredMsg{seq: d.toasts[0].seq})
	d = model.(*Desktop)
	assert.Empty(t, d.toasts)
}

func TestShellFurnitureInstalls(t *testing.T) {
	bus := events.New()
	d := NewDesktop(bus)
	defer d.Close()

	model, _ := d.Update(BusMsg(events.Event{
		Topic: events.TopicShellReady,
		Payload: services.ShellFurniture{
			ShellID: "basic",
			Taskbar: fakeContent{body: "the taskbar"},
		},
	}))
	d = model.(*Desktop)
	assert.Contains(t, d.View(), "the taskbar")
}

func TestWindowViewShowsTitleAndContent(t *testing.T) {
	w := NewWindow(testWindowProc("calc-window", "Calculator"))
	view := w.View()
	assert.Contains(t, view, "Calculator")
	assert.Contains(t, view, "content of Calculator")
}
