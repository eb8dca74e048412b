package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GriffinCanCode/TermDesk/internal/events"
	"github.com/GriffinCanCode/TermDesk/internal/sdk"
	"github.com/GriffinCanCode/TermDesk/internal/services"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
)

const defaultToastTimeout = 4 * time.Second

var (
	toastInfoStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)

	toastWarnStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 1)

	toastErrorStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)

	menuFrame = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("39"))
)

type toast struct {
	seq  int
	note types.Notification
}

// Desktop is the main screen's root widget: the window area, the shell's
// taskbar and start menu, and the notification stack.
type Desktop struct {
	bus *events.Bus

	winCh   <-chan events.Event
	noteCh  <-chan events.Event
	shellCh <-chan events.Event
	cancels []func()

	windows []*Window
	focus   int

	taskbar   sdk.Widget
	startMenu sdk.Widget
	menuOpen  bool

	toasts  []toast
	nextSeq int

	width  int
	height int
}

// NewDesktop builds the desktop surface and subscribes to the service-layer
// topics it renders. Subscriptions happen here, before the first Update, so
// no mount or toast published during boot is missed.
func NewDesktop(bus *events.Bus) *Desktop {
	d := &Desktop{bus: bus}
	var cancel func()
	d.winCh, cancel = bus.Subscribe(events.TopicWindowMounted, 32)
	d.cancels = append(d.cancels, cancel)
	d.noteCh, cancel = bus.Subscribe(events.TopicNotification, 32)
	d.cancels = append(d.cancels, cancel)
	d.shellCh, cancel = bus.Subscribe(events.TopicShellReady, 4)
	d.cancels = append(d.cancels, cancel)
	return d
}

// SetFurniture installs the shell widgets directly, for the case where the
// shell activated before this desktop subscribed to TopicShellReady.
func (d *Desktop) SetFurniture(f services.ShellFurniture) {
	d.taskbar = f.Taskbar
	d.startMenu = f.StartMenu
}

func (d *Desktop) Init() tea.Cmd {
	cmds := []tea.Cmd{listen(d.winCh), listen(d.noteCh), listen(d.shellCh)}
	if d.taskbar != nil {
		cmds = append(cmds, d.taskbar.Init())
	}
	if d.startMenu != nil {
		cmds = append(cmds, d.startMenu.Init())
	}
	return tea.Batch(cmds...)
}

func (d *Desktop) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width, d.height = msg.Width, msg.Height
		return d, d.broadcast(msg)

	case BusMsg:
		return d.handleBus(events.Event(msg))

	case toastExpiredMsg:
		for i, t := range d.toasts {
			if t.seq == msg.seq {
				d.toasts = append(d.toasts[:i], d.toasts[i+1:]...)
				break
			}
		}
		return d, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+a":
			d.menuOpen = !d.menuOpen
			return d, nil
		case "tab":
			if !d.menuOpen && len(d.windows) > 1 {
				d.setFocus((d.focus + 1) % len(d.windows))
				return d, nil
			}
		case "ctrl+w":
			if !d.menuOpen && len(d.windows) > 0 {
				d.closeFocused()
				return d, nil
			}
		case "esc":
			if d.menuOpen {
				d.menuOpen = false
				return d, nil
			}
		}
		// Keys route to exactly one widget: the open menu or the focused
		// window.
		if d.menuOpen && d.startMenu != nil {
			updated, cmd := d.startMenu.Update(msg)
			d.startMenu = updated
			return d, cmd
		}
		if len(d.windows) > 0 {
			updated, cmd := d.windows[d.focus].Update(msg)
			d.windows[d.focus] = updated.(*Window)
			return d, cmd
		}
		return d, nil
	}

	return d, d.broadcast(msg)
}

func (d *Desktop) handleBus(ev events.Event) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch ev.Topic {
	case events.TopicWindowMounted:
		cmds = append(cmds, listen(d.winCh))
		if proc, ok := ev.Payload.(*services.WindowProcess); ok {
			win := NewWindow(proc)
			d.windows = append(d.windows, win)
			d.setFocus(len(d.windows) - 1)
			cmds = append(cmds, win.Init())
			if d.width > 0 {
				cmds = append(cmds, d.forward(win, tea.WindowSizeMsg{Width: d.width, Height: d.height}))
			}
		}

	case events.TopicNotification:
		cmds = append(cmds, listen(d.noteCh))
		if note, ok := ev.Payload.(types.Notification); ok {
			t := toast{seq: d.nextSeq, note: note}
			d.nextSeq++
			d.toasts = append(d.toasts, t)
			timeout := note.Timeout
			if timeout <= 0 {
				timeout = defaultToastTimeout
			}
			seq := t.seq
			cmds = append(cmds, tea.Tick(timeout, func(time.Time) tea.Msg {
				return toastExpiredMsg{seq: seq}
			}))
		}

	case events.TopicShellReady:
		cmds = append(cmds, listen(d.shellCh))
		if furniture, ok := ev.Payload.(services.ShellFurniture); ok {
			d.taskbar = furniture.Taskbar
			d.startMenu = furniture.StartMenu
			if d.taskbar != nil {
				cmds = append(cmds, d.taskbar.Init())
			}
			if d.startMenu != nil {
				cmds = append(cmds, d.startMenu.Init())
			}
		}
	}
	return d, tea.Batch(cmds...)
}

// closeFocused unregisters the focused window. The window service reacts to
// the published event, cascading to the owning app process; removal here is
// only the visual half.
func (d *Desktop) closeFocused() {
	win := d.windows[d.focus]
	d.windows = append(d.windows[:d.focus], d.windows[d.focus+1:]...)
	if d.focus >= len(d.windows) {
		d.focus = 0
	}
	if len(d.windows) > 0 {
		d.setFocus(d.focus)
	}
	d.bus.Publish(events.TopicWindowUnregistered, win.ProcessID())
}

func (d *Desktop) setFocus(i int) {
	for j, w := range d.windows {
		w.Focus(j == i)
	}
	d.focus = i
}

// broadcast delivers a message to every widget on the surface.
func (d *Desktop) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i, w := range d.windows {
		updated, cmd := w.Update(msg)
		d.windows[i] = updated.(*Window)
		cmds = append(cmds, cmd)
	}
	if d.taskbar != nil {
		updated, cmd := d.taskbar.Update(msg)
		d.taskbar = updated
		cmds = append(cmds, cmd)
	}
	if d.startMenu != nil {
		updated, cmd := d.startMenu.Update(msg)
		d.startMenu = updated
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (d *Desktop) forward(w *Window, msg tea.Msg) tea.Cmd {
	updated, cmd := w.Update(msg)
	for i, win := range d.windows {
		if win == w {
			d.windows[i] = updated.(*Window)
		}
	}
	return cmd
}

func (d *Desktop) View() string {
	var area string
	if len(d.windows) == 0 {
		area = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Render("ctrl+a opens the start menu")
	} else {
		views := make([]string, len(d.windows))
		for i, w := range d.windows {
			views[i] = w.View()
		}
		area = lipgloss.JoinHorizontal(lipgloss.Top, views...)
	}

	if d.menuOpen && d.startMenu != nil {
		area = lipgloss.JoinHorizontal(lipgloss.Top, menuFrame.Render(d.startMenu.View()), area)
	}

	if len(d.toasts) > 0 {
		views := make([]string, len(d.toasts))
		for i, t := range d.toasts {
			views[i] = toastStyle(t.note.Severity).Render(t.note.Message)
		}
		area = lipgloss.JoinVertical(lipgloss.Right,
			lipgloss.JoinVertical(lipgloss.Right, views...), area)
	}

	if d.taskbar != nil {
		area = lipgloss.JoinVertical(lipgloss.Left, area, d.taskbar.View())
	}
	return area
}

func toastStyle(severity types.Severity) lipgloss.Style {
	switch severity {
	case types.SeverityError:
		return toastErrorStyle
	case types.SeverityWarning:
		return toastWarnStyle
	default:
		return toastInfoStyle
	}
}

// Close cancels the desktop's bus subscriptions.
func (d *Desktop) Close() {
	for _, cancel := range d.cancels {
		cancel()
	}
}
