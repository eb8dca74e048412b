package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GriffinCanCode/TermDesk/internal/services"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
)

var (
	windowBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	windowBorderFocused = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// Window is the chrome around one app's content widget. It owns focus state
// and size; the content model receives every message the chrome does not
// consume.
type Window struct {
	proc    *services.WindowProcess
	content tea.Model

	width     int
	height    int
	focused   bool
	maximized bool
	deskW     int
	deskH     int
}

// NewWindow wraps a mounted window process in chrome.
func NewWindow(proc *services.WindowProcess) *Window {
	return &Window{
		proc:    proc,
		content: proc.Content,
		width:   proc.Settings.Width,
		height:  proc.Settings.Height,
	}
}

// ProcessID returns the window's process id.
func (w *Window) ProcessID() string { return w.proc.ProcessID() }

// Title returns the window title.
func (w *Window) Title() string { return w.proc.Title }

// Focus sets keyboard focus.
func (w *Window) Focus(focused bool) { w.focused = focused }

// Focused reports keyboard focus.
func (w *Window) Focused() bool { return w.focused }

func (w *Window) Init() tea.Cmd {
	if w.content == nil {
		return nil
	}
	return w.content.Init()
}

func (w *Window) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.deskW, w.deskH = msg.Width, msg.Height
		if w.maximized {
			w.width, w.height = w.deskW-4, w.deskH-6
		}
	case tea.KeyMsg:
		if w.focused && msg.String() == "f10" && w.proc.Settings.AllowMaximize {
			w.toggleMaximize()
			return w, nil
		}
	}
	if w.content == nil {
		return w, nil
	}
	updated, cmd := w.content.Update(msg)
	w.content = updated
	return w, cmd
}

func (w *Window) toggleMaximize() {
	if w.maximized {
		w.maximized = false
		w.width = w.proc.Settings.Width
		w.height = w.proc.Settings.Height
		return
	}
	w.maximized = true
	if w.deskW > 4 && w.deskH > 6 {
		w.width, w.height = w.deskW-4, w.deskH-6
	}
}

func (w *Window) View() string {
	body := ""
	if w.content != nil {
		body = w.content.View()
	}
	inner := lipgloss.NewStyle().Width(w.width).Height(w.height).Render(body)

	// Custom frame slots wrap the content inside the border.
	if top := w.mount(types.MountAboveTopBar); top != "" {
		inner = lipgloss.JoinVertical(lipgloss.Left, paneStyle.Render(top), inner)
	}
	if below := w.mount(types.MountBelowTopBar); below != "" {
		inner = lipgloss.JoinVertical(lipgloss.Left, paneStyle.Render(below), inner)
	}
	if left := w.mount(types.MountLeftPane); left != "" {
		inner = lipgloss.JoinHorizontal(lipgloss.Top, paneStyle.Render(left), inner)
	}
	if right := w.mount(types.MountRightPane); right != "" {
		inner = lipgloss.JoinHorizontal(lipgloss.Top, inner, paneStyle.Render(right))
	}
	if above := w.mount(types.MountAboveBottomBar); above != "" {
		inner = lipgloss.JoinVertical(lipgloss.Left, inner, paneStyle.Render(above))
	}
	if below := w.mount(types.MountBelowBottomBar); below != "" {
		inner = lipgloss.JoinVertical(lipgloss.Left, inner, paneStyle.Render(below))
	}

	if w.proc.Settings.ShowTitle {
		title := titleStyle.Render(w.proc.Settings.Icon + " " + w.proc.Title)
		inner = lipgloss.JoinVertical(lipgloss.Left, title, inner)
	}

	style := windowBorder
	if w.focused {
		style = windowBorderFocused
	}
	return style.Render(inner)
}

func (w *Window) mount(point types.MountPoint) string {
	widget, ok := w.proc.Mounts[point]
	if !ok || widget == nil {
		return ""
	}
	return widget.View()
}
