// Package shells bundles the built-in shell. Importing it registers the
// descriptor with the loader so discovery picks it up like any other unit.
package shells

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GriffinCanCode/TermDesk/internal/loader"
	"github.com/GriffinCanCode/TermDesk/internal/sdk"
)

func init() {
	loader.RegisterShellFactory("basic", newBasicSession)
	loader.RegisterBuiltinShell(sdk.ShellDescriptor{
		ID:          "basic",
		Name:        "Basic Shell",
		Author:      "TermDesk",
		Icon:        "🐚",
		Description: "Taskbar and start menu",
		NewSession:  newBasicSession,
	})
}

// basicSession is the built-in shell: a one-line taskbar and a start menu
// listing every registered app.
type basicSession struct {
	taskbar   *taskbar
	startMenu *startMenu
}

func newBasicSession(ctx sdk.Context) (sdk.ShellSession, error) {
	return &basicSession{
		taskbar:   &taskbar{now: time.Now()},
		startMenu: newStartMenu(ctx.Services),
	}, nil
}

func (s *basicSession) Taskbar() sdk.Widget   { return s.taskbar }
func (s *basicSession) StartMenu() sdk.Widget { return s.startMenu }

// ============================================================================
// Taskbar
// ============================================================================

var taskbarStyle = lipgloss.NewStyle().
	Background(lipgloss.Color("236")).
	Foreground(lipgloss.Color("252")).
	Padding(0, 1)

type taskbarTickMsg time.Time

type taskbar struct {
	now   time.Time
	width int
}

func taskbarTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return taskbarTickMsg(t)
	})
}

func (t *taskbar) Init() tea.Cmd { return taskbarTick() }

func (t *taskbar) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskbarTickMsg:
		t.now = time.Time(msg)
		return t, taskbarTick()
	case tea.WindowSizeMsg:
		t.width = msg.Width
	}
	return t, nil
}

func (t *taskbar) View() string {
	left := "⊞ ctrl+a"
	right := t.now.Format("15:04:05")
	gap := t.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return taskbarStyle.Render(left + strings.Repeat(" ", gap) + right)
}

// ============================================================================
// Start menu
// ============================================================================

var (
	menuTitleStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	menuCursorStyle = lipgloss.NewStyle().Reverse(true)
	menuBrokenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	menuStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
)

type startMenu struct {
	services sdk.Services
	apps     []sdk.AppDescriptor
	cursor   int
	status   string
}

func newStartMenu(services sdk.Services) *startMenu {
	m := &startMenu{services: services}
	m.refresh()
	return m
}

func (m *startMenu) refresh() {
	m.apps = m.services.RegisteredApps()
	if m.cursor >= len(m.apps) {
		m.cursor = 0
	}
}

func (m *startMenu) Init() tea.Cmd { return nil }

func (m *startMenu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.apps)-1 {
			m.cursor++
		}
	case "r":
		m.refresh()
		m.status = "refreshed"
	case "enter":
		m.launch()
	}
	return m, nil
}

// launch starts the selected app. Broken apps stay listed but refuse to
// start, telling the user what is missing.
func (m *startMenu) launch() {
	if m.cursor >= len(m.apps) {
		return
	}
	app := m.apps[m.cursor]
	if app.Broken {
		m.status = fmt.Sprintf("%s is broken: missing %s", app.Name, strings.Join(app.Missing, ", "))
		return
	}
	if err := m.services.LaunchApp(app.ID); err != nil {
		m.status = "launch failed: " + err.Error()
		return
	}
	m.status = "launched " + app.Name
}

func (m *startMenu) View() string {
	var b strings.Builder
	b.WriteString(menuTitleStyle.Render("Applications"))
	b.WriteByte('\n')
	for i, app := range m.apps {
		line := fmt.Sprintf("%s %s", app.Icon, app.Name)
		switch {
		case app.Broken:
			line = menuBrokenStyle.Render(line)
		case i == m.cursor:
			line = menuCursorStyle.Render(line)
		}
		if i == m.cursor && app.Broken {
			line = "> " + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if len(m.apps) == 0 {
		b.WriteString(menuStatusStyle.Render("no apps registered"))
		b.WriteByte('\n')
	}
	if m.status != "" {
		b.WriteString(menuStatusStyle.Render(m.status))
	}
	return b.String()
}
