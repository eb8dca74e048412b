package apps

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GriffinCanCode/TermDesk/internal/sdk"
)

var clockStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))

type clockTickMsg time.Time

// clock displays the wall time, refreshed once a second.
type clock struct {
	now time.Time
}

func newClock(sdk.Context) (sdk.Widget, error) {
	return &clock{now: time.Now()}, nil
}

func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

func (c *clock) Init() tea.Cmd { return clockTick() }

func (c *clock) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if t, ok := msg.(clockTickMsg); ok {
		c.now = time.Time(t)
		return c, clockTick()
	}
	return c, nil
}

func (c *clock) View() string {
	return clockStyle.Render(c.now.Format("15:04:05")) + "  " + c.now.Format("Mon Jan 2 2006")
}
