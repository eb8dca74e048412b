package apps

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GriffinCanCode/TermDesk/internal/events"
	"github.com/GriffinCanCode/TermDesk/internal/sdk"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
)

// logviewerMax bounds the lines kept by one viewer.
const logviewerMax = 2000

var (
	logTimeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	logWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	logErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type logRecordMsg types.LogRecord

// logviewer tails the desktop log: the default logger's ring buffer seeds the
// view and the live record topic keeps it current.
type logviewer struct {
	view   viewport.Model
	lines  []string
	ch     <-chan events.Event
	cancel func()
	follow bool
}

func newLogViewer(ctx sdk.Context) (sdk.Widget, error) {
	v := viewport.New(70, 18)
	lv := &logviewer{view: v, follow: true}
	for _, rec := range ctx.Services.RecentLogs() {
		lv.lines = append(lv.lines, formatRecord(rec))
	}
	lv.ch, lv.cancel = ctx.Services.Bus().Subscribe(events.TopicLogRecord, 256)
	lv.refresh()
	return lv, nil
}

func (lv *logviewer) awaitRecord() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-lv.ch
		if !ok {
			return nil
		}
		if rec, ok := ev.Payload.(types.LogRecord); ok {
			return logRecordMsg(rec)
		}
		return nil
	}
}

func (lv *logviewer) Init() tea.Cmd { return lv.awaitRecord() }

func (lv *logviewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case logRecordMsg:
		lv.lines = append(lv.lines, formatRecord(types.LogRecord(msg)))
		if len(lv.lines) > logviewerMax {
			lv.lines = lv.lines[len(lv.lines)-logviewerMax:]
		}
		lv.refresh()
		return lv, lv.awaitRecord()
	case tea.KeyMsg:
		if msg.String() == "f" {
			lv.follow = !lv.follow
			if lv.follow {
				lv.view.GotoBottom()
			}
			return lv, nil
		}
	}
	var cmd tea.Cmd
	lv.view, cmd = lv.view.Update(msg)
	return lv, cmd
}

func (lv *logviewer) refresh() {
	lv.view.SetContent(strings.Join(lv.lines, "\n"))
	if lv.follow {
		lv.view.GotoBottom()
	}
}

func (lv *logviewer) View() string {
	mode := "following (f to pause)"
	if !lv.follow {
		mode = "paused (f to follow)"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lv.view.View(),
		logTimeStyle.Render(fmt.Sprintf("%d records  %s", len(lv.lines), mode)))
}

func formatRecord(rec types.LogRecord) string {
	level := rec.Level
	switch rec.Level {
	case "warn":
		level = logWarnStyle.Render(rec.Level)
	case "error", "fatal", "panic":
		level = logErrorStyle.Render(rec.Level)
	}
	line := fmt.Sprintf("%s %s %s %s",
		logTimeStyle.Render(rec.Time.Format("15:04:05.000")),
		level, rec.Logger, rec.Message)
	if len(rec.Fields) > 0 {
		parts := make([]string, 0, len(rec.Fields))
		for k, v := range rec.Fields {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
		line += " " + logTimeStyle.Render(strings.Join(parts, " "))
	}
	return line
}
