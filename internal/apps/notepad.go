package apps

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GriffinCanCode/TermDesk/internal/database"
	"github.com/GriffinCanCode/TermDesk/internal/sdk"
)

var notepadStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

// notepad is a plain text editor. Each launch owns a scratch note persisted
// to the shared notepad database, restored on the next launch of the same
// process id.
type notepad struct {
	area   textarea.Model
	db     *database.Process
	noteID string
	status string
}

func newNotepad(ctx sdk.Context) (sdk.Widget, error) {
	area := textarea.New()
	area.Placeholder = "Type here. ctrl+s saves."
	area.SetWidth(58)
	area.SetHeight(14)
	area.Focus()

	n := &notepad{area: area, noteID: ctx.ProcessID}

	// The owner must be stable across launches and shared by concurrent
	// instances. The plugin id is; a per-launch uid is not.
	db, err := ctx.Services.OpenDatabase(ctx.PluginID, "notepad")
	if err != nil {
		// A refused database degrades to an unsaved scratchpad.
		n.status = "autosave unavailable: " + err.Error()
		return n, nil
	}
	if err := db.CreateTable("notes", map[string]string{
		"note_id":    "TEXT PRIMARY KEY",
		"body":       "TEXT NOT NULL",
		"updated_at": "TEXT NOT NULL",
	}); err != nil {
		return nil, fmt.Errorf("notepad schema: %w", err)
	}
	n.db = db

	row, err := db.FetchOne("SELECT body FROM notes WHERE note_id = ?;", n.noteID)
	if err == nil && row != nil {
		if body, ok := row[0].(string); ok {
			n.area.SetValue(body)
		}
	}
	return n, nil
}

func (n *notepad) Init() tea.Cmd { return textarea.Blink }

func (n *notepad) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+s" {
		n.save()
		return n, nil
	}
	var cmd tea.Cmd
	n.area, cmd = n.area.Update(msg)
	return n, cmd
}

func (n *notepad) save() {
	if n.db == nil {
		n.status = "nowhere to save"
		return
	}
	now := time.Now().Format(time.RFC3339)
	if err := n.db.DeleteOne("notes", "note_id", n.noteID); err != nil {
		n.status = "save failed: " + err.Error()
		return
	}
	err := n.db.InsertOne("notes",
		[]string{"note_id", "body", "updated_at"},
		[]any{n.noteID, n.area.Value(), now})
	if err != nil {
		n.status = "save failed: " + err.Error()
		return
	}
	n.status = "saved " + time.Now().Format("15:04:05")
}

func (n *notepad) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		n.area.View(),
		notepadStatusStyle.Render(n.status))
}
