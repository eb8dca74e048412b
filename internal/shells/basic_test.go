package shells

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/TermDesk/internal/database"
	"github.com/GriffinCanCode/TermDesk/internal/events"
	"github.com/GriffinCanCode/TermDesk/internal/logging"
	"github.com/GriffinCanCode/TermDesk/internal/sdk"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
	"github.com/GriffinCanCode/TermDesk/internal/worker"
)

// fakeServices is a minimal gateway recording launches.
type fakeServices struct {
	apps     []sdk.AppDescriptor
	launched []string
	fail     error
}

func (f *fakeServices) Logger() *logging.Logger { return logging.NewNop() }
func (f *fakeServices) Bus() *events.Bus        { return events.New() }
func (f *fakeServices) OpenDatabase(owner, name string) (*database.Process, error) {
	return nil, errors.New("not available")
}
func (f *fakeServices) LaunchApp(plainID string) error {
	if f.fail != nil {
		return f.fail
	}
	f.launched = append(f.launched, plainID)
	return nil
}
func (f *fakeServices) RegisteredApps() []sdk.AppDescriptor { return f.apps }
func (f *fakeServices) RecentLogs() []types.LogRecord       { return nil }
func (f *fakeServices) AppForFile(string) (string, bool)    { return "", false }
func (f *fakeServices) Submit(_ worker.Meta, fn worker.Fn)  { _ = fn(context.Background()) }
func (f *fakeServices) DataDir() string                     { return "" }

func testApps() []sdk.AppDescriptor {
	return []sdk.AppDescriptor{
		{ID: "calculator", Name: "Calculator", Icon: "🧮"},
		{ID: "hollow", Name: "Hollow", Icon: "❓", Broken: true, Missing: []string{"new_content"}},
		{ID: "notepad", Name: "Notepad", Icon: "📝"},
	}
}

func keyPress(m tea.Model, key string) tea.Model {
	var msg tea.Msg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, _ := m.Update(msg)
	return updated
}

func TestSessionProvidesFurniture(t *testing.T) {
	session, err := newBasicSession(sdk.Context{Services: &fakeServices{apps: testApps()}})
	require.NoError(t, err)
	assert.NotNil(t, session.Taskbar())
	assert.NotNil(t, session.StartMenu())
}

func TestStartMenuListsAllAppsIncludingBroken(t *testing.T) {
	menu := newStartMenu(&fakeServices{apps: testApps()})
	view := menu.View()
	assert.Contains(t, view, "Calculator")
	assert.Contains(t, view, "Hollow")
	assert.Contains(t, view, "Notepad")
}

func TestStartMenuLaunchesSelection(t *testing.T) {
	services := &fakeServices{apps: testApps()}
	menu := newStartMenu(services)

	keyPress(menu, "enter")
	assert.Equal(t, []string{"calculator"}, services.launched)
}

func TestStartMenuRefusesBrokenApp(t *testing.T) {
	services := &fakeServices{apps: testApps()}
	menu := newStartMenu(services)

	keyPress(menu, "down")
	keyPress(menu, "enter")
	assert.Empty(t, services.launched)
	assert.Contains(t, menu.status, "new_content")
}

func TestStartMenuSurfacesLaunchError(t *testing.T) {
	services := &fakeServices{apps: testApps(), fail: errors.New("boom")}
	menu := newStartMenu(services)

	keyPress(menu, "enter")
	assert.Contains(t, menu.status, "boom")
}

func TestTaskbarShowsClock(t *testing.T) {
	bar := &taskbar{}
	updated, _ := bar.Update(tea.WindowSizeMsg{Width: 60})
	bar = updated.(*taskbar)
	assert.NotEmpty(t, bar.View())
}
