package apps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/TermDesk/internal/database"
	"github.com/GriffinCanCode/TermDesk/internal/events"
	"github.com/GriffinCanCode/TermDesk/internal/logging"
	"github.com/GriffinCanCode/TermDesk/internal/sdk"
	"github.com/GriffinCanCode/TermDesk/internal/services"
	"github.com/GriffinCanCode/TermDesk/internal/shared/paths"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
	"github.com/GriffinCanCode/TermDesk/internal/worker"
)

// notepadGateway backs the plugin gateway with a real database service so
// ownership rules apply exactly as they do in the running desktop.
type notepadGateway struct {
	dbs *services.DatabaseService
}

func newNotepadGateway(t *testing.T) *notepadGateway {
	t.Helper()
	layout := paths.Layout{Root: t.TempDir()}
	require.NoError(t, layout.EnsureAll())
	g := &notepadGateway{dbs: services.NewDatabaseService(logging.NewNop(), layout)}
	t.Cleanup(func() { _ = g.dbs.Stop(context.Background()) })
	return g
}

func (g *notepadGateway) Logger() *logging.Logger { return logging.NewNop() }
func (g *notepadGateway) Bus() *events.Bus        { return events.New() }
func (g *notepadGateway) OpenDatabase(owner, name string) (*database.Process, error) {
	return g.dbs.Open(owner, name)
}
func (g *notepadGateway) LaunchApp(string) error               { return nil }
func (g *notepadGateway) RegisteredApps() []sdk.AppDescriptor  { return nil }
func (g *notepadGateway) RecentLogs() []types.LogRecord        { return nil }
func (g *notepadGateway) AppForFile(string) (string, bool)     { return "", false }
func (g *notepadGateway) Submit(_ worker.Meta, fn worker.Fn)   { _ = fn(context.Background()) }
func (g *notepadGateway) DataDir() string                      { return "" }

func notepadCtx(gw *notepadGateway, processID, uid string) sdk.Context {
	return sdk.Context{
		Type:      types.ProcessApp,
		ProcessID: processID,
		PluginID:  "notepad",
		UID:       uid,
		Services:  gw,
	}
}

func TestNotepadInstancesShareTheDatabase(t *testing.T) {
	gw := newNotepadGateway(t)

	first, err := newNotepad(notepadCtx(gw, "notepad", "appprocess:one"))
	require.NoError(t, err)
	n1 := first.(*notepad)
	require.NotNil(t, n1.db, "first instance lost autosave: %s", n1.status)

	// A concurrent second instance has a fresh uid but the same plugin id,
	// so it shares the handle instead of hitting an ownership conflict.
	second, err := newNotepad(notepadCtx(gw, "notepad_2", "appprocess:two"))
	require.NoError(t, err)
	n2 := second.(*notepad)
	require.NotNil(t, n2.db, "second instance lost autosave: %s", n2.status)
	assert.Same(t, n1.db, n2.db)
}

func TestNotepadRestoresAfterRelaunch(t *testing.T) {
	gw := newNotepadGateway(t)

	first, err := newNotepad(notepadCtx(gw, "notepad", "appprocess:one"))
	require.NoError(t, err)
	n1 := first.(*notepad)
	require.NotNil(t, n1.db, n1.status)
	n1.area.SetValue("meeting notes")
	n1.save()
	require.Contains(t, n1.status, "saved")

	// The window closed and the app relaunched under the bare process id
	// with a new uid. The note comes back.
	again, err := newNotepad(notepadCtx(gw, "notepad", "appprocess:two"))
	require.NoError(t, err)
	n2 := again.(*notepad)
	require.NotNil(t, n2.db, "relaunch lost autosave: %s", n2.status)
	assert.Equal(t, "meeting notes", n2.area.Value())
}
