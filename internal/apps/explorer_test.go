package apps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/TermDesk/internal/database"
	"github.com/GriffinCanCode/TermDesk/internal/events"
	"github.com/GriffinCanCode/TermDesk/internal/logging"
	"github.com/GriffinCanCode/TermDesk/internal/sdk"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
	"github.com/GriffinCanCode/TermDesk/internal/worker"
)

// explorerGateway records worker submissions and runs them inline.
type explorerGateway struct {
	metas []worker.Meta
}

func (g *explorerGateway) Logger() *logging.Logger { return logging.NewNop() }
func (g *explorerGateway) Bus() *events.Bus        { return events.New() }
func (g *explorerGateway) OpenDatabase(owner, name string) (*database.Process, error) {
	return nil, nil
}
func (g *explorerGateway) LaunchApp(string) error              { return nil }
func (g *explorerGateway) RegisteredApps() []sdk.AppDescriptor { return nil }
func (g *explorerGateway) RecentLogs() []types.LogRecord       { return nil }
func (g *explorerGateway) AppForFile(string) (string, bool)    { return "", false }
func (g *explorerGateway) DataDir() string                     { return "" }

func (g *explorerGateway) Submit(meta worker.Meta, fn worker.Fn) {
	g.metas = append(g.metas, meta)
	_ = fn(context.Background())
}

func testExplorer(t *testing.T, root string) (*explorer, *explorerGateway) {
	t.Helper()
	gw := &explorerGateway{}
	e := &explorer{services: gw, dir: root, search: textinput.New()}
	e.reload()
	return e, gw
}

func TestExplorerSizeScanRunsAsBlockingWorker(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "bundle")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "a.bin"), make([]byte, 2048), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.bin"), make([]byte, 1024), 0o644))

	e, gw := testExplorer(t, root)
	cmd := e.sizeSelected()
	require.NotNil(t, cmd)

	msg, ok := cmd().(dirSizeMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.Equal(t, int64(3072), msg.size)

	require.Len(t, gw.metas, 1)
	assert.True(t, gw.metas[0].Blocking)
	assert.False(t, gw.metas[0].Exclusive)
}

func TestExplorerSearchRunsAsBlockingWorker(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "deep", "b.go"), []byte("package b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "c.txt"), []byte("not code"), 0o644))

	e, gw := testExplorer(t, root)
	cmd := e.runSearch("**/*.go")
	require.NotNil(t, cmd)

	msg, ok := cmd().(searchDoneMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.ElementsMatch(t, []string{"a.go", filepath.Join("deep", "b.go")}, msg.matches)

	require.Len(t, gw.metas, 1)
	assert.True(t, gw.metas[0].Blocking)
}

func TestExplorerRejectsConcurrentScans(t *testing.T) {
	e, _ := testExplorer(t, t.TempDir())
	e.scanning.Store(true)

	assert.Nil(t, e.runSearch("**/*.go"))
	assert.Equal(t, "a scan is already running", e.status)
}
