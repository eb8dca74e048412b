package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/TermDesk/internal/logging"
	"github.com/GriffinCanCode/TermDesk/internal/shared/paths"
)

func newTestAssoc(t *testing.T) (*FileAssocService, paths.Layout) {
	t.Helper()
	layout := paths.Layout{Root: t.TempDir()}
	require.NoError(t, layout.EnsureAll())
	svc := NewFileAssocService(logging.NewNop(), layout)
	require.NoError(t, svc.Start(context.Background()))
	return svc, layout
}

func TestDefaultsSeededOnFirstRun(t *testing.T) {
	svc, layout := newTestAssoc(t)
	appID, ok := svc.AppFor("/tmp/readme.txt")
	require.True(t, ok)
	assert.Equal(t, "notepad", appID)

	appID, ok = svc.AppFor("/tmp/desktop.log")
	require.True(t, ok)
	assert.Equal(t, "logviewer", appID)

	_, err := os.Stat(layout.Associations())
	assert.NoError(t, err)
}

func TestAssociatePersistsAcrossRestart(t *testing.T) {
	svc, layout := newTestAssoc(t)
	require.NoError(t, svc.Associate("csv", "spreadsheet"))

	fresh := NewFileAssocService(logging.NewNop(), layout)
	require.NoError(t, fresh.Start(context.Background()))

	appID, ok := fresh.AppFor("data.CSV")
	require.True(t, ok)
	assert.Equal(t, "spreadsheet", appID)
}

func TestUnknownExtensionSniffsTextContent(t *testing.T) {
	svc, _ := newTestAssoc(t)
	path := filepath.Join(t.TempDir(), "notes.scratch")
	require.NoError(t, os.WriteFile(path, []byte("plain text body\n"), 0o644))

	appID, ok := svc.AppFor(path)
	require.True(t, ok)
	assert.Equal(t, "notepad", appID)
}

func TestUnknownBinaryHasNoApp(t *testing.T) {
	svc, _ := newTestAssoc(t)
	path := filepath.Join(t.TempDir(), "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x7f, 0x45, 0x4c, 0x46, 0x00, 0x01, 0x02}, 0o644))

	_, ok := svc.AppFor(path)
	assert.False(t, ok)
}

func TestMissingFileHasNoApp(t *testing.T) {
	svc, _ := newTestAssoc(t)
	_, ok := svc.AppFor(filepath.Join(t.TempDir(), "absent.xyz"))
	assert.False(t, ok)
}
