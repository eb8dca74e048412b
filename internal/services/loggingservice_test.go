package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/TermDesk/internal/config"
	"github.com/GriffinCanCode/TermDesk/internal/events"
	"github.com/GriffinCanCode/TermDesk/internal/logging"
	"github.com/GriffinCanCode/TermDesk/internal/shared/paths"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
)

func newTestLogging(t *testing.T, cfg config.LogConfig) (*LoggingService, paths.Layout) {
	t.Helper()
	layout := paths.Layout{Root: t.TempDir()}
	require.NoError(t, layout.EnsureAll())
	svc := NewLoggingService(logging.NewNop(), events.New(), layout, cfg)
	return svc, layout
}

func record(msg string) types.LogRecord {
	return types.LogRecord{Time: time.Now(), Level: "info", Logger: "test", Message: msg}
}

func TestLoggingStartIsIdempotent(t *testing.T) {
	svc, _ := newTestLogging(t, config.LogConfig{RingSize: 10, RewriteEvery: 5})
	require.NoError(t, svc.Start(context.Background()))
	def := svc.Default()
	require.NotNil(t, def)

	require.NoError(t, svc.Start(context.Background()))
	assert.Same(t, def, svc.Default())
}

func TestRingBufferBounded(t *testing.T) {
	svc, _ := newTestLogging(t, config.LogConfig{RingSize: 5, RewriteEvery: 1000})
	require.NoError(t, svc.Start(context.Background()))
	def := svc.Default()

	for i := 0; i < 20; i++ {
		def.WriteRecord(record(fmt.Sprintf("msg-%d", i)))
	}

	recent := def.Recent()
	require.Len(t, recent, 5)
	assert.Equal(t, "msg-15", recent[0].Message)
	assert.Equal(t, "msg-19", recent[4].Message)
}

func TestRewriteCadence(t *testing.T) {
	svc, _ := newTestLogging(t, config.LogConfig{RingSize: 100, RewriteEvery: 3})
	require.NoError(t, svc.Start(context.Background()))
	def := svc.Default()

	def.WriteRecord(record("one"))
	def.WriteRecord(record("two"))
	_, err := os.Stat(def.Path)
	assert.True(t, os.IsNotExist(err), "file written before the cadence was reached")

	def.WriteRecord(record("three"))
	data, err := os.ReadFile(def.Path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[2], "three")
}

func TestStopFlushesPendingRecords(t *testing.T) {
	svc, _ := newTestLogging(t, config.LogConfig{RingSize: 100, RewriteEvery: 1000})
	require.NoError(t, svc.Start(context.Background()))
	def := svc.Default()
	def.WriteRecord(record("pending"))

	require.NoError(t, svc.Stop(context.Background()))
	data, err := os.ReadFile(def.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pending")
}

func TestRecordsPublishedForLiveViewers(t *testing.T) {
	layout := paths.Layout{Root: t.TempDir()}
	require.NoError(t, layout.EnsureAll())
	bus := events.New()
	svc := NewLoggingService(logging.NewNop(), bus, layout, config.LogConfig{RingSize: 10, RewriteEvery: 100})
	require.NoError(t, svc.Start(context.Background()))

	ch, cancel := bus.Subscribe(events.TopicLogRecord, 4)
	defer cancel()
	svc.Default().WriteRecord(record("live"))

	ev := waitEvent(t, ch)
	assert.Equal(t, "live", ev.Payload.(types.LogRecord).Message)
}

func TestStaleFilesRotatedToGzip(t *testing.T) {
	svc, layout := newTestLogging(t, config.LogConfig{RingSize: 10, RewriteEvery: 100})
	stale := filepath.Join(layout.Logs(), "desktop.jsonl")
	require.NoError(t, os.WriteFile(stale, []byte(`{"message":"old"}`+"\n"), 0o644))

	require.NoError(t, svc.Start(context.Background()))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale file should be replaced by its archive")

	entries, err := os.ReadDir(layout.Logs())
	require.NoError(t, err)
	var archived bool
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "desktop.") && strings.HasSuffix(e.Name(), ".jsonl.gz") {
			archived = true
		}
	}
	assert.True(t, archived, "no gzip archive found")
}

func TestTeedLoggerFeedsRing(t *testing.T) {
	svc, _ := newTestLogging(t, config.LogConfig{RingSize: 10, RewriteEvery: 100})
	require.NoError(t, svc.Start(context.Background()))

	log, err := logging.New(logging.Config{Level: "info", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	teed := log.TeeTo(svc.Default())

	teed.Named("child").Info("through the tee")

	recent := svc.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, "through the tee", recent[0].Message)
	assert.Equal(t, "child", recent[0].Logger)
}
