package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/TermDesk/internal/config"
	"github.com/GriffinCanCode/TermDesk/internal/events"
	"github.com/GriffinCanCode/TermDesk/internal/logging"
	"github.com/GriffinCanCode/TermDesk/internal/process"
	"github.com/GriffinCanCode/TermDesk/internal/shared/paths"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
)

// LoggerProcess is one named log destination: a bounded in-memory ring for
// replay plus a JSON-lines file rewritten from the ring at a fixed cadence.
// It implements logging.Sink so a teed zap logger feeds it directly.
type LoggerProcess struct {
	process.Identity

	Name string
	Path string

	bus *events.Bus

	mu           sync.Mutex
	ring         []types.LogRecord
	ringSize     int
	sinceRewrite int
	rewriteEvery int
}

// WriteRecord appends a record to the ring, publishes it for live viewers,
// and rewrites the on-disk file once enough records have accumulated.
func (p *LoggerProcess) WriteRecord(rec types.LogRecord) {
	p.mu.Lock()
	p.ring = append(p.ring, rec)
	if len(p.ring) > p.ringSize {
		p.ring = p.ring[len(p.ring)-p.ringSize:]
	}
	p.sinceRewrite++
	flush := p.sinceRewrite >= p.rewriteEvery
	if flush {
		p.sinceRewrite = 0
	}
	p.mu.Unlock()

	p.bus.Publish(events.TopicLogRecord, rec)
	if flush {
		if err := p.rewrite(); err != nil {
			// Writing through the logger here would recurse; stderr is the
			// only safe escape hatch.
			fmt.Fprintf(os.Stderr, "logger %s: rewrite failed: %v\n", p.Name, err)
		}
	}
}

// Recent returns a copy of the ring, oldest first.
func (p *LoggerProcess) Recent() []types.LogRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.LogRecord, len(p.ring))
	copy(out, p.ring)
	return out
}

// Flush forces an immediate rewrite of the on-disk file.
func (p *LoggerProcess) Flush() error {
	p.mu.Lock()
	p.sinceRewrite = 0
	p.mu.Unlock()
	return p.rewrite()
}

// rewrite replaces the file with the current ring contents. Written to a
// sibling temp file and renamed so readers never see a torn file.
func (p *LoggerProcess) rewrite() error {
	p.mu.Lock()
	snapshot := make([]types.LogRecord, len(p.ring))
	copy(snapshot, p.ring)
	p.mu.Unlock()

	var buf strings.Builder
	for _, rec := range snapshot {
		line, err := sonic.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	tmp := p.Path + ".tmp"
	if err := os.WriteFile(tmp, []byte(buf.String()), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, p.Path)
}

// LoggingService owns every logger process. It starts first, stops last, and
// starting it twice is a no-op so early callers cannot double-initialize it.
type LoggingService struct {
	log    *logging.Logger
	bus    *events.Bus
	layout paths.Layout
	cfg    config.LogConfig

	started atomic.Bool
	reg     *process.Registry[*LoggerProcess]

	mu  sync.RWMutex
	def *LoggerProcess
}

// NewLoggingService constructs the service without touching the filesystem.
func NewLoggingService(log *logging.Logger, bus *events.Bus, layout paths.Layout, cfg config.LogConfig) *LoggingService {
	return &LoggingService{
		log:    log.Named("logging"),
		bus:    bus,
		layout: layout,
		cfg:    cfg,
		reg:    process.NewRegistry[*LoggerProcess](),
	}
}

func (s *LoggingService) ID() string { return "logging" }

// Start rotates files left behind by the previous run and opens the default
// logger process. Idempotent.
func (s *LoggingService) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}
	if err := os.MkdirAll(s.layout.Logs(), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	s.rotateStale()

	def, err := s.OpenLogger("desktop")
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.def = def
	s.mu.Unlock()
	return nil
}

// OpenLogger creates (or returns) the logger process for the given name.
func (s *LoggingService) OpenLogger(name string) (*LoggerProcess, error) {
	if existing, ok := s.reg.Get(name); ok {
		return existing, nil
	}
	p := &LoggerProcess{
		Identity:     process.NewIdentity(types.ProcessService, name, "loggerprocess"),
		Name:         name,
		Path:         filepath.Join(s.layout.Logs(), name+".jsonl"),
		bus:          s.bus,
		ringSize:     s.cfg.RingSize,
		rewriteEvery: s.cfg.RewriteEvery,
	}
	if err := s.reg.Add(name, p); err != nil {
		// Lost a race with a concurrent open; the registered one wins.
		if existing, ok := s.reg.Get(name); ok {
			return existing, nil
		}
		return nil, err
	}
	s.log.Debug("logger process opened", zap.String("name", name), zap.String("uid", p.UID()))
	return p, nil
}

// Default returns the desktop-wide default logger process, nil before Start.
func (s *LoggingService) Default() *LoggerProcess {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.def
}

// Recent replays the default logger's ring. Empty before Start.
func (s *LoggingService) Recent() []types.LogRecord {
	if def := s.Default(); def != nil {
		return def.Recent()
	}
	return nil
}

// Stop flushes every logger process to disk.
func (s *LoggingService) Stop(ctx context.Context) error {
	var firstErr error
	s.reg.Each(func(name string, p *LoggerProcess) {
		if err := p.Flush(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("flush logger %s: %w", name, err)
		}
	})
	return firstErr
}

// rotateStale gzips log files left over from the previous run so each run's
// file starts empty. Failures are logged and skipped.
func (s *LoggingService) rotateStale() {
	entries, err := os.ReadDir(s.layout.Logs())
	if err != nil {
		return
	}
	stamp := time.Now().Format("20060102-150405")
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		src := filepath.Join(s.layout.Logs(), name)
		dst := src[:len(src)-len(".jsonl")] + "." + stamp + ".jsonl.gz"
		if err := gzipFile(src, dst); err != nil {
			s.log.Warn("log rotation failed", zap.String("file", name), zap.Error(err))
			continue
		}
		if err := os.Remove(src); err != nil {
			s.log.Warn("cannot remove rotated log", zap.String("file", name), zap.Error(err))
		}
	}
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}
