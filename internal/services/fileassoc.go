package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/TermDesk/internal/logging"
	"github.com/GriffinCanCode/TermDesk/internal/shared/paths"
)

// defaultAssociations seeds a fresh table so common files open somewhere
// sensible out of the box.
var defaultAssociations = map[string]string{
	".txt":   "notepad",
	".md":    "notepad",
	".toml":  "notepad",
	".json":  "notepad",
	".log":   "logviewer",
	".jsonl": "logviewer",
}

// FileAssocService maps file extensions to app ids and persists the table as
// JSON in the data root. Unknown extensions fall back to content sniffing:
// anything that detects as text opens in the text editor.
type FileAssocService struct {
	log  *logging.Logger
	path string

	mu    sync.RWMutex
	byExt map[string]string
}

// NewFileAssocService constructs the service.
func NewFileAssocService(log *logging.Logger, layout paths.Layout) *FileAssocService {
	return &FileAssocService{
		log:   log.Named("fileassoc"),
		path:  layout.Associations(),
		byExt: make(map[string]string),
	}
}

func (s *FileAssocService) ID() string { return "fileassoc" }

// Start loads the persisted table, seeding defaults on first run.
func (s *FileAssocService) Start(ctx context.Context) error {
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.mu.Lock()
		for ext, app := range defaultAssociations {
			s.byExt[ext] = app
		}
		s.mu.Unlock()
		return s.persist()
	case err != nil:
		return fmt.Errorf("read associations: %w", err)
	}

	var table map[string]string
	if err := sonic.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("decode associations: %w", err)
	}
	s.mu.Lock()
	s.byExt = table
	s.mu.Unlock()
	s.log.Info("file associations loaded", zap.Int("count", len(table)))
	return nil
}

// Associate binds an extension (with leading dot) to an app id and persists
// the table.
func (s *FileAssocService) Associate(ext, appID string) error {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	s.mu.Lock()
	s.byExt[ext] = appID
	s.mu.Unlock()
	return s.persist()
}

// AppFor resolves which app opens the given file. Extension match first,
// then mimetype sniffing: text content opens in the text editor.
func (s *FileAssocService) AppFor(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	s.mu.RLock()
	appID, ok := s.byExt[ext]
	s.mu.RUnlock()
	if ok {
		return appID, true
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", false
	}
	for cur := mt; cur != nil; cur = cur.Parent() {
		if cur.Is("text/plain") {
			return "notepad", true
		}
	}
	return "", false
}

// Associations returns a copy of the table.
func (s *FileAssocService) Associations() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.byExt))
	for k, v := range s.byExt {
		out[k] = v
	}
	return out
}

// Stop persists the table one last time.
func (s *FileAssocService) Stop(ctx context.Context) error {
	return s.persist()
}

func (s *FileAssocService) persist() error {
	s.mu.RLock()
	data, err := sonic.MarshalIndent(s.byExt, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode associations: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
