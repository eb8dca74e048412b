package loader

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/TermDesk/internal/logging"
)

// Watcher observes plugin directories and fires a debounced callback when
// their contents change, so the owning service can trigger a rescan.
type Watcher struct {
	log      *logging.Logger
	fs       *fsnotify.Watcher
	debounce time.Duration
	onChange func()

	mu    sync.Mutex
	timer *time.Timer
	done  chan struct{}
}

// NewWatcher starts watching the given directories. Missing directories are
// skipped; a watcher over zero directories is valid and silent.
func NewWatcher(log *logging.Logger, dirs []string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		log:      log.Named("watcher"),
		fs:       fs,
		debounce: debounce,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	for _, dir := range dirs {
		if err := fs.Add(dir); err != nil {
			w.log.Warn("cannot watch plugin dir", zap.String("dir", dir), zap.Error(err))
		}
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.bump()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

// bump restarts the debounce window. The callback fires once per quiet
// period no matter how many events arrived.
func (w *Watcher) bump() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}

// Close stops watching and cancels any pending callback.
func (w *Watcher) Close() error {
	close(w.done)
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fs.Close()
}
