package apps

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gabriel-vasile/mimetype"

	"github.com/GriffinCanCode/TermDesk/internal/sdk"
	"github.com/GriffinCanCode/TermDesk/internal/worker"
)

// explorerMaxResults bounds a glob search so a greedy pattern cannot fill
// memory.
const explorerMaxResults = 200

var (
	explorerDirStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	explorerCursorStyle = lipgloss.NewStyle().Reverse(true)
	explorerDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type explorerEntry struct {
	name  string
	isDir bool
}

type dirSizeMsg struct {
	path string
	size int64
	err  error
}

type searchDoneMsg struct {
	pattern string
	matches []string
	err     error
}

type fileInfoMsg struct {
	path string
	mime string
	err  error
}

// explorer browses the filesystem: enter descends or opens a file with its
// associated app, "s" sizes a directory recursively, "/" runs a glob search
// under the current directory.
type explorer struct {
	services sdk.Services

	dir     string
	entries []explorerEntry
	cursor  int
	status  string

	searching bool
	search    textinput.Model
	results   []string

	scanning atomic.Bool
}

func newExplorer(ctx sdk.Context) (sdk.Widget, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = ctx.Services.DataDir()
	}
	search := textinput.New()
	search.Placeholder = "**/*.go"
	search.CharLimit = 128

	e := &explorer{services: ctx.Services, dir: dir, search: search}
	e.reload()
	return e, nil
}

func (e *explorer) reload() {
	e.entries = e.entries[:0]
	e.cursor = 0
	e.results = nil

	dirents, err := os.ReadDir(e.dir)
	if err != nil {
		e.status = "cannot read " + e.dir
		return
	}
	for _, d := range dirents {
		if strings.HasPrefix(d.Name(), ".") {
			continue
		}
		e.entries = append(e.entries, explorerEntry{name: d.Name(), isDir: d.IsDir()})
	}
	sort.Slice(e.entries, func(i, j int) bool {
		if e.entries[i].isDir != e.entries[j].isDir {
			return e.entries[i].isDir
		}
		return e.entries[i].name < e.entries[j].name
	})
	e.status = fmt.Sprintf("%d entries", len(e.entries))
}

func (e *explorer) Init() tea.Cmd { return nil }

func (e *explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dirSizeMsg:
		e.scanning.Store(false)
		if msg.err != nil {
			e.status = "size scan failed: " + msg.err.Error()
		} else {
			e.status = fmt.Sprintf("%s: %s", filepath.Base(msg.path), formatBytes(uint64(msg.size)))
		}
		return e, nil

	case searchDoneMsg:
		e.scanning.Store(false)
		if msg.err != nil {
			e.status = "search failed: " + msg.err.Error()
			return e, nil
		}
		e.results = msg.matches
		e.status = fmt.Sprintf("%d matches for %s", len(msg.matches), msg.pattern)
		return e, nil

	case fileInfoMsg:
		if msg.err != nil {
			e.status = "detect failed: " + msg.err.Error()
		} else {
			e.status = fmt.Sprintf("%s: %s", filepath.Base(msg.path), msg.mime)
		}
		return e, nil

	case tea.KeyMsg:
		if e.searching {
			return e.updateSearch(msg)
		}
		return e.updateBrowse(msg)
	}
	return e, nil
}

func (e *explorer) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if e.cursor > 0 {
			e.cursor--
		}
	case "down", "j":
		if e.cursor < len(e.entries)-1 {
			e.cursor++
		}
	case "backspace", "left", "h":
		e.dir = filepath.Dir(e.dir)
		e.reload()
	case "enter", "right", "l":
		return e, e.open()
	case "s":
		return e, e.sizeSelected()
	case "i":
		return e, e.inspectSelected()
	case "/":
		e.searching = true
		e.search.SetValue("")
		return e, e.search.Focus()
	case "r":
		e.reload()
	}
	return e, nil
}

func (e *explorer) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		e.searching = false
		e.search.Blur()
		return e, nil
	case "enter":
		pattern := e.search.Value()
		e.searching = false
		e.search.Blur()
		return e, e.runSearch(pattern)
	}
	var cmd tea.Cmd
	e.search, cmd = e.search.Update(msg)
	return e, cmd
}

func (e *explorer) selected() (explorerEntry, bool) {
	if e.cursor < 0 || e.cursor >= len(e.entries) {
		return explorerEntry{}, false
	}
	return e.entries[e.cursor], true
}

// open descends into a directory, or launches the app associated with the
// selected file.
func (e *explorer) open() tea.Cmd {
	entry, ok := e.selected()
	if !ok {
		return nil
	}
	path := filepath.Join(e.dir, entry.name)
	if entry.isDir {
		e.dir = path
		e.reload()
		return nil
	}
	appID, ok := e.services.AppForFile(path)
	if !ok {
		e.status = "no app for " + entry.name
		return nil
	}
	if err := e.services.LaunchApp(appID); err != nil {
		e.status = "launch failed: " + err.Error()
		return nil
	}
	e.status = "opened with " + appID
	return nil
}

// sizeSelected walks the selected directory as a blocking tracked worker and
// reports its cumulative size.
func (e *explorer) sizeSelected() tea.Cmd {
	entry, ok := e.selected()
	if !ok || !entry.isDir {
		e.status = "select a directory to size"
		return nil
	}
	if !e.scanning.CompareAndSwap(false, true) {
		e.status = "a scan is already running"
		return nil
	}
	path := filepath.Join(e.dir, entry.name)
	e.status = "sizing " + entry.name + "..."

	results := make(chan dirSizeMsg, 1)
	e.services.Submit(worker.Meta{
		Name:      "size " + path,
		ServiceID: "explorer",
		Blocking:  true,
	}, func(ctx context.Context) error {
		var total atomic.Int64
		err := fastwalk.Walk(&fastwalk.Config{Follow: false}, path,
			func(_ string, d fs.DirEntry, walkErr error) error {
				if ctx.Err() != nil {
					return filepath.SkipAll
				}
				if walkErr != nil {
					return nil
				}
				if info, err := d.Info(); err == nil && !d.IsDir() {
					total.Add(info.Size())
				}
				return nil
			})
		results <- dirSizeMsg{path: path, size: total.Load(), err: err}
		return err
	})
	return func() tea.Msg { return <-results }
}

// runSearch matches a doublestar pattern against every path under the
// current directory.
func (e *explorer) runSearch(pattern string) tea.Cmd {
	if pattern == "" {
		return nil
	}
	if !doublestar.ValidatePattern(pattern) {
		e.status = "bad pattern: " + pattern
		return nil
	}
	if !e.scanning.CompareAndSwap(false, true) {
		e.status = "a scan is already running"
		return nil
	}
	root := e.dir
	e.status = "searching " + pattern + "..."

	results := make(chan searchDoneMsg, 1)
	e.services.Submit(worker.Meta{
		Name:      "search " + pattern,
		ServiceID: "explorer",
		Blocking:  true,
	}, func(ctx context.Context) error {
		var matches []string
		err := fastwalk.Walk(&fastwalk.Config{Follow: false}, root,
			func(path string, d fs.DirEntry, walkErr error) error {
				if ctx.Err() != nil {
					return filepath.SkipAll
				}
				if walkErr != nil {
					return nil
				}
				rel, relErr := filepath.Rel(root, path)
				if relErr != nil {
					return nil
				}
				if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
					matches = append(matches, rel)
					if len(matches) >= explorerMaxResults {
						return filepath.SkipAll
					}
				}
				return nil
			})
		results <- searchDoneMsg{pattern: pattern, matches: matches, err: err}
		return err
	})
	return func() tea.Msg { return <-results }
}

// inspectSelected sniffs the selected file's content type.
func (e *explorer) inspectSelected() tea.Cmd {
	entry, ok := e.selected()
	if !ok || entry.isDir {
		e.status = "select a file to inspect"
		return nil
	}
	path := filepath.Join(e.dir, entry.name)
	return func() tea.Msg {
		mt, err := mimetype.DetectFile(path)
		if err != nil {
			return fileInfoMsg{path: path, err: err}
		}
		return fileInfoMsg{path: path, mime: mt.String()}
	}
}

func (e *explorer) View() string {
	var b strings.Builder
	b.WriteString(explorerDirStyle.Render(e.dir))
	b.WriteByte('\n')

	if e.searching {
		b.WriteString("search: " + e.search.View())
		b.WriteByte('\n')
	}

	if len(e.results) > 0 {
		limit := len(e.results)
		if limit > 15 {
			limit = 15
		}
		for _, r := range e.results[:limit] {
			b.WriteString("  " + r)
			b.WriteByte('\n')
		}
	} else {
		start := 0
		if e.cursor > 14 {
			start = e.cursor - 14
		}
		end := start + 15
		if end > len(e.entries) {
			end = len(e.entries)
		}
		for i := start; i < end; i++ {
			entry := e.entries[i]
			name := entry.name
			if entry.isDir {
				name = explorerDirStyle.Render(name + "/")
			}
			if i == e.cursor {
				name = explorerCursorStyle.Render(entry.name)
			}
			b.WriteString("  " + name)
			b.WriteByte('\n')
		}
	}

	b.WriteString(explorerDimStyle.Render(e.status + "  (enter open, s size, i inspect, / search)"))
	return b.String()
}
