// Package watcher reports changes to the run history and settings files.
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nsynca/nsynca/internal/config"
)

// EventType represents the type of file system event.
type EventType int

// Event types for file system changes.
const (
	EventHistoryChanged EventType = iota
	EventSettingsChanged
)

// DefaultDebounce is how long a path must stay quiet before an event fires.
const DefaultDebounce = 100 * time.Millisecond

// Event represents a file system change event.
type Event struct {
	Type  EventType
	Month string // YYYY-MM, for history events
	Path  string
}

// Watcher watches the history directory and, optionally, the settings file.
type Watcher struct {
	fsWatcher    *fsnotify.Watcher
	eventsChan   chan Event
	done         chan struct{}
	stopOnce     sync.Once
	historyDir   string
	settingsFile string
	debounce     map[string]*time.Timer
	debounceMu   sync.Mutex

	// Debounce overrides DefaultDebounce when set before Start.
	Debounce time.Duration
}

// New creates a watcher for the history files in historyDir. settingsFile
// may be empty.
func New(historyDir, settingsFile string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsWatcher:    fsWatcher,
		eventsChan:   make(chan Event, 100),
		done:         make(chan struct{}),
		historyDir:   filepath.Clean(historyDir),
		settingsFile: settingsFile,
		debounce:     make(map[string]*time.Timer),
		Debounce:     DefaultDebounce,
	}, nil
}

// Events returns the channel for receiving events.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start starts the watcher. The history directory is created if missing
// so that the first run of a session is seen.
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.historyDir, 0755); err != nil {
		return err
	}
	if err := w.fsWatcher.Add(w.historyDir); err != nil {
		return err
	}
	if w.settingsFile != "" {
		dir := filepath.Dir(w.settingsFile)
		if dir != w.historyDir {
			if err := w.fsWatcher.Add(dir); err != nil {
				slog.Warn("Failed to watch settings dir", "dir", dir, "err", err)
			}
		}
	}

	go w.processEvents()
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		for path, timer := range w.debounce {
			timer.Stop()
			delete(w.debounce, path)
		}
		w.debounceMu.Unlock()
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			slog.Debug("fsnotify", "op", event.Op.String(), "path", event.Name)
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Watcher error", "err", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Atomic writes land as a Rename or Create on the target name.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	ev, ok := w.classify(event.Name)
	if !ok {
		return
	}
	w.debounceEvent(event.Name, func() {
		select {
		case w.eventsChan <- ev:
		case <-w.done:
		}
	})
}

// classify maps a changed path to an event.
func (w *Watcher) classify(path string) (Event, bool) {
	if w.settingsFile != "" && filepath.Clean(path) == filepath.Clean(w.settingsFile) {
		return Event{Type: EventSettingsChanged, Path: path}, true
	}
	if filepath.Dir(path) != w.historyDir {
		return Event{}, false
	}
	month, ok := config.HistoryMonth(path)
	if !ok {
		return Event{}, false
	}
	return Event{Type: EventHistoryChanged, Month: month, Path: path}, true
}

func (w *Watcher) debounceEvent(path string, fn func()) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	w.debounce[path] = time.AfterFunc(w.Debounce, func() {
		w.debounceMu.Lock()
		delete(w.debounce, path)
		w.debounceMu.Unlock()
		fn()
	})
}
