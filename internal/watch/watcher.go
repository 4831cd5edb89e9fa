// Package watch reports changes to the files of the open session
package watch

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"fiapo/internal/log"

	"github.com/fsnotify/fsnotify"
)

// Change is an event on a watched session file
type Change struct {
	Path      string
	Op        fsnotify.Op
	Timestamp time.Time
}

// Watcher monitors the parent directories of session files with fsnotify
// and forwards events that concern the files themselves. Watching the
// directories keeps files that are replaced by rename visible.
type Watcher struct {
	// Session files, by cleaned absolute path
	files map[string]bool

	// Parent directories registered with fsnotify
	directories []string

	// Channel to deliver changes
	changes chan Change

	// Channel to signal stop
	stopChan chan struct{}

	// Closed once loop has returned
	done chan struct{}

	// fsnotify watcher instance
	fsWatcher *fsnotify.Watcher

	// Guards files, directories, running and stopped
	mutex sync.RWMutex

	running bool
	stopped bool
}

// New creates a watcher with nothing to watch
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		files:     make(map[string]bool),
		changes:   make(chan Change, 16),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
		fsWatcher: fsWatcher,
	}, nil
}

// WatchFiles replaces the watched set with paths
func (w *Watcher) WatchFiles(paths []string) error {
	files := make(map[string]bool, len(paths))
	dirSet := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("invalid path %s: %w", p, err)
		}
		files[abs] = true
		dirSet[filepath.Dir(abs)] = true
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	for _, dir := range w.directories {
		if dirSet[dir] {
			continue
		}
		if err := w.fsWatcher.Remove(dir); err != nil {
			log.LogWithFields(log.F("directory", dir), log.F("error", err.Error())).Debug("Directory was no longer watched")
		}
	}

	dirs := make([]string, 0, len(dirSet))
	for dir := range dirSet {
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
		}
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	w.files = files
	w.directories = dirs
	log.LogWithFields(log.F("files", len(files)), log.F("directories", len(dirs))).Debug("Watching session files")
	return nil
}

// Changes returns the channel that delivers changes. It is closed once a
// started watcher has stopped.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Start begins forwarding events
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	if w.stopped {
		w.mutex.Unlock()
		return fmt.Errorf("watcher was stopped")
	}
	w.running = true
	w.mutex.Unlock()

	go w.loop()
	return nil
}

// loop owns the change channel and is the only one to close it
func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.changes)

	relevant := fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&relevant == 0 || !w.watches(event.Name) {
				continue
			}

			change := Change{Path: filepath.Clean(event.Name), Op: event.Op, Timestamp: time.Now()}
			// Non-blocking so a slow reader never stalls fsnotify
			select {
			case w.changes <- change:
			case <-w.stopChan:
				return
			default:
				log.LogWithFields(log.F("file", event.Name)).Warn("Change channel is full, dropped event")
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err.Error())).Error("fsnotify watcher error")

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) watches(name string) bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.files[filepath.Clean(name)]
}

// Stop halts the watcher and returns once the change channel is closed.
// A stopped watcher cannot be restarted.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	if !w.running {
		w.mutex.Unlock()
		return
	}
	close(w.stopChan)
	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err.Error())).Error("Error closing fsnotify watcher")
	}
	w.running = false
	w.stopped = true
	w.mutex.Unlock()

	// loop reads files under mutex, so it must be released first
	<-w.done
}

// IsRunning returns whether the watcher is active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// Files returns the watched files, sorted
func (w *Watcher) Files() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// GetDirectories returns the directories registered with fsnotify
func (w *Watcher) GetDirectories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	dirsCopy := make([]string, len(w.directories))
	copy(dirsCopy, w.directories)
	return dirsCopy
}
