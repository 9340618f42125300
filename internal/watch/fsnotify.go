package watch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned when adding paths to a closed watcher.
var ErrWatcherClosed = errors.New("watcher is closed")

// Op is the kind of change observed on a path.
type Op uint8

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
)

// Verb describes the change the way the console reports it.
func (op Op) Verb() string {
	switch {
	case op&OpCreate != 0:
		return "added"
	case op&OpRemove != 0:
		return "deleted"
	case op&OpRename != 0:
		return "renamed"
	default:
		return "changed"
	}
}

// Event is a single file system change.
type Event struct {
	Path string
	Op   Op
}

// FSWatcher watches directory trees with fsnotify. Directories created
// under a tree added with WatchRecursive are watched automatically.
type FSWatcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	paths   map[string]bool
	roots   []string
	events  chan Event
	errors  chan error

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// NewFSWatcher creates a watcher and starts its event loop.
func NewFSWatcher() (*FSWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &FSWatcher{
		watcher: fsw,
		paths:   make(map[string]bool),
		events:  make(chan Event, 256),
		errors:  make(chan error, 16),
		closeCh: make(chan struct{}),
	}
	w.closedWg.Add(1)
	go w.processLoop()
	return w, nil
}

// WatchRecursive watches root and every directory below it, including
// directories created later.
func (w *FSWatcher) WatchRecursive(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	if _, err := os.Stat(absRoot); err != nil {
		return err
	}

	w.mu.Lock()
	w.roots = append(w.roots, absRoot)
	w.mu.Unlock()
	return w.addTree(absRoot)
}

// WatchDir watches dir alone. Directories created in it are reported but
// not watched.
func (w *FSWatcher) WatchDir(dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	return w.add(absDir)
}

// inTree reports whether p is inside a tree added with WatchRecursive.
func (w *FSWatcher) inTree(p string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, root := range w.roots {
		if isWithin(root, p) {
			return true
		}
	}
	return false
}

// isWithin reports whether p is dir or below it.
func isWithin(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *FSWatcher) addTree(absRoot string) error {
	return filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries, keep walking.
		}
		if !d.IsDir() {
			return nil
		}
		if p != absRoot && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.add(p)
	})
}

func (w *FSWatcher) add(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.paths[dir] {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.paths[dir] = true
	return nil
}

// Events returns the event channel. It is closed by Close.
func (w *FSWatcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel. It is closed by Close.
func (w *FSWatcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher.
func (w *FSWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.closedWg.Wait()
	close(w.events)
	close(w.errors)
	return w.watcher.Close()
}

// processLoop handles incoming fsnotify events.
func (w *FSWatcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(fsEvent)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// handleFSEvent converts and dispatches an fsnotify event.
func (w *FSWatcher) handleFSEvent(fsEvent fsnotify.Event) {
	op := convertOp(fsEvent.Op)
	if op == 0 {
		return // Chmod only.
	}

	if op&OpCreate != 0 && w.inTree(fsEvent.Name) {
		if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
			_ = w.addTree(fsEvent.Name)
		}
	}
	if op&(OpRemove|OpRename) != 0 {
		w.mu.Lock()
		delete(w.paths, fsEvent.Name)
		w.mu.Unlock()
	}

	select {
	case w.events <- Event{Path: fsEvent.Name, Op: op}:
	case <-w.closeCh:
	}
}

// convertOp converts fsnotify.Op to Op.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
