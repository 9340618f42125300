package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gookit/color"
	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
	"github.com/specialistvlad/sitegridgo/internal/nodeid"
)

// State is the lifecycle state of a Supervisor.
type State int

const (
	Idle State = iota
	Watching
)

func (s State) String() string {
	if s == Watching {
		return "watching"
	}
	return "idle"
}

// RunFunc evaluates tasks, e.g. dag.Executor.Run.
type RunFunc func(ctx context.Context, targets ...string) error

// Options configure a Supervisor.
type Options struct {
	// Console receives one line per observed change.
	Console io.Writer
	// Color enables ANSI colours in console lines.
	Color bool
	// Now is used for console timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Supervisor owns the file watcher and the per-category rebuild loops.
type Supervisor struct {
	cfg  *config.Model
	run  RunFunc
	opts Options

	mu      sync.Mutex
	baseCtx context.Context
	state   State
	fsw     *FSWatcher
	loops   map[config.Category]*rebuildLoop
	// pending holds the absolute source directories that did not exist yet
	// when their category was registered.
	pending map[config.Category]string
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closed  bool
}

// NewSupervisor creates an idle supervisor.
func NewSupervisor(cfg *config.Model, run RunFunc, opts Options) *Supervisor {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Console == nil {
		opts.Console = io.Discard
	}
	return &Supervisor{
		cfg:   cfg,
		run:   run,
		opts:  opts,
		loops:   make(map[config.Category]*rebuildLoop),
		pending: make(map[config.Category]string),
	}
}

// Start sets the context that rebuild loops and the watcher live in. Without
// it they use the context of the first Watch call.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.baseCtx == nil {
		s.baseCtx = ctx
	}
}

// State returns the current state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Watch registers a category. The first call moves the supervisor from Idle
// to Watching. Registering a category twice is a no-op.
func (s *Supervisor) Watch(ctx context.Context, c config.Category) error {
	logger := ctxlog.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrWatcherClosed
	}
	if _, ok := s.loops[c]; ok {
		logger.Debug("Category already watched.", "category", c)
		return nil
	}

	if s.state == Idle {
		if err := s.startLocked(ctx); err != nil {
			return err
		}
	}

	src := s.cfg.Paths.Source(c)
	if err := s.fsw.WatchRecursive(src); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to watch %s sources in %s: %w", c, src, err)
		}
		watched, err := s.followLocked(c, src)
		if err != nil {
			return fmt.Errorf("failed to wait for %s sources in %s: %w", c, src, err)
		}
		if !watched {
			logger.Warn("Source directory does not exist yet, waiting for it.", "category", c, "dir", src)
		}
	}

	loop := &rebuildLoop{
		category: c,
		target:   nodeid.New("build", string(c)).String(),
		trigger:  make(chan struct{}, 1),
		debounce: s.cfg.Watch.Debounce,
	}
	s.loops[c] = loop
	loopCtx := s.baseCtx
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		loop.run(loopCtx, s.run)
	}()

	logger.Info("👀 Watching for changes", "category", c, "dir", src, "glob", s.cfg.Watch.Globs[c])
	return nil
}

// startLocked creates the file watcher and moves to Watching.
func (s *Supervisor) startLocked(ctx context.Context) error {
	if s.baseCtx == nil {
		s.baseCtx = ctx
	}
	loopCtx, cancel := context.WithCancel(s.baseCtx)

	fsw, err := NewFSWatcher()
	if err != nil {
		cancel()
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	s.fsw = fsw
	s.baseCtx = loopCtx
	s.cancel = cancel
	s.state = Watching

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.pump(loopCtx, fsw)
	}()
	return nil
}

// followLocked watches src once it exists. Until then it watches the
// nearest existing ancestor, so the creation of the next directory on the
// way down is reported. It returns true when src is watched.
func (s *Supervisor) followLocked(c config.Category, src string) (bool, error) {
	abs, err := filepath.Abs(src)
	if err != nil {
		return false, err
	}
	for {
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			if err := s.fsw.WatchRecursive(abs); err != nil {
				return false, err
			}
			delete(s.pending, c)
			return true, nil
		}
		dir := nearestExisting(abs)
		if err := s.fsw.WatchDir(dir); err != nil {
			return false, err
		}
		if nearestExisting(abs) == dir {
			s.pending[c] = abs
			return false, nil
		}
	}
}

// nearestExisting returns the closest ancestor of p that exists.
func nearestExisting(p string) string {
	for {
		parent := filepath.Dir(p)
		if parent == p {
			return p
		}
		p = parent
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
}

// adopt starts watching pending source directories that ev created, or
// created a step towards. A source that appears is built right away.
func (s *Supervisor) adopt(ctx context.Context, ev Event) {
	if ev.Op&OpCreate == 0 {
		return
	}
	logger := ctxlog.FromContext(ctx)

	s.mu.Lock()
	var ready []*rebuildLoop
	for c, src := range s.pending {
		if !isWithin(ev.Path, src) {
			continue
		}
		watched, err := s.followLocked(c, src)
		if err != nil {
			logger.Warn("Failed to follow source directory.", "category", c, "dir", src, "error", err)
			continue
		}
		if watched {
			logger.Info("👀 Source directory appeared", "category", c, "dir", src)
			ready = append(ready, s.loops[c])
		}
	}
	s.mu.Unlock()

	for _, loop := range ready {
		loop.poke()
	}
}

// pump forwards watcher events to Dispatch until the watcher closes.
func (s *Supervisor) pump(ctx context.Context, fsw *FSWatcher) {
	logger := ctxlog.FromContext(ctx)
	events, errs := fsw.Events(), fsw.Errors()
	for events != nil || errs != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.adopt(ctx, ev)
			s.Dispatch(ctx, ev)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("File watcher error.", "error", err)
		}
	}
}

// Dispatch routes one change to the categories whose sources it belongs to
// and reports it on the console. It returns the categories that were
// triggered.
func (s *Supervisor) Dispatch(ctx context.Context, ev Event) []config.Category {
	logger := ctxlog.FromContext(ctx)

	s.mu.Lock()
	var hits []*rebuildLoop
	for _, c := range config.Categories {
		loop, ok := s.loops[c]
		if !ok {
			continue
		}
		if s.matches(c, ev.Path) {
			hits = append(hits, loop)
		}
	}
	s.mu.Unlock()

	if len(hits) == 0 {
		logger.Debug("Ignoring change outside watched globs.", "path", ev.Path)
		return nil
	}

	s.report(ev)
	triggered := make([]config.Category, 0, len(hits))
	for _, loop := range hits {
		loop.poke()
		triggered = append(triggered, loop.category)
	}
	return triggered
}

func (s *Supervisor) matches(c config.Category, path string) bool {
	src := s.cfg.Paths.Source(c)
	if src == "" {
		return false
	}
	rel, err := filepath.Rel(src, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	glob := s.cfg.Watch.Globs[c]
	if glob == "" {
		glob = "**/*"
	}
	ok, err := doublestar.Match(glob, filepath.ToSlash(rel))
	return err == nil && ok
}

// report prints `File <path> was <verb>` with the path relative to the
// project root.
func (s *Supervisor) report(ev Event) {
	shown := ev.Path
	if rel, err := filepath.Rel(s.cfg.Root, ev.Path); err == nil && !strings.HasPrefix(rel, "..") {
		shown = rel
	}
	stamp := s.opts.Now().Format("15:04:05")
	path, verb := shown, ev.Op.Verb()
	if s.opts.Color {
		stamp = color.FgDarkGray.Render(stamp)
		path = color.FgYellow.Render(path)
		verb = color.FgBlue.Render(verb)
	}
	fmt.Fprintf(s.opts.Console, "[%s] File %s was %s\n", stamp, path, verb)
}

// Close stops the watcher and every rebuild loop. Rebuilds in flight finish
// first.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	fsw, cancel := s.fsw, s.cancel
	s.mu.Unlock()

	var err error
	if fsw != nil {
		err = fsw.Close()
	}
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	return err
}
