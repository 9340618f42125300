package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/sass"
)

// FakeSass is a sass.Compiler that returns its input unchanged. A source
// containing `@error` fails to compile.
type FakeSass struct {
	mu       sync.Mutex
	requests []sass.Request
	closed   bool
}

// Compile implements sass.Compiler.
func (f *FakeSass) Compile(_ context.Context, req sass.Request) (sass.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return sass.Response{}, sass.ErrClosed
	}
	f.requests = append(f.requests, req)
	if strings.Contains(req.Source, "@error") {
		return sass.Response{}, errors.New("Error: boom")
	}
	return sass.Response{CSS: req.Source}, nil
}

// Close implements sass.Compiler.
func (f *FakeSass) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Calls returns the number of Compile calls.
func (f *FakeSass) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// Requests returns every Compile request in call order.
func (f *FakeSass) Requests() []sass.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sass.Request(nil), f.requests...)
}

// RecordingNotifier records every notified file.
type RecordingNotifier struct {
	mu    sync.Mutex
	files []string
}

// Notify implements registry.Notifier.
func (n *RecordingNotifier) Notify(_ context.Context, files ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.files = append(n.files, files...)
}

// Files returns every notified file in call order.
func (n *RecordingNotifier) Files() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.files...)
}

// FakeWatcher records watch registrations.
type FakeWatcher struct {
	mu      sync.Mutex
	watched []config.Category
}

// Watch implements registry.WatchRegistrar.
func (w *FakeWatcher) Watch(_ context.Context, c config.Category) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.watched = append(w.watched, c)
	return nil
}

// Watched returns the registered categories in call order.
func (w *FakeWatcher) Watched() []config.Category {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]config.Category(nil), w.watched...)
}

// FakeServer is a registry.DevServer that never listens.
type FakeServer struct {
	mu      sync.Mutex
	started bool
	// Err is returned by Start when set.
	Err error
}

// Start implements registry.DevServer.
func (s *FakeServer) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.started = true
	return nil
}

// URL implements registry.DevServer.
func (s *FakeServer) URL() string {
	return "http://localhost:1337/"
}

// Started reports whether Start succeeded.
func (s *FakeServer) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}
