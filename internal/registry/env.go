package registry

import (
	"context"
	"io"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/sass"
)

// Notifier tells connected browsers that build outputs changed.
type Notifier interface {
	Notify(ctx context.Context, files ...string)
}

// WatchRegistrar starts watching the source tree of one category.
type WatchRegistrar interface {
	Watch(ctx context.Context, c config.Category) error
}

// DevServer is the local HTTP server that serves the build root.
type DevServer interface {
	Start(ctx context.Context) error
	URL() string
}

// Env is the shared state every task action receives. It is built once per
// process and is safe for concurrent use by the task actions.
type Env struct {
	Config *config.Model
	// Console receives human-facing reports such as lint results.
	Console io.Writer
	// Color enables ANSI colours on Console.
	Color   bool
	Reload  Notifier
	Watcher WatchRegistrar
	Server  DevServer
	Sass    sass.Compiler
	// OpenBrowser opens a URL in the user's browser. Nil disables it.
	OpenBrowser func(url string) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, ...string) {}

// NopNotifier is a Notifier that discards every notification.
var NopNotifier Notifier = nopNotifier{}
