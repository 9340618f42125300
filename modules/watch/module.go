// Package watch registers the tasks that build a category and then keep
// rebuilding it whenever its sources change.
package watch

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/nodeid"
	"github.com/specialistvlad/sitegridgo/internal/registry"
)

// ErrNoWatcher is returned when the environment has no watch registrar.
var ErrNoWatcher = errors.New("file watching is not available")

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers `watch` and `watch:<category>`. A category is watched
// even when its first build failed.
func (m *Module) Register(r *registry.Registry) {
	all := make([]nodeid.Address, 0, len(config.Categories))
	for _, c := range config.Categories {
		name := nodeid.New("watch", string(c))
		r.RegisterTask(&registry.RegisteredTask{
			Name:        name,
			Description: fmt.Sprintf("Build %s, then rebuild on change.", c),
			DependsOn:   []nodeid.Address{nodeid.New("build", string(c))},
			Fn:          Watch(c),
			Tolerant:    true,
		})
		all = append(all, name)
	}
	r.RegisterTask(&registry.RegisteredTask{
		Name:        nodeid.New("watch", ""),
		Description: "Build everything, then rebuild on change.",
		DependsOn:   all,
	})
}

// Watch returns the action that registers the watcher of c.
func Watch(c config.Category) registry.Action {
	return func(ctx context.Context, env *registry.Env) error {
		if env.Watcher == nil {
			return ErrNoWatcher
		}
		return env.Watcher.Watch(ctx, c)
	}
}
