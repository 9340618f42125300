// Package serve registers `serve` and its `default` alias.
package serve

import (
	"context"
	"errors"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
	"github.com/specialistvlad/sitegridgo/internal/nodeid"
	"github.com/specialistvlad/sitegridgo/internal/registry"
	"github.com/specialistvlad/sitegridgo/modules/watch"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers `serve`, which depends on `build`, and `default`. Serve
// starts even when part of the build failed so the sources can be fixed
// while it runs.
func (m *Module) Register(r *registry.Registry) {
	serve := nodeid.New("serve", "")
	r.RegisterTask(&registry.RegisteredTask{
		Name:        serve,
		Description: "Build, serve the build root with live reload and watch every category.",
		DependsOn:   []nodeid.Address{nodeid.New("build", "")},
		Fn:          Serve,
		Tolerant:    true,
	})
	r.RegisterTask(&registry.RegisteredTask{
		Name:        nodeid.New("default", ""),
		Description: "Alias for serve.",
		DependsOn:   []nodeid.Address{serve},
	})
}

// Serve starts the dev server, opens the browser and registers every watcher.
func Serve(ctx context.Context, env *registry.Env) error {
	logger := ctxlog.FromContext(ctx)
	if env.Server == nil {
		return errors.New("no dev server configured")
	}
	if err := env.Server.Start(ctx); err != nil {
		return err
	}

	url := env.Server.URL()
	if env.Config.Server.Open && env.OpenBrowser != nil {
		if err := env.OpenBrowser(url); err != nil {
			logger.Warn("Failed to open browser.", "url", url, "error", err)
		}
	}

	for _, c := range config.Categories {
		if err := watch.Watch(c)(ctx, env); err != nil {
			return err
		}
	}
	return nil
}
