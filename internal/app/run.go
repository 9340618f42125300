package app

import (
	"context"

	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
	"github.com/specialistvlad/sitegridgo/internal/watch"
	"golang.org/x/sync/errgroup"
)

// Run executes the configured targets. When a target leaves the dev server
// or a watcher running, Run blocks until ctx is cancelled, even when some
// targets failed. Everything the
// run started is shut down before Run returns.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger
	logger.Debug("App.Run method started.")

	a.supervisor.Start(ctx)
	defer func() {
		if err := a.shutdown(ctx); err != nil {
			logger.Error("Shutdown finished with errors.", "error", err)
		}
	}()

	logger.Info("🚀 Running tasks", "targets", a.config.Targets)
	err := a.executor.Run(ctx, a.config.Targets...)
	watching := a.supervisor.State() == watch.Watching || a.server.Running()
	switch {
	case err != nil && (!watching || ctx.Err() != nil):
		return err
	case err != nil:
		logger.Error("❌ Initial build failed, fix the sources to rebuild.", "error", err)
	default:
		logger.Info("🏁 Tasks finished.")
	}

	if watching {
		logger.Info("👀 Watching for changes. Press Ctrl+C to stop.")
		<-ctx.Done()
		logger.Info("Stopping.")
	}

	logger.Debug("App.Run method finished.")
	return nil
}

// shutdown stops the watchers, the dev server and the compiler in parallel.
func (a *App) shutdown(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	var g errgroup.Group
	g.Go(a.supervisor.Close)
	g.Go(func() error { return a.server.Shutdown(ctx) })
	g.Go(a.env.Sass.Close)
	return g.Wait()
}
