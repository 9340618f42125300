package watch

import (
	"context"
	"time"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
)

// rebuildLoop serialises the rebuilds of one category.
type rebuildLoop struct {
	category config.Category
	target   string
	// trigger holds at most one pending rebuild.
	trigger  chan struct{}
	debounce time.Duration
}

// poke requests a rebuild. Requests made while one is already pending are
// merged into it.
func (l *rebuildLoop) poke() {
	select {
	case l.trigger <- struct{}{}:
	default:
	}
}

func (l *rebuildLoop) run(ctx context.Context, run RunFunc) {
	logger := ctxlog.FromContext(ctx).With("category", l.category)

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.trigger:
		}

		if l.debounce > 0 && !l.settle(ctx) {
			return
		}

		// A rebuild that started always runs to completion.
		logger.Debug("Rebuilding after change.", "task", l.target)
		if err := run(context.WithoutCancel(ctx), l.target); err != nil {
			logger.Error("Rebuild failed, still watching.", "task", l.target, "error", err)
		}
	}
}

// settle waits until no new trigger arrived for the debounce window. It
// returns false if ctx ends first.
func (l *rebuildLoop) settle(ctx context.Context) bool {
	timer := time.NewTimer(l.debounce)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-l.trigger:
			timer.Reset(l.debounce)
		case <-timer.C:
			return true
		}
	}
}
