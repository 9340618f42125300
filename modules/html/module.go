// Package html registers the page build, which fills `{{key}}` placeholders
// from the replacement table.
package html

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
	"github.com/specialistvlad/sitegridgo/internal/fsutil"
	"github.com/specialistvlad/sitegridgo/internal/nodeid"
	"github.com/specialistvlad/sitegridgo/internal/placeholder"
	"github.com/specialistvlad/sitegridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers `build:html`.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.RegisteredTask{
		Name:        nodeid.New("build", string(config.HTML)),
		Description: "Fill placeholders in pages.",
		DependsOn:   []nodeid.Address{nodeid.New("clean", string(config.HTML))},
		Fn:          Build,
	})
}

// Build writes every source page with its placeholders replaced.
func Build(ctx context.Context, env *registry.Env) error {
	logger := ctxlog.FromContext(ctx)
	cfg := env.Config
	src := cfg.Paths.Source(config.HTML)
	dst := cfg.Paths.Build(config.HTML)

	files, err := fsutil.Glob(src, "**/*.html")
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}

	written := make([]string, 0, len(files))
	for _, rel := range files {
		abs := fsutil.Abs(src, rel)
		data, err := os.ReadFile(abs)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", abs, err)
		}
		page, err := placeholder.Replace(string(data), cfg.Replace, cfg.HTML.UnknownPlaceholder)
		if err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}
		if unknown := placeholder.Unknown(string(data), cfg.Replace); len(unknown) > 0 {
			logger.Debug("Page uses placeholders without a value.", "page", rel, "keys", unknown, "policy", cfg.HTML.UnknownPlaceholder)
		}
		out := fsutil.Abs(dst, rel)
		if err := fsutil.WriteFile(out, []byte(page)); err != nil {
			return err
		}
		written = append(written, out)
	}

	logger.Debug("Pages built.", "count", len(written))
	env.Reload.Notify(ctx, written...)
	return nil
}
