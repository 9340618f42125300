// Package clean registers the tasks that delete generated artifacts.
package clean

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
	"github.com/specialistvlad/sitegridgo/internal/fsutil"
	"github.com/specialistvlad/sitegridgo/internal/nodeid"
	"github.com/specialistvlad/sitegridgo/internal/registry"
)

// Patterns are the globs, relative to a category build directory, that select
// the artifacts its clean task deletes.
var Patterns = map[config.Category][]string{
	config.Scripts: {"**/*.js", "**/*.js.map"},
	config.Styles:  {"**/*.css", "**/*.css.map"},
	config.Images:  {"**/*"},
	config.HTML:    {"**/*.html"},
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers `clean` and `clean:<category>`.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.RegisteredTask{
		Name:        nodeid.New("clean", ""),
		Description: "Remove the build root and recreate it empty.",
		Fn:          CleanAll,
	})
	for _, c := range config.Categories {
		r.RegisterTask(&registry.RegisteredTask{
			Name:        nodeid.New("clean", string(c)),
			Description: fmt.Sprintf("Delete generated %s artifacts.", c),
			Fn:          cleanCategory(c),
		})
	}
}

// CleanAll removes the build root and recreates it empty.
func CleanAll(ctx context.Context, env *registry.Env) error {
	logger := ctxlog.FromContext(ctx)
	root := env.Config.Paths.BuildRoot
	if filepath.Clean(root) == filepath.Clean(env.Config.Root) {
		return fmt.Errorf("refusing to clean %s: the build root is the project root", root)
	}
	if err := fsutil.ResetDir(root); err != nil {
		return err
	}
	logger.Debug("Build root reset.", "dir", root)
	return nil
}

func cleanCategory(c config.Category) registry.Action {
	return func(ctx context.Context, env *registry.Env) error {
		logger := ctxlog.FromContext(ctx)
		dir := env.Config.Paths.Build(c)
		removed, err := fsutil.RemoveGlob(dir, Patterns[c], c == config.Images)
		if err != nil {
			return fmt.Errorf("failed to clean %s: %w", c, err)
		}
		logger.Debug("Artifacts removed.", "category", c, "dir", dir, "count", len(removed))
		return nil
	}
}
