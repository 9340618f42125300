// Package scripts registers the script build: every source script is copied
// to the build directory and minified next to it with a source map.
package scripts

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
	"github.com/specialistvlad/sitegridgo/internal/fsutil"
	"github.com/specialistvlad/sitegridgo/internal/minify"
	"github.com/specialistvlad/sitegridgo/internal/nodeid"
	"github.com/specialistvlad/sitegridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers `build:scripts`.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.RegisteredTask{
		Name:        nodeid.New("build", string(config.Scripts)),
		Description: "Copy and minify scripts.",
		DependsOn: []nodeid.Address{
			nodeid.New("clean", string(config.Scripts)),
			nodeid.New("lint", string(config.Scripts)),
		},
		Fn: Build,
	})
}

// Build writes x.js, x.min.js and x.min.js.map for every source x.js.
func Build(ctx context.Context, env *registry.Env) error {
	logger := ctxlog.FromContext(ctx)
	src := env.Config.Paths.Source(config.Scripts)
	dst := env.Config.Paths.Build(config.Scripts)

	files, err := fsutil.Glob(src, "**/*.js")
	if err != nil {
		return fmt.Errorf("failed to list scripts: %w", err)
	}

	var written []string
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := buildOne(src, dst, rel)
		written = append(written, out...)
		if err != nil {
			return err
		}
	}

	logger.Debug("Scripts built.", "sources", len(files), "written", len(written))
	env.Reload.Notify(ctx, written...)
	return nil
}

func buildOne(src, dst, rel string) ([]string, error) {
	data, err := os.ReadFile(fsutil.Abs(src, rel))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fsutil.Abs(src, rel), err)
	}

	plain := fsutil.Abs(dst, rel)
	if err := fsutil.WriteFile(plain, data); err != nil {
		return nil, err
	}
	written := []string{plain}

	minRel := strings.TrimSuffix(rel, ".js") + ".min.js"
	res, err := minify.Script(data, minify.Options{
		Sourcefile: path.Base(rel),
		MapURL:     path.Base(minRel) + ".map",
	})
	if err != nil {
		return written, err
	}

	minFile := fsutil.Abs(dst, minRel)
	if err := fsutil.WriteFile(minFile, res.Code); err != nil {
		return written, err
	}
	written = append(written, minFile)
	if err := fsutil.WriteFile(minFile+".map", res.Map); err != nil {
		return written, err
	}
	return append(written, minFile+".map"), nil
}
