// Package images registers the image build, a verbatim recursive copy.
package images

import (
	"context"
	"fmt"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
	"github.com/specialistvlad/sitegridgo/internal/fsutil"
	"github.com/specialistvlad/sitegridgo/internal/nodeid"
	"github.com/specialistvlad/sitegridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers `build:images`.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.RegisteredTask{
		Name:        nodeid.New("build", string(config.Images)),
		Description: "Copy images.",
		DependsOn:   []nodeid.Address{nodeid.New("clean", string(config.Images))},
		Fn:          Build,
	})
}

// Build copies every file under the image source to the image build
// directory.
func Build(ctx context.Context, env *registry.Env) error {
	logger := ctxlog.FromContext(ctx)
	src := env.Config.Paths.Source(config.Images)
	dst := env.Config.Paths.Build(config.Images)

	files, err := fsutil.Glob(src, "**/*")
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}

	written := make([]string, 0, len(files))
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := fsutil.Abs(dst, rel)
		if err := fsutil.CopyFile(fsutil.Abs(src, rel), out); err != nil {
			return err
		}
		written = append(written, out)
	}

	logger.Debug("Images copied.", "count", len(written))
	env.Reload.Notify(ctx, written...)
	return nil
}
