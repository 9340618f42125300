// Package styles registers the stylesheet build: SCSS is compiled, vendor
// prefixed and written next to a minified copy with a chained source map.
package styles

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
	"github.com/specialistvlad/sitegridgo/internal/fsutil"
	"github.com/specialistvlad/sitegridgo/internal/minify"
	"github.com/specialistvlad/sitegridgo/internal/nodeid"
	"github.com/specialistvlad/sitegridgo/internal/registry"
	"github.com/specialistvlad/sitegridgo/internal/sass"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers `build:styles`.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.RegisteredTask{
		Name:        nodeid.New("build", string(config.Styles)),
		Description: "Compile, prefix and minify stylesheets.",
		DependsOn: []nodeid.Address{
			nodeid.New("clean", string(config.Styles)),
			nodeid.New("lint", string(config.Styles)),
		},
		Fn: Build,
	})
}

// IsPartial reports whether rel names an SCSS partial, which is only ever
// imported and never compiled on its own.
func IsPartial(rel string) bool {
	return strings.HasPrefix(path.Base(rel), "_")
}

// Build writes x.css, x.min.css and x.min.css.map for every non-partial
// source x.scss.
func Build(ctx context.Context, env *registry.Env) error {
	logger := ctxlog.FromContext(ctx)
	cfg := env.Config
	src := cfg.Paths.Source(config.Styles)
	dst := cfg.Paths.Build(config.Styles)

	files, err := fsutil.Glob(src, "**/*.scss")
	if err != nil {
		return fmt.Errorf("failed to list stylesheets: %w", err)
	}

	var written []string
	compiled := 0
	for _, rel := range files {
		if IsPartial(rel) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := buildOne(ctx, env, src, dst, rel)
		written = append(written, out...)
		if err != nil {
			return err
		}
		compiled++
	}

	logger.Debug("Stylesheets built.", "compiled", compiled, "written", len(written))
	env.Reload.Notify(ctx, written...)
	return nil
}

func buildOne(ctx context.Context, env *registry.Env, src, dst, rel string) ([]string, error) {
	abs := fsutil.Abs(src, rel)
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", abs, err)
	}

	includes := append([]string{filepath.Dir(abs)}, env.Config.Styles.IncludePaths...)
	resp, err := env.Sass.Compile(ctx, sass.Request{
		Source:       string(data),
		URL:          fileURL(abs),
		IncludePaths: includes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", rel, err)
	}

	base := strings.TrimSuffix(rel, ".scss")
	prefixed, err := minify.Prefix([]byte(resp.CSS), minify.Options{
		Sourcefile: path.Base(rel),
		InputMap:   []byte(resp.SourceMap),
	})
	if err != nil {
		return nil, err
	}

	var written []string
	cssFile := fsutil.Abs(dst, base+".css")
	if err := fsutil.WriteFile(cssFile, prefixed.Code); err != nil {
		return nil, err
	}
	written = append(written, cssFile)

	minName := path.Base(base) + ".min.css"
	minified, err := minify.Stylesheet(prefixed.Code, minify.Options{
		Sourcefile: path.Base(base) + ".css",
		InputMap:   prefixed.Map,
		MapURL:     minName + ".map",
	})
	if err != nil {
		return written, err
	}

	minFile := fsutil.Abs(dst, base+".min.css")
	if err := fsutil.WriteFile(minFile, minified.Code); err != nil {
		return written, err
	}
	written = append(written, minFile)
	if err := fsutil.WriteFile(minFile+".map", minified.Map); err != nil {
		return written, err
	}
	return append(written, minFile+".map"), nil
}

func fileURL(abs string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}
