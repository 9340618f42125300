// Package lint registers the non-blocking lint tasks. Findings are printed to
// the console; they never fail the task.
package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
	"github.com/specialistvlad/sitegridgo/internal/fsutil"
	"github.com/specialistvlad/sitegridgo/internal/lint"
	"github.com/specialistvlad/sitegridgo/internal/nodeid"
	"github.com/specialistvlad/sitegridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers `lint`, `lint:scripts` and `lint:styles`.
func (m *Module) Register(r *registry.Registry) {
	scripts := nodeid.New("lint", string(config.Scripts))
	styles := nodeid.New("lint", string(config.Styles))

	r.RegisterTask(&registry.RegisteredTask{
		Name:        scripts,
		Description: "Check scripts for syntax errors and suspicious code.",
		Fn:          LintScripts,
	})
	r.RegisterTask(&registry.RegisteredTask{
		Name:        styles,
		Description: "Check stylesheets against the style rules.",
		Fn:          LintStyles,
	})
	r.RegisterTask(&registry.RegisteredTask{
		Name:        nodeid.New("lint", ""),
		Description: "Lint scripts and stylesheets.",
		DependsOn:   []nodeid.Address{scripts, styles},
	})
}

// LintScripts checks every script except the excluded ones.
func LintScripts(ctx context.Context, env *registry.Env) error {
	cfg := env.Config
	return run(ctx, env, config.Scripts, "**/*.js", cfg.Lint.ScriptsExclude, func(file string, src []byte) []lint.Violation {
		return lint.CheckScript(file, src)
	})
}

// LintStyles checks every stylesheet, partials included. An unusable rule
// file is reported and the default rules apply.
func LintStyles(ctx context.Context, env *registry.Env) error {
	rules, err := lint.LoadStyleConfig(env.Config.Lint.StylesConfig)
	if err != nil {
		warn(ctx, env, config.Styles, fmt.Errorf("%w, using default rules", err))
		rules = lint.DefaultStyleConfig()
	}
	return run(ctx, env, config.Styles, "**/*.scss", nil, func(file string, src []byte) []lint.Violation {
		return lint.CheckStyle(file, src, rules)
	})
}

type checkFunc func(file string, src []byte) []lint.Violation

// run lints the sources of c. It only fails when ctx ends; every other
// problem is reported and skipped so the builds that follow still run.
func run(ctx context.Context, env *registry.Env, c config.Category, pattern string, exclude []string, check checkFunc) error {
	logger := ctxlog.FromContext(ctx).With("category", c)
	src := env.Config.Paths.Source(c)

	files, err := fsutil.Glob(src, pattern, exclude...)
	if err != nil {
		warn(ctx, env, c, fmt.Errorf("failed to list %s sources: %w", c, err))
		return nil
	}

	var found []lint.Violation
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		abs := fsutil.Abs(src, rel)
		data, err := os.ReadFile(abs)
		if err != nil {
			warn(ctx, env, c, fmt.Errorf("failed to read %s: %w", abs, err))
			continue
		}
		found = append(found, check(displayPath(env.Config.Root, abs), data)...)
	}

	report := &lint.Stylish{W: env.Console, Color: env.Color}
	errs, warns, err := report.Report(found)
	if err != nil {
		logger.Warn("Failed to write lint report.", "error", err)
		return nil
	}
	if errs+warns > 0 {
		logger.Warn("Lint found problems.", "files", len(files), "errors", errs, "warnings", warns)
		return nil
	}
	logger.Debug("Lint passed.", "files", len(files))
	return nil
}

// warn reports a problem that kept some sources from being linted.
func warn(ctx context.Context, env *registry.Env, c config.Category, err error) {
	ctxlog.FromContext(ctx).Warn("Lint could not check everything.", "category", c, "error", err)
	fmt.Fprintf(env.Console, "lint:%s: %v\n", c, err)
}

func displayPath(root, abs string) string {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}
