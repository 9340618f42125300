package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/browser"
	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
	"github.com/specialistvlad/sitegridgo/internal/dag"
	"github.com/specialistvlad/sitegridgo/internal/devserver"
	"github.com/specialistvlad/sitegridgo/internal/livereload"
	"github.com/specialistvlad/sitegridgo/internal/registry"
	"github.com/specialistvlad/sitegridgo/internal/sass"
	"github.com/specialistvlad/sitegridgo/internal/watch"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger     *slog.Logger
	config     *Config
	model      *config.Model
	registry   *registry.Registry
	executor   *dag.Executor
	env        *registry.Env
	server     *devserver.Server
	supervisor *watch.Supervisor
}

type options struct {
	modules []registry.Module
	console io.Writer
	sass    sass.Compiler
	browser func(url string) error
}

// Option customises NewApp.
type Option func(*options)

// WithModules replaces the built-in task modules.
func WithModules(modules ...registry.Module) Option {
	return func(o *options) { o.modules = modules }
}

// WithConsole sets where lint reports and change events are printed.
// Defaults to the log writer.
func WithConsole(w io.Writer) Option {
	return func(o *options) { o.console = w }
}

// WithCompiler replaces the Dart Sass compiler.
func WithCompiler(c sass.Compiler) Option {
	return func(o *options) { o.sass = c }
}

// WithBrowser replaces the function that opens the browser.
func WithBrowser(open func(url string) error) Option {
	return func(o *options) { o.browser = open }
}

// NewApp is the constructor for the main application. It loads the task
// file, registers every task and builds the task graph. Nothing is started
// until Run.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, opts ...Option) (*App, error) {
	o := &options{modules: coreModules, console: outW, browser: browser.OpenURL}
	for _, opt := range opts {
		opt(o)
	}

	logger := newLogger(appConfig, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Port != nil {
		model.Server.Port = *appConfig.Port
	}
	if appConfig.NoOpen {
		model.Server.Open = false
	}
	logger.Debug("Configuration loaded.", "root", model.Root, "build_root", model.Paths.BuildRoot)

	reg := registry.New()
	for _, mod := range o.modules {
		mod.Register(reg)
	}
	if err := reg.PopulateFromModel(model); err != nil {
		return nil, fmt.Errorf("invalid task declaration: %w", err)
	}
	if err := reg.ValidateRegistry(ctx); err != nil {
		return nil, err
	}
	logger.Debug("All tasks registered.", "count", reg.Len())

	graph, err := dag.Build(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to build task graph: %w", err)
	}

	hub := livereload.NewHub(ctx, model.Paths.BuildRoot)
	server := devserver.New(model.Paths.BuildRoot, model.Server, hub)
	compiler := o.sass
	if compiler == nil {
		compiler = sass.NewDartSass(model.Styles.DartSass, model.Styles.Timeout)
	}

	env := &registry.Env{
		Config:      model,
		Console:     o.console,
		Color:       appConfig.Color,
		Reload:      hub,
		Server:      server,
		Sass:        compiler,
		OpenBrowser: o.browser,
	}
	executor := dag.NewExecutor(graph, appConfig.Workers, env)
	supervisor := watch.NewSupervisor(model, executor.Run, watch.Options{
		Console: o.console,
		Color:   appConfig.Color,
	})
	env.Watcher = supervisor

	return &App{
		logger:     logger,
		config:     appConfig,
		model:      model,
		registry:   reg,
		executor:   executor,
		env:        env,
		server:     server,
		supervisor: supervisor,
	}, nil
}

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded task file.
func (a *App) Model() *config.Model {
	return a.model
}

// Server returns the dev server.
func (a *App) Server() *devserver.Server {
	return a.server
}

// Supervisor returns the watch supervisor.
func (a *App) Supervisor() *watch.Supervisor {
	return a.supervisor
}
