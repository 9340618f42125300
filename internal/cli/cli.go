package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/specialistvlad/sitegridgo/internal/app"
	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/hcl_adapter"
	"github.com/specialistvlad/sitegridgo/internal/toml_adapter"
	"github.com/spf13/cobra"
)

// Version is the release version, set at build time with -ldflags.
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Environment variables read after the optional .env file. Flags win.
const (
	EnvPort     = "SITEGRID_PORT"
	EnvLogLevel = "SITEGRID_LOG_LEVEL"
	EnvNoOpen   = "SITEGRID_NO_OPEN"
)

type flags struct {
	configPath string
	logLevel   string
	logFormat  string
	workers    int
	port       int
	noOpen     bool
	noColor    bool
}

// NewRootCommand builds the `sitegrid [task...]` command tree. opts are
// passed to every App it creates.
func NewRootCommand(outW io.Writer, opts ...app.Option) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "sitegrid [task...]",
		Short: "Build, watch and serve a static site",
		Long: `sitegrid runs the build tasks of a static site: clean, lint and build per
category (scripts, styles, images, html), watch for changes, and serve the
build directory with live reload.

Tasks: default, serve, watch, watch:<category>, build, build:<category>,
lint, lint:scripts, lint:styles, clean, clean:<category>, plus the aliases
declared in the task file. Without a task, "default" runs.`,
		Args:          cobra.ArbitraryArgs,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, f, args, outW, opts)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
	root.SetOut(outW)

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", app.DefaultConfigPath, "Task file (.hcl or .toml) or a directory of .hcl files.")
	pf.StringVar(&f.logLevel, "log-level", "info", "Logging level: debug, info, warn or error.")
	pf.StringVar(&f.logFormat, "log-format", "text", "Log output format: text or json.")
	pf.IntVar(&f.workers, "workers", 4, "Number of tasks that may run at the same time.")
	pf.IntVar(&f.port, "port", 0, "Dev server port. Overrides the task file.")
	pf.BoolVar(&f.noOpen, "no-open", false, "Do not open a browser when serving.")
	pf.BoolVar(&f.noColor, "no-color", false, "Disable coloured console output.")

	root.AddCommand(newTasksCommand(f, outW, opts), newVersionCommand())
	return root
}

// newApp layers .env, environment and flags into an app.Config and creates
// the App. Configuration problems are usage errors.
func newApp(cmd *cobra.Command, f *flags, targets []string, outW io.Writer, opts []app.Option) (*app.App, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, usageError("failed to read .env: %v", err)
	}

	cfg := app.Config{
		ConfigPath: f.configPath,
		Targets:    targets,
		LogFormat:  f.logFormat,
		LogLevel:   f.logLevel,
		Workers:    f.workers,
		NoOpen:     f.noOpen,
		Color:      !f.noColor && color.SupportColor(),
	}

	changed := cmd.Flags().Changed
	if !changed("log-level") {
		if v, ok := os.LookupEnv(EnvLogLevel); ok {
			cfg.LogLevel = v
		}
	}
	if changed("port") {
		cfg.Port = &f.port
	} else if v, ok := os.LookupEnv(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, usageError("invalid %s: %q is not a number", EnvPort, v)
		}
		cfg.Port = &port
	}
	if !changed("no-open") {
		if v, ok := os.LookupEnv(EnvNoOpen); ok {
			noOpen, err := strconv.ParseBool(v)
			if err != nil {
				return nil, usageError("invalid %s: %q is not a boolean", EnvNoOpen, v)
			}
			cfg.NoOpen = noOpen
		}
	}

	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError("%v", err)
	}
	appConfig.ConfigPath = resolveConfigPath(appConfig.ConfigPath, changed("config"))

	a, err := app.NewApp(outW, appConfig, LoaderFor(appConfig.ConfigPath), opts...)
	if err != nil {
		return nil, usageError("%v", err)
	}
	return a, nil
}

// resolveConfigPath falls back to sitegrid.toml when the default task file
// is missing and a TOML one exists.
func resolveConfigPath(path string, explicit bool) string {
	if explicit {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	alt := strings.TrimSuffix(path, filepath.Ext(path)) + ".toml"
	if _, err := os.Stat(alt); err == nil {
		return alt
	}
	return path
}

// LoaderFor picks the task file format by extension. Anything that is not
// .toml, directories included, is read as HCL.
func LoaderFor(path string) config.Loader {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml_adapter.NewLoader()
	}
	return hcl_adapter.NewLoader()
}
