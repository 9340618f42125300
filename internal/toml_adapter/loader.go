// Package toml_adapter loads TOML task files into a config.Model. It accepts
// the same settings as the HCL task file, expressed as tables.
package toml_adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
)

// Loader is the TOML implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new TOML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

type document struct {
	Paths       *pathsTable         `toml:"paths"`
	PathsFile   *string             `toml:"paths_file"`
	ReplaceFile *string             `toml:"replace_file"`
	Replace     map[string]any      `toml:"replace"`
	HTML        *htmlTable          `toml:"html"`
	Lint        *lintTable          `toml:"lint"`
	Styles      *stylesTable        `toml:"styles"`
	Server      *serverTable        `toml:"server"`
	Watch       *watchTable         `toml:"watch"`
	Task        map[string]taskItem `toml:"task"`
}

type pathsTable struct {
	BuildRoot *string           `toml:"build_root"`
	Source    map[string]string `toml:"source"`
	Build     map[string]string `toml:"build"`
}

type htmlTable struct {
	UnknownPlaceholder *string `toml:"unknown_placeholder"`
}

type lintTable struct {
	StylesConfig   *string  `toml:"styles_config"`
	ScriptsExclude []string `toml:"scripts_exclude"`
}

type stylesTable struct {
	IncludePaths []string `toml:"include_paths"`
	DartSass     *string  `toml:"dart_sass"`
	Timeout      *string  `toml:"timeout"`
}

type serverTable struct {
	Host *string `toml:"host"`
	Port *int    `toml:"port"`
	Open *bool   `toml:"open"`
}

type watchTable struct {
	Debounce *string           `toml:"debounce"`
	Globs    map[string]string `toml:"globs"`
}

type taskItem struct {
	DependsOn []string `toml:"depends_on"`
}

// Load reads each TOML file in order on top of the default model. Paths that
// do not exist are skipped. The project root is the directory of the first path.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	model := config.Default()
	root := "."
	if len(paths) > 0 {
		root = filepath.Dir(paths[0])
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	model.Root = abs

	loaded := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}

		overlay, err := l.parse(path, data)
		if err != nil {
			return nil, err
		}
		if err := model.Apply(overlay); err != nil {
			return nil, fmt.Errorf("in %s: %w", path, err)
		}
		loaded++
	}

	if err := model.Finalize(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug("TOML loading complete.", "files", loaded, "root", model.Root)
	return model, nil
}

func (l *Loader) parse(path string, data []byte) (*config.Overlay, error) {
	var doc document
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("failed to parse TOML file %s:%d:%d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}
	return doc.toOverlay()
}

func (d *document) toOverlay() (*config.Overlay, error) {
	o := &config.Overlay{
		PathsFile:   d.PathsFile,
		ReplaceFile: d.ReplaceFile,
	}

	if p := d.Paths; p != nil {
		o.BuildRoot = p.BuildRoot
		var err error
		if o.Sources, err = categoryMap("paths.source", p.Source); err != nil {
			return nil, err
		}
		if o.Builds, err = categoryMap("paths.build", p.Build); err != nil {
			return nil, err
		}
	}
	if d.Replace != nil {
		o.Replace = make(map[string]string, len(d.Replace))
		for k, v := range d.Replace {
			switch v := v.(type) {
			case string:
				o.Replace[k] = v
			case int64, float64, bool:
				o.Replace[k] = fmt.Sprint(v)
			default:
				return nil, fmt.Errorf("replace.%s: value must be a string, got %T", k, v)
			}
		}
	}
	if h := d.HTML; h != nil {
		o.UnknownPlaceholder = h.UnknownPlaceholder
	}
	if lt := d.Lint; lt != nil {
		o.StylesLintConfig = lt.StylesConfig
		o.ScriptsExclude = lt.ScriptsExclude
	}
	if s := d.Styles; s != nil {
		o.IncludePaths = s.IncludePaths
		o.DartSass = s.DartSass
		o.CompileTimeout = s.Timeout
	}
	if s := d.Server; s != nil {
		o.Host = s.Host
		o.Port = s.Port
		o.Open = s.Open
	}
	if w := d.Watch; w != nil {
		o.Debounce = w.Debounce
		globs, err := categoryMap("watch.globs", w.Globs)
		if err != nil {
			return nil, err
		}
		o.WatchGlobs = globs
	}

	names := make([]string, 0, len(d.Task))
	for name := range d.Task {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		o.Tasks = append(o.Tasks, &config.Task{Name: name, DependsOn: d.Task[name].DependsOn})
	}
	return o, nil
}

func categoryMap(table string, in map[string]string) (map[config.Category]string, error) {
	if in == nil {
		return nil, nil
	}
	out := make(map[config.Category]string, len(in))
	for k, v := range in {
		c, ok := config.ParseCategory(k)
		if !ok {
			return nil, fmt.Errorf("%s: unknown category %q", table, k)
		}
		out[c] = v
	}
	return out, nil
}
