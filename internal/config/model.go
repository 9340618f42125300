package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Category is a partition of the source assets by type.
type Category string

const (
	Scripts Category = "scripts"
	Styles  Category = "styles"
	Images  Category = "images"
	HTML    Category = "html"
)

// Categories lists every asset category in a stable order.
var Categories = []Category{Scripts, Styles, Images, HTML}

// ParseCategory returns the category with the given name.
func ParseCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

// UnknownPlaceholderPolicy decides what the html build does with a
// placeholder whose key is missing from the replacement table.
type UnknownPlaceholderPolicy string

const (
	// PlaceholderEmpty substitutes an empty string.
	PlaceholderEmpty UnknownPlaceholderPolicy = "empty"
	// PlaceholderKeep leaves the token in the output verbatim.
	PlaceholderKeep UnknownPlaceholderPolicy = "keep"
	// PlaceholderError fails the build.
	PlaceholderError UnknownPlaceholderPolicy = "error"
)

// Model is the unified, format-agnostic representation of the task file.
type Model struct {
	// Root is the project directory. Every relative path is resolved against it.
	Root    string
	Paths   Paths
	Replace ReplaceTable
	HTML    HTMLConfig
	Lint    LintConfig
	Styles  StylesConfig
	Server  ServerConfig
	Watch   WatchConfig
	// Tasks are extra alias tasks declared in the task file.
	Tasks []*Task
}

// Paths maps every category to its source and build directories.
type Paths struct {
	BuildRoot  string
	Categories map[Category]CategoryPaths
}

// CategoryPaths is the pair of directories for a single category.
type CategoryPaths struct {
	Source string
	Build  string
}

// Source returns the source directory of a category.
func (p Paths) Source(c Category) string { return p.Categories[c].Source }

// Build returns the build directory of a category.
func (p Paths) Build(c Category) string { return p.Categories[c].Build }

// ReplaceTable maps a template-variable name to its literal replacement.
type ReplaceTable map[string]string

// HTMLConfig configures the html build.
type HTMLConfig struct {
	UnknownPlaceholder UnknownPlaceholderPolicy
}

// LintConfig configures the lint tasks.
type LintConfig struct {
	// StylesConfig is the path of the YAML rule file for the style checker.
	StylesConfig string
	// ScriptsExclude holds globs, relative to the scripts source, that are
	// never linted.
	ScriptsExclude []string
}

// StylesConfig configures the stylesheet compiler.
type StylesConfig struct {
	// IncludePaths are searched when resolving @import, e.g. mixin libraries.
	IncludePaths []string
	// DartSass is the Dart Sass executable. Empty means "sass" from PATH.
	DartSass string
	Timeout  time.Duration
}

// ServerConfig configures the local dev server.
type ServerConfig struct {
	Host string
	Port int
	Open bool
}

// WatchConfig configures the file watchers.
type WatchConfig struct {
	// Debounce collapses bursts of change events. Zero disables it.
	Debounce time.Duration
	// Globs select which files under a category source trigger a rebuild.
	Globs map[Category]string
}

// Task is an alias task declared in the task file.
type Task struct {
	Name      string
	DependsOn []string
}

// Default returns the model used when the task file leaves a setting out.
// It mirrors the conventional project layout.
func Default() *Model {
	return &Model{
		Root: ".",
		Paths: Paths{
			BuildRoot: "build",
			Categories: map[Category]CategoryPaths{
				Scripts: {Source: "src/scripts", Build: "build/scripts"},
				Styles:  {Source: "src/styles", Build: "build/styles"},
				Images:  {Source: "src/images", Build: "build/images"},
				HTML:    {Source: "src/html", Build: "build"},
			},
		},
		Replace: ReplaceTable{},
		HTML:    HTMLConfig{UnknownPlaceholder: PlaceholderEmpty},
		Lint: LintConfig{
			StylesConfig:   ".scss-lint.yml",
			ScriptsExclude: []string{"**/external/**"},
		},
		Styles: StylesConfig{Timeout: 30 * time.Second},
		Server: ServerConfig{Host: "localhost", Port: 1337, Open: true},
		Watch: WatchConfig{
			Globs: map[Category]string{
				Scripts: "**/*.js",
				Styles:  "**/*.scss",
				Images:  "**/*",
				HTML:    "**/*.html",
			},
		},
	}
}

// Resolve returns p joined to the project root unless it is already absolute.
func (m *Model) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, p)
}

// Validate checks the invariants the rest of the application relies on.
func (m *Model) Validate() error {
	var errs []error
	if m.Paths.BuildRoot == "" {
		errs = append(errs, errors.New("paths: build_root must not be empty"))
	}
	for c, cp := range m.Paths.Categories {
		if _, ok := ParseCategory(string(c)); !ok {
			errs = append(errs, fmt.Errorf("paths: unknown category %q", c))
			continue
		}
		if cp.Source != "" && cp.Build == "" {
			errs = append(errs, fmt.Errorf("paths: category %q has a source directory but no build directory", c))
		}
	}
	for _, c := range Categories {
		if _, ok := m.Paths.Categories[c]; !ok {
			errs = append(errs, fmt.Errorf("paths: category %q is not configured", c))
		}
	}
	switch m.HTML.UnknownPlaceholder {
	case PlaceholderEmpty, PlaceholderKeep, PlaceholderError:
	default:
		errs = append(errs, fmt.Errorf("html: unknown_placeholder must be 'empty', 'keep' or 'error', got %q", m.HTML.UnknownPlaceholder))
	}
	if m.Server.Port < 0 || m.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server: port %d is out of range", m.Server.Port))
	}
	if m.Watch.Debounce < 0 {
		errs = append(errs, errors.New("watch: debounce must not be negative"))
	}
	for i, t := range m.Tasks {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("task #%d has no name", i))
		}
	}
	return errors.Join(errs...)
}
