package config

import (
	"fmt"
	"maps"
	"time"
)

// Overlay is what a format-specific loader extracts from one task file. Nil
// pointers and nil maps mean "not set" and leave the model untouched.
type Overlay struct {
	BuildRoot *string
	Sources   map[Category]string
	Builds    map[Category]string
	// PathsFile points at a JSON document (usually package.json) whose
	// `paths` object supplies the directories.
	PathsFile *string

	// ReplaceFile points at a JSON document whose `replace` object is loaded
	// before the inline Replace entries.
	ReplaceFile *string
	Replace     map[string]string

	UnknownPlaceholder *string

	StylesLintConfig *string
	ScriptsExclude   []string

	IncludePaths   []string
	DartSass       *string
	CompileTimeout *string

	Host *string
	Port *int
	Open *bool

	Debounce   *string
	WatchGlobs map[Category]string

	Tasks []*Task
}

// Apply merges an overlay into the model. Sidecar files named by the overlay
// are resolved against the model root and read immediately.
func (m *Model) Apply(o *Overlay) error {
	if o == nil {
		return nil
	}

	if o.PathsFile != nil {
		p, err := LoadPathsFile(m.Resolve(*o.PathsFile))
		if err != nil {
			return err
		}
		m.mergePaths(p.BuildRoot, p.Sources, p.Builds)
	}
	var buildRoot string
	if o.BuildRoot != nil {
		buildRoot = *o.BuildRoot
	}
	m.mergePaths(buildRoot, o.Sources, o.Builds)

	if o.ReplaceFile != nil {
		table, err := LoadReplaceFile(m.Resolve(*o.ReplaceFile))
		if err != nil {
			return err
		}
		maps.Copy(m.Replace, table)
	}
	maps.Copy(m.Replace, o.Replace)

	if o.UnknownPlaceholder != nil {
		m.HTML.UnknownPlaceholder = UnknownPlaceholderPolicy(*o.UnknownPlaceholder)
	}
	if o.StylesLintConfig != nil {
		m.Lint.StylesConfig = *o.StylesLintConfig
	}
	if o.ScriptsExclude != nil {
		m.Lint.ScriptsExclude = o.ScriptsExclude
	}
	if o.IncludePaths != nil {
		m.Styles.IncludePaths = o.IncludePaths
	}
	if o.DartSass != nil {
		m.Styles.DartSass = *o.DartSass
	}
	if o.CompileTimeout != nil {
		d, err := time.ParseDuration(*o.CompileTimeout)
		if err != nil {
			return fmt.Errorf("styles: invalid timeout %q: %w", *o.CompileTimeout, err)
		}
		m.Styles.Timeout = d
	}
	if o.Host != nil {
		m.Server.Host = *o.Host
	}
	if o.Port != nil {
		m.Server.Port = *o.Port
	}
	if o.Open != nil {
		m.Server.Open = *o.Open
	}
	if o.Debounce != nil {
		d, err := time.ParseDuration(*o.Debounce)
		if err != nil {
			return fmt.Errorf("watch: invalid debounce %q: %w", *o.Debounce, err)
		}
		m.Watch.Debounce = d
	}
	maps.Copy(m.Watch.Globs, o.WatchGlobs)
	m.Tasks = append(m.Tasks, o.Tasks...)
	return nil
}

func (m *Model) mergePaths(buildRoot string, sources, builds map[Category]string) {
	if buildRoot != "" {
		m.Paths.BuildRoot = buildRoot
	}
	for c, dir := range sources {
		cp := m.Paths.Categories[c]
		cp.Source = dir
		m.Paths.Categories[c] = cp
	}
	for c, dir := range builds {
		cp := m.Paths.Categories[c]
		cp.Build = dir
		m.Paths.Categories[c] = cp
	}
}

// Finalize resolves every relative path against Root and validates the
// result. Loaders call it exactly once, after the last overlay.
func (m *Model) Finalize() error {
	m.Paths.BuildRoot = m.Resolve(m.Paths.BuildRoot)
	for c, cp := range m.Paths.Categories {
		cp.Source = m.Resolve(cp.Source)
		cp.Build = m.Resolve(cp.Build)
		m.Paths.Categories[c] = cp
	}
	m.Lint.StylesConfig = m.Resolve(m.Lint.StylesConfig)
	for i, p := range m.Styles.IncludePaths {
		m.Styles.IncludePaths[i] = m.Resolve(p)
	}
	return m.Validate()
}
