package hcl_adapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// translateRoot turns a decoded file into a config overlay.
func (l *Loader) translateRoot(ctx context.Context, root *fileRoot) (*config.Overlay, error) {
	o := &config.Overlay{
		PathsFile:   root.PathsFile,
		ReplaceFile: root.ReplaceFile,
	}

	if p := root.Paths; p != nil {
		o.BuildRoot = p.BuildRoot
		o.Sources = p.Source.toMap()
		o.Builds = p.Build.toMap()
	}
	if root.Replace != nil {
		table, err := l.translateReplace(ctx, root.Replace)
		if err != nil {
			return nil, err
		}
		o.Replace = table
	}
	if h := root.HTML; h != nil {
		o.UnknownPlaceholder = h.UnknownPlaceholder
	}
	if lb := root.Lint; lb != nil {
		o.StylesLintConfig = lb.StylesConfig
		o.ScriptsExclude = lb.ScriptsExclude
	}
	if s := root.Styles; s != nil {
		o.IncludePaths = s.IncludePaths
		o.DartSass = s.DartSass
		o.CompileTimeout = s.Timeout
	}
	if s := root.Server; s != nil {
		o.Host = s.Host
		o.Port = s.Port
		o.Open = s.Open
	}
	if w := root.Watch; w != nil {
		o.Debounce = w.Debounce
		o.WatchGlobs = w.Globs.toMap()
	}
	for _, t := range root.Tasks {
		o.Tasks = append(o.Tasks, &config.Task{Name: t.Name, DependsOn: t.DependsOn})
	}
	return o, nil
}

// translateReplace evaluates every attribute of the replace block as a
// literal string. Numbers and bools are converted; anything else is an error.
func (l *Loader) translateReplace(ctx context.Context, b *replaceBlock) (map[string]string, error) {
	logger := ctxlog.FromContext(ctx)

	attrs, diags := b.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid replace block: %w", diags)
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	table := make(map[string]string, len(attrs))
	for _, name := range names {
		attr := attrs[name]
		s, err := literalString(attr)
		if err != nil {
			return nil, err
		}
		table[name] = s
	}
	logger.Debug("Translated replace block.", "keys", names)
	return table, nil
}

func literalString(attr *hcl.Attribute) (string, error) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", fmt.Errorf("replace.%s: %w", attr.Name, diags)
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("replace.%s at %s: value must be a string: %w", attr.Name, attr.Range, err)
	}
	if str.IsNull() || !str.IsKnown() {
		return "", fmt.Errorf("replace.%s at %s: value must not be null", attr.Name, attr.Range)
	}
	return str.AsString(), nil
}

func (v *categoryValues) toMap() map[config.Category]string {
	if v == nil {
		return nil
	}
	out := make(map[config.Category]string)
	set := func(c config.Category, s *string) {
		if s != nil {
			out[c] = *s
		}
	}
	set(config.Scripts, v.Scripts)
	set(config.Styles, v.Styles)
	set(config.Images, v.Images)
	set(config.HTML, v.HTML)
	return out
}
