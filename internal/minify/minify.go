// Package minify minifies scripts and stylesheets and adds vendor prefixes,
// producing external source maps.
package minify

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Engines are the browsers the output must support. They decide which
// vendor prefixes are added to stylesheets.
var Engines = []api.Engine{
	{Name: api.EngineChrome, Version: "58"},
	{Name: api.EngineEdge, Version: "16"},
	{Name: api.EngineFirefox, Version: "57"},
	{Name: api.EngineSafari, Version: "11"},
	{Name: api.EngineIOS, Version: "11"},
}

// Options control a single transform.
type Options struct {
	// Sourcefile names the input in source maps and error messages.
	Sourcefile string
	// InputMap is the source map of the input, if it was itself generated.
	// The output map then points at the original sources.
	InputMap []byte
	// MapURL is written into a trailing sourceMappingURL comment. Empty means
	// no comment.
	MapURL string
}

// Result is the transformed code and its source map.
type Result struct {
	Code []byte
	Map  []byte
}

// Script minifies JavaScript. Legal comments (`/*!`, `@license`,
// `@preserve`) are kept.
func Script(src []byte, opts Options) (Result, error) {
	return transform(src, opts, api.TransformOptions{
		Loader:            api.LoaderJS,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		LegalComments:     api.LegalCommentsInline,
	})
}

// Stylesheet minifies CSS and adds the vendor prefixes Engines require.
func Stylesheet(src []byte, opts Options) (Result, error) {
	return transform(src, opts, api.TransformOptions{
		Loader:           api.LoaderCSS,
		MinifyWhitespace: true,
		MinifySyntax:     true,
		LegalComments:    api.LegalCommentsInline,
		Engines:          Engines,
	})
}

// Prefix adds the vendor prefixes Engines require without restructuring the
// stylesheet.
func Prefix(src []byte, opts Options) (Result, error) {
	return transform(src, opts, api.TransformOptions{
		Loader:           api.LoaderCSS,
		MinifyWhitespace: true,
		LegalComments:    api.LegalCommentsInline,
		Engines:          Engines,
	})
}

func transform(src []byte, opts Options, to api.TransformOptions) (Result, error) {
	css := to.Loader == api.LoaderCSS
	input := string(src)
	if len(opts.InputMap) > 0 {
		input = strings.TrimRight(input, "\n") + "\n" + mapComment(css, "data:application/json;base64,"+base64.StdEncoding.EncodeToString(opts.InputMap))
	}

	to.Sourcefile = opts.Sourcefile
	to.Sourcemap = api.SourceMapExternal
	to.SourcesContent = api.SourcesContentInclude
	to.LogLevel = api.LogLevelSilent

	res := api.Transform(input, to)
	if len(res.Errors) > 0 {
		return Result{}, messagesError(opts.Sourcefile, res.Errors)
	}

	code := res.Code
	if opts.MapURL != "" {
		code = append([]byte(strings.TrimRight(string(code), "\n")+"\n"), mapComment(css, opts.MapURL)...)
	}
	return Result{Code: code, Map: res.Map}, nil
}

func mapComment(css bool, url string) string {
	if css {
		return "/*# sourceMappingURL=" + url + " */\n"
	}
	return "//# sourceMappingURL=" + url + "\n"
}

func messagesError(file string, msgs []api.Message) error {
	errs := make([]error, 0, len(msgs))
	for _, m := range msgs {
		if m.Location != nil {
			errs = append(errs, fmt.Errorf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column+1, m.Text))
			continue
		}
		errs = append(errs, errors.New(m.Text))
	}
	return fmt.Errorf("failed to transform %s: %w", file, errors.Join(errs...))
}
