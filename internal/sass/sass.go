// Package sass compiles SCSS stylesheets.
package sass

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bep/godartsass/v2"
	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
)

// Request is a single stylesheet to compile.
type Request struct {
	// Source is the SCSS text.
	Source string
	// URL identifies the stylesheet in source maps and error messages,
	// usually a file:// URL.
	URL string
	// IncludePaths are searched when resolving @import and @use.
	IncludePaths []string
}

// Response is the compiled, compressed CSS and its source map. SourceMap is
// empty when the compiler does not produce one.
type Response struct {
	CSS       string
	SourceMap string
}

// Compiler turns SCSS into CSS.
type Compiler interface {
	Compile(ctx context.Context, req Request) (Response, error)
	Close() error
}

// ErrClosed is returned by Compile after Close.
var ErrClosed = errors.New("sass compiler is closed")

// DartSass compiles through an embedded Dart Sass process. The process is
// started on the first Compile and shared by all callers afterwards.
type DartSass struct {
	binary  string
	timeout time.Duration

	mu         sync.Mutex
	transpiler *godartsass.Transpiler
	closed     bool
}

// NewDartSass creates a compiler that runs binary, or "sass" from PATH when
// binary is empty. A zero timeout uses the library default.
func NewDartSass(binary string, timeout time.Duration) *DartSass {
	return &DartSass{binary: binary, timeout: timeout}
}

func (d *DartSass) start(ctx context.Context) (*godartsass.Transpiler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	if d.transpiler != nil {
		return d.transpiler, nil
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting Dart Sass.", "binary", d.binary, "timeout", d.timeout)
	t, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: d.binary,
		Timeout:                  d.timeout,
		LogEventHandler: func(e godartsass.LogEvent) {
			logger.Warn("Dart Sass: "+e.Message, "type", e.Type)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Dart Sass: %w", err)
	}
	d.transpiler = t
	return t, nil
}

// Compile compiles one stylesheet to compressed CSS with a source map.
func (d *DartSass) Compile(ctx context.Context, req Request) (Response, error) {
	t, err := d.start(ctx)
	if err != nil {
		return Response{}, err
	}

	type outcome struct {
		res godartsass.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := t.Execute(godartsass.Args{
			Source:                  req.Source,
			URL:                     req.URL,
			OutputStyle:             godartsass.OutputStyleCompressed,
			SourceSyntax:            godartsass.SourceSyntaxSCSS,
			IncludePaths:            req.IncludePaths,
			EnableSourceMap:         true,
			SourceMapIncludeSources: true,
		})
		done <- outcome{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case o := <-done:
		if o.err != nil {
			return Response{}, fmt.Errorf("sass compilation of %s failed: %w", req.URL, o.err)
		}
		return Response{CSS: o.res.CSS, SourceMap: o.res.SourceMap}, nil
	}
}

// Close stops the Dart Sass process if it was started.
func (d *DartSass) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	if d.transpiler == nil {
		return nil
	}
	err := d.transpiler.Close()
	d.transpiler = nil
	return err
}
