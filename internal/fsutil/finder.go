// Package fsutil provides file system utility functions shared by the build
// tasks.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob returns the files under root matching pattern, as slash-separated
// paths relative to root, sorted. Files matching any of the exclude patterns
// are dropped. A missing root yields no matches and no error.
func Glob(root, pattern string, exclude ...string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("error accessing %s: %w", root, err)
	}

	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	out := matches[:0]
	for _, m := range matches {
		excluded, err := MatchAny(exclude, m)
		if err != nil {
			return nil, err
		}
		if !excluded {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// MatchAny reports whether the slash-separated path matches any pattern.
func MatchAny(patterns []string, path string) (bool, error) {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, path)
		if err != nil {
			return false, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Abs joins a slash-separated relative path onto root.
func Abs(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}
