package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RemoveGlob deletes every file under root matching any pattern and returns
// the removed paths relative to root. When pruneDirs is set, directories left
// empty afterwards are removed too (root itself is kept). Missing files are
// not an error.
func RemoveGlob(root string, patterns []string, pruneDirs bool) ([]string, error) {
	var removed []string
	for _, pattern := range patterns {
		matches, err := Glob(root, pattern)
		if err != nil {
			return removed, err
		}
		for _, rel := range matches {
			if err := os.Remove(Abs(root, rel)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return removed, fmt.Errorf("failed to remove %s: %w", Abs(root, rel), err)
			}
			removed = append(removed, rel)
		}
	}
	if pruneDirs {
		if err := pruneEmptyDirs(root); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// pruneEmptyDirs removes empty directories below root, deepest first.
func pruneEmptyDirs(root string) error {
	var dirs []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && p != root {
			dirs = append(dirs, p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(filepath.Separator)) > strings.Count(dirs[j], string(filepath.Separator))
	})
	for _, d := range dirs {
		entries, err := os.ReadDir(d)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", d, err)
		}
		if len(entries) == 0 {
			if err := os.Remove(d); err != nil {
				return fmt.Errorf("failed to remove %s: %w", d, err)
			}
		}
	}
	return nil
}

// ResetDir removes dir with everything in it and recreates it empty.
func ResetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}

// WriteFile writes data to path, creating parent directories as needed.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// CopyFile copies src to dst byte for byte, creating parent directories of
// dst and keeping the source file mode.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return nil
}
