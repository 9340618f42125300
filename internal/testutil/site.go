package testutil

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/stretchr/testify/require"
)

// WriteTree writes files, keyed by slash-separated paths relative to root.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// NewModel writes files into a fresh project directory and returns the
// default model rooted there.
func NewModel(t *testing.T, files map[string]string) *config.Model {
	t.Helper()
	root := t.TempDir()
	WriteTree(t, root, files)

	m := config.Default()
	m.Root = root
	require.NoError(t, m.Finalize())
	return m
}

// ListFiles returns every regular file under root as sorted slash-separated
// relative paths. A missing root yields nil.
func ListFiles(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(out)
	return out
}

// NewLogger returns a debug-level text logger writing to w.
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
