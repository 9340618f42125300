package toml_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_TaskFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	file := filepath.Join(dir, "sitegrid.toml")
	require.NoError(t, os.WriteFile(file, []byte(`
[paths]
build_root = "public"

[paths.source]
styles = "sass"

[paths.build]
styles = "public/css"

[replace]
site-title = "Hoax"
year = 2015

[server]
port = 9000

[watch]
debounce = "50ms"

[task.deploy]
depends_on = ["build"]

[task.check]
depends_on = ["lint"]
`), 0o644))

	// --- Act ---
	m, err := NewLoader().Load(context.Background(), file)

	// --- Assert ---
	require.NoError(t, err)
	root, _ := filepath.Abs(dir)
	assert.Equal(t, filepath.Join(root, "public"), m.Paths.BuildRoot)
	assert.Equal(t, filepath.Join(root, "sass"), m.Paths.Source(config.Styles))
	assert.Equal(t, filepath.Join(root, "public", "css"), m.Paths.Build(config.Styles))
	assert.Equal(t, config.ReplaceTable{"site-title": "Hoax", "year": "2015"}, m.Replace)
	assert.Equal(t, 9000, m.Server.Port)
	assert.Equal(t, 50*time.Millisecond, m.Watch.Debounce)
	require.Len(t, m.Tasks, 2)
	assert.Equal(t, "check", m.Tasks[0].Name)
	assert.Equal(t, "deploy", m.Tasks[1].Name)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "syntax", content: "[paths\n", wantErr: "failed to parse TOML file"},
		{name: "unknown key", content: "[deploy]\nx = 1\n", wantErr: "sitegrid.toml"},
		{name: "unknown category", content: "[paths.source]\nfonts = \"f\"\n", wantErr: `unknown category "fonts"`},
		{name: "table replacement", content: "[replace.nested]\nx = \"y\"\n", wantErr: "value must be a string"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			file := filepath.Join(t.TempDir(), "sitegrid.toml")
			require.NoError(t, os.WriteFile(file, []byte(tc.content), 0o644))

			_, err := NewLoader().Load(context.Background(), file)

			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
