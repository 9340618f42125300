package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	m := Default()
	require.NoError(t, m.Validate())
	for _, c := range Categories {
		assert.NotEmpty(t, m.Paths.Source(c), "category %s", c)
		assert.NotEmpty(t, m.Paths.Build(c), "category %s", c)
	}
}

func TestValidate_SourceWithoutBuild(t *testing.T) {
	t.Parallel()

	m := Default()
	m.Paths.Categories[Styles] = CategoryPaths{Source: "src/styles"}

	err := m.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, `category "styles" has a source directory but no build directory`)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	t.Parallel()

	m := Default()
	m.Paths.BuildRoot = ""
	m.HTML.UnknownPlaceholder = "explode"
	m.Server.Port = 70000

	err := m.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "build_root")
	assert.ErrorContains(t, err, "unknown_placeholder")
	assert.ErrorContains(t, err, "out of range")
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	c, ok := ParseCategory("styles")
	require.True(t, ok)
	assert.Equal(t, Styles, c)

	_, ok = ParseCategory("fonts")
	assert.False(t, ok)
}

func TestApply_OverridesOnlyWhatIsSet(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	m := Default()
	port := 8080
	debounce := "150ms"
	policy := "keep"

	// --- Act ---
	err := m.Apply(&Overlay{
		Sources:            map[Category]string{Scripts: "assets/js"},
		Replace:            map[string]string{"site-title": "Hoax"},
		Port:               &port,
		Debounce:           &debounce,
		UnknownPlaceholder: &policy,
		Tasks:              []*Task{{Name: "deploy", DependsOn: []string{"build"}}},
	})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "assets/js", m.Paths.Source(Scripts))
	assert.Equal(t, "build/scripts", m.Paths.Build(Scripts), "build dir must be left alone")
	assert.Equal(t, "Hoax", m.Replace["site-title"])
	assert.Equal(t, 8080, m.Server.Port)
	assert.Equal(t, 150*time.Millisecond, m.Watch.Debounce)
	assert.Equal(t, PlaceholderKeep, m.HTML.UnknownPlaceholder)
	assert.True(t, m.Server.Open)
	require.Len(t, m.Tasks, 1)
	assert.Equal(t, "deploy", m.Tasks[0].Name)
}

func TestApply_InvalidDuration(t *testing.T) {
	t.Parallel()

	m := Default()
	bad := "soon"
	err := m.Apply(&Overlay{CompileTimeout: &bad})
	assert.ErrorContains(t, err, "invalid timeout")
}

func TestApply_SidecarFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".conf.json"), []byte(`{
		"replace": {"site-title": "From file", "year": "2015"},
		"other": {"ignored": true}
	}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte(`{
		"name": "hoax",
		"paths": {
			"source": {"scripts": "js/", "styles": "scss/"},
			"build": {"base": "dist/", "scripts": "dist/js/"}
		}
	}`), 0o644))

	m := Default()
	m.Root = root
	replaceFile := ".conf.json"
	pathsFile := "package.json"

	// --- Act ---
	err := m.Apply(&Overlay{
		ReplaceFile: &replaceFile,
		PathsFile:   &pathsFile,
		Replace:     map[string]string{"site-title": "Inline"},
	})
	require.NoError(t, err)
	require.NoError(t, m.Finalize())

	// --- Assert ---
	assert.Equal(t, "Inline", m.Replace["site-title"], "inline entries override the file")
	assert.Equal(t, "2015", m.Replace["year"])
	assert.Equal(t, filepath.Join(root, "dist"), m.Paths.BuildRoot)
	assert.Equal(t, filepath.Join(root, "js"), m.Paths.Source(Scripts))
	assert.Equal(t, filepath.Join(root, "scss"), m.Paths.Source(Styles))
	assert.Equal(t, filepath.Join(root, "dist", "js"), m.Paths.Build(Scripts))
}

func TestLoadReplaceFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"replace": `), 0o644))

	_, err := LoadReplaceFile(bad)
	assert.ErrorContains(t, err, "failed to parse replacement file")

	_, err = LoadReplaceFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoadPathsFile_MissingPaths(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "package.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"name": "hoax"}`), 0o644))

	_, err := LoadPathsFile(file)
	assert.ErrorContains(t, err, "has no 'paths' object")
}
