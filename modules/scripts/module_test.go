package scripts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/sitegridgo/internal/registry"
	"github.com/specialistvlad/sitegridgo/internal/testutil"
	"github.com/specialistvlad/sitegridgo/modules/clean"
	"github.com/specialistvlad/sitegridgo/modules/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modules() []registry.Module {
	return []registry.Module{&clean.Module{}, &lint.Module{}, &Module{}}
}

func TestBuild_WritesPlainMinifiedAndMap(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	model := testutil.NewModel(t, map[string]string{
		"src/scripts/app.js": "/*! app v1 */\nfunction greet(name) {\n  // hello\n  return 'hi ' + name;\n}\nwindow.greet = greet;\n",
		"src/scripts/lib/util.js": "export function add(a, b) { return a + b; }\n",
		"build/scripts/stale.js":  "old",
	})
	env := testutil.NewEnv(t, model)
	dst := model.Paths.BuildRoot

	// --- Act ---
	err := testutil.RunTasks(t, context.Background(), env, modules(), "build:scripts")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		"scripts/app.js",
		"scripts/app.min.js",
		"scripts/app.min.js.map",
		"scripts/lib/util.js",
		"scripts/lib/util.min.js",
		"scripts/lib/util.min.js.map",
	}, testutil.ListFiles(t, dst), "stale artifacts are cleaned first")

	plain, err := os.ReadFile(filepath.Join(dst, "scripts", "app.js"))
	require.NoError(t, err)
	assert.Contains(t, string(plain), "// hello")

	minified, err := os.ReadFile(filepath.Join(dst, "scripts", "app.min.js"))
	require.NoError(t, err)
	assert.Contains(t, string(minified), "/*! app v1 */", "legal comments are kept")
	assert.NotContains(t, string(minified), "// hello")
	assert.True(t, strings.HasSuffix(string(minified), "//# sourceMappingURL=app.min.js.map\n"))

	sourceMap, err := os.ReadFile(filepath.Join(dst, "scripts", "app.min.js.map"))
	require.NoError(t, err)
	assert.Contains(t, string(sourceMap), `"app.js"`)

	notified := env.Reload.(*testutil.RecordingNotifier).Files()
	assert.Len(t, notified, 6)
}

func TestBuild_SyntaxErrorFailsTask(t *testing.T) {
	t.Parallel()

	model := testutil.NewModel(t, map[string]string{"src/scripts/bad.js": "function (\n"})
	env := testutil.NewEnv(t, model)

	err := testutil.RunTasks(t, context.Background(), env, modules(), "build:scripts")

	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to transform bad.js")
	assert.Contains(t, env.Console.(*testutil.SafeBuffer).String(), "bad.js", "lint still reports the file")
}

func TestBuild_NoSources(t *testing.T) {
	t.Parallel()

	model := testutil.NewModel(t, nil)
	env := testutil.NewEnv(t, model)

	err := testutil.RunTasks(t, context.Background(), env, modules(), "build:scripts")

	require.NoError(t, err)
	assert.Empty(t, testutil.ListFiles(t, model.Paths.BuildRoot))
}
