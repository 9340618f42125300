package html

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/placeholder"
	"github.com/specialistvlad/sitegridgo/internal/registry"
	"github.com/specialistvlad/sitegridgo/internal/testutil"
	"github.com/specialistvlad/sitegridgo/modules/clean"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modules() []registry.Module {
	return []registry.Module{&clean.Module{}, &Module{}}
}

const page = "<title>{{site-title}}</title>\n<p>{{Missing-Key}}</p>\n"

func TestBuild_ReplacesPlaceholders(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		policy config.UnknownPlaceholderPolicy
		want   string
	}{
		{name: "unknown becomes empty", policy: config.PlaceholderEmpty, want: "<title>Hoax</title>\n<p></p>\n"},
		{name: "unknown is kept", policy: config.PlaceholderKeep, want: "<title>Hoax</title>\n<p>{{Missing-Key}}</p>\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			model := testutil.NewModel(t, map[string]string{
				"src/html/index.html":       page,
				"src/html/about/index.html": "<h1>{{SITE-TITLE}}</h1>",
			})
			model.Replace = config.ReplaceTable{"site-title": "Hoax"}
			model.HTML.UnknownPlaceholder = tc.policy
			env := testutil.NewEnv(t, model)

			// --- Act ---
			err := testutil.RunTasks(t, context.Background(), env, modules(), "build:html")

			// --- Assert ---
			require.NoError(t, err)
			got, err := os.ReadFile(filepath.Join(model.Paths.BuildRoot, "index.html"))
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))

			nested, err := os.ReadFile(filepath.Join(model.Paths.BuildRoot, "about", "index.html"))
			require.NoError(t, err)
			assert.Equal(t, "<h1>Hoax</h1>", string(nested))

			assert.Len(t, env.Reload.(*testutil.RecordingNotifier).Files(), 2)
		})
	}
}

func TestBuild_UnknownPlaceholderErrorPolicy(t *testing.T) {
	t.Parallel()

	model := testutil.NewModel(t, map[string]string{"src/html/index.html": page})
	model.HTML.UnknownPlaceholder = config.PlaceholderError
	env := testutil.NewEnv(t, model)

	err := testutil.RunTasks(t, context.Background(), env, modules(), "build:html")

	require.ErrorIs(t, err, placeholder.ErrUnknownPlaceholder)
	assert.ErrorContains(t, err, "index.html")
	assert.NoFileExists(t, filepath.Join(model.Paths.BuildRoot, "index.html"))
}
