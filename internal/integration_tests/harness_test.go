package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/sitegridgo/internal/app"
	"github.com/specialistvlad/sitegridgo/internal/cli"
	"github.com/specialistvlad/sitegridgo/internal/testutil"
	"github.com/stretchr/testify/require"
)

// site is a project written to a temp dir and loaded into an App.
type site struct {
	Dir     string
	App     *app.App
	Logs    *testutil.SafeBuffer
	Console *testutil.SafeBuffer
	Sass    *testutil.FakeSass
}

// newSite writes files and creates an app for targets. configName is the
// task file or directory, relative to the site.
func newSite(t *testing.T, files map[string]string, configName string, targets ...string) *site {
	t.Helper()

	dir := t.TempDir()
	testutil.WriteTree(t, dir, files)

	port := 0
	cfg, err := app.NewConfig(app.Config{
		ConfigPath: filepath.Join(dir, configName),
		Targets:    targets,
		LogLevel:   "debug",
		Port:       &port,
		NoOpen:     true,
	})
	require.NoError(t, err)

	s := &site{Dir: dir, Logs: &testutil.SafeBuffer{}, Console: &testutil.SafeBuffer{}, Sass: &testutil.FakeSass{}}
	s.App, err = app.NewApp(s.Logs, cfg, cli.LoaderFor(cfg.ConfigPath),
		app.WithCompiler(s.Sass),
		app.WithConsole(s.Console),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("SITEGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), s.Logs.String())
		}
	})
	return s
}

// run executes the site's targets to completion.
func (s *site) run(t *testing.T) error {
	t.Helper()
	return s.App.Run(context.Background())
}

// build lists the files under the build root.
func (s *site) build(t *testing.T) []string {
	t.Helper()
	return testutil.ListFiles(t, filepath.Join(s.Dir, "build"))
}

// logLine returns the index of the first log line with msg and task, or -1.
func (s *site) logLine(msg, task string) int {
	for i, line := range strings.Split(s.Logs.String(), "\n") {
		if strings.Contains(line, `msg="`+msg+`"`) && strings.Contains(line+" ", "task="+task+" ") {
			return i
		}
	}
	return -1
}

// baseSite is a small project with one source of every category.
func baseSite() map[string]string {
	return map[string]string{
		"src/scripts/app.js":       "window.app = function () { return 1; };\n",
		"src/styles/main.scss":     ".a {\n  color: red;\n}\n",
		"src/styles/_mixins.scss":  ".m {\n  color: blue;\n}\n",
		"src/images/logo.png":      "png",
		"src/images/icons/x.svg":   "<svg/>",
		"src/html/index.html":      "<html><body><h1>{{site-title}}</h1></body></html>",
		"src/html/about/team.html": "<p>{{site-title}} {{unknown}}</p>",
	}
}

func with(files map[string]string, extra map[string]string) map[string]string {
	for k, v := range extra {
		files[k] = v
	}
	return files
}
