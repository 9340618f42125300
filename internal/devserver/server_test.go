package devserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/livereload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func siteRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "styles"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<html><body><h1>Hoax</h1></body></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "styles", "main.css"), []byte(".a{color:red}"), 0o644))
	return root
}

func get(t *testing.T, h http.Handler, target string) (*http.Response, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	res := rec.Result()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func TestHandler(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ctx := context.Background()
	root := siteRoot(t)
	hub := livereload.NewHub(ctx, root)
	defer hub.Close()
	h := New(root, config.ServerConfig{}, hub).Handler(ctx)

	// --- Act & Assert ---
	t.Run("health", func(t *testing.T) {
		res, body := get(t, h, "/health")
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "OK\n", body)
	})

	t.Run("index is injected", func(t *testing.T) {
		res, body := get(t, h, "/")
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, body, `<h1>Hoax</h1><script src="/socket.io/socket.io.min.js"></script>`)
		assert.Contains(t, body, livereload.ScriptPath)
		assert.Equal(t, "no-store", res.Header.Get("Cache-Control"))
	})

	t.Run("css is served verbatim", func(t *testing.T) {
		res, body := get(t, h, "/styles/main.css")
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, ".a{color:red}", body)
	})

	t.Run("client script", func(t *testing.T) {
		res, _ := get(t, h, livereload.ScriptPath)
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("missing file", func(t *testing.T) {
		res, _ := get(t, h, "/nope.html")
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("no escape from root", func(t *testing.T) {
		res, _ := get(t, h, "/../../etc/passwd")
		assert.NotEqual(t, http.StatusOK, res.StatusCode)
	})
}

func TestStartAndShutdown(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ctx := context.Background()
	root := siteRoot(t)
	s := New(root, config.ServerConfig{Host: "127.0.0.1", Port: 0}, nil)

	// --- Act ---
	require.NoError(t, s.Start(ctx))
	defer s.Shutdown(ctx)

	// --- Assert ---
	assert.True(t, s.Running())
	assert.Error(t, s.Start(ctx), "second start is rejected")

	res, err := http.Get(s.URL() + "index.html")
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotContains(t, string(body), livereload.ScriptPath, "no hub, no injection")

	require.NoError(t, s.Shutdown(ctx))
	assert.False(t, s.Running())
	require.NoError(t, s.Shutdown(ctx), "shutdown is idempotent")
}
