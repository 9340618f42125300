package integration_tests

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/specialistvlad/sitegridgo/internal/livereload"
	"github.com/specialistvlad/sitegridgo/internal/testutil"
	"github.com/specialistvlad/sitegridgo/internal/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// reloads connects a socket.io client and returns the received payloads.
func reloads(t *testing.T, url string) <-chan map[string]any {
	t.Helper()

	opts := socket.DefaultOptions()
	opts.SetTransports(types.NewSet(transports.WebSocket))
	client := socket.NewManager(url, opts).Socket("/", opts)
	t.Cleanup(func() { client.Disconnect() })

	connected := make(chan struct{}, 1)
	client.Once(types.EventName("connect"), func(...any) { connected <- struct{}{} })
	out := make(chan map[string]any, 16)
	client.On(types.EventName(livereload.ReloadEvent), func(args ...any) {
		if len(args) > 0 {
			if m, ok := args[0].(map[string]any); ok {
				out <- m
			}
		}
	})
	client.Connect()

	select {
	case <-connected:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for socket.io connection")
	}
	return out
}

// nextReload waits for a reload whose files include want.
func nextReload(t *testing.T, ch <-chan map[string]any, want string) map[string]any {
	t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case msg := <-ch:
			files, _ := msg["files"].([]any)
			for _, f := range files {
				if f == want {
					return msg
				}
			}
		case <-deadline:
			t.Fatalf("no reload for %s", want)
			return nil
		}
	}
}

// TestServe_LiveReload validates the serve flow end to end: the initial
// build is served with the client injected, and source changes rebuild only
// their category and reach the browser.
func TestServe_LiveReload(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	s := newSite(t, with(baseSite(), map[string]string{
		"sitegrid.hcl": `replace { site-title = "Hoax" }`,
	}), "sitegrid.hcl")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.App.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		return s.App.Server().Running() && s.App.Supervisor().State() == watch.Watching
	}, 10*time.Second, 20*time.Millisecond)
	base := strings.TrimSuffix(s.App.Server().URL(), "/")

	res, err := http.Get(base + "/index.html")
	require.NoError(t, err)
	page, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(page), "<h1>Hoax</h1>")
	assert.Contains(t, string(page), livereload.ScriptPath+`"></script></body>`)

	events := reloads(t, base)
	compiled := s.Sass.Calls()

	// --- Act & Assert: stylesheet change ---
	testutil.WriteTree(t, s.Dir, map[string]string{"src/styles/main.scss": ".a {\n  color: green;\n}\n"})
	msg := nextReload(t, events, "/styles/main.css")
	assert.Equal(t, true, msg["css_only"])
	assert.Greater(t, s.Sass.Calls(), compiled)
	assert.Contains(t, s.Console.String(), "File src/styles/main.scss was")

	// --- Act & Assert: page change ---
	testutil.WriteTree(t, s.Dir, map[string]string{"src/html/index.html": "<html><body>v2</body></html>"})
	msg = nextReload(t, events, "/index.html")
	assert.Equal(t, false, msg["css_only"])
}
