// Package livereload pushes build notifications to connected browsers over
// socket.io and injects the client into served HTML pages.
package livereload

import (
	"context"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

// ReloadEvent is the socket.io event name browsers listen for.
const ReloadEvent = "reload"

// Message is the payload of a reload event.
type Message struct {
	// Files are URL paths relative to the served root.
	Files []string `json:"files"`
	// CSSOnly means the page can swap stylesheets instead of reloading.
	CSSOnly bool `json:"css_only"`
}

// Hub owns the socket.io server and broadcasts reload events.
type Hub struct {
	root    string
	io      *socket.Server
	handler http.Handler
	clients atomic.Int32
	close   sync.Once
}

// NewHub creates a hub. Notified file paths are reported relative to root.
func NewHub(ctx context.Context, root string) *Hub {
	logger := ctxlog.FromContext(ctx)

	opts := socket.DefaultServerOptions()
	opts.SetServeClient(true)
	opts.SetCors(&types.Cors{Origin: "*", Credentials: true})

	h := &Hub{root: root, io: socket.NewServer(nil, nil)}
	h.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		n := h.clients.Add(1)
		logger.Debug("Live-reload client connected.", "sid", client.Id(), "clients", n)
		client.On("disconnect", func(...any) {
			n := h.clients.Add(-1)
			logger.Debug("Live-reload client disconnected.", "sid", client.Id(), "clients", n)
		})
	})
	h.handler = h.io.ServeHandler(opts)
	return h
}

// Handler serves the socket.io endpoint. Mount it at /socket.io/.
func (h *Hub) Handler() http.Handler {
	return h.handler
}

// Clients returns the number of connected browsers.
func (h *Hub) Clients() int {
	return int(h.clients.Load())
}

// Notify tells every connected browser that files changed. Stylesheet-only
// changes are marked so the page can refresh styles without reloading.
func (h *Hub) Notify(ctx context.Context, files ...string) {
	if len(files) == 0 {
		return
	}
	logger := ctxlog.FromContext(ctx)

	msg := Message{Files: make([]string, 0, len(files)), CSSOnly: true}
	for _, f := range files {
		u := h.urlPath(f)
		msg.Files = append(msg.Files, u)
		if ext := path.Ext(strings.TrimSuffix(u, ".map")); ext != ".css" {
			msg.CSSOnly = false
		}
	}

	payload := map[string]any{"files": msg.Files, "css_only": msg.CSSOnly}
	if err := h.io.Emit(ReloadEvent, payload); err != nil {
		logger.Warn("Failed to broadcast reload.", "error", err)
		return
	}
	logger.Debug("Broadcast reload.", "files", len(msg.Files), "css_only", msg.CSSOnly, "clients", h.Clients())
}

func (h *Hub) urlPath(file string) string {
	if h.root != "" && filepath.IsAbs(file) {
		if rel, err := filepath.Rel(h.root, file); err == nil && !strings.HasPrefix(rel, "..") {
			file = rel
		}
	}
	return "/" + strings.TrimPrefix(filepath.ToSlash(file), "/")
}

// Close disconnects every client and stops the socket.io server. Calls after
// the first are no-ops.
func (h *Hub) Close() {
	h.close.Do(func() { h.io.Close(nil) })
}
