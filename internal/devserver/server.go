// Package devserver serves the build directory over HTTP with live reload.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
	"github.com/specialistvlad/sitegridgo/internal/livereload"
)

// Server is the local development server.
type Server struct {
	root string
	cfg  config.ServerConfig
	hub  *livereload.Hub

	mu         sync.Mutex
	httpServer *http.Server
	url        string
}

// New creates a server for root. It does not listen until Start.
func New(root string, cfg config.ServerConfig, hub *livereload.Hub) *Server {
	return &Server{root: root, cfg: cfg, hub: hub}
}

// Handler returns the full request router.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler(ctx))
	if s.hub != nil {
		mux.Handle("/socket.io/", s.hub.Handler())
		mux.Handle(livereload.ScriptPath, livereload.ScriptHandler())
	}
	mux.Handle("/", s.staticHandler(ctx))
	return mux
}

// healthHandler answers liveness probes.
func (s *Server) healthHandler(ctx context.Context) http.HandlerFunc {
	logger := ctxlog.FromContext(ctx)
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	}
}

// staticHandler serves files from root. HTML documents get the live-reload
// client injected; nothing is cached by the browser.
func (s *Server) staticHandler(ctx context.Context) http.Handler {
	logger := ctxlog.FromContext(ctx)
	files := http.FileServer(http.Dir(s.root))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		urlPath := path.Clean("/" + r.URL.Path)
		file := filepath.Join(s.root, filepath.FromSlash(urlPath))
		if strings.HasSuffix(r.URL.Path, "/") {
			file = filepath.Join(file, "index.html")
		}

		if s.hub != nil && isHTML(file) {
			data, err := os.ReadFile(file)
			if err == nil {
				logger.Debug("Serving HTML with live reload.", "path", urlPath)
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				_, _ = w.Write(livereload.Inject(data))
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

func isHTML(file string) bool {
	ext := strings.ToLower(filepath.Ext(file))
	return ext == ".html" || ext == ".htm"
}

// Start listens on the configured address and serves in the background. Port
// 0 picks a free port; URL reports the actual address.
func (s *Server) Start(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer != nil {
		return errors.New("dev server already started")
	}

	host := s.cfg.Host
	if host == "" {
		host = "localhost"
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(s.cfg.Port)))
	if err != nil {
		return fmt.Errorf("dev server failed to listen: %w", err)
	}

	port := ln.Addr().(*net.TCPAddr).Port
	s.url = fmt.Sprintf("http://%s/", net.JoinHostPort(host, strconv.Itoa(port)))
	s.httpServer = &http.Server{
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srv := s.httpServer
	go func() {
		logger.Info("🌐 Dev server starting", "url", s.URL(), "root", s.root)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Dev server failed unexpectedly", "error", err)
		}
	}()
	return nil
}

// URL returns the base URL once the server is started.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Running reports whether Start succeeded and Shutdown was not called.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.httpServer != nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if s.hub != nil {
		s.hub.Close()
	}
	if srv == nil {
		logger.Debug("Dev server was not running.")
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	logger.Info("🌐 Shutting down dev server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Dev server shutdown failed", "error", err)
		return err
	}
	return nil
}
