package serve

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/raywasm/internal/config"
	"git.home.luguber.info/inful/raywasm/internal/foundation/errors"
	"git.home.luguber.info/inful/raywasm/internal/logfields"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "localhost:8080"

const shutdownTimeout = 5 * time.Second

// contentTypes overrides the platform MIME table for the files emcc produces.
var contentTypes = map[string]string{
	".wasm": "application/wasm",
	".js":   "text/javascript; charset=utf-8",
	".html": "text/html; charset=utf-8",
	".data": "application/octet-stream",
}

// Server serves a directory of build outputs.
type Server struct {
	dir     string
	addr    string
	logger  *slog.Logger
	metrics http.Handler
}

// New creates a Server for dir listening on addr.
func New(dir, addr string) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{dir: dir, addr: addr, logger: slog.Default()}
}

// WithLogger sets the logger.
func (s *Server) WithLogger(l *slog.Logger) *Server {
	s.logger = l
	return s
}

// WithMetrics mounts h on /metrics.
func (s *Server) WithMetrics(h http.Handler) *Server {
	s.metrics = h
	return s
}

// Handler returns the HTTP handler tree.
func (s *Server) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.dir))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			if _, err := os.Stat(s.artifact()); err == nil {
				http.Redirect(w, r, "/"+config.ArtifactFile, http.StatusFound)
				return
			}
		}
		if ct, ok := contentTypes[path.Ext(r.URL.Path)]; ok {
			w.Header().Set("Content-Type", ct)
		}
		w.Header().Set("Cache-Control", "no-store")
		files.ServeHTTP(w, r)
	})
	return chain(s.logger, mux)
}

func (s *Server) artifact() string {
	return filepath.Join(s.dir, config.ArtifactFile)
}

// ListenAndServe binds the address and serves until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if st, err := os.Stat(s.dir); err != nil || !st.IsDir() {
		return errors.NotFoundError("output directory not found or not a directory").
			WithContext("path", s.dir).
			Build()
	}

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to bind preview address").
			WithContext("addr", s.addr).
			Build()
	}
	return s.Serve(ctx, ln)
}

// Serve serves on an existing listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("Preview server listening",
		logfields.Addr(ln.Addr().String()),
		slog.String("url", "http://"+ln.Addr().String()+"/"+config.ArtifactFile))

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.WrapError(err, errors.CategoryRuntime, "preview server failed").Build()
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "preview server shutdown failed").Build()
	}
	return nil
}
