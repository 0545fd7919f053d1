package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the default Prometheus registry while a replay runs, so long captures
// can be watched from outside.
type Server struct {
	listen string
	path   string
	http   *http.Server
	ln     net.Listener
}

func NewServer(listen, path string) *Server {
	if path == "" {
		path = "/metrics"
	}
	return &Server{listen: listen, path: path}
}

// Handler serves the metrics path only.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.path, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))
	return mux
}

// Start binds synchronously so a busy port fails the command, then serves in the
// background.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("metrics listen on %s: %w", s.listen, err)
	}
	s.ln = ln
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	slog.Info("metrics endpoint up", "addr", ln.Addr().String(), "path", s.path)

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics endpoint failed", "error", err)
		}
	}()
	return nil
}

// Addr is the bound address after Start, e.g. with port 0 resolved.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.listen
}

func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics shutdown: %w", err)
	}
	slog.Debug("metrics endpoint stopped")
	return nil
}
