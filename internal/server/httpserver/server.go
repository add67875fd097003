package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/foxcodenine/iot-parking-console/internal/telemetry/logger"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	logger     logger.Logger
}

// New creates a new HTTP server.
func New(addr string, h http.Handler, l logger.Logger) *Server {
	if l == nil {
		l = logger.Discard()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
			ErrorLog:          slog.NewLogLogger(logger.Slog(l).Handler(), slog.LevelWarn),
		},
		logger: l,
	}
}

// SetTLSConfig serves TLS with c, whose certificates take precedence over
// the files passed to Serve.
func (s *Server) SetTLSConfig(c *tls.Config) {
	s.httpServer.TLSConfig = c
}

// Serve accepts connections on ln until Shutdown. TLS is used when a TLS
// config is set or both files are given. A clean shutdown returns nil.
func (s *Server) Serve(ln net.Listener, certFile, keyFile string) error {
	useTLS := s.httpServer.TLSConfig != nil || (certFile != "" && keyFile != "")
	s.logger.Info("http server listening", "addr", ln.Addr().String(), "tls", useTLS)

	var err error
	if useTLS {
		err = s.httpServer.ServeTLS(ln, certFile, keyFile)
	} else {
		err = s.httpServer.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ListenAndServe listens on the configured address and serves.
func (s *Server) ListenAndServe(certFile, keyFile string) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln, certFile, keyFile)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
