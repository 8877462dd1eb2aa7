package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ayushi2910/video-streaming-platform/internal/config"
	"github.com/ayushi2910/video-streaming-platform/internal/metrics"
	"github.com/ayushi2910/video-streaming-platform/internal/relay"
)

const shutdownTimeout = 5 * time.Second

// Server runs the relay until its context is cancelled.
type Server struct {
	http    *http.Server
	hub     *relay.Hub
	metrics *metrics.Metrics
	conf    config.Server
}

// New creates a Server from a validated configuration.
func New(conf config.Server) *Server {
	var m *metrics.Metrics
	if conf.Metrics {
		m = metrics.New()
	}
	hub := relay.NewHub(m, slog.Default())

	return &Server{
		http: &http.Server{
			Addr:              conf.Addr,
			Handler:           NewHandler(hub, m, conf.AllowedOrigins),
			ReadHeaderTimeout: 5 * time.Second,
		},
		hub:     hub,
		metrics: m,
		conf:    conf,
	}
}

// Hub returns the relay hub served by s.
func (s *Server) Hub() *relay.Hub {
	return s.hub
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.metrics != nil {
		go s.metrics.SampleProcess(ctx, metrics.DefaultSampleInterval)
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.conf.TLS() {
			slog.Info("Starting signaling relay with TLS", "addr", s.conf.Addr)
			err = s.http.ListenAndServeTLS(s.conf.CertFile, s.conf.KeyFile)
		} else {
			slog.Info("Starting signaling relay", "addr", s.conf.Addr)
			err = s.http.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down signaling relay")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
