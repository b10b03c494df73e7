// internal/server/server.go
package server

import (
	"context"
	"net/http"

	"rm-copilot/internal/ai"
	"rm-copilot/internal/common/config"
	"rm-copilot/internal/common/database"
	"rm-copilot/internal/common/logger"
	"rm-copilot/internal/engine/assess"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the assessment engine and the AI gateway over HTTP.
// Every request is handled independently; the only suspending operation is
// the model round trip inside the gateway.
type Server struct {
	cfg     *config.Config
	assess  *assess.Service
	gateway *ai.Gateway
	redis   *database.RedisClient
	limiter Limiter
	logger  logger.Logger
}

func New(cfg *config.Config, svc *assess.Service, gateway *ai.Gateway, redis *database.RedisClient, log logger.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		assess:  svc,
		gateway: gateway,
		redis:   redis,
		logger:  log,
	}
	s.limiter = s.buildLimiter()
	return s
}

// Handler assembles the route table and the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/assess", s.handleAssess)
	mux.HandleFunc("/ai/explain", s.handleExplain)
	mux.HandleFunc("/ai/qa", s.handleQA)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	var h http.Handler = mux
	h = s.rateLimitMiddleware(h)
	h = s.authMiddleware(h)
	h = s.corsMiddleware(h)
	h = s.loggingMiddleware(h)
	h = s.requestIDMiddleware(h)
	h = s.recoveryMiddleware(h)
	return h
}

// ListenAndServe runs the HTTP listener until ctx is cancelled, then drains
// in-flight requests within the configured shutdown window.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Address,
		Handler:      s.Handler(),
		ReadTimeout:  config.GetDuration(s.cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(s.cfg.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", map[string]interface{}{
			"address": s.cfg.Server.Address,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			config.GetDuration(s.cfg.Server.ShutdownTimeout))
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
