// cmd/api-server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"rm-copilot/internal/ai"
	"rm-copilot/internal/common/config"
	"rm-copilot/internal/common/database"
	"rm-copilot/internal/common/logger"
	"rm-copilot/internal/common/observability"
	"rm-copilot/internal/engine/assess"
	"rm-copilot/internal/engine/policy"
	"rm-copilot/internal/server"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting RM copilot API server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("Failed to load configuration", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log = logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name, cfg.Tracing.JaegerEndpoint)
	defer obs.Shutdown()

	pol, err := policy.Load(cfg.Policy.Path)
	if err != nil {
		zapLog.Fatal("Failed to load bank policy", zap.Error(err), zap.String("path", cfg.Policy.Path))
	}
	zapLog.Info("Bank policy loaded",
		zap.String("path", cfg.Policy.Path),
		zap.Float64("eligibility_positive_min", pol.Eligibility.PositiveMin),
		zap.Int("weak_negative_count", pol.Readiness.WeakNegativeCount),
	)

	// Redis backs the shared rate limiter; the server falls back to a
	// per-process limiter when it is not configured.
	var redis *database.RedisClient
	if cfg.Database.Redis.Address != "" {
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			zapLog.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redis.Close()

		if err := redis.Ping(context.Background()); err != nil {
			zapLog.Warn("Redis unreachable at startup, rate limiting will fail open", zap.Error(err))
		}
	}

	var provider ai.Provider
	if cfg.AI.APIKey != "" {
		p, err := ai.NewOpenAIProvider(cfg.AI)
		if err != nil {
			zapLog.Fatal("Failed to create AI provider", zap.Error(err))
		}
		provider = p
		zapLog.Info("AI provider configured",
			zap.String("provider", cfg.AI.Provider),
			zap.String("model", cfg.AI.Model),
		)
	} else {
		zapLog.Warn("No AI API key configured, /ai endpoints will return 503")
	}

	svc := assess.NewService(pol, obs, log)
	gateway := ai.NewGateway(provider, cfg.AI, obs, log)
	srv := server.New(cfg, svc, gateway, redis, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
		zapLog.Error("HTTP server stopped with error", zap.Error(err))
		os.Exit(1)
	}

	zapLog.Info("Shutdown complete")
}
