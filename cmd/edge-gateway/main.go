package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/dividendspro/edge-gateway/pkg/cache"
	"github.com/dividendspro/edge-gateway/pkg/config"
	"github.com/dividendspro/edge-gateway/pkg/gateway"
	"github.com/dividendspro/edge-gateway/pkg/kv"
	"github.com/dividendspro/edge-gateway/pkg/logging"
	"github.com/dividendspro/edge-gateway/pkg/proxy"
	"github.com/dividendspro/edge-gateway/pkg/ratelimit"
	"github.com/dividendspro/edge-gateway/pkg/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		logging.Setup(logging.DefaultConfig())
		fatalLogger := logging.NewLogger("main")
		fatalLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: os.Getenv("EDGE_LOG_PRETTY") == "true",
		Output: os.Stderr,
	})
	logger := logging.NewLogger("main")

	// The kv store is advisory (rate limiting, disposable caching): if Redis
	// is unreachable at startup the gateway still serves, failing open.
	var store kv.Store
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	redisStore := kv.NewRedisStore(redisClient)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisStore.Ping(ctx); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).
			Msg("Redis unreachable, rate limiting and caching degraded")
	} else {
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")
	}
	cancel()
	store = redisStore

	limiter := ratelimit.New(store, cfg.RateLimits, cfg.DefaultRateLimit, logging.NewLogger("ratelimit"))
	cacheManager := cache.NewManager(store)
	forwarder := proxy.New(cfg.OriginBaseURL, cfg.UpstreamTimeout(), logging.NewLogger("proxy"))

	gw := gateway.New(cfg, limiter, cacheManager, forwarder, logging.NewLogger("gateway"))
	srv := server.New(cfg.Port, gw, logger)

	logger.Info().
		Str("origin", cfg.OriginBaseURL).
		Int("port", cfg.Port).
		Int("default_rate_limit", cfg.DefaultRateLimit).
		Int("cache_rules", len(cfg.CacheRules)).
		Int("protected_prefixes", len(cfg.ProtectedPrefixes)).
		Msg("Edge gateway configured")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Shutdown failed")
		}
	}

	if err := redisClient.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close Redis client")
	}
}
