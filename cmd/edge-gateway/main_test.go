package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dividendspro/edge-gateway/internal/testutil"
	"github.com/dividendspro/edge-gateway/pkg/cache"
	"github.com/dividendspro/edge-gateway/pkg/config"
	"github.com/dividendspro/edge-gateway/pkg/gateway"
	"github.com/dividendspro/edge-gateway/pkg/kv"
	"github.com/dividendspro/edge-gateway/pkg/proxy"
	"github.com/dividendspro/edge-gateway/pkg/ratelimit"
	"github.com/dividendspro/edge-gateway/pkg/server"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Failed to start Redis container: %v", err)
	}

	host, err := redisC.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisC.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		redisC.Terminate(ctx)
	}

	return redisClient, cleanup
}

// buildStack wires the full gateway against a mock origin and real Redis.
func buildStack(origin *testutil.MockOrigin, redisClient *redis.Client) http.Handler {
	logger := zerolog.Nop()

	cfg := config.Default()
	cfg.OriginBaseURL = origin.URL()
	cfg.RateLimits = map[string]int{"/api/community/chat/send": 3}
	cfg.CacheRules = map[string]config.CacheRule{
		"/api/market/prices": {TTLSeconds: 120, SWRSeconds: 600},
	}

	store := kv.NewRedisStore(redisClient)
	limiter := ratelimit.New(store, cfg.RateLimits, cfg.DefaultRateLimit, logger)
	cacheManager := cache.NewManager(store)
	forwarder := proxy.New(cfg.OriginBaseURL, cfg.UpstreamTimeout(), logger)
	gw := gateway.New(cfg, limiter, cacheManager, forwarder, logger)

	return server.New(0, gw, logger).Router
}

func TestEndToEnd_RateLimitThroughRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	redisClient, cleanup := setupTestRedis(t)
	defer cleanup()

	origin := testutil.NewMockOrigin()
	defer origin.Close()

	handler := buildStack(origin, redisClient)

	for i := 1; i <= 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/community/chat/send", nil)
		req.Header.Set("Cf-Connecting-Ip", "203.0.113.7")
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Request %d status = %d, want 200", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/community/chat/send", nil)
	req.Header.Set("Cf-Connecting-Ip", "203.0.113.7")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Request 4 status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header on 429")
	}
}

func TestEndToEnd_CacheThroughRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	redisClient, cleanup := setupTestRedis(t)
	defer cleanup()

	origin := testutil.NewMockOrigin()
	defer origin.Close()

	origin.SetResponse("/api/market/prices", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"prices":[42]}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	})

	handler := buildStack(origin, redisClient)

	// First request fills the cache
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/market/prices", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-Cache-Status"); got != "MISS" {
		t.Errorf("X-Cache-Status = %q, want MISS", got)
	}

	// Wait for the async cache write to land in Redis
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := redisClient.Get(context.Background(),
			cache.Key("/api/market/prices", "")).Result(); err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Second request is served from Redis
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/market/prices", nil))
	if got := rec.Header().Get("X-Cache-Status"); got != "HIT" {
		t.Errorf("X-Cache-Status = %q, want HIT", got)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != `{"prices":[42]}` {
		t.Errorf("Body = %q, want cached body", body)
	}
	if origin.Requests() != 1 {
		t.Errorf("Origin requests = %d, want 1", origin.Requests())
	}
}
