// Command paiban-server runs the roster engine's HTTP service: the
// solve/feasibility/job API plus a background worker pool draining the
// async job queue.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/paiban/roster/internal/config"
	"github.com/paiban/roster/internal/database"
	"github.com/paiban/roster/internal/handler"
	"github.com/paiban/roster/internal/jobqueue"
	"github.com/paiban/roster/internal/ratiocache"
	"github.com/paiban/roster/internal/webhook"
	"github.com/paiban/roster/pkg/logger"
	"github.com/paiban/roster/pkg/roster"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	logger.Init(logger.Config{
		Level:  os.Getenv("APP_LOG_LEVEL"),
		Format: "console",
	})

	fmt.Printf("paiban roster engine v%s\n", Version)
	fmt.Printf("build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		logger.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	queue := jobqueue.NewQueue(redisClient, "paiban:roster", time.Duration(cfg.Roster.JobResultTTLSeconds)*time.Second)

	cachePath := os.Getenv("RATIO_CACHE_PATH")
	if cachePath == "" {
		cachePath = "ratio_cache.json"
	}
	cache, err := ratiocache.Open(cachePath)
	if err != nil {
		logger.Warn().Err(err).Msg("ratio cache unavailable, continuing without it")
	}

	notifier := webhook.New(webhook.DefaultConfig())

	var auditDB *database.DB
	if os.Getenv("DB_HOST") != "" {
		auditDB, err = database.New(&cfg.Database)
		if err != nil {
			logger.Warn().Err(err).Msg("audit database unavailable, continuing without it")
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := auditDB.EnsureSchema(ctx); err != nil {
				logger.Warn().Err(err).Msg("failed to ensure job_audit schema")
			}
			cancel()
		}
	}

	deps := handler.Deps{
		Queue:    queue,
		Cache:    cache,
		Notifier: notifier,
		AuditDB:  auditDB,
		Config:   roster.DefaultConfig(),
	}
	deps.Config.OptimizerConfig.MaxTime = time.Duration(cfg.Roster.SolverRunTimeMaxSeconds) * time.Second
	deps.Config.RatioCache = cache

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go handler.RunWorker(workerCtx, deps)

	router := handler.NewRouter(deps)
	router.HandleFunc("/version", versionHandler)

	wrapped := requestIDMiddleware(rateLimitMiddleware(cfg.API.RateLimit, corsMiddleware(loggingMiddleware(router))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      wrapped,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		os.Exit(1)
	}
	if auditDB != nil {
		auditDB.Close()
	}

	logger.Info().Msg("server shut down")
}

func versionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"version":"%s","buildTime":"%s","gitCommit":"%s"}`, Version, BuildTime, GitCommit)
}

type requestIDKey struct{}

// requestIDMiddleware stamps every request with an X-Request-ID,
// generating one when the caller didn't supply it.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs one line per request with its status and
// duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID, _ := r.Context().Value(requestIDKey{}).(string)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// rateLimiter is a simple token bucket, one per process.
type rateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64
	lastRefill time.Time
	mu         sync.Mutex
}

func newRateLimiter(requestsPerSecond float64) *rateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 100
	}
	return &rateLimiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond * 2,
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

func (rl *rateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// rateLimitMiddleware enforces a process-wide requests-per-second cap.
func rateLimitMiddleware(requestsPerSecond int, next http.Handler) http.Handler {
	limiter := newRateLimiter(float64(requestsPerSecond))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   true,
				"code":    "RATE_LIMITED",
				"message": "too many requests, please retry later",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware allows cross-origin API access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
