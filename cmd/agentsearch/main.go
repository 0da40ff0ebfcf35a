package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/agentauri/api.8004.dev-sub001/internal/config"
	dbRedis "github.com/agentauri/api.8004.dev-sub001/internal/db/redis"
	logpkg "github.com/agentauri/api.8004.dev-sub001/internal/logger"
	"github.com/agentauri/api.8004.dev-sub001/internal/metrics"
	classificationrepo "github.com/agentauri/api.8004.dev-sub001/internal/repository/classification"
	directoryrepo "github.com/agentauri/api.8004.dev-sub001/internal/repository/directory"
	lexicalrepo "github.com/agentauri/api.8004.dev-sub001/internal/repository/lexical"
	reputationrepo "github.com/agentauri/api.8004.dev-sub001/internal/repository/reputation"
	"github.com/agentauri/api.8004.dev-sub001/internal/repository/respcache"
	vectorrepo "github.com/agentauri/api.8004.dev-sub001/internal/repository/vector"
	chiTransport "github.com/agentauri/api.8004.dev-sub001/internal/transport/chi"
	enrichuc "github.com/agentauri/api.8004.dev-sub001/internal/usecase/enrich"
	healthuc "github.com/agentauri/api.8004.dev-sub001/internal/usecase/health"
	searchuc "github.com/agentauri/api.8004.dev-sub001/internal/usecase/search"
	"github.com/agentauri/api.8004.dev-sub001/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting agent search API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("backend_url", cfg.Backend.BaseURL),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Backends
	vectorClient, err := vectorrepo.NewClient(vectorrepo.Config{
		BaseURL:  cfg.Backend.BaseURL,
		APIKey:   cfg.Backend.APIKey,
		Timeout:  time.Duration(cfg.Backend.TimeoutSec) * time.Second,
		MinScore: cfg.Backend.MinScore,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create vector backend client", zap.Error(err))
	}

	// Repositories
	directoryRepo := directoryrepo.New(store)
	lexicalRepo := lexicalrepo.New(directoryRepo)
	classificationRepo := classificationrepo.New(store)
	reputationRepo := reputationrepo.New(store)

	// Response cache — disabled when ttl is zero
	var responseCache searchuc.ResponseCache
	if cfg.Cache.TTLSec > 0 {
		responseCache = respcache.New(
			store,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.ResponseCacheTotal,
			logger,
		)
	}

	// Usecases — composition root
	enrichSvc := enrichuc.NewService(
		directoryRepo, classificationRepo, reputationRepo,
		enrichuc.Config{
			FanOut:        cfg.Enrich.FanOut,
			DetailTimeout: time.Duration(cfg.Enrich.DetailTimeoutMS) * time.Millisecond,
			PassCacheTTL:  time.Duration(cfg.Enrich.PassCacheTTLSec) * time.Second,
		},
		logger,
	)
	searchSvc := searchuc.NewService(
		vectorClient, lexicalRepo, enrichSvc, responseCache,
		searchuc.Config{
			DefaultPageSize:    cfg.Search.DefaultPageSize,
			MaxPageSize:        cfg.Search.MaxPageSize,
			OverfetchCap:       cfg.Search.OverfetchCap,
			FallbackMultiplier: cfg.Search.FallbackMultiplier,
		},
		logger,
	)
	healthSvc := healthuc.New(store, vectorClient)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiTransport.RequestIDMiddleware)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates the request id.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiTransport.RequestIDFromContext(r.Context())

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
