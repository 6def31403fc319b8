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

	"github.com/deshdata/voterquery/internal/assembler"
	"github.com/deshdata/voterquery/internal/classifier"
	"github.com/deshdata/voterquery/internal/config"
	"github.com/deshdata/voterquery/internal/index"
	memoryIndex "github.com/deshdata/voterquery/internal/index/memory"
	redisIndex "github.com/deshdata/voterquery/internal/index/redis"
	"github.com/deshdata/voterquery/internal/ingest"
	logpkg "github.com/deshdata/voterquery/internal/logger"
	"github.com/deshdata/voterquery/internal/matcher"
	"github.com/deshdata/voterquery/internal/metrics"
	"github.com/deshdata/voterquery/internal/registry"
	"github.com/deshdata/voterquery/internal/retriever"
	chiTransport "github.com/deshdata/voterquery/internal/transport/chi"
	openaiTransport "github.com/deshdata/voterquery/internal/transport/openai"
	askuc "github.com/deshdata/voterquery/internal/usecase/ask"
	healthuc "github.com/deshdata/voterquery/internal/usecase/health"
	reloaduc "github.com/deshdata/voterquery/internal/usecase/reload"
	statsuc "github.com/deshdata/voterquery/internal/usecase/stats"
	"github.com/deshdata/voterquery/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting voterquery API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index_driver", cfg.Index.Driver),
		zap.String("dump_path", cfg.Dataset.DumpPath),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterProviderMetrics()
	metrics.RegisterQueryMetrics()
	metrics.RegisterHTTPMetrics()

	ctx := context.Background()

	// Create vector index based on driver
	var vectors index.VectorIndex
	var indexPinger healthuc.IndexPinger
	switch cfg.Index.Driver {
	case "redis":
		idx, err := redisIndex.New(redisIndex.Config{
			Addrs:           cfg.Index.Addrs,
			Username:        cfg.Index.Username,
			Password:        cfg.Index.Password,
			KeyPrefix:       cfg.Index.KeyPrefix,
			VectorDim:       cfg.Provider.Dimensions,
			HNSWM:           cfg.Index.HNSWM,
			HNSWEFConstruct: cfg.Index.HNSWEFConstruct,
			OpTimeout:       time.Duration(cfg.Index.OpTimeoutSec) * time.Second,
			MaxAttempts:     cfg.Index.Retry.MaxAttempts,
			InitialBackoff:  time.Duration(cfg.Index.Retry.InitialBackoffMs) * time.Millisecond,
			MaxBackoff:      time.Duration(cfg.Index.Retry.MaxBackoffMs) * time.Millisecond,
		})
		if err != nil {
			logger.Fatal("Failed to create redis vector index", zap.Error(err))
		}
		readiness := time.Duration(cfg.Index.ReadinessTimeout) * time.Second
		if err := idx.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Vector index backend not ready", zap.Error(err))
		}
		logger.Info("Connected to redis vector index", zap.Strings("addrs", cfg.Index.Addrs))
		vectors = idx
		indexPinger = idx
	case "memory":
		vectors = memoryIndex.New()
	default:
		logger.Fatal("Unknown index driver", zap.String("driver", cfg.Index.Driver))
	}
	defer vectors.Close()

	retry := openaiTransport.RetryConfig{
		MaxAttempts:    cfg.Provider.Retry.MaxAttempts,
		InitialBackoff: time.Duration(cfg.Provider.Retry.InitialBackoffMs) * time.Millisecond,
		MaxBackoff:     time.Duration(cfg.Provider.Retry.MaxBackoffMs) * time.Millisecond,
	}

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:  cfg.Provider.APIKey,
		BaseURL: cfg.Provider.BaseURL,
		Model:   cfg.Provider.EmbeddingModel,
		Timeout: time.Duration(cfg.Provider.EmbedTimeoutSec) * time.Second,
		Retry:   retry,
		Logger:  logger,
	})
	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Provider.APIKey,
		BaseURL:     cfg.Provider.BaseURL,
		Model:       cfg.Provider.ChatModel,
		Temperature: cfg.Provider.Temperature,
		Timeout:     time.Duration(cfg.Provider.ChatTimeoutSec) * time.Second,
		Retry:       retry,
		Logger:      logger,
	})
	logger.Info("Providers created",
		zap.String("embedding_model", cfg.Provider.EmbeddingModel),
		zap.String("chat_model", cfg.Provider.ChatModel),
		zap.Int("dimensions", cfg.Provider.Dimensions),
	)

	// Snapshot pipeline
	holder := registry.NewHolder()
	loader := ingest.NewLoader(logger, cfg.Dataset.MaxSkipRatio)
	reloadSvc := reloaduc.New(
		loader, holder, embedder, vectors,
		cfg.Dataset.DumpPath, cfg.Dataset.EmbedBatchSize, logger,
	)

	// Initial load. A failure here is not fatal: the server starts degraded
	// (503 on queries) and an admin reload can recover it.
	if n, err := reloadSvc.Reload(ctx); err != nil {
		logger.Error("Initial dataset load failed", zap.Error(err))
	} else {
		logger.Info("Initial dataset loaded", zap.Int("records", n))
	}

	// Query pipeline
	phonetics := matcher.New(cfg.Pipeline.PhoneticThreshold)
	retrieve := retriever.New(phonetics, embedder, vectors, cfg.Pipeline.TopK, cfg.Pipeline.MaxListSize)
	assemble := assembler.New(cfg.Pipeline.CharBudget, cfg.Pipeline.MaxListSize)

	// Use case services
	askSvc := askuc.New(holder, classifier.New(), retrieve, assemble, generator, logger)
	statsSvc := statsuc.New(holder)
	healthSvc := healthuc.New(holder, indexPinger, embedder)

	// Create chi server
	server := chiTransport.NewServer(askSvc, statsSvc, reloadSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

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

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
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
