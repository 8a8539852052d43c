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

	"github.com/archivex/facetd/internal/compile"
	"github.com/archivex/facetd/internal/config"
	dbRedis "github.com/archivex/facetd/internal/db/redis"
	"github.com/archivex/facetd/internal/domain/facet"
	"github.com/archivex/facetd/internal/es"
	logpkg "github.com/archivex/facetd/internal/logger"
	"github.com/archivex/facetd/internal/metrics"
	searchrepo "github.com/archivex/facetd/internal/repository/search"
	"github.com/archivex/facetd/internal/repository/suggestcache"
	chiTransport "github.com/archivex/facetd/internal/transport/chi"
	healthuc "github.com/archivex/facetd/internal/usecase/health"
	searchuc "github.com/archivex/facetd/internal/usecase/search"
	suggestuc "github.com/archivex/facetd/internal/usecase/suggest"
	"github.com/archivex/facetd/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := buildLogger(env, cfg.Logging)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting facetd API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("engine", cfg.Engine.BaseURL),
		zap.String("index", cfg.Engine.Index),
		zap.Int("facets", len(cfg.Facets)),
	)

	registry, err := buildRegistry(cfg.Facets)
	if err != nil {
		logger.Fatal("Failed to build facet registry", zap.Error(err))
	}

	engine, err := es.NewClient(es.Config{
		BaseURL: cfg.Engine.BaseURL,
		Index:   cfg.Engine.Index,
		Timeout: time.Duration(cfg.Engine.TimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create engine client", zap.Error(err))
	}

	ctx := context.Background()
	if err := engine.WaitForReady(ctx, time.Duration(cfg.Engine.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Search engine not ready", zap.Error(err))
	}
	logger.Info("Connected to search engine")

	// Register suggestion metrics explicitly (no init())
	metrics.RegisterSuggestMetrics()

	compiler := compile.New(registry)
	repo := searchrepo.New(engine)

	searchSvc := searchuc.New(compiler, repo).
		WithPagination(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)

	var suggestSvc suggester = suggestuc.New(compiler, repo)

	// Suggestion cache — optional, suggestions work without it
	var cachePinger healthuc.CachePinger
	if cfg.Cache.Enabled() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to suggestion cache", zap.Strings("addrs", cfg.Cache.Addrs))

		suggestSvc = suggestcache.New(
			suggestSvc, store,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.SuggestCacheTotal, logger,
		)
		cachePinger = store
	}

	healthSvc := healthuc.New(engine, cachePinger)

	server := chiTransport.NewServer(
		searchSvc, suggestSvc, healthSvc, registry, cfg.Export.Columns, logger,
	)

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

// suggester matches the transport's suggestion contract so the cache
// decorator can be layered in conditionally.
type suggester interface {
	Suggest(ctx context.Context, state facet.State, facetName, typed string, limit int) ([]facet.Suggestion, error)
}

// buildLogger selects console or file-teed output from config.
func buildLogger(env string, cfg config.LoggingConfig) (*zap.Logger, error) {
	if cfg.File == "" {
		return logpkg.NewLogger(env, cfg.Level)
	}
	return logpkg.NewFileLogger(env, logpkg.FileOutput{
		Path:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
	}, cfg.Level)
}

// buildRegistry converts configured facets into domain specs.
func buildRegistry(facets map[string]config.FacetConfig) (facet.Registry, error) {
	specs := make(map[string]facet.Spec, len(facets))
	for name, fc := range facets {
		spec, err := facet.NewSpec(fc.Field, facet.Kind(fc.Kind), facet.Order(fc.Order), extraClause(fc.Extra))
		if err != nil {
			return facet.Registry{}, fmt.Errorf("facet %q: %w", name, err)
		}
		specs[name] = spec
	}
	return facet.NewRegistry(specs), nil
}

// extraClause converts a configured narrowing clause to its engine form.
func extraClause(extra *config.ExtraClause) es.Clause {
	switch {
	case extra == nil:
		return nil
	case extra.Term != nil:
		return es.Term{Field: extra.Term.Field, Value: extra.Term.Value}
	case extra.Range != nil:
		return es.Range{
			Field:  extra.Range.Field,
			GTE:    extra.Range.GTE,
			LTE:    extra.Range.LTE,
			Format: extra.Range.Format,
		}
	default:
		return nil
	}
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
