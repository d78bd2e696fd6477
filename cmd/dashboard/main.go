package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/config"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/format"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/handler"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/infra/cache"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/infra/fixtures"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/infra/observability"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/infra/resilience"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/infra/sqlite"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/infra/supabase"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/port"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/render"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("locale", cfg.Locale),
		zap.String("data_source", cfg.DataSource),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("view_ttl", cfg.ViewTTL),
		zap.Duration("redirect_delay", cfg.RedirectDelay),
		zap.Bool("auth_required", cfg.AuthRequired),
		zap.Bool("tracing_enabled", cfg.TracingEnabled),
	)

	// --- Tracing ---
	endpoint := ""
	if cfg.TracingEnabled {
		endpoint = cfg.OTLPEndpoint
	}
	shutdown, err := observability.InitTracer(context.Background(), endpoint, "finance-dashboard")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Data source ---
	source, closeSource, err := openSource(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open data source", zap.String("data_source", cfg.DataSource), zap.Error(err))
	}
	defer closeSource()

	// --- Caches ---
	summaryCache := cache.New[any](cfg.CacheTTL)
	defer summaryCache.Close()
	viewStore := cache.New[domain.ViewState](cfg.ViewTTL)
	defer viewStore.Close()

	// --- Services ---
	financeSvc := service.NewFinanceService(source, summaryCache, metrics, logger)
	viewSvc := service.NewViewSessions(viewStore, metrics, logger)
	redirectSvc := service.NewAuthRedirect(cfg.RedirectDelay, cfg.RedirectPath, metrics, logger)
	sessions := service.NewSessionVerifier(cfg.JWTSecret)
	if !sessions.Enabled() {
		logger.Warn("JWT_SECRET not set, session hand-off on /auth/callback disabled")
	}

	formatter := format.New(cfg.Locale)
	presenter := handler.NewPresenter(formatter, render.New(formatter.Currency))

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Finance:   financeSvc,
		Views:     viewSvc,
		Redirect:  redirectSvc,
		Sessions:  sessions,
		Presenter: presenter,
	}, handler.Options{
		AuthRequired:  cfg.AuthRequired,
		DevTools:      cfg.DevTools,
		SecureCookies: cfg.SecureCookies,
	}, metrics, logger)

	// --- Server ---
	// No WriteTimeout: /auth/callback/events is a stream.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}

// openSource builds the configured FinancialSource and its cleanup func.
func openSource(cfg *config.Config, logger *zap.Logger) (port.FinancialSource, func(), error) {
	switch cfg.DataSource {
	case config.SourceSQLite:
		store, err := sqlite.Open(cfg.SQLiteDBPath, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using SQLite as data backend", zap.String("path", cfg.SQLiteDBPath))
		return store, func() { _ = store.Close() }, nil

	case config.SourceSupabase:
		resilienceCfg := resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxConcurrency: cfg.MaxConcurrency,
		}
		cb := resilience.NewCircuitBreaker("supabase", logger, supabase.IsExpected)
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

		logger.Info("using Supabase as data backend", zap.String("supabase_url", cfg.SupabaseURL))
		client := supabase.NewClient(
			httpClient,
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			cb,
			resilienceCfg,
			logger,
		)
		return client, func() {}, nil

	default:
		logger.Info("using compiled-in data")
		return fixtures.NewSource(), func() {}, nil
	}
}
