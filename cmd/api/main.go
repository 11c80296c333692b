// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/LucasDeWerk/vstcount/internal/adapters/db"
	"github.com/LucasDeWerk/vstcount/internal/adapters/erp"
	redis_a "github.com/LucasDeWerk/vstcount/internal/adapters/redis_adapter"
	"github.com/LucasDeWerk/vstcount/internal/adapters/vision"
	"github.com/LucasDeWerk/vstcount/internal/core/ports"
	"github.com/LucasDeWerk/vstcount/internal/core/services"
	"github.com/LucasDeWerk/vstcount/internal/handlers"
	"github.com/LucasDeWerk/vstcount/internal/handlers/middleware"
	"github.com/LucasDeWerk/vstcount/internal/pkg/config"
	"github.com/LucasDeWerk/vstcount/internal/pkg/logger"
	"github.com/LucasDeWerk/vstcount/internal/workers"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting inventory count reconciliation service",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	// Load configuration
	slogger.Info("loading configuration")
	cfg, err := config.Load(slogger.Logger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	deps, err := initializeDependencies(ctx, cfg, slogger.Logger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	// Run database migrations if enabled
	if cfg.App.Environment != "production" {
		if err := runMigrations(ctx, cfg, slogger.Logger); err != nil {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
			// Don't exit in development, just warn
		}
	}

	server := setupHTTPServer(cfg, deps, slogger.Logger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
		)
		serverErrors <- server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		if deps.asynqClient != nil {
			if err := deps.asynqClient.Close(); err != nil {
				slogger.Error("failed to close Asynq client", slog.String("error", err.Error()))
			}
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       *db.Database
	redisClient    *redis.Client
	sessionCache   ports.CacheRepository
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	countService   *services.CountService
	countHandler   *handlers.CountHandler
	journalHandler *handlers.JournalHandler
	healthHandler  *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	// Initialize database connection
	slogger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, slogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	// Initialize Redis client
	slogger.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient

	// Session snapshots live in Redis so a second device or an app restart
	// can resume a count without refetching the ERP product list.
	deps.sessionCache = redis_a.NewCache(redisClient, cfg.Redis.SessionTTL, slogger)

	// Initialize Asynq client for evidence archiving
	slogger.Info("initializing Asynq client")

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	asynqClient := asynq.NewClient(asynqRedisOpt)
	deps.asynqClient = asynqClient

	asynqInspector := asynq.NewInspector(asynqRedisOpt)
	deps.asynqInspector = asynqInspector

	// ERP bearer token comes from Secrets Manager in production and from
	// the environment everywhere else.
	tokens, err := config.NewERPTokenSource(cfg, slogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ERP token source: %w", err)
	}

	visionClient := vision.NewClient(vision.Config{
		BaseURL:       cfg.Vision.BaseURL,
		DetectTimeout: cfg.Vision.DetectTimeout,
		ProbeTimeout:  cfg.Vision.ProbeTimeout,
	}, tokens, slogger)

	erpClient := erp.NewClient(erp.Config{
		BaseURL:       cfg.ERP.BaseURL,
		SubmitTimeout: cfg.ERP.Timeout,
	}, tokens, slogger)

	journalRepo := db.NewJournalRepository(database, slogger)
	archiver := workers.NewEnqueuer(asynqClient, slogger)

	deps.countService = services.NewCountService(
		visionClient,
		erpClient,
		erpClient,
		journalRepo,
		deps.sessionCache,
		archiver,
		cfg.App.TempDir,
		slogger,
	)

	deps.countHandler = handlers.NewCountHandler(deps.countService, slogger)
	deps.journalHandler = handlers.NewJournalHandler(journalRepo, slogger)
	deps.healthHandler = handlers.NewHealthHandler(
		database,
		redisClient,
		asynqInspector,
		visionClient,
		cfg,
		slogger,
	)

	slogger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, slogger *slog.Logger) *http.Server {
	mux := http.NewServeMux()

	// Setup middleware chain
	var handler http.Handler = mux

	// Apply middleware in reverse order (innermost first)
	if cfg.App.Environment != "test" {
		handler = middleware.RequestID(handler)
		handler = middleware.Logger(logger.NewLogger(&logger.LogConfig{
			Level:          cfg.App.LogLevel,
			Format:         cfg.App.LogFormat,
			Environment:    cfg.App.Environment,
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
		}))(handler)
		handler = middleware.Recovery(slogger)(handler)
	}

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	registerRoutes(mux, deps, cfg)

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slogger.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies, cfg *config.Config) {
	apiV1 := "/api/v1"

	// Health and readiness endpoints
	if cfg.Server.EnableHealthCheck {
		mux.HandleFunc("GET /health", deps.healthHandler.Health)
		mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
		mux.HandleFunc("GET "+apiV1+"/health", deps.healthHandler.Health)
	}

	// Count session endpoints
	mux.HandleFunc("POST "+apiV1+"/count/sessions", deps.countHandler.OpenSession)
	mux.HandleFunc("GET "+apiV1+"/count/sessions/{id}/items", deps.countHandler.ListItems)
	mux.HandleFunc("POST "+apiV1+"/count/sessions/{id}/attempts", deps.countHandler.BeginAttempt)
	mux.HandleFunc("POST "+apiV1+"/count/sessions/{id}/items/{productId}/manual", deps.countHandler.SubmitManual)

	// Counting attempt endpoints
	mux.HandleFunc("GET "+apiV1+"/count/attempts/{attemptId}", deps.countHandler.GetAttempt)
	mux.HandleFunc("POST "+apiV1+"/count/attempts/{attemptId}/detect", deps.countHandler.Detect)
	mux.HandleFunc("POST "+apiV1+"/count/attempts/{attemptId}/adjustments", deps.countHandler.Adjust)
	mux.HandleFunc("DELETE "+apiV1+"/count/attempts/{attemptId}", deps.countHandler.Cancel)
	mux.HandleFunc("POST "+apiV1+"/count/attempts/{attemptId}/confirm", deps.countHandler.Confirm)

	// Count journal endpoints
	mux.HandleFunc("GET "+apiV1+"/count/journal", deps.journalHandler.List)

	// pprof endpoints (development only)
	if cfg.Server.EnablePprof && cfg.IsDevelopment() {
		mux.HandleFunc("GET /debug/pprof/", http.HandlerFunc(http.DefaultServeMux.ServeHTTP))
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, slogger *slog.Logger) error {
	slogger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, slogger, 3)
}
