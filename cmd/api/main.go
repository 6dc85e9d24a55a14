// Package main is the entrypoint for the Quoteboard API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/quoteboard/quoteboard/internal/cache"
	"github.com/quoteboard/quoteboard/internal/config"
	"github.com/quoteboard/quoteboard/internal/handler"
	"github.com/quoteboard/quoteboard/internal/metrics"
	"github.com/quoteboard/quoteboard/internal/middleware"
	"github.com/quoteboard/quoteboard/internal/repository"
	"github.com/quoteboard/quoteboard/internal/server"
	"github.com/quoteboard/quoteboard/internal/service"
)

func main() {
	ctx := context.Background()

	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Apply schema migrations before opening the pool.
	if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Error(
			"failed to run migrations",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize services
	metricsRecorder := metrics.NewNoop()
	access := service.NewAccess(repo)
	quoteService := service.NewQuoteService(repo, repo, repo, repo, access, cfg.MaxQuoteLength, metricsRecorder)
	userService := service.NewUserService(repo, repo, repo, access, metricsRecorder, logger)
	groupService := service.NewGroupService(repo, repo, repo, access, metricsRecorder)

	// Create the first admin account on an empty database.
	if cfg.AdminPassword != "" {
		created, err := userService.BootstrapAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminDisplayName)
		if err != nil {
			logger.Error("admin bootstrap failed", "error", err)
			os.Exit(1)
		}
		if created {
			logger.Info("bootstrap admin created", "username", cfg.AdminUsername)
		}
	}

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(userService, cacheClient, cfg.SessionTTL, cfg.IsProduction(), logger)
	quoteHandler := handler.NewQuoteHandler(quoteService, logger)
	userHandler := handler.NewUserHandler(userService, quoteService, logger)
	groupHandler := handler.NewGroupHandler(groupService, access, logger)

	r := setupRouter(h, healthHandler, authHandler, quoteHandler, userHandler, groupHandler, cacheClient, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	quoteHandler *handler.QuoteHandler,
	userHandler *handler.UserHandler,
	groupHandler *handler.GroupHandler,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      cfg.IsDevelopment(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	authCfg := middleware.AuthConfig{
		Logger:   logger,
		Sessions: cacheClient,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Login is the only endpoint reachable without a session.
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/me", authHandler.Me)

			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", quoteHandler.List)
				r.Post("/", quoteHandler.Create)
				r.Get("/random", quoteHandler.Random)
			})

			r.Get("/leaderboard", quoteHandler.Leaderboard)

			r.Get("/users", userHandler.List)
			r.Get("/users/{id}/stats", userHandler.Stats)

			r.Get("/groups", groupHandler.List)

			// Administration requires the admin flag on top of a session.
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin())

				r.Post("/users", userHandler.Create)
				r.Post("/groups", groupHandler.Create)
				r.Put("/groups/{id}/members/{userID}", groupHandler.AddMember)
				r.Delete("/groups/{id}/members/{userID}", groupHandler.RemoveMember)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
