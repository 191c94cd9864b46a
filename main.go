package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	appCache "github.com/mfcoelho/go-todo-api/app/cache"
	database "github.com/mfcoelho/go-todo-api/app/db"
	appLogger "github.com/mfcoelho/go-todo-api/app/logger"
	"github.com/mfcoelho/go-todo-api/app/observability/metrics"
	"github.com/mfcoelho/go-todo-api/app/storage"
	"github.com/mfcoelho/go-todo-api/config"
	"github.com/mfcoelho/go-todo-api/internal/api/auth"
	"github.com/mfcoelho/go-todo-api/internal/api/task"
	"github.com/mfcoelho/go-todo-api/internal/api/user"
	api "github.com/mfcoelho/go-todo-api/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger(cfg.Mode)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Metrics ---
	if err := metrics.Setup(); err != nil {
		logger.Error("Failed to set up metrics", slog.Any("error", err))
		os.Exit(1)
	}
	if err := metrics.InitAppMetrics(); err != nil {
		logger.Error("Failed to initialize metric instruments", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Database ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- Cache ---
	cacheClient, err := appCache.New(ctx, &cfg)
	if err != nil {
		logger.Error("Failed to initialize cache client", slog.Any("error", err))
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("Cache client initialized", slog.String("driver", cfg.Cache.Driver))

	// --- Object storage (optional, required for photo uploads) ---
	var objectStorage storage.ObjectStorage
	if cfg.Storage.Endpoint != "" {
		minioStorage, err := storage.New(ctx, &cfg.Storage)
		if err != nil {
			logger.Error("Failed to initialize object storage", slog.Any("error", err))
			os.Exit(1)
		}
		objectStorage = minioStorage
		logger.Info("Object storage initialized", slog.String("bucket", cfg.Storage.Bucket))
	} else {
		logger.Warn("Object storage not configured; photo uploads will fail")
	}

	// --- Dependency injection ---
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewJWTService(cfg.JWT)

	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewAuthService(authRepo, hasher, tokens, logger)
	authHandler := auth.NewAuthHandler(authService, logger)

	taskRepo := task.NewPostgresTaskRepo(pool, logger)
	taskService := task.NewTaskService(taskRepo, cacheClient, cfg.Cache, metrics.Get(), logger)
	taskHandler := task.NewTaskHandler(taskService, logger)

	userRepo := user.NewPostgresUserRepo(pool, logger)
	userService := user.NewUserService(userRepo, objectStorage, logger)
	userHandler := user.NewUserHandler(userService, logger)

	// --- Router ---
	mainRouter := api.SetupRouter(&api.Config{
		AuthHandler:            authHandler,
		TaskHandler:            taskHandler,
		UserHandler:            userHandler,
		AuthenticateMiddleware: auth.Authenticate(logger, tokens),
		ProtectPhotoUpload:     cfg.Storage.ProtectUpload,
	})

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Mount("/", mainRouter)

	// --- HTTP server ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger(mode string) *slog.Logger {
	if mode == "development" || mode == "" {
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		return slog.New(tint.NewHandler(os.Stdout, tintOpts))
	}

	// JSON logs for production
	jsonOpts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
}
