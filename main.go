package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promptvault-backend/config"
	"promptvault-backend/internal/api"
	"promptvault-backend/internal/bootstrap"
	"promptvault-backend/internal/store"
	"promptvault-backend/pkg/logger"

	"go.uber.org/zap"
)

// @title promptvault-backend API
// @version 1.0
// @description Prompt library service: prompts with template variables, categories, tags, expert roles, export and backup.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Open(ctx, cfg, logger.Log)
	if err != nil {
		logger.Log.Fatal("failed to start", zap.Error(err))
	}
	defer app.Close()

	initAdminUser(ctx, app)

	registry := store.NewRegistry(app.Library.Sources())
	defer registry.Close()

	router := api.NewRouter(api.Deps{
		Config:   cfg,
		Auth:     app.Auth,
		Library:  app.Library,
		Registry: registry,
		Log:      logger.Log,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		// ends event streams on shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Log.Info("starting server", zap.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("server shutdown", zap.Error(err))
	}
}

func initAdminUser(ctx context.Context, app *bootstrap.App) {
	if app.Config.AdminUsername == "" || app.Config.AdminPassword == "" {
		return
	}
	created, err := app.Auth.EnsureAdmin(ctx, app.Config.AdminUsername, app.Config.AdminPassword)
	if err != nil {
		logger.Log.Fatal("failed to create admin user", zap.Error(err))
	}
	if !created {
		logger.Log.Info("admin user already exists")
	}
}
