// Package bootstrap opens the storage, cache, change bus and services shared
// by the API server and the promptctl CLI.
package bootstrap

import (
	"context"
	"fmt"

	"promptvault-backend/config"
	"promptvault-backend/internal/database"
	"promptvault-backend/internal/realtime"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config  *config.Config
	DB      *gorm.DB
	Redis   *redis.Client
	Bus     realtime.Bus
	Auth    *services.AuthService
	Library *services.Library
	Log     *zap.Logger
}

// Open connects and migrates the database, connects Redis when configured
// and wires the services. The bus is Redis backed when Redis is available.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	if err := database.ConnectRedis(cfg); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	rdb := database.RedisClient

	var bus realtime.Bus = realtime.NewLocalBus()
	if rdb != nil {
		bus, err = realtime.NewRedisBus(ctx, rdb, cfg.RealtimeChannel, log.Named("bus"))
		if err != nil {
			_ = rdb.Close()
			return nil, err
		}
	}

	var objects services.ObjectStore
	if cfg.OSSEnabled() {
		oss, err := services.NewOSSStore(cfg)
		if err != nil {
			_ = bus.Close()
			return nil, err
		}
		objects = oss
	} else {
		log.Info("object storage not configured, attachment uploads are disabled")
	}

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	return &App{
		Config:  cfg,
		DB:      db,
		Redis:   rdb,
		Bus:     bus,
		Auth:    services.NewAuthService(db, rdb, tokens, log),
		Library: services.NewLibrary(cfg, db, rdb, bus, objects, log),
		Log:     log,
	}, nil
}

func (a *App) Close() {
	if err := a.Bus.Close(); err != nil {
		a.Log.Warn("close bus", zap.Error(err))
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
