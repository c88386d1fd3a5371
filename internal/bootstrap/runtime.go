// Package bootstrap connects the runtime dependencies shared by the server
// and the maintenance commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"gymrace/internal/cache"
	"gymrace/internal/catalog"
	"gymrace/internal/config"
	"gymrace/internal/database"
	"gymrace/internal/models"
	"gymrace/internal/observability"
	"gymrace/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty development database with demo data.
	SeedDemo bool
}

// Runtime holds the connected dependencies. Redis is nil when unreachable.
type Runtime struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Exercises *catalog.Catalog
}

// InitRuntime connects to the database and Redis and loads the exercise
// catalog.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	exercises, err := catalog.Open(cfg.CatalogPath, cfg.CatalogMediaIndex)
	if err != nil {
		return nil, fmt.Errorf("exercise catalog: %w", err)
	}

	rt := &Runtime{DB: db, Exercises: exercises, Redis: cache.Connect(cfg.RedisURL)}

	if opts.SeedDemo {
		if err := seedDemo(cfg, rt); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}
	return rt, nil
}

// Close releases the database pool and the Redis client.
func (r *Runtime) Close() error {
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// seedDemo only touches an empty development database.
func seedDemo(cfg *config.Config, rt *Runtime) error {
	if cfg.Env != "development" {
		observability.Logger.Warn("demo seeding skipped outside development", slog.String("env", cfg.Env))
		return nil
	}

	var users int64
	if err := rt.DB.WithContext(context.Background()).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	opts := seed.DefaultOptions
	opts.ShouldClean = false
	_, err := seed.NewSeeder(rt.DB, rt.Exercises.Titles(), 0).Run(opts)
	return err
}
