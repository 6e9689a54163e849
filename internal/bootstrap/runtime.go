// Package bootstrap wires the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// FixturePath names a YAML fixture loaded into an empty development
	// database.
	FixturePath string
}

// InitRuntime connects to DB and Redis and optionally loads a fixture.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// May be nil if Redis is unreachable.
	r := cache.NewRedisClient(ctx, cfg.RedisURL)

	if err := loadDevFixture(cfg, db, opts.FixturePath); err != nil {
		return nil, nil, fmt.Errorf("failed to load development fixture: %w", err)
	}
	return db, r, nil
}

func loadDevFixture(cfg *config.Config, db *gorm.DB, path string) error {
	if path == "" {
		return nil
	}
	if cfg.Env != "development" {
		middleware.Logger.Warn("ignoring fixture outside development", slog.String("env", cfg.Env))
		return nil
	}

	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		middleware.Logger.Info("database already populated, skipping fixture", slog.Int64("users", users))
		return nil
	}

	loaded, err := seed.LoadFixtureFile(db, path)
	if err != nil {
		return err
	}
	middleware.Logger.Info("development fixture loaded",
		slog.String("path", path),
		slog.Int("users", len(loaded.Users)),
		slog.Int("posts", len(loaded.Posts)),
	)
	return nil
}
