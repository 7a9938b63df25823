package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"devflow/internal/config"
)

// Open connects to the configured database and applies migrations when
// enabled. The returned manager must be closed by the caller.
func Open(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*Manager, error) {
	ctx, cancel := context.WithTimeout(ctx, openTimeout(cfg))
	defer cancel()

	manager, err := NewManager(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.RunMigrations {
		if err := manager.Migrate(ctx); err != nil {
			_ = manager.Close(context.Background())
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	} else {
		logger.Info("Skipping database migrations")
	}

	status := manager.Health(ctx)
	logger.Info("Database ready",
		zap.String("status", status.Status),
		zap.Duration("response_time", status.ResponseTime),
	)

	return manager, nil
}

// openTimeout bounds connection, retries and migrations together
func openTimeout(cfg *config.DatabaseConfig) time.Duration {
	attempts := cfg.MaxRetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	return time.Duration(attempts+1)*cfg.ConnectTimeout + time.Minute
}
