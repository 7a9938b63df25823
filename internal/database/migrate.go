package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mongodb"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

//go:embed migrations/*.json
var migrationFiles embed.FS

const migrationsCollection = "schema_migrations"

// Migrate applies the embedded index migrations. The migrator closes the
// client it is given, so it runs on a separate connection.
func (m *Manager) Migrate(ctx context.Context) error {
	m.logger.Info("Starting database migrations", zap.String("database", m.config.Name))

	migrationClient, err := mongo.Connect(ctx, clientOptions(m.config))
	if err != nil {
		return fmt.Errorf("failed to create migration connection: %w", err)
	}

	driver, err := mongodb.WithInstance(migrationClient, &mongodb.Config{
		DatabaseName:         m.config.Name,
		MigrationsCollection: migrationsCollection,
	})
	if err != nil {
		_ = migrationClient.Disconnect(ctx)
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "mongodb", driver)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer migrator.Close()

	currentVersion, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		m.logger.Warn("Database is in dirty state", zap.Uint("version", currentVersion))
		return fmt.Errorf("database is in dirty state at version %d", currentVersion)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, err := migrator.Version()
	if err != nil {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}

	m.logger.Info("Migrations completed successfully",
		zap.Uint("from_version", currentVersion),
		zap.Uint("to_version", newVersion),
	)
	return nil
}
