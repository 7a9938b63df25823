package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"devflow/internal/config"
)

// Collection names of the Content Store
const (
	UsersCollection        = "users"
	QuestionsCollection    = "questions"
	AnswersCollection      = "answers"
	TagsCollection         = "tags"
	InteractionsCollection = "interactions"
)

// Manager owns the MongoDB client for the process lifetime. It is built once
// in main and handed to the repositories.
type Manager struct {
	client  *mongo.Client
	db      *mongo.Database
	logger  *zap.Logger
	metrics *Metrics
	health  *HealthChecker
	config  *config.DatabaseConfig
	mu      sync.RWMutex
	closed  bool
}

// NewManager connects to MongoDB, retrying with exponential backoff until the
// server answers a ping or the attempts are exhausted.
func NewManager(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*Manager, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	client, err := connectWithRetry(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		client: client,
		db:     client.Database(cfg.Name),
		logger: logger,
		config: cfg,
	}
	manager.metrics = NewMetrics(cfg.SlowQueryThreshold, logger)
	manager.health = NewHealthChecker(manager, logger)

	logger.Info("Database manager initialized",
		zap.String("database", cfg.Name),
		zap.Int("max_pool_size", cfg.MaxPoolSize),
	)

	return manager, nil
}

func clientOptions(cfg *config.DatabaseConfig) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(cfg.URL).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(uint64(cfg.MaxPoolSize)).
		SetMinPoolSize(uint64(cfg.MinPoolSize)).
		SetAppName("devflow")
	if cfg.OperationTimeout > 0 {
		opts.SetTimeout(cfg.OperationTimeout)
	}
	return opts
}

func connectWithRetry(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*mongo.Client, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = cfg.RetryBackoff
	policy.MaxInterval = 10 * time.Second

	var b backoff.BackOff = policy
	if cfg.MaxRetryAttempts > 0 {
		b = backoff.WithMaxRetries(policy, uint64(cfg.MaxRetryAttempts))
	}
	b = backoff.WithContext(b, ctx)

	var client *mongo.Client
	attempt := 0
	operation := func() error {
		attempt++
		c, err := mongo.Connect(ctx, clientOptions(cfg))
		if err != nil {
			return fmt.Errorf("failed to create mongo client: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		if err := c.Ping(pingCtx, readpref.Primary()); err != nil {
			_ = c.Disconnect(context.Background())
			return fmt.Errorf("failed to ping database: %w", err)
		}

		client = c
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("Database connection attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempt, err)
	}
	return client, nil
}

// Database returns the application database handle
func (m *Manager) Database() *mongo.Database {
	return m.db
}

// Collection returns a handle on a named collection
func (m *Manager) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

// Metrics returns the operation metrics recorder
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// Logger returns the manager's logger
func (m *Manager) Logger() *zap.Logger {
	return m.logger
}

// Ping checks that the primary is reachable
func (m *Manager) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("database manager is closed")
	}
	return m.client.Ping(ctx, readpref.Primary())
}

// Health runs the health checker
func (m *Manager) Health(ctx context.Context) *HealthStatus {
	return m.health.Check(ctx)
}

// Close disconnects the client. Safe to call more than once.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	m.logger.Info("Closing database connection")
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from database: %w", err)
	}
	return nil
}
