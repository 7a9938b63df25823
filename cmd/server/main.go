package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"devflow/internal/cache"
	"devflow/internal/config"
	"devflow/internal/database"
	"devflow/internal/repositories"
	"devflow/internal/repositories/memory"
	"devflow/internal/response"
	"devflow/internal/revalidation"
	"devflow/internal/router"
	"devflow/internal/services"
)

func main() {
	logger, level, err := initLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger.Info("Starting devflow")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Logging.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
			logger.Warn("Ignoring invalid log level", zap.String("level", cfg.Logging.Level))
		}
	}
	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Database.Provider),
		zap.String("cache", cfg.Cache.Provider),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registry.MustRegister(services.Collectors()...)

	store, err := openStore(cfg, registry, logger)
	if err != nil {
		logger.Fatal("Failed to open content store", zap.Error(err))
	}

	cacheInstance, err := cache.NewCache(&cache.Config{
		Provider:        cfg.Cache.Provider,
		TTL:             cfg.Cache.DefaultTTL,
		MaxKeys:         cfg.Cache.MaxKeys,
		CleanupInterval: cfg.Cache.CleanupInterval,
		RedisURL:        cfg.Cache.RedisURL,
		PoolSize:        cfg.Cache.PoolSize,
		KeyPrefix:       "devflow:",
	}, logger.Named("cache"))
	if err != nil {
		logger.Fatal("Failed to create cache", zap.Error(err))
	}

	hub := revalidation.NewHub(cfg.Server.AllowedOrigins, logger.Named("revalidation"))
	hook := revalidation.Multi{
		revalidation.NewLogHook(logger.Named("revalidation")),
		revalidation.NewCacheInvalidator(cacheInstance, logger.Named("revalidation")),
		hub,
	}

	serviceCollection, err := services.NewServiceCollection(store, cacheInstance, hook, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	responseConfig := response.DefaultConfig()
	responseConfig.PrettyJSON = cfg.Server.Environment == "development"
	responseBuilder := response.NewBuilder(responseConfig, logger.Named("response"))

	var metricsRegistry *prometheus.Registry
	if cfg.Server.EnableMetrics {
		metricsRegistry = registry
	}
	handler := router.SetupRouter(router.Options{
		Services:        serviceCollection,
		ResponseBuilder: responseBuilder,
		Hub:             hub,
		Registry:        metricsRegistry,
		Logger:          logger,
	})

	server := &http.Server{
		Addr:           net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("HTTP server failed", zap.Error(err))
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()

	hub.Close()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed, forcing close", zap.Error(err))
		_ = server.Close()
	}
	if err := serviceCollection.Shutdown(ctx); err != nil {
		logger.Error("Service shutdown failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}

// openStore selects the Content Store backend
func openStore(cfg *config.Config, registry *prometheus.Registry, logger *zap.Logger) (*repositories.Store, error) {
	switch cfg.Database.Provider {
	case "memory":
		logger.Warn("Using in-memory content store; data is lost on restart")
		return memory.NewStore(), nil
	case "mongo", "":
		manager, err := database.Open(context.Background(), &cfg.Database, logger.Named("database"))
		if err != nil {
			return nil, err
		}
		registry.MustRegister(manager.Metrics().Collectors()...)
		return repositories.NewMongoStore(manager), nil
	default:
		return nil, fmt.Errorf("unsupported database provider: %s", cfg.Database.Provider)
	}
}

func initLogger() (*zap.Logger, zap.AtomicLevel, error) {
	var config zap.Config

	switch os.Getenv("GO_ENV") {
	case "production":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "staging":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	default:
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, config.Level, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, config.Level, nil
}
