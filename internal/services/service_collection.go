// file: internal/services/service_collection.go
package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"devflow/internal/cache"
	"devflow/internal/config"
	"devflow/internal/repositories"
	"devflow/internal/revalidation"
)

// ServiceCollection holds every core service with its shared dependencies
type ServiceCollection struct {
	// Core engines
	VoteService           VoteService
	TagService            TagService
	RecommendationService RecommendationService
	SearchService         SearchService

	// Content services
	QuestionService QuestionService
	AnswerService   AnswerService
	UserService     UserService

	// Infrastructure
	Store  *repositories.Store
	Cache  cache.Cache
	Hook   revalidation.Hook
	Logger *zap.Logger
	Config *config.Config

	startTime time.Time
}

// ServiceHealth represents the health of the collection's dependencies
type ServiceHealth struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

// NewServiceCollection wires the services in dependency order
func NewServiceCollection(
	store *repositories.Store,
	c cache.Cache,
	hook revalidation.Hook,
	cfg *config.Config,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if store == nil {
		return nil, fmt.Errorf("content store is required")
	}
	if c == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if hook == nil {
		hook = revalidation.Nop
	}

	sc := &ServiceCollection{
		Store:     store,
		Cache:     c,
		Hook:      hook,
		Logger:    logger,
		Config:    cfg,
		startTime: time.Now(),
	}

	sc.TagService = NewTagService(store, c, cfg, logger.Named("tags"))
	sc.VoteService = NewVoteService(store, hook, logger.Named("votes"))
	sc.RecommendationService = NewRecommendationService(store, cfg, logger.Named("recommendations"))
	sc.SearchService = NewSearchService(store, cfg, logger.Named("search"))
	sc.QuestionService = NewQuestionService(store, sc.TagService, c, hook, cfg, logger.Named("questions"))
	sc.AnswerService = NewAnswerService(store, hook, cfg, logger.Named("answers"))
	sc.UserService = NewUserService(store, sc.QuestionService, hook, cfg, logger.Named("users"))

	logger.Info("Service collection initialized")
	return sc, nil
}

// HealthCheck pings the content store and the cache
func (sc *ServiceCollection) HealthCheck(ctx context.Context) *ServiceHealth {
	health := &ServiceHealth{
		Status:       "healthy",
		Timestamp:    time.Now().UTC(),
		Uptime:       time.Since(sc.startTime).Round(time.Second).String(),
		Dependencies: make(map[string]string, 2),
	}

	check := func(name string, err error) {
		if err != nil {
			health.Status = "unhealthy"
			health.Dependencies[name] = err.Error()
			sc.Logger.Warn("Dependency unhealthy", zap.String("dependency", name), zap.Error(err))
			return
		}
		health.Dependencies[name] = "healthy"
	}
	check("store", sc.Store.Health(ctx))
	check("cache", sc.Cache.Health(ctx))

	return health
}

// Shutdown releases the cache and the content store
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Logger.Info("Shutting down services")

	var firstErr error
	if err := sc.Cache.Close(); err != nil {
		sc.Logger.Error("Failed to close cache", zap.Error(err))
		firstErr = err
	}
	if err := sc.Store.Shutdown(ctx); err != nil {
		sc.Logger.Error("Failed to close content store", zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
