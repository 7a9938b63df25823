package database

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// HealthStatus represents the current health status of the database
type HealthStatus struct {
	Status       string                 `json:"status"`
	Timestamp    time.Time              `json:"timestamp"`
	ResponseTime time.Duration          `json:"response_time"`
	Errors       []string               `json:"errors,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// Health check statuses
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthChecker pings the primary and checks that every collection answers
type HealthChecker struct {
	manager         *Manager
	logger          *zap.Logger
	timeout         time.Duration
	slowPingWarning time.Duration
	collections     []string
}

// NewHealthChecker creates a health checker for the manager
func NewHealthChecker(manager *Manager, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		manager:         manager,
		logger:          logger,
		timeout:         5 * time.Second,
		slowPingWarning: 500 * time.Millisecond,
		collections: []string{
			UsersCollection,
			QuestionsCollection,
			AnswersCollection,
			TagsCollection,
			InteractionsCollection,
		},
	}
}

// Check runs the health checks
func (hc *HealthChecker) Check(ctx context.Context) *HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	status := &HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Details:   make(map[string]interface{}),
	}

	start := time.Now()
	if err := hc.manager.Ping(ctx); err != nil {
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, "ping: "+err.Error())
		status.ResponseTime = time.Since(start)
		hc.record(status)
		return status
	}
	status.ResponseTime = time.Since(start)
	if status.ResponseTime > hc.slowPingWarning {
		status.Status = StatusDegraded
		status.Errors = append(status.Errors, "slow ping")
	}

	for _, name := range hc.collections {
		n, err := hc.manager.Collection(name).EstimatedDocumentCount(ctx)
		if err != nil {
			status.Status = StatusDegraded
			status.Errors = append(status.Errors, name+": "+err.Error())
			continue
		}
		status.Details[name] = n
	}

	hc.record(status)
	return status
}

func (hc *HealthChecker) record(status *HealthStatus) {
	if status.Status != StatusHealthy {
		hc.logger.Warn("Database health check failed",
			zap.String("status", status.Status),
			zap.Strings("errors", status.Errors),
		)
	}
}
