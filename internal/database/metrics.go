package database

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Metrics records Content Store operation latency and failures
type Metrics struct {
	duration      *prometheus.HistogramVec
	errors        *prometheus.CounterVec
	slowThreshold time.Duration
	logger        *zap.Logger
}

// NewMetrics creates unregistered store metrics. Register them with
// Collectors on the registry that is exposed.
func NewMetrics(slowThreshold time.Duration, logger *zap.Logger) *Metrics {
	return &Metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "devflow",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of Content Store operations.",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"collection", "operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "devflow",
			Subsystem: "store",
			Name:      "operation_errors_total",
			Help:      "Content Store operations that returned an error.",
		}, []string{"collection", "operation"}),
		slowThreshold: slowThreshold,
		logger:        logger,
	}
}

// Collectors returns the collectors to register
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.duration, m.errors}
}

// Observe records one operation. Slow operations are logged.
func (m *Metrics) Observe(collection, operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	elapsed := time.Since(started)
	m.duration.WithLabelValues(collection, operation).Observe(elapsed.Seconds())
	if err != nil {
		m.errors.WithLabelValues(collection, operation).Inc()
	}
	if m.slowThreshold > 0 && elapsed > m.slowThreshold {
		m.logger.Warn("Slow store operation detected",
			zap.String("collection", collection),
			zap.String("operation", operation),
			zap.Duration("duration", elapsed),
		)
	}
}
