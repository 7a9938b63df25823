package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"devflow/internal/handlers/api/v1/answers"
	"devflow/internal/handlers/api/v1/questions"
	"devflow/internal/handlers/api/v1/search"
	"devflow/internal/handlers/api/v1/tags"
	"devflow/internal/handlers/api/v1/users"
	"devflow/internal/middleware"
	"devflow/internal/response"
	"devflow/internal/revalidation"
	"devflow/internal/services"
)

// Options collects what the route table needs
type Options struct {
	Services        *services.ServiceCollection
	ResponseBuilder *response.Builder
	// Hub serves /ws/revalidate when set
	Hub *revalidation.Hub
	// Registry receives the HTTP collectors and is exposed on the metrics
	// path when set
	Registry *prometheus.Registry
	Logger   *zap.Logger
}

// SetupRouter configures all HTTP routes and returns the main handler
func SetupRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	builder := opts.ResponseBuilder
	if builder == nil {
		builder = response.NewBuilder(nil, logger)
	}
	cfg := opts.Services.Config

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logger),
		middleware.AccessLog(logger),
		middleware.Recovery(builder, logger),
	)

	if opts.Registry != nil {
		httpMetrics := middleware.NewHTTPMetrics("devflow")
		opts.Registry.MustRegister(httpMetrics.Collectors()...)
		r.Use(httpMetrics.Middleware)

		metricsPath := cfg.Server.MetricsPath
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		r.Method(http.MethodGet, metricsPath, promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}

	identity := middleware.NewIdentity(middleware.IdentityConfig{
		JWTSecret:   cfg.Auth.JWTSecret,
		JWTIssuer:   cfg.Auth.JWTIssuer,
		TrustHeader: cfg.Auth.TrustHeader,
		Header:      cfg.Auth.IdentityHeader,
	}, builder, logger)

	r.Get("/health", healthHandler(opts.Services, builder))
	if opts.Hub != nil {
		r.Method(http.MethodGet, "/ws/revalidate", opts.Hub)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			identity.Middleware,
			middleware.ViewCache(opts.Services.Cache, "/api/v1", cfg.Cache.ViewTTL, logger),
		)

		r.Route("/questions", questions.NewQuestionController(opts.Services, logger.Named("questions_api"), builder).Routes)
		r.Route("/answers", answers.NewAnswerController(opts.Services, logger.Named("answers_api"), builder).Routes)
		r.Route("/tags", tags.NewTagController(opts.Services, logger.Named("tags_api"), builder).Routes)
		r.Route("/users", users.NewUserController(opts.Services, logger.Named("users_api"), builder).Routes)
		r.Get("/search", search.NewSearchController(opts.Services, logger.Named("search_api"), builder).Search)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		builder.WriteError(w, req, services.NewNotFoundError("route not found").WithDetail("path", req.URL.Path))
	})

	return r
}

func healthHandler(sc *services.ServiceCollection, builder *response.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := sc.HealthCheck(ctx)
		status := http.StatusOK
		if health.Status != "healthy" {
			status = http.StatusServiceUnavailable
		}
		builder.WriteJSON(w, r, builder.Success(r.Context(), health), status)
	}
}
