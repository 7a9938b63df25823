// Package revalidation signals that the rendered view at a path is stale.
// Signals are fire-and-forget: a hook never reports failure to the caller.
package revalidation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"devflow/internal/cache"
)

// Hook receives stale-view signals
type Hook interface {
	Revalidate(ctx context.Context, path string)
}

// HookFunc adapts a function to Hook
type HookFunc func(ctx context.Context, path string)

// Revalidate calls f
func (f HookFunc) Revalidate(ctx context.Context, path string) {
	f(ctx, path)
}

// Nop discards every signal
var Nop Hook = HookFunc(func(context.Context, string) {})

// Multi fans a signal out to every hook in order
type Multi []Hook

// Revalidate forwards path to each hook
func (m Multi) Revalidate(ctx context.Context, path string) {
	for _, h := range m {
		if h != nil {
			h.Revalidate(ctx, path)
		}
	}
}

// ===============================
// LOGGER HOOK
// ===============================

type logHook struct {
	logger *zap.Logger
}

// NewLogHook records every signal at debug level
func NewLogHook(logger *zap.Logger) Hook {
	return &logHook{logger: logger}
}

func (h *logHook) Revalidate(ctx context.Context, path string) {
	if path == "" {
		return
	}
	h.logger.Debug("View revalidated", zap.String("path", path))
}

// ===============================
// CACHE INVALIDATION HOOK
// ===============================

// ViewKeyPrefix namespaces cached views by path
const ViewKeyPrefix = "view:"

// ViewKey is the cache key of the view rendered at path
func ViewKey(path string) string {
	return ViewKeyPrefix + normalizePath(path)
}

type cacheInvalidator struct {
	cache  cache.Cache
	logger *zap.Logger
}

// NewCacheInvalidator drops every cached view under the stale path
func NewCacheInvalidator(c cache.Cache, logger *zap.Logger) Hook {
	return &cacheInvalidator{cache: c, logger: logger}
}

func (h *cacheInvalidator) Revalidate(ctx context.Context, path string) {
	if path == "" {
		return
	}
	for _, p := range ViewPaths(path) {
		if err := h.cache.DeletePrefix(ctx, ViewKey(p)); err != nil {
			h.logger.Warn("Failed to invalidate cached view",
				zap.String("path", p),
				zap.Error(err),
			)
		}
	}
}

// pageResources maps the first segment of a page path onto the API
// collection that renders it
var pageResources = map[string]string{
	"question":   "questions",
	"profile":    "users",
	"community":  "users",
	"collection": "users",
}

// ViewPaths returns path together with the API path that serves the same
// data. Page paths such as /question/<id> or /profile/<clerkId> are what
// mutations carry; cached views are keyed by API paths.
func ViewPaths(path string) []string {
	path = normalizePath(path)
	segments := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)
	resource, ok := pageResources[segments[0]]
	if !ok {
		return []string{path}
	}
	api := "/" + resource
	if len(segments) == 2 && segments[1] != "" {
		api += "/" + segments[1]
	}
	return []string{path, api}
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
