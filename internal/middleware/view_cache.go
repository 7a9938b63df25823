package middleware

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"devflow/internal/cache"
	"devflow/internal/contextutils"
	"devflow/internal/revalidation"
)

// HeaderXCache reports whether a response came from the view cache
const HeaderXCache = "X-Cache"

// bodyRecorder buffers a response so it can be stored after it is sent
type bodyRecorder struct {
	*statusRecorder
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.statusRecorder.Write(b)
}

// ViewCache serves anonymous GET reads from the cache. Entries are keyed by
// revalidation.ViewKey of the path below prefix, so a revalidation of that
// path drops them. Personalized (authenticated) reads are never cached.
func ViewCache(c cache.Cache, prefix string, ttl time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if ttl <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || contextutils.GetClerkID(r.Context()) != "" {
				next.ServeHTTP(w, r)
				return
			}

			key := viewKey(prefix, r)
			if body, ok := c.Get(r.Context(), key); ok {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Set(HeaderXCache, "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(body)
				return
			}

			w.Header().Set(HeaderXCache, "MISS")
			rec := &bodyRecorder{statusRecorder: newStatusRecorder(w)}
			next.ServeHTTP(rec, r)

			if rec.status != http.StatusOK {
				return
			}
			if err := c.Set(r.Context(), key, rec.body.Bytes(), ttl); err != nil {
				contextutils.GetLogger(r.Context(), logger).Warn("Failed to cache view",
					zap.String("key", key),
					zap.Error(err),
				)
			}
		})
	}
}

func viewKey(prefix string, r *http.Request) string {
	key := revalidation.ViewKey(strings.TrimPrefix(r.URL.Path, prefix))
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}
	return key
}
