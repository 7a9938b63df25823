package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"devflow/internal/cache"
	"devflow/internal/contextutils"
	"devflow/internal/response"
	"devflow/internal/revalidation"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func echoClerkID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(contextutils.GetClerkID(r.Context())))
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = contextutils.GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(HeaderXRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXCorrelationID, "upstream-id")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "upstream-id", seen)
	assert.Equal(t, "upstream-id", rr.Header().Get(HeaderXRequestID))
}

func TestIdentity(t *testing.T) {
	builder := response.NewBuilder(nil, zap.NewNop())
	h := NewIdentity(IdentityConfig{JWTSecret: testSecret, JWTIssuer: "https://clerk.test"}, builder, zap.NewNop()).
		Middleware(echoClerkID())

	valid := signToken(t, testSecret, jwt.RegisteredClaims{
		Subject:   "user_123",
		Issuer:    "https://clerk.test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	expired := signToken(t, testSecret, jwt.RegisteredClaims{
		Subject:   "user_123",
		Issuer:    "https://clerk.test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	wrongIssuer := signToken(t, testSecret, jwt.RegisteredClaims{Subject: "user_123", Issuer: "someone-else"})
	wrongKey := signToken(t, "other-secret", jwt.RegisteredClaims{Subject: "user_123", Issuer: "https://clerk.test"})

	tests := []struct {
		name       string
		auth       string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, "user_123"},
		{"anonymous", "", http.StatusOK, ""},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, ""},
		{"wrong issuer", "Bearer " + wrongIssuer, http.StatusUnauthorized, ""},
		{"wrong key", "Bearer " + wrongKey, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			}
		})
	}
}

func TestIdentity_TrustedHeader(t *testing.T) {
	builder := response.NewBuilder(nil, zap.NewNop())
	trusted := NewIdentity(IdentityConfig{TrustHeader: true}, builder, zap.NewNop()).Middleware(echoClerkID())
	untrusted := NewIdentity(IdentityConfig{}, builder, zap.NewNop()).Middleware(echoClerkID())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Clerk-User-Id", "user_dev")

	rr := httptest.NewRecorder()
	trusted.ServeHTTP(rr, req)
	assert.Equal(t, "user_dev", rr.Body.String())

	rr = httptest.NewRecorder()
	untrusted.ServeHTTP(rr, req)
	assert.Equal(t, "", rr.Body.String())
}

func TestRecovery(t *testing.T) {
	builder := response.NewBuilder(nil, zap.NewNop())
	h := Recovery(builder, zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var body response.APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "An internal error occurred", body.Error.Message)
}

func TestHTTPMetrics_UsesRoutePattern(t *testing.T) {
	m := NewHTTPMetrics("devflow_test")
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.Collectors()...)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/questions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/questions/"+id, nil))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/questions/{id}", "418")))
}

func TestViewCache_ServesAnonymousReadsUntilRevalidated(t *testing.T) {
	c := cache.NewMemoryCache(&cache.Config{TTL: time.Minute, MaxKeys: 100}, zap.NewNop())
	t.Cleanup(func() { _ = c.Close() })

	calls := 0
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"calls":` + strconv.Itoa(calls) + `}`))
	})
	h := ViewCache(c, "/api/v1", time.Minute, zap.NewNop())(backend)

	get := func(path, caller string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if caller != "" {
			req = req.WithContext(contextutils.WithClerkID(req.Context(), caller))
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	first := get("/api/v1/questions/abc", "")
	assert.Equal(t, "MISS", first.Header().Get(HeaderXCache))
	second := get("/api/v1/questions/abc", "")
	assert.Equal(t, "HIT", second.Header().Get(HeaderXCache))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	get("/api/v1/questions/abc", "user_1")
	assert.Equal(t, 2, calls)

	revalidation.NewCacheInvalidator(c, zap.NewNop()).Revalidate(context.Background(), "/questions")
	third := get("/api/v1/questions/abc", "")
	assert.Equal(t, "MISS", third.Header().Get(HeaderXCache))
	assert.Equal(t, 3, calls)
}
