package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"devflow/internal/cache"
	"devflow/internal/config"
	"devflow/internal/repositories/memory"
	"devflow/internal/revalidation"
	"devflow/internal/services"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Pagination struct {
			Page    int   `json:"page"`
			Total   int64 `json:"total"`
			HasNext bool  `json:"has_next"`
		} `json:"pagination"`
	} `json:"meta"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{MetricsPath: "/metrics"},
		Auth:   config.AuthConfig{TrustHeader: true, IdentityHeader: "X-Clerk-User-Id"},
		Cache:  config.CacheConfig{HotQuestionsTTL: time.Minute, PopularTagsTTL: time.Minute, ViewTTL: time.Minute},
		Engine: config.EngineConfig{
			DefaultPageSize:     20,
			MaxPageSize:         100,
			HotQuestionsLimit:   5,
			PopularTagsLimit:    5,
			RecommendedPageSize: 20,
			UsersPageSize:       10,
			GlobalSearchLimit:   2,
			TypedSearchLimit:    8,
		},
	}
	c := cache.NewMemoryCache(&cache.Config{TTL: time.Minute, MaxKeys: 100}, zap.NewNop())
	hook := revalidation.NewCacheInvalidator(c, zap.NewNop())
	sc, err := services.NewServiceCollection(memory.NewStore(), c, hook, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown(context.Background()) })

	return &testServer{
		t: t,
		handler: SetupRouter(Options{
			Services: sc,
			Registry: prometheus.NewRegistry(),
			Logger:   zap.NewNop(),
		}),
	}
}

func (s *testServer) do(method, path, caller string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("X-Clerk-User-Id", caller)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)

	var env envelope
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(rr.Body.Bytes(), &env))
	}
	return rr, env
}

func (s *testServer) createUser(clerkID string) {
	s.t.Helper()
	rr, _ := s.do(http.MethodPost, "/api/v1/users", "", map[string]string{
		"clerk_id": clerkID,
		"name":     "Name " + clerkID,
		"username": "user_" + clerkID,
		"email":    clerkID + "@devflow.test",
	})
	require.Equal(s.t, http.StatusCreated, rr.Code)
}

func (s *testServer) askQuestion(author, title string) string {
	s.t.Helper()
	rr, env := s.do(http.MethodPost, "/api/v1/questions", author, map[string]interface{}{
		"title":   title,
		"content": title + " " + strings.Repeat("some detailed context about the problem ", 4),
		"tags":    []string{"go", "http"},
	})
	require.Equal(s.t, http.StatusCreated, rr.Code, rr.Body.String())

	var q struct {
		ID string `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &q))
	require.NotEmpty(s.t, q.ID)
	return q.ID
}

func TestQuestionVoteFlow(t *testing.T) {
	s := newTestServer(t)
	s.createUser("alice")
	s.createUser("bobby")
	id := s.askQuestion("alice", "How do I drain an http.Server?")

	rr, env := s.do(http.MethodPost, "/api/v1/questions/"+id+"/vote", "bobby", map[string]interface{}{
		"direction": "up",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result services.VoteResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.Upvotes)
	assert.Equal(t, int64(1), result.VoterDelta)
	assert.Equal(t, int64(10), result.AuthorDelta)

	rr, env = s.do(http.MethodGet, "/api/v1/users/alice", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var info struct {
		User struct {
			Reputation int64 `json:"reputation"`
		} `json:"user"`
		TotalQuestions int64 `json:"total_questions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, int64(15), info.User.Reputation)
	assert.Equal(t, int64(1), info.TotalQuestions)
}

func TestQuestionListingPagination(t *testing.T) {
	s := newTestServer(t)
	s.createUser("alice")
	s.askQuestion("alice", "First question here")
	s.askQuestion("alice", "Second question here")

	rr, env := s.do(http.MethodGet, "/api/v1/questions?page=1&page_size=1", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(2), env.Meta.Pagination.Total)
	assert.True(t, env.Meta.Pagination.HasNext)

	rr, _ = s.do(http.MethodGet, "/api/v1/questions?page=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, env = s.do(http.MethodGet, "/api/v1/questions?filter=unanswered", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(2), env.Meta.Pagination.Total)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)
	s.createUser("alice")
	s.createUser("bobby")

	validQuestion := map[string]interface{}{
		"title":   "A perfectly fine title",
		"content": strings.Repeat("content ", 20),
		"tags":    []string{"go"},
	}

	tests := []struct {
		name       string
		method     string
		path       string
		caller     string
		body       interface{}
		wantStatus int
		wantType   string
	}{
		{"ask without identity", http.MethodPost, "/api/v1/questions", "", validQuestion, http.StatusUnauthorized, services.ErrTypeUnauthenticated},
		{"ask with short content", http.MethodPost, "/api/v1/questions", "alice", map[string]interface{}{"title": "Short one", "content": "too short", "tags": []string{"go"}}, http.StatusBadRequest, services.ErrTypeValidation},
		{"unknown search type", http.MethodGet, "/api/v1/search?q=go&type=bogus", "", nil, http.StatusBadRequest, services.ErrTypeInvalidSearchType},
		{"malformed question id", http.MethodGet, "/api/v1/questions/not-an-id", "", nil, http.StatusBadRequest, services.ErrTypeValidation},
		{"missing question", http.MethodGet, "/api/v1/questions/0123456789abcdef01234567", "", nil, http.StatusNotFound, services.ErrTypeNotFound},
		{"edit another profile", http.MethodPatch, "/api/v1/users/alice", "bobby", map[string]string{"bio": "hello there world"}, http.StatusForbidden, services.ErrTypeUnauthenticated},
		{"unknown route", http.MethodGet, "/nope", "", nil, http.StatusNotFound, services.ErrTypeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, env := s.do(tt.method, tt.path, tt.caller, tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantType, env.Error.Type)
			assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
		})
	}
}

func TestQuestionChangesRequireAuthor(t *testing.T) {
	s := newTestServer(t)
	s.createUser("alice")
	s.createUser("mallory")
	id := s.askQuestion("alice", "Who may edit this question?")
	questionPath := "/api/v1/questions/" + id

	edit := map[string]interface{}{
		"title":   "Rewritten by someone",
		"content": strings.Repeat("rewritten content ", 10),
	}
	rr, env := s.do(http.MethodPatch, questionPath, "mallory", edit)
	require.Equal(t, http.StatusForbidden, rr.Code, rr.Body.String())
	assert.Equal(t, services.ErrTypeUnauthenticated, env.Error.Type)

	rr, _ = s.do(http.MethodPatch, questionPath, "", edit)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr, _ = s.do(http.MethodDelete, questionPath, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr, _ = s.do(http.MethodDelete, questionPath, "mallory", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, env = s.do(http.MethodGet, questionPath, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var q struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &q))
	assert.Equal(t, "Who may edit this question?", q.Title)

	rr, _ = s.do(http.MethodGet, questionPath, "", nil)
	assert.Equal(t, "HIT", rr.Header().Get("X-Cache"))

	rr, _ = s.do(http.MethodDelete, questionPath+"?path=/question/"+id, "alice", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr, _ = s.do(http.MethodGet, questionPath, "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSearchAndTags(t *testing.T) {
	s := newTestServer(t)
	s.createUser("alice")
	s.askQuestion("alice", "Goroutine leak in handler")

	rr, env := s.do(http.MethodGet, "/api/v1/search?q=goroutine", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var results []struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.NotEmpty(t, results)
	assert.Equal(t, "question", results[0].Type)

	rr, env = s.do(http.MethodGet, "/api/v1/tags/popular?limit=1", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var popular []struct {
		Name  string `json:"name"`
		Count int64  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &popular))
	require.Len(t, popular, 1)
	assert.Equal(t, int64(1), popular[0].Count)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rr, env := s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, string(env.Data), `"status":"healthy"`)

	rr, _ = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "devflow_http_requests_total")
}
