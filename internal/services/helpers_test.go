package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"devflow/internal/cache"
	"devflow/internal/config"
	"devflow/internal/models"
	"devflow/internal/repositories/memory"
)

// recordingHook collects revalidated paths
type recordingHook struct {
	mu    sync.Mutex
	paths []string
}

func (h *recordingHook) Revalidate(_ context.Context, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paths = append(h.paths, path)
}

func (h *recordingHook) Paths() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.paths...)
}

func testConfig() *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{
			Provider:        "memory",
			DefaultTTL:      time.Minute,
			HotQuestionsTTL: time.Minute,
			PopularTagsTTL:  time.Minute,
		},
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
}

type fixture struct {
	ctx  context.Context
	sc   *ServiceCollection
	hook *recordingHook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	c := cache.NewMemoryCache(&cache.Config{TTL: time.Minute, MaxKeys: 100}, zap.NewNop())
	hook := &recordingHook{}
	sc, err := NewServiceCollection(memory.NewStore(), c, hook, testConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown(context.Background()) })

	return &fixture{ctx: context.Background(), sc: sc, hook: hook}
}

func longText(prefix string) string {
	return prefix + " " + strings.Repeat("lorem ipsum dolor sit amet ", 5)
}

func (f *fixture) user(t *testing.T, clerkID string) *models.User {
	t.Helper()
	u, err := f.sc.UserService.CreateUser(f.ctx, &CreateUserRequest{
		ClerkID:  clerkID,
		Name:     "Name " + clerkID,
		Username: "user_" + clerkID,
		Email:    clerkID + "@devflow.test",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) question(t *testing.T, author, title string, tags ...string) *models.Question {
	t.Helper()
	if len(tags) == 0 {
		tags = []string{"go"}
	}
	q, err := f.sc.QuestionService.CreateQuestion(f.ctx, &CreateQuestionRequest{
		Title:    title,
		Content:  longText(title),
		Tags:     tags,
		AuthorID: author,
	})
	require.NoError(t, err)
	return q
}

func (f *fixture) answer(t *testing.T, author string, questionID models.ID) *models.Answer {
	t.Helper()
	a, err := f.sc.AnswerService.CreateAnswer(f.ctx, &CreateAnswerRequest{
		QuestionID: questionID.String(),
		Content:    longText(fmt.Sprintf("answer by %s", author)),
		AuthorID:   author,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) reputation(t *testing.T, clerkID string) int64 {
	t.Helper()
	u, err := f.sc.UserService.GetUser(f.ctx, clerkID)
	require.NoError(t, err)
	return u.Reputation
}
