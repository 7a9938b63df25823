package revalidation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"devflow/internal/cache"
)

func TestMulti_FansOutInOrder(t *testing.T) {
	var got []string
	record := func(name string) Hook {
		return HookFunc(func(_ context.Context, path string) {
			got = append(got, name+":"+path)
		})
	}

	Multi{record("a"), nil, record("b")}.Revalidate(context.Background(), "/question/1")

	assert.Equal(t, []string{"a:/question/1", "b:/question/1"}, got)
}

func TestCacheInvalidator_DropsViewsUnderPath(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(&cache.Config{TTL: time.Minute, MaxKeys: 10}, zap.NewNop())
	defer c.Close()

	require.NoError(t, c.Set(ctx, ViewKey("/question/1"), []byte("a"), 0))
	require.NoError(t, c.Set(ctx, ViewKey("/tags"), []byte("b"), 0))

	NewCacheInvalidator(c, zap.NewNop()).Revalidate(ctx, "question/1")

	_, ok := c.Get(ctx, ViewKey("/question/1"))
	assert.False(t, ok)
	_, ok = c.Get(ctx, ViewKey("/tags"))
	assert.True(t, ok)
}

func TestViewPaths(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/question/abc", []string{"/question/abc", "/questions/abc"}},
		{"profile/user_1", []string{"/profile/user_1", "/users/user_1"}},
		{"/community", []string{"/community", "/users"}},
		{"/collection", []string{"/collection", "/users"}},
		{"/questions/abc", []string{"/questions/abc"}},
		{"/tags/t1", []string{"/tags/t1"}},
		{"/", []string{"/"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ViewPaths(tt.path))
		})
	}
}

func TestCacheInvalidator_MapsPagePathsToAPIViews(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(&cache.Config{TTL: time.Minute, MaxKeys: 10}, zap.NewNop())
	defer c.Close()

	require.NoError(t, c.Set(ctx, ViewKey("/questions/abc"), []byte("a"), 0))
	require.NoError(t, c.Set(ctx, ViewKey("/questions/abc/answers?page=1"), []byte("b"), 0))
	require.NoError(t, c.Set(ctx, ViewKey("/questions/xyz"), []byte("c"), 0))

	NewCacheInvalidator(c, zap.NewNop()).Revalidate(ctx, "/question/abc")

	_, ok := c.Get(ctx, ViewKey("/questions/abc"))
	assert.False(t, ok)
	_, ok = c.Get(ctx, ViewKey("/questions/abc/answers?page=1"))
	assert.False(t, ok)
	_, ok = c.Get(ctx, ViewKey("/questions/xyz"))
	assert.True(t, ok)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://devflow.example"})

	req := httptest.NewRequest(http.MethodGet, "/ws/revalidate", nil)
	req.Header.Set("Origin", "https://devflow.example")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))

	assert.True(t, originChecker(nil)(req))
}

func TestHub_BroadcastsStalePaths(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Revalidate(context.Background(), "/question/abc")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg StaleMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "revalidate", msg.Type)
	assert.Equal(t, "/question/abc", msg.Path)
}
