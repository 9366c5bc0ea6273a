package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/example/ridecard/internal/auth"
	"github.com/example/ridecard/internal/http/middleware"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func do(h http.Handler, method, clientID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/v1/cards/configure", nil)
	req.Header.Set("X-Client-ID", clientID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterThrottlesConfigureCalls(t *testing.T) {
	limiter := middleware.NewRateLimiter(newRedisClient(t),
		middleware.RateConfig{Rate: 100, Burst: 100},
		middleware.RateConfig{Rate: 0.01, Burst: 2},
		nil,
	)
	h := limiter.Middleware(okHandler())

	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "host-a").Code)
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "host-a").Code)

	blocked := do(h, http.MethodPost, "host-a")
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	require.NotEmpty(t, blocked.Header().Get("Retry-After"))

	// other callers and query traffic use their own buckets
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "host-b").Code)
	require.Equal(t, http.StatusOK, do(h, http.MethodGet, "host-a").Code)
}

func TestRateLimiterDisabled(t *testing.T) {
	var limiter *middleware.RateLimiter
	h := limiter.Middleware(okHandler())
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, do(h, http.MethodPost, "host-a").Code)
	}

	require.Nil(t, middleware.NewRateLimiter(nil, middleware.RateConfig{}, middleware.RateConfig{}, nil))
}

func TestRateLimiterKeysAuthenticatedHostsBySubject(t *testing.T) {
	limiter := middleware.NewRateLimiter(newRedisClient(t),
		middleware.RateConfig{},
		middleware.RateConfig{Rate: 0.01, Burst: 1},
		nil,
	)
	h := auth.Middleware("secret", auth.RoleHost)(limiter.Middleware(okHandler()))

	call := func(subject, clientID string) int {
		token, err := auth.IssueToken("secret", subject, auth.RoleHost, time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/v1/cards/configure", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-Client-ID", clientID)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, call("assistant-1", "shared"))
	// same subject from another client id shares the bucket
	require.Equal(t, http.StatusTooManyRequests, call("assistant-1", "other"))
	// different subject behind the same client id has its own bucket
	require.Equal(t, http.StatusOK, call("assistant-2", "shared"))
}
