package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCheckRateLimit_Bypass(t *testing.T) {
	for _, env := range []string{"test", "development"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)
			allowed, err := CheckRateLimit(context.Background(), nil, "login", "ip:1", 1, time.Minute)
			assert.NoError(t, err)
			assert.True(t, allowed)
		})
	}
}

func TestCheckRateLimit_NilRedis(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	allowed, err := CheckRateLimit(context.Background(), nil, "login", "ip:1", 1, time.Minute)
	assert.ErrorIs(t, err, errNoRedis)
	assert.False(t, allowed)
}

func TestCheckRateLimit_CountsWithinWindow(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr, rdb := setupTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, time.Minute, mr.TTL("rl:login:ip:1"))

	// A different client has its own bucket.
	allowed, err = CheckRateLimit(ctx, rdb, "login", "ip:2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	mr.FastForward(time.Minute + time.Second)
	allowed, err = CheckRateLimit(ctx, rdb, "login", "ip:1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimit_RedisError(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	db, mock := redismock.NewClientMock()
	mock.ExpectIncr("rl:signup:ip:1").SetErr(errors.New("connection refused"))

	allowed, err := CheckRateLimit(context.Background(), db, "signup", "ip:1", 5, time.Minute)
	assert.Error(t, err)
	assert.False(t, allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitMiddleware(t *testing.T) {
	okHandler := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	t.Run("Bypass in test mode", func(t *testing.T) {
		t.Setenv("APP_ENV", "test")
		app := fiber.New()
		app.Get("/test", RateLimit(nil, 1, time.Minute), okHandler)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("FailOpen on redis error", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		db, mock := redismock.NewClientMock()
		mock.Regexp().ExpectIncr(`rl:login:.*`).SetErr(errors.New("timeout"))

		app := fiber.New()
		app.Get("/login", RateLimit(db, 1, time.Minute, "login"), okHandler)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("FailClosed with nil redis in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		app := fiber.New()
		app.Get("/sensitive", RateLimitWithPolicy(nil, 1, time.Minute, FailClosed), okHandler)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sensitive", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("Rejects once limit is exceeded", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, rdb := setupTestRedis(t)
		app := fiber.New()
		app.Get("/reset", RateLimit(rdb, 2, time.Minute, "forgot_password"), okHandler)

		for i := 0; i < 2; i++ {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/reset", nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		}

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/reset", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "60", resp.Header.Get(fiber.HeaderRetryAfter))
	})
}
