package serverutils

import (
	"net/http/httptest"
	"testing"
	"time"

	"drheal-be/pkg/metrics"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signed(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestJwtMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	app := fiber.New()
	app.Get("/me", JwtMiddleware, func(ctx *fiber.Ctx) error {
		return ctx.SendString(ctx.Locals("user_id").(string))
	})

	valid := signed(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"user_id": "u-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	expired := signed(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"user_id": "u-1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := signed(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"user_id": "u-1"})
	noUser := signed(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"email": "a@b.c"})
	hs512 := signed(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"user_id": "u-1"})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + valid, 200},
		{"missing", "", 401},
		{"wrong scheme", "Basic " + valid, 401},
		{"expired", "Bearer " + expired, 401},
		{"wrong key", "Bearer " + wrongKey, 401},
		{"no user id", "Bearer " + noUser, 401},
		{"unexpected algorithm", "Bearer " + hs512, 401},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func limitedApp(t *testing.T, rdb redis.UniversalClient) *fiber.App {
	t.Helper()
	lim, err := NewRateLimiter(RateLimitConfig{Limit: 2, Period: time.Minute, Redis: rdb})
	require.NoError(t, err)

	app := fiber.New()
	app.Use(RateLimitMiddleware(lim, "/api/health"))
	app.Get("/api/search", func(ctx *fiber.Ctx) error { return ctx.SendStatus(200) })
	app.Get("/api/health/detailed", func(ctx *fiber.Ctx) error { return ctx.SendStatus(200) })
	return app
}

func hit(t *testing.T, app *fiber.App, path string) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("memory store", func(t *testing.T) {
		app := limitedApp(t, nil)
		assert.Equal(t, 200, hit(t, app, "/api/search"))
		assert.Equal(t, 200, hit(t, app, "/api/search"))

		resp, err := app.Test(httptest.NewRequest("GET", "/api/search", nil))
		require.NoError(t, err)
		assert.Equal(t, 429, resp.StatusCode)
		assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
	})

	t.Run("excluded paths are never limited", func(t *testing.T) {
		app := limitedApp(t, nil)
		for i := 0; i < 5; i++ {
			assert.Equal(t, 200, hit(t, app, "/api/health/detailed"))
		}
	})

	t.Run("redis store", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })

		app := limitedApp(t, rdb)
		assert.Equal(t, 200, hit(t, app, "/api/search"))
		assert.Equal(t, 200, hit(t, app, "/api/search"))
		assert.Equal(t, 429, hit(t, app, "/api/search"))
	})

	t.Run("unreachable store fails open", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
		t.Cleanup(func() { _ = rdb.Close() })

		app := limitedApp(t, rdb)
		mr.Close()
		for i := 0; i < 4; i++ {
			assert.Equal(t, 200, hit(t, app, "/api/search"))
		}
	})
}

func TestMetricsMiddleware(t *testing.T) {
	rec := metrics.New()
	app := fiber.New()
	app.Use(MetricsMiddleware(rec))
	app.Get("/api/items/:id", func(ctx *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Item not found")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/items/42", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Process-Time"))

	n, err := testutil.GatherAndCount(rec.Registry(), "drheal_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
