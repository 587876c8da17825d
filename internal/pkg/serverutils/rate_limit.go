package serverutils

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

type RateLimitConfig struct {
	Limit         int64
	Period        time.Duration
	ExcludedPaths []string
	Redis         redis.UniversalClient
}

// NewRateLimiter builds the per-IP limiter. It uses the redis store when a
// client is given and falls back to process memory otherwise.
func NewRateLimiter(cfg RateLimitConfig) (*limiter.Limiter, error) {
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.Period <= 0 {
		cfg.Period = 60 * time.Second
	}
	rate := limiter.Rate{Period: cfg.Period, Limit: cfg.Limit}

	options := limiter.StoreOptions{Prefix: "drheal:ratelimit", MaxRetry: 3}
	if cfg.Redis != nil {
		store, err := sredis.NewStoreWithOptions(cfg.Redis, options)
		if err != nil {
			return nil, err
		}
		return limiter.New(store, rate), nil
	}
	return limiter.New(memory.NewStoreWithOptions(options), rate), nil
}

func RateLimitMiddleware(lim *limiter.Limiter, excludedPaths ...string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		path := ctx.Path()
		for _, p := range excludedPaths {
			if path == p || (p != "/" && strings.HasPrefix(path, p+"/")) {
				return ctx.Next()
			}
		}

		state, err := lim.Get(ctx.UserContext(), ctx.IP())
		if err != nil {
			// fail open when the store is unreachable
			log.Printf("[WARN] Rate limiter unavailable: %v", err)
			return ctx.Next()
		}

		ctx.Set("X-RateLimit-Limit", strconv.FormatInt(state.Limit, 10))
		ctx.Set("X-RateLimit-Remaining", strconv.FormatInt(state.Remaining, 10))
		ctx.Set("X-RateLimit-Reset", strconv.FormatInt(state.Reset, 10))

		if state.Reached {
			retryAfter := state.Reset - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			ctx.Set(fiber.HeaderRetryAfter, strconv.FormatInt(retryAfter, 10))
			return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse(fiber.StatusTooManyRequests, "Rate limit exceeded. Please try again later."))
		}
		return ctx.Next()
	}
}
