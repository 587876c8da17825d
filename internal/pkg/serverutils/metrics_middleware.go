package serverutils

import (
	"fmt"
	"time"

	"drheal-be/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// MetricsMiddleware records request latency and sets X-Process-Time. It must
// run outside ErrorHandlerMiddleware so the final status is observed.
func MetricsMiddleware(rec *metrics.Recorder) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()
		if err != nil {
			err = WriteError(ctx, err)
		}

		elapsed := time.Since(start)
		status := ctx.Response().StatusCode()
		ctx.Set("X-Process-Time", fmt.Sprintf("%.4f", elapsed.Seconds()))

		route := ctx.Route().Path
		if route == "" {
			route = "unmatched"
		}
		rec.ObserveHTTP(ctx.Method(), route, status, elapsed)
		return err
	}
}
