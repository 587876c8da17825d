package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drheal-be/internal/pkg/logger"
	"drheal-be/pkg/metrics"

	"github.com/sethvargo/go-retry"
	"github.com/slok/goresilience"
	"github.com/slok/goresilience/circuitbreaker"
	gerrors "github.com/slok/goresilience/errors"
	"github.com/slok/goresilience/timeout"
)

var errAttemptTimeout = errors.New("attempt deadline exceeded")

type ResilienceConfig struct {
	Timeout        time.Duration
	MaxAttempts    int
	BackoffBase    time.Duration
	BreakerEnabled bool
}

func (c ResilienceConfig) withDefaults() ResilienceConfig {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	return c
}

// ResilientClient bounds every generation call with a per-attempt timeout,
// exponential backoff between attempts and an optional circuit breaker.
// It never substitutes a placeholder answer: exhaustion is a *GenerationError.
type ResilientClient struct {
	provider LLMProvider
	cfg      ResilienceConfig
	runner   goresilience.Runner
	metrics  *metrics.Recorder
	logger   logger.ILogger
}

func NewResilientClient(provider LLMProvider, cfg ResilienceConfig, rec *metrics.Recorder, log logger.ILogger) *ResilientClient {
	if log == nil {
		log = logger.NewNopLogger()
	}
	c := &ResilientClient{
		provider: provider,
		cfg:      cfg.withDefaults(),
		metrics:  rec,
		logger:   log,
	}
	// timeout -> circuit breaker: the deadline holds even for a provider
	// that ignores its context.
	middlewares := []goresilience.Middleware{
		timeout.NewMiddleware(timeout.Config{Timeout: c.cfg.Timeout}),
	}
	if c.cfg.BreakerEnabled {
		middlewares = append(middlewares, circuitbreaker.NewMiddleware(circuitbreaker.Config{
			ErrorPercentThresholdToOpen:        50,
			MinimumRequestToOpen:               5,
			SuccessfulRequiredOnHalfOpen:       1,
			WaitDurationInOpenState:            60 * time.Second,
			MetricsSlidingWindowBucketQuantity: 10,
			MetricsBucketDuration:              1 * time.Second,
		}))
	}
	c.runner = goresilience.RunnerChain(middlewares...)
	return c
}

func (c *ResilientClient) Generate(ctx context.Context, prompt string) (string, error) {
	var (
		text     string
		lastErr  error
		attempts int
	)

	backoff := retry.WithMaxRetries(uint64(c.cfg.MaxAttempts-1), retry.NewExponential(c.cfg.BackoffBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		out, err := c.attempt(ctx, prompt)
		if err == nil {
			text = out
			c.metrics.GenerationAttempt("success")
			return nil
		}

		lastErr = err
		c.metrics.GenerationAttempt(outcome(err))
		c.logger.Warn("LLM", "Generation attempt failed", map[string]interface{}{
			"attempt": attempts,
			"error":   err.Error(),
		})
		if c.retryable(ctx, err) {
			return retry.RetryableError(err)
		}
		return err
	})

	if err == nil {
		c.logger.Info("LLM", "Generated response", map[string]interface{}{
			"prompt_length":   len(prompt),
			"response_length": len(text),
			"attempts":        attempts,
		})
		return text, nil
	}

	if lastErr == nil {
		// cancelled while waiting between attempts
		lastErr = err
	}
	kind := ErrGenerationFailure
	if errors.Is(lastErr, errAttemptTimeout) || errors.Is(lastErr, context.DeadlineExceeded) {
		kind = ErrGenerationTimeout
	}
	c.logger.Error("LLM", "Generation failed", map[string]interface{}{
		"attempts": attempts,
		"error":    lastErr.Error(),
	})
	return "", &GenerationError{Kind: kind, Attempts: attempts, Err: lastErr}
}

func (c *ResilientClient) attempt(ctx context.Context, prompt string) (string, error) {
	// a timed out call may still finish in the background, so its answer
	// only travels over the channel
	result := make(chan string, 1)
	err := c.runner.Run(ctx, func(ctx context.Context) error {
		text, err := c.provider.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		if text == "" {
			return ErrEmptyResponse
		}
		result <- text
		return nil
	})

	if err == nil {
		return <-result, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if errors.Is(err, gerrors.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return "", fmt.Errorf("%w after %s: %v", errAttemptTimeout, c.cfg.Timeout, err)
	}
	return "", err
}

func (c *ResilientClient) retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, gerrors.ErrCircuitOpen) {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.Retryable()
	}
	return true
}

func outcome(err error) string {
	switch {
	case errors.Is(err, errAttemptTimeout):
		return "timeout"
	case errors.Is(err, gerrors.ErrCircuitOpen):
		return "circuit_open"
	default:
		return "error"
	}
}
