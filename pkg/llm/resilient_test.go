package llm

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	gerrors "github.com/slok/goresilience/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider returns the queued results in order and repeats the last one.
type scriptedProvider struct {
	mu      sync.Mutex
	calls   int
	results []func(ctx context.Context) (string, error)
}

func (s *scriptedProvider) Chat(ctx context.Context, history []Message, _ ...Option) (string, error) {
	return s.Generate(ctx, history[len(history)-1].Content)
}

func (s *scriptedProvider) Generate(ctx context.Context, _ string, _ ...Option) (string, error) {
	s.mu.Lock()
	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	fn := s.results[i]
	s.mu.Unlock()
	return fn(ctx)
}

func answer(text string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return text, nil }
}

func fail(err error) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return "", err }
}

func hang(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func fastConfig() ResilienceConfig {
	return ResilienceConfig{
		Timeout:     50 * time.Millisecond,
		MaxAttempts: 3,
		BackoffBase: time.Millisecond,
	}
}

func TestResilientClientGenerate(t *testing.T) {
	unavailable := &StatusError{Provider: "test", Code: http.StatusServiceUnavailable}
	badRequest := &StatusError{Provider: "test", Code: http.StatusBadRequest}

	tests := []struct {
		name      string
		results   []func(context.Context) (string, error)
		want      string
		wantKind  error
		wantCalls int
	}{
		{
			name:      "first attempt succeeds",
			results:   []func(context.Context) (string, error){answer("ok")},
			want:      "ok",
			wantCalls: 1,
		},
		{
			name:      "transient failures are retried",
			results:   []func(context.Context) (string, error){fail(unavailable), fail(errors.New("connection reset")), answer("recovered")},
			want:      "recovered",
			wantCalls: 3,
		},
		{
			name:      "persistent failure exhausts attempts",
			results:   []func(context.Context) (string, error){fail(unavailable)},
			wantKind:  ErrGenerationFailure,
			wantCalls: 3,
		},
		{
			name:      "timeouts are retried then reported as timeout",
			results:   []func(context.Context) (string, error){hang},
			wantKind:  ErrGenerationTimeout,
			wantCalls: 3,
		},
		{
			name:      "client errors are not retried",
			results:   []func(context.Context) (string, error){fail(badRequest)},
			wantKind:  ErrGenerationFailure,
			wantCalls: 1,
		},
		{
			name:      "empty answers count as failures",
			results:   []func(context.Context) (string, error){answer(""), answer("second try")},
			want:      "second try",
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &scriptedProvider{results: tt.results}
			client := NewResilientClient(provider, fastConfig(), nil, nil)

			got, err := client.Generate(context.Background(), "prompt")
			assert.Equal(t, tt.wantCalls, provider.calls)

			if tt.wantKind == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}

			require.Error(t, err)
			assert.Empty(t, got)
			assert.ErrorIs(t, err, tt.wantKind)
			var genErr *GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, tt.wantCalls, genErr.Attempts)
		})
	}
}

func TestResilientClientKeepsCauseInspectable(t *testing.T) {
	provider := &scriptedProvider{results: []func(context.Context) (string, error){fail(&StatusError{Code: 429})}}
	cfg := fastConfig()
	cfg.MaxAttempts = 2

	_, err := NewResilientClient(provider, cfg, nil, nil).Generate(context.Background(), "prompt")

	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, 429, status.Code)
	assert.Equal(t, 2, provider.calls)
}

func TestResilientClientStopsOnCallerCancel(t *testing.T) {
	provider := &scriptedProvider{results: []func(context.Context) (string, error){hang}}
	cfg := fastConfig()
	cfg.Timeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := NewResilientClient(provider, cfg, nil, nil).Generate(ctx, "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, provider.calls)
}

func TestResilientClientCircuitBreaker(t *testing.T) {
	provider := &scriptedProvider{results: []func(context.Context) (string, error){fail(errors.New("boom"))}}
	cfg := fastConfig()
	cfg.MaxAttempts = 1
	cfg.BreakerEnabled = true
	client := NewResilientClient(provider, cfg, nil, nil)

	for i := 0; i < 5; i++ {
		_, err := client.Generate(context.Background(), "prompt")
		require.Error(t, err)
	}
	require.Equal(t, 5, provider.calls)

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, gerrors.ErrCircuitOpen)
	assert.ErrorIs(t, err, ErrGenerationFailure)
	assert.Equal(t, 5, provider.calls)
}

func TestResilientClientBackoffDoubles(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []time.Time
	)
	record := func(context.Context) (string, error) {
		mu.Lock()
		calls = append(calls, time.Now())
		mu.Unlock()
		return "", errors.New("connection reset")
	}
	provider := &scriptedProvider{results: []func(context.Context) (string, error){record}}
	cfg := ResilienceConfig{
		Timeout:     time.Second,
		MaxAttempts: 4,
		BackoffBase: 20 * time.Millisecond,
	}

	_, err := NewResilientClient(provider, cfg, nil, nil).Generate(context.Background(), "prompt")
	require.ErrorIs(t, err, ErrGenerationFailure)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 4)
	for i := 1; i < len(calls); i++ {
		want := cfg.BackoffBase << (i - 1)
		assert.GreaterOrEqual(t, calls[i].Sub(calls[i-1]), want, "delay before attempt %d", i+1)
	}
}

func TestResilientClientTimesOutProviderIgnoringContext(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	stuck := func(context.Context) (string, error) {
		<-release
		return "too late", nil
	}
	provider := &scriptedProvider{results: []func(context.Context) (string, error){stuck}}
	cfg := fastConfig()
	cfg.Timeout = 20 * time.Millisecond
	cfg.MaxAttempts = 2

	start := time.Now()
	got, err := NewResilientClient(provider, cfg, nil, nil).Generate(context.Background(), "prompt")

	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, got)
	require.ErrorIs(t, err, ErrGenerationTimeout)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, 2, genErr.Attempts)
}
