package llm

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrGenerationTimeout = errors.New("generation timed out")
	ErrGenerationFailure = errors.New("generation failed")
	ErrEmptyResponse     = errors.New("model returned an empty response")
)

// StatusError is a non-2xx answer from a model backend.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error: status %d, body: %s", e.Provider, e.Code, e.Body)
}

// Retryable reports whether another attempt may succeed.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusRequestTimeout ||
		e.Code == http.StatusTooManyRequests ||
		e.Code >= 500
}

// GenerationError is returned once the resilient client gives up. Kind is
// ErrGenerationTimeout or ErrGenerationFailure.
type GenerationError struct {
	Kind     error
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%v after %d attempt(s): %v", e.Kind, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
