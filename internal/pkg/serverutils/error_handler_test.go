package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"drheal-be/pkg/agent"
	"drheal-be/pkg/llm"
	"drheal-be/pkg/retrieval"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("query", "is required"), fiber.StatusBadRequest},
		{"fiber error", fiber.NewError(fiber.StatusNotFound, "Conversation not found"), fiber.StatusNotFound},
		{"retrieval", &retrieval.Error{Op: "embed", Err: errors.New("dial tcp")}, fiber.StatusServiceUnavailable},
		{"timeout", fmt.Errorf("chain: %w", llm.ErrGenerationTimeout), fiber.StatusGatewayTimeout},
		{"generation", fmt.Errorf("chain: %w", llm.ErrGenerationFailure), fiber.StatusBadGateway},
		{"handler wraps timeout", &agent.HandlerError{Handler: agent.SymptomAnalyzer, Err: llm.ErrGenerationTimeout}, fiber.StatusGatewayTimeout},
		{"other", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(tc.err))
		})
	}
}

func serve(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/", func(*fiber.Ctx) error { return err })

	resp, testErr := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, testErr)
	raw, _ := io.ReadAll(resp.Body)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestErrorHandlerMiddleware(t *testing.T) {
	t.Run("validation lists fields", func(t *testing.T) {
		code, body := serve(t, NewValidationError("n_results", "must be at most 20"))
		assert.Equal(t, 400, code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Validation failed", body["message"])
		errs := body["errors"].([]any)
		require.Len(t, errs, 1)
		assert.Equal(t, "n_results", errs[0].(map[string]any)["field"])
	})

	t.Run("fiber error keeps message", func(t *testing.T) {
		code, body := serve(t, fiber.NewError(fiber.StatusConflict, "Email already registered"))
		assert.Equal(t, 409, code)
		assert.Equal(t, "Email already registered", body["message"])
		assert.NotContains(t, body, "is_potential_emergency")
	})

	t.Run("emergency handler failure carries advisory", func(t *testing.T) {
		code, body := serve(t, &agent.HandlerError{
			Handler:            agent.EmergencyTriage,
			PotentialEmergency: true,
			Err:                llm.ErrGenerationFailure,
		})
		assert.Equal(t, 502, code)
		assert.Equal(t, true, body["is_potential_emergency"])
		assert.Contains(t, body["advisory"], "emergency")
	})

	t.Run("unknown errors are hidden", func(t *testing.T) {
		code, body := serve(t, errors.New("pq: password authentication failed"))
		assert.Equal(t, 500, code)
		assert.Equal(t, "Internal server error", body["message"])
	})
}
