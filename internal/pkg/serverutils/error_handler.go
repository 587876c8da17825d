package serverutils

import (
	"errors"

	"drheal-be/pkg/agent"
	"drheal-be/pkg/llm"
	"drheal-be/pkg/retrieval"

	"github.com/gofiber/fiber/v2"
)

// EmergencyAdvisory accompanies every response or alert about a potential emergency.
const EmergencyAdvisory = "Your message may describe a medical emergency. If you or someone else is in danger, call your local emergency number (such as 911) or go to the nearest emergency department now."

type emergencyErrorBody struct {
	BaseResponse[any]
	IsPotentialEmergency bool   `json:"is_potential_emergency"`
	Advisory             string `json:"advisory"`
}

// StatusFor maps a failure onto the HTTP status the API reports for it.
func StatusFor(err error) int {
	var verr *ValidationError
	var ferr *fiber.Error
	switch {
	case errors.As(err, &verr):
		return fiber.StatusBadRequest
	case errors.As(err, &ferr):
		return ferr.Code
	case errors.Is(err, retrieval.ErrRetrieval):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, llm.ErrGenerationTimeout):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, llm.ErrGenerationFailure):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func messageFor(err error, code int) string {
	var ferr *fiber.Error
	switch {
	case errors.As(err, &ferr):
		return ferr.Message
	case code == fiber.StatusBadRequest:
		return "Validation failed"
	case code == fiber.StatusServiceUnavailable:
		return "Knowledge retrieval is unavailable"
	case code == fiber.StatusGatewayTimeout:
		return "The AI service timed out, please try again"
	case code == fiber.StatusBadGateway:
		return "The AI service is unavailable, please try again later"
	default:
		return "Internal server error"
	}
}

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON
// error envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, err)
	}
}

func WriteError(ctx *fiber.Ctx, err error) error {
	code := StatusFor(err)
	body := ErrorResponse(code, messageFor(err, code))

	var verr *ValidationError
	if errors.As(err, &verr) {
		body.Errors = verr.Fields
	}

	var herr *agent.HandlerError
	if errors.As(err, &herr) && herr.PotentialEmergency {
		return ctx.Status(code).JSON(emergencyErrorBody{
			BaseResponse:         body,
			IsPotentialEmergency: true,
			Advisory:             EmergencyAdvisory,
		})
	}
	return ctx.Status(code).JSON(body)
}
