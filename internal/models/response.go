package models

import (
	"github.com/gofiber/fiber/v2"
)

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Count      *int        `json:"count,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Code       string      `json:"code,omitempty"`
	Field      string      `json:"field,omitempty"`
	Details    string      `json:"details,omitempty"`
}

// ErrorEnvelope builds the failure envelope for err. Wrapped causes are only
// included when withDetails is set.
func ErrorEnvelope(err error, withDetails bool) Envelope {
	appErr := AsAppError(err)
	env := Envelope{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
		Field:   appErr.Field,
	}
	if withDetails && appErr.Err != nil {
		env.Details = appErr.Err.Error()
	}
	return env
}

// RespondWithError writes a standardized error envelope with the given status.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(ErrorEnvelope(err, false))
}

// RespondWithAppError writes err using the status its code maps to.
func RespondWithAppError(c *fiber.Ctx, err error) error {
	appErr := AsAppError(err)
	return RespondWithError(c, appErr.StatusCode(), appErr)
}
