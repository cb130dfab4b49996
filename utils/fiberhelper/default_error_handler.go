package fiberhelpers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"stockwatch/utils/log"
)

// ErrorResponse : JSON body of every failed request
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusOf : HTTP status for a domain error, ok false when unknown
type StatusOf func(err error) (status int, ok bool)

// NewErrorHandler : maps errors to {code, message}; fiber errors keep their
// status, unknown errors become 500 without leaking the message
func NewErrorHandler(statusOf StatusOf) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		status, message := fiber.StatusInternalServerError, "Internal Server Error"

		var fiberError *fiber.Error
		switch {
		case errors.Is(err, ErrRequestParse):
			status, message = fiber.StatusBadRequest, err.Error()
		case errors.As(err, &fiberError):
			status, message = fiberError.Code, fiberError.Message
		default:
			if s, ok := statusOf(err); ok {
				status, message = s, err.Error()
			}
		}

		if status >= fiber.StatusInternalServerError {
			log.Errorf("%s %s: %v", ctx.Method(), ctx.Path(), err)
		}
		return ctx.Status(status).JSON(ErrorResponse{Code: strconv.Itoa(status), Message: message})
	}
}
