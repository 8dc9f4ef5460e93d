package handlers

import (
	"achievement-wordle/apperrors"

	"github.com/gofiber/fiber/v2"
)

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.CodeNotFound:
		return fiber.StatusNotFound
	case apperrors.CodeInvalidInput:
		return fiber.StatusBadRequest
	case apperrors.CodeServiceUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as {"error": code, "message": text}. Internal
// causes are replaced by a generic retry message.
func respondError(c *fiber.Ctx, err error) error {
	code := apperrors.CodeOf(err)
	return c.Status(statusFor(code)).JSON(fiber.Map{
		"error":   string(code),
		"message": apperrors.UserMessage(err),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   string(apperrors.CodeInvalidInput),
		"message": message,
	})
}
