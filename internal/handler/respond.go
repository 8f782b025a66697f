package handler

import (
	"go-mt-distribution/internal/apperr"
	"go-mt-distribution/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError maps taxonomy errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	code := apperr.StatusCode(err)
	if code >= 500 {
		// Internals of a dependency failure stay out of the response body.
		return c.Status(code).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func callerID(c *fiber.Ctx) (uuid.UUID, error) {
	return middleware.CallerID(c)
}
