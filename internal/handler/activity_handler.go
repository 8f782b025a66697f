package handler

import (
	"go-mt-distribution/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ActivityHandler struct {
	audit service.AuditTrail
}

func NewActivityHandler(audit service.AuditTrail) *ActivityHandler {
	return &ActivityHandler{audit: audit}
}

// Recent returns the newest audit entries, optionally scoped to one user
// GET /api/v1/activity-logs?user_id=&limit=
func (h *ActivityHandler) Recent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)

	if raw := c.Query("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
		}
		entries, err := h.audit.ForUser(userID, limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(entries)
	}

	entries, err := h.audit.Recent(limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}
