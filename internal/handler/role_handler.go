package handler

import (
	"go-mt-distribution/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct {
	service service.RoleService
}

func NewRoleHandler(s service.RoleService) *RoleHandler {
	return &RoleHandler{service: s}
}

// List returns all roles with their permissions
// GET /api/v1/roles
func (h *RoleHandler) List(c *fiber.Ctx) error {
	roles, err := h.service.ListRoles()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(roles)
}

// ListPermissions returns the permission catalog
// GET /api/v1/permissions
func (h *RoleHandler) ListPermissions(c *fiber.Ctx) error {
	permissions, err := h.service.ListPermissions()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(permissions)
}

// Create adds a custom role
// POST /api/v1/roles
func (h *RoleHandler) Create(c *fiber.Ctx) error {
	var req service.CreateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actor, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthenticated"})
	}

	role, err := h.service.CreateRole(&req, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Role created", "data": role})
}

// Update changes a role's description and permission set
// PUT /api/v1/roles/:id
func (h *RoleHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid role ID"})
	}

	var req service.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actor, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthenticated"})
	}

	role, err := h.service.UpdateRole(uint(id), &req, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Role updated", "data": role})
}

// Delete removes a custom role; built-ins are refused
// DELETE /api/v1/roles/:id
func (h *RoleHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid role ID"})
	}

	actor, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthenticated"})
	}

	if err := h.service.DeleteRole(uint(id), actor); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Role deleted"})
}
