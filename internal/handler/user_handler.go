package handler

import (
	"go-mt-distribution/internal/repository"
	"go-mt-distribution/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UserHandler struct {
	userRepo repository.UserRepository
	roles    service.RoleService
}

func NewUserHandler(userRepo repository.UserRepository, roles service.RoleService) *UserHandler {
	return &UserHandler{userRepo: userRepo, roles: roles}
}

// List returns all user accounts
// GET /api/v1/users
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.userRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	responses := make([]interface{}, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return c.JSON(responses)
}

// GetAccess returns a user's effective roles and permissions
// GET /api/v1/users/:id/access
func (h *UserHandler) GetAccess(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	access, err := h.roles.GetUserRolesAndPermissions(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(access)
}

type updateUserRolesRequest struct {
	Roles []string `json:"roles"`
}

// UpdateRoles replaces a user's role assignments. An empty list falls back to
// the default role.
// PUT /api/v1/users/:id/roles
func (h *UserHandler) UpdateRoles(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var req updateUserRolesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actor, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthenticated"})
	}

	user, err := h.roles.UpdateUserRoles(userID, req.Roles, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User roles updated", "data": user.ToResponse()})
}
