package middleware

import (
	"strings"

	"go-mt-distribution/internal/model"
	"go-mt-distribution/internal/repository"
	"go-mt-distribution/internal/service"
	"go-mt-distribution/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequireAuth validates the JWT and sets user info in the request context.
// The token's role list is not trusted for enforcement; RequirePermission and
// RequireRole re-resolve from the database on every call.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}
		if !user.IsActive {
			return c.Status(401).JSON(fiber.Map{"error": "User account is inactive"})
		}

		c.Locals("user_id", user.ID.String())
		c.Locals("username", user.Username)
		c.Locals("branch_ba", user.BranchBa)

		return c.Next()
	}
}

// RequirePermission gates a route on a permission, resolved fresh per
// request. The admin role bypasses the specific permission here; that bypass
// is granted explicitly at each route, not inside the resolver.
func RequirePermission(resolver service.PermissionResolver, permission model.PermissionName) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CallerID(c)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Unauthenticated"})
		}

		ok, err := resolver.HasPermission(userID, permission, true)
		if err != nil || !ok {
			// Resolution errors fail closed.
			return c.Status(403).JSON(fiber.Map{
				"error": "Forbidden: requires '" + string(permission) + "' permission",
			})
		}
		return c.Next()
	}
}

// RequireAnyRole gates a route on role membership, resolved fresh per request.
func RequireAnyRole(resolver service.PermissionResolver, roles ...model.RoleName) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CallerID(c)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Unauthenticated"})
		}

		for _, role := range roles {
			if ok, err := resolver.HasRole(userID, role); err == nil && ok {
				return c.Next()
			}
		}
		return c.Status(403).JSON(fiber.Map{"error": "Forbidden: insufficient role"})
	}
}

// CallerID extracts the authenticated user id set by RequireAuth.
func CallerID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("user_id").(string)
	return uuid.Parse(raw)
}
