package handler

import (
	"go-mt-distribution/internal/model"
	"go-mt-distribution/internal/repository"
	"go-mt-distribution/internal/service"
	"go-mt-distribution/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type BranchHandler struct {
	branchRepo repository.BranchRepository
	guard      service.AccessGuard
}

func NewBranchHandler(branchRepo repository.BranchRepository, guard service.AccessGuard) *BranchHandler {
	return &BranchHandler{branchRepo: branchRepo, guard: guard}
}

// List returns the branch directory
// GET /api/v1/branches
func (h *BranchHandler) List(c *fiber.Ctx) error {
	branches, err := h.branchRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch branches"})
	}
	return c.JSON(branches)
}

// Accessible returns the BA codes the caller may see documents for
// GET /api/v1/branches/accessible
func (h *BranchHandler) Accessible(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthenticated"})
	}

	codes, err := h.guard.AccessibleBranches(caller)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"branches": codes})
}

// Create adds a branch directory entry
// POST /api/v1/branches
func (h *BranchHandler) Create(c *fiber.Ctx) error {
	var branch model.Branch
	if err := c.BodyParser(&branch); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(&branch); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Field '" + errs[0].FailedField + "' failed on '" + errs[0].Tag + "'"})
	}

	branch.ID = 0
	branch.IsActive = true
	if err := h.branchRepo.Create(&branch); err != nil {
		return c.Status(409).JSON(fiber.Map{"error": "Branch with this BA code already exists"})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Branch created", "data": branch})
}
