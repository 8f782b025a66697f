package handler

import (
	"go-mt-distribution/internal/model"
	"go-mt-distribution/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DocumentHandler struct {
	documents service.DocumentService
	engine    service.StatusEngine
	bulk      service.BulkCoordinator
}

func NewDocumentHandler(documents service.DocumentService, engine service.StatusEngine, bulk service.BulkCoordinator) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		engine:    engine,
		bulk:      bulk,
	}
}

// Create registers a new draft transmittal
// POST /api/v1/documents
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var req service.CreateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	uploaderID, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthenticated"})
	}

	doc, err := h.documents.Create(&req, uploaderID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Document created", "data": doc})
}

// Get returns one document within the caller's visibility
// GET /api/v1/documents/:id
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid document ID"})
	}

	caller, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthenticated"})
	}

	doc, err := h.documents.Get(uint(id), caller)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(doc)
}

// Search lists documents, branch-scoped to the caller
// GET /api/v1/documents
func (h *DocumentHandler) Search(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthenticated"})
	}

	req := service.SearchDocumentsRequest{
		BranchBaCode: c.Query("branch_ba"),
		Status:       c.Query("status"),
		MonthYear:    c.Query("month_year"),
		Keyword:      c.Query("q"),
	}

	docs, err := h.documents.Search(&req, caller)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(docs)
}

type updateStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// UpdateStatus moves a document through its lifecycle
// PUT /api/v1/documents/:id/status
func (h *DocumentHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid document ID"})
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	caller, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthenticated"})
	}

	doc, err := h.engine.Transition(uint(id), model.DocumentStatus(req.Status), caller, req.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Status updated", "data": doc})
}

// BulkSend pushes a batch of drafts to their branches
// POST /api/v1/documents/bulk-send
func (h *DocumentHandler) BulkSend(c *fiber.Ctx) error {
	var req struct {
		DocumentIDs []uint `json:"document_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	caller, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthenticated"})
	}

	result, err := h.bulk.BulkSend(req.DocumentIDs, caller)
	if err != nil {
		if result != nil {
			// Zero items succeeded; the envelope still carries per-item detail.
			return c.Status(400).JSON(fiber.Map{"error": err.Error(), "data": result})
		}
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Bulk send finished", "data": result})
}

// Delete removes a draft (uploader) or any document (privileged)
// DELETE /api/v1/documents/:id
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid document ID"})
	}

	caller, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthenticated"})
	}

	if err := h.documents.Delete(uint(id), caller); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Document deleted"})
}

// History returns the immutable status trail of a document
// GET /api/v1/documents/:id/history
func (h *DocumentHandler) History(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid document ID"})
	}

	caller, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthenticated"})
	}

	entries, err := h.documents.History(uint(id), caller)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}
