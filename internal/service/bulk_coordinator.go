package service

import (
	"log"

	"go-mt-distribution/internal/apperr"
	"go-mt-distribution/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MaxBulkSendSize caps a single bulk-send request. Anything larger is
// rejected upfront to bound worst-case latency and lock contention.
const MaxBulkSendSize = 50

// BulkItemResult is the outcome for a single document in a batch.
type BulkItemResult struct {
	DocumentID uint   `json:"document_id"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// BulkSendResult aggregates a whole batch. SentCount may be lower than
// TotalRequested; individual skips do not fail the batch.
type BulkSendResult struct {
	SentCount      int              `json:"sent_count"`
	TotalRequested int              `json:"total_requested"`
	Results        []BulkItemResult `json:"results"`
}

// BulkCoordinator drives the draft -> sent_to_branch transition over a batch
// of documents with partial-failure tolerance. Documents are processed
// sequentially, one transaction each, which keeps a failed item isolated and
// the write pattern debuggable at the low request volumes this service sees.
type BulkCoordinator interface {
	BulkSend(documentIDs []uint, callerID uuid.UUID) (*BulkSendResult, error)
}

type bulkCoordinator struct {
	engine StatusEngine
	audit  AuditTrail
}

func NewBulkCoordinator(engine StatusEngine, audit AuditTrail) BulkCoordinator {
	return &bulkCoordinator{engine: engine, audit: audit}
}

func (c *bulkCoordinator) BulkSend(documentIDs []uint, callerID uuid.UUID) (*BulkSendResult, error) {
	if len(documentIDs) == 0 {
		return nil, apperr.E(apperr.ErrValidation, "no document ids provided")
	}
	if len(documentIDs) > MaxBulkSendSize {
		return nil, apperr.E(apperr.ErrValidation, "batch of %d exceeds the maximum of %d documents", len(documentIDs), MaxBulkSendSize)
	}

	result := &BulkSendResult{
		TotalRequested: len(documentIDs),
		Results:        make([]BulkItemResult, 0, len(documentIDs)),
	}

	for _, id := range documentIDs {
		item := BulkItemResult{DocumentID: id}
		if _, err := c.engine.Transition(id, model.StatusSentToBranch, callerID, ""); err != nil {
			item.Error = err.Error()
		} else {
			item.Success = true
			result.SentCount++
		}
		result.Results = append(result.Results, item)
	}

	// One aggregate entry for the whole batch. Each successful item already
	// got its own per-document entry through the engine's transaction; this
	// entry records the batch envelope, skips included. The item mutations
	// are committed at this point, so a failed aggregate write is logged
	// rather than turned into a batch failure.
	batchID := uuid.New()
	if err := c.audit.Log(&model.ActivityLog{
		UserID:     callerID,
		Action:     model.ActionBulkSend,
		Resource:   "document_batch",
		ResourceID: batchID.String(),
		Metadata: datatypes.JSONMap{
			"sent_count":      result.SentCount,
			"total_requested": result.TotalRequested,
			"results":         itemsMetadata(result.Results),
		},
	}); err != nil {
		log.Printf("bulk send %s: aggregate audit entry failed: %v", batchID, err)
	}

	if result.SentCount == 0 {
		return result, apperr.E(apperr.ErrValidation, "none of the %d requested documents could be sent", result.TotalRequested)
	}
	return result, nil
}

func itemsMetadata(items []BulkItemResult) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		m := map[string]interface{}{
			"document_id": item.DocumentID,
			"success":     item.Success,
		}
		if item.Error != "" {
			m["error"] = item.Error
		}
		out[i] = m
	}
	return out
}
