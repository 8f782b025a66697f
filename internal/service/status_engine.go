package service

import (
	"errors"
	"strconv"

	"go-mt-distribution/internal/apperr"
	"go-mt-distribution/internal/model"
	"go-mt-distribution/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StatusEngine is the document lifecycle state machine. It validates that the
// requested status is a direct successor of the current one, that the caller
// may touch the document at all, and that the caller's roles are on the edge's
// allow list. On success it persists the new status together with exactly one
// history row and one activity log row in a single transaction.
//
// The engine is deliberately not idempotent: replaying a successful request
// fails because the document no longer holds the expected from status.
type StatusEngine interface {
	Transition(documentID uint, target model.DocumentStatus, callerID uuid.UUID, comment string) (*model.Document, error)
}

type statusEngine struct {
	docRepo     repository.DocumentRepository
	historyRepo repository.StatusHistoryRepository
	audit       AuditTrail
	resolver    PermissionResolver
	guard       AccessGuard
	txRunner    repository.TxRunner
	notifier    Notifier
}

func NewStatusEngine(
	docRepo repository.DocumentRepository,
	historyRepo repository.StatusHistoryRepository,
	audit AuditTrail,
	resolver PermissionResolver,
	guard AccessGuard,
	txRunner repository.TxRunner,
	notifier Notifier,
) StatusEngine {
	return &statusEngine{
		docRepo:     docRepo,
		historyRepo: historyRepo,
		audit:       audit,
		resolver:    resolver,
		guard:       guard,
		txRunner:    txRunner,
		notifier:    notifier,
	}
}

func (e *statusEngine) Transition(documentID uint, target model.DocumentStatus, callerID uuid.UUID, comment string) (*model.Document, error) {
	if !target.Valid() {
		return nil, apperr.E(apperr.ErrValidation, "unknown document status %q", target)
	}

	doc, err := e.docRepo.FindByID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.ErrNotFound, "document %d not found", documentID)
		}
		return nil, apperr.E(apperr.ErrDependency, "failed to load document: %v", err)
	}

	from := doc.Status
	allowedRoles, ok := model.AllowedTransitionRoles(from, target)
	if !ok {
		return nil, apperr.E(apperr.ErrInvalidTransition, "cannot move document %d from %s to %s", documentID, from, target)
	}

	allowed, err := e.guard.CanAccess(callerID, doc)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.E(apperr.ErrPermissionDenied, "document %d is outside your branch scope", documentID)
	}

	access, err := e.resolver.Resolve(callerID)
	if err != nil {
		return nil, err
	}
	if !intersects(access, allowedRoles) {
		return nil, apperr.E(apperr.ErrPermissionDenied, "moving %s to %s requires one of roles %v", from, target, allowedRoles)
	}

	err = e.txRunner.InTx(func(tx *gorm.DB) error {
		rows, err := e.docRepo.UpdateStatus(tx, documentID, from, target)
		if err != nil {
			return apperr.E(apperr.ErrDependency, "failed to update status: %v", err)
		}
		if rows == 0 {
			// A concurrent transition won the race; the from status no
			// longer matches, so this request is no longer legal.
			return apperr.E(apperr.ErrInvalidTransition, "document %d is no longer in status %s", documentID, from)
		}

		if err := e.historyRepo.Append(tx, &model.DocumentStatusHistory{
			DocumentID: documentID,
			FromStatus: from,
			ToStatus:   target,
			ChangedBy:  callerID,
			Comment:    comment,
		}); err != nil {
			return apperr.E(apperr.ErrDependency, "failed to append status history: %v", err)
		}

		return e.audit.LogTx(tx, &model.ActivityLog{
			UserID:     callerID,
			Action:     model.ActionStatusChange,
			Resource:   "document",
			ResourceID: strconv.FormatUint(uint64(documentID), 10),
			Metadata: datatypes.JSONMap{
				"from":    string(from),
				"to":      string(target),
				"comment": comment,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	updated, err := e.docRepo.FindByID(documentID)
	if err != nil {
		// The transition committed; fall back to the in-memory copy.
		doc.Status = target
		updated = doc
	}

	// Best-effort notification. Never rolls back or fails the transition.
	if e.notifier != nil {
		event := map[string]interface{}{
			"type":        "document_status_changed",
			"document_id": documentID,
			"branch_ba":   updated.BranchBaCode,
			"mt_number":   updated.MtNumber,
			"from":        string(from),
			"to":          string(target),
			"changed_by":  callerID.String(),
		}
		go e.notifier.Publish(event)
	}

	return updated, nil
}

func intersects(access *ResolvedAccess, roles []model.RoleName) bool {
	for _, role := range roles {
		if access.HasRole(role) {
			return true
		}
	}
	return false
}
