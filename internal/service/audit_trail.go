package service

import (
	"go-mt-distribution/internal/apperr"
	"go-mt-distribution/internal/model"
	"go-mt-distribution/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditTrail records every mutating action as an immutable log entry. Writes
// are synchronous; mutating services call LogTx inside the same transaction
// as the mutation so neither can commit without the other.
type AuditTrail interface {
	Log(entry *model.ActivityLog) error
	LogTx(tx *gorm.DB, entry *model.ActivityLog) error
	Recent(limit int) ([]model.ActivityLog, error)
	ForUser(userID uuid.UUID, limit int) ([]model.ActivityLog, error)
}

type auditTrail struct {
	activityRepo repository.ActivityLogRepository
}

func NewAuditTrail(activityRepo repository.ActivityLogRepository) AuditTrail {
	return &auditTrail{activityRepo: activityRepo}
}

func (a *auditTrail) Log(entry *model.ActivityLog) error {
	return a.LogTx(nil, entry)
}

func (a *auditTrail) LogTx(tx *gorm.DB, entry *model.ActivityLog) error {
	if err := a.activityRepo.Append(tx, entry); err != nil {
		return apperr.E(apperr.ErrDependency, "failed to write activity log: %v", err)
	}
	return nil
}

func (a *auditTrail) Recent(limit int) ([]model.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	entries, err := a.activityRepo.Recent(limit)
	if err != nil {
		return nil, apperr.E(apperr.ErrDependency, "failed to read activity log: %v", err)
	}
	return entries, nil
}

func (a *auditTrail) ForUser(userID uuid.UUID, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	entries, err := a.activityRepo.FindByUser(userID, limit)
	if err != nil {
		return nil, apperr.E(apperr.ErrDependency, "failed to read activity log: %v", err)
	}
	return entries, nil
}
