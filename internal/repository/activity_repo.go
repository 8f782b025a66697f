package repository

import (
	"go-mt-distribution/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLogRepository only appends and reads. Entries are never updated or
// deleted.
type ActivityLogRepository interface {
	Append(tx *gorm.DB, entry *model.ActivityLog) error
	Recent(limit int) ([]model.ActivityLog, error)
	FindByUser(userID uuid.UUID, limit int) ([]model.ActivityLog, error)
}

type activityLogRepo struct {
	db *gorm.DB
}

func NewActivityLogRepo(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepo{db}
}

func (r *activityLogRepo) Append(tx *gorm.DB, entry *model.ActivityLog) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(entry).Error
}

func (r *activityLogRepo) Recent(limit int) ([]model.ActivityLog, error) {
	var entries []model.ActivityLog
	err := r.db.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

func (r *activityLogRepo) FindByUser(userID uuid.UUID, limit int) ([]model.ActivityLog, error) {
	var entries []model.ActivityLog
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
