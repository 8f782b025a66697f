package repository

import (
	"go-mt-distribution/internal/model"

	"gorm.io/gorm"
)

// StatusHistoryRepository only appends and reads. The trail is immutable.
type StatusHistoryRepository interface {
	Append(tx *gorm.DB, entry *model.DocumentStatusHistory) error
	FindByDocument(documentID uint) ([]model.DocumentStatusHistory, error)
}

type statusHistoryRepo struct {
	db *gorm.DB
}

func NewStatusHistoryRepo(db *gorm.DB) StatusHistoryRepository {
	return &statusHistoryRepo{db}
}

func (r *statusHistoryRepo) Append(tx *gorm.DB, entry *model.DocumentStatusHistory) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(entry).Error
}

func (r *statusHistoryRepo) FindByDocument(documentID uint) ([]model.DocumentStatusHistory, error) {
	var entries []model.DocumentStatusHistory
	err := r.db.Where("document_id = ?", documentID).Order("created_at ASC, id ASC").Find(&entries).Error
	return entries, err
}
