package repository

import (
	"go-mt-distribution/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentFilter narrows a document search. Branches is the caller's
// accessible-branch set; an empty slice matches nothing, nil skips branch
// scoping entirely (elevated callers). When VisibleDraftsOf is set alongside
// Branches, drafts of other uploaders are excluded even within an accessible
// branch: drafts are private working copies, not branch-shared.
type DocumentFilter struct {
	Branches        []string
	VisibleDraftsOf *uuid.UUID
	Status          *model.DocumentStatus
	UploaderID      *uuid.UUID
	MonthYear       string
	Keyword         string
}

type DocumentRepository interface {
	Create(tx *gorm.DB, doc *model.Document) error
	FindByID(id uint) (*model.Document, error)
	// UpdateStatus flips the status only when the row still holds the
	// expected from status; the returned count is 0 when a concurrent
	// transition got there first.
	UpdateStatus(tx *gorm.DB, id uint, from, to model.DocumentStatus) (int64, error)
	Delete(tx *gorm.DB, id uint) error
	Search(filter DocumentFilter) ([]model.Document, error)
	FindByUploader(uploaderID uuid.UUID, status model.DocumentStatus) ([]model.Document, error)
}

type documentRepo struct {
	db *gorm.DB
}

func NewDocumentRepo(db *gorm.DB) DocumentRepository {
	return &documentRepo{db}
}

func (r *documentRepo) orDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *documentRepo) Create(tx *gorm.DB, doc *model.Document) error {
	return r.orDB(tx).Create(doc).Error
}

func (r *documentRepo) FindByID(id uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Preload("Uploader").First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) UpdateStatus(tx *gorm.DB, id uint, from, to model.DocumentStatus) (int64, error) {
	result := r.orDB(tx).Model(&model.Document{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

func (r *documentRepo) Delete(tx *gorm.DB, id uint) error {
	return r.orDB(tx).Delete(&model.Document{}, id).Error
}

func (r *documentRepo) Search(filter DocumentFilter) ([]model.Document, error) {
	q := r.db.Preload("Uploader")

	if filter.Branches != nil {
		if filter.VisibleDraftsOf != nil {
			q = q.Where(
				"(status <> ? AND branch_ba_code IN ?) OR (status = ? AND uploader_id = ?)",
				model.StatusDraft, filter.Branches, model.StatusDraft, *filter.VisibleDraftsOf,
			)
		} else {
			q = q.Where("branch_ba_code IN ?", filter.Branches)
		}
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.UploaderID != nil {
		q = q.Where("uploader_id = ?", *filter.UploaderID)
	}
	if filter.MonthYear != "" {
		q = q.Where("month_year = ?", filter.MonthYear)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		q = q.Where("mt_number ILIKE ? OR subject ILIKE ?", like, like)
	}

	var docs []model.Document
	err := q.Order("created_at DESC").Find(&docs).Error
	return docs, err
}

func (r *documentRepo) FindByUploader(uploaderID uuid.UUID, status model.DocumentStatus) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.Where("uploader_id = ? AND status = ?", uploaderID, status).
		Order("created_at DESC").Find(&docs).Error
	return docs, err
}
