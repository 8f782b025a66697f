package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document is a scanned MT transmittal routed between the district office and
// a branch. It is created as a draft by its uploader and afterwards mutated
// only through the status engine.
type Document struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	BranchBaCode string         `gorm:"type:varchar(10);index;not null" json:"branch_ba_code" validate:"required"`
	UploaderID   uuid.UUID      `gorm:"type:uuid;index;not null" json:"uploader_id"`
	Uploader     *User          `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
	Status       DocumentStatus `gorm:"type:varchar(32);index;not null;default:draft" json:"status"`

	// Transmittal business metadata
	MtNumber  string    `gorm:"type:varchar(50);index;not null" json:"mt_number" validate:"required"`
	MtDate    time.Time `gorm:"type:date;not null" json:"mt_date"`
	Subject   string    `gorm:"type:varchar(255);not null" json:"subject" validate:"required"`
	MonthYear string    `gorm:"type:varchar(7);index" json:"month_year" validate:"required,month_year"` // YYYY-MM

	// Manifest of additional scanned files attached to the transmittal.
	// Storage itself lives outside this service; only the manifest is kept.
	AdditionalFiles datatypes.JSONMap `gorm:"type:jsonb" json:"additional_files,omitempty"`

	// Disbursement fields, filled in at the branch
	DisbursementNumber *string    `gorm:"type:varchar(50)" json:"disbursement_number,omitempty"`
	DisbursementDate   *time.Time `gorm:"type:date" json:"disbursement_date,omitempty"`
}

// DocumentStatusHistory is the append-only trail of lifecycle moves. Rows are
// never updated or deleted.
type DocumentStatusHistory struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	DocumentID uint           `gorm:"index;not null" json:"document_id"`
	FromStatus DocumentStatus `gorm:"type:varchar(32);not null" json:"from_status"`
	ToStatus   DocumentStatus `gorm:"type:varchar(32);not null" json:"to_status"`
	ChangedBy  uuid.UUID      `gorm:"type:uuid;not null" json:"changed_by"`
	Comment    string         `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time      `json:"created_at"`
}
