package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Activity log actions
const (
	ActionDocumentCreate   = "document:create"
	ActionDocumentDelete   = "document:delete"
	ActionStatusChange     = "document:status_change"
	ActionBulkSend         = "document:bulk_send"
	ActionRoleCreate       = "role:create"
	ActionRoleUpdate       = "role:update"
	ActionRoleDelete       = "role:delete"
	ActionUserRolesUpdate  = "user:roles_update"
	ActionRoleAutoAssigned = "user:role_auto_assigned"
	ActionLogin            = "auth:login"
)

// ActivityLog is the append-only audit trail. Every mutating operation writes
// exactly one entry in the same transaction as the mutation it describes.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	UserID     uuid.UUID         `gorm:"type:uuid;index;not null" json:"user_id"`
	Action     string            `gorm:"type:varchar(64);index;not null" json:"action"`
	Resource   string            `gorm:"type:varchar(64);not null" json:"resource"`
	ResourceID string            `gorm:"type:varchar(64);index" json:"resource_id"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	IPAddress  string            `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent  string            `gorm:"type:varchar(255)" json:"user_agent"`
	CreatedAt  time.Time         `json:"created_at"`
}
