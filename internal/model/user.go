package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"
)

// User represents an authenticated user. Accounts are created on first
// successful login against the central directory and refreshed on every
// subsequent login; the core never hard-deletes them.
type User struct {
	BaseModel
	Username   string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username" validate:"required"`
	FullName   string `gorm:"type:varchar(255)" json:"full_name"`
	Password   string `gorm:"type:varchar(255)" json:"-"` // Only set for the local bootstrap admin
	BranchBa   string `gorm:"type:varchar(10);index" json:"branch_ba"`
	Department string `gorm:"type:varchar(100)" json:"department"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`
	Roles      []Role `gorm:"many2many:user_roles;constraint:OnDelete:CASCADE;" json:"roles,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// SetPassword hashes and sets the local password
func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword verifies the provided password against the stored hash
func (u *User) CheckPassword(password string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// HasRole checks the preloaded role set
func (u *User) HasRole(name RoleName) bool {
	for _, r := range u.Roles {
		if r.Name == string(name) {
			return true
		}
	}
	return false
}

// RoleNames returns the names of all preloaded roles
func (u *User) RoleNames() []string {
	names := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = r.Name
	}
	return names
}

// UserResponse is used for API responses
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	FullName    string     `json:"full_name"`
	BranchBa    string     `json:"branch_ba"`
	Department  string     `json:"department"`
	IsActive    bool       `json:"is_active"`
	Roles       []string   `json:"roles"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		BranchBa:    u.BranchBa,
		Department:  u.Department,
		IsActive:    u.IsActive,
		Roles:       u.RoleNames(),
		LastLoginAt: u.LastLoginAt,
	}
}
