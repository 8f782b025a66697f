package model

// RoleName is a closed set of role identifiers. Using a dedicated type keeps
// role checks out of the realm of stringly-typed typos.
type RoleName string

const (
	RoleAdmin           RoleName = "admin"
	RoleManager         RoleName = "manager"
	RoleUser            RoleName = "user"
	RoleGuest           RoleName = "guest"
	RoleUploader        RoleName = "uploader"
	RoleBranchUser      RoleName = "branch_user"
	RoleBranchManager   RoleName = "branch_manager"
	RoleDistrictManager RoleName = "district_manager"
)

// DefaultRoleName is attached automatically whenever a user would otherwise
// end up with no role at all.
const DefaultRoleName = RoleUser

// Valid reports whether the name is one of the known role names.
func (r RoleName) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser, RoleGuest,
		RoleUploader, RoleBranchUser, RoleBranchManager, RoleDistrictManager:
		return true
	}
	return false
}

// Protected reports whether the role may never be deleted or renamed.
func (r RoleName) Protected() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleGuest:
		return true
	}
	return false
}

// Elevated reports whether the role sees every branch instead of its own.
func (r RoleName) Elevated() bool {
	return r == RoleAdmin || r == RoleDistrictManager
}

func (r RoleName) String() string {
	return string(r)
}

// Role represents a user role in the system
type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	Permissions []Permission `gorm:"many2many:role_permissions;constraint:OnDelete:CASCADE;" json:"permissions,omitempty"`
}

// DefaultRoles defines the seed roles in the system
var DefaultRoles = []Role{
	{Name: string(RoleAdmin), Description: "Full system access across all branches"},
	{Name: string(RoleManager), Description: "District office management access"},
	{Name: string(RoleUser), Description: "Default role with read-only access"},
	{Name: string(RoleGuest), Description: "Unprivileged guest access"},
	{Name: string(RoleUploader), Description: "Creates and sends MT transmittals from the district office"},
	{Name: string(RoleBranchUser), Description: "Processes incoming transmittals at a branch"},
	{Name: string(RoleBranchManager), Description: "Branch supervisor, limited to own branch"},
	{Name: string(RoleDistrictManager), Description: "District supervisor with visibility over all branches"},
}
