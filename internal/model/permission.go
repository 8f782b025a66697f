package model

import (
	"fmt"
	"strings"
)

// PermissionName is a colon-namespaced permission identifier, e.g.
// "documents:update_status". Construct through NewPermissionName so a
// malformed name is rejected up front instead of silently never matching.
type PermissionName string

// NewPermissionName validates the "resource:action" convention.
func NewPermissionName(s string) (PermissionName, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("permission %q must follow the resource:action convention", s)
	}
	if s != strings.ToLower(s) || strings.ContainsAny(s, " \t") {
		return "", fmt.Errorf("permission %q must be lowercase without whitespace", s)
	}
	return PermissionName(s), nil
}

func (p PermissionName) String() string {
	return string(p)
}

// Resource returns the namespace part before the colon.
func (p PermissionName) Resource() string {
	if i := strings.IndexByte(string(p), ':'); i >= 0 {
		return string(p)[:i]
	}
	return string(p)
}

// Well-known permissions. Kept as constants so call sites cannot drift from
// the seeded names.
const (
	PermDocumentsView         PermissionName = "documents:view"
	PermDocumentsCreate       PermissionName = "documents:create"
	PermDocumentsUpdate       PermissionName = "documents:update"
	PermDocumentsUpdateStatus PermissionName = "documents:update_status"
	PermDocumentsDelete       PermissionName = "documents:delete"
	PermDocumentsBulkSend     PermissionName = "documents:bulk_send"
	PermAdminRoles            PermissionName = "admin:roles"
	PermAdminUsers            PermissionName = "admin:users"
	PermBranchesView          PermissionName = "branches:view"
	PermBranchesManage        PermissionName = "branches:manage"
	PermActivityView          PermissionName = "activity:view"
)

// Permission represents a named capability assignable to roles
type Permission struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// DefaultPermissions seeds the permission catalog
var DefaultPermissions = []Permission{
	{Name: string(PermDocumentsView), Description: "View transmittal documents"},
	{Name: string(PermDocumentsCreate), Description: "Create draft transmittals"},
	{Name: string(PermDocumentsUpdate), Description: "Update transmittal metadata"},
	{Name: string(PermDocumentsUpdateStatus), Description: "Move a transmittal through its lifecycle"},
	{Name: string(PermDocumentsDelete), Description: "Delete transmittals"},
	{Name: string(PermDocumentsBulkSend), Description: "Send multiple drafts to branches at once"},
	{Name: string(PermAdminRoles), Description: "Manage roles and role assignments"},
	{Name: string(PermAdminUsers), Description: "Manage user accounts"},
	{Name: string(PermBranchesView), Description: "View branch directory"},
	{Name: string(PermBranchesManage), Description: "Manage branch directory entries"},
	{Name: string(PermActivityView), Description: "View the activity log"},
}

// DefaultRolePermissions maps each seed role to its permission names.
var DefaultRolePermissions = map[RoleName][]PermissionName{
	RoleAdmin: {
		PermDocumentsView, PermDocumentsCreate, PermDocumentsUpdate,
		PermDocumentsUpdateStatus, PermDocumentsDelete, PermDocumentsBulkSend,
		PermAdminRoles, PermAdminUsers, PermBranchesView, PermBranchesManage,
		PermActivityView,
	},
	RoleManager: {
		PermDocumentsView, PermDocumentsUpdateStatus, PermBranchesView, PermActivityView,
	},
	RoleUser: {
		PermDocumentsView,
	},
	RoleGuest: {},
	RoleUploader: {
		PermDocumentsView, PermDocumentsCreate, PermDocumentsUpdate,
		PermDocumentsUpdateStatus, PermDocumentsBulkSend,
	},
	RoleBranchUser: {
		PermDocumentsView, PermDocumentsUpdateStatus,
	},
	RoleBranchManager: {
		PermDocumentsView, PermDocumentsUpdateStatus, PermBranchesView,
	},
	RoleDistrictManager: {
		PermDocumentsView, PermDocumentsUpdateStatus, PermBranchesView, PermActivityView,
	},
}
