package service

import (
	"errors"
	"sort"

	"go-mt-distribution/internal/apperr"
	"go-mt-distribution/internal/model"
	"go-mt-distribution/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ResolvedAccess is a user's effective role and permission set.
type ResolvedAccess struct {
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// HasRole checks the resolved role set.
func (a *ResolvedAccess) HasRole(name model.RoleName) bool {
	for _, r := range a.Roles {
		if r == string(name) {
			return true
		}
	}
	return false
}

// HasPermission checks the resolved permission set.
func (a *ResolvedAccess) HasPermission(name model.PermissionName) bool {
	for _, p := range a.Permissions {
		if p == string(name) {
			return true
		}
	}
	return false
}

// Elevated reports whether any resolved role sees all branches.
func (a *ResolvedAccess) Elevated() bool {
	for _, r := range a.Roles {
		if model.RoleName(r).Elevated() {
			return true
		}
	}
	return false
}

// PermissionResolver expands a user into its effective roles and permissions.
// A user always resolves to at least one role: a user with no assignments
// gets the default role attached as a persisted side effect.
//
// Resolution happens per request. Nothing here is cached, so a role change
// takes effect on the affected user's very next call.
type PermissionResolver interface {
	Resolve(userID uuid.UUID) (*ResolvedAccess, error)
	HasRole(userID uuid.UUID, role model.RoleName) (bool, error)
	// HasPermission reports whether the user holds the permission. When
	// adminBypass is true a user holding the admin role passes regardless;
	// the bypass is a capability the caller grants explicitly, never an
	// implicit default.
	HasPermission(userID uuid.UUID, permission model.PermissionName, adminBypass bool) (bool, error)
}

type permissionResolver struct {
	roleRepo repository.RoleRepository
	audit    AuditTrail
	txRunner repository.TxRunner
}

func NewPermissionResolver(roleRepo repository.RoleRepository, audit AuditTrail, txRunner repository.TxRunner) PermissionResolver {
	return &permissionResolver{
		roleRepo: roleRepo,
		audit:    audit,
		txRunner: txRunner,
	}
}

func (r *permissionResolver) Resolve(userID uuid.UUID) (*ResolvedAccess, error) {
	roles, err := r.roleRepo.FindRolesForUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.ErrNotFound, "user %s not found", userID)
		}
		// Fail closed: an unreachable store yields no permissions, not all.
		return nil, apperr.E(apperr.ErrDependency, "failed to resolve roles: %v", err)
	}

	if len(roles) == 0 {
		healed, err := r.attachDefaultRole(userID)
		if err != nil {
			return nil, err
		}
		roles = healed
	}

	return buildAccess(roles), nil
}

// attachDefaultRole persists the default role for a roleless user and logs
// the assignment. Idempotent: a concurrent resolve attaching the same role
// leaves the user with the default role either way.
func (r *permissionResolver) attachDefaultRole(userID uuid.UUID) ([]model.Role, error) {
	defaultRole, err := r.roleRepo.FindByName(string(model.DefaultRoleName))
	if err != nil {
		return nil, apperr.E(apperr.ErrDependency, "default role %q missing: %v", model.DefaultRoleName, err)
	}

	err = r.txRunner.InTx(func(tx *gorm.DB) error {
		if err := r.roleRepo.AssignUserRole(tx, userID, defaultRole); err != nil {
			return err
		}
		return r.audit.LogTx(tx, &model.ActivityLog{
			UserID:     userID,
			Action:     model.ActionRoleAutoAssigned,
			Resource:   "user",
			ResourceID: userID.String(),
			Metadata:   datatypes.JSONMap{"role": defaultRole.Name},
		})
	})
	if err != nil {
		return nil, apperr.E(apperr.ErrDependency, "failed to attach default role: %v", err)
	}

	return []model.Role{*defaultRole}, nil
}

func (r *permissionResolver) HasRole(userID uuid.UUID, role model.RoleName) (bool, error) {
	access, err := r.Resolve(userID)
	if err != nil {
		return false, err
	}
	return access.HasRole(role), nil
}

func (r *permissionResolver) HasPermission(userID uuid.UUID, permission model.PermissionName, adminBypass bool) (bool, error) {
	access, err := r.Resolve(userID)
	if err != nil {
		return false, err
	}
	if adminBypass && access.HasRole(model.RoleAdmin) {
		return true, nil
	}
	return access.HasPermission(permission), nil
}

// buildAccess unions role and permission names, deduplicated and sorted.
func buildAccess(roles []model.Role) *ResolvedAccess {
	roleSet := make(map[string]struct{}, len(roles))
	permSet := make(map[string]struct{})
	for _, role := range roles {
		roleSet[role.Name] = struct{}{}
		for _, p := range role.Permissions {
			permSet[p.Name] = struct{}{}
		}
	}

	access := &ResolvedAccess{
		Roles:       make([]string, 0, len(roleSet)),
		Permissions: make([]string, 0, len(permSet)),
	}
	for name := range roleSet {
		access.Roles = append(access.Roles, name)
	}
	for name := range permSet {
		access.Permissions = append(access.Permissions, name)
	}
	sort.Strings(access.Roles)
	sort.Strings(access.Permissions)
	return access
}
