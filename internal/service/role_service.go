package service

import (
	"errors"
	"regexp"

	"go-mt-distribution/internal/apperr"
	"go-mt-distribution/internal/model"
	"go-mt-distribution/internal/repository"
	"go-mt-distribution/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RoleService interface {
	ListRoles() ([]model.Role, error)
	ListPermissions() ([]model.Permission, error)
	CreateRole(req *CreateRoleRequest, actorID uuid.UUID) (*model.Role, error)
	UpdateRole(id uint, req *UpdateRoleRequest, actorID uuid.UUID) (*model.Role, error)
	DeleteRole(id uint, actorID uuid.UUID) error
	UpdateUserRoles(userID uuid.UUID, roleNames []string, actorID uuid.UUID) (*model.User, error)
	GetUserRolesAndPermissions(userID uuid.UUID) (*ResolvedAccess, error)
}

type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required,max=50"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type UpdateRoleRequest struct {
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// Custom role names follow the same shape as the built-ins.
var roleNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

type roleService struct {
	roleRepo repository.RoleRepository
	permRepo repository.PermissionRepository
	userRepo repository.UserRepository
	resolver PermissionResolver
	audit    AuditTrail
	txRunner repository.TxRunner
}

func NewRoleService(
	roleRepo repository.RoleRepository,
	permRepo repository.PermissionRepository,
	userRepo repository.UserRepository,
	resolver PermissionResolver,
	audit AuditTrail,
	txRunner repository.TxRunner,
) RoleService {
	return &roleService{
		roleRepo: roleRepo,
		permRepo: permRepo,
		userRepo: userRepo,
		resolver: resolver,
		audit:    audit,
		txRunner: txRunner,
	}
}

func (s *roleService) ListRoles() ([]model.Role, error) {
	roles, err := s.roleRepo.FindAll()
	if err != nil {
		return nil, apperr.E(apperr.ErrDependency, "failed to list roles: %v", err)
	}
	return roles, nil
}

func (s *roleService) ListPermissions() ([]model.Permission, error) {
	permissions, err := s.permRepo.FindAll()
	if err != nil {
		return nil, apperr.E(apperr.ErrDependency, "failed to list permissions: %v", err)
	}
	return permissions, nil
}

func (s *roleService) CreateRole(req *CreateRoleRequest, actorID uuid.UUID) (*model.Role, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.E(apperr.ErrValidation, "field %s failed on %s", errs[0].FailedField, errs[0].Tag)
	}
	if !roleNamePattern.MatchString(req.Name) {
		return nil, apperr.E(apperr.ErrValidation, "role name %q must be lowercase snake_case", req.Name)
	}

	if existing, _ := s.roleRepo.FindByName(req.Name); existing != nil {
		return nil, apperr.E(apperr.ErrConflict, "role %q already exists", req.Name)
	}

	permissions, err := s.resolvePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}

	role := &model.Role{
		Name:        req.Name,
		Description: req.Description,
		Permissions: permissions,
	}
	err = s.txRunner.InTx(func(tx *gorm.DB) error {
		if err := s.roleRepo.Create(tx, role); err != nil {
			return apperr.E(apperr.ErrDependency, "failed to create role: %v", err)
		}
		return s.audit.LogTx(tx, &model.ActivityLog{
			UserID:     actorID,
			Action:     model.ActionRoleCreate,
			Resource:   "role",
			ResourceID: role.Name,
			Metadata:   datatypes.JSONMap{"permissions": req.Permissions},
		})
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (s *roleService) UpdateRole(id uint, req *UpdateRoleRequest, actorID uuid.UUID) (*model.Role, error) {
	role, err := s.findRole(id)
	if err != nil {
		return nil, err
	}

	permissions, err := s.resolvePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}

	// Role names are immutable once created; only the description and the
	// permission set can change. Built-ins keep their seeded names forever.
	role.Description = req.Description
	err = s.txRunner.InTx(func(tx *gorm.DB) error {
		if err := s.roleRepo.Update(tx, role); err != nil {
			return apperr.E(apperr.ErrDependency, "failed to update role: %v", err)
		}
		if err := s.roleRepo.ReplacePermissions(tx, role, permissions); err != nil {
			return apperr.E(apperr.ErrDependency, "failed to update role permissions: %v", err)
		}
		return s.audit.LogTx(tx, &model.ActivityLog{
			UserID:     actorID,
			Action:     model.ActionRoleUpdate,
			Resource:   "role",
			ResourceID: role.Name,
			Metadata:   datatypes.JSONMap{"permissions": req.Permissions},
		})
	})
	if err != nil {
		return nil, err
	}
	role.Permissions = permissions
	return role, nil
}

func (s *roleService) DeleteRole(id uint, actorID uuid.UUID) error {
	role, err := s.findRole(id)
	if err != nil {
		return err
	}
	if model.RoleName(role.Name).Protected() {
		return apperr.E(apperr.ErrConflict, "built-in role %q cannot be deleted", role.Name)
	}

	// Users left roleless by this deletion self-heal to the default role on
	// their next permission resolution.
	return s.txRunner.InTx(func(tx *gorm.DB) error {
		if err := s.roleRepo.Delete(tx, id); err != nil {
			return apperr.E(apperr.ErrDependency, "failed to delete role: %v", err)
		}
		return s.audit.LogTx(tx, &model.ActivityLog{
			UserID:     actorID,
			Action:     model.ActionRoleDelete,
			Resource:   "role",
			ResourceID: role.Name,
		})
	})
}

func (s *roleService) UpdateUserRoles(userID uuid.UUID, roleNames []string, actorID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.ErrNotFound, "user %s not found", userID)
		}
		return nil, apperr.E(apperr.ErrDependency, "failed to load user: %v", err)
	}
	previous := user.RoleNames()

	// An empty set would leave the user roleless; attach the default role
	// instead so the at-least-one-role invariant holds.
	if len(roleNames) == 0 {
		roleNames = []string{string(model.DefaultRoleName)}
	}

	roles, err := s.roleRepo.FindByNames(roleNames)
	if err != nil {
		return nil, apperr.E(apperr.ErrDependency, "failed to load roles: %v", err)
	}
	if len(roles) != len(uniqueStrings(roleNames)) {
		return nil, apperr.E(apperr.ErrValidation, "one or more role names in %v are unknown", roleNames)
	}

	err = s.txRunner.InTx(func(tx *gorm.DB) error {
		if err := s.roleRepo.ReplaceUserRoles(tx, userID, roles); err != nil {
			return apperr.E(apperr.ErrDependency, "failed to replace user roles: %v", err)
		}
		return s.audit.LogTx(tx, &model.ActivityLog{
			UserID:     actorID,
			Action:     model.ActionUserRolesUpdate,
			Resource:   "user",
			ResourceID: userID.String(),
			Metadata: datatypes.JSONMap{
				"previous_roles": previous,
				"new_roles":      roleNames,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperr.E(apperr.ErrDependency, "failed to reload user: %v", err)
	}
	return updated, nil
}

func (s *roleService) GetUserRolesAndPermissions(userID uuid.UUID) (*ResolvedAccess, error) {
	return s.resolver.Resolve(userID)
}

func (s *roleService) findRole(id uint) (*model.Role, error) {
	role, err := s.roleRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.ErrNotFound, "role %d not found", id)
		}
		return nil, apperr.E(apperr.ErrDependency, "failed to load role: %v", err)
	}
	return role, nil
}

// resolvePermissions maps permission names to rows, validating the
// resource:action convention first.
func (s *roleService) resolvePermissions(names []string) ([]model.Permission, error) {
	if len(names) == 0 {
		return nil, nil
	}
	for _, name := range names {
		if _, err := model.NewPermissionName(name); err != nil {
			return nil, apperr.E(apperr.ErrValidation, "%v", err)
		}
	}
	permissions, err := s.permRepo.FindByNames(names)
	if err != nil {
		return nil, apperr.E(apperr.ErrDependency, "failed to load permissions: %v", err)
	}
	if len(permissions) != len(uniqueStrings(names)) {
		return nil, apperr.E(apperr.ErrValidation, "one or more permissions in %v are unknown", names)
	}
	return permissions, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
