package repository

import (
	"errors"

	"go-mt-distribution/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll() ([]model.Role, error)
	FindByID(id uint) (*model.Role, error)
	FindByName(name string) (*model.Role, error)
	FindByNames(names []string) ([]model.Role, error)
	FindRolesForUser(userID uuid.UUID) ([]model.Role, error)
	Create(tx *gorm.DB, role *model.Role) error
	Update(tx *gorm.DB, role *model.Role) error
	Delete(tx *gorm.DB, id uint) error
	ReplacePermissions(tx *gorm.DB, role *model.Role, permissions []model.Permission) error
	AssignUserRole(tx *gorm.DB, userID uuid.UUID, role *model.Role) error
	ReplaceUserRoles(tx *gorm.DB, userID uuid.UUID, roles []model.Role) error
	SeedDefaults() error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

// orDB lets every mutating method run either standalone or inside a caller
// supplied transaction.
func (r *roleRepo) orDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *roleRepo) FindAll() ([]model.Role, error) {
	var roles []model.Role
	err := r.db.Preload("Permissions").Order("id").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByID(id uint) (*model.Role, error) {
	var role model.Role
	if err := r.db.Preload("Permissions").First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) FindByName(name string) (*model.Role, error) {
	var role model.Role
	if err := r.db.Preload("Permissions").Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) FindByNames(names []string) ([]model.Role, error) {
	var roles []model.Role
	if err := r.db.Preload("Permissions").Where("name IN ?", names).Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepo) FindRolesForUser(userID uuid.UUID) ([]model.Role, error) {
	var user model.User
	if err := r.db.Preload("Roles.Permissions").First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return user.Roles, nil
}

func (r *roleRepo) Create(tx *gorm.DB, role *model.Role) error {
	return r.orDB(tx).Create(role).Error
}

func (r *roleRepo) Update(tx *gorm.DB, role *model.Role) error {
	return r.orDB(tx).Save(role).Error
}

func (r *roleRepo) Delete(tx *gorm.DB, id uint) error {
	return r.orDB(tx).Select("Permissions").Delete(&model.Role{ID: id}).Error
}

func (r *roleRepo) ReplacePermissions(tx *gorm.DB, role *model.Role, permissions []model.Permission) error {
	return r.orDB(tx).Model(role).Association("Permissions").Replace(permissions)
}

func (r *roleRepo) AssignUserRole(tx *gorm.DB, userID uuid.UUID, role *model.Role) error {
	return r.orDB(tx).Model(&model.User{BaseModel: model.BaseModel{ID: userID}}).
		Association("Roles").Append(role)
}

func (r *roleRepo) ReplaceUserRoles(tx *gorm.DB, userID uuid.UUID, roles []model.Role) error {
	return r.orDB(tx).Model(&model.User{BaseModel: model.BaseModel{ID: userID}}).
		Association("Roles").Replace(roles)
}

func (r *roleRepo) SeedDefaults() error {
	for _, defaultRole := range model.DefaultRoles {
		var existing model.Role
		err := r.db.Where("name = ?", defaultRole.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := r.db.Create(&defaultRole).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
