package repository

import (
	"go-mt-distribution/internal/model"

	"gorm.io/gorm"
)

type BranchRepository interface {
	FindAll() ([]model.Branch, error)
	FindActive() ([]model.Branch, error)
	FindByBaCode(baCode string) (*model.Branch, error)
	Create(branch *model.Branch) error
}

type branchRepo struct {
	db *gorm.DB
}

func NewBranchRepo(db *gorm.DB) BranchRepository {
	return &branchRepo{db}
}

func (r *branchRepo) FindAll() ([]model.Branch, error) {
	var branches []model.Branch
	err := r.db.Order("ba_code").Find(&branches).Error
	return branches, err
}

func (r *branchRepo) FindActive() ([]model.Branch, error) {
	var branches []model.Branch
	err := r.db.Where("is_active = ?", true).Order("ba_code").Find(&branches).Error
	return branches, err
}

func (r *branchRepo) FindByBaCode(baCode string) (*model.Branch, error) {
	var branch model.Branch
	if err := r.db.Where("ba_code = ?", baCode).First(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *branchRepo) Create(branch *model.Branch) error {
	return r.db.Create(branch).Error
}
