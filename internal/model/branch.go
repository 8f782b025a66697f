package model

// Branch is an organizational branch office identified by its BA code.
type Branch struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	BaCode     string `gorm:"type:varchar(10);uniqueIndex;not null" json:"ba_code" validate:"required"`
	Name       string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	RegionCode string `gorm:"type:varchar(10)" json:"region_code"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`
}
