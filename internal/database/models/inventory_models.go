package models

import "time"

type Ingredient struct {
	ID                int32  `gorm:"primaryKey;autoIncrement"`
	Name              string `gorm:"type:varchar(128);not null"`
	Unit              string `gorm:"type:varchar(32);not null"`
	Stock             string `gorm:"type:varchar(32);not null;default:'0'"`
	UnitCost          string `gorm:"type:varchar(32);not null;default:'0'"`
	UsageCount        int64  `gorm:"not null;default:0"`
	LowStockThreshold string `gorm:"type:varchar(32);not null;default:'0'"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
