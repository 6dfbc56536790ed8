package models

import "time"

// Promotion is the stored form of a pricing rule. Type is one of
// percentage, fixed, bogo, quantity; AppliesTo (product or category) and
// TargetID select the items it covers, except for the quantity type which
// always targets a single product.
type Promotion struct {
	ID               int32  `gorm:"primaryKey;autoIncrement"`
	Name             string `gorm:"type:varchar(128);not null"`
	Type             string `gorm:"type:varchar(16);not null"`
	AppliesTo        string `gorm:"type:varchar(16)"`
	TargetID         int32  `gorm:"not null"`
	DiscountValue    string `gorm:"type:varchar(32);not null;default:'0'"`
	RequiredQuantity int32  `gorm:"not null;default:2"`
	IsActive         bool   `gorm:"not null;default:true"`
	StartDate        *time.Time
	EndDate          *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
