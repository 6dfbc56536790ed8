package models

import "time"

type Category struct {
	ID        int32  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"type:varchar(128);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Products []Product `gorm:"foreignKey:CategoryID"`
}

type Product struct {
	ID          int32  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"type:varchar(128);not null"`
	Price       string `gorm:"type:varchar(32);not null"`
	CategoryID  int32  `gorm:"index;not null"`
	ImageUrl    *string `gorm:"type:varchar(256)"`
	HiddenInPOS bool   `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Category *Category    `gorm:"foreignKey:CategoryID"`
	Recipe   []RecipeItem `gorm:"foreignKey:ProductID"`
}

// RecipeItem links a product to one ingredient it consumes per unit sold.
type RecipeItem struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	ProductID    int32  `gorm:"index;not null"`
	IngredientID int32  `gorm:"not null"`
	Quantity     string `gorm:"type:varchar(32);not null"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID"`
}
