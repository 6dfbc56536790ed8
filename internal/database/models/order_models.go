package models

import "time"

type Order struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	Folio        string  `gorm:"uniqueIndex;not null"`
	OrderType    string  `gorm:"type:varchar(16);not null"`
	Status       string  `gorm:"type:varchar(16);index;not null"`
	TableID      *string `gorm:"type:varchar(64)"`
	TableName    *string `gorm:"type:varchar(64)"`
	ClientName   *string `gorm:"type:varchar(128)"`
	ClientPhone  *string `gorm:"type:varchar(32)"`
	ClientAddr   *string `gorm:"type:text"`
	PaymentMethod string `gorm:"type:varchar(32);not null"`

	Subtotal          string `gorm:"type:varchar(32);not null"`
	DiscountAmount    string `gorm:"type:varchar(32);not null"`
	ShippingCost      string `gorm:"type:varchar(32);not null"`
	TotalAmount       string `gorm:"type:varchar(32);not null"`
	AppliedPromotions string `gorm:"type:text"`

	CreatedBy *int64
	CreatedAt time.Time
	UpdatedAt time.Time

	Lines []OrderLine `gorm:"foreignKey:OrderID"`
}

// OrderLine is one grouped line of a finalized order: same-product units
// rolled up with their notes.
type OrderLine struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	OrderID     int64  `gorm:"index;not null"`
	ProductID   int32  `gorm:"not null"`
	ProductName string `gorm:"type:varchar(128);not null"`
	UnitPrice   string `gorm:"type:varchar(32);not null"`
	Quantity    int32  `gorm:"not null"`
	Notes       *string `gorm:"type:text"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
