package models

import "time"

// CashRegister is the single register document; one open row at a time.
type CashRegister struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	IsOpen      bool   `gorm:"not null;default:false"`
	InitialCash string `gorm:"type:varchar(32);not null;default:'0.00'"`
	OpenedBy    *int64
	OpenedAt    *time.Time
	ClosedBy    *int64
	ClosedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CashMovement struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	RegisterID int64  `gorm:"index;not null"`
	Type       string `gorm:"type:varchar(16);not null"`
	Amount     string `gorm:"type:varchar(32);not null"`
	Concept    string `gorm:"type:varchar(256);not null"`
	CreatedBy  *int64
	CreatedAt  time.Time
}

// ShiftReport archives the numbers of a closed register shift.
type ShiftReport struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"`
	RegisterID   int64      `gorm:"index;not null"`
	OpenedAt     *time.Time `gorm:"not null"`
	ClosedAt     *time.Time `gorm:"index;not null"`
	InitialCash  string     `gorm:"type:varchar(32);not null"`
	TotalSales   string     `gorm:"type:varchar(32);not null"`
	TotalIncome  string     `gorm:"type:varchar(32);not null"`
	TotalExpense string     `gorm:"type:varchar(32);not null"`
	ExpectedCash string     `gorm:"type:varchar(32);not null"`
	ClosedBy     *int64
	CreatedAt    time.Time
}
