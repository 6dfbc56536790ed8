package models

import "time"

// Zone is a named area of the floor layout holding tables.
type Zone struct {
	ID        string `gorm:"primaryKey;type:varchar(64)"`
	Name      string `gorm:"type:varchar(128);not null"`
	Position  int32  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Tables []DiningTable `gorm:"foreignKey:ZoneID"`
}

type DiningTable struct {
	ID        string `gorm:"primaryKey;type:varchar(64)"`
	ZoneID    string `gorm:"index;not null;type:varchar(64)"`
	Name      string `gorm:"type:varchar(64);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
