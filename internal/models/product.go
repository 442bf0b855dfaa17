package models

import "time"

// Product is a catalog item the assistant's lookup tool can surface.
// Independent of conversations; managed via admin CRUD.
type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	Name        string  `gorm:"size:256;not null"`
	Price       float64 `gorm:"not null;default:0"`
	Description string  `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
