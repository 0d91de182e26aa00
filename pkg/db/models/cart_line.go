package models

import "time"

type CartLine struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"column:user_id;not null;index"`
	ProductID *uint64   `gorm:"column:product_id"`
	VariantID *uint64   `gorm:"column:variant_id"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (CartLine) TableName() string { return "cart_lines" }
