package models

import (
	"github.com/angelmondragon/tienda-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Catalog tables are owned by the catalog CRUD; the order pipeline only reads them.

type Category struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"column:name;not null"`
}

func (Category) TableName() string { return "categories" }

type Product struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement"`
	CategoryID uint64          `gorm:"column:category_id;not null;index"`
	Name       string          `gorm:"column:name;not null"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
}

func (Product) TableName() string { return "products" }

type Variant struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	ProductID uint64          `gorm:"column:product_id;not null;index"`
	Name      string          `gorm:"column:name;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
}

func (Variant) TableName() string { return "variants" }

type PaymentMethod struct {
	ID     uint64                  `gorm:"primaryKey;autoIncrement"`
	Name   string                  `gorm:"column:name;not null"`
	Kind   enums.PaymentMethodKind `gorm:"column:kind;type:varchar(32);not null"`
	Active bool                    `gorm:"column:active;not null"`
}

func (PaymentMethod) TableName() string { return "payment_methods" }
