package models

import (
	"time"

	"github.com/angelmondragon/tienda-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Order is a sale header. Lines and history are written alongside it by the
// checkout, payment and shipment pipelines only.
type Order struct {
	ID              uint64               `gorm:"primaryKey;autoIncrement"`
	UserID          uint64               `gorm:"column:user_id;not null;index"`
	Total           decimal.Decimal      `gorm:"column:total;type:numeric(12,2);not null"`
	PaymentMethodID uint64               `gorm:"column:payment_method_id;not null"`
	ShippingAddress *string              `gorm:"column:shipping_address"`
	PaymentStatus   enums.PaymentStatus  `gorm:"column:payment_status;type:varchar(32);not null;index"`
	ShipmentStatus  enums.ShipmentStatus `gorm:"column:shipment_status;type:varchar(64);not null"`
	CreatedAt       time.Time            `gorm:"column:created_at;not null"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;not null"`

	Lines []OrderLine `gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

// OrderLine references exactly one of a product or a variant and snapshots the
// unit price paid.
type OrderLine struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	OrderID   uint64          `gorm:"column:order_id;not null;index"`
	ProductID *uint64         `gorm:"column:product_id"`
	VariantID *uint64         `gorm:"column:variant_id"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
}

func (OrderLine) TableName() string { return "order_lines" }

// Subtotal is quantity times the captured unit price.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
