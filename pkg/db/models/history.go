package models

import "time"

// OrderStatusHistory is an append-only record of payment status transitions.
type OrderStatusHistory struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	OrderID        uint64    `gorm:"column:order_id;not null;index"`
	PreviousStatus string    `gorm:"column:previous_status;type:varchar(64);not null"`
	NewStatus      string    `gorm:"column:new_status;type:varchar(64);not null"`
	Actor          string    `gorm:"column:actor;type:varchar(128);not null"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
}

func (OrderStatusHistory) TableName() string { return "order_status_history" }

// ShipmentStatusHistory is an append-only record of shipment status transitions.
type ShipmentStatusHistory struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	OrderID        uint64    `gorm:"column:order_id;not null;index"`
	PreviousStatus string    `gorm:"column:previous_status;type:varchar(64);not null"`
	NewStatus      string    `gorm:"column:new_status;type:varchar(64);not null"`
	Actor          string    `gorm:"column:actor;type:varchar(128);not null"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
}

func (ShipmentStatusHistory) TableName() string { return "shipment_status_history" }

// ShipmentEvent is one courier-recorded update, optionally with a proof photo.
type ShipmentEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	OrderID   uint64    `gorm:"column:order_id;not null;index:idx_shipment_events_order_status"`
	Status    string    `gorm:"column:status;type:varchar(64);not null;index:idx_shipment_events_order_status"`
	Note      string    `gorm:"column:note;type:text;not null"`
	PhotoURL  *string   `gorm:"column:photo_url"`
	ActorID   uint64    `gorm:"column:actor_id;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (ShipmentEvent) TableName() string { return "shipment_events" }
