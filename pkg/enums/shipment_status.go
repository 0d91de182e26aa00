package enums

import "strings"

// ShipmentStatus is the courier-facing state of an order. Besides the known
// values any descriptive label is accepted; only EnRoute and Delivered notify.
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusEnRoute   ShipmentStatus = "en_route"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
)

var shipmentAliases = map[string]ShipmentStatus{
	"pending":    ShipmentStatusPending,
	"pendiente":  ShipmentStatusPending,
	"en_route":   ShipmentStatusEnRoute,
	"en route":   ShipmentStatusEnRoute,
	"en reparto": ShipmentStatusEnRoute,
	"en camino":  ShipmentStatusEnRoute,
	"delivered":  ShipmentStatusDelivered,
	"entregado":  ShipmentStatusDelivered,
}

// String implements fmt.Stringer.
func (s ShipmentStatus) String() string {
	return string(s)
}

// NormalizeShipmentStatus maps known labels (case-insensitive) onto their
// canonical value and keeps any other label as trimmed free text.
func NormalizeShipmentStatus(label string) ShipmentStatus {
	trimmed := strings.TrimSpace(label)
	if known, ok := shipmentAliases[strings.ToLower(trimmed)]; ok {
		return known
	}
	return ShipmentStatus(trimmed)
}

// Notifies reports whether reaching this status should push a notification.
func (s ShipmentStatus) Notifies() bool {
	switch NormalizeShipmentStatus(string(s)) {
	case ShipmentStatusEnRoute, ShipmentStatusDelivered:
		return true
	}
	return false
}

// IsDelivered reports whether the shipment reached its final state.
func (s ShipmentStatus) IsDelivered() bool {
	return NormalizeShipmentStatus(string(s)) == ShipmentStatusDelivered
}
