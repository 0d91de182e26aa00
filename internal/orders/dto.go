package orders

import (
	"time"

	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	"github.com/angelmondragon/tienda-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Viewer is the authenticated caller of a read or override operation.
type Viewer struct {
	UserID uint64
	Role   enums.UserRole
}

// CanSee reports whether the viewer may read data owned by ownerID.
func (v Viewer) CanSee(ownerID uint64) bool {
	return v.Role.IsStaff() || (v.UserID != 0 && v.UserID == ownerID)
}

// OverrideInput carries a manual status change made by staff.
type OverrideInput struct {
	OrderID   uint64
	NewStatus string
	// ChangedBy overrides the recorded actor; defaults to the caller id.
	ChangedBy string
	Viewer    Viewer
}

type OrderSummary struct {
	ID              uint64               `json:"id"`
	UserID          uint64               `json:"usuario_id"`
	Total           decimal.Decimal      `json:"total"`
	PaymentMethodID uint64               `json:"metodo_pago_id"`
	ShippingAddress *string              `json:"direccion_envio,omitempty"`
	PaymentStatus   enums.PaymentStatus  `json:"estado_pago"`
	ShipmentStatus  enums.ShipmentStatus `json:"estado_envio"`
	CreatedAt       time.Time            `json:"fecha"`
}

type OrderLineView struct {
	ID        uint64          `json:"id"`
	ProductID *uint64         `json:"producto_id,omitempty"`
	VariantID *uint64         `json:"variante_id,omitempty"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type HistoryEntry struct {
	PreviousStatus string    `json:"estado_anterior"`
	NewStatus      string    `json:"estado_nuevo"`
	Actor          string    `json:"cambio_por"`
	CreatedAt      time.Time `json:"fecha"`
}

// OrderView is a single order with its lines.
type OrderView struct {
	OrderSummary
	Lines []OrderLineView `json:"productos"`
}

// OrderDetail adds both audit trails to the order view.
type OrderDetail struct {
	OrderView
	PaymentHistory  []HistoryEntry `json:"historial_pago"`
	ShipmentHistory []HistoryEntry `json:"historial_envio"`
}

type OrderList struct {
	Orders []OrderSummary `json:"ventas"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type ShipmentEventView struct {
	ID        uint64    `json:"id"`
	Status    string    `json:"estado"`
	Note      string    `json:"descripcion"`
	PhotoURL  *string   `json:"foto_url,omitempty"`
	ActorID   uint64    `json:"repartidor_id"`
	CreatedAt time.Time `json:"fecha"`
}

// ShipmentView is the courier/customer tracking view of an order.
type ShipmentView struct {
	OrderID         uint64               `json:"venta_id"`
	UserID          uint64               `json:"usuario_id"`
	ShippingAddress *string              `json:"direccion_envio,omitempty"`
	ShipmentStatus  enums.ShipmentStatus `json:"estado_envio"`
	PaymentStatus   enums.PaymentStatus  `json:"estado_pago"`
	Events          []ShipmentEventView  `json:"eventos"`
}

// PurchasedItem aggregates paid units per product or variant.
type PurchasedItem struct {
	ProductID *uint64 `json:"producto_id,omitempty"`
	VariantID *uint64 `json:"variante_id,omitempty"`
	Name      string  `json:"nombre"`
	Quantity  int64   `json:"cantidad"`
}

func toSummary(o models.Order) OrderSummary {
	return OrderSummary{
		ID:              o.ID,
		UserID:          o.UserID,
		Total:           o.Total,
		PaymentMethodID: o.PaymentMethodID,
		ShippingAddress: o.ShippingAddress,
		PaymentStatus:   o.PaymentStatus,
		ShipmentStatus:  o.ShipmentStatus,
		CreatedAt:       o.CreatedAt,
	}
}

func toSummaries(orders []models.Order) []OrderSummary {
	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, toSummary(o))
	}
	return out
}

func toOrderView(o models.Order) OrderView {
	lines := make([]OrderLineView, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineView{
			ID:        l.ID,
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
		})
	}
	return OrderView{OrderSummary: toSummary(o), Lines: lines}
}

func paymentEntries(rows []models.OrderStatusHistory) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, HistoryEntry{PreviousStatus: r.PreviousStatus, NewStatus: r.NewStatus, Actor: r.Actor, CreatedAt: r.CreatedAt})
	}
	return out
}

func shipmentEntries(rows []models.ShipmentStatusHistory) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, HistoryEntry{PreviousStatus: r.PreviousStatus, NewStatus: r.NewStatus, Actor: r.Actor, CreatedAt: r.CreatedAt})
	}
	return out
}

func toEventViews(rows []models.ShipmentEvent) []ShipmentEventView {
	out := make([]ShipmentEventView, 0, len(rows))
	for _, e := range rows {
		out = append(out, ShipmentEventView{
			ID:        e.ID,
			Status:    e.Status,
			Note:      e.Note,
			PhotoURL:  e.PhotoURL,
			ActorID:   e.ActorID,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
