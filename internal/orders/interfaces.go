package orders

import (
	"context"

	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	"github.com/angelmondragon/tienda-backend/pkg/enums"
	"github.com/angelmondragon/tienda-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the order ledger tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderLines(ctx context.Context, lines []models.OrderLine) error
	AppendPaymentHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	AppendShipmentHistory(ctx context.Context, entry *models.ShipmentStatusHistory) error
	CreateShipmentEvent(ctx context.Context, event *models.ShipmentEvent) error

	FindOrder(ctx context.Context, orderID uint64) (*models.Order, error)
	FindOrderWithLines(ctx context.Context, orderID uint64) (*models.Order, error)
	CompareAndSetPaymentStatus(ctx context.Context, orderID uint64, from, to enums.PaymentStatus) (bool, error)
	SetPaymentStatus(ctx context.Context, orderID uint64, status enums.PaymentStatus) error
	SetShipmentStatus(ctx context.Context, orderID uint64, status enums.ShipmentStatus) error
	CountShipmentEvents(ctx context.Context, orderID uint64, status string) (int64, error)

	ListOrdersByUser(ctx context.Context, userID uint64) ([]models.Order, error)
	ListOrders(ctx context.Context, params pagination.Params) ([]models.Order, int64, error)
	ListUndelivered(ctx context.Context) ([]models.Order, error)
	ListPaymentHistory(ctx context.Context, orderID uint64) ([]models.OrderStatusHistory, error)
	ListShipmentHistory(ctx context.Context, orderID uint64) ([]models.ShipmentStatusHistory, error)
	ListShipmentEvents(ctx context.Context, orderID uint64) ([]models.ShipmentEvent, error)
	ListPurchasedItems(ctx context.Context, userID uint64) ([]PurchasedItem, error)
}

// Reconciler grants badges a user newly qualifies for.
type Reconciler interface {
	Reconcile(ctx context.Context, userID uint64) ([]uint64, error)
}
