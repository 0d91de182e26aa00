package orders

import (
	"context"
	"strings"

	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	"github.com/angelmondragon/tienda-backend/pkg/enums"
	"github.com/angelmondragon/tienda-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) CreateOrderLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *repository) AppendPaymentHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) AppendShipmentHistory(ctx context.Context, entry *models.ShipmentStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) CreateShipmentEvent(ctx context.Context, event *models.ShipmentEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) FindOrder(ctx context.Context, orderID uint64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrderWithLines(ctx context.Context, orderID uint64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CompareAndSetPaymentStatus moves the order to `to` only while it still holds `from`.
func (r *repository) CompareAndSetPaymentStatus(ctx context.Context, orderID uint64, from, to enums.PaymentStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, from).
		Update("payment_status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) SetPaymentStatus(ctx context.Context, orderID uint64, status enums.PaymentStatus) error {
	return r.updateOrderColumn(ctx, orderID, "payment_status", status)
}

func (r *repository) SetShipmentStatus(ctx context.Context, orderID uint64, status enums.ShipmentStatus) error {
	return r.updateOrderColumn(ctx, orderID, "shipment_status", status)
}

func (r *repository) updateOrderColumn(ctx context.Context, orderID uint64, column string, value any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CountShipmentEvents(ctx context.Context, orderID uint64, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ShipmentEvent{}).
		Where("order_id = ? AND LOWER(status) = ?", orderID, strings.ToLower(status)).
		Count(&count).Error
	return count, err
}

func (r *repository) ListOrdersByUser(ctx context.Context, userID uint64) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	return orders, err
}

func (r *repository) ListOrders(ctx context.Context, params pagination.Params) ([]models.Order, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) ListUndelivered(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("shipment_status <> ?", enums.ShipmentStatusDelivered).
		Where("payment_status <> ?", enums.PaymentStatusCancelled).
		Order("created_at ASC, id ASC").
		Find(&orders).Error
	return orders, err
}

func (r *repository) ListPaymentHistory(ctx context.Context, orderID uint64) ([]models.OrderStatusHistory, error) {
	var rows []models.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListShipmentHistory(ctx context.Context, orderID uint64) ([]models.ShipmentStatusHistory, error) {
	var rows []models.ShipmentStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListShipmentEvents(ctx context.Context, orderID uint64) ([]models.ShipmentEvent, error) {
	var rows []models.ShipmentEvent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

// ListPurchasedItems aggregates units per product/variant over the user's paid orders.
func (r *repository) ListPurchasedItems(ctx context.Context, userID uint64) ([]PurchasedItem, error) {
	var items []PurchasedItem
	err := r.db.WithContext(ctx).
		Table("order_lines AS ol").
		Select(`ol.product_id AS product_id,
			ol.variant_id AS variant_id,
			COALESCE(p.name, v.name, '') AS name,
			SUM(ol.quantity) AS quantity`).
		Joins("JOIN orders o ON o.id = ol.order_id").
		Joins("LEFT JOIN products p ON p.id = ol.product_id").
		Joins("LEFT JOIN variants v ON v.id = ol.variant_id").
		Where("o.user_id = ? AND o.payment_status = ?", userID, enums.PaymentStatusPaid).
		Group("ol.product_id, ol.variant_id, p.name, v.name").
		Order("name ASC").
		Scan(&items).Error
	return items, err
}
