package badges

import (
	"context"
	"time"

	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	"github.com/angelmondragon/tienda-backend/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository reads the ledger facts badges depend on and writes awards.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CountPaidOrders(ctx context.Context, userID uint64) (int64, error)
	SumUnitsInCategory(ctx context.Context, userID, categoryID uint64) (int64, error)
	CountShares(ctx context.Context, userID uint64) (int64, error)
	PaidOrderTimes(ctx context.Context, userID uint64) ([]time.Time, error)
	CountPurchasedCategories(ctx context.Context, userID uint64) (int64, error)
	CountCategories(ctx context.Context) (int64, error)
	ActiveBadges(ctx context.Context) ([]models.Badge, error)
	HeldBadgeIDs(ctx context.Context, userID uint64) (map[uint64]struct{}, error)
	InsertAwardIfAbsent(ctx context.Context, award *models.BadgeAward) (bool, error)
	ListAwards(ctx context.Context, userID uint64) ([]models.BadgeAward, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CountPaidOrders(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ? AND payment_status = ?", userID, enums.PaymentStatusPaid).
		Count(&count).Error
	return count, err
}

// paidLines joins paid order lines to the category of their product, or of
// the variant's product.
func (r *repository) paidLines(ctx context.Context, userID uint64) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("order_lines AS ol").
		Joins("JOIN orders o ON o.id = ol.order_id").
		Joins("LEFT JOIN products p ON p.id = ol.product_id").
		Joins("LEFT JOIN variants v ON v.id = ol.variant_id").
		Joins("LEFT JOIN products vp ON vp.id = v.product_id").
		Where("o.user_id = ? AND o.payment_status = ?", userID, enums.PaymentStatusPaid)
}

func (r *repository) SumUnitsInCategory(ctx context.Context, userID, categoryID uint64) (int64, error) {
	var total int64
	err := r.paidLines(ctx, userID).
		Where("COALESCE(p.category_id, vp.category_id) = ?", categoryID).
		Select("COALESCE(SUM(ol.quantity), 0)").
		Scan(&total).Error
	return total, err
}

func (r *repository) CountPurchasedCategories(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.paidLines(ctx, userID).
		Select("COUNT(DISTINCT COALESCE(p.category_id, vp.category_id))").
		Scan(&count).Error
	return count, err
}

func (r *repository) CountShares(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ShareEvent{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *repository) PaidOrderTimes(ctx context.Context, userID uint64) ([]time.Time, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Select("id", "created_at").
		Where("user_id = ? AND payment_status = ?", userID, enums.PaymentStatusPaid).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, 0, len(orders))
	for _, o := range orders {
		times = append(times, o.CreatedAt)
	}
	return times, nil
}

func (r *repository) CountCategories(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Count(&count).Error
	return count, err
}

func (r *repository) ActiveBadges(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("id ASC").Find(&badges).Error
	return badges, err
}

func (r *repository) HeldBadgeIDs(ctx context.Context, userID uint64) (map[uint64]struct{}, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&models.BadgeAward{}).
		Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error
	if err != nil {
		return nil, err
	}
	held := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		held[id] = struct{}{}
	}
	return held, nil
}

// InsertAwardIfAbsent inserts the award unless (user, badge) already exists and
// reports whether this call created it.
func (r *repository) InsertAwardIfAbsent(ctx context.Context, award *models.BadgeAward) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(award)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListAwards(ctx context.Context, userID uint64) ([]models.BadgeAward, error) {
	var awards []models.BadgeAward
	err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("awarded_at ASC, id ASC").
		Find(&awards).Error
	return awards, err
}
