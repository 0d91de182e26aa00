package cart

import (
	"context"

	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes persistence operations for cart lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) ListByUser(ctx context.Context, userID uint64) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&lines).Error
	return lines, err
}

// Increment bumps the quantity of an existing line for the same reference and
// reports whether one existed.
func (r *Repository) Increment(ctx context.Context, userID uint64, ref ItemRef, qty int) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.CartLine{}).Where("user_id = ?", userID)
	if ref.ProductID != nil {
		q = q.Where("product_id = ? AND variant_id IS NULL", *ref.ProductID)
	} else {
		q = q.Where("variant_id = ? AND product_id IS NULL", *ref.VariantID)
	}
	res := q.Update("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) Create(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// DeleteByUser removes every cart line the user holds.
func (r *Repository) DeleteByUser(ctx context.Context, userID uint64) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalog reads products and variants for cart display.
func NewCatalog(db *gorm.DB) Catalog {
	return &catalogRepository{db: db}
}

func (c *catalogRepository) Lookup(ctx context.Context, ref ItemRef) (*CatalogItem, error) {
	if ref.ProductID != nil {
		var p models.Product
		if err := c.db.WithContext(ctx).Where("id = ?", *ref.ProductID).First(&p).Error; err != nil {
			return nil, err
		}
		return &CatalogItem{Name: p.Name, Price: p.Price}, nil
	}
	var v models.Variant
	if err := c.db.WithContext(ctx).Where("id = ?", *ref.VariantID).First(&v).Error; err != nil {
		return nil, err
	}
	return &CatalogItem{Name: v.Name, Price: v.Price}, nil
}
