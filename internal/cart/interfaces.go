package cart

import (
	"context"

	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	"gorm.io/gorm"
)

// CartRepository defines the persistence surface required by the cart service
// and by checkout, which clears the cart inside its own transaction.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	ListByUser(ctx context.Context, userID uint64) ([]models.CartLine, error)
	Increment(ctx context.Context, userID uint64, ref ItemRef, qty int) (bool, error)
	Create(ctx context.Context, line *models.CartLine) error
	DeleteByUser(ctx context.Context, userID uint64) (int64, error)
}

// Catalog resolves cart references to display names and live prices.
type Catalog interface {
	Lookup(ctx context.Context, ref ItemRef) (*CatalogItem, error)
}
