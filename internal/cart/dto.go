package cart

import (
	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// ItemRef identifies exactly one of a product or a variant.
type ItemRef struct {
	ProductID *uint64
	VariantID *uint64
}

// Valid reports whether exactly one reference is set.
func (r ItemRef) Valid() bool {
	return (r.ProductID == nil) != (r.VariantID == nil)
}

func refOf(line models.CartLine) ItemRef {
	return ItemRef{ProductID: line.ProductID, VariantID: line.VariantID}
}

type CatalogItem struct {
	Name  string
	Price decimal.Decimal
}

type AddInput struct {
	UserID   uint64
	Item     ItemRef
	Quantity int
}

type LineView struct {
	ID        uint64          `json:"id"`
	ProductID *uint64         `json:"producto_id,omitempty"`
	VariantID *uint64         `json:"variante_id,omitempty"`
	Name      string          `json:"nombre"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type View struct {
	Lines []LineView      `json:"productos"`
	Total decimal.Decimal `json:"total"`
}
