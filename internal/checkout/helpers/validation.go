package helpers

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/tienda-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// TotalTolerance is the largest accepted difference between the client total
// and the recomputed sum of lines.
var TotalTolerance = decimal.RequireFromString("0.005")

// Line is one requested checkout line.
type Line struct {
	ProductID *uint64
	VariantID *uint64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal is quantity times unit price.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ValidateLines rejects an empty cart and malformed lines.
func ValidateLines(lines []Line) error {
	if len(lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	for i, line := range lines {
		field := fmt.Sprintf("productos[%d]", i)
		if (line.ProductID == nil) == (line.VariantID == nil) {
			return pkgerrors.New(pkgerrors.CodeValidation, "each line needs exactly one of producto_id or variante_id").
				WithDetails(map[string]any{"field": field})
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cantidad must be greater than zero").
				WithDetails(map[string]any{"field": field + ".cantidad"})
		}
		if line.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "precio_venta must not be negative").
				WithDetails(map[string]any{"field": field + ".precio_venta"})
		}
	}
	return nil
}

// ComputeTotal sums every line subtotal.
func ComputeTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ValidateTotal checks the client-asserted total against the computed one.
func ValidateTotal(claimed, computed decimal.Decimal) error {
	if claimed.Sub(computed).Abs().GreaterThan(TotalTolerance) {
		return pkgerrors.New(pkgerrors.CodeValidation, "total does not match the sum of the lines").
			WithDetails(map[string]any{"total": claimed.StringFixed(2), "expected": computed.StringFixed(2)})
	}
	return nil
}
