package helpers

import (
	"testing"

	pkgerrors "github.com/angelmondragon/tienda-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

func id(v uint64) *uint64 { return &v }

func TestValidateLines(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		lines []Line
		ok    bool
	}{
		{name: "empty", lines: nil},
		{name: "valid product", lines: []Line{{ProductID: id(5), Quantity: 2, UnitPrice: decimal.NewFromInt(10)}}, ok: true},
		{name: "valid variant", lines: []Line{{VariantID: id(5), Quantity: 1, UnitPrice: decimal.Zero}}, ok: true},
		{name: "no reference", lines: []Line{{Quantity: 1, UnitPrice: decimal.NewFromInt(1)}}},
		{name: "both references", lines: []Line{{ProductID: id(1), VariantID: id(2), Quantity: 1}}},
		{name: "zero quantity", lines: []Line{{ProductID: id(1), Quantity: 0}}},
		{name: "negative price", lines: []Line{{ProductID: id(1), Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateLines(tc.lines)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestComputeAndValidateTotal(t *testing.T) {
	t.Parallel()
	lines := []Line{
		{ProductID: id(5), Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		{VariantID: id(9), Quantity: 3, UnitPrice: decimal.RequireFromString("0.10")},
	}

	total := ComputeTotal(lines)
	if !total.Equal(decimal.RequireFromString("20.30")) {
		t.Fatalf("expected 20.30, got %s", total)
	}
	if err := ValidateTotal(decimal.RequireFromString("20.304"), total); err != nil {
		t.Fatalf("difference within tolerance rejected: %v", err)
	}
	if err := ValidateTotal(decimal.RequireFromString("20.31"), total); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected mismatch to be rejected, got %v", err)
	}
}
