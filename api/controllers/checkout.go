package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/tienda-backend/api/responses"
	"github.com/angelmondragon/tienda-backend/api/validators"
	checkoutsvc "github.com/angelmondragon/tienda-backend/internal/checkout"
	"github.com/angelmondragon/tienda-backend/internal/checkout/helpers"
	pkgerrors "github.com/angelmondragon/tienda-backend/pkg/errors"
	"github.com/angelmondragon/tienda-backend/pkg/logger"
)

// Checkout turns the submitted cart into an order (POST /comprar).
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBodyLenient(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Execute(r.Context(), payload.toInput(viewer.UserID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type checkoutLine struct {
	ProductID *uint64         `json:"producto_id" validate:"required_without=VariantID,excluded_with=VariantID"`
	VariantID *uint64         `json:"variante_id"`
	Quantity  int             `json:"cantidad" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"precio_venta"`
}

type checkoutRequest struct {
	Lines           []checkoutLine  `json:"productos" validate:"dive"`
	Total           decimal.Decimal `json:"total"`
	PaymentMethodID uint64          `json:"metodoPago" validate:"required"`
	ShippingAddress string          `json:"direccionEnvio" validate:"max=500"`
}

func (p checkoutRequest) toInput(userID uint64) checkoutsvc.Input {
	lines := make([]helpers.Line, 0, len(p.Lines))
	for _, l := range p.Lines {
		lines = append(lines, helpers.Line{
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	in := checkoutsvc.Input{
		UserID:          userID,
		Lines:           lines,
		Total:           p.Total,
		PaymentMethodID: p.PaymentMethodID,
	}
	if addr := strings.TrimSpace(p.ShippingAddress); addr != "" {
		in.ShippingAddress = &addr
	}
	return in
}
