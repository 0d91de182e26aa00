package controllers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/angelmondragon/tienda-backend/api/responses"
	"github.com/angelmondragon/tienda-backend/api/validators"
	"github.com/angelmondragon/tienda-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/tienda-backend/pkg/errors"
	"github.com/angelmondragon/tienda-backend/pkg/logger"
)

// VerifyPayment is the gateway return URL (GET /verificar-pago). The buyer's
// browser always ends on a frontend page, even when the callback fails.
func VerifyPayment(svc payments.Service, frontendURL, failurePage string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		status := q.Get("collection_status")
		if status == "" {
			status = q.Get("status")
		}

		result, err := svc.HandleCallback(r.Context(), payments.CallbackInput{
			ExternalReference: q.Get("external_reference"),
			ProviderStatus:    status,
		})
		if err != nil {
			logCallbackError(r.Context(), logg, err)
			responses.WriteRedirect(w, r, absoluteURL(frontendURL, failurePage))
			return
		}
		responses.WriteRedirect(w, r, absoluteURL(frontendURL, result.Redirect))
	}
}

func logCallbackError(ctx context.Context, logg *logger.Logger, err error) {
	if logg == nil {
		return
	}
	if pkgerrors.IsCode(err, pkgerrors.CodeValidation) || pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "payment.callback.rejected")
		return
	}
	logg.Error(ctx, "payment.callback.failed", err)
}

// absoluteURL resolves relative redirect pages against the frontend origin.
func absoluteURL(base, target string) string {
	if target == "" {
		target = "/"
	}
	if u, err := url.Parse(target); err == nil && u.IsAbs() {
		return target
	}
	if base == "" {
		return target
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(target, "/")
}

// RetryPayment re-runs gateway intent creation for the caller's order
// (POST /ventas/{id}/pago).
func RetryPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RetryIntent(r.Context(), viewer.UserID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
