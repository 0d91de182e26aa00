package controllers

import (
	"errors"
	"net/http"

	"github.com/angelmondragon/tienda-backend/api/responses"
	"github.com/angelmondragon/tienda-backend/api/validators"
	"github.com/angelmondragon/tienda-backend/internal/orders"
	"github.com/angelmondragon/tienda-backend/internal/shipments"
	pkgerrors "github.com/angelmondragon/tienda-backend/pkg/errors"
	"github.com/angelmondragon/tienda-backend/pkg/logger"
)

const photoField = "foto"

type shipmentForm struct {
	NewStatus string `json:"nuevoEstado" validate:"required,max=64"`
	Note      string `json:"descripcion" validate:"max=2000"`
}

// RecordShipmentEvent handles POST /envio/actualizar: a multipart form with
// venta_id, nuevoEstado, descripcion and an optional foto file.
func RecordShipmentEvent(svc shipments.Service, maxPhotoBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Form fields plus the photo; the extra MiB covers multipart framing.
		r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes+1<<20)
		if err := r.ParseMultipartForm(maxPhotoBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll()
		}

		// A missing or malformed venta_id names no order.
		orderID, err := validators.ParseFormID(r, "venta_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		form := shipmentForm{NewStatus: r.FormValue("nuevoEstado"), Note: r.FormValue("descripcion")}
		if err := validators.ValidateStruct(&form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := shipments.RecordInput{
			OrderID:   orderID,
			NewStatus: form.NewStatus,
			Note:      form.Note,
			ActorID:   viewer.UserID,
		}
		file, header, err := r.FormFile(photoField)
		switch {
		case err == nil:
			defer file.Close()
			input.Photo = &shipments.Photo{
				Body:        file,
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
			}
		case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid photo"))
			return
		}

		result, err := svc.RecordEvent(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PendingShipments handles GET /envios/pendientes.
func PendingShipments(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.PendingShipments(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetShipment serves GET /envios/{id} and GET /envio/seguimiento/{venta_id};
// param names the chi URL parameter carrying the order id.
func GetShipment(svc orders.Service, param string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParsePathID(r, param)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.GetShipment(r.Context(), viewer, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
