package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/tienda-backend/api/responses"
	"github.com/angelmondragon/tienda-backend/api/validators"
	"github.com/angelmondragon/tienda-backend/internal/badges"
	"github.com/angelmondragon/tienda-backend/internal/shares"
	"github.com/angelmondragon/tienda-backend/internal/users"
	"github.com/angelmondragon/tienda-backend/pkg/logger"
)

type shareRequest struct {
	ProductID *uint64 `json:"producto_id" validate:"required_without=VariantID,excluded_with=VariantID"`
	VariantID *uint64 `json:"variante_id"`
}

// Share handles POST /compartir.
func Share(svc shares.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload shareRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Record(r.Context(), shares.ShareInput{
			UserID:    viewer.UserID,
			ProductID: payload.ProductID,
			VariantID: payload.VariantID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type awardLister interface {
	Awards(ctx context.Context, userID uint64) ([]badges.AwardView, error)
}

// ListBadges handles GET /insignias for the caller.
func ListBadges(engine awardLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		awards, err := engine.Awards(r.Context(), viewer.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, awards)
	}
}

type pushTokenRequest struct {
	Token string `json:"token" validate:"max=512"`
}

// SavePushToken handles POST /guardar-token. An empty token unregisters the device.
func SavePushToken(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload pushTokenRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SavePushToken(r.Context(), viewer.UserID, payload.Token); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
