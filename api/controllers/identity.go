package controllers

import (
	"net/http"

	"github.com/angelmondragon/tienda-backend/api/middleware"
	"github.com/angelmondragon/tienda-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/tienda-backend/pkg/errors"
)

func viewerFromRequest(r *http.Request) (orders.Viewer, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == 0 {
		return orders.Viewer{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return orders.Viewer{UserID: userID, Role: middleware.RoleFromContext(r.Context())}, nil
}
