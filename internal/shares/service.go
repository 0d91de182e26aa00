package shares

import (
	"context"
	"fmt"

	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/tienda-backend/pkg/errors"
	"github.com/angelmondragon/tienda-backend/pkg/logger"
	"gorm.io/gorm"
)

type reconciler interface {
	Reconcile(ctx context.Context, userID uint64) ([]uint64, error)
}

// ShareInput is a product or variant a user shared.
type ShareInput struct {
	UserID    uint64
	ProductID *uint64
	VariantID *uint64
}

// Result lists the badges the share unlocked.
type Result struct {
	NewBadgeIDs []uint64 `json:"insignias_nuevas"`
}

type Service interface {
	Record(ctx context.Context, input ShareInput) (*Result, error)
}

type service struct {
	db         *gorm.DB
	reconciler reconciler
	logg       *logger.Logger
}

func NewService(db *gorm.DB, reconciler reconciler, logg *logger.Logger) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if reconciler == nil {
		return nil, fmt.Errorf("badge reconciler required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{db: db, reconciler: reconciler, logg: logg}, nil
}

// Record stores the share event and then reconciles the user's badges. A
// reconciliation failure is logged; the share itself stays recorded.
func (s *service) Record(ctx context.Context, input ShareInput) (*Result, error) {
	if input.UserID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if (input.ProductID == nil) == (input.VariantID == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of producto_id or variante_id is required")
	}

	event := &models.ShareEvent{UserID: input.UserID, ProductID: input.ProductID, VariantID: input.VariantID}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record share")
	}

	ctx = s.logg.WithUserID(ctx, input.UserID)
	awarded, err := s.reconciler.Reconcile(ctx, input.UserID)
	if err != nil {
		s.logg.Error(ctx, "badges.reconcile.failed", err)
		return &Result{NewBadgeIDs: []uint64{}}, nil
	}
	return &Result{NewBadgeIDs: awarded}, nil
}
