package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/tienda-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the per-user staging cart.
type Service interface {
	Add(ctx context.Context, input AddInput) (*View, error)
	Get(ctx context.Context, userID uint64) (*View, error)
	Clear(ctx context.Context, userID uint64) error
}

type service struct {
	repo    CartRepository
	catalog Catalog
	tx      txRunner
}

func NewService(repo CartRepository, catalog Catalog, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, catalog: catalog, tx: tx}, nil
}

func (s *service) Add(ctx context.Context, input AddInput) (*View, error) {
	if input.UserID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Item.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of producto_id or variante_id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cantidad must be greater than zero")
	}
	if _, err := s.catalog.Lookup(ctx, input.Item); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		updated, err := repo.Increment(ctx, input.UserID, input.Item, input.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment cart line")
		}
		if updated {
			return nil
		}
		if err := repo.Create(ctx, &models.CartLine{
			UserID:    input.UserID,
			ProductID: input.Item.ProductID,
			VariantID: input.Item.VariantID,
			Quantity:  input.Quantity,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart line")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, input.UserID)
}

func (s *service) Get(ctx context.Context, userID uint64) (*View, error) {
	lines, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart lines")
	}

	view := &View{Lines: make([]LineView, 0, len(lines)), Total: decimal.Zero}
	for _, line := range lines {
		lv := LineView{
			ID:        line.ID,
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: decimal.Zero,
		}
		// Items removed from the catalog stay visible with a zero price.
		if item, err := s.catalog.Lookup(ctx, refOf(line)); err == nil {
			lv.Name = item.Name
			lv.UnitPrice = item.Price
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
		}
		lv.Subtotal = lv.UnitPrice.Mul(decimal.NewFromInt(int64(lv.Quantity)))
		view.Total = view.Total.Add(lv.Subtotal)
		view.Lines = append(view.Lines, lv)
	}
	return view, nil
}

func (s *service) Clear(ctx context.Context, userID uint64) error {
	if _, err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}
