package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/tienda-backend/internal/cart"
	"github.com/angelmondragon/tienda-backend/internal/checkout/helpers"
	"github.com/angelmondragon/tienda-backend/internal/orders"
	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	"github.com/angelmondragon/tienda-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/tienda-backend/pkg/errors"
	"github.com/angelmondragon/tienda-backend/pkg/logger"
	"github.com/angelmondragon/tienda-backend/pkg/metrics"
	"gorm.io/gorm"
)

const systemActor = "system"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// intentCreator requests a gateway redirect for a committed order.
type intentCreator interface {
	CreateIntent(ctx context.Context, order *models.Order) (string, error)
}

type reconciler interface {
	Reconcile(ctx context.Context, userID uint64) ([]uint64, error)
}

// Service executes checkout orchestration.
type Service interface {
	Execute(ctx context.Context, input Input) (*Result, error)
}

// Options carries the client-facing redirect for cash orders.
type Options struct {
	PendingRedirect string
}

type service struct {
	tx         txRunner
	ordersRepo orders.Repository
	cartRepo   cart.CartRepository
	catalog    cart.Catalog
	methods    PaymentMethodRepository
	intents    intentCreator
	reconciler reconciler
	metrics    *metrics.OrderMetrics
	logg       *logger.Logger
	opts       Options
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	ordersRepo orders.Repository,
	cartRepo cart.CartRepository,
	catalog cart.Catalog,
	methods PaymentMethodRepository,
	intents intentCreator,
	reconciler reconciler,
	m *metrics.OrderMetrics,
	logg *logger.Logger,
	opts Options,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if methods == nil {
		return nil, fmt.Errorf("payment method repository required")
	}
	if intents == nil {
		return nil, fmt.Errorf("payment intent creator required")
	}
	if reconciler == nil {
		return nil, fmt.Errorf("badge reconciler required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		tx:         tx,
		ordersRepo: ordersRepo,
		cartRepo:   cartRepo,
		catalog:    catalog,
		methods:    methods,
		intents:    intents,
		reconciler: reconciler,
		metrics:    m,
		logg:       logg,
		opts:       opts,
	}, nil
}

func (s *service) Execute(ctx context.Context, input Input) (res *Result, err error) {
	started := time.Now()
	kind := enums.PaymentMethodKind("")
	defer func() {
		outcome := "error"
		switch {
		case err != nil && pkgerrors.IsCode(err, pkgerrors.CodeValidation):
			outcome = "rejected"
		case err == nil && res.PaymentError:
			outcome = "payment_setup_failed"
		case err == nil:
			outcome = "created"
		}
		s.metrics.ObserveCheckout(kind.String(), outcome, time.Since(started))
	}()

	if input.UserID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := helpers.ValidateLines(input.Lines); err != nil {
		return nil, err
	}
	total := helpers.ComputeTotal(input.Lines)
	if err := helpers.ValidateTotal(input.Total, total); err != nil {
		return nil, err
	}

	method, err := s.resolveMethod(ctx, input.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	kind = method.Kind
	if err := s.ensureCatalogItems(ctx, input.Lines); err != nil {
		return nil, err
	}

	initial := kind.InitialPaymentStatus()
	order := &models.Order{
		UserID:          input.UserID,
		Total:           total,
		PaymentMethodID: method.ID,
		ShippingAddress: input.ShippingAddress,
		PaymentStatus:   initial,
		ShipmentStatus:  enums.ShipmentStatusPending,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		if err := ordersRepo.CreateOrder(ctx, order); err != nil {
			return err
		}

		lines := make([]models.OrderLine, 0, len(input.Lines))
		for _, l := range input.Lines {
			lines = append(lines, models.OrderLine{
				OrderID:   order.ID,
				ProductID: l.ProductID,
				VariantID: l.VariantID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
			})
		}
		if err := ordersRepo.CreateOrderLines(ctx, lines); err != nil {
			return err
		}
		order.Lines = lines

		if _, err := s.cartRepo.WithTx(tx).DeleteByUser(ctx, input.UserID); err != nil {
			return err
		}

		return ordersRepo.AppendPaymentHistory(ctx, &models.OrderStatusHistory{
			OrderID:        order.ID,
			PreviousStatus: enums.PaymentStatusNone.String(),
			NewStatus:      initial.String(),
			Actor:          systemActor,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}

	ctx = s.logg.WithOrderID(s.logg.WithUserID(ctx, input.UserID), order.ID)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"method_kind":    kind,
		"payment_status": initial,
		"total":          total.StringFixed(2),
	}), "checkout.committed")

	result := &Result{OrderID: order.ID, PaymentStatus: initial}
	switch kind {
	case enums.PaymentMethodKindGateway:
		initPoint, err := s.intents.CreateIntent(ctx, order)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout.payment_setup.failed")
			result.Message = MessagePaymentSetupFailed
			result.PaymentError = true
			result.PaymentStatus = enums.PaymentStatusFailed
			return result, nil
		}
		result.Message = MessageRedirect
		result.InitPoint = initPoint
	case enums.PaymentMethodKindCashOnDelivery:
		result.Message = MessagePendingConfirmation
		result.Redirect = s.opts.PendingRedirect
	default:
		result.Message = MessagePurchased
		if _, err := s.reconciler.Reconcile(ctx, input.UserID); err != nil {
			s.logg.Error(ctx, "badges.reconcile.failed", err)
		}
	}
	return result, nil
}

func (s *service) resolveMethod(ctx context.Context, id uint64) (*models.PaymentMethod, error) {
	if id == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "metodoPago is required")
	}
	method, err := s.methods.FindPaymentMethod(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment method")
	}
	if !method.Active || !method.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method not available")
	}
	return method, nil
}

func (s *service) ensureCatalogItems(ctx context.Context, lines []helpers.Line) error {
	for _, l := range lines {
		_, err := s.catalog.Lookup(ctx, cart.ItemRef{ProductID: l.ProductID, VariantID: l.VariantID})
		if err == nil {
			continue
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
	}
	return nil
}
