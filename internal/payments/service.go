package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/tienda-backend/internal/cart"
	"github.com/angelmondragon/tienda-backend/internal/orders"
	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	"github.com/angelmondragon/tienda-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/tienda-backend/pkg/errors"
	"github.com/angelmondragon/tienda-backend/pkg/logger"
	"github.com/angelmondragon/tienda-backend/pkg/mercadopago"
	"github.com/angelmondragon/tienda-backend/pkg/metrics"
	"gorm.io/gorm"
)

const (
	systemActor    = "system"
	defaultTimeout = 10 * time.Second
)

// Gateway creates checkout preferences at the payment provider.
type Gateway interface {
	CreatePreference(ctx context.Context, in mercadopago.PreferenceInput) (string, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type methodFinder interface {
	FindPaymentMethod(ctx context.Context, id uint64) (*models.PaymentMethod, error)
}

type callbackGuard interface {
	CheckAndMark(ctx context.Context, externalRef, providerStatus string) (bool, error)
	Release(ctx context.Context, externalRef, providerStatus string) error
}

type reconciler interface {
	Reconcile(ctx context.Context, userID uint64) ([]uint64, error)
}

// Service is the payment gateway adapter: intent creation, retries and
// callback finalization.
type Service interface {
	CreateIntent(ctx context.Context, order *models.Order) (string, error)
	RetryIntent(ctx context.Context, userID, orderID uint64) (*RetryResult, error)
	HandleCallback(ctx context.Context, input CallbackInput) (*CallbackResult, error)
}

type service struct {
	repo       orders.Repository
	tx         txRunner
	gateway    Gateway
	catalog    cart.Catalog
	methods    methodFinder
	guard      callbackGuard
	reconciler reconciler
	metrics    *metrics.OrderMetrics
	logg       *logger.Logger
	opts       Options
}

// Deps groups the collaborators of the payment service. Guard and Metrics are optional.
type Deps struct {
	Repo       orders.Repository
	Tx         txRunner
	Gateway    Gateway
	Catalog    cart.Catalog
	Methods    methodFinder
	Guard      callbackGuard
	Reconciler reconciler
	Metrics    *metrics.OrderMetrics
	Logger     *logger.Logger
}

func NewService(deps Deps, opts Options) (Service, error) {
	if deps.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if deps.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if deps.Methods == nil {
		return nil, fmt.Errorf("payment method finder required")
	}
	if deps.Reconciler == nil {
		return nil, fmt.Errorf("badge reconciler required")
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.GatewayName == "" {
		opts.GatewayName = "gateway"
	}
	s := &service{
		repo:       deps.Repo,
		tx:         deps.Tx,
		gateway:    deps.Gateway,
		catalog:    deps.Catalog,
		methods:    deps.Methods,
		reconciler: deps.Reconciler,
		metrics:    deps.Metrics,
		logg:       deps.Logger,
		opts:       opts,
	}
	if deps.Guard != nil {
		s.guard = deps.Guard
	}
	return s, nil
}

// CreateIntent asks the gateway for a redirect URL keyed by the order id. The
// call is bounded by the configured timeout; on failure or timeout the order
// moves pending→failed and a PAYMENT_SETUP_FAILED error is returned.
func (s *service) CreateIntent(ctx context.Context, order *models.Order) (string, error) {
	if order == nil || order.ID == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if len(order.Lines) == 0 {
		loaded, err := s.repo.FindOrderWithLines(ctx, order.ID)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order lines")
		}
		order = loaded
	}

	in := mercadopago.PreferenceInput{
		ExternalReference: strconv.FormatUint(order.ID, 10),
		Items:             s.preferenceItems(ctx, order),
		SuccessURL:        s.opts.CallbackURL,
		PendingURL:        s.opts.CallbackURL,
		FailureURL:        s.opts.CallbackURL,
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	initPoint, err := s.gateway.CreatePreference(callCtx, in)
	if err == nil && initPoint == "" {
		err = errors.New("empty redirect url")
	}
	if err != nil {
		ctx = s.logg.WithOrderID(ctx, order.ID)
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "payment.intent.failed")
		if markErr := s.transition(ctx, order.ID, enums.PaymentStatusPending, enums.PaymentStatusFailed, s.opts.GatewayName); markErr != nil {
			s.logg.Error(ctx, "payment.intent.mark_failed", markErr)
		}
		return "", pkgerrors.Wrap(pkgerrors.CodePaymentSetup, err, "create payment intent")
	}
	return initPoint, nil
}

func (s *service) preferenceItems(ctx context.Context, order *models.Order) []mercadopago.Item {
	items := make([]mercadopago.Item, 0, len(order.Lines))
	for i, line := range order.Lines {
		title := fmt.Sprintf("Pedido %d artículo %d", order.ID, i+1)
		if item, err := s.catalog.Lookup(ctx, cart.ItemRef{ProductID: line.ProductID, VariantID: line.VariantID}); err == nil && item.Name != "" {
			title = item.Name
		}
		items = append(items, mercadopago.Item{
			Title:     title,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return items
}

// RetryIntent re-runs payment initiation for the owner's pending or failed
// gateway order. A failed order goes back to pending first.
func (s *service) RetryIntent(ctx context.Context, userID, orderID uint64) (*RetryResult, error) {
	order, err := s.repo.FindOrderWithLines(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}

	method, err := s.methods.FindPaymentMethod(ctx, order.PaymentMethodID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment method")
	}
	if method.Kind != enums.PaymentMethodKindGateway {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not paid through the gateway")
	}

	switch order.PaymentStatus {
	case enums.PaymentStatusPending:
	case enums.PaymentStatusFailed:
		if err := s.transition(ctx, order.ID, enums.PaymentStatusFailed, enums.PaymentStatusPending, systemActor); err != nil {
			return nil, err
		}
		order.PaymentStatus = enums.PaymentStatusPending
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment can only be retried for pending or failed orders").
			WithDetails(map[string]any{"estado_pago": order.PaymentStatus})
	}

	initPoint, err := s.CreateIntent(ctx, order)
	if err != nil {
		return nil, err
	}
	return &RetryResult{OrderID: order.ID, InitPoint: initPoint}, nil
}

// transition applies a compare-and-set payment status change with its history row.
func (s *service) transition(ctx context.Context, orderID uint64, from, to enums.PaymentStatus, actor string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		changed, err := repo.CompareAndSetPaymentStatus(ctx, orderID, from, to)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update payment status")
		}
		if !changed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment status changed concurrently")
		}
		return repo.AppendPaymentHistory(ctx, &models.OrderStatusHistory{
			OrderID:        orderID,
			PreviousStatus: from.String(),
			NewStatus:      to.String(),
			Actor:          actor,
		})
	})
}

// HandleCallback maps the provider status and applies the allowed transition
// exactly once. Paid orders never regress. After any callback that leaves the
// order paid the owner's badges are reconciled; reconciliation is idempotent
// so duplicates are harmless.
func (s *service) HandleCallback(ctx context.Context, input CallbackInput) (*CallbackResult, error) {
	ref := strings.TrimSpace(input.ExternalReference)
	orderID, err := strconv.ParseUint(ref, 10, 64)
	if err != nil || orderID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid external_reference")
	}
	next := enums.FromGatewayStatus(input.ProviderStatus)
	result := &CallbackResult{OrderID: orderID, Status: next, Redirect: s.redirectFor(next)}
	ctx = s.logg.WithFields(s.logg.WithOrderID(ctx, orderID), map[string]any{
		"provider_status": input.ProviderStatus,
		"gateway":         s.opts.GatewayName,
	})

	// Only gateway orders ever had a preference; a forged return URL must not
	// settle cash or immediate orders.
	stored, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	method, err := s.methods.FindPaymentMethod(ctx, stored.PaymentMethodID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment method")
	}
	if method.Kind != enums.PaymentMethodKindGateway {
		result.Action = CallbackIgnored
		result.Status = stored.PaymentStatus
		result.Redirect = s.redirectFor(stored.PaymentStatus)
		s.metrics.IncCallback(string(CallbackIgnored))
		s.logg.Warn(s.logg.WithField(ctx, "payment_method_kind", method.Kind), "payment.callback.not_gateway_order")
		return result, nil
	}

	duplicate := false
	if s.guard != nil {
		seen, err := s.guard.CheckAndMark(ctx, ref, input.ProviderStatus)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "payment.callback.guard_unavailable")
		}
		duplicate = seen
	}

	var order *models.Order
	if duplicate {
		order, err = s.repo.FindOrder(ctx, orderID)
		if err != nil {
			return nil, notFoundOr(err)
		}
		result.Action = CallbackDuplicate
	} else {
		order, result.Action, err = s.applyCallback(ctx, orderID, next)
		if err != nil {
			if s.guard != nil {
				if relErr := s.guard.Release(ctx, ref, input.ProviderStatus); relErr != nil {
					s.logg.Warn(s.logg.WithField(ctx, "error", relErr.Error()), "payment.callback.guard_release_failed")
				}
			}
			s.metrics.IncCallback("error")
			return nil, err
		}
	}
	result.Status = order.PaymentStatus

	s.metrics.IncCallback(string(result.Action))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"action":         result.Action,
		"payment_status": order.PaymentStatus,
	}), "payment.callback."+string(result.Action))

	if order.PaymentStatus == enums.PaymentStatusPaid {
		if _, err := s.reconciler.Reconcile(ctx, order.UserID); err != nil {
			s.logg.Error(ctx, "badges.reconcile.failed", err)
		}
	}
	return result, nil
}

// applyCallback runs the compare-and-set transition in one short transaction
// and returns the order as it stands afterwards.
func (s *service) applyCallback(ctx context.Context, orderID uint64, next enums.PaymentStatus) (*models.Order, CallbackAction, error) {
	var (
		order  *models.Order
		action CallbackAction
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			return notFoundOr(err)
		}
		order = current
		prev := current.PaymentStatus

		if prev == next {
			action = CallbackNoop
			return nil
		}
		if !prev.CanTransitionByCallback(next) {
			action = CallbackIgnored
			return nil
		}

		changed, err := repo.CompareAndSetPaymentStatus(ctx, orderID, prev, next)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update payment status")
		}
		if !changed {
			// Another delivery won the race; report the stored state.
			fresh, err := repo.FindOrder(ctx, orderID)
			if err != nil {
				return notFoundOr(err)
			}
			order = fresh
			action = CallbackIgnored
			return nil
		}
		if err := repo.AppendPaymentHistory(ctx, &models.OrderStatusHistory{
			OrderID:        orderID,
			PreviousStatus: prev.String(),
			NewStatus:      next.String(),
			Actor:          s.opts.GatewayName,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append payment history")
		}
		order.PaymentStatus = next
		action = CallbackTransitioned
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return order, action, nil
}

func (s *service) redirectFor(status enums.PaymentStatus) string {
	switch status {
	case enums.PaymentStatusPaid:
		return s.opts.SuccessPage
	case enums.PaymentStatusPending:
		return s.opts.PendingPage
	default:
		return s.opts.FailurePage
	}
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
}
