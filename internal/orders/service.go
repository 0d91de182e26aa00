package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	"github.com/angelmondragon/tienda-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/tienda-backend/pkg/errors"
	"github.com/angelmondragon/tienda-backend/pkg/logger"
	"github.com/angelmondragon/tienda-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes staff overrides and the read side of the order ledger.
type Service interface {
	OverridePaymentStatus(ctx context.Context, input OverrideInput) error
	OverrideShipmentStatus(ctx context.Context, input OverrideInput) error

	UserHistory(ctx context.Context, viewer Viewer, userID uint64) ([]OrderSummary, error)
	PurchasedItems(ctx context.Context, viewer Viewer, userID uint64) ([]PurchasedItem, error)
	GetOrder(ctx context.Context, viewer Viewer, orderID uint64) (*OrderView, error)
	GetOrderDetail(ctx context.Context, orderID uint64) (*OrderDetail, error)
	ListAll(ctx context.Context, params pagination.Params) (*OrderList, error)
	PendingShipments(ctx context.Context) ([]OrderSummary, error)
	GetShipment(ctx context.Context, viewer Viewer, orderID uint64) (*ShipmentView, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	reconciler Reconciler
	logg       *logger.Logger
}

// NewService builds the orders service. The reconciler is optional.
func NewService(repo Repository, tx txRunner, reconciler Reconciler, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tx: tx, reconciler: reconciler, logg: logg}, nil
}

func (s *service) OverridePaymentStatus(ctx context.Context, input OverrideInput) error {
	if input.OrderID == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	next, err := enums.ParsePaymentStatus(input.NewStatus)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status")
	}
	actor := overrideActor(input)

	var (
		ownerID uint64
		changed bool
		prev    enums.PaymentStatus
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			return notFoundOr(err, "load order")
		}
		ownerID, prev = order.UserID, order.PaymentStatus
		if prev == next {
			return nil
		}
		if err := repo.SetPaymentStatus(ctx, order.ID, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update payment status")
		}
		changed = true
		return repo.AppendPaymentHistory(ctx, &models.OrderStatusHistory{
			OrderID:        order.ID,
			PreviousStatus: prev.String(),
			NewStatus:      next.String(),
			Actor:          actor,
		})
	})
	if err != nil {
		return err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"order_id": input.OrderID, "actor": actor})
	if !changed {
		s.logg.Info(ctx, "order.payment_override.noop")
		return nil
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"from": prev, "to": next}), "order.payment_override.applied")

	if next == enums.PaymentStatusPaid && s.reconciler != nil {
		if _, err := s.reconciler.Reconcile(ctx, ownerID); err != nil {
			s.logg.Error(ctx, "badges.reconcile.failed", err)
		}
	}
	return nil
}

func (s *service) OverrideShipmentStatus(ctx context.Context, input OverrideInput) error {
	if input.OrderID == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	next := enums.NormalizeShipmentStatus(input.NewStatus)
	if next == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipment status required")
	}
	actor := overrideActor(input)

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			return notFoundOr(err, "load order")
		}
		if err := repo.SetShipmentStatus(ctx, order.ID, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update shipment status")
		}
		return repo.AppendShipmentHistory(ctx, &models.ShipmentStatusHistory{
			OrderID:        order.ID,
			PreviousStatus: order.ShipmentStatus.String(),
			NewStatus:      next.String(),
			Actor:          actor,
		})
	})
}

func (s *service) UserHistory(ctx context.Context, viewer Viewer, userID uint64) ([]OrderSummary, error) {
	if !viewer.CanSee(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user's orders")
	}
	orders, err := s.repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return toSummaries(orders), nil
}

func (s *service) PurchasedItems(ctx context.Context, viewer Viewer, userID uint64) ([]PurchasedItem, error) {
	if !viewer.CanSee(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user's purchases")
	}
	items, err := s.repo.ListPurchasedItems(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list purchased items")
	}
	if items == nil {
		items = []PurchasedItem{}
	}
	return items, nil
}

func (s *service) GetOrder(ctx context.Context, viewer Viewer, orderID uint64) (*OrderView, error) {
	order, err := s.repo.FindOrderWithLines(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	if !viewer.CanSee(order.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user's order")
	}
	view := toOrderView(*order)
	return &view, nil
}

func (s *service) GetOrderDetail(ctx context.Context, orderID uint64) (*OrderDetail, error) {
	order, err := s.repo.FindOrderWithLines(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	payments, err := s.repo.ListPaymentHistory(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payment history")
	}
	shipments, err := s.repo.ListShipmentHistory(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shipment history")
	}
	return &OrderDetail{
		OrderView:       toOrderView(*order),
		PaymentHistory:  paymentEntries(payments),
		ShipmentHistory: shipmentEntries(shipments),
	}, nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) (*OrderList, error) {
	params = params.Normalize()
	orders, total, err := s.repo.ListOrders(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return &OrderList{Orders: toSummaries(orders), Total: total, Limit: params.Limit, Offset: params.Offset}, nil
}

func (s *service) PendingShipments(ctx context.Context) ([]OrderSummary, error) {
	orders, err := s.repo.ListUndelivered(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending shipments")
	}
	return toSummaries(orders), nil
}

func (s *service) GetShipment(ctx context.Context, viewer Viewer, orderID uint64) (*ShipmentView, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	if viewer.Role != enums.UserRoleCourier && !viewer.CanSee(order.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user's shipment")
	}
	events, err := s.repo.ListShipmentEvents(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shipment events")
	}
	return &ShipmentView{
		OrderID:         order.ID,
		UserID:          order.UserID,
		ShippingAddress: order.ShippingAddress,
		ShipmentStatus:  order.ShipmentStatus,
		PaymentStatus:   order.PaymentStatus,
		Events:          toEventViews(events),
	}, nil
}

func overrideActor(input OverrideInput) string {
	if actor := strings.TrimSpace(input.ChangedBy); actor != "" {
		return actor
	}
	return strconv.FormatUint(input.Viewer.UserID, 10)
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
