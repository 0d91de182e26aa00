package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/tienda-backend/internal/cart"
	"github.com/angelmondragon/tienda-backend/internal/checkout/helpers"
	"github.com/angelmondragon/tienda-backend/internal/orders"
	"github.com/angelmondragon/tienda-backend/pkg/db"
	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	"github.com/angelmondragon/tienda-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/tienda-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubIntents struct {
	conn  *gorm.DB
	url   string
	err   error
	calls int
}

// CreateIntent mirrors the gateway adapter: a failure leaves the order failed.
func (s *stubIntents) CreateIntent(_ context.Context, order *models.Order) (string, error) {
	s.calls++
	if s.err != nil {
		s.conn.Model(&models.Order{}).Where("id = ?", order.ID).Update("payment_status", enums.PaymentStatusFailed)
		return "", pkgerrors.Wrap(pkgerrors.CodePaymentSetup, s.err, "create payment intent")
	}
	return s.url, nil
}

type stubReconciler struct {
	users []uint64
}

func (r *stubReconciler) Reconcile(_ context.Context, userID uint64) ([]uint64, error) {
	r.users = append(r.users, userID)
	return nil, nil
}

type fixture struct {
	conn       *gorm.DB
	orders     orders.Repository
	cart       *cart.Repository
	intents    *stubIntents
	reconciler *stubReconciler
	svc        Service
	methods    map[enums.PaymentMethodKind]uint64
	productID  uint64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), db.GormConfig())
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))

	f := &fixture{
		conn:       conn,
		orders:     orders.NewRepository(conn),
		cart:       cart.NewRepository(conn),
		intents:    &stubIntents{conn: conn, url: "https://mp.example/init/9"},
		reconciler: &stubReconciler{},
		methods:    map[enums.PaymentMethodKind]uint64{},
	}
	for _, pm := range []models.PaymentMethod{
		{Name: "Tarjeta", Kind: enums.PaymentMethodKindImmediate, Active: true},
		{Name: "Efectivo", Kind: enums.PaymentMethodKindCashOnDelivery, Active: true},
		{Name: "MercadoPago", Kind: enums.PaymentMethodKindGateway, Active: true},
	} {
		pm := pm
		require.NoError(t, conn.Create(&pm).Error)
		f.methods[pm.Kind] = pm.ID
	}
	product := models.Product{CategoryID: 1, Name: "Himnario", Price: decimal.NewFromInt(10)}
	require.NoError(t, conn.Create(&product).Error)
	f.productID = product.ID

	svc, err := NewService(
		db.Wrap(conn),
		f.orders,
		f.cart,
		cart.NewCatalog(conn),
		NewPaymentMethodRepository(conn),
		f.intents,
		f.reconciler,
		nil,
		nil,
		Options{PendingRedirect: "/pedido-pendiente"},
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) fillCart(t *testing.T, userID uint64) {
	t.Helper()
	pid := f.productID
	require.NoError(t, f.cart.Create(context.Background(), &models.CartLine{UserID: userID, ProductID: &pid, Quantity: 2}))
}

func (f *fixture) input(userID uint64, kind enums.PaymentMethodKind) Input {
	pid := f.productID
	return Input{
		UserID:          userID,
		Lines:           []helpers.Line{{ProductID: &pid, Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")}},
		Total:           decimal.RequireFromString("20.00"),
		PaymentMethodID: f.methods[kind],
	}
}

func (f *fixture) countOrders(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&n).Error)
	return n
}

func (f *fixture) cartSize(t *testing.T, userID uint64) int {
	t.Helper()
	lines, err := f.cart.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	return len(lines)
}

func TestExecuteImmediatePaymentCompletesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, 3)

	res, err := f.svc.Execute(ctx, f.input(3, enums.PaymentMethodKindImmediate))
	require.NoError(t, err)
	assert.Equal(t, MessagePurchased, res.Message)
	assert.Equal(t, enums.PaymentStatusPaid, res.PaymentStatus)
	assert.Empty(t, res.InitPoint)

	order, err := f.orders.FindOrderWithLines(ctx, res.OrderID)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, enums.ShipmentStatusPending, order.ShipmentStatus)
	require.Len(t, order.Lines, 1)

	history, err := f.orders.ListPaymentHistory(ctx, res.OrderID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "none", history[0].PreviousStatus)
	assert.Equal(t, "paid", history[0].NewStatus)
	assert.Equal(t, "system", history[0].Actor)

	assert.Zero(t, f.cartSize(t, 3))
	assert.Equal(t, []uint64{3}, f.reconciler.users)
	assert.Zero(t, f.intents.calls)
}

func TestExecuteRollsBackWhenHistoryInsertFails(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, 3)
	require.NoError(t, f.conn.Migrator().DropTable(&models.OrderStatusHistory{}))

	res, err := f.svc.Execute(context.Background(), f.input(3, enums.PaymentMethodKindImmediate))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))

	var lines int64
	require.NoError(t, f.conn.Model(&models.OrderLine{}).Count(&lines).Error)
	assert.Zero(t, f.countOrders(t))
	assert.Zero(t, lines)
	assert.Equal(t, 1, f.cartSize(t, 3), "cart survives a failed checkout")
	assert.Empty(t, f.reconciler.users)
}

func TestExecuteGatewayReturnsInitPoint(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, 3)

	res, err := f.svc.Execute(context.Background(), f.input(3, enums.PaymentMethodKindGateway))
	require.NoError(t, err)
	assert.Equal(t, MessageRedirect, res.Message)
	assert.Equal(t, enums.PaymentStatusPending, res.PaymentStatus)
	assert.Equal(t, "https://mp.example/init/9", res.InitPoint)
	assert.Zero(t, f.cartSize(t, 3))
	assert.Empty(t, f.reconciler.users, "pending orders do not count toward badges")
}

func TestExecuteCashOnDeliveryRedirects(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Execute(context.Background(), f.input(3, enums.PaymentMethodKindCashOnDelivery))
	require.NoError(t, err)
	assert.Equal(t, MessagePendingConfirmation, res.Message)
	assert.Equal(t, "/pedido-pendiente", res.Redirect)
	assert.Equal(t, enums.PaymentStatusPending, res.PaymentStatus)
}

func TestExecuteGatewayFailureKeepsOrder(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, 3)
	f.intents.err = errors.New("provider unavailable")

	res, err := f.svc.Execute(context.Background(), f.input(3, enums.PaymentMethodKindGateway))
	require.NoError(t, err)
	assert.True(t, res.PaymentError)
	assert.Equal(t, MessagePaymentSetupFailed, res.Message)
	assert.Equal(t, enums.PaymentStatusFailed, res.PaymentStatus)

	order, err := f.orders.FindOrder(context.Background(), res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusFailed, order.PaymentStatus)
	assert.Zero(t, f.cartSize(t, 3), "the cart is consumed once the order commits")
}

func TestExecuteRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, 3)

	empty := f.input(3, enums.PaymentMethodKindImmediate)
	empty.Lines = nil
	_, err := f.svc.Execute(ctx, empty)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	mismatch := f.input(3, enums.PaymentMethodKindImmediate)
	mismatch.Total = decimal.RequireFromString("19.00")
	_, err = f.svc.Execute(ctx, mismatch)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	unknownMethod := f.input(3, enums.PaymentMethodKindImmediate)
	unknownMethod.PaymentMethodID = 999
	_, err = f.svc.Execute(ctx, unknownMethod)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	missing := f.input(3, enums.PaymentMethodKindImmediate)
	ghost := uint64(404)
	missing.Lines[0].ProductID = &ghost
	_, err = f.svc.Execute(ctx, missing)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Execute(ctx, Input{Lines: empty.Lines})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	assert.Zero(t, f.countOrders(t))
	assert.Equal(t, 1, f.cartSize(t, 3), "rejected checkouts leave the cart alone")
}

func TestExecuteToleratesRoundingInClientTotal(t *testing.T) {
	f := newFixture(t)
	in := f.input(3, enums.PaymentMethodKindImmediate)
	in.Total = decimal.RequireFromString("20.004")

	res, err := f.svc.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.NotZero(t, res.OrderID)
}
