package orders

import (
	"context"
	"testing"

	"github.com/angelmondragon/tienda-backend/pkg/db"
	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	"github.com/angelmondragon/tienda-backend/pkg/enums"
	"github.com/angelmondragon/tienda-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), db.GormConfig())
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))
	return conn
}

func uptr(v uint64) *uint64 { return &v }

func seedOrder(t *testing.T, conn *gorm.DB, userID uint64, status enums.PaymentStatus, lines ...models.OrderLine) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:          userID,
		Total:           decimal.Zero,
		PaymentMethodID: 1,
		PaymentStatus:   status,
		ShipmentStatus:  enums.ShipmentStatusPending,
	}
	for _, l := range lines {
		order.Total = order.Total.Add(l.Subtotal())
	}
	repo := NewRepository(conn)
	require.NoError(t, repo.CreateOrder(context.Background(), order))
	for i := range lines {
		lines[i].OrderID = order.ID
	}
	require.NoError(t, repo.CreateOrderLines(context.Background(), lines))
	return order
}

func TestCompareAndSetPaymentStatus(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	order := seedOrder(t, conn, 1, enums.PaymentStatusPending)

	ok, err := repo.CompareAndSetPaymentStatus(ctx, order.ID, enums.PaymentStatusPending, enums.PaymentStatusPaid)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CompareAndSetPaymentStatus(ctx, order.ID, enums.PaymentStatusPending, enums.PaymentStatusPaid)
	require.NoError(t, err)
	assert.False(t, ok, "second writer must lose once the status moved")

	stored, err := repo.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, stored.PaymentStatus)
}

func TestCountShipmentEventsIsCaseInsensitive(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	order := seedOrder(t, conn, 1, enums.PaymentStatusPaid)

	require.NoError(t, repo.CreateShipmentEvent(ctx, &models.ShipmentEvent{OrderID: order.ID, Status: "en_route", ActorID: 9}))
	require.NoError(t, repo.CreateShipmentEvent(ctx, &models.ShipmentEvent{OrderID: order.ID, Status: "EN_ROUTE", ActorID: 9}))
	require.NoError(t, repo.CreateShipmentEvent(ctx, &models.ShipmentEvent{OrderID: order.ID, Status: "delivered", ActorID: 9}))

	count, err := repo.CountShipmentEvents(ctx, order.ID, "En_Route")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	events, err := repo.ListShipmentEvents(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "delivered", events[2].Status)
}

func TestSetStatusOnMissingOrder(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)

	err := repo.SetShipmentStatus(context.Background(), 404, enums.ShipmentStatusEnRoute)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListQueries(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	category := models.Category{Name: "Biblias"}
	require.NoError(t, conn.Create(&category).Error)
	product := models.Product{CategoryID: category.ID, Name: "Biblia RV60", Price: decimal.NewFromInt(10)}
	require.NoError(t, conn.Create(&product).Error)
	variant := models.Variant{ProductID: product.ID, Name: "Biblia RV60 piel", Price: decimal.NewFromInt(25)}
	require.NoError(t, conn.Create(&variant).Error)

	seedOrder(t, conn, 1, enums.PaymentStatusPaid,
		models.OrderLine{ProductID: uptr(product.ID), Quantity: 2, UnitPrice: decimal.NewFromInt(10)})
	seedOrder(t, conn, 1, enums.PaymentStatusPaid,
		models.OrderLine{ProductID: uptr(product.ID), Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
		models.OrderLine{VariantID: uptr(variant.ID), Quantity: 1, UnitPrice: decimal.NewFromInt(25)})
	seedOrder(t, conn, 1, enums.PaymentStatusPending,
		models.OrderLine{ProductID: uptr(product.ID), Quantity: 7, UnitPrice: decimal.NewFromInt(10)})
	seedOrder(t, conn, 2, enums.PaymentStatusPaid)

	mine, err := repo.ListOrdersByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	page, total, err := repo.ListOrders(ctx, pagination.Params{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, page, 2)

	items, err := repo.ListPurchasedItems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Biblia RV60", items[0].Name)
	assert.Equal(t, int64(3), items[0].Quantity, "pending orders are excluded")
	assert.Equal(t, "Biblia RV60 piel", items[1].Name)

	undelivered, err := repo.ListUndelivered(ctx)
	require.NoError(t, err)
	assert.Len(t, undelivered, 4)
}
