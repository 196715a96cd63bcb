package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/freshvale/dairyops/internal/customer/domain"
	customerrepo "github.com/freshvale/dairyops/internal/customer/repository"
	modificationdomain "github.com/freshvale/dairyops/internal/modification/domain"
	modificationrepo "github.com/freshvale/dairyops/internal/modification/repository"
	"github.com/freshvale/dairyops/internal/order/domain"
	"github.com/freshvale/dairyops/internal/order/repository"
	productdomain "github.com/freshvale/dairyops/internal/product/domain"
	productrepo "github.com/freshvale/dairyops/internal/product/repository"
	subscriptiondomain "github.com/freshvale/dairyops/internal/subscription/domain"
	subscriptionrepo "github.com/freshvale/dairyops/internal/subscription/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	node    *snowflake.Node
	service domain.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&productdomain.Product{},
		&subscriptiondomain.Subscription{},
		&modificationdomain.Modification{},
		&domain.DailyOrder{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Repo:          repository.Provide(),
		Subscriptions: subscriptionrepo.Provide(),
		Modifications: modificationrepo.Provide(),
		Customers:     customerrepo.Provide(),
		Products:      productrepo.Provide(),
	})
	return &testEnv{db: db, node: node, service: svc}
}

func (e *testEnv) seedSubscription(t *testing.T, quantity int64) (customerdomain.Customer, productdomain.Product) {
	t.Helper()

	customer := customerdomain.Customer{
		ID:             e.node.Generate(),
		Name:           "Asha Patel",
		DeliverySlot:   customerdomain.SlotMorning,
		OpeningBalance: decimal.Zero,
		IsActive:       true,
	}
	require.NoError(t, e.db.Create(&customer).Error)

	product := productdomain.Product{
		ID:       e.node.Generate(),
		Name:     "Cow Milk",
		Unit:     "litre",
		Price:    decimal.NewFromInt(60),
		GSTRate:  decimal.Zero,
		IsActive: true,
	}
	require.NoError(t, e.db.Create(&product).Error)

	sub := subscriptiondomain.Subscription{
		ID:         e.node.Generate(),
		CustomerID: customer.ID,
		ProductID:  product.ID,
		Type:       subscriptiondomain.TypeDaily,
		Quantity:   decimal.NewFromInt(quantity),
		IsActive:   true,
	}
	require.NoError(t, e.db.Create(&sub).Error)
	return customer, product
}

func TestGenerate_RejectsExistingThenSucceedsAfterDelete(t *testing.T) {
	env := newTestEnv(t)
	env.seedSubscription(t, 2)
	ctx := context.Background()
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	plan, err := env.service.Generate(ctx, date)
	require.NoError(t, err)
	require.Equal(t, 1, plan.OrderCount)
	assert.True(t, decimal.NewFromInt(120).Equal(plan.TotalAmount))

	_, err = env.service.Generate(ctx, date)
	assert.ErrorIs(t, err, domain.ErrOrdersExist)

	result, err := env.service.DeleteByDate(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Deleted)

	_, err = env.service.Generate(ctx, date)
	require.NoError(t, err)
}

func TestGenerate_SnapshotsUnitPrice(t *testing.T) {
	env := newTestEnv(t)
	_, product := env.seedSubscription(t, 1)
	ctx := context.Background()
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	plan, err := env.service.Generate(ctx, date)
	require.NoError(t, err)
	require.Len(t, plan.Orders, 1)

	// A later price change must not rewrite the generated order.
	require.NoError(t, env.db.Model(&productdomain.Product{}).
		Where("id = ?", product.ID).
		Update("price", decimal.NewFromInt(90)).Error)

	orders, err := env.service.List(ctx, domain.ListOrderRequest{Date: &date})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.True(t, decimal.NewFromInt(60).Equal(orders[0].UnitPrice))
}

func TestGenerate_AppliesModificationOverlay(t *testing.T) {
	env := newTestEnv(t)
	customer, product := env.seedSubscription(t, 2)
	ctx := context.Background()
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	mod := modificationdomain.Modification{
		ID:             env.node.Generate(),
		CustomerID:     customer.ID,
		ProductID:      product.ID,
		Type:           modificationdomain.TypeIncrease,
		StartDate:      date,
		EndDate:        date,
		QuantityChange: decimal.NewFromInt(1),
		IsActive:       true,
	}
	require.NoError(t, env.db.Create(&mod).Error)

	plan, err := env.service.Generate(ctx, date)
	require.NoError(t, err)
	require.Len(t, plan.Orders, 1)
	assert.True(t, decimal.NewFromInt(3).Equal(plan.Orders[0].Quantity))
}

func TestGenerate_SkipProducesNoOrder(t *testing.T) {
	env := newTestEnv(t)
	customer, product := env.seedSubscription(t, 2)
	ctx := context.Background()
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	mod := modificationdomain.Modification{
		ID:         env.node.Generate(),
		CustomerID: customer.ID,
		ProductID:  product.ID,
		Type:       modificationdomain.TypeSkip,
		StartDate:  date,
		EndDate:    date,
		IsActive:   true,
	}
	require.NoError(t, env.db.Create(&mod).Error)

	plan, err := env.service.Generate(ctx, date)
	require.NoError(t, err)
	assert.Empty(t, plan.Orders)
}

func TestPreview_DoesNotWrite(t *testing.T) {
	env := newTestEnv(t)
	env.seedSubscription(t, 2)
	ctx := context.Background()
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	plan, err := env.service.Preview(ctx, date)
	require.NoError(t, err)
	require.Equal(t, 1, plan.OrderCount)

	var count int64
	require.NoError(t, env.db.Model(&domain.DailyOrder{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteByDate_NoOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.DeleteByDate(ctx, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, domain.ErrNoOrders)
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	env.seedSubscription(t, 2)
	ctx := context.Background()
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	plan, err := env.service.Generate(ctx, date)
	require.NoError(t, err)
	require.Len(t, plan.Orders, 1)

	updated, err := env.service.UpdateStatus(ctx, domain.UpdateOrderStatusRequest{
		ID:     plan.Orders[0].ID.String(),
		Status: "delivered",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, updated.Status)

	_, err = env.service.UpdateStatus(ctx, domain.UpdateOrderStatusRequest{
		ID:     plan.Orders[0].ID.String(),
		Status: "SHIPPED",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
