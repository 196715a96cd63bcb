package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/freshvale/dairyops/internal/customer/domain"
	productdomain "github.com/freshvale/dairyops/internal/product/domain"
	productrepo "github.com/freshvale/dairyops/internal/product/repository"
	"github.com/freshvale/dairyops/internal/sale/domain"
	"github.com/freshvale/dairyops/internal/sale/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	node     *snowflake.Node
	service  domain.Service
	customer customerdomain.Customer
	product  productdomain.Product
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&productdomain.Product{},
		&domain.Sale{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	env := &testEnv{db: db, node: node}
	env.service = New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.Provide(),
		Products: productrepo.Provide(),
	})

	env.customer = customerdomain.Customer{
		ID:           node.Generate(),
		Name:         "Asha Patel",
		DeliverySlot: customerdomain.SlotMorning,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&env.customer).Error)

	env.product = productdomain.Product{
		ID:       node.Generate(),
		Name:     "Paneer",
		Unit:     "kg",
		Price:    decimal.NewFromInt(400),
		IsActive: true,
	}
	require.NoError(t, db.Create(&env.product).Error)
	return env
}

func TestCreate_UsesProductPriceByDefault(t *testing.T) {
	env := newTestEnv(t)

	sale, err := env.service.Create(context.Background(), domain.CreateSaleRequest{
		CustomerID: env.customer.ID.String(),
		ProductID:  env.product.ID.String(),
		SaleDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Quantity:   decimal.NewFromFloat(0.5),
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(400).Equal(sale.UnitPrice))
	assert.True(t, decimal.NewFromInt(200).Equal(sale.TotalAmount))
	assert.Equal(t, domain.StatusPending, sale.PaymentStatus)
}

func TestCreate_PriceOverrideAndPaid(t *testing.T) {
	env := newTestEnv(t)

	sale, err := env.service.Create(context.Background(), domain.CreateSaleRequest{
		CustomerID: env.customer.ID.String(),
		ProductID:  env.product.ID.String(),
		SaleDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Quantity:   decimal.NewFromInt(2),
		UnitPrice:  decimal.NewFromInt(350),
		Paid:       true,
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(700).Equal(sale.TotalAmount))
	assert.Equal(t, domain.StatusPaid, sale.PaymentStatus)
}

func TestCreate_CreditRequiresCustomer(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Create(context.Background(), domain.CreateSaleRequest{
		ProductID: env.product.ID.String(),
		SaleDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Quantity:  decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	// Walk-in cash sales are fine without one.
	sale, err := env.service.Create(context.Background(), domain.CreateSaleRequest{
		ProductID: env.product.ID.String(),
		SaleDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Quantity:  decimal.NewFromInt(1),
		Paid:      true,
	})
	require.NoError(t, err)
	assert.Nil(t, sale.CustomerID)
}

func TestCreateBulk_PartialSuccess(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.service.CreateBulk(context.Background(), []domain.CreateSaleRequest{
		{
			CustomerID: env.customer.ID.String(),
			ProductID:  env.product.ID.String(),
			SaleDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			Quantity:   decimal.NewFromInt(1),
		},
		{
			CustomerID: env.customer.ID.String(),
			ProductID:  env.product.ID.String(),
			SaleDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			Quantity:   decimal.Zero,
		},
		{
			CustomerID: env.customer.ID.String(),
			ProductID:  "not-an-id",
			SaleDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			Quantity:   decimal.NewFromInt(1),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Equal(t, 2, result.Errors[1].Index)
}

func TestDelete_RefusesInvoicedSale(t *testing.T) {
	env := newTestEnv(t)

	sale, err := env.service.Create(context.Background(), domain.CreateSaleRequest{
		CustomerID: env.customer.ID.String(),
		ProductID:  env.product.ID.String(),
		SaleDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Quantity:   decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	invoiceID := env.node.Generate()
	require.NoError(t, repository.Provide().MarkInvoiced(context.Background(), env.db, []snowflake.ID{sale.ID}, invoiceID))

	err = env.service.Delete(context.Background(), sale.ID.String())
	assert.ErrorIs(t, err, domain.ErrSaleInvoiced)
}

func TestDeleteBulk_ReportsPerItemErrors(t *testing.T) {
	env := newTestEnv(t)

	sale, err := env.service.Create(context.Background(), domain.CreateSaleRequest{
		CustomerID: env.customer.ID.String(),
		ProductID:  env.product.ID.String(),
		SaleDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Quantity:   decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	missing := env.node.Generate().String()
	result, err := env.service.DeleteBulk(context.Background(), []string{sale.ID.String(), missing})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, missing, result.Errors[0].ID)
}
