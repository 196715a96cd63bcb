package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/config"
	customerdomain "github.com/freshvale/dairyops/internal/customer/domain"
	customerrepo "github.com/freshvale/dairyops/internal/customer/repository"
	"github.com/freshvale/dairyops/internal/invoice/domain"
	"github.com/freshvale/dairyops/internal/invoice/repository"
	orderdomain "github.com/freshvale/dairyops/internal/order/domain"
	paymentdomain "github.com/freshvale/dairyops/internal/payment/domain"
	productdomain "github.com/freshvale/dairyops/internal/product/domain"
	productrepo "github.com/freshvale/dairyops/internal/product/repository"
	saledomain "github.com/freshvale/dairyops/internal/sale/domain"
	salerepo "github.com/freshvale/dairyops/internal/sale/repository"
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
		&orderdomain.DailyOrder{},
		&saledomain.Sale{},
		&domain.Invoice{},
		&paymentdomain.PaymentAllocation{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	env := &testEnv{db: db, node: node}
	env.service = New(Params{
		Config:    config.Config{DefaultGSTRate: "0"},
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repository.Provide(),
		Sales:     salerepo.Provide(),
		Products:  productrepo.Provide(),
		Customers: customerrepo.Provide(),
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
		Name:     "Cow Milk",
		Unit:     "litre",
		Price:    decimal.NewFromInt(60),
		GSTRate:  decimal.NewFromInt(5),
		IsActive: true,
	}
	require.NoError(t, db.Create(&env.product).Error)
	return env
}

func (e *testEnv) seedOrder(t *testing.T, date time.Time, quantity, unitPrice int64) {
	t.Helper()
	q := decimal.NewFromInt(quantity)
	p := decimal.NewFromInt(unitPrice)
	order := orderdomain.DailyOrder{
		ID:          e.node.Generate(),
		CustomerID:  e.customer.ID,
		ProductID:   e.product.ID,
		OrderDate:   date,
		Quantity:    q,
		UnitPrice:   p,
		TotalAmount: q.Mul(p),
		Status:      orderdomain.StatusDelivered,
	}
	require.NoError(t, e.db.Create(&order).Error)
}

func (e *testEnv) seedCreditSale(t *testing.T, date time.Time, amount int64) saledomain.Sale {
	t.Helper()
	sale := saledomain.Sale{
		ID:            e.node.Generate(),
		CustomerID:    &e.customer.ID,
		ProductID:     e.product.ID,
		SaleDate:      date,
		Quantity:      decimal.NewFromInt(1),
		UnitPrice:     decimal.NewFromInt(amount),
		TotalAmount:   decimal.NewFromInt(amount),
		PaymentStatus: saledomain.StatusPending,
	}
	require.NoError(t, e.db.Create(&sale).Error)
	return sale
}

func TestGenerate_SumsOrdersAndSalesWithGST(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedOrder(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 2, 60)
	env.seedOrder(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), 2, 60)
	sale := env.seedCreditSale(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), 200)

	inv, err := env.service.Generate(ctx, domain.GenerateInvoiceRequest{
		CustomerID: env.customer.ID.String(),
		Year:       2025,
		Month:      time.March,
	})
	require.NoError(t, err)

	assert.Equal(t, "2025-03", inv.PeriodLabel)
	assert.True(t, decimal.NewFromInt(240).Equal(inv.SubscriptionAmount))
	assert.True(t, decimal.NewFromInt(200).Equal(inv.SalesAmount))
	// 5% GST on 440.
	assert.True(t, decimal.NewFromInt(22).Equal(inv.GSTAmount))
	assert.True(t, decimal.NewFromInt(462).Equal(inv.TotalAmount))
	assert.True(t, inv.TotalAmount.Equal(inv.AmountOutstanding))
	assert.Equal(t, domain.StatusGenerated, inv.Status)

	// The absorbed sale is stamped with the invoice.
	var got saledomain.Sale
	require.NoError(t, env.db.First(&got, "id = ?", sale.ID).Error)
	assert.Equal(t, saledomain.StatusInvoiced, got.PaymentStatus)
	require.NotNil(t, got.InvoiceID)
	assert.Equal(t, inv.ID, *got.InvoiceID)
}

func TestGenerate_RejectsDuplicatePeriod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedOrder(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 1, 60)

	req := domain.GenerateInvoiceRequest{
		CustomerID: env.customer.ID.String(),
		Year:       2025,
		Month:      time.March,
	}
	_, err := env.service.Generate(ctx, req)
	require.NoError(t, err)

	_, err = env.service.Generate(ctx, req)
	assert.ErrorIs(t, err, domain.ErrPeriodInvoiced)
}

func TestGenerate_NothingToBill(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Generate(context.Background(), domain.GenerateInvoiceRequest{
		CustomerID: env.customer.ID.String(),
		Year:       2025,
		Month:      time.March,
	})
	assert.ErrorIs(t, err, domain.ErrNothingToBill)
}

func TestGenerate_BillsOnlyDeliveredOrdersInPeriod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedOrder(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 1, 60)
	env.seedOrder(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), 5, 60)

	for day, status := range map[int]orderdomain.Status{
		2: orderdomain.StatusCancelled,
		3: orderdomain.StatusPending,
	} {
		order := orderdomain.DailyOrder{
			ID:          env.node.Generate(),
			CustomerID:  env.customer.ID,
			ProductID:   env.product.ID,
			OrderDate:   time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
			Quantity:    decimal.NewFromInt(9),
			UnitPrice:   decimal.NewFromInt(60),
			TotalAmount: decimal.NewFromInt(540),
			Status:      status,
		}
		require.NoError(t, env.db.Create(&order).Error)
	}

	inv, err := env.service.Generate(ctx, domain.GenerateInvoiceRequest{
		CustomerID: env.customer.ID.String(),
		Year:       2025,
		Month:      time.March,
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(60).Equal(inv.SubscriptionAmount))
}

func TestDelete_RevertsSalesAndRefusesPaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sale := env.seedCreditSale(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), 200)

	inv, err := env.service.Generate(ctx, domain.GenerateInvoiceRequest{
		CustomerID: env.customer.ID.String(),
		Year:       2025,
		Month:      time.March,
	})
	require.NoError(t, err)

	require.NoError(t, env.service.Delete(ctx, inv.ID.String()))

	var got saledomain.Sale
	require.NoError(t, env.db.First(&got, "id = ?", sale.ID).Error)
	assert.Equal(t, saledomain.StatusPending, got.PaymentStatus)
	assert.Nil(t, got.InvoiceID)

	// Paid invoices cannot be deleted.
	inv2, err := env.service.Generate(ctx, domain.GenerateInvoiceRequest{
		CustomerID: env.customer.ID.String(),
		Year:       2025,
		Month:      time.March,
	})
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&domain.Invoice{}).
		Where("id = ?", inv2.ID).
		Update("status", domain.StatusPaid).Error)

	err = env.service.Delete(ctx, inv2.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvoicePaid)
}

func TestDeleteBulk_ReportsPartialResults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedOrder(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 1, 60)

	inv, err := env.service.Generate(ctx, domain.GenerateInvoiceRequest{
		CustomerID: env.customer.ID.String(),
		Year:       2025,
		Month:      time.March,
	})
	require.NoError(t, err)

	missing := env.node.Generate().String()
	result, err := env.service.DeleteBulk(ctx, []string{inv.ID.String(), missing})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, missing, result.Errors[0].ID)
}
