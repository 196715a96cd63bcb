package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/config"
	customerdomain "github.com/freshvale/dairyops/internal/customer/domain"
	customerrepo "github.com/freshvale/dairyops/internal/customer/repository"
	invoicedomain "github.com/freshvale/dairyops/internal/invoice/domain"
	invoicerepo "github.com/freshvale/dairyops/internal/invoice/repository"
	"github.com/freshvale/dairyops/internal/payment/domain"
	"github.com/freshvale/dairyops/internal/payment/repository"
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
}

func newTestEnv(t *testing.T, policy string) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
		&saledomain.Sale{},
		&domain.Payment{},
		&domain.PaymentAllocation{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	env := &testEnv{db: db, node: node}
	env.service = New(Params{
		Config:    config.Config{OverAllocationPolicy: policy},
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repository.Provide(),
		Customers: customerrepo.Provide(),
		Invoices:  invoicerepo.Provide(),
		Sales:     salerepo.Provide(),
	})

	env.customer = customerdomain.Customer{
		ID:             node.Generate(),
		Name:           "Asha Patel",
		DeliverySlot:   customerdomain.SlotMorning,
		OpeningBalance: decimal.NewFromInt(1000),
		IsActive:       true,
	}
	require.NoError(t, db.Create(&env.customer).Error)
	return env
}

func (e *testEnv) seedInvoice(t *testing.T, outstanding int64, start time.Time) invoicedomain.Invoice {
	t.Helper()
	total := decimal.NewFromInt(outstanding)
	inv := invoicedomain.Invoice{
		ID:                e.node.Generate(),
		CustomerID:        e.customer.ID,
		PeriodLabel:       start.Format("2006-01"),
		PeriodStart:       start,
		PeriodEnd:         start.AddDate(0, 1, -1),
		TotalAmount:       total,
		AmountOutstanding: total,
		Status:            invoicedomain.StatusSent,
	}
	require.NoError(t, e.db.Create(&inv).Error)
	return inv
}

func TestRecord_AutoAllocatesOpeningBalanceFirst(t *testing.T) {
	env := newTestEnv(t, "warn")
	env.seedInvoice(t, 500, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	resp, err := env.service.Record(ctx, domain.RecordPaymentRequest{
		CustomerID:   env.customer.ID.String(),
		Amount:       decimal.NewFromInt(700),
		PaymentDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		AutoAllocate: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Allocations, 1)
	assert.Equal(t, domain.TargetOpeningBalance, resp.Allocations[0].Type)
	assert.True(t, decimal.NewFromInt(700).Equal(resp.Allocations[0].Amount))
	assert.True(t, resp.UnappliedCredit.IsZero())

	// Effective opening balance drops to 300; invoice untouched.
	pools, err := env.service.Pools(ctx, env.customer.ID.String())
	require.NoError(t, err)
	require.Len(t, pools.Pools, 2)
	assert.Equal(t, domain.TargetOpeningBalance, pools.Pools[0].Type)
	assert.True(t, decimal.NewFromInt(300).Equal(pools.Pools[0].MaxAmount))
	assert.Equal(t, domain.TargetInvoice, pools.Pools[1].Type)
	assert.True(t, decimal.NewFromInt(500).Equal(pools.Pools[1].MaxAmount))
}

func TestRecord_MarksInvoicePaidWhenCovered(t *testing.T) {
	env := newTestEnv(t, "warn")
	inv := env.seedInvoice(t, 500, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := env.service.Record(ctx, domain.RecordPaymentRequest{
		CustomerID:   env.customer.ID.String(),
		Amount:       decimal.NewFromInt(1500),
		PaymentDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		AutoAllocate: true,
	})
	require.NoError(t, err)

	var got invoicedomain.Invoice
	require.NoError(t, env.db.First(&got, "id = ?", inv.ID).Error)
	assert.Equal(t, invoicedomain.StatusPaid, got.Status)
	assert.True(t, got.AmountOutstanding.IsZero())
	assert.True(t, decimal.NewFromInt(500).Equal(got.AmountPaid))
}

func TestRecord_RemainderBecomesUnappliedCredit(t *testing.T) {
	env := newTestEnv(t, "warn")
	ctx := context.Background()

	resp, err := env.service.Record(ctx, domain.RecordPaymentRequest{
		CustomerID:   env.customer.ID.String(),
		Amount:       decimal.NewFromInt(1200),
		PaymentDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		AutoAllocate: true,
	})
	require.NoError(t, err)
	// Opening balance absorbs 1000, 200 left over.
	assert.True(t, decimal.NewFromInt(200).Equal(resp.UnappliedCredit))

	pools, err := env.service.Pools(ctx, env.customer.ID.String())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(pools.UnappliedCredit))
}

func TestRecord_ManualOverAllocationWarns(t *testing.T) {
	env := newTestEnv(t, "warn")
	inv := env.seedInvoice(t, 500, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	resp, err := env.service.Record(ctx, domain.RecordPaymentRequest{
		CustomerID:  env.customer.ID.String(),
		Amount:      decimal.NewFromInt(100),
		PaymentDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Allocations: []domain.AllocationRequest{
			{Type: "OPENING_BALANCE", Amount: decimal.NewFromInt(100)},
			{Type: "INVOICE", TargetID: inv.ID.String(), Amount: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.OverAllocated)
}

func TestRecord_ManualOverAllocationRejected(t *testing.T) {
	env := newTestEnv(t, "reject")
	inv := env.seedInvoice(t, 500, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := env.service.Record(ctx, domain.RecordPaymentRequest{
		CustomerID:  env.customer.ID.String(),
		Amount:      decimal.NewFromInt(100),
		PaymentDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Allocations: []domain.AllocationRequest{
			{Type: "OPENING_BALANCE", Amount: decimal.NewFromInt(100)},
			{Type: "INVOICE", TargetID: inv.ID.String(), Amount: decimal.NewFromInt(100)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrOverAllocated)
}

func TestRecord_AllocationMarksSalePaid(t *testing.T) {
	env := newTestEnv(t, "warn")
	ctx := context.Background()

	productID := env.node.Generate()
	sale := saledomain.Sale{
		ID:            env.node.Generate(),
		CustomerID:    &env.customer.ID,
		ProductID:     productID,
		SaleDate:      time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		Quantity:      decimal.NewFromInt(1),
		UnitPrice:     decimal.NewFromInt(200),
		TotalAmount:   decimal.NewFromInt(200),
		PaymentStatus: saledomain.StatusPending,
	}
	require.NoError(t, env.db.Create(&sale).Error)

	_, err := env.service.Record(ctx, domain.RecordPaymentRequest{
		CustomerID:  env.customer.ID.String(),
		Amount:      decimal.NewFromInt(200),
		PaymentDate: time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC),
		Allocations: []domain.AllocationRequest{
			{Type: "SALE", TargetID: sale.ID.String(), Amount: decimal.NewFromInt(200)},
		},
	})
	require.NoError(t, err)

	var got saledomain.Sale
	require.NoError(t, env.db.First(&got, "id = ?", sale.ID).Error)
	assert.Equal(t, saledomain.StatusPaid, got.PaymentStatus)
}

func TestDelete_RevertsInvoiceAndSaleEffects(t *testing.T) {
	env := newTestEnv(t, "warn")
	inv := env.seedInvoice(t, 500, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	resp, err := env.service.Record(ctx, domain.RecordPaymentRequest{
		CustomerID:  env.customer.ID.String(),
		Amount:      decimal.NewFromInt(500),
		PaymentDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Allocations: []domain.AllocationRequest{
			{Type: "INVOICE", TargetID: inv.ID.String(), Amount: decimal.NewFromInt(500)},
		},
	})
	require.NoError(t, err)

	require.NoError(t, env.service.Delete(ctx, resp.Payment.ID.String()))

	var got invoicedomain.Invoice
	require.NoError(t, env.db.First(&got, "id = ?", inv.ID).Error)
	assert.Equal(t, invoicedomain.StatusSent, got.Status)
	assert.True(t, decimal.NewFromInt(500).Equal(got.AmountOutstanding))
	assert.True(t, got.AmountPaid.IsZero())

	var count int64
	require.NoError(t, env.db.Model(&domain.PaymentAllocation{}).Count(&count).Error)
	assert.Zero(t, count)
}
