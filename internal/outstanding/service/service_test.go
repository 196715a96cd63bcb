package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/clock"
	customerdomain "github.com/freshvale/dairyops/internal/customer/domain"
	customerrepo "github.com/freshvale/dairyops/internal/customer/repository"
	invoicedomain "github.com/freshvale/dairyops/internal/invoice/domain"
	orderdomain "github.com/freshvale/dairyops/internal/order/domain"
	"github.com/freshvale/dairyops/internal/outstanding/domain"
	"github.com/freshvale/dairyops/internal/outstanding/repository"
	paymentdomain "github.com/freshvale/dairyops/internal/payment/domain"
	paymentrepo "github.com/freshvale/dairyops/internal/payment/repository"
	productdomain "github.com/freshvale/dairyops/internal/product/domain"
	saledomain "github.com/freshvale/dairyops/internal/sale/domain"
	subscriptiondomain "github.com/freshvale/dairyops/internal/subscription/domain"
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
		&orderdomain.DailyOrder{},
		&saledomain.Sale{},
		&invoicedomain.Invoice{},
		&paymentdomain.Payment{},
		&paymentdomain.PaymentAllocation{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	env := &testEnv{db: db, node: node}
	env.service = New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		Clock:     clock.NewFakeClock(time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)),
		Repo:      repository.Provide(),
		Customers: customerrepo.Provide(),
		Payments:  paymentrepo.Provide(),
	})
	return env
}

func (e *testEnv) seedCustomer(t *testing.T, name string, opening int64) customerdomain.Customer {
	t.Helper()
	customer := customerdomain.Customer{
		ID:             e.node.Generate(),
		Name:           name,
		DeliverySlot:   customerdomain.SlotMorning,
		OpeningBalance: decimal.NewFromInt(opening),
		IsActive:       true,
	}
	require.NoError(t, e.db.Create(&customer).Error)
	return customer
}

func (e *testEnv) seedUnpaidInvoice(t *testing.T, customerID snowflake.ID, outstanding int64, label string) invoicedomain.Invoice {
	t.Helper()
	total := decimal.NewFromInt(outstanding)
	inv := invoicedomain.Invoice{
		ID:                e.node.Generate(),
		CustomerID:        customerID,
		PeriodLabel:       label,
		PeriodStart:       time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:         time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		TotalAmount:       total,
		AmountOutstanding: total,
		Status:            invoicedomain.StatusSent,
	}
	require.NoError(t, e.db.Create(&inv).Error)
	return inv
}

func (e *testEnv) seedPayment(t *testing.T, customerID snowflake.ID, amount int64, allocations map[paymentdomain.TargetType]int64) {
	t.Helper()
	payment := paymentdomain.Payment{
		ID:          e.node.Generate(),
		CustomerID:  customerID,
		Amount:      decimal.NewFromInt(amount),
		PaymentDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Method:      "CASH",
	}
	require.NoError(t, e.db.Create(&payment).Error)
	for target, amt := range allocations {
		alloc := paymentdomain.PaymentAllocation{
			ID:         e.node.Generate(),
			PaymentID:  payment.ID,
			CustomerID: customerID,
			TargetType: target,
			Amount:     decimal.NewFromInt(amt),
		}
		require.NoError(t, e.db.Create(&alloc).Error)
	}
}

func TestDashboard_InvariantAcrossCombinations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Opening balance 1000, unpaid invoice 500, 700 paid against the
	// opening balance.
	a := env.seedCustomer(t, "Asha", 1000)
	env.seedUnpaidInvoice(t, a.ID, 500, "2025-02")
	env.seedPayment(t, a.ID, 700, map[paymentdomain.TargetType]int64{paymentdomain.TargetOpeningBalance: 700})

	// No opening balance, two unpaid invoices.
	b := env.seedCustomer(t, "Bina", 0)
	env.seedUnpaidInvoice(t, b.ID, 200, "2025-01")
	env.seedUnpaidInvoice(t, b.ID, 300, "2025-02")

	// Fully unallocated payment: pure credit, nothing owed.
	c := env.seedCustomer(t, "Chand", 0)
	env.seedPayment(t, c.ID, 100, nil)

	dash, err := env.service.Dashboard(ctx, domain.DashboardRequest{})
	require.NoError(t, err)
	require.Len(t, dash.Customers, 3)

	byName := map[string]domain.CustomerOutstanding{}
	for _, row := range dash.Customers {
		byName[row.Name] = row
		// Credit is surfaced separately, never netted into the total.
		assert.True(t, row.TotalOutstanding.Equal(row.EffectiveOpeningBalance.Add(row.InvoiceOutstanding)),
			"invariant broken for %s", row.Name)
	}

	assert.True(t, decimal.NewFromInt(300).Equal(byName["Asha"].EffectiveOpeningBalance))
	assert.True(t, decimal.NewFromInt(800).Equal(byName["Asha"].TotalOutstanding))
	assert.True(t, decimal.NewFromInt(500).Equal(byName["Bina"].TotalOutstanding))
	assert.True(t, byName["Chand"].TotalOutstanding.IsZero())
	assert.True(t, decimal.NewFromInt(100).Equal(byName["Chand"].UnappliedCredit))

	assert.True(t, decimal.NewFromInt(1300).Equal(dash.TotalOutstanding))
	assert.True(t, decimal.NewFromInt(100).Equal(dash.TotalUnappliedCredit))
}

func TestDashboard_SelectionAndSort(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.seedCustomer(t, "Asha", 500)
	env.seedCustomer(t, "Bina", 0)
	c := env.seedCustomer(t, "Chand", 0)
	env.seedUnpaidInvoice(t, c.ID, 900, "2025-02")

	sub := subscriptiondomain.Subscription{
		ID:         env.node.Generate(),
		CustomerID: a.ID,
		ProductID:  env.node.Generate(),
		Type:       subscriptiondomain.TypeDaily,
		Quantity:   decimal.NewFromInt(1),
		IsActive:   true,
	}
	require.NoError(t, env.db.Create(&sub).Error)

	dash, err := env.service.Dashboard(ctx, domain.DashboardRequest{
		CustomerSelection: "with_outstanding",
		SortKey:           "total_outstanding",
		SortDirection:     "desc",
	})
	require.NoError(t, err)
	require.Len(t, dash.Customers, 2)
	assert.Equal(t, "Chand", dash.Customers[0].Name)
	assert.Equal(t, "Asha", dash.Customers[1].Name)

	dash, err = env.service.Dashboard(ctx, domain.DashboardRequest{
		CustomerSelection: "with_subscription_and_outstanding",
	})
	require.NoError(t, err)
	require.Len(t, dash.Customers, 1)
	assert.Equal(t, "Asha", dash.Customers[0].Name)

	_, err = env.service.Dashboard(ctx, domain.DashboardRequest{CustomerSelection: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
}

func TestCustomerOutstanding_MatchesDashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.seedCustomer(t, "Asha", 1000)
	env.seedUnpaidInvoice(t, a.ID, 500, "2025-02")
	env.seedPayment(t, a.ID, 700, map[paymentdomain.TargetType]int64{paymentdomain.TargetOpeningBalance: 700})

	row, err := env.service.CustomerOutstanding(ctx, a.ID.String())
	require.NoError(t, err)

	dash, err := env.service.Dashboard(ctx, domain.DashboardRequest{})
	require.NoError(t, err)
	require.Len(t, dash.Customers, 1)

	assert.True(t, dash.Customers[0].TotalOutstanding.Equal(row.TotalOutstanding))
	assert.True(t, dash.Customers[0].EffectiveOpeningBalance.Equal(row.EffectiveOpeningBalance))
	assert.True(t, dash.Customers[0].UnappliedCredit.Equal(row.UnappliedCredit))
}

func TestReport_BuildsLedgerFromRawRecords(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.seedCustomer(t, "Asha", 0)
	product := productdomain.Product{
		ID:       env.node.Generate(),
		Name:     "Cow Milk",
		Unit:     "litre",
		Price:    decimal.NewFromInt(60),
		IsActive: true,
	}
	require.NoError(t, env.db.Create(&product).Error)

	for day := 1; day <= 3; day++ {
		order := orderdomain.DailyOrder{
			ID:          env.node.Generate(),
			CustomerID:  a.ID,
			ProductID:   product.ID,
			OrderDate:   time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.NewFromInt(60),
			TotalAmount: decimal.NewFromInt(120),
			Status:      orderdomain.StatusDelivered,
		}
		require.NoError(t, env.db.Create(&order).Error)
	}
	env.seedPayment(t, a.ID, 150, nil)

	report, err := env.service.Report(ctx, domain.ReportRequest{
		StartDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, report.Statements, 1)

	st := report.Statements[0]
	require.Len(t, st.SubscriptionLines, 1)
	assert.Equal(t, "2025-03", st.SubscriptionLines[0].Month)
	assert.True(t, decimal.NewFromInt(6).Equal(st.SubscriptionLines[0].Quantity))
	assert.True(t, decimal.NewFromInt(360).Equal(st.SubscriptionTotal))
	require.Len(t, st.Payments, 1)
	assert.True(t, decimal.NewFromInt(150).Equal(st.PaymentsTotal))
}

func TestReport_RejectsInvertedWindow(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Report(context.Background(), domain.ReportRequest{
		StartDate: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}
