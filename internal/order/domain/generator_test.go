package domain

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/freshvale/dairyops/internal/customer/domain"
	modificationdomain "github.com/freshvale/dairyops/internal/modification/domain"
	productdomain "github.com/freshvale/dairyops/internal/product/domain"
	subscriptiondomain "github.com/freshvale/dairyops/internal/subscription/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type planFixture struct {
	node     *snowflake.Node
	date     time.Time
	input    PlanInput
	customer customerdomain.Customer
	product  productdomain.Product
}

func newPlanFixture(t *testing.T) *planFixture {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	f := &planFixture{
		node: node,
		date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	routeID := node.Generate()
	f.customer = customerdomain.Customer{
		ID:           node.Generate(),
		Name:         "Asha Patel",
		RouteID:      &routeID,
		DeliverySlot: customerdomain.SlotMorning,
		IsActive:     true,
	}
	f.product = productdomain.Product{
		ID:       node.Generate(),
		Name:     "Cow Milk",
		Unit:     "litre",
		Price:    decimal.NewFromInt(60),
		IsActive: true,
	}
	f.input = PlanInput{
		Date:          f.date,
		Customers:     map[snowflake.ID]customerdomain.Customer{f.customer.ID: f.customer},
		Products:      map[snowflake.ID]productdomain.Product{f.product.ID: f.product},
		Modifications: map[modificationdomain.Key][]modificationdomain.Modification{},
	}
	return f
}

func (f *planFixture) dailySubscription(quantity int64) subscriptiondomain.Subscription {
	return subscriptiondomain.Subscription{
		ID:         f.node.Generate(),
		CustomerID: f.customer.ID,
		ProductID:  f.product.ID,
		Type:       subscriptiondomain.TypeDaily,
		Quantity:   decimal.NewFromInt(quantity),
		IsActive:   true,
	}
}

func TestBuildPlan_DailyWithIncrease(t *testing.T) {
	f := newPlanFixture(t)
	f.input.Subscriptions = []subscriptiondomain.Subscription{f.dailySubscription(2)}
	key := modificationdomain.Key{CustomerID: f.customer.ID, ProductID: f.product.ID}
	f.input.Modifications[key] = []modificationdomain.Modification{
		{Type: modificationdomain.TypeIncrease, QuantityChange: decimal.NewFromInt(1)},
	}

	plan := BuildPlan(f.input)
	require.Len(t, plan.Orders, 1)
	order := plan.Orders[0]
	assert.True(t, decimal.NewFromInt(3).Equal(order.Quantity))
	assert.True(t, decimal.NewFromInt(60).Equal(order.UnitPrice))
	assert.True(t, decimal.NewFromInt(180).Equal(order.TotalAmount))
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, string(customerdomain.SlotMorning), order.DeliverySlot)
}

func TestBuildPlan_NeverEmitsNonPositiveQuantity(t *testing.T) {
	f := newPlanFixture(t)
	f.input.Subscriptions = []subscriptiondomain.Subscription{f.dailySubscription(2)}
	key := modificationdomain.Key{CustomerID: f.customer.ID, ProductID: f.product.ID}
	f.input.Modifications[key] = []modificationdomain.Modification{
		{Type: modificationdomain.TypeDecrease, QuantityChange: decimal.NewFromInt(5)},
	}

	plan := BuildPlan(f.input)
	assert.Empty(t, plan.Orders)
	assert.Equal(t, 0, plan.OrderCount)
}

func TestBuildPlan_SkipDropsTheRow(t *testing.T) {
	f := newPlanFixture(t)
	f.input.Subscriptions = []subscriptiondomain.Subscription{f.dailySubscription(2)}
	key := modificationdomain.Key{CustomerID: f.customer.ID, ProductID: f.product.ID}
	f.input.Modifications[key] = []modificationdomain.Modification{
		{Type: modificationdomain.TypeSkip},
		{Type: modificationdomain.TypeIncrease, QuantityChange: decimal.NewFromInt(10)},
	}

	plan := BuildPlan(f.input)
	assert.Empty(t, plan.Orders)
}

func TestBuildPlan_InactiveCustomerOrProductIsSkipped(t *testing.T) {
	f := newPlanFixture(t)
	inactive := f.customer
	inactive.IsActive = false
	f.input.Customers[f.customer.ID] = inactive
	f.input.Subscriptions = []subscriptiondomain.Subscription{f.dailySubscription(2)}

	plan := BuildPlan(f.input)
	assert.Empty(t, plan.Orders)
}

func TestBuildPlan_PatternPicksBucketForDate(t *testing.T) {
	f := newPlanFixture(t)
	anchor := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	f.input.Subscriptions = []subscriptiondomain.Subscription{{
		ID:               f.node.Generate(),
		CustomerID:       f.customer.ID,
		ProductID:        f.product.ID,
		Type:             subscriptiondomain.TypePattern,
		Day1Quantity:     decimal.NewFromInt(1),
		Day2Quantity:     decimal.NewFromInt(2),
		PatternStartDate: &anchor,
		IsActive:         true,
	}}

	// 2025-03-10 is one day past the anchor, so bucket 2.
	plan := BuildPlan(f.input)
	require.Len(t, plan.Orders, 1)
	assert.True(t, decimal.NewFromInt(2).Equal(plan.Orders[0].Quantity))
}

func TestBuildPlan_Aggregates(t *testing.T) {
	f := newPlanFixture(t)

	second := customerdomain.Customer{
		ID:           f.node.Generate(),
		Name:         "Ravi Menon",
		DeliverySlot: customerdomain.SlotEvening,
		IsActive:     true,
	}
	f.input.Customers[second.ID] = second

	f.input.Subscriptions = []subscriptiondomain.Subscription{
		f.dailySubscription(2),
		{
			ID:         f.node.Generate(),
			CustomerID: second.ID,
			ProductID:  f.product.ID,
			Type:       subscriptiondomain.TypeDaily,
			Quantity:   decimal.NewFromInt(1),
			IsActive:   true,
		},
	}

	plan := BuildPlan(f.input)
	require.Len(t, plan.Orders, 2)
	assert.True(t, decimal.NewFromInt(3).Equal(plan.Quantity))
	assert.True(t, decimal.NewFromInt(180).Equal(plan.TotalAmount))

	// One routed customer, one without a route.
	require.Len(t, plan.ByRoute, 2)
	assert.Nil(t, plan.ByRoute[0].RouteID)
	assert.NotNil(t, plan.ByRoute[1].RouteID)

	require.Len(t, plan.ByProduct, 1)
	assert.Equal(t, "Cow Milk", plan.ByProduct[0].ProductName)
	assert.Equal(t, 2, plan.ByProduct[0].OrderCount)
	assert.True(t, decimal.NewFromInt(3).Equal(plan.ByProduct[0].Quantity))
}
