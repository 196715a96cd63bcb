package domain

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestCompute_InvariantHolds(t *testing.T) {
	cases := []struct {
		name               string
		opening, allocated int64
		invoiceOutstanding int64
		wantEffective      int64
		wantTotal          int64
	}{
		{"no payments", 1000, 0, 500, 1000, 1500},
		{"partial opening allocation", 1000, 700, 500, 300, 800},
		{"opening fully cleared", 1000, 1000, 500, 0, 500},
		{"allocation beyond opening clamps", 1000, 1200, 0, 0, 0},
		{"no opening balance", 0, 0, 250, 0, 250},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			effective, total := Compute(dec(tc.opening), dec(tc.allocated), dec(tc.invoiceOutstanding))
			assert.True(t, dec(tc.wantEffective).Equal(effective))
			assert.True(t, dec(tc.wantTotal).Equal(total))
			assert.True(t, total.Equal(effective.Add(dec(tc.invoiceOutstanding))))
		})
	}
}

func newRows(t *testing.T) ([]CustomerOutstanding, *snowflake.Node) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return []CustomerOutstanding{
		{CustomerID: node.Generate(), Name: "Asha", TotalOutstanding: dec(800), UnappliedCredit: dec(0), HasActiveSubscription: true},
		{CustomerID: node.Generate(), Name: "Bina", TotalOutstanding: dec(0), UnappliedCredit: dec(150), HasActiveSubscription: false},
		{CustomerID: node.Generate(), Name: "Chand", TotalOutstanding: dec(300), UnappliedCredit: dec(0), HasActiveSubscription: false},
	}, node
}

func TestFilter_SelectionModes(t *testing.T) {
	rows, _ := newRows(t)

	assert.Len(t, Filter(rows, SelectAll, nil), 3)

	withOutstanding := Filter(rows, SelectWithOutstanding, nil)
	require.Len(t, withOutstanding, 2)
	assert.Equal(t, "Asha", withOutstanding[0].Name)
	assert.Equal(t, "Chand", withOutstanding[1].Name)

	withSub := Filter(rows, SelectWithSubscriptionAndOutstanding, nil)
	require.Len(t, withSub, 1)
	assert.Equal(t, "Asha", withSub[0].Name)

	withCredit := Filter(rows, SelectWithCredit, nil)
	require.Len(t, withCredit, 1)
	assert.Equal(t, "Bina", withCredit[0].Name)

	selected := Filter(rows, SelectSelected, []snowflake.ID{rows[2].CustomerID})
	require.Len(t, selected, 1)
	assert.Equal(t, "Chand", selected[0].Name)
}

func TestSort_KeysAndDirections(t *testing.T) {
	rows, _ := newRows(t)

	Sort(rows, SortByOutstanding, SortDesc)
	assert.Equal(t, "Asha", rows[0].Name)
	assert.Equal(t, "Bina", rows[2].Name)

	Sort(rows, SortByName, SortAsc)
	assert.Equal(t, "Asha", rows[0].Name)
	assert.Equal(t, "Chand", rows[2].Name)

	Sort(rows, SortByCredit, SortDesc)
	assert.Equal(t, "Bina", rows[0].Name)
}

func TestSort_ByRouteGroupsCustomers(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	routeA, routeB := node.Generate(), node.Generate()

	rows := []CustomerOutstanding{
		{CustomerID: node.Generate(), Name: "Bina", RouteID: &routeB},
		{CustomerID: node.Generate(), Name: "Asha", RouteID: &routeB},
		{CustomerID: node.Generate(), Name: "Chand", RouteID: &routeA},
		{CustomerID: node.Generate(), Name: "Devi"},
	}

	key, err := ParseSortKey("route")
	require.NoError(t, err)
	assert.Equal(t, SortByRoute, key)

	Sort(rows, key, SortAsc)

	// Routeless first, then route groups by id, names inside a group.
	assert.Equal(t, "Devi", rows[0].Name)
	assert.Equal(t, "Chand", rows[1].Name)
	assert.Equal(t, "Asha", rows[2].Name)
	assert.Equal(t, "Bina", rows[3].Name)
}

func TestParseSelection(t *testing.T) {
	mode, err := ParseSelection("")
	require.NoError(t, err)
	assert.Equal(t, SelectAll, mode)

	mode, err = ParseSelection("With_Outstanding")
	require.NoError(t, err)
	assert.Equal(t, SelectWithOutstanding, mode)

	_, err = ParseSelection("everyone")
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestBuildStatement_GroupsByMonthAndProduct(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	customerID := node.Generate()
	milk, curd := node.Generate(), node.Generate()

	deliveries := []DeliveryRecord{
		{CustomerID: customerID, ProductID: milk, ProductName: "Cow Milk", OrderDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), Quantity: dec(2), Amount: dec(120)},
		{CustomerID: customerID, ProductID: milk, ProductName: "Cow Milk", OrderDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), Quantity: dec(2), Amount: dec(120)},
		{CustomerID: customerID, ProductID: milk, ProductName: "Cow Milk", OrderDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Quantity: dec(1), Amount: dec(60)},
		{CustomerID: customerID, ProductID: curd, ProductName: "Curd", OrderDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), Quantity: dec(1), Amount: dec(40)},
	}
	sales := []SaleRecord{
		{CustomerID: customerID, ProductName: "Paneer", SaleDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), Quantity: dec(1), Amount: dec(200)},
	}
	payments := []PaymentRecord{
		{CustomerID: customerID, PaymentDate: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), Method: "CASH", Amount: dec(300)},
	}

	st := BuildStatement(CustomerOutstanding{CustomerID: customerID, Name: "Asha"}, deliveries, sales, payments)

	require.Len(t, st.SubscriptionLines, 3)
	assert.Equal(t, "2025-01", st.SubscriptionLines[0].Month)
	assert.Equal(t, "Cow Milk", st.SubscriptionLines[0].ProductName)
	assert.True(t, dec(4).Equal(st.SubscriptionLines[0].Quantity))
	assert.True(t, dec(240).Equal(st.SubscriptionLines[0].Amount))
	assert.Equal(t, "Curd", st.SubscriptionLines[1].ProductName)
	assert.Equal(t, "2025-02", st.SubscriptionLines[2].Month)

	assert.True(t, dec(340).Equal(st.SubscriptionTotal))
	assert.True(t, dec(200).Equal(st.SalesTotal))
	assert.True(t, dec(300).Equal(st.PaymentsTotal))
}
