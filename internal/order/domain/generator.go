package domain

import (
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/freshvale/dairyops/internal/customer/domain"
	modificationdomain "github.com/freshvale/dairyops/internal/modification/domain"
	productdomain "github.com/freshvale/dairyops/internal/product/domain"
	subscriptiondomain "github.com/freshvale/dairyops/internal/subscription/domain"
	"github.com/shopspring/decimal"
)

// PlanInput is everything the planner needs, preloaded so planning itself
// touches no storage. Modifications arrive pre-grouped from one batched
// query for the date.
type PlanInput struct {
	Date          time.Time
	Subscriptions []subscriptiondomain.Subscription
	Customers     map[snowflake.ID]customerdomain.Customer
	Products      map[snowflake.ID]productdomain.Product
	Modifications map[modificationdomain.Key][]modificationdomain.Modification
}

// RouteSummary aggregates a plan by delivery route for operator preview.
type RouteSummary struct {
	RouteID     *snowflake.ID   `json:"route_id,omitempty"`
	OrderCount  int             `json:"order_count"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// ProductSummary aggregates a plan by product for operator preview.
type ProductSummary struct {
	ProductID   snowflake.ID    `json:"product_id"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	OrderCount  int             `json:"order_count"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Plan is a generation run before (or after) it is committed.
type Plan struct {
	Date        time.Time        `json:"date"`
	Orders      []DailyOrder     `json:"orders"`
	OrderCount  int              `json:"order_count"`
	Quantity    decimal.Decimal  `json:"quantity"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	ByRoute     []RouteSummary   `json:"by_route"`
	ByProduct   []ProductSummary `json:"by_product"`
}

// BuildPlan resolves every subscription's base quantity for the date,
// layers on the date's modifications, and emits the orders that survive
// with a positive quantity. Rows with final quantity <= 0 are dropped,
// as are subscriptions whose customer or product is missing or inactive.
// Order IDs are left zero; the caller assigns them at insert time.
func BuildPlan(in PlanInput) Plan {
	plan := Plan{
		Date:        in.Date,
		Quantity:    decimal.Zero,
		TotalAmount: decimal.Zero,
	}

	routeAgg := map[snowflake.ID]*RouteSummary{}
	productAgg := map[snowflake.ID]*ProductSummary{}

	for _, sub := range in.Subscriptions {
		customer, ok := in.Customers[sub.CustomerID]
		if !ok || !customer.IsActive {
			continue
		}
		product, ok := in.Products[sub.ProductID]
		if !ok || !product.IsActive {
			continue
		}

		base := sub.QuantityOn(in.Date)
		key := modificationdomain.Key{CustomerID: sub.CustomerID, ProductID: sub.ProductID}
		quantity := modificationdomain.Apply(base, in.Modifications[key])
		if !quantity.IsPositive() {
			continue
		}

		order := DailyOrder{
			CustomerID:   sub.CustomerID,
			ProductID:    sub.ProductID,
			RouteID:      customer.RouteID,
			OrderDate:    in.Date,
			Quantity:     quantity,
			UnitPrice:    product.Price,
			TotalAmount:  quantity.Mul(product.Price),
			DeliverySlot: string(customer.DeliverySlot),
			Status:       StatusPending,
		}
		plan.Orders = append(plan.Orders, order)
		plan.Quantity = plan.Quantity.Add(order.Quantity)
		plan.TotalAmount = plan.TotalAmount.Add(order.TotalAmount)

		// Customers without a route aggregate under key 0.
		var routeKey snowflake.ID
		if customer.RouteID != nil {
			routeKey = *customer.RouteID
		}
		rs, ok := routeAgg[routeKey]
		if !ok {
			rs = &RouteSummary{RouteID: customer.RouteID, Quantity: decimal.Zero, TotalAmount: decimal.Zero}
			routeAgg[routeKey] = rs
		}
		rs.OrderCount++
		rs.Quantity = rs.Quantity.Add(order.Quantity)
		rs.TotalAmount = rs.TotalAmount.Add(order.TotalAmount)

		ps, ok := productAgg[sub.ProductID]
		if !ok {
			ps = &ProductSummary{
				ProductID:   sub.ProductID,
				ProductName: product.Name,
				Unit:        product.Unit,
				Quantity:    decimal.Zero,
				TotalAmount: decimal.Zero,
			}
			productAgg[sub.ProductID] = ps
		}
		ps.OrderCount++
		ps.Quantity = ps.Quantity.Add(order.Quantity)
		ps.TotalAmount = ps.TotalAmount.Add(order.TotalAmount)
	}

	plan.OrderCount = len(plan.Orders)
	plan.ByRoute = sortedRouteSummaries(routeAgg)
	plan.ByProduct = sortedProductSummaries(productAgg)
	return plan
}

func sortedRouteSummaries(agg map[snowflake.ID]*RouteSummary) []RouteSummary {
	out := make([]RouteSummary, 0, len(agg))
	keys := make([]snowflake.ID, 0, len(agg))
	for k := range agg {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		out = append(out, *agg[k])
	}
	return out
}

func sortedProductSummaries(agg map[snowflake.ID]*ProductSummary) []ProductSummary {
	out := make([]ProductSummary, 0, len(agg))
	keys := make([]snowflake.ID, 0, len(agg))
	for k := range agg {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		out = append(out, *agg[k])
	}
	return out
}
