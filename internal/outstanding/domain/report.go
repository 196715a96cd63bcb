package domain

import (
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// The report variant reconstructs a per-customer ledger from raw
// deliveries, sales, and payments inside a window, instead of reading
// the denormalized invoice columns. Subscription deliveries group by
// month and product; sales and payments list individually.

type DeliveryRecord struct {
	CustomerID  snowflake.ID    `json:"customer_id"`
	ProductID   snowflake.ID    `json:"product_id"`
	ProductName string          `json:"product_name"`
	OrderDate   time.Time       `json:"order_date"`
	Quantity    decimal.Decimal `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

type SaleRecord struct {
	CustomerID  snowflake.ID    `json:"customer_id"`
	ProductName string          `json:"product_name"`
	SaleDate    time.Time       `json:"sale_date"`
	Quantity    decimal.Decimal `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

type PaymentRecord struct {
	CustomerID  snowflake.ID    `json:"customer_id"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      string          `json:"method"`
	Amount      decimal.Decimal `json:"amount"`
}

// SubscriptionLine is one month x product delivery total.
type SubscriptionLine struct {
	Month       string          `json:"month"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

// Statement is one customer's ledger for the window.
type Statement struct {
	Customer          CustomerOutstanding `json:"customer"`
	SubscriptionLines []SubscriptionLine  `json:"subscription_lines"`
	Sales             []SaleRecord        `json:"sales"`
	Payments          []PaymentRecord     `json:"payments"`
	SubscriptionTotal decimal.Decimal     `json:"subscription_total"`
	SalesTotal        decimal.Decimal     `json:"sales_total"`
	PaymentsTotal     decimal.Decimal     `json:"payments_total"`
}

// Report is the printable statement set.
type Report struct {
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	Statements []Statement     `json:"statements"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// BuildStatement assembles one customer's ledger. Delivery rows collapse
// into month x product lines ordered by month then product name.
func BuildStatement(customer CustomerOutstanding, deliveries []DeliveryRecord, sales []SaleRecord, payments []PaymentRecord) Statement {
	st := Statement{
		Customer:          customer,
		Sales:             sales,
		Payments:          payments,
		SubscriptionTotal: decimal.Zero,
		SalesTotal:        decimal.Zero,
		PaymentsTotal:     decimal.Zero,
	}

	type lineKey struct {
		month   string
		product string
	}
	agg := map[lineKey]*SubscriptionLine{}
	for _, d := range deliveries {
		key := lineKey{month: d.OrderDate.Format("2006-01"), product: d.ProductName}
		line, ok := agg[key]
		if !ok {
			line = &SubscriptionLine{
				Month:       key.month,
				ProductName: key.product,
				Quantity:    decimal.Zero,
				Amount:      decimal.Zero,
			}
			agg[key] = line
		}
		line.Quantity = line.Quantity.Add(d.Quantity)
		line.Amount = line.Amount.Add(d.Amount)
		st.SubscriptionTotal = st.SubscriptionTotal.Add(d.Amount)
	}

	st.SubscriptionLines = make([]SubscriptionLine, 0, len(agg))
	for _, line := range agg {
		st.SubscriptionLines = append(st.SubscriptionLines, *line)
	}
	sort.Slice(st.SubscriptionLines, func(i, j int) bool {
		if st.SubscriptionLines[i].Month != st.SubscriptionLines[j].Month {
			return st.SubscriptionLines[i].Month < st.SubscriptionLines[j].Month
		}
		return st.SubscriptionLines[i].ProductName < st.SubscriptionLines[j].ProductName
	})

	for _, s := range sales {
		st.SalesTotal = st.SalesTotal.Add(s.Amount)
	}
	for _, p := range payments {
		st.PaymentsTotal = st.PaymentsTotal.Add(p.Amount)
	}
	return st
}
