// Package domain computes customer outstanding figures. There is one
// canonical computation: the allocation ledger decides the effective
// opening balance, unpaid invoices contribute their outstanding, and
// unapplied credit is surfaced separately, never netted in.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CustomerOutstanding is the canonical per-customer figure:
// TotalOutstanding = EffectiveOpeningBalance + InvoiceOutstanding.
type CustomerOutstanding struct {
	CustomerID              snowflake.ID    `json:"customer_id"`
	Name                    string          `json:"name"`
	Phone                   string          `json:"phone"`
	RouteID                 *snowflake.ID   `json:"route_id,omitempty"`
	OpeningBalance          decimal.Decimal `json:"opening_balance"`
	EffectiveOpeningBalance decimal.Decimal `json:"effective_opening_balance"`
	InvoiceOutstanding      decimal.Decimal `json:"invoice_outstanding"`
	TotalOutstanding        decimal.Decimal `json:"total_outstanding"`
	UnappliedCredit         decimal.Decimal `json:"unapplied_credit"`
	HasActiveSubscription   bool            `json:"has_active_subscription"`
}

// Dashboard is the live all-customers view.
type Dashboard struct {
	Customers            []CustomerOutstanding `json:"customers"`
	TotalOutstanding     decimal.Decimal       `json:"total_outstanding"`
	TotalUnappliedCredit decimal.Decimal       `json:"total_unapplied_credit"`
	AsOf                 time.Time             `json:"as_of"`
}

// Compute derives the canonical figures from their inputs. Allocated
// amounts beyond the opening balance clamp the effective balance at
// zero rather than going negative.
func Compute(opening, allocatedToOpening, invoiceOutstanding decimal.Decimal) (effective, total decimal.Decimal) {
	effective = opening.Sub(allocatedToOpening)
	if effective.IsNegative() {
		effective = decimal.Zero
	}
	return effective, effective.Add(invoiceOutstanding)
}
