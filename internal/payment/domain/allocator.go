package domain

import (
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// OverAllocationPolicy decides what happens when manual allocations sum
// to more than the payment amount. Operators sometimes over-allocate on
// purpose, so the default only flags it.
type OverAllocationPolicy string

const (
	PolicyWarn   OverAllocationPolicy = "warn"
	PolicyReject OverAllocationPolicy = "reject"
)

// Pool is one allocation-eligible item: the opening-balance pseudo-item
// (nil TargetID), an unpaid invoice, or a pending credit sale. MaxAmount
// is the most that may be applied to it. Date orders invoices and sales
// for auto-allocation.
type Pool struct {
	Type      TargetType      `json:"type"`
	TargetID  *snowflake.ID   `json:"target_id,omitempty"`
	Label     string          `json:"label"`
	MaxAmount decimal.Decimal `json:"max_amount"`
	Date      time.Time       `json:"date"`
}

// Allocation is one planned application of payment money to a pool item.
type Allocation struct {
	Type     TargetType      `json:"type"`
	TargetID *snowflake.ID   `json:"target_id,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

// AutoAllocate spreads a payment greedily: opening balance first, then
// invoices oldest-first, then credit sales, each capped at its
// MaxAmount, until the payment runs out. The allocations never sum to
// more than amount; whatever is left becomes unapplied credit.
func AutoAllocate(amount decimal.Decimal, pools []Pool) []Allocation {
	if !amount.IsPositive() {
		return nil
	}

	ordered := make([]Pool, len(pools))
	copy(ordered, pools)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := rank(ordered[i].Type), rank(ordered[j].Type)
		if ri != rj {
			return ri < rj
		}
		return ordered[i].Date.Before(ordered[j].Date)
	})

	remaining := amount
	var out []Allocation
	for _, pool := range ordered {
		if !remaining.IsPositive() {
			break
		}
		if !pool.MaxAmount.IsPositive() {
			continue
		}
		take := decimal.Min(remaining, pool.MaxAmount)
		out = append(out, Allocation{Type: pool.Type, TargetID: pool.TargetID, Amount: take})
		remaining = remaining.Sub(take)
	}
	return out
}

// ClampManual caps each requested allocation to [0, pool.MaxAmount] and
// drops requests that match no pool. It does not cap the total against
// the payment amount; CheckOverAllocation judges that separately.
func ClampManual(pools []Pool, requested []Allocation) []Allocation {
	var out []Allocation
	for _, req := range requested {
		pool, ok := findPool(pools, req)
		if !ok {
			continue
		}
		amount := req.Amount
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		if amount.GreaterThan(pool.MaxAmount) {
			amount = pool.MaxAmount
		}
		if !amount.IsPositive() {
			continue
		}
		out = append(out, Allocation{Type: req.Type, TargetID: req.TargetID, Amount: amount})
	}
	return out
}

// AllocatedTotal sums a set of allocations.
func AllocatedTotal(allocs []Allocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocs {
		total = total.Add(a.Amount)
	}
	return total
}

// CheckOverAllocation reports whether allocations exceed the payment
// amount and, under the reject policy, whether that is an error.
func CheckOverAllocation(amount decimal.Decimal, allocs []Allocation, policy OverAllocationPolicy) (over bool, err error) {
	if AllocatedTotal(allocs).GreaterThan(amount) {
		if policy == PolicyReject {
			return true, ErrOverAllocated
		}
		return true, nil
	}
	return false, nil
}

func rank(t TargetType) int {
	switch t {
	case TargetOpeningBalance:
		return 0
	case TargetInvoice:
		return 1
	default:
		return 2
	}
}

func findPool(pools []Pool, req Allocation) (Pool, bool) {
	for _, pool := range pools {
		if pool.Type != req.Type {
			continue
		}
		if pool.TargetID == nil && req.TargetID == nil {
			return pool, true
		}
		if pool.TargetID != nil && req.TargetID != nil && *pool.TargetID == *req.TargetID {
			return pool, true
		}
	}
	return Pool{}, false
}
