package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Apply layers modifications over a base quantity and returns the final
// planned quantity for the day.
//
// Ordering is explicit rather than inherited from query order: SKIP is
// terminal and forces zero no matter what else overlaps the date;
// INCREASE/DECREASE apply in creation order (created_at, then id);
// NOTE never changes quantity. The result is floored at zero.
func Apply(base decimal.Decimal, mods []Modification) decimal.Decimal {
	for _, m := range mods {
		if m.Type == TypeSkip {
			return decimal.Zero
		}
	}

	ordered := make([]Modification, len(mods))
	copy(ordered, mods)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	quantity := base
	for _, m := range ordered {
		switch m.Type {
		case TypeIncrease:
			quantity = quantity.Add(m.QuantityChange)
		case TypeDecrease:
			quantity = quantity.Sub(m.QuantityChange)
		}
	}

	if quantity.IsNegative() {
		return decimal.Zero
	}
	return quantity
}

// GroupByKey buckets modifications by customer+product so one batched
// query serves a whole generation run.
func GroupByKey(mods []Modification) map[Key][]Modification {
	grouped := make(map[Key][]Modification, len(mods))
	for _, m := range mods {
		grouped[m.Key()] = append(grouped[m.Key()], m)
	}
	return grouped
}
