package domain

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestApply_NoModifications(t *testing.T) {
	got := Apply(dec(2), nil)
	assert.True(t, dec(2).Equal(got))
}

func TestApply_IncreaseAndDecrease(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mods := []Modification{
		{Type: TypeIncrease, QuantityChange: dec(1), CreatedAt: base},
		{Type: TypeDecrease, QuantityChange: dec(2), CreatedAt: base.Add(time.Hour)},
	}
	got := Apply(dec(3), mods)
	assert.True(t, dec(2).Equal(got))
}

func TestApply_SkipWinsRegardlessOfOthers(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mods := []Modification{
		{Type: TypeIncrease, QuantityChange: dec(10), CreatedAt: base},
		{Type: TypeSkip, CreatedAt: base.Add(time.Hour)},
		{Type: TypeIncrease, QuantityChange: dec(5), CreatedAt: base.Add(2 * time.Hour)},
	}
	got := Apply(dec(3), mods)
	assert.True(t, got.IsZero())

	// Skip listed first behaves identically.
	mods[0], mods[1] = mods[1], mods[0]
	assert.True(t, Apply(dec(3), mods).IsZero())
}

func TestApply_FlooredAtZero(t *testing.T) {
	mods := []Modification{
		{Type: TypeDecrease, QuantityChange: dec(5)},
	}
	got := Apply(dec(2), mods)
	assert.True(t, got.IsZero())
}

func TestApply_NoteHasNoQuantityEffect(t *testing.T) {
	mods := []Modification{
		{Type: TypeNote, Note: "leave at gate", QuantityChange: dec(4)},
	}
	got := Apply(dec(2), mods)
	assert.True(t, dec(2).Equal(got))
}

func TestApply_CreationOrderIsDeterministic(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Modification{ID: 1, Type: TypeDecrease, QuantityChange: dec(3), CreatedAt: created}
	b := Modification{ID: 2, Type: TypeIncrease, QuantityChange: dec(3), CreatedAt: created}

	// Same created_at: id breaks the tie, so decrease floors to zero
	// first and the increase lands on the floored value either way the
	// slice arrives.
	got1 := Apply(dec(1), []Modification{a, b})
	got2 := Apply(dec(1), []Modification{b, a})
	assert.True(t, got1.Equal(got2))
	assert.True(t, dec(1).Equal(got1))
}

func TestApply_IncreaseOnDaily(t *testing.T) {
	// Daily quantity 2 with an active Increase of 1 yields 3.
	mods := []Modification{
		{Type: TypeIncrease, QuantityChange: dec(1)},
	}
	got := Apply(dec(2), mods)
	assert.True(t, dec(3).Equal(got))
}

func TestCoversDate_InclusiveWindow(t *testing.T) {
	m := Modification{
		StartDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
	}
	assert.False(t, m.CoversDate(time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)))
	assert.True(t, m.CoversDate(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, m.CoversDate(time.Date(2025, 1, 12, 23, 0, 0, 0, time.UTC)))
	assert.False(t, m.CoversDate(time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)))
}

func TestGroupByKey(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	c1, c2, p1 := node.Generate(), node.Generate(), node.Generate()
	mods := []Modification{
		{CustomerID: c1, ProductID: p1, Type: TypeSkip},
		{CustomerID: c1, ProductID: p1, Type: TypeNote},
		{CustomerID: c2, ProductID: p1, Type: TypeIncrease},
	}
	grouped := GroupByKey(mods)
	assert.Len(t, grouped, 2)
	assert.Len(t, grouped[Key{CustomerID: c1, ProductID: p1}], 2)
	assert.Len(t, grouped[Key{CustomerID: c2, ProductID: p1}], 1)
}
