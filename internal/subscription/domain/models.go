// Package domain contains base subscription models and the planned
// quantity resolution rules.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Type distinguishes fixed daily subscriptions from 2-day alternating
// pattern subscriptions.
type Type string

const (
	TypeDaily   Type = "DAILY"
	TypePattern Type = "PATTERN"
)

// Subscription is a customer's standing order for one product. Pattern
// subscriptions alternate between Day1Quantity and Day2Quantity on a 2-day
// cycle anchored at PatternStartDate. Only current state is kept; edits are
// not versioned.
type Subscription struct {
	ID               snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerID       snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	ProductID        snowflake.ID    `gorm:"not null;index" json:"product_id"`
	Type             Type            `gorm:"type:text;not null" json:"type"`
	Quantity         decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0" json:"quantity"`
	Day1Quantity     decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0" json:"day1_quantity"`
	Day2Quantity     decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0" json:"day2_quantity"`
	PatternStartDate *time.Time      `gorm:"type:date" json:"pattern_start_date,omitempty"`
	IsActive         bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Subscription) TableName() string { return "base_subscriptions" }

// QuantityOn resolves the base planned quantity for a date, before any
// modifications are applied. Pure; never errors.
//
// Daily subscriptions return the fixed quantity. Pattern subscriptions pick
// a bucket from the day offset against the anchor date using a floored
// modulo, so dates before the anchor still land on a deterministic bucket:
// offset -1 is bucket 1, offset -2 is bucket 0, and so on. A pattern
// without an anchor resolves to zero.
func (s Subscription) QuantityOn(date time.Time) decimal.Decimal {
	switch s.Type {
	case TypeDaily:
		return s.Quantity
	case TypePattern:
		if s.PatternStartDate == nil {
			return decimal.Zero
		}
		if dayIndex(*s.PatternStartDate, date) == 0 {
			return s.Day1Quantity
		}
		return s.Day2Quantity
	default:
		return decimal.Zero
	}
}

// dayIndex returns the 0/1 bucket of date within the 2-day cycle.
func dayIndex(anchor, date time.Time) int {
	days := daysBetween(anchor, date)
	idx := days % 2
	if idx < 0 {
		idx += 2
	}
	return idx
}

// daysBetween counts calendar days from a to b, negative when b precedes a.
// Both are truncated to their UTC date first so time-of-day never shifts
// the bucket.
func daysBetween(a, b time.Time) int {
	a = truncateToDate(a)
	b = truncateToDate(b)
	return int(b.Sub(a).Hours() / 24)
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
