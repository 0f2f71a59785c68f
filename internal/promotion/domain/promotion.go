package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const TransactionPromotion = "promotion"

// Pricing is the promotion rate card. Exactly one record is active at a time.
type Pricing struct {
	ID          uuid.UUID
	PricePerDay decimal.Decimal
	MinDays     int
	MaxDays     int
}

func (p Pricing) Allows(days int) bool {
	return days >= p.MinDays && days <= p.MaxDays
}

func (p Pricing) Cost(days int) decimal.Decimal {
	return p.PricePerDay.Mul(decimal.NewFromInt(int64(days)))
}

// Window is the promotion state carried on a product.
type Window struct {
	IsPromoted bool
	Start      *time.Time
	End        *time.Time
}

// NewWindow starts at now and runs for the given number of calendar days.
func NewWindow(now time.Time, days int) Window {
	end := now.AddDate(0, 0, days)
	return Window{IsPromoted: true, Start: &now, End: &end}
}

// CreditTransaction is an append-only ledger line. Debits are negative.
type CreditTransaction struct {
	UserID       uuid.UUID
	Amount       decimal.Decimal
	Type         string
	Description  string
	ProductID    uuid.UUID
	DurationDays int
}

type Result struct {
	NewBalance    decimal.Decimal `json:"newBalance"`
	PromotedUntil time.Time       `json:"promotedUntil"`
}
