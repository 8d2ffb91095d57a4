package model

import "time"

// BudgetState tracks cumulative auto-sweep spending. Owned and mutated
// exclusively by the sweeper; TotalSpent is monotonically non-decreasing
// and never exceeds MaxTotalSpend.
type BudgetState struct {
	TotalSpent      float64   `json:"total_spent"`
	MaxTotalSpend   float64   `json:"max_total_spend"`
	MaxPricePerItem float64   `json:"max_price_per_item"`
	Running         bool      `json:"running"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Remaining returns the budget left for further purchases.
func (b BudgetState) Remaining() float64 {
	rem := b.MaxTotalSpend - b.TotalSpent
	if rem < 0 {
		return 0
	}
	return rem
}

// Exhausted reports whether the spend ceiling has been reached.
func (b BudgetState) Exhausted() bool {
	return b.TotalSpent >= b.MaxTotalSpend
}
