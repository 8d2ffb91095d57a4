package recorder

import (
	"time"

	"FloorSentinel/internal/model"
)

// TickRecord summarizes one auto-sweep tick.
type TickRecord struct {
	RunID         string
	StartedAt     time.Time
	Duration      time.Duration
	Opportunities int
	Skips         int
	Purchases     int
	Spent         float64 // ETH spent this tick
	TotalSpent    float64 // cumulative ETH after this tick
}

// Summary aggregates recorded history for digest reports.
type Summary struct {
	Opportunities int
	Purchases     int
	SpentETH      float64
	AvgDiscount   float64 // across recorded opportunities
	Ticks         int
}

// Recorder persists run history for analysis.
type Recorder interface {
	RecordOpportunity(opp *model.Opportunity) error
	RecordPurchase(receipt *model.PurchaseReceipt) error
	RecordTick(tick *TickRecord) error
	Summarize(since time.Time) (*Summary, error)
	Close() error
}
