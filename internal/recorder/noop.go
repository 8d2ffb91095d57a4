package recorder

import (
	"time"

	"FloorSentinel/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordOpportunity(_ *model.Opportunity) error  { return nil }
func (n *NoopRecorder) RecordPurchase(_ *model.PurchaseReceipt) error { return nil }
func (n *NoopRecorder) RecordTick(_ *TickRecord) error                { return nil }
func (n *NoopRecorder) Summarize(_ time.Time) (*Summary, error)       { return &Summary{}, nil }
func (n *NoopRecorder) Close() error                                  { return nil }
