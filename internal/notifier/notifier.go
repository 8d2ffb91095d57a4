package notifier

import "FloorSentinel/internal/model"

// Notifier delivers opportunity and purchase notifications. Delivery is
// fire-and-forget from the caller's point of view: errors are returned
// for logging only and must never abort the calling loop.
type Notifier interface {
	NotifyOpportunity(opp *model.Opportunity) error
	NotifyPurchase(receipt *model.PurchaseReceipt) error
	NotifyText(text string) error
}
