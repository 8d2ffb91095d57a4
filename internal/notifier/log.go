package notifier

import (
	"FloorSentinel/internal/model"

	"github.com/rs/zerolog/log"
)

// LogNotifier writes notifications to the structured log. Used when no
// Telegram credentials are configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) NotifyOpportunity(opp *model.Opportunity) error {
	evt := log.Info().
		Str("collection", opp.CollectionName).
		Str("token", opp.TokenID).
		Str("price", FormatEth(opp.ListingPrice)).
		Str("floor", FormatEth(opp.FloorPrice)).
		Str("discount", FormatPercent(opp.Discount)).
		Str("seller", opp.Seller)
	if opp.Source != "" {
		evt = evt.Str("source", opp.Source)
	}
	if opp.Rarity != nil {
		evt = evt.Float64("rarity_pct", *opp.Rarity)
	}
	evt.Msg("opportunity detected")
	return nil
}

func (n *LogNotifier) NotifyPurchase(receipt *model.PurchaseReceipt) error {
	log.Info().
		Str("collection", receipt.CollectionName).
		Str("token", receipt.TokenID).
		Str("price", FormatEth(receipt.PriceETH)).
		Str("discount", FormatPercent(receipt.Discount)).
		Str("tx", receipt.TxHash).
		Str("gas_cost", FormatEth(receipt.GasCostETH)).
		Msg("purchase confirmed")
	return nil
}

func (n *LogNotifier) NotifyText(text string) error {
	log.Info().Msg(text)
	return nil
}
