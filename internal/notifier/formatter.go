package notifier

import (
	"fmt"
	"strings"
	"time"

	"FloorSentinel/internal/analytics"
	"FloorSentinel/internal/model"
)

// FormatEth formats an ETH amount with precision appropriate to its size.
func FormatEth(value float64) string {
	switch {
	case value >= 1:
		return fmt.Sprintf("%.3f", value)
	case value >= 0.001:
		return fmt.Sprintf("%.4f", value)
	default:
		return fmt.Sprintf("%.6f", value)
	}
}

// FormatPercent formats a percentage with an explicit sign.
func FormatPercent(value float64) string {
	return fmt.Sprintf("%+.2f%%", value)
}

// FormatOpportunity renders an opportunity as a Telegram HTML message.
func FormatOpportunity(opp *model.Opportunity) string {
	var b strings.Builder

	b.WriteString("🔍 <b>Floor opportunity</b>\n\n")
	b.WriteString(fmt.Sprintf("Collection: %s\n", opp.CollectionName))
	b.WriteString(fmt.Sprintf("Token: #%s\n", opp.TokenID))
	b.WriteString(fmt.Sprintf("Price: %s ETH (%s vs floor)\n", FormatEth(opp.ListingPrice), FormatPercent(-opp.Discount)))
	b.WriteString(fmt.Sprintf("Floor: %s ETH\n", FormatEth(opp.FloorPrice)))
	b.WriteString(fmt.Sprintf("Seller: %s\n", opp.Seller))

	if opp.Source != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", opp.Source))
	}
	if opp.ValidUntil > 0 {
		b.WriteString(fmt.Sprintf("Valid until: %s\n", time.Unix(opp.ValidUntil, 0).Format("2006-01-02 15:04")))
	}
	if opp.Rarity != nil {
		b.WriteString(fmt.Sprintf("Rarity: top %.1f%%\n", *opp.Rarity))
	}

	// Resale estimate before gas, since gas is unknown until execution.
	profit, roi := analytics.EstimatedProfit(opp.ListingPrice, opp.FloorPrice, 0, analytics.DefaultMarketplaceFee)
	if profit > 0 {
		b.WriteString(fmt.Sprintf("Est. resale profit: %s ETH (%s ROI)\n", FormatEth(profit), FormatPercent(roi)))
	}
	return b.String()
}

// FormatPurchase renders a confirmed purchase as a Telegram HTML message.
func FormatPurchase(receipt *model.PurchaseReceipt) string {
	var b strings.Builder

	b.WriteString("✅ <b>Purchase confirmed</b>\n\n")
	b.WriteString(fmt.Sprintf("Collection: %s\n", receipt.CollectionName))
	b.WriteString(fmt.Sprintf("Token: #%s\n", receipt.TokenID))
	b.WriteString(fmt.Sprintf("Price: %s ETH", FormatEth(receipt.PriceETH)))
	if receipt.Discount > 0 {
		b.WriteString(fmt.Sprintf(" (%s vs floor)", FormatPercent(-receipt.Discount)))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Gas: %s ETH\n", FormatEth(receipt.GasCostETH)))
	b.WriteString(fmt.Sprintf("Tx: %s\n", receipt.TxHash))
	return b.String()
}
