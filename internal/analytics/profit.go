package analytics

// DefaultMarketplaceFee is the resale fee assumed when estimating profit.
const DefaultMarketplaceFee = 0.025

// EstimatedProfit computes the profit and ROI percentage of buying a
// listing and reselling at the floor, after the marketplace fee and gas.
func EstimatedProfit(listingPrice, floorPrice, gasCost, marketplaceFee float64) (profit, roi float64) {
	sellingPrice := floorPrice * (1 - marketplaceFee)
	profit = sellingPrice - listingPrice - gasCost

	totalCost := listingPrice + gasCost
	if totalCost > 0 {
		roi = profit / totalCost * 100
	}
	return profit, roi
}
