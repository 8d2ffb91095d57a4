package model

import "time"

// FloorPricePoint is a single point in a collection's floor price history.
type FloorPricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// CollectionMetrics is the analytics snapshot for one collection,
// recomputed fresh on every scan pass and never persisted.
type CollectionMetrics struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	FloorPrice         float64           `json:"floor_price"`
	Volume24h          float64           `json:"volume_24h"`
	VolumeChange24h    float64           `json:"volume_change_24h"`
	SalesCount24h      int               `json:"sales_count_24h"`
	AveragePrice24h    float64           `json:"average_price_24h"`
	MarketCap          float64           `json:"market_cap"`
	TotalSupply        int64             `json:"total_supply"`
	OwnerCount         int64             `json:"owner_count"`
	UniqueBuyers24h    int               `json:"unique_buyers_24h"`
	UniqueSellers24h   int               `json:"unique_sellers_24h"`
	LiquidityScore     float64           `json:"liquidity_score"`     // 0-10, higher is more liquid
	PriceVolatility    float64           `json:"price_volatility"`    // coefficient of variation, >= 0
	WhaleConcentration float64           `json:"whale_concentration"` // fraction 0-1
	FloorHistory       []FloorPricePoint `json:"floor_history,omitempty"`
}
