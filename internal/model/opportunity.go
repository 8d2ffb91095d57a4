package model

// Opportunity is a listing priced below the collection floor. Produced by
// the scanner and immutable afterwards, except for TxHash and GasCostETH
// which the executor fills in after a confirmed purchase.
type Opportunity struct {
	CollectionID   string   `json:"collection_id"`
	CollectionName string   `json:"collection_name"`
	FloorPrice     float64  `json:"floor_price"`
	ListingPrice   float64  `json:"listing_price"`
	TokenID        string   `json:"token_id"`
	Seller         string   `json:"seller"`
	Discount       float64  `json:"discount"` // percentage below floor
	Source         string   `json:"source,omitempty"`
	ValidUntil     int64    `json:"valid_until,omitempty"` // unix seconds, 0 = open-ended
	Rarity         *float64 `json:"rarity,omitempty"`      // percentile, lower is rarer; nil = not fetched
	TxHash         string   `json:"tx_hash,omitempty"`
	GasCostETH     float64  `json:"gas_cost_eth,omitempty"`
}
