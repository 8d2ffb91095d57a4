package model

// Listing is one active ask from the order book. Zero-valued optional
// fields (ValidFrom, ValidUntil, Source) mean the marketplace did not
// report them.
type Listing struct {
	ID         string  `json:"id"`
	TokenID    string  `json:"token_id"`
	Price      float64 `json:"price"`
	Maker      string  `json:"maker"`
	ValidFrom  int64   `json:"valid_from,omitempty"`  // unix seconds, 0 = unknown
	ValidUntil int64   `json:"valid_until,omitempty"` // unix seconds, 0 = open-ended
	Source     string  `json:"source,omitempty"`
}
