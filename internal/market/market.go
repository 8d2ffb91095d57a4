package market

import (
	"context"
	"errors"
	"time"

	"FloorSentinel/internal/model"
)

// ErrNotFound is returned when the upstream has no record for the
// requested collection or token.
var ErrNotFound = errors.New("not found")

// Collection is the raw collection record as reported upstream.
type Collection struct {
	ID              string
	Name            string
	FloorPrice      float64 // 0 = no active floor ask
	Volume24h       float64
	VolumeChange24h float64
	TokenCount      int64
	OwnerCount      int64
	TopHolderShare  float64 // fraction of supply held by top holders, 0 = not reported
}

// Sale is one historical sale.
type Sale struct {
	TokenID   string
	Price     float64
	From      string
	To        string
	Timestamp time.Time
}

// MarketData is the marketplace API surface the engine depends on.
// Implementations must return ErrNotFound (possibly wrapped) when the
// collection or token does not exist upstream.
type MarketData interface {
	// Collection returns stats for one collection.
	Collection(ctx context.Context, id string) (*Collection, error)

	// Sales returns up to limit sales, most recent first.
	Sales(ctx context.Context, id string, limit int) ([]Sale, error)

	// FloorHistory returns the floor price history, oldest first.
	FloorHistory(ctx context.Context, id string) ([]model.FloorPricePoint, error)

	// ActiveListings returns up to limit active asks sorted ascending by
	// price. maxPrice 0 means no price cap.
	ActiveListings(ctx context.Context, id string, limit int, maxPrice float64) ([]model.Listing, error)

	// TokenRarity returns a token's rarity percentile (lower is rarer).
	TokenRarity(ctx context.Context, collectionID, tokenID string) (float64, error)

	// BuyTransaction resolves the purchase calldata for one listed token,
	// to be signed and broadcast by taker.
	BuyTransaction(ctx context.Context, collectionID, tokenID, taker string) (*model.TxRequest, error)

	Name() string
}
