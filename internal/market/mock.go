package market

import (
	"context"
	"fmt"
	"math/big"

	"FloorSentinel/internal/model"
)

// Mock returns controllable fixed data for development and testing.
// Zero-value maps behave as an empty marketplace.
type Mock struct {
	Collections map[string]*Collection
	SalesData   map[string][]Sale
	History     map[string][]model.FloorPricePoint
	Listings    map[string][]model.Listing
	Rarities    map[string]float64 // key: collectionID:tokenID
	BuyTxs      map[string]*model.TxRequest

	CollectionErr error
	SalesErr      error
	ListingsErr   error
	RarityErr     error
	BuyErr        error
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Collection(_ context.Context, id string) (*Collection, error) {
	if m.CollectionErr != nil {
		return nil, m.CollectionErr
	}
	col, ok := m.Collections[id]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", id, ErrNotFound)
	}
	return col, nil
}

func (m *Mock) Sales(_ context.Context, id string, limit int) ([]Sale, error) {
	if m.SalesErr != nil {
		return nil, m.SalesErr
	}
	sales := m.SalesData[id]
	if limit > 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

func (m *Mock) FloorHistory(_ context.Context, id string) ([]model.FloorPricePoint, error) {
	return m.History[id], nil
}

func (m *Mock) ActiveListings(_ context.Context, id string, limit int, maxPrice float64) ([]model.Listing, error) {
	if m.ListingsErr != nil {
		return nil, m.ListingsErr
	}
	var out []model.Listing
	for _, l := range m.Listings[id] {
		if maxPrice > 0 && l.Price > maxPrice {
			continue
		}
		out = append(out, l)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *Mock) TokenRarity(_ context.Context, collectionID, tokenID string) (float64, error) {
	if m.RarityErr != nil {
		return 0, m.RarityErr
	}
	r, ok := m.Rarities[collectionID+":"+tokenID]
	if !ok {
		return 0, fmt.Errorf("token %s:%s: %w", collectionID, tokenID, ErrNotFound)
	}
	return r, nil
}

func (m *Mock) BuyTransaction(_ context.Context, collectionID, tokenID, _ string) (*model.TxRequest, error) {
	if m.BuyErr != nil {
		return nil, m.BuyErr
	}
	if tx, ok := m.BuyTxs[collectionID+":"+tokenID]; ok {
		return tx, nil
	}
	return &model.TxRequest{
		To:    "0x9999999999999999999999999999999999999999",
		Data:  "0xdeadbeef",
		Value: big.NewInt(0),
	}, nil
}
