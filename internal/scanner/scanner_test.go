package scanner

import (
	"context"
	"testing"
	"time"

	"FloorSentinel/internal/analytics"
	"FloorSentinel/internal/market"
	"FloorSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calmCollection(id, name string) *market.Collection {
	// Enough owners and a floor ask to keep the risk score well below 70.
	return &market.Collection{
		ID:         id,
		Name:       name,
		FloorPrice: 10,
		TokenCount: 1000,
		OwnerCount: 5000,
	}
}

func calmSales(now time.Time) []market.Sale {
	// Identical prices: zero volatility, good buyer diversity.
	var sales []market.Sale
	for i := 0; i < 20; i++ {
		sales = append(sales, market.Sale{
			TokenID:   "x",
			Price:     10,
			From:      "s" + string(rune('a'+i)),
			To:        "b" + string(rune('a'+i)),
			Timestamp: now.Add(-time.Duration(i) * time.Hour / 2),
		})
	}
	return sales
}

func newTestScanner(m *market.Mock) *Scanner {
	return New(m, analytics.NewEngine(m), nil)
}

func TestScan_DiscountFiltering(t *testing.T) {
	// Floor 10, threshold 0.1 => maxPrice 9. A listing at 8 is a 20%
	// discount; one at 9.6 is 4% and also above maxPrice.
	now := time.Now()
	m := &market.Mock{
		Collections: map[string]*market.Collection{"0xa": calmCollection("0xa", "Apes")},
		SalesData:   map[string][]market.Sale{"0xa": calmSales(now)},
		Listings: map[string][]model.Listing{
			"0xa": {
				{ID: "l1", TokenID: "1", Price: 8, Maker: "0xs1"},
				{ID: "l2", TokenID: "2", Price: 9.6, Maker: "0xs2"},
			},
		},
	}

	result := newTestScanner(m).Scan(context.Background(), []string{"0xa"}, 0.1, Options{MinDiscount: 5})

	require.Len(t, result.Opportunities, 1)
	opp := result.Opportunities[0]
	assert.Equal(t, "1", opp.TokenID)
	assert.InDelta(t, 20.0, opp.Discount, 1e-9)
	assert.InDelta(t, 10.0, opp.FloorPrice, 1e-9)
}

func TestScan_MinDiscountExcludesSmallDiscounts(t *testing.T) {
	// Listing at 9.6 on a floor of 10 is a 4% discount: below the default
	// 5% minimum even with no price threshold.
	now := time.Now()
	m := &market.Mock{
		Collections: map[string]*market.Collection{"0xa": calmCollection("0xa", "Apes")},
		SalesData:   map[string][]market.Sale{"0xa": calmSales(now)},
		Listings: map[string][]model.Listing{
			"0xa": {{ID: "l2", TokenID: "2", Price: 9.6, Maker: "0xs2"}},
		},
	}

	result := newTestScanner(m).Scan(context.Background(), []string{"0xa"}, 0, Options{MinDiscount: 5})
	assert.Empty(t, result.Opportunities)
}

func TestScan_HighRiskCollectionExcluded(t *testing.T) {
	now := time.Now()
	// Three owners and wildly varying sale prices push the risk score
	// past the cutoff despite the deeply discounted listing.
	risky := &market.Collection{
		ID: "0xr", Name: "Rug", FloorPrice: 10, TokenCount: 1000, OwnerCount: 3,
		VolumeChange24h: -95,
	}
	m := &market.Mock{
		Collections: map[string]*market.Collection{"0xr": risky},
		SalesData: map[string][]market.Sale{
			"0xr": {
				{Price: 1, From: "a", To: "b", Timestamp: now.Add(-time.Hour)},
				{Price: 30, From: "a", To: "b", Timestamp: now.Add(-2 * time.Hour)},
				{Price: 2, From: "a", To: "b", Timestamp: now.Add(-3 * time.Hour)},
			},
		},
		Listings: map[string][]model.Listing{
			"0xr": {{ID: "l1", TokenID: "1", Price: 5, Maker: "0xs"}},
		},
	}

	result := newTestScanner(m).Scan(context.Background(), []string{"0xr"}, 0.1, Options{})

	assert.Empty(t, result.Opportunities)
	require.Len(t, result.Skips, 1)
	assert.Equal(t, SkipHighRisk, result.Skips[0].Reason)
	assert.Greater(t, result.Skips[0].RiskScore, 70)
}

func TestScan_NoFloorSkipped(t *testing.T) {
	m := &market.Mock{
		Collections: map[string]*market.Collection{
			"0xa": {ID: "0xa", Name: "Unlisted", TokenCount: 100, OwnerCount: 50},
		},
	}

	result := newTestScanner(m).Scan(context.Background(), []string{"0xa"}, 0.1, Options{})

	assert.Empty(t, result.Opportunities)
	require.Len(t, result.Skips, 1)
	assert.Equal(t, SkipNoFloor, result.Skips[0].Reason)
}

func TestScan_MissingCollectionDoesNotAbortPass(t *testing.T) {
	now := time.Now()
	m := &market.Mock{
		Collections: map[string]*market.Collection{"0xb": calmCollection("0xb", "Birds")},
		SalesData:   map[string][]market.Sale{"0xb": calmSales(now)},
		Listings: map[string][]model.Listing{
			"0xb": {{ID: "l1", TokenID: "7", Price: 8, Maker: "0xs"}},
		},
	}

	result := newTestScanner(m).Scan(context.Background(), []string{"0xmissing", "0xb"}, 0.1, Options{})

	require.Len(t, result.Opportunities, 1)
	assert.Equal(t, "0xb", result.Opportunities[0].CollectionID)
	require.Len(t, result.Skips, 1)
	assert.Equal(t, SkipMetricsError, result.Skips[0].Reason)
}

func TestScan_SortedByDiscountDescendingAndCapped(t *testing.T) {
	now := time.Now()
	m := &market.Mock{
		Collections: map[string]*market.Collection{"0xa": calmCollection("0xa", "Apes")},
		SalesData:   map[string][]market.Sale{"0xa": calmSales(now)},
		Listings: map[string][]model.Listing{
			"0xa": {
				{ID: "l1", TokenID: "1", Price: 9, Maker: "0xs"},
				{ID: "l2", TokenID: "2", Price: 7, Maker: "0xs"},
				{ID: "l3", TokenID: "3", Price: 8, Maker: "0xs"},
				{ID: "l4", TokenID: "4", Price: 6, Maker: "0xs"},
			},
		},
	}

	result := newTestScanner(m).Scan(context.Background(), []string{"0xa"}, 0.1, Options{MaxResults: 3})

	require.Len(t, result.Opportunities, 3)
	for i := 1; i < len(result.Opportunities); i++ {
		assert.GreaterOrEqual(t,
			result.Opportunities[i-1].Discount,
			result.Opportunities[i].Discount,
			"opportunities must be sorted by discount descending")
	}
	for _, opp := range result.Opportunities {
		assert.LessOrEqual(t, opp.ListingPrice, 9.0)
		assert.GreaterOrEqual(t, opp.Discount, 5.0)
	}
}

func TestScan_NegativeOptionsDisableFloors(t *testing.T) {
	now := time.Now()
	m := &market.Mock{
		Collections: map[string]*market.Collection{"0xa": calmCollection("0xa", "Apes")},
		SalesData:   map[string][]market.Sale{"0xa": calmSales(now)},
		Listings: map[string][]model.Listing{
			// 4% below floor: under the default 5% minimum.
			"0xa": {{ID: "l1", TokenID: "1", Price: 9.6, Maker: "0xs"}},
		},
	}

	// MinDiscount -1 means no minimum: the 4% listing qualifies.
	result := newTestScanner(m).Scan(context.Background(), []string{"0xa"}, 0.01, Options{MinDiscount: -1})
	require.Len(t, result.Opportunities, 1)
	assert.InDelta(t, 4.0, result.Opportunities[0].Discount, 1e-9)

	// MaxRiskScore -1 means zero tolerance: any scored risk excludes.
	risky := calmCollection("0xa", "Apes")
	risky.OwnerCount = 100 // whale term alone scores 3
	m.Collections["0xa"] = risky

	result = newTestScanner(m).Scan(context.Background(), []string{"0xa"}, 0.01, Options{MaxRiskScore: -1})
	assert.Empty(t, result.Opportunities)
	require.Len(t, result.Skips, 1)
	assert.Equal(t, SkipHighRisk, result.Skips[0].Reason)
	assert.Greater(t, result.Skips[0].RiskScore, 0)
}

// countingMarket records which collections each query touches.
type countingMarket struct {
	*market.Mock
	collectionCalls []string
	listingCalls    []string
}

func (c *countingMarket) Collection(ctx context.Context, id string) (*market.Collection, error) {
	c.collectionCalls = append(c.collectionCalls, id)
	return c.Mock.Collection(ctx, id)
}

func (c *countingMarket) ActiveListings(ctx context.Context, id string, limit int, maxPrice float64) ([]model.Listing, error) {
	c.listingCalls = append(c.listingCalls, id)
	return c.Mock.ActiveListings(ctx, id, limit, maxPrice)
}

func TestScan_StopsQueryingOnceMaxResultsReached(t *testing.T) {
	now := time.Now()
	m := &countingMarket{Mock: &market.Mock{
		Collections: map[string]*market.Collection{
			"0xa": calmCollection("0xa", "Apes"),
			"0xb": calmCollection("0xb", "Birds"),
		},
		SalesData: map[string][]market.Sale{
			"0xa": calmSales(now),
			"0xb": calmSales(now),
		},
		Listings: map[string][]model.Listing{
			"0xa": {{ID: "l1", TokenID: "1", Price: 8, Maker: "0xs"}},
			"0xb": {{ID: "l2", TokenID: "2", Price: 7, Maker: "0xs"}},
		},
	}}

	sc := New(m, analytics.NewEngine(m), nil)
	result := sc.Scan(context.Background(), []string{"0xa", "0xb"}, 0.1, Options{MaxResults: 1})

	require.Len(t, result.Opportunities, 1)
	assert.Equal(t, "0xa", result.Opportunities[0].CollectionID)

	// The second collection is never queried once the cap is met.
	assert.Equal(t, []string{"0xa"}, m.collectionCalls)
	assert.Equal(t, []string{"0xa"}, m.listingCalls)
}

func TestScan_RarityEnrichment(t *testing.T) {
	now := time.Now()
	m := &market.Mock{
		Collections: map[string]*market.Collection{"0xa": calmCollection("0xa", "Apes")},
		SalesData:   map[string][]market.Sale{"0xa": calmSales(now)},
		Listings: map[string][]model.Listing{
			"0xa": {
				{ID: "l1", TokenID: "1", Price: 8, Maker: "0xs"},
				{ID: "l2", TokenID: "2", Price: 8.5, Maker: "0xs"},
			},
		},
		Rarities: map[string]float64{"0xa:1": 12.5}, // token 2 has no rarity data
	}

	result := newTestScanner(m).Scan(context.Background(), []string{"0xa"}, 0.1, Options{IncludeRarity: true})

	require.Len(t, result.Opportunities, 2)
	byToken := map[string]*model.Opportunity{}
	for _, opp := range result.Opportunities {
		byToken[opp.TokenID] = opp
	}
	require.NotNil(t, byToken["1"].Rarity)
	assert.InDelta(t, 12.5, *byToken["1"].Rarity, 1e-9)
	assert.Nil(t, byToken["2"].Rarity)
}
