package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"FloorSentinel/internal/market"
	"FloorSentinel/internal/model"

	"github.com/rs/zerolog/log"
)

// salesSampleSize bounds the sale history used for volatility.
const salesSampleSize = 100

// Engine turns raw market data for one collection into a metrics snapshot.
type Engine struct {
	market market.MarketData
}

// NewEngine creates an Engine backed by the given market data source.
func NewEngine(m market.MarketData) *Engine {
	return &Engine{market: m}
}

// CollectionMetrics fetches stats, sales, and floor history for one
// collection and derives the full metrics snapshot. Returns a wrapped
// market.ErrNotFound when the collection does not exist upstream.
func (e *Engine) CollectionMetrics(ctx context.Context, id string) (*model.CollectionMetrics, error) {
	col, err := e.market.Collection(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("collection stats: %w", err)
	}

	sales, err := e.market.Sales(ctx, id, salesSampleSize)
	if err != nil {
		return nil, fmt.Errorf("sales history: %w", err)
	}

	// Floor history is enrichment only; degrade without it.
	history, err := e.market.FloorHistory(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("collection", id).Msg("floor history unavailable")
		history = nil
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	buyers := make(map[string]struct{})
	sellers := make(map[string]struct{})
	var salesCount24h int
	var volume24h float64
	for _, s := range sales {
		if s.Timestamp.Before(cutoff) {
			continue
		}
		salesCount24h++
		volume24h += s.Price
		buyers[s.To] = struct{}{}
		sellers[s.From] = struct{}{}
	}

	avgPrice := 0.0
	if salesCount24h > 0 {
		avgPrice = volume24h / float64(salesCount24h)
	}

	prices := make([]float64, len(sales))
	for i, s := range sales {
		prices[i] = s.Price
	}

	return &model.CollectionMetrics{
		ID:                 id,
		Name:               col.Name,
		FloorPrice:         col.FloorPrice,
		Volume24h:          col.Volume24h,
		VolumeChange24h:    col.VolumeChange24h,
		SalesCount24h:      salesCount24h,
		AveragePrice24h:    avgPrice,
		MarketCap:          col.FloorPrice * float64(col.TokenCount),
		TotalSupply:        col.TokenCount,
		OwnerCount:         col.OwnerCount,
		UniqueBuyers24h:    len(buyers),
		UniqueSellers24h:   len(sellers),
		LiquidityScore:     liquidityScore(salesCount24h, len(buyers), col.TokenCount, col.FloorPrice),
		PriceVolatility:    volatility(prices),
		WhaleConcentration: whaleConcentration(col),
		FloorHistory:       history,
	}, nil
}

// volatility is the coefficient of variation of the sample: standard
// deviation of the prices divided by their mean. 0 when fewer than two
// prices or the mean is 0.
func volatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	var sum float64
	for _, p := range prices {
		sum += p
	}
	mean := sum / float64(len(prices))
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, p := range prices {
		variance += (p - mean) * (p - mean)
	}
	variance /= float64(len(prices))
	return math.Sqrt(variance) / mean
}

// liquidityScore composes sales activity relative to 1% of supply, buyer
// diversity, and a fixed bonus for an active floor listing, averaged and
// scaled to [0,10].
func liquidityScore(salesCount, uniqueBuyers int, totalSupply int64, floorPrice float64) float64 {
	salesTerm := float64(salesCount) / math.Max(1, float64(totalSupply)*0.01)
	diversityTerm := float64(uniqueBuyers) / math.Max(1, float64(salesCount))
	floorBonus := 0.0
	if floorPrice > 0 {
		floorBonus = 5
	}
	score := (salesTerm + diversityTerm + floorBonus) / 3 * 10
	return math.Min(10, math.Max(0, score))
}

// whaleConcentration prefers the upstream top-holder fraction; when the
// API does not report one it falls back to the min(1, 10/ownerCount)
// approximation, and 0 for collections with no reported owners.
func whaleConcentration(col *market.Collection) float64 {
	if col.TopHolderShare > 0 {
		return math.Min(1, col.TopHolderShare)
	}
	if col.OwnerCount > 0 {
		return math.Min(1, 10/float64(col.OwnerCount))
	}
	return 0
}
