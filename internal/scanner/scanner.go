package scanner

import (
	"context"
	"errors"
	"sort"
	"time"

	"FloorSentinel/internal/analytics"
	"FloorSentinel/internal/market"
	"FloorSentinel/internal/model"
	"FloorSentinel/internal/notifier"
	"FloorSentinel/internal/ratelimit"

	"github.com/rs/zerolog/log"
)

// Options control one scan pass. Zero values fall back to defaults.
type Options struct {
	IncludeRarity        bool
	MaxRequestsPerSecond int     // default 5
	MinDiscount          float64 // percent, default 5; negative = no minimum
	MaxResults           int     // default 10
	MaxRiskScore         int     // default 70; negative = exclude any scored risk
	PageSize             int     // listing page size, default 50
	RiskWeights          *analytics.RiskWeights
}

func (o *Options) applyDefaults() {
	if o.MaxRequestsPerSecond <= 0 {
		o.MaxRequestsPerSecond = 5
	}
	switch {
	case o.MinDiscount == 0:
		o.MinDiscount = 5
	case o.MinDiscount < 0:
		o.MinDiscount = 0
	}
	if o.MaxResults <= 0 {
		o.MaxResults = 10
	}
	switch {
	case o.MaxRiskScore == 0:
		o.MaxRiskScore = 70
	case o.MaxRiskScore < 0:
		o.MaxRiskScore = 0
	}
	if o.PageSize <= 0 {
		o.PageSize = 50
	}
	if o.RiskWeights == nil {
		w := analytics.DefaultRiskWeights
		o.RiskWeights = &w
	}
}

// SkipReason classifies why a collection or listing was passed over.
type SkipReason string

const (
	SkipMetricsError  SkipReason = "metrics_error"
	SkipNoFloor       SkipReason = "no_floor"
	SkipHighRisk      SkipReason = "high_risk"
	SkipListingsError SkipReason = "listings_error"
)

// Skip is one passed-over item. Collection-level skips have an empty
// TokenID.
type Skip struct {
	CollectionID string     `json:"collection_id"`
	TokenID      string     `json:"token_id,omitempty"`
	Reason       SkipReason `json:"reason"`
	RiskScore    int        `json:"risk_score,omitempty"`
	Err          error      `json:"-"`
}

// Result is the outcome of one scan pass: the ranked opportunities plus
// every skip, so callers can assert on failure modes instead of reading
// logs.
type Result struct {
	Opportunities []*model.Opportunity `json:"opportunities"`
	Skips         []Skip               `json:"skips,omitempty"`
	ScannedAt     time.Time            `json:"scanned_at"`
}

// Scanner finds listings priced significantly below a collection's floor.
type Scanner struct {
	market   market.MarketData
	engine   *analytics.Engine
	notifier notifier.Notifier // optional
}

// New creates a Scanner. notif may be nil to suppress notifications.
func New(m market.MarketData, engine *analytics.Engine, notif notifier.Notifier) *Scanner {
	return &Scanner{market: m, engine: engine, notifier: notif}
}

// Scan walks the collections in input order, comparing active listings
// against each floor. discountThreshold is a fraction: 0.1 keeps only
// listings at or below 90% of floor. Collections and listings that fail
// are skipped, never aborting the pass; only context cancellation stops
// it early. The returned opportunities are sorted by discount descending
// and capped at MaxResults.
func (s *Scanner) Scan(ctx context.Context, collectionIDs []string, discountThreshold float64, opts Options) *Result {
	opts.applyDefaults()

	limiter := ratelimit.New(opts.MaxRequestsPerSecond, time.Second)
	result := &Result{ScannedAt: time.Now()}

collections:
	for _, id := range collectionIDs {
		if err := limiter.Throttle(ctx); err != nil {
			break
		}

		metrics, err := s.engine.CollectionMetrics(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("collection", id).Msg("skipping collection: metrics unavailable")
			result.Skips = append(result.Skips, Skip{CollectionID: id, Reason: SkipMetricsError, Err: err})
			continue
		}
		if metrics.FloorPrice <= 0 {
			log.Warn().Str("collection", id).Msg("skipping collection: no floor price")
			result.Skips = append(result.Skips, Skip{CollectionID: id, Reason: SkipNoFloor})
			continue
		}

		risk := opts.RiskWeights.Score(
			metrics.PriceVolatility,
			metrics.WhaleConcentration,
			metrics.LiquidityScore,
			metrics.VolumeChange24h,
		)
		if risk > opts.MaxRiskScore {
			log.Warn().Str("collection", metrics.Name).Int("risk", risk).
				Msg("skipping high-risk collection")
			result.Skips = append(result.Skips, Skip{CollectionID: id, Reason: SkipHighRisk, RiskScore: risk})
			continue
		}

		maxPrice := metrics.FloorPrice * (1 - discountThreshold)

		if err := limiter.Throttle(ctx); err != nil {
			break
		}
		listings, err := s.market.ActiveListings(ctx, id, opts.PageSize, 0)
		if err != nil {
			log.Warn().Err(err).Str("collection", id).Msg("skipping collection: listings unavailable")
			result.Skips = append(result.Skips, Skip{CollectionID: id, Reason: SkipListingsError, Err: err})
			continue
		}

		for _, listing := range listings {
			if listing.Price > maxPrice {
				continue
			}
			discount := (metrics.FloorPrice - listing.Price) / metrics.FloorPrice * 100
			if discount < opts.MinDiscount {
				continue
			}

			opp := &model.Opportunity{
				CollectionID:   id,
				CollectionName: metrics.Name,
				FloorPrice:     metrics.FloorPrice,
				ListingPrice:   listing.Price,
				TokenID:        listing.TokenID,
				Seller:         listing.Maker,
				Discount:       discount,
				Source:         listing.Source,
				ValidUntil:     listing.ValidUntil,
			}
			if opts.IncludeRarity {
				if err := limiter.Throttle(ctx); err != nil {
					break collections
				}
				if rarity, err := s.market.TokenRarity(ctx, id, listing.TokenID); err != nil {
					if !errors.Is(err, market.ErrNotFound) {
						log.Warn().Err(err).Str("collection", id).Str("token", listing.TokenID).
							Msg("rarity lookup failed")
					}
				} else {
					opp.Rarity = &rarity
				}
			}

			result.Opportunities = append(result.Opportunities, opp)
			// Cap reached: stop collecting across all collections, so no
			// further API or rarity calls are spent this pass.
			if len(result.Opportunities) >= opts.MaxResults {
				break collections
			}
		}
	}

	sort.Slice(result.Opportunities, func(i, j int) bool {
		return result.Opportunities[i].Discount > result.Opportunities[j].Discount
	})

	if s.notifier != nil {
		for _, opp := range result.Opportunities {
			if err := s.notifier.NotifyOpportunity(opp); err != nil {
				log.Warn().Err(err).Msg("opportunity notification failed")
			}
		}
	}
	return result
}
