package sweeper

import (
	"context"
	"errors"
	"sync"
	"time"

	"FloorSentinel/internal/analytics"
	"FloorSentinel/internal/executor"
	"FloorSentinel/internal/model"
	"FloorSentinel/internal/notifier"
	"FloorSentinel/internal/recorder"
	"FloorSentinel/internal/scanner"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Options configure the auto-sweep loop. Zero values fall back to
// defaults where noted; Collections, DiscountThreshold, MaxPricePerItem,
// and MaxTotalSpend are required.
type Options struct {
	Collections         []string
	DiscountThreshold   float64 // percent, e.g. 10 keeps listings >= 10% below floor
	MaxPricePerItem     float64 // ETH
	MaxTotalSpend       float64 // ETH
	CheckInterval       time.Duration // default 1m
	IncludeRarity       bool
	MaxItemsPerSweep    int     // default 3
	MinRarityPercentile float64 // default 50, only applies when IncludeRarity
	MaxRiskScore        int     // default 70
	RiskWeights         *analytics.RiskWeights
	ScanRequestsPerSec  int
	Executor            executor.Options // per-purchase gas settings
}

func (o *Options) applyDefaults() {
	if o.CheckInterval <= 0 {
		o.CheckInterval = time.Minute
	}
	if o.MaxItemsPerSweep <= 0 {
		o.MaxItemsPerSweep = 3
	}
	if o.MinRarityPercentile <= 0 {
		o.MinRarityPercentile = 50
	}
}

// Sweeper is the recurring control loop tying scanning to bounded
// autonomous spending. It owns the budget state exclusively: no other
// component writes TotalSpent or the running flag.
type Sweeper struct {
	scanner  *scanner.Scanner
	executor *executor.Executor
	notifier notifier.Notifier // may be nil
	recorder recorder.Recorder // may be nil
	opts     Options

	mu       sync.Mutex
	state    model.BudgetState
	lastScan []*model.Opportunity

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a Sweeper. Start must be called to begin ticking.
func New(sc *scanner.Scanner, ex *executor.Executor, notif notifier.Notifier, rec recorder.Recorder, opts Options) *Sweeper {
	opts.applyDefaults()
	return &Sweeper{
		scanner:  sc,
		executor: ex,
		notifier: notif,
		recorder: rec,
		opts:     opts,
		state: model.BudgetState{
			MaxTotalSpend:   opts.MaxTotalSpend,
			MaxPricePerItem: opts.MaxPricePerItem,
			UpdatedAt:       time.Now(),
		},
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the loop in a background goroutine. The first tick runs
// immediately; later ticks follow the configured interval. The loop ends
// when Stop is called, the context is cancelled, or the budget is
// exhausted. Cancellation is checked at tick boundaries only: an
// in-flight tick always completes its purchases.
func (s *Sweeper) Start(ctx context.Context) {
	s.setRunning(true)
	log.Info().
		Strs("collections", s.opts.Collections).
		Float64("discount_threshold", s.opts.DiscountThreshold).
		Float64("max_total_spend", s.opts.MaxTotalSpend).
		Dur("interval", s.opts.CheckInterval).
		Msg("auto-sweep started")

	go func() {
		defer close(s.done)
		defer s.setRunning(false)

		ticker := time.NewTicker(s.opts.CheckInterval)
		defer ticker.Stop()

		for {
			if s.State().Exhausted() {
				log.Info().Float64("total_spent", s.State().TotalSpent).Msg("budget exhausted, auto-sweep stopping")
				s.notifyText("🏁 Auto-sweep stopped: budget exhausted")
				return
			}
			s.tick(ctx)

			select {
			case <-ticker.C:
			case <-s.stopCh:
				log.Info().Msg("auto-sweep stopped")
				return
			case <-ctx.Done():
				log.Info().Msg("auto-sweep context cancelled")
				return
			}
		}
	}()
}

// Stop requests a cooperative shutdown. In-flight purchases are not
// aborted; only future ticks are prevented. Safe to call multiple times.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Done is closed once the loop has fully exited.
func (s *Sweeper) Done() <-chan struct{} { return s.done }

// State returns a copy of the current budget state.
func (s *Sweeper) State() model.BudgetState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastOpportunities returns the opportunities of the most recent scan.
func (s *Sweeper) LastOpportunities() []*model.Opportunity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScan
}

func (s *Sweeper) tick(ctx context.Context) {
	runID := uuid.NewString()
	started := time.Now()
	log.Info().Str("run", runID).Int("collections", len(s.opts.Collections)).
		Msg("checking for opportunities")

	// Oversized scan relative to the per-tick cap, so the rarity and
	// budget filters still have something to choose from.
	result := s.scanner.Scan(ctx, s.opts.Collections, s.opts.DiscountThreshold/100, scanner.Options{
		IncludeRarity:        s.opts.IncludeRarity,
		MinDiscount:          s.opts.DiscountThreshold,
		MaxResults:           s.opts.MaxItemsPerSweep * 2,
		MaxRiskScore:         s.opts.MaxRiskScore,
		RiskWeights:          s.opts.RiskWeights,
		MaxRequestsPerSecond: s.opts.ScanRequestsPerSec,
	})

	s.mu.Lock()
	s.lastScan = result.Opportunities
	s.mu.Unlock()

	if s.recorder != nil {
		for _, opp := range result.Opportunities {
			if err := s.recorder.RecordOpportunity(opp); err != nil {
				log.Error().Err(err).Msg("record opportunity failed")
			}
		}
	}

	selected := s.selectAffordable(result.Opportunities)
	purchases := 0
	spent := 0.0
	for _, opp := range selected {
		// 1% buffer over the listed price for floor movement.
		receipts, err := s.executor.Sweep(ctx, opp.CollectionID, opp.ListingPrice*1.01, executor.Options{
			MaxItems:        1,
			GasMultiplier:   s.opts.Executor.GasMultiplier,
			MaxGasPriceGwei: s.opts.Executor.MaxGasPriceGwei,
			PriorityFeeGwei: s.opts.Executor.PriorityFeeGwei,
		})
		if err != nil {
			if errors.Is(err, executor.ErrNoEligibleListings) {
				log.Info().Str("collection", opp.CollectionID).Str("token", opp.TokenID).
					Msg("listing gone before purchase")
			} else {
				log.Error().Err(err).Str("collection", opp.CollectionID).Msg("sweep failed")
			}
			continue
		}
		if len(receipts) == 0 {
			continue
		}

		purchases += len(receipts)
		spent += opp.ListingPrice
		total := s.addSpent(opp.ListingPrice)
		log.Info().Float64("total_spent", total).Float64("max", s.opts.MaxTotalSpend).
			Msg("purchase recorded against budget")

		if total >= s.opts.MaxTotalSpend {
			log.Info().Msg("budget limit reached within tick")
			break
		}
	}

	if s.recorder != nil {
		if err := s.recorder.RecordTick(&recorder.TickRecord{
			RunID:         runID,
			StartedAt:     started,
			Duration:      time.Since(started),
			Opportunities: len(result.Opportunities),
			Skips:         len(result.Skips),
			Purchases:     purchases,
			Spent:         spent,
			TotalSpent:    s.State().TotalSpent,
		}); err != nil {
			log.Error().Err(err).Msg("record tick failed")
		}
	}
}

// selectAffordable applies the rarity and per-item price filters, caps
// the list at the per-tick item count, then greedily packs the remaining
// budget in discount-descending order. First-fit, not a global optimum.
func (s *Sweeper) selectAffordable(opps []*model.Opportunity) []*model.Opportunity {
	var filtered []*model.Opportunity
	for _, opp := range opps {
		if s.opts.IncludeRarity {
			if opp.Rarity == nil || *opp.Rarity > s.opts.MinRarityPercentile {
				continue
			}
		}
		if opp.ListingPrice > s.opts.MaxPricePerItem {
			log.Info().Str("token", opp.TokenID).Float64("price", opp.ListingPrice).
				Float64("max_per_item", s.opts.MaxPricePerItem).Msg("skipping opportunity above per-item cap")
			continue
		}
		filtered = append(filtered, opp)
		if len(filtered) >= s.opts.MaxItemsPerSweep {
			break
		}
	}

	remaining := s.State().Remaining()
	var selected []*model.Opportunity
	for _, opp := range filtered {
		if opp.ListingPrice > remaining {
			continue
		}
		selected = append(selected, opp)
		remaining -= opp.ListingPrice
	}
	return selected
}

// addSpent adds a confirmed purchase to the ledger and returns the new
// cumulative total.
func (s *Sweeper) addSpent(amount float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.TotalSpent += amount
	s.state.UpdatedAt = time.Now()
	return s.state.TotalSpent
}

func (s *Sweeper) setRunning(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Running = v
	s.state.UpdatedAt = time.Now()
}

func (s *Sweeper) notifyText(text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyText(text); err != nil {
		log.Warn().Err(err).Msg("notification failed")
	}
}
