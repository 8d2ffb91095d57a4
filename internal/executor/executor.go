package executor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
	"time"

	"FloorSentinel/internal/gas"
	"FloorSentinel/internal/market"
	"FloorSentinel/internal/model"
	"FloorSentinel/internal/notifier"
	"FloorSentinel/internal/recorder"

	"github.com/rs/zerolog/log"
)

// ErrNoEligibleListings is returned when no active listing is at or
// below the requested maximum price. Callers treat it as a normal
// empty outcome, not a failure.
var ErrNoEligibleListings = errors.New("no eligible listings")

// Options control one sweep call. Zero values fall back to defaults.
type Options struct {
	MaxItems        int     // default 1
	GasMultiplier   float64 // gas limit safety buffer, default 1.1
	MaxGasPriceGwei float64 // oracle price ceiling, default 50
	PriorityFeeGwei float64 // fallback when no oracle, default 1.5
}

func (o *Options) applyDefaults() {
	if o.MaxItems <= 0 {
		o.MaxItems = 1
	}
	if o.GasMultiplier <= 0 {
		o.GasMultiplier = 1.1
	}
	if o.MaxGasPriceGwei <= 0 {
		o.MaxGasPriceGwei = 50
	}
	if o.PriorityFeeGwei <= 0 {
		o.PriorityFeeGwei = 1.5
	}
}

// Executor converts eligible listings into signed purchase transactions.
type Executor struct {
	market   market.MarketData
	oracle   gas.Oracle // may be nil
	signer   Signer
	notifier notifier.Notifier // may be nil
	recorder recorder.Recorder // may be nil
}

// New creates an Executor. oracle, notif, and rec may be nil.
func New(m market.MarketData, oracle gas.Oracle, signer Signer, notif notifier.Notifier, rec recorder.Recorder) *Executor {
	return &Executor{market: m, oracle: oracle, signer: signer, notifier: notif, recorder: rec}
}

// Sweep buys up to MaxItems listings at or below maxPrice, cheapest
// first. Per-listing failures are logged and skipped; the call fails
// outright only when the listing query itself errors. Returns
// ErrNoEligibleListings when nothing qualifies.
func (e *Executor) Sweep(ctx context.Context, collectionID string, maxPrice float64, opts Options) ([]*model.PurchaseReceipt, error) {
	opts.applyDefaults()

	listings, err := e.market.ActiveListings(ctx, collectionID, opts.MaxItems, maxPrice)
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}

	eligible := listings[:0:0]
	for _, l := range listings {
		if l.Price <= maxPrice {
			eligible = append(eligible, l)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("collection %s below %s ETH: %w",
			collectionID, notifier.FormatEth(maxPrice), ErrNoEligibleListings)
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].Price < eligible[j].Price })
	if len(eligible) > opts.MaxItems {
		eligible = eligible[:opts.MaxItems]
	}
	log.Info().Str("collection", collectionID).Int("eligible", len(eligible)).
		Str("max_price", notifier.FormatEth(maxPrice)).Msg("sweeping listings")

	// Collection stats enrich the receipt only; degrade without them.
	col, err := e.market.Collection(ctx, collectionID)
	if err != nil {
		log.Warn().Err(err).Str("collection", collectionID).Msg("collection stats unavailable")
		col = &market.Collection{ID: collectionID}
	}

	gasPrice := e.resolveGasPrice(ctx, opts)

	var receipts []*model.PurchaseReceipt
	for _, listing := range eligible {
		receipt, err := e.purchase(ctx, collectionID, col, listing, gasPrice, opts.GasMultiplier)
		if err != nil {
			log.Error().Err(err).Str("collection", collectionID).Str("token", listing.TokenID).
				Msg("purchase failed, continuing")
			continue
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}

// resolveGasPrice asks the oracle for the fast tier clamped to the
// ceiling, falling back to the configured priority fee.
func (e *Executor) resolveGasPrice(ctx context.Context, opts Options) *big.Int {
	gasPriceGwei := opts.PriorityFeeGwei
	if e.oracle != nil {
		prices, err := e.oracle.Prices(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("gas oracle unavailable, using priority fee")
		} else {
			gasPriceGwei = prices.FastGwei
			if gasPriceGwei > opts.MaxGasPriceGwei {
				log.Info().Float64("fast_gwei", gasPriceGwei).Float64("cap_gwei", opts.MaxGasPriceGwei).
					Msg("capping gas price")
				gasPriceGwei = opts.MaxGasPriceGwei
			}
		}
	}
	return gas.GweiToWei(gasPriceGwei)
}

func (e *Executor) purchase(ctx context.Context, collectionID string, col *market.Collection, listing model.Listing, gasPrice *big.Int, gasMultiplier float64) (*model.PurchaseReceipt, error) {
	tx, err := e.market.BuyTransaction(ctx, collectionID, listing.TokenID, e.signer.Address())
	if err != nil {
		return nil, fmt.Errorf("resolve buy transaction: %w", err)
	}

	estimate, err := e.signer.EstimateGas(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("estimate gas: %w", err)
	}
	// Integer-safe buffer: multiply by the percentage, then divide.
	tx.GasLimit = estimate * uint64(math.Round(gasMultiplier*100)) / 100
	tx.GasPrice = gasPrice

	pending, err := e.signer.SendTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}
	log.Info().Str("tx", pending.Hash()).Str("token", listing.TokenID).Msg("transaction sent")

	txReceipt, err := pending.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("await confirmation: %w", err)
	}

	effective := txReceipt.EffectiveGasPrice
	if effective == nil {
		effective = gasPrice
	}
	gasCost := new(big.Int).Mul(effective, new(big.Int).SetUint64(txReceipt.GasUsed))

	discount := 0.0
	if col.FloorPrice > 0 {
		discount = (col.FloorPrice - listing.Price) / col.FloorPrice * 100
	}
	receipt := &model.PurchaseReceipt{
		CollectionID:   collectionID,
		CollectionName: col.Name,
		TokenID:        listing.TokenID,
		PriceETH:       listing.Price,
		FloorPrice:     col.FloorPrice,
		Discount:       discount,
		TxHash:         txReceipt.TxHash,
		GasCostETH:     gas.WeiToEth(gasCost),
		PurchasedAt:    time.Now(),
	}

	if e.notifier != nil {
		if err := e.notifier.NotifyPurchase(receipt); err != nil {
			log.Warn().Err(err).Msg("purchase notification failed")
		}
	}
	if e.recorder != nil {
		if err := e.recorder.RecordPurchase(receipt); err != nil {
			log.Error().Err(err).Msg("record purchase failed")
		}
	}
	return receipt, nil
}
