package executor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"FloorSentinel/internal/gas"
	"FloorSentinel/internal/market"
	"FloorSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSigner records submitted transactions and can fail selected tokens.
type fakeSigner struct {
	estimate   uint64
	failTokens map[string]bool // fail EstimateGas for these token calldata markers
	sent       []*model.TxRequest
	seq        int
}

func (s *fakeSigner) Address() string { return "0xtaker" }

func (s *fakeSigner) EstimateGas(_ context.Context, tx *model.TxRequest) (uint64, error) {
	if s.failTokens[tx.Data] {
		return 0, errors.New("execution reverted")
	}
	if s.estimate == 0 {
		return 100_000, nil
	}
	return s.estimate, nil
}

func (s *fakeSigner) SendTransaction(_ context.Context, tx *model.TxRequest) (PendingTx, error) {
	s.sent = append(s.sent, tx)
	s.seq++
	return &fakePending{hash: fmt.Sprintf("0xhash%d", s.seq), gasPrice: tx.GasPrice}, nil
}

type fakePending struct {
	hash     string
	gasPrice *big.Int
}

func (p *fakePending) Hash() string { return p.hash }

func (p *fakePending) Wait(_ context.Context) (*model.TxReceipt, error) {
	return &model.TxReceipt{TxHash: p.hash, GasUsed: 90_000, EffectiveGasPrice: p.gasPrice}, nil
}

// fixedOracle returns a constant fast gas price.
type fixedOracle struct{ fast float64 }

func (o fixedOracle) Prices(_ context.Context) (*gas.Prices, error) {
	return &gas.Prices{StandardGwei: o.fast / 2, FastGwei: o.fast, RapidGwei: o.fast * 2}, nil
}

func testMarket() *market.Mock {
	return &market.Mock{
		Collections: map[string]*market.Collection{
			"0xcol": {ID: "0xcol", Name: "Test Apes", FloorPrice: 10, TokenCount: 1000, OwnerCount: 500},
		},
		Listings: map[string][]model.Listing{
			"0xcol": {
				{ID: "l1", TokenID: "1", Price: 7.5, Maker: "0xs1"},
				{ID: "l2", TokenID: "2", Price: 8.2, Maker: "0xs2"},
				{ID: "l3", TokenID: "3", Price: 9.9, Maker: "0xs3"},
			},
		},
		BuyTxs: map[string]*model.TxRequest{
			"0xcol:1": {To: "0xmarket", Data: "0xbuy1", Value: big.NewInt(1)},
			"0xcol:2": {To: "0xmarket", Data: "0xbuy2", Value: big.NewInt(2)},
			"0xcol:3": {To: "0xmarket", Data: "0xbuy3", Value: big.NewInt(3)},
		},
	}
}

func TestSweep_MoreCapacityThanListings(t *testing.T) {
	// maxItems 2 but only one listing at or below 8: exactly one receipt,
	// not an error.
	signer := &fakeSigner{}
	e := New(testMarket(), nil, signer, nil, nil)

	receipts, err := e.Sweep(context.Background(), "0xcol", 8, Options{MaxItems: 2})
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, "1", receipts[0].TokenID)
	assert.InDelta(t, 25.0, receipts[0].Discount, 1e-9) // (10-7.5)/10
	assert.Equal(t, "0xhash1", receipts[0].TxHash)
}

func TestSweep_NoEligibleListings(t *testing.T) {
	e := New(testMarket(), nil, &fakeSigner{}, nil, nil)

	_, err := e.Sweep(context.Background(), "0xcol", 5, Options{})
	require.ErrorIs(t, err, ErrNoEligibleListings)
}

func TestSweep_ListingQueryErrorFailsCall(t *testing.T) {
	m := testMarket()
	m.ListingsErr = errors.New("upstream down")
	e := New(m, nil, &fakeSigner{}, nil, nil)

	_, err := e.Sweep(context.Background(), "0xcol", 8, Options{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoEligibleListings)
}

func TestSweep_GasPriceClampedToCeiling(t *testing.T) {
	signer := &fakeSigner{}
	e := New(testMarket(), fixedOracle{fast: 80}, signer, nil, nil)

	_, err := e.Sweep(context.Background(), "0xcol", 8, Options{MaxGasPriceGwei: 50})
	require.NoError(t, err)
	require.Len(t, signer.sent, 1)
	assert.Equal(t, gas.GweiToWei(50), signer.sent[0].GasPrice)
}

func TestSweep_PriorityFeeFallbackWithoutOracle(t *testing.T) {
	signer := &fakeSigner{}
	e := New(testMarket(), nil, signer, nil, nil)

	_, err := e.Sweep(context.Background(), "0xcol", 8, Options{PriorityFeeGwei: 2})
	require.NoError(t, err)
	require.Len(t, signer.sent, 1)
	assert.Equal(t, gas.GweiToWei(2), signer.sent[0].GasPrice)
}

func TestSweep_GasLimitBuffer(t *testing.T) {
	signer := &fakeSigner{estimate: 100_000}
	e := New(testMarket(), nil, signer, nil, nil)

	_, err := e.Sweep(context.Background(), "0xcol", 8, Options{GasMultiplier: 1.1})
	require.NoError(t, err)
	require.Len(t, signer.sent, 1)
	assert.Equal(t, uint64(110_000), signer.sent[0].GasLimit)
}

func TestSweep_PerListingFailureContinues(t *testing.T) {
	signer := &fakeSigner{failTokens: map[string]bool{"0xbuy1": true}}
	e := New(testMarket(), nil, signer, nil, nil)

	receipts, err := e.Sweep(context.Background(), "0xcol", 9, Options{MaxItems: 2})
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, "2", receipts[0].TokenID)
}

func TestSweep_GasCostFromReceipt(t *testing.T) {
	signer := &fakeSigner{}
	e := New(testMarket(), nil, signer, nil, nil)

	receipts, err := e.Sweep(context.Background(), "0xcol", 8, Options{PriorityFeeGwei: 2})
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	// 90_000 gas at 2 gwei = 0.00018 ETH
	assert.InDelta(t, 0.00018, receipts[0].GasCostETH, 1e-12)
}
