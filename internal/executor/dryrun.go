package executor

import (
	"context"
	"strings"

	"FloorSentinel/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DryRunSigner simulates signing and broadcasting without touching a
// chain. Used when no wallet is wired in, so the whole pipeline can run
// end to end with purchases logged instead of executed.
type DryRunSigner struct {
	Taker       string
	GasEstimate uint64
}

func NewDryRunSigner(taker string) *DryRunSigner {
	if taker == "" {
		taker = "0x0000000000000000000000000000000000000001"
	}
	return &DryRunSigner{Taker: taker, GasEstimate: 150_000}
}

func (s *DryRunSigner) Address() string { return s.Taker }

func (s *DryRunSigner) EstimateGas(_ context.Context, _ *model.TxRequest) (uint64, error) {
	return s.GasEstimate, nil
}

func (s *DryRunSigner) SendTransaction(_ context.Context, tx *model.TxRequest) (PendingTx, error) {
	hash := "0xdry" + strings.ReplaceAll(uuid.NewString(), "-", "")
	value := "0"
	if tx.Value != nil {
		value = tx.Value.String()
	}
	log.Info().Str("to", tx.To).Str("value_wei", value).Str("tx", hash).
		Msg("dry run: transaction not broadcast")
	return &dryRunPending{hash: hash, tx: tx}, nil
}

type dryRunPending struct {
	hash string
	tx   *model.TxRequest
}

func (p *dryRunPending) Hash() string { return p.hash }

func (p *dryRunPending) Wait(_ context.Context) (*model.TxReceipt, error) {
	return &model.TxReceipt{
		TxHash:            p.hash,
		GasUsed:           120_000,
		EffectiveGasPrice: p.tx.GasPrice,
	}, nil
}
