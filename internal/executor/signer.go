package executor

import (
	"context"

	"FloorSentinel/internal/model"
)

// Signer signs and broadcasts purchase transactions. Implementations are
// provided by the embedding application (wallet, keystore, remote
// signer); the engine only depends on this contract.
type Signer interface {
	// Address returns the taker address purchases settle to.
	Address() string

	// EstimateGas estimates the gas limit for the transaction.
	EstimateGas(ctx context.Context, tx *model.TxRequest) (uint64, error)

	// SendTransaction signs and broadcasts the transaction.
	SendTransaction(ctx context.Context, tx *model.TxRequest) (PendingTx, error)
}

// PendingTx is a broadcast transaction awaiting confirmation.
type PendingTx interface {
	Hash() string
	Wait(ctx context.Context) (*model.TxReceipt, error)
}
