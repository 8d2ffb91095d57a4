package model

import (
	"math/big"
	"time"
)

// TxRequest carries the calldata for a marketplace purchase. Value and
// GasPrice are in wei.
type TxRequest struct {
	To       string
	Data     string // 0x-prefixed calldata
	Value    *big.Int
	GasLimit uint64
	GasPrice *big.Int
}

// TxReceipt is the confirmed result of a submitted transaction.
type TxReceipt struct {
	TxHash            string
	GasUsed           uint64
	EffectiveGasPrice *big.Int // wei; nil when the node did not report it
}

// PurchaseReceipt summarizes one confirmed sweep purchase.
type PurchaseReceipt struct {
	CollectionID   string    `json:"collection_id"`
	CollectionName string    `json:"collection_name"`
	TokenID        string    `json:"token_id"`
	PriceETH       float64   `json:"price_eth"`
	FloorPrice     float64   `json:"floor_price"`
	Discount       float64   `json:"discount"`
	TxHash         string    `json:"tx_hash"`
	GasCostETH     float64   `json:"gas_cost_eth"`
	PurchasedAt    time.Time `json:"purchased_at"`
}
