package gas

import (
	"context"
	"math"
	"math/big"
)

// Prices holds the current gas price tiers in gwei.
type Prices struct {
	StandardGwei float64
	FastGwei     float64
	RapidGwei    float64
}

// Oracle reports current gas prices. Implementations may be unavailable
// (no API key), in which case callers fall back to a configured fee.
type Oracle interface {
	Prices(ctx context.Context) (*Prices, error)
}

// GweiToWei converts a gwei amount to wei.
func GweiToWei(gwei float64) *big.Int {
	return big.NewInt(int64(math.Round(gwei * 1e9)))
}

// WeiToEth converts a wei amount to ETH.
func WeiToEth(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	eth, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18)).Float64()
	return eth
}
