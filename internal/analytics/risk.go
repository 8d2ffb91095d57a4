package analytics

import "math"

// RiskWeights weighs the four risk components. The defaults mirror the
// calibration the detector has always run with; they are exposed because
// that calibration is a heuristic, not a derived constant.
type RiskWeights struct {
	Volatility  float64 `yaml:"volatility"`
	Whale       float64 `yaml:"whale"`
	Illiquidity float64 `yaml:"illiquidity"`
	VolumeSwing float64 `yaml:"volume_swing"`
}

// DefaultRiskWeights is the standard weighting.
var DefaultRiskWeights = RiskWeights{
	Volatility:  0.30,
	Whale:       0.30,
	Illiquidity: 0.25,
	VolumeSwing: 0.15,
}

// RiskScore rates a collection 0-100 (lower is safer) using the default
// weights. Pure function: same inputs always produce the same output.
// liquidityScore is on the 0-10 scale; whaleConcentration is a 0-1
// fraction; volumeChange24h is a signed percentage.
func RiskScore(volatility, whaleConcentration, liquidityScore, volumeChange24h float64) int {
	return DefaultRiskWeights.Score(volatility, whaleConcentration, liquidityScore, volumeChange24h)
}

// Score rates a collection 0-100 with explicit weights.
func (w RiskWeights) Score(volatility, whaleConcentration, liquidityScore, volumeChange24h float64) int {
	volatilityScore := math.Min(100, volatility*100)
	whaleScore := math.Min(100, whaleConcentration*100)
	illiquidityScore := math.Max(0, 100-liquidityScore*10)
	// Extreme volume swings in either direction increase risk.
	volumeSwingScore := math.Min(100, math.Abs(volumeChange24h))

	weighted := volatilityScore*w.Volatility +
		whaleScore*w.Whale +
		illiquidityScore*w.Illiquidity +
		volumeSwingScore*w.VolumeSwing
	return int(math.Round(weighted))
}
