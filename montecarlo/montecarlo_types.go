package montecarlo

import "errors"

// DefaultSimulations is used when the caller leaves Simulations at zero
const DefaultSimulations = 10000

// ErrNoReturnSeries is returned by the significance test when the supplied
// universe has no usable series
var ErrNoReturnSeries = errors.New("no return series supplied")

// Settings configures the resampler
type Settings struct {
	// Simulations is the number of bootstrap iterations, defaults to
	// DefaultSimulations
	Simulations int
	// Confidence is the two-sided confidence level for the intervals,
	// defaults to 0.95
	Confidence float64
	Seed       int64
	// Workers bounds the concurrent simulations, zero means unbounded
	Workers int
}

// Interval is a two-sided confidence interval
type Interval struct {
	Lower float64
	Upper float64
}

// Distribution summarises one metric across all simulations
type Distribution struct {
	Mean       float64
	Std        float64
	Confidence Interval
}

// Result holds the bootstrap distributions. A run with no closed trades
// produces the zero value
type Result struct {
	Simulations       int
	TotalReturn       Distribution
	SharpeRatio       Distribution
	CAGR              Distribution
	MaxDrawdown       Distribution
	FinalEquity       Distribution
	PctProfitable     float64
	PctPositiveSharpe float64
}

// SignificanceResult reports how the strategy's Sharpe ratio compares
// against random portfolios drawn from the same universe
type SignificanceResult struct {
	StrategySharpe float64
	// PValue is the fraction of random portfolios with a Sharpe at or
	// above the strategy's
	PValue float64
	// Threshold is the 95th percentile of the random distribution
	Threshold   float64
	Significant bool
	RandomMean  float64
	RandomStd   float64
}
