package walkforward

import (
	"errors"
	"time"

	"github.com/ghantakiran/axion-stock-sub003/statistics"
	"github.com/ghantakiran/axion-stock-sub003/strategies"
)

// OptimizeMetric selects what the in-sample grid search maximises
type OptimizeMetric string

const (
	// Sharpe optimises the annualised Sharpe ratio
	Sharpe OptimizeMetric = "sharpe"
	// CAGR optimises the compound annual growth rate
	CAGR OptimizeMetric = "cagr"
	// Sortino optimises the annualised Sortino ratio
	Sortino OptimizeMetric = "sortino"
)

var (
	// ErrBadWindowCount is returned for fewer than one window
	ErrBadWindowCount = errors.New("window count must be at least one")
	// ErrBadInSampleRatio is returned when the ratio leaves no room for
	// either slice
	ErrBadInSampleRatio = errors.New("in-sample ratio must be between zero and one exclusive")
	// ErrUnknownMetric is returned for a metric outside the closed set
	ErrUnknownMetric = errors.New("unknown optimization metric")
	// ErrNoViableCombination is returned when every parameter combination
	// in a window fell below the minimum trade floor or failed to run
	ErrNoViableCombination = errors.New("no parameter combination met the minimum trade count")
	// ErrEmptyGrid is returned for a parameter grid with no combinations
	ErrEmptyGrid = errors.New("empty parameter grid")
)

// StrategyFactory builds a fresh strategy for one parameter combination.
// Each invocation must return an independent instance
type StrategyFactory func(params map[string]any) (strategies.Handler, error)

// Settings configures the optimizer
type Settings struct {
	// Windows is the number of contiguous splits of the full date range
	Windows int
	// InSampleRatio is the fraction of each window used for
	// optimisation, the rest is held out. Defaults to 0.7
	InSampleRatio float64
	Metric        OptimizeMetric
	// MinTrades disqualifies combinations trading less than this
	MinTrades int
	// Workers bounds the concurrent in-sample backtests, zero means one
	// per combination
	Workers int
}

// Window is one in-sample/out-of-sample split and its outcome
type Window struct {
	Index             int
	InSampleStart     time.Time
	InSampleEnd       time.Time
	OutOfSampleStart  time.Time
	OutOfSampleEnd    time.Time
	BestParams        map[string]any
	InSampleResult    *statistics.Result
	OutOfSampleResult *statistics.Result
}

// EquityPoint is one observation of the chained out-of-sample curve
type EquityPoint struct {
	Time  time.Time
	Value float64
}

// CombinedMetrics are recomputed from the concatenated out-of-sample
// returns across all windows
type CombinedMetrics struct {
	TotalReturn float64
	CAGR        float64
	SharpeRatio float64
	MaxDrawdown float64
}

// ParameterStability summarises how one parameter varied across windows
type ParameterStability struct {
	Numeric                bool
	Mean                   float64
	Std                    float64
	CoefficientOfVariation float64
	ModalValue             any
}

// Result aggregates every window plus the combined out-of-sample view
type Result struct {
	Windows            []Window
	CombinedEquity     []EquityPoint
	CombinedReturns    []float64
	Combined           CombinedMetrics
	MeanInSampleSharpe float64
	// EfficiencyRatio is combined out-of-sample Sharpe over mean
	// in-sample Sharpe. At or above 0.5 is considered robust, below 0.3
	// indicates likely overfitting. Advisory, not enforced
	EfficiencyRatio float64
	Assessment      string
	Stability       map[string]ParameterStability
}
