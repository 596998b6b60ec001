package statistics

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/ghantakiran/axion-stock-sub003/broker"
	"github.com/ghantakiran/axion-stock-sub003/portfolio"
)

// TradingDaysPerYear is the annualisation base for volatility and the
// risk-adjusted ratios
const TradingDaysPerYear = 252

// ErrNoSnapshots is returned when a result is compiled from an empty run
var ErrNoSnapshots = errors.New("no snapshots to compile results from")

// Metrics is the derived, read-only summary of a completed run
type Metrics struct {
	TotalReturn        float64
	CAGR               float64
	Alpha              float64
	AnnualVolatility   float64
	DownsideVolatility float64
	MaxDrawdown        float64
	AvgDrawdown        float64
	SharpeRatio        float64
	SortinoRatio       float64
	CalmarRatio        float64
	InformationRatio   float64

	TotalTrades     int
	WinRate         float64
	ProfitFactor    float64
	AverageWin      float64
	AverageLoss     float64
	AverageHoldDays float64

	TotalCommission decimal.Decimal
	TotalSlippage   decimal.Decimal
	TotalFees       decimal.Decimal
}

// Result carries the metrics plus the full series and trade list of a run
type Result struct {
	Metrics     Metrics
	EquityCurve []portfolio.Snapshot
	Returns     []float64
	Trades      []portfolio.Trade
	Costs       broker.CostSummary
}
