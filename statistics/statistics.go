// Package statistics compiles the read-only performance summary of a
// completed run: returns, risk, risk-adjusted ratios and trade statistics.
// Ratio denominators that can be zero substitute zero (or +Inf for the
// profit factor) rather than propagating NaN
package statistics

import (
	"math"

	"github.com/ghantakiran/axion-stock-sub003/broker"
	gctmath "github.com/ghantakiran/axion-stock-sub003/common/math"
	"github.com/ghantakiran/axion-stock-sub003/log"
	"github.com/ghantakiran/axion-stock-sub003/portfolio"
)

// CalculateResults derives the full metric set from a run's snapshots,
// trades and cost totals. benchmarkReturns may be nil when no benchmark
// series was supplied; riskFreeRate is annual and fractional
func CalculateResults(snapshots []portfolio.Snapshot, trades []portfolio.Trade, benchmarkReturns []float64, riskFreeRate float64, costs broker.CostSummary) (*Result, error) {
	if len(snapshots) == 0 {
		return nil, ErrNoSnapshots
	}
	returns := returnsFromSnapshots(snapshots)
	m := Metrics{
		TotalCommission: costs.Commission,
		TotalSlippage:   costs.Slippage,
		TotalFees:       costs.Fees,
	}

	first, _ := snapshots[0].Equity.Float64()
	last, _ := snapshots[len(snapshots)-1].Equity.Float64()
	if first > 0 {
		m.TotalReturn = (last - first) / first
	}
	elapsedDays := snapshots[len(snapshots)-1].Time.Sub(snapshots[0].Time).Hours() / 24
	m.CAGR = gctmath.CalculateCompoundAnnualGrowthRate(first, last, elapsedDays)

	riskFreePerDay := riskFreeRate / TradingDaysPerYear
	annualise := math.Sqrt(TradingDaysPerYear)
	m.AnnualVolatility = gctmath.SampleStandardDeviation(returns) * annualise
	m.DownsideVolatility = gctmath.DownsideDeviation(returns, riskFreePerDay) * annualise
	m.SharpeRatio = gctmath.CalculateSharpeRatio(returns, riskFreePerDay) * annualise
	m.SortinoRatio = gctmath.CalculateSortinoRatio(returns, riskFreePerDay) * annualise

	m.MaxDrawdown, m.AvgDrawdown = drawdownStatistics(snapshots)
	m.CalmarRatio = gctmath.CalculateCalmarRatio(m.CAGR, m.MaxDrawdown)

	if len(benchmarkReturns) > 0 {
		m.Alpha = m.TotalReturn - compoundReturn(benchmarkReturns)
		if len(benchmarkReturns) == len(returns) {
			m.InformationRatio = gctmath.CalculateInformationRatio(returns, benchmarkReturns) * annualise
		} else {
			log.Warnf(log.Statistics, "benchmark has %d returns for %d portfolio returns, skipping information ratio",
				len(benchmarkReturns), len(returns))
		}
	}

	m.applyTradeStatistics(trades)

	return &Result{
		Metrics:     m,
		EquityCurve: snapshots,
		Returns:     returns,
		Trades:      trades,
		Costs:       costs,
	}, nil
}

// returnsFromSnapshots derives the per-event fractional equity returns
func returnsFromSnapshots(snapshots []portfolio.Snapshot) []float64 {
	if len(snapshots) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(snapshots)-1)
	for i := 1; i < len(snapshots); i++ {
		prev, _ := snapshots[i-1].Equity.Float64()
		curr, _ := snapshots[i].Equity.Float64()
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (curr-prev)/prev)
	}
	return returns
}

func drawdownStatistics(snapshots []portfolio.Snapshot) (maxDrawdown, avgDrawdown float64) {
	var sum float64
	var observations int
	for i := range snapshots {
		dd, _ := snapshots[i].Drawdown.Float64()
		if dd < maxDrawdown {
			maxDrawdown = dd
		}
		if dd < 0 {
			sum += dd
			observations++
		}
	}
	if observations > 0 {
		avgDrawdown = sum / float64(observations)
	}
	return maxDrawdown, avgDrawdown
}

func compoundReturn(returns []float64) float64 {
	product := 1.0
	for i := range returns {
		product *= 1 + returns[i]
	}
	return product - 1
}

func (m *Metrics) applyTradeStatistics(trades []portfolio.Trade) {
	m.TotalTrades = len(trades)
	if len(trades) == 0 {
		return
	}
	var wins, losses int
	var grossProfit, grossLoss, holdDays float64
	for i := range trades {
		pnl, _ := trades[i].PnL.Float64()
		holdDays += float64(trades[i].HoldDays)
		if pnl > 0 {
			wins++
			grossProfit += pnl
		} else if pnl < 0 {
			losses++
			grossLoss += pnl
		}
	}
	m.WinRate = float64(wins) / float64(len(trades))
	m.AverageHoldDays = holdDays / float64(len(trades))
	if wins > 0 {
		m.AverageWin = grossProfit / float64(wins)
	}
	if losses > 0 {
		m.AverageLoss = grossLoss / float64(losses)
	}
	switch {
	case grossLoss != 0:
		m.ProfitFactor = grossProfit / math.Abs(grossLoss)
	case grossProfit > 0:
		// no losing trades, the documented convention is +Inf
		m.ProfitFactor = math.Inf(1)
	}
}

// PrintResults writes a human readable summary of a run to the log
func (r *Result) PrintResults() {
	log.Info(log.Statistics, "------------------Results------------------------------------")
	log.Infof(log.Statistics, "Total return: %v%%", gctmath.RoundFloat(r.Metrics.TotalReturn*100, 2))
	log.Infof(log.Statistics, "CAGR: %v%%", gctmath.RoundFloat(r.Metrics.CAGR*100, 2))
	log.Infof(log.Statistics, "Annual volatility: %v%%", gctmath.RoundFloat(r.Metrics.AnnualVolatility*100, 2))
	log.Infof(log.Statistics, "Max drawdown: %v%%", gctmath.RoundFloat(r.Metrics.MaxDrawdown*100, 2))
	log.Infof(log.Statistics, "Sharpe ratio: %v", gctmath.RoundFloat(r.Metrics.SharpeRatio, 4))
	log.Infof(log.Statistics, "Sortino ratio: %v", gctmath.RoundFloat(r.Metrics.SortinoRatio, 4))
	log.Infof(log.Statistics, "Calmar ratio: %v", gctmath.RoundFloat(r.Metrics.CalmarRatio, 4))
	log.Infof(log.Statistics, "Trades: %d, win rate %v%%", r.Metrics.TotalTrades, gctmath.RoundFloat(r.Metrics.WinRate*100, 2))
	log.Infof(log.Statistics, "Profit factor: %v", gctmath.RoundFloat(r.Metrics.ProfitFactor, 4))
	log.Infof(log.Statistics, "Costs: commission $%v, slippage $%v, fees $%v",
		r.Costs.Commission.Round(2), r.Costs.Slippage.Round(2), r.Costs.Fees.Round(2))
}
