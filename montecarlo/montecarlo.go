// Package montecarlo stress tests a completed run. Bootstrap resampling
// reshuffles the realised trade P&Ls with replacement to bound the
// plausible range of outcomes, and the significance test compares the
// strategy's Sharpe against random portfolios drawn from the same universe
package montecarlo

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	gctmath "github.com/ghantakiran/axion-stock-sub003/common/math"
	"github.com/ghantakiran/axion-stock-sub003/log"
	"github.com/ghantakiran/axion-stock-sub003/portfolio"
)

// Resampler owns the settings for repeated simulation. Each simulation
// seeds its own generator from the base seed plus the simulation index, so
// results are identical regardless of worker count
type Resampler struct {
	settings Settings
}

// NewResampler applies defaults and returns a resampler
func NewResampler(settings Settings) *Resampler {
	if settings.Simulations <= 0 {
		settings.Simulations = DefaultSimulations
	}
	if settings.Confidence <= 0 || settings.Confidence >= 1 {
		settings.Confidence = 0.95
	}
	return &Resampler{settings: settings}
}

// Run bootstraps the closed trades of a finished run. initialCapital seeds
// each synthetic equity path. An empty trade list returns the zero result
func (r *Resampler) Run(trades []portfolio.Trade, initialCapital float64) (*Result, error) {
	if len(trades) == 0 {
		log.Warnf(log.MonteCarlo, "no closed trades to resample")
		return &Result{}, nil
	}
	if initialCapital <= 0 {
		return nil, fmt.Errorf("initial capital must be positive, got %v", initialCapital)
	}

	pnls := make([]float64, len(trades))
	var firstEntry, lastExit time.Time
	for i := range trades {
		pnls[i], _ = trades[i].PnL.Float64()
		if firstEntry.IsZero() || trades[i].EntryTime.Before(firstEntry) {
			firstEntry = trades[i].EntryTime
		}
		if trades[i].ExitTime.After(lastExit) {
			lastExit = trades[i].ExitTime
		}
	}
	// every resample spans the source run's elapsed days
	elapsedDays := lastExit.Sub(firstEntry).Hours() / 24

	totalReturns := make([]float64, r.settings.Simulations)
	sharpes := make([]float64, r.settings.Simulations)
	cagrs := make([]float64, r.settings.Simulations)
	drawdowns := make([]float64, r.settings.Simulations)
	finals := make([]float64, r.settings.Simulations)

	var g errgroup.Group
	if r.settings.Workers > 0 {
		g.SetLimit(r.settings.Workers)
	}
	for sim := 0; sim < r.settings.Simulations; sim++ {
		sim := sim
		g.Go(func() error {
			rng := rand.New(rand.NewSource(r.settings.Seed + int64(sim)))
			totalReturns[sim], sharpes[sim], drawdowns[sim], finals[sim] = simulatePath(rng, pnls, initialCapital)
			cagrs[sim] = gctmath.CalculateCompoundAnnualGrowthRate(initialCapital, finals[sim], elapsedDays)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Simulations: r.settings.Simulations,
		TotalReturn: r.distribution(totalReturns),
		SharpeRatio: r.distribution(sharpes),
		CAGR:        r.distribution(cagrs),
		MaxDrawdown: r.distribution(drawdowns),
		FinalEquity: r.distribution(finals),
	}
	var profitable, positiveSharpe int
	for sim := range totalReturns {
		if totalReturns[sim] > 0 {
			profitable++
		}
		if sharpes[sim] > 0 {
			positiveSharpe++
		}
	}
	result.PctProfitable = float64(profitable) / float64(r.settings.Simulations)
	result.PctPositiveSharpe = float64(positiveSharpe) / float64(r.settings.Simulations)
	return result, nil
}

// simulatePath draws len(pnls) trades with replacement and walks a
// synthetic equity curve
func simulatePath(rng *rand.Rand, pnls []float64, initialCapital float64) (totalReturn, sharpe, maxDrawdown, final float64) {
	equity := initialCapital
	peak := initialCapital
	returns := make([]float64, 0, len(pnls))
	for range pnls {
		pnl := pnls[rng.Intn(len(pnls))]
		if equity > 0 {
			returns = append(returns, pnl/equity)
		}
		equity += pnl
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			if dd := (equity - peak) / peak; dd < maxDrawdown {
				maxDrawdown = dd
			}
		}
	}
	totalReturn = (equity - initialCapital) / initialCapital
	sharpe = gctmath.CalculateSharpeRatio(returns, 0)
	return totalReturn, sharpe, maxDrawdown, equity
}

func (r *Resampler) distribution(values []float64) Distribution {
	tail := (1 - r.settings.Confidence) / 2
	return Distribution{
		Mean: gctmath.ArithmeticAverage(values),
		Std:  gctmath.SampleStandardDeviation(values),
		Confidence: Interval{
			Lower: gctmath.Percentile(values, tail),
			Upper: gctmath.Percentile(values, 1-tail),
		},
	}
}

// SignificanceTest asks whether strategySharpe beats chance. Each trial
// builds a random portfolio over the universe with Dirichlet(1,...,1)
// weights and measures its Sharpe; the strategy is significant when it
// exceeds the 95th percentile of that distribution
func (r *Resampler) SignificanceTest(strategySharpe float64, universe map[string][]float64) (*SignificanceResult, error) {
	symbols := make([]string, 0, len(universe))
	var seriesLen int
	for symbol, series := range universe {
		if len(series) == 0 {
			continue
		}
		if seriesLen == 0 || len(series) < seriesLen {
			seriesLen = len(series)
		}
		symbols = append(symbols, symbol)
	}
	if len(symbols) == 0 || seriesLen == 0 {
		return nil, ErrNoReturnSeries
	}
	sort.Strings(symbols)

	randomSharpes := make([]float64, r.settings.Simulations)
	var g errgroup.Group
	if r.settings.Workers > 0 {
		g.SetLimit(r.settings.Workers)
	}
	for sim := 0; sim < r.settings.Simulations; sim++ {
		sim := sim
		g.Go(func() error {
			rng := rand.New(rand.NewSource(r.settings.Seed + int64(sim)))
			weights := dirichletWeights(rng, len(symbols))
			blended := make([]float64, seriesLen)
			for i, symbol := range symbols {
				series := universe[symbol]
				for t := 0; t < seriesLen; t++ {
					blended[t] += weights[i] * series[t]
				}
			}
			randomSharpes[sim] = gctmath.CalculateSharpeRatio(blended, 0)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var atOrAbove int
	for sim := range randomSharpes {
		if randomSharpes[sim] >= strategySharpe {
			atOrAbove++
		}
	}
	threshold := gctmath.Percentile(randomSharpes, 0.95)
	return &SignificanceResult{
		StrategySharpe: strategySharpe,
		PValue:         float64(atOrAbove) / float64(r.settings.Simulations),
		Threshold:      threshold,
		Significant:    strategySharpe > threshold,
		RandomMean:     gctmath.ArithmeticAverage(randomSharpes),
		RandomStd:      gctmath.SampleStandardDeviation(randomSharpes),
	}, nil
}

// dirichletWeights draws a uniform point on the simplex. Normalised unit
// exponentials are equivalent to Dirichlet with all concentrations one
func dirichletWeights(rng *rand.Rand, n int) []float64 {
	weights := make([]float64, n)
	var sum float64
	for i := range weights {
		weights[i] = rng.ExpFloat64()
		sum += weights[i]
	}
	if sum == 0 || math.IsInf(sum, 1) {
		for i := range weights {
			weights[i] = 1 / float64(n)
		}
		return weights
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// PrintResults writes a human readable summary to the log
func (res *Result) PrintResults() {
	if res.Simulations == 0 {
		log.Info(log.MonteCarlo, "no simulations were run")
		return
	}
	log.Infof(log.MonteCarlo, "------------------Monte Carlo (%d simulations)----------------", res.Simulations)
	log.Infof(log.MonteCarlo, "Total return: mean %v%%, CI [%v%%, %v%%]",
		gctmath.RoundFloat(res.TotalReturn.Mean*100, 2),
		gctmath.RoundFloat(res.TotalReturn.Confidence.Lower*100, 2),
		gctmath.RoundFloat(res.TotalReturn.Confidence.Upper*100, 2))
	log.Infof(log.MonteCarlo, "CAGR: mean %v%%, CI [%v%%, %v%%]",
		gctmath.RoundFloat(res.CAGR.Mean*100, 2),
		gctmath.RoundFloat(res.CAGR.Confidence.Lower*100, 2),
		gctmath.RoundFloat(res.CAGR.Confidence.Upper*100, 2))
	log.Infof(log.MonteCarlo, "Max drawdown: mean %v%%, CI [%v%%, %v%%]",
		gctmath.RoundFloat(res.MaxDrawdown.Mean*100, 2),
		gctmath.RoundFloat(res.MaxDrawdown.Confidence.Lower*100, 2),
		gctmath.RoundFloat(res.MaxDrawdown.Confidence.Upper*100, 2))
	log.Infof(log.MonteCarlo, "Profitable paths: %v%%, positive Sharpe: %v%%",
		gctmath.RoundFloat(res.PctProfitable*100, 2),
		gctmath.RoundFloat(res.PctPositiveSharpe*100, 2))
}
