// Package walkforward validates that optimised strategy parameters
// generalise: each window grid-searches an in-sample slice, then replays
// the winner untouched on the held-out suffix. Out-of-sample curves are
// chained into one combined track record
package walkforward

import (
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	gctmath "github.com/ghantakiran/axion-stock-sub003/common/math"
	"github.com/ghantakiran/axion-stock-sub003/config"
	"github.com/ghantakiran/axion-stock-sub003/data"
	"github.com/ghantakiran/axion-stock-sub003/engine"
	"github.com/ghantakiran/axion-stock-sub003/log"
	"github.com/ghantakiran/axion-stock-sub003/statistics"
)

// Optimizer runs repeated in-sample/out-of-sample engine invocations over a
// parameter grid
type Optimizer struct {
	settings Settings
	cfg      config.Config
	factory  StrategyFactory
}

// New validates the settings and returns an optimizer. The supplied config
// is the template for every backtest; each parameter combination derives
// its own seed from the config seed plus its grid index
func New(settings Settings, cfg config.Config, factory StrategyFactory) (*Optimizer, error) {
	if settings.Windows < 1 {
		return nil, ErrBadWindowCount
	}
	if settings.InSampleRatio == 0 {
		settings.InSampleRatio = 0.7
	}
	if settings.InSampleRatio <= 0 || settings.InSampleRatio >= 1 {
		return nil, fmt.Errorf("%w: %v", ErrBadInSampleRatio, settings.InSampleRatio)
	}
	if settings.Metric == "" {
		settings.Metric = Sharpe
	}
	switch settings.Metric {
	case Sharpe, CAGR, Sortino:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, settings.Metric)
	}
	if factory == nil {
		return nil, fmt.Errorf("nil strategy factory")
	}
	return &Optimizer{settings: settings, cfg: cfg, factory: factory}, nil
}

// Run performs the full walk-forward analysis over the supplied data
func (o *Optimizer) Run(handler *data.Handler, grid map[string][]any) (*Result, error) {
	if handler == nil || handler.Len() == 0 {
		return nil, data.ErrNoData
	}
	combinations := expandGrid(grid)
	if len(combinations) == 0 {
		return nil, ErrEmptyGrid
	}
	windows := o.partition(handler.Start(), handler.End())

	result := &Result{Stability: make(map[string]ParameterStability)}
	for i := range windows {
		w := &windows[i]
		if err := o.runWindow(handler, w, combinations); err != nil {
			return nil, fmt.Errorf("window %d: %w", w.Index, err)
		}
		result.Windows = append(result.Windows, *w)
		log.Infof(log.WalkForward, "window %d best params %v, in-sample %s %.4f",
			w.Index, w.BestParams, o.settings.Metric, metricValue(w.InSampleResult, o.settings.Metric))
	}

	o.combine(result)
	o.assess(result)
	result.Stability = parameterStability(result.Windows)
	return result, nil
}

// partition splits [start, end] into contiguous windows, each split again
// into an in-sample prefix and out-of-sample suffix. Out-of-sample ranges
// never overlap across windows
func (o *Optimizer) partition(start, end time.Time) []Window {
	// the final event must fall inside the last window
	total := end.Sub(start) + time.Second
	windowSpan := total / time.Duration(o.settings.Windows)
	windows := make([]Window, o.settings.Windows)
	for i := range windows {
		winStart := start.Add(windowSpan * time.Duration(i))
		winEnd := winStart.Add(windowSpan)
		isSpan := time.Duration(float64(windowSpan) * o.settings.InSampleRatio)
		windows[i] = Window{
			Index:            i,
			InSampleStart:    winStart,
			InSampleEnd:      winStart.Add(isSpan),
			OutOfSampleStart: winStart.Add(isSpan),
			OutOfSampleEnd:   winEnd,
		}
	}
	return windows
}

// runWindow grid-searches the in-sample slice concurrently and replays the
// winner on the out-of-sample slice. Each combination receives a seed
// derived from the template seed plus its grid index so parallel execution
// is bit-identical to sequential
func (o *Optimizer) runWindow(handler *data.Handler, w *Window, combinations []map[string]any) error {
	type comboOutcome struct {
		result *statistics.Result
		err    error
	}
	outcomes := make([]comboOutcome, len(combinations))

	var g errgroup.Group
	if o.settings.Workers > 0 {
		g.SetLimit(o.settings.Workers)
	}
	for i := range combinations {
		i := i
		g.Go(func() error {
			res, err := o.backtestSlice(handler, combinations[i],
				w.InSampleStart, w.InSampleEnd, o.cfg.Seed+int64(i))
			outcomes[i] = comboOutcome{result: res, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	best := -1
	bestValue := math.Inf(-1)
	for i := range outcomes {
		if outcomes[i].err != nil {
			log.Warnf(log.WalkForward, "combination %v failed in-sample: %v", combinations[i], outcomes[i].err)
			continue
		}
		res := outcomes[i].result
		if res.Metrics.TotalTrades < o.settings.MinTrades {
			// below the floor means disqualified, not penalised
			continue
		}
		if v := metricValue(res, o.settings.Metric); v > bestValue {
			bestValue = v
			best = i
		}
	}
	if best < 0 {
		return ErrNoViableCombination
	}

	w.BestParams = combinations[best]
	w.InSampleResult = outcomes[best].result

	oosResult, err := o.backtestSlice(handler, w.BestParams,
		w.OutOfSampleStart, w.OutOfSampleEnd, o.cfg.Seed)
	if err != nil {
		return fmt.Errorf("out-of-sample replay: %w", err)
	}
	w.OutOfSampleResult = oosResult
	return nil
}

func (o *Optimizer) backtestSlice(handler *data.Handler, params map[string]any, start, end time.Time, seed int64) (*statistics.Result, error) {
	sliced, err := handler.Slice(start, end)
	if err != nil {
		return nil, err
	}
	cfg := o.cfg
	cfg.StartDate = time.Time{}
	cfg.EndDate = time.Time{}
	cfg.Seed = seed
	bt, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := bt.LoadData(sliced); err != nil {
		return nil, err
	}
	strategy, err := o.factory(params)
	if err != nil {
		return nil, err
	}
	return bt.Run(strategy)
}

// combine chains each window's out-of-sample equity curve, rescaling every
// window so its start equals the previous window's end, then recomputes
// the combined metrics from the concatenated returns. Duplicate timestamps
// at window boundaries keep the first occurrence
func (o *Optimizer) combine(result *Result) {
	scale := 1.0
	seen := make(map[time.Time]struct{})
	for i := range result.Windows {
		oos := result.Windows[i].OutOfSampleResult
		if oos == nil || len(oos.EquityCurve) == 0 {
			continue
		}
		windowStart, _ := oos.EquityCurve[0].Equity.Float64()
		if len(result.CombinedEquity) > 0 && windowStart > 0 {
			scale = result.CombinedEquity[len(result.CombinedEquity)-1].Value / windowStart
		}
		for j := range oos.EquityCurve {
			ts := oos.EquityCurve[j].Time
			if _, dup := seen[ts]; dup {
				continue
			}
			seen[ts] = struct{}{}
			equity, _ := oos.EquityCurve[j].Equity.Float64()
			result.CombinedEquity = append(result.CombinedEquity, EquityPoint{Time: ts, Value: equity * scale})
		}
	}
	sort.Slice(result.CombinedEquity, func(i, j int) bool {
		return result.CombinedEquity[i].Time.Before(result.CombinedEquity[j].Time)
	})

	for i := 1; i < len(result.CombinedEquity); i++ {
		prev := result.CombinedEquity[i-1].Value
		if prev == 0 {
			result.CombinedReturns = append(result.CombinedReturns, 0)
			continue
		}
		result.CombinedReturns = append(result.CombinedReturns,
			(result.CombinedEquity[i].Value-prev)/prev)
	}

	if len(result.CombinedEquity) < 2 {
		return
	}
	first := result.CombinedEquity[0]
	last := result.CombinedEquity[len(result.CombinedEquity)-1]
	if first.Value > 0 {
		result.Combined.TotalReturn = (last.Value - first.Value) / first.Value
	}
	elapsedDays := last.Time.Sub(first.Time).Hours() / 24
	result.Combined.CAGR = gctmath.CalculateCompoundAnnualGrowthRate(first.Value, last.Value, elapsedDays)
	riskFreePerDay := o.cfg.RiskFreeRate.InexactFloat64() / statistics.TradingDaysPerYear
	result.Combined.SharpeRatio = gctmath.CalculateSharpeRatio(result.CombinedReturns, riskFreePerDay) *
		math.Sqrt(statistics.TradingDaysPerYear)
	result.Combined.MaxDrawdown = maxDrawdownOf(result.CombinedEquity)
}

// assess computes the efficiency ratio, out-of-sample Sharpe over the mean
// in-sample Sharpe, and attaches the advisory robustness label
func (o *Optimizer) assess(result *Result) {
	var inSampleSharpes []float64
	for i := range result.Windows {
		if is := result.Windows[i].InSampleResult; is != nil {
			inSampleSharpes = append(inSampleSharpes, is.Metrics.SharpeRatio)
		}
	}
	result.MeanInSampleSharpe = gctmath.ArithmeticAverage(inSampleSharpes)
	if result.MeanInSampleSharpe != 0 {
		result.EfficiencyRatio = result.Combined.SharpeRatio / result.MeanInSampleSharpe
	}
	switch {
	case result.EfficiencyRatio >= 0.5:
		result.Assessment = "robust: out-of-sample performance holds up"
	case result.EfficiencyRatio < 0.3:
		result.Assessment = "likely overfit: out-of-sample performance collapses"
	default:
		result.Assessment = "marginal: inspect per-window results"
	}
}

func maxDrawdownOf(points []EquityPoint) float64 {
	var maxDrawdown float64
	var peak float64
	for i := range points {
		if points[i].Value > peak {
			peak = points[i].Value
		}
		if peak > 0 {
			dd := (points[i].Value - peak) / peak
			if dd < maxDrawdown {
				maxDrawdown = dd
			}
		}
	}
	return maxDrawdown
}

func metricValue(res *statistics.Result, metric OptimizeMetric) float64 {
	switch metric {
	case CAGR:
		return res.Metrics.CAGR
	case Sortino:
		return res.Metrics.SortinoRatio
	default:
		return res.Metrics.SharpeRatio
	}
}

// expandGrid produces every combination of the parameter dictionary in a
// deterministic order: keys sorted, rightmost key varying fastest
func expandGrid(grid map[string][]any) []map[string]any {
	keys := make([]string, 0, len(grid))
	for k := range grid {
		if len(grid[k]) == 0 {
			return nil
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return nil
	}
	combinations := []map[string]any{{}}
	for _, k := range keys {
		var next []map[string]any
		for _, base := range combinations {
			for _, v := range grid[k] {
				combo := make(map[string]any, len(base)+1)
				for bk, bv := range base {
					combo[bk] = bv
				}
				combo[k] = v
				next = append(next, combo)
			}
		}
		combinations = next
	}
	return combinations
}

// parameterStability reports mean, standard deviation and coefficient of
// variation per numeric parameter across windows, or the modal value for
// non-numeric ones
func parameterStability(windows []Window) map[string]ParameterStability {
	stability := make(map[string]ParameterStability)
	values := make(map[string][]any)
	for i := range windows {
		for k, v := range windows[i].BestParams {
			values[k] = append(values[k], v)
		}
	}
	for k, vals := range values {
		var numeric []float64
		allNumeric := true
		for _, v := range vals {
			f, ok := asFloat(v)
			if !ok {
				allNumeric = false
				break
			}
			numeric = append(numeric, f)
		}
		if allNumeric {
			mean := gctmath.ArithmeticAverage(numeric)
			std := gctmath.SampleStandardDeviation(numeric)
			cv := 0.0
			if mean != 0 {
				cv = std / math.Abs(mean)
			}
			stability[k] = ParameterStability{Numeric: true, Mean: mean, Std: std, CoefficientOfVariation: cv}
			continue
		}
		stability[k] = ParameterStability{ModalValue: modalValue(vals)}
	}
	return stability
}

func asFloat(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	}
	return 0, false
}

func modalValue(vals []any) any {
	counts := make(map[string]int)
	byKey := make(map[string]any)
	for _, v := range vals {
		key := fmt.Sprint(v)
		counts[key]++
		byKey[key] = v
	}
	var bestKey string
	var bestCount int
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > bestCount {
			bestCount = counts[k]
			bestKey = k
		}
	}
	return byKey[bestKey]
}
