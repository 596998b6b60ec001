package walkforward

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghantakiran/axion-stock-sub003/config"
	"github.com/ghantakiran/axion-stock-sub003/costs"
	"github.com/ghantakiran/axion-stock-sub003/data"
	"github.com/ghantakiran/axion-stock-sub003/exchange"
	"github.com/ghantakiran/axion-stock-sub003/fill"
	"github.com/ghantakiran/axion-stock-sub003/portfolio"
	"github.com/ghantakiran/axion-stock-sub003/risk"
	"github.com/ghantakiran/axion-stock-sub003/signal"
	"github.com/ghantakiran/axion-stock-sub003/statistics"
	"github.com/ghantakiran/axion-stock-sub003/strategies"
)

// sizedBuyer buys a parameterised share count on its first rebalance call
type sizedBuyer struct {
	shares int64
	called bool
}

func (s *sizedBuyer) Name() string        { return "sized-buyer" }
func (s *sizedBuyer) Description() string { return "test scaffolding" }

func (s *sizedBuyer) OnBar(event *data.MarketEvent, _ portfolio.View) ([]signal.Signal, error) {
	if s.called {
		return nil, nil
	}
	s.called = true
	var signals []signal.Signal
	for symbol := range event.Bars {
		signals = append(signals, signal.NewDirect(symbol, "BUY", decimal.NewFromInt(s.shares), "scripted entry"))
	}
	return signals, nil
}

func (s *sizedBuyer) OnFill(*fill.Fill) {}

func (s *sizedBuyer) SetCustomSettings(map[string]any) error { return nil }

func (s *sizedBuyer) SetDefaults() {}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.InitialCapital = decimal.NewFromInt(10000)
	cfg.RebalanceFrequency = config.Daily
	cfg.Costs = costs.Settings{}
	cfg.Execution = exchange.Settings{Policy: exchange.Immediate, AllowPartialFills: true}
	cfg.Risk = risk.Settings{}
	cfg.Seed = 1
	return cfg
}

func sizedFactory(params map[string]any) (strategies.Handler, error) {
	shares, _ := params["shares"].(int)
	return &sizedBuyer{shares: int64(shares)}, nil
}

func day(d int) time.Time {
	return time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d-1)
}

func trendingHandler(t *testing.T, days int) *data.Handler {
	t.Helper()
	timestamps := make([]time.Time, days)
	closes := make([]decimal.Decimal, days)
	for i := 0; i < days; i++ {
		timestamps[i] = day(i + 1)
		closes[i] = decimal.NewFromFloat(100 * math.Pow(1.002, float64(i)))
	}
	h, err := data.NewHandlerFromCloses(timestamps, map[string][]decimal.Decimal{"AAPL": closes})
	require.NoError(t, err)
	return h
}

func TestNewValidation(t *testing.T) {
	t.Parallel()
	cfg := testConfig()

	_, err := New(Settings{Windows: 0}, cfg, sizedFactory)
	assert.ErrorIs(t, err, ErrBadWindowCount)

	_, err = New(Settings{Windows: 2, InSampleRatio: 1.5}, cfg, sizedFactory)
	assert.ErrorIs(t, err, ErrBadInSampleRatio)

	_, err = New(Settings{Windows: 2, Metric: "alpha"}, cfg, sizedFactory)
	assert.ErrorIs(t, err, ErrUnknownMetric)

	_, err = New(Settings{Windows: 2}, cfg, nil)
	assert.Error(t, err)
}

func TestExpandGrid(t *testing.T) {
	t.Parallel()
	assert.Nil(t, expandGrid(nil))
	assert.Nil(t, expandGrid(map[string][]any{"a": {}}))

	combos := expandGrid(map[string][]any{
		"b": {10},
		"a": {1, 2},
	})
	require.Len(t, combos, 2)
	// keys iterate sorted so ordering is stable
	assert.Equal(t, map[string]any{"a": 1, "b": 10}, combos[0])
	assert.Equal(t, map[string]any{"a": 2, "b": 10}, combos[1])
}

func TestPartition(t *testing.T) {
	t.Parallel()
	o, err := New(Settings{Windows: 2, InSampleRatio: 0.5}, testConfig(), sizedFactory)
	require.NoError(t, err)

	windows := o.partition(day(1), day(41))
	require.Len(t, windows, 2)
	for i, w := range windows {
		assert.Equal(t, i, w.Index)
		assert.Equal(t, w.InSampleEnd, w.OutOfSampleStart)
		assert.True(t, w.InSampleStart.Before(w.InSampleEnd))
		assert.True(t, w.OutOfSampleStart.Before(w.OutOfSampleEnd))
	}
	// windows tile the range without overlap
	assert.Equal(t, windows[0].OutOfSampleEnd, windows[1].InSampleStart)
	assert.True(t, windows[1].OutOfSampleEnd.After(day(41)))
}

func TestRun(t *testing.T) {
	t.Parallel()
	o, err := New(Settings{
		Windows:       2,
		InSampleRatio: 0.5,
		Metric:        Sharpe,
		Workers:       2,
	}, testConfig(), sizedFactory)
	require.NoError(t, err)

	result, err := o.Run(trendingHandler(t, 40), map[string][]any{"shares": {5, 10}})
	require.NoError(t, err)

	require.Len(t, result.Windows, 2)
	for _, w := range result.Windows {
		assert.Contains(t, w.BestParams, "shares")
		require.NotNil(t, w.InSampleResult)
		require.NotNil(t, w.OutOfSampleResult)
	}
	assert.NotEmpty(t, result.CombinedEquity)
	assert.NotEmpty(t, result.CombinedReturns)
	assert.False(t, math.IsNaN(result.EfficiencyRatio))
	assert.NotEmpty(t, result.Assessment)

	stability, ok := result.Stability["shares"]
	require.True(t, ok)
	assert.True(t, stability.Numeric)
	assert.Positive(t, stability.Mean)
}

func TestRunRejectsEmptyInputs(t *testing.T) {
	t.Parallel()
	o, err := New(Settings{Windows: 2}, testConfig(), sizedFactory)
	require.NoError(t, err)

	_, err = o.Run(nil, map[string][]any{"shares": {5}})
	assert.ErrorIs(t, err, data.ErrNoData)

	_, err = o.Run(trendingHandler(t, 40), nil)
	assert.ErrorIs(t, err, ErrEmptyGrid)
}

func TestMinTradeFloor(t *testing.T) {
	t.Parallel()
	// the buyer never closes a position, so any floor disqualifies it
	o, err := New(Settings{Windows: 2, MinTrades: 1}, testConfig(), sizedFactory)
	require.NoError(t, err)

	_, err = o.Run(trendingHandler(t, 40), map[string][]any{"shares": {5}})
	assert.ErrorIs(t, err, ErrNoViableCombination)
}

func TestCombineChainsWindows(t *testing.T) {
	t.Parallel()
	o, err := New(Settings{Windows: 2}, testConfig(), sizedFactory)
	require.NoError(t, err)

	curve := func(times []time.Time, equities []int64) *statistics.Result {
		snaps := make([]portfolio.Snapshot, len(times))
		for i := range times {
			snaps[i] = portfolio.Snapshot{Time: times[i], Equity: decimal.NewFromInt(equities[i])}
		}
		return &statistics.Result{EquityCurve: snaps}
	}
	result := &Result{Windows: []Window{
		{OutOfSampleResult: curve([]time.Time{day(1), day(2)}, []int64{100, 110})},
		// a different absolute level rescales onto the chained end
		{OutOfSampleResult: curve([]time.Time{day(3), day(4)}, []int64{200, 220})},
	}}
	o.combine(result)

	require.Len(t, result.CombinedEquity, 4)
	assert.InDelta(t, 100, result.CombinedEquity[0].Value, 1e-9)
	assert.InDelta(t, 110, result.CombinedEquity[1].Value, 1e-9)
	assert.InDelta(t, 110, result.CombinedEquity[2].Value, 1e-9)
	assert.InDelta(t, 121, result.CombinedEquity[3].Value, 1e-9)
	assert.InDelta(t, 0.21, result.Combined.TotalReturn, 1e-9)

	require.Len(t, result.CombinedReturns, 3)
	assert.InDelta(t, 0.1, result.CombinedReturns[0], 1e-9)
	assert.InDelta(t, 0.0, result.CombinedReturns[1], 1e-9)
	assert.InDelta(t, 0.1, result.CombinedReturns[2], 1e-9)
}

func TestParameterStability(t *testing.T) {
	t.Parallel()
	windows := []Window{
		{BestParams: map[string]any{"period": 10, "mode": "fast"}},
		{BestParams: map[string]any{"period": 14, "mode": "fast"}},
		{BestParams: map[string]any{"period": 12, "mode": "slow"}},
	}
	stability := parameterStability(windows)

	period := stability["period"]
	assert.True(t, period.Numeric)
	assert.InDelta(t, 12.0, period.Mean, 1e-9)
	assert.Positive(t, period.CoefficientOfVariation)

	mode := stability["mode"]
	assert.False(t, mode.Numeric)
	assert.Equal(t, "fast", mode.ModalValue)
}
