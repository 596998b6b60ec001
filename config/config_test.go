package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghantakiran/axion-stock-sub003/exchange"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, Monthly, cfg.RebalanceFrequency)
	assert.Equal(t, int64(42), cfg.Seed)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.StartDate = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	cfg.EndDate = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.ErrorIs(t, cfg.Validate(), ErrBadDateRange)

	cfg = Default()
	cfg.InitialCapital = decimal.Zero
	assert.ErrorIs(t, cfg.Validate(), ErrBadInitialCapital)

	cfg = Default()
	cfg.RebalanceFrequency = "fortnightly"
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownRebalanceFrequency)

	cfg = Default()
	cfg.Execution.Policy = "midpoint"
	assert.ErrorIs(t, cfg.Validate(), exchange.ErrUnknownFillPolicy)

	cfg = Default()
	cfg.Execution.MaxParticipationRate = decimal.NewFromFloat(-0.1)
	assert.ErrorIs(t, cfg.Validate(), errNegativeParticipation)
}

func TestRebalanceDue(t *testing.T) {
	t.Parallel()
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	// a zero last rebalance is always due
	assert.True(t, Monthly.Due(time.Time{}, date(2023, 1, 2)))

	// monthly: same month within 28 days holds, a month boundary opens
	assert.False(t, Monthly.Due(date(2023, 1, 2), date(2023, 1, 20)))
	assert.True(t, Monthly.Due(date(2023, 1, 31), date(2023, 2, 1)))
	// 28 elapsed days open the gate even inside a long month
	assert.True(t, Monthly.Due(date(2023, 1, 1), date(2023, 1, 29)))

	assert.False(t, Daily.Due(date(2023, 1, 2), date(2023, 1, 2)))
	assert.True(t, Daily.Due(date(2023, 1, 2), date(2023, 1, 3)))

	// weekly: monday to friday is the same ISO week
	assert.False(t, Weekly.Due(date(2023, 1, 2), date(2023, 1, 6)))
	assert.True(t, Weekly.Due(date(2023, 1, 6), date(2023, 1, 9)))

	assert.False(t, Quarterly.Due(date(2023, 1, 2), date(2023, 3, 20)))
	assert.True(t, Quarterly.Due(date(2023, 3, 20), date(2023, 4, 3)))

	assert.False(t, Yearly.Due(date(2023, 1, 2), date(2023, 11, 1)))
	assert.True(t, Yearly.Due(date(2023, 11, 1), date(2024, 1, 2)))
}

func TestRebalanceFrequencyValid(t *testing.T) {
	t.Parallel()
	for _, f := range []RebalanceFrequency{Daily, Weekly, Monthly, Quarterly, Yearly} {
		assert.True(t, f.Valid())
	}
	assert.False(t, RebalanceFrequency("hourly").Valid())
}

func TestReadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	contents := `{
		"initial-capital": 250000,
		"benchmark-symbol": "SPY",
		"rebalance-frequency": "weekly",
		"seed": 7,
		"execution": {
			"policy": "immediate"
		},
		"strategy": {
			"name": "rsi",
			"custom-settings": {"rsi-period": 10}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := ReadConfigFromFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.InitialCapital.Equal(decimal.NewFromInt(250000)))
	assert.Equal(t, "SPY", cfg.BenchmarkSymbol)
	assert.Equal(t, Weekly, cfg.RebalanceFrequency)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, "rsi", cfg.Strategy.Name)

	_, err = ReadConfigFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("BACKTESTER_SEED", "99")
	t.Setenv("BACKTESTER_INITIAL_CAPITAL", "50000")
	t.Setenv("BACKTESTER_BENCHMARK_SYMBOL", "QQQ")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnvironment())
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, int64(99), cfg.Execution.Seed)
	assert.True(t, cfg.InitialCapital.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, "QQQ", cfg.BenchmarkSymbol)

	t.Setenv("BACKTESTER_INITIAL_CAPITAL", "not-a-number")
	assert.Error(t, cfg.ApplyEnvironment())
}
