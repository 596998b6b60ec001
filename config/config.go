// Package config loads, defaults and validates the backtester settings.
// Files are read through viper; a handful of scalars can be overridden via
// the environment. Malformed configuration is the one hard failure mode of
// the core and is rejected here, at construction time
package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/kelseyhightower/envconfig"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/ghantakiran/axion-stock-sub003/costs"
	"github.com/ghantakiran/axion-stock-sub003/exchange"
	"github.com/ghantakiran/axion-stock-sub003/risk"
)

// Default returns the documented default configuration: monthly rebalance,
// slippage fill policy, seed 42, zero commission with a one basis point
// spread, and the 15% risk limits
func Default() Config {
	return Config{
		InitialCapital:     decimal.NewFromInt(100000),
		RebalanceFrequency: Monthly,
		Seed:               42,
		Costs:              costs.DefaultSettings(),
		Execution: exchange.Settings{
			Policy:               exchange.Slippage,
			MaxParticipationRate: decimal.NewFromFloat(0.1),
			SlippageBasisPoints:  decimal.NewFromInt(5),
			AllowPartialFills:    true,
			Seed:                 42,
		},
		Risk: risk.DefaultSettings(),
	}
}

// ReadConfigFromFile merges a viper-readable file over the defaults and
// applies environment overrides
func ReadConfigFromFile(path string) (Config, error) {
	cfg := Default()
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return cfg, pkgerrors.Wrap(err, "could not read config")
	}
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decimalDecodeHook())); err != nil {
		return cfg, pkgerrors.Wrap(err, "could not parse config")
	}
	if err := cfg.ApplyEnvironment(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnvironment overlays any environment-supplied scalars
func (c *Config) ApplyEnvironment() error {
	var env EnvOverrides
	if err := envconfig.Process("", &env); err != nil {
		return pkgerrors.Wrap(err, "could not process environment")
	}
	if env.Seed != nil {
		c.Seed = *env.Seed
		c.Execution.Seed = *env.Seed
	}
	if env.InitialCapital != nil {
		capital, err := decimal.NewFromString(*env.InitialCapital)
		if err != nil {
			return pkgerrors.Wrap(err, "bad BACKTESTER_INITIAL_CAPITAL")
		}
		c.InitialCapital = capital
	}
	if env.BenchmarkSymbol != nil {
		c.BenchmarkSymbol = *env.BenchmarkSymbol
	}
	return nil
}

// Validate fails fast on malformed configuration
func (c *Config) Validate() error {
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && !c.EndDate.After(c.StartDate) {
		return fmt.Errorf("%w: %s >= %s", ErrBadDateRange,
			c.StartDate.Format(time.DateOnly), c.EndDate.Format(time.DateOnly))
	}
	if c.InitialCapital.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %v", ErrBadInitialCapital, c.InitialCapital)
	}
	if !c.RebalanceFrequency.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRebalanceFrequency, c.RebalanceFrequency)
	}
	if !exchange.ValidFillPolicy(c.Execution.Policy) {
		return fmt.Errorf("%w: %q", exchange.ErrUnknownFillPolicy, c.Execution.Policy)
	}
	if c.Execution.MaxParticipationRate.IsNegative() {
		return errNegativeParticipation
	}
	return nil
}

// Valid reports whether the frequency is in the closed set
func (r RebalanceFrequency) Valid() bool {
	switch r {
	case Daily, Weekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

// Due reports whether the gate should open at now, given the previous
// rebalance time. Calendar boundaries and elapsed-day fallbacks both open
// the gate, whichever crosses first. A zero last always opens it
func (r RebalanceFrequency) Due(last, now time.Time) bool {
	if last.IsZero() {
		return true
	}
	elapsed := now.Sub(last)
	switch r {
	case Daily:
		return now.YearDay() != last.YearDay() || now.Year() != last.Year()
	case Weekly:
		lastYear, lastWeek := last.ISOWeek()
		nowYear, nowWeek := now.ISOWeek()
		return lastYear != nowYear || lastWeek != nowWeek || elapsed >= 7*24*time.Hour
	case Monthly:
		return now.Month() != last.Month() || now.Year() != last.Year() || elapsed >= 28*24*time.Hour
	case Quarterly:
		return quarterOf(now) != quarterOf(last) || now.Year() != last.Year() || elapsed >= 90*24*time.Hour
	case Yearly:
		return now.Year() != last.Year() || elapsed >= 365*24*time.Hour
	}
	return false
}

func quarterOf(t time.Time) int {
	return (int(t.Month()) - 1) / 3
}

// decimalDecodeHook lets viper parse numeric and string fields into
// decimal.Decimal values
func decimalDecodeHook() func(from, to reflect.Type, v any) (any, error) {
	decimalType := reflect.TypeOf(decimal.Decimal{})
	return func(from, to reflect.Type, v any) (any, error) {
		if to != decimalType {
			return v, nil
		}
		switch value := v.(type) {
		case string:
			return decimal.NewFromString(value)
		case float64:
			return decimal.NewFromFloat(value), nil
		case int:
			return decimal.NewFromInt(int64(value)), nil
		case int64:
			return decimal.NewFromInt(value), nil
		}
		return v, nil
	}
}
