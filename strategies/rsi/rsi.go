// Package rsi is the bundled reference strategy. It buys a symbol to a
// target weight when the relative strength index signals oversold and exits
// when it signals overbought
package rsi

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-ta/indicators"

	"github.com/ghantakiran/axion-stock-sub003/data"
	"github.com/ghantakiran/axion-stock-sub003/portfolio"
	"github.com/ghantakiran/axion-stock-sub003/signal"
	"github.com/ghantakiran/axion-stock-sub003/strategies/base"
)

const (
	// Name is the strategy name
	Name            = "rsi"
	rsiPeriodKey    = "rsi-period"
	rsiLowKey       = "rsi-low"
	rsiHighKey      = "rsi-high"
	targetWeightKey = "target-weight"
	description     = `The relative strength index is a technical indicator charting the strength or weakness of recent closing prices. This strategy buys oversold symbols to a target weight and exits them when overbought`
)

// Strategy is an implementation of the strategies.Handler interface
type Strategy struct {
	base.Strategy
	rsiPeriod    int
	rsiLow       decimal.Decimal
	rsiHigh      decimal.Decimal
	targetWeight decimal.Decimal
	closes       map[string][]float64
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// SetDefaults sets the custom settings to their default values
func (s *Strategy) SetDefaults() {
	s.rsiPeriod = 14
	s.rsiLow = decimal.NewFromInt(30)
	s.rsiHigh = decimal.NewFromInt(70)
	s.targetWeight = decimal.NewFromFloat(0.1)
	s.closes = make(map[string][]float64)
}

// OnBar appends the event's closes to the per-symbol history and emits one
// signal per symbol whose RSI crosses a threshold. Symbols without a bar
// this event are skipped
func (s *Strategy) OnBar(event *data.MarketEvent, view portfolio.View) ([]signal.Signal, error) {
	if event == nil {
		return nil, nil
	}
	if s.closes == nil {
		s.closes = make(map[string][]float64)
	}
	symbols := make([]string, 0, len(event.Bars))
	for symbol := range event.Bars {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var signals []signal.Signal
	for _, symbol := range symbols {
		bar := event.Bars[symbol]
		closePrice, _ := bar.Close.Float64()
		s.closes[symbol] = append(s.closes[symbol], closePrice)
		if len(s.closes[symbol]) <= s.rsiPeriod {
			continue
		}
		values := indicators.RSI(s.closes[symbol], s.rsiPeriod)
		latest := decimal.NewFromFloat(values[len(values)-1])
		_, held := view.GetPosition(symbol)
		switch {
		case latest.LessThanOrEqual(s.rsiLow) && !held:
			signals = append(signals, signal.NewTargetWeight(symbol, s.targetWeight,
				fmt.Sprintf("RSI at %v, oversold", latest)))
		case latest.GreaterThanOrEqual(s.rsiHigh) && held:
			signals = append(signals, signal.NewTargetShares(symbol, decimal.Zero,
				fmt.Sprintf("RSI at %v, overbought", latest)))
		}
	}
	return signals, nil
}

// SetCustomSettings allows a user to modify the RSI limits in their config
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	for k, v := range customSettings {
		value, ok := toFloat(v)
		if !ok || value <= 0 {
			return fmt.Errorf("%w: %v value could not be parsed: %v", base.ErrInvalidCustomSettings, k, v)
		}
		switch k {
		case rsiHighKey:
			s.rsiHigh = decimal.NewFromFloat(value)
		case rsiLowKey:
			s.rsiLow = decimal.NewFromFloat(value)
		case rsiPeriodKey:
			s.rsiPeriod = int(value)
		case targetWeightKey:
			s.targetWeight = decimal.NewFromFloat(value)
		default:
			return fmt.Errorf("%w: unrecognised key %v", base.ErrInvalidCustomSettings, k)
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	}
	return 0, false
}
