// Package strategies defines the strategy contract consumed by the engine
// and a registry so implementations can be selected by config name
package strategies

import (
	"fmt"
	"strings"

	"github.com/ghantakiran/axion-stock-sub003/strategies/rsi"
)

// GetStrategies returns every bundled strategy with defaults applied
func GetStrategies() []Handler {
	rsiStrategy := &rsi.Strategy{}
	rsiStrategy.SetDefaults()
	return []Handler{rsiStrategy}
}

// LoadStrategyByName returns the bundled strategy matching name
func LoadStrategyByName(name string) (Handler, error) {
	for _, s := range GetStrategies() {
		if strings.EqualFold(s.Name(), name) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrStrategyNotFound, name)
}
