// Package base provides the shared behaviour strategies embed: a no-op fill
// callback and empty custom settings handling, so implementations only
// override what they use
package base

import (
	"errors"

	"github.com/ghantakiran/axion-stock-sub003/fill"
)

// ErrInvalidCustomSettings is returned when supplied strategy parameters
// could not be applied
var ErrInvalidCustomSettings = errors.New("invalid custom settings")

// Strategy is embedded by concrete strategies
type Strategy struct{}

// OnFill is an optional notification, the default does nothing
func (s *Strategy) OnFill(_ *fill.Fill) {}

// SetCustomSettings rejects nothing by default
func (s *Strategy) SetCustomSettings(_ map[string]any) error {
	return nil
}
