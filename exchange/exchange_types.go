package exchange

import (
	"errors"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/ghantakiran/axion-stock-sub003/costs"
)

// FillPolicy selects how the simulator prices and sizes executions
type FillPolicy string

const (
	// Immediate fills the full remaining amount at bar close
	Immediate FillPolicy = "immediate"
	// VWAP fills at the bar's volume weighted price, falling back to the
	// typical price when no vwap was supplied
	VWAP FillPolicy = "vwap"
	// VolumeParticipation fills at the average of open, high, low and close
	VolumeParticipation FillPolicy = "volume_participation"
	// Slippage fills at close perturbed by a seeded uniform draw applied
	// adversely to the order side
	Slippage FillPolicy = "slippage"
	// LimitPolicy fills only when the bar touches the order's limit price
	LimitPolicy FillPolicy = "limit"
)

var (
	// ErrUnknownFillPolicy is raised at construction for a policy outside
	// the closed set
	ErrUnknownFillPolicy = errors.New("unknown fill policy")
	errNilOrder          = errors.New("nil order received")
)

// Settings configures the execution simulator
type Settings struct {
	Policy FillPolicy
	// MaxParticipationRate caps a fill at this fraction of bar volume
	MaxParticipationRate decimal.Decimal
	// SlippageBasisPoints bounds the uniform adverse draw of the slippage
	// policy
	SlippageBasisPoints decimal.Decimal
	AllowPartialFills   bool
	Seed                int64
}

// Simulator turns a pending order and the current bar into at most one fill
type Simulator struct {
	settings Settings
	costs    *costs.Model
	rng      *rand.Rand
}

// ValidFillPolicy reports whether the supplied policy is in the closed set
func ValidFillPolicy(p FillPolicy) bool {
	switch p {
	case Immediate, VWAP, VolumeParticipation, Slippage, LimitPolicy:
		return true
	}
	return false
}
