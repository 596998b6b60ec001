package data

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoData is returned when a handler is created with nothing to iterate
	ErrNoData = errors.New("no market data supplied")
	// ErrInvalidBar is returned when a bar fails basic sanity checks
	ErrInvalidBar = errors.New("invalid bar data")
)

var errMismatchedSeries = errors.New("close series length does not match timestamps")

// BarData is a single OHLCV observation for a symbol. Immutable once produced
type BarData struct {
	Symbol string
	Time   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
	// VWAP is optional, zero means the feed did not supply one
	VWAP decimal.Decimal
}

// MarketEvent holds every symbol's bar for one instant and drives a single
// iteration of the engine's event loop
type MarketEvent struct {
	Time time.Time
	Bars map[string]BarData
}

// Handler owns a chronologically sorted stream of market events and the
// iteration offset over them
type Handler struct {
	events []MarketEvent
	offset int
}
