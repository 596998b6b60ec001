package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// TypicalPrice returns (high + low + close) / 3, the fallback price for
// vwap-based execution when no vwap was supplied
func (b *BarData) TypicalPrice() decimal.Decimal {
	return b.High.Add(b.Low).Add(b.Close).Div(decimal.NewFromInt(3))
}

// AveragePrice returns the mean of open, high, low and close
func (b *BarData) AveragePrice() decimal.Decimal {
	return b.Open.Add(b.High).Add(b.Low).Add(b.Close).Div(decimal.NewFromInt(4))
}

// Validate performs basic sanity checks on a bar
func (b *BarData) Validate() error {
	if b.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidBar)
	}
	if b.Time.IsZero() {
		return fmt.Errorf("%w: %s has no timestamp", ErrInvalidBar, b.Symbol)
	}
	if b.Close.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %s close must be positive", ErrInvalidBar, b.Symbol)
	}
	return nil
}

// NewHandlerFromBars groups per-symbol bars into market events sorted by
// timestamp. Bars sharing a timestamp across symbols land in the same event
func NewHandlerFromBars(series map[string][]BarData) (*Handler, error) {
	if len(series) == 0 {
		return nil, ErrNoData
	}
	grouped := make(map[time.Time]map[string]BarData)
	for symbol, bars := range series {
		for i := range bars {
			b := bars[i]
			b.Symbol = symbol
			if err := b.Validate(); err != nil {
				return nil, err
			}
			if grouped[b.Time] == nil {
				grouped[b.Time] = make(map[string]BarData)
			}
			grouped[b.Time][symbol] = b
		}
	}
	events := make([]MarketEvent, 0, len(grouped))
	for ts, bars := range grouped {
		events = append(events, MarketEvent{Time: ts, Bars: bars})
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})
	if len(events) == 0 {
		return nil, ErrNoData
	}
	return &Handler{events: events}, nil
}

// NewHandlerFromCloses builds a handler from a close-price table, one column
// per symbol. Synthetic bars carry the close as open/high/low and no volume
func NewHandlerFromCloses(timestamps []time.Time, closes map[string][]decimal.Decimal) (*Handler, error) {
	if len(timestamps) == 0 || len(closes) == 0 {
		return nil, ErrNoData
	}
	series := make(map[string][]BarData, len(closes))
	for symbol, prices := range closes {
		if len(prices) != len(timestamps) {
			return nil, fmt.Errorf("%w: %s has %d values for %d timestamps",
				errMismatchedSeries, symbol, len(prices), len(timestamps))
		}
		bars := make([]BarData, len(prices))
		for i := range prices {
			bars[i] = BarData{
				Symbol: symbol,
				Time:   timestamps[i],
				Open:   prices[i],
				High:   prices[i],
				Low:    prices[i],
				Close:  prices[i],
			}
		}
		series[symbol] = bars
	}
	return NewHandlerFromBars(series)
}

// NewHandlerFromCSV reads a close-price table where the first column is an
// RFC3339 or date-only timestamp and every further column is a symbol
func NewHandlerFromCSV(path string) (*Handler, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open price table")
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "could not parse price table")
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, ErrNoData
	}
	symbols := records[0][1:]
	timestamps := make([]time.Time, 0, len(records)-1)
	closes := make(map[string][]decimal.Decimal, len(symbols))
	for _, row := range records[1:] {
		if len(row) != len(symbols)+1 {
			return nil, errors.Errorf("row for %q has %d columns, expected %d", row[0], len(row), len(symbols)+1)
		}
		ts, err := parseTimestamp(row[0])
		if err != nil {
			return nil, err
		}
		timestamps = append(timestamps, ts)
		for i, symbol := range symbols {
			price, err := decimal.NewFromString(row[i+1])
			if err != nil {
				return nil, errors.Wrapf(err, "bad price for %s at %s", symbol, row[0])
			}
			closes[symbol] = append(closes[symbol], price)
		}
	}
	return NewHandlerFromCloses(timestamps, closes)
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errors.Errorf("unrecognised timestamp %q", s)
}

// Next returns the following market event, advancing the offset
func (h *Handler) Next() (MarketEvent, bool) {
	if h.offset >= len(h.events) {
		return MarketEvent{}, false
	}
	e := h.events[h.offset]
	h.offset++
	return e, true
}

// Latest returns the most recently iterated event without advancing
func (h *Handler) Latest() (MarketEvent, bool) {
	if h.offset == 0 {
		return MarketEvent{}, false
	}
	return h.events[h.offset-1], true
}

// Reset rewinds iteration so the handler can be replayed
func (h *Handler) Reset() {
	h.offset = 0
}

// Len returns the number of market events held
func (h *Handler) Len() int {
	return len(h.events)
}

// Start returns the timestamp of the first event
func (h *Handler) Start() time.Time {
	if len(h.events) == 0 {
		return time.Time{}
	}
	return h.events[0].Time
}

// End returns the timestamp of the final event
func (h *Handler) End() time.Time {
	if len(h.events) == 0 {
		return time.Time{}
	}
	return h.events[len(h.events)-1].Time
}

// Symbols returns every symbol observed across all events, sorted
func (h *Handler) Symbols() []string {
	seen := make(map[string]struct{})
	for i := range h.events {
		for symbol := range h.events[i].Bars {
			seen[symbol] = struct{}{}
		}
	}
	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Slice returns a new handler restricted to events within [start, end).
// The underlying events are shared, the offset is not
func (h *Handler) Slice(start, end time.Time) (*Handler, error) {
	var events []MarketEvent
	for i := range h.events {
		t := h.events[i].Time
		if (t.Equal(start) || t.After(start)) && t.Before(end) {
			events = append(events, h.events[i])
		}
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w between %s and %s", ErrNoData,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return &Handler{events: events}, nil
}

// CloseSeries extracts the close price per event for one symbol. Events
// missing the symbol are skipped
func (h *Handler) CloseSeries(symbol string) []decimal.Decimal {
	var closes []decimal.Decimal
	for i := range h.events {
		if bar, ok := h.events[i].Bars[symbol]; ok {
			closes = append(closes, bar.Close)
		}
	}
	return closes
}

// ReturnSeries derives per-event fractional close-to-close returns for one
// symbol, used by the Monte Carlo significance test universe
func (h *Handler) ReturnSeries(symbol string) []float64 {
	closes := h.CloseSeries(symbol)
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1].IsZero() {
			returns = append(returns, 0)
			continue
		}
		r, _ := closes[i].Sub(closes[i-1]).Div(closes[i-1]).Float64()
		returns = append(returns, r)
	}
	return returns
}
