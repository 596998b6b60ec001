package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2023, 1, d, 0, 0, 0, 0, time.UTC)
}

func testHandler(t *testing.T) *Handler {
	t.Helper()
	h, err := NewHandlerFromCloses(
		[]time.Time{day(1), day(2), day(3), day(4)},
		map[string][]decimal.Decimal{
			"AAPL": {decimal.NewFromInt(100), decimal.NewFromInt(110), decimal.NewFromInt(99), decimal.NewFromInt(121)},
			"MSFT": {decimal.NewFromInt(200), decimal.NewFromInt(210), decimal.NewFromInt(205), decimal.NewFromInt(220)},
		})
	require.NoError(t, err)
	return h
}

func TestBarDataValidate(t *testing.T) {
	t.Parallel()
	b := BarData{Symbol: "AAPL", Time: day(1), Close: decimal.NewFromInt(100)}
	assert.NoError(t, b.Validate())

	b.Symbol = ""
	assert.ErrorIs(t, b.Validate(), ErrInvalidBar)
	b.Symbol = "AAPL"
	b.Time = time.Time{}
	assert.ErrorIs(t, b.Validate(), ErrInvalidBar)
	b.Time = day(1)
	b.Close = decimal.Zero
	assert.ErrorIs(t, b.Validate(), ErrInvalidBar)
}

func TestBarDataDerivedPrices(t *testing.T) {
	t.Parallel()
	b := BarData{
		Open:  decimal.NewFromInt(10),
		High:  decimal.NewFromInt(20),
		Low:   decimal.NewFromInt(8),
		Close: decimal.NewFromInt(14),
	}
	assert.True(t, b.TypicalPrice().Equal(decimal.NewFromInt(14)))
	assert.True(t, b.AveragePrice().Equal(decimal.NewFromInt(13)))
}

func TestNewHandlerFromCloses(t *testing.T) {
	t.Parallel()
	_, err := NewHandlerFromCloses(nil, nil)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = NewHandlerFromCloses(
		[]time.Time{day(1), day(2)},
		map[string][]decimal.Decimal{"AAPL": {decimal.NewFromInt(100)}})
	assert.ErrorIs(t, err, errMismatchedSeries)

	h := testHandler(t)
	assert.Equal(t, 4, h.Len())
	assert.Equal(t, day(1), h.Start())
	assert.Equal(t, day(4), h.End())
	assert.Equal(t, []string{"AAPL", "MSFT"}, h.Symbols())
}

func TestHandlerIteration(t *testing.T) {
	t.Parallel()
	h := testHandler(t)

	_, ok := h.Latest()
	assert.False(t, ok)

	var seen []time.Time
	for e, ok := h.Next(); ok; e, ok = h.Next() {
		seen = append(seen, e.Time)
		assert.Len(t, e.Bars, 2)
	}
	assert.Equal(t, []time.Time{day(1), day(2), day(3), day(4)}, seen)

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, day(4), latest.Time)

	h.Reset()
	e, ok := h.Next()
	require.True(t, ok)
	assert.Equal(t, day(1), e.Time)
}

func TestHandlerSlice(t *testing.T) {
	t.Parallel()
	h := testHandler(t)

	// end is exclusive
	sliced, err := h.Slice(day(2), day(4))
	require.NoError(t, err)
	assert.Equal(t, 2, sliced.Len())
	assert.Equal(t, day(2), sliced.Start())
	assert.Equal(t, day(3), sliced.End())

	_, err = h.Slice(day(10), day(20))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestReturnSeries(t *testing.T) {
	t.Parallel()
	h := testHandler(t)
	returns := h.ReturnSeries("AAPL")
	require.Len(t, returns, 3)
	assert.InDelta(t, 0.1, returns[0], 1e-9)
	assert.InDelta(t, -0.1, returns[1], 1e-9)
	assert.InDelta(t, 2.0/9.0, returns[2], 1e-9)

	assert.Nil(t, h.ReturnSeries("UNKNOWN"))
}

func TestNewHandlerFromCSV(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "prices.csv")
	contents := "date,AAPL,MSFT\n" +
		"2023-01-01,100,200\n" +
		"2023-01-02,110,210\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	h, err := NewHandlerFromCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []string{"AAPL", "MSFT"}, h.Symbols())

	closes := h.CloseSeries("MSFT")
	require.Len(t, closes, 2)
	assert.True(t, closes[1].Equal(decimal.NewFromInt(210)))

	_, err = NewHandlerFromCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()
	ts, err := parseTimestamp("2023-06-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 6, 5, 0, 0, 0, 0, time.UTC), ts)

	ts, err = parseTimestamp("2023-06-05T13:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 13, ts.Hour())

	_, err = parseTimestamp("05/06/2023")
	assert.Error(t, err)
}
