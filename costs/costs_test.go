package costs

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ghantakiran/axion-stock-sub003/data"
	"github.com/ghantakiran/axion-stock-sub003/order"
)

func testBar(volume int64) *data.BarData {
	return &data.BarData{
		Symbol: "AAPL",
		Time:   time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		Close:  decimal.NewFromInt(100),
		Volume: decimal.NewFromInt(volume),
	}
}

func TestCalculateNonPositiveInputs(t *testing.T) {
	t.Parallel()
	m := NewModel(DefaultSettings())
	commission, slippage, fees := m.Calculate(order.Buy, decimal.Zero, decimal.NewFromInt(100), testBar(1000))
	assert.True(t, commission.IsZero())
	assert.True(t, slippage.IsZero())
	assert.True(t, fees.IsZero())
}

func TestCalculateCommission(t *testing.T) {
	t.Parallel()
	m := NewModel(Settings{
		CommissionPerShare: decimal.NewFromFloat(0.005),
		CommissionFlat:     decimal.NewFromInt(1),
		CommissionPercent:  decimal.NewFromFloat(0.1),
	})
	// 100 shares at $100: 0.50 per-share + 1 flat + 10 percent-of-notional
	commission, _, _ := m.Calculate(order.Buy, decimal.NewFromInt(100), decimal.NewFromInt(100), testBar(0))
	assert.True(t, commission.Equal(decimal.NewFromFloat(11.5)), "got %v", commission)
}

func TestCalculateSlippage(t *testing.T) {
	t.Parallel()
	m := NewModel(Settings{
		SpreadBasisPoints:              decimal.NewFromInt(1),
		ImpactBasisPointsPerPercentADV: decimal.NewFromInt(10),
	})
	amount := decimal.NewFromInt(100)
	price := decimal.NewFromInt(100)

	// zero bar volume prices the half spread only
	_, slippage, _ := m.Calculate(order.Buy, amount, price, testBar(0))
	assert.True(t, slippage.Equal(decimal.NewFromFloat(0.5)), "got %v", slippage)

	// 1% participation of a $1m bar adds 10bps of impact on $10k notional
	_, slippage, _ = m.Calculate(order.Buy, amount, price, testBar(10000))
	assert.True(t, slippage.Equal(decimal.NewFromFloat(10.5)), "got %v", slippage)

	// nil bar degrades to the half spread
	_, slippage, _ = m.Calculate(order.Buy, amount, price, nil)
	assert.True(t, slippage.Equal(decimal.NewFromFloat(0.5)), "got %v", slippage)
}

func TestRegulatoryFeesSellOnly(t *testing.T) {
	t.Parallel()
	m := NewModel(DefaultSettings())
	amount := decimal.NewFromInt(100)
	price := decimal.NewFromInt(100)

	_, _, buyFees := m.Calculate(order.Buy, amount, price, testBar(0))
	assert.True(t, buyFees.IsZero())

	_, _, sellFees := m.Calculate(order.Sell, amount, price, testBar(0))
	// SEC 0.0000278 * 10000 + FINRA 0.000166 * 100
	expected := decimal.NewFromFloat(0.278).Add(decimal.NewFromFloat(0.0166))
	assert.True(t, sellFees.Equal(expected), "got %v", sellFees)
}

func TestZeroSettingsAreFree(t *testing.T) {
	t.Parallel()
	m := NewModel(Settings{})
	commission, slippage, fees := m.Calculate(order.Sell, decimal.NewFromInt(100), decimal.NewFromInt(50), testBar(1000))
	assert.True(t, commission.IsZero())
	assert.True(t, slippage.IsZero())
	assert.True(t, fees.IsZero())
}
