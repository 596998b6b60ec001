// Package costs prices the friction of a prospective fill: commission,
// spread and market impact, and sell-side regulatory fees
package costs

import (
	"github.com/shopspring/decimal"

	"github.com/ghantakiran/axion-stock-sub003/data"
	"github.com/ghantakiran/axion-stock-sub003/order"
)

var (
	oneHundred  = decimal.NewFromInt(100)
	tenThousand = decimal.NewFromInt(10000)
	two         = decimal.NewFromInt(2)
)

// DefaultSettings returns the documented defaults: zero commission, one
// basis point minimum spread, ten basis points of impact per one percent of
// the bar's traded value, and current SEC/FINRA rates
func DefaultSettings() Settings {
	return Settings{
		SpreadBasisPoints:              decimal.NewFromInt(1),
		ImpactBasisPointsPerPercentADV: decimal.NewFromInt(10),
		SECFeeRate:                     decimal.NewFromFloat(0.0000278),
		FINRAFeePerShare:               decimal.NewFromFloat(0.000166),
	}
}

// NewModel returns a cost model using the supplied coefficients
func NewModel(settings Settings) *Model {
	return &Model{settings: settings}
}

// Settings returns the model's coefficients
func (m *Model) Settings() Settings {
	return m.settings
}

// Calculate returns commission, slippage and regulatory fees for a
// prospective fill of amount at price against the supplied bar. All three
// results are non-negative
func (m *Model) Calculate(side order.Side, amount, price decimal.Decimal, bar *data.BarData) (commission, slippage, fees decimal.Decimal) {
	if amount.LessThanOrEqual(decimal.Zero) || price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero, decimal.Zero
	}
	notional := amount.Mul(price)
	commission = m.calculateCommission(amount, notional)
	slippage = m.calculateSlippage(notional, bar)
	fees = m.calculateRegulatoryFees(side, amount, notional)
	return commission, slippage, fees
}

func (m *Model) calculateCommission(amount, notional decimal.Decimal) decimal.Decimal {
	perShare := m.settings.CommissionPerShare.Mul(amount)
	percent := m.settings.CommissionPercent.Div(oneHundred).Mul(notional)
	return perShare.Add(m.settings.CommissionFlat).Add(percent)
}

// calculateSlippage prices half the quoted spread plus market impact linear
// in the order's participation of the bar's traded value. Impact is zero
// when the bar traded no volume
func (m *Model) calculateSlippage(notional decimal.Decimal, bar *data.BarData) decimal.Decimal {
	halfSpread := m.settings.SpreadBasisPoints.Div(two).Div(tenThousand).Mul(notional)
	if bar == nil || bar.Volume.LessThanOrEqual(decimal.Zero) || bar.Close.LessThanOrEqual(decimal.Zero) {
		return halfSpread
	}
	barValue := bar.Volume.Mul(bar.Close)
	participationPct := notional.Div(barValue).Mul(oneHundred)
	impactBps := participationPct.Mul(m.settings.ImpactBasisPointsPerPercentADV)
	impact := impactBps.Div(tenThousand).Mul(notional)
	return halfSpread.Add(impact)
}

// calculateRegulatoryFees applies the SEC ad-valorem fee and the FINRA
// trading activity fee. Both attach to sells only
func (m *Model) calculateRegulatoryFees(side order.Side, amount, notional decimal.Decimal) decimal.Decimal {
	if side != order.Sell {
		return decimal.Zero
	}
	sec := m.settings.SECFeeRate.Mul(notional)
	finra := m.settings.FINRAFeePerShare.Mul(amount)
	return sec.Add(finra)
}
