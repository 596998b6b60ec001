package costs

import "github.com/shopspring/decimal"

// Settings holds every coefficient of the cost model. All values are
// independently configurable, nothing is hard-coded
type Settings struct {
	// Commission components, applied to both sides
	CommissionPerShare decimal.Decimal `json:"commission-per-share"`
	CommissionFlat     decimal.Decimal `json:"commission-flat"`
	CommissionPercent  decimal.Decimal `json:"commission-percent"`
	// SpreadBasisPoints is the full quoted spread, half is paid per fill
	SpreadBasisPoints decimal.Decimal `json:"spread-basis-points"`
	// ImpactBasisPointsPerPercentADV scales linear market impact by the
	// order's participation in the bar's traded value
	ImpactBasisPointsPerPercentADV decimal.Decimal `json:"impact-basis-points-per-percent-adv"`
	// Regulatory fees, sell side only
	SECFeeRate       decimal.Decimal `json:"sec-fee-rate"`
	FINRAFeePerShare decimal.Decimal `json:"finra-fee-per-share"`
}

// Model computes transaction costs for prospective fills
type Model struct {
	settings Settings
}
