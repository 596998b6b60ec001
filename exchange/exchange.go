// Package exchange simulates order execution against historical bars. It
// owns the fill policy, the participation cap and the seeded random slippage
// draw, and delegates cost calculation to the cost model
package exchange

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/ghantakiran/axion-stock-sub003/costs"
	"github.com/ghantakiran/axion-stock-sub003/data"
	"github.com/ghantakiran/axion-stock-sub003/fill"
	"github.com/ghantakiran/axion-stock-sub003/log"
	"github.com/ghantakiran/axion-stock-sub003/order"
)

var tenThousand = decimal.NewFromInt(10000)

// NewSimulator validates the settings and returns an execution simulator
// owning its own seeded random source for reproducible slippage draws
func NewSimulator(settings Settings, costModel *costs.Model) (*Simulator, error) {
	if !ValidFillPolicy(settings.Policy) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFillPolicy, settings.Policy)
	}
	if costModel == nil {
		costModel = costs.NewModel(costs.DefaultSettings())
	}
	return &Simulator{
		settings: settings,
		costs:    costModel,
		rng:      rand.New(rand.NewSource(settings.Seed)),
	}, nil
}

// Reset reseeds the random source so a rerun draws the same sequence
func (s *Simulator) Reset() {
	s.rng = rand.New(rand.NewSource(s.settings.Seed))
}

// ExecuteOrder determines whether and how much of the order fills against
// the bar and at what price. A zero fillable quantity yields a nil fill,
// not an empty one
func (s *Simulator) ExecuteOrder(o *order.Order, bar *data.BarData) (*fill.Fill, error) {
	if o == nil {
		return nil, errNilOrder
	}
	if !o.IsOpen() {
		return nil, fmt.Errorf("%w: %s", order.ErrOrderClosed, o.ID)
	}
	price, fillable := s.fillPrice(o, bar)
	if !fillable || price.LessThanOrEqual(decimal.Zero) {
		return nil, nil
	}
	amount := s.fillAmount(o.Remaining(), bar)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil
	}
	commission, slippage, fees := s.costs.Calculate(o.Side, amount, price, bar)
	if err := o.ApplyFill(amount, price); err != nil {
		return nil, err
	}
	return &fill.Fill{
		OrderID:    o.ID,
		Symbol:     o.Symbol,
		Side:       o.Side,
		Amount:     amount,
		Price:      price,
		Time:       bar.Time,
		Commission: commission,
		Slippage:   slippage,
		Fees:       fees,
	}, nil
}

// fillPrice prices the execution per the configured policy. Limit orders
// report fillable=false when the bar never touches their limit
func (s *Simulator) fillPrice(o *order.Order, bar *data.BarData) (decimal.Decimal, bool) {
	if o.Type == order.Limit || s.settings.Policy == LimitPolicy {
		return s.limitPrice(o, bar)
	}
	switch s.settings.Policy {
	case Immediate:
		return bar.Close, true
	case VWAP:
		if bar.VWAP.GreaterThan(decimal.Zero) {
			return bar.VWAP, true
		}
		return bar.TypicalPrice(), true
	case VolumeParticipation:
		return bar.AveragePrice(), true
	case Slippage:
		return s.slippagePrice(o.Side, bar.Close), true
	default:
		// construction validates the policy, but an unknown value
		// still degrades to an immediate close fill rather than
		// halting the run
		log.Warnf(log.Exchange, "unrecognised fill policy %q, using close price", s.settings.Policy)
		return bar.Close, true
	}
}

// limitPrice fills a buy when the bar's low touches the limit and a sell
// when the bar's high does, otherwise the order stays pending this bar
func (s *Simulator) limitPrice(o *order.Order, bar *data.BarData) (decimal.Decimal, bool) {
	limit := o.LimitPrice
	if limit.LessThanOrEqual(decimal.Zero) {
		return bar.Close, true
	}
	switch o.Side {
	case order.Buy:
		if bar.Low.LessThanOrEqual(limit) {
			return limit, true
		}
	case order.Sell:
		if bar.High.GreaterThanOrEqual(limit) {
			return limit, true
		}
	}
	return decimal.Zero, false
}

// slippagePrice perturbs the close by a uniform draw in
// [0, SlippageBasisPoints], always against the order: buys pay up, sells
// receive less
func (s *Simulator) slippagePrice(side order.Side, closePrice decimal.Decimal) decimal.Decimal {
	maxBps, _ := s.settings.SlippageBasisPoints.Float64()
	if maxBps <= 0 {
		return closePrice
	}
	drawnBps := decimal.NewFromFloat(s.rng.Float64() * maxBps)
	perturbation := closePrice.Mul(drawnBps.Div(tenThousand))
	if side == order.Buy {
		return closePrice.Add(perturbation)
	}
	return closePrice.Sub(perturbation)
}

// fillAmount caps the execution at the participation limit of the bar's
// volume. With partial fills disabled an order fills completely within the
// cap or not at all this bar
func (s *Simulator) fillAmount(remaining decimal.Decimal, bar *data.BarData) decimal.Decimal {
	capacity := remaining
	if s.settings.MaxParticipationRate.GreaterThan(decimal.Zero) && bar.Volume.GreaterThan(decimal.Zero) {
		maxAmount := bar.Volume.Mul(s.settings.MaxParticipationRate)
		if maxAmount.LessThan(capacity) {
			capacity = maxAmount
		}
	}
	if capacity.LessThan(remaining) && !s.settings.AllowPartialFills {
		return decimal.Zero
	}
	return capacity
}
