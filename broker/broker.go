// Package broker simulates the order lifecycle: submission, per-bar
// advancement through the execution simulator, and cancellation. It is the
// sole owner of pending orders and the fill ledger
package broker

import (
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghantakiran/axion-stock-sub003/data"
	"github.com/ghantakiran/axion-stock-sub003/exchange"
	"github.com/ghantakiran/axion-stock-sub003/fill"
	"github.com/ghantakiran/axion-stock-sub003/log"
	"github.com/ghantakiran/axion-stock-sub003/order"
)

// New returns a broker delegating execution to the supplied simulator
func New(exec *exchange.Simulator) (*Broker, error) {
	if exec == nil {
		return nil, errNilSimulator
	}
	return &Broker{exec: exec}, nil
}

// Reset clears all broker state for a fresh run
func (b *Broker) Reset() {
	b.pending = nil
	b.fills = nil
	b.costs = CostSummary{}
	b.exec.Reset()
}

// SubmitOrder validates the order, assigns it an id and adds it to the
// pending set. The order will not fill until a later bar is processed
func (b *Broker) SubmitOrder(o *order.Order) (string, error) {
	if o == nil {
		return "", fmt.Errorf("%w: nil", ErrInvalidOrder)
	}
	if !o.Side.Valid() {
		return "", fmt.Errorf("%w: %v", order.ErrInvalidSide, o.Side)
	}
	if o.Amount.LessThanOrEqual(decimal.Zero) {
		return "", fmt.Errorf("%w: non-positive amount %v", ErrInvalidOrder, o.Amount)
	}
	if o.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return "", err
		}
		o.ID = id.String()
	}
	o.Status = order.Pending
	b.pending = append(b.pending, o)
	log.Debugf(log.Broker, "accepted %s %s %v %s", o.Side, o.Symbol, o.Amount, o.ID)
	return o.ID, nil
}

// ProcessBar advances every pending order for the bar's symbol through the
// execution simulator, applies the resulting fills and returns them.
// Pending orders for other symbols are left untouched
func (b *Broker) ProcessBar(bar *data.BarData) ([]fill.Fill, error) {
	if bar == nil {
		return nil, nil
	}
	var fills []fill.Fill
	remaining := b.pending[:0]
	for _, o := range b.pending {
		if o.Symbol != bar.Symbol {
			remaining = append(remaining, o)
			continue
		}
		f, err := b.exec.ExecuteOrder(o, bar)
		if err != nil {
			return fills, err
		}
		if f != nil {
			fills = append(fills, *f)
			b.fills = append(b.fills, *f)
			b.costs.Commission = b.costs.Commission.Add(f.Commission)
			b.costs.Slippage = b.costs.Slippage.Add(f.Slippage)
			b.costs.Fees = b.costs.Fees.Add(f.Fees)
		}
		if o.IsOpen() {
			remaining = append(remaining, o)
		}
	}
	b.pending = remaining
	return fills, nil
}

// CancelOrder removes a single order from the pending set
func (b *Broker) CancelOrder(id string) error {
	for i, o := range b.pending {
		if o.ID != id {
			continue
		}
		o.Cancel()
		b.pending = append(b.pending[:i], b.pending[i+1:]...)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
}

// CancelAllOrders cancels every pending order, or only those for symbol
// when one is supplied
func (b *Broker) CancelAllOrders(symbol string) int {
	var cancelled int
	remaining := b.pending[:0]
	for _, o := range b.pending {
		if symbol != "" && o.Symbol != symbol {
			remaining = append(remaining, o)
			continue
		}
		o.Cancel()
		cancelled++
	}
	b.pending = remaining
	return cancelled
}

// PendingOrders returns a copy of the pending set
func (b *Broker) PendingOrders() []*order.Order {
	out := make([]*order.Order, len(b.pending))
	copy(out, b.pending)
	return out
}

// Fills returns the complete fill ledger for the run
func (b *Broker) Fills() []fill.Fill {
	out := make([]fill.Fill, len(b.fills))
	copy(out, b.fills)
	return out
}

// Costs returns the running cost totals across all fills
func (b *Broker) Costs() CostSummary {
	return b.costs
}
