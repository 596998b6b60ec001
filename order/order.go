package order

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Valid reports whether the side is one of the closed set
func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

// Opposite returns the other side
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// IsTerminal reports whether the status permits no further fills
func (s Status) IsTerminal() bool {
	return s == Filled || s == Cancelled || s == Rejected
}

// Remaining returns the unfilled amount
func (o *Order) Remaining() decimal.Decimal {
	return o.Amount.Sub(o.FilledAmount)
}

// IsOpen reports whether the order can still receive fills
func (o *Order) IsOpen() bool {
	return !o.Status.IsTerminal()
}

// ApplyFill records a partial or complete execution against the order,
// maintaining the volume weighted average fill price and the status
// transitions. Terminal orders reject further fills
func (o *Order) ApplyFill(amount, price decimal.Decimal) error {
	if o.Status.IsTerminal() {
		return fmt.Errorf("%w: %s %s", ErrOrderClosed, o.ID, o.Status)
	}
	if amount.LessThanOrEqual(decimal.Zero) || price.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidFill
	}
	if amount.GreaterThan(o.Remaining()) {
		return fmt.Errorf("%w: %s fill %s remaining %s", ErrOverfill, o.ID, amount, o.Remaining())
	}
	notionalSoFar := o.AverageFillPrice.Mul(o.FilledAmount)
	o.FilledAmount = o.FilledAmount.Add(amount)
	o.AverageFillPrice = notionalSoFar.Add(price.Mul(amount)).Div(o.FilledAmount)
	if o.FilledAmount.Equal(o.Amount) {
		o.Status = Filled
	} else {
		o.Status = PartiallyFilled
	}
	return nil
}

// Cancel moves the order to its cancelled terminal state. Cancelling a
// terminal order is a no-op
func (o *Order) Cancel() {
	if o.Status.IsTerminal() {
		return
	}
	o.Status = Cancelled
}

// AppendReason adds more description as to why an order is in its state
func (o *Order) AppendReason(reason string) {
	if o.Reason == "" {
		o.Reason = reason
		return
	}
	o.Reason = o.Reason + ". " + reason
}
