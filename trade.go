package papertrade

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// RejectReason classifies why a trade order was refused.
type RejectReason string

const (
	// InvalidRequest covers malformed orders: missing ticker, unknown side,
	// non-positive quantity, or a price that is not a finite positive number.
	InvalidRequest RejectReason = "invalid-request"
	// InsufficientFunds rejects a buy whose total cost exceeds the cash balance.
	InsufficientFunds RejectReason = "insufficient-funds"
	// InsufficientHoldings rejects a sell of more shares than are held.
	InsufficientHoldings RejectReason = "insufficient-holdings"
)

// Rejection is the error returned when an order is refused. The account
// state is unchanged by a rejected order.
type Rejection struct {
	Reason RejectReason
	msg    string
}

func (r *Rejection) Error() string { return r.msg }

func rejectf(reason RejectReason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, msg: fmt.Sprintf(format, args...)}
}

// IsRejected reports whether err is a Rejection with the given reason.
func IsRejected(err error, reason RejectReason) bool {
	var r *Rejection
	return errors.As(err, &r) && r.Reason == reason
}

// Order is a request to trade a whole number of shares at a reference price.
type Order struct {
	Ticker   string
	Side     Side
	Quantity int64
	Price    Money
}

// NewOrder builds an order from raw inputs, rejecting non-finite prices
// before they can reach decimal arithmetic.
func NewOrder(ticker string, side Side, quantity int64, price float64) (Order, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return Order{}, rejectf(InvalidRequest, "price for %s is not a finite number", ticker)
	}
	return Order{Ticker: ticker, Side: side, Quantity: quantity, Price: M(price)}, nil
}

// Apply settles an order against a snapshot and returns the resulting
// snapshot. It is a pure function: the input snapshot is never modified,
// and on rejection the zero snapshot and a *Rejection are returned, so no
// partial state can ever be observed.
func Apply(s Snapshot, o Order, now time.Time) (Snapshot, error) {
	if o.Ticker == "" {
		return Snapshot{}, rejectf(InvalidRequest, "a trade needs a ticker")
	}
	if o.Side != Buy && o.Side != Sell {
		return Snapshot{}, rejectf(InvalidRequest, "unknown side %q for %s", o.Side, o.Ticker)
	}
	if o.Quantity <= 0 {
		return Snapshot{}, rejectf(InvalidRequest, "quantity must be a positive number of shares, got %d", o.Quantity)
	}
	if o.Price.IsNegative() {
		return Snapshot{}, rejectf(InvalidRequest, "price for %s cannot be negative", o.Ticker)
	}

	gross := o.Price.MulQty(o.Quantity)
	switch o.Side {
	case Buy:
		if gross.GreaterThan(s.Cash) {
			return Snapshot{}, rejectf(InsufficientFunds,
				"cannot buy %d %s for %s, cash balance is %s", o.Quantity, o.Ticker, gross, s.Cash)
		}
	case Sell:
		if held := s.Quantity(o.Ticker); o.Quantity > held {
			return Snapshot{}, rejectf(InsufficientHoldings,
				"cannot sell %d %s, only %d held", o.Quantity, o.Ticker, held)
		}
	}

	next := s.Clone()
	switch o.Side {
	case Buy:
		next.Cash = next.Cash.Sub(gross)
		next.addShares(o.Ticker, o.Quantity)
	case Sell:
		next.Cash = next.Cash.Add(gross)
		next.addShares(o.Ticker, -o.Quantity)
	}
	next.Transactions = append(next.Transactions, Transaction{
		Ticker:   o.Ticker,
		Side:     o.Side,
		Quantity: o.Quantity,
		Price:    o.Price,
		Time:     now,
	})
	stableSortHoldings(next.Holdings)
	return next, nil
}

// addShares adjusts the holding for ticker by delta shares. A position
// reaching exactly zero is dropped from the list, never kept at zero.
func (s *Snapshot) addShares(ticker string, delta int64) {
	for i := range s.Holdings {
		if s.Holdings[i].Ticker != ticker {
			continue
		}
		s.Holdings[i].Quantity += delta
		if s.Holdings[i].Quantity == 0 {
			s.Holdings = append(s.Holdings[:i], s.Holdings[i+1:]...)
		}
		return
	}
	s.Holdings = append(s.Holdings, Holding{Ticker: ticker, Quantity: delta})
}
