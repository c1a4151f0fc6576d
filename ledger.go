package papertrade

import (
	"fmt"
	"sort"
	"time"
)

// SeedCash is the balance every fresh account starts with.
const SeedCash = 1_000_000

// Side discriminates the two legs a trade can take.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// ParseSide converts a persisted side string back to a Side.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case Buy, Sell:
		return Side(s), nil
	}
	return "", fmt.Errorf("unknown transaction side %q", s)
}

// Transaction is one settled trade in the account history.
type Transaction struct {
	Ticker   string    `json:"ticker"`
	Side     Side      `json:"side"`
	Quantity int64     `json:"quantity"`
	Price    Money     `json:"price"`
	Time     time.Time `json:"time"`
}

// Holding is the current position in one stock.
type Holding struct {
	Ticker   string `json:"ticker"`
	Quantity int64  `json:"quantity"`
}

// Snapshot is the full state of a paper-trading account at one instant:
// the cash balance, the open positions, and the chronological trade history.
// A Snapshot is a value; engines derive new snapshots from old ones and
// never mutate in place.
type Snapshot struct {
	Cash         Money
	Holdings     []Holding
	Transactions []Transaction
}

// NewSnapshot returns the seed account: starting cash, no positions,
// empty history.
func NewSnapshot() Snapshot {
	return Snapshot{Cash: M(SeedCash)}
}

// Clone returns a deep copy of the snapshot. Mutating the copy leaves the
// original untouched.
func (s Snapshot) Clone() Snapshot {
	c := Snapshot{Cash: s.Cash}
	if s.Holdings != nil {
		c.Holdings = make([]Holding, len(s.Holdings))
		copy(c.Holdings, s.Holdings)
	}
	if s.Transactions != nil {
		c.Transactions = make([]Transaction, len(s.Transactions))
		copy(c.Transactions, s.Transactions)
	}
	return c
}

// Quantity returns the held quantity for ticker, 0 when there is no position.
func (s Snapshot) Quantity(ticker string) int64 {
	for _, h := range s.Holdings {
		if h.Ticker == ticker {
			return h.Quantity
		}
	}
	return 0
}

// Position replays the transaction log and returns the net quantity for
// ticker. For a consistent snapshot it agrees with Quantity; it is the
// authoritative derivation the holdings list caches.
func (s Snapshot) Position(ticker string) int64 {
	var qty int64
	for _, tx := range s.Transactions {
		if tx.Ticker != ticker {
			continue
		}
		switch tx.Side {
		case Buy:
			qty += tx.Quantity
		case Sell:
			qty -= tx.Quantity
		}
	}
	return qty
}

// AverageCost returns the average purchase price for ticker over all buy
// legs in the history. The second return is false when the stock was never
// bought.
func (s Snapshot) AverageCost(ticker string) (Money, bool) {
	var spent Money
	var bought int64
	for _, tx := range s.Transactions {
		if tx.Ticker != ticker || tx.Side != Buy {
			continue
		}
		spent = spent.Add(tx.Price.MulQty(tx.Quantity))
		bought += tx.Quantity
	}
	if bought == 0 {
		return Money{}, false
	}
	return spent.DivQty(bought), true
}

// Invested returns the total cost basis of the current position in ticker,
// held quantity times average cost.
func (s Snapshot) Invested(ticker string) Money {
	avg, ok := s.AverageCost(ticker)
	if !ok {
		return Money{}
	}
	return avg.MulQty(s.Quantity(ticker))
}

// Tickers returns the tickers with an open position, sorted.
func (s Snapshot) Tickers() []string {
	tickers := make([]string, 0, len(s.Holdings))
	for _, h := range s.Holdings {
		tickers = append(tickers, h.Ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// stableSortHoldings keeps the holdings list in a canonical order so that
// persisted bytes are reproducible.
func stableSortHoldings(holdings []Holding) {
	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].Ticker < holdings[j].Ticker
	})
}
