package papertrade

import "strings"

// Watchlist is the ordered list of tickers the user keeps an eye on without
// necessarily holding them. Insertion order is preserved; tickers are
// stored uppercase.
type Watchlist []string

// Contains reports whether ticker is on the list.
func (w Watchlist) Contains(ticker string) bool {
	ticker = strings.ToUpper(ticker)
	for _, t := range w {
		if t == ticker {
			return true
		}
	}
	return false
}

// Add appends ticker to the list. Adding a ticker already on the list is a
// no-op; the boolean reports whether the list changed.
func (w Watchlist) Add(ticker string) (Watchlist, bool) {
	ticker = strings.ToUpper(ticker)
	if ticker == "" || w.Contains(ticker) {
		return w, false
	}
	next := make(Watchlist, len(w), len(w)+1)
	copy(next, w)
	return append(next, ticker), true
}

// Remove drops ticker from the list. Removing a ticker not on the list is a
// no-op; the boolean reports whether the list changed.
func (w Watchlist) Remove(ticker string) (Watchlist, bool) {
	ticker = strings.ToUpper(ticker)
	for i, t := range w {
		if t != ticker {
			continue
		}
		next := make(Watchlist, 0, len(w)-1)
		next = append(next, w[:i]...)
		next = append(next, w[i+1:]...)
		return next, true
	}
	return w, false
}
