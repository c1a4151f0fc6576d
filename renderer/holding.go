package renderer

import (
	"github.com/rgudla/papertrade"
)

// Holdings renders the account's open positions as a markdown report.
// Quotes are optional; positions without a quote show their cost basis only.
func Holdings(s papertrade.Snapshot, quotes map[string]papertrade.Quote) string {
	b := newBuilder()
	b.Printf("# Holdings\n\n")

	if len(s.Holdings) == 0 {
		b.Printf("No open positions.\n\n")
	} else {
		b.Printf("| Ticker | Quantity | Avg Cost | Last Price | Market Value | Gain |\n")
		b.Printf("|:---|---:|---:|---:|---:|---:|\n")

		total := s.Cash
		for _, h := range s.Holdings {
			avg, _ := s.AverageCost(h.Ticker)
			invested := s.Invested(h.Ticker)

			quote, quoted := quotes[h.Ticker]
			if !quoted {
				b.Printf("| %s | %d | %s | - | - | - |\n", h.Ticker, h.Quantity, avg)
				total = total.Add(invested)
				continue
			}
			value := quote.Price.MulQty(h.Quantity)
			gain := value.Sub(invested)
			b.Printf("| %s | %d | %s | %s | %s | %s |\n",
				h.Ticker, h.Quantity, avg, quote.Price, value, gain.SignedString())
			total = total.Add(value)
		}
		b.Printf("\n")
		b.Printf("Total value: %s\n\n", total)
	}

	b.Printf("Cash balance: %s\n", s.Cash)
	return b.String()
}
