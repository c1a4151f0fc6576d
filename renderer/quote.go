package renderer

import (
	"github.com/rgudla/papertrade"
)

// Quotes renders market quotes as a markdown table.
func Quotes(quotes []papertrade.Quote) string {
	b := newBuilder()
	b.Printf("# Quotes\n\n")
	if len(quotes) == 0 {
		b.Printf("No quotes.\n")
		return b.String()
	}

	b.Printf("| Ticker | Price | Change | Change %% | Volume |\n")
	b.Printf("|:---|---:|---:|---:|---:|\n")
	for _, q := range quotes {
		b.Printf("| %s | %s | %s | %s%% | %d |\n",
			q.Ticker, q.Price, q.Change.SignedString(), q.ChangePercent.StringFixed(2), q.Volume)
	}
	return b.String()
}
