package renderer

import (
	"github.com/rgudla/papertrade"
)

// Prediction renders a price forecast as a markdown report.
func Prediction(p *papertrade.Prediction) string {
	b := newBuilder()
	b.Printf("# Forecast for %s\n\n", p.Ticker)
	b.Printf("Current price: %s\n\n", p.CurrentPrice)

	b.Printf("| Date | Predicted Price | vs Today |\n")
	b.Printf("|:---|---:|---:|\n")
	for i, date := range p.Dates {
		price := p.Prices[i]
		b.Printf("| %s | %s | %s |\n", date, price, price.Sub(p.CurrentPrice).SignedString())
	}
	b.Printf("\n")

	b.Printf("Confidence: %s%%\n", p.Confidence.StringFixed(1))
	if p.Degraded {
		b.Printf("\nThis is a quick estimate; the full model did not answer in time.\n")
	}
	return b.String()
}
