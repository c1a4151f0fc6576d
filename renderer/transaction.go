package renderer

import (
	"fmt"

	"github.com/rgudla/papertrade"
)

// Transaction renders a single transaction to a one-line string.
func Transaction(tx papertrade.Transaction) string {
	amount := tx.Price.MulQty(tx.Quantity)
	switch tx.Side {
	case papertrade.Buy:
		return fmt.Sprintf("Bought %d %s for %s", tx.Quantity, tx.Ticker, amount)
	case papertrade.Sell:
		return fmt.Sprintf("Sold %d %s for %s", tx.Quantity, tx.Ticker, amount)
	default:
		return fmt.Sprintf("%s %d %s", tx.Side, tx.Quantity, tx.Ticker)
	}
}

// Transactions renders the transaction history as a markdown table, oldest
// first.
func Transactions(txs []papertrade.Transaction) string {
	b := newBuilder()
	b.Printf("# Transactions\n\n")
	if len(txs) == 0 {
		b.Printf("No transactions yet.\n")
		return b.String()
	}

	b.Printf("| Date | Side | Ticker | Quantity | Price | Amount |\n")
	b.Printf("|:---|:---|:---|---:|---:|---:|\n")
	for _, tx := range txs {
		b.Printf("| %s | %s | %s | %d | %s | %s |\n",
			tx.Time.Format("2006-01-02 15:04"), tx.Side, tx.Ticker, tx.Quantity, tx.Price, tx.Price.MulQty(tx.Quantity))
	}
	return b.String()
}
