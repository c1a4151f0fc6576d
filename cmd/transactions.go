package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/rgudla/papertrade"
	"github.com/rgudla/papertrade/renderer"
)

// trade settles an order against the account and reports the outcome.
// Rejections are printed as-is: their messages already name the ticker and
// the shortfall.
func trade(ctx context.Context, ticker string, side papertrade.Side, quantity int64, price float64) subcommands.ExitStatus {
	ticker = strings.ToUpper(ticker)
	resolved, err := resolvePrice(ctx, ticker, price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving price for %s: %v\n", ticker, err)
		return subcommands.ExitFailure
	}

	order := papertrade.Order{Ticker: ticker, Side: side, Quantity: quantity, Price: resolved}
	next, err := openBook().Trade(order)
	if err != nil {
		var rejection *papertrade.Rejection
		if errors.As(err, &rejection) {
			fmt.Fprintf(os.Stderr, "Rejected: %v\n", rejection)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Error settling trade: %v\n", err)
		return subcommands.ExitFailure
	}

	last := next.Transactions[len(next.Transactions)-1]
	fmt.Printf("%s\nCash balance: %s\n", renderer.Transaction(last), next.Cash)
	return subcommands.ExitSuccess
}

// resolvePrice turns the -p flag into a price, asking the market feed for
// the latest quote when the flag was left out.
func resolvePrice(ctx context.Context, ticker string, price float64) (papertrade.Money, error) {
	if price > 0 {
		order, err := papertrade.NewOrder(ticker, papertrade.Buy, 1, price)
		if err != nil {
			return papertrade.Money{}, err
		}
		return order.Price, nil
	}
	quotes, err := quoteClient().Quotes(ctx, []string{ticker})
	if err != nil {
		return papertrade.Money{}, err
	}
	quote, ok := quotes[ticker]
	if !ok {
		return papertrade.Money{}, fmt.Errorf("the market feed has no quote for %q", ticker)
	}
	return quote.Price, nil
}

// --- Buy Command ---

type buyCmd struct {
	ticker   string
	quantity int64
	price    float64
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "purchase shares to open or add to a position" }
func (*buyCmd) Usage() string {
	return `buy -s <ticker> -q <quantity> [-p <price>]

  Purchases shares of a stock. The total cost is debited from the cash
  balance. Without -p the latest market quote is used.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "s", "", "Stock ticker")
	f.Int64Var(&c.quantity, "q", 0, "Number of shares")
	f.Float64Var(&c.price, "p", 0, "Price per share, latest quote if missing")
}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" || c.quantity <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return trade(ctx, c.ticker, papertrade.Buy, c.quantity, c.price)
}

// --- Sell Command ---

type sellCmd struct {
	ticker   string
	quantity int64
	price    float64
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell shares to trim or close a position" }
func (*sellCmd) Usage() string {
	return `sell -s <ticker> -q <quantity> [-p <price>]

  Sells shares of a stock. The proceeds are credited to the cash balance.
  Without -p the latest market quote is used.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "s", "", "Stock ticker")
	f.Int64Var(&c.quantity, "q", 0, "Number of shares")
	f.Float64Var(&c.price, "p", 0, "Price per share, latest quote if missing")
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" || c.quantity <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return trade(ctx, c.ticker, papertrade.Sell, c.quantity, c.price)
}
