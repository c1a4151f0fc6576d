package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/rgudla/papertrade"
	"github.com/rgudla/papertrade/renderer"
)

type quoteCmd struct{}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "show market quotes" }
func (*quoteCmd) Usage() string {
	return `quote [<ticker> ...]

  Shows the latest quotes for the given tickers in one batched request.
  Without arguments, shows the stocks trending on the market feed.
`
}

func (*quoteCmd) SetFlags(f *flag.FlagSet) {}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client := quoteClient()

	if f.NArg() == 0 {
		trending, err := client.Trending()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.Quotes(trending))
		return subcommands.ExitSuccess
	}

	tickers := make([]string, f.NArg())
	for i, arg := range f.Args() {
		tickers[i] = strings.ToUpper(arg)
	}
	byTicker, err := client.Quotes(ctx, tickers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	// keep the user's ordering
	quotes := make([]papertrade.Quote, 0, len(tickers))
	for _, ticker := range tickers {
		if q, ok := byTicker[ticker]; ok {
			quotes = append(quotes, q)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: no quote for %q\n", ticker)
		}
	}
	printMarkdown(renderer.Quotes(quotes))
	return subcommands.ExitSuccess
}
