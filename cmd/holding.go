package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/subcommands"
	"github.com/rgudla/papertrade"
	"github.com/rgudla/papertrade/renderer"
)

type holdingCmd struct {
	offline bool
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "report the account's positions and their value" }
func (*holdingCmd) Usage() string {
	return `holding [-offline]

  Reports the open positions with their average cost, latest market price
  and gain, plus the cash balance. With -offline no quotes are fetched and
  positions are valued at cost.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.offline, "offline", false, "Do not fetch quotes, value positions at cost")
}

func (c *holdingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	snapshot, err := loadSnapshot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading account: %v\n", err)
		return subcommands.ExitFailure
	}

	var quotes map[string]papertrade.Quote
	if !c.offline && len(snapshot.Holdings) > 0 {
		quotes, err = quoteClient().Quotes(ctx, snapshot.Tickers())
		if err != nil {
			// the report is still useful at cost basis
			log.Printf("quotes unavailable, valuing positions at cost: %v", err)
			quotes = nil
		}
	}

	printMarkdown(renderer.Holdings(snapshot, quotes))
	return subcommands.ExitSuccess
}
