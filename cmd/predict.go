package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/rgudla/papertrade"
	"github.com/rgudla/papertrade/renderer"
)

type predictCmd struct {
	ticker   string
	exchange string
	simplify bool
}

func (*predictCmd) Name() string     { return "predict" }
func (*predictCmd) Synopsis() string { return "fetch a 7-day price forecast for a stock" }
func (*predictCmd) Usage() string {
	return `predict -s <ticker> [-x <exchange>] [-simplify]

  Fetches a price forecast from the model. A slow full-fidelity forecast is
  retried and finally downgraded to a quick estimate; -simplify asks for the
  quick estimate directly.
`
}

func (c *predictCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "s", "", "Stock ticker")
	f.StringVar(&c.exchange, "x", "NSE", "Exchange the ticker is listed on (NSE or BSE)")
	f.BoolVar(&c.simplify, "simplify", false, "Ask for the quick estimate directly")
}

func (c *predictCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}

	opts := papertrade.PredictOptions{Exchange: c.exchange, Degraded: c.simplify}
	p, err := forecastClient().Fetch(ctx, c.ticker, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.Prediction(p))
	return subcommands.ExitSuccess
}
