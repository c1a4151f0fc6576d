package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/rgudla/papertrade"
	"github.com/rgudla/papertrade/renderer"
)

// --- Watch Command ---

type watchCmd struct {
	ticker string
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "track a stock without buying it" }
func (*watchCmd) Usage() string {
	return `watch [-s <ticker>]

  Adds a stock to the watchlist. Without -s, shows the watchlist with the
  latest quotes.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "s", "", "Stock ticker to add")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store := papertrade.OpenStore(*accountFile)
	w, err := store.LoadWatchlist()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading watchlist: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.ticker == "" {
		printMarkdown(watchlistReport(ctx, w))
		return subcommands.ExitSuccess
	}

	ticker := strings.ToUpper(c.ticker)
	next, added := w.Add(ticker)
	if !added {
		fmt.Printf("%s is already on the watchlist\n", ticker)
		return subcommands.ExitSuccess
	}
	if err := store.SaveWatchlist(next); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving watchlist: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Watching %s\n", ticker)
	return subcommands.ExitSuccess
}

// watchlistReport renders the watchlist, with quotes when the feed answers.
func watchlistReport(ctx context.Context, w papertrade.Watchlist) string {
	if len(w) == 0 {
		return "# Watchlist\n\nNothing watched yet. Add a stock with `pt watch -s <ticker>`.\n"
	}
	byTicker, err := quoteClient().Quotes(ctx, w)
	if err != nil {
		log.Printf("quotes unavailable for the watchlist: %v", err)
		byTicker = nil
	}
	quotes := make([]papertrade.Quote, 0, len(w))
	for _, ticker := range w {
		if q, ok := byTicker[ticker]; ok {
			quotes = append(quotes, q)
		} else {
			quotes = append(quotes, papertrade.Quote{Ticker: ticker})
		}
	}
	return renderer.Quotes(quotes)
}

// --- Unwatch Command ---

type unwatchCmd struct {
	ticker string
}

func (*unwatchCmd) Name() string     { return "unwatch" }
func (*unwatchCmd) Synopsis() string { return "remove a stock from the watchlist" }
func (*unwatchCmd) Usage() string {
	return `unwatch -s <ticker>

  Removes a stock from the watchlist.
`
}

func (c *unwatchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "s", "", "Stock ticker to remove")
}

func (c *unwatchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}

	store := papertrade.OpenStore(*accountFile)
	w, err := store.LoadWatchlist()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading watchlist: %v\n", err)
		return subcommands.ExitFailure
	}
	ticker := strings.ToUpper(c.ticker)
	next, removed := w.Remove(ticker)
	if !removed {
		fmt.Fprintf(os.Stderr, "%s is not on the watchlist\n", ticker)
		return subcommands.ExitFailure
	}
	if err := store.SaveWatchlist(next); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving watchlist: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Stopped watching %s\n", ticker)
	return subcommands.ExitSuccess
}
