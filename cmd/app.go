// Package cmd implements the CLI application to manage a paper-trading
// account.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/rgudla/papertrade"
)

// commands lists every subcommand with its help group.
var commands = []struct {
	cmd   subcommands.Command
	group string
}{
	{&buyCmd{}, "trading"},
	{&sellCmd{}, "trading"},
	{&resetCmd{}, "trading"},
	{&holdingCmd{}, "reports"},
	{&txCmd{}, "reports"},
	{&predictCmd{}, "market"},
	{&quoteCmd{}, "market"},
	{&watchCmd{}, "market"},
	{&unwatchCmd{}, "market"},
	{&topicCmd{}, "help"},
	{&assistCmd{}, "help"},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, entry := range commands {
		c.Register(entry.cmd, entry.group)
	}
}

// Names returns the registered subcommand names, for shell completion.
func Names() []string {
	names := make([]string, 0, len(commands))
	for _, entry := range commands {
		names = append(names, entry.cmd.Name())
	}
	return names
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var accountFile = flag.String("account-file", "account.json", "Path to the account file (JSON)")
var apiURL = flag.String("api-url", envOr("PT_API_URL", "http://localhost:5000"), "Base URL of the market and forecast API. Defaults to $PT_API_URL")

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// openBook returns the book over the account file, the single entry point
// for every mutation.
func openBook() *papertrade.Book {
	return papertrade.NewBook(papertrade.OpenStore(*accountFile))
}

// loadSnapshot reads the current account without taking the trade lock
// longer than the read.
func loadSnapshot() (papertrade.Snapshot, error) {
	return openBook().Snapshot()
}

func quoteClient() *papertrade.QuoteClient {
	return &papertrade.QuoteClient{BaseURL: *apiURL}
}

func forecastClient() *papertrade.Client {
	return &papertrade.Client{
		BaseURL:    *apiURL,
		HTTPClient: papertrade.NewDailyCachingClient(),
		OnStatus:   forecastStatus,
	}
}

// forecastStatus keeps the user informed while the slow model works.
func forecastStatus(ticker string, status papertrade.Status) {
	switch status {
	case papertrade.StatusSlow:
		fmt.Fprintf(os.Stderr, "%s: the full model is taking longer than usual, still working...\n", ticker)
	case papertrade.StatusRetrying:
		fmt.Fprintf(os.Stderr, "%s: no answer in time, retrying...\n", ticker)
	case papertrade.StatusDegraded:
		fmt.Fprintf(os.Stderr, "%s: falling back to a quick estimate\n", ticker)
	}
}
