package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/rgudla/papertrade/renderer"
)

type txCmd struct {
	head int
	tail int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list the account's transactions" }
func (*txCmd) Usage() string {
	return `tx [-head <n>] [-tail <n>]

  Lists the transaction history, oldest first, with options to limit the
  output.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&c.tail, "tail", 0, "Show only the last N transactions.")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.head > 0 && c.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}

	snapshot, err := loadSnapshot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading account: %v\n", err)
		return subcommands.ExitFailure
	}

	transactions := snapshot.Transactions
	if c.head > 0 && c.head < len(transactions) {
		transactions = transactions[:c.head]
	}
	if c.tail > 0 && c.tail < len(transactions) {
		transactions = transactions[len(transactions)-c.tail:]
	}

	printMarkdown(renderer.Transactions(transactions))
	return subcommands.ExitSuccess
}
