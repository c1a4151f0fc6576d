package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/rgudla/papertrade"
)

type resetCmd struct {
	force bool
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "wipe the account back to its starting balance" }
func (*resetCmd) Usage() string {
	return `reset -f

  Clears the holdings and the transaction history and restores the starting
  cash balance. Requires -f, the history cannot be recovered afterwards.
`
}

func (c *resetCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "f", false, "Confirm wiping the account")
}

func (c *resetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.force {
		fmt.Fprintln(os.Stderr, "reset wipes the whole trading history; run again with -f to confirm.")
		return subcommands.ExitUsageError
	}

	if err := papertrade.OpenStore(*accountFile).Reset(); err != nil {
		fmt.Fprintf(os.Stderr, "Error resetting account: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Account reset, cash balance is %s\n", papertrade.M(papertrade.SeedCash))
	return subcommands.ExitSuccess
}
