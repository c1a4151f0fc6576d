package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/rgudla/papertrade/cmd"
)

func main() {
	// Shell completion: a no-op unless the shell invokes us in completion
	// mode, so it runs before flag parsing.
	subs := map[string]*complete.Command{}
	for _, name := range cmd.Names() {
		subs[name] = &complete.Command{}
	}
	(&complete.Command{Sub: subs}).Complete("pt")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
