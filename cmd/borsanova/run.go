package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/subcommands"

	"github.com/efreitasn/borsanova/internal/config"
	"github.com/efreitasn/borsanova/internal/script"
	"github.com/efreitasn/borsanova/internal/service"
)

type runCmd struct {
	cfg    *config.Config
	logger *slog.Logger

	keepGoing bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "executes a market script in a fresh session" }
func (*runCmd) Usage() string {
	return `borsanova run [-keep-going] [<script>]

  Runs every command of the script against a new market session and prints
  the result of each one. The script is read from stdin when no file is given
  or the file is "-".

Usage Examples:
$ borsanova run examples/scenario.txt
$ echo "list Acme MIB 100 10" | borsanova run

`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.keepGoing, "keep-going", false, "report failed commands and continue")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "Error: expected at most one script, got %d\n", f.NArg())
		return subcommands.ExitUsageError
	}

	var src io.Reader = os.Stdin
	name := "stdin"
	if f.NArg() == 1 && f.Arg(0) != "-" {
		name = f.Arg(0)
		file, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not open script: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		src = file
	}

	policy, err := c.cfg.Policy()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	market := service.NewMarket(service.Options{
		Policy:       policy,
		TradeHistory: c.cfg.TradeHistory,
		Logger:       c.logger,
	})

	runner := &script.Runner{Market: market, Out: os.Stdout, KeepGoing: c.keepGoing}
	c.logger.Info("running script",
		slog.String("script", name),
		slog.String("policy", policy.Name()),
	)

	failed, err := runner.Run(ctx, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d command(s) failed\n", failed)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
