package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/efreitasn/borsanova/internal/pricing"
)

type policiesCmd struct{}

func (*policiesCmd) Name() string     { return "policies" }
func (*policiesCmd) Synopsis() string { return "lists the available price policies" }
func (*policiesCmd) Usage() string {
	return `borsanova policies

  Prints the price policy kinds accepted by PRICE_POLICY and the script
  "policy" command.

`
}

func (*policiesCmd) SetFlags(*flag.FlagSet) {}

func (*policiesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	for _, kind := range pricing.Kinds() {
		fmt.Println(kind)
	}
	return subcommands.ExitSuccess
}
