package main

import (
	"context"
	"flag"
	"fmt"

	curleeversion "github.com/curlee-lang/curlee/version"
	"github.com/google/subcommands"
)

type versionCmd struct{}

func (*versionCmd) Name() string     { return "version" }
func (*versionCmd) Synopsis() string { return "Print version information" }
func (*versionCmd) Usage() string {
	return `version:
  Print "curlee <semver> sha=<8-hex|unknown> build=<type>".
`
}
func (*versionCmd) SetFlags(f *flag.FlagSet) {}

func (*versionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println(curleeversion.String())
	return subcommands.ExitSuccess
}
