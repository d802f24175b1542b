package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/curlee-lang/curlee/verify"
	"github.com/google/subcommands"
)

type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "Resolve, type-check, and verify a source file" }
func (*checkCmd) Usage() string {
	return `check <path>:
  Run the full diagnostic pipeline (resolve, type check, refinement
  verification) over a .curlee file without compiling or running it.
`
}
func (*checkCmd) SetFlags(f *flag.FlagSet) {}

func (*checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no source file provided\n")
		return subcommands.ExitUsageError
	}

	file, err := loadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	prog, res, info, ok := checkFile(file)
	if !ok {
		return subcommands.ExitFailure
	}

	_, diags := verify.Verify(prog, res, info)
	printDiagnostics(diags, file)
	return exitFromBool(!hasError(diags))
}
