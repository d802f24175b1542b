package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/curlee-lang/curlee/bytecode"
	"github.com/curlee-lang/curlee/verify"
	"github.com/curlee-lang/curlee/vm"
	"github.com/google/subcommands"
)

// defaultFuel is generous enough for any of the fixture-sized programs
// this CLI is exercised against; --fuel overrides it.
const defaultFuel = 1_000_000

type runCmd struct {
	fuel  int
	trace bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Compile and execute a source file" }
func (*runCmd) Usage() string {
	return `run [--fuel N] [--trace] <path>:
  Resolve, type-check, verify, compile, and execute a .curlee file's
  main function.
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&r.fuel, "fuel", defaultFuel, "maximum instructions the VM may execute before failing with out of fuel")
	f.BoolVar(&r.trace, "trace", false, "print one line per executed instruction to stderr")
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	verified, vdiags := verify.Verify(prog, res, info)
	if len(vdiags) > 0 {
		printDiagnostics(vdiags, file)
	}
	if verified == nil {
		return subcommands.ExitFailure
	}

	chunk, diags := bytecode.Compile(prog)
	if hasError(diags) {
		printDiagnostics(diags, file)
		return subcommands.ExitFailure
	}

	machine := vm.New()
	if r.trace {
		machine.Trace = os.Stderr
	}

	result := machine.RunWithFuel(chunk, r.fuel)
	if !result.OK {
		fmt.Fprintf(os.Stderr, "💥 %s\n", result.Error)
		return subcommands.ExitFailure
	}

	fmt.Println(result.Value.String())
	return subcommands.ExitSuccess
}
