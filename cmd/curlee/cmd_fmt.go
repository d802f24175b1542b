package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/curlee-lang/curlee/source"
	"github.com/google/subcommands"
)

type fmtCmd struct {
	check bool
}

func (*fmtCmd) Name() string     { return "fmt" }
func (*fmtCmd) Synopsis() string { return "Format a source file" }
func (*fmtCmd) Usage() string {
	return `fmt [--check] <path>:
  Reformat a .curlee file in place. With --check, report whether the
  file is already formatted without writing to it.
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.check, "check", false, "report formatting status instead of rewriting the file")
}

func (c *fmtCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no source file provided\n")
		return subcommands.ExitUsageError
	}
	path := args[0]

	contents, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to open file: %v\n", err)
		return subcommands.ExitFailure
	}

	formatted, err := source.Format(contents)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	if c.check {
		if bytes.Equal(contents, formatted) {
			return subcommands.ExitSuccess
		}
		fmt.Fprintf(os.Stderr, "%s is not formatted\n", path)
		return subcommands.ExitFailure
	}

	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to write file: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
