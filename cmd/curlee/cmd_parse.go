package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type parseCmd struct{}

func (*parseCmd) Name() string     { return "parse" }
func (*parseCmd) Synopsis() string { return "Parse a source file and print its AST as JSON" }
func (*parseCmd) Usage() string {
	return `parse <path>:
  Run the lexer and parser over a .curlee file and print the resulting
  Program as indented JSON.
`
}
func (*parseCmd) SetFlags(f *flag.FlagSet) {}

func (*parseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	prog, ok := parseFile(file)
	if !ok {
		return subcommands.ExitFailure
	}

	out, err := json.MarshalIndent(prog, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to render AST: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(string(out))
	return subcommands.ExitSuccess
}
