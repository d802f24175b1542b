package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/curlee-lang/curlee/diag"
	"github.com/curlee-lang/curlee/lexer"
	"github.com/google/subcommands"
)

type lexCmd struct{}

func (*lexCmd) Name() string     { return "lex" }
func (*lexCmd) Synopsis() string { return "Tokenize a source file and print its tokens" }
func (*lexCmd) Usage() string {
	return `lex <path>:
  Run the lexer over a .curlee file and print one token per line.
`
}
func (*lexCmd) SetFlags(f *flag.FlagSet) {}

func (*lexCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	tokens, d := lexer.Scan(file.Contents)
	if d != nil {
		fmt.Fprintln(os.Stderr, diag.Render(*d, file))
		return subcommands.ExitFailure
	}

	for _, tok := range tokens {
		fmt.Println(tok.String())
	}
	return subcommands.ExitSuccess
}
