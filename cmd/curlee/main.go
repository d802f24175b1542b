// Command curlee is the reference CLI driver described in spec.md §6:
// a set of pipeline verbs (lex, parse, check, run, fmt, bundle
// info/verify) plus --version and --help, wired as
// subcommands.Command implementations the way teacher's
// cmd_run.go/cmd_repl_compiled.go register against a
// subcommands.Commander.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	curleeversion "github.com/curlee-lang/curlee/version"
	"github.com/google/subcommands"
)

func main() {
	// --version is recognized before flag parsing dispatches to a verb,
	// since spec.md §6 treats it as a top-level flag rather than a verb.
	for _, arg := range os.Args[1:] {
		if arg == "--version" {
			fmt.Println(curleeversion.String())
			os.Exit(0)
		}
	}

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&lexCmd{}, "")
	subcommands.Register(&parseCmd{}, "")
	subcommands.Register(&checkCmd{}, "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&fmtCmd{}, "")
	subcommands.Register(&replCmd{}, "")
	subcommands.Register(&versionCmd{}, "")
	subcommands.Register(newBundleCommander("bundle"), "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
