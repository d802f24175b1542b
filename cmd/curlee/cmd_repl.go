package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/curlee-lang/curlee/bytecode"
	"github.com/curlee-lang/curlee/diag"
	"github.com/curlee-lang/curlee/lexer"
	"github.com/curlee-lang/curlee/parser"
	"github.com/curlee-lang/curlee/resolve"
	"github.com/curlee-lang/curlee/source"
	curleetypes "github.com/curlee-lang/curlee/types"
	"github.com/curlee-lang/curlee/vm"
	"github.com/google/subcommands"
)

// replCmd is an additive verb not named in the CLI surface of spec.md
// §6, extending teacher's cmd_repl.go/cmd_repl_compiled.go interactive
// loop to curlee's pipeline: each line is lexed, parsed, resolved,
// type-checked, compiled, and executed as a standalone one-function
// program (the REPL wraps the input in an implicit `fn main() { ... }`
// when the user doesn't supply one).
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive curlee session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive read-eval-print loop.
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start readline: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	machine := vm.New()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF on Ctrl-D, readline.ErrInterrupt on Ctrl-C
			return subcommands.ExitSuccess
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" {
			return subcommands.ExitSuccess
		}

		runLine(machine, line)
	}
}

func runLine(machine *vm.VM, line string) {
	body := line
	if !strings.Contains(body, "fn main") {
		body = "fn main() { " + line + " }"
	}

	file := source.New("<repl>", []byte(body))

	tokens, d := lexer.Scan(file.Contents)
	if d != nil {
		fmt.Fprintln(os.Stderr, diag.Render(*d, file))
		return
	}

	prog, diags := parser.Parse(tokens)
	if hasError(diags) {
		printDiagnostics(diags, file)
		return
	}

	res, diags := resolve.Resolve(prog)
	if hasError(diags) {
		printDiagnostics(diags, file)
		return
	}

	if _, diags = curleetypes.Check(prog, res); hasError(diags) {
		printDiagnostics(diags, file)
		return
	}

	chunk, diags := bytecode.Compile(prog)
	if hasError(diags) {
		printDiagnostics(diags, file)
		return
	}

	result := machine.Run(chunk)
	if !result.OK {
		fmt.Fprintf(os.Stderr, "💥 %s\n", result.Error)
		return
	}
	fmt.Println(result.Value.String())
}
