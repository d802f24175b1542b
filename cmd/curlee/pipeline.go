package main

import (
	"fmt"
	"os"

	"github.com/curlee-lang/curlee/ast"
	"github.com/curlee-lang/curlee/diag"
	"github.com/curlee-lang/curlee/lexer"
	"github.com/curlee-lang/curlee/parser"
	"github.com/curlee-lang/curlee/resolve"
	"github.com/curlee-lang/curlee/source"
	curleetypes "github.com/curlee-lang/curlee/types"
	"github.com/google/subcommands"
)

// loadFile reads path into a source.File, surfacing a missing file as
// the exact message spec.md §6 names.
func loadFile(path string) (*source.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	return source.New(path, data), nil
}

// printDiagnostics renders diags against file, sorted deterministically,
// to stderr.
func printDiagnostics(diags []diag.Diagnostic, file *source.File) {
	diag.Sort(diags)
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, diag.Render(d, file))
	}
}

// hasError reports whether diags contains any SeverityError entry.
func hasError(diags []diag.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == diag.SeverityError {
			return true
		}
	}
	return false
}

// parseFile runs lex+parse and reports failure via stderr.
func parseFile(file *source.File) (*ast.Program, bool) {
	tokens, d := lexer.Scan(file.Contents)
	if d != nil {
		fmt.Fprintln(os.Stderr, diag.Render(*d, file))
		return nil, false
	}
	prog, diags := parser.Parse(tokens)
	if hasError(diags) {
		printDiagnostics(diags, file)
		return nil, false
	}
	if len(diags) > 0 {
		printDiagnostics(diags, file)
	}
	return prog, true
}

// checkFile runs every diagnostic-producing stage through the type
// checker and returns the resolved program plus type info, or false if
// any stage reported an error.
func checkFile(file *source.File) (*ast.Program, *resolve.Resolution, *curleetypes.Info, bool) {
	prog, ok := parseFile(file)
	if !ok {
		return nil, nil, nil, false
	}

	importDiags := checkImportGraph(file.Path, prog.Imports)
	if len(importDiags) > 0 {
		printDiagnostics(importDiags, file)
	}

	res, diags := resolve.Resolve(prog)
	if hasError(diags) || hasError(importDiags) {
		printDiagnostics(diags, file)
		return nil, nil, nil, false
	}
	if len(diags) > 0 {
		printDiagnostics(diags, file)
	}

	info, diags := curleetypes.Check(prog, res)
	if hasError(diags) {
		printDiagnostics(diags, file)
		return nil, nil, nil, false
	}
	if len(diags) > 0 {
		printDiagnostics(diags, file)
	}

	return prog, res, info, true
}

// exitFromBool converts a pipeline success flag into the exit code
// convention of spec.md §6: 0 on success, 1 on pipeline failure.
func exitFromBool(ok bool) subcommands.ExitStatus {
	if ok {
		return subcommands.ExitSuccess
	}
	return subcommands.ExitFailure
}
