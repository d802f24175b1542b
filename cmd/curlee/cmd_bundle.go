package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/curlee-lang/curlee/bundle"
	"github.com/google/subcommands"
)

// newBundleCommander builds the "bundle" verb as a nested Commander
// holding the "info" and "verify" subcommands, the same nesting
// google/subcommands offers for a Commander that is itself a Command.
func newBundleCommander(name string) *subcommands.Commander {
	f := flag.NewFlagSet(name, flag.ExitOnError)
	c := subcommands.NewCommander(f, name)
	c.Register(&bundleInfoCmd{}, "")
	c.Register(&bundleVerifyCmd{}, "")
	c.Register(subcommands.HelpCommand(), "")
	return c
}

func loadBundle(path string) (*bundle.Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	return bundle.Decode(data)
}

type bundleInfoCmd struct{}

func (*bundleInfoCmd) Name() string     { return "info" }
func (*bundleInfoCmd) Synopsis() string { return "Print a bundle's manifest" }
func (*bundleInfoCmd) Usage() string {
	return `bundle info <bundle>:
  Decode a bundle and print its manifest fields.
`
}
func (*bundleInfoCmd) SetFlags(f *flag.FlagSet) {}

func (*bundleInfoCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no bundle file provided\n")
		return subcommands.ExitUsageError
	}

	b, err := loadBundle(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	m := b.Manifest
	fmt.Printf("format_version: %d\n", m.FormatVersion)
	fmt.Printf("bytecode_hash: %s\n", m.BytecodeHash)
	fmt.Printf("capabilities: %v\n", m.Capabilities)
	fmt.Printf("imports: %v\n", m.Imports)
	if m.Proof != nil {
		fmt.Printf("proof: %s\n", *m.Proof)
	}
	return subcommands.ExitSuccess
}

type bundleVerifyCmd struct{}

func (*bundleVerifyCmd) Name() string     { return "verify" }
func (*bundleVerifyCmd) Synopsis() string { return "Verify a bundle's bytecode_hash" }
func (*bundleVerifyCmd) Usage() string {
	return `bundle verify <bundle>:
  Decode a bundle and confirm its manifest's bytecode_hash matches its
  carried bytecode.
`
}
func (*bundleVerifyCmd) SetFlags(f *flag.FlagSet) {}

func (*bundleVerifyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no bundle file provided\n")
		return subcommands.ExitUsageError
	}

	b, err := loadBundle(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	if err := bundle.Verify(b); err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Println("ok")
	return subcommands.ExitSuccess
}
