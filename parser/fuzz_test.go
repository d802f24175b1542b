package parser

import (
	"testing"

	"github.com/curlee-lang/curlee/lexer"
)

// FuzzParse mirrors the original implementation's parser_fuzz.cpp:
// for any token stream the lexer can produce, Parse must never panic,
// and every diagnostic it returns carries a span within source bounds.
func FuzzParse(f *testing.F) {
	seeds := []string{
		"fn f() { return 0; }",
		"fn f(x: Int where x > 0) -> Int { return x; }",
		"fn f( { return; }",
		"import a.b.c; fn main() {}",
		"fn f() { if true { } else { } while true {} }",
		"((((((1))))))",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, src string) {
		tokens, d := lexer.Scan([]byte(src))
		if d != nil {
			return
		}
		_, diags := Parse(tokens)
		for _, diag := range diags {
			if diag.Span == nil {
				continue
			}
			if diag.Span.Start < 0 || diag.Span.End < diag.Span.Start || diag.Span.End > len(src) {
				t.Fatalf("diagnostic span out of bounds for input %q: %v", src, diag.Span)
			}
		}
	})
}
