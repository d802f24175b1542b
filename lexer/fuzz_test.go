package lexer

import "testing"

// FuzzScan exercises the never-panic invariant the original
// implementation's lexer_fuzz.cpp asserts: for any byte input, Scan
// either returns a token stream or a single diagnostic, and never
// panics or loops forever.
func FuzzScan(f *testing.F) {
	seeds := []string{
		"",
		"fn f() { return 0; }",
		`"unterminated`,
		"/* unterminated",
		"/* nested /* comment */ still open",
		"@#$%",
		"-> == != <= >= && ||",
		"123456789012345678901234567890",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, src string) {
		tokens, d := Scan([]byte(src))
		if d != nil {
			if tokens != nil {
				t.Fatalf("expected nil tokens alongside a diagnostic")
			}
			return
		}
		if len(tokens) == 0 {
			t.Fatalf("expected at least an EOF token")
		}
		for _, tok := range tokens {
			if tok.Span.Start < 0 || tok.Span.End < tok.Span.Start || tok.Span.End > len(src) {
				t.Fatalf("token %v has out-of-bounds span for input %q", tok, src)
			}
		}
	})
}
