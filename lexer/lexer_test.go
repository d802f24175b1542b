package lexer

import (
	"testing"

	"github.com/curlee-lang/curlee/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestScanHappyPath(t *testing.T) {
	src := "fn f() { return x; }"
	tokens, d := Scan([]byte(src))
	if d != nil {
		t.Fatalf("unexpected error: %v", d)
	}

	want := []token.Kind{
		token.KwFn, token.Ident, token.LParen, token.RParen, token.LBrace,
		token.KwReturn, token.Ident, token.Semicolon, token.RBrace, token.Eof,
	}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScanCompositeOperators(t *testing.T) {
	src := "-> == != <= >= && ||"
	tokens, d := Scan([]byte(src))
	if d != nil {
		t.Fatalf("unexpected error: %v", d)
	}
	want := []token.Kind{
		token.Arrow, token.EqualEqual, token.NotEqual, token.LessEqual,
		token.GreaterEqual, token.AndAnd, token.OrOr, token.Eof,
	}
	got := kinds(tokens)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScanUnterminatedString(t *testing.T) {
	_, d := Scan([]byte(`"abc`))
	if d == nil {
		t.Fatal("expected diagnostic for unterminated string")
	}
	if d.Message != "unterminated string literal" {
		t.Errorf("message = %q", d.Message)
	}
}

func TestScanUnterminatedBlockComment(t *testing.T) {
	_, d := Scan([]byte("/* never closed"))
	if d == nil {
		t.Fatal("expected diagnostic for unterminated block comment")
	}
	if d.Message != "unterminated block comment" {
		t.Errorf("message = %q", d.Message)
	}
}

func TestScanInvalidCharacter(t *testing.T) {
	_, d := Scan([]byte("@"))
	if d == nil {
		t.Fatal("expected diagnostic for invalid character")
	}
}

func TestScanSkipsComments(t *testing.T) {
	src := "// comment\nfn /* block */ f"
	tokens, d := Scan([]byte(src))
	if d != nil {
		t.Fatalf("unexpected error: %v", d)
	}
	want := []token.Kind{token.KwFn, token.Ident, token.Eof}
	got := kinds(tokens)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScanStringEscapes(t *testing.T) {
	tokens, d := Scan([]byte(`"a\nb\"c"`))
	if d != nil {
		t.Fatalf("unexpected error: %v", d)
	}
	if tokens[0].Literal != "a\nb\"c" {
		t.Errorf("literal = %q", tokens[0].Literal)
	}
	if tokens[0].Lexeme != `"a\nb\"c"` {
		t.Errorf("lexeme = %q, want verbatim source text", tokens[0].Lexeme)
	}
}

func TestScanSpansAreWithinBounds(t *testing.T) {
	src := "fn f(x: Int) -> Int { return x; }"
	tokens, d := Scan([]byte(src))
	if d != nil {
		t.Fatalf("unexpected error: %v", d)
	}
	for _, tok := range tokens {
		if tok.Span.Start < 0 || tok.Span.End > len(src) || tok.Span.Start > tok.Span.End {
			t.Errorf("token %v has invalid span %v", tok, tok.Span)
		}
	}
}
