package verify

import (
	"strings"
	"testing"

	"github.com/curlee-lang/curlee/lexer"
	"github.com/curlee-lang/curlee/parser"
	"github.com/curlee-lang/curlee/resolve"
	"github.com/curlee-lang/curlee/types"
)

func verifySource(t *testing.T, src string) (*Verified, []string) {
	t.Helper()
	tokens, d := lexer.Scan([]byte(src))
	if d != nil {
		t.Fatalf("lex error: %v", d)
	}
	prog, diags := parser.Parse(tokens)
	if len(diags) > 0 {
		t.Fatalf("parse errors: %v", diags)
	}
	res, diags := resolve.Resolve(prog)
	if len(diags) > 0 {
		t.Fatalf("resolve errors: %v", diags)
	}
	info, diags := types.Check(prog, res)
	if len(diags) > 0 {
		t.Fatalf("type errors: %v", diags)
	}
	verified, vdiags := Verify(prog, res, info)
	var messages []string
	for _, d := range vdiags {
		messages = append(messages, d.Message)
	}
	return verified, messages
}

func TestVerifyRefinementCheckScenario(t *testing.T) {
	src := `fn f(x: Int where x > 0) -> Int requires x > 0; ensures result >= 1; { return x; }`
	verified, msgs := verifySource(t, src)
	if verified == nil {
		t.Fatalf("expected verification to succeed, diagnostics: %v", msgs)
	}
}

func TestVerifyRefinementCheckFailsWithCounterModel(t *testing.T) {
	src := `fn f(x: Int where x > 0) -> Int requires x > 0; ensures result >= 1; { return x - 1; }`
	verified, msgs := verifySource(t, src)
	if verified != nil {
		t.Fatalf("expected verification to fail")
	}
	found := false
	for _, m := range msgs {
		if strings.Contains(m, "ensures obligation not satisfied") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a failed ensures obligation, got %v", msgs)
	}
}

func TestVerifyUnknownPredicateName(t *testing.T) {
	// "s" resolves fine as a parameter name (the resolver is untyped),
	// but the verifier only binds Int/Bool parameters into its SMT
	// variable environments, so a String parameter used in a predicate
	// is unknown to the lowerer.
	src := `fn f(s: String) -> Int requires s > 0; { return 0; }`
	verified, msgs := verifySource(t, src)
	if verified != nil {
		t.Fatalf("expected verification to fail")
	}
	found := false
	for _, m := range msgs {
		if strings.Contains(m, "unknown predicate name") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unknown predicate name error, got %v", msgs)
	}
}

func TestVerifyAssumedLetRefinementEmitsNote(t *testing.T) {
	// Without a string/call helper in this grammar subset, a let whose
	// initializer is a bare Name still lowers symbolically; this test
	// instead exercises a let refinement tied to an initializer the
	// lowerer cannot express: a call. The type checker accepts it as an
	// Int because g is declared to return Int, but the call's result
	// can't be related symbolically.
	src := `fn g() -> Int { return 1; }
fn f() -> Int { let y: Int where y > 0 = g(); return y; }`
	_, msgs := verifySource(t, src)
	found := false
	for _, m := range msgs {
		if strings.Contains(m, "assumed, not proved") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an assumed-refinement note, got %v", msgs)
	}
}

func TestVerifyNonLinearPredicateRejected(t *testing.T) {
	src := `fn f(x: Int, y: Int where x * y > 0) -> Int { return 0; }`
	_, msgs := verifySource(t, src)
	found := false
	for _, m := range msgs {
		if strings.Contains(m, "non-linear predicate") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected non-linear predicate error, got %v", msgs)
	}
}
