package types

import (
	"testing"

	"github.com/curlee-lang/curlee/lexer"
	"github.com/curlee-lang/curlee/parser"
	"github.com/curlee-lang/curlee/resolve"
)

func check(t *testing.T, src string) (*Info, []error) {
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
	info, tdiags := Check(prog, res)
	var errs []error
	for _, d := range tdiags {
		errs = append(errs, d)
	}
	return info, errs
}

func TestCheckSimpleFunctionReturnsOK(t *testing.T) {
	_, errs := check(t, `fn f(x: Int) -> Int { return x; }`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestCheckReturnTypeMismatch(t *testing.T) {
	_, errs := check(t, `fn f() -> Int { return true; }`)
	if len(errs) == 0 {
		t.Fatal("expected a type error")
	}
	if errs[0].Error() != "error: expected return type Int, found Bool" {
		t.Errorf("message = %q", errs[0].Error())
	}
}

func TestCheckBinaryArithmeticRequiresInt(t *testing.T) {
	_, errs := check(t, `fn f() -> Int { return true + 1; }`)
	if len(errs) == 0 {
		t.Fatal("expected a type error")
	}
}

func TestCheckCallArityMismatch(t *testing.T) {
	_, errs := check(t, `fn g(x: Int) -> Int { return x; } fn f() -> Int { return g(); }`)
	if len(errs) == 0 {
		t.Fatal("expected an arity error")
	}
}

func TestCheckCallArgumentTypeMismatch(t *testing.T) {
	_, errs := check(t, `fn g(x: Int) -> Int { return x; } fn f() -> Int { return g(true); }`)
	if len(errs) == 0 {
		t.Fatal("expected an argument type error")
	}
}

func TestCheckLetTypeAgreement(t *testing.T) {
	_, errs := check(t, `fn f() -> Int { let y: Bool = 1; return 0; }`)
	if len(errs) == 0 {
		t.Fatal("expected a let type mismatch error")
	}
}

func TestCheckComparisonProducesBool(t *testing.T) {
	_, errs := check(t, `fn f(x: Int) -> Bool { return x > 0; }`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestCheckIfConditionMustBeBool(t *testing.T) {
	_, errs := check(t, `fn f() -> Int { if 1 { return 0; } return 1; }`)
	if len(errs) == 0 {
		t.Fatal("expected a condition type error")
	}
}

func TestCheckMultipleErrorsSurfaced(t *testing.T) {
	_, errs := check(t, `fn f() -> Int { let a: Int = true; let b: Int = false; return 0; }`)
	if len(errs) < 2 {
		t.Fatalf("expected at least two errors, got %v", errs)
	}
}
