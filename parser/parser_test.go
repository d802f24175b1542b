package parser

import (
	"testing"

	"github.com/curlee-lang/curlee/ast"
	"github.com/curlee-lang/curlee/lexer"
	"github.com/curlee-lang/curlee/token"
)

func TestParseSimpleFunction(t *testing.T) {
	src := `fn f(x: Int) -> Int requires x > 0; ensures result >= 1; { return x; }`
	tokens, d := lexer.Scan([]byte(src))
	if d != nil {
		t.Fatalf("lex error: %v", d)
	}
	prog, diags := Parse(tokens)
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(prog.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.Name != "f" {
		t.Errorf("name = %q", fn.Name)
	}
	if len(fn.Params) != 1 || fn.Params[0].Name != "x" || fn.Params[0].TypeName != "Int" {
		t.Errorf("params = %+v", fn.Params)
	}
	if fn.ReturnType != "Int" {
		t.Errorf("return type = %q", fn.ReturnType)
	}
	if len(fn.Requires) != 1 || len(fn.Ensures) != 1 {
		t.Errorf("requires/ensures = %d/%d", len(fn.Requires), len(fn.Ensures))
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("expected 1 body stmt, got %d", len(fn.Body.Stmts))
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	src := `fn f() { return 1 + 2 * 3; }`
	tokens, _ := lexer.Scan([]byte(src))
	prog, diags := Parse(tokens)
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	ret := prog.Functions[0].Body.Stmts[0].(*ast.Return)
	top, ok := ret.Expr.(*ast.BinaryExpr)
	if !ok || top.Op != token.Plus {
		t.Fatalf("expected top-level '+', got %#v", ret.Expr)
	}
	right, ok := top.Right.(*ast.BinaryExpr)
	if !ok || right.Op != token.Star {
		t.Fatalf("expected '*' to bind tighter, got %#v", top.Right)
	}
}

func TestParseImportOutOfOrderDiagnostic(t *testing.T) {
	src := `fn f() { return 0; } import foo;`
	tokens, _ := lexer.Scan([]byte(src))
	_, diags := Parse(tokens)
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for import out of order")
	}
	found := false
	for _, d := range diags {
		if d.Message == "import statements must precede all other declarations" {
			found = true
			if len(d.Related) == 0 {
				t.Error("expected a related note pointing at the first declaration")
			}
		}
	}
	if !found {
		t.Errorf("diagnostics = %v", diags)
	}
}

func TestParseMultipleErrorsRecovered(t *testing.T) {
	src := `fn f( { return; } fn g() { return; }`
	tokens, _ := lexer.Scan([]byte(src))
	_, diags := Parse(tokens)
	if len(diags) < 2 {
		t.Fatalf("expected multiple diagnostics, got %v", diags)
	}
}

func TestParseWhileAndIf(t *testing.T) {
	src := `fn f() { if true { return 1; } else { return 2; } while true { return 0; } }`
	tokens, _ := lexer.Scan([]byte(src))
	prog, diags := Parse(tokens)
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(prog.Functions[0].Body.Stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Functions[0].Body.Stmts))
	}
}
