package resolve

import (
	"testing"

	"github.com/curlee-lang/curlee/lexer"
	"github.com/curlee-lang/curlee/parser"
)

func TestResolveClosedness(t *testing.T) {
	src := `fn f(x: Int) -> Int { let y = x; return y; }`
	tokens, _ := lexer.Scan([]byte(src))
	prog, _ := parser.Parse(tokens)
	res, diags := Resolve(prog)
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	for _, use := range res.Uses {
		if int(use.Target) >= len(res.Symbols) {
			t.Errorf("use %v targets out-of-range symbol", use)
		}
	}
}

func TestResolveDuplicateFunction(t *testing.T) {
	src := `fn f() { return 0; } fn f() { return 1; }`
	tokens, _ := lexer.Scan([]byte(src))
	prog, _ := parser.Parse(tokens)
	_, diags := Resolve(prog)
	if len(diags) == 0 {
		t.Fatal("expected duplicate function diagnostic")
	}
	if diags[0].Message != "duplicate function: 'f'" {
		t.Errorf("message = %q", diags[0].Message)
	}
}

func TestResolveDuplicateParameter(t *testing.T) {
	src := `fn f(x: Int, x: Int) { return; }`
	tokens, _ := lexer.Scan([]byte(src))
	prog, _ := parser.Parse(tokens)
	_, diags := Resolve(prog)
	if len(diags) == 0 || diags[0].Message != "duplicate parameter: 'x'" {
		t.Fatalf("diagnostics = %v", diags)
	}
}

func TestResolveUnknownName(t *testing.T) {
	src := `fn f() { return y; }`
	tokens, _ := lexer.Scan([]byte(src))
	prog, _ := parser.Parse(tokens)
	_, diags := Resolve(prog)
	if len(diags) == 0 || diags[0].Message != "unknown name 'y'" {
		t.Fatalf("diagnostics = %v", diags)
	}
}

func TestResolveLetXEqualsXBindsNewX(t *testing.T) {
	src := `fn f(x: Int) -> Int { let x = x; return x; }`
	tokens, _ := lexer.Scan([]byte(src))
	prog, _ := parser.Parse(tokens)
	res, diags := Resolve(prog)
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	// The let's own symbol id must differ from the parameter's.
	var letID, paramID SymbolId
	for _, sym := range res.Symbols {
		if sym.Kind == SymParam && sym.Name == "x" {
			paramID = sym.ID
		}
		if sym.Kind == SymLet && sym.Name == "x" {
			letID = sym.ID
		}
	}
	if letID == paramID {
		t.Fatalf("let and param got same symbol id")
	}
}

func TestResolveImportsNotImplemented(t *testing.T) {
	src := `import foo; fn main() { return; }`
	tokens, _ := lexer.Scan([]byte(src))
	prog, _ := parser.Parse(tokens)
	_, diags := Resolve(prog)
	found := false
	for _, d := range diags {
		if d.Message == "imports are not implemented" {
			found = true
		}
	}
	if !found {
		t.Fatalf("diagnostics = %v", diags)
	}
}
