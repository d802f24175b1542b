package bytecode

import (
	"testing"

	"github.com/curlee-lang/curlee/lexer"
	"github.com/curlee-lang/curlee/parser"
	"github.com/curlee-lang/curlee/source"
)

func compileSource(t *testing.T, src string) *Chunk {
	t.Helper()
	tokens, d := lexer.Scan([]byte(src))
	if d != nil {
		t.Fatalf("lex error: %v", d)
	}
	prog, diags := parser.Parse(tokens)
	if len(diags) > 0 {
		t.Fatalf("parse errors: %v", diags)
	}
	chunk, diags := Compile(prog)
	if len(diags) > 0 {
		t.Fatalf("compile errors: %v", diags)
	}
	return chunk
}

func TestCompileArithmeticScenario(t *testing.T) {
	chunk := compileSource(t, `fn main() { return 1 + 2; }`)
	if len(chunk.Constants) != 2 {
		t.Fatalf("expected 2 constants, got %d", len(chunk.Constants))
	}
	if chunk.Constants[0] != IntConstant(1) || chunk.Constants[1] != IntConstant(2) {
		t.Fatalf("unexpected constants: %v", chunk.Constants)
	}
	if len(chunk.Code) == 0 || Opcode(chunk.Code[len(chunk.Code)-1]) != OpReturn {
		t.Fatalf("expected chunk to end in Return, code=%v", chunk.Code)
	}
}

func TestCompileNoMainIsDiagnostic(t *testing.T) {
	tokens, _ := lexer.Scan([]byte(`fn f() { return 0; }`))
	prog, _ := parser.Parse(tokens)
	_, diags := Compile(prog)
	if len(diags) == 0 || diags[0].Message != "no 'main' function" {
		t.Fatalf("diagnostics = %v", diags)
	}
}

func TestCompileLetAndLoadLocal(t *testing.T) {
	chunk := compileSource(t, `fn main() { let x = 5; return x; }`)
	foundStore, foundLoad := false, false
	for i := 0; i < len(chunk.Code); {
		op := Opcode(chunk.Code[i])
		def, err := Get(op)
		if err != nil {
			t.Fatalf("unknown opcode %d at %d", op, i)
		}
		if op == OpStoreLocal {
			foundStore = true
		}
		if op == OpLoadLocal {
			foundLoad = true
		}
		width := 1
		for _, w := range def.OperandWidths {
			width += w
		}
		i += width
	}
	if !foundStore || !foundLoad {
		t.Fatalf("expected StoreLocal and LoadLocal in %v", chunk.Code)
	}
	if chunk.MaxLocals != 1 {
		t.Fatalf("expected max_locals=1, got %d", chunk.MaxLocals)
	}
}

func TestCompileIfElseUsesJumps(t *testing.T) {
	chunk := compileSource(t, `fn main() { if true { return 1; } else { return 2; } }`)
	sawJumpIfFalse, sawJump := false, false
	for i := 0; i < len(chunk.Code); {
		op := Opcode(chunk.Code[i])
		def, err := Get(op)
		if err != nil {
			t.Fatalf("unknown opcode %d at %d", op, i)
		}
		switch op {
		case OpJumpIfFalse:
			sawJumpIfFalse = true
		case OpJump:
			sawJump = true
		}
		width := 1
		for _, w := range def.OperandWidths {
			width += w
		}
		i += width
	}
	if !sawJumpIfFalse || !sawJump {
		t.Fatalf("expected both Jump and JumpIfFalse in code=%v", chunk.Code)
	}
}

func TestCompileCallRejected(t *testing.T) {
	tokens, _ := lexer.Scan([]byte(`fn g() -> Int { return 0; } fn main() { return g(); }`))
	prog, _ := parser.Parse(tokens)
	_, diags := Compile(prog)
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic rejecting the call")
	}
}

func TestChunkRoundTrip(t *testing.T) {
	chunk := compileSource(t, `fn main() { let x = 1 + 2 * 3; return x; }`)
	encoded := Encode(chunk)
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !chunk.Equal(decoded) {
		t.Fatalf("round trip mismatch:\n  original=%+v\n  decoded=%+v", chunk, decoded)
	}
}

func TestDecodeBadMagic(t *testing.T) {
	_, err := Decode([]byte("NOT_A_CHUNK"))
	if err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	buf := append([]byte(nil), magic...)
	buf = appendU32(buf, 99)
	_, err := Decode(buf)
	if err == nil {
		t.Fatal("expected a decode error for an unsupported version")
	}
}

func TestDecodeTruncated(t *testing.T) {
	chunk := &Chunk{Code: []byte{byte(OpReturn)}, Spans: []source.Span{{Start: 0, End: 1}}}
	encoded := Encode(chunk)
	_, err := Decode(encoded[:len(encoded)-2])
	if err == nil {
		t.Fatal("expected a decode error for truncated input")
	}
}
