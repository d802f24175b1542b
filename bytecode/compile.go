package bytecode

import (
	"fmt"

	"github.com/curlee-lang/curlee/ast"
	"github.com/curlee-lang/curlee/diag"
	"github.com/curlee-lang/curlee/source"
	"github.com/curlee-lang/curlee/token"
)

// Compile locates the function named "main" in prog and lowers its
// body to a single Chunk, per spec.md §4.I. Absent main is a
// diagnostic; any unsupported construct encountered while lowering the
// body is reported by name and does not abort lowering of the rest of
// the body, so multiple unsupported-construct diagnostics can surface
// from one compile.
func Compile(prog *ast.Program) (*Chunk, []diag.Diagnostic) {
	var main *ast.Function
	for _, fn := range prog.Functions {
		if fn.Name == "main" {
			main = fn
			break
		}
	}
	if main == nil {
		d := diag.New("no 'main' function", source.Span{})
		return nil, []diag.Diagnostic{d}
	}

	c := &compiler{slots: map[string]int{}}
	if main.Body != nil {
		c.compileBlock(main.Body)
	}
	// A body that falls off the end without an explicit `return`
	// implicitly returns Unit.
	endsInReturn := false
	if main.Body != nil && len(main.Body.Stmts) > 0 {
		_, endsInReturn = main.Body.Stmts[len(main.Body.Stmts)-1].(*ast.Return)
	}
	if !endsInReturn {
		c.emitConstant(UnitConstant(), main.Span)
		c.emit(main.Span, OpReturn)
	}

	if len(c.diags) > 0 {
		diag.Sort(c.diags)
		return nil, c.diags
	}
	return &c.chunk, nil
}

type compiler struct {
	chunk Chunk
	slots map[string]int
	diags []diag.Diagnostic
}

func (c *compiler) errorf(span source.Span, format string, args ...any) {
	c.diags = append(c.diags, diag.New(fmt.Sprintf(format, args...), span))
}

// emit appends a single instruction's bytes to the chunk, recording
// span for every byte appended — opcode and operand bytes alike, per
// spec.md §4.I.
func (c *compiler) emit(span source.Span, op Opcode, operands ...int) int {
	start := len(c.chunk.Code)
	instr := MakeInstruction(op, operands...)
	c.chunk.Code = append(c.chunk.Code, instr...)
	for range instr {
		c.chunk.Spans = append(c.chunk.Spans, span)
	}
	return start
}

func (c *compiler) emitConstant(k Constant, span source.Span) {
	idx := len(c.chunk.Constants)
	c.chunk.Constants = append(c.chunk.Constants, k)
	c.emit(span, OpConstant, idx)
}

func (c *compiler) slotFor(name string) int {
	if slot, ok := c.slots[name]; ok {
		return slot
	}
	slot := len(c.slots)
	c.slots[name] = slot
	if slot+1 > c.chunk.MaxLocals {
		c.chunk.MaxLocals = slot + 1
	}
	return slot
}

func (c *compiler) compileBlock(b *ast.Block) {
	for _, stmt := range b.Stmts {
		c.compileStmt(stmt)
	}
}

func (c *compiler) compileStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Let:
		c.compileExpr(s.Initializer)
		slot := c.slotFor(s.Name)
		c.emit(s.Span, OpStoreLocal, slot)
	case *ast.Return:
		if s.Expr != nil {
			c.compileExpr(s.Expr)
		} else {
			c.emitConstant(UnitConstant(), s.Span)
		}
		c.emit(s.Span, OpReturn)
	case *ast.ExprStmt:
		c.compileExpr(s.Expr)
		c.emit(s.Span, OpPop)
	case *ast.Block:
		c.compileBlock(s)
	case *ast.If:
		c.compileIf(s)
	case *ast.While:
		c.compileWhile(s)
	default:
		c.errorf(stmt.NodeSpan(), "unsupported statement in emitter")
	}
}

// compileIf lowers `if cond { then } else { else }` using JumpIfFalse
// over the then-branch and an unconditional Jump past the else-branch,
// completing the emitter's control-flow support per the Open Question
// in spec.md §9 (the VM's Jump/JumpIfFalse opcodes exist precisely for
// this).
func (c *compiler) compileIf(s *ast.If) {
	c.compileExpr(s.Cond)
	jumpToElse := c.emitJumpPlaceholder(s.Span, OpJumpIfFalse)
	c.compileBlock(s.Then)

	if s.Else == nil {
		c.patchJump(jumpToElse)
		return
	}
	jumpToEnd := c.emitJumpPlaceholder(s.Span, OpJump)
	c.patchJump(jumpToElse)
	c.compileBlock(s.Else)
	c.patchJump(jumpToEnd)
}

// compileWhile lowers `while cond { body }` as a conditional entry
// check followed by an unconditional jump back to the check.
func (c *compiler) compileWhile(s *ast.While) {
	loopStart := len(c.chunk.Code)
	c.compileExpr(s.Cond)
	exitJump := c.emitJumpPlaceholder(s.Span, OpJumpIfFalse)
	c.compileBlock(s.Body)

	backOffset := loopStart - (len(c.chunk.Code) + 3)
	c.emit(s.Span, OpJump, int(uint16(int16(backOffset))))
	c.patchJump(exitJump)
}

// emitJumpPlaceholder emits a jump instruction with a zero offset
// operand and returns the position of the operand's first byte, for a
// later patchJump call to fill in once the jump target is known.
func (c *compiler) emitJumpPlaceholder(span source.Span, op Opcode) int {
	pos := c.emit(span, op, 0)
	return pos + 1
}

// patchJump rewrites the u16 operand at operandPos so the jump lands
// just after the current end of the chunk.
func (c *compiler) patchJump(operandPos int) {
	offset := len(c.chunk.Code) - (operandPos + 2)
	c.chunk.Code[operandPos] = byte(offset)
	c.chunk.Code[operandPos+1] = byte(offset >> 8)
}

func (c *compiler) compileExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.IntLit:
		c.emitConstant(IntConstant(n.Value), n.Span)
	case *ast.BoolLit:
		c.emitConstant(BoolConstant(n.Value), n.Span)
	case *ast.StringLit:
		c.emitConstant(StringConstant(n.Value), n.Span)
	case *ast.Name:
		slot, ok := c.slots[n.Ident]
		if !ok {
			c.errorf(n.Span, "use of undeclared local '%s' in emitter", n.Ident)
			return
		}
		c.emit(n.Span, OpLoadLocal, slot)
	case *ast.Group:
		c.compileExpr(n.Inner)
	case *ast.UnaryExpr:
		c.compileExpr(n.Expr)
		switch n.Op {
		case token.Minus:
			c.emit(n.Span, OpNeg)
		case token.Bang:
			c.emit(n.Span, OpNot)
		default:
			c.errorf(n.Span, "unsupported unary operator in emitter")
		}
	case *ast.BinaryExpr:
		c.compileExpr(n.Left)
		c.compileExpr(n.Right)
		if op, ok := binaryOpcode[n.Op]; ok {
			c.emit(n.OpSpan, op)
		} else {
			c.errorf(n.OpSpan, "operator '%s' is not supported in emitter yet", n.Op)
		}
	case *ast.Call:
		c.errorf(n.Span, "function calls are not supported in the emitter yet")
	default:
		c.errorf(e.NodeSpan(), "unsupported expression in emitter")
	}
}

var binaryOpcode = map[token.Kind]Opcode{
	token.Plus:         OpAdd,
	token.Minus:        OpSub,
	token.Star:         OpMul,
	token.Slash:        OpDiv,
	token.EqualEqual:   OpEqual,
	token.NotEqual:     OpNotEqual,
	token.Less:         OpLess,
	token.LessEqual:    OpLessEqual,
	token.Greater:      OpGreater,
	token.GreaterEqual: OpGreaterEqual,
}
