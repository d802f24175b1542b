// Package vm implements the fuel-bounded stack machine of spec.md
// §4.K: a fetch-decode-execute loop over a bytecode.Chunk, generalized
// from informatter-nilan/vm/vm.go's single-opcode loop to curlee's full
// opcode table, typed runtime errors, and a fuel counter as the sole
// cancellation mechanism.
package vm

import (
	"fmt"
	"io"

	"github.com/curlee-lang/curlee/bytecode"
	"github.com/curlee-lang/curlee/interop"
	"github.com/curlee-lang/curlee/source"
)

// unlimitedFuel is the sentinel RunWithFuel uses internally for Run's
// "no fuel bound" semantics.
const unlimitedFuel = -1

// VmResult is the outcome of one VM run, matching spec.md §4.K's
// `{ok, value, error, error_span?}`.
type VmResult struct {
	OK        bool
	Value     Value
	Error     string
	ErrorSpan *source.Span
}

// VM is a single-threaded stack machine. Capabilities gates
// capability-checked opcodes (currently only PythonCall); Trace, when
// non-nil, receives one line per executed instruction — the
// generalization of informatter-nilan's unused VM.debug field into an
// actual, optional execution trace.
type VM struct {
	Capabilities map[string]bool
	Trace        io.Writer
}

// New creates a VM with no capabilities granted.
func New() *VM {
	return &VM{Capabilities: map[string]bool{}}
}

// Run executes chunk to completion with no fuel bound.
func (vm *VM) Run(chunk *bytecode.Chunk) VmResult {
	return vm.RunWithFuel(chunk, unlimitedFuel)
}

// RunWithFuel executes chunk, consuming one unit of fuel per
// instruction, and fails with "out of fuel" if fuel would go negative.
// Execution is deterministic: the same chunk and fuel always produce
// the same VmResult.
func (vm *VM) RunWithFuel(chunk *bytecode.Chunk, fuel int) VmResult {
	stack := Stack{}
	locals := make([]Value, chunk.MaxLocals)
	initialized := make([]bool, chunk.MaxLocals)
	ip := 0

	fail := func(message string, pos int) VmResult {
		span := chunk.SpanAt(pos)
		err := RuntimeError{Message: message, Span: span}
		return VmResult{OK: false, Error: err.Error(), ErrorSpan: &span}
	}

	for {
		if ip >= len(chunk.Code) {
			pos := ip - 1
			if pos < 0 {
				pos = 0
			}
			return fail("unexpected end of chunk", pos)
		}
		if fuel != unlimitedFuel {
			if fuel <= 0 {
				return fail("out of fuel", ip)
			}
			fuel--
		}

		opcodeStart := ip
		op := bytecode.Opcode(chunk.Code[ip])
		def, err := bytecode.Get(op)
		if err != nil {
			return fail(fmt.Sprintf("unknown opcode %d", op), ip)
		}

		if vm.Trace != nil {
			fmt.Fprintf(vm.Trace, "ip=%d op=%s\n", ip, def.Name)
		}

		operandPos := ip + 1
		width := 0
		for _, w := range def.OperandWidths {
			width += w
		}
		if operandPos+width > len(chunk.Code) {
			return fail("truncated instruction", ip)
		}

		var operand int
		if width == 2 {
			operand = int(bytecode.ReadUint16(chunk.Code, operandPos))
		}

		next := ip + 1 + width

		switch op {
		case bytecode.OpConstant:
			if operand < 0 || operand >= len(chunk.Constants) {
				return fail("constant index out of bounds", opcodeStart)
			}
			stack.Push(fromConstant(chunk.Constants[operand]))

		case bytecode.OpLoadLocal:
			if operand < 0 || operand >= len(locals) {
				return fail("local slot out of bounds", opcodeStart)
			}
			if !initialized[operand] {
				return fail("use of uninitialized local", opcodeStart)
			}
			stack.Push(locals[operand])

		case bytecode.OpStoreLocal:
			v, ok := stack.Pop()
			if !ok {
				return fail("stack underflow", opcodeStart)
			}
			if operand < 0 || operand >= len(locals) {
				return fail("local slot out of bounds", opcodeStart)
			}
			locals[operand] = v
			initialized[operand] = true

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv:
			b, aOK := stack.Pop()
			a, bOK := stack.Pop()
			if !aOK || !bOK {
				return fail("stack underflow", opcodeStart)
			}
			if a.Kind != VInt || b.Kind != VInt {
				return fail(arithName(op)+" expects Int", opcodeStart)
			}
			if op == bytecode.OpDiv && b.Int == 0 {
				return fail("division by zero", opcodeStart)
			}
			stack.Push(IntValue(arith(op, a.Int, b.Int)))

		case bytecode.OpNeg:
			a, ok := stack.Pop()
			if !ok {
				return fail("stack underflow", opcodeStart)
			}
			if a.Kind != VInt {
				return fail("neg expects Int", opcodeStart)
			}
			stack.Push(IntValue(-a.Int))

		case bytecode.OpNot:
			a, ok := stack.Pop()
			if !ok {
				return fail("stack underflow", opcodeStart)
			}
			if a.Kind != VBool {
				return fail("not expects Bool", opcodeStart)
			}
			stack.Push(BoolValue(!a.Bool))

		case bytecode.OpEqual, bytecode.OpNotEqual:
			b, aOK := stack.Pop()
			a, bOK := stack.Pop()
			if !aOK || !bOK {
				return fail("stack underflow", opcodeStart)
			}
			if a.Kind != b.Kind {
				return fail("equal expects matching operand types", opcodeStart)
			}
			eq := valuesEqual(a, b)
			if op == bytecode.OpNotEqual {
				eq = !eq
			}
			stack.Push(BoolValue(eq))

		case bytecode.OpLess, bytecode.OpLessEqual, bytecode.OpGreater, bytecode.OpGreaterEqual:
			b, aOK := stack.Pop()
			a, bOK := stack.Pop()
			if !aOK || !bOK {
				return fail("stack underflow", opcodeStart)
			}
			if a.Kind != VInt || b.Kind != VInt {
				return fail(compareName(op)+" expects Int", opcodeStart)
			}
			stack.Push(BoolValue(compareInts(op, a.Int, b.Int)))

		case bytecode.OpPop:
			if _, ok := stack.Pop(); !ok {
				return fail("stack underflow", opcodeStart)
			}

		case bytecode.OpJump:
			ip = next + signedOffset(operand)
			continue

		case bytecode.OpJumpIfFalse:
			cond, ok := stack.Pop()
			if !ok {
				return fail("stack underflow", opcodeStart)
			}
			if cond.Kind != VBool {
				return fail("if condition expects Bool", opcodeStart)
			}
			if !cond.Bool {
				ip = next + signedOffset(operand)
				continue
			}

		case bytecode.OpReturn:
			v, ok := stack.Pop()
			if !ok {
				return fail("stack underflow", opcodeStart)
			}
			return VmResult{OK: true, Value: v}

		case bytecode.OpPythonCall:
			result, d := vm.pythonCall(chunk, operand)
			if d != "" {
				return fail(d, opcodeStart)
			}
			stack.Push(result)

		default:
			return fail(fmt.Sprintf("unknown opcode %d", op), opcodeStart)
		}

		ip = next
	}
}

func fromConstant(k bytecode.Constant) Value {
	switch k.Kind {
	case bytecode.ConstInt:
		return IntValue(k.Int)
	case bytecode.ConstBool:
		return BoolValue(k.Bool)
	case bytecode.ConstString:
		return StringValue(k.Str)
	default:
		return UnitValue()
	}
}

func valuesEqual(a, b Value) bool {
	switch a.Kind {
	case VInt:
		return a.Int == b.Int
	case VBool:
		return a.Bool == b.Bool
	case VString:
		return a.Str == b.Str
	default:
		return true // Unit == Unit
	}
}

func arith(op bytecode.Opcode, a, b int64) int64 {
	switch op {
	case bytecode.OpAdd:
		return a + b
	case bytecode.OpSub:
		return a - b
	case bytecode.OpMul:
		return a * b
	case bytecode.OpDiv:
		return a / b
	default:
		return 0
	}
}

func arithName(op bytecode.Opcode) string {
	switch op {
	case bytecode.OpAdd:
		return "add"
	case bytecode.OpSub:
		return "sub"
	case bytecode.OpMul:
		return "mul"
	default:
		return "div"
	}
}

func compareInts(op bytecode.Opcode, a, b int64) bool {
	switch op {
	case bytecode.OpLess:
		return a < b
	case bytecode.OpLessEqual:
		return a <= b
	case bytecode.OpGreater:
		return a > b
	default:
		return a >= b
	}
}

func compareName(op bytecode.Opcode) string {
	switch op {
	case bytecode.OpLess:
		return "less"
	case bytecode.OpLessEqual:
		return "less_equal"
	case bytecode.OpGreater:
		return "greater"
	default:
		return "greater_equal"
	}
}

// pythonCall resolves the PythonCall opcode's constant operand to a
// function name and hands it to the interop package, which owns the
// capability gate and stub response — the actual out-of-process runner
// is an external collaborator, not part of this module.
func (vm *VM) pythonCall(chunk *bytecode.Chunk, constIdx int) (Value, string) {
	if constIdx < 0 || constIdx >= len(chunk.Constants) {
		return Value{}, "constant index out of bounds"
	}
	name := ""
	if c := chunk.Constants[constIdx]; c.Kind == bytecode.ConstString {
		name = c.Str
	}
	result := interop.Invoke(vm.Capabilities, name)
	if result.Err != "" {
		return Value{}, result.Err
	}
	return StringValue(result.Output), ""
}

// signedOffset reinterprets a jump operand's u16 bit pattern as a
// signed 16-bit displacement, so a backward jump (loop) is encoded as
// the two's-complement of its negative distance.
func signedOffset(u int) int {
	return int(int16(uint16(u)))
}
