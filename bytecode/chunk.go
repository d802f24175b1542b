package bytecode

import "github.com/curlee-lang/curlee/source"

// ConstKind tags a constant's runtime type in the constant pool and in
// the encoded chunk format (spec.md §4.J).
type ConstKind byte

const (
	ConstInt ConstKind = iota
	ConstBool
	ConstString
	ConstUnit
)

// Constant is one entry of a Chunk's constant pool.
type Constant struct {
	Kind ConstKind
	Int  int64
	Bool bool
	Str  string
}

// IntConstant, BoolConstant, StringConstant, and UnitConstant build a
// Constant of the matching kind.
func IntConstant(v int64) Constant    { return Constant{Kind: ConstInt, Int: v} }
func BoolConstant(v bool) Constant    { return Constant{Kind: ConstBool, Bool: v} }
func StringConstant(v string) Constant { return Constant{Kind: ConstString, Str: v} }
func UnitConstant() Constant          { return Constant{Kind: ConstUnit} }

// Chunk is a function body lowered to bytecode: a flat instruction
// stream, a constant pool, a per-byte span table for diagnostics, and
// the number of local variable slots it uses.
type Chunk struct {
	Code      []byte
	Constants []Constant
	Spans     []source.Span
	MaxLocals int
}

// SpanAt returns the span recorded for code[pos], or a zero Span if
// pos is out of range (callers should not normally hit this).
func (c *Chunk) SpanAt(pos int) source.Span {
	if pos < 0 || pos >= len(c.Spans) {
		return source.Span{}
	}
	return c.Spans[pos]
}

// Equal reports whether two chunks are structurally identical — used
// by the codec round-trip property (spec.md §8).
func (c *Chunk) Equal(other *Chunk) bool {
	if c.MaxLocals != other.MaxLocals {
		return false
	}
	if len(c.Code) != len(other.Code) || string(c.Code) != string(other.Code) {
		return false
	}
	if len(c.Spans) != len(other.Spans) {
		return false
	}
	for i := range c.Spans {
		if c.Spans[i] != other.Spans[i] {
			return false
		}
	}
	if len(c.Constants) != len(other.Constants) {
		return false
	}
	for i := range c.Constants {
		if c.Constants[i] != other.Constants[i] {
			return false
		}
	}
	return true
}
