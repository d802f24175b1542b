// Package types implements the single forward-pass type checker of
// spec.md §4.F over the four built-in types. The per-construct
// dispatch (a big switch walking the typed AST once) is grounded on
// malphas-lang's internal/types/checker*.go family of per-node-kind
// checker files, collapsed into one file here since curlee's type
// system has four types and no generics, associated types, or kind
// inference to split out.
package types

import (
	"fmt"

	"github.com/curlee-lang/curlee/ast"
	"github.com/curlee-lang/curlee/diag"
	"github.com/curlee-lang/curlee/resolve"
	"github.com/curlee-lang/curlee/source"
)

// Type is one of the four built-in core types.
type Type int

const (
	Int Type = iota
	Bool
	String
	Unit
)

func (t Type) String() string {
	switch t {
	case Int:
		return "Int"
	case Bool:
		return "Bool"
	case String:
		return "String"
	case Unit:
		return "Unit"
	default:
		return "?"
	}
}

// ParseTypeName maps a type-name identifier to a Type, or false if it
// names no built-in type.
func ParseTypeName(name string) (Type, bool) {
	switch name {
	case "Int":
		return Int, true
	case "Bool":
		return Bool, true
	case "String":
		return String, true
	case "Unit":
		return Unit, true
	default:
		return 0, false
	}
}

// FunctionType is a function's parameter and result types.
type FunctionType struct {
	Params []Type
	Result Type
}

// Info is the output of Check: a type for every expression node, and
// every function's signature.
type Info struct {
	ExprTypes map[ast.Expr]Type
	SymbolType map[resolve.SymbolId]Type
	FuncType   map[resolve.SymbolId]FunctionType
}

type checker struct {
	res   *resolve.Resolution
	info  *Info
	diags []diag.Diagnostic

	// currentReturn is the declared return type of the function being
	// checked, used to validate `return e;` statements.
	currentReturn Type
}

// Check type-checks every function in prog using the given name
// resolution, and returns the populated Info, or a non-empty
// deterministically ordered diagnostic vector. The checker continues
// past local errors within a function to surface as many as possible.
func Check(prog *ast.Program, res *resolve.Resolution) (*Info, []diag.Diagnostic) {
	c := &checker{
		res: res,
		info: &Info{
			ExprTypes:  map[ast.Expr]Type{},
			SymbolType: map[resolve.SymbolId]Type{},
			FuncType:   map[resolve.SymbolId]FunctionType{},
		},
	}

	// First establish every function's signature so forward calls
	// type-check regardless of declaration order.
	for _, fn := range prog.Functions {
		id := res.FuncSymbols[fn]
		var params []Type
		for i := range fn.Params {
			pt, ok := ParseTypeName(fn.Params[i].TypeName)
			if !ok {
				c.errorf(fn.Params[i].Span, "unknown type name '%s'", fn.Params[i].TypeName)
				pt = Unit
			}
			params = append(params, pt)
			paramID := res.ParamSymbol[&fn.Params[i]]
			c.info.SymbolType[paramID] = pt
		}
		result := Unit
		if fn.ReturnType != "" {
			rt, ok := ParseTypeName(fn.ReturnType)
			if !ok {
				c.errorf(fn.NameSpan, "unknown type name '%s'", fn.ReturnType)
				rt = Unit
			}
			result = rt
		}
		c.info.FuncType[id] = FunctionType{Params: params, Result: result}
	}

	for _, fn := range prog.Functions {
		c.checkFunction(fn)
	}

	if len(c.diags) > 0 {
		diag.Sort(c.diags)
		return nil, c.diags
	}
	return c.info, nil
}

func (c *checker) errorf(span source.Span, format string, args ...any) {
	c.diags = append(c.diags, diag.New(fmt.Sprintf(format, args...), span))
}

func (c *checker) checkFunction(fn *ast.Function) {
	id := c.res.FuncSymbols[fn]
	sig := c.info.FuncType[id]
	c.currentReturn = sig.Result

	if fn.Body != nil {
		for _, stmt := range fn.Body.Stmts {
			c.checkStmt(stmt)
		}
	}
}

func (c *checker) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Let:
		actual := c.checkExpr(s.Initializer)
		if s.TypeName != "" {
			declared, ok := ParseTypeName(s.TypeName)
			if !ok {
				c.errorf(s.NameSpan, "unknown type name '%s'", s.TypeName)
			} else if declared != actual {
				c.errorf(s.Initializer.NodeSpan(), "expected %s, found %s", declared, actual)
				actual = declared
			}
		}
		id := c.res.LetSymbol[s]
		c.info.SymbolType[id] = actual
	case *ast.Return:
		var actual Type = Unit
		if s.Expr != nil {
			actual = c.checkExpr(s.Expr)
		}
		if actual != c.currentReturn {
			c.errorf(s.Span, "expected return type %s, found %s", c.currentReturn, actual)
		}
	case *ast.ExprStmt:
		c.checkExpr(s.Expr)
	case *ast.Block:
		for _, inner := range s.Stmts {
			c.checkStmt(inner)
		}
	case *ast.If:
		c.expectType(s.Cond, Bool)
		for _, inner := range s.Then.Stmts {
			c.checkStmt(inner)
		}
		if s.Else != nil {
			for _, inner := range s.Else.Stmts {
				c.checkStmt(inner)
			}
		}
	case *ast.While:
		c.expectType(s.Cond, Bool)
		for _, inner := range s.Body.Stmts {
			c.checkStmt(inner)
		}
	}
}

func (c *checker) expectType(e ast.Expr, want Type) {
	got := c.checkExpr(e)
	if got != want {
		c.errorf(e.NodeSpan(), "expected %s, found %s", want, got)
	}
}

func (c *checker) checkExpr(e ast.Expr) Type {
	t := c.typeOf(e)
	c.info.ExprTypes[e] = t
	return t
}

func (c *checker) typeOf(e ast.Expr) Type {
	switch n := e.(type) {
	case *ast.IntLit:
		return Int
	case *ast.StringLit:
		return String
	case *ast.BoolLit:
		return Bool
	case *ast.Name:
		id, ok := c.res.NameSymbol[n]
		if !ok {
			return Unit
		}
		return c.info.SymbolType[id]
	case *ast.UnaryExpr:
		operand := c.checkExpr(n.Expr)
		switch n.Op {
		case "-":
			if operand != Int {
				c.errorf(n.Span, "unary '-' expects Int, found %s", operand)
			}
			return Int
		case "!":
			if operand != Bool {
				c.errorf(n.Span, "unary '!' expects Bool, found %s", operand)
			}
			return Bool
		}
		return Unit
	case *ast.BinaryExpr:
		return c.typeOfBinary(n)
	case *ast.Call:
		return c.typeOfCall(n)
	case *ast.Group:
		return c.checkExpr(n.Inner)
	default:
		return Unit
	}
}

func (c *checker) typeOfBinary(n *ast.BinaryExpr) Type {
	left := c.checkExpr(n.Left)
	right := c.checkExpr(n.Right)

	switch n.Op {
	case "+", "-", "*", "/":
		if left != Int || right != Int {
			c.errorf(n.OpSpan, "operator '%s' expects Int operands, found %s and %s", n.Op, left, right)
		}
		return Int
	case "<", "<=", ">", ">=":
		if left != Int || right != Int {
			c.errorf(n.OpSpan, "operator '%s' expects Int operands, found %s and %s", n.Op, left, right)
		}
		return Bool
	case "==", "!=":
		if left != right {
			c.errorf(n.OpSpan, "operator '%s' expects matching operand types, found %s and %s", n.Op, left, right)
		}
		return Bool
	case "&&", "||":
		if left != Bool || right != Bool {
			c.errorf(n.OpSpan, "operator '%s' expects Bool operands, found %s and %s", n.Op, left, right)
		}
		return Bool
	}
	return Unit
}

func (c *checker) typeOfCall(n *ast.Call) Type {
	var callee *resolve.Symbol
	for i := range c.res.Symbols {
		if c.res.Symbols[i].Name == n.Callee && c.res.Symbols[i].Kind == resolve.SymFunction {
			callee = &c.res.Symbols[i]
			break
		}
	}
	var argTypes []Type
	for _, arg := range n.Args {
		argTypes = append(argTypes, c.checkExpr(arg))
	}
	if callee == nil {
		c.errorf(n.Span, "call to unknown function '%s'", n.Callee)
		return Unit
	}
	sig, ok := c.info.FuncType[callee.ID]
	if !ok {
		return Unit
	}
	if len(sig.Params) != len(argTypes) {
		c.errorf(n.Span, "function '%s' expects %d argument(s), found %d", n.Callee, len(sig.Params), len(argTypes))
		return sig.Result
	}
	for i, want := range sig.Params {
		if argTypes[i] != want {
			c.errorf(n.Args[i].NodeSpan(), "argument %d: expected %s, found %s", i+1, want, argTypes[i])
		}
	}
	return sig.Result
}
