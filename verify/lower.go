// Package verify implements predicate lowering to SMT terms (spec.md
// §4.G) and the per-function refinement verifier (§4.H). Both are
// grounded directly on the original C++ implementation's
// verification/{predicate_lowering.h,solver.h,checker.h} and
// src/verification/solver.cpp — no repo in the retrieval pack touches
// an SMT solver, so the original's z3++ usage is translated call for
// call onto the go-z3 binding rather than adapted from a Go teacher.
package verify

import (
	"fmt"

	"github.com/aclements/go-z3/z3"
	"github.com/curlee-lang/curlee/ast"
	"github.com/curlee-lang/curlee/diag"
	"github.com/curlee-lang/curlee/token"
)

// sort distinguishes the two theories a lowered predicate value can
// inhabit.
type sort int

const (
	sortInt sort = iota
	sortBool
)

// value is a lowered SMT term, tagged by sort. Only one of intTerm /
// boolTerm is meaningful, matching the std::variant<z3::expr, ...>
// the original lowers predicates to, minus the diagnostic arm (callers
// handle errors through a separate return value, per Go convention).
type value struct {
	sort     sort
	intTerm  z3.Int
	boolTerm z3.Bool
}

// LoweringContext mirrors curlee::verification::LoweringContext: the
// live SMT context, optional result bindings for `ensures` predicates,
// and the int/bool variable environments built from a function's
// parameters and symbolically-bound `let`s.
type LoweringContext struct {
	Ctx        *z3.Context
	ResultInt  *z3.Int
	ResultBool *z3.Bool
	IntVars    map[string]z3.Int
	BoolVars   map[string]z3.Bool
}

// NewLoweringContext creates an empty LoweringContext over ctx.
func NewLoweringContext(ctx *z3.Context) *LoweringContext {
	return &LoweringContext{
		Ctx:      ctx,
		IntVars:  map[string]z3.Int{},
		BoolVars: map[string]z3.Bool{},
	}
}

// LowerPredicate lowers a top-level predicate (a `requires`, `ensures`,
// or `where` clause) to a boolean SMT term, or a diagnostic if it
// contains an unsupported construct or names an unknown identifier.
func LowerPredicate(pred ast.Pred, lc *LoweringContext) (z3.Bool, *diag.Diagnostic) {
	v, d := lowerPred(pred, lc)
	if d != nil {
		return z3.Bool{}, d
	}
	if v.sort != sortBool {
		d := diag.New("predicate does not have boolean type", pred.NodeSpan())
		return z3.Bool{}, &d
	}
	return v.boolTerm, nil
}

func lowerPred(pred ast.Pred, lc *LoweringContext) (value, *diag.Diagnostic) {
	switch n := pred.(type) {
	case *ast.PredInt:
		return value{sort: sortInt, intTerm: lc.Ctx.FromInt(n.Value, lc.Ctx.IntSort()).(z3.Int)}, nil
	case *ast.PredName:
		return lowerPredName(n, lc)
	case *ast.PredGroup:
		return lowerPred(n.Inner, lc)
	case *ast.PredUnary:
		return lowerPredUnary(n, lc)
	case *ast.PredBinary:
		return lowerPredBinary(n, lc)
	default:
		d := diag.New("unsupported predicate construct", pred.NodeSpan())
		return value{}, &d
	}
}

func lowerPredName(n *ast.PredName, lc *LoweringContext) (value, *diag.Diagnostic) {
	if n.Ident == "result" {
		switch {
		case lc.ResultInt != nil:
			return value{sort: sortInt, intTerm: *lc.ResultInt}, nil
		case lc.ResultBool != nil:
			return value{sort: sortBool, boolTerm: *lc.ResultBool}, nil
		default:
			d := diag.New("'result' is not available in this predicate", n.Span)
			return value{}, &d
		}
	}
	if n.Ident == "true" || n.Ident == "false" {
		return value{sort: sortBool, boolTerm: lc.Ctx.FromBool(n.Ident == "true")}, nil
	}
	if v, ok := lc.IntVars[n.Ident]; ok {
		return value{sort: sortInt, intTerm: v}, nil
	}
	if v, ok := lc.BoolVars[n.Ident]; ok {
		return value{sort: sortBool, boolTerm: v}, nil
	}
	d := diag.New(fmt.Sprintf("unknown predicate name '%s'", n.Ident), n.Span)
	return value{}, &d
}

func lowerPredUnary(n *ast.PredUnary, lc *LoweringContext) (value, *diag.Diagnostic) {
	operand, d := lowerPred(n.Expr, lc)
	if d != nil {
		return value{}, d
	}
	switch n.Op {
	case token.Minus:
		if operand.sort != sortInt {
			d := diag.New("unary '-' expects an Int predicate operand", n.Span)
			return value{}, &d
		}
		zero := lc.Ctx.FromInt(0, lc.Ctx.IntSort()).(z3.Int)
		return value{sort: sortInt, intTerm: zero.Sub(operand.intTerm)}, nil
	case token.Bang:
		if operand.sort != sortBool {
			d := diag.New("unary '!' expects a Bool predicate operand", n.Span)
			return value{}, &d
		}
		return value{sort: sortBool, boolTerm: operand.boolTerm.Not()}, nil
	default:
		d := diag.New("unsupported unary predicate operator", n.Span)
		return value{}, &d
	}
}

func lowerPredBinary(n *ast.PredBinary, lc *LoweringContext) (value, *diag.Diagnostic) {
	left, d := lowerPred(n.Left, lc)
	if d != nil {
		return value{}, d
	}
	right, d := lowerPred(n.Right, lc)
	if d != nil {
		return value{}, d
	}

	switch n.Op {
	case token.Plus, token.Minus, token.Slash:
		if left.sort != sortInt || right.sort != sortInt {
			d := diag.New(fmt.Sprintf("operator '%s' expects Int predicate operands", n.Op), n.OpSpan)
			return value{}, &d
		}
		return value{sort: sortInt, intTerm: arith(n.Op, left.intTerm, right.intTerm)}, nil
	case token.Star:
		if left.sort != sortInt || right.sort != sortInt {
			d := diag.New("operator '*' expects Int predicate operands", n.OpSpan)
			return value{}, &d
		}
		if !isIntLiteral(n.Left) && !isIntLiteral(n.Right) {
			d := diag.New("non-linear predicate", n.OpSpan)
			return value{}, &d
		}
		return value{sort: sortInt, intTerm: left.intTerm.Mul(right.intTerm)}, nil
	case token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		if left.sort != sortInt || right.sort != sortInt {
			d := diag.New(fmt.Sprintf("operator '%s' expects Int predicate operands", n.Op), n.OpSpan)
			return value{}, &d
		}
		return value{sort: sortBool, boolTerm: compare(n.Op, left.intTerm, right.intTerm)}, nil
	case token.EqualEqual, token.NotEqual:
		if left.sort != right.sort {
			d := diag.New("operator expects operands of the same predicate sort", n.OpSpan)
			return value{}, &d
		}
		var eq z3.Bool
		if left.sort == sortInt {
			eq = left.intTerm.Eq(right.intTerm)
		} else {
			eq = left.boolTerm.Eq(right.boolTerm)
		}
		if n.Op == token.NotEqual {
			eq = eq.Not()
		}
		return value{sort: sortBool, boolTerm: eq}, nil
	case token.AndAnd, token.OrOr:
		if left.sort != sortBool || right.sort != sortBool {
			d := diag.New(fmt.Sprintf("operator '%s' expects Bool predicate operands", n.Op), n.OpSpan)
			return value{}, &d
		}
		if n.Op == token.AndAnd {
			return value{sort: sortBool, boolTerm: left.boolTerm.And(right.boolTerm)}, nil
		}
		return value{sort: sortBool, boolTerm: left.boolTerm.Or(right.boolTerm)}, nil
	default:
		d := diag.New("unsupported predicate operator", n.OpSpan)
		return value{}, &d
	}
}

func arith(op token.Kind, a, b z3.Int) z3.Int {
	switch op {
	case token.Plus:
		return a.Add(b)
	case token.Minus:
		return a.Sub(b)
	case token.Slash:
		return a.Div(b)
	default:
		return a
	}
}

func compare(op token.Kind, a, b z3.Int) z3.Bool {
	switch op {
	case token.Less:
		return a.Lt(b)
	case token.LessEqual:
		return a.Le(b)
	case token.Greater:
		return a.Gt(b)
	default:
		return a.Ge(b)
	}
}

func isIntLiteral(p ast.Pred) bool {
	_, ok := p.(*ast.PredInt)
	return ok
}

// lowerExprSymbolic attempts to lower a general expression to an SMT
// term, for the `let x where P = e` symbolic binding of spec.md §4.H
// step 3. It succeeds only for the purely integer/boolean subset
// (literals, names already bound symbolically, and the arithmetic,
// comparison, and boolean operators); calls, strings, and anything
// else report ok=false so the caller can fall back to assuming the
// refinement instead of proving it.
func lowerExprSymbolic(e ast.Expr, lc *LoweringContext) (value, bool) {
	switch n := e.(type) {
	case *ast.IntLit:
		return value{sort: sortInt, intTerm: lc.Ctx.FromInt(n.Value, lc.Ctx.IntSort()).(z3.Int)}, true
	case *ast.BoolLit:
		return value{sort: sortBool, boolTerm: lc.Ctx.FromBool(n.Value)}, true
	case *ast.Name:
		if v, ok := lc.IntVars[n.Ident]; ok {
			return value{sort: sortInt, intTerm: v}, true
		}
		if v, ok := lc.BoolVars[n.Ident]; ok {
			return value{sort: sortBool, boolTerm: v}, true
		}
		return value{}, false
	case *ast.Group:
		return lowerExprSymbolic(n.Inner, lc)
	case *ast.UnaryExpr:
		operand, ok := lowerExprSymbolic(n.Expr, lc)
		if !ok {
			return value{}, false
		}
		switch n.Op {
		case token.Minus:
			if operand.sort != sortInt {
				return value{}, false
			}
			zero := lc.Ctx.FromInt(0, lc.Ctx.IntSort()).(z3.Int)
			return value{sort: sortInt, intTerm: zero.Sub(operand.intTerm)}, true
		case token.Bang:
			if operand.sort != sortBool {
				return value{}, false
			}
			return value{sort: sortBool, boolTerm: operand.boolTerm.Not()}, true
		}
		return value{}, false
	case *ast.BinaryExpr:
		left, ok := lowerExprSymbolic(n.Left, lc)
		if !ok {
			return value{}, false
		}
		right, ok := lowerExprSymbolic(n.Right, lc)
		if !ok {
			return value{}, false
		}
		switch n.Op {
		case token.Plus, token.Minus, token.Slash:
			if left.sort != sortInt || right.sort != sortInt {
				return value{}, false
			}
			return value{sort: sortInt, intTerm: arith(n.Op, left.intTerm, right.intTerm)}, true
		case token.Star:
			if left.sort != sortInt || right.sort != sortInt {
				return value{}, false
			}
			if !isExprIntLiteral(n.Left) && !isExprIntLiteral(n.Right) {
				return value{}, false
			}
			return value{sort: sortInt, intTerm: left.intTerm.Mul(right.intTerm)}, true
		case token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
			if left.sort != sortInt || right.sort != sortInt {
				return value{}, false
			}
			return value{sort: sortBool, boolTerm: compare(n.Op, left.intTerm, right.intTerm)}, true
		case token.EqualEqual, token.NotEqual:
			if left.sort != right.sort {
				return value{}, false
			}
			var eq z3.Bool
			if left.sort == sortInt {
				eq = left.intTerm.Eq(right.intTerm)
			} else {
				eq = left.boolTerm.Eq(right.boolTerm)
			}
			if n.Op == token.NotEqual {
				eq = eq.Not()
			}
			return value{sort: sortBool, boolTerm: eq}, true
		case token.AndAnd, token.OrOr:
			if left.sort != sortBool || right.sort != sortBool {
				return value{}, false
			}
			if n.Op == token.AndAnd {
				return value{sort: sortBool, boolTerm: left.boolTerm.And(right.boolTerm)}, true
			}
			return value{sort: sortBool, boolTerm: left.boolTerm.Or(right.boolTerm)}, true
		}
		return value{}, false
	default:
		return value{}, false
	}
}

func isExprIntLiteral(e ast.Expr) bool {
	_, ok := e.(*ast.IntLit)
	return ok
}
