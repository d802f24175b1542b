// Package resolve implements the two-pass name resolution of
// spec.md §4.E: a root scope of function names, then per-function
// parameter/local scopes with lexical, innermost-outward lookup. The
// scope-stack shape (push/pop per block, walk outward on lookup) is
// grounded on malphas-lang's internal/types/scope.go lexical-scope
// idiom, adapted to curlee's flat function/let/param binding forms and
// to producing dense SymbolIds plus ordered NameUses rather than a
// typed environment.
package resolve

import (
	"fmt"

	"github.com/curlee-lang/curlee/ast"
	"github.com/curlee-lang/curlee/diag"
	"github.com/curlee-lang/curlee/source"
)

// SymbolId is the dense integer identity of a declaration.
type SymbolId uint32

// SymbolKind classifies what a Symbol names.
type SymbolKind int

const (
	SymFunction SymbolKind = iota
	SymParam
	SymLet
)

// Symbol is a single resolved declaration. Symbols are created once
// and never mutated afterwards.
type Symbol struct {
	ID          SymbolId
	Name        string
	Kind        SymbolKind
	DefiningSpan source.Span
}

// NameUse records one resolved reference to a Symbol, in source order.
type NameUse struct {
	Target SymbolId
	Span   source.Span
}

// Resolution is the output of Resolve: every Symbol ever declared and
// every NameUse ever resolved, both in source order.
type Resolution struct {
	Symbols []Symbol
	Uses    []NameUse

	// FuncSymbols maps a function's *ast.Function to its SymbolId, for
	// the type checker to recover arity/result type without re-walking
	// the program.
	FuncSymbols map[*ast.Function]SymbolId

	// NameSymbol maps each resolved *ast.Name expression node to the
	// SymbolId it refers to.
	NameSymbol map[*ast.Name]SymbolId

	// ParamSymbol and LetSymbol map declaration sites to their SymbolId.
	ParamSymbol map[*ast.Param]SymbolId
	LetSymbol   map[*ast.Let]SymbolId

	// PredNameSymbol maps resolved predicate name references to the
	// SymbolId of the Int/Bool variable they name ("result" is never
	// present here — it is handled directly by the verifier).
	PredNameSymbol map[*ast.PredName]SymbolId
}

// MaxImportDepth is the maximum transitive import chain length the CLI
// driver's cross-file import-graph walk tolerates before emitting
// "import graph too deep" (see cmd/curlee's checkImportGraph, which
// does the actual file-opening and depth counting — that bookkeeping
// can't live here since resolve operates on a single already-parsed
// ast.Program and never touches the filesystem).
const MaxImportDepth = 64

// scope is one lexical level: a map of names declared directly within
// it to their SymbolId.
type scope struct {
	names map[string]SymbolId
}

func newScope() *scope { return &scope{names: map[string]SymbolId{}} }

type resolver struct {
	res   *Resolution
	diags []diag.Diagnostic
	scopes []*scope
}

// Resolve runs the two-pass resolution algorithm over prog and returns
// the Resolution, or a non-empty deterministically ordered diagnostic
// vector. Resolution continues past local errors (duplicate
// definitions, unknown names) to surface as many as possible.
func Resolve(prog *ast.Program) (*Resolution, []diag.Diagnostic) {
	r := &resolver{
		res: &Resolution{
			FuncSymbols:    map[*ast.Function]SymbolId{},
			NameSymbol:     map[*ast.Name]SymbolId{},
			ParamSymbol:    map[*ast.Param]SymbolId{},
			LetSymbol:      map[*ast.Let]SymbolId{},
			PredNameSymbol: map[*ast.PredName]SymbolId{},
		},
	}

	// Imports are rejected as a language feature (§4.E); the transitive
	// depth and imported-main checks require opening the imported
	// files themselves and so live in the CLI driver's import-graph
	// walk, not here.
	for _, imp := range prog.Imports {
		r.errorf(imp.Span, "imports are not implemented")
	}

	// Pass 1: declare every top-level function name in the root scope.
	root := newScope()
	r.scopes = []*scope{root}
	for _, fn := range prog.Functions {
		if existing, ok := root.names[fn.Name]; ok {
			prev := r.res.Symbols[existing]
			r.errorfRelated(fn.NameSpan, prev.DefiningSpan, "previous definition here",
				"duplicate function: '%s'", fn.Name)
			continue
		}
		id := r.declare(fn.Name, SymFunction, fn.NameSpan)
		root.names[fn.Name] = id
		r.res.FuncSymbols[fn] = id
	}

	// Pass 2: resolve each function body.
	for _, fn := range prog.Functions {
		r.resolveFunction(fn)
	}

	if len(r.diags) > 0 {
		diag.Sort(r.diags)
		return nil, r.diags
	}
	return r.res, nil
}

func (r *resolver) declare(name string, kind SymbolKind, span source.Span) SymbolId {
	id := SymbolId(len(r.res.Symbols))
	r.res.Symbols = append(r.res.Symbols, Symbol{ID: id, Name: name, Kind: kind, DefiningSpan: span})
	return id
}

func (r *resolver) errorf(span source.Span, format string, args ...any) {
	r.diags = append(r.diags, diag.New(fmt.Sprintf(format, args...), span))
}

func (r *resolver) errorfRelated(span, relatedSpan source.Span, relatedMsg, format string, args ...any) {
	d := diag.New(fmt.Sprintf(format, args...), span).WithRelated(relatedMsg, relatedSpan)
	r.diags = append(r.diags, d)
}

func (r *resolver) pushScope() { r.scopes = append(r.scopes, newScope()) }
func (r *resolver) popScope()  { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *resolver) declareInCurrentScope(name string, kind SymbolKind, span source.Span) (SymbolId, bool) {
	top := r.scopes[len(r.scopes)-1]
	if existing, ok := top.names[name]; ok {
		return existing, false
	}
	id := r.declare(name, kind, span)
	top.names[name] = id
	return id, true
}

// lookup searches scopes innermost-outward.
func (r *resolver) lookup(name string) (SymbolId, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if id, ok := r.scopes[i].names[name]; ok {
			return id, true
		}
	}
	return 0, false
}

func (r *resolver) resolveFunction(fn *ast.Function) {
	r.pushScope()
	defer r.popScope()

	for i := range fn.Params {
		param := &fn.Params[i]
		id, fresh := r.declareInCurrentScope(param.Name, SymParam, param.Span)
		if !fresh {
			existing := r.res.Symbols[id]
			r.errorfRelated(param.Span, existing.DefiningSpan, "previous definition here",
				"duplicate parameter: '%s'", param.Name)
			continue
		}
		r.res.ParamSymbol[param] = id
		if param.Refinement != nil {
			r.resolvePred(param.Refinement)
		}
	}

	// requires/ensures predicates see the parameters (and, for
	// ensures, "result" — handled specially by the verifier, not here).
	for _, p := range fn.Requires {
		r.resolvePred(p)
	}
	for _, p := range fn.Ensures {
		r.resolvePred(p)
	}

	if fn.Body != nil {
		r.resolveBlock(fn.Body)
	}
}

func (r *resolver) resolveBlock(b *ast.Block) {
	r.pushScope()
	defer r.popScope()
	for _, stmt := range b.Stmts {
		r.resolveStmt(stmt)
	}
}

// resolveStmt, resolveExpr, and resolvePred dispatch through the AST's
// Accept/Visitor pattern rather than a type switch: resolver implements
// StmtVisitor, ExprVisitor, and PredVisitor below, so this stage walks
// the tree the way informatter-nilan's own Accept-based visitors do.
func (r *resolver) resolveStmt(stmt ast.Stmt) { stmt.Accept(r) }
func (r *resolver) resolveExpr(e ast.Expr)    { e.Accept(r) }
func (r *resolver) resolvePred(p ast.Pred)    { p.Accept(r) }

// ---- ast.StmtVisitor ----

func (r *resolver) VisitLet(s *ast.Let) any {
	// The new binding is declared before its initializer is resolved, so
	// in `let x = x` the right-hand `x` names the *new* binding, as
	// spec.md §4.E calls out.
	id, fresh := r.declareInCurrentScope(s.Name, SymLet, s.NameSpan)
	if !fresh {
		existing := r.res.Symbols[id]
		r.errorfRelated(s.NameSpan, existing.DefiningSpan, "previous definition here",
			"duplicate binding: '%s'", s.Name)
	}
	r.res.LetSymbol[s] = id
	if s.Refinement != nil {
		r.resolvePred(s.Refinement)
	}
	r.resolveExpr(s.Initializer)
	return nil
}

func (r *resolver) VisitReturn(s *ast.Return) any {
	if s.Expr != nil {
		r.resolveExpr(s.Expr)
	}
	return nil
}

func (r *resolver) VisitExprStmt(s *ast.ExprStmt) any {
	r.resolveExpr(s.Expr)
	return nil
}

func (r *resolver) VisitBlock(s *ast.Block) any {
	r.resolveBlock(s)
	return nil
}

func (r *resolver) VisitIf(s *ast.If) any {
	r.resolveExpr(s.Cond)
	r.resolveBlock(s.Then)
	if s.Else != nil {
		r.resolveBlock(s.Else)
	}
	return nil
}

func (r *resolver) VisitWhile(s *ast.While) any {
	r.resolveExpr(s.Cond)
	r.resolveBlock(s.Body)
	return nil
}

// ---- ast.ExprVisitor ----

func (r *resolver) VisitIntLit(*ast.IntLit) any       { return nil }
func (r *resolver) VisitStringLit(*ast.StringLit) any { return nil }
func (r *resolver) VisitBoolLit(*ast.BoolLit) any     { return nil }

func (r *resolver) VisitName(n *ast.Name) any {
	id, ok := r.lookup(n.Ident)
	if !ok {
		r.errorf(n.Span, "unknown name '%s'", n.Ident)
		return nil
	}
	r.res.NameSymbol[n] = id
	r.res.Uses = append(r.res.Uses, NameUse{Target: id, Span: n.Span})
	return nil
}

func (r *resolver) VisitUnary(n *ast.UnaryExpr) any {
	r.resolveExpr(n.Expr)
	return nil
}

func (r *resolver) VisitBinary(n *ast.BinaryExpr) any {
	r.resolveExpr(n.Left)
	r.resolveExpr(n.Right)
	return nil
}

func (r *resolver) VisitCall(n *ast.Call) any {
	if id, ok := r.lookup(n.Callee); ok {
		r.res.Uses = append(r.res.Uses, NameUse{Target: id, Span: n.Span})
	} else {
		r.errorf(n.Span, "unknown name '%s'", n.Callee)
	}
	for _, arg := range n.Args {
		r.resolveExpr(arg)
	}
	return nil
}

func (r *resolver) VisitGroup(n *ast.Group) any {
	r.resolveExpr(n.Inner)
	return nil
}

// ---- ast.PredVisitor ----

func (r *resolver) VisitPredInt(*ast.PredInt) any { return nil }

func (r *resolver) VisitPredName(n *ast.PredName) any {
	if n.Ident == "result" || n.Ident == "true" || n.Ident == "false" {
		return nil
	}
	id, ok := r.lookup(n.Ident)
	if !ok {
		r.errorf(n.Span, "unknown name '%s'", n.Ident)
		return nil
	}
	r.res.PredNameSymbol[n] = id
	r.res.Uses = append(r.res.Uses, NameUse{Target: id, Span: n.Span})
	return nil
}

func (r *resolver) VisitPredUnary(n *ast.PredUnary) any {
	r.resolvePred(n.Expr)
	return nil
}

func (r *resolver) VisitPredBinary(n *ast.PredBinary) any {
	r.resolvePred(n.Left)
	r.resolvePred(n.Right)
	return nil
}

func (r *resolver) VisitPredGroup(n *ast.PredGroup) any {
	r.resolvePred(n.Inner)
	return nil
}
