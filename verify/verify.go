package verify

import (
	"fmt"

	"github.com/aclements/go-z3/z3"
	"github.com/curlee-lang/curlee/ast"
	"github.com/curlee-lang/curlee/diag"
	"github.com/curlee-lang/curlee/resolve"
	curleetypes "github.com/curlee-lang/curlee/types"
)

// Verified is the opaque marker returned by Verify on success, mirroring
// curlee::verification::Verified. It carries no data; its only role is
// to make "no proof, no run" a type-level distinction from a raw bool.
type Verified struct{}

// Verify discharges every function's `requires`/`ensures` obligations
// per spec.md §4.H. It returns a non-nil Verified together with any
// Note-severity diagnostics (e.g. an assumed-but-unproved `let`
// refinement) when every obligation is proved; it returns a nil
// Verified together with the full diagnostic set — including the
// failing obligations — otherwise.
func Verify(prog *ast.Program, res *resolve.Resolution, info *curleetypes.Info) (*Verified, []diag.Diagnostic) {
	v := &verifier{res: res, info: info}
	for _, fn := range prog.Functions {
		v.verifyFunction(fn)
	}
	diag.Sort(v.diags)

	for _, d := range v.diags {
		if d.Severity == diag.SeverityError {
			return nil, v.diags
		}
	}
	return &Verified{}, v.diags
}

type verifier struct {
	res   *resolve.Resolution
	info  *curleetypes.Info
	diags []diag.Diagnostic
}

func (v *verifier) verifyFunction(fn *ast.Function) {
	solver := NewSolver()
	lc := NewLoweringContext(solver.Context())

	for i := range fn.Params {
		p := &fn.Params[i]
		pt, ok := curleetypes.ParseTypeName(p.TypeName)
		if !ok {
			continue
		}
		switch pt {
		case curleetypes.Int:
			lc.IntVars[p.Name] = solver.Context().IntConst(p.Name)
		case curleetypes.Bool:
			lc.BoolVars[p.Name] = solver.Context().BoolConst(p.Name)
		}
		if p.Refinement != nil {
			term, d := LowerPredicate(p.Refinement, lc)
			if d != nil {
				v.diags = append(v.diags, *d)
				continue
			}
			solver.Add(term)
		}
	}

	for _, req := range fn.Requires {
		term, d := LowerPredicate(req, lc)
		if d != nil {
			v.diags = append(v.diags, *d)
			continue
		}
		solver.Add(term)
	}

	resultType := curleetypes.Unit
	if fn.ReturnType != "" {
		if rt, ok := curleetypes.ParseTypeName(fn.ReturnType); ok {
			resultType = rt
		}
	}
	switch resultType {
	case curleetypes.Int:
		r := solver.Context().IntConst("result")
		lc.ResultInt = &r
	case curleetypes.Bool:
		r := solver.Context().BoolConst("result")
		lc.ResultBool = &r
	}

	if fn.Body != nil {
		v.walkBlock(fn.Body, fn, solver, lc)
	}
}

// walkBlock walks statements symbolically, binding `let`s into lc and
// discharging `ensures` at every `return`.
func (v *verifier) walkBlock(b *ast.Block, fn *ast.Function, solver *Solver, lc *LoweringContext) {
	for _, stmt := range b.Stmts {
		v.walkStmt(stmt, fn, solver, lc)
	}
}

func (v *verifier) walkStmt(stmt ast.Stmt, fn *ast.Function, solver *Solver, lc *LoweringContext) {
	switch s := stmt.(type) {
	case *ast.Let:
		v.bindLet(s, solver, lc)
	case *ast.Return:
		v.checkReturn(s, fn, solver, lc)
	case *ast.Block:
		v.walkBlock(s, fn, solver, lc)
	case *ast.If:
		v.walkBlock(s.Then, fn, solver, lc)
		if s.Else != nil {
			v.walkBlock(s.Else, fn, solver, lc)
		}
	case *ast.While:
		v.walkBlock(s.Body, fn, solver, lc)
	case *ast.ExprStmt:
		// expression statements have no symbolic effect the verifier tracks
	}
}

// bindLet introduces a fresh SMT variable for a `let`, per spec.md
// §4.H step 3. Only Int/Bool lets participate in the symbolic state;
// String/Unit lets are skipped (their names simply never resolve in
// a later predicate, surfacing as "unknown predicate name" there).
func (v *verifier) bindLet(s *ast.Let, solver *Solver, lc *LoweringContext) {
	declared := s.TypeName
	if declared == "" {
		if t, ok := v.info.ExprTypes[s.Initializer]; ok {
			declared = t.String()
		}
	}
	pt, ok := curleetypes.ParseTypeName(declared)
	if !ok || (pt != curleetypes.Int && pt != curleetypes.Bool) {
		return
	}

	switch pt {
	case curleetypes.Int:
		lc.IntVars[s.Name] = solver.Context().IntConst(s.Name)
	case curleetypes.Bool:
		lc.BoolVars[s.Name] = solver.Context().BoolConst(s.Name)
	}

	symbolicValue, exprOK := lowerExprSymbolic(s.Initializer, lc)
	if exprOK {
		solver.Add(bindEquality(pt, lc, s.Name, symbolicValue))
	}

	if s.Refinement == nil {
		return
	}
	term, d := LowerPredicate(s.Refinement, lc)
	if d != nil {
		v.diags = append(v.diags, *d)
		return
	}
	solver.Add(term)
	if !exprOK {
		v.diags = append(v.diags, diag.NewNote(
			fmt.Sprintf("refinement on '%s' assumed, not proved: initializer is not expressible in the solver's theory", s.Name),
			s.Span,
		))
	}
}

func bindEquality(pt curleetypes.Type, lc *LoweringContext, name string, rhs value) z3.Bool {
	if pt == curleetypes.Int {
		return lc.IntVars[name].Eq(rhs.intTerm)
	}
	return lc.BoolVars[name].Eq(rhs.boolTerm)
}

// checkReturn discharges every `ensures` obligation against the
// returned value, per spec.md §4.H step 4.
func (v *verifier) checkReturn(ret *ast.Return, fn *ast.Function, solver *Solver, lc *LoweringContext) {
	if len(fn.Ensures) == 0 {
		return
	}
	if ret.Expr == nil || (lc.ResultInt == nil && lc.ResultBool == nil) {
		return
	}
	retValue, ok := lowerExprSymbolic(ret.Expr, lc)
	if !ok {
		// Unexpressible return expressions cannot be checked against
		// ensures; this is conservative rather than unsound.
		return
	}

	solver.Push()
	defer solver.Pop()

	var resultEq z3.Bool
	if lc.ResultInt != nil {
		resultEq = lc.ResultInt.Eq(retValue.intTerm)
	} else {
		resultEq = lc.ResultBool.Eq(retValue.boolTerm)
	}
	solver.Add(resultEq)

	for _, ens := range fn.Ensures {
		term, d := LowerPredicate(ens, lc)
		if d != nil {
			v.diags = append(v.diags, *d)
			continue
		}

		solver.Push()
		solver.Add(term.Not())
		result := solver.Check()
		switch result {
		case Unsat:
			// obligation proved
		case Sat:
			vars := resultVars(lc)
			model, _ := solver.ModelFor(vars...)
			msg := "ensures obligation not satisfied"
			if model != nil {
				msg = fmt.Sprintf("%s\n%s", msg, FormatModel(model))
			}
			v.diags = append(v.diags, diag.New(msg, ens.NodeSpan()))
		case Unknown:
			v.diags = append(v.diags, diag.New("ensures obligation could not be decided", ens.NodeSpan()))
		}
		solver.Pop()
	}
}

func resultVars(lc *LoweringContext) []namedTerm {
	var vars []namedTerm
	for name, term := range lc.IntVars {
		vars = append(vars, IntVar(name, term))
	}
	for name, term := range lc.BoolVars {
		vars = append(vars, BoolVar(name, term))
	}
	if lc.ResultInt != nil {
		vars = append(vars, IntVar("result", *lc.ResultInt))
	}
	if lc.ResultBool != nil {
		vars = append(vars, BoolVar("result", *lc.ResultBool))
	}
	return vars
}
