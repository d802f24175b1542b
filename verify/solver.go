package verify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aclements/go-z3/z3"
)

// CheckResult is the three-valued outcome of an SMT check, matching
// curlee::verification::CheckResult.
type CheckResult int

const (
	Sat CheckResult = iota
	Unsat
	Unknown
)

func (r CheckResult) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// ModelEntry is one variable/value pair from a counter-model.
type ModelEntry struct {
	Name  string
	Value string
}

// Model is a satisfying assignment returned by Solver.ModelFor.
type Model struct {
	Entries []ModelEntry
}

// Solver wraps a single SMT context and incremental solver, matching
// curlee::verification::Solver: push/pop enforce a stack discipline,
// and the last check result and model are cleared on every state
// change (add/push/pop), mirroring solver.cpp.
type Solver struct {
	ctx        *z3.Context
	solver     *z3.Solver
	lastResult *CheckResult
	lastModel  *z3.Model
}

// NewSolver creates a Solver over a fresh SMT context.
func NewSolver() *Solver {
	ctx := z3.NewContext(z3.NewConfig())
	return &Solver{ctx: ctx, solver: ctx.NewSolver()}
}

// Context returns the solver's underlying SMT context, for building
// the LoweringContext that predicates are lowered against.
func (s *Solver) Context() *z3.Context { return s.ctx }

// Add asserts a boolean constraint into the current scope.
func (s *Solver) Add(constraint z3.Bool) {
	s.solver.Assert(constraint)
	s.invalidate()
}

// Push opens a new backtracking scope.
func (s *Solver) Push() {
	s.solver.Push()
	s.invalidate()
}

// Pop closes the innermost backtracking scope, discarding everything
// asserted since the matching Push.
func (s *Solver) Pop() {
	s.solver.Pop(1)
	s.invalidate()
}

func (s *Solver) invalidate() {
	s.lastResult = nil
	s.lastModel = nil
}

// Check runs the solver and caches the result and, when satisfiable,
// the model, for ModelFor.
func (s *Solver) Check() CheckResult {
	res, err := s.solver.Check()
	var result CheckResult
	switch {
	case err != nil:
		result = Unknown
	case res:
		result = Sat
	default:
		result = Unsat
	}
	s.lastResult = &result
	if result == Sat {
		model := s.solver.Model()
		s.lastModel = model
	} else {
		s.lastModel = nil
	}
	return result
}

// namedTerm pairs a variable name with the SMT term it was bound to,
// for ModelFor / FormatModel to report human-readable counter-models.
type namedTerm struct {
	name string
	term z3.Value
}

// IntVar returns a namedTerm for an integer variable, for use with
// ModelFor.
func IntVar(name string, term z3.Int) namedTerm { return namedTerm{name: name, term: term} }

// BoolVar returns a namedTerm for a boolean variable, for use with
// ModelFor.
func BoolVar(name string, term z3.Bool) namedTerm { return namedTerm{name: name, term: term} }

// ModelFor evaluates vars against the last satisfying model. It
// returns (nil, false) unless the last Check() call returned Sat.
func (s *Solver) ModelFor(vars ...namedTerm) (*Model, bool) {
	if s.lastResult == nil || *s.lastResult != Sat || s.lastModel == nil {
		return nil, false
	}
	m := &Model{}
	for _, v := range vars {
		evaluated := s.lastModel.Eval(v.term, true)
		m.Entries = append(m.Entries, ModelEntry{Name: v.name, Value: fmt.Sprint(evaluated)})
	}
	return m, true
}

// FormatModel sorts a Model's entries by name and renders them as
// "name = value" lines.
func FormatModel(m *Model) string {
	entries := append([]ModelEntry(nil), m.Entries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s = %s", e.Name, e.Value)
	}
	return strings.Join(lines, "\n")
}
