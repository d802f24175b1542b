// Package ast defines the typed tree produced by the parser: Program,
// Function, Param, and the Stmt/Expr/Pred sum types of spec.md §3. The
// visitor Accept/Visit pattern is carried over directly from
// informatter-nilan/ast/{expressions,statements,interfaces}.go, split
// three ways (Expr/Stmt/Pred) to match curlee's grammar.
package ast

import (
	"github.com/curlee-lang/curlee/source"
	"github.com/curlee-lang/curlee/token"
)

// Program is an ordered sequence of imports followed by functions.
type Program struct {
	Imports   []Import
	Functions []*Function
}

// Import is a single `import dotted.path;` declaration.
type Import struct {
	Path string
	Span source.Span
}

// Param is one function parameter: a name, a type name, and an
// optional refinement predicate ("where P").
type Param struct {
	Name       string
	TypeName   string
	Refinement Pred // nil if absent
	Span       source.Span
}

// Function is `fn name(params) -> ret requires...; ensures...; body`.
type Function struct {
	Name       string
	Params     []Param
	Requires   []Pred
	Ensures    []Pred
	ReturnType string // "" if absent (Unit)
	Body       *Block
	Span       source.Span
	NameSpan   source.Span
}

// Node is the common shape of every AST, expression, statement, and
// predicate node: it knows its own source span.
type Node interface {
	NodeSpan() source.Span
}

// ---- Statements ----

// Stmt is the sum type Let | Return | ExprStmt | Block | If | While.
type Stmt interface {
	Node
	Accept(v StmtVisitor) any
}

// StmtVisitor dispatches over every Stmt variant.
type StmtVisitor interface {
	VisitLet(*Let) any
	VisitReturn(*Return) any
	VisitExprStmt(*ExprStmt) any
	VisitBlock(*Block) any
	VisitIf(*If) any
	VisitWhile(*While) any
}

// Let is `let name (: type (where pred)?)? = expr;`.
type Let struct {
	Name        string
	TypeName    string // "" if omitted
	Refinement  Pred   // nil if omitted
	Initializer Expr
	Span        source.Span
	NameSpan    source.Span
}

func (n *Let) NodeSpan() source.Span    { return n.Span }
func (n *Let) Accept(v StmtVisitor) any { return v.VisitLet(n) }

// Return is `return expr?;`. Expr is nil for a bare `return;`.
type Return struct {
	Expr Expr
	Span source.Span
}

func (n *Return) NodeSpan() source.Span    { return n.Span }
func (n *Return) Accept(v StmtVisitor) any { return v.VisitReturn(n) }

// ExprStmt is an expression used as a statement: `expr;`.
type ExprStmt struct {
	Expr Expr
	Span source.Span
}

func (n *ExprStmt) NodeSpan() source.Span    { return n.Span }
func (n *ExprStmt) Accept(v StmtVisitor) any { return v.VisitExprStmt(n) }

// Block is `{ stmt* }`.
type Block struct {
	Stmts []Stmt
	Span  source.Span
}

func (n *Block) NodeSpan() source.Span    { return n.Span }
func (n *Block) Accept(v StmtVisitor) any { return v.VisitBlock(n) }

// If is `if cond thenBlock (else elseBlock)?`.
type If struct {
	Cond Expr
	Then *Block
	Else *Block // nil if absent
	Span source.Span
}

func (n *If) NodeSpan() source.Span    { return n.Span }
func (n *If) Accept(v StmtVisitor) any { return v.VisitIf(n) }

// While is `while cond body`.
type While struct {
	Cond Expr
	Body *Block
	Span source.Span
}

func (n *While) NodeSpan() source.Span    { return n.Span }
func (n *While) Accept(v StmtVisitor) any { return v.VisitWhile(n) }

// ---- Expressions ----

// Expr is the sum type Int | String | Bool | Name | Unary | Binary |
// Call | Group.
type Expr interface {
	Node
	Accept(v ExprVisitor) any
}

// ExprVisitor dispatches over every Expr variant.
type ExprVisitor interface {
	VisitIntLit(*IntLit) any
	VisitStringLit(*StringLit) any
	VisitBoolLit(*BoolLit) any
	VisitName(*Name) any
	VisitUnary(*UnaryExpr) any
	VisitBinary(*BinaryExpr) any
	VisitCall(*Call) any
	VisitGroup(*Group) any
}

// IntLit is an integer literal expression.
type IntLit struct {
	Value int64
	Span  source.Span
}

func (n *IntLit) NodeSpan() source.Span    { return n.Span }
func (n *IntLit) Accept(v ExprVisitor) any { return v.VisitIntLit(n) }

// StringLit is a string literal expression; Value holds the unescaped
// string.
type StringLit struct {
	Value string
	Span  source.Span
}

func (n *StringLit) NodeSpan() source.Span    { return n.Span }
func (n *StringLit) Accept(v ExprVisitor) any { return v.VisitStringLit(n) }

// BoolLit is a `true`/`false` literal expression.
type BoolLit struct {
	Value bool
	Span  source.Span
}

func (n *BoolLit) NodeSpan() source.Span    { return n.Span }
func (n *BoolLit) Accept(v ExprVisitor) any { return v.VisitBoolLit(n) }

// Name is a bare identifier expression, resolved to a symbol by the
// resolver.
type Name struct {
	Ident string
	Span  source.Span
}

func (n *Name) NodeSpan() source.Span    { return n.Span }
func (n *Name) Accept(v ExprVisitor) any { return v.VisitName(n) }

// UnaryExpr is `-e` or `!e`.
type UnaryExpr struct {
	Op   token.Kind
	Expr Expr
	Span source.Span
}

func (n *UnaryExpr) NodeSpan() source.Span    { return n.Span }
func (n *UnaryExpr) Accept(v ExprVisitor) any { return v.VisitUnary(n) }

// BinaryExpr is `left op right`.
type BinaryExpr struct {
	Op    token.Kind
	Left  Expr
	Right Expr
	Span  source.Span
	OpSpan source.Span
}

func (n *BinaryExpr) NodeSpan() source.Span    { return n.Span }
func (n *BinaryExpr) Accept(v ExprVisitor) any { return v.VisitBinary(n) }

// Call is `callee(args...)`.
type Call struct {
	Callee string
	Args   []Expr
	Span   source.Span
}

func (n *Call) NodeSpan() source.Span    { return n.Span }
func (n *Call) Accept(v ExprVisitor) any { return v.VisitCall(n) }

// Group is a parenthesized expression; transparent to typing and
// lowering.
type Group struct {
	Inner Expr
	Span  source.Span
}

func (n *Group) NodeSpan() source.Span    { return n.Span }
func (n *Group) Accept(v ExprVisitor) any { return v.VisitGroup(n) }

// ---- Predicates ----

// Pred is the pure predicate sum type Int | Name | Unary | Binary |
// Group restricted to the integer/boolean subset (spec.md §3).
type Pred interface {
	Node
	Accept(v PredVisitor) any
}

// PredVisitor dispatches over every Pred variant.
type PredVisitor interface {
	VisitPredInt(*PredInt) any
	VisitPredName(*PredName) any
	VisitPredUnary(*PredUnary) any
	VisitPredBinary(*PredBinary) any
	VisitPredGroup(*PredGroup) any
}

// PredInt is an integer literal within a predicate.
type PredInt struct {
	Value int64
	Span  source.Span
}

func (n *PredInt) NodeSpan() source.Span    { return n.Span }
func (n *PredInt) Accept(v PredVisitor) any { return v.VisitPredInt(n) }

// PredName is a bare identifier within a predicate, including the
// special name "result".
type PredName struct {
	Ident string
	Span  source.Span
}

func (n *PredName) NodeSpan() source.Span    { return n.Span }
func (n *PredName) Accept(v PredVisitor) any { return v.VisitPredName(n) }

// PredUnary is `-p` or `!p` within a predicate.
type PredUnary struct {
	Op   token.Kind
	Expr Pred
	Span source.Span
}

func (n *PredUnary) NodeSpan() source.Span    { return n.Span }
func (n *PredUnary) Accept(v PredVisitor) any { return v.VisitPredUnary(n) }

// PredBinary is `left op right` within a predicate.
type PredBinary struct {
	Op     token.Kind
	Left   Pred
	Right  Pred
	Span   source.Span
	OpSpan source.Span
}

func (n *PredBinary) NodeSpan() source.Span    { return n.Span }
func (n *PredBinary) Accept(v PredVisitor) any { return v.VisitPredBinary(n) }

// PredGroup is a parenthesized predicate; transparent to lowering.
type PredGroup struct {
	Inner Pred
	Span  source.Span
}

func (n *PredGroup) NodeSpan() source.Span    { return n.Span }
func (n *PredGroup) Accept(v PredVisitor) any { return v.VisitPredGroup(n) }
