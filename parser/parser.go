// Package parser implements the Pratt/recursive-descent parser of
// spec.md §4.D. The token-stream position tracking (Peek/advance/
// consume) is carried over from informatter-nilan/parser/parser.go;
// the operator precedence table is adapted from
// informatter-nilan/compiler/compiler.go's parseRule/precedence idiom,
// generalized to the full expr/pred grammar and with the recovery
// strategy (statement/function-boundary resync) spec.md §7 requires.
package parser

import (
	"fmt"

	"github.com/curlee-lang/curlee/ast"
	"github.com/curlee-lang/curlee/diag"
	"github.com/curlee-lang/curlee/source"
	"github.com/curlee-lang/curlee/token"
)

// precedence levels, low to high, matching spec.md §4.D.
const (
	precNone = iota
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
)

var binaryPrecedence = map[token.Kind]int{
	token.OrOr:         precOr,
	token.AndAnd:       precAnd,
	token.EqualEqual:   precEquality,
	token.NotEqual:     precEquality,
	token.Less:         precComparison,
	token.LessEqual:    precComparison,
	token.Greater:      precComparison,
	token.GreaterEqual: precComparison,
	token.Plus:         precTerm,
	token.Minus:        precTerm,
	token.Star:         precFactor,
	token.Slash:        precFactor,
}

// Parser parses a fixed token slice into an ast.Program.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic
}

// New creates a Parser over the given token slice. tokens must end
// with a token.Eof, as produced by lexer.Scan.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses the Parser's token stream into a Program, or returns a
// non-empty, deterministically ordered diagnostic vector.
func Parse(tokens []token.Token) (*ast.Program, []diag.Diagnostic) {
	p := New(tokens)
	prog := p.parseProgram()
	if len(p.diags) > 0 {
		diag.Sort(p.diags)
		return nil, p.diags
	}
	return prog, nil
}

func (p *Parser) cur() token.Token  { return p.tokens[p.pos] }
func (p *Parser) atEnd() bool       { return p.cur().Kind == token.Eof }
func (p *Parser) check(k token.Kind) bool {
	return p.cur().Kind == k
}

func (p *Parser) advance() token.Token {
	tok := p.tokens[p.pos]
	if !p.atEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

// expect consumes the current token if it matches kind, else records a
// diagnostic and returns the current token without consuming it.
func (p *Parser) expect(kind token.Kind, what string) token.Token {
	if p.check(kind) {
		return p.advance()
	}
	p.errorf(p.cur().Span, "expected %s, found '%s'", what, p.cur().Lexeme)
	return p.cur()
}

func (p *Parser) errorf(span source.Span, format string, args ...any) {
	p.diags = append(p.diags, diag.New(fmt.Sprintf(format, args...), span))
}

func (p *Parser) errorfRelated(span source.Span, relatedSpan source.Span, relatedMsg string, format string, args ...any) {
	d := diag.New(fmt.Sprintf(format, args...), span).WithRelated(relatedMsg, relatedSpan)
	p.diags = append(p.diags, d)
}

// synchronize skips tokens until a likely statement/declaration
// boundary, so the parser can keep surfacing further diagnostics
// instead of aborting entirely, per spec.md §7. It always consumes at
// least one token so a run of tokens that none of the stop conditions
// ever match (e.g. a stray '}' at top level) cannot stall the parser.
func (p *Parser) synchronize() {
	if p.atEnd() {
		return
	}
	if p.cur().Kind == token.Semicolon {
		p.advance()
		return
	}
	p.advance()
	for !p.atEnd() {
		if p.cur().Kind == token.Semicolon {
			p.advance()
			return
		}
		switch p.cur().Kind {
		case token.KwFn, token.KwImport:
			return
		}
		p.advance()
	}
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}

	sawDeclaration := false
	var firstDeclSpan source.Span
	for !p.atEnd() {
		if p.check(token.KwImport) {
			imp := p.parseImport()
			if sawDeclaration {
				p.errorfRelated(imp.Span, firstDeclSpan, "first declaration here",
					"import statements must precede all other declarations")
			}
			prog.Imports = append(prog.Imports, imp)
			continue
		}
		if p.check(token.KwFn) {
			if !sawDeclaration {
				sawDeclaration = true
				firstDeclSpan = p.cur().Span
			}
			fn := p.parseFunction()
			if fn != nil {
				prog.Functions = append(prog.Functions, fn)
			}
			continue
		}
		p.errorf(p.cur().Span, "unexpected token '%s'", p.cur().Lexeme)
		p.synchronize()
	}
	return prog
}

func (p *Parser) parseImport() ast.Import {
	start := p.cur().Span
	p.advance() // 'import'
	path := ""
	if p.check(token.Ident) {
		path = p.advance().Lexeme
		for p.check(token.Dot) {
			p.advance()
			path += "."
			if p.check(token.Ident) {
				path += p.advance().Lexeme
			}
		}
	} else {
		p.errorf(p.cur().Span, "expected import path, found '%s'", p.cur().Lexeme)
	}
	end := p.cur().Span
	p.expect(token.Semicolon, "';'")
	return ast.Import{Path: path, Span: source.Span{Start: start.Start, End: end.End}}
}

func (p *Parser) parseFunction() *ast.Function {
	start := p.cur().Span
	p.advance() // 'fn'
	nameTok := p.expect(token.Ident, "function name")
	name := nameTok.Lexeme

	p.expect(token.LParen, "'('")
	var params []ast.Param
	if !p.check(token.RParen) {
		for {
			params = append(params, p.parseParam())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.expect(token.RParen, "')'")

	returnType := ""
	if p.match(token.Arrow) {
		returnType = p.expect(token.Ident, "return type").Lexeme
	}

	var requires, ensures []ast.Pred
	for p.check(token.KwRequires) || p.check(token.KwEnsures) {
		if p.match(token.KwRequires) {
			requires = append(requires, p.parsePred())
			p.expect(token.Semicolon, "';'")
		} else {
			p.advance() // 'ensures'
			ensures = append(ensures, p.parsePred())
			p.expect(token.Semicolon, "';'")
		}
	}

	body := p.parseBlock()
	end := start
	if body != nil {
		end = body.Span
	}

	return &ast.Function{
		Name:       name,
		Params:     params,
		Requires:   requires,
		Ensures:    ensures,
		ReturnType: returnType,
		Body:       body,
		Span:       source.Span{Start: start.Start, End: end.End},
		NameSpan:   nameTok.Span,
	}
}

func (p *Parser) parseParam() ast.Param {
	nameTok := p.expect(token.Ident, "parameter name")
	p.expect(token.Colon, "':'")
	typeTok := p.expect(token.Ident, "parameter type")
	var refinement ast.Pred
	end := typeTok.Span
	if p.match(token.KwWhere) {
		refinement = p.parsePred()
		end = refinement.NodeSpan()
	}
	return ast.Param{
		Name:       nameTok.Lexeme,
		TypeName:   typeTok.Lexeme,
		Refinement: refinement,
		Span:       source.Span{Start: nameTok.Span.Start, End: end.End},
	}
}

func (p *Parser) parseBlock() *ast.Block {
	start := p.cur().Span
	p.expect(token.LBrace, "'{'")
	var stmts []ast.Stmt
	for !p.check(token.RBrace) && !p.atEnd() {
		stmt := p.parseStmt()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	end := p.cur().Span
	p.expect(token.RBrace, "'}'")
	return &ast.Block{Stmts: stmts, Span: source.Span{Start: start.Start, End: end.End}}
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur().Kind {
	case token.KwLet:
		return p.parseLet()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.LBrace:
		return p.parseBlock()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseLet() ast.Stmt {
	start := p.cur().Span
	p.advance() // 'let'
	nameTok := p.expect(token.Ident, "variable name")

	typeName := ""
	var refinement ast.Pred
	if p.match(token.Colon) {
		typeName = p.expect(token.Ident, "type name").Lexeme
		if p.match(token.KwWhere) {
			refinement = p.parsePred()
		}
	}
	p.expect(token.Assign, "'='")
	init := p.parseExpr()
	end := p.cur().Span
	p.expect(token.Semicolon, "';'")

	return &ast.Let{
		Name:        nameTok.Lexeme,
		TypeName:    typeName,
		Refinement:  refinement,
		Initializer: init,
		Span:        source.Span{Start: start.Start, End: end.End},
		NameSpan:    nameTok.Span,
	}
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.cur().Span
	p.advance() // 'return'
	var expr ast.Expr
	if !p.check(token.Semicolon) {
		expr = p.parseExpr()
	}
	end := p.cur().Span
	p.expect(token.Semicolon, "';'")
	return &ast.Return{Expr: expr, Span: source.Span{Start: start.Start, End: end.End}}
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.cur().Span
	p.advance() // 'if'
	cond := p.parseExpr()
	then := p.parseBlock()
	var elseBlock *ast.Block
	end := then.Span
	if p.match(token.KwElse) {
		elseBlock = p.parseBlock()
		end = elseBlock.Span
	}
	return &ast.If{Cond: cond, Then: then, Else: elseBlock, Span: source.Span{Start: start.Start, End: end.End}}
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.cur().Span
	p.advance() // 'while'
	cond := p.parseExpr()
	body := p.parseBlock()
	return &ast.While{Cond: cond, Body: body, Span: source.Span{Start: start.Start, End: body.Span.End}}
}

func (p *Parser) parseExprStmt() ast.Stmt {
	start := p.cur().Span
	expr := p.parseExpr()
	end := p.cur().Span
	p.expect(token.Semicolon, "';'")
	return &ast.ExprStmt{Expr: expr, Span: source.Span{Start: start.Start, End: end.End}}
}

// ---- expression precedence climbing ----

func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinaryExpr(precOr)
}

func (p *Parser) parseBinaryExpr(minPrec int) ast.Expr {
	left := p.parseUnaryExpr()
	for {
		op := p.cur().Kind
		prec, ok := binaryPrecedence[op]
		if !ok || prec < minPrec {
			return left
		}
		opTok := p.advance()
		right := p.parseBinaryExpr(prec + 1)
		left = &ast.BinaryExpr{
			Op:     op,
			Left:   left,
			Right:  right,
			Span:   source.Span{Start: left.NodeSpan().Start, End: right.NodeSpan().End},
			OpSpan: opTok.Span,
		}
	}
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	if p.check(token.Minus) || p.check(token.Bang) {
		opTok := p.advance()
		operand := p.parseUnaryExpr()
		return &ast.UnaryExpr{Op: opTok.Kind, Expr: operand, Span: source.Span{Start: opTok.Span.Start, End: operand.NodeSpan().End}}
	}
	return p.parseCallOrPrimary()
}

func (p *Parser) parseCallOrPrimary() ast.Expr {
	expr := p.parsePrimary()
	if name, ok := expr.(*ast.Name); ok && p.check(token.LParen) {
		p.advance()
		var args []ast.Expr
		if !p.check(token.RParen) {
			for {
				args = append(args, p.parseExpr())
				if !p.match(token.Comma) {
					break
				}
			}
		}
		end := p.cur().Span
		p.expect(token.RParen, "')'")
		return &ast.Call{Callee: name.Ident, Args: args, Span: source.Span{Start: name.Span.Start, End: end.End}}
	}
	return expr
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.cur()
	switch tok.Kind {
	case token.Int:
		p.advance()
		return &ast.IntLit{Value: tok.Literal.(int64), Span: tok.Span}
	case token.String:
		p.advance()
		return &ast.StringLit{Value: tok.Literal.(string), Span: tok.Span}
	case token.KwTrue, token.KwFalse:
		p.advance()
		return &ast.BoolLit{Value: tok.Literal.(bool), Span: tok.Span}
	case token.Ident:
		p.advance()
		return &ast.Name{Ident: tok.Lexeme, Span: tok.Span}
	case token.LParen:
		p.advance()
		inner := p.parseExpr()
		end := p.cur().Span
		p.expect(token.RParen, "')'")
		return &ast.Group{Inner: inner, Span: source.Span{Start: tok.Span.Start, End: end.End}}
	default:
		p.errorf(tok.Span, "expected expression, found '%s'", tok.Lexeme)
		p.advance()
		return &ast.IntLit{Value: 0, Span: tok.Span}
	}
}

// ---- predicate grammar: same operators, restricted to Int/Name/Bool ----

func (p *Parser) parsePred() ast.Pred {
	return p.parsePredBinary(precOr)
}

func (p *Parser) parsePredBinary(minPrec int) ast.Pred {
	left := p.parsePredUnary()
	for {
		op := p.cur().Kind
		prec, ok := binaryPrecedence[op]
		if !ok || prec < minPrec {
			return left
		}
		opTok := p.advance()
		right := p.parsePredBinary(prec + 1)
		left = &ast.PredBinary{
			Op:     op,
			Left:   left,
			Right:  right,
			Span:   source.Span{Start: left.NodeSpan().Start, End: right.NodeSpan().End},
			OpSpan: opTok.Span,
		}
	}
}

func (p *Parser) parsePredUnary() ast.Pred {
	if p.check(token.Minus) || p.check(token.Bang) {
		opTok := p.advance()
		operand := p.parsePredUnary()
		return &ast.PredUnary{Op: opTok.Kind, Expr: operand, Span: source.Span{Start: opTok.Span.Start, End: operand.NodeSpan().End}}
	}
	return p.parsePredPrimary()
}

func (p *Parser) parsePredPrimary() ast.Pred {
	tok := p.cur()
	switch tok.Kind {
	case token.Int:
		p.advance()
		return &ast.PredInt{Value: tok.Literal.(int64), Span: tok.Span}
	case token.KwTrue:
		p.advance()
		return &ast.PredName{Ident: "true", Span: tok.Span}
	case token.KwFalse:
		p.advance()
		return &ast.PredName{Ident: "false", Span: tok.Span}
	case token.Ident:
		p.advance()
		return &ast.PredName{Ident: tok.Lexeme, Span: tok.Span}
	case token.LParen:
		p.advance()
		inner := p.parsePred()
		end := p.cur().Span
		p.expect(token.RParen, "')'")
		return &ast.PredGroup{Inner: inner, Span: source.Span{Start: tok.Span.Start, End: end.End}}
	default:
		p.errorf(tok.Span, "expected predicate expression, found '%s'", tok.Lexeme)
		p.advance()
		return &ast.PredInt{Value: 0, Span: tok.Span}
	}
}
