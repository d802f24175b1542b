// Package lexer turns curlee source bytes into a token stream. The
// scanning loop, byte-by-byte advance/peek bookkeeping, and identifier
// classification are carried over directly from
// informatter-nilan/lexer/lexer.go; the failure mode and span tracking
// are adapted to spec.md §4.C (first-error-wins, byte spans rather
// than line/column only).
package lexer

import (
	"strconv"

	"github.com/curlee-lang/curlee/diag"
	"github.com/curlee-lang/curlee/source"
	"github.com/curlee-lang/curlee/token"
)

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isLetterOrDigit(ch byte) bool {
	return isLetter(ch) || isDigit(ch)
}

// Lexer scans a single source file's bytes into a []token.Token.
type Lexer struct {
	src []byte
	pos int // index of the next unread byte
}

// New creates a Lexer over the given source bytes.
func New(src []byte) *Lexer {
	return &Lexer{src: src}
}

// Scan consumes the entire input and returns the resulting tokens
// (always terminated with a token.Eof), or the first lexical
// diagnostic encountered. Per spec §4.C/§7, the lexer stops at its
// first failure rather than attempting to recover.
func Scan(src []byte) ([]token.Token, *diag.Diagnostic) {
	l := New(src)
	var tokens []token.Token
	for {
		tok, d := l.next()
		if d != nil {
			return nil, d
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.Eof {
			return tokens, nil
		}
	}
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) advance() byte {
	ch := l.src[l.pos]
	l.pos++
	return ch
}

// skipTrivia consumes whitespace, "//" line comments, and "/* ... */"
// block comments. Returns a diagnostic if a block comment is never
// closed.
func (l *Lexer) skipTrivia() *diag.Diagnostic {
	for !l.atEnd() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		case '/':
			if l.peekAt(1) == '/' {
				for !l.atEnd() && l.peek() != '\n' {
					l.advance()
				}
				continue
			}
			if l.peekAt(1) == '*' {
				start := l.pos
				l.advance()
				l.advance()
				closed := false
				for !l.atEnd() {
					if l.peek() == '*' && l.peekAt(1) == '/' {
						l.advance()
						l.advance()
						closed = true
						break
					}
					l.advance()
				}
				if !closed {
					d := diag.New("unterminated block comment", source.Span{Start: start, End: l.pos})
					return &d
				}
				continue
			}
			return nil
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) next() (token.Token, *diag.Diagnostic) {
	if d := l.skipTrivia(); d != nil {
		return token.Token{}, d
	}

	start := l.pos
	if l.atEnd() {
		return token.Token{Kind: token.Eof, Span: source.Span{Start: start, End: start}}, nil
	}

	ch := l.advance()

	switch {
	case isLetter(ch):
		return l.scanIdentifier(start), nil
	case isDigit(ch):
		return l.scanNumber(start), nil
	case ch == '"':
		return l.scanString(start)
	}

	switch ch {
	case '(':
		return l.simple(token.LParen, start), nil
	case ')':
		return l.simple(token.RParen, start), nil
	case '{':
		return l.simple(token.LBrace, start), nil
	case '}':
		return l.simple(token.RBrace, start), nil
	case ',':
		return l.simple(token.Comma, start), nil
	case ';':
		return l.simple(token.Semicolon, start), nil
	case ':':
		return l.simple(token.Colon, start), nil
	case '.':
		return l.simple(token.Dot, start), nil
	case '+':
		return l.simple(token.Plus, start), nil
	case '*':
		return l.simple(token.Star, start), nil
	case '/':
		return l.simple(token.Slash, start), nil
	case '-':
		if l.peek() == '>' {
			l.advance()
			return l.simple(token.Arrow, start), nil
		}
		return l.simple(token.Minus, start), nil
	case '=':
		if l.peek() == '=' {
			l.advance()
			return l.simple(token.EqualEqual, start), nil
		}
		return l.simple(token.Assign, start), nil
	case '!':
		if l.peek() == '=' {
			l.advance()
			return l.simple(token.NotEqual, start), nil
		}
		return l.simple(token.Bang, start), nil
	case '<':
		if l.peek() == '=' {
			l.advance()
			return l.simple(token.LessEqual, start), nil
		}
		return l.simple(token.Less, start), nil
	case '>':
		if l.peek() == '=' {
			l.advance()
			return l.simple(token.GreaterEqual, start), nil
		}
		return l.simple(token.Greater, start), nil
	case '&':
		if l.peek() == '&' {
			l.advance()
			return l.simple(token.AndAnd, start), nil
		}
	case '|':
		if l.peek() == '|' {
			l.advance()
			return l.simple(token.OrOr, start), nil
		}
	}

	d := diag.New("invalid character '"+string(ch)+"'", source.Span{Start: start, End: l.pos})
	return token.Token{}, &d
}

func (l *Lexer) simple(kind token.Kind, start int) token.Token {
	span := source.Span{Start: start, End: l.pos}
	return token.Token{Kind: kind, Lexeme: string(l.src[start:l.pos]), Span: span}
}

func (l *Lexer) scanIdentifier(start int) token.Token {
	for !l.atEnd() && isLetterOrDigit(l.peek()) {
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	span := source.Span{Start: start, End: l.pos}
	if kind, ok := token.Keywords[lexeme]; ok {
		var literal any
		if kind == token.KwTrue || kind == token.KwFalse {
			literal = kind == token.KwTrue
		}
		return token.Token{Kind: kind, Lexeme: lexeme, Literal: literal, Span: span}
	}
	return token.Token{Kind: token.Ident, Lexeme: lexeme, Span: span}
}

func (l *Lexer) scanNumber(start int) token.Token {
	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	value, _ := strconv.ParseInt(lexeme, 10, 64)
	return token.Token{Kind: token.Int, Lexeme: lexeme, Literal: value, Span: source.Span{Start: start, End: l.pos}}
}

// scanString consumes a "..." literal. The lexeme preserves the quotes
// and any escape sequences verbatim; Literal holds the unescaped value.
func (l *Lexer) scanString(start int) (token.Token, *diag.Diagnostic) {
	var value []byte
	for {
		if l.atEnd() {
			d := diag.New("unterminated string literal", source.Span{Start: start, End: l.pos})
			return token.Token{}, &d
		}
		ch := l.advance()
		if ch == '"' {
			break
		}
		if ch == '\\' && !l.atEnd() {
			esc := l.advance()
			switch esc {
			case 'n':
				value = append(value, '\n')
			case 't':
				value = append(value, '\t')
			case '"':
				value = append(value, '"')
			case '\\':
				value = append(value, '\\')
			default:
				value = append(value, '\\', esc)
			}
			continue
		}
		value = append(value, ch)
	}
	lexeme := string(l.src[start:l.pos])
	return token.Token{Kind: token.String, Lexeme: lexeme, Literal: string(value), Span: source.Span{Start: start, End: l.pos}}, nil
}
