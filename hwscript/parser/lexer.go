package parser

import (
	"unicode"
	"unicode/utf8"
)

type Lexer struct {
	input []byte
	pos   int
}

func NewLexer(input []byte) *Lexer {
	return &Lexer{input: input}
}

// Tokenize returns every token of text, without the trailing EOF token.
// It never fails: malformed input degrades into best-effort tokens.
func Tokenize(text string) []Token {
	l := NewLexer([]byte(text))
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Kind == TokenEOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) Offset() int {
	return l.pos
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) NextToken() Token {
	for {
		if l.atEnd() {
			return Token{Kind: TokenEOF, Start: l.pos, End: l.pos}
		}
		ch := l.peek()
		switch {
		case isSpace(ch):
			l.skipWhitespace()
		case ch == '/' && l.peekN(1) == '/':
			l.skipLineComment()
		case ch == '/' && l.peekN(1) == '*':
			l.skipBlockComment()
		case isIdentStart(ch):
			return l.scanIdentOrKeyword()
		case ch >= utf8.RuneSelf:
			start := l.pos
			r, size := utf8.DecodeRune(l.input[l.pos:])
			if unicode.IsLetter(r) {
				return l.scanIdentOrKeyword()
			}
			l.advanceN(size)
			return l.token(TokenOperator, start)
		case isDigit(ch):
			return l.scanNumber()
		case ch == '"' || ch == '\'' || ch == '`':
			return l.scanString()
		default:
			start := l.pos
			l.advance()
			return l.token(TokenOperator, start)
		}
	}
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && isSpace(l.peek()) {
		l.advance()
	}
}

func (l *Lexer) skipLineComment() {
	l.advanceN(2)
	for !l.atEnd() && l.peek() != '\n' {
		l.advance()
	}
}

// skipBlockComment consumes to the closing "*/" or, when there is none,
// to the end of input.
func (l *Lexer) skipBlockComment() {
	l.advanceN(2)
	for !l.atEnd() {
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advanceN(2)
			return
		}
		l.advance()
	}
}

func (l *Lexer) scanIdentOrKeyword() Token {
	start := l.pos
	for !l.atEnd() {
		ch := l.peek()
		if isIdentPart(ch) {
			l.advance()
			continue
		}
		if ch < utf8.RuneSelf {
			break
		}
		r, size := utf8.DecodeRune(l.input[l.pos:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.advanceN(size)
	}
	tok := l.token(TokenIdent, start)
	tok.Kind = LookupKeyword(tok.Literal)
	return tok
}

func (l *Lexer) scanNumber() Token {
	start := l.pos
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		// Only an exponent when digits follow; "1e" is a number and an identifier.
		n := 1
		if l.peekN(1) == '+' || l.peekN(1) == '-' {
			n = 2
		}
		if isDigit(l.peekN(n)) {
			l.advanceN(n)
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}
	return l.token(TokenNumber, start)
}

// scanString consumes a quoted literal honoring backslash escapes. An
// unterminated string runs to the end of input.
func (l *Lexer) scanString() Token {
	start := l.pos
	quote := l.advance()
	for !l.atEnd() {
		ch := l.peek()
		if ch == '\\' {
			l.advanceN(2)
			continue
		}
		l.advance()
		if ch == quote {
			break
		}
	}
	return l.token(TokenString, start)
}

func (l *Lexer) token(kind TokenKind, start int) Token {
	end := l.pos
	if end > len(l.input) {
		end = len(l.input)
	}
	return Token{
		Kind:    kind,
		Literal: string(l.input[start:end]),
		Start:   start,
		End:     end,
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\v' || ch == '\f'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
