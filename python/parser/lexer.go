package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer splits source lines into tokens. It never fails: malformed input
// (an unterminated string, a stray character) becomes a TokenError token so
// callers can reason about partially-typed programs.
type Lexer struct {
	lines []string
	line  int // 0-based index into lines
	col   int // 0-based byte offset in the current line
}

func NewLexer(lines []string) *Lexer {
	return &Lexer{lines: lines}
}

func (l *Lexer) Position() Position {
	return Position{Line: l.line + 1, Column: l.col}
}

func (l *Lexer) atEOF() bool {
	return l.line >= len(l.lines)
}

func (l *Lexer) peek() byte {
	if l.atEOF() || l.col >= len(l.lines[l.line]) {
		return 0
	}
	return l.lines[l.line][l.col]
}

func (l *Lexer) peekN(n int) byte {
	if l.atEOF() || l.col+n >= len(l.lines[l.line]) {
		return 0
	}
	return l.lines[l.line][l.col+n]
}

func (l *Lexer) advance() {
	if l.atEOF() {
		return
	}
	if l.col >= len(l.lines[l.line]) {
		l.line++
		l.col = 0
		return
	}
	l.col++
}

// Next returns the next token. At the end of each line a TokenNewline is
// produced; after the last line, TokenEOF forever.
func (l *Lexer) Next() Token {
	for !l.atEOF() && l.col < len(l.lines[l.line]) {
		ch := l.peek()
		if ch == ' ' || ch == '\t' {
			l.advance()
			continue
		}
		break
	}

	start := l.Position()
	if l.atEOF() {
		return Token{Kind: TokenEOF, Span: Span{start, start}}
	}
	if l.col >= len(l.lines[l.line]) {
		l.line++
		l.col = 0
		return Token{Kind: TokenNewline, Literal: "\n", Span: Span{start, start}}
	}

	ch := l.peek()
	switch {
	case ch == '#':
		text := l.lines[l.line][l.col:]
		l.col = len(l.lines[l.line])
		return Token{Kind: TokenComment, Literal: text, Span: Span{start, l.Position()}}
	case isNameStart(rune(ch)) || ch >= utf8.RuneSelf:
		return l.lexName(start)
	case ch >= '0' && ch <= '9':
		return l.lexNumber(start)
	case ch == '"' || ch == '\'':
		return l.lexString(start, "")
	default:
		return l.lexOperator(start)
	}
}

func (l *Lexer) lexName(start Position) Token {
	line := l.lines[l.line]
	end := l.col
	for end < len(line) {
		r, size := utf8.DecodeRuneInString(line[end:])
		if !isNameChar(r) {
			break
		}
		end += size
	}
	text := line[l.col:end]
	l.col = end
	// String prefix directly followed by a quote: restart as a string.
	if isStringPrefix(text) && (l.peek() == '"' || l.peek() == '\'') {
		return l.lexString(start, text)
	}
	kind := TokenName
	if IsKeyword(text) {
		kind = TokenKeyword
	}
	return Token{Kind: kind, Literal: text, Span: Span{start, l.Position()}}
}

func isStringPrefix(s string) bool {
	if len(s) == 0 || len(s) > 2 {
		return false
	}
	return strings.Trim(strings.ToLower(s), "rbfu") == ""
}

func (l *Lexer) lexNumber(start Position) Token {
	line := l.lines[l.line]
	end := l.col
	for end < len(line) {
		c := line[end]
		if (c >= '0' && c <= '9') || c == '.' || c == '_' || c == 'x' || c == 'o' ||
			c == 'b' || c == 'e' || c == 'j' || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			end++
			continue
		}
		break
	}
	text := line[l.col:end]
	l.col = end
	return Token{Kind: TokenNumber, Literal: text, Span: Span{start, l.Position()}}
}

// lexString consumes a string literal starting at the current quote. Triple
// quotes may span lines. An unterminated string yields a TokenError whose
// literal keeps the opening quote, which the completion core relies on to
// spot "cursor inside a string".
func (l *Lexer) lexString(start Position, prefix string) Token {
	quote := l.peek()
	triple := l.peekN(1) == quote && l.peekN(2) == quote
	delim := string(quote)
	if triple {
		delim = strings.Repeat(string(quote), 3)
	}
	for range delim {
		l.advance()
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(delim)
	for {
		if l.atEOF() {
			return Token{Kind: TokenError, Literal: sb.String(), Span: Span{start, l.Position()}}
		}
		line := l.lines[l.line]
		if l.col >= len(line) {
			if !triple {
				return Token{Kind: TokenError, Literal: sb.String(), Span: Span{start, l.Position()}}
			}
			sb.WriteByte('\n')
			l.line++
			l.col = 0
			continue
		}
		if line[l.col] == '\\' && !strings.HasPrefix(strings.ToLower(prefix), "r") {
			sb.WriteByte(line[l.col])
			l.advance()
			if l.col < len(line) {
				sb.WriteByte(line[l.col])
				l.advance()
			}
			continue
		}
		if strings.HasPrefix(line[l.col:], delim) {
			sb.WriteString(delim)
			for range delim {
				l.advance()
			}
			return Token{Kind: TokenString, Literal: sb.String(), Span: Span{start, l.Position()}}
		}
		sb.WriteByte(line[l.col])
		l.advance()
	}
}

var multiCharOps = []string{
	"**=", "//=", ">>=", "<<=", "...", "!=", ">=", "<=", "==", "->",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", ":=", "**", "//",
	"<<", ">>",
}

func (l *Lexer) lexOperator(start Position) Token {
	line := l.lines[l.line]
	rest := line[l.col:]
	for _, op := range multiCharOps {
		if strings.HasPrefix(rest, op) {
			for range op {
				l.advance()
			}
			return Token{Kind: TokenOperator, Literal: op, Span: Span{start, l.Position()}}
		}
	}
	ch := line[l.col]
	l.advance()
	if strings.IndexByte("+-*/%@<>&|^~=.,:;()[]{}", ch) >= 0 {
		return Token{Kind: TokenOperator, Literal: string(ch), Span: Span{start, l.Position()}}
	}
	return Token{Kind: TokenError, Literal: string(ch), Span: Span{start, l.Position()}}
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
