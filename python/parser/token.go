package parser

// Position identifies a point in the source. Lines are 1-based, columns are
// 0-based byte offsets within the line, matching what editors send over LSP.
type Position struct {
	Line   int
	Column int
}

// Before reports whether p comes strictly before o in the source.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// BeforeOrEqual reports whether p comes before or at o.
func (p Position) BeforeOrEqual(o Position) bool {
	return p == o || p.Before(o)
}

type Span struct {
	Start Position
	End   Position
}

// Contains reports whether pos lies within the span, boundaries included.
func (s Span) Contains(pos Position) bool {
	return s.Start.BeforeOrEqual(pos) && pos.BeforeOrEqual(s.End)
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenName
	TokenKeyword
	TokenNumber
	TokenString
	TokenOperator
	TokenNewline
	TokenComment
)

type Token struct {
	Kind    TokenKind
	Literal string
	Span    Span
}

var keywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true,
	"class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true,
	"for": true, "from": true, "global": true, "if": true, "import": true,
	"in": true, "is": true, "lambda": true, "nonlocal": true, "not": true,
	"or": true, "pass": true, "raise": true, "return": true, "try": true,
	"while": true, "with": true, "yield": true,
}

// IsKeyword reports whether s is a Python keyword.
func IsKeyword(s string) bool {
	return keywords[s]
}
