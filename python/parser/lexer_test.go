package parser

import (
	"testing"
)

func collect(lines []string) []Token {
	lx := NewLexer(lines)
	var toks []Token
	for {
		tok := lx.Next()
		if tok.Kind == TokenEOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func TestLexerSimpleAssignment(t *testing.T) {
	toks := collect([]string{"x = foo.bar(1)"})

	want := []struct {
		kind    TokenKind
		literal string
	}{
		{TokenName, "x"},
		{TokenOperator, "="},
		{TokenName, "foo"},
		{TokenOperator, "."},
		{TokenName, "bar"},
		{TokenOperator, "("},
		{TokenNumber, "1"},
		{TokenOperator, ")"},
		{TokenNewline, "\n"},
	}
	if len(toks) != len(want) {
		t.Fatalf("token count = %d, want %d", len(toks), len(want))
	}
	for i, w := range want {
		if toks[i].Kind != w.kind {
			t.Errorf("token %d kind = %v, want %v", i, toks[i].Kind, w.kind)
		}
		if toks[i].Literal != w.literal {
			t.Errorf("token %d literal = %q, want %q", i, toks[i].Literal, w.literal)
		}
	}
}

func TestLexerKeywords(t *testing.T) {
	for _, kw := range []string{"def", "class", "import", "from", "lambda", "return"} {
		t.Run(kw, func(t *testing.T) {
			toks := collect([]string{kw})
			if len(toks) == 0 || toks[0].Kind != TokenKeyword {
				t.Errorf("%q not lexed as keyword", kw)
			}
		})
	}
	toks := collect([]string{"definition"})
	if toks[0].Kind != TokenName {
		t.Errorf("identifier with keyword prefix lexed as %v", toks[0].Kind)
	}
}

func TestLexerMultiCharOperators(t *testing.T) {
	toks := collect([]string{"a //= b ** c != d"})
	var ops []string
	for _, tok := range toks {
		if tok.Kind == TokenOperator {
			ops = append(ops, tok.Literal)
		}
	}
	want := []string{"//=", "**", "!="}
	if len(ops) != len(want) {
		t.Fatalf("operators = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("operator %d = %q, want %q", i, ops[i], want[i])
		}
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	toks := collect([]string{`open("data/fi`})
	last := toks[len(toks)-2] // final token is the newline
	if last.Kind != TokenError {
		t.Fatalf("unterminated string kind = %v, want TokenError", last.Kind)
	}
	if last.Literal != `"data/fi` {
		t.Errorf("unterminated string literal = %q, want %q", last.Literal, `"data/fi`)
	}
}

func TestLexerTripleQuotedString(t *testing.T) {
	toks := collect([]string{`x = """one`, `two"""`})
	var str *Token
	for i := range toks {
		if toks[i].Kind == TokenString {
			str = &toks[i]
		}
	}
	if str == nil {
		t.Fatal("no string token found")
	}
	if str.Span.Start.Line != 1 || str.Span.End.Line != 2 {
		t.Errorf("string span lines = %d-%d, want 1-2", str.Span.Start.Line, str.Span.End.Line)
	}
}

func TestLexerStringPrefix(t *testing.T) {
	toks := collect([]string{`r"raw\path"`})
	if toks[0].Kind != TokenString {
		t.Fatalf("prefixed string kind = %v, want TokenString", toks[0].Kind)
	}
	if toks[0].Literal != `r"raw\path"` {
		t.Errorf("prefixed string literal = %q", toks[0].Literal)
	}
}

func TestLexerPositions(t *testing.T) {
	toks := collect([]string{"  foo"})
	if toks[0].Span.Start.Line != 1 {
		t.Errorf("Line = %d, want 1", toks[0].Span.Start.Line)
	}
	if toks[0].Span.Start.Column != 2 {
		t.Errorf("Column = %d, want 2", toks[0].Span.Start.Column)
	}
	if toks[0].Span.End.Column != 5 {
		t.Errorf("End column = %d, want 5", toks[0].Span.End.Column)
	}
}
