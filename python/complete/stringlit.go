package complete

import (
	"regexp"
	"strings"

	"github.com/dhamidi/kai/python/parser"
)

var openingQuote = regexp.MustCompile(`^\w*('{3}|"{3}|'|")`)

// stringBeforeCursor reports whether the cursor sits inside a string
// literal, and if so returns the partial string content typed before it.
// Both terminated strings whose quote region contains the position and a
// same-line run ending in a broken quote leaf count.
func stringBeforeCursor(leaf *parser.Node, pos parser.Position) (string, bool) {
	if leaf == nil || leaf.Token == nil || pos.Before(leaf.Span.Start) {
		return "", false
	}

	if leaf.Token.Kind == parser.TokenString {
		return insideTerminatedString(leaf, pos)
	}

	// Walk backwards over this line's leaves looking for an unterminated
	// quote; everything after it is partial string content.
	var after []string
	for node := leaf; node != nil && node.Span.Start.Line == pos.Line; node = node.PreviousLeaf() {
		if node.IsErrorLeaf() && strings.ContainsAny(node.Literal(), `"'`) {
			content := node.Literal()
			if node.Span.Contains(pos) {
				content = cutAtColumn(node, pos)
			}
			content = stripOpeningQuote(content)
			return content + strings.Join(after, ""), true
		}
		after = append([]string{node.Literal()}, after...)
	}
	return "", false
}

func insideTerminatedString(leaf *parser.Node, pos parser.Position) (string, bool) {
	match := openingQuote.FindStringSubmatch(leaf.Literal())
	if match == nil {
		return "", false
	}
	quote := match[1]
	openEnd := leaf.Span.Start.Column + len(match[0])
	if leaf.Span.Start.Line == pos.Line && pos.Column < openEnd {
		return "", false // still inside the opening quote
	}
	closeStart := parser.Position{
		Line:   leaf.Span.End.Line,
		Column: leaf.Span.End.Column - len(quote),
	}
	if closeStart.Before(pos) {
		return "", false // at or past the closing quote
	}
	content := cutAtColumn(leaf, pos)
	if len(content) < len(match[0]) {
		return "", false
	}
	return content[len(match[0]):], true
}

// cutAtColumn returns the leaf's text up to pos. Only single-line leaves and
// the last line of multi-line leaves are meaningful here.
func cutAtColumn(leaf *parser.Node, pos parser.Position) string {
	text := leaf.Literal()
	if leaf.Span.Start.Line == pos.Line {
		n := pos.Column - leaf.Span.Start.Column
		if n >= 0 && n <= len(text) {
			return text[:n]
		}
		return text
	}
	// Multi-line string: keep everything through the cursor's line prefix.
	lines := strings.Split(text, "\n")
	idx := pos.Line - leaf.Span.Start.Line
	if idx < 0 || idx >= len(lines) {
		return text
	}
	cut := lines[idx]
	if pos.Column <= len(cut) {
		cut = cut[:pos.Column]
	}
	return strings.Join(append(lines[:idx], cut), "\n")
}

func stripOpeningQuote(s string) string {
	if match := openingQuote.FindString(s); match != "" {
		return s[len(match):]
	}
	return s
}
