package parser

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel transition symbols. Allowed-symbol sets mix keyword literals with
// these; keyword harvesting skips them because they are not alphabetic.
const (
	TransitionName   = "<name>"
	TransitionIndent = "<indent>"
)

// StackFrame is one level of the partial derivation at the cursor.
type StackFrame struct {
	Nonterminal string
	FromRule    string
	Nodes       []*Node
}

// Stack is the parse context at a position: the frame chain plus the grammar
// symbols that may legally follow.
type Stack struct {
	Frames  []StackFrame
	Allowed []string
}

// Nonterminals returns the frame labels outermost-first.
func (s *Stack) Nonterminals() []string {
	out := make([]string, len(s.Frames))
	for i, f := range s.Frames {
		out[i] = f.Nonterminal
	}
	return out
}

// StatementNodes concatenates frame nodes, restarting at each frame that was
// entered from a small statement, so only the current statement's tokens
// remain.
func (s *Stack) StatementNodes() []*Node {
	var nodes []*Node
	for _, f := range s.Frames {
		if f.FromRule == "small_stmt" {
			nodes = nil
		}
		nodes = append(nodes, f.Nodes...)
	}
	return nodes
}

// AllowsAny reports whether any of the given symbols may follow.
func (s *Stack) AllowsAny(symbols ...string) bool {
	for _, sym := range symbols {
		for _, a := range s.Allowed {
			if a == sym {
				return true
			}
		}
	}
	return false
}

// ErrorLeafError is the classified failure for a cursor inside a malformed
// fragment. Value carries the offending token text; a bare "." tells the
// caller to suppress completion entirely.
type ErrorLeafError struct {
	Value string
}

func (e *ErrorLeafError) Error() string {
	return fmt.Sprintf("parse stack blocked on error leaf %q", e.Value)
}

var statementKeywords = []string{
	"if", "for", "while", "try", "with", "def", "class", "import", "from",
	"return", "pass", "break", "continue", "raise", "assert", "del",
	"global", "nonlocal", "lambda", "not", "yield", "await", "async",
	"True", "False", "None",
}

var exprKeywords = []string{"not", "lambda", "None", "True", "False", "await"}

var postExprKeywords = []string{"and", "or", "not", "in", "is", "if", "else", "for"}

// StackAt computes the parse stack for the cursor position. The leaf argument
// is the leaf at the (already like-name-shifted) position; lines are accepted
// for contract parity but the module's own parse is authoritative. Analysis
// covers the cursor's logical line.
func (m *Module) StackAt(lines []string, leaf *Node, pos Position) (*Stack, error) {
	lineLeaves := m.lineLeavesBefore(pos)

	if err := detectErrorLeaf(lineLeaves); err != nil {
		return nil, err
	}

	frames := []StackFrame{{Nonterminal: "file_input"}}
	if len(lineLeaves) == 0 {
		allowed := append([]string{}, statementKeywords...)
		allowed = append(allowed, TransitionName, TransitionIndent)
		return &Stack{Frames: frames, Allowed: allowed}, nil
	}

	switch lineLeaves[0].Literal() {
	case "import":
		return importNameStack(frames, lineLeaves), nil
	case "from":
		return importFromStack(frames, lineLeaves), nil
	case "def":
		return funcDefStack(frames, lineLeaves), nil
	case "class":
		return classDefStack(frames, lineLeaves), nil
	case "@":
		return decoratorStack(frames, lineLeaves), nil
	case "if", "elif", "while", "for", "try", "except", "finally",
		"else", "with":
		return flowHeaderStack(frames, lineLeaves), nil
	case "return", "raise", "assert", "del", "yield", "global", "nonlocal",
		"pass", "break", "continue":
		return smallStmtStack(frames, lineLeaves), nil
	default:
		return exprStmtStack(frames, lineLeaves), nil
	}
}

// lineLeavesBefore collects the leaves of pos's line that end at or before
// pos, skipping the EOF marker.
func (m *Module) lineLeavesBefore(pos Position) []*Node {
	var out []*Node
	for _, lf := range m.leaves {
		if lf.Token.Kind == TokenEOF {
			continue
		}
		if lf.Span.Start.Line != pos.Line {
			continue
		}
		if lf.Span.End.BeforeOrEqual(pos) {
			out = append(out, lf)
		}
	}
	return out
}

// detectErrorLeaf looks for malformed fragments before the cursor: a stray
// error token, or a dot that does not follow something an attribute can hang
// off of.
func detectErrorLeaf(lineLeaves []*Node) error {
	for _, lf := range lineLeaves {
		if lf.IsErrorLeaf() {
			return errors.WithStack(&ErrorLeafError{Value: lf.Literal()})
		}
	}
	for i, lf := range lineLeaves {
		if lf.Literal() != "." {
			continue
		}
		if i == 0 {
			continue // leading dot: relative import or mid-edit attribute
		}
		prev := lineLeaves[i-1]
		if !dotCanFollow(prev) {
			return errors.WithStack(&ErrorLeafError{Value: "."})
		}
	}
	return nil
}

func dotCanFollow(leaf *Node) bool {
	switch leaf.Token.Kind {
	case TokenName, TokenNumber, TokenString:
		return true
	case TokenOperator:
		switch leaf.Literal() {
		case ")", "]", "}", ".", "...":
			return true
		}
	case TokenKeyword:
		// from . import, and dots after keywords that bind values
		switch leaf.Literal() {
		case "from", "import", "True", "False", "None":
			return true
		}
	}
	return false
}

func last(leaves []*Node) *Node {
	return leaves[len(leaves)-1]
}

func importNameStack(frames []StackFrame, leaves []*Node) *Stack {
	frames = append(frames,
		StackFrame{Nonterminal: "simple_stmt"},
		StackFrame{Nonterminal: "import_stmt", FromRule: "small_stmt"},
		StackFrame{Nonterminal: "import_name", Nodes: leaves},
	)
	var allowed []string
	switch last(leaves).Literal() {
	case "import", ".", ",", "...", "as":
		allowed = []string{TransitionName}
	default:
		allowed = []string{".", ",", "as"}
	}
	return &Stack{Frames: frames, Allowed: allowed}
}

func importFromStack(frames []StackFrame, leaves []*Node) *Stack {
	frames = append(frames,
		StackFrame{Nonterminal: "simple_stmt"},
		StackFrame{Nonterminal: "import_stmt", FromRule: "small_stmt"},
		StackFrame{Nonterminal: "import_from", Nodes: leaves},
	)
	var allowed []string
	switch last(leaves).Literal() {
	case "from", ".", "...", "import", ",", "(", "as":
		allowed = []string{TransitionName}
	default:
		// After the module path only continuing the path or the import
		// keyword is legal; after imported names, more names.
		if containsLiteral(leaves, "import") {
			allowed = []string{",", "as"}
		} else {
			allowed = []string{".", "import"}
		}
	}
	return &Stack{Frames: frames, Allowed: allowed}
}

func containsLiteral(leaves []*Node, lit string) bool {
	for _, lf := range leaves {
		if lf.Literal() == lit {
			return true
		}
	}
	return false
}

func funcDefStack(frames []StackFrame, leaves []*Node) *Stack {
	open := -1
	depth := 0
	for i, lf := range leaves {
		switch lf.Literal() {
		case "(":
			depth++
			if depth == 1 {
				open = i
			}
		case ")":
			depth--
			if depth == 0 {
				open = -1
			}
		}
	}
	if open < 0 {
		frames = append(frames, StackFrame{Nonterminal: "funcdef", Nodes: leaves})
		var allowed []string
		switch last(leaves).Literal() {
		case "def":
			allowed = []string{TransitionName}
		case ")":
			allowed = []string{":", "->"}
		default:
			allowed = []string{"("}
		}
		return &Stack{Frames: frames, Allowed: allowed}
	}

	frames = append(frames, StackFrame{Nonterminal: "funcdef", Nodes: leaves[:open]})
	paramLeaves := leaves[open:]
	frames = append(frames, StackFrame{Nonterminal: "parameters", Nodes: paramLeaves[:1]})
	if len(paramLeaves) > 1 {
		frames = append(frames, StackFrame{Nonterminal: "typedargslist", Nodes: paramLeaves[1:]})
	}
	return &Stack{Frames: frames, Allowed: []string{TransitionName, "*", "**", ")"}}
}

func classDefStack(frames []StackFrame, leaves []*Node) *Stack {
	open := -1
	for i, lf := range leaves {
		if lf.Literal() == "(" {
			open = i
			break
		}
	}
	if open < 0 {
		frames = append(frames, StackFrame{Nonterminal: "classdef", Nodes: leaves})
		var allowed []string
		if last(leaves).Literal() == "class" {
			allowed = []string{TransitionName}
		} else {
			allowed = []string{"(", ":"}
		}
		return &Stack{Frames: frames, Allowed: allowed}
	}
	frames = append(frames, StackFrame{Nonterminal: "classdef", Nodes: leaves[:open]})
	tail, consumed, allowed := exprTail(leaves[open:])
	if consumed < len(leaves[open:]) {
		frames = append(frames, StackFrame{Nonterminal: "arglist", Nodes: leaves[open : len(leaves)-consumed]})
	}
	frames = append(frames, tail...)
	return &Stack{Frames: frames, Allowed: allowed}
}

func decoratorStack(frames []StackFrame, leaves []*Node) *Stack {
	frames = append(frames, StackFrame{Nonterminal: "decorator", Nodes: leaves})
	var allowed []string
	switch last(leaves).Literal() {
	case "@", ".", "(", ",":
		allowed = []string{TransitionName}
	default:
		allowed = []string{".", "("}
	}
	return &Stack{Frames: frames, Allowed: allowed}
}

func flowHeaderStack(frames []StackFrame, leaves []*Node) *Stack {
	kind := map[string]string{
		"if": "if_stmt", "elif": "if_stmt", "while": "while_stmt",
		"for": "for_stmt", "try": "try_stmt", "except": "try_stmt",
		"finally": "try_stmt", "else": "else_clause", "with": "with_stmt",
	}[leaves[0].Literal()]

	if len(leaves) == 1 {
		var allowed []string
		switch leaves[0].Literal() {
		case "try", "finally", "else":
			allowed = []string{":"}
		default:
			allowed = append([]string{TransitionName}, exprKeywords...)
		}
		frames = append(frames, StackFrame{Nonterminal: kind, Nodes: leaves})
		return &Stack{Frames: frames, Allowed: allowed}
	}

	tail, consumed, allowed := exprTail(leaves[1:])
	frames = append(frames, StackFrame{Nonterminal: kind, Nodes: leaves[:len(leaves)-consumed]})
	frames = append(frames, tail...)
	return &Stack{Frames: frames, Allowed: allowed}
}

func smallStmtStack(frames []StackFrame, leaves []*Node) *Stack {
	kind := leaves[0].Literal() + "_stmt"
	frames = append(frames, StackFrame{Nonterminal: "simple_stmt"})

	if len(leaves) == 1 {
		var allowed []string
		switch leaves[0].Literal() {
		case "pass", "break", "continue":
			allowed = nil
		case "global", "nonlocal", "del":
			allowed = []string{TransitionName}
		default:
			allowed = append([]string{TransitionName}, exprKeywords...)
		}
		frames = append(frames, StackFrame{Nonterminal: kind, FromRule: "small_stmt", Nodes: leaves})
		return &Stack{Frames: frames, Allowed: allowed}
	}

	tail, consumed, allowed := exprTail(leaves[1:])
	frames = append(frames, StackFrame{Nonterminal: kind, FromRule: "small_stmt", Nodes: leaves[:len(leaves)-consumed]})
	frames = append(frames, tail...)
	return &Stack{Frames: frames, Allowed: allowed}
}

func exprStmtStack(frames []StackFrame, leaves []*Node) *Stack {
	frames = append(frames, StackFrame{Nonterminal: "simple_stmt"})
	tail, consumed, allowed := exprTail(leaves)
	frames = append(frames, StackFrame{
		Nonterminal: "expr_stmt",
		FromRule:    "small_stmt",
		Nodes:       leaves[:len(leaves)-consumed],
	})
	frames = append(frames, tail...)
	return &Stack{Frames: frames, Allowed: allowed}
}

// exprTail inspects the end of an expression token run and synthesizes the
// innermost frames: a trailer for a pending dot or open call, an arglist
// after a comma inside a call, a lambdef right after "lambda". It returns the
// extra frames, how many trailing leaves they own, and the allowed symbols.
func exprTail(leaves []*Node) ([]StackFrame, int, []string) {
	if len(leaves) == 0 {
		return nil, 0, append([]string{TransitionName}, exprKeywords...)
	}
	lastLeaf := last(leaves)
	lit := lastLeaf.Literal()

	if lit == "lambda" {
		return []StackFrame{{Nonterminal: "lambdef", Nodes: leaves[len(leaves)-1:]}},
			1, []string{TransitionName}
	}
	if lit == "." {
		return []StackFrame{{Nonterminal: "trailer", Nodes: leaves[len(leaves)-1:]}},
			1, []string{TransitionName}
	}

	open, callee := innermostOpenCall(leaves)
	if lit == "(" || lit == "," {
		if open >= 0 && callee {
			if lit == "(" {
				return []StackFrame{{Nonterminal: "trailer", Nodes: leaves[open:]}},
					len(leaves) - open, append([]string{TransitionName}, exprKeywords...)
			}
			return []StackFrame{{Nonterminal: "arglist", Nodes: leaves[open+1:]}},
				len(leaves) - open - 1, append([]string{TransitionName}, exprKeywords...)
		}
		return nil, 0, append([]string{TransitionName}, exprKeywords...)
	}

	switch lastLeaf.Token.Kind {
	case TokenName, TokenNumber, TokenString:
		return nil, 0, append([]string{}, postExprKeywords...)
	case TokenKeyword:
		switch lit {
		case "as":
			return nil, 0, []string{TransitionName}
		case "True", "False", "None":
			return nil, 0, append([]string{}, postExprKeywords...)
		}
		return nil, 0, append([]string{TransitionName}, exprKeywords...)
	case TokenOperator:
		switch lit {
		case ")", "]", "}":
			return nil, 0, append([]string{}, postExprKeywords...)
		}
		return nil, 0, append([]string{TransitionName}, exprKeywords...)
	}
	return nil, 0, append([]string{TransitionName}, exprKeywords...)
}

// innermostOpenCall finds the innermost unclosed bracket. It returns its leaf
// index and whether it is a call (an open parenthesis directly preceded by a
// name or closing bracket).
func innermostOpenCall(leaves []*Node) (int, bool) {
	var stack []int
	for i, lf := range leaves {
		switch lf.Literal() {
		case "(", "[", "{":
			stack = append(stack, i)
		case ")", "]", "}":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if len(stack) == 0 {
		return -1, false
	}
	open := stack[len(stack)-1]
	if leaves[open].Literal() != "(" || open == 0 {
		return open, false
	}
	prev := leaves[open-1]
	isCall := prev.Token.Kind == TokenName
	switch prev.Literal() {
	case ")", "]":
		isCall = true
	}
	if prev.Token.Kind == TokenKeyword {
		isCall = false
	}
	return open, isCall
}
