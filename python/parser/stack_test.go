package parser

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func stackFor(t *testing.T, lines []string, pos Position) (*Stack, error) {
	t.Helper()
	mod := Parse(lines)
	leaf := mod.LeafAt(pos, true)
	if leaf == nil {
		t.Fatal("no leaf at position")
	}
	return mod.StackAt(lines, leaf, pos)
}

func TestStackEmptyLine(t *testing.T) {
	stack, err := stackFor(t, []string{""}, Position{Line: 1, Column: 0})
	if err != nil {
		t.Fatal(err)
	}
	if !stack.AllowsAny(TransitionName) {
		t.Error("names not allowed at statement start")
	}
	for _, kw := range []string{"if", "import", "def", "return"} {
		if !stack.AllowsAny(kw) {
			t.Errorf("keyword %q not allowed at statement start", kw)
		}
	}
}

func TestStackImport(t *testing.T) {
	lines := []string{"import "}
	stack, err := stackFor(t, lines, Position{Line: 1, Column: 7})
	if err != nil {
		t.Fatal(err)
	}
	nts := stack.Nonterminals()
	if nts[len(nts)-1] != "import_name" {
		t.Errorf("top nonterminal = %q, want import_name", nts[len(nts)-1])
	}
	hasImportStmt := false
	for _, nt := range nts {
		if nt == "import_stmt" {
			hasImportStmt = true
		}
	}
	if !hasImportStmt {
		t.Error("import_stmt missing from nonterminals")
	}
	if !stack.AllowsAny(TransitionName) {
		t.Error("module name not allowed after import")
	}
}

func TestStackFromWithoutImport(t *testing.T) {
	lines := []string{"from pkg "}
	stack, err := stackFor(t, lines, Position{Line: 1, Column: 9})
	if err != nil {
		t.Fatal(err)
	}
	if !stack.AllowsAny("import") {
		t.Error("import keyword not allowed after module path")
	}
	if stack.AllowsAny(TransitionName) {
		t.Error("bare name allowed after complete module path")
	}
}

func TestStackTrailer(t *testing.T) {
	lines := []string{"import os", "os."}
	stack, err := stackFor(t, lines, Position{Line: 2, Column: 3})
	if err != nil {
		t.Fatal(err)
	}
	nts := stack.Nonterminals()
	if nts[len(nts)-1] != "trailer" {
		t.Errorf("top nonterminal = %q, want trailer", nts[len(nts)-1])
	}
	nodes := stack.StatementNodes()
	if nodes[len(nodes)-1].Literal() != "." {
		t.Errorf("last node = %q, want .", nodes[len(nodes)-1].Literal())
	}
}

func TestStackStatementNodesResetAtSmallStmt(t *testing.T) {
	lines := []string{"from pkg import name"}
	stack, err := stackFor(t, lines, Position{Line: 1, Column: 20})
	if err != nil {
		t.Fatal(err)
	}
	nodes := stack.StatementNodes()
	if len(nodes) == 0 || nodes[0].Literal() != "from" {
		t.Fatalf("statement nodes do not start at from: %v", nodes)
	}
}

func TestStackDanglingDot(t *testing.T) {
	lines := []string{"x = 1 +."}
	_, err := stackFor(t, lines, Position{Line: 1, Column: 8})
	var el *ErrorLeafError
	if !errors.As(err, &el) {
		t.Fatalf("err = %v, want ErrorLeafError", err)
	}
	if el.Value != "." {
		t.Errorf("error leaf value = %q, want .", el.Value)
	}
}

func TestStackLeadingDotIsRelativeImport(t *testing.T) {
	lines := []string{"from . import "}
	stack, err := stackFor(t, lines, Position{Line: 1, Column: 14})
	if err != nil {
		t.Fatal(err)
	}
	if !stack.AllowsAny(TransitionName) {
		t.Error("name not allowed after relative import")
	}
}

func TestStackFuncDefParameters(t *testing.T) {
	lines := []string{"def handler("}
	stack, err := stackFor(t, lines, Position{Line: 1, Column: 12})
	if err != nil {
		t.Fatal(err)
	}
	nts := stack.Nonterminals()
	if nts[len(nts)-1] != "parameters" {
		t.Errorf("top nonterminal = %q, want parameters", nts[len(nts)-1])
	}
	funcFrame := stack.Frames[len(stack.Frames)-2]
	if funcFrame.Nonterminal != "funcdef" {
		t.Fatalf("enclosing frame = %q, want funcdef", funcFrame.Nonterminal)
	}
	if funcFrame.Nodes[1].Literal() != "handler" {
		t.Errorf("function name node = %q, want handler", funcFrame.Nodes[1].Literal())
	}
	if !stack.AllowsAny(TransitionName) {
		t.Error("parameter name not allowed after open paren")
	}
}

func TestStackOpenCall(t *testing.T) {
	lines := []string{"handle(x, "}
	stack, err := stackFor(t, lines, Position{Line: 1, Column: 10})
	if err != nil {
		t.Fatal(err)
	}
	nts := stack.Nonterminals()
	if nts[len(nts)-1] != "arglist" {
		t.Errorf("top nonterminal = %q, want arglist", nts[len(nts)-1])
	}
	nodes := stack.StatementNodes()
	if nodes[len(nodes)-1].Literal() != "," {
		t.Errorf("last node = %q, want comma", nodes[len(nodes)-1].Literal())
	}
}

func TestStackAfterName(t *testing.T) {
	lines := []string{"value "}
	stack, err := stackFor(t, lines, Position{Line: 1, Column: 6})
	if err != nil {
		t.Fatal(err)
	}
	if stack.AllowsAny(TransitionName) {
		t.Error("name allowed directly after another name")
	}
	for _, kw := range []string{"and", "or", "in", "if"} {
		if !stack.AllowsAny(kw) {
			t.Errorf("keyword %q not allowed after expression", kw)
		}
	}
}
