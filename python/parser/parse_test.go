package parser

import (
	"testing"
)

func TestParseFuncDef(t *testing.T) {
	mod := Parse([]string{
		"def greet(name, greeting='hi'):",
		"    return greeting",
	})

	var def *Node
	for _, child := range mod.Root.Children {
		if child.Kind == KindFuncDef {
			def = child
		}
	}
	if def == nil {
		t.Fatal("no funcdef in tree")
	}
	if def.Children[1].Literal() != "greet" {
		t.Errorf("function name = %q, want %q", def.Children[1].Literal(), "greet")
	}

	var params *Node
	for _, child := range def.Children {
		if child.Kind == KindParameters {
			params = child
		}
	}
	if params == nil {
		t.Fatal("no parameters node")
	}
	if params.FirstLeaf().Literal() != "(" || params.LastLeaf().Literal() != ")" {
		t.Errorf("parameters delimiters = %q %q", params.FirstLeaf().Literal(), params.LastLeaf().Literal())
	}

	var ret *Node
	for _, child := range def.Children {
		if child.Kind == KindReturnStmt {
			ret = child
		}
	}
	if ret == nil {
		t.Fatal("return statement not attached to funcdef body")
	}
}

func TestParseClauseAttachment(t *testing.T) {
	mod := Parse([]string{
		"if x:",
		"    pass",
		"else:",
		"    pass",
	})

	if len(mod.Root.Children) != 2 { // if_stmt + EOF
		t.Fatalf("root children = %d, want 2", len(mod.Root.Children))
	}
	ifStmt := mod.Root.Children[0]
	if ifStmt.Kind != KindIfStmt {
		t.Fatalf("first statement kind = %v, want if_stmt", ifStmt.Kind)
	}
	found := false
	for _, child := range ifStmt.Children {
		if child.Literal() == "else" {
			found = true
		}
	}
	if !found {
		t.Error("else clause not attached to if statement")
	}
}

func TestParseOrphanClause(t *testing.T) {
	mod := Parse([]string{"else:"})
	if mod.Root.Children[0].Kind != KindErrorNode {
		t.Errorf("orphan clause kind = %v, want error_node", mod.Root.Children[0].Kind)
	}
}

func TestParseMisalignedClauseStaysOrphan(t *testing.T) {
	mod := Parse([]string{
		"for x in xs:",
		"    pass",
		"    else:",
	})
	forStmt := mod.Root.Children[0]
	for _, child := range forStmt.Children {
		if child.Literal() == "else" {
			t.Error("misaligned else attached to for statement")
		}
	}
}

func TestParseImportFrom(t *testing.T) {
	mod := Parse([]string{"from os.path import join as j, split"})
	stmt := mod.Root.Children[0]
	if stmt.Kind != KindImportFrom {
		t.Fatalf("kind = %v, want import_from", stmt.Kind)
	}
	var dotted *Node
	for _, child := range stmt.Children {
		if child.Kind == KindDottedName {
			dotted = child
		}
	}
	if dotted == nil {
		t.Fatal("no dotted_name for os.path")
	}
	if len(dotted.Children) != 3 {
		t.Errorf("dotted_name children = %d, want 3", len(dotted.Children))
	}
}

func TestParseBracketContinuation(t *testing.T) {
	mod := Parse([]string{
		"result = compute(",
		"    1,",
		"    2)",
	})
	if len(mod.Root.Children) != 2 { // expr_stmt + EOF
		t.Fatalf("root children = %d, want 2", len(mod.Root.Children))
	}
	if mod.Root.Children[0].Kind != KindExprStmt {
		t.Errorf("kind = %v, want expr_stmt", mod.Root.Children[0].Kind)
	}
}

func TestParseCallArglist(t *testing.T) {
	mod := Parse([]string{"return getattr(obj, name)"})
	ret := mod.Root.Children[0]
	expr := ret.Children[1]
	if expr.Kind != KindAtomExpr {
		t.Fatalf("return value kind = %v, want atom_expr", expr.Kind)
	}
	trailer := expr.Children[1]
	if trailer.Kind != KindTrailer {
		t.Fatalf("second child kind = %v, want trailer", trailer.Kind)
	}
	args := trailer.Children[1]
	if args.Kind != KindArgList {
		t.Fatalf("call argument kind = %v, want arglist", args.Kind)
	}
	if len(args.Children) != 3 { // obj, comma, name
		t.Errorf("arglist children = %d, want 3", len(args.Children))
	}
}

func TestLeafAt(t *testing.T) {
	mod := Parse([]string{"value = other"})

	leaf := mod.LeafAt(Position{Line: 1, Column: 10}, false)
	if leaf.Literal() != "other" {
		t.Errorf("LeafAt inside = %q, want %q", leaf.Literal(), "other")
	}

	// Position right at the token start still resolves to it with prefixes.
	leaf = mod.LeafAt(Position{Line: 1, Column: 8}, true)
	if leaf.Literal() != "other" {
		t.Errorf("LeafAt with prefix = %q, want %q", leaf.Literal(), "other")
	}
}

func TestPreviousLeaf(t *testing.T) {
	mod := Parse([]string{"a = b.c"})
	leaf := mod.LeafAt(Position{Line: 1, Column: 7}, false)
	if leaf.Literal() != "c" {
		t.Fatalf("leaf = %q, want %q", leaf.Literal(), "c")
	}
	prev := leaf.PreviousLeaf()
	if prev.Literal() != "." {
		t.Errorf("previous leaf = %q, want %q", prev.Literal(), ".")
	}
}
