package parser

type NodeKind int

const (
	KindLeaf NodeKind = iota
	KindErrorNode
	KindFileInput

	// Statements
	KindExprStmt
	KindSimpleStmt
	KindReturnStmt
	KindImportName
	KindImportFrom
	KindDottedName
	KindDecorator

	// Compound statements
	KindIfStmt
	KindForStmt
	KindWhileStmt
	KindTryStmt
	KindWithStmt

	// Scopes
	KindFuncDef
	KindClassDef
	KindLambda

	// Expressions
	KindAtom
	KindAtomExpr
	KindTrailer
	KindArgList
	KindParameters
	KindBinaryExpr
)

func (k NodeKind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindErrorNode:
		return "error_node"
	case KindFileInput:
		return "file_input"
	case KindExprStmt:
		return "expr_stmt"
	case KindSimpleStmt:
		return "simple_stmt"
	case KindReturnStmt:
		return "return_stmt"
	case KindImportName:
		return "import_name"
	case KindImportFrom:
		return "import_from"
	case KindDottedName:
		return "dotted_name"
	case KindDecorator:
		return "decorator"
	case KindIfStmt:
		return "if_stmt"
	case KindForStmt:
		return "for_stmt"
	case KindWhileStmt:
		return "while_stmt"
	case KindTryStmt:
		return "try_stmt"
	case KindWithStmt:
		return "with_stmt"
	case KindFuncDef:
		return "funcdef"
	case KindClassDef:
		return "classdef"
	case KindLambda:
		return "lambdef"
	case KindAtom:
		return "atom"
	case KindAtomExpr:
		return "atom_expr"
	case KindTrailer:
		return "trailer"
	case KindArgList:
		return "arglist"
	case KindParameters:
		return "parameters"
	case KindBinaryExpr:
		return "binary_expr"
	default:
		return "unknown"
	}
}

// Node is one vertex of the statement tree. A node with a non-nil Token and
// no children is a leaf. Parent links are set during construction and make
// ancestor walks cheap; the tree is read-only after Parse returns.
type Node struct {
	Kind     NodeKind
	Token    *Token
	Span     Span
	Parent   *Node
	Children []*Node
}

// IsLeaf reports whether the node is an atomic token.
func (n *Node) IsLeaf() bool {
	return n.Token != nil
}

// Start returns the source position where the node begins.
func (n *Node) Start() Position {
	return n.FirstLeaf().Span.Start
}

// End returns the source position where the node ends.
func (n *Node) End() Position {
	return n.LastLeaf().Span.End
}

// Literal returns the token text for leaves and "" for interior nodes.
func (n *Node) Literal() string {
	if n.Token == nil {
		return ""
	}
	return n.Token.Literal
}

// IsErrorLeaf reports whether the leaf came from malformed input.
func (n *Node) IsErrorLeaf() bool {
	return n.Token != nil && n.Token.Kind == TokenError
}

func (n *Node) append(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// FirstLeaf returns the leftmost leaf under n, or n itself if it is a leaf.
func (n *Node) FirstLeaf() *Node {
	for len(n.Children) > 0 {
		n = n.Children[0]
	}
	return n
}

// LastLeaf returns the rightmost leaf under n, or n itself if it is a leaf.
func (n *Node) LastLeaf() *Node {
	for len(n.Children) > 0 {
		n = n.Children[len(n.Children)-1]
	}
	return n
}

// PreviousLeaf returns the leaf immediately before n in source order, or nil
// when n is the first leaf of the tree.
func (n *Node) PreviousLeaf() *Node {
	node := n
	for node.Parent != nil {
		parent := node.Parent
		idx := -1
		for i, c := range parent.Children {
			if c == node {
				idx = i
				break
			}
		}
		if idx > 0 {
			return parent.Children[idx-1].LastLeaf()
		}
		node = parent
	}
	return nil
}

// SearchAncestor walks up the parent chain starting at n.Parent and returns
// the first node whose kind is one of kinds, or nil.
func SearchAncestor(n *Node, kinds ...NodeKind) *Node {
	for node := n.Parent; node != nil; node = node.Parent {
		for _, k := range kinds {
			if node.Kind == k {
				return node
			}
		}
	}
	return nil
}

// IsScope reports whether the node introduces a lexical scope.
func (n *Node) IsScope() bool {
	switch n.Kind {
	case KindFileInput, KindFuncDef, KindClassDef, KindLambda:
		return true
	}
	return false
}

// IsFlow reports whether the node is a control-flow construct.
func (n *Node) IsFlow() bool {
	switch n.Kind {
	case KindIfStmt, KindForStmt, KindWhileStmt, KindTryStmt, KindWithStmt:
		return true
	}
	return false
}
