package engine

import (
	"github.com/dhamidi/kai/python/complete"
	"github.com/dhamidi/kai/python/parser"
)

// Filters returns the visibility layers at pos, innermost scope first, then
// enclosing scopes, the module, and finally the builtin names. Inner names
// are not removed when an outer layer defines the same name; de-duplication
// is the candidate registry's job.
func (e *Engine) Filters(ctx complete.Context, pos parser.Position, flowScope *parser.Node) []complete.Filter {
	var filters []complete.Filter
	for scope := e.scopeAt(pos); scope != nil; scope = enclosingScope(scope) {
		s := scope
		filters = append(filters, complete.FilterFunc(func() []complete.NameEntry {
			return scopeNames(s)
		}))
	}
	filters = append(filters, complete.FilterFunc(builtinNames))
	return filters
}

func enclosingScope(scope *parser.Node) *parser.Node {
	for node := scope.Parent; node != nil; node = node.Parent {
		if node.IsScope() {
			return node
		}
	}
	return nil
}

// scopeNames harvests the names a scope binds: parameters, definitions,
// imports, assignment targets, loop and with targets. Flow statements are
// descended into; nested scopes contribute only their own name.
func scopeNames(scope *parser.Node) []complete.NameEntry {
	var names []complete.NameEntry
	if scope.Kind == parser.KindFuncDef || scope.Kind == parser.KindLambda {
		names = append(names, paramNames(scope)...)
	}
	for _, child := range scope.Children {
		names = append(names, statementNames(child)...)
	}
	return names
}

func statementNames(node *parser.Node) []complete.NameEntry {
	switch node.Kind {
	case parser.KindFuncDef:
		if name := definedName(node); name != "" {
			return []complete.NameEntry{{Name: name, Kind: complete.NameFunction}}
		}
	case parser.KindClassDef:
		if name := definedName(node); name != "" {
			return []complete.NameEntry{{Name: name, Kind: complete.NameClass}}
		}
	case parser.KindImportName, parser.KindImportFrom:
		return importedNames(node)
	case parser.KindExprStmt:
		return assignmentTargets(node)
	case parser.KindForStmt, parser.KindWhileStmt, parser.KindIfStmt,
		parser.KindTryStmt, parser.KindWithStmt:
		var names []complete.NameEntry
		names = append(names, headerTargets(node)...)
		for _, child := range node.Children {
			names = append(names, statementNames(child)...)
		}
		return names
	}
	return nil
}

// definedName returns the identifier following the def/class keyword.
func definedName(node *parser.Node) string {
	for i, child := range node.Children {
		if i == 0 {
			continue
		}
		if child.IsLeaf() && child.Token.Kind == parser.TokenName {
			return child.Literal()
		}
		if !child.IsLeaf() {
			break
		}
	}
	return ""
}

func paramNames(def *parser.Node) []complete.NameEntry {
	params := parametersNode(def)
	if params == nil {
		return nil
	}
	var names []complete.NameEntry
	depth := 0
	expectName := true
	for _, child := range params.Children {
		if !child.IsLeaf() {
			continue
		}
		switch child.Literal() {
		case "(", "[":
			depth++
			continue
		case ")", "]":
			depth--
			continue
		case ",":
			if depth <= 1 {
				expectName = true
			}
			continue
		case "*", "**":
			continue
		case ":", "=":
			expectName = false
			continue
		}
		if depth <= 1 && expectName && child.Token.Kind == parser.TokenName {
			names = append(names, complete.NameEntry{Name: child.Literal(), Kind: complete.NameParam})
			expectName = false
		}
	}
	return names
}

func parametersNode(def *parser.Node) *parser.Node {
	for _, child := range def.Children {
		if child.Kind == parser.KindParameters {
			return child
		}
	}
	return nil
}

// importedNames returns the names an import statement binds in its scope:
// the first path component, or the alias after as, or the names after
// import in a from-import.
func importedNames(stmt *parser.Node) []complete.NameEntry {
	var names []complete.NameEntry
	fromImport := stmt.Kind == parser.KindImportFrom
	afterImport := !fromImport
	pendingAlias := false
	bound := ""
	for _, child := range stmt.Children {
		lit := child.Literal()
		switch {
		case lit == "import":
			afterImport = true
			continue
		case lit == "as":
			pendingAlias = true
			continue
		case lit == ",":
			pendingAlias = false
			bound = ""
			continue
		}
		if pendingAlias && child.IsLeaf() && child.Token.Kind == parser.TokenName {
			// The alias replaces whatever was bound before it.
			if bound != "" && len(names) > 0 {
				names = names[:len(names)-1]
			}
			names = append(names, complete.NameEntry{Name: lit, Kind: complete.NameModule})
			pendingAlias = false
			bound = lit
			continue
		}
		if !afterImport && fromImport {
			continue
		}
		switch {
		case child.Kind == parser.KindDottedName:
			first := child.FirstLeaf().Literal()
			if bound == "" {
				names = append(names, complete.NameEntry{Name: first, Kind: complete.NameModule})
				bound = first
			}
		case child.IsLeaf() && child.Token.Kind == parser.TokenName:
			if bound == "" {
				names = append(names, complete.NameEntry{Name: lit, Kind: complete.NameModule})
				bound = lit
			}
		}
	}
	return names
}

func assignmentTargets(stmt *parser.Node) []complete.NameEntry {
	if len(stmt.Children) < 2 || stmt.Children[1].Literal() != "=" {
		return nil
	}
	target := stmt.Children[0]
	if target.IsLeaf() && target.Token.Kind == parser.TokenName {
		return []complete.NameEntry{{Name: target.Literal(), Kind: complete.NameStatement}}
	}
	// Tuple targets: harvest the name leaves.
	if target.Kind == parser.KindBinaryExpr || target.Kind == parser.KindAtom {
		var names []complete.NameEntry
		for _, leaf := range nameLeaves(target) {
			names = append(names, complete.NameEntry{Name: leaf.Literal(), Kind: complete.NameStatement})
		}
		return names
	}
	return nil
}

// headerTargets harvests names bound by a flow statement's header: for
// targets, with ... as names, except ... as names.
func headerTargets(stmt *parser.Node) []complete.NameEntry {
	var names []complete.NameEntry
	switch stmt.Kind {
	case parser.KindForStmt:
		for _, child := range stmt.Children {
			if child.Literal() == "in" {
				break
			}
			if child.IsLeaf() && child.Token.Kind == parser.TokenName {
				names = append(names, complete.NameEntry{Name: child.Literal(), Kind: complete.NameStatement})
			}
		}
	case parser.KindWithStmt, parser.KindTryStmt:
		wantName := false
		for _, child := range stmt.Children {
			if child.Literal() == "as" {
				wantName = true
				continue
			}
			if wantName && child.IsLeaf() && child.Token.Kind == parser.TokenName {
				names = append(names, complete.NameEntry{Name: child.Literal(), Kind: complete.NameStatement})
				wantName = false
			}
		}
	}
	return names
}

func nameLeaves(node *parser.Node) []*parser.Node {
	if node.IsLeaf() {
		if node.Token.Kind == parser.TokenName {
			return []*parser.Node{node}
		}
		return nil
	}
	var out []*parser.Node
	for _, child := range node.Children {
		out = append(out, nameLeaves(child)...)
	}
	return out
}

// builtinNames is the outermost visibility layer. The list covers the
// builtins people actually complete against; it is not exhaustive.
func builtinNames() []complete.NameEntry {
	builtins := []string{
		"abs", "all", "any", "bool", "bytes", "callable", "chr", "dict",
		"dir", "enumerate", "filter", "float", "format", "frozenset",
		"getattr", "hasattr", "hash", "hex", "id", "input", "int",
		"isinstance", "issubclass", "iter", "len", "list", "map", "max",
		"min", "next", "object", "open", "ord", "print", "property",
		"range", "repr", "reversed", "round", "set", "setattr", "sorted",
		"staticmethod", "str", "sum", "super", "tuple", "type", "vars",
		"zip",
	}
	out := make([]complete.NameEntry, len(builtins))
	for i, name := range builtins {
		out[i] = complete.NameEntry{Name: name, Kind: complete.NameFunction, Detail: "builtin"}
	}
	return out
}
