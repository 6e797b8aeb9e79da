package engine

import (
	"github.com/dhamidi/kai/python/complete"
	"github.com/dhamidi/kai/python/parser"
)

// maxInferDepth bounds recursive inference through assignment chains.
const maxInferDepth = 8

// evalContext anchors inference at a scope node.
type evalContext struct {
	eng   *Engine
	scope *parser.Node
}

func (c *evalContext) TreeNode() *parser.Node { return c.scope }

func (c *evalContext) InferNode(node *parser.Node) []complete.Value {
	return c.eng.inferExpr(c.scope, node, 0)
}

// Goto resolves a name node to its definitions within the context's scope
// chain, reporting the kind of binding found.
func (c *evalContext) Goto(name *parser.Node, pos parser.Position) []complete.NameEntry {
	if !name.IsLeaf() {
		return nil
	}
	target := name.Literal()
	for scope := c.scope; scope != nil; scope = enclosingScope(scope) {
		if scope.Kind == parser.KindFuncDef || scope.Kind == parser.KindLambda {
			for _, p := range paramNames(scope) {
				if p.Name == target {
					return []complete.NameEntry{p}
				}
			}
		}
		for _, entry := range scopeNames(scope) {
			if entry.Name == target {
				return []complete.NameEntry{entry}
			}
		}
	}
	return nil
}

// InferLeaf resolves the expression ending at leaf: a plain name, the
// attribute chain before it, or the call whose closing parenthesis it is.
func (e *Engine) InferLeaf(ctx complete.Context, leaf *parser.Node) []complete.Value {
	scope := e.module.Root
	if ec, ok := ctx.(*evalContext); ok && ec.scope != nil {
		scope = ec.scope
	}
	switch {
	case leaf.Token != nil && leaf.Token.Kind == parser.TokenName:
		// The leaf may be the tail of an attribute chain: prefer the
		// enclosing atom_expr cut at this leaf.
		if expr := enclosingAtomExpr(leaf); expr != nil {
			return e.inferAtomExprUpTo(scope, expr, leaf, 0)
		}
		return e.inferName(scope, leaf.Literal(), 0)
	case leaf.Literal() == ")" || leaf.Literal() == "]":
		if expr := enclosingAtomExpr(leaf); expr != nil {
			return e.inferAtomExprUpTo(scope, expr, leaf, 0)
		}
	case leaf.Token != nil && leaf.Token.Kind == parser.TokenString:
		return []complete.Value{e.strInstance()}
	}
	return nil
}

func enclosingAtomExpr(leaf *parser.Node) *parser.Node {
	for node := leaf.Parent; node != nil; node = node.Parent {
		if node.Kind == parser.KindAtomExpr {
			return node
		}
		if !(node.Kind == parser.KindTrailer || node.Kind == parser.KindArgList) {
			return nil
		}
	}
	return nil
}

// inferAtomExprUpTo evaluates an atom_expr but stops after the trailer that
// contains (or is) the given leaf.
func (e *Engine) inferAtomExprUpTo(scope *parser.Node, expr, until *parser.Node, depth int) []complete.Value {
	values := e.inferExpr(scope, expr.Children[0], depth)
	if nodeContains(expr.Children[0], until) {
		return values
	}
	for _, trailer := range expr.Children[1:] {
		values = e.applyTrailer(scope, values, trailer, depth)
		if nodeContains(trailer, until) {
			break
		}
	}
	return values
}

func nodeContains(node, leaf *parser.Node) bool {
	if node == leaf {
		return true
	}
	for _, child := range node.Children {
		if nodeContains(child, leaf) {
			return true
		}
	}
	return false
}

// inferExpr evaluates an expression node to its possible values.
func (e *Engine) inferExpr(scope *parser.Node, node *parser.Node, depth int) []complete.Value {
	if node == nil || depth > maxInferDepth {
		return nil
	}
	switch {
	case node.IsLeaf() && node.Token.Kind == parser.TokenName:
		return e.inferName(scope, node.Literal(), depth)
	case node.IsLeaf() && node.Token.Kind == parser.TokenString:
		return []complete.Value{e.strInstance()}
	case node.Kind == parser.KindAtomExpr:
		values := e.inferExpr(scope, node.Children[0], depth)
		for _, trailer := range node.Children[1:] {
			values = e.applyTrailer(scope, values, trailer, depth)
		}
		return values
	case node.Kind == parser.KindAtom && len(node.Children) > 0:
		// Parenthesized single expression.
		if node.Children[0].Literal() == "(" && len(node.Children) == 3 {
			return e.inferExpr(scope, node.Children[1], depth+1)
		}
	}
	return nil
}

func (e *Engine) applyTrailer(scope *parser.Node, values []complete.Value, trailer *parser.Node, depth int) []complete.Value {
	if trailer.Kind != parser.KindTrailer || len(trailer.Children) == 0 {
		return nil
	}
	switch trailer.Children[0].Literal() {
	case ".":
		if len(trailer.Children) < 2 {
			return nil
		}
		attr := trailer.Children[1].Literal()
		var out []complete.Value
		for _, v := range values {
			out = append(out, e.attributeValues(v, attr, depth+1)...)
		}
		return out
	case "(":
		var out []complete.Value
		for _, v := range values {
			if cv, ok := v.(*classValue); ok {
				out = append(out, &instanceValue{class: cv})
			}
		}
		return out
	}
	return nil
}

// inferName resolves a name through the scope chain to values.
func (e *Engine) inferName(scope *parser.Node, name string, depth int) []complete.Value {
	if depth > maxInferDepth {
		return nil
	}
	for s := scope; s != nil; s = enclosingScope(s) {
		// self inside a method evaluates to an instance of the class.
		if name == "self" && s.Kind == parser.KindFuncDef {
			if cls := parser.SearchAncestor(s, parser.KindClassDef); cls != nil {
				return []complete.Value{&instanceValue{class: e.classValueFor(cls, e.module)}}
			}
		}
		if vals := e.bindingInScope(s, name, depth); len(vals) > 0 {
			return vals
		}
	}
	return nil
}

func (e *Engine) bindingInScope(scope *parser.Node, name string, depth int) []complete.Value {
	var result []complete.Value
	var visit func(node *parser.Node)
	visit = func(node *parser.Node) {
		if result != nil {
			return
		}
		switch node.Kind {
		case parser.KindFuncDef:
			if definedName(node) == name {
				result = []complete.Value{&functionValue{eng: e, def: node, owner: e.module}}
			}
			return // do not descend into nested scopes
		case parser.KindClassDef:
			if definedName(node) == name {
				result = []complete.Value{e.classValueFor(node, e.module)}
			}
			return
		case parser.KindImportName, parser.KindImportFrom:
			result = e.importedValue(node, name)
			return
		case parser.KindExprStmt:
			targets := assignmentTargets(node)
			for _, t := range targets {
				if t.Name == name && len(node.Children) >= 3 {
					result = e.inferExpr(scope, node.Children[2], depth+1)
					return
				}
			}
			return
		}
		for _, child := range node.Children {
			visit(child)
		}
	}
	for _, child := range scope.Children {
		visit(child)
		if result != nil {
			break
		}
	}
	return result
}

// importedValue resolves name against one import statement, returning the
// module value it binds, if any.
func (e *Engine) importedValue(stmt *parser.Node, name string) []complete.Value {
	for _, bound := range importedNames(stmt) {
		if bound.Name != name {
			continue
		}
		names, fromPath := importPathOf(stmt, name)
		if mod := e.resolveModule(append(fromPath, names...)); mod != nil {
			return []complete.Value{mod}
		}
		return nil
	}
	return nil
}

// importPathOf reconstructs the dotted path that the bound name refers to.
// For "import a.b" the binding a refers to module a; for "from p import m"
// the binding m refers to p.m.
func importPathOf(stmt *parser.Node, bound string) ([]string, []string) {
	var prefix []string
	if stmt.Kind == parser.KindImportFrom {
		for _, child := range stmt.Children {
			if child.Literal() == "import" {
				break
			}
			if child.Kind == parser.KindDottedName {
				for _, lf := range child.Children {
					if lf.Token != nil && lf.Token.Kind == parser.TokenName {
						prefix = append(prefix, lf.Literal())
					}
				}
			} else if child.IsLeaf() && child.Token.Kind == parser.TokenName {
				prefix = append(prefix, child.Literal())
			}
		}
		return []string{bound}, prefix
	}
	// import a.b binds a; import a.b as x binds x to a.b.
	for _, child := range stmt.Children {
		if child.Kind == parser.KindDottedName {
			var parts []string
			for _, lf := range child.Children {
				if lf.Token != nil && lf.Token.Kind == parser.TokenName {
					parts = append(parts, lf.Literal())
				}
			}
			if len(parts) > 0 && (parts[0] == bound || aliasOf(stmt, child) == bound) {
				if parts[0] == bound && aliasOf(stmt, child) == "" {
					return parts[:1], nil
				}
				return parts, nil
			}
		}
		if child.IsLeaf() && child.Token.Kind == parser.TokenName && child.Literal() == bound {
			return []string{bound}, nil
		}
	}
	return []string{bound}, nil
}

// aliasOf returns the as-alias following a dotted name, or "".
func aliasOf(stmt *parser.Node, dotted *parser.Node) string {
	seen := false
	for _, child := range stmt.Children {
		if child == dotted {
			seen = true
			continue
		}
		if !seen {
			continue
		}
		if child.Literal() == "as" {
			continue
		}
		if child.IsLeaf() && child.Token.Kind == parser.TokenName {
			return child.Literal()
		}
		return ""
	}
	return ""
}

// attributeValues resolves member access on a value.
func (e *Engine) attributeValues(v complete.Value, attr string, depth int) []complete.Value {
	switch val := v.(type) {
	case *moduleValue:
		mod := val.parsed()
		if mod == nil {
			return nil
		}
		return e.inScopeOf(mod, func() []complete.Value {
			return e.bindingInScope(mod.Root, attr, depth)
		})
	case *classValue:
		if def := val.methodDef(attr); def != nil {
			return []complete.Value{&functionValue{eng: e, def: def, owner: val.owner, class: val}}
		}
	case *instanceValue:
		if def := val.class.methodDef(attr); def != nil {
			return []complete.Value{&functionValue{eng: e, def: def, owner: val.class.owner, class: val.class}}
		}
		// self.attr = Expr() assignments inside methods.
		if rhs := val.class.selfAssignment(attr); rhs != nil {
			return e.inferExpr(val.class.def, rhs, depth)
		}
	}
	return nil
}

// inScopeOf runs fn with the engine's module temporarily swapped, so
// bindings inside another file resolve against that file's tree.
func (e *Engine) inScopeOf(mod *parser.Module, fn func() []complete.Value) []complete.Value {
	saved := e.module
	e.module = mod
	defer func() { e.module = saved }()
	return fn()
}

func (e *Engine) classValueFor(def *parser.Node, owner *parser.Module) *classValue {
	return &classValue{eng: e, def: def, owner: owner}
}

func (e *Engine) strInstance() complete.Value {
	return &opaqueValue{names: []complete.NameEntry{
		{Name: "capitalize", Kind: complete.NameFunction},
		{Name: "endswith", Kind: complete.NameFunction},
		{Name: "format", Kind: complete.NameFunction},
		{Name: "join", Kind: complete.NameFunction},
		{Name: "lower", Kind: complete.NameFunction},
		{Name: "replace", Kind: complete.NameFunction},
		{Name: "split", Kind: complete.NameFunction},
		{Name: "startswith", Kind: complete.NameFunction},
		{Name: "strip", Kind: complete.NameFunction},
		{Name: "upper", Kind: complete.NameFunction},
	}}
}
