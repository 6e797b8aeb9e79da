package engine

import (
	"github.com/dhamidi/kai/python/complete"
	"github.com/dhamidi/kai/python/parser"
)

// ClassValue builds the value for a class definition in the current
// document.
func (e *Engine) ClassValue(node *parser.Node) complete.Value {
	if node == nil || node.Kind != parser.KindClassDef {
		return nil
	}
	return e.classValueFor(node, e.module)
}

// moduleValue represents another source file reachable through imports. The
// tree is parsed lazily and cached for the value's lifetime.
type moduleValue struct {
	eng  *Engine
	name string
	path string
	mod  *parser.Module
}

func (m *moduleValue) parsed() *parser.Module {
	if m.mod == nil {
		m.mod = readModuleFile(m.path)
	}
	return m.mod
}

func (m *moduleValue) IsStub() bool     { return false }
func (m *moduleValue) IsInstance() bool { return false }

func (m *moduleValue) Filters(origin *parser.Node) []complete.Filter {
	return []complete.Filter{complete.FilterFunc(func() []complete.NameEntry {
		mod := m.parsed()
		if mod == nil {
			return nil
		}
		return scopeNames(mod.Root)
	})}
}

func (m *moduleValue) InstanceFilters() []complete.Filter { return m.Filters(nil) }

func (m *moduleValue) FunctionSlot(name string) []complete.Value { return nil }

func (m *moduleValue) AsContext() complete.Context {
	mod := m.parsed()
	if mod == nil {
		return nil
	}
	return &evalContext{eng: m.eng, scope: mod.Root}
}

func (m *moduleValue) ReturnStatements() []*parser.Node { return nil }

// classValue represents a class definition. Owner is the module whose tree
// the definition lives in; base lookups resolve against it.
type classValue struct {
	eng   *Engine
	def   *parser.Node
	owner *parser.Module
}

func (c *classValue) IsStub() bool     { return false }
func (c *classValue) IsInstance() bool { return false }

// mro returns the linearized class chain: the class itself, then its bases
// in declaration order, recursively. Cycles are cut by identity.
func (c *classValue) mro() []*classValue {
	var chain []*classValue
	seen := map[*parser.Node]bool{}
	var walk func(cv *classValue)
	walk = func(cv *classValue) {
		if seen[cv.def] {
			return
		}
		seen[cv.def] = true
		chain = append(chain, cv)
		for _, base := range cv.bases() {
			walk(base)
		}
	}
	walk(c)
	return chain
}

// bases resolves the class's base names to class values in the owner module.
func (c *classValue) bases() []*classValue {
	var out []*classValue
	for _, child := range c.def.Children {
		if child.Kind != parser.KindArgList {
			continue
		}
		for _, arg := range child.Children {
			if arg.Literal() == "," {
				continue
			}
			vals := c.eng.inScopeOf(c.owner, func() []complete.Value {
				return c.eng.inferExpr(c.owner.Root, arg, 1)
			})
			for _, v := range vals {
				if cv, ok := v.(*classValue); ok {
					out = append(out, cv)
				}
			}
		}
	}
	return out
}

// ownNames lists the class body's own members: methods, nested classes and
// class-level assignments.
func (c *classValue) ownNames() []complete.NameEntry {
	var names []complete.NameEntry
	for _, child := range c.def.Children {
		names = append(names, statementNames(child)...)
	}
	return names
}

// Filters on a class value expose the class dict across the whole chain as
// one layer per class, own class first.
func (c *classValue) Filters(origin *parser.Node) []complete.Filter {
	return c.InstanceFilters()
}

func (c *classValue) InstanceFilters() []complete.Filter {
	var filters []complete.Filter
	for _, cv := range c.mro() {
		member := cv
		filters = append(filters, complete.FilterFunc(func() []complete.NameEntry {
			return member.ownNames()
		}))
	}
	return filters
}

// methodDef finds a function definition by name along the class chain.
func (c *classValue) methodDef(name string) *parser.Node {
	for _, cv := range c.mro() {
		for _, child := range cv.def.Children {
			if child.Kind == parser.KindFuncDef && definedName(child) == name {
				return child
			}
		}
	}
	return nil
}

// selfAssignment finds the right-hand side of a `self.attr = expr` statement
// in any method along the class chain.
func (c *classValue) selfAssignment(attr string) *parser.Node {
	for _, cv := range c.mro() {
		for _, method := range cv.def.Children {
			if method.Kind != parser.KindFuncDef {
				continue
			}
			if rhs := selfAssignmentIn(method, attr); rhs != nil {
				return rhs
			}
		}
	}
	return nil
}

func selfAssignmentIn(method *parser.Node, attr string) *parser.Node {
	var found *parser.Node
	var visit func(node *parser.Node)
	visit = func(node *parser.Node) {
		if found != nil || node.IsLeaf() {
			return
		}
		if node.Kind == parser.KindExprStmt && len(node.Children) >= 3 &&
			node.Children[1].Literal() == "=" {
			target := node.Children[0]
			if isSelfAttr(target, attr) {
				found = node.Children[2]
				return
			}
		}
		if node.Kind == parser.KindFuncDef && node != method {
			return
		}
		for _, child := range node.Children {
			visit(child)
		}
	}
	visit(method)
	return found
}

func isSelfAttr(node *parser.Node, attr string) bool {
	if node.Kind != parser.KindAtomExpr || len(node.Children) != 2 {
		return false
	}
	base := node.Children[0]
	trailer := node.Children[1]
	return base.IsLeaf() && base.Literal() == "self" &&
		trailer.Kind == parser.KindTrailer && len(trailer.Children) >= 2 &&
		trailer.Children[0].Literal() == "." && trailer.Children[1].Literal() == attr
}

func (c *classValue) FunctionSlot(name string) []complete.Value {
	if def := c.methodDef(name); def != nil {
		return []complete.Value{&functionValue{eng: c.eng, def: def, owner: c.owner, class: c}}
	}
	return nil
}

func (c *classValue) AsContext() complete.Context {
	return &evalContext{eng: c.eng, scope: c.def}
}

func (c *classValue) ReturnStatements() []*parser.Node { return nil }

// instanceValue is a class value seen through instantiation. Its first
// filter layer adds the attributes assigned on self in methods.
type instanceValue struct {
	class *classValue
}

func (i *instanceValue) IsStub() bool     { return false }
func (i *instanceValue) IsInstance() bool { return true }

func (i *instanceValue) Filters(origin *parser.Node) []complete.Filter {
	filters := []complete.Filter{complete.FilterFunc(i.selfAttributeNames)}
	return append(filters, i.class.InstanceFilters()...)
}

func (i *instanceValue) InstanceFilters() []complete.Filter {
	return i.Filters(nil)
}

// selfAttributeNames harvests every `self.x = ...` target across the class
// chain's methods.
func (i *instanceValue) selfAttributeNames() []complete.NameEntry {
	seen := map[string]bool{}
	var names []complete.NameEntry
	for _, cv := range i.class.mro() {
		for _, method := range cv.def.Children {
			if method.Kind != parser.KindFuncDef {
				continue
			}
			for _, attr := range selfAttrTargets(method) {
				if seen[attr] {
					continue
				}
				seen[attr] = true
				names = append(names, complete.NameEntry{Name: attr, Kind: complete.NameStatement})
			}
		}
	}
	return names
}

func selfAttrTargets(method *parser.Node) []string {
	var attrs []string
	var visit func(node *parser.Node)
	visit = func(node *parser.Node) {
		if node.IsLeaf() {
			return
		}
		if node.Kind == parser.KindExprStmt && len(node.Children) >= 3 &&
			node.Children[1].Literal() == "=" {
			target := node.Children[0]
			if target.Kind == parser.KindAtomExpr && len(target.Children) == 2 &&
				target.Children[0].Literal() == "self" {
				trailer := target.Children[1]
				if trailer.Kind == parser.KindTrailer && len(trailer.Children) >= 2 &&
					trailer.Children[0].Literal() == "." {
					attrs = append(attrs, trailer.Children[1].Literal())
				}
			}
		}
		if node.Kind == parser.KindFuncDef && node != method {
			return
		}
		for _, child := range node.Children {
			visit(child)
		}
	}
	visit(method)
	return attrs
}

func (i *instanceValue) FunctionSlot(name string) []complete.Value {
	return i.class.FunctionSlot(name)
}

func (i *instanceValue) AsContext() complete.Context {
	return i.class.AsContext()
}

func (i *instanceValue) ReturnStatements() []*parser.Node { return nil }

// functionValue is a function or method definition.
type functionValue struct {
	eng   *Engine
	def   *parser.Node
	owner *parser.Module
	class *classValue
}

func (f *functionValue) IsStub() bool     { return false }
func (f *functionValue) IsInstance() bool { return false }

func (f *functionValue) Filters(origin *parser.Node) []complete.Filter {
	// Function objects contribute no attribute names of interest.
	return nil
}

func (f *functionValue) InstanceFilters() []complete.Filter { return nil }

func (f *functionValue) FunctionSlot(name string) []complete.Value { return nil }

func (f *functionValue) AsContext() complete.Context {
	return &evalContext{eng: f.eng, scope: f.def}
}

// ReturnStatements collects the function body's return statements in source
// order, without descending into nested function definitions.
func (f *functionValue) ReturnStatements() []*parser.Node {
	var returns []*parser.Node
	var visit func(node *parser.Node)
	visit = func(node *parser.Node) {
		if node.IsLeaf() {
			return
		}
		if node.Kind == parser.KindReturnStmt {
			returns = append(returns, node)
			return
		}
		if (node.Kind == parser.KindFuncDef || node.Kind == parser.KindLambda) && node != f.def {
			return
		}
		for _, child := range node.Children {
			visit(child)
		}
	}
	visit(f.def)
	return returns
}

// opaqueValue carries a fixed member list, used for literal types whose
// members are known without a source definition.
type opaqueValue struct {
	names []complete.NameEntry
}

func (o *opaqueValue) IsStub() bool     { return false }
func (o *opaqueValue) IsInstance() bool { return true }

func (o *opaqueValue) Filters(origin *parser.Node) []complete.Filter {
	return []complete.Filter{complete.FilterFunc(func() []complete.NameEntry { return o.names })}
}

func (o *opaqueValue) InstanceFilters() []complete.Filter { return o.Filters(nil) }

func (o *opaqueValue) FunctionSlot(string) []complete.Value { return nil }

func (o *opaqueValue) AsContext() complete.Context { return nil }

func (o *opaqueValue) ReturnStatements() []*parser.Node { return nil }
