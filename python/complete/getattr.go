package complete

import (
	"github.com/dhamidi/kai/python/parser"
)

// completeGetattr widens attribute completion on proxy objects that forward
// unknown attribute access. It recognizes exactly one idiom:
//
//	def __getattr__(self, name):
//	    ...
//	    return getattr(any_object, name)
//
// The return must contain the getattr call directly; extra parentheses or an
// intermediate variable defeat it. That keeps the heuristic cheap and
// low-risk: anything it cannot prove is simply skipped.
func (c *Completer) completeGetattr(instance Value, pos parser.Position) []NameEntry {
	functions := instance.FunctionSlot("__getattr__")
	if len(functions) == 0 {
		functions = instance.FunctionSlot("__getattribute__")
	}
	for _, fn := range functions {
		for _, ret := range fn.ReturnStatements() {
			objectNode, ok := delegatedObject(fn, ret)
			if !ok {
				continue
			}
			objects := fn.AsContext().InferNode(objectNode)
			return c.completeTrailerForValues(objects, pos)
		}
	}
	return nil
}

// delegatedObject checks whether ret is exactly `return getattr(obj, name)`
// with name bound to a parameter of the enclosing function, and returns obj.
func delegatedObject(fn Value, ret *parser.Node) (*parser.Node, bool) {
	if ret.Kind != parser.KindReturnStmt || len(ret.Children) < 2 {
		return nil, false
	}
	atomExpr := ret.Children[1]
	if atomExpr.Kind != parser.KindAtomExpr || len(atomExpr.Children) != 2 {
		return nil, false
	}
	atom := atomExpr.Children[0]
	trailer := atomExpr.Children[1]
	if !atom.IsLeaf() || atom.Literal() != "getattr" {
		return nil, false
	}
	if len(trailer.Children) < 2 {
		return nil, false
	}
	arglist := trailer.Children[1]
	if arglist.Kind != parser.KindArgList || len(arglist.Children) < 3 {
		return nil, false
	}
	objectNode := arglist.Children[0]
	nameNode := arglist.Children[2]

	// The third argument must resolve to a parameter of the function;
	// otherwise this is not the delegation idiom.
	ctx := fn.AsContext()
	if ctx == nil {
		return nil, false
	}
	isParam := false
	for _, def := range ctx.Goto(nameNode, nameNode.Start()) {
		if def.Kind == NameParam {
			isParam = true
			break
		}
	}
	if !isParam {
		return nil, false
	}
	return objectNode, true
}
