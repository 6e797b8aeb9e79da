package engine

import (
	"github.com/dhamidi/kai/python/complete"
	"github.com/dhamidi/kai/python/parser"
)

// SignaturesAt resolves the call surrounding pos to the parameter lists of
// its possible callees. Keyword-argument completion feeds off the result.
func (e *Engine) SignaturesAt(pos parser.Position) []complete.Signature {
	callee := e.openCallCallee(pos)
	if callee == nil {
		return nil
	}
	ctx := e.ContextAt(callee.Span.Start)
	var sigs []complete.Signature
	for _, value := range e.InferLeaf(ctx, callee) {
		switch v := value.(type) {
		case *functionValue:
			sigs = append(sigs, complete.Signature{Params: signatureParams(v.def, v.class != nil)})
		case *classValue:
			if init := v.methodDef("__init__"); init != nil {
				sigs = append(sigs, complete.Signature{Params: signatureParams(init, true)})
			}
		}
	}
	return sigs
}

// openCallCallee finds the leaf naming the innermost call still open at pos.
func (e *Engine) openCallCallee(pos parser.Position) *parser.Node {
	var stack []*parser.Node
	var prev *parser.Node
	for _, leaf := range e.module.Leaves() {
		if !leaf.Span.End.BeforeOrEqual(pos) {
			break
		}
		switch leaf.Literal() {
		case "(":
			if prev != nil && prev.Token != nil &&
				(prev.Token.Kind == parser.TokenName || prev.Literal() == ")" || prev.Literal() == "]") {
				stack = append(stack, prev)
			} else {
				stack = append(stack, nil)
			}
		case ")":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
		prev = leaf
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] != nil {
			return stack[i]
		}
	}
	return nil
}

// signatureParams lists a definition's parameter names in order, dropping
// the bound receiver for methods and the *args/**kwargs catch-alls.
// Keyword-only names after a bare star stay in.
func signatureParams(def *parser.Node, isMethod bool) []complete.NameEntry {
	params := parametersNode(def)
	if params == nil {
		return nil
	}
	var names []complete.NameEntry
	depth := 0
	expectName := true
	starred := false
	first := true
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
				starred = false
			}
			continue
		case "*", "**":
			starred = true
			continue
		case ":", "=":
			expectName = false
			continue
		}
		if depth <= 1 && expectName && child.Token.Kind == parser.TokenName {
			expectName = false
			if starred {
				continue
			}
			if first && isMethod {
				first = false
				continue
			}
			first = false
			names = append(names, complete.NameEntry{
				Name:   child.Literal(),
				Kind:   complete.NameParam,
				Detail: "param",
			})
		}
	}
	return names
}
