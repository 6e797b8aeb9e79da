// Package complete decides what kind of completion applies at a cursor
// position and produces the ranked candidate list. It owns context
// classification, candidate matching and ranking; parsing, scope filtering,
// inference and import resolution are injected collaborators.
package complete

import (
	"github.com/dhamidi/kai/python/parser"
)

type NameKind int

const (
	NameStatement NameKind = iota
	NameFunction
	NameClass
	NameModule
	NameParam
	NameKeyword
	NamePath
)

func (k NameKind) String() string {
	switch k {
	case NameStatement:
		return "statement"
	case NameFunction:
		return "function"
	case NameClass:
		return "class"
	case NameModule:
		return "module"
	case NameParam:
		return "param"
	case NameKeyword:
		return "keyword"
	case NamePath:
		return "path"
	default:
		return "unknown"
	}
}

// NameEntry is one raw completion name produced by a resolver, before
// matching and ranking.
type NameEntry struct {
	Name   string
	Kind   NameKind
	Detail string
}

// Filter yields the visible names of one visibility layer.
type Filter interface {
	Values() []NameEntry
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func() []NameEntry

func (f FilterFunc) Values() []NameEntry { return f() }

// Value is one inferred runtime or declared value, as produced by the
// inference collaborator.
type Value interface {
	// IsStub reports whether the value is known only from a declaration
	// (interface/stub) source, without a runtime body.
	IsStub() bool
	// IsInstance reports whether the value is a live object instance.
	IsInstance() bool
	// Filters returns the member-name layers visible from origin.
	Filters(origin *parser.Node) []Filter
	// InstanceFilters returns member layers ordered own-class first, then
	// each ancestor class.
	InstanceFilters() []Filter
	// FunctionSlot resolves a member function by name, e.g. __getattr__.
	FunctionSlot(name string) []Value
	// AsContext turns the value into an inference context for nested
	// lookups.
	AsContext() Context
	// ReturnStatements yields the value's syntactic return statements when
	// it is a function, in source order.
	ReturnStatements() []*parser.Node
}

// Context is a lexical position the inference collaborator can resolve
// names and expressions in.
type Context interface {
	// InferNode infers the values an expression node may evaluate to.
	InferNode(node *parser.Node) []Value
	// Goto resolves a name node to its definitions.
	Goto(name *parser.Node, pos parser.Position) []NameEntry
	// TreeNode returns the scope node the context is anchored at.
	TreeNode() *parser.Node
}

// GrammarProvider supplies leaves and partial-parse stacks for the current
// source.
type GrammarProvider interface {
	LeafAt(pos parser.Position, includePrefix bool) *parser.Node
	StackAt(lines []string, leaf *parser.Node, pos parser.Position) (*parser.Stack, error)
}

// ScopeProvider supplies the ordered name filters visible at a position,
// innermost layer first.
type ScopeProvider interface {
	Filters(ctx Context, pos parser.Position, flowScope *parser.Node) []Filter
}

// InferenceProvider resolves leaves and class nodes to value sets.
type InferenceProvider interface {
	// ContextAt returns the lexical context enclosing pos.
	ContextAt(pos parser.Position) Context
	// InferLeaf infers the values of the expression ending at leaf.
	InferLeaf(ctx Context, leaf *parser.Node) []Value
	// ClassValue builds the value for a class definition node, or nil.
	ClassValue(node *parser.Node) Value
}

// ConvertValues maps a value set to its alternate representations, e.g. a
// runtime value's declaration-only counterpart. May return nil.
type ConvertValues func(values []Value) []Value

// ImportResolver completes dotted import paths. Level is the relative-import
// dot count; onlyModules excludes module attributes from the result.
type ImportResolver interface {
	ResolveImport(names []string, level int, onlyModules bool) []NameEntry
}

// PathCompleter completes string/path literals. It receives the partial
// string content before the cursor and the like-name still being typed.
type PathCompleter interface {
	CompletePath(partial, likeName string, pos parser.Position, fuzzy bool) []*Candidate
}

// ParamNameProvider is the pluggable parameter-name policy. The core only
// classifies the position and marshals the call; a nil provider means no
// parameter-name candidates.
type ParamNameProvider func(ctx Context, functionName string, decorators []*parser.Node) []NameEntry

// Signature describes one callable signature at a call site. Params holds
// the positional-or-keyword and keyword-only parameter names, in order.
type Signature struct {
	Params []NameEntry
}

// SignatureProvider computes the signatures of the call surrounding a
// position.
type SignatureProvider interface {
	SignaturesAt(pos parser.Position) []Signature
}

// Providers bundles every collaborator the completer needs. Grammar is
// required; the rest may be nil, degrading the matching branch to no
// candidates.
type Providers struct {
	Grammar    GrammarProvider
	Scope      ScopeProvider
	Inference  InferenceProvider
	Convert    ConvertValues
	Imports    ImportResolver
	Paths      PathCompleter
	ParamNames ParamNameProvider
	Signatures SignatureProvider
}
