package complete

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/kai/python/parser"
)

var log = commonlog.GetLogger("kai.complete")

// ContextKind classifies the cursor's grammatical situation. Exactly one kind
// is chosen per request and decides which resolvers run.
type ContextKind int

const (
	// ContextKeywordOnly: names are not grammatically allowed here.
	ContextKeywordOnly ContextKind = iota
	// ContextNewName: the cursor names a new binding (after as/def/class).
	ContextNewName
	// ContextImport: inside an import statement.
	ContextImport
	// ContextTrailer: attribute access after a dot.
	ContextTrailer
	// ContextParam: a parameter-name position in a def or lambda.
	ContextParam
	// ContextExpression: a general expression position.
	ContextExpression
)

// Completer runs completion requests. It keeps no per-request state; every
// request builds its entities fresh and discards them with the result.
type Completer struct {
	providers Providers
	settings  Settings
}

func New(providers Providers, settings Settings) *Completer {
	return &Completer{providers: providers, settings: settings}
}

// Complete returns the ranked, de-duplicated candidates for the cursor at
// pos. It never fails: malformed input degrades to a broader resolution
// strategy or an empty list.
func (c *Completer) Complete(lines []string, pos parser.Position, fuzzy bool) []*Candidate {
	likeName := likeNameAt(lines, pos)
	// Classification reasons about the state before the partial token
	// existed, so shift left by what is already typed.
	effective := parser.Position{Line: pos.Line, Column: pos.Column - len(likeName)}

	leaf := c.providers.Grammar.LeafAt(effective, true)
	if leaf == nil {
		return nil
	}

	if partial, ok := stringBeforeCursor(leaf, effective); ok && c.providers.Paths != nil {
		if cands := c.providers.Paths.CompletePath(partial, likeName, pos, fuzzy); len(cands) > 0 {
			return cands
		}
	}

	names := c.collectNames(lines, leaf, effective)

	cands := filterNames(c.settings, names, likeName, fuzzy)
	sortCandidates(cands)
	return cands
}

// collectNames picks the completion category for the position and gathers
// raw names from the matching resolvers.
func (c *Completer) collectNames(lines []string, leaf *parser.Node, pos parser.Position) []NameEntry {
	stack, err := c.providers.Grammar.StackAt(lines, leaf, pos)
	if err != nil {
		var el *parser.ErrorLeafError
		if errors.As(err, &el) && el.Value == "." {
			// A dangling dot after a broken expression: suggesting
			// anything here only confuses.
			return nil
		}
		log.Debugf("error leaf, falling back to scope completion: %s", err.Error())
		return c.completeGlobalScope(pos)
	}

	allowed := stack.Allowed
	if stack.AllowsAny("if") {
		allowed = append(allowed, c.continuationKeywords(pos)...)
	}

	var names []NameEntry
	if harvestKeywords(lines, pos) {
		names = append(names, keywordNames(allowed)...)
	}

	if !containsAny(allowed, parser.TransitionName, parser.TransitionIndent) {
		return names
	}

	nonterminals := stack.Nonterminals()
	nodes := stack.StatementNodes()

	switch classifyContext(stack, nonterminals, nodes) {
	case ContextNewName:
		// Naming a new binding: scope names would only mislead here.
		return append(names, c.completeInherited(pos, true)...)
	case ContextImport:
		level, dotted := parseDottedNames(nodes, contains(nonterminals, "import_from"))
		onlyModules := !(contains(nonterminals, "import_from") && literalIn(nodes, "import"))
		names = append(names, c.completeImports(dotted, level, onlyModules)...)
	case ContextTrailer:
		names = append(names, c.completeTrailer(pos)...)
	case ContextParam:
		names = append(names, c.completeParams(stack, leaf, pos)...)
	case ContextExpression:
		names = append(names, c.completeGlobalScope(pos)...)
		names = append(names, c.completeInherited(pos, false)...)
	}

	// A comma or open paren inside a call-like construct starts a new
	// argument, which may be an expression or a keyword-argument name, so
	// parameter names are additive with whatever branch ran above.
	if len(nodes) > 0 && len(nonterminals) > 0 {
		lastLit := nodes[len(nodes)-1].Literal()
		tos := nonterminals[len(nonterminals)-1]
		if (lastLit == "(" || lastLit == ",") &&
			(tos == "trailer" || tos == "arglist" || tos == "decorator") &&
			c.providers.Signatures != nil {
			for _, sig := range c.providers.Signatures.SignaturesAt(pos) {
				names = append(names, sig.Params...)
			}
		}
	}

	return names
}

// classifyContext maps the parse stack to the single completion category.
func classifyContext(stack *parser.Stack, nonterminals []string, nodes []*parser.Node) ContextKind {
	if len(nodes) > 0 {
		switch nodes[len(nodes)-1].Literal() {
		case "as", "def", "class":
			return ContextNewName
		}
	}
	if contains(nonterminals, "import_stmt") {
		return ContextImport
	}
	if len(nonterminals) > 0 && len(nodes) > 0 {
		tos := nonterminals[len(nonterminals)-1]
		if (tos == "trailer" || tos == "dotted_name") && nodes[len(nodes)-1].Literal() == "." {
			return ContextTrailer
		}
	}
	if isParamPosition(stack) {
		return ContextParam
	}
	return ContextExpression
}

func isParamPosition(stack *parser.Stack) bool {
	if len(stack.Frames) == 0 {
		return false
	}
	tos := stack.Frames[len(stack.Frames)-1]
	if tos.Nonterminal == "lambdef" && len(tos.Nodes) == 1 {
		return true
	}
	if tos.Nonterminal == "parameters" {
		return true
	}
	if tos.Nonterminal == "typedargslist" || tos.Nonterminal == "varargslist" {
		return len(tos.Nodes) > 0 && tos.Nodes[len(tos.Nodes)-1].Literal() == ","
	}
	return false
}

// continuationKeywords folds over the flow ancestors of the leaf before the
// cursor and collects the statement-continuation keywords of every ancestor
// whose starting column matches the cursor's indentation. All aligned
// ancestors contribute: a cursor at a given indentation can continue any
// enclosing block at that indentation, not only the innermost one.
func (c *Completer) continuationKeywords(pos parser.Position) []string {
	leaf := c.providers.Grammar.LeafAt(pos, true)
	if leaf == nil {
		return nil
	}
	indent := pos.Column
	if !leaf.Span.Contains(pos) {
		indent = leaf.Span.Start.Column
	}
	prev := leaf.PreviousLeaf()
	if prev == nil {
		return nil
	}

	var kws []string
	stmt := prev
	for {
		stmt = parser.SearchAncestor(stmt,
			parser.KindIfStmt, parser.KindForStmt, parser.KindWhileStmt,
			parser.KindTryStmt, parser.KindErrorNode)
		if stmt == nil {
			return kws
		}
		kind := stmt.Kind
		if kind == parser.KindErrorNode {
			// Reinterpret a malformed fragment by its first token.
			first := stmt.FirstLeaf()
			switch first.Literal() {
			case "if":
				kind = parser.KindIfStmt
			case "for":
				kind = parser.KindForStmt
			case "while":
				kind = parser.KindWhileStmt
			case "try":
				kind = parser.KindTryStmt
			}
		}
		if stmt.Start().Column == indent {
			switch kind {
			case parser.KindIfStmt:
				kws = append(kws, "elif", "else")
			case parser.KindTryStmt:
				kws = append(kws, "except", "finally", "else")
			case parser.KindForStmt:
				kws = append(kws, "else")
			}
		}
	}
}

// harvestKeywords reports whether keyword candidates apply at pos: the line
// is empty up to the cursor, or ends in space, tab, dot or semicolon without
// a trailing ellipsis.
func harvestKeywords(lines []string, pos parser.Position) bool {
	if pos.Line-1 < 0 || pos.Line-1 >= len(lines) {
		return true
	}
	line := lines[pos.Line-1]
	if pos.Column < len(line) {
		line = line[:pos.Column]
	}
	if line == "" {
		return true
	}
	last := line[len(line)-1]
	return strings.IndexByte(" \t.;", last) >= 0 && !strings.HasSuffix(line, "...")
}

func keywordNames(allowed []string) []NameEntry {
	var out []NameEntry
	for _, sym := range allowed {
		if isAlpha(sym) {
			out = append(out, NameEntry{Name: sym, Kind: NameKeyword})
		}
	}
	return out
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func (c *Completer) completeGlobalScope(pos parser.Position) []NameEntry {
	if c.providers.Scope == nil || c.providers.Inference == nil {
		return nil
	}
	ctx := c.providers.Inference.ContextAt(pos)
	flowScope := c.flowScopeNode(pos)
	log.Debugf("global completion scope at %d:%d", pos.Line, pos.Column)
	var names []NameEntry
	for _, filter := range c.providers.Scope.Filters(ctx, pos, flowScope) {
		names = append(names, filter.Values()...)
	}
	return names
}

// flowScopeNode finds the innermost scope- or flow-shaped node enclosing
// pos.
func (c *Completer) flowScopeNode(pos parser.Position) *parser.Node {
	node := c.providers.Grammar.LeafAt(pos, true)
	for node != nil && !node.IsScope() && !node.IsFlow() {
		node = node.Parent
	}
	return node
}

func (c *Completer) completeImports(names []string, level int, onlyModules bool) []NameEntry {
	if c.providers.Imports == nil {
		return nil
	}
	return c.providers.Imports.ResolveImport(names, level, onlyModules)
}

// parseDottedNames extracts the relative-import level and the dotted path
// components already typed from the statement nodes.
func parseDottedNames(nodes []*parser.Node, isImportFrom bool) (int, []string) {
	level := 0
	var names []string
	for _, node := range nodes[min(1, len(nodes)):] {
		switch {
		case node.Literal() == "." || node.Literal() == "...":
			if len(names) == 0 {
				level += len(node.Literal())
			}
		case node.Kind == parser.KindDottedName:
			for _, child := range node.Children {
				if child.Token != nil && child.Token.Kind == parser.TokenName {
					names = append(names, child.Literal())
				}
			}
		case node.Token != nil && node.Token.Kind == parser.TokenName:
			names = append(names, node.Literal())
		case node.Literal() == ",":
			if !isImportFrom {
				names = nil
			}
		default:
			return level, names
		}
	}
	return level, names
}

func (c *Completer) completeTrailer(pos parser.Position) []NameEntry {
	if c.providers.Inference == nil {
		return nil
	}
	dot := c.providers.Grammar.LeafAt(pos, false)
	if dot == nil {
		return nil
	}
	prev := dot.PreviousLeaf()
	if prev == nil {
		return nil
	}
	ctx := c.providers.Inference.ContextAt(prev.Span.Start)
	values := c.providers.Inference.InferLeaf(ctx, prev)
	log.Debugf("trailer completion: %d values for %q", len(values), prev.Literal())
	return c.completeTrailerForValues(values, pos)
}

func (c *Completer) completeTrailerForValues(values []Value, pos parser.Position) []NameEntry {
	userCtx := c.providers.Inference.ContextAt(pos)
	var origin *parser.Node
	if userCtx != nil {
		origin = userCtx.TreeNode()
	}

	var names []NameEntry
	for _, value := range values {
		for _, filter := range value.Filters(origin) {
			names = append(names, filter.Values()...)
		}
		if !value.IsStub() && value.IsInstance() {
			names = append(names, c.completeGetattr(value, pos)...)
		}
	}

	if c.providers.Convert != nil {
		for _, alt := range c.providers.Convert(values) {
			if containsValue(values, alt) {
				continue
			}
			for _, filter := range alt.Filters(origin) {
				names = append(names, filter.Values()...)
			}
		}
	}
	return names
}

func containsValue(values []Value, v Value) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}

func (c *Completer) completeParams(stack *parser.Stack, leaf *parser.Node, pos parser.Position) []NameEntry {
	if c.providers.ParamNames == nil || c.providers.Inference == nil || len(stack.Frames) < 2 {
		return nil
	}
	frame := stack.Frames[len(stack.Frames)-2]
	if frame.Nonterminal == "parameters" {
		if len(stack.Frames) < 3 {
			return nil
		}
		frame = stack.Frames[len(stack.Frames)-3]
	}
	if frame.Nonterminal != "funcdef" || len(frame.Nodes) < 2 {
		return nil
	}
	functionName := frame.Nodes[1].Literal()

	node := parser.SearchAncestor(leaf, parser.KindErrorNode, parser.KindFuncDef)
	if node == nil {
		return nil
	}
	decorators := decoratorsOf(node)

	ctx := c.providers.Inference.ContextAt(pos)
	return c.providers.ParamNames(ctx, functionName, decorators)
}

// decoratorsOf extracts the decorator nodes of a function definition,
// including the error-recovered case where the fragment starts with a
// decorator.
func decoratorsOf(node *parser.Node) []*parser.Node {
	if node.Kind == parser.KindErrorNode {
		if len(node.Children) > 0 && node.Children[0].Kind == parser.KindDecorator {
			return node.Children[:1]
		}
		return nil
	}
	// Well-formed definitions carry their decorators as preceding
	// siblings.
	parent := node.Parent
	if parent == nil {
		return nil
	}
	idx := -1
	for i, child := range parent.Children {
		if child == node {
			idx = i
			break
		}
	}
	var decorators []*parser.Node
	for i := idx - 1; i >= 0; i-- {
		if parent.Children[i].Kind != parser.KindDecorator {
			break
		}
		decorators = append([]*parser.Node{parent.Children[i]}, decorators...)
	}
	return decorators
}

// completeInherited suggests members defined in ancestor classes: methods
// when the user is naming an override after def, any member otherwise.
func (c *Completer) completeInherited(pos parser.Position, functionsOnly bool) []NameEntry {
	if c.providers.Inference == nil {
		return nil
	}
	leaf := c.providers.Grammar.LeafAt(pos, true)
	if leaf == nil {
		return nil
	}
	cls := parser.SearchAncestor(leaf, parser.KindClassDef)
	if cls == nil {
		return nil
	}
	if cls.Start().Column >= leaf.Span.Start.Column {
		return nil
	}
	value := c.providers.Inference.ClassValue(cls)
	if value == nil {
		return nil
	}
	filters := value.InstanceFilters()
	if len(filters) < 2 {
		return nil
	}
	var names []NameEntry
	// The first layer is the class's own dict; only ancestors count.
	for _, filter := range filters[1:] {
		for _, name := range filter.Values() {
			if (name.Kind == NameFunction) == functionsOnly {
				names = append(names, name)
			}
		}
	}
	return names
}

func likeNameAt(lines []string, pos parser.Position) string {
	if pos.Line-1 < 0 || pos.Line-1 >= len(lines) {
		return ""
	}
	line := lines[pos.Line-1]
	col := pos.Column
	if col > len(line) {
		col = len(line)
	}
	start := col
	for start > 0 {
		ch := line[start-1]
		if ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') || ch >= 0x80 {
			start--
			continue
		}
		break
	}
	return line[start:col]
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func containsAny(list []string, symbols ...string) bool {
	for _, sym := range symbols {
		if contains(list, sym) {
			return true
		}
	}
	return false
}

func literalIn(nodes []*parser.Node, lit string) bool {
	for _, n := range nodes {
		if n.Literal() == lit {
			return true
		}
	}
	return false
}
