package parser

// Module is a parsed source file. The tree is tolerant of partial input:
// a line that does not fit any statement shape becomes an error node instead
// of failing the parse, since completion requests routinely arrive mid-edit.
type Module struct {
	Root   *Node
	lines  []string
	leaves []*Node
}

func (m *Module) Lines() []string {
	return m.lines
}

// Leaves returns the tree's leaves in source order, EOF last.
func (m *Module) Leaves() []*Node {
	return m.leaves
}

// Parse builds the statement tree for the given source lines.
func Parse(lines []string) *Module {
	logical := logicalLines(lines)

	root := &Node{Kind: KindFileInput}
	b := &treeBuilder{blocks: []blockEntry{{indent: -1, node: root}}}
	for _, toks := range logical {
		b.addStatement(toks)
	}

	eofPos := Position{Line: 1, Column: 0}
	if len(lines) > 0 {
		eofPos = Position{Line: len(lines), Column: len(lines[len(lines)-1])}
	}
	eof := &Node{Kind: KindLeaf, Token: &Token{Kind: TokenEOF, Span: Span{eofPos, eofPos}}}
	root.append(eof)

	m := &Module{Root: root, lines: lines}
	m.collectLeaves(root)
	return m
}

// logicalLines lexes the source and groups tokens into logical lines,
// keeping bracketed continuations together. Comments and newlines are
// dropped; the gaps they leave become leaf prefixes.
func logicalLines(lines []string) [][]Token {
	lx := NewLexer(lines)
	var result [][]Token
	var current []Token
	depth := 0
	for {
		tok := lx.Next()
		switch tok.Kind {
		case TokenEOF:
			if len(current) > 0 {
				result = append(result, current)
			}
			return result
		case TokenComment:
			continue
		case TokenNewline:
			if depth == 0 && len(current) > 0 {
				result = append(result, current)
				current = nil
			}
			continue
		case TokenOperator:
			switch tok.Literal {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth > 0 {
					depth--
				}
			}
		}
		current = append(current, tok)
	}
}

type blockEntry struct {
	indent int
	node   *Node
	last   *Node // most recent statement attached at this level
}

type treeBuilder struct {
	blocks []blockEntry
}

func (b *treeBuilder) top() *blockEntry {
	return &b.blocks[len(b.blocks)-1]
}

func (b *treeBuilder) addStatement(toks []Token) {
	indent := toks[0].Span.Start.Column
	for len(b.blocks) > 1 && b.top().indent >= indent {
		b.blocks = b.blocks[:len(b.blocks)-1]
	}

	first := toks[0].Literal
	if isClauseKeyword(first) {
		if flow := b.matchingFlow(first, indent); flow != nil {
			for _, t := range toks {
				flow.append(leafNode(t))
			}
			if opensBlock(toks) {
				b.blocks = append(b.blocks, blockEntry{indent: indent, node: flow})
			}
			return
		}
		// Clause with no matching block above it; keep the leaves around
		// as an error node so ancestor walks can still see the keyword.
		stmt := &Node{Kind: KindErrorNode}
		for _, t := range toks {
			stmt.append(leafNode(t))
		}
		b.top().node.append(stmt)
		b.top().last = stmt
		return
	}

	stmt := buildStatement(toks)
	b.top().node.append(stmt)
	b.top().last = stmt
	if opensBlock(toks) {
		b.blocks = append(b.blocks, blockEntry{indent: indent, node: stmt})
	}
}

func isClauseKeyword(s string) bool {
	switch s {
	case "elif", "else", "except", "finally":
		return true
	}
	return false
}

// matchingFlow returns the open flow statement a clause keyword continues,
// which must start at the clause's own indentation.
func (b *treeBuilder) matchingFlow(clause string, indent int) *Node {
	last := b.top().last
	if last == nil || last.Start().Column != indent {
		return nil
	}
	switch clause {
	case "elif":
		if last.Kind == KindIfStmt {
			return last
		}
	case "except", "finally":
		if last.Kind == KindTryStmt {
			return last
		}
	case "else":
		switch last.Kind {
		case KindIfStmt, KindForStmt, KindWhileStmt, KindTryStmt:
			return last
		}
	}
	return nil
}

func opensBlock(toks []Token) bool {
	last := toks[len(toks)-1]
	return last.Kind == TokenOperator && last.Literal == ":"
}

func leafNode(t Token) *Node {
	tok := t
	return &Node{Kind: KindLeaf, Token: &tok, Span: t.Span}
}

func buildStatement(toks []Token) *Node {
	switch toks[0].Literal {
	case "def", "async":
		return buildFuncDef(toks)
	case "class":
		return buildClassDef(toks)
	case "@":
		return rawStatement(KindDecorator, toks)
	case "import":
		return buildImportName(toks)
	case "from":
		return buildImportFrom(toks)
	case "if":
		return rawStatement(KindIfStmt, toks)
	case "for":
		return rawStatement(KindForStmt, toks)
	case "while":
		return rawStatement(KindWhileStmt, toks)
	case "try":
		return rawStatement(KindTryStmt, toks)
	case "with":
		return rawStatement(KindWithStmt, toks)
	case "return":
		return buildReturn(toks)
	case "pass", "break", "continue", "raise", "assert", "del",
		"global", "nonlocal", "yield":
		return rawStatement(KindSimpleStmt, toks)
	default:
		return buildExprStmt(toks)
	}
}

func rawStatement(kind NodeKind, toks []Token) *Node {
	stmt := &Node{Kind: kind}
	for _, t := range toks {
		stmt.append(leafNode(t))
	}
	return stmt
}

func buildFuncDef(toks []Token) *Node {
	if toks[0].Literal == "async" {
		if len(toks) < 2 || toks[1].Literal != "def" {
			return rawStatement(KindExprStmt, toks)
		}
	}
	stmt := &Node{Kind: KindFuncDef}
	i := 0
	for i < len(toks) && toks[i].Literal != "(" {
		stmt.append(leafNode(toks[i]))
		i++
	}
	if i < len(toks) {
		params := &Node{Kind: KindParameters}
		depth := 0
		for ; i < len(toks); i++ {
			params.append(leafNode(toks[i]))
			switch toks[i].Literal {
			case "(":
				depth++
			case ")":
				depth--
			}
			if depth == 0 {
				i++
				break
			}
		}
		stmt.append(params)
	}
	for ; i < len(toks); i++ {
		stmt.append(leafNode(toks[i]))
	}
	return stmt
}

func buildClassDef(toks []Token) *Node {
	stmt := &Node{Kind: KindClassDef}
	i := 0
	for i < len(toks) && toks[i].Literal != "(" {
		stmt.append(leafNode(toks[i]))
		i++
	}
	if i < len(toks) {
		stmt.append(leafNode(toks[i])) // '('
		i++
		bases := &Node{Kind: KindArgList}
		depth := 1
		for ; i < len(toks); i++ {
			if toks[i].Literal == "(" {
				depth++
			} else if toks[i].Literal == ")" {
				depth--
				if depth == 0 {
					break
				}
			}
			bases.append(leafNode(toks[i]))
		}
		if len(bases.Children) > 0 {
			stmt.append(bases)
		}
		for ; i < len(toks); i++ {
			stmt.append(leafNode(toks[i]))
		}
	}
	return stmt
}

func buildImportName(toks []Token) *Node {
	stmt := &Node{Kind: KindImportName}
	stmt.append(leafNode(toks[0]))
	appendDottedNames(stmt, toks[1:])
	return stmt
}

func buildImportFrom(toks []Token) *Node {
	stmt := &Node{Kind: KindImportFrom}
	stmt.append(leafNode(toks[0]))
	rest := toks[1:]
	// Relative-import dots come before the module path.
	i := 0
	for i < len(rest) && (rest[i].Literal == "." || rest[i].Literal == "...") {
		stmt.append(leafNode(rest[i]))
		i++
	}
	j := i
	for j < len(rest) && rest[j].Literal != "import" {
		j++
	}
	appendDottedNames(stmt, rest[i:j])
	for ; j < len(rest); j++ {
		stmt.append(leafNode(rest[j]))
	}
	return stmt
}

// appendDottedNames groups name/dot runs into dotted_name nodes. A plain
// single name stays a bare leaf, the way parso keeps it.
func appendDottedNames(stmt *Node, toks []Token) {
	var run []Token
	flush := func() {
		if len(run) == 0 {
			return
		}
		if len(run) == 1 {
			stmt.append(leafNode(run[0]))
		} else {
			dn := &Node{Kind: KindDottedName}
			for _, t := range run {
				dn.append(leafNode(t))
			}
			stmt.append(dn)
		}
		run = nil
	}
	for _, t := range toks {
		if t.Kind == TokenName || t.Literal == "." {
			run = append(run, t)
			continue
		}
		flush()
		stmt.append(leafNode(t))
	}
	flush()
}

func buildReturn(toks []Token) *Node {
	stmt := &Node{Kind: KindReturnStmt}
	stmt.append(leafNode(toks[0]))
	if len(toks) > 1 {
		stmt.append(parseExpression(toks[1:]))
	}
	return stmt
}

func buildExprStmt(toks []Token) *Node {
	// Split on the first top-level '=' to separate targets from value.
	depth := 0
	eq := -1
	for i, t := range toks {
		switch t.Literal {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case "=":
			if depth == 0 && eq < 0 {
				eq = i
			}
		}
	}
	stmt := &Node{Kind: KindExprStmt}
	if eq < 0 {
		stmt.append(parseExpression(toks))
		return stmt
	}
	stmt.append(parseExpression(toks[:eq]))
	stmt.append(leafNode(toks[eq]))
	if eq+1 < len(toks) {
		stmt.append(parseExpression(toks[eq+1:]))
	}
	return stmt
}

func (m *Module) collectLeaves(n *Node) {
	if n.IsLeaf() {
		m.leaves = append(m.leaves, n)
		return
	}
	for _, c := range n.Children {
		m.collectLeaves(c)
	}
}

// LeafAt returns the leaf at pos. With includePrefix, positions in the
// whitespace before a leaf belong to that leaf; otherwise only positions
// inside the leaf's own span match. Falls back to the last leaf (EOF) when
// pos is past the end.
func (m *Module) LeafAt(pos Position, includePrefix bool) *Node {
	prevEnd := Position{Line: 1, Column: 0}
	for _, lf := range m.leaves {
		start := lf.Span.Start
		if includePrefix {
			start = prevEnd
		}
		if start.BeforeOrEqual(pos) && pos.BeforeOrEqual(lf.Span.End) {
			return lf
		}
		prevEnd = lf.Span.End
	}
	if len(m.leaves) == 0 {
		return nil
	}
	return m.leaves[len(m.leaves)-1]
}
