package parser

// parseExpression builds a small expression tree from a token slice. It
// resolves exactly the shapes the completion engine inspects: atoms with
// trailers (attribute access, calls, subscripts) and flat binary chains.
// Anything it cannot place ends up under an error node rather than being
// dropped.
func parseExpression(toks []Token) *Node {
	p := &exprParser{toks: toks}
	node := p.parseTest()
	if node == nil || p.pos < len(p.toks) {
		err := &Node{Kind: KindErrorNode}
		if node != nil {
			err.append(node)
		}
		for ; p.pos < len(p.toks); p.pos++ {
			err.append(leafNode(p.toks[p.pos]))
		}
		return err
	}
	return node
}

type exprParser struct {
	toks []Token
	pos  int
}

func (p *exprParser) peek() *Token {
	if p.pos >= len(p.toks) {
		return nil
	}
	return &p.toks[p.pos]
}

func (p *exprParser) next() Token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

func (p *exprParser) parseTest() *Node {
	first := p.parseUnary()
	if first == nil {
		return nil
	}
	var parts []*Node
	parts = append(parts, first)
	for {
		t := p.peek()
		if t == nil || !isBinaryOp(t) {
			break
		}
		op := leafNode(p.next())
		right := p.parseUnary()
		if right == nil {
			err := &Node{Kind: KindErrorNode}
			for _, part := range parts {
				err.append(part)
			}
			err.append(op)
			return err
		}
		parts = append(parts, op, right)
	}
	if len(parts) == 1 {
		return first
	}
	bin := &Node{Kind: KindBinaryExpr}
	for _, part := range parts {
		bin.append(part)
	}
	return bin
}

func isBinaryOp(t *Token) bool {
	switch t.Literal {
	case "+", "-", "*", "/", "//", "%", "**", "@", "<<", ">>", "&", "|", "^",
		"<", ">", "<=", ">=", "==", "!=", "and", "or", "in", "is",
		"if", "else", ":=":
		return true
	}
	return false
}

func (p *exprParser) parseUnary() *Node {
	t := p.peek()
	if t == nil {
		return nil
	}
	switch t.Literal {
	case "-", "+", "~", "not", "await":
		op := leafNode(p.next())
		operand := p.parseUnary()
		err := &Node{Kind: KindBinaryExpr}
		err.append(op)
		if operand != nil {
			err.append(operand)
		}
		return err
	}
	return p.parseAtomExpr()
}

func (p *exprParser) parseAtomExpr() *Node {
	atom := p.parseAtom()
	if atom == nil {
		return nil
	}
	var trailers []*Node
	for {
		t := p.peek()
		if t == nil {
			break
		}
		switch t.Literal {
		case ".":
			dot := leafNode(p.next())
			tr := &Node{Kind: KindTrailer}
			tr.append(dot)
			if n := p.peek(); n != nil && n.Kind == TokenName {
				tr.append(leafNode(p.next()))
			}
			trailers = append(trailers, tr)
			continue
		case "(", "[":
			trailers = append(trailers, p.parseCallTrailer())
			continue
		}
		break
	}
	if len(trailers) == 0 {
		return atom
	}
	ae := &Node{Kind: KindAtomExpr}
	ae.append(atom)
	for _, tr := range trailers {
		ae.append(tr)
	}
	return ae
}

func (p *exprParser) parseCallTrailer() *Node {
	open := p.next()
	closing := ")"
	if open.Literal == "[" {
		closing = "]"
	}
	tr := &Node{Kind: KindTrailer}
	tr.append(leafNode(open))

	args := &Node{Kind: KindArgList}
	for {
		t := p.peek()
		if t == nil {
			break
		}
		if t.Literal == closing {
			break
		}
		if t.Literal == "," {
			args.append(leafNode(p.next()))
			continue
		}
		arg := p.parseTest()
		if arg == nil {
			args.append(leafNode(p.next()))
			continue
		}
		// Keyword argument: name '=' value stays one child.
		if eq := p.peek(); eq != nil && eq.Literal == "=" {
			kw := &Node{Kind: KindBinaryExpr}
			kw.append(arg)
			kw.append(leafNode(p.next()))
			if val := p.parseTest(); val != nil {
				kw.append(val)
			}
			arg = kw
		}
		args.append(arg)
	}
	if len(args.Children) > 0 {
		tr.append(args)
	}
	if t := p.peek(); t != nil && t.Literal == closing {
		tr.append(leafNode(p.next()))
	}
	return tr
}

func (p *exprParser) parseAtom() *Node {
	t := p.peek()
	if t == nil {
		return nil
	}
	switch t.Kind {
	case TokenName, TokenNumber, TokenString, TokenError:
		return leafNode(p.next())
	case TokenKeyword:
		switch t.Literal {
		case "True", "False", "None", "lambda", "yield":
			if t.Literal == "lambda" {
				return p.parseLambda()
			}
			return leafNode(p.next())
		}
		return nil
	case TokenOperator:
		switch t.Literal {
		case "(", "[", "{":
			return p.parseGroup()
		case "*", "**":
			// Star args keep their marker attached to the expression.
			star := leafNode(p.next())
			inner := p.parseAtomExpr()
			grp := &Node{Kind: KindAtom}
			grp.append(star)
			if inner != nil {
				grp.append(inner)
			}
			return grp
		case "...":
			return leafNode(p.next())
		}
	}
	return nil
}

func (p *exprParser) parseGroup() *Node {
	open := p.next()
	closing := map[string]string{"(": ")", "[": "]", "{": "}"}[open.Literal]
	grp := &Node{Kind: KindAtom}
	grp.append(leafNode(open))
	for {
		t := p.peek()
		if t == nil {
			return grp
		}
		if t.Literal == closing {
			grp.append(leafNode(p.next()))
			return grp
		}
		if t.Literal == "," || t.Literal == ":" {
			grp.append(leafNode(p.next()))
			continue
		}
		inner := p.parseTest()
		if inner == nil {
			grp.append(leafNode(p.next()))
			continue
		}
		grp.append(inner)
	}
}

// parseLambda consumes the rest of the tokens as a lambda. Parameter leaves
// come before the ':', the body expression after it.
func (p *exprParser) parseLambda() *Node {
	lam := &Node{Kind: KindLambda}
	lam.append(leafNode(p.next()))
	params := &Node{Kind: KindParameters}
	for {
		t := p.peek()
		if t == nil {
			if len(params.Children) > 0 {
				lam.append(params)
			}
			return lam
		}
		if t.Literal == ":" {
			if len(params.Children) > 0 {
				lam.append(params)
			}
			lam.append(leafNode(p.next()))
			break
		}
		params.append(leafNode(p.next()))
	}
	if body := p.parseTest(); body != nil {
		lam.append(body)
	}
	return lam
}
