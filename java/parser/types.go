package parser

var typeRecovery = []TokenKind{TokenIdent, TokenSemicolon, TokenRParen, TokenComma, TokenRBrace}

// parseType parses a type use: optional type annotations, a primitive or
// a possibly parameterized (and possibly nested) class name, then array
// dimensions, each wrapping the type in an ArrayType node.
func (p *Parser) parseType() *Node {
	node := p.startNode(KindType)
	for p.check(TokenAt) {
		node.AddChild(p.parseAnnotation())
	}

	switch {
	case p.peek().Kind.IsPrimitive() || p.check(TokenVoid):
		node.AddChild(p.leaf(KindIdentifier, p.advance()))
	case p.check(TokenIdent):
		node.AddChild(p.parseQualifiedName())
		if p.check(TokenLT) {
			node.AddChild(p.parseTypeArguments())
		}
		for p.check(TokenDot) && (p.peekN(1).Kind == TokenIdent || p.peekN(1).Kind == TokenAt) {
			p.advance()
			for p.check(TokenAt) {
				node.AddChild(p.parseAnnotation())
			}
			node.AddChild(p.parseQualifiedName())
			if p.check(TokenLT) {
				node.AddChild(p.parseTypeArguments())
			}
		}
	default:
		return p.errorNode("expected type", typeRecovery)
	}
	node = p.finishNode(node)

	for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
		wrapper := &Node{Kind: KindArrayType, Span: Span{Start: node.Span.Start}}
		wrapper.AddChild(node)
		p.advance()
		p.advance()
		node = p.finishNode(wrapper)
	}
	return node
}

func (p *Parser) parseTypeArguments() *Node {
	node := p.startNode(KindTypeArguments)
	p.expect(TokenLT)
	for !p.atGT() && !p.check(TokenEOF) {
		progress := p.mustProgress()
		if p.check(TokenQuestion) || (p.check(TokenAt) && p.wildcardAfterAnnotations()) {
			node.AddChild(p.parseWildcard())
		} else {
			node.AddChild(p.parseType())
		}
		if p.expect(TokenComma) == nil || !progress() {
			break
		}
	}
	if !p.expectGT() {
		node.AddChild(p.missing("expected '>'", TokenGT))
	}
	return p.finishNode(node)
}

func (p *Parser) wildcardAfterAnnotations() bool {
	save := p.pos
	defer func() { p.pos = save }()
	for p.check(TokenAt) {
		p.parseAnnotation()
	}
	return p.check(TokenQuestion)
}

func (p *Parser) parseWildcard() *Node {
	node := p.startNode(KindWildcard)
	for p.check(TokenAt) {
		node.AddChild(p.parseAnnotation())
	}
	p.expect(TokenQuestion)
	if p.check(TokenExtends) || p.check(TokenSuper) {
		node.AddChild(p.leaf(KindIdentifier, p.advance()))
		node.AddChild(p.parseType())
	}
	return p.finishNode(node)
}

func (p *Parser) atGT() bool {
	lit := p.peek().Literal
	return len(lit) > 0 && lit[0] == '>'
}

// expectGT consumes one '>' closing a type argument list, splitting '>>',
// '>>>', '>=' and friends so the remainder stays in the token stream.
func (p *Parser) expectGT() bool {
	if !p.atGT() {
		return false
	}
	tok := p.tokens[p.pos]
	if tok.Kind == TokenGT {
		p.advance()
		return true
	}
	rest := tok.Literal[1:]
	lexed := NewLexer([]byte(rest), tok.Span.Start.File).NextToken()
	start := tok.Span.Start
	start.Offset++
	start.Column++
	p.tokens[p.pos] = Token{
		Kind:    lexed.Kind,
		Literal: rest,
		Span:    Span{Start: start, End: tok.Span.End},
	}
	return true
}
