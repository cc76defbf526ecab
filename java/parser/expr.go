package parser

var expressionRecovery = []TokenKind{TokenComma, TokenRParen, TokenRBrace, TokenSemicolon}

// binaryPrecedence orders the binary operators from loosest to tightest.
var binaryPrecedence = map[TokenKind]int{
	TokenOr:         1,
	TokenAnd:        2,
	TokenBitOr:      3,
	TokenBitXor:     4,
	TokenBitAnd:     5,
	TokenEQ:         6,
	TokenNE:         6,
	TokenLT:         7,
	TokenGT:         7,
	TokenLE:         7,
	TokenGE:         7,
	TokenInstanceof: 7,
	TokenShl:        8,
	TokenShr:        8,
	TokenUShr:       8,
	TokenPlus:       9,
	TokenMinus:      9,
	TokenStar:       10,
	TokenSlash:      10,
	TokenPercent:    10,
}

func (p *Parser) parseExpression() *Node {
	cond := p.parseBinary(0)
	if !p.check(TokenQuestion) {
		return cond
	}
	node := &Node{Kind: KindTernaryExpr, Span: Span{Start: cond.Span.Start}}
	node.AddChild(cond)
	p.advance()
	node.AddChild(p.parseExpression())
	if p.expect(TokenColon) == nil {
		node.AddChild(p.missing("expected ':'", TokenColon))
		return p.finishNode(node)
	}
	node.AddChild(p.parseExpression())
	return p.finishNode(node)
}

func (p *Parser) parseBinary(minPrec int) *Node {
	left := p.parseUnary()
	for {
		op := p.peek()
		prec, ok := binaryPrecedence[op.Kind]
		if !ok || prec <= minPrec {
			return left
		}
		p.advance()
		if op.Kind == TokenInstanceof {
			node := &Node{Kind: KindInstanceofExpr, Span: Span{Start: left.Span.Start}}
			node.AddChild(left)
			node.AddChild(p.parseType())
			left = p.finishNode(node)
			continue
		}
		node := &Node{Kind: KindBinaryExpr, Span: Span{Start: left.Span.Start}}
		node.AddChild(left)
		node.AddChild(p.leaf(KindIdentifier, op))
		node.AddChild(p.parseBinary(prec))
		left = p.finishNode(node)
	}
}

func (p *Parser) parseUnary() *Node {
	switch p.peek().Kind {
	case TokenPlus, TokenMinus, TokenNot, TokenBitNot, TokenIncrement, TokenDecrement:
		node := p.startNode(KindUnaryExpr)
		node.AddChild(p.leaf(KindIdentifier, p.advance()))
		node.AddChild(p.parseUnary())
		return p.finishNode(node)
	case TokenLParen:
		if p.isCast() {
			node := p.startNode(KindCastExpr)
			p.advance()
			node.AddChild(p.parseType())
			p.expect(TokenRParen)
			node.AddChild(p.parseUnary())
			return p.finishNode(node)
		}
	}
	return p.parsePostfix(p.parsePrimary())
}

// isCast looks ahead from '(' for `(Type)` followed by an operand.
func (p *Parser) isCast() bool {
	i := 1
	if p.peekN(i).Kind.IsPrimitive() {
		i++
		for p.peekN(i).Kind == TokenLBracket && p.peekN(i+1).Kind == TokenRBracket {
			i += 2
		}
		return p.peekN(i).Kind == TokenRParen
	}
	if p.peekN(i).Kind != TokenIdent {
		return false
	}
	i++
	for {
		switch p.peekN(i).Kind {
		case TokenDot:
			if p.peekN(i+1).Kind != TokenIdent {
				return false
			}
			i += 2
			continue
		case TokenLT:
			depth := 0
			for ; ; i++ {
				switch p.peekN(i).Kind {
				case TokenLT:
					depth++
				case TokenGT:
					depth--
				case TokenShr:
					depth -= 2
				case TokenUShr:
					depth -= 3
				case TokenEOF, TokenRParen, TokenSemicolon:
					return false
				}
				if depth <= 0 {
					i++
					break
				}
			}
			continue
		case TokenLBracket:
			if p.peekN(i+1).Kind != TokenRBracket {
				return false
			}
			i += 2
			continue
		case TokenRParen:
			switch p.peekN(i + 1).Kind {
			case TokenIdent, TokenIntLiteral, TokenFloatLiteral, TokenCharLiteral,
				TokenStringLiteral, TokenTextBlock, TokenTrue, TokenFalse, TokenNull,
				TokenLParen, TokenNot, TokenBitNot, TokenThis, TokenSuper, TokenNew:
				return true
			}
		}
		return false
	}
}

func (p *Parser) parsePrimary() *Node {
	tok := p.peek()
	switch tok.Kind {
	case TokenIntLiteral, TokenFloatLiteral, TokenCharLiteral, TokenStringLiteral,
		TokenTextBlock, TokenTrue, TokenFalse, TokenNull:
		return p.leaf(KindLiteral, p.advance())
	case TokenIdent:
		return p.leaf(KindIdentifier, p.advance())
	case TokenThis:
		return p.leaf(KindThis, p.advance())
	case TokenSuper:
		return p.leaf(KindSuper, p.advance())
	case TokenAt:
		return p.parseAnnotation()
	case TokenLParen:
		node := p.startNode(KindParenExpr)
		p.advance()
		node.AddChild(p.parseExpression())
		p.closing(TokenRParen, node)
		return p.finishNode(node)
	case TokenNew:
		return p.parseNew()
	case TokenVoid, TokenBoolean, TokenByte, TokenChar, TokenShort,
		TokenInt, TokenLong, TokenFloat, TokenDouble:
		typ := p.startNode(KindType)
		typ.AddChild(p.leaf(KindIdentifier, p.advance()))
		return p.parseClassLiteralSuffix(p.finishNode(typ))
	}
	return p.errorNode("expected expression", expressionRecovery)
}

// parseClassLiteralSuffix parses the `[]... .class` tail after a type
// name in expression position.
func (p *Parser) parseClassLiteralSuffix(base *Node) *Node {
	for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
		wrapper := &Node{Kind: KindArrayType, Span: Span{Start: base.Span.Start}}
		wrapper.AddChild(base)
		p.advance()
		p.advance()
		base = p.finishNode(wrapper)
	}
	if p.check(TokenDot) && p.peekN(1).Kind == TokenClass {
		node := &Node{Kind: KindClassLiteral, Span: Span{Start: base.Span.Start}}
		node.AddChild(base)
		p.advance()
		p.advance()
		return p.finishNode(node)
	}
	return p.errorNode("expected '.class'", expressionRecovery, TokenClass)
}

func (p *Parser) parseNew() *Node {
	node := p.startNode(KindNewExpr)
	p.advance()
	node.AddChild(p.parseType())
	if p.check(TokenLBracket) {
		for p.check(TokenLBracket) {
			p.skipBalanced(TokenLBracket, TokenRBracket)
		}
	}
	if p.check(TokenLParen) {
		args := p.skipBalanced(TokenLParen, TokenRParen)
		args.Kind = KindArguments
		node.AddChild(args)
	}
	if p.check(TokenLBrace) {
		node.AddChild(p.skipBalanced(TokenLBrace, TokenRBrace))
	}
	return p.finishNode(node)
}

func (p *Parser) parsePostfix(expr *Node) *Node {
	for {
		switch p.peek().Kind {
		case TokenDot:
			next := p.peekN(1)
			switch next.Kind {
			case TokenIdent, TokenThis:
				p.advance()
				node := &Node{Kind: KindFieldAccess, Span: Span{Start: expr.Span.Start}}
				node.AddChild(expr)
				kind := KindIdentifier
				if next.Kind == TokenThis {
					kind = KindThis
				}
				node.AddChild(p.leaf(kind, p.advance()))
				expr = p.finishNode(node)
			case TokenClass:
				expr = p.parseClassLiteralSuffix(expr)
			default:
				return expr
			}
		case TokenLBracket:
			if p.peekN(1).Kind == TokenRBracket {
				expr = p.parseClassLiteralSuffix(expr)
				continue
			}
			node := &Node{Kind: KindArrayAccess, Span: Span{Start: expr.Span.Start}}
			node.AddChild(expr)
			p.advance()
			node.AddChild(p.parseExpression())
			p.closing(TokenRBracket, node)
			expr = p.finishNode(node)
		case TokenLParen:
			if expr.Kind != KindIdentifier && expr.Kind != KindFieldAccess {
				return expr
			}
			node := &Node{Kind: KindCallExpr, Span: Span{Start: expr.Span.Start}}
			node.AddChild(expr)
			node.AddChild(p.parseArguments())
			expr = p.finishNode(node)
		case TokenIncrement, TokenDecrement:
			node := &Node{Kind: KindPostfixExpr, Span: Span{Start: expr.Span.Start}}
			node.AddChild(expr)
			node.AddChild(p.leaf(KindIdentifier, p.advance()))
			expr = p.finishNode(node)
		case TokenColonColon:
			node := &Node{Kind: KindMethodRef, Span: Span{Start: expr.Span.Start}}
			node.AddChild(expr)
			p.advance()
			if p.check(TokenNew) {
				node.AddChild(p.leaf(KindIdentifier, p.advance()))
			} else {
				node.AddChild(p.parseIdentifier())
			}
			expr = p.finishNode(node)
		default:
			return expr
		}
	}
}

func (p *Parser) parseArguments() *Node {
	node := p.startNode(KindArguments)
	p.expect(TokenLParen)
	for !p.check(TokenRParen) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		node.AddChild(p.parseExpression())
		if p.expect(TokenComma) == nil || !progress() {
			break
		}
	}
	p.closing(TokenRParen, node)
	return p.finishNode(node)
}
