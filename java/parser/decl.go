package parser

var typeDeclRecovery = []TokenKind{
	TokenAt, TokenPublic, TokenPrivate, TokenProtected, TokenAbstract,
	TokenStatic, TokenFinal, TokenClass, TokenInterface, TokenEnum,
}

func (p *Parser) parseCompilationUnit() *Node {
	node := p.startNode(KindCompilationUnit)

	modifiers := p.parseModifiers()
	if p.check(TokenPackage) {
		node.AddChild(p.parsePackageDecl(modifiers))
		modifiers = nil
	}

	for p.check(TokenImport) || p.check(TokenSemicolon) {
		if p.expect(TokenSemicolon) == nil {
			node.AddChild(p.parseImportDecl())
		}
	}
	if modifiers != nil && len(modifiers.Children) == 0 {
		modifiers = nil
	}

	for !p.check(TokenEOF) {
		if p.expect(TokenSemicolon) != nil {
			continue
		}
		progress := p.mustProgress()
		if modifiers == nil {
			modifiers = p.parseModifiers()
		}
		if p.checkWord("module") || (p.checkWord("open") && p.peekN(1).Literal == "module") {
			node.AddChild(p.parseModuleDecl(modifiers))
		} else {
			node.AddChild(p.parseTypeDecl(modifiers))
		}
		modifiers = nil
		progress()
	}

	return p.finishNode(node)
}

func (p *Parser) parsePackageDecl(modifiers *Node) *Node {
	node := p.startNodeAt(KindPackageDecl, modifiers)
	p.expect(TokenPackage)
	node.AddChild(p.parseQualifiedName())
	p.closing(TokenSemicolon, node)
	return p.finishNode(node)
}

func (p *Parser) parseImportDecl() *Node {
	node := p.startNode(KindImportDecl)
	p.expect(TokenImport)

	if p.checkWord("module") && p.peekN(1).Kind == TokenIdent {
		node.Kind = KindModuleImportDecl
		p.advance()
		node.AddChild(p.parseQualifiedName())
		p.closing(TokenSemicolon, node)
		return p.finishNode(node)
	}

	if p.check(TokenStatic) {
		node.AddChild(p.leaf(KindIdentifier, p.advance()))
	}
	node.AddChild(p.parseQualifiedName())
	if p.check(TokenDot) && p.peekN(1).Kind == TokenStar {
		p.advance()
		node.AddChild(p.leaf(KindIdentifier, p.advance()))
	}
	p.closing(TokenSemicolon, node)
	return p.finishNode(node)
}

func (p *Parser) parseModuleDecl(modifiers *Node) *Node {
	node := p.startNodeAt(KindModuleDecl, modifiers)
	if p.checkWord("open") {
		node.AddChild(p.leaf(KindIdentifier, p.advance()))
	}
	p.advance()
	node.AddChild(p.parseQualifiedName())
	if p.check(TokenLBrace) {
		node.AddChild(p.skipBalanced(TokenLBrace, TokenRBrace))
	} else {
		node.AddChild(p.missing("expected '{'", TokenLBrace))
	}
	return p.finishNode(node)
}

func (p *Parser) parseQualifiedName() *Node {
	node := p.startNode(KindQualifiedName)
	if !p.check(TokenIdent) {
		return p.missing("expected identifier", TokenIdent)
	}
	node.AddChild(p.leaf(KindIdentifier, p.advance()))
	for p.check(TokenDot) && p.peekN(1).Kind == TokenIdent {
		p.advance()
		node.AddChild(p.leaf(KindIdentifier, p.advance()))
	}
	return p.finishNode(node)
}

func (p *Parser) parseIdentifier() *Node {
	if !p.check(TokenIdent) {
		return p.missing("expected identifier", TokenIdent)
	}
	return p.leaf(KindIdentifier, p.advance())
}

func (p *Parser) isRecordDecl() bool {
	next := p.peekN(2).Kind
	return p.checkWord("record") && p.peekN(1).Kind == TokenIdent && (next == TokenLParen || next == TokenLT)
}

// tryTypeDecl returns nil when the tokens under the cursor do not start
// a type declaration.
func (p *Parser) tryTypeDecl(modifiers *Node) *Node {
	switch {
	case p.check(TokenClass):
		return p.parseClassDecl(modifiers)
	case p.check(TokenInterface):
		return p.parseInterfaceDecl(modifiers)
	case p.check(TokenEnum):
		return p.parseEnumDecl(modifiers)
	case p.check(TokenAt) && p.peekN(1).Kind == TokenInterface:
		return p.parseAnnotationDecl(modifiers)
	case p.isRecordDecl():
		return p.parseRecordDecl(modifiers)
	}
	return nil
}

func (p *Parser) parseTypeDecl(modifiers *Node) *Node {
	if decl := p.tryTypeDecl(modifiers); decl != nil {
		return decl
	}
	return p.errorNode("expected class, interface, enum, record or @interface", typeDeclRecovery)
}

var modifierKeywords = map[TokenKind]bool{
	TokenPublic: true, TokenProtected: true, TokenPrivate: true,
	TokenAbstract: true, TokenStatic: true, TokenFinal: true,
	TokenStrictfp: true, TokenNative: true, TokenSynchronized: true,
	TokenTransient: true, TokenVolatile: true, TokenDefault: true,
}

func (p *Parser) parseModifiers() *Node {
	node := p.startNode(KindModifiers)
	for {
		tok := p.peek()
		switch {
		case tok.Kind == TokenAt && p.peekN(1).Kind != TokenInterface:
			node.AddChild(p.parseAnnotation())
		case modifierKeywords[tok.Kind]:
			node.AddChild(p.leaf(KindIdentifier, p.advance()))
		case p.checkWord("sealed") && p.startsDecl(1):
			node.AddChild(p.leaf(KindIdentifier, p.advance()))
		case p.isNonSealed():
			first := p.advance()
			p.advance()
			last := p.advance()
			node.AddChild(&Node{Kind: KindIdentifier, Span: Span{Start: first.Span.Start, End: last.Span.End},
				Token: &Token{Kind: TokenIdent, Span: Span{Start: first.Span.Start, End: last.Span.End}, Literal: "non-sealed"}})
		default:
			return p.finishNode(node)
		}
	}
}

// startsDecl reports whether the token n positions ahead can follow a
// class-level modifier.
func (p *Parser) startsDecl(n int) bool {
	tok := p.peekN(n)
	if modifierKeywords[tok.Kind] {
		return true
	}
	switch tok.Kind {
	case TokenClass, TokenInterface, TokenAt:
		return true
	}
	return tok.Kind == TokenIdent && (tok.Literal == "non" || tok.Literal == "sealed")
}

func (p *Parser) isNonSealed() bool {
	first, dash, last := p.peekN(0), p.peekN(1), p.peekN(2)
	return first.Kind == TokenIdent && first.Literal == "non" &&
		dash.Kind == TokenMinus && dash.Span.Start.Offset == first.Span.End.Offset &&
		last.Kind == TokenIdent && last.Literal == "sealed" && last.Span.Start.Offset == dash.Span.End.Offset
}

func (p *Parser) parseAnnotation() *Node {
	node := p.startNode(KindAnnotation)
	p.expect(TokenAt)
	node.AddChild(p.parseQualifiedName())

	if !p.check(TokenLParen) {
		return p.finishNode(node)
	}
	p.advance()
	switch {
	case p.check(TokenRParen):
	case p.check(TokenIdent) && p.peekN(1).Kind == TokenAssign:
		for {
			progress := p.mustProgress()
			node.AddChild(p.parseAnnotationElement())
			if p.expect(TokenComma) == nil || !progress() {
				break
			}
		}
	default:
		node.AddChild(p.parseElementValue())
	}
	if p.expect(TokenRParen) == nil {
		node.AddChild(p.errorNode("expected ')'", []TokenKind{TokenRParen, TokenSemicolon, TokenLBrace, TokenRBrace}, TokenRParen))
		p.expect(TokenRParen)
	}
	return p.finishNode(node)
}

func (p *Parser) parseAnnotationElement() *Node {
	node := p.startNode(KindAnnotationElement)
	node.AddChild(p.parseIdentifier())
	if p.expect(TokenAssign) == nil {
		node.AddChild(p.missing("expected '='", TokenAssign))
		return p.finishNode(node)
	}
	node.AddChild(p.parseElementValue())
	return p.finishNode(node)
}

// parseElementValue parses what may appear on the right of `name =` in
// an annotation or after `default` in an annotation type element.
func (p *Parser) parseElementValue() *Node {
	switch {
	case p.check(TokenAt):
		return p.parseAnnotation()
	case p.check(TokenLBrace):
		node := p.startNode(KindArrayInit)
		p.advance()
		for !p.check(TokenRBrace) && !p.check(TokenEOF) {
			progress := p.mustProgress()
			node.AddChild(p.parseElementValue())
			if p.expect(TokenComma) == nil || !progress() {
				break
			}
		}
		p.closing(TokenRBrace, node)
		return p.finishNode(node)
	}
	return p.parseExpression()
}

func (p *Parser) parseClassDecl(modifiers *Node) *Node {
	node := p.startNodeAt(KindClassDecl, modifiers)
	p.expect(TokenClass)
	node.AddChild(p.parseIdentifier())
	if p.check(TokenLT) {
		node.AddChild(p.parseTypeParameters())
	}
	if p.check(TokenExtends) {
		node.AddChild(p.parseTypeClause(KindExtendsClause))
	}
	if p.check(TokenImplements) {
		node.AddChild(p.parseTypeClause(KindImplementsClause))
	}
	if p.checkWord("permits") {
		node.AddChild(p.parseTypeClause(KindPermitsClause))
	}
	node.AddChild(p.parseClassBody())
	return p.finishNode(node)
}

func (p *Parser) parseInterfaceDecl(modifiers *Node) *Node {
	node := p.startNodeAt(KindInterfaceDecl, modifiers)
	p.expect(TokenInterface)
	node.AddChild(p.parseIdentifier())
	if p.check(TokenLT) {
		node.AddChild(p.parseTypeParameters())
	}
	if p.check(TokenExtends) {
		node.AddChild(p.parseTypeClause(KindExtendsClause))
	}
	if p.checkWord("permits") {
		node.AddChild(p.parseTypeClause(KindPermitsClause))
	}
	node.AddChild(p.parseClassBody())
	return p.finishNode(node)
}

func (p *Parser) parseAnnotationDecl(modifiers *Node) *Node {
	node := p.startNodeAt(KindAnnotationDecl, modifiers)
	p.expect(TokenAt)
	p.expect(TokenInterface)
	node.AddChild(p.parseIdentifier())
	node.AddChild(p.parseClassBody())
	return p.finishNode(node)
}

func (p *Parser) parseRecordDecl(modifiers *Node) *Node {
	node := p.startNodeAt(KindRecordDecl, modifiers)
	p.advance()
	node.AddChild(p.parseIdentifier())
	if p.check(TokenLT) {
		node.AddChild(p.parseTypeParameters())
	}
	node.AddChild(p.parseParameters())
	if p.check(TokenImplements) {
		node.AddChild(p.parseTypeClause(KindImplementsClause))
	}
	node.AddChild(p.parseClassBody())
	return p.finishNode(node)
}

func (p *Parser) parseEnumDecl(modifiers *Node) *Node {
	node := p.startNodeAt(KindEnumDecl, modifiers)
	p.expect(TokenEnum)
	node.AddChild(p.parseIdentifier())
	if p.check(TokenImplements) {
		node.AddChild(p.parseTypeClause(KindImplementsClause))
	}

	body := p.startNode(KindBlock)
	if p.expect(TokenLBrace) == nil {
		node.AddChild(p.missing("expected '{'", TokenLBrace))
		return p.finishNode(node)
	}
	for !p.check(TokenSemicolon) && !p.check(TokenRBrace) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		body.AddChild(p.parseEnumConstant())
		if p.expect(TokenComma) == nil || !progress() {
			break
		}
	}
	if p.expect(TokenSemicolon) != nil {
		p.parseMembers(body)
	}
	p.closing(TokenRBrace, body)
	node.AddChild(p.finishNode(body))
	return p.finishNode(node)
}

func (p *Parser) parseEnumConstant() *Node {
	modifiers := p.parseModifiers()
	node := p.startNodeAt(KindEnumConstant, modifiers)
	node.AddChild(p.parseIdentifier())
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

func (p *Parser) parseTypeClause(kind NodeKind) *Node {
	node := p.startNode(kind)
	p.advance()
	for {
		progress := p.mustProgress()
		node.AddChild(p.parseType())
		if p.expect(TokenComma) == nil || !progress() {
			break
		}
	}
	return p.finishNode(node)
}

func (p *Parser) parseTypeParameters() *Node {
	node := p.startNode(KindTypeParameters)
	p.expect(TokenLT)
	for !p.check(TokenEOF) {
		progress := p.mustProgress()
		param := p.startNode(KindTypeParameter)
		for p.check(TokenAt) {
			param.AddChild(p.parseAnnotation())
		}
		param.AddChild(p.parseIdentifier())
		if p.expect(TokenExtends) != nil {
			for {
				param.AddChild(p.parseType())
				if p.expect(TokenBitAnd) == nil {
					break
				}
			}
		}
		node.AddChild(p.finishNode(param))
		if p.expect(TokenComma) == nil || !progress() {
			break
		}
	}
	if !p.expectGT() {
		node.AddChild(p.missing("expected '>'", TokenGT))
	}
	return p.finishNode(node)
}

func (p *Parser) parseClassBody() *Node {
	node := p.startNode(KindBlock)
	if p.expect(TokenLBrace) == nil {
		return p.missing("expected '{'", TokenLBrace)
	}
	p.parseMembers(node)
	p.closing(TokenRBrace, node)
	return p.finishNode(node)
}

func (p *Parser) parseMembers(body *Node) {
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		body.AddChild(p.parseMember())
		progress()
	}
}

// parseMember parses one class body declaration. Initializer blocks and
// empty declarations produce no node.
func (p *Parser) parseMember() *Node {
	switch {
	case p.expect(TokenSemicolon) != nil:
		return nil
	case p.check(TokenLBrace):
		p.skipBalanced(TokenLBrace, TokenRBrace)
		return nil
	case p.check(TokenStatic) && p.peekN(1).Kind == TokenLBrace:
		p.advance()
		p.skipBalanced(TokenLBrace, TokenRBrace)
		return nil
	}

	modifiers := p.parseModifiers()
	if decl := p.tryTypeDecl(modifiers); decl != nil {
		return decl
	}

	var typeParams *Node
	if p.check(TokenLT) {
		typeParams = p.parseTypeParameters()
	}
	if p.check(TokenIdent) && p.peekN(1).Kind == TokenLParen {
		return p.parseConstructor(modifiers, typeParams)
	}
	if p.check(TokenIdent) && p.peekN(1).Kind == TokenLBrace && typeParams == nil {
		node := p.startNodeAt(KindConstructorDecl, modifiers)
		node.AddChild(p.parseIdentifier())
		node.AddChild(p.skipBalanced(TokenLBrace, TokenRBrace))
		return p.finishNode(node)
	}

	typ := p.parseType()
	if typ.IsError() {
		p.recoverMember()
		return typ
	}
	if !p.check(TokenIdent) {
		node := p.missing("expected identifier", TokenIdent)
		p.recoverMember()
		return node
	}
	if p.peekN(1).Kind == TokenLParen {
		return p.parseMethod(modifiers, typeParams, typ)
	}
	return p.parseField(modifiers, typ)
}

// recoverMember skips to the end of a malformed member.
func (p *Parser) recoverMember() {
	for !p.check(TokenEOF) && !p.check(TokenRBrace) {
		if p.expect(TokenSemicolon) != nil {
			return
		}
		if p.check(TokenLBrace) {
			p.skipBalanced(TokenLBrace, TokenRBrace)
			return
		}
		p.advance()
	}
}

func (p *Parser) parseConstructor(modifiers, typeParams *Node) *Node {
	node := p.startNodeAt(KindConstructorDecl, modifiers)
	node.AddChild(typeParams)
	node.AddChild(p.parseIdentifier())
	node.AddChild(p.parseParameters())
	if p.check(TokenThrows) {
		node.AddChild(p.parseTypeClause(KindThrowsList))
	}
	p.parseMethodTail(node)
	return p.finishNode(node)
}

func (p *Parser) parseMethod(modifiers, typeParams, returnType *Node) *Node {
	node := p.startNodeAt(KindMethodDecl, modifiers)
	node.AddChild(typeParams)
	name := p.parseIdentifier()
	params := p.parseParameters()
	for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
		wrapper := &Node{Kind: KindArrayType, Span: returnType.Span}
		wrapper.AddChild(returnType)
		p.advance()
		p.advance()
		returnType = p.finishNode(wrapper)
	}
	node.AddChild(returnType)
	node.AddChild(name)
	node.AddChild(params)
	if p.check(TokenThrows) {
		node.AddChild(p.parseTypeClause(KindThrowsList))
	}
	if p.check(TokenDefault) {
		def := p.startNode(KindDefaultValue)
		p.advance()
		def.AddChild(p.parseElementValue())
		node.AddChild(p.finishNode(def))
	}
	p.parseMethodTail(node)
	return p.finishNode(node)
}

func (p *Parser) parseMethodTail(node *Node) {
	switch {
	case p.check(TokenLBrace):
		node.AddChild(p.skipBalanced(TokenLBrace, TokenRBrace))
	case p.expect(TokenSemicolon) != nil:
	default:
		node.AddChild(p.missing("expected '{' or ';'", TokenLBrace, TokenSemicolon))
		p.recoverMember()
	}
}

func (p *Parser) parseField(modifiers, typ *Node) *Node {
	node := p.startNodeAt(KindFieldDecl, modifiers)
	node.AddChild(typ)
	for {
		decl := p.startNode(KindVariableDeclarator)
		decl.AddChild(p.parseIdentifier())
		p.parseDims(decl)
		if p.expect(TokenAssign) != nil {
			p.skipInitializer()
		}
		node.AddChild(p.finishNode(decl))
		if p.expect(TokenComma) == nil || !p.check(TokenIdent) {
			break
		}
	}
	p.closing(TokenSemicolon, node)
	return p.finishNode(node)
}

func (p *Parser) parseDims(parent *Node) {
	for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
		dims := p.startNode(KindDims)
		p.advance()
		p.advance()
		parent.AddChild(p.finishNode(dims))
	}
}

// skipInitializer consumes a field initializer up to the ';' or the ','
// that separates it from the next declarator.
func (p *Parser) skipInitializer() {
	depth := 0
	for !p.check(TokenEOF) {
		switch p.peek().Kind {
		case TokenLParen, TokenLBrace, TokenLBracket:
			depth++
		case TokenRParen, TokenRBracket:
			if depth > 0 {
				depth--
			}
		case TokenRBrace:
			if depth == 0 {
				return
			}
			depth--
		case TokenSemicolon:
			if depth == 0 {
				return
			}
		case TokenComma:
			if depth == 0 && p.declaratorFollows() {
				return
			}
		}
		p.advance()
	}
	p.incomplete = true
}

func (p *Parser) declaratorFollows() bool {
	if p.peekN(1).Kind != TokenIdent {
		return false
	}
	switch p.peekN(2).Kind {
	case TokenAssign, TokenComma, TokenSemicolon, TokenLBracket:
		return true
	}
	return false
}

func (p *Parser) parseParameters() *Node {
	node := p.startNode(KindParameters)
	if p.expect(TokenLParen) == nil {
		return p.missing("expected '('", TokenLParen)
	}
	for !p.check(TokenRParen) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		node.AddChild(p.parseParameter())
		if p.expect(TokenComma) == nil || !progress() {
			break
		}
	}
	if p.expect(TokenRParen) == nil {
		node.AddChild(p.errorNode("expected ')'", []TokenKind{TokenRParen, TokenLBrace, TokenSemicolon}, TokenRParen))
		p.expect(TokenRParen)
	}
	return p.finishNode(node)
}

func (p *Parser) parseParameter() *Node {
	modifiers := p.parseModifiers()
	node := p.startNodeAt(KindParameter, modifiers)
	typ := p.parseType()
	for p.check(TokenAt) {
		typ.AddChild(p.parseAnnotation())
	}
	node.AddChild(typ)
	if p.check(TokenEllipsis) {
		node.AddChild(p.leaf(KindIdentifier, p.advance()))
	}

	switch {
	case p.check(TokenThis):
		node.Kind = KindReceiverParameter
		node.AddChild(p.leaf(KindThis, p.advance()))
	case p.check(TokenIdent) && p.peekN(1).Kind == TokenDot && p.peekN(2).Kind == TokenThis:
		node.Kind = KindReceiverParameter
		p.advance()
		p.advance()
		node.AddChild(p.leaf(KindThis, p.advance()))
	default:
		node.AddChild(p.parseIdentifier())
		p.parseDims(node)
	}
	return p.finishNode(node)
}
