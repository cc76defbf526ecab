package parser

import "io"

type Option func(*Parser)

// WithFile records path in every position produced by the parser.
func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

type parseFunc func(*Parser) *Node

// Parser turns Java source into a Node tree. It parses the declaration
// structure of a compilation unit and the full expression grammar of
// annotation element values; method bodies, initializer blocks and field
// initializers are skipped.
type Parser struct {
	file       string
	reader     io.Reader
	input      []byte
	tokens     []Token
	pos        int
	entry      parseFunc
	incomplete bool
}

func newParser(r io.Reader, entry parseFunc, opts []Option) *Parser {
	p := &Parser{reader: r, entry: entry}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseCompilationUnit prepares a parser for a whole source file.
func ParseCompilationUnit(r io.Reader, opts ...Option) *Parser {
	return newParser(r, (*Parser).parseCompilationUnit, opts)
}

// ParseAnnotation prepares a parser for a single annotation such as
// `@pkg.Type(name = "x", flags = {1, 2})`.
func ParseAnnotation(r io.Reader, opts ...Option) *Parser {
	return newParser(r, (*Parser).parseAnnotationEntry, opts)
}

// ParseExpression prepares a parser for one annotation element value.
func ParseExpression(r io.Reader, opts ...Option) *Parser {
	return newParser(r, (*Parser).parseExpressionEntry, opts)
}

// ParseType prepares a parser for a type such as
// `java.util.Map<String, ? extends Number>[]`.
func ParseType(r io.Reader, opts ...Option) *Parser {
	return newParser(r, (*Parser).parseTypeEntry, opts)
}

// Finish reads the input and returns the parsed tree. It returns nil when
// the input is empty, unreadable or ends in the middle of a construct.
func (p *Parser) Finish() *Node {
	if p.input == nil {
		data, err := io.ReadAll(p.reader)
		if err != nil {
			return nil
		}
		p.input = data
	}
	if len(p.input) == 0 {
		return nil
	}
	p.tokenize()
	p.pos = 0
	p.incomplete = false
	result := p.entry(p)
	if p.incomplete {
		return nil
	}
	return result
}

func (p *Parser) tokenize() {
	lexer := NewLexer(p.input, p.file)
	p.tokens = p.tokens[:0]
	for {
		tok := lexer.NextToken()
		p.tokens = append(p.tokens, tok)
		if tok.Kind == TokenEOF {
			return
		}
	}
}

func (p *Parser) peek() Token {
	return p.peekN(0)
}

func (p *Parser) peekN(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return Token{Kind: TokenEOF}
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) && tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(kind TokenKind) *Token {
	tok := p.peek()
	if tok.Kind == kind {
		p.advance()
		return &tok
	}
	return nil
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) checkWord(word string) bool {
	tok := p.peek()
	return tok.Kind == TokenIdent && tok.Literal == word
}

// mustProgress returns a function that reports whether the parser moved
// since the call; when it did not, one token is skipped.
func (p *Parser) mustProgress() func() bool {
	saved := p.pos
	return func() bool {
		if p.pos == saved {
			p.advance()
			return false
		}
		return true
	}
}

func (p *Parser) leaf(kind NodeKind, tok Token) *Node {
	return &Node{Kind: kind, Token: &tok, Span: tok.Span}
}

func (p *Parser) startNode(kind NodeKind) *Node {
	return &Node{
		Kind: kind,
		Span: Span{Start: p.peek().Span.Start},
	}
}

// startNodeAt starts a declaration whose span begins at its modifiers.
func (p *Parser) startNodeAt(kind NodeKind, modifiers *Node) *Node {
	node := &Node{Kind: kind, Span: Span{Start: modifiers.Span.Start}}
	node.AddChild(modifiers)
	return node
}

func (p *Parser) finishNode(n *Node) *Node {
	if p.pos > 0 && p.pos <= len(p.tokens) {
		n.Span.End = p.tokens[p.pos-1].Span.End
	}
	if n.Span.End.Offset < n.Span.Start.Offset {
		n.Span.End = n.Span.Start
	}
	return n
}

// errorNode reports an unexpected token and skips ahead to the first
// token in recoverTo. A token that is itself in recoverTo is left for the
// caller.
func (p *Parser) errorNode(msg string, recoverTo []TokenKind, expected ...TokenKind) *Node {
	node := p.missing(msg, expected...)
	if p.atAny(recoverTo) {
		return node
	}
	node.Span.End = p.peek().Span.End
	p.advance()
	for len(recoverTo) > 0 && !p.check(TokenEOF) && !p.atAny(recoverTo) {
		p.advance()
	}
	return node
}

func (p *Parser) atAny(kinds []TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			return true
		}
	}
	return false
}

// missing reports a construct that is absent without consuming input.
func (p *Parser) missing(msg string, expected ...TokenKind) *Node {
	tok := p.peek()
	if tok.Kind == TokenEOF {
		p.incomplete = true
	}
	return &Node{
		Kind: KindError,
		Span: Span{Start: tok.Span.Start, End: tok.Span.Start},
		Error: &Error{
			Message:  msg,
			Expected: expected,
			Got:      &tok,
		},
	}
}

// closing consumes the closing token kind or attaches an error to parent.
func (p *Parser) closing(kind TokenKind, parent *Node) {
	if p.expect(kind) == nil {
		parent.AddChild(p.missing("expected '"+kind.String()+"'", kind))
	}
}

// skipBalanced consumes an open token through its matching close token
// and returns a body node spanning the skipped region.
func (p *Parser) skipBalanced(open, close TokenKind) *Node {
	node := p.startNode(KindBody)
	depth := 0
	for {
		switch p.peek().Kind {
		case TokenEOF:
			p.incomplete = true
			return p.finishNode(node)
		case open:
			depth++
		case close:
			depth--
		}
		p.advance()
		if depth == 0 {
			return p.finishNode(node)
		}
	}
}

func (p *Parser) parseAnnotationEntry() *Node {
	if !p.check(TokenAt) {
		return p.missing("expected annotation", TokenAt)
	}
	return p.trailing(p.parseAnnotation())
}

func (p *Parser) parseExpressionEntry() *Node {
	return p.trailing(p.parseElementValue())
}

func (p *Parser) parseTypeEntry() *Node {
	return p.trailing(p.parseType())
}

// trailing rejects input left over after a standalone construct.
func (p *Parser) trailing(node *Node) *Node {
	if p.check(TokenEOF) {
		return node
	}
	return p.missing("unexpected " + p.peek().Literal)
}
