package parser

import (
	"unicode"
	"unicode/utf8"
)

// Lexer splits Java source into tokens. Whitespace and comments are
// consumed between tokens and never returned.
type Lexer struct {
	input  []byte
	file   string
	pos    int
	line   int
	column int
}

func NewLexer(input []byte, file string) *Lexer {
	return &Lexer{input: input, file: file, line: 1, column: 1}
}

func (l *Lexer) Position() Position {
	return Position{File: l.file, Offset: l.pos, Line: l.line, Column: l.column}
}

func (l *Lexer) peek() byte { return l.peekN(0) }

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) peekRune() rune {
	if l.pos >= len(l.input) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRune(l.input[l.pos:])
	return r
}

func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	_, size := utf8.DecodeRune(l.input[l.pos:])
	if l.input[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos += size
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) atEOF() bool { return l.pos >= len(l.input) }

// skipTrivia consumes whitespace and comments. An unterminated block
// comment runs to end of input.
func (l *Lexer) skipTrivia() {
	for !l.atEOF() {
		switch ch := l.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f':
			l.advance()
		case ch == '/' && l.peekN(1) == '/':
			for !l.atEOF() && l.peek() != '\n' {
				l.advance()
			}
		case ch == '/' && l.peekN(1) == '*':
			l.advanceN(2)
			for !l.atEOF() && !(l.peek() == '*' && l.peekN(1) == '/') {
				l.advance()
			}
			l.advanceN(2)
		default:
			return
		}
	}
}

func (l *Lexer) NextToken() Token {
	l.skipTrivia()
	start := l.Position()
	if l.atEOF() {
		return Token{Kind: TokenEOF, Span: Span{Start: start, End: start}}
	}

	ch := l.peek()
	switch {
	case isIdentStart(l.peekRune()):
		return l.scanWord(start)
	case isDigit(ch), ch == '.' && isDigit(l.peekN(1)):
		return l.scanNumber(start)
	case ch == '\'':
		l.scanQuoted('\'')
		return l.token(TokenCharLiteral, start)
	case ch == '"':
		if l.peekN(1) == '"' && l.peekN(2) == '"' {
			return l.scanTextBlock(start)
		}
		l.scanQuoted('"')
		return l.token(TokenStringLiteral, start)
	}
	return l.scanOperator(start)
}

func (l *Lexer) scanWord(start Position) Token {
	for !l.atEOF() && isIdentPart(l.peekRune()) {
		l.advance()
	}
	tok := l.token(TokenIdent, start)
	tok.Kind = LookupKeyword(tok.Literal)
	return tok
}

// scanNumber accepts every Java numeric literal form: decimal, hex, octal
// and binary integers, decimal and hexadecimal floating point, with
// underscores and type suffixes. Values are interpreted later.
func (l *Lexer) scanNumber(start Position) Token {
	kind := TokenIntLiteral
	digit := isDigit
	exponent := byte('e')

	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') {
		l.advanceN(2)
		digit = isHexDigit
		exponent = 'p'
	} else if l.peek() == '0' && (l.peekN(1) == 'b' || l.peekN(1) == 'B') {
		l.advanceN(2)
		digit = func(c byte) bool { return c == '0' || c == '1' }
	}

	digits := func() {
		for digit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}

	digits()
	if l.peek() == '.' && l.fractionFollows(digit, exponent) {
		kind = TokenFloatLiteral
		l.advance()
		digits()
	}
	if lower(l.peek()) == exponent {
		kind = TokenFloatLiteral
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}

	switch lower(l.peek()) {
	case 'f', 'd':
		kind = TokenFloatLiteral
		l.advance()
	case 'l':
		l.advance()
	}
	return l.token(kind, start)
}

// fractionFollows decides whether the '.' under the cursor belongs to the
// number being scanned.
func (l *Lexer) fractionFollows(digit func(byte) bool, exponent byte) bool {
	next := l.peekN(1)
	switch {
	case digit(next), exponent == 'p':
		return true
	case next == '.':
		return false
	}
	switch lower(next) {
	case 'e', 'f', 'd':
		return true
	}
	return !isIdentStartByte(next)
}

func (l *Lexer) scanQuoted(quote byte) {
	l.advance()
	for !l.atEOF() && l.peek() != quote && l.peek() != '\n' {
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
	if l.peek() == quote {
		l.advance()
	}
}

func (l *Lexer) scanTextBlock(start Position) Token {
	l.advanceN(3)
	for !l.atEOF() {
		if l.peek() == '"' && l.peekN(1) == '"' && l.peekN(2) == '"' {
			l.advanceN(3)
			break
		}
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
	return l.token(TokenTextBlock, start)
}

// operators lists multi-character operators longest first so that the
// first prefix match wins.
var operators = []struct {
	text string
	kind TokenKind
}{
	{">>>=", TokenCompoundAssign},
	{"<<=", TokenCompoundAssign},
	{">>=", TokenCompoundAssign},
	{">>>", TokenUShr},
	{"...", TokenEllipsis},
	{"::", TokenColonColon},
	{"->", TokenArrow},
	{"==", TokenEQ},
	{"!=", TokenNE},
	{"<=", TokenLE},
	{">=", TokenGE},
	{"&&", TokenAnd},
	{"||", TokenOr},
	{"<<", TokenShl},
	{">>", TokenShr},
	{"++", TokenIncrement},
	{"--", TokenDecrement},
	{"+=", TokenCompoundAssign},
	{"-=", TokenCompoundAssign},
	{"*=", TokenCompoundAssign},
	{"/=", TokenCompoundAssign},
	{"%=", TokenCompoundAssign},
	{"&=", TokenCompoundAssign},
	{"|=", TokenCompoundAssign},
	{"^=", TokenCompoundAssign},
}

var singleCharTokens = map[byte]TokenKind{
	'(': TokenLParen, ')': TokenRParen,
	'{': TokenLBrace, '}': TokenRBrace,
	'[': TokenLBracket, ']': TokenRBracket,
	';': TokenSemicolon, ',': TokenComma, '.': TokenDot, '@': TokenAt,
	'=': TokenAssign, '<': TokenLT, '>': TokenGT, '!': TokenNot,
	'&': TokenBitAnd, '|': TokenBitOr, '^': TokenBitXor, '~': TokenBitNot,
	'+': TokenPlus, '-': TokenMinus, '*': TokenStar, '/': TokenSlash,
	'%': TokenPercent, '?': TokenQuestion, ':': TokenColon,
}

func (l *Lexer) scanOperator(start Position) Token {
	rest := l.input[l.pos:]
	for _, op := range operators {
		if len(rest) >= len(op.text) && string(rest[:len(op.text)]) == op.text {
			l.advanceN(len(op.text))
			return l.token(op.kind, start)
		}
	}
	kind, ok := singleCharTokens[l.peek()]
	if !ok {
		kind = TokenError
	}
	l.advance()
	return l.token(kind, start)
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	end := l.Position()
	return Token{
		Kind:    kind,
		Span:    Span{Start: start, End: end},
		Literal: string(l.input[start.Offset:end.Offset]),
	}
}

func lower(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStartByte(ch byte) bool {
	return ch >= utf8.RuneSelf || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
