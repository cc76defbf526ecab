package annotation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/dhamidi/annox/java/parser"
)

// literal is a constant typed by its own syntax: an int, long, float,
// double, char, boolean or String literal.
type literal struct {
	kind  Kind
	bool  bool
	int   int64
	float float64
	text  string
}

func (l literal) value() Value {
	switch {
	case l.kind == KindBoolean:
		return BooleanValue(l.bool)
	case l.kind == KindString:
		return StringValue(l.text)
	case l.kind.IsIntegral():
		return IntegralValue(l.kind, l.int)
	}
	return FloatingValue(l.kind, l.float)
}

// parseLiteral decodes a literal token. negative folds a preceding unary
// minus into numeric literals before their range is checked.
func parseLiteral(tok *parser.Token, negative bool) (literal, error) {
	text := tok.Literal
	switch tok.Kind {
	case parser.TokenTrue, parser.TokenFalse:
		return literal{kind: KindBoolean, bool: tok.Kind == parser.TokenTrue}, nil
	case parser.TokenIntLiteral:
		return parseInteger(text, negative)
	case parser.TokenFloatLiteral:
		return parseFloating(text, negative)
	case parser.TokenCharLiteral:
		return parseChar(text)
	case parser.TokenStringLiteral:
		if len(text) < 2 || !strings.HasSuffix(text, `"`) {
			return literal{}, errors.New("unclosed string literal")
		}
		s, err := unescape(text[1 : len(text)-1])
		return literal{kind: KindString, text: s}, err
	case parser.TokenTextBlock:
		s, err := textBlock(text)
		return literal{kind: KindString, text: s}, err
	case parser.TokenNull:
		return literal{}, errors.New("null is not a constant")
	}
	return literal{}, fmt.Errorf("unexpected literal %s", text)
}

func parseInteger(text string, negative bool) (literal, error) {
	lit := literal{kind: KindInt}
	bits := 32
	digits := text
	if last := digits[len(digits)-1]; last == 'l' || last == 'L' {
		lit.kind = KindLong
		bits = 64
		digits = digits[:len(digits)-1]
	}
	if err := checkUnderscores(text, digits); err != nil {
		return lit, err
	}
	digits = strings.ReplaceAll(digits, "_", "")

	base := 10
	switch {
	case len(digits) > 1 && (digits[1] == 'x' || digits[1] == 'X'):
		base, digits = 16, digits[2:]
	case len(digits) > 1 && (digits[1] == 'b' || digits[1] == 'B'):
		base, digits = 2, digits[2:]
	case len(digits) > 1 && digits[0] == '0':
		base, digits = 8, digits[1:]
	}

	u, err := strconv.ParseUint(digits, base, bits)
	if errors.Is(err, strconv.ErrRange) {
		return lit, fmt.Errorf("integer number too large: %s", text)
	}
	if err != nil {
		return lit, fmt.Errorf("malformed integer literal %s", text)
	}

	if base == 10 {
		limit := uint64(1) << (bits - 1)
		if u > limit || (u == limit && !negative) {
			return lit, fmt.Errorf("integer number too large: %s", text)
		}
		lit.int = int64(u)
		if negative {
			lit.int = -lit.int
		}
		return lit, nil
	}

	// Non-decimal literals denote the two's complement bit pattern.
	if bits == 32 {
		lit.int = int64(int32(uint32(u)))
		if negative {
			lit.int = int64(-int32(lit.int))
		}
		return lit, nil
	}
	lit.int = int64(u)
	if negative {
		lit.int = -lit.int
	}
	return lit, nil
}

// checkUnderscores rejects underscores that are not between two digits
// of the number s, which has its type suffix removed.
func checkUnderscores(text, s string) error {
	digit := func(c byte) bool { return c >= '0' && c <= '9' }
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		digit = func(c byte) bool {
			return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
		}
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			continue
		}
		j := i
		for j < len(s) && s[j] == '_' {
			j++
		}
		if i == 0 || j == len(s) || !digit(s[i-1]) || !digit(s[j]) {
			return fmt.Errorf("illegal underscore in %s", text)
		}
		i = j
	}
	return nil
}

func parseFloating(text string, negative bool) (literal, error) {
	lit := literal{kind: KindDouble}
	bits := 64
	s := text
	switch s[len(s)-1] {
	case 'f', 'F':
		lit.kind = KindFloat
		bits = 32
		s = s[:len(s)-1]
	case 'd', 'D':
		s = s[:len(s)-1]
	}
	if err := checkUnderscores(text, s); err != nil {
		return lit, err
	}
	s = strings.ReplaceAll(s, "_", "")

	v, err := strconv.ParseFloat(s, bits)
	if errors.Is(err, strconv.ErrRange) {
		if v == 0 {
			return lit, fmt.Errorf("floating-point number too small: %s", text)
		}
		return lit, fmt.Errorf("floating-point number too large: %s", text)
	}
	if err != nil {
		return lit, fmt.Errorf("malformed floating-point literal %s", text)
	}
	if v == 0 && hasNonZeroDigit(s) {
		return lit, fmt.Errorf("floating-point number too small: %s", text)
	}
	if negative {
		v = -v
	}
	lit.float = v
	return lit, nil
}

// hasNonZeroDigit reports whether the significand of a floating-point
// literal has a digit other than zero.
func hasNonZeroDigit(s string) bool {
	hex := len(s) > 1 && (s[1] == 'x' || s[1] == 'X')
	if hex {
		s = s[2:]
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case hex && (c == 'p' || c == 'P'), !hex && (c == 'e' || c == 'E'):
			return false
		case c >= '1' && c <= '9', hex && strings.IndexByte("abcdefABCDEF", c) >= 0:
			return true
		}
	}
	return false
}

func parseChar(text string) (literal, error) {
	if len(text) < 3 || text[len(text)-1] != '\'' {
		return literal{}, errors.New("unclosed character literal")
	}
	units, err := unescapeUnits(text[1 : len(text)-1])
	if err != nil {
		return literal{}, err
	}
	if len(units) != 1 {
		return literal{}, fmt.Errorf("invalid character literal %s", text)
	}
	return literal{kind: KindChar, int: int64(units[0])}, nil
}

func unescape(s string) (string, error) {
	units, err := unescapeUnits(s)
	return string(utf16.Decode(units)), err
}

// unescapeUnits interprets Java escape sequences, Unicode escapes
// included, and returns the UTF-16 code units of the result.
func unescapeUnits(s string) ([]uint16, error) {
	units := make([]uint16, 0, len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			r, size := utf8.DecodeRuneInString(s[i:])
			units = utf16.AppendRune(units, r)
			i += size
			continue
		}
		if i+1 >= len(s) {
			return units, errors.New("illegal escape character at end of literal")
		}
		c := s[i+1]
		i += 2
		switch c {
		case 'b':
			units = append(units, '\b')
		case 't':
			units = append(units, '\t')
		case 'n':
			units = append(units, '\n')
		case 'f':
			units = append(units, '\f')
		case 'r':
			units = append(units, '\r')
		case 's':
			units = append(units, ' ')
		case '"', '\'', '\\':
			units = append(units, uint16(c))
		case '\n':
			// line continuation in text blocks
		case 'u':
			for i < len(s) && s[i] == 'u' {
				i++
			}
			if i+4 > len(s) {
				return units, errors.New("illegal unicode escape")
			}
			n, err := strconv.ParseUint(s[i:i+4], 16, 16)
			if err != nil {
				return units, errors.New("illegal unicode escape")
			}
			units = append(units, uint16(n))
			i += 4
		case '0', '1', '2', '3', '4', '5', '6', '7':
			// Octal escapes take up to three digits, at most \377.
			max := 2
			if c <= '3' {
				max = 3
			}
			j := i - 1
			for j < len(s) && j-(i-1) < max && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			n, _ := strconv.ParseUint(s[i-1:j], 8, 16)
			units = append(units, uint16(n))
			i = j
		default:
			return units, fmt.Errorf("illegal escape character \\%c", c)
		}
	}
	return units, nil
}

// textBlock returns the content of a text block: incidental indentation
// and trailing spaces removed, line terminators normalized, escapes
// interpreted.
func textBlock(text string) (string, error) {
	if len(text) < 6 || !strings.HasSuffix(text, `"""`) {
		return "", errors.New("unclosed text block")
	}
	body := text[3 : len(text)-3]
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")
	opening, content, ok := strings.Cut(body, "\n")
	if !ok || strings.TrimLeft(opening, " \t\f") != "" {
		return "", errors.New("illegal text block open delimiter sequence, missing line terminator")
	}

	lines := strings.Split(content, "\n")
	indent := -1
	for i, line := range lines {
		if strings.TrimLeft(line, " \t\f") == "" && i != len(lines)-1 {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t\f"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, line := range lines {
		if len(line) >= indent {
			line = line[indent:]
		} else {
			line = ""
		}
		lines[i] = strings.TrimRight(line, " \t\f")
	}
	return unescape(strings.Join(lines, "\n"))
}

// convertLiteral applies the assignment conversions Java allows for a
// constant of the literal's type to the expected element type. A zero
// expected type keeps the literal's own type.
func convertLiteral(lit literal, expected TypeRef) Value {
	if expected.IsZero() {
		return lit.value()
	}
	if expected.ArrayDepth == 0 {
		if target, ok := primitiveKinds[expected.Name]; ok {
			return convertPrimitive(lit, target)
		}
		if expected.Name == "java.lang.String" && lit.kind == KindString {
			return lit.value()
		}
	}
	return incompatible(lit.kind.String(), expected.String())
}

func convertPrimitive(lit literal, target Kind) Value {
	from := lit.kind
	if from == target {
		return lit.value()
	}
	if from == KindBoolean || from == KindString || target == KindBoolean {
		return incompatible(from.String(), target.String())
	}

	switch target {
	case KindLong:
		if from == KindInt || from == KindChar {
			return IntegralValue(KindLong, lit.int)
		}
	case KindInt:
		if from == KindChar {
			return IntegralValue(KindInt, lit.int)
		}
	case KindFloat, KindDouble:
		if from.IsIntegral() {
			return FloatingValue(target, float64(lit.int))
		}
		if from == KindFloat {
			return FloatingValue(target, lit.float)
		}
	case KindByte, KindShort, KindChar:
		if from == KindInt || from == KindChar {
			if fitsIn(lit.int, target) {
				return IntegralValue(target, lit.int)
			}
		}
	}
	return Unresolvedf("incompatible types: possible lossy conversion from %s to %s", from, target)
}

func fitsIn(v int64, kind Kind) bool {
	switch kind {
	case KindByte:
		return v >= -128 && v <= 127
	case KindShort:
		return v >= -32768 && v <= 32767
	case KindChar:
		return v >= 0 && v <= 0xFFFF
	}
	return false
}

func incompatible(from, to string) Value {
	return Unresolvedf("incompatible types: %s cannot be converted to %s", from, to)
}
