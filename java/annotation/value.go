package annotation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dhamidi/annox/java/parser"
)

// Kind discriminates the variants of Value.
type Kind uint8

const (
	KindUnresolved Kind = iota
	KindBoolean
	KindByte
	KindShort
	KindInt
	KindLong
	KindChar
	KindFloat
	KindDouble
	KindString
	KindClass
	KindEnum
	KindAnnotation
	KindArray
)

var kindNames = [...]string{
	KindUnresolved: "unresolved",
	KindBoolean:    "boolean",
	KindByte:       "byte",
	KindShort:      "short",
	KindInt:        "int",
	KindLong:       "long",
	KindChar:       "char",
	KindFloat:      "float",
	KindDouble:     "double",
	KindString:     "String",
	KindClass:      "Class",
	KindEnum:       "enum",
	KindAnnotation: "annotation",
	KindArray:      "array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsIntegral reports whether values of kind k carry their payload in
// Value.Int.
func (k Kind) IsIntegral() bool {
	switch k {
	case KindByte, KindShort, KindInt, KindLong, KindChar:
		return true
	}
	return false
}

// primitiveKinds maps Java primitive type names to value kinds.
var primitiveKinds = map[string]Kind{
	"boolean": KindBoolean,
	"byte":    KindByte,
	"short":   KindShort,
	"int":     KindInt,
	"long":    KindLong,
	"char":    KindChar,
	"float":   KindFloat,
	"double":  KindDouble,
}

// TypeRef is a type name after resolution. When Resolved is false Name
// is the name as written, generic arguments removed.
type TypeRef struct {
	Name       string
	ArrayDepth int
	Resolved   bool
}

func (r TypeRef) String() string {
	return r.Name + strings.Repeat("[]", r.ArrayDepth)
}

// IsZero reports whether r names no type at all, which is how an
// unknown element type is represented.
func (r TypeRef) IsZero() bool {
	return r.Name == ""
}

// Component strips one array dimension.
func (r TypeRef) Component() TypeRef {
	if r.ArrayDepth > 0 {
		r.ArrayDepth--
	}
	return r
}

func (r TypeRef) isPrimitive() bool {
	_, ok := primitiveKinds[r.Name]
	return ok && r.ArrayDepth == 0
}

// Value is one annotation element value. Exactly the fields belonging to
// Kind are set:
//
//	boolean                          Bool
//	byte, short, int, long, char     Int
//	float, double                    Float
//	String                           Text
//	Class                            Type, and Reason when unresolved
//	enum                             Type, Constant
//	annotation                       Annotation
//	array                            Elements (non-nil, possibly empty)
//	unresolved                       Reason
type Value struct {
	Kind       Kind
	Bool       bool
	Int        int64
	Float      float64
	Text       string
	Type       TypeRef
	Constant   string
	Annotation *Instance
	Elements   []Value
	Reason     string
}

func BooleanValue(b bool) Value {
	return Value{Kind: KindBoolean, Bool: b}
}

// IntegralValue returns a byte, short, int, long or char value.
func IntegralValue(kind Kind, v int64) Value {
	return Value{Kind: kind, Int: v}
}

// FloatingValue returns a float or double value. Float values are
// rounded to single precision.
func FloatingValue(kind Kind, v float64) Value {
	if kind == KindFloat {
		v = float64(float32(v))
	}
	return Value{Kind: kind, Float: v}
}

func StringValue(s string) Value {
	return Value{Kind: KindString, Text: s}
}

// ClassValue returns a class literal value. reason is empty when the
// type was resolved.
func ClassValue(t TypeRef, reason string) Value {
	return Value{Kind: KindClass, Type: t, Reason: reason}
}

func EnumValue(t TypeRef, constant string) Value {
	return Value{Kind: KindEnum, Type: t, Constant: constant}
}

func AnnotationValue(inst *Instance) Value {
	return Value{Kind: KindAnnotation, Annotation: inst}
}

func ArrayValue(elements ...Value) Value {
	if elements == nil {
		elements = []Value{}
	}
	return Value{Kind: KindArray, Elements: elements}
}

func Unresolved(reason string) Value {
	return Value{Kind: KindUnresolved, Reason: reason}
}

func Unresolvedf(format string, args ...any) Value {
	return Unresolved(fmt.Sprintf(format, args...))
}

func (v Value) IsUnresolved() bool {
	return v.Kind == KindUnresolved
}

// String renders v as Java source.
func (v Value) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v Value) write(sb *strings.Builder) {
	switch v.Kind {
	case KindBoolean:
		sb.WriteString(strconv.FormatBool(v.Bool))
	case KindByte:
		sb.WriteString("(byte) " + strconv.FormatInt(v.Int, 10))
	case KindShort:
		sb.WriteString("(short) " + strconv.FormatInt(v.Int, 10))
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case KindLong:
		sb.WriteString(strconv.FormatInt(v.Int, 10) + "L")
	case KindChar:
		sb.WriteString(quoteJava(string(rune(v.Int)), '\''))
	case KindFloat:
		sb.WriteString(javaFloat(v.Float, 32))
	case KindDouble:
		sb.WriteString(javaFloat(v.Float, 64))
	case KindString:
		sb.WriteString(quoteJava(v.Text, '"'))
	case KindClass:
		sb.WriteString(v.Type.String() + ".class")
	case KindEnum:
		sb.WriteString(v.Type.String() + "." + v.Constant)
	case KindAnnotation:
		v.Annotation.write(sb)
	case KindArray:
		sb.WriteByte('{')
		for i, elem := range v.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}
			elem.write(sb)
		}
		sb.WriteByte('}')
	default:
		sb.WriteString("/* unresolved: " + strings.ReplaceAll(v.Reason, "*/", "* /") + " */")
	}
}

// Element is one named value of an annotation instance.
type Element struct {
	Name  string
	Value Value
	// Defaulted is set when the value comes from the annotation type's
	// declared default.
	Defaulted bool
}

// Instance is one annotation as it applies to a declaration.
type Instance struct {
	Type TypeRef
	// Elements holds every declared element of the annotation type in
	// declaration order, followed by supplied elements the type does
	// not declare. Names are unique.
	Elements []Element
	// Reason is set when the instance is incomplete: the annotation
	// type is unknown or the argument list is malformed.
	Reason string
	// Span locates the annotation in source; it is zero for annotations
	// read from class files.
	Span parser.Span
}

// Get returns the value of the element called name.
func (inst *Instance) Get(name string) (Value, bool) {
	for _, e := range inst.Elements {
		if e.Name == name {
			return e.Value, true
		}
	}
	return Value{}, false
}

// String renders the instance as a Java annotation.
func (inst *Instance) String() string {
	var sb strings.Builder
	inst.write(&sb)
	return sb.String()
}

func (inst *Instance) write(sb *strings.Builder) {
	if inst == nil {
		sb.WriteString("/* unresolved: missing annotation */")
		return
	}
	sb.WriteString("@" + inst.Type.Name)
	if len(inst.Elements) == 0 {
		return
	}
	sb.WriteByte('(')
	if len(inst.Elements) == 1 && inst.Elements[0].Name == "value" {
		inst.Elements[0].Value.write(sb)
	} else {
		for i, e := range inst.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.Name + " = ")
			e.Value.write(sb)
		}
	}
	sb.WriteByte(')')
}

func javaFloat(v float64, bits int) string {
	suffix := ""
	if bits == 32 {
		suffix = "f"
	}
	switch {
	case math.IsNaN(v):
		return "0.0" + suffix + " / 0.0" + suffix
	case math.IsInf(v, 1):
		return "1.0" + suffix + " / 0.0" + suffix
	case math.IsInf(v, -1):
		return "-1.0" + suffix + " / 0.0" + suffix
	}
	s := strconv.FormatFloat(v, 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	s = strings.Replace(s, "e+", "E", 1)
	s = strings.Replace(s, "e-", "E-", 1)
	return s + suffix
}

func quoteJava(s string, quote byte) string {
	var sb strings.Builder
	sb.WriteByte(quote)
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case rune(quote):
			sb.WriteByte('\\')
			sb.WriteByte(quote)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}
