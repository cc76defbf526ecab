package java

import (
	"fmt"
	"strings"

	"github.com/dhamidi/annox/java/parser"
)

// Type is a type use as written or as resolved: a name, array
// dimensions and, for parameterized types, the type arguments.
type Type struct {
	Name       string
	ArrayDepth int
	Args       []TypeArg
}

// TypeArg is one type argument; Type is nil for an unbounded wildcard.
type TypeArg struct {
	Wildcard bool
	// Bound is "extends", "super" or empty.
	Bound string
	Type  *Type
}

func (t Type) String() string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	if len(t.Args) > 0 {
		sb.WriteByte('<')
		for i, arg := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(arg.String())
		}
		sb.WriteByte('>')
	}
	for i := 0; i < t.ArrayDepth; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

func (a TypeArg) String() string {
	switch {
	case !a.Wildcard:
		return a.Type.String()
	case a.Type == nil:
		return "?"
	default:
		return "? " + a.Bound + " " + a.Type.String()
	}
}

func (t Type) IsPrimitive() bool {
	return t.ArrayDepth == 0 && IsPrimitiveName(t.Name)
}

func (t Type) IsArray() bool {
	return t.ArrayDepth > 0
}

func (t Type) IsVoid() bool {
	return t.Name == "void" && t.ArrayDepth == 0
}

// ElementType strips one array dimension.
func (t Type) ElementType() Type {
	if t.ArrayDepth == 0 {
		return t
	}
	return Type{Name: t.Name, ArrayDepth: t.ArrayDepth - 1, Args: t.Args}
}

func IsPrimitiveName(name string) bool {
	switch name {
	case "boolean", "byte", "char", "short", "int", "long", "float", "double":
		return true
	}
	return false
}

// ParseType parses a type string such as
// `java.util.Map<String, ? extends Number>[]`.
func ParseType(text string) (Type, error) {
	node := parser.ParseType(strings.NewReader(text)).Finish()
	if node == nil {
		return Type{}, fmt.Errorf("invalid type %q", text)
	}
	if errs := node.Errors(); len(errs) > 0 {
		return Type{}, fmt.Errorf("invalid type %q: %s", text, errs[0].Error.Message)
	}
	return TypeFromNode(node), nil
}

// TypeFromNode converts a Type or ArrayType node. Type annotations are
// dropped; the name is returned as written.
func TypeFromNode(node *parser.Node) Type {
	var t Type
	for node != nil && node.Kind == parser.KindArrayType {
		t.ArrayDepth++
		if len(node.Children) == 0 {
			return t
		}
		node = node.Children[0]
	}
	if node == nil || node.Kind != parser.KindType {
		return t
	}
	var parts []string
	for _, child := range node.Children {
		switch child.Kind {
		case parser.KindIdentifier, parser.KindQualifiedName:
			parts = append(parts, child.Text())
		case parser.KindTypeArguments:
			t.Args = typeArgsFromNode(child)
		}
	}
	t.Name = strings.Join(parts, ".")
	return t
}

func typeArgsFromNode(node *parser.Node) []TypeArg {
	var args []TypeArg
	for _, child := range node.Children {
		switch child.Kind {
		case parser.KindType, parser.KindArrayType:
			typ := TypeFromNode(child)
			args = append(args, TypeArg{Type: &typ})
		case parser.KindWildcard:
			arg := TypeArg{Wildcard: true}
			for _, part := range child.Children {
				switch part.Kind {
				case parser.KindIdentifier:
					arg.Bound = part.TokenLiteral()
				case parser.KindType, parser.KindArrayType:
					typ := TypeFromNode(part)
					arg.Type = &typ
				}
			}
			args = append(args, arg)
		}
	}
	return args
}
