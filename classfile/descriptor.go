package classfile

import (
	"fmt"
	"strings"
)

var baseTypes = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
	'V': "void",
}

// FieldType is a parsed field descriptor. Exactly one of BaseType and
// ClassName is set; ClassName is an internal name.
type FieldType struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

// SourceName renders the element type without array brackets in dotted
// form. Nested class separators are turned into dots.
func (ft FieldType) SourceName() string {
	if ft.BaseType != "" {
		return ft.BaseType
	}
	return strings.ReplaceAll(InternalToSourceName(ft.ClassName), "$", ".")
}

func (ft FieldType) String() string {
	return ft.SourceName() + strings.Repeat("[]", ft.ArrayDepth)
}

// ParseFieldDescriptor parses a field descriptor or a `V` return
// descriptor.
func ParseFieldDescriptor(desc string) (FieldType, error) {
	ft, n := parseFieldType(desc, 0)
	if n == 0 || n != len(desc) {
		return FieldType{}, fmt.Errorf("invalid descriptor %q", desc)
	}
	return ft, nil
}

// ReturnDescriptor returns the part of a method descriptor after the
// parameter list.
func ReturnDescriptor(desc string) string {
	i := strings.IndexByte(desc, ')')
	if i < 0 {
		return ""
	}
	return desc[i+1:]
}

// ParameterDescriptors splits the parameter list of a method descriptor.
func ParameterDescriptors(desc string) ([]FieldType, error) {
	if len(desc) == 0 || desc[0] != '(' {
		return nil, fmt.Errorf("invalid method descriptor %q", desc)
	}
	var params []FieldType
	i := 1
	for i < len(desc) && desc[i] != ')' {
		ft, n := parseFieldType(desc, i)
		if n == 0 {
			return nil, fmt.Errorf("invalid method descriptor %q", desc)
		}
		params = append(params, ft)
		i += n
	}
	if i >= len(desc) {
		return nil, fmt.Errorf("invalid method descriptor %q", desc)
	}
	return params, nil
}

func parseFieldType(desc string, start int) (FieldType, int) {
	var ft FieldType
	i := start
	for i < len(desc) && desc[i] == '[' {
		ft.ArrayDepth++
		i++
	}
	if i >= len(desc) {
		return FieldType{}, 0
	}
	if desc[i] == 'L' {
		semicolon := strings.IndexByte(desc[i:], ';')
		if semicolon < 2 {
			return FieldType{}, 0
		}
		ft.ClassName = desc[i+1 : i+semicolon]
		return ft, i - start + semicolon + 1
	}
	base, ok := baseTypes[desc[i]]
	if !ok || (base == "void" && ft.ArrayDepth > 0) {
		return FieldType{}, 0
	}
	ft.BaseType = base
	return ft, i - start + 1
}

func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

func SourceToInternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
