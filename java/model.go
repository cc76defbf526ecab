package java

import (
	"strings"

	"github.com/dhamidi/annox/classfile"
	"github.com/dhamidi/annox/java/parser"
)

type ClassKind string

const (
	ClassKindClass      ClassKind = "class"
	ClassKindInterface  ClassKind = "interface"
	ClassKindEnum       ClassKind = "enum"
	ClassKindAnnotation ClassKind = "annotation"
	ClassKindRecord     ClassKind = "record"
)

// TypeInfo is the metadata the annotation engine needs about one type.
type TypeInfo struct {
	// Name is the canonical name, nested types joined with dots.
	Name       string
	SimpleName string
	Package    string
	Kind       ClassKind
	// Elements lists the elements of an annotation type in declaration
	// order.
	Elements      []ElementInfo
	EnumConstants []string
	// Retention is the RetentionPolicy constant name, empty when the
	// annotation type does not declare one.
	Retention string
	// Targets are ElementType constant names.
	Targets []string
	// Source is set for types declared in source; element types are then
	// written as in the source and must be resolved in this context.
	Source *SourceContext
	Origin URLString
}

func (t *TypeInfo) IsAnnotation() bool { return t != nil && t.Kind == ClassKindAnnotation }
func (t *TypeInfo) IsEnum() bool       { return t != nil && t.Kind == ClassKindEnum }

// Element returns the element called name.
func (t *TypeInfo) Element(name string) (ElementInfo, bool) {
	for _, e := range t.Elements {
		if e.Name == name {
			return e, true
		}
	}
	return ElementInfo{}, false
}

type ElementInfo struct {
	Name    string
	Type    Type
	Default *DefaultValue
}

// DefaultValue is the default of an annotation element: a source
// expression, evaluated in the context of the file declaring it, or a
// constant read from a class file.
type DefaultValue struct {
	Expr  *parser.Node
	Const *classfile.ElementValue
}

type Import struct {
	Name     string
	Static   bool
	Wildcard bool
}

// SourceContext is what name resolution needs to know about a source
// file.
type SourceContext struct {
	Package string
	Imports []Import
	File    string
	// Locals maps the simple name of every type declared in the file to
	// its canonical name. Top-level types win over nested ones.
	Locals map[string]string
}

// Qualify prefixes name with the package of the context.
func (c *SourceContext) Qualify(name string) string {
	if c.Package == "" {
		return name
	}
	return c.Package + "." + name
}

func splitClassName(fullName string) (pkg, simpleName string) {
	lastDot := strings.LastIndex(fullName, ".")
	if lastDot == -1 {
		return "", fullName
	}
	return fullName[:lastDot], fullName[lastDot+1:]
}
