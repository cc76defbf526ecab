package java

import (
	"net/url"
	"sync"

	"github.com/dhamidi/annox/classfile"
)

var builtinOrigin = URLString{URL: url.URL{Scheme: "jrt", Opaque: "/java.base"}}

var builtinClasses = map[string]ClassKind{
	"java.lang.Object":           ClassKindClass,
	"java.lang.String":           ClassKindClass,
	"java.lang.Class":            ClassKindClass,
	"java.lang.Enum":             ClassKindClass,
	"java.lang.Record":           ClassKindClass,
	"java.lang.Number":           ClassKindClass,
	"java.lang.Integer":          ClassKindClass,
	"java.lang.Long":             ClassKindClass,
	"java.lang.Short":            ClassKindClass,
	"java.lang.Byte":             ClassKindClass,
	"java.lang.Character":        ClassKindClass,
	"java.lang.Boolean":          ClassKindClass,
	"java.lang.Float":            ClassKindClass,
	"java.lang.Double":           ClassKindClass,
	"java.lang.Void":             ClassKindClass,
	"java.lang.Math":             ClassKindClass,
	"java.lang.System":           ClassKindClass,
	"java.lang.Thread":           ClassKindClass,
	"java.lang.StringBuilder":    ClassKindClass,
	"java.lang.Throwable":        ClassKindClass,
	"java.lang.Exception":        ClassKindClass,
	"java.lang.RuntimeException": ClassKindClass,
	"java.lang.Error":            ClassKindClass,
	"java.lang.Runnable":         ClassKindInterface,
	"java.lang.Comparable":       ClassKindInterface,
	"java.lang.CharSequence":     ClassKindInterface,
	"java.lang.Iterable":         ClassKindInterface,
	"java.lang.AutoCloseable":    ClassKindInterface,
}

var (
	builtinsOnce     sync.Once
	builtinsRegistry *Registry
)

// Builtins returns the platform types every Java file can see: the
// common java.lang classes and the annotation types and enums of
// java.lang and java.lang.annotation. The registry is shared; callers
// must not add to it.
func Builtins() *Registry {
	builtinsOnce.Do(func() {
		builtinsRegistry = NewRegistry(builtinTypes()...)
	})
	return builtinsRegistry
}

func builtinTypes() []*TypeInfo {
	var infos []*TypeInfo
	for name, kind := range builtinClasses {
		infos = append(infos, builtin(name, kind))
	}
	infos = append(infos, builtin("java.lang.annotation.Annotation", ClassKindInterface))

	retentionPolicy := builtin("java.lang.annotation.RetentionPolicy", ClassKindEnum)
	retentionPolicy.EnumConstants = []string{"SOURCE", "CLASS", "RUNTIME"}
	elementType := builtin("java.lang.annotation.ElementType", ClassKindEnum)
	elementType.EnumConstants = []string{
		"TYPE", "FIELD", "METHOD", "PARAMETER", "CONSTRUCTOR", "LOCAL_VARIABLE",
		"ANNOTATION_TYPE", "PACKAGE", "TYPE_PARAMETER", "TYPE_USE", "MODULE",
		"RECORD_COMPONENT",
	}
	infos = append(infos, retentionPolicy, elementType)

	meta := []string{"ANNOTATION_TYPE"}
	infos = append(infos,
		annotationType("java.lang.annotation.Retention", "RUNTIME", meta,
			ElementInfo{Name: "value", Type: Type{Name: "java.lang.annotation.RetentionPolicy"}}),
		annotationType("java.lang.annotation.Target", "RUNTIME", meta,
			ElementInfo{Name: "value", Type: Type{Name: "java.lang.annotation.ElementType", ArrayDepth: 1}}),
		annotationType("java.lang.annotation.Documented", "RUNTIME", meta),
		annotationType("java.lang.annotation.Inherited", "RUNTIME", meta),
		annotationType("java.lang.annotation.Repeatable", "RUNTIME", meta,
			ElementInfo{Name: "value", Type: classOf("java.lang.annotation.Annotation")}),
		annotationType("java.lang.annotation.Native", "SOURCE", []string{"FIELD"}),
		annotationType("java.lang.Override", "SOURCE", []string{"METHOD"}),
		annotationType("java.lang.FunctionalInterface", "RUNTIME", []string{"TYPE"}),
		annotationType("java.lang.SafeVarargs", "RUNTIME", []string{"CONSTRUCTOR", "METHOD"}),
		annotationType("java.lang.SuppressWarnings", "SOURCE",
			[]string{"TYPE", "FIELD", "METHOD", "PARAMETER", "CONSTRUCTOR", "LOCAL_VARIABLE", "MODULE"},
			ElementInfo{Name: "value", Type: Type{Name: "java.lang.String", ArrayDepth: 1}}),
		annotationType("java.lang.Deprecated", "RUNTIME",
			[]string{"CONSTRUCTOR", "FIELD", "LOCAL_VARIABLE", "METHOD", "PACKAGE", "MODULE", "PARAMETER", "TYPE"},
			ElementInfo{
				Name:    "since",
				Type:    Type{Name: "java.lang.String"},
				Default: &DefaultValue{Const: &classfile.ElementValue{Tag: 's'}},
			},
			ElementInfo{
				Name:    "forRemoval",
				Type:    Type{Name: "boolean"},
				Default: &DefaultValue{Const: &classfile.ElementValue{Tag: 'Z'}},
			}),
	)
	return infos
}

func builtin(name string, kind ClassKind) *TypeInfo {
	pkg, simple := splitClassName(name)
	return &TypeInfo{Name: name, SimpleName: simple, Package: pkg, Kind: kind, Origin: builtinOrigin}
}

func annotationType(name, retention string, targets []string, elements ...ElementInfo) *TypeInfo {
	info := builtin(name, ClassKindAnnotation)
	info.Retention = retention
	info.Targets = targets
	info.Elements = elements
	return info
}

// classOf returns `Class<? extends bound>`.
func classOf(bound string) Type {
	return Type{
		Name: "java.lang.Class",
		Args: []TypeArg{{Wildcard: true, Bound: "extends", Type: &Type{Name: bound}}},
	}
}
