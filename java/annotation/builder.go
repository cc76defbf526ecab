package annotation

import (
	"github.com/dhamidi/annox/classfile"
	"github.com/dhamidi/annox/java"
	"github.com/dhamidi/annox/java/parser"
)

// DefaultMaxDepth bounds the nesting of arrays, parentheses and
// annotations inside one annotation.
const DefaultMaxDepth = 32

type settings struct {
	maxDepth int
}

type Option func(*settings)

// WithMaxDepth sets the nesting depth beyond which values are
// Unresolved.
func WithMaxDepth(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Builder builds annotation instances from syntax trees. A builder
// remembers name resolutions per source file and is meant to live for
// one scan; it is not safe for concurrent use.
type Builder struct {
	provider  java.Provider
	maxDepth  int
	resolvers map[*java.SourceContext]*Resolver
}

// NewBuilder returns a builder that looks types up in provider and then
// among the platform builtins.
func NewBuilder(provider java.Provider, opts ...Option) *Builder {
	s := newSettings(opts)
	return &Builder{
		provider:  java.Chain{provider, java.Builtins()},
		maxDepth:  s.maxDepth,
		resolvers: map[*java.SourceContext]*Resolver{},
	}
}

// Build builds the instance for an annotation written in the file
// described by ctx.
func (b *Builder) Build(node *parser.Node, ctx *java.SourceContext) *Instance {
	if node == nil || node.Kind != parser.KindAnnotation {
		return &Instance{Reason: "not an annotation"}
	}
	return b.build(node, b.resolver(ctx), 0)
}

// Evaluate evaluates one element value expression against the expected
// element type, written as in the file described by ctx. A zero expected
// type leaves literals typed by their own syntax.
func (b *Builder) Evaluate(node *parser.Node, expected java.Type, ctx *java.SourceContext) Value {
	r := b.resolver(ctx)
	return b.evaluate(node, r.ResolveType(expected), r, 0)
}

// Defaults returns the instance a bare use of the annotation type info
// would produce: every declared element at its default, elements
// without one unresolved.
func (b *Builder) Defaults(info *java.TypeInfo) *Instance {
	ref := TypeRef{Name: info.Name, Resolved: true}
	if !info.IsAnnotation() {
		return &Instance{Type: ref, Reason: info.Name + " is not an annotation type"}
	}
	return b.assemble(ref, info, "", "", nil, 0)
}

func (b *Builder) resolver(ctx *java.SourceContext) *Resolver {
	r, ok := b.resolvers[ctx]
	if !ok {
		r = NewResolver(ctx, b.provider)
		b.resolvers[ctx] = r
	}
	return r
}

// supplied is one element written at the use site, evaluated lazily
// once its declared type is known.
type supplied struct {
	name string
	eval func(expected TypeRef) Value
}

func (b *Builder) build(node *parser.Node, r *Resolver, depth int) *Instance {
	var name string
	if len(node.Children) > 0 {
		name = node.Children[0].Text()
	}
	ref, _ := r.Resolve(name)
	info, reason := b.annotationInfo(ref)

	var args []supplied
	var syntax string
	for _, child := range node.Children[min(1, len(node.Children)):] {
		switch child.Kind {
		case parser.KindAnnotationElement:
			var elemName string
			if len(child.Children) > 0 {
				elemName = child.Children[0].Text()
			}
			if elemName == "" {
				if syntax == "" {
					syntax = "syntax error: missing element name"
				}
				continue
			}
			var expr *parser.Node
			if len(child.Children) > 1 {
				expr = child.Children[1]
			}
			args = append(args, supplied{
				name: elemName,
				eval: func(exp TypeRef) Value { return b.evaluate(expr, exp, r, depth+1) },
			})
		case parser.KindError:
			if syntax == "" {
				syntax = syntaxError(child).Reason
			}
		default:
			args = append(args, supplied{
				name: "value",
				eval: func(exp TypeRef) Value { return b.evaluate(child, exp, r, depth+1) },
			})
		}
	}

	// Elements after a syntax error are lost; the ones left out must not
	// take their defaults.
	if syntax != "" {
		if reason != "" {
			reason = syntax + "; " + reason
		} else {
			reason = syntax
		}
	}
	inst := b.assemble(ref, info, reason, syntax, args, depth)
	inst.Span = node.Span
	return inst
}

// annotationInfo returns the metadata of an annotation type, or the
// reason it is not usable.
func (b *Builder) annotationInfo(ref TypeRef) (*java.TypeInfo, string) {
	switch {
	case ref.Name == "":
		return nil, "missing annotation type name"
	case !ref.Resolved:
		return nil, "cannot find annotation type " + ref.Name
	}
	info, ok := b.provider.Lookup(ref.Name)
	switch {
	case !ok || ref.ArrayDepth > 0:
		return nil, "no metadata for annotation type " + ref.Name
	case !info.IsAnnotation():
		return nil, ref.Name + " is not an annotation type"
	}
	return info, ""
}

// assemble matches supplied elements to the declared ones. Declared
// elements come first in declaration order, omitted ones filled from
// their defaults; supplied names the type does not declare follow in
// the order written. Without metadata every supplied element is kept
// and typed by its own syntax. When the argument list has a syntax
// error, declared elements that were not supplied are Unresolved with
// that error.
func (b *Builder) assemble(ref TypeRef, info *java.TypeInfo, reason, syntax string, args []supplied, depth int) *Instance {
	inst := &Instance{Type: ref, Reason: reason}
	counts := make(map[string]int, len(args))
	for _, arg := range args {
		counts[arg.name]++
	}
	lookup := func(name string) supplied {
		for _, arg := range args {
			if arg.name == name {
				return arg
			}
		}
		return supplied{}
	}

	declared := map[string]bool{}
	if info != nil {
		for _, e := range info.Elements {
			declared[e.Name] = true
			elem := Element{Name: e.Name}
			switch {
			case counts[e.Name] > 1:
				elem.Value = Unresolvedf("duplicate element %s", e.Name)
			case counts[e.Name] == 1:
				elem.Value = lookup(e.Name).eval(b.elementType(info, e))
			case syntax != "":
				elem.Value = Unresolved(syntax)
			case e.Default != nil:
				elem.Value = b.defaultValue(info, e, depth)
				elem.Defaulted = true
			default:
				elem.Value = Unresolved("missing required element")
			}
			inst.Elements = append(inst.Elements, elem)
		}
	}

	for _, arg := range args {
		if declared[arg.name] {
			continue
		}
		declared[arg.name] = true
		elem := Element{Name: arg.name}
		switch {
		case counts[arg.name] > 1:
			elem.Value = Unresolvedf("duplicate element %s", arg.name)
		case info != nil:
			elem.Value = Unresolvedf("annotation type %s does not declare element %s", ref.Name, arg.name)
		default:
			elem.Value = arg.eval(TypeRef{})
		}
		inst.Elements = append(inst.Elements, elem)
	}
	return inst
}

// elementType resolves the declared type of an element. Types declared
// in source are resolved in their own file; class file types are
// canonical already.
func (b *Builder) elementType(info *java.TypeInfo, e java.ElementInfo) TypeRef {
	if info.Source != nil {
		return b.resolver(info.Source).ResolveType(e.Type)
	}
	ref := TypeRef{Name: e.Type.Name, ArrayDepth: e.Type.ArrayDepth}
	if java.IsPrimitiveName(ref.Name) {
		ref.Resolved = true
	} else if _, ok := b.provider.Lookup(ref.Name); ok {
		ref.Resolved = true
	}
	return ref
}

func (b *Builder) defaultValue(info *java.TypeInfo, e java.ElementInfo, depth int) Value {
	switch {
	case e.Default.Expr != nil:
		r := b.resolver(info.Source)
		return b.evaluate(e.Default.Expr, b.elementType(info, e), r, depth+1)
	case e.Default.Const != nil:
		return b.fromConst(*e.Default.Const, depth+1)
	}
	return Unresolved("missing required element")
}

// fromConst converts a class file element value. The compiler has
// already typed and resolved it.
func (b *Builder) fromConst(ev classfile.ElementValue, depth int) Value {
	if depth > b.maxDepth {
		return Unresolvedf("nesting deeper than %d", b.maxDepth)
	}
	switch ev.Tag {
	case 'Z':
		return BooleanValue(ev.Int != 0)
	case 'B':
		return IntegralValue(KindByte, ev.Int)
	case 'S':
		return IntegralValue(KindShort, ev.Int)
	case 'I':
		return IntegralValue(KindInt, ev.Int)
	case 'J':
		return IntegralValue(KindLong, ev.Int)
	case 'C':
		return IntegralValue(KindChar, ev.Int)
	case 'F':
		return FloatingValue(KindFloat, ev.Float)
	case 'D':
		return FloatingValue(KindDouble, ev.Float)
	case 's':
		return StringValue(ev.String)
	case 'c':
		ft, err := classfile.ParseFieldDescriptor(ev.String)
		if err != nil {
			return Unresolved(err.Error())
		}
		return ClassValue(TypeRef{Name: ft.SourceName(), ArrayDepth: ft.ArrayDepth, Resolved: true}, "")
	case 'e':
		ft, err := classfile.ParseFieldDescriptor(ev.String)
		if err != nil {
			return Unresolved(err.Error())
		}
		return EnumValue(TypeRef{Name: ft.SourceName(), Resolved: true}, ev.EnumConst)
	case '@':
		if ev.Annotation == nil {
			return Unresolved("missing annotation")
		}
		return AnnotationValue(b.fromClassFileAnnotation(ev.Annotation, depth+1))
	case '[':
		elems := make([]Value, 0, len(ev.Values))
		for _, v := range ev.Values {
			elems = append(elems, b.fromConst(v, depth+1))
		}
		return ArrayValue(elems...)
	}
	return Unresolvedf("unknown element value tag %q", ev.Tag)
}

func (b *Builder) fromClassFileAnnotation(ann *classfile.Annotation, depth int) *Instance {
	ref := TypeRef{Name: java.DescriptorTypeName(ann.Type)}
	if _, ok := b.provider.Lookup(ref.Name); ok {
		ref.Resolved = true
	}
	info, reason := b.annotationInfo(ref)
	args := make([]supplied, 0, len(ann.Elements))
	for _, pair := range ann.Elements {
		args = append(args, supplied{
			name: pair.Name,
			eval: func(TypeRef) Value { return b.fromConst(pair.Value, depth+1) },
		})
	}
	return b.assemble(ref, info, reason, "", args, depth)
}
