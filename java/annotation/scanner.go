package annotation

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dhamidi/annox/java"
	"github.com/dhamidi/annox/java/parser"
)

var (
	ErrNoCompilationUnit   = errors.New("not a compilation unit")
	ErrDeclarationNotFound = errors.New("declaration not found")
)

type DeclKind string

const (
	DeclPackage         DeclKind = "package"
	DeclModule          DeclKind = "module"
	DeclType            DeclKind = "type"
	DeclField           DeclKind = "field"
	DeclEnumConstant    DeclKind = "enum constant"
	DeclRecordComponent DeclKind = "record component"
	DeclMethod          DeclKind = "method"
	DeclElement         DeclKind = "annotation element"
	DeclConstructor     DeclKind = "constructor"
	DeclParameter       DeclKind = "parameter"
)

// Declaration is one annotatable declaration of a compilation unit.
//
// Keys identify declarations within a scan:
//
//	com.example.Outer.Inner         type
//	com.example.Outer#count         field, enum constant, record component
//	com.example.Outer#run(int,T...) method, types as written
//	com.example.Config#name()       annotation element
//	com.example.Outer#Outer(int)    constructor
//	com.example.Outer#run(int)/0    parameter, by position
//	com.example                     package
//	module com.example.app          module
type Declaration struct {
	Kind DeclKind
	// Name is the simple name; packages and modules use their full name.
	Name      string
	Key       string
	Enclosing string
	// Type is the declared type of a field, parameter, record component,
	// enum constant or annotation element, the return type of a method
	// and the declared type itself for type declarations.
	Type     TypeRef
	TypeKind java.ClassKind
	File     string
	Span     parser.Span
}

// Scanner walks compilation units and builds the annotations of every
// declaration. A scanner holds no per-scan state and may be shared.
type Scanner struct {
	provider java.Provider
	opts     []Option
}

func NewScanner(provider java.Provider, opts ...Option) *Scanner {
	return &Scanner{provider: provider, opts: opts}
}

// Scan returns the declarations of cu with their annotation instances in
// source order, enclosing declarations before their members. Instances
// are built as the sequence is consumed and every iteration starts
// afresh, so ranging twice over the result gives equal values. Types
// declared in cu take precedence over the scanner's provider.
func (s *Scanner) Scan(cu *parser.Node) (iter.Seq2[Declaration, []*Instance], error) {
	if cu == nil || cu.Kind != parser.KindCompilationUnit {
		return nil, ErrNoCompilationUnit
	}
	return func(yield func(Declaration, []*Instance) bool) {
		ctx := java.ContextFromCompilationUnit(cu, cu.Span.Start.File)
		local := java.NewRegistry(java.TypesInContext(cu, ctx)...)
		b := NewBuilder(java.Chain{local, s.provider}, s.opts...)
		w := &walker{builder: b, resolver: b.resolver(ctx), ctx: ctx, yield: yield}
		w.compilationUnit(cu)
	}, nil
}

// Find returns the declaration with the given key.
func (s *Scanner) Find(cu *parser.Node, key string) (Declaration, []*Instance, error) {
	seq, err := s.Scan(cu)
	if err != nil {
		return Declaration{}, nil, err
	}
	for decl, instances := range seq {
		if decl.Key == key {
			return decl, instances, nil
		}
	}
	return Declaration{}, nil, fmt.Errorf("%w: %s", ErrDeclarationNotFound, key)
}

type walker struct {
	builder  *Builder
	resolver *Resolver
	ctx      *java.SourceContext
	yield    func(Declaration, []*Instance) bool
}

// emit yields decl with the annotations found in the modifiers of owner.
// It returns false once the consumer has stopped.
func (w *walker) emit(decl Declaration, owner *parser.Node, span parser.Span) bool {
	decl.File = w.ctx.File
	decl.Span = span
	return w.yield(decl, w.annotations(owner))
}

func (w *walker) annotations(owner *parser.Node) []*Instance {
	mods := owner.FirstChildOfKind(parser.KindModifiers)
	if mods == nil {
		return nil
	}
	var instances []*Instance
	for _, ann := range mods.ChildrenOfKind(parser.KindAnnotation) {
		instances = append(instances, w.builder.build(ann, w.resolver, 0))
	}
	return instances
}

func (w *walker) compilationUnit(cu *parser.Node) {
	for _, child := range cu.Children {
		ok := true
		switch {
		case child.Kind == parser.KindPackageDecl:
			name := child.FirstChildOfKind(parser.KindQualifiedName).Text()
			ok = w.emit(Declaration{Kind: DeclPackage, Name: name, Key: name}, child, child.Span)
		case child.Kind == parser.KindModuleDecl:
			name := child.FirstChildOfKind(parser.KindQualifiedName).Text()
			ok = w.emit(Declaration{Kind: DeclModule, Name: name, Key: "module " + name}, child, child.Span)
		case child.Kind.IsTypeDecl():
			ok = w.typeDecl(child, w.ctx.Qualify(java.TypeDeclName(child)), "")
		}
		if !ok {
			return
		}
	}
}

func (w *walker) typeDecl(decl *parser.Node, qualified, enclosing string) bool {
	name := java.TypeDeclName(decl)
	if name == "" {
		return true
	}
	d := Declaration{
		Kind:      DeclType,
		Name:      name,
		Key:       qualified,
		Enclosing: enclosing,
		Type:      TypeRef{Name: qualified, Resolved: true},
		TypeKind:  java.KindOfDecl(decl.Kind),
	}
	if !w.emit(d, decl, decl.Span) {
		return false
	}

	// The canonical constructor signature of a record is that of its
	// components.
	var components []*parser.Node
	if decl.Kind == parser.KindRecordDecl {
		if params := decl.FirstChildOfKind(parser.KindParameters); params != nil {
			components = params.ChildrenOfKind(parser.KindParameter)
		}
		for _, c := range components {
			p := parameterOf(c)
			if p.name == "" {
				continue
			}
			component := Declaration{
				Kind:      DeclRecordComponent,
				Name:      p.name,
				Key:       qualified + "#" + p.name,
				Enclosing: qualified,
				Type:      w.resolver.ResolveType(p.typ),
			}
			if !w.emit(component, c, c.Span) {
				return false
			}
		}
	}

	body := java.TypeDeclBody(decl)
	if body == nil {
		return true
	}
	enumType := TypeRef{Name: qualified, Resolved: true}
	for _, member := range body.Children {
		ok := true
		switch member.Kind {
		case parser.KindFieldDecl:
			ok = w.field(member, qualified)
		case parser.KindEnumConstant:
			constant := member.FirstChildOfKind(parser.KindIdentifier).Text()
			if constant == "" {
				continue
			}
			ok = w.emit(Declaration{
				Kind:      DeclEnumConstant,
				Name:      constant,
				Key:       qualified + "#" + constant,
				Enclosing: qualified,
				Type:      enumType,
			}, member, member.Span)
		case parser.KindMethodDecl:
			ok = w.method(member, qualified, decl.Kind == parser.KindAnnotationDecl)
		case parser.KindConstructorDecl:
			ok = w.constructor(member, qualified, components)
		default:
			if member.Kind.IsTypeDecl() {
				ok = w.typeDecl(member, qualified+"."+java.TypeDeclName(member), qualified)
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func (w *walker) field(decl *parser.Node, enclosing string) bool {
	var typ java.Type
	for _, child := range decl.Children {
		if child.Kind == parser.KindType || child.Kind == parser.KindArrayType {
			typ = java.TypeFromNode(child)
			break
		}
	}
	for _, declarator := range decl.ChildrenOfKind(parser.KindVariableDeclarator) {
		name := declarator.FirstChildOfKind(parser.KindIdentifier).Text()
		if name == "" {
			continue
		}
		t := typ
		t.ArrayDepth += len(declarator.ChildrenOfKind(parser.KindDims))
		d := Declaration{
			Kind:      DeclField,
			Name:      name,
			Key:       enclosing + "#" + name,
			Enclosing: enclosing,
			Type:      w.resolver.ResolveType(t),
		}
		if !w.emit(d, decl, declarator.Span) {
			return false
		}
	}
	return true
}

func (w *walker) method(decl *parser.Node, enclosing string, element bool) bool {
	var returnType java.Type
	for _, child := range decl.Children {
		if child.Kind == parser.KindType || child.Kind == parser.KindArrayType {
			returnType = java.TypeFromNode(child)
			break
		}
	}
	name := decl.FirstChildOfKind(parser.KindIdentifier).Text()
	if name == "" {
		return true
	}
	params := parametersOf(decl.FirstChildOfKind(parser.KindParameters))
	d := Declaration{
		Kind:      DeclMethod,
		Name:      name,
		Key:       enclosing + "#" + name + signature(params),
		Enclosing: enclosing,
		Type:      w.resolver.ResolveType(returnType),
	}
	if element {
		d.Kind = DeclElement
	}
	if !w.emit(d, decl, decl.Span) {
		return false
	}
	return w.parameters(params, d.Key)
}

func (w *walker) constructor(decl *parser.Node, enclosing string, components []*parser.Node) bool {
	name := decl.FirstChildOfKind(parser.KindIdentifier).Text()
	if name == "" {
		return true
	}
	paramList := decl.FirstChildOfKind(parser.KindParameters)
	var params []parameter
	if paramList != nil {
		params = parametersOf(paramList)
	} else {
		for _, c := range components {
			params = append(params, parameterOf(c))
		}
	}
	d := Declaration{
		Kind:      DeclConstructor,
		Name:      name,
		Key:       enclosing + "#" + name + signature(params),
		Enclosing: enclosing,
	}
	if !w.emit(d, decl, decl.Span) {
		return false
	}
	if paramList == nil {
		return true
	}
	return w.parameters(params, d.Key)
}

func (w *walker) parameters(params []parameter, enclosing string) bool {
	for i, p := range params {
		d := Declaration{
			Kind:      DeclParameter,
			Name:      p.name,
			Key:       fmt.Sprintf("%s/%d", enclosing, i),
			Enclosing: enclosing,
			Type:      w.resolver.ResolveType(p.typ),
		}
		if !w.emit(d, p.node, p.node.Span) {
			return false
		}
	}
	return true
}

type parameter struct {
	node    *parser.Node
	name    string
	typ     java.Type
	varargs bool
}

// parametersOf lists the formal parameters of a parameter list; the
// receiver parameter is not one of them.
func parametersOf(list *parser.Node) []parameter {
	if list == nil {
		return nil
	}
	var params []parameter
	for _, child := range list.ChildrenOfKind(parser.KindParameter) {
		params = append(params, parameterOf(child))
	}
	return params
}

func parameterOf(node *parser.Node) parameter {
	p := parameter{node: node}
	for _, child := range node.Children {
		switch child.Kind {
		case parser.KindType, parser.KindArrayType:
			p.typ = java.TypeFromNode(child)
		case parser.KindIdentifier:
			if child.TokenLiteral() == "..." {
				p.varargs = true
			} else {
				p.name = child.TokenLiteral()
			}
		case parser.KindDims:
			p.typ.ArrayDepth++
		}
	}
	if p.varargs {
		p.typ.ArrayDepth++
	}
	return p
}

// signature renders parameter types as written, without type arguments.
func signature(params []parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		depth := p.typ.ArrayDepth
		suffix := ""
		if p.varargs {
			depth--
			suffix = "..."
		}
		parts[i] = p.typ.Name + strings.Repeat("[]", depth) + suffix
	}
	return "(" + strings.Join(parts, ",") + ")"
}
