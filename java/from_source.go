package java

import (
	"strings"

	"github.com/dhamidi/annox/java/parser"
)

// TypesFromSource returns metadata for every type declared in a parsed
// compilation unit, nested types included, in source order.
func TypesFromSource(cu *parser.Node, file string) []*TypeInfo {
	if cu == nil {
		return nil
	}
	return TypesInContext(cu, ContextFromCompilationUnit(cu, file))
}

// TypesInContext is TypesFromSource for a file whose context has already
// been collected. The returned types share ctx.
func TypesInContext(cu *parser.Node, ctx *SourceContext) []*TypeInfo {
	var origin URLString
	if ctx.File != "" {
		origin = FileURL(ctx.File)
	}

	var infos []*TypeInfo
	var collect func(decl *parser.Node, qualified string)
	collect = func(decl *parser.Node, qualified string) {
		info := typeInfoFromDecl(decl, qualified, ctx)
		info.Origin = origin
		infos = append(infos, info)
		body := TypeDeclBody(decl)
		if body == nil {
			return
		}
		for _, member := range body.Children {
			if member.Kind.IsTypeDecl() && TypeDeclName(member) != "" {
				collect(member, qualified+"."+TypeDeclName(member))
			}
		}
	}
	for _, decl := range cu.Children {
		if decl.Kind.IsTypeDecl() && TypeDeclName(decl) != "" {
			collect(decl, ctx.Qualify(TypeDeclName(decl)))
		}
	}
	return infos
}

// KindOfDecl maps a type declaration node kind to a ClassKind.
func KindOfDecl(kind parser.NodeKind) ClassKind {
	switch kind {
	case parser.KindInterfaceDecl:
		return ClassKindInterface
	case parser.KindEnumDecl:
		return ClassKindEnum
	case parser.KindRecordDecl:
		return ClassKindRecord
	case parser.KindAnnotationDecl:
		return ClassKindAnnotation
	}
	return ClassKindClass
}

func typeInfoFromDecl(decl *parser.Node, qualified string, ctx *SourceContext) *TypeInfo {
	info := &TypeInfo{
		Name:       qualified,
		SimpleName: TypeDeclName(decl),
		Package:    ctx.Package,
		Kind:       KindOfDecl(decl.Kind),
		Source:     ctx,
	}
	body := TypeDeclBody(decl)

	switch decl.Kind {
	case parser.KindAnnotationDecl:
		if body != nil {
			for _, method := range body.ChildrenOfKind(parser.KindMethodDecl) {
				info.Elements = append(info.Elements, elementFromMethod(method))
			}
		}
		info.Retention, info.Targets = metaAnnotations(decl.FirstChildOfKind(parser.KindModifiers))
	case parser.KindEnumDecl:
		if body != nil {
			for _, constant := range body.ChildrenOfKind(parser.KindEnumConstant) {
				if name := constant.FirstChildOfKind(parser.KindIdentifier).Text(); name != "" {
					info.EnumConstants = append(info.EnumConstants, name)
				}
			}
		}
	}
	return info
}

func elementFromMethod(method *parser.Node) ElementInfo {
	var elem ElementInfo
	for _, child := range method.Children {
		switch child.Kind {
		case parser.KindType, parser.KindArrayType:
			elem.Type = TypeFromNode(child)
		case parser.KindIdentifier:
			elem.Name = child.TokenLiteral()
		case parser.KindDefaultValue:
			if len(child.Children) > 0 {
				elem.Default = &DefaultValue{Expr: child.Children[0]}
			}
		}
	}
	return elem
}

// metaAnnotations reads @Retention and @Target from the modifiers of an
// annotation type declaration. Only the constant names are kept.
func metaAnnotations(modifiers *parser.Node) (retention string, targets []string) {
	if modifiers == nil {
		return "", nil
	}
	for _, ann := range modifiers.ChildrenOfKind(parser.KindAnnotation) {
		name := ann.FirstChildOfKind(parser.KindQualifiedName).Text()
		values := constantNames(annotationValue(ann))
		switch name {
		case "Retention", "java.lang.annotation.Retention":
			if len(values) == 1 {
				retention = values[0]
			}
		case "Target", "java.lang.annotation.Target":
			targets = values
		}
	}
	return retention, targets
}

// annotationValue returns the expression of the `value` element of an
// annotation node, written either as shorthand or as `value = ...`.
func annotationValue(ann *parser.Node) *parser.Node {
	for _, child := range ann.Children[1:] {
		switch child.Kind {
		case parser.KindAnnotationElement:
			if len(child.Children) == 2 && child.Children[0].Text() == "value" {
				return child.Children[1]
			}
		case parser.KindQualifiedName, parser.KindError:
		default:
			return child
		}
	}
	return nil
}

func constantNames(expr *parser.Node) []string {
	if expr == nil {
		return nil
	}
	switch expr.Kind {
	case parser.KindArrayInit:
		var names []string
		for _, child := range expr.Children {
			names = append(names, constantNames(child)...)
		}
		return names
	case parser.KindIdentifier, parser.KindFieldAccess:
		text := expr.Text()
		return []string{text[strings.LastIndex(text, ".")+1:]}
	}
	return nil
}
