package java

import "github.com/dhamidi/annox/java/parser"

// ContextFromCompilationUnit collects the package, imports and declared
// types of a parsed source file.
func ContextFromCompilationUnit(cu *parser.Node, file string) *SourceContext {
	ctx := &SourceContext{File: file, Locals: map[string]string{}}
	if cu == nil {
		return ctx
	}
	if pkg := cu.FirstChildOfKind(parser.KindPackageDecl); pkg != nil {
		ctx.Package = pkg.FirstChildOfKind(parser.KindQualifiedName).Text()
	}
	for _, decl := range cu.ChildrenOfKind(parser.KindImportDecl) {
		if imp, ok := importFromNode(decl); ok {
			ctx.Imports = append(ctx.Imports, imp)
		}
	}

	var nested [][2]string
	for _, decl := range cu.Children {
		if !decl.Kind.IsTypeDecl() {
			continue
		}
		name := TypeDeclName(decl)
		if name == "" {
			continue
		}
		qualified := ctx.Qualify(name)
		ctx.Locals[name] = qualified
		walkMemberTypes(decl, qualified, func(simple, full string) {
			nested = append(nested, [2]string{simple, full})
		})
	}
	for _, n := range nested {
		if _, ok := ctx.Locals[n[0]]; !ok {
			ctx.Locals[n[0]] = n[1]
		}
	}
	return ctx
}

func importFromNode(decl *parser.Node) (Import, bool) {
	var imp Import
	for _, child := range decl.Children {
		switch child.Kind {
		case parser.KindIdentifier:
			switch child.TokenLiteral() {
			case "static":
				imp.Static = true
			case "*":
				imp.Wildcard = true
			}
		case parser.KindQualifiedName:
			imp.Name = child.Text()
		}
	}
	return imp, imp.Name != ""
}

// TypeDeclName returns the simple name of a type declaration node.
func TypeDeclName(decl *parser.Node) string {
	return decl.FirstChildOfKind(parser.KindIdentifier).Text()
}

// TypeDeclBody returns the block holding the members of a type
// declaration.
func TypeDeclBody(decl *parser.Node) *parser.Node {
	return decl.FirstChildOfKind(parser.KindBlock)
}

// walkMemberTypes calls fn for every type nested in decl, depth first.
func walkMemberTypes(decl *parser.Node, qualified string, fn func(simple, full string)) {
	body := TypeDeclBody(decl)
	if body == nil {
		return
	}
	for _, member := range body.Children {
		if !member.Kind.IsTypeDecl() {
			continue
		}
		name := TypeDeclName(member)
		if name == "" {
			continue
		}
		full := qualified + "." + name
		fn(name, full)
		walkMemberTypes(member, full, fn)
	}
}
