package parser

import (
	"encoding/json"
	"strings"
)

type NodeKind int

const (
	KindError NodeKind = iota

	// Compilation unit level
	KindCompilationUnit
	KindPackageDecl
	KindImportDecl
	KindModuleImportDecl
	KindModuleDecl

	// Type declarations
	KindClassDecl
	KindInterfaceDecl
	KindEnumDecl
	KindRecordDecl
	KindAnnotationDecl

	// Members
	KindFieldDecl
	KindVariableDeclarator
	KindEnumConstant
	KindMethodDecl
	KindConstructorDecl
	KindReceiverParameter
	KindDefaultValue
	KindBody

	// Types and modifiers
	KindModifiers
	KindTypeParameters
	KindTypeParameter
	KindTypeArguments
	KindType
	KindArrayType
	KindWildcard
	KindDims
	KindAnnotation
	KindAnnotationElement
	KindExtendsClause
	KindImplementsClause
	KindPermitsClause
	KindParameters
	KindParameter
	KindThrowsList
	KindBlock

	// Expressions
	KindTernaryExpr
	KindBinaryExpr
	KindUnaryExpr
	KindPostfixExpr
	KindCastExpr
	KindInstanceofExpr
	KindCallExpr
	KindArguments
	KindMethodRef
	KindFieldAccess
	KindArrayAccess
	KindNewExpr
	KindArrayInit
	KindParenExpr
	KindLiteral
	KindIdentifier
	KindQualifiedName
	KindThis
	KindSuper
	KindClassLiteral
)

var nodeKindNames = map[NodeKind]string{
	KindError:              "Error",
	KindCompilationUnit:    "CompilationUnit",
	KindPackageDecl:        "PackageDecl",
	KindImportDecl:         "ImportDecl",
	KindModuleImportDecl:   "ModuleImportDecl",
	KindModuleDecl:         "ModuleDecl",
	KindClassDecl:          "ClassDecl",
	KindInterfaceDecl:      "InterfaceDecl",
	KindEnumDecl:           "EnumDecl",
	KindRecordDecl:         "RecordDecl",
	KindAnnotationDecl:     "AnnotationDecl",
	KindFieldDecl:          "FieldDecl",
	KindVariableDeclarator: "VariableDeclarator",
	KindEnumConstant:       "EnumConstant",
	KindMethodDecl:         "MethodDecl",
	KindConstructorDecl:    "ConstructorDecl",
	KindReceiverParameter:  "ReceiverParameter",
	KindDefaultValue:       "DefaultValue",
	KindBody:               "Body",
	KindModifiers:          "Modifiers",
	KindTypeParameters:     "TypeParameters",
	KindTypeParameter:      "TypeParameter",
	KindTypeArguments:      "TypeArguments",
	KindType:               "Type",
	KindArrayType:          "ArrayType",
	KindWildcard:           "Wildcard",
	KindDims:               "Dims",
	KindAnnotation:         "Annotation",
	KindAnnotationElement:  "AnnotationElement",
	KindExtendsClause:      "ExtendsClause",
	KindImplementsClause:   "ImplementsClause",
	KindPermitsClause:      "PermitsClause",
	KindParameters:         "Parameters",
	KindParameter:          "Parameter",
	KindThrowsList:         "ThrowsList",
	KindBlock:              "Block",
	KindTernaryExpr:        "TernaryExpr",
	KindBinaryExpr:         "BinaryExpr",
	KindUnaryExpr:          "UnaryExpr",
	KindPostfixExpr:        "PostfixExpr",
	KindCastExpr:           "CastExpr",
	KindInstanceofExpr:     "InstanceofExpr",
	KindCallExpr:           "CallExpr",
	KindArguments:          "Arguments",
	KindMethodRef:          "MethodRef",
	KindFieldAccess:        "FieldAccess",
	KindArrayAccess:        "ArrayAccess",
	KindNewExpr:            "NewExpr",
	KindArrayInit:          "ArrayInit",
	KindParenExpr:          "ParenExpr",
	KindLiteral:            "Literal",
	KindIdentifier:         "Identifier",
	KindQualifiedName:      "QualifiedName",
	KindThis:               "This",
	KindSuper:              "Super",
	KindClassLiteral:       "ClassLiteral",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsTypeDecl reports whether k is one of the five type declaration kinds.
func (k NodeKind) IsTypeDecl() bool {
	switch k {
	case KindClassDecl, KindInterfaceDecl, KindEnumDecl, KindRecordDecl, KindAnnotationDecl:
		return true
	}
	return false
}

type Error struct {
	Message  string
	Expected []TokenKind
	Got      *Token
}

// Node is one element of the syntax tree. Leaf nodes carry the token they
// were built from; error nodes carry an Error and take the place of the
// construct that failed to parse.
type Node struct {
	Kind     NodeKind
	Span     Span
	Children []*Node
	Token    *Token
	Error    *Error
}

func (n *Node) AddChild(child *Node) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

func (n *Node) IsError() bool {
	return n.Kind == KindError
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

func (n *Node) TokenLiteral() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// Walk calls fn for n and its descendants in depth-first order. Returning
// false from fn skips the children of that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Errors returns every error node in the tree rooted at n.
func (n *Node) Errors() []*Node {
	var errs []*Node
	n.Walk(func(node *Node) bool {
		if node.IsError() {
			errs = append(errs, node)
		}
		return true
	})
	return errs
}

// Text joins the identifiers of a name node: "a.b.C" for a qualified name
// or field access chain, the literal for an identifier.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindIdentifier, KindLiteral, KindThis, KindSuper:
		return n.TokenLiteral()
	case KindQualifiedName, KindFieldAccess:
		parts := make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			parts = append(parts, child.Text())
		}
		return strings.Join(parts, ".")
	}
	return ""
}

func (n *Node) String() string {
	var sb strings.Builder
	n.format(&sb, 0, false)
	return sb.String()
}

func (n *Node) StringWithPositions() string {
	var sb strings.Builder
	n.format(&sb, 0, true)
	return sb.String()
}

func (n *Node) format(sb *strings.Builder, indent int, positions bool) {
	sb.WriteString(strings.Repeat("  ", indent))
	sb.WriteString(n.Kind.String())
	if positions {
		sb.WriteString(" [" + n.Span.Start.String() + "-" + n.Span.End.String() + "]")
	}
	if n.Token != nil {
		sb.WriteString(" " + n.Token.Literal)
	}
	if n.Error != nil {
		sb.WriteString(" ERROR: " + n.Error.Message)
	}
	sb.WriteByte('\n')
	for _, child := range n.Children {
		child.format(sb, indent+1, positions)
	}
}

type jsonNode struct {
	Kind     string      `json:"kind"`
	Start    string      `json:"start,omitempty"`
	End      string      `json:"end,omitempty"`
	Token    string      `json:"token,omitempty"`
	Error    string      `json:"error,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON())
}

func (n *Node) toJSON() *jsonNode {
	jn := &jsonNode{Kind: n.Kind.String(), Token: n.TokenLiteral()}
	if n.Span.Start.Line != 0 {
		jn.Start = n.Span.Start.String()
		jn.End = n.Span.End.String()
	}
	if n.Error != nil {
		jn.Error = n.Error.Message
	}
	for _, child := range n.Children {
		jn.Children = append(jn.Children, child.toJSON())
	}
	return jn
}
