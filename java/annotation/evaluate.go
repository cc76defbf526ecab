package annotation

import (
	"github.com/dhamidi/annox/java"
	"github.com/dhamidi/annox/java/parser"
)

// evaluate turns an element value expression into a Value of the
// expected type. A zero expected type means the element type is unknown.
func (b *Builder) evaluate(node *parser.Node, exp TypeRef, r *Resolver, depth int) Value {
	if node == nil {
		return Unresolved("missing value")
	}
	if depth > b.maxDepth {
		return Unresolvedf("nesting deeper than %d", b.maxDepth)
	}
	if exp.ArrayDepth > 0 && node.Kind != parser.KindArrayInit && node.Kind != parser.KindError {
		return ArrayValue(b.evaluate(node, exp.Component(), r, depth))
	}

	switch node.Kind {
	case parser.KindLiteral, parser.KindUnaryExpr:
		return constant(node, exp)
	case parser.KindParenExpr:
		if len(node.Children) == 0 {
			return Unresolved("syntax error: empty parentheses")
		}
		return b.evaluate(node.Children[0], exp, r, depth+1)
	case parser.KindArrayInit:
		return b.arrayInit(node, exp, r, depth)
	case parser.KindClassLiteral:
		return classLiteral(node, exp, r)
	case parser.KindIdentifier, parser.KindFieldAccess, parser.KindQualifiedName:
		return enumConstant(node, exp, r)
	case parser.KindAnnotation:
		return b.nested(node, exp, r, depth)
	case parser.KindError:
		return syntaxError(node)
	case parser.KindBinaryExpr, parser.KindTernaryExpr, parser.KindCastExpr,
		parser.KindPostfixExpr, parser.KindInstanceofExpr:
		return Unresolved("non-constant expression")
	}
	return Unresolved("unsupported expression kind " + node.Kind.String())
}

func (b *Builder) arrayInit(node *parser.Node, exp TypeRef, r *Resolver, depth int) Value {
	if !exp.IsZero() && exp.ArrayDepth == 0 {
		return Unresolvedf("illegal initializer for %s", exp)
	}
	component := exp.Component()
	elems := make([]Value, 0, len(node.Children))
	for _, child := range node.Children {
		elems = append(elems, b.evaluate(child, component, r, depth+1))
	}
	return ArrayValue(elems...)
}

// constant evaluates a literal under any number of signs and
// parentheses. The sign is applied before the range check so that the
// most negative int and long are legal.
func constant(node *parser.Node, exp TypeRef) Value {
	operand, negative, signed := foldSigns(node)
	switch {
	case operand == nil:
		return Unresolved("missing value")
	case operand.IsError():
		return syntaxError(operand)
	case operand.Kind != parser.KindLiteral || operand.Token == nil:
		return Unresolved("non-constant expression")
	}
	if signed && operand.Token.Kind != parser.TokenIntLiteral && operand.Token.Kind != parser.TokenFloatLiteral {
		return Unresolved("non-constant expression")
	}
	lit, err := parseLiteral(operand.Token, negative)
	if err != nil {
		return Unresolved(err.Error())
	}
	return convertLiteral(lit, exp)
}

func foldSigns(node *parser.Node) (operand *parser.Node, negative, signed bool) {
	for node != nil {
		switch node.Kind {
		case parser.KindParenExpr:
			if len(node.Children) == 0 {
				return nil, negative, signed
			}
			node = node.Children[0]
		case parser.KindUnaryExpr:
			op := ""
			if len(node.Children) == 2 {
				op = node.Children[0].TokenLiteral()
			}
			if op != "-" && op != "+" {
				return node, negative, signed
			}
			negative = negative != (op == "-")
			signed = true
			node = node.Children[1]
		default:
			return node, negative, signed
		}
	}
	return nil, negative, signed
}

func classLiteral(node *parser.Node, exp TypeRef, r *Resolver) Value {
	if !exp.IsZero() && (exp.Name != "java.lang.Class" || exp.ArrayDepth > 0) {
		return incompatible("Class", exp.String())
	}
	if len(node.Children) == 0 {
		return Unresolved("syntax error: missing class literal type")
	}
	target := node.Children[0]
	dims := 0
	for target.Kind == parser.KindArrayType && len(target.Children) > 0 {
		dims++
		target = target.Children[0]
	}
	var name string
	switch target.Kind {
	case parser.KindType:
		name = java.TypeFromNode(target).Name
	case parser.KindIdentifier, parser.KindFieldAccess, parser.KindQualifiedName:
		name = target.Text()
	case parser.KindError:
		return syntaxError(target)
	default:
		return Unresolved("non-constant expression")
	}
	ref, ok := r.Resolve(name)
	ref.ArrayDepth += dims
	if !ok {
		return ClassValue(ref, "cannot find symbol "+name)
	}
	return ClassValue(ref, "")
}

// enumConstant evaluates a name. Names are only constant as enum
// constants; the trailing identifier is the constant.
func enumConstant(node *parser.Node, exp TypeRef, r *Resolver) Value {
	text := node.Text()
	switch {
	case exp.IsZero():
		return Unresolvedf("cannot resolve %s without a known element type", text)
	case exp.isPrimitive(), exp.Name == "java.lang.String", exp.Name == "java.lang.Class":
		return Unresolvedf("cannot evaluate %s as a constant of type %s", text, exp)
	}
	if info, ok := r.Lookup(exp); ok && !info.IsEnum() {
		return Unresolvedf("%s is not an enum type", exp)
	}
	return EnumValue(exp, lastSegment(text))
}

func (b *Builder) nested(node *parser.Node, exp TypeRef, r *Resolver, depth int) Value {
	if !exp.IsZero() {
		if exp.isPrimitive() || exp.Name == "java.lang.String" || exp.Name == "java.lang.Class" {
			return incompatible("annotation", exp.String())
		}
		if info, ok := r.Lookup(exp); ok && !info.IsAnnotation() {
			return incompatible("annotation", exp.String())
		}
	}
	inst := b.build(node, r, depth+1)
	if exp.Resolved && inst.Type.Resolved && inst.Type.Name != exp.Name {
		return incompatible(inst.Type.Name, exp.Name)
	}
	return AnnotationValue(inst)
}

func syntaxError(node *parser.Node) Value {
	if node.Error == nil {
		return Unresolved("syntax error")
	}
	return Unresolved("syntax error: " + node.Error.Message)
}
