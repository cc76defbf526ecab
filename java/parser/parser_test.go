package parser

import (
	"strings"
	"testing"
)

func parseUnit(t *testing.T, src string) *Node {
	t.Helper()
	node := ParseCompilationUnit(strings.NewReader(src), WithFile("Test.java")).Finish()
	if node == nil {
		t.Fatalf("Expected a compilation unit, got nil")
	}
	if errs := node.Errors(); len(errs) > 0 {
		t.Fatalf("Expected no errors, got %d:\n%s", len(errs), node.String())
	}
	return node
}

func findFirst(root *Node, kind NodeKind) *Node {
	var found *Node
	root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Kind == kind {
			found = n
			return false
		}
		return true
	})
	return found
}

func TestParseCompilationUnitStructure(t *testing.T) {
	src := `
package com.example;

import java.util.List;
import static java.util.Collections.*;
import com.example.other.*;

@Entity(name = "users")
public class User extends Base implements Serializable, Comparable<User> {
    @Id
    private long id;

    @Column(length = 10) String first, last;

    static { init(); }

    public User(@NotNull String name) {
        this.name = name;
    }

    @Override
    public <T extends Comparable<T>> List<T> sorted(final T... items) throws Exception {
        return items == null ? List.of() : List.of(items);
    }

    enum Kind { A, B }
}
`
	cu := parseUnit(t, src)

	pkg := cu.FirstChildOfKind(KindPackageDecl)
	if pkg == nil {
		t.Fatal("Expected package declaration")
	}
	if got := pkg.FirstChildOfKind(KindQualifiedName).Text(); got != "com.example" {
		t.Errorf("Expected package com.example, got %q", got)
	}

	imports := cu.ChildrenOfKind(KindImportDecl)
	if len(imports) != 3 {
		t.Fatalf("Expected 3 imports, got %d", len(imports))
	}
	if got := imports[1].Children[0].TokenLiteral(); got != "static" {
		t.Errorf("Expected static import marker, got %q", got)
	}
	if got := imports[2].Children[len(imports[2].Children)-1].TokenLiteral(); got != "*" {
		t.Errorf("Expected wildcard marker, got %q", got)
	}

	class := cu.FirstChildOfKind(KindClassDecl)
	if class == nil {
		t.Fatal("Expected class declaration")
	}
	if got := class.FirstChildOfKind(KindIdentifier).TokenLiteral(); got != "User" {
		t.Errorf("Expected class User, got %q", got)
	}
	if class.FirstChildOfKind(KindExtendsClause) == nil || class.FirstChildOfKind(KindImplementsClause) == nil {
		t.Error("Expected extends and implements clauses")
	}

	body := class.FirstChildOfKind(KindBlock)
	fields := body.ChildrenOfKind(KindFieldDecl)
	if len(fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(fields))
	}
	if got := len(fields[1].ChildrenOfKind(KindVariableDeclarator)); got != 2 {
		t.Errorf("Expected 2 declarators, got %d", got)
	}
	if got := len(body.ChildrenOfKind(KindConstructorDecl)); got != 1 {
		t.Errorf("Expected 1 constructor, got %d", got)
	}
	methods := body.ChildrenOfKind(KindMethodDecl)
	if len(methods) != 1 {
		t.Fatalf("Expected 1 method, got %d", len(methods))
	}
	params := methods[0].FirstChildOfKind(KindParameters).ChildrenOfKind(KindParameter)
	if len(params) != 1 {
		t.Fatalf("Expected 1 parameter, got %d", len(params))
	}
	if body.FirstChildOfKind(KindEnumDecl) == nil {
		t.Error("Expected nested enum")
	}
}

func TestParseAnnotationForms(t *testing.T) {
	tests := []struct {
		input    string
		elements int
		bare     NodeKind
	}{
		{"@Marker", 0, -1},
		{"@Empty()", 0, -1},
		{"@Single(42)", 0, KindLiteral},
		{"@Single({1, 2, 3})", 0, KindArrayInit},
		{"@Single(@Nested)", 0, KindAnnotation},
		{"@Pairs(a = 1, b = \"x\")", 2, -1},
		{"@com.example.Qualified(type = String.class)", 1, -1},
		{"@Trailing(values = {1, 2,})", 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node := ParseAnnotation(strings.NewReader(tt.input)).Finish()
			if node == nil || node.Kind != KindAnnotation {
				t.Fatalf("Expected annotation, got %v", node)
			}
			if errs := node.Errors(); len(errs) > 0 {
				t.Fatalf("Expected no errors, got:\n%s", node.String())
			}
			if got := len(node.ChildrenOfKind(KindAnnotationElement)); got != tt.elements {
				t.Errorf("Expected %d elements, got %d", tt.elements, got)
			}
			if tt.bare >= 0 {
				if len(node.Children) != 2 || node.Children[1].Kind != tt.bare {
					t.Errorf("Expected bare value of kind %v, got:\n%s", tt.bare, node.String())
				}
			}
		})
	}
}

func TestParseExpressionKinds(t *testing.T) {
	tests := []struct {
		input string
		kind  NodeKind
	}{
		{"42", KindLiteral},
		{"\"s\"", KindLiteral},
		{"x", KindIdentifier},
		{"Color.RED", KindFieldAccess},
		{"a.b.Color.RED", KindFieldAccess},
		{"-5", KindUnaryExpr},
		{"-(5)", KindUnaryExpr},
		{"1 + 2", KindBinaryExpr},
		{"a ? b : c", KindTernaryExpr},
		{"(int) 3L", KindCastExpr},
		{"(5)", KindParenExpr},
		{"String.class", KindClassLiteral},
		{"int.class", KindClassLiteral},
		{"void.class", KindClassLiteral},
		{"String[][].class", KindClassLiteral},
		{"java.util.List.class", KindClassLiteral},
		{"foo()", KindCallExpr},
		{"new Object()", KindNewExpr},
		{"{}", KindArrayInit},
		{"@Inner(x = 1)", KindAnnotation},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node := ParseExpression(strings.NewReader(tt.input)).Finish()
			if node == nil {
				t.Fatal("Expected node, got nil")
			}
			if node.Kind != tt.kind {
				t.Errorf("Expected %v, got %v:\n%s", tt.kind, node.Kind, node.String())
			}
		})
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	node := ParseExpression(strings.NewReader("1 + 2 * 3")).Finish()
	if node.Kind != KindBinaryExpr {
		t.Fatalf("Expected BinaryExpr, got %v", node.Kind)
	}
	if got := node.Children[1].TokenLiteral(); got != "+" {
		t.Errorf("Expected '+' at the root, got %q", got)
	}
	if node.Children[2].Kind != KindBinaryExpr {
		t.Errorf("Expected multiplication on the right, got %v", node.Children[2].Kind)
	}
}

func TestParseClassLiteralShapes(t *testing.T) {
	tests := []struct {
		input string
		depth int
		name  string
	}{
		{"String.class", 0, "String"},
		{"java.lang.String.class", 0, "java.lang.String"},
		{"int[].class", 1, "int"},
		{"Foo[][].class", 2, "Foo"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node := ParseExpression(strings.NewReader(tt.input)).Finish()
			if node == nil || node.Kind != KindClassLiteral {
				t.Fatalf("Expected ClassLiteral, got %v", node)
			}
			target := node.Children[0]
			depth := 0
			for target.Kind == KindArrayType {
				depth++
				target = target.Children[0]
			}
			if depth != tt.depth {
				t.Errorf("Expected depth %d, got %d", tt.depth, depth)
			}
			name := target.Text()
			if target.Kind == KindType {
				name = target.Children[0].Text()
			}
			if name != tt.name {
				t.Errorf("Expected %q, got %q", tt.name, name)
			}
		})
	}
}

func TestParseAnnotationTypeDefaults(t *testing.T) {
	src := `
package p;

public @interface Config {
    String name();
    int size() default 0x10;
    Class<?>[] types() default {};
    Level level() default Level.HIGH;
    Nested nested() default @Nested(x = 1);
    String CONSTANT = "c";
}
`
	cu := parseUnit(t, src)
	decl := cu.FirstChildOfKind(KindAnnotationDecl)
	if decl == nil {
		t.Fatal("Expected annotation declaration")
	}
	methods := decl.FirstChildOfKind(KindBlock).ChildrenOfKind(KindMethodDecl)
	if len(methods) != 5 {
		t.Fatalf("Expected 5 elements, got %d", len(methods))
	}
	if methods[0].FirstChildOfKind(KindDefaultValue) != nil {
		t.Error("Expected no default for name()")
	}
	want := []NodeKind{KindLiteral, KindArrayInit, KindFieldAccess, KindAnnotation}
	for i, kind := range want {
		def := methods[i+1].FirstChildOfKind(KindDefaultValue)
		if def == nil {
			t.Fatalf("Expected default for element %d", i+1)
		}
		if def.Children[0].Kind != kind {
			t.Errorf("Expected default kind %v, got %v", kind, def.Children[0].Kind)
		}
	}
}

func TestParseEnumsAndRecords(t *testing.T) {
	src := `
enum Color implements Named {
    @Deprecated RED("r") { int x() { return 1; } },
    GREEN,
    BLUE;

    private final String code;
    Color() { this(""); }
}

record Point(@JsonProperty("x") int x, int y) implements Shape {
    Point {
        if (x < 0) throw new IllegalArgumentException();
    }
}

sealed interface Shape permits Point {}
non-sealed class Open implements Shape {}
`
	cu := parseUnit(t, src)

	enum := cu.FirstChildOfKind(KindEnumDecl)
	constants := enum.FirstChildOfKind(KindBlock).ChildrenOfKind(KindEnumConstant)
	if len(constants) != 3 {
		t.Fatalf("Expected 3 enum constants, got %d", len(constants))
	}
	if anns := constants[0].FirstChildOfKind(KindModifiers).ChildrenOfKind(KindAnnotation); len(anns) != 1 {
		t.Errorf("Expected annotation on RED, got %d", len(anns))
	}
	if got := len(enum.FirstChildOfKind(KindBlock).ChildrenOfKind(KindFieldDecl)); got != 1 {
		t.Errorf("Expected 1 field after constants, got %d", got)
	}

	record := cu.FirstChildOfKind(KindRecordDecl)
	if record == nil {
		t.Fatal("Expected record declaration")
	}
	components := record.FirstChildOfKind(KindParameters).ChildrenOfKind(KindParameter)
	if len(components) != 2 {
		t.Fatalf("Expected 2 record components, got %d", len(components))
	}
	compact := record.FirstChildOfKind(KindBlock).FirstChildOfKind(KindConstructorDecl)
	if compact == nil || compact.FirstChildOfKind(KindParameters) != nil {
		t.Error("Expected compact constructor without parameters")
	}

	interfaces := cu.ChildrenOfKind(KindInterfaceDecl)
	if len(interfaces) != 1 || interfaces[0].FirstChildOfKind(KindPermitsClause) == nil {
		t.Error("Expected sealed interface with permits clause")
	}
	open := cu.FirstChildOfKind(KindClassDecl)
	if got := open.FirstChildOfKind(KindModifiers).Children[0].TokenLiteral(); got != "non-sealed" {
		t.Errorf("Expected non-sealed modifier, got %q", got)
	}
}

func TestParseFieldInitializers(t *testing.T) {
	src := `
class Holder {
    Map<String, List<Integer>> map = new HashMap<String, List<Integer>>(), other;
    int[] values = {1, 2, 3}, more[] = null;
    Runnable r = () -> { System.out.println("x;"); };
}
`
	cu := parseUnit(t, src)
	fields := cu.FirstChildOfKind(KindClassDecl).FirstChildOfKind(KindBlock).ChildrenOfKind(KindFieldDecl)
	if len(fields) != 3 {
		t.Fatalf("Expected 3 fields, got %d", len(fields))
	}
	for i, want := range []int{2, 2, 1} {
		if got := len(fields[i].ChildrenOfKind(KindVariableDeclarator)); got != want {
			t.Errorf("field %d: Expected %d declarators, got %d", i, want, got)
		}
	}
	more := fields[1].ChildrenOfKind(KindVariableDeclarator)[1]
	if more.FirstChildOfKind(KindDims) == nil {
		t.Error("Expected dims on second declarator")
	}
}

func TestParseReceiverAndVarargs(t *testing.T) {
	src := `
class Outer {
    class Inner {
        Inner(Outer Outer.this, String @NonNull ... names) {}
        void run(@A Inner this) {}
    }
}
`
	cu := parseUnit(t, src)
	receivers := 0
	varargs := 0
	cu.Walk(func(n *Node) bool {
		switch n.Kind {
		case KindReceiverParameter:
			receivers++
		case KindParameter:
			for _, c := range n.Children {
				if c.Token != nil && c.Token.Kind == TokenEllipsis {
					varargs++
				}
			}
		}
		return true
	})
	if receivers != 2 {
		t.Errorf("Expected 2 receiver parameters, got %d", receivers)
	}
	if varargs != 1 {
		t.Errorf("Expected 1 varargs parameter, got %d", varargs)
	}
}

func TestParseNestedGenericsSplitShift(t *testing.T) {
	node := ParseType(strings.NewReader("Map<String, List<Map<K, V>>>[]")).Finish()
	if node == nil {
		t.Fatal("Expected type, got nil")
	}
	if node.Kind != KindArrayType {
		t.Fatalf("Expected ArrayType, got %v", node.Kind)
	}
	if errs := node.Errors(); len(errs) > 0 {
		t.Fatalf("Expected no errors, got:\n%s", node.String())
	}
}

func TestParseModuleAndPackageAnnotations(t *testing.T) {
	pkg := parseUnit(t, "@Deprecated\npackage com.example;\n")
	decl := pkg.FirstChildOfKind(KindPackageDecl)
	if decl == nil || len(decl.FirstChildOfKind(KindModifiers).Children) != 1 {
		t.Fatalf("Expected annotated package:\n%s", pkg.String())
	}

	mod := parseUnit(t, "import java.lang.Deprecated;\n@Deprecated open module com.example { requires java.base; }\n")
	if mod.FirstChildOfKind(KindModuleDecl) == nil {
		t.Fatalf("Expected module declaration:\n%s", mod.String())
	}
}

func TestParseErrorRecovery(t *testing.T) {
	src := `
class Broken {
    @Bad(x = ) int a;
    int ok;
}
`
	node := ParseCompilationUnit(strings.NewReader(src)).Finish()
	if node == nil {
		t.Fatal("Expected tree despite errors")
	}
	if len(node.Errors()) == 0 {
		t.Error("Expected at least one error node")
	}
	fields := node.FirstChildOfKind(KindClassDecl).FirstChildOfKind(KindBlock).ChildrenOfKind(KindFieldDecl)
	if len(fields) != 2 {
		t.Errorf("Expected both fields to survive, got %d:\n%s", len(fields), node.String())
	}
}

func TestParseIncompleteInput(t *testing.T) {
	tests := []string{
		"",
		"class A {",
		"class A { void m() {",
		"@Foo(",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if node := ParseCompilationUnit(strings.NewReader(input)).Finish(); node != nil {
				t.Errorf("Expected nil for incomplete input, got:\n%s", node.String())
			}
		})
	}
}

func TestParseTrailingInput(t *testing.T) {
	node := ParseAnnotation(strings.NewReader("@Foo(1) extra")).Finish()
	if node == nil || !node.IsError() {
		t.Fatalf("Expected error node for trailing input, got %v", node)
	}
}
