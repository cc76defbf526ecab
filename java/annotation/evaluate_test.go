package annotation

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/annox/java"
	"github.com/dhamidi/annox/java/parser"
)

func testRegistry() *java.Registry {
	return java.NewRegistry(
		&java.TypeInfo{
			Name: "com.example.Level", SimpleName: "Level", Package: "com.example",
			Kind: java.ClassKindEnum, EnumConstants: []string{"LOW", "HIGH"},
		},
		&java.TypeInfo{
			Name: "com.example.Point", SimpleName: "Point", Package: "com.example",
			Kind: java.ClassKindClass,
		},
	)
}

func evaluate(t *testing.T, expr, expected string, opts ...Option) Value {
	t.Helper()
	node := parser.ParseExpression(strings.NewReader(expr)).Finish()
	if node == nil {
		t.Fatalf("Failed to parse %q", expr)
	}
	var typ java.Type
	if expected != "" {
		var err error
		typ, err = java.ParseType(expected)
		if err != nil {
			t.Fatalf("Failed to parse type %q: %v", expected, err)
		}
	}
	return NewBuilder(testRegistry(), opts...).Evaluate(node, typ, nil)
}

func TestEvaluateLiterals(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
		want     Value
	}{
		{"42", "int", IntegralValue(KindInt, 42)},
		{"42", "long", IntegralValue(KindLong, 42)},
		{"42L", "long", IntegralValue(KindLong, 42)},
		{"0xFFFFFFFF", "int", IntegralValue(KindInt, -1)},
		{"0x80000000", "int", IntegralValue(KindInt, math.MinInt32)},
		{"0xFFFFFFFFFFFFFFFFL", "long", IntegralValue(KindLong, -1)},
		{"9223372036854775807L", "long", IntegralValue(KindLong, math.MaxInt64)},
		{"127", "byte", IntegralValue(KindByte, 127)},
		{"-128", "byte", IntegralValue(KindByte, -128)},
		{"32767", "short", IntegralValue(KindShort, 32767)},
		{"65", "char", IntegralValue(KindChar, 65)},
		{`'a'`, "char", IntegralValue(KindChar, 'a')},
		{`'a'`, "int", IntegralValue(KindInt, 'a')},
		{`'A'`, "char", IntegralValue(KindChar, 'A')},
		{`'\n'`, "char", IntegralValue(KindChar, '\n')},
		{`'\''`, "char", IntegralValue(KindChar, '\'')},
		{"1.5", "double", FloatingValue(KindDouble, 1.5)},
		{"1.5f", "float", FloatingValue(KindFloat, 1.5)},
		{"0.1f", "double", FloatingValue(KindDouble, float64(float32(0.1)))},
		{"1", "double", FloatingValue(KindDouble, 1)},
		{"1L", "float", FloatingValue(KindFloat, 1)},
		{"0x1p3", "double", FloatingValue(KindDouble, 8)},
		{"1_000.5e1", "double", FloatingValue(KindDouble, 10005)},
		{".5", "double", FloatingValue(KindDouble, 0.5)},
		{"2d", "double", FloatingValue(KindDouble, 2)},
		{"true", "boolean", BooleanValue(true)},
		{"false", "boolean", BooleanValue(false)},
		{`"a\tb"`, "String", StringValue("a\tb")},
		{`"A\101\s"`, "java.lang.String", StringValue("AA ")},
		{`"café ☕"`, "String", StringValue("café ☕")},
		{`""`, "String", StringValue("")},
	}
	for _, tt := range tests {
		t.Run(tt.expr+" as "+tt.expected, func(t *testing.T) {
			got := evaluate(t, tt.expr, tt.expected)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluateTextBlock(t *testing.T) {
	expr := "\"\"\"\n        hello\n          world  \n        \"\"\""
	got := evaluate(t, expr, "String")
	want := StringValue("hello\n  world\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}

	expr = "\"\"\"\n    a \\\n    b\"\"\""
	got = evaluate(t, expr, "String")
	if got.Text != "a b" {
		t.Errorf("Expected line continuation to join lines, got %q", got.Text)
	}
}

func TestEvaluateRadixAndSuffixDoNotChangeValue(t *testing.T) {
	spellings := []string{"42", "0x2A", "0X2a", "052", "0b101010", "0B10_1010", "4_2"}
	for _, expected := range []string{"int", "long"} {
		for _, s := range spellings {
			for _, suffix := range []string{"", "L"} {
				if expected == "int" && suffix == "L" {
					continue
				}
				got := evaluate(t, s+suffix, expected)
				if got.IsUnresolved() || got.Int != 42 || got.Kind.String() != expected {
					t.Errorf("Expected %s 42 for %s%s, got %v", expected, s, suffix, got)
				}
			}
		}
	}
}

func TestEvaluateSignFolding(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
		want     Value
	}{
		{"-2147483648", "int", IntegralValue(KindInt, math.MinInt32)},
		{"-(2147483648)", "int", IntegralValue(KindInt, math.MinInt32)},
		{"-9223372036854775808L", "long", IntegralValue(KindLong, math.MinInt64)},
		{"-0x80000000", "int", IntegralValue(KindInt, math.MinInt32)},
		{"1__000", "int", IntegralValue(KindInt, 1000)},
		{"0_7", "int", IntegralValue(KindInt, 7)},
		{"0xF_F", "int", IntegralValue(KindInt, 255)},
		{"1_0.2_5", "double", FloatingValue(KindDouble, 10.25)},
		{"-(-(5))", "int", IntegralValue(KindInt, 5)},
		{"- -5", "int", IntegralValue(KindInt, 5)},
		{"+5", "int", IntegralValue(KindInt, 5)},
		{"-(5)", "int", IntegralValue(KindInt, -5)},
		{"(-5)", "int", IntegralValue(KindInt, -5)},
		{"((7))", "int", IntegralValue(KindInt, 7)},
		{"-1.5f", "float", FloatingValue(KindFloat, -1.5)},
		{"-1", "double", FloatingValue(KindDouble, -1)},
		{"2147483648", "int", Unresolved("integer number too large: 2147483648")},
		{"-2147483649", "int", Unresolved("integer number too large: 2147483649")},
		{"9223372036854775808L", "long", Unresolved("integer number too large: 9223372036854775808L")},
		{"0x1FFFFFFFF", "int", Unresolved("integer number too large: 0x1FFFFFFFF")},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := evaluate(t, tt.expr, tt.expected)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluateIncompatible(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
		reason   string
	}{
		{`"x"`, "int", "incompatible types: String cannot be converted to int"},
		{"1", "String", "incompatible types: int cannot be converted to java.lang.String"},
		{"1L", "int", "incompatible types: possible lossy conversion from long to int"},
		{"1.5", "float", "incompatible types: possible lossy conversion from double to float"},
		{"1.5", "long", "incompatible types: possible lossy conversion from double to long"},
		{"128", "byte", "incompatible types: possible lossy conversion from int to byte"},
		{"-1", "char", "incompatible types: possible lossy conversion from int to char"},
		{"true", "int", "incompatible types: boolean cannot be converted to int"},
		{"1", "boolean", "incompatible types: int cannot be converted to boolean"},
		{"1", "com.example.Level", "incompatible types: int cannot be converted to com.example.Level"},
		{"null", "String", "null is not a constant"},
		{"1e400", "double", "floating-point number too large: 1e400"},
		{"1e-400", "double", "floating-point number too small: 1e-400"},
		{`'ab'`, "char", "invalid character literal 'ab'"},
		{`"\q"`, "String", `illegal escape character \q`},
		{"0_", "int", "illegal underscore in 0_"},
		{"1__L", "long", "illegal underscore in 1__L"},
		{"0x_1", "int", "illegal underscore in 0x_1"},
		{"0b1_", "int", "illegal underscore in 0b1_"},
		{"1_.5", "double", "illegal underscore in 1_.5"},
		{"1e_5", "double", "illegal underscore in 1e_5"},
		{"1.5_f", "float", "illegal underscore in 1.5_f"},
	}
	for _, tt := range tests {
		t.Run(tt.expr+" as "+tt.expected, func(t *testing.T) {
			got := evaluate(t, tt.expr, tt.expected)
			if !got.IsUnresolved() {
				t.Fatalf("Expected unresolved value, got %v", got)
			}
			if got.Reason != tt.reason {
				t.Errorf("Expected reason %q, got %q", tt.reason, got.Reason)
			}
		})
	}
}

func TestEvaluateNonConstant(t *testing.T) {
	tests := []struct {
		expr   string
		reason string
	}{
		{"1 + 2", "non-constant expression"},
		{"~1", "non-constant expression"},
		{"!true", "non-constant expression"},
		{"true ? 1 : 2", "non-constant expression"},
		{"(int) 1L", "non-constant expression"},
		{"-\"x\"", "non-constant expression"},
		{"-x", "non-constant expression"},
		{"foo()", "unsupported expression kind CallExpr"},
		{"this", "unsupported expression kind This"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := evaluate(t, tt.expr, "int")
			if got.Reason != tt.reason || !got.IsUnresolved() {
				t.Errorf("Expected unresolved %q, got %v", tt.reason, got)
			}
		})
	}
}

func TestEvaluateUnknownElementType(t *testing.T) {
	tests := []struct {
		expr string
		want Value
	}{
		{"42", IntegralValue(KindInt, 42)},
		{"42L", IntegralValue(KindLong, 42)},
		{"1.5f", FloatingValue(KindFloat, 1.5)},
		{"'c'", IntegralValue(KindChar, 'c')},
		{`"x"`, StringValue("x")},
		{`{1, "a"}`, ArrayValue(IntegralValue(KindInt, 1), StringValue("a"))},
		{"String.class", ClassValue(TypeRef{Name: "java.lang.String", Resolved: true}, "")},
		{"LOW", Unresolved("cannot resolve LOW without a known element type")},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := evaluate(t, tt.expr, "")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluateArrays(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		expected string
		want     Value
	}{
		{"elements", "{1, 2, 3}", "int[]",
			ArrayValue(IntegralValue(KindInt, 1), IntegralValue(KindInt, 2), IntegralValue(KindInt, 3))},
		{"empty", "{}", "int[]", ArrayValue()},
		{"trailing comma", `{"a",}`, "String[]", ArrayValue(StringValue("a"))},
		{"single element shorthand", "5", "int[]", ArrayValue(IntegralValue(KindInt, 5))},
		{"shorthand of enum", "Level.HIGH", "com.example.Level[]",
			ArrayValue(EnumValue(TypeRef{Name: "com.example.Level", Resolved: true}, "HIGH"))},
		{"nested", "{{1}, {2, 3}}", "int[][]", ArrayValue(
			ArrayValue(IntegralValue(KindInt, 1)),
			ArrayValue(IntegralValue(KindInt, 2), IntegralValue(KindInt, 3)),
		)},
		{"bad element keeps its siblings", `{"a", 1, "b"}`, "String[]", ArrayValue(
			StringValue("a"),
			Unresolved("incompatible types: int cannot be converted to java.lang.String"),
			StringValue("b"),
		)},
		{"initializer for scalar", "{1}", "int", Unresolved("illegal initializer for int")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evaluate(t, tt.expr, tt.expected)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluateArrayArity(t *testing.T) {
	for n := 0; n <= 6; n++ {
		items := make([]string, n)
		for i := range items {
			items[i] = `"x"`
		}
		got := evaluate(t, "{"+strings.Join(items, ", ")+"}", "String[]")
		if got.Kind != KindArray {
			t.Fatalf("Expected array, got %v", got)
		}
		if len(got.Elements) != n || got.Elements == nil {
			t.Errorf("Expected %d elements, got %d", n, len(got.Elements))
		}
	}
}

func TestEvaluateClassLiterals(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
		want     Value
	}{
		{"String.class", "Class<?>", ClassValue(TypeRef{Name: "java.lang.String", Resolved: true}, "")},
		{"java.lang.String.class", "Class", ClassValue(TypeRef{Name: "java.lang.String", Resolved: true}, "")},
		{"Level.class", "Class", ClassValue(TypeRef{Name: "Level"}, "cannot find symbol Level")},
		{"com.example.Level.class", "Class", ClassValue(TypeRef{Name: "com.example.Level", Resolved: true}, "")},
		{"int.class", "Class", ClassValue(TypeRef{Name: "int", Resolved: true}, "")},
		{"void.class", "Class", ClassValue(TypeRef{Name: "void", Resolved: true}, "")},
		{"int[][].class", "Class", ClassValue(TypeRef{Name: "int", ArrayDepth: 2, Resolved: true}, "")},
		{"String[].class", "Class", ClassValue(TypeRef{Name: "java.lang.String", ArrayDepth: 1, Resolved: true}, "")},
		{"{String.class, int.class}", "Class<?>[]", ArrayValue(
			ClassValue(TypeRef{Name: "java.lang.String", Resolved: true}, ""),
			ClassValue(TypeRef{Name: "int", Resolved: true}, ""),
		)},
		{"String.class", "int", Unresolved("incompatible types: Class cannot be converted to int")},
		{"String.class", "String", Unresolved("incompatible types: Class cannot be converted to java.lang.String")},
	}
	for _, tt := range tests {
		t.Run(tt.expr+" as "+tt.expected, func(t *testing.T) {
			got := evaluate(t, tt.expr, tt.expected)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluateEnumConstants(t *testing.T) {
	level := TypeRef{Name: "com.example.Level", Resolved: true}
	tests := []struct {
		expr     string
		expected string
		want     Value
	}{
		{"Level.HIGH", "com.example.Level", EnumValue(level, "HIGH")},
		{"com.example.Level.LOW", "com.example.Level", EnumValue(level, "LOW")},
		{"HIGH", "com.example.Level", EnumValue(level, "HIGH")},
		{"(HIGH)", "com.example.Level", EnumValue(level, "HIGH")},
		{"Mode.ON", "com.example.Mode", EnumValue(TypeRef{Name: "com.example.Mode"}, "ON")},
		{"Point.ORIGIN", "com.example.Point", Unresolved("com.example.Point is not an enum type")},
		{"LOW", "int", Unresolved("cannot evaluate LOW as a constant of type int")},
		{"Integer.MAX_VALUE", "int", Unresolved("cannot evaluate Integer.MAX_VALUE as a constant of type int")},
		{"LOW", "String", Unresolved("cannot evaluate LOW as a constant of type java.lang.String")},
		{`"LOW"`, "com.example.Level", Unresolved("incompatible types: String cannot be converted to com.example.Level")},
	}
	for _, tt := range tests {
		t.Run(tt.expr+" as "+tt.expected, func(t *testing.T) {
			got := evaluate(t, tt.expr, tt.expected)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluateDepthGuard(t *testing.T) {
	got := evaluate(t, "{{{{1}}}}", "int[][][][]", WithMaxDepth(3))
	for i := 0; i < 3; i++ {
		if got.Kind != KindArray || len(got.Elements) != 1 {
			t.Fatalf("Expected one-element array at depth %d, got %v", i, got)
		}
		got = got.Elements[0]
	}
	if got.Kind != KindArray || len(got.Elements) != 1 {
		t.Fatalf("Expected innermost array, got %v", got)
	}
	want := Unresolved("nesting deeper than 3")
	if diff := cmp.Diff(want, got.Elements[0]); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}

	got = evaluate(t, "((((1))))", "int", WithMaxDepth(2))
	if diff := cmp.Diff(Unresolved("nesting deeper than 2"), got); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}

	deep := strings.Repeat("{", 40) + strings.Repeat("}", 40)
	got = evaluate(t, deep, "")
	for got.Kind == KindArray && len(got.Elements) == 1 {
		got = got.Elements[0]
	}
	if got.Kind == KindArray {
		t.Errorf("Expected default depth limit to cut nesting, got empty array at the bottom")
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	node := parser.ParseAnnotation(strings.NewReader(`@A(x = )`)).Finish()
	if node == nil {
		t.Fatal("Failed to parse annotation")
	}
	elem := node.FirstChildOfKind(parser.KindAnnotationElement)
	if elem == nil || len(elem.Children) != 2 {
		t.Fatalf("Expected element with value, got %v", elem)
	}
	got := NewBuilder(nil).Evaluate(elem.Children[1], java.Type{Name: "int"}, nil)
	if !got.IsUnresolved() || !strings.HasPrefix(got.Reason, "syntax error: ") {
		t.Errorf("Expected syntax error, got %v", got)
	}
}
