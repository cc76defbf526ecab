package java

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/annox/classfile"
	"github.com/dhamidi/annox/classfile/classfiletest"
)

func typeInfoFromClass(t *testing.T, c classfiletest.Class) *TypeInfo {
	t.Helper()
	info, err := TypeInfoFromReader(bytes.NewReader(c.Bytes()))
	if err != nil {
		t.Fatalf("Failed to read class: %v", err)
	}
	return info
}

func TestTypeInfoFromClassFileAnnotation(t *testing.T) {
	c := classfiletest.AnnotationType("com/example/Config",
		classfiletest.Element("name", "Ljava/lang/String;", &classfile.ElementValue{Tag: 's', String: "none"}),
		classfiletest.Element("sizes", "[I", nil),
		classfiletest.Element("level", "Lcom/example/Config$Level;",
			&classfile.ElementValue{Tag: 'e', String: "Lcom/example/Config$Level;", EnumConst: "LOW"}),
	)
	c.Annotations = []classfile.Annotation{
		{
			Type: "Ljava/lang/annotation/Retention;",
			Elements: []classfile.ElementPair{{Name: "value", Value: classfile.ElementValue{
				Tag: 'e', String: "Ljava/lang/annotation/RetentionPolicy;", EnumConst: "CLASS",
			}}},
		},
		{
			Type: "Ljava/lang/annotation/Target;",
			Elements: []classfile.ElementPair{{Name: "value", Value: classfile.ElementValue{
				Tag: '[', Values: []classfile.ElementValue{
					{Tag: 'e', String: "Ljava/lang/annotation/ElementType;", EnumConst: "FIELD"},
				},
			}}},
		},
	}
	info := typeInfoFromClass(t, c)

	if info.Name != "com.example.Config" || info.SimpleName != "Config" || info.Package != "com.example" {
		t.Errorf("Expected com.example.Config, got %q (%q, %q)", info.Name, info.SimpleName, info.Package)
	}
	if !info.IsAnnotation() {
		t.Fatalf("Expected annotation kind, got %s", info.Kind)
	}
	if info.Retention != "CLASS" {
		t.Errorf("Expected CLASS retention, got %q", info.Retention)
	}
	if diff := cmp.Diff([]string{"FIELD"}, info.Targets); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}

	want := []ElementInfo{
		{Name: "name", Type: Type{Name: "java.lang.String"}, Default: &DefaultValue{Const: &classfile.ElementValue{Tag: 's', String: "none"}}},
		{Name: "sizes", Type: Type{Name: "int", ArrayDepth: 1}},
		{Name: "level", Type: Type{Name: "com.example.Config.Level"}, Default: &DefaultValue{
			Const: &classfile.ElementValue{Tag: 'e', String: "Lcom/example/Config$Level;", EnumConst: "LOW"},
		}},
	}
	if diff := cmp.Diff(want, info.Elements); diff != "" {
		t.Errorf("elements mismatch (-want +got):\n%s", diff)
	}
}

func TestTypeInfoFromClassFileNestedEnum(t *testing.T) {
	c := classfiletest.Enum("com/example/Config$Level", "LOW", "HIGH")
	c.InnerClasses = []classfile.InnerClass{{
		Inner:      "com/example/Config$Level",
		Outer:      "com/example/Config",
		SimpleName: "Level",
		Flags:      classfile.AccPublic | classfile.AccStatic | classfile.AccFinal | classfile.AccEnum,
	}}
	info := typeInfoFromClass(t, c)

	if info.Name != "com.example.Config.Level" {
		t.Errorf("Expected com.example.Config.Level, got %q", info.Name)
	}
	if info.SimpleName != "Level" {
		t.Errorf("Expected simple name Level, got %q", info.SimpleName)
	}
	if diff := cmp.Diff([]string{"LOW", "HIGH"}, info.EnumConstants); diff != "" {
		t.Errorf("constants mismatch (-want +got):\n%s", diff)
	}
}

func TestTypeInfoFromClassFileKinds(t *testing.T) {
	tests := []struct {
		name  string
		class classfiletest.Class
		want  ClassKind
	}{
		{"class", classfiletest.Class{Name: "p/C", Super: "java/lang/Object", Flags: classfile.AccPublic}, ClassKindClass},
		{"interface", classfiletest.Class{Name: "p/I", Super: "java/lang/Object", Flags: classfile.AccInterface | classfile.AccAbstract}, ClassKindInterface},
		{"record", classfiletest.Class{Name: "p/R", Super: "java/lang/Record", Flags: classfile.AccFinal, Record: true}, ClassKindRecord},
		{"enum", classfiletest.Enum("p/E", "A"), ClassKindEnum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := typeInfoFromClass(t, tt.class)
			if info.Kind != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, info.Kind)
			}
		})
	}
}

func TestDescriptorTypeName(t *testing.T) {
	tests := map[string]string{
		"Lcom/example/Level;":   "com.example.Level",
		"[[I":                   "int[][]",
		"Lcom/example/Outer$A;": "com.example.Outer.A",
		"broken":                "broken",
	}
	for desc, want := range tests {
		if got := DescriptorTypeName(desc); got != want {
			t.Errorf("Expected %q for %q, got %q", want, desc, got)
		}
	}
}
