package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/annox/java"
	"github.com/dhamidi/annox/java/annotation"
	"github.com/dhamidi/annox/java/parser"
)

var (
	routeRef = annotation.TypeRef{Name: "com.example.Route", Resolved: true}
	levelRef = annotation.TypeRef{Name: "com.example.Level", Resolved: true}
)

func sampleResults() []Result {
	route := &annotation.Instance{
		Type: routeRef,
		Elements: []annotation.Element{
			{Name: "value", Value: annotation.StringValue("/users")},
			{Name: "methods", Value: annotation.ArrayValue(annotation.StringValue("GET")), Defaulted: true},
			{Name: "level", Value: annotation.EnumValue(levelRef, "LOW")},
			{Name: "weight", Value: annotation.FloatingValue(annotation.KindDouble, math.Inf(1))},
			{Name: "handler", Value: annotation.Unresolved("non-constant expression")},
		},
		Span: parser.Span{
			Start: parser.Position{Line: 3, Column: 1},
			End:   parser.Position{Line: 3, Column: 28},
		},
	}
	return []Result{
		{Declaration: annotation.Declaration{Kind: annotation.DeclPackage, Name: "com.example", Key: "com.example"}},
		{
			Declaration: annotation.Declaration{
				Kind:     annotation.DeclType,
				Name:     "Users",
				Key:      "com.example.Users",
				Type:     annotation.TypeRef{Name: "com.example.Users", Resolved: true},
				TypeKind: java.ClassKindClass,
				File:     "/src/com/example/Users.java",
			},
			Instances: []*annotation.Instance{route, {Type: annotation.TypeRef{Name: "Missing"}, Reason: "cannot find annotation type Missing"}},
		},
	}
}

func encode(t *testing.T, name string) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := New(name, &buf)
	if err != nil {
		t.Fatalf("Failed to create %s encoder: %v", name, err)
	}
	if err := enc.Encode(sampleResults()); err != nil {
		t.Fatalf("Failed to encode %s: %v", name, err)
	}
	return buf.Bytes()
}

func TestNewUnknownFormat(t *testing.T) {
	_, err := New("xml", &bytes.Buffer{})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
	for _, name := range Names {
		if _, err := New(name, &bytes.Buffer{}); err != nil {
			t.Errorf("Expected %s to be supported, got %v", name, err)
		}
	}
}

// elementsOf digs the elements of the first annotation of the second
// result out of a decoded document.
func elementsOf(t *testing.T, docs []any) []any {
	t.Helper()
	if len(docs) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(docs))
	}
	result := docs[1].(map[string]any)
	annotations := result["annotations"].([]any)
	if len(annotations) != 2 {
		t.Fatalf("Expected 2 annotations, got %d", len(annotations))
	}
	return annotations[0].(map[string]any)["elements"].([]any)
}

func TestJSONEncoder(t *testing.T) {
	var docs []any
	if err := json.Unmarshal(encode(t, "json"), &docs); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	decl := docs[1].(map[string]any)["declaration"].(map[string]any)
	if decl["key"] != "com.example.Users" || decl["typeKind"] != "class" {
		t.Errorf("Expected the Users declaration, got %v", decl)
	}

	elements := elementsOf(t, docs)
	value := elements[0].(map[string]any)["value"].(map[string]any)
	if value["kind"] != "String" || value["value"] != "/users" || value["java"] != `"/users"` {
		t.Errorf("Expected string value, got %v", value)
	}
	methods := elements[1].(map[string]any)
	if methods["defaulted"] != true {
		t.Errorf("Expected methods to be defaulted, got %v", methods)
	}
	level := elements[2].(map[string]any)["value"].(map[string]any)
	if level["constant"] != "LOW" {
		t.Errorf("Expected constant LOW, got %v", level)
	}
	weight := elements[3].(map[string]any)["value"].(map[string]any)
	if _, ok := weight["value"]; ok || weight["java"] != "1.0 / 0.0" {
		t.Errorf("Expected infinity only as Java text, got %v", weight)
	}
	handler := elements[4].(map[string]any)["value"].(map[string]any)
	if handler["reason"] != "non-constant expression" {
		t.Errorf("Expected reason, got %v", handler)
	}
}

func TestYAMLEncoder(t *testing.T) {
	var docs []any
	if err := yaml.Unmarshal(encode(t, "yaml"), &docs); err != nil {
		t.Fatalf("Failed to decode YAML: %v", err)
	}
	elements := elementsOf(t, docs)
	got := elements[1].(map[string]any)["value"].(map[string]any)["java"]
	if got != `{"GET"}` {
		t.Errorf("Expected {\"GET\"}, got %v", got)
	}
}

func TestMsgpackEncoder(t *testing.T) {
	var docs []any
	if err := msgpack.Unmarshal(encode(t, "msgpack"), &docs); err != nil {
		t.Fatalf("Failed to decode MessagePack: %v", err)
	}
	elements := elementsOf(t, docs)
	if name := elements[0].(map[string]any)["name"]; name != "value" {
		t.Errorf("Expected value, got %v", name)
	}
}

func TestTableEncoder(t *testing.T) {
	out := string(encode(t, "table"))
	for _, want := range []string{"com.example.Users", "@com.example.Route", `{"GET"}`, "default", "@Missing", "cannot find annotation type Missing"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected table to contain %q, got\n%s", want, out)
		}
	}
	if strings.Contains(out, "com.example ") {
		t.Errorf("Expected declarations without annotations to be left out, got\n%s", out)
	}
}

func TestTableEncoderEmpty(t *testing.T) {
	text, err := NewTableEncoder(&bytes.Buffer{}).MarshalText()
	if err != nil || len(text) != 0 {
		t.Errorf("Expected empty output, got %q (%v)", text, err)
	}
}

func TestJavaEncoder(t *testing.T) {
	want := `// type com.example.Users
@com.example.Route(value = "/users", methods = {"GET"}, level = com.example.Level.LOW, weight = 1.0 / 0.0, handler = /* unresolved: non-constant expression */)
@Missing // cannot find annotation type Missing
`
	if diff := cmp.Diff(want, string(encode(t, "java"))); diff != "" {
		t.Errorf("Java output mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeTypes(t *testing.T) {
	info := &java.TypeInfo{
		Name:      "com.example.Route",
		Kind:      java.ClassKindAnnotation,
		Retention: "RUNTIME",
		Targets:   []string{"TYPE"},
		Elements: []java.ElementInfo{
			{Name: "value", Type: java.Type{Name: "java.lang.String"}},
			{Name: "priority", Type: java.Type{Name: "int"}, Default: &java.DefaultValue{}},
		},
	}
	level := &java.TypeInfo{Name: "com.example.Level", Kind: java.ClassKindEnum, EnumConstants: []string{"LOW", "HIGH"}}
	types := []TypeDescription{
		{Info: info, Defaults: &annotation.Instance{
			Type: routeRef,
			Elements: []annotation.Element{
				{Name: "value", Value: annotation.Unresolved("missing required element")},
				{Name: "priority", Value: annotation.IntegralValue(annotation.KindInt, 10), Defaulted: true},
			},
		}},
		{Info: level},
	}

	t.Run("java", func(t *testing.T) {
		var buf bytes.Buffer
		if err := EncodeTypes(&buf, "java", types); err != nil {
			t.Fatal(err)
		}
		want := `@java.lang.annotation.Retention(java.lang.annotation.RetentionPolicy.RUNTIME)
@java.lang.annotation.Target({java.lang.annotation.ElementType.TYPE})
@interface com.example.Route {
    java.lang.String value();
    int priority() default 10;
}

enum com.example.Level {
    LOW, HIGH
}
`
		if diff := cmp.Diff(want, buf.String()); diff != "" {
			t.Errorf("Java output mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := EncodeTypes(&buf, "json", types); err != nil {
			t.Fatal(err)
		}
		var docs []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &docs); err != nil {
			t.Fatalf("Failed to decode JSON: %v", err)
		}
		elements := docs[0]["elements"].([]any)
		if _, ok := elements[0].(map[string]any)["default"]; ok {
			t.Error("Expected value to have no default")
		}
		def := elements[1].(map[string]any)["default"].(map[string]any)
		if def["java"] != "10" {
			t.Errorf("Expected default 10, got %v", def)
		}
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := EncodeTypes(&buf, "table", types); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "LOW, HIGH") {
			t.Errorf("Expected enum constants, got\n%s", buf.String())
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if err := EncodeTypes(&bytes.Buffer{}, "xml", types); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("Expected ErrUnknownFormat, got %v", err)
		}
	})
}
