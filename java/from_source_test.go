package java

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/annox/java/parser"
)

func parseSource(t *testing.T, source string) *parser.Node {
	t.Helper()
	cu := parser.ParseCompilationUnit(strings.NewReader(source), parser.WithFile("Test.java")).Finish()
	if cu == nil {
		t.Fatal("Failed to parse source")
	}
	return cu
}

func TestContextFromCompilationUnit(t *testing.T) {
	cu := parseSource(t, `package com.example;

import java.util.List;
import static java.util.Collections.emptyList;
import javax.annotation.*;

public class Outer {
    static class Inner {
        enum Deep { A }
    }
}

@interface Marker {}
`)
	ctx := ContextFromCompilationUnit(cu, "Outer.java")

	if ctx.Package != "com.example" {
		t.Errorf("Expected package com.example, got %q", ctx.Package)
	}
	wantImports := []Import{
		{Name: "java.util.List"},
		{Name: "java.util.Collections.emptyList", Static: true},
		{Name: "javax.annotation", Wildcard: true},
	}
	if diff := cmp.Diff(wantImports, ctx.Imports); diff != "" {
		t.Errorf("imports mismatch (-want +got):\n%s", diff)
	}
	wantLocals := map[string]string{
		"Outer":  "com.example.Outer",
		"Inner":  "com.example.Outer.Inner",
		"Deep":   "com.example.Outer.Inner.Deep",
		"Marker": "com.example.Marker",
	}
	if diff := cmp.Diff(wantLocals, ctx.Locals); diff != "" {
		t.Errorf("locals mismatch (-want +got):\n%s", diff)
	}
}

func TestContextTopLevelWinsOverNested(t *testing.T) {
	cu := parseSource(t, `class A { class B {} }
class B {}
`)
	ctx := ContextFromCompilationUnit(cu, "")
	if got := ctx.Locals["B"]; got != "B" {
		t.Errorf("Expected B, got %q", got)
	}
}

func TestTypesFromSourceAnnotationType(t *testing.T) {
	cu := parseSource(t, `package com.example;

import java.lang.annotation.*;

@Retention(RetentionPolicy.RUNTIME)
@Target({ElementType.TYPE, ElementType.METHOD})
public @interface Config {
    String name() default "none";
    int[] sizes();
    Level level() default Level.LOW;
    Class<?> type() default Object.class;

    enum Level { LOW, HIGH }
}
`)
	infos := TypesFromSource(cu, "/src/Config.java")
	if len(infos) != 2 {
		t.Fatalf("Expected 2 types, got %d", len(infos))
	}

	config := infos[0]
	t.Run("annotation type", func(t *testing.T) {
		if config.Name != "com.example.Config" || config.SimpleName != "Config" || config.Package != "com.example" {
			t.Errorf("Expected com.example.Config, got %q (%q, %q)", config.Name, config.SimpleName, config.Package)
		}
		if !config.IsAnnotation() {
			t.Errorf("Expected annotation kind, got %s", config.Kind)
		}
		if config.Retention != "RUNTIME" {
			t.Errorf("Expected RUNTIME retention, got %q", config.Retention)
		}
		if diff := cmp.Diff([]string{"TYPE", "METHOD"}, config.Targets); diff != "" {
			t.Errorf("targets mismatch (-want +got):\n%s", diff)
		}
		if config.Origin.String() != "file:///src/Config.java" {
			t.Errorf("Expected file origin, got %s", config.Origin.String())
		}
		if config.Source == nil || config.Source.Package != "com.example" {
			t.Error("Expected source context to be recorded")
		}
	})

	t.Run("elements", func(t *testing.T) {
		var names []string
		for _, e := range config.Elements {
			names = append(names, e.Name+":"+e.Type.String())
		}
		want := []string{"name:String", "sizes:int[]", "level:Level", "type:Class<?>"}
		if diff := cmp.Diff(want, names); diff != "" {
			t.Errorf("elements mismatch (-want +got):\n%s", diff)
		}
		sizes, _ := config.Element("sizes")
		if sizes.Default != nil {
			t.Errorf("Expected sizes to have no default")
		}
		level, _ := config.Element("level")
		if level.Default == nil || level.Default.Expr == nil || level.Default.Expr.Text() != "Level.LOW" {
			t.Errorf("Expected default expression Level.LOW")
		}
	})

	t.Run("nested enum", func(t *testing.T) {
		level := infos[1]
		if level.Name != "com.example.Config.Level" || !level.IsEnum() {
			t.Errorf("Expected enum com.example.Config.Level, got %s %q", level.Kind, level.Name)
		}
		if diff := cmp.Diff([]string{"LOW", "HIGH"}, level.EnumConstants); diff != "" {
			t.Errorf("constants mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestTypesFromSourceKinds(t *testing.T) {
	cu := parseSource(t, `class C {}
interface I {}
record R(int x) {}
enum E { X; void m() {} }
`)
	var got []string
	for _, info := range TypesFromSource(cu, "") {
		got = append(got, info.Name+":"+string(info.Kind))
	}
	want := []string{"C:class", "I:interface", "R:record", "E:enum"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
}
