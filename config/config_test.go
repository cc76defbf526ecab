package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	want := &Config{
		Sources:   []string{"src"},
		Classpath: []string{},
		MaxDepth:  32,
		Format:    "table",
		Dir:       ".",
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("Default mismatch (-want +got):\n%s", diff)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Expected defaults to be valid, got %v", err)
	}
}

func TestParseMergesDefaults(t *testing.T) {
	c, err := Parse([]byte("classpath: [lib/*.jar]\nrelease: \"17\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.MaxDepth != 32 || c.Format != "table" {
		t.Errorf("Expected defaults to survive, got %+v", c)
	}
	if diff := cmp.Diff([]string{"lib/*.jar"}, c.Classpath); diff != "" {
		t.Errorf("Classpath mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"src"}, c.Sources); diff != "" {
		t.Errorf("Sources mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("sources: [unclosed")); err == nil {
		t.Error("Expected an error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"release 17", func(c *Config) { c.Release = "17" }, false},
		{"release 1.8", func(c *Config) { c.Release = "1.8" }, false},
		{"release 1.4", func(c *Config) { c.Release = "1.4" }, true},
		{"release garbage", func(c *Config) { c.Release = "seventeen" }, true},
		{"zero depth", func(c *Config) { c.MaxDepth = 0 }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"quiet", func(c *Config) { c.Verbosity = -4 }, false},
		{"too quiet", func(c *Config) { c.Verbosity = -5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error %t, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestReleaseVersion(t *testing.T) {
	c := Default()
	if v, err := c.ReleaseVersion(); v != nil || err != nil {
		t.Errorf("Expected no release, got %v (%v)", v, err)
	}
	c.Release = "21"
	v, err := c.ReleaseVersion()
	if err != nil {
		t.Fatal(err)
	}
	if v.Segments()[0] != 21 {
		t.Errorf("Expected 21, got %s", v)
	}
}

func TestLoadResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	writeFile(t, path, "sources: [src/main/java, /abs/src]\nclasspath: [lib/*.jar]\n")

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantSources := []string{filepath.Join(dir, "src/main/java"), "/abs/src"}
	if diff := cmp.Diff(wantSources, c.SourcePaths()); diff != "" {
		t.Errorf("Sources mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "lib/*.jar")}, c.ClasspathEntries()); diff != "" {
		t.Errorf("Classpath mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "maxDepth: -1\n")
	if _, err := Load(path); err == nil {
		t.Error("Expected invalid maxDepth to be rejected")
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "format: json\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Find(nested)
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(root, FileName) {
		t.Errorf("Expected %s, got %s", filepath.Join(root, FileName), got)
	}
}

func TestFindWithoutConfig(t *testing.T) {
	// The temp directory's ancestors are assumed to have no annox.yml.
	_, err := Find(t.TempDir())
	if !errors.Is(err, ErrNoConfig) {
		t.Errorf("Expected ErrNoConfig, got %v", err)
	}
}

func TestDetectLayout(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src/shop/web/module-info.java"), `module shop.web {
    requires transitive shop.core;
    requires static java.compiler;
}`)
	writeFile(t, filepath.Join(root, "src/shop/core/module-info.java"), `module shop.core {
    exports shop.core;
}`)
	writeFile(t, filepath.Join(root, "src/shop/notes/README"), "not a module")

	layout, err := DetectLayout(root)
	if err != nil {
		t.Fatal(err)
	}
	if layout.ID != "shop" || len(layout.Modules) != 2 {
		t.Fatalf("Expected project shop with 2 modules, got %s with %d", layout.ID, len(layout.Modules))
	}
	if diff := cmp.Diff([]string{"core"}, layout.Module("web").Requires); diff != "" {
		t.Errorf("Requires mismatch (-want +got):\n%s", diff)
	}

	var order []string
	for _, m := range layout.ModulesInOrder() {
		order = append(order, m.Name)
	}
	if diff := cmp.Diff([]string{"core", "web"}, order); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}
}

func TestModulesInOrderWithCycle(t *testing.T) {
	l := &Layout{Modules: []*Module{
		{Name: "b", Requires: []string{"a"}},
		{Name: "a", Requires: []string{"b"}},
	}}
	got := l.ModulesInOrder()
	if got[0].Name != "b" || got[1].Name != "a" {
		t.Errorf("Expected directory order on a cycle, got %s, %s", got[0].Name, got[1].Name)
	}
}

func TestDetectFromLayout(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src/app/main/module-info.java"), "module app.main {}\n")

	c, err := Detect(root)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{filepath.Join(root, "src/app/main")}, c.Sources); diff != "" {
		t.Errorf("Sources mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{filepath.Join(root, "lib", "*.jar")}, c.Classpath); diff != "" {
		t.Errorf("Classpath mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectPrefersConfigFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src/app/main/module-info.java"), "module app.main {}\n")
	writeFile(t, filepath.Join(root, FileName), "sources: [java]\n")

	c, err := Detect(root)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{filepath.Join(root, "java")}, c.SourcePaths()); diff != "" {
		t.Errorf("Sources mismatch (-want +got):\n%s", diff)
	}
}
