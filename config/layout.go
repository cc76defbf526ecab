package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhamidi/annox/java/parser"
)

// Layout is a modular source tree laid out as
// src/<project>/<module>/module-info.java with jars in lib/.
type Layout struct {
	ID      string
	RootDir string
	LibDir  string
	Modules []*Module
}

type Module struct {
	Name       string
	SrcDir     string
	ModuleInfo string
	// Requires names the modules of the same project this one reads.
	Requires []string
}

// Detect returns the configuration for dir: the nearest annox.yml when
// there is one, otherwise one derived from a modular source layout in
// dir, otherwise the defaults.
func Detect(dir string) (*Config, error) {
	path, err := Find(dir)
	if err == nil {
		return Load(path)
	}
	if !errors.Is(err, ErrNoConfig) {
		return nil, err
	}

	c := Default()
	c.Dir = dir
	layout, err := DetectLayout(dir)
	if err != nil {
		return c, nil
	}
	c.Sources = nil
	for _, m := range layout.ModulesInOrder() {
		c.Sources = append(c.Sources, m.SrcDir)
	}
	c.Classpath = []string{filepath.Join(layout.LibDir, "*.jar")}
	return c, nil
}

// DetectLayout looks for the first project under dir/src that has at
// least one module.
func DetectLayout(rootDir string) (*Layout, error) {
	srcDir := filepath.Join(rootDir, "src")
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("read src directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		modules := scanModules(filepath.Join(srcDir, entry.Name()))
		if len(modules) == 0 {
			continue
		}
		layout := &Layout{
			ID:      entry.Name(),
			RootDir: rootDir,
			LibDir:  filepath.Join(rootDir, "lib"),
			Modules: modules,
		}
		for _, m := range modules {
			m.Requires = moduleRequires(m.ModuleInfo, layout.ID)
		}
		return layout, nil
	}
	return nil, fmt.Errorf("no src/<project>/<module>/module-info.java structure in %s", rootDir)
}

func scanModules(projectDir string) []*Module {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil
	}
	var modules []*Module
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		moduleDir := filepath.Join(projectDir, entry.Name())
		moduleInfo := filepath.Join(moduleDir, "module-info.java")
		if _, err := os.Stat(moduleInfo); err != nil {
			continue
		}
		modules = append(modules, &Module{Name: entry.Name(), SrcDir: moduleDir, ModuleInfo: moduleInfo})
	}
	return modules
}

// moduleRequires returns the short names of the project modules a
// module-info.java requires. Unreadable files require nothing.
func moduleRequires(path, projectID string) []string {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var requires []string
	prefix := projectID + "."
	lexer := parser.NewLexer(src, path)
	for tok := lexer.NextToken(); tok.Kind != parser.TokenEOF; tok = lexer.NextToken() {
		if tok.Kind != parser.TokenIdent || tok.Literal != "requires" {
			continue
		}
		var words []string
		for tok = lexer.NextToken(); tok.Kind != parser.TokenSemicolon && tok.Kind != parser.TokenEOF; tok = lexer.NextToken() {
			words = append(words, tok.Literal)
		}
		for len(words) > 1 && (words[0] == "transitive" || words[0] == "static") {
			words = words[1:]
		}
		if short, ok := strings.CutPrefix(strings.Join(words, ""), prefix); ok {
			requires = append(requires, short)
		}
	}
	return requires
}

func (l *Layout) Module(name string) *Module {
	for _, m := range l.Modules {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// ModulesInOrder returns the modules with every module after the ones it
// requires. A cycle leaves the directory order unchanged.
func (l *Layout) ModulesInOrder() []*Module {
	inDegree := make(map[string]int, len(l.Modules))
	for _, m := range l.Modules {
		for _, dep := range m.Requires {
			if l.Module(dep) != nil {
				inDegree[m.Name]++
			}
		}
	}

	var queue []string
	for _, m := range l.Modules {
		if inDegree[m.Name] == 0 {
			queue = append(queue, m.Name)
		}
	}

	var result []*Module
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		result = append(result, l.Module(name))
		for _, m := range l.Modules {
			for _, dep := range m.Requires {
				if dep != name {
					continue
				}
				inDegree[m.Name]--
				if inDegree[m.Name] == 0 {
					queue = append(queue, m.Name)
				}
			}
		}
	}

	if len(result) != len(l.Modules) {
		return l.Modules
	}
	return result
}
