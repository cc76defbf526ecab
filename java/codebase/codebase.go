// Package codebase keeps a set of Java source files parsed, registers the
// types they declare and scans them for annotations in parallel.
package codebase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/annox/format"
	"github.com/dhamidi/annox/java"
	"github.com/dhamidi/annox/java/annotation"
	"github.com/dhamidi/annox/java/parser"
)

var log = commonlog.GetLogger("annox.codebase")

// ErrIncomplete marks a file whose source ends in the middle of a
// declaration.
var ErrIncomplete = errors.New("incomplete compilation unit")

type Option func(*Codebase)

// WithClasspath sets where annotation types not declared in the sources
// are looked up.
func WithClasspath(p java.Provider) Option {
	return func(c *Codebase) {
		c.classpath = p
	}
}

// WithWorkers bounds the number of files parsed or scanned at once.
// Zero or less means one per CPU.
func WithWorkers(n int) Option {
	return func(c *Codebase) {
		c.workers = n
	}
}

func WithAnnotationOptions(opts ...annotation.Option) Option {
	return func(c *Codebase) {
		c.annotationOpts = append(c.annotationOpts, opts...)
	}
}

// Codebase is safe for concurrent use.
type Codebase struct {
	roots          []string
	classpath      java.Provider
	workers        int
	annotationOpts []annotation.Option

	mu      sync.RWMutex
	files   map[string]*FileInfo
	sources *java.Registry
}

// FileInfo is one parsed source file. It is replaced, never modified,
// when the file changes.
type FileInfo struct {
	Path    string
	Content []byte
	AST     *parser.Node
	Context *java.SourceContext
	Types   []*java.TypeInfo
	Err     error
}

// New returns a codebase over roots, which are directories searched for
// .java files or single files.
func New(roots []string, opts ...Option) *Codebase {
	c := &Codebase{
		roots:   roots,
		files:   make(map[string]*FileInfo),
		sources: java.NewRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.workers <= 0 {
		c.workers = runtime.GOMAXPROCS(0)
	}
	return c
}

func (c *Codebase) Roots() []string {
	return c.roots
}

// Provider answers type lookups from the sources first, then the
// classpath.
func (c *Codebase) Provider() java.Provider {
	return java.Chain{c.sources, c.classpath}
}

// Types returns the types declared in the sources, sorted by name.
func (c *Codebase) Types() []*java.TypeInfo {
	return c.sources.Types()
}

// SourceFiles lists the .java files under the roots in lexical order.
// Hidden directories are skipped.
func (c *Codebase) SourceFiles() ([]string, error) {
	var files []string
	for _, root := range c.roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) == ".java" {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return slices.Compact(files), nil
}

// ScanAll parses every source file, bounded by the worker count, and
// registers the types they declare. Files that cannot be read or parsed
// are recorded with their error and do not stop the scan.
func (c *Codebase) ScanAll(ctx context.Context) error {
	files, err := c.SourceFiles()
	if err != nil {
		return err
	}
	log.Infof("parsing %d files with %d workers", len(files), c.workers)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := c.ScanFile(path); err != nil {
				log.Warningf("%s: %s", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (c *Codebase) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		c.mu.Lock()
		c.files[path] = &FileInfo{Path: path, Err: err}
		c.mu.Unlock()
		return err
	}
	return c.UpdateFile(path, content)
}

// UpdateFile parses content as the new text of path and replaces the
// types the file declared before.
func (c *Codebase) UpdateFile(path string, content []byte) error {
	f := parseFile(path, content)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[path] = f
	c.sources.Replace(java.FileURL(path), f.Types...)
	log.Debugf("parsed %s: %d types", path, len(f.Types))
	return f.Err
}

func parseFile(path string, content []byte) *FileInfo {
	f := &FileInfo{Path: path, Content: content}
	f.AST = parser.ParseCompilationUnit(bytes.NewReader(content), parser.WithFile(path)).Finish()
	if f.AST == nil {
		f.Err = ErrIncomplete
		return f
	}
	f.Context = java.ContextFromCompilationUnit(f.AST, path)
	f.Types = java.TypesInContext(f.AST, f.Context)
	return f
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
	c.sources.Replace(java.FileURL(path))
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Paths returns the paths of the known files in lexical order.
func (c *Codebase) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.files))
	for path := range c.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func (c *Codebase) scanner() *annotation.Scanner {
	return annotation.NewScanner(c.Provider(), c.annotationOpts...)
}

// FileResults scans one file. Declarations come in source order.
func (c *Codebase) FileResults(path string) ([]format.Result, error) {
	f := c.GetFile(path)
	if f == nil {
		return nil, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}
	return scanFile(c.scanner(), f)
}

func scanFile(s *annotation.Scanner, f *FileInfo) ([]format.Result, error) {
	if f.Err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, f.Err)
	}
	seq, err := s.Scan(f.AST)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	var results []format.Result
	for decl, instances := range seq {
		results = append(results, format.Result{Declaration: decl, Instances: instances})
	}
	return results, nil
}

// Results scans every known file in parallel and returns the results
// ordered by file, then by position. Files that failed to parse are
// logged and left out.
func (c *Codebase) Results(ctx context.Context) ([]format.Result, error) {
	paths := c.Paths()
	perFile := make([][]format.Result, len(paths))
	s := c.scanner()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results, err := scanFile(s, c.GetFile(path))
			if err != nil {
				log.Warningf("skipping %s", err)
				return nil
			}
			perFile[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.Concat(perFile...), nil
}

// Problems flattens the unresolved values of results.
func Problems(results []format.Result) []annotation.Problem {
	var problems []annotation.Problem
	for _, r := range results {
		problems = append(problems, annotation.Problems(r.Declaration, r.Instances)...)
	}
	return problems
}

// InstanceAt returns the innermost annotation of path whose span
// contains the 1-based line and column, with the declaration it applies
// to.
func (c *Codebase) InstanceAt(path string, line, column int) (annotation.Declaration, *annotation.Instance, bool) {
	results, err := c.FileResults(path)
	if err != nil {
		return annotation.Declaration{}, nil, false
	}
	for _, r := range results {
		for _, inst := range r.Instances {
			if inst.Span.Contains(line, column) {
				return r.Declaration, innermost(inst, line, column), true
			}
		}
	}
	return annotation.Declaration{}, nil, false
}

func innermost(inst *annotation.Instance, line, column int) *annotation.Instance {
	for _, e := range inst.Elements {
		// Defaults were written in another file.
		if e.Defaulted {
			continue
		}
		if found := innermostIn(e.Value, line, column); found != nil {
			return found
		}
	}
	return inst
}

func innermostIn(v annotation.Value, line, column int) *annotation.Instance {
	switch v.Kind {
	case annotation.KindAnnotation:
		if v.Annotation != nil && v.Annotation.Span.Contains(line, column) {
			return innermost(v.Annotation, line, column)
		}
	case annotation.KindArray:
		for _, elem := range v.Elements {
			if found := innermostIn(elem, line, column); found != nil {
				return found
			}
		}
	}
	return nil
}
