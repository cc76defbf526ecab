package annotation

import (
	"strings"

	"github.com/dhamidi/annox/java"
)

// Resolver resolves type names as written in one source file. Results
// are remembered for the lifetime of the resolver, which is one scan.
type Resolver struct {
	ctx      *java.SourceContext
	provider java.Provider
	locals   map[string]bool
	memo     map[string]TypeRef
}

// NewResolver returns a resolver for names written in the file described
// by ctx. A nil ctx stands for a file without package or imports.
func NewResolver(ctx *java.SourceContext, provider java.Provider) *Resolver {
	if ctx == nil {
		ctx = &java.SourceContext{}
	}
	r := &Resolver{
		ctx:      ctx,
		provider: provider,
		locals:   make(map[string]bool, len(ctx.Locals)),
		memo:     map[string]TypeRef{},
	}
	for _, full := range ctx.Locals {
		r.locals[full] = true
	}
	return r
}

// Resolve resolves a type name such as `Map.Entry<K, V>[]` or
// `String...`. Type arguments are dropped; array brackets and varargs
// dots count as dimensions. The returned reference always carries a
// name; ok reports whether it was resolved.
//
// Simple names are looked up, in order, among the types declared in the
// file, the single-type imports, the on-demand imports, the file's
// package and java.lang. Qualified names are tried as written and then
// with their first segment resolved as a simple name.
func (r *Resolver) Resolve(name string) (TypeRef, bool) {
	base, depth := splitTypeName(name)
	ref, ok := r.memo[base]
	if !ok {
		ref = r.resolve(base)
		r.memo[base] = ref
	}
	ref.ArrayDepth += depth
	return ref, ref.Resolved
}

// ResolveType resolves a declared type.
func (r *Resolver) ResolveType(t java.Type) TypeRef {
	ref, _ := r.Resolve(t.Name)
	ref.ArrayDepth += t.ArrayDepth
	return ref
}

// Lookup returns the metadata of a resolved, non-array type.
func (r *Resolver) Lookup(ref TypeRef) (*java.TypeInfo, bool) {
	if !ref.Resolved || ref.ArrayDepth > 0 || r.provider == nil {
		return nil, false
	}
	return r.provider.Lookup(ref.Name)
}

func (r *Resolver) resolve(name string) TypeRef {
	switch {
	case name == "":
		return TypeRef{}
	case name == "void" || java.IsPrimitiveName(name):
		return TypeRef{Name: name, Resolved: true}
	case strings.Contains(name, "."):
		return r.resolveQualified(name)
	}
	if ref, ok := r.resolveSimple(name); ok {
		return ref
	}
	return TypeRef{Name: name}
}

func (r *Resolver) resolveQualified(name string) TypeRef {
	if r.known(name) {
		return TypeRef{Name: name, Resolved: true}
	}
	head, rest, _ := strings.Cut(name, ".")
	if outer, ok := r.resolveSimple(head); ok && outer.Resolved {
		candidate := outer.Name + "." + rest
		if r.known(candidate) {
			return TypeRef{Name: candidate, Resolved: true}
		}
	}
	return TypeRef{Name: name}
}

// resolveSimple reports ok when some rule claimed the name. A
// single-type import claims its simple name even when the imported type
// is unknown.
func (r *Resolver) resolveSimple(name string) (TypeRef, bool) {
	if full, ok := r.ctx.Locals[name]; ok {
		return TypeRef{Name: full, Resolved: true}, true
	}
	for _, imp := range r.ctx.Imports {
		if imp.Wildcard || lastSegment(imp.Name) != name {
			continue
		}
		if !imp.Static {
			return TypeRef{Name: imp.Name, Resolved: r.known(imp.Name)}, true
		}
		if r.known(imp.Name) {
			return TypeRef{Name: imp.Name, Resolved: true}, true
		}
	}
	for _, imp := range r.ctx.Imports {
		if !imp.Wildcard {
			continue
		}
		if candidate := imp.Name + "." + name; r.known(candidate) {
			return TypeRef{Name: candidate, Resolved: true}, true
		}
	}
	if candidate := r.ctx.Qualify(name); r.known(candidate) {
		return TypeRef{Name: candidate, Resolved: true}, true
	}
	if candidate := "java.lang." + name; r.known(candidate) {
		return TypeRef{Name: candidate, Resolved: true}, true
	}
	return TypeRef{}, false
}

func (r *Resolver) known(name string) bool {
	if r.locals[name] {
		return true
	}
	if r.provider == nil {
		return false
	}
	_, ok := r.provider.Lookup(name)
	return ok
}

// splitTypeName removes whitespace, type arguments and array suffixes
// from a written type name and counts the dimensions.
func splitTypeName(name string) (string, int) {
	var sb strings.Builder
	depth := 0
	nesting := 0
	for _, c := range name {
		switch {
		case c == '<':
			nesting++
		case c == '>':
			nesting--
		case nesting > 0, c == ' ', c == '\t', c == '\n', c == '\r':
		default:
			sb.WriteRune(c)
		}
	}
	base := sb.String()
	for {
		switch {
		case strings.HasSuffix(base, "[]"):
			base = base[:len(base)-2]
		case strings.HasSuffix(base, "..."):
			base = base[:len(base)-3]
		default:
			return base, depth
		}
		depth++
	}
}

func lastSegment(name string) string {
	return name[strings.LastIndex(name, ".")+1:]
}
