package java

import (
	"sort"
	"sync"
)

// Provider answers metadata questions about types by canonical name.
// Implementations must be safe for concurrent use.
type Provider interface {
	Lookup(name string) (*TypeInfo, bool)
}

// Registry is an in-memory Provider.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*TypeInfo
}

func NewRegistry(infos ...*TypeInfo) *Registry {
	r := &Registry{types: make(map[string]*TypeInfo)}
	r.Add(infos...)
	return r
}

// Add registers infos, replacing earlier entries with the same name.
func (r *Registry) Add(infos ...*TypeInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, info := range infos {
		r.types[info.Name] = info
	}
}

// Replace drops every type that came from origin and registers infos in
// their place.
func (r *Registry) Replace(origin URLString, infos ...*TypeInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, info := range r.types {
		if info.Origin == origin {
			delete(r.types, name)
		}
	}
	for _, info := range infos {
		r.types[info.Name] = info
	}
}

func (r *Registry) Lookup(name string) (*TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.types[name]
	return info, ok
}

// Types returns the registered types sorted by name.
func (r *Registry) Types() []*TypeInfo {
	r.mu.RLock()
	result := make([]*TypeInfo, 0, len(r.types))
	for _, info := range r.types {
		result = append(result, info)
	}
	r.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Chain asks each provider in turn; the first match wins.
type Chain []Provider

func (c Chain) Lookup(name string) (*TypeInfo, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if info, ok := p.Lookup(name); ok {
			return info, true
		}
	}
	return nil, false
}
