// Package registry loads, validates and indexes declarative resource
// definitions.
//
// A Registry is built once by Load (or one of its variants) and is
// read-only afterwards, so it may be shared between goroutines without
// locking. A load either succeeds for every definition in every source or
// fails as a whole; a partially valid set is never returned.
package registry

import (
	"iter"
	"slices"
)

// Registry indexes resource definitions by name and by owning service.
type Registry struct {
	byName    map[string]*ResourceDefinition
	order     []*ResourceDefinition
	byService map[string][]*ResourceDefinition
	services  []string
}

func newRegistry() *Registry {
	return &Registry{
		byName:    make(map[string]*ResourceDefinition),
		byService: make(map[string][]*ResourceDefinition),
	}
}

// add indexes def. The caller has already checked the name is unique.
func (r *Registry) add(def *ResourceDefinition) {
	r.byName[def.Name] = def
	r.order = append(r.order, def)
	if _, ok := r.byService[def.Service]; !ok {
		r.services = append(r.services, def.Service)
	}
	r.byService[def.Service] = append(r.byService[def.Service], def)
}

// Lookup returns the definition with the given name.
func (r *Registry) Lookup(name string) (*ResourceDefinition, bool) {
	def, ok := r.byName[name]
	return def, ok
}

// ResourcesForService yields the service's resources in load order. The
// sequence may be iterated any number of times.
func (r *Registry) ResourcesForService(svc string) iter.Seq[*ResourceDefinition] {
	return func(yield func(*ResourceDefinition) bool) {
		for _, def := range r.byService[svc] {
			if !yield(def) {
				return
			}
		}
	}
}

// All yields every resource in load order.
func (r *Registry) All() iter.Seq[*ResourceDefinition] {
	return slices.Values(r.order)
}

// Names returns every resource name in load order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	for i, def := range r.order {
		names[i] = def.Name
	}
	return names
}

// Services returns the services that own at least one resource, in order
// of first appearance.
func (r *Registry) Services() []string {
	return slices.Clone(r.services)
}

// Len returns the number of resources.
func (r *Registry) Len() int {
	return len(r.order)
}
