package ast

import "fmt"

// Proxy is how a grammar-generated handle manipulates a concrete Go type
// without the driver needing to import it. A caller registers one Proxy per
// type named in the grammar description's node/base declarations; handles
// then address that type only by name, through the Registry.
type Proxy interface {
	// New allocates a zero-valued instance of the proxied type out of the
	// arena and returns a pointer to it, tagged with the type's name.
	New(a Allocator) Item

	// SetField assigns value to the named field of obj, which must be an
	// Object item this proxy produced. Field names come from the
	// grammar's construction marks; a field that doesn't exist on the
	// underlying type is a construction-time error raised while binding
	// handles, not a runtime one.
	SetField(obj Item, field string, value Item) error

	// NewVector allocates a zero-length vector instance of the proxied
	// type out of the arena and returns it, tagged with the type's name.
	NewVector(a Allocator) Item

	// Push appends value to vec, which must be a Vector item this proxy
	// produced.
	Push(vec Item, value Item) error
}

// Allocator is the subset of the arena's API a Proxy needs: it charges an
// allocation's size against a construction/runtime accounting scope
// without the ast package depending on the arena package's concrete type,
// which would otherwise be a cyclic import (arena's own item-producing
// helpers are generic functions, not ast values).
type Allocator interface {
	Alloc(sz int)
}

// Registry maps the type names a grammar description declares to the
// Proxy each one is backed by. A Build call receives a Registry alongside
// the DSL text; every node type name the grammar declares must have an
// entry, checked by Build after meta-info resolution.
type Registry struct {
	proxies map[string]Proxy
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{proxies: map[string]Proxy{}}
}

// Register associates typeName with proxy. Registering the same type name
// twice replaces the earlier association.
func (r *Registry) Register(typeName string, proxy Proxy) {
	r.proxies[typeName] = proxy
}

// Lookup returns the Proxy registered for typeName, or nil if none was.
func (r *Registry) Lookup(typeName string) (Proxy, bool) {
	p, ok := r.proxies[typeName]
	return p, ok
}

// MissingTypes returns the subset of names that have no registered proxy,
// preserving the input order. A Build call uses this to report every
// missing type proxy at once instead of failing on the first.
func (r *Registry) MissingTypes(names []string) []string {
	var missing []string
	for _, n := range names {
		if _, ok := r.proxies[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

// ErrUnknownField is returned by a generated Proxy's SetField when the
// field name a construction hint names doesn't exist on the backing type.
type ErrUnknownField struct {
	TypeName, Field string
}

func (e *ErrUnknownField) Error() string {
	return fmt.Sprintf("ast: type %q has no field %q", e.TypeName, e.Field)
}

// ErrNotAVector is returned by a generated Proxy's Push when the proxy's
// type has no vector representation to push onto.
type ErrNotAVector struct {
	TypeName string
}

func (e *ErrNotAVector) Error() string {
	return fmt.Sprintf("ast: type %q has no vector representation", e.TypeName)
}
