package naming

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MapNamespace is an in-memory Namespace.
type MapNamespace struct {
	name  string
	mu    sync.RWMutex
	items map[string]any
}

var _ Namespace = (*MapNamespace)(nil)

// NewMapNamespace returns an empty namespace. name only appears in errors.
func NewMapNamespace(name string) *MapNamespace {
	return &MapNamespace{name: name, items: map[string]any{}}
}

// Provide binds val under name and returns the namespace for chaining.
func (n *MapNamespace) Provide(name string, val any) *MapNamespace {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items[name] = val
	return n
}

// Get returns the value bound to name.
func (n *MapNamespace) Get(name string) (any, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.items[name]
	return v, ok
}

// MustGet returns the value bound to name or panics.
func (n *MapNamespace) MustGet(name string) any {
	v, ok := n.Get(name)
	if !ok {
		panic(fmt.Errorf("naming: context %q missing name %q", n.name, name))
	}
	return v
}

// Len returns the number of bindings.
func (n *MapNamespace) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.items)
}

// Names returns the bound names in sorted order.
func (n *MapNamespace) Names() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	names := make([]string, 0, len(n.items))
	for k := range n.items {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Lookup implements Namespace. Panics raised while reading are converted to
// ErrNamespacePanic.
func (n *MapNamespace) Lookup(ctx context.Context, name string) (val any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			val = nil
			err = fmt.Errorf("%w: %v", ErrNamespacePanic, rec)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := n.Get(name)
	if !ok {
		return nil, &NotFoundError{Context: n.name, Name: name}
	}
	return v, nil
}

// MapDirectory is an in-memory Directory of mounted namespaces.
type MapDirectory struct {
	mu         sync.RWMutex
	namespaces map[string]Namespace
}

var _ Directory = (*MapDirectory)(nil)

// NewMapDirectory returns an empty directory.
func NewMapDirectory() *MapDirectory {
	return &MapDirectory{namespaces: map[string]Namespace{}}
}

// FromMap builds a directory from context -> name -> value data.
func FromMap(data map[string]map[string]any) *MapDirectory {
	d := NewMapDirectory()
	for ctxName, entries := range data {
		ns := NewMapNamespace(ctxName)
		for name, v := range entries {
			ns.Provide(name, v)
		}
		d.Mount(ctxName, ns)
	}
	return d
}

// Mount registers ns under name, replacing any previous mount.
func (d *MapDirectory) Mount(name string, ns Namespace) *MapDirectory {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.namespaces[name] = ns
	return d
}

// Bind stores val under name in context ctxName, creating a MapNamespace
// when the context is not mounted yet. It panics if ctxName is mounted with
// a Namespace that is not a *MapNamespace.
func (d *MapDirectory) Bind(ctxName, name string, val any) *MapDirectory {
	d.mu.Lock()
	ns, ok := d.namespaces[ctxName]
	if !ok {
		ns = NewMapNamespace(ctxName)
		d.namespaces[ctxName] = ns
	}
	d.mu.Unlock()

	mns, ok := ns.(*MapNamespace)
	if !ok {
		panic(fmt.Errorf("naming: context %q is mounted with %T, cannot bind", ctxName, ns))
	}
	mns.Provide(name, val)
	return d
}

// Contexts returns the mounted context names in sorted order.
func (d *MapDirectory) Contexts() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.namespaces))
	for k := range d.namespaces {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// OpenContext implements Directory.
func (d *MapDirectory) OpenContext(ctx context.Context, name string) (Namespace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	ns, ok := d.namespaces[name]
	d.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{Context: name}
	}
	return ns, nil
}
