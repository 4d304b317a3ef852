package registry

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var (
	ErrIllegalName = errors.New("registry: illegal name")
	ErrNameExists  = errors.New("registry: name already exists")
	ErrIDExists    = errors.New("registry: id already exists")
	ErrNoFreeSpace = errors.New("registry: no free space")
	ErrNotFound    = errors.New("registry: not found")
)

// ID identifies a registered object. The zero ID is never allocated.
type ID uint32

// Name is a namespaced registry key written as "namespace:key".
type Name struct {
	Namespace string
	Key       string
}

// NewName builds a name without validating it.
func NewName(ns, key string) Name { return Name{Namespace: ns, Key: key} }

// Core returns a name in the built-in "core" namespace.
func Core(key string) Name { return Name{Namespace: "core", Key: key} }

// ParseName parses "namespace:key". A bare key is placed in the core namespace.
func ParseName(s string) (Name, error) {
	ns, key, ok := strings.Cut(s, ":")
	if !ok {
		ns, key = "core", s
	}
	n := Name{Namespace: ns, Key: key}
	if !n.Valid() {
		return Name{}, fmt.Errorf("%w: %q", ErrIllegalName, s)
	}
	return n, nil
}

func (n Name) String() string { return n.Namespace + ":" + n.Key }

// Valid reports whether both parts are non-empty and made of [a-z0-9_].
func (n Name) Valid() bool {
	return validPart(n.Namespace) && validPart(n.Key)
}

func validPart(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_') {
			return false
		}
	}
	return true
}

// Object is anything that can be stored in a Registry.
type Object interface {
	RegistryName() Name
}

// Registry is an ordered name→id table. It is not safe for concurrent
// mutation; once populated it may be shared by any number of readers.
type Registry[T Object] struct {
	byID   map[ID]T
	byName map[Name]ID
	nextID ID
}

// New returns an empty registry.
func New[T Object]() *Registry[T] {
	return &Registry[T]{
		byID:   make(map[ID]T),
		byName: make(map[Name]ID),
		nextID: 1,
	}
}

func (r *Registry[T]) allocateID() (ID, error) {
	for {
		if r.nextID == 0 {
			return 0, ErrNoFreeSpace
		}
		id := r.nextID
		if r.nextID == math.MaxUint32 {
			r.nextID = 0
		} else {
			r.nextID++
		}
		if _, taken := r.byID[id]; !taken {
			return id, nil
		}
	}
}

// Push registers obj under the next free id.
func (r *Registry[T]) Push(obj T) (ID, error) {
	name := obj.RegistryName()
	if !name.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrIllegalName, name)
	}
	if _, ok := r.byName[name]; ok {
		return 0, fmt.Errorf("%w: %s", ErrNameExists, name)
	}
	id, err := r.allocateID()
	if err != nil {
		return 0, fmt.Errorf("register %s: %w", name, err)
	}
	r.byID[id] = obj
	r.byName[name] = id
	return id, nil
}

// InsertWithID registers obj under a caller-chosen id.
func (r *Registry[T]) InsertWithID(id ID, obj T) error {
	name := obj.RegistryName()
	if id == 0 {
		return fmt.Errorf("register %s: %w", name, ErrNoFreeSpace)
	}
	if existing, ok := r.byID[id]; ok {
		return fmt.Errorf("%w: %d held by %s when registering %s", ErrIDExists, id, existing.RegistryName(), name)
	}
	if !name.Valid() {
		return fmt.Errorf("%w: %q", ErrIllegalName, name)
	}
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrNameExists, name)
	}
	r.byID[id] = obj
	r.byName[name] = id
	if id >= r.nextID && id != math.MaxUint32 {
		r.nextID = id + 1
	}
	return nil
}

// ByName returns the id and object registered under name.
func (r *Registry[T]) ByName(name Name) (ID, T, bool) {
	id, ok := r.byName[name]
	if !ok {
		var zero T
		return 0, zero, false
	}
	return id, r.byID[id], true
}

// ByID returns the object registered under id.
func (r *Registry[T]) ByID(id ID) (T, bool) {
	obj, ok := r.byID[id]
	return obj, ok
}

// IDOf returns the id of name or ErrNotFound.
func (r *Registry[T]) IDOf(name Name) (ID, error) {
	id, ok := r.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return id, nil
}

// Len returns the number of registered objects.
func (r *Registry[T]) Len() int { return len(r.byID) }

// IDs returns every registered id in ascending order.
func (r *Registry[T]) IDs() []ID {
	ids := make([]ID, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Each calls fn for every object in ascending id order.
func (r *Registry[T]) Each(fn func(id ID, obj T)) {
	for _, id := range r.IDs() {
		fn(id, r.byID[id])
	}
}

// All returns every object in ascending id order.
func (r *Registry[T]) All() []T {
	out := make([]T, 0, len(r.byID))
	r.Each(func(_ ID, obj T) { out = append(out, obj) })
	return out
}
