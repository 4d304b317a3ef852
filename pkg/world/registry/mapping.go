package registry

import (
	"fmt"
	"sort"
	"strings"
)

// Mapping is a serializable id assignment for a registry.
type Mapping struct {
	IDs   []ID     `json:"ids"`
	Names []string `json:"names"`
}

// IDMapping exports the current id assignment in ascending id order.
func (r *Registry[T]) IDMapping() Mapping {
	var m Mapping
	r.Each(func(id ID, obj T) {
		m.IDs = append(m.IDs, id)
		m.Names = append(m.Names, obj.RegistryName().String())
	})
	return m
}

// WithIDMapping returns a copy of r whose objects use the ids from m.
// Names in m that r does not know are reported together; objects of r
// that m does not mention get fresh ids after the mapped ones.
func (r *Registry[T]) WithIDMapping(m Mapping) (*Registry[T], error) {
	if len(m.IDs) != len(m.Names) {
		return nil, fmt.Errorf("registry mapping: %d ids for %d names", len(m.IDs), len(m.Names))
	}

	out := New[T]()
	var missing []string
	mapped := make(map[Name]bool, len(m.Names))
	for i, raw := range m.Names {
		name, err := ParseName(raw)
		if err != nil {
			return nil, fmt.Errorf("registry mapping: %w", err)
		}
		_, obj, ok := r.ByName(name)
		if !ok {
			missing = append(missing, raw)
			continue
		}
		if err := out.InsertWithID(m.IDs[i], obj); err != nil {
			return nil, fmt.Errorf("registry mapping: %w", err)
		}
		mapped[name] = true
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("registry mapping: %w: %s", ErrNotFound, strings.Join(missing, ", "))
	}

	var rest []error
	r.Each(func(_ ID, obj T) {
		if mapped[obj.RegistryName()] {
			return
		}
		if _, err := out.Push(obj); err != nil {
			rest = append(rest, err)
		}
	})
	if len(rest) > 0 {
		return nil, fmt.Errorf("registry mapping: %w", rest[0])
	}
	return out, nil
}
