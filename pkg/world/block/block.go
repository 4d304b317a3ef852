// Package block defines block types and the block registry.
package block

import (
	"fmt"

	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

// Entry is one voxel value: a registered block id plus variant metadata.
// It is the element type of chunk palette storage.
type Entry struct {
	ID   registry.ID
	Meta uint16
}

func (e Entry) String() string {
	if e.Meta == 0 {
		return fmt.Sprintf("block#%d", e.ID)
	}
	return fmt.Sprintf("block#%d:%d", e.ID, e.Meta)
}

// Definition describes a block type.
type Definition struct {
	Name  registry.Name
	Solid bool
	Color uint32 // 0xRRGGBB, used by debug renderers
}

func (d *Definition) RegistryName() registry.Name { return d.Name }

// Registry maps block names to ids.
type Registry = registry.Registry[*Definition]

// Built-in block names.
var (
	Empty     = registry.Core("empty")
	Stone     = registry.Core("stone")
	Dirt      = registry.Core("dirt")
	Grass     = registry.Core("grass")
	SnowGrass = registry.Core("snow_grass")
	Water     = registry.Core("water")
	Sand      = registry.Core("sand")
	Gravel    = registry.Core("gravel")
	Bedrock   = registry.Core("bedrock")
	Log       = registry.Core("log")
	Leaves    = registry.Core("leaves")
	CoalOre   = registry.Core("coal_ore")
	IronOre   = registry.Core("iron_ore")
)

// Defaults returns the built-in block definitions in registration order.
// core:empty is always first so it receives id 1.
func Defaults() []*Definition {
	return []*Definition{
		{Name: Empty},
		{Name: Stone, Solid: true, Color: 0x7f7f7f},
		{Name: Dirt, Solid: true, Color: 0x8b5a2b},
		{Name: Grass, Solid: true, Color: 0x5f9f35},
		{Name: SnowGrass, Solid: true, Color: 0xf0f4f8},
		{Name: Water, Color: 0x3f76e4},
		{Name: Sand, Solid: true, Color: 0xdbd3a0},
		{Name: Gravel, Solid: true, Color: 0x857b7b},
		{Name: Bedrock, Solid: true, Color: 0x333333},
		{Name: Log, Solid: true, Color: 0x6b511f},
		{Name: Leaves, Solid: true, Color: 0x3a7d22},
		{Name: CoalOre, Solid: true, Color: 0x3b3b3b},
		{Name: IronOre, Solid: true, Color: 0xd8af93},
	}
}

// NewRegistry returns a registry holding the given definitions, or the
// built-in set when defs is empty.
func NewRegistry(defs ...*Definition) (*Registry, error) {
	if len(defs) == 0 {
		defs = Defaults()
	}
	r := registry.New[*Definition]()
	for _, d := range defs {
		if _, err := r.Push(d); err != nil {
			return nil, fmt.Errorf("register block: %w", err)
		}
	}
	return r, nil
}

// Lookup resolves name to an Entry with zero metadata.
func Lookup(r *Registry, name registry.Name) (Entry, error) {
	id, err := r.IDOf(name)
	if err != nil {
		return Entry{}, fmt.Errorf("block %s: %w", name, err)
	}
	return Entry{ID: id}, nil
}
