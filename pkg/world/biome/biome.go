// Package biome defines biome definitions, their climate ranges, block
// placement rules and surface height functions.
package biome

import (
	"fmt"

	"github.com/OCharnyshevich/worldgen/pkg/world/block"
	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

// Climate is a point in the (elevation, temperature, moisture) space.
// Each axis lies roughly in [0, 5].
type Climate struct {
	Elevation   float64
	Temperature float64
	Moisture    float64
}

// Entry is one weighted biome contribution at a world column.
type Entry struct {
	ID     registry.ID
	Weight float64
}

// Definition describes a biome.
type Definition struct {
	Name  registry.Name
	Color uint32 // 0xRRGGBB

	Elevation   Range
	Temperature Range
	Moisture    Range

	Rule    Rule
	Surface Surface

	BlendInfluence float64
	BlockInfluence float64
	CanGenerate    bool
}

func (d *Definition) RegistryName() registry.Name { return d.Name }

// Matches reports whether all three climate axes fall inside the definition's ranges.
func (d *Definition) Matches(c Climate) bool {
	return d.Elevation.Contains(c.Elevation) &&
		d.Temperature.Contains(c.Temperature) &&
		d.Moisture.Contains(c.Moisture)
}

// Registry maps biome names to ids.
type Registry = registry.Registry[*Definition]

// Built-in biome names.
var (
	Void      = registry.Core("void")
	Ocean     = registry.Core("ocean")
	Beach     = registry.Core("beach")
	River     = registry.Core("river")
	Plains    = registry.Core("plains")
	Hills     = registry.Core("hills")
	Mountains = registry.Core("mountains")
)

// NewRegistry returns a registry holding defs in order.
func NewRegistry(defs ...*Definition) (*Registry, error) {
	r := registry.New[*Definition]()
	for _, d := range defs {
		if d.Rule == nil {
			d.Rule = EmptyRule{}
		}
		if d.Surface == nil {
			d.Surface = ConstantSurface(0)
		}
		if _, err := r.Push(d); err != nil {
			return nil, fmt.Errorf("register biome: %w", err)
		}
	}
	return r, nil
}

// Generatable returns the ids of every biome with CanGenerate set, in id order.
func Generatable(r *Registry) []registry.ID {
	var out []registry.ID
	r.Each(func(id registry.ID, d *Definition) {
		if d.CanGenerate {
			out = append(out, id)
		}
	})
	return out
}

// LandRule is grass (snowy at y>=80) on top, four blocks of dirt, then stone.
func LandRule(blocks *block.Registry) (Rule, error) {
	names := []registry.Name{block.Grass, block.SnowGrass, block.Dirt, block.Stone}
	rules := make([]BlockRule, len(names))
	for i, n := range names {
		r, err := NewBlockRule(blocks, n)
		if err != nil {
			return nil, err
		}
		rules[i] = r
	}
	grass, snow, dirt, stone := rules[0], rules[1], rules[2], rules[3]

	return ChainRule{
		ConditionRule{If: AtGround{}, Then: ChainRule{
			ConditionRule{If: YAtLeast(80), Then: snow},
			grass,
		}},
		ConditionRule{If: Depth{Min: 1, Max: 4}, Then: dirt},
		ConditionRule{If: BelowGround{}, Then: stone},
	}, nil
}

// WaterRule fills below sea level: stone under the ground, water above it.
func WaterRule(blocks *block.Registry) (Rule, error) {
	stone, err := NewBlockRule(blocks, block.Stone)
	if err != nil {
		return nil, err
	}
	water, err := NewBlockRule(blocks, block.Water)
	if err != nil {
		return nil, err
	}
	return ConditionRule{If: BelowSeaLevel{}, Then: ChainRule{
		ConditionRule{If: DepthAtLeast(1), Then: stone},
		water,
	}}, nil
}

// ShoreRule is sand down to three blocks under the ground, stone below,
// and water up to sea level.
func ShoreRule(blocks *block.Registry) (Rule, error) {
	sand, err := NewBlockRule(blocks, block.Sand)
	if err != nil {
		return nil, err
	}
	stone, err := NewBlockRule(blocks, block.Stone)
	if err != nil {
		return nil, err
	}
	water, err := NewBlockRule(blocks, block.Water)
	if err != nil {
		return nil, err
	}
	return ChainRule{
		ConditionRule{If: Depth{Min: 0, Max: 3}, Then: sand},
		ConditionRule{If: BelowGround{}, Then: stone},
		ConditionRule{If: BelowSeaLevel{}, Then: water},
	}, nil
}

// Defaults returns the built-in biome set with rules resolved against blocks.
func Defaults(blocks *block.Registry) ([]*Definition, error) {
	land, err := LandRule(blocks)
	if err != nil {
		return nil, fmt.Errorf("default biomes: %w", err)
	}
	water, err := WaterRule(blocks)
	if err != nil {
		return nil, fmt.Errorf("default biomes: %w", err)
	}
	shore, err := ShoreRule(blocks)
	if err != nil {
		return nil, fmt.Errorf("default biomes: %w", err)
	}

	return []*Definition{
		{
			Name:           Void,
			Color:          0x000000,
			Elevation:      Full(),
			Temperature:    Full(),
			Moisture:       Full(),
			Rule:           EmptyRule{},
			Surface:        ConstantSurface(0),
			BlendInfluence: 1,
			BlockInfluence: 1,
		},
		{
			Name:           Plains,
			Color:          0x14b40a,
			Elevation:      Closed(1.1, 2.5),
			Temperature:    Full(),
			Moisture:       Below(2.5),
			Rule:           land,
			Surface:        PlainsSurface{},
			BlendInfluence: 0.5,
			BlockInfluence: 1,
			CanGenerate:    true,
		},
		{
			Name:           Hills,
			Color:          0x0f6e0a,
			Elevation:      Closed(2.5, 3.5),
			Temperature:    Full(),
			Moisture:       Below(2.5),
			Rule:           land,
			Surface:        HillsSurface{},
			BlendInfluence: 1,
			BlockInfluence: 1,
			CanGenerate:    true,
		},
		{
			Name:           Mountains,
			Color:          0xdcdcdc,
			Elevation:      AtLeast(3.5),
			Temperature:    Full(),
			Moisture:       Below(2.5),
			Rule:           land,
			Surface:        MountainsSurface{},
			BlendInfluence: 0.75,
			BlockInfluence: 1,
			CanGenerate:    true,
		},
		{
			Name:           Ocean,
			Color:          0x0a78b4,
			Elevation:      Below(1.0),
			Temperature:    Full(),
			Moisture:       AtLeast(2.5),
			Rule:           water,
			Surface:        OceanSurface{},
			BlendInfluence: 1,
			BlockInfluence: 1,
			CanGenerate:    true,
		},
		{
			Name:           Beach,
			Color:          0xe6d28c,
			Elevation:      Closed(1.0, 1.1),
			Temperature:    Full(),
			Moisture:       Below(2.5),
			Rule:           shore,
			Surface:        ConstantSurface(1),
			BlendInfluence: 1,
			BlockInfluence: 1,
			CanGenerate:    true,
		},
		{
			Name:           River,
			Color:          0x2a5fd0,
			Elevation:      Full(),
			Temperature:    Full(),
			Moisture:       Full(),
			Rule:           water,
			Surface:        ConstantSurface(-3),
			BlendInfluence: 1,
			BlockInfluence: 1,
		},
	}, nil
}

// DefaultRegistry registers the built-in biomes.
func DefaultRegistry(blocks *block.Registry) (*Registry, error) {
	defs, err := Defaults(blocks)
	if err != nil {
		return nil, err
	}
	return NewRegistry(defs...)
}
