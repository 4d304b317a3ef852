package gen

import (
	"fmt"

	"github.com/OCharnyshevich/worldgen/pkg/world/biome"
	"github.com/OCharnyshevich/worldgen/pkg/world/block"
	"github.com/OCharnyshevich/worldgen/pkg/world/coord"
	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

// FlatLayer is a horizontal band of one block type.
type FlatLayer struct {
	Block     registry.Name
	Thickness int
}

// DefaultFlatLayers is a classic superflat stack:
// bedrock, two stone, dirt and grass, with air above.
func DefaultFlatLayers() []FlatLayer {
	return []FlatLayer{
		{Block: block.Bedrock, Thickness: 1},
		{Block: block.Stone, Thickness: 2},
		{Block: block.Dirt, Thickness: 1},
		{Block: block.Grass, Thickness: 1},
		{Block: block.Empty, Thickness: 1},
	}
}

type flatLayer struct {
	entry     block.Entry
	thickness int
}

// FlatGenerator stacks layers upwards from startY. The bottom layer extends
// down forever and the top layer extends up forever.
// It holds no mutable state, so one instance serves every worker.
type FlatGenerator struct {
	startY int
	layers []flatLayer
	empty  block.Entry
	biome  registry.ID
}

// NewFlatGenerator resolves layers against blocks. Columns report the
// plains biome when biomes has one.
func NewFlatGenerator(blocks *block.Registry, biomes *biome.Registry, startY int, layers []FlatLayer) (*FlatGenerator, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}
	empty, err := block.Lookup(blocks, block.Empty)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingBlock, err)
	}
	g := &FlatGenerator{startY: startY, empty: empty}
	for i, l := range layers {
		if l.Thickness <= 0 {
			return nil, fmt.Errorf("%w: layer %d (%s) has thickness %d", ErrBadLayer, i, l.Block, l.Thickness)
		}
		e, err := block.Lookup(blocks, l.Block)
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d: %w", ErrMissingBlock, i, err)
		}
		g.layers = append(g.layers, flatLayer{entry: e, thickness: l.Thickness})
	}
	if biomes != nil {
		if id, _, ok := biomes.ByName(biome.Plains); ok {
			g.biome = id
		}
	}
	return g, nil
}

func (g *FlatGenerator) layerFor(y int) block.Entry {
	if y <= g.startY {
		return g.layers[0].entry
	}
	cur := g.startY
	for _, l := range g.layers {
		end := cur + l.thickness
		if y >= cur && y < end {
			return l.entry
		}
		cur = end
	}
	return g.layers[len(g.layers)-1].entry
}

func (g *FlatGenerator) Generate(pos coord.AbsChunkPos) *Chunk {
	origin := pos.Origin()
	c := newChunk(pos, g.layerFor(origin.Y))
	for y := 1; y < coord.Dim; y++ {
		c.Blocks.Fill(coord.Layer(y), g.layerFor(origin.Y+y))
	}
	ground := g.HeightAt(0, 0)
	for i := range c.Heights {
		c.Heights[i] = ground
		c.Biomes[i] = g.biome
	}
	return c
}

// HeightAt returns the y of the highest non-empty layer.
func (g *FlatGenerator) HeightAt(_, _ int) int {
	top := g.startY
	for _, l := range g.layers {
		top += l.thickness
	}
	y := top - 1
	for i := len(g.layers) - 1; i >= 0; i-- {
		if g.layers[i].entry != g.empty {
			return y
		}
		y -= g.layers[i].thickness
	}
	return g.startY - 1
}

// NewGenerator returns g itself.
func (g *FlatGenerator) NewGenerator() Generator { return g }

func (g *FlatGenerator) BiomesAt(_, _ int) []biome.Entry {
	if g.biome == 0 {
		return nil
	}
	return []biome.Entry{{ID: g.biome, Weight: 1}}
}

func (g *FlatGenerator) NoisesAt(_, _ int) biome.Climate { return biome.Climate{} }
