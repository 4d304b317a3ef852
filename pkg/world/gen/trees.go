package gen

import (
	"github.com/OCharnyshevich/worldgen/pkg/world/biome"
	"github.com/OCharnyshevich/worldgen/pkg/world/block"
	"github.com/OCharnyshevich/worldgen/pkg/world/coord"
	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

const treeSalt = 124567

// TreeDecorator grows log trunks with a round leaf crown on grass.
type TreeDecorator struct {
	seed   uint64
	log    block.Entry
	leaves block.Entry
	grass  block.Entry
	empty  block.Entry
	// attempts per chunk, by biome
	density map[registry.ID]int
}

// NewTreeDecorator resolves the tree blocks. Trees grow in plains and hills
// when those biomes are registered.
func NewTreeDecorator(seed uint64, blocks *block.Registry, biomes *biome.Registry) (*TreeDecorator, error) {
	d := &TreeDecorator{seed: seed, density: make(map[registry.ID]int)}
	if err := resolveBlocks(blocks,
		blockRef{block.Log, &d.log},
		blockRef{block.Leaves, &d.leaves},
		blockRef{block.Grass, &d.grass},
		blockRef{block.Empty, &d.empty},
	); err != nil {
		return nil, err
	}
	for name, n := range map[registry.Name]int{biome.Plains: 3, biome.Hills: 6} {
		if id, _, ok := biomes.ByName(name); ok {
			d.density[id] = n
		}
	}
	return d, nil
}

func (d *TreeDecorator) Decorate(c *Chunk) {
	rng := newChunkRNG(d.seed, c.Pos, treeSalt)
	origin := c.Pos.Origin()

	for range coord.Dim {
		x := rng.nextN(coord.Dim)
		z := rng.nextN(coord.Dim)
		trunk := 4 + rng.nextN(2)
		roll := rng.nextN(8)

		n := d.density[c.BiomeAt(x, z)]
		if roll >= n {
			continue
		}
		y := c.GroundAt(x, z) - origin.Y
		if y < 0 || y >= coord.Dim {
			continue
		}
		if c.Blocks.Get(coord.InChunkPos{X: x, Y: y, Z: z}) != d.grass {
			continue
		}
		d.placeTree(c, x, y+1, z, trunk)
	}
}

// placeTree places a trunk and a leaf sphere of radius 3 centered two
// blocks below the trunk top. Blocks outside the chunk are dropped.
func (d *TreeDecorator) placeTree(c *Chunk, x, baseY, z, trunk int) {
	for y := baseY; y < baseY+trunk; y++ {
		if in, ok := coord.NewInChunkPos(x, y, z); ok {
			c.Blocks.Put(in, d.log)
		}
	}
	crown := baseY + trunk - 2
	for dy := 0; dy <= 3; dy++ {
		for dz := -3; dz <= 3; dz++ {
			for dx := -3; dx <= 3; dx++ {
				if dx*dx+dy*dy+dz*dz > 9 {
					continue
				}
				in, ok := coord.NewInChunkPos(x+dx, crown+dy, z+dz)
				if !ok || c.Blocks.Get(in) != d.empty {
					continue
				}
				c.Blocks.Put(in, d.leaves)
			}
		}
	}
}
