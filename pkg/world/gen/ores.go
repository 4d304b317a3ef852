package gen

import (
	"github.com/OCharnyshevich/worldgen/pkg/world/block"
	"github.com/OCharnyshevich/worldgen/pkg/world/coord"
)

const oreSalt = 500

type oreConfig struct {
	name     string
	entry    block.Entry
	minY     int // world y, inclusive
	maxY     int // world y, exclusive
	veinSize int // max blocks per vein
	attempts int // veins per chunk
}

// OreDecorator replaces stone with random-walk ore veins.
type OreDecorator struct {
	seed  uint64
	stone block.Entry
	ores  []oreConfig
}

// NewOreDecorator resolves stone and the ore blocks.
func NewOreDecorator(seed uint64, blocks *block.Registry) (*OreDecorator, error) {
	d := &OreDecorator{
		seed: seed,
		ores: []oreConfig{
			{name: "coal", minY: -128, maxY: 96, veinSize: 12, attempts: 20},
			{name: "iron", minY: -128, maxY: 32, veinSize: 8, attempts: 14},
		},
	}
	if err := resolveBlocks(blocks,
		blockRef{block.Stone, &d.stone},
		blockRef{block.CoalOre, &d.ores[0].entry},
		blockRef{block.IronOre, &d.ores[1].entry},
	); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *OreDecorator) Decorate(c *Chunk) {
	rng := newChunkRNG(d.seed, c.Pos, oreSalt)
	originY := c.Pos.Origin().Y

	for _, ore := range d.ores {
		for range ore.attempts {
			x := rng.nextN(coord.Dim)
			y := rng.nextN(coord.Dim)
			z := rng.nextN(coord.Dim)
			if wy := originY + y; wy < ore.minY || wy >= ore.maxY {
				continue
			}
			d.placeVein(c, x, y, z, ore, rng)
		}
	}
}

func (d *OreDecorator) placeVein(c *Chunk, x, y, z int, ore oreConfig, rng *chunkRNG) {
	for range ore.veinSize {
		if in, ok := coord.NewInChunkPos(x, y, z); ok && c.Blocks.Get(in) == d.stone {
			c.Blocks.Put(in, ore.entry)
		}

		// Random walk.
		switch rng.nextN(6) {
		case 0:
			x++
		case 1:
			x--
		case 2:
			y++
		case 3:
			y--
		case 4:
			z++
		case 5:
			z--
		}
	}
}
