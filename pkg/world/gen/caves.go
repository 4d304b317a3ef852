package gen

import (
	"github.com/OCharnyshevich/worldgen/internal/noise"
	"github.com/OCharnyshevich/worldgen/pkg/world/block"
	"github.com/OCharnyshevich/worldgen/pkg/world/coord"
)

// CaveDecorator carves caves where two 3D simplex fields agree.
type CaveDecorator struct {
	noise1 *noise.Fbm
	noise2 *noise.Fbm
	empty  block.Entry
	water  block.Entry
}

// NewCaveDecorator seeds the cave noise fields.
func NewCaveDecorator(seed uint64, blocks *block.Registry) (*CaveDecorator, error) {
	d := &CaveDecorator{
		noise1: noise.NewFbm(uint32(seed+300), []float64{1}),
		noise2: noise.NewFbm(uint32(seed+400), []float64{1}),
	}
	if err := resolveBlocks(blocks,
		blockRef{block.Empty, &d.empty},
		blockRef{block.Water, &d.water},
	); err != nil {
		return nil, err
	}
	return d, nil
}

// Decorate empties solid blocks at least four below the ground. Water is
// never carved so seabeds stay sealed.
func (d *CaveDecorator) Decorate(c *Chunk) {
	const (
		threshold = 0.55
		crust     = 4
	)
	origin := c.Pos.Origin()

	for z := 0; z < coord.Dim; z++ {
		for x := 0; x < coord.Dim; x++ {
			top := c.GroundAt(x, z) - crust - origin.Y
			if top <= 0 {
				continue
			}
			bx := float64(origin.X + x)
			bz := float64(origin.Z + z)
			for y := 0; y < min(top, coord.Dim); y++ {
				by := float64(origin.Y + y)

				// Two noise fields combined for more interesting cave shapes.
				n1 := d.noise1.Eval3(bx/32.0, by/24.0, bz/32.0)
				n2 := d.noise2.Eval3(bx/48.0, by/32.0, bz/48.0)
				if (n1+n2)/2.0 <= threshold {
					continue
				}
				in := coord.InChunkPos{X: x, Y: y, Z: z}
				if cur := c.Blocks.Get(in); cur != d.empty && cur != d.water {
					c.Blocks.Put(in, d.empty)
				}
			}
		}
	}
}
