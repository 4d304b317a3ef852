package gen

import (
	"fmt"

	"github.com/OCharnyshevich/worldgen/pkg/world/biome"
	"github.com/OCharnyshevich/worldgen/pkg/world/block"
	"github.com/OCharnyshevich/worldgen/pkg/world/coord"
	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

// Decorator names accepted by NewDecorator.
const (
	DecoratorTrees = "trees"
	DecoratorOres  = "ores"
	DecoratorCaves = "caves"
)

// Decorator edits a chunk after the biome rules ran. Decorators only touch
// the chunk they are given and derive all randomness from the chunk position.
type Decorator interface {
	Decorate(c *Chunk)
}

// NewDecorator builds the named decorator, resolving its blocks up front.
func NewDecorator(name string, seed uint64, blocks *block.Registry, biomes *biome.Registry) (Decorator, error) {
	switch name {
	case DecoratorTrees:
		return NewTreeDecorator(seed, blocks, biomes)
	case DecoratorOres:
		return NewOreDecorator(seed, blocks)
	case DecoratorCaves:
		return NewCaveDecorator(seed, blocks)
	default:
		return nil, fmt.Errorf("gen: unknown decorator %q", name)
	}
}

type blockRef struct {
	name registry.Name
	dst  *block.Entry
}

func resolveBlocks(blocks *block.Registry, refs ...blockRef) error {
	for _, r := range refs {
		e, err := block.Lookup(blocks, r.name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMissingBlock, err)
		}
		*r.dst = e
	}
	return nil
}

// chunkRNG is a small deterministic generator seeded from a chunk position.
type chunkRNG struct {
	state uint64
}

func newChunkRNG(seed uint64, pos coord.AbsChunkPos, salt uint64) *chunkRNG {
	s := seed ^ (uint64(pos.X)*341873128712 + uint64(pos.Y)*217645199 + uint64(pos.Z)*132897987541 + salt)
	return &chunkRNG{state: s}
}

func (r *chunkRNG) next() uint64 {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	return r.state
}

func (r *chunkRNG) nextN(n int) int {
	return int((r.next() >> 33) % uint64(n))
}

func (r *chunkRNG) float() float64 {
	return float64(r.next()>>11) / (1 << 53)
}
