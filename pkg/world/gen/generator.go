package gen

import (
	"errors"

	"github.com/OCharnyshevich/worldgen/pkg/world/biome"
	"github.com/OCharnyshevich/worldgen/pkg/world/block"
	"github.com/OCharnyshevich/worldgen/pkg/world/coord"
	"github.com/OCharnyshevich/worldgen/pkg/world/palette"
	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

var (
	ErrMissingBlock = errors.New("gen: required block not registered")
	ErrMissingBiome = errors.New("gen: required biome not registered")
	ErrNoLayers     = errors.New("gen: flat generator needs at least one layer")
	ErrBadLayer     = errors.New("gen: flat layer thickness must be positive")
)

// Chunk holds the generated blocks of one chunk plus per-column metadata.
// Column index = z*Dim + x.
type Chunk struct {
	Pos     coord.AbsChunkPos
	Blocks  *palette.Storage[block.Entry]
	Heights [coord.Dim2]int         // world y of the ground
	Biomes  [coord.Dim2]registry.ID // strongest biome
}

func newChunk(pos coord.AbsChunkPos, fill block.Entry) *Chunk {
	return &Chunk{Pos: pos, Blocks: palette.New(fill)}
}

func columnIndex(x, z int) int { return z*coord.Dim + x }

// GroundAt returns the ground height of local column (x, z).
func (c *Chunk) GroundAt(x, z int) int { return c.Heights[columnIndex(x, z)] }

// BiomeAt returns the strongest biome of local column (x, z).
func (c *Chunk) BiomeAt(x, z int) registry.ID { return c.Biomes[columnIndex(x, z)] }

// Generator produces chunks deterministically from a seed.
// A Generator may keep scratch state and must not be shared between goroutines.
type Generator interface {
	Generate(pos coord.AbsChunkPos) *Chunk
	HeightAt(x, z int) int
}

// Source is the immutable, shareable part of a world generator. Each worker
// asks it for its own Generator.
type Source interface {
	NewGenerator() Generator
	BiomesAt(x, z int) []biome.Entry
	NoisesAt(x, z int) biome.Climate
}
