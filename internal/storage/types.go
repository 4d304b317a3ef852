package storage

import (
	"github.com/google/uuid"

	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

// Manifest identifies a generated world and pins the registry ids its
// chunks were generated with.
type Manifest struct {
	ID            uuid.UUID        `json:"id"`
	Seed          uint64           `json:"seed"`
	GeneratorType string           `json:"generator_type"`
	Blocks        registry.Mapping `json:"blocks"`
	Biomes        registry.Mapping `json:"biomes"`
}

// NewManifest returns a manifest with a fresh random id.
func NewManifest(seed uint64, generatorType string, blocks, biomes registry.Mapping) *Manifest {
	return &Manifest{
		ID:            uuid.New(),
		Seed:          seed,
		GeneratorType: generatorType,
		Blocks:        blocks,
		Biomes:        biomes,
	}
}

// WorldData is the serializable set of block overrides.
type WorldData struct {
	Overrides []BlockOverride `json:"overrides"`
}

// BlockOverride is one modified block.
type BlockOverride struct {
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Z     int         `json:"z"`
	Block registry.ID `json:"block"`
	Meta  uint16      `json:"meta,omitempty"`
}
