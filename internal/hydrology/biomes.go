package hydrology

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/OCharnyshevich/worldgen/internal/graph"
	"github.com/OCharnyshevich/worldgen/pkg/world/biome"
	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

type picker struct {
	biomes      *biome.Registry
	generatable []registry.ID
	rng         *rand.Rand
	log         *slog.Logger
	gaps        int
}

// pick returns the first generatable biome whose ranges contain c, or a
// random generatable biome when none does.
func (p *picker) pick(kind string, index int, c biome.Climate) registry.ID {
	for _, id := range p.generatable {
		if def, _ := p.biomes.ByID(id); def.Matches(c) {
			return id
		}
	}
	p.gaps++
	id := p.generatable[p.rng.IntN(len(p.generatable))]
	p.log.Debug("no biome matches noise",
		"node", kind, "index", index,
		"elevation", c.Elevation, "temperature", c.Temperature, "moisture", c.Moisture)
	return id
}

// override returns the biome forced by water and coast flags, if any.
func override(opts Options, ocean, water, coast bool) registry.ID {
	switch {
	case (ocean || water) && opts.Ocean != 0:
		return opts.Ocean
	case coast && opts.Beach != 0:
		return opts.Beach
	}
	return 0
}

// assignBiomes gives every node without a biome one, corners first, then
// edges, then centers. It returns the number of coverage gaps.
func assignBiomes(g *graph.Graph, biomes *biome.Registry, rng *rand.Rand, opts Options, log *slog.Logger) (int, error) {
	p := &picker{
		biomes:      biomes,
		generatable: biome.Generatable(biomes),
		rng:         rng,
		log:         log,
	}
	if len(p.generatable) == 0 {
		return 0, fmt.Errorf("no generatable biome: %w", registry.ErrNotFound)
	}

	for i := range g.Corners {
		q := &g.Corners[i]
		if q.Biome != 0 {
			continue
		}
		if id := override(opts, q.Ocean, q.Water, q.Coast); id != 0 {
			q.Biome = id
			continue
		}
		q.Biome = p.pick("corner", i, q.Noise)
	}
	for i := range g.Edges {
		e := &g.Edges[i]
		if e.Biome != 0 {
			continue
		}
		e.Biome = p.pick("edge", i, e.Noise)
	}
	for i := range g.Centers {
		c := &g.Centers[i]
		if c.Biome != 0 {
			continue
		}
		if id := override(opts, c.Ocean, c.Water, c.Coast); id != 0 {
			c.Biome = id
			continue
		}
		c.Biome = p.pick("center", i, c.Noise)
	}
	return p.gaps, nil
}
