package gen

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/OCharnyshevich/worldgen/internal/blend"
	"github.com/OCharnyshevich/worldgen/internal/graph"
	"github.com/OCharnyshevich/worldgen/internal/hydrology"
	"github.com/OCharnyshevich/worldgen/internal/noise"
	"github.com/OCharnyshevich/worldgen/pkg/world/biome"
	"github.com/OCharnyshevich/worldgen/pkg/world/block"
	"github.com/OCharnyshevich/worldgen/pkg/world/coord"
	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

// blocksPerSite sets the derived site density: one Voronoi site per
// blocksPerSite x blocksPerSite square.
const blocksPerSite = 64

// SpecialBiomes names the biomes the classification pass forces onto water,
// coasts and rivers, and the fallback for columns without any biome.
type SpecialBiomes struct {
	Ocean registry.Name
	Beach registry.Name
	River registry.Name
	Void  registry.Name
}

// DefaultSpecialBiomes returns the built-in biome names.
func DefaultSpecialBiomes() SpecialBiomes {
	return SpecialBiomes{Ocean: biome.Ocean, Beach: biome.Beach, River: biome.River, Void: biome.Void}
}

// Options configures a StdSource.
type Options struct {
	Seed            uint64
	SizeChunksXZ    int
	BiomePointCount int // 0 derives the count from the world size
	LloydIterations int
	BlendRadius     float64
	SeaLevel        int
	WatershedRounds int
	Workers         int
	Decorators      []string
	Special         SpecialBiomes
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		SizeChunksXZ:    16,
		LloydIterations: 2,
		BlendRadius:     blend.DefaultRadius,
		WatershedRounds: 100,
		Decorators:      []string{DecoratorCaves, DecoratorOres, DecoratorTrees},
		Special:         DefaultSpecialBiomes(),
	}
}

// SiteCount returns the number of Voronoi sites for the configured world size.
func (o Options) SiteCount() int {
	if o.BiomePointCount > 0 {
		return o.BiomePointCount
	}
	side := o.SizeChunksXZ * coord.Dim / blocksPerSite
	return max(side*side, 3)
}

// StdSource is the biome-graph world: the classified graph, the blend
// sampler and the resolved registries. It is read-only after construction.
type StdSource struct {
	opts       Options
	blocks     *block.Registry
	biomes     *biome.Registry
	noise      *noise.Provider
	sources    biome.Sources
	graph      *graph.Graph
	sampler    *blend.Sampler
	shared     *blend.Shared
	decorators []Decorator

	empty block.Entry
	void  registry.ID
	stats hydrology.Result
}

// NewStdSource builds and classifies the biome graph. It fails fast when a
// required block or biome is missing.
func NewStdSource(ctx context.Context, blocks *block.Registry, biomes *biome.Registry, opts Options, log *slog.Logger) (*StdSource, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.SizeChunksXZ <= 0 {
		return nil, fmt.Errorf("gen: size_chunks_xz must be positive, got %d", opts.SizeChunksXZ)
	}
	if opts.Special == (SpecialBiomes{}) {
		opts.Special = DefaultSpecialBiomes()
	}

	empty, err := block.Lookup(blocks, block.Empty)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingBlock, err)
	}

	ids := make(map[registry.Name]registry.ID, 4)
	for _, name := range []registry.Name{opts.Special.Ocean, opts.Special.Beach, opts.Special.River, opts.Special.Void} {
		id, err := biomes.IDOf(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMissingBiome, err)
		}
		ids[name] = id
	}

	s := &StdSource{
		opts:   opts,
		blocks: blocks,
		biomes: biomes,
		noise:  noise.NewProvider(opts.Seed),
		empty:  empty,
		void:   ids[opts.Special.Void],
	}
	s.sources = biome.Sources{Terrain: s.noise.Terrain(), Detail: s.noise.Detail()}

	for _, name := range opts.Decorators {
		d, err := NewDecorator(name, opts.Seed, blocks, biomes)
		if err != nil {
			return nil, err
		}
		s.decorators = append(s.decorators, d)
	}

	size := float64(opts.SizeChunksXZ * coord.Dim)
	g, err := graph.New(opts.Seed, opts.SiteCount(), graph.Centered(size, size), opts.LloydIterations)
	if err != nil {
		return nil, fmt.Errorf("build biome graph: %w", err)
	}
	s.stats, err = hydrology.Run(ctx, g, biomes, s.noise, hydrology.Options{
		Seed:            opts.Seed,
		SizeChunksXZ:    opts.SizeChunksXZ,
		WatershedRounds: opts.WatershedRounds,
		Workers:         opts.Workers,
		Ocean:           ids[opts.Special.Ocean],
		Beach:           ids[opts.Special.Beach],
		River:           ids[opts.Special.River],
	}, log)
	if err != nil {
		return nil, fmt.Errorf("classify biome graph: %w", err)
	}
	s.graph = g
	s.sampler = blend.NewSampler(g, opts.BlendRadius)
	s.shared = s.sampler.NewShared()

	log.Info("biome graph ready",
		"seed", opts.Seed,
		"centers", len(g.Centers),
		"corners", len(g.Corners),
		"edges", len(g.Edges),
		"rivers", s.stats.Rivers,
		"watershed_rounds", s.stats.WatershedRounds,
	)
	return s, nil
}

// Graph returns the classified biome graph. Callers must not modify it.
func (s *StdSource) Graph() *graph.Graph { return s.graph }

// Stats returns what the classification pass reported.
func (s *StdSource) Stats() hydrology.Result { return s.stats }

// Options returns the options the source was built with.
func (s *StdSource) Options() Options { return s.opts }

// NewGenerator returns a generator with its own column cache.
func (s *StdSource) NewGenerator() Generator {
	return &StdGenerator{src: s, cache: s.sampler.NewCache()}
}

// BiomesAt returns the blended biomes of column (x, z). The caller owns the slice.
func (s *StdSource) BiomesAt(x, z int) []biome.Entry {
	return s.withFallback(s.shared.At(x, z).Biomes)
}

// NoisesAt returns the blended climate of column (x, z).
func (s *StdSource) NoisesAt(x, z int) biome.Climate {
	return s.shared.At(x, z).Noise
}

func (s *StdSource) withFallback(entries []biome.Entry) []biome.Entry {
	if len(entries) == 0 {
		return []biome.Entry{{ID: s.void, Weight: 1}}
	}
	return entries
}

func (s *StdSource) definition(id registry.ID) *biome.Definition {
	if d, ok := s.biomes.ByID(id); ok {
		return d
	}
	d, _ := s.biomes.ByID(s.void)
	return d
}

// columnHeight is the weighted average of each biome's surface, mapped
// from [-1, 1] to [0, 1] before weighting.
func (s *StdSource) columnHeight(x, z int, entries []biome.Entry) int {
	const scale = biome.Scale * biome.ScaleMod
	px, pz := float64(x)/scale, float64(z)/scale

	var heights, weights float64
	for _, e := range entries {
		def := s.definition(e.ID)
		strength := e.Weight * def.BlendInfluence
		heights += (def.Surface.Height(px, pz, s.sources) + 1) / 2 * strength
		weights += strength
	}
	if weights < 1e-9 {
		return 0
	}
	return int(math.Round(heights / weights))
}

type weighted struct {
	id  registry.ID
	def *biome.Definition
	w   float64
}

// ruleOrder sorts a column's biomes so the most influential rule runs last.
func (s *StdSource) ruleOrder(entries []biome.Entry, dst []weighted) []weighted {
	dst = dst[:0]
	for _, e := range entries {
		def := s.definition(e.ID)
		dst = append(dst, weighted{id: e.ID, def: def, w: e.Weight * def.BlockInfluence})
	}
	slices.SortFunc(dst, func(a, b weighted) int {
		if c := cmp.Compare(a.w, b.w); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	return dst
}

func strongest(entries []biome.Entry) registry.ID {
	var best biome.Entry
	for _, e := range entries {
		if e.Weight > best.Weight || (e.Weight == best.Weight && (best.ID == 0 || e.ID < best.ID)) {
			best = e
		}
	}
	return best.ID
}

// StdGenerator generates chunks from a StdSource. It owns a column cache and
// must be used by one goroutine at a time.
type StdGenerator struct {
	src   *StdSource
	cache *blend.Cache
	order [coord.Dim2][]weighted
}

func (g *StdGenerator) entries(x, z int) []biome.Entry {
	return g.src.withFallback(g.cache.At(x, z).Biomes)
}

// HeightAt returns the ground height of world column (x, z).
func (g *StdGenerator) HeightAt(x, z int) int {
	return g.src.columnHeight(x, z, g.entries(x, z))
}

// Generate fills the chunk at pos. Every voxel starts empty; each column's
// biome rules then run from least to most influential, and every rule that
// places a block overwrites the previous result.
func (g *StdGenerator) Generate(pos coord.AbsChunkPos) *Chunk {
	s := g.src
	c := newChunk(pos, s.empty)
	origin := pos.Origin()

	// Pass 1: blend biomes and compute the heightmap.
	for z := 0; z < coord.Dim; z++ {
		for x := 0; x < coord.Dim; x++ {
			i := columnIndex(x, z)
			entries := g.entries(origin.X+x, origin.Z+z)
			c.Heights[i] = s.columnHeight(origin.X+x, origin.Z+z, entries)
			c.Biomes[i] = strongest(entries)
			g.order[i] = s.ruleOrder(entries, g.order[i])
		}
	}

	// Pass 2: run the placement rules.
	ctx := &biome.Context{Seed: s.opts.Seed, SeaLevel: s.opts.SeaLevel, Chunk: c.Blocks}
	for y := 0; y < coord.Dim; y++ {
		for z := 0; z < coord.Dim; z++ {
			for x := 0; x < coord.Dim; x++ {
				i := columnIndex(x, z)
				in := coord.InChunkPos{X: x, Y: y, Z: z}
				world := pos.Block(in)
				ctx.GroundY = c.Heights[i]
				for _, b := range g.order[i] {
					if e, ok := b.def.Rule.Place(world, ctx); ok {
						c.Blocks.Put(in, e)
					}
				}
			}
		}
	}

	// Pass 3: decorate.
	for _, d := range s.decorators {
		d.Decorate(c)
	}
	return c
}
