// Package world caches generated chunks and layers block overrides on top
// of them. Generation runs on a bounded pool of workers, each with its own
// generator.
package world

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/OCharnyshevich/worldgen/pkg/world/biome"
	"github.com/OCharnyshevich/worldgen/pkg/world/block"
	"github.com/OCharnyshevich/worldgen/pkg/world/coord"
	"github.com/OCharnyshevich/worldgen/pkg/world/gen"
)

// World tracks block state with a generator source for base terrain and
// overrides for later modifications.
type World struct {
	mu      sync.RWMutex
	blocks  map[coord.AbsBlockPos]block.Entry
	chunks  map[coord.AbsChunkPos]*gen.Chunk
	source  gen.Source
	pool    *generatorPool
	flight  singleflight.Group
	workers int
	log     *slog.Logger
}

// New creates a World over source. workers <= 0 uses runtime.NumCPU().
func New(source gen.Source, workers int, log *slog.Logger) *World {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &World{
		blocks:  make(map[coord.AbsBlockPos]block.Entry),
		chunks:  make(map[coord.AbsChunkPos]*gen.Chunk),
		source:  source,
		pool:    newGeneratorPool(source, workers),
		workers: workers,
		log:     log,
	}
}

// Source returns the world's generator source.
func (w *World) Source() gen.Source { return w.source }

func (w *World) cached(pos coord.AbsChunkPos) (*gen.Chunk, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.chunks[pos]
	return c, ok
}

// GetOrGenerateChunk returns the chunk at pos, generating and caching it if
// needed. Concurrent callers asking for the same chunk share one generation.
func (w *World) GetOrGenerateChunk(pos coord.AbsChunkPos) *gen.Chunk {
	if c, ok := w.cached(pos); ok {
		return c
	}

	v, _, _ := w.flight.Do(pos.String(), func() (any, error) {
		if c, ok := w.cached(pos); ok {
			return c, nil
		}
		start := time.Now()
		g := w.pool.Get()
		c := g.Generate(pos)
		w.pool.Put(g)
		w.log.Debug("chunk generated", "chunk", pos.String(), "elapsed", time.Since(start))

		w.mu.Lock()
		// Double-check after acquiring write lock.
		if existing, ok := w.chunks[pos]; ok {
			w.mu.Unlock()
			return existing, nil
		}
		w.chunks[pos] = c
		w.mu.Unlock()
		return c, nil
	})
	return v.(*gen.Chunk)
}

// ChunkCount returns the number of cached chunks.
func (w *World) ChunkCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// GenerateRegion generates every chunk in the inclusive box [lo, hi] on
// the worker pool and returns how many chunks it visited. It stops early
// when ctx is canceled.
func (w *World) GenerateRegion(ctx context.Context, lo, hi coord.AbsChunkPos) (int, error) {
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)

	count := 0
	for y := lo.Y; y <= hi.Y; y++ {
		for z := lo.Z; z <= hi.Z; z++ {
			for x := lo.X; x <= hi.X; x++ {
				if err := ctx.Err(); err != nil {
					if werr := g.Wait(); werr != nil {
						return count, werr
					}
					return count, err
				}
				pos := coord.AbsChunkPos{X: x, Y: y, Z: z}
				count++
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					w.GetOrGenerateChunk(pos)
					return nil
				})
			}
		}
	}
	if err := g.Wait(); err != nil {
		return count, err
	}

	w.log.Debug("region generated",
		"from", lo.String(), "to", hi.String(),
		"chunks", count, "generators", w.pool.created.Load(), "elapsed", time.Since(start))
	return count, nil
}

// PreGenerateRadius generates all chunks within radius of the origin
// column across the vertical chunk layers [minY, maxY]. It returns the
// number of chunks generated.
func (w *World) PreGenerateRadius(ctx context.Context, radius, minY, maxY int) (int, error) {
	return w.GenerateRegion(ctx,
		coord.AbsChunkPos{X: -radius, Y: minY, Z: -radius},
		coord.AbsChunkPos{X: radius, Y: maxY, Z: radius})
}

// GetBlock returns the block at pos. Overrides win over generated terrain.
func (w *World) GetBlock(pos coord.AbsBlockPos) block.Entry {
	w.mu.RLock()
	if e, ok := w.blocks[pos]; ok {
		w.mu.RUnlock()
		return e
	}
	w.mu.RUnlock()

	cp, in := pos.Chunk()
	return w.GetOrGenerateChunk(cp).Blocks.Get(in)
}

// SetBlock stores a block override. Setting a block back to its generated
// state removes the override.
func (w *World) SetBlock(pos coord.AbsBlockPos, e block.Entry) {
	// Ensure the chunk is generated so we know the base state.
	cp, in := pos.Chunk()
	base := w.GetOrGenerateChunk(cp).Blocks.Get(in)

	w.mu.Lock()
	defer w.mu.Unlock()
	if e == base {
		delete(w.blocks, pos)
	} else {
		w.blocks[pos] = e
	}
}

// ForEachOverride calls fn for every block override under a read lock.
func (w *World) ForEachOverride(fn func(pos coord.AbsBlockPos, e block.Entry)) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for pos, e := range w.blocks {
		fn(pos, e)
	}
}

// HeightAt returns the ground height of column (x, z).
func (w *World) HeightAt(x, z int) int {
	g := w.pool.Get()
	defer w.pool.Put(g)
	return g.HeightAt(x, z)
}

// SpawnHeight returns the terrain height at spawn (0, 0) + 1 to stand on.
func (w *World) SpawnHeight() int {
	return w.HeightAt(0, 0) + 1
}

// BiomesAt returns the blended biome weights of column (x, z).
func (w *World) BiomesAt(x, z int) []biome.Entry {
	return w.source.BiomesAt(x, z)
}

// NoisesAt returns the blended climate of column (x, z).
func (w *World) NoisesAt(x, z int) biome.Climate {
	return w.source.NoisesAt(x, z)
}

// LoadOverrides bulk-installs overrides, replacing any with the same position.
func (w *World) LoadOverrides(overrides map[coord.AbsBlockPos]block.Entry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for pos, e := range overrides {
		w.blocks[pos] = e
	}
}
