package world

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/OCharnyshevich/worldgen/pkg/world/biome"
	"github.com/OCharnyshevich/worldgen/pkg/world/block"
	"github.com/OCharnyshevich/worldgen/pkg/world/coord"
	"github.com/OCharnyshevich/worldgen/pkg/world/gen"
	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

func registries(t *testing.T) (*block.Registry, *biome.Registry) {
	t.Helper()
	blocks, err := block.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	biomes, err := biome.DefaultRegistry(blocks)
	if err != nil {
		t.Fatal(err)
	}
	return blocks, biomes
}

func flatWorld(t *testing.T) (*World, *block.Registry) {
	t.Helper()
	blocks, biomes := registries(t)
	g, err := gen.NewFlatGenerator(blocks, biomes, 0, gen.DefaultFlatLayers())
	if err != nil {
		t.Fatal(err)
	}
	return New(g, 2, nil), blocks
}

func entry(t *testing.T, blocks *block.Registry, name registry.Name) block.Entry {
	t.Helper()
	e, err := block.Lookup(blocks, name)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestWorldBaseStateFlatGenerator(t *testing.T) {
	w, blocks := flatWorld(t)

	// Flat generator: bedrock at y=0, stone at y=1-2, dirt at y=3, grass at y=4.
	tests := []struct {
		pos  coord.AbsBlockPos
		name registry.Name
	}{
		{coord.AbsBlockPos{X: 0, Y: 0, Z: 0}, block.Bedrock},
		{coord.AbsBlockPos{X: 0, Y: 1, Z: 0}, block.Stone},
		{coord.AbsBlockPos{X: -7, Y: 3, Z: 40}, block.Dirt},
		{coord.AbsBlockPos{X: 0, Y: 4, Z: 0}, block.Grass},
		{coord.AbsBlockPos{X: 5, Y: 64, Z: 10}, block.Empty},
		{coord.AbsBlockPos{X: 5, Y: -64, Z: 10}, block.Bedrock},
	}
	for _, tt := range tests {
		if got, want := w.GetBlock(tt.pos), entry(t, blocks, tt.name); got != want {
			t.Errorf("GetBlock(%v) = %v, want %s", tt.pos, got, tt.name)
		}
	}
}

func TestWorldSetBlock(t *testing.T) {
	w, blocks := flatWorld(t)
	sand := entry(t, blocks, block.Sand)
	empty := entry(t, blocks, block.Empty)
	grass := entry(t, blocks, block.Grass)

	// Place a block in the air.
	w.SetBlock(coord.AbsBlockPos{X: 3, Y: 10, Z: 5}, sand)
	if got := w.GetBlock(coord.AbsBlockPos{X: 3, Y: 10, Z: 5}); got != sand {
		t.Errorf("GetBlock after place = %v, want %v", got, sand)
	}

	// Break grass.
	top := coord.AbsBlockPos{X: 0, Y: 4, Z: 0}
	w.SetBlock(top, empty)
	if got := w.GetBlock(top); got != empty {
		t.Errorf("GetBlock after break = %v, want %v", got, empty)
	}

	// Restore grass; the override goes away.
	w.SetBlock(top, grass)
	if got := w.GetBlock(top); got != grass {
		t.Errorf("GetBlock after restore = %v, want %v", got, grass)
	}
	n := 0
	w.ForEachOverride(func(coord.AbsBlockPos, block.Entry) { n++ })
	if n != 1 {
		t.Errorf("overrides = %d, want 1", n)
	}
}

func TestWorldSetBlockRemovesRedundantOverride(t *testing.T) {
	w, blocks := flatWorld(t)
	pos := coord.AbsBlockPos{X: 0, Y: 10, Z: 0}

	// Setting air where there is already air should not store an override.
	w.SetBlock(pos, entry(t, blocks, block.Empty))

	w.mu.RLock()
	_, exists := w.blocks[pos]
	w.mu.RUnlock()
	if exists {
		t.Error("setting empty at y=10 should not create an override")
	}
}

func TestWorldSpawnHeight(t *testing.T) {
	w, _ := flatWorld(t)
	// Flat: grass at y=4, HeightAt=4, SpawnHeight = 4+1 = 5
	if got := w.SpawnHeight(); got != 5 {
		t.Errorf("SpawnHeight() = %d, want 5", got)
	}
}

func TestPreGenerateRadius(t *testing.T) {
	w, _ := flatWorld(t)
	count, err := w.PreGenerateRadius(context.Background(), 2, -1, 0)
	if err != nil {
		t.Fatal(err)
	}

	// Radius 2 → 5×5 columns, two layers each.
	if count != 50 {
		t.Errorf("PreGenerateRadius(2) returned %d, want 50", count)
	}
	if got := w.ChunkCount(); got != 50 {
		t.Errorf("ChunkCount() = %d, want 50", got)
	}

	for cx := -2; cx <= 2; cx++ {
		for cz := -2; cz <= 2; cz++ {
			if _, ok := w.cached(coord.AbsChunkPos{X: cx, Y: -1, Z: cz}); !ok {
				t.Errorf("chunk (%d,-1,%d) not pre-generated", cx, cz)
			}
		}
	}
}

func TestGenerateRegionCanceled(t *testing.T) {
	w, _ := flatWorld(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := w.GenerateRegion(ctx, coord.AbsChunkPos{}, coord.AbsChunkPos{X: 3, Z: 3})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("GenerateRegion error = %v, want context.Canceled", err)
	}
	if n != 0 || w.ChunkCount() != 0 {
		t.Errorf("visited %d chunks and cached %d, want none", n, w.ChunkCount())
	}
}

// cancelingSource cancels a context once its generators produced after chunks.
type cancelingSource struct {
	gen.Source
	cancel context.CancelFunc
	after  int32
	n      atomic.Int32
}

func (s *cancelingSource) NewGenerator() gen.Generator {
	return cancelingGenerator{Generator: s.Source.NewGenerator(), src: s}
}

type cancelingGenerator struct {
	gen.Generator
	src *cancelingSource
}

func (g cancelingGenerator) Generate(pos coord.AbsChunkPos) *gen.Chunk {
	if g.src.n.Add(1) == g.src.after {
		g.src.cancel()
	}
	return g.Generator.Generate(pos)
}

func TestGenerateRegionStopsWhenCanceled(t *testing.T) {
	blocks, biomes := registries(t)
	flat, err := gen.NewFlatGenerator(blocks, biomes, 0, gen.DefaultFlatLayers())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := New(&cancelingSource{Source: flat, cancel: cancel, after: 3}, 1, nil)

	n, err := w.GenerateRegion(ctx, coord.AbsChunkPos{}, coord.AbsChunkPos{X: 3, Z: 3})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("GenerateRegion error = %v, want context.Canceled", err)
	}
	if n >= 16 {
		t.Errorf("visited %d chunks, want fewer than 16", n)
	}
	if got := w.ChunkCount(); got < 3 || got > n {
		t.Errorf("ChunkCount() = %d, want between 3 and %d", got, n)
	}
}

func TestConcurrentGetReturnsOneChunk(t *testing.T) {
	blocks, biomes := registries(t)
	opts := gen.DefaultOptions()
	opts.Seed = 99
	opts.SizeChunksXZ = 4
	opts.BiomePointCount = 16
	opts.Decorators = nil
	src, err := gen.NewStdSource(context.Background(), blocks, biomes, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	w := New(src, 4, nil)

	pos := coord.AbsChunkPos{X: 1, Y: -1, Z: -1}
	got := make([]*gen.Chunk, 8)
	var wg sync.WaitGroup
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = w.GetOrGenerateChunk(pos)
		}()
	}
	wg.Wait()

	for i, c := range got {
		if c != got[0] {
			t.Fatalf("caller %d received a different chunk", i)
		}
	}
	if w.ChunkCount() != 1 {
		t.Errorf("ChunkCount() = %d, want 1", w.ChunkCount())
	}

	// A fresh world built from the same source generates identical blocks.
	again := New(src, 1, nil).GetOrGenerateChunk(pos)
	if !again.Blocks.Equal(got[0].Blocks) {
		t.Error("regenerated chunk differs")
	}
}

func TestBiomesAtDelegatesToSource(t *testing.T) {
	w, _ := flatWorld(t)
	entries := w.BiomesAt(100, -100)
	if len(entries) != 1 || entries[0].Weight != 1 {
		t.Errorf("BiomesAt = %v, want a single full-weight entry", entries)
	}
}
