package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/OCharnyshevich/worldgen/internal/config"
	"github.com/OCharnyshevich/worldgen/internal/storage"
	"github.com/OCharnyshevich/worldgen/pkg/world/pack"
)

func testConfig(t *testing.T, generator string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.GeneratorType = generator
	cfg.Seed = 12
	cfg.SizeChunksXZ = 4
	cfg.BiomePointCount = 16
	cfg.PregenRadius = 1
	cfg.Workers = 2
	return cfg
}

func TestFlatWorldLifecycle(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.GeneratorFlat)

	a, err := New(ctx, cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Pregenerate(ctx); err != nil {
		t.Fatal(err)
	}
	// Radius 1 → 3×3 columns over two chunk layers.
	if got := a.World().ChunkCount(); got != 18 {
		t.Errorf("ChunkCount() = %d, want 18", got)
	}

	again, err := New(ctx, cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if again.Manifest().ID != a.Manifest().ID {
		t.Error("reopening the world created a new manifest")
	}
}

func TestReopenKeepsManifestSeed(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.GeneratorFlat)
	if _, err := New(ctx, cfg, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatal(err)
	}

	other := *cfg
	other.Seed = 999
	a, err := New(ctx, &other, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}
	if a.Config().Seed != 12 {
		t.Errorf("Seed = %d, want the manifest seed 12", a.Config().Seed)
	}
}

func TestStdWorld(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.GeneratorStd)
	cfg.Decorators = nil
	cfg.PregenRadius = 0

	a, err := New(ctx, cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Pregenerate(ctx); err != nil {
		t.Fatal(err)
	}
	if a.Blocks().Len() == 0 || a.Biomes().Len() == 0 {
		t.Error("registries are empty")
	}
	if len(a.World().BiomesAt(0, 0)) == 0 {
		t.Error("no biomes at the origin")
	}
}

func TestReopenRejectsOtherGenerator(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.GeneratorFlat)
	if _, err := New(ctx, cfg, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatal(err)
	}

	other := *cfg
	other.GeneratorType = config.GeneratorStd
	if _, err := New(ctx, &other, slog.New(slog.DiscardHandler)); !errors.Is(err, ErrGeneratorMismatch) {
		t.Errorf("New with another generator: err = %v, want ErrGeneratorMismatch", err)
	}
}

func TestReopenAddsNewPackEntries(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.GeneratorFlat)
	first, err := New(ctx, cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}
	before := len(first.Manifest().Blocks.Names)

	packDir := t.TempDir()
	blocks := "include_defaults: true\nblocks:\n  - name: test:marble\n    solid: true\n"
	if err := os.WriteFile(filepath.Join(packDir, pack.BlocksFile), []byte(blocks), 0o644); err != nil {
		t.Fatal(err)
	}
	withPack := *cfg
	withPack.PackDir = packDir
	if _, err := New(ctx, &withPack, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatal(err)
	}

	m, err := storage.Open(cfg.DataDir, nil).LoadManifest()
	if err != nil {
		t.Fatal(err)
	}
	if m.ID != first.Manifest().ID {
		t.Error("manifest id changed")
	}
	if len(m.Blocks.Names) != before+1 || !slices.Contains(m.Blocks.Names, "test:marble") {
		t.Errorf("manifest blocks = %v, want the old %d plus test:marble", m.Blocks.Names, before)
	}
	// Existing ids must not move.
	for i, name := range first.Manifest().Blocks.Names {
		j := slices.Index(m.Blocks.Names, name)
		if j < 0 || m.Blocks.IDs[j] != first.Manifest().Blocks.IDs[i] {
			t.Errorf("block %s lost its id %d", name, first.Manifest().Blocks.IDs[i])
		}
	}
}

func TestReopenKeepsStoredSettings(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.GeneratorStd)
	cfg.Decorators = nil
	created, err := New(ctx, cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}

	requested := config.DefaultConfig()
	requested.DataDir = cfg.DataDir
	a, err := Open(ctx, requested, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}
	got := a.Config()
	if got.Seed != 12 || got.SizeChunksXZ != 4 || got.BiomePointCount != 16 || len(got.Decorators) != 0 {
		t.Errorf("reopened config = %+v, want the stored world settings", got)
	}
	if a.Manifest().ID != created.Manifest().ID {
		t.Error("Open did not load the stored manifest")
	}
	if a.World().HeightAt(3, -7) != created.World().HeightAt(3, -7) {
		t.Error("reopened world has a different height at (3, -7)")
	}
}

func TestOpenWritesNothing(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.GeneratorFlat)
	cfg.DataDir = filepath.Join(cfg.DataDir, "absent")

	a, err := Open(ctx, cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}
	if a.Manifest() != nil {
		t.Error("Open of a missing world returned a manifest")
	}
	if err := a.Pregenerate(ctx); !errors.Is(err, storage.ErrReadOnly) {
		t.Errorf("Pregenerate error = %v, want ErrReadOnly", err)
	}
	if _, err := os.Stat(cfg.DataDir); !os.IsNotExist(err) {
		t.Error("Open created the data directory")
	}
}
