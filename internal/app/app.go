// Package app wires configuration, data packs, storage and the world
// together for the command line tools.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/OCharnyshevich/worldgen/internal/config"
	"github.com/OCharnyshevich/worldgen/internal/storage"
	"github.com/OCharnyshevich/worldgen/internal/world"
	"github.com/OCharnyshevich/worldgen/pkg/world/biome"
	"github.com/OCharnyshevich/worldgen/pkg/world/block"
	"github.com/OCharnyshevich/worldgen/pkg/world/gen"
	"github.com/OCharnyshevich/worldgen/pkg/world/pack"
)

// App is a loaded world ready for generation.
type App struct {
	cfg      *config.Config
	log      *slog.Logger
	store    *storage.Storage
	manifest *storage.Manifest
	blocks   *block.Registry
	biomes   *biome.Registry
	source   gen.Source
	world    *world.World
}

// ErrGeneratorMismatch is returned when a world is reopened with a
// different generator than it was created with.
var ErrGeneratorMismatch = errors.New("app: generator does not match the world")

// New loads the data pack, pins registry ids and terrain settings to the
// stored world and builds the generator source. A new world gets a fresh
// manifest and its config is saved next to it.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	store, err := storage.New(cfg.DataDir, log)
	if err != nil {
		return nil, err
	}
	return open(ctx, cfg, store, log)
}

// Open loads an existing world without writing anything to its data
// directory. A missing world is generated from cfg alone.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	return open(ctx, cfg, storage.Open(cfg.DataDir, log), log)
}

func open(ctx context.Context, cfg *config.Config, store *storage.Storage, log *slog.Logger) (*App, error) {
	manifest, err := store.LoadManifest()
	if err != nil {
		return nil, err
	}
	if manifest != nil {
		if manifest.GeneratorType != cfg.GeneratorType {
			return nil, fmt.Errorf("%w: world %s uses %q, requested %q",
				ErrGeneratorMismatch, manifest.ID, manifest.GeneratorType, cfg.GeneratorType)
		}
		if manifest.Seed != cfg.Seed {
			log.Warn("world already exists, keeping its seed",
				"world", manifest.ID, "seed", manifest.Seed, "requested", cfg.Seed)
			cfg.Seed = manifest.Seed
		}
	}
	stored, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	if stored != nil {
		if kept := cfg.KeepWorld(stored); len(kept) > 0 {
			log.Warn("world already exists, keeping its generator settings", "settings", kept)
		}
	}

	a := &App{cfg: cfg, log: log, store: store, manifest: manifest}
	if err := a.loadRegistries(); err != nil {
		return nil, err
	}

	start := time.Now()
	switch cfg.GeneratorType {
	case config.GeneratorFlat:
		layers, err := cfg.Layers()
		if err != nil {
			return nil, err
		}
		a.source, err = gen.NewFlatGenerator(a.blocks, a.biomes, cfg.FlatStartY, layers)
		if err != nil {
			return nil, err
		}
	default:
		a.source, err = gen.NewStdSource(ctx, a.blocks, a.biomes, cfg.GenOptions(), log)
		if err != nil {
			return nil, err
		}
	}
	log.Info("generator ready", "generator", cfg.GeneratorType, "seed", cfg.Seed, "elapsed", time.Since(start))

	a.world = world.New(a.source, cfg.Workers, log)
	if err := store.LoadWorld(a.world); err != nil {
		return nil, err
	}
	if store.ReadOnly() {
		return a, nil
	}

	if stored == nil {
		if err := store.SaveConfig(cfg); err != nil {
			return nil, err
		}
	}
	if err := a.syncManifest(); err != nil {
		return nil, err
	}
	return a, nil
}

// syncManifest writes a manifest for a new world, or records ids handed
// to pack entries the stored manifest does not know yet.
func (a *App) syncManifest() error {
	blocks, biomes := a.blocks.IDMapping(), a.biomes.IDMapping()
	if a.manifest == nil {
		a.manifest = storage.NewManifest(a.cfg.Seed, a.cfg.GeneratorType, blocks, biomes)
		if err := a.store.SaveManifest(a.manifest); err != nil {
			return err
		}
		a.log.Info("created world", "world", a.manifest.ID, "seed", a.cfg.Seed)
		return nil
	}

	added := len(blocks.IDs) - len(a.manifest.Blocks.IDs) + len(biomes.IDs) - len(a.manifest.Biomes.IDs)
	if added == 0 {
		return nil
	}
	a.manifest.Blocks, a.manifest.Biomes = blocks, biomes
	if err := a.store.SaveManifest(a.manifest); err != nil {
		return err
	}
	a.log.Info("manifest updated with new pack entries", "world", a.manifest.ID, "added", added)
	return nil
}

// loadRegistries reads the pack and re-keys both registries to the ids in
// the manifest, so block and biome ids survive pack edits. Blocks are
// remapped before biomes are decoded because biome rules capture block ids.
func (a *App) loadRegistries() error {
	blockDefs, err := pack.LoadBlocks(a.cfg.PackDir)
	if err != nil {
		return err
	}
	blocks, err := block.NewRegistry(blockDefs...)
	if err != nil {
		return err
	}
	if a.manifest != nil {
		if blocks, err = blocks.WithIDMapping(a.manifest.Blocks); err != nil {
			return fmt.Errorf("blocks: %w", err)
		}
	}

	biomeDefs, err := pack.LoadBiomes(a.cfg.PackDir, blocks)
	if err != nil {
		return err
	}
	biomes, err := biome.NewRegistry(biomeDefs...)
	if err != nil {
		return err
	}
	if a.manifest != nil {
		if biomes, err = biomes.WithIDMapping(a.manifest.Biomes); err != nil {
			return fmt.Errorf("biomes: %w", err)
		}
	}

	a.blocks, a.biomes = blocks, biomes
	a.log.Debug("registries loaded", "blocks", blocks.Len(), "biomes", biomes.Len(), "pack", a.cfg.PackDir)
	return nil
}

func (a *App) World() *world.World { return a.world }
func (a *App) Blocks() *block.Registry { return a.blocks }
func (a *App) Biomes() *biome.Registry { return a.biomes }
func (a *App) Manifest() *storage.Manifest { return a.manifest }
func (a *App) Config() *config.Config { return a.cfg }

// Pregenerate generates the configured region around the origin and saves
// the world's overrides.
func (a *App) Pregenerate(ctx context.Context) error {
	if a.store.ReadOnly() {
		return fmt.Errorf("pregenerate: %w", storage.ErrReadOnly)
	}
	start := time.Now()
	n, err := a.world.PreGenerateRadius(ctx, a.cfg.PregenRadius, -a.cfg.SizeChunksY, a.cfg.SizeChunksY-1)
	if err != nil {
		return fmt.Errorf("pregenerate: %w", err)
	}
	a.log.Info("pregenerated",
		"world", a.manifest.ID,
		"chunks", n,
		"spawn_height", a.world.SpawnHeight(),
		"elapsed", time.Since(start))

	if std, ok := a.source.(*gen.StdSource); ok {
		g, stats := std.Graph(), std.Stats()
		a.log.Info("biome graph",
			"centers", len(g.Centers),
			"corners", len(g.Corners),
			"edges", len(g.Edges),
			"rivers", stats.Rivers,
			"coverage_gaps", stats.CoverageGaps)
	}
	return a.store.SaveWorld(a.world)
}
