package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/OCharnyshevich/worldgen/internal/app"
	"github.com/OCharnyshevich/worldgen/internal/config"
)

func main() {
	cfg := config.DefaultConfig()
	var (
		configPath string
		decorators = strings.Join(cfg.Decorators, ",")
	)

	flag.StringVar(&configPath, "config", "", "config file (.json, .yaml or .yml)")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "world seed")
	flag.StringVar(&cfg.GeneratorType, "generator", cfg.GeneratorType, "generator type: std or flat")
	flag.IntVar(&cfg.SizeChunksXZ, "size", cfg.SizeChunksXZ, "world width in chunks")
	flag.IntVar(&cfg.SizeChunksY, "size-y", cfg.SizeChunksY, "chunk layers above and below y=0")
	flag.IntVar(&cfg.BiomePointCount, "points", cfg.BiomePointCount, "biome sites (0 = derived from size)")
	flag.IntVar(&cfg.LloydIterations, "lloyd", cfg.LloydIterations, "Lloyd relaxation iterations")
	flag.Float64Var(&cfg.BlendRadius, "blend-radius", cfg.BlendRadius, "biome blend radius in blocks")
	flag.IntVar(&cfg.SeaLevel, "sea-level", cfg.SeaLevel, "sea level y")
	flag.IntVar(&cfg.WatershedRounds, "watershed-rounds", cfg.WatershedRounds, "maximum watershed rounds")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "generation workers (0 = one per CPU)")
	flag.IntVar(&cfg.PregenRadius, "pregen-radius", cfg.PregenRadius, "chunk radius to pre-generate")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "world data directory")
	flag.StringVar(&cfg.PackDir, "pack-dir", cfg.PackDir, "data pack directory (empty = built-in content)")
	flag.IntVar(&cfg.FlatStartY, "flat-start-y", cfg.FlatStartY, "bottom y of the flat layer stack")
	flag.StringVar(&decorators, "decorators", decorators, "comma separated decorators")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	cfg.Decorators = splitList(decorators)

	boot := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if configPath != "" {
		fromFile, err := config.Load(configPath)
		if err != nil {
			boot.Error("load config", "error", err)
			os.Exit(1)
		}
		config.Merge(cfg, fromFile, explicit)
	}
	if err := cfg.Validate(); err != nil {
		boot.Error("invalid config", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.Level()
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("build world", "error", err)
		os.Exit(1)
	}
	if err := a.Pregenerate(ctx); err != nil {
		log.Error("generate", "error", err)
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
