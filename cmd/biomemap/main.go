package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OCharnyshevich/worldgen/internal/app"
	"github.com/OCharnyshevich/worldgen/internal/config"
	"github.com/OCharnyshevich/worldgen/pkg/world/coord"
)

func main() {
	cfg := config.DefaultConfig()
	var (
		configPath string
		out        = "biomes.png"
		step       = 4
	)
	flag.StringVar(&configPath, "config", "", "config file (.json, .yaml or .yml)")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "world seed")
	flag.IntVar(&cfg.SizeChunksXZ, "size", cfg.SizeChunksXZ, "world width in chunks")
	flag.IntVar(&cfg.BiomePointCount, "points", cfg.BiomePointCount, "biome sites (0 = derived from size)")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "world data directory")
	flag.StringVar(&cfg.PackDir, "pack-dir", cfg.PackDir, "data pack directory (empty = built-in content)")
	flag.StringVar(&out, "o", out, "output png")
	flag.IntVar(&step, "step", step, "blocks per pixel")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	if configPath != "" {
		fromFile, err := config.Load(configPath)
		if err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
		config.Merge(cfg, fromFile, explicit)
	}
	cfg.GeneratorType = config.GeneratorStd
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}
	if step <= 0 {
		log.Error("step must be positive", "step", step)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Error("build world", "error", err)
		os.Exit(1)
	}

	start := time.Now()
	size := cfg.SizeChunksXZ * coord.Dim / step
	img, err := render(ctx, a.World(), a.Biomes(), size, step)
	if err != nil {
		log.Error("render", "error", err)
		os.Exit(1)
	}

	if err := writePNG(out, img); err != nil {
		log.Error("write output", "error", err)
		os.Exit(1)
	}
	log.Info("biome map written", "path", out, "pixels", size, "step", step, "elapsed", time.Since(start))
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
