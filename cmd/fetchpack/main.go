package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	getter "github.com/hashicorp/go-getter"

	"github.com/OCharnyshevich/worldgen/pkg/world/biome"
	"github.com/OCharnyshevich/worldgen/pkg/world/block"
	"github.com/OCharnyshevich/worldgen/pkg/world/pack"
)

func main() {
	var (
		src = flag.String("src", "", "pack source, any go-getter url (git::https://..., https://.../pack.zip, s3::...)")
		out = flag.String("o", "./packs", "output dir path")
		set = flag.String("name", "default", "pack name under the output dir")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *src == "" {
		log.Error("source url required")
		os.Exit(2)
	}
	if *out == "" || *set == "" {
		log.Error("output dir and pack name required")
		os.Exit(2)
	}

	path := filepath.Join(*out, *set)
	if err := os.RemoveAll(path); err != nil {
		log.Error("clear output", "path", path, "error", err)
		os.Exit(1)
	}

	log.Info("downloading pack", "src", *src, "path", path)
	if err := getter.Get(path, *src); err != nil {
		log.Error("download pack", "error", err)
		os.Exit(1)
	}

	blocks, biomes, err := check(path)
	if err != nil {
		log.Error("pack does not load", "path", path, "error", err)
		os.Exit(1)
	}
	log.Info("done downloading pack", "path", path, "blocks", blocks, "biomes", biomes)
}

// check loads the downloaded pack the same way worldgen does.
func check(dir string) (int, int, error) {
	blockDefs, err := pack.LoadBlocks(dir)
	if err != nil {
		return 0, 0, err
	}
	blocks, err := block.NewRegistry(blockDefs...)
	if err != nil {
		return 0, 0, fmt.Errorf("blocks: %w", err)
	}
	biomeDefs, err := pack.LoadBiomes(dir, blocks)
	if err != nil {
		return 0, 0, err
	}
	biomes, err := biome.NewRegistry(biomeDefs...)
	if err != nil {
		return 0, 0, fmt.Errorf("biomes: %w", err)
	}
	return blocks.Len(), biomes.Len(), nil
}
