package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/worldgen/pkg/world/gen"
	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

const (
	GeneratorStd  = "std"
	GeneratorFlat = "flat"
)

// FlatLayer is one band of the flat generator as written in config files.
type FlatLayer struct {
	Block     string `json:"block" yaml:"block"`
	Thickness int    `json:"thickness" yaml:"thickness"`
}

// Config holds the world generation configuration.
type Config struct {
	Seed            uint64      `json:"seed" yaml:"seed"`
	GeneratorType   string      `json:"generator_type" yaml:"generator_type"` // "std" or "flat"
	SizeChunksXZ    int         `json:"size_chunks_xz" yaml:"size_chunks_xz"`
	SizeChunksY     int         `json:"size_chunks_y" yaml:"size_chunks_y"`
	BiomePointCount int         `json:"biome_point_count" yaml:"biome_point_count"` // 0 = derived from size
	LloydIterations int         `json:"lloyd_iterations" yaml:"lloyd_iterations"`
	BlendRadius     float64     `json:"blend_radius" yaml:"blend_radius"`
	SeaLevel        int         `json:"sea_level" yaml:"sea_level"`
	WatershedRounds int         `json:"watershed_rounds" yaml:"watershed_rounds"`
	Workers         int         `json:"workers" yaml:"workers"` // 0 = one per CPU
	PregenRadius    int         `json:"pregen_radius" yaml:"pregen_radius"`
	DataDir         string      `json:"data_dir" yaml:"data_dir"`
	PackDir         string      `json:"pack_dir" yaml:"pack_dir"` // empty = built-in content
	FlatLayers      []FlatLayer `json:"flat_layers" yaml:"flat_layers"`
	FlatStartY      int         `json:"flat_start_y" yaml:"flat_start_y"`
	Decorators      []string    `json:"decorators" yaml:"decorators"`
	LogLevel        string      `json:"log_level" yaml:"log_level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	opts := gen.DefaultOptions()
	layers := make([]FlatLayer, 0, 5)
	for _, l := range gen.DefaultFlatLayers() {
		layers = append(layers, FlatLayer{Block: l.Block.String(), Thickness: l.Thickness})
	}
	return &Config{
		GeneratorType:   GeneratorStd,
		SizeChunksXZ:    opts.SizeChunksXZ,
		SizeChunksY:     1,
		LloydIterations: opts.LloydIterations,
		BlendRadius:     opts.BlendRadius,
		WatershedRounds: opts.WatershedRounds,
		PregenRadius:    2,
		DataDir:         "data",
		FlatLayers:      layers,
		Decorators:      slices.Clone(opts.Decorators),
		LogLevel:        "info",
	}
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["generator"] {
		cfg.GeneratorType = fromFile.GeneratorType
	}
	if !explicitFlags["size"] {
		cfg.SizeChunksXZ = fromFile.SizeChunksXZ
	}
	if !explicitFlags["size-y"] {
		cfg.SizeChunksY = fromFile.SizeChunksY
	}
	if !explicitFlags["points"] {
		cfg.BiomePointCount = fromFile.BiomePointCount
	}
	if !explicitFlags["lloyd"] {
		cfg.LloydIterations = fromFile.LloydIterations
	}
	if !explicitFlags["blend-radius"] {
		cfg.BlendRadius = fromFile.BlendRadius
	}
	if !explicitFlags["sea-level"] {
		cfg.SeaLevel = fromFile.SeaLevel
	}
	if !explicitFlags["watershed-rounds"] {
		cfg.WatershedRounds = fromFile.WatershedRounds
	}
	if !explicitFlags["workers"] {
		cfg.Workers = fromFile.Workers
	}
	if !explicitFlags["pregen-radius"] {
		cfg.PregenRadius = fromFile.PregenRadius
	}
	if !explicitFlags["data-dir"] {
		cfg.DataDir = fromFile.DataDir
	}
	if !explicitFlags["pack-dir"] {
		cfg.PackDir = fromFile.PackDir
	}
	if !explicitFlags["flat-start-y"] {
		cfg.FlatStartY = fromFile.FlatStartY
	}
	if !explicitFlags["decorators"] {
		cfg.Decorators = fromFile.Decorators
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
	// No flag for the layer stack.
	cfg.FlatLayers = fromFile.FlatLayers
}

// Load reads a config file on top of the defaults. Files ending in .yaml or
// .yml are decoded as YAML, everything else as JSON.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.GeneratorType {
	case GeneratorStd, GeneratorFlat:
	default:
		return fmt.Errorf("generator_type must be %q or %q, got %q", GeneratorStd, GeneratorFlat, c.GeneratorType)
	}
	if c.SizeChunksXZ <= 0 {
		return errors.New("size_chunks_xz must be positive")
	}
	if c.SizeChunksY <= 0 {
		return errors.New("size_chunks_y must be positive")
	}
	if c.BiomePointCount < 0 {
		return errors.New("biome_point_count cannot be negative")
	}
	if c.BiomePointCount > 0 && c.BiomePointCount < 3 {
		return errors.New("biome_point_count must be at least 3")
	}
	if c.LloydIterations < 0 {
		return errors.New("lloyd_iterations cannot be negative")
	}
	if c.BlendRadius <= 0 {
		return errors.New("blend_radius must be positive")
	}
	if c.WatershedRounds <= 0 {
		return errors.New("watershed_rounds must be positive")
	}
	if c.Workers < 0 {
		return errors.New("workers cannot be negative")
	}
	if c.PregenRadius < 0 {
		return errors.New("pregen_radius cannot be negative")
	}
	if c.GeneratorType == GeneratorFlat && len(c.FlatLayers) == 0 {
		return errors.New("flat_layers must not be empty for the flat generator")
	}
	for i, l := range c.FlatLayers {
		if l.Thickness <= 0 {
			return fmt.Errorf("flat_layers[%d]: thickness must be positive", i)
		}
		if _, err := registry.ParseName(l.Block); err != nil {
			return fmt.Errorf("flat_layers[%d]: %w", i, err)
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. An empty level means info.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// GenOptions converts the config into options for gen.NewStdSource.
func (c *Config) GenOptions() gen.Options {
	opts := gen.DefaultOptions()
	opts.Seed = c.Seed
	opts.SizeChunksXZ = c.SizeChunksXZ
	opts.BiomePointCount = c.BiomePointCount
	opts.LloydIterations = c.LloydIterations
	opts.BlendRadius = c.BlendRadius
	opts.SeaLevel = c.SeaLevel
	opts.WatershedRounds = c.WatershedRounds
	opts.Workers = c.Workers
	opts.Decorators = slices.Clone(c.Decorators)
	return opts
}

// Layers converts FlatLayers into generator layers.
func (c *Config) Layers() ([]gen.FlatLayer, error) {
	out := make([]gen.FlatLayer, 0, len(c.FlatLayers))
	for i, l := range c.FlatLayers {
		name, err := registry.ParseName(l.Block)
		if err != nil {
			return nil, fmt.Errorf("flat_layers[%d]: %w", i, err)
		}
		out = append(out, gen.FlatLayer{Block: name, Thickness: l.Thickness})
	}
	return out, nil
}

// KeepWorld copies the settings that shape generated terrain from stored,
// the config a world was created with, into c. It returns the config keys
// whose requested values were replaced. Runtime settings such as workers,
// directories and the log level stay as requested.
func (c *Config) KeepWorld(stored *Config) []string {
	var changed []string
	keep := func(key string, same bool, apply func()) {
		if !same {
			changed = append(changed, key)
			apply()
		}
	}
	keep("seed", c.Seed == stored.Seed, func() { c.Seed = stored.Seed })
	keep("size_chunks_xz", c.SizeChunksXZ == stored.SizeChunksXZ, func() { c.SizeChunksXZ = stored.SizeChunksXZ })
	keep("biome_point_count", c.BiomePointCount == stored.BiomePointCount, func() { c.BiomePointCount = stored.BiomePointCount })
	keep("lloyd_iterations", c.LloydIterations == stored.LloydIterations, func() { c.LloydIterations = stored.LloydIterations })
	keep("blend_radius", c.BlendRadius == stored.BlendRadius, func() { c.BlendRadius = stored.BlendRadius })
	keep("sea_level", c.SeaLevel == stored.SeaLevel, func() { c.SeaLevel = stored.SeaLevel })
	keep("watershed_rounds", c.WatershedRounds == stored.WatershedRounds, func() { c.WatershedRounds = stored.WatershedRounds })
	keep("flat_start_y", c.FlatStartY == stored.FlatStartY, func() { c.FlatStartY = stored.FlatStartY })
	keep("flat_layers", slices.Equal(c.FlatLayers, stored.FlatLayers), func() { c.FlatLayers = slices.Clone(stored.FlatLayers) })
	keep("decorators", slices.Equal(c.Decorators, stored.Decorators), func() { c.Decorators = slices.Clone(stored.Decorators) })
	return changed
}
