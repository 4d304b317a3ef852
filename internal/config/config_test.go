package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/worldgen/pkg/world/block"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown generator",
			mutate:  func(cfg *Config) { cfg.GeneratorType = "amplified" },
			wantErr: "generator_type must be",
		},
		{
			name:    "non positive size",
			mutate:  func(cfg *Config) { cfg.SizeChunksXZ = 0 },
			wantErr: "size_chunks_xz must be positive",
		},
		{
			name:    "too few biome points",
			mutate:  func(cfg *Config) { cfg.BiomePointCount = 2 },
			wantErr: "biome_point_count must be at least 3",
		},
		{
			name:    "zero blend radius",
			mutate:  func(cfg *Config) { cfg.BlendRadius = 0 },
			wantErr: "blend_radius must be positive",
		},
		{
			name:    "negative workers",
			mutate:  func(cfg *Config) { cfg.Workers = -1 },
			wantErr: "workers cannot be negative",
		},
		{
			name: "flat without layers",
			mutate: func(cfg *Config) {
				cfg.GeneratorType = GeneratorFlat
				cfg.FlatLayers = nil
			},
			wantErr: "flat_layers must not be empty",
		},
		{
			name:    "bad layer name",
			mutate:  func(cfg *Config) { cfg.FlatLayers = []FlatLayer{{Block: "Stone!", Thickness: 1}} },
			wantErr: "flat_layers[0]",
		},
		{
			name:    "bad log level",
			mutate:  func(cfg *Config) { cfg.LogLevel = "chatty" },
			wantErr: "log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadJSON(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 4242
	cfg.SizeChunksXZ = 8
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "worldgen.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Seed != 4242 || got.SizeChunksXZ != 8 {
		t.Errorf("Load = seed %d size %d, want 4242 8", got.Seed, got.SizeChunksXZ)
	}
}

func TestLoadYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worldgen.yaml")
	doc := "seed: 7\ngenerator_type: flat\nlog_level: debug\nflat_layers:\n  - block: core:stone\n    thickness: 3\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Seed != 7 || got.GeneratorType != GeneratorFlat {
		t.Errorf("Load = seed %d generator %q", got.Seed, got.GeneratorType)
	}
	if got.WatershedRounds != DefaultConfig().WatershedRounds {
		t.Errorf("WatershedRounds = %d, want default", got.WatershedRounds)
	}
	if lvl, _ := got.Level(); lvl != slog.LevelDebug {
		t.Errorf("Level = %v, want debug", lvl)
	}
	layers, err := got.Layers()
	if err != nil {
		t.Fatal(err)
	}
	if len(layers) != 1 || layers[0].Block != block.Stone || layers[0].Thickness != 3 {
		t.Errorf("Layers = %+v", layers)
	}
}

func TestLoadYAMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Decorators = []string{"trees"}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "worldgen.yml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Decorators) != 1 || got.Decorators[0] != "trees" {
		t.Errorf("Decorators = %v, want [trees]", got.Decorators)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"size_chunks_xz": -3}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted a negative size")
	}
}

func TestMergeRespectsExplicitFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 1
	cfg.Workers = 3

	fromFile := DefaultConfig()
	fromFile.Seed = 99
	fromFile.Workers = 8
	fromFile.SeaLevel = 12

	Merge(cfg, fromFile, map[string]bool{"seed": true})

	if cfg.Seed != 1 {
		t.Errorf("Seed = %d, flag value should win", cfg.Seed)
	}
	if cfg.Workers != 8 || cfg.SeaLevel != 12 {
		t.Errorf("Workers/SeaLevel = %d/%d, file values should apply", cfg.Workers, cfg.SeaLevel)
	}
}

func TestGenOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 5
	cfg.SeaLevel = -4
	opts := cfg.GenOptions()
	if opts.Seed != 5 || opts.SeaLevel != -4 || opts.SizeChunksXZ != cfg.SizeChunksXZ {
		t.Errorf("GenOptions = %+v", opts)
	}
	opts.Decorators[0] = "changed"
	if cfg.Decorators[0] == "changed" {
		t.Error("GenOptions shares the decorator slice")
	}
}

func TestKeepWorld(t *testing.T) {
	stored := DefaultConfig()
	stored.Seed = 5
	stored.SizeChunksXZ = 32
	stored.Decorators = nil

	cfg := DefaultConfig()
	cfg.Seed = 6
	cfg.Workers = 3
	cfg.PregenRadius = 7

	changed := cfg.KeepWorld(stored)
	if strings.Join(changed, ",") != "seed,size_chunks_xz,decorators" {
		t.Errorf("changed = %v", changed)
	}
	if cfg.Seed != 5 || cfg.SizeChunksXZ != 32 || len(cfg.Decorators) != 0 {
		t.Errorf("world settings not kept: %+v", cfg)
	}
	if cfg.Workers != 3 || cfg.PregenRadius != 7 {
		t.Errorf("runtime settings overwritten: workers %d pregen %d", cfg.Workers, cfg.PregenRadius)
	}
	if again := cfg.KeepWorld(stored); len(again) != 0 {
		t.Errorf("second KeepWorld changed %v", again)
	}
}
