// Package pack loads block and biome definitions from YAML data packs.
//
// A pack is a directory with an optional blocks.yaml and an optional
// biomes.yaml. A missing file means the built-in content. Setting
// include_defaults in a file prepends the built-in definitions to the
// ones the file declares.
package pack

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/worldgen/pkg/world/biome"
	"github.com/OCharnyshevich/worldgen/pkg/world/block"
	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

const (
	BlocksFile = "blocks.yaml"
	BiomesFile = "biomes.yaml"
)

// Color is a 0xRRGGBB color written as hex text, with or without a leading '#'.
type Color uint32

func (c *Color) UnmarshalText(b []byte) error {
	s := strings.TrimPrefix(strings.TrimSpace(string(b)), "#")
	v, err := strconv.ParseUint(s, 16, 24)
	if err != nil {
		return fmt.Errorf("color %q: %w", string(b), err)
	}
	*c = Color(v)
	return nil
}

type blocksFile struct {
	IncludeDefaults bool        `yaml:"include_defaults"`
	Blocks          []blockSpec `yaml:"blocks"`
}

type blockSpec struct {
	Name  string `yaml:"name"`
	Solid bool   `yaml:"solid"`
	Color Color  `yaml:"color"`
}

type biomesFile struct {
	IncludeDefaults bool        `yaml:"include_defaults"`
	Biomes          []biomeSpec `yaml:"biomes"`
}

type biomeSpec struct {
	Name           string       `yaml:"name"`
	Color          Color        `yaml:"color"`
	Elevation      *biome.Range `yaml:"elevation"`
	Temperature    *biome.Range `yaml:"temperature"`
	Moisture       *biome.Range `yaml:"moisture"`
	BlendInfluence *float64     `yaml:"blend_influence"`
	BlockInfluence *float64     `yaml:"block_influence"`
	CanGenerate    *bool        `yaml:"can_generate"`
	Surface        *surfaceSpec `yaml:"surface"`
	Rule           *ruleSpec    `yaml:"rule"`
}

func decode(r io.Reader, v any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// DecodeBlocks reads block definitions from a blocks.yaml document.
func DecodeBlocks(r io.Reader) ([]*block.Definition, error) {
	var f blocksFile
	if err := decode(r, &f); err != nil {
		return nil, fmt.Errorf("pack: decode blocks: %w", err)
	}

	var defs []*block.Definition
	if f.IncludeDefaults {
		defs = block.Defaults()
	}
	for i, s := range f.Blocks {
		name, err := registry.ParseName(s.Name)
		if err != nil {
			return nil, fmt.Errorf("pack: blocks[%d]: %w", i, err)
		}
		defs = append(defs, &block.Definition{Name: name, Solid: s.Solid, Color: uint32(s.Color)})
	}
	return defs, nil
}

// DecodeBiomes reads biome definitions from a biomes.yaml document. Block
// names used by rules resolve against blocks.
func DecodeBiomes(r io.Reader, blocks *block.Registry) ([]*biome.Definition, error) {
	var f biomesFile
	if err := decode(r, &f); err != nil {
		return nil, fmt.Errorf("pack: decode biomes: %w", err)
	}

	var defs []*biome.Definition
	if f.IncludeDefaults {
		builtin, err := biome.Defaults(blocks)
		if err != nil {
			return nil, fmt.Errorf("pack: %w", err)
		}
		defs = builtin
	}
	for i, s := range f.Biomes {
		def, err := s.definition(blocks)
		if err != nil {
			return nil, fmt.Errorf("pack: biomes[%d] %s: %w", i, s.Name, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (s *biomeSpec) definition(blocks *block.Registry) (*biome.Definition, error) {
	name, err := registry.ParseName(s.Name)
	if err != nil {
		return nil, err
	}
	def := &biome.Definition{
		Name:           name,
		Color:          uint32(s.Color),
		Elevation:      rangeOr(s.Elevation),
		Temperature:    rangeOr(s.Temperature),
		Moisture:       rangeOr(s.Moisture),
		BlendInfluence: floatOr(s.BlendInfluence, 1),
		BlockInfluence: floatOr(s.BlockInfluence, 1),
		CanGenerate:    s.CanGenerate == nil || *s.CanGenerate,
	}
	if s.Surface != nil {
		if def.Surface, err = s.Surface.surface(); err != nil {
			return nil, fmt.Errorf("surface: %w", err)
		}
	}
	if s.Rule != nil {
		if def.Rule, err = s.Rule.rule(blocks); err != nil {
			return nil, fmt.Errorf("rule: %w", err)
		}
	}
	return def, nil
}

func rangeOr(r *biome.Range) biome.Range {
	if r == nil {
		return biome.Full()
	}
	return *r
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// LoadBlocks reads dir/blocks.yaml, or returns the built-in blocks if the
// file does not exist or dir is empty.
func LoadBlocks(dir string) ([]*block.Definition, error) {
	f, err := open(dir, BlocksFile)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return block.Defaults(), nil
	}
	defer f.Close()
	return DecodeBlocks(f)
}

// LoadBiomes reads dir/biomes.yaml, or returns the built-in biomes if the
// file does not exist or dir is empty.
func LoadBiomes(dir string, blocks *block.Registry) ([]*biome.Definition, error) {
	f, err := open(dir, BiomesFile)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return biome.Defaults(blocks)
	}
	defer f.Close()
	return DecodeBiomes(f, blocks)
}

func open(dir, name string) (*os.File, error) {
	if dir == "" {
		return nil, nil
	}
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("pack: %w", err)
	}
	return f, nil
}
