package pack

import (
	"errors"
	"fmt"
	"math"

	"github.com/OCharnyshevich/worldgen/pkg/world/biome"
	"github.com/OCharnyshevich/worldgen/pkg/world/block"
	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

var errRuleShape = errors.New("rule needs exactly one of builtin, block, if/then or chain")

// ruleSpec is one node of a rule tree:
//
//	rule:
//	  chain:
//	    - if: {at_ground: true}
//	      then: {block: core:grass}
//	    - if: {below_ground: true}
//	      then: {block: core:stone}
type ruleSpec struct {
	Builtin string         `yaml:"builtin"` // land, water, shore or empty
	Block   string         `yaml:"block"`
	If      *conditionSpec `yaml:"if"`
	Then    *ruleSpec      `yaml:"then"`
	Chain   []ruleSpec     `yaml:"chain"`
}

func (s *ruleSpec) rule(blocks *block.Registry) (biome.Rule, error) {
	set := 0
	for _, ok := range []bool{s.Builtin != "", s.Block != "", s.If != nil || s.Then != nil, s.Chain != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, errRuleShape
	}

	switch {
	case s.Builtin != "":
		return builtinRule(s.Builtin, blocks)
	case s.Block != "":
		name, err := registry.ParseName(s.Block)
		if err != nil {
			return nil, err
		}
		r, err := biome.NewBlockRule(blocks, name)
		if err != nil {
			return nil, err
		}
		return r, nil
	case s.Chain != nil:
		chain := make(biome.ChainRule, 0, len(s.Chain))
		for i := range s.Chain {
			r, err := s.Chain[i].rule(blocks)
			if err != nil {
				return nil, fmt.Errorf("chain[%d]: %w", i, err)
			}
			chain = append(chain, r)
		}
		return chain, nil
	}

	if s.If == nil || s.Then == nil {
		return nil, errors.New("if and then must be given together")
	}
	cond, err := s.If.condition()
	if err != nil {
		return nil, fmt.Errorf("if: %w", err)
	}
	then, err := s.Then.rule(blocks)
	if err != nil {
		return nil, fmt.Errorf("then: %w", err)
	}
	return biome.ConditionRule{If: cond, Then: then}, nil
}

func builtinRule(name string, blocks *block.Registry) (biome.Rule, error) {
	switch name {
	case "land":
		return biome.LandRule(blocks)
	case "water":
		return biome.WaterRule(blocks)
	case "shore":
		return biome.ShoreRule(blocks)
	case "empty":
		return biome.EmptyRule{}, nil
	}
	return nil, fmt.Errorf("unknown builtin rule %q", name)
}

// conditionSpec holds when every field that is set holds.
type conditionSpec struct {
	Always        bool            `yaml:"always"`
	YAtLeast      *int            `yaml:"y_at_least"`
	Not           *conditionSpec  `yaml:"not"`
	BelowGround   bool            `yaml:"below_ground"`
	AtGround      bool            `yaml:"at_ground"`
	Depth         *depthSpec      `yaml:"depth"`
	BelowSeaLevel bool            `yaml:"below_sea_level"`
	All           []conditionSpec `yaml:"all"`
	Any           []conditionSpec `yaml:"any"`
}

type depthSpec struct {
	Min int  `yaml:"min"`
	Max *int `yaml:"max"` // open ended when absent
}

func (s *conditionSpec) condition() (biome.Condition, error) {
	var all biome.All
	if s.Always {
		all = append(all, biome.Always{})
	}
	if s.YAtLeast != nil {
		all = append(all, biome.YAtLeast(*s.YAtLeast))
	}
	if s.Not != nil {
		c, err := s.Not.condition()
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		all = append(all, biome.Not{Condition: c})
	}
	if s.BelowGround {
		all = append(all, biome.BelowGround{})
	}
	if s.AtGround {
		all = append(all, biome.AtGround{})
	}
	if s.Depth != nil {
		d := biome.Depth{Min: s.Depth.Min, Max: math.MaxInt32}
		if s.Depth.Max != nil {
			d.Max = *s.Depth.Max
		}
		if d.Max < d.Min {
			return nil, fmt.Errorf("depth max %d below min %d", d.Max, d.Min)
		}
		all = append(all, d)
	}
	if s.BelowSeaLevel {
		all = append(all, biome.BelowSeaLevel{})
	}
	if s.All != nil {
		c, err := conditions(s.All)
		if err != nil {
			return nil, fmt.Errorf("all: %w", err)
		}
		all = append(all, biome.All(c))
	}
	if s.Any != nil {
		c, err := conditions(s.Any)
		if err != nil {
			return nil, fmt.Errorf("any: %w", err)
		}
		all = append(all, biome.Any(c))
	}

	switch len(all) {
	case 0:
		return nil, errors.New("empty condition")
	case 1:
		return all[0], nil
	}
	return all, nil
}

func conditions(specs []conditionSpec) ([]biome.Condition, error) {
	out := make([]biome.Condition, 0, len(specs))
	for i := range specs {
		c, err := specs[i].condition()
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// surfaceSpec selects a surface height function by type.
type surfaceSpec struct {
	Type                string  `yaml:"type"`
	Height              float64 `yaml:"height"` // constant only
	biome.PerlinSurface `yaml:",inline"`
}

func (s *surfaceSpec) surface() (biome.Surface, error) {
	switch s.Type {
	case "plains":
		return biome.PlainsSurface{}, nil
	case "hills":
		return biome.HillsSurface{}, nil
	case "mountains":
		return biome.MountainsSurface{}, nil
	case "ocean":
		return biome.OceanSurface{}, nil
	case "perlin":
		if s.Frequency <= 0 {
			return nil, errors.New("perlin surface needs a positive frequency")
		}
		return s.PerlinSurface, nil
	case "constant":
		return biome.ConstantSurface(s.Height), nil
	}
	return nil, fmt.Errorf("unknown surface type %q", s.Type)
}
