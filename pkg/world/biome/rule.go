package biome

import (
	"fmt"
	"math"

	"github.com/OCharnyshevich/worldgen/pkg/world/block"
	"github.com/OCharnyshevich/worldgen/pkg/world/coord"
	"github.com/OCharnyshevich/worldgen/pkg/world/palette"
	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

// Context is what a placement rule sees for one voxel.
type Context struct {
	Seed     uint64
	GroundY  int
	SeaLevel int
	// Chunk is the storage being generated. Rules must only read it.
	Chunk *palette.Storage[block.Entry]
}

// Rule decides the block at a position. ok=false defers to the other
// biomes blended into the column.
type Rule interface {
	Place(pos coord.AbsBlockPos, ctx *Context) (e block.Entry, ok bool)
}

// Condition is a predicate used by ConditionRule.
type Condition interface {
	Test(pos coord.AbsBlockPos, ctx *Context) bool
}

// EmptyRule never places anything.
type EmptyRule struct{}

func (EmptyRule) Place(coord.AbsBlockPos, *Context) (block.Entry, bool) { return block.Entry{}, false }

// BlockRule always places one block.
type BlockRule struct{ Entry block.Entry }

// NewBlockRule resolves name against the block registry.
func NewBlockRule(blocks *block.Registry, name registry.Name) (BlockRule, error) {
	e, err := block.Lookup(blocks, name)
	if err != nil {
		return BlockRule{}, fmt.Errorf("block rule: %w", err)
	}
	return BlockRule{Entry: e}, nil
}

func (r BlockRule) Place(coord.AbsBlockPos, *Context) (block.Entry, bool) { return r.Entry, true }

// ConditionRule applies Then only where If holds.
type ConditionRule struct {
	If   Condition
	Then Rule
}

func (r ConditionRule) Place(pos coord.AbsBlockPos, ctx *Context) (block.Entry, bool) {
	if !r.If.Test(pos, ctx) {
		return block.Entry{}, false
	}
	return r.Then.Place(pos, ctx)
}

// ChainRule returns the first result any of its rules produces.
type ChainRule []Rule

func (c ChainRule) Place(pos coord.AbsBlockPos, ctx *Context) (block.Entry, bool) {
	for _, r := range c {
		if e, ok := r.Place(pos, ctx); ok {
			return e, true
		}
	}
	return block.Entry{}, false
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(pos coord.AbsBlockPos, ctx *Context) (block.Entry, bool)

func (f RuleFunc) Place(pos coord.AbsBlockPos, ctx *Context) (block.Entry, bool) { return f(pos, ctx) }

// Always holds everywhere.
type Always struct{}

func (Always) Test(coord.AbsBlockPos, *Context) bool { return true }

// YAtLeast holds at and above a world height.
type YAtLeast int

func (c YAtLeast) Test(pos coord.AbsBlockPos, _ *Context) bool { return pos.Y >= int(c) }

// Not negates a condition.
type Not struct{ Condition Condition }

func (c Not) Test(pos coord.AbsBlockPos, ctx *Context) bool { return !c.Condition.Test(pos, ctx) }

// BelowGround holds at the ground block and everything beneath it.
type BelowGround struct{}

func (BelowGround) Test(pos coord.AbsBlockPos, ctx *Context) bool { return ctx.GroundY >= pos.Y }

// AtGround holds only at the ground block.
type AtGround struct{}

func (AtGround) Test(pos coord.AbsBlockPos, ctx *Context) bool { return ctx.GroundY == pos.Y }

// Depth holds where GroundY-y lies in [Min, Max].
type Depth struct{ Min, Max int }

// DepthAtLeast is a Depth without an upper bound.
func DepthAtLeast(d int) Depth { return Depth{Min: d, Max: math.MaxInt32} }

func (c Depth) Test(pos coord.AbsBlockPos, ctx *Context) bool {
	d := ctx.GroundY - pos.Y
	return d >= c.Min && d <= c.Max
}

// BelowSeaLevel holds strictly under the sea surface.
type BelowSeaLevel struct{}

func (BelowSeaLevel) Test(pos coord.AbsBlockPos, ctx *Context) bool { return pos.Y < ctx.SeaLevel }

// All holds when every condition holds.
type All []Condition

func (c All) Test(pos coord.AbsBlockPos, ctx *Context) bool {
	for _, cond := range c {
		if !cond.Test(pos, ctx) {
			return false
		}
	}
	return true
}

// Any holds when at least one condition holds.
type Any []Condition

func (c Any) Test(pos coord.AbsBlockPos, ctx *Context) bool {
	for _, cond := range c {
		if cond.Test(pos, ctx) {
			return true
		}
	}
	return false
}

// ConditionFunc adapts a function to Condition.
type ConditionFunc func(pos coord.AbsBlockPos, ctx *Context) bool

func (f ConditionFunc) Test(pos coord.AbsBlockPos, ctx *Context) bool { return f(pos, ctx) }
