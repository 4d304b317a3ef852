package biome

import (
	"testing"

	"github.com/OCharnyshevich/worldgen/pkg/world/block"
	"github.com/OCharnyshevich/worldgen/pkg/world/coord"
)

func TestRangeContains(t *testing.T) {
	tests := []struct {
		r    Range
		v    float64
		want bool
	}{
		{Closed(1, 2), 1, true},
		{Closed(1, 2), 2, false},
		{Inclusive(1, 2), 2, true},
		{AtLeast(3.5), 3.5, true},
		{AtLeast(3.5), 3.4, false},
		{Below(1), 1, false},
		{Below(1), -10, true},
		{Full(), 1e9, true},
	}
	for _, tt := range tests {
		if got := tt.r.Contains(tt.v); got != tt.want {
			t.Errorf("%s.Contains(%v) = %v, want %v", tt.r, tt.v, got, tt.want)
		}
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in   string
		want Range
	}{
		{"1.1..2.5", Closed(1.1, 2.5)},
		{"0..=5", Inclusive(0, 5)},
		{"3.5..", AtLeast(3.5)},
		{"..2.5", Below(2.5)},
		{"..", Full()},
		{" 1 .. 2 ", Closed(1, 2)},
	}
	for _, tt := range tests {
		got, err := ParseRange(tt.in)
		if err != nil {
			t.Errorf("ParseRange(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRange(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
		back, err := ParseRange(got.String())
		if err != nil || back != got {
			t.Errorf("ParseRange(%q.String()) = %+v, %v", tt.in, back, err)
		}
	}

	for _, bad := range []string{"", "1", "a..b", "..=3", "1..=", "1..x"} {
		if _, err := ParseRange(bad); err == nil {
			t.Errorf("ParseRange(%q) succeeded, want error", bad)
		}
	}
}

func defaultRegistries(t *testing.T) (*block.Registry, *Registry) {
	t.Helper()
	blocks, err := block.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	biomes, err := DefaultRegistry(blocks)
	if err != nil {
		t.Fatal(err)
	}
	return blocks, biomes
}

func mustBlock(t *testing.T, blocks *block.Registry, name string) block.Entry {
	t.Helper()
	for _, d := range block.Defaults() {
		if d.Name.Key == name {
			e, err := block.Lookup(blocks, d.Name)
			if err != nil {
				t.Fatal(err)
			}
			return e
		}
	}
	t.Fatalf("no default block %q", name)
	return block.Entry{}
}

func TestLandRule(t *testing.T) {
	blocks, _ := defaultRegistries(t)
	rule, err := LandRule(blocks)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		y, ground int
		want      string
		ok        bool
	}{
		{10, 10, "grass", true},
		{85, 85, "snow_grass", true},
		{9, 10, "dirt", true},
		{6, 10, "dirt", true},
		{5, 10, "stone", true},
		{-40, 10, "stone", true},
		{11, 10, "", false},
	}
	for _, tt := range tests {
		ctx := &Context{GroundY: tt.ground}
		got, ok := rule.Place(coord.AbsBlockPos{Y: tt.y}, ctx)
		if ok != tt.ok {
			t.Errorf("y=%d ground=%d: ok = %v, want %v", tt.y, tt.ground, ok, tt.ok)
			continue
		}
		if ok && got != mustBlock(t, blocks, tt.want) {
			t.Errorf("y=%d ground=%d: got %v, want %s", tt.y, tt.ground, got, tt.want)
		}
	}
}

func TestWaterRule(t *testing.T) {
	blocks, _ := defaultRegistries(t)
	rule, err := WaterRule(blocks)
	if err != nil {
		t.Fatal(err)
	}
	ctx := &Context{GroundY: -5, SeaLevel: 0}

	if got, ok := rule.Place(coord.AbsBlockPos{Y: -1}, ctx); !ok || got != mustBlock(t, blocks, "water") {
		t.Errorf("above ground under sea: %v %v, want water", got, ok)
	}
	if got, ok := rule.Place(coord.AbsBlockPos{Y: -5}, ctx); !ok || got != mustBlock(t, blocks, "water") {
		t.Errorf("at ground under sea: %v %v, want water", got, ok)
	}
	if got, ok := rule.Place(coord.AbsBlockPos{Y: -6}, ctx); !ok || got != mustBlock(t, blocks, "stone") {
		t.Errorf("below ground: %v %v, want stone", got, ok)
	}
	if _, ok := rule.Place(coord.AbsBlockPos{Y: 0}, ctx); ok {
		t.Error("at sea level: rule placed a block")
	}
}

func TestConditionsCompose(t *testing.T) {
	ctx := &Context{GroundY: 4, SeaLevel: 2}
	pos := coord.AbsBlockPos{Y: 1}
	if !(All{BelowGround{}, BelowSeaLevel{}}).Test(pos, ctx) {
		t.Error("All{BelowGround, BelowSeaLevel} = false at y=1")
	}
	if (All{BelowGround{}, Not{Always{}}}).Test(pos, ctx) {
		t.Error("All with Not{Always} = true")
	}
	if !(Any{AtGround{}, YAtLeast(1)}).Test(pos, ctx) {
		t.Error("Any{AtGround, YAtLeast(1)} = false at y=1")
	}
	custom := ConditionFunc(func(p coord.AbsBlockPos, _ *Context) bool { return p.X == 7 })
	if custom.Test(pos, ctx) {
		t.Error("ConditionFunc ignored position")
	}
}

func TestDefaultsMatchAndGeneratable(t *testing.T) {
	_, biomes := defaultRegistries(t)

	gen := Generatable(biomes)
	for _, id := range gen {
		d, _ := biomes.ByID(id)
		if d.Name == Void || d.Name == River {
			t.Errorf("%s should not be generatable", d.Name)
		}
	}
	if len(gen) != 5 {
		t.Errorf("%d generatable biomes, want 5", len(gen))
	}

	_, plains, _ := biomes.ByName(Plains)
	if !plains.Matches(Climate{Elevation: 2, Temperature: 4, Moisture: 1}) {
		t.Error("plains should match elevation 2, moisture 1")
	}
	_, ocean, _ := biomes.ByName(Ocean)
	if ocean.Matches(Climate{Elevation: 0.5, Moisture: 1}) {
		t.Error("ocean should not match a dry point")
	}
}

func TestSurfacesAreDeterministic(t *testing.T) {
	src := Sources{Terrain: constNoise(0.25), Detail: constNoise(-0.5)}
	for _, s := range []Surface{PlainsSurface{}, HillsSurface{}, MountainsSurface{}, OceanSurface{}, PerlinSurface{Frequency: 2, Amplitude: 4, Offset: 1}} {
		if a, b := s.Height(3, 4, src), s.Height(3, 4, src); a != b {
			t.Errorf("%T not deterministic: %v vs %v", s, a, b)
		}
	}
	if got := (OceanSurface{}).Height(0, 0, src); got != 0.25*-7.5+1 {
		t.Errorf("ocean surface = %v", got)
	}
	if got := (PerlinSurface{Frequency: 2, Amplitude: 4, Offset: 1}).Height(0, 0, src); got != -1 {
		t.Errorf("perlin surface = %v, want -1", got)
	}
	if got := (MountainsSurface{}).Height(0, 0, src); got < 40 {
		t.Errorf("mountain surface = %v, want >= 40", got)
	}
}

type constNoise float64

func (c constNoise) Eval2(float64, float64) float64 { return float64(c) }
