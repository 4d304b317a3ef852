package biome

import "math"

// Scale divides world coordinates before they reach a surface function.
// ScaleMod additionally stretches every built-in surface.
const (
	Scale    = 256.0
	ScaleMod = 1.0
)

// NoiseSource is a seeded 2D coherent noise function, roughly in [-1, 1].
type NoiseSource interface {
	Eval2(x, y float64) float64
}

// Sources are the world's noise functions available to surfaces.
type Sources struct {
	Terrain NoiseSource
	Detail  NoiseSource
}

// Surface computes a biome's raw terrain value at a scaled world point.
type Surface interface {
	Height(x, z float64, src Sources) float64
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(x, z float64, src Sources) float64

func (f SurfaceFunc) Height(x, z float64, src Sources) float64 { return f(x, z, src) }

// PlainsSurface is low rolling terrain.
type PlainsSurface struct{}

func (PlainsSurface) Height(x, z float64, src Sources) float64 {
	x, z = x/ScaleMod*2, z/ScaleMod*2
	v := src.Terrain.Eval2(x, z) * 0.75
	v += src.Terrain.Eval2(x*2, z*2) * 0.25
	return v * 5
}

// HillsSurface adds three octaves of short-wavelength bumps.
type HillsSurface struct{}

func (HillsSurface) Height(x, z float64, src Sources) float64 {
	x, z = x/ScaleMod*40, z/ScaleMod*40
	v := src.Terrain.Eval2(x, z) * 0.6
	v += src.Terrain.Eval2(x*1.5, z*1.5) * 0.25
	v += src.Terrain.Eval2(x*3, z*3) * 0.15
	return v * 0.05
}

// MountainsSurface is ridged noise lifted well above sea level.
type MountainsSurface struct{}

func (MountainsSurface) Height(x, z float64, src Sources) float64 {
	x, z = x/ScaleMod/4, z/ScaleMod/4
	n := func(m float64) float64 { return (src.Terrain.Eval2(x*m, z*m) + 1) / 2 }
	ridged := func(m float64) float64 { return (0.5 - math.Abs(0.5-n(m))) * 2 }

	h := 0.5*ridged(1) + 0.25*ridged(2)
	v := h + (h/0.75)*0.15*n(5) + (h/0.75)*0.05*ridged(9)
	return math.Abs(v)*100 + 40
}

// OceanSurface dips below sea level.
type OceanSurface struct{}

func (OceanSurface) Height(x, z float64, src Sources) float64 {
	return src.Terrain.Eval2(x/ScaleMod, z/ScaleMod)*-7.5 + 1
}

// PerlinSurface samples the detail source with a frequency, amplitude and offset.
type PerlinSurface struct {
	Frequency float64 `yaml:"frequency"`
	Amplitude float64 `yaml:"amplitude"`
	Offset    float64 `yaml:"offset"`
}

func (s PerlinSurface) Height(x, z float64, src Sources) float64 {
	return src.Detail.Eval2(x*s.Frequency, z*s.Frequency)*s.Amplitude + s.Offset
}

// ConstantSurface is perfectly flat.
type ConstantSurface float64

func (s ConstantSurface) Height(float64, float64, Sources) float64 { return float64(s) }
