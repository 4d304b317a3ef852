// Package noise provides the seeded coherent noise fields used by world generation.
//
// All types are immutable after construction and safe for concurrent use.
package noise

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// octaveSeedMul spreads octave seeds apart. Octaves with equal amplitude share a seed.
const octaveSeedMul = 4037543.0

// Fbm layers OpenSimplex octaves. Octave i is sampled at frequency 2^i and
// scaled by its amplitude; the sum is divided by the total absolute amplitude
// so the result stays roughly in [-1, 1].
type Fbm struct {
	sources []opensimplex.Noise
	amps    []float64
	norm    float64
}

// NewFbm creates an Fbm with one octave per amplitude.
func NewFbm(seed uint32, amplitudes []float64) *Fbm {
	f := &Fbm{
		sources: make([]opensimplex.Noise, len(amplitudes)),
		amps:    append([]float64(nil), amplitudes...),
	}
	for i, a := range amplitudes {
		octaveSeed := seed ^ uint32(int64(a*octaveSeedMul))
		f.sources[i] = opensimplex.New(int64(octaveSeed))
		f.norm += math.Abs(a)
	}
	if f.norm == 0 {
		f.norm = 1
	}
	return f
}

// Eval2 samples 2D noise.
func (f *Fbm) Eval2(x, y float64) float64 {
	var total float64
	freq := 1.0
	for i, src := range f.sources {
		if f.amps[i] != 0 {
			total += src.Eval2(x*freq, y*freq) * f.amps[i]
		}
		freq *= 2
	}
	return total / f.norm
}

// Eval3 samples 3D noise.
func (f *Fbm) Eval3(x, y, z float64) float64 {
	var total float64
	freq := 1.0
	for i, src := range f.sources {
		if f.amps[i] != 0 {
			total += src.Eval3(x*freq, y*freq, z*freq) * f.amps[i]
		}
		freq *= 2
	}
	return total / f.norm
}

// Eval4 samples 4D noise.
func (f *Fbm) Eval4(x, y, z, w float64) float64 {
	var total float64
	freq := 1.0
	for i, src := range f.sources {
		if f.amps[i] != 0 {
			total += src.Eval4(x*freq, y*freq, z*freq, w*freq) * f.amps[i]
		}
		freq *= 2
	}
	return total / f.norm
}

// Noise4 is any 4D noise function.
type Noise4 interface {
	Eval4(x, y, z, w float64) float64
}

// Torus samples n on a 4D torus so that the 2D plane wraps with period 1
// on both axes. The result is stretched to roughly [-1.5, 1.5].
func Torus(n Noise4, x, y float64) float64 {
	ax := 2 * math.Pi * x
	ay := 2 * math.Pi * y
	const r = 1 / (2 * math.Pi)
	return n.Eval4(math.Cos(ax)*r, math.Sin(ax)*r, math.Cos(ay)*r, math.Sin(ay)*r) * 1.5
}

// MapRange linearly maps s from [fromLo, fromHi] to [toLo, toHi]. It does not clamp.
func MapRange(fromLo, fromHi, toLo, toHi, s float64) float64 {
	return toLo + (s-fromLo)*(toHi-toLo)/(fromHi-fromLo)
}
