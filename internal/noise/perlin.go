package noise

import "github.com/aquilax/go-perlin"

// Perlin is classic gradient noise, used for per-biome surface detail.
type Perlin struct {
	p *perlin.Perlin
}

// Perlin defaults: alpha is the weight falloff, beta the frequency step.
const (
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = 3
)

// NewPerlin creates a Perlin source from a seed.
func NewPerlin(seed int64) *Perlin {
	return &Perlin{p: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed)}
}

// Eval2 samples 2D noise.
func (n *Perlin) Eval2(x, y float64) float64 { return n.p.Noise2D(x, y) }

// Eval3 samples 3D noise.
func (n *Perlin) Eval3(x, y, z float64) float64 { return n.p.Noise3D(x, y, z) }
