// Package blend turns the classified graph into smooth per-column biome
// weights. Instead of hard Voronoi cell edges every pair of nearby centers
// splits the column's weight with a smoothstep across their bisector.
package blend

import (
	"math"
	"slices"

	"github.com/OCharnyshevich/worldgen/internal/graph"
	"github.com/OCharnyshevich/worldgen/pkg/world/biome"
	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

// DefaultRadius is the half width of the blend band around cell borders, in blocks.
const DefaultRadius = 16.0

// expectedBiomes sizes the entry list; most columns see two to four biomes.
const expectedBiomes = 4

// Sample is the blended composition of one column.
type Sample struct {
	Biomes []biome.Entry
	Noise  biome.Climate
}

// Sampler computes Samples from a classified graph. It holds no mutable
// state and may be shared by any number of goroutines.
type Sampler struct {
	g      *graph.Graph
	radius float64
}

// NewSampler returns a Sampler over g. A non-positive radius selects DefaultRadius.
func NewSampler(g *graph.Graph, radius float64) *Sampler {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &Sampler{g: g, radius: radius}
}

// Radius returns the blend radius.
func (s *Sampler) Radius() float64 { return s.radius }

func fade(t float64) float64 { return t * t * (3 - 2*t) }

// At samples the column at world point (x, z). The returned weights sum
// to 1 unless every center's weight vanished, in which case they are left
// unnormalized.
func (s *Sampler) At(x, z float64) Sample {
	p := graph.Point{x, z}
	ix := s.g.Index()
	nearest := ix.Nearest(p)
	if nearest == graph.None {
		return Sample{}
	}
	closest := s.g.Centers[nearest].Point.Sub(p).Len()
	kept := ix.Within(p, closest+4*s.radius, make([]int, 0, 16))

	weights := make([]float64, len(kept))
	for i := range weights {
		weights[i] = 1
	}
	for i := 0; i < len(kept); i++ {
		a := s.g.Centers[kept[i]].Point
		for j := i + 1; j < len(kept); j++ {
			b := s.g.Centers[kept[j]].Point
			dir := b.Sub(a)
			l := dir.Len()
			if l == 0 {
				continue
			}
			mid := a.Add(b).Mul(0.5)
			d := p.Sub(mid).Dot(dir) / l
			w := fade(math.Max(-1, math.Min(1, d/s.radius))*0.5 + 0.5)
			weights[i] *= 1 - w
			weights[j] *= w
		}
	}

	var total float64
	var noise biome.Climate
	entries := make([]biome.Entry, 0, expectedBiomes)
	for i, ci := range kept {
		w := weights[i]
		if w == 0 {
			continue
		}
		c := &s.g.Centers[ci]
		total += w
		noise.Elevation += c.Noise.Elevation * w
		noise.Temperature += c.Noise.Temperature * w
		noise.Moisture += c.Noise.Moisture * w
		entries = merge(entries, c.Biome, w)
	}

	div := total
	if div < 1e-9 {
		div = 1
	}
	for i := range entries {
		entries[i].Weight /= div
	}
	noise.Elevation /= div
	noise.Temperature /= div
	noise.Moisture /= div
	return Sample{Biomes: entries, Noise: noise}
}

func merge(entries []biome.Entry, id registry.ID, w float64) []biome.Entry {
	if i := slices.IndexFunc(entries, func(e biome.Entry) bool { return e.ID == id }); i >= 0 {
		entries[i].Weight += w
		return entries
	}
	return append(entries, biome.Entry{ID: id, Weight: w})
}
