package graph

import (
	"math/rand/v2"
)

// Rect is an axis-aligned world rectangle.
type Rect struct {
	Min, Max Point
}

// Centered returns a width x height rectangle centered on the world origin.
func Centered(width, height float64) Rect {
	return Rect{
		Min: Point{-width / 2, -height / 2},
		Max: Point{width / 2, height / 2},
	}
}

// Width returns the extent along x.
func (r Rect) Width() float64 { return r.Max.X() - r.Min.X() }

// Height returns the extent along y.
func (r Rect) Height() float64 { return r.Max.Y() - r.Min.Y() }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X() >= r.Min.X() && p.X() <= r.Max.X() && p.Y() >= r.Min.Y() && p.Y() <= r.Max.Y()
}

// Clamp moves p onto the nearest point of r.
func (r Rect) Clamp(p Point) Point {
	return Point{
		min(max(p.X(), r.Min.X()), r.Max.X()),
		min(max(p.Y(), r.Min.Y()), r.Max.Y()),
	}
}

// PickSites scatters count points uniformly in r.
func PickSites(count int, r Rect, rng *rand.Rand) []Point {
	sites := make([]Point, count)
	for i := range sites {
		sites[i] = Point{
			r.Min.X() + rng.Float64()*r.Width(),
			r.Min.Y() + rng.Float64()*r.Height(),
		}
	}
	return sites
}

// Relax runs iterations of Lloyd relaxation: every site moves to the average
// of its Voronoi vertices, clamped to r. Sites that are not part of any
// triangle stay where they are.
func Relax(sites []Point, r Rect, iterations int) []Point {
	out := append([]Point(nil), sites...)
	for it := 0; it < iterations; it++ {
		tris := Triangulate(out)
		if len(tris) == 0 {
			return out
		}
		sum := make([]Point, len(out))
		count := make([]int, len(out))
		for _, t := range tris {
			cc, ok := circumcenter(out[t.A], out[t.B], out[t.C])
			if !ok {
				continue
			}
			cc = r.Clamp(cc)
			for _, v := range [3]int{t.A, t.B, t.C} {
				sum[v] = sum[v].Add(cc)
				count[v]++
			}
		}
		for i := range out {
			if count[i] > 0 {
				out[i] = r.Clamp(sum[i].Mul(1 / float64(count[i])))
			}
		}
		out = dedupSites(out)
	}
	return out
}

// dedupSites drops exact duplicates while keeping first-seen order.
func dedupSites(sites []Point) []Point {
	seen := make(map[Point]struct{}, len(sites))
	out := sites[:0]
	for _, p := range sites {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// NewRand returns the seeded generator used for site picking and river sources.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
