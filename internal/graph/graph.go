// Package graph builds the Voronoi/Delaunay dual graph that biome synthesis runs on.
//
// All nodes live in flat slices owned by Graph and refer to each other by index.
// None marks a missing reference.
package graph

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/OCharnyshevich/worldgen/pkg/world/biome"
	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

// None is the index of a missing node.
const None = -1

// cornerEpsilon is the distance under which two Voronoi vertices are the same corner.
const cornerEpsilon = 1e-6

// ErrTooFewSites is returned when the sites cannot form a triangulation.
var ErrTooFewSites = errors.New("graph: too few sites")

// Point is a world-space position; Y holds the world z axis.
type Point = mgl64.Vec2

// Center is one Voronoi cell.
type Center struct {
	Point Point
	Noise biome.Climate
	Biome registry.ID

	Water, Ocean, Coast bool

	Neighbors []int // centers
	Borders   []int // edges
	Corners   []int // corners
}

// Corner is one Voronoi vertex.
type Corner struct {
	Point  Point
	Noise  biome.Climate
	Biome  registry.ID
	Border bool

	Water, Ocean, Coast bool

	Downslope     int
	Watershed     int
	WatershedSize int
	River         int

	Touches   []int // centers
	Protrudes []int // edges
	Adjacent  []int // corners
}

// Edge pairs a Delaunay edge (D0, D1) with its dual Voronoi edge (V0, V1).
type Edge struct {
	D0, D1   int
	V0, V1   int
	Midpoint Point
	Noise    biome.Climate
	Biome    registry.ID
	River    int
}

// Graph owns every node of one world.
type Graph struct {
	Bounds  Rect
	Centers []Center
	Corners []Corner
	Edges   []Edge

	index *Index
}

// New picks count sites in bounds, relaxes them and builds the graph.
func New(seed uint64, count int, bounds Rect, lloydIterations int) (*Graph, error) {
	sites := PickSites(count, bounds, NewRand(seed))
	sites = Relax(sites, bounds, lloydIterations)
	return Build(sites, bounds)
}

// Build constructs the dual graph of sites. Voronoi vertices outside bounds
// are clamped onto it and every hull edge gets a corner projected onto the
// rectangle; both kinds are marked Border.
func Build(sites []Point, bounds Rect) (*Graph, error) {
	if len(sites) < 3 {
		return nil, fmt.Errorf("%w: got %d, need at least 3", ErrTooFewSites, len(sites))
	}
	sites = dedupSites(append([]Point(nil), sites...))
	tris := Triangulate(sites)
	if len(tris) == 0 {
		return nil, fmt.Errorf("%w: %d sites do not span an area", ErrTooFewSites, len(sites))
	}

	g := &Graph{
		Bounds:  bounds,
		Centers: make([]Center, len(sites)),
	}
	for i, p := range sites {
		g.Centers[i] = Center{Point: p}
	}

	b := &builder{g: g, buckets: make(map[int][]int)}

	triCorner := make([]int, len(tris))
	for ti, t := range tris {
		cc, ok := circumcenter(sites[t.A], sites[t.B], sites[t.C])
		if !ok {
			cc = sites[t.A].Add(sites[t.B]).Add(sites[t.C]).Mul(1.0 / 3)
		}
		border := !bounds.Contains(cc)
		triCorner[ti] = b.corner(bounds.Clamp(cc), border)
	}

	// Delaunay edges in first-seen order, each with the triangles on its sides.
	type sides struct {
		key      edgeKey
		tri      [2]int
		opposite int
	}
	seen := make(map[edgeKey]*sides)
	var order []*sides
	for ti, t := range tris {
		for _, e := range [3][3]int{{t.A, t.B, t.C}, {t.B, t.C, t.A}, {t.C, t.A, t.B}} {
			k := makeEdgeKey(e[0], e[1])
			if s, ok := seen[k]; ok {
				s.tri[1] = ti
				continue
			}
			s := &sides{key: k, tri: [2]int{ti, None}, opposite: e[2]}
			seen[k] = s
			order = append(order, s)
		}
	}

	g.Edges = make([]Edge, 0, len(order))
	for _, s := range order {
		k := s.key
		e := Edge{D0: k.a, D1: k.b, V0: triCorner[s.tri[0]], V1: None}
		if s.tri[1] != None {
			e.V1 = triCorner[s.tri[1]]
		} else {
			e.V1 = b.corner(hullProjection(sites[k.a], sites[k.b], sites[s.opposite], bounds), true)
		}
		e.Midpoint = g.Corners[e.V0].Point.Add(g.Corners[e.V1].Point).Mul(0.5)
		g.Edges = append(g.Edges, e)
	}

	for i := range g.Edges {
		g.wire(i)
	}
	g.index = NewIndex(g)
	return g, nil
}

type builder struct {
	g       *Graph
	buckets map[int][]int
}

// corner returns the index of the corner at p, creating it if no corner
// lies within cornerEpsilon. Corners are bucketed by their floored x.
func (b *builder) corner(p Point, border bool) int {
	bucket := int(math.Floor(p.X()))
	for k := bucket - 1; k <= bucket+1; k++ {
		for _, q := range b.buckets[k] {
			if p.Sub(b.g.Corners[q].Point).Len() < cornerEpsilon {
				if border {
					b.g.Corners[q].Border = true
				}
				return q
			}
		}
	}
	idx := len(b.g.Corners)
	b.g.Corners = append(b.g.Corners, Corner{
		Point:     p,
		Border:    border,
		Downslope: None,
		Watershed: None,
	})
	b.buckets[bucket] = append(b.buckets[bucket], idx)
	return idx
}

// hullProjection walks from the midpoint of hull edge (a, b) away from
// the opposite vertex until it hits the rectangle.
func hullProjection(a, b, opposite Point, r Rect) Point {
	mid := a.Add(b).Mul(0.5)
	d := b.Sub(a)
	n := Point{-d.Y(), d.X()}
	if n.Dot(opposite.Sub(a)) > 0 {
		n = n.Mul(-1)
	}
	t := math.Inf(1)
	if n.X() > 0 {
		t = math.Min(t, (r.Max.X()-mid.X())/n.X())
	} else if n.X() < 0 {
		t = math.Min(t, (r.Min.X()-mid.X())/n.X())
	}
	if n.Y() > 0 {
		t = math.Min(t, (r.Max.Y()-mid.Y())/n.Y())
	} else if n.Y() < 0 {
		t = math.Min(t, (r.Min.Y()-mid.Y())/n.Y())
	}
	if math.IsInf(t, 1) || t < 0 {
		return r.Clamp(mid)
	}
	return r.Clamp(mid.Add(n.Mul(t)))
}

func addUnique(list []int, v int) []int {
	if v == None || slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}

// wire records edge i in the adjacency lists of its endpoints.
func (g *Graph) wire(i int) {
	e := &g.Edges[i]
	if e.D0 != None && e.D1 != None {
		g.Centers[e.D0].Neighbors = addUnique(g.Centers[e.D0].Neighbors, e.D1)
		g.Centers[e.D1].Neighbors = addUnique(g.Centers[e.D1].Neighbors, e.D0)
	}
	if e.V0 != None && e.V1 != None && e.V0 != e.V1 {
		g.Corners[e.V0].Adjacent = addUnique(g.Corners[e.V0].Adjacent, e.V1)
		g.Corners[e.V1].Adjacent = addUnique(g.Corners[e.V1].Adjacent, e.V0)
	}
	for _, d := range [2]int{e.D0, e.D1} {
		if d == None {
			continue
		}
		g.Centers[d].Borders = addUnique(g.Centers[d].Borders, i)
		g.Centers[d].Corners = addUnique(g.Centers[d].Corners, e.V0)
		g.Centers[d].Corners = addUnique(g.Centers[d].Corners, e.V1)
	}
	for _, v := range [2]int{e.V0, e.V1} {
		if v == None {
			continue
		}
		g.Corners[v].Protrudes = addUnique(g.Corners[v].Protrudes, i)
		g.Corners[v].Touches = addUnique(g.Corners[v].Touches, e.D0)
		g.Corners[v].Touches = addUnique(g.Corners[v].Touches, e.D1)
	}
}

// EdgeBetween returns the edge joining corners a and b, or None.
func (g *Graph) EdgeBetween(a, b int) int {
	for _, ei := range g.Corners[a].Protrudes {
		e := &g.Edges[ei]
		if (e.V0 == a && e.V1 == b) || (e.V0 == b && e.V1 == a) {
			return ei
		}
	}
	return None
}

// Index returns the spatial index over centers.
func (g *Graph) Index() *Index { return g.index }
