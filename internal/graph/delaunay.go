package graph

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Triangle holds three site indices in counter-clockwise order.
type Triangle struct {
	A, B, C int
}

type bwTri struct {
	Triangle
	cc    mgl64.Vec2
	r2    float64
	alive bool
}

type edgeKey struct{ a, b int }

func makeEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// Triangulate computes the Delaunay triangulation of points using the
// Bowyer-Watson algorithm. Duplicate points must be removed by the caller.
// The result is empty when the points are collinear or fewer than three.
func Triangulate(points []Point) []Triangle {
	n := len(points)
	if n < 3 {
		return nil
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X()), math.Max(maxX, p.X())
		minY, maxY = math.Min(minY, p.Y()), math.Max(maxY, p.Y())
	}
	delta := math.Max(maxX-minX, maxY-minY)
	if delta == 0 {
		delta = 1
	}
	midX, midY := (minX+maxX)/2, (minY+maxY)/2

	pts := make([]Point, n, n+3)
	copy(pts, points)
	pts = append(pts,
		Point{midX - 20*delta, midY - delta},
		Point{midX, midY + 20*delta},
		Point{midX + 20*delta, midY - delta},
	)

	tris := make([]bwTri, 0, 2*n+1)
	addTri := func(a, b, c int) {
		if orient(pts[a], pts[b], pts[c]) < 0 {
			b, c = c, b
		}
		cc, ok := circumcenter(pts[a], pts[b], pts[c])
		t := bwTri{Triangle: Triangle{a, b, c}, alive: true}
		if ok {
			d := pts[a].Sub(cc)
			t.cc, t.r2 = cc, d.Dot(d)
		} else {
			t.r2 = math.Inf(1)
		}
		tris = append(tris, t)
	}
	addTri(n, n+1, n+2)

	edgeCount := make(map[edgeKey]int)
	var boundary [][2]int
	for i := 0; i < n; i++ {
		p := pts[i]
		clear(edgeCount)
		boundary = boundary[:0]

		var bad []int
		for ti := range tris {
			t := &tris[ti]
			if !t.alive {
				continue
			}
			if d := p.Sub(t.cc); d.Dot(d) < t.r2 {
				bad = append(bad, ti)
			}
		}
		for _, ti := range bad {
			t := tris[ti].Triangle
			for _, e := range [3][2]int{{t.A, t.B}, {t.B, t.C}, {t.C, t.A}} {
				edgeCount[makeEdgeKey(e[0], e[1])]++
			}
		}
		// Walk the bad triangles again so the polygon order does not depend on map iteration.
		for _, ti := range bad {
			t := tris[ti].Triangle
			for _, e := range [3][2]int{{t.A, t.B}, {t.B, t.C}, {t.C, t.A}} {
				if edgeCount[makeEdgeKey(e[0], e[1])] == 1 {
					boundary = append(boundary, e)
				}
			}
			tris[ti].alive = false
		}
		for _, e := range boundary {
			addTri(e[0], e[1], i)
		}

		if len(tris) > 4*n+16 {
			tris = compact(tris)
		}
	}

	out := make([]Triangle, 0, len(tris))
	for _, t := range tris {
		if !t.alive || t.A >= n || t.B >= n || t.C >= n {
			continue
		}
		if orient(pts[t.A], pts[t.B], pts[t.C]) == 0 {
			continue
		}
		out = append(out, t.Triangle)
	}
	return out
}

func compact(tris []bwTri) []bwTri {
	out := tris[:0]
	for _, t := range tris {
		if t.alive {
			out = append(out, t)
		}
	}
	return out
}

// orient is positive when a, b, c turn counter-clockwise.
func orient(a, b, c Point) float64 {
	return (b.X()-a.X())*(c.Y()-a.Y()) - (b.Y()-a.Y())*(c.X()-a.X())
}

// circumcenter returns the circumcenter of triangle (a, b, c).
// ok is false when the triangle is degenerate.
func circumcenter(a, b, c Point) (cc Point, ok bool) {
	d := 2 * (a.X()*(b.Y()-c.Y()) + b.X()*(c.Y()-a.Y()) + c.X()*(a.Y()-b.Y()))
	if math.Abs(d) < 1e-12 {
		return Point{}, false
	}

	a2 := a.Dot(a)
	b2 := b.Dot(b)
	c2 := c.Dot(c)

	ux := (a2*(b.Y()-c.Y()) + b2*(c.Y()-a.Y()) + c2*(a.Y()-b.Y())) / d
	uy := (a2*(c.X()-b.X()) + b2*(a.X()-c.X()) + c2*(b.X()-a.X())) / d
	return Point{ux, uy}, true
}
