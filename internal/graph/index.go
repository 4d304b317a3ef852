package graph

import (
	"math"
	"slices"
)

// Index is a uniform grid over center points for neighborhood queries.
// It is read-only after construction.
type Index struct {
	g      *Graph
	origin Point
	cell   float64
	cols   int
	rows   int
	cells  [][]int
}

// NewIndex buckets the centers of g into cells sized for about one center each.
func NewIndex(g *Graph) *Index {
	w, h := g.Bounds.Width(), g.Bounds.Height()
	cell := math.Sqrt(w * h / float64(max(len(g.Centers), 1)))
	if cell <= 0 || math.IsNaN(cell) {
		cell = 1
	}
	ix := &Index{
		g:      g,
		origin: g.Bounds.Min,
		cell:   cell,
		cols:   max(int(math.Ceil(w/cell)), 1),
		rows:   max(int(math.Ceil(h/cell)), 1),
	}
	ix.cells = make([][]int, ix.cols*ix.rows)
	for i, c := range g.Centers {
		cx, cy := ix.cellOf(c.Point)
		ix.cells[cy*ix.cols+cx] = append(ix.cells[cy*ix.cols+cx], i)
	}
	return ix
}

func (ix *Index) cellOf(p Point) (int, int) {
	cx := int(math.Floor((p.X() - ix.origin.X()) / ix.cell))
	cy := int(math.Floor((p.Y() - ix.origin.Y()) / ix.cell))
	return min(max(cx, 0), ix.cols-1), min(max(cy, 0), ix.rows-1)
}

// Within appends to dst every center whose distance to p is at most r,
// in ascending index order.
func (ix *Index) Within(p Point, r float64, dst []int) []int {
	x0, y0 := ix.cellOf(Point{p.X() - r, p.Y() - r})
	x1, y1 := ix.cellOf(Point{p.X() + r, p.Y() + r})
	start := len(dst)
	r2 := r * r
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			for _, i := range ix.cells[cy*ix.cols+cx] {
				d := ix.g.Centers[i].Point.Sub(p)
				if d.Dot(d) <= r2 {
					dst = append(dst, i)
				}
			}
		}
	}
	slices.Sort(dst[start:])
	return dst
}

// Nearest returns the center closest to p; ties go to the lower index.
func (ix *Index) Nearest(p Point) int {
	if len(ix.g.Centers) == 0 {
		return None
	}
	// Distance from p to the grid plus its diagonal bounds every center.
	outside := p.Sub(ix.g.Bounds.Clamp(p)).Len()
	limit := outside + math.Hypot(ix.g.Bounds.Width(), ix.g.Bounds.Height()) + ix.cell

	var buf []int
	for r := ix.cell; ; r *= 2 {
		buf = ix.Within(p, math.Max(r, outside+ix.cell), buf[:0])
		if len(buf) > 0 || r > limit {
			break
		}
	}
	best, bestD := None, math.Inf(1)
	for _, i := range buf {
		d := ix.g.Centers[i].Point.Sub(p)
		if dd := d.Dot(d); dd < bestD {
			best, bestD = i, dd
		}
	}
	return best
}
