package coord

import "fmt"

// Chunk dimensions. Chunks are cubes of Dim blocks per side.
const (
	Dim  = 32
	Dim2 = Dim * Dim
	Dim3 = Dim * Dim * Dim
)

// AbsChunkPos identifies a chunk by its chunk-grid coordinates.
type AbsChunkPos struct{ X, Y, Z int }

// AbsBlockPos is a block position in world space.
type AbsBlockPos struct{ X, Y, Z int }

// InChunkPos is a block position relative to its chunk origin, each axis in [0,Dim).
type InChunkPos struct{ X, Y, Z int }

// Origin returns the world position of the chunk's lowest corner.
func (p AbsChunkPos) Origin() AbsBlockPos {
	return AbsBlockPos{X: p.X * Dim, Y: p.Y * Dim, Z: p.Z * Dim}
}

// Block returns the world position of an in-chunk position inside this chunk.
func (p AbsChunkPos) Block(in InChunkPos) AbsBlockPos {
	o := p.Origin()
	return AbsBlockPos{X: o.X + in.X, Y: o.Y + in.Y, Z: o.Z + in.Z}
}

func (p AbsChunkPos) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// Chunk returns the chunk containing the block and the block's position inside it.
func (p AbsBlockPos) Chunk() (AbsChunkPos, InChunkPos) {
	c := AbsChunkPos{X: floorDiv(p.X), Y: floorDiv(p.Y), Z: floorDiv(p.Z)}
	return c, InChunkPos{X: p.X - c.X*Dim, Y: p.Y - c.Y*Dim, Z: p.Z - c.Z*Dim}
}

func floorDiv(v int) int {
	if v >= 0 {
		return v / Dim
	}
	return -((-v + Dim - 1) / Dim)
}

// NewInChunkPos returns the position, or false when any axis is out of [0,Dim).
func NewInChunkPos(x, y, z int) (InChunkPos, bool) {
	if x < 0 || x >= Dim || y < 0 || y >= Dim || z < 0 || z >= Dim {
		return InChunkPos{}, false
	}
	return InChunkPos{X: x, Y: y, Z: z}, true
}

// Index returns the linear XZY index: y*Dim²+z*Dim+x.
func (p InChunkPos) Index() int {
	return p.Y*Dim2 + p.Z*Dim + p.X
}

// FromIndex is the inverse of InChunkPos.Index.
func FromIndex(i int) InChunkPos {
	return InChunkPos{X: i % Dim, Z: (i / Dim) % Dim, Y: i / Dim2}
}

// InChunkRange is an axis-aligned box of in-chunk positions; both corners are inclusive.
type InChunkRange struct {
	Min, Max InChunkPos
}

// WholeChunk covers every position of a chunk.
var WholeChunk = InChunkRange{Max: InChunkPos{X: Dim - 1, Y: Dim - 1, Z: Dim - 1}}

// RangeFromCorners builds a range from any two opposite corners.
func RangeFromCorners(a, b InChunkPos) InChunkRange {
	return InChunkRange{
		Min: InChunkPos{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)},
		Max: InChunkPos{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)},
	}
}

// Layer returns the full horizontal slice at height y.
func Layer(y int) InChunkRange {
	return InChunkRange{
		Min: InChunkPos{Y: y},
		Max: InChunkPos{X: Dim - 1, Y: y, Z: Dim - 1},
	}
}

// Contains reports whether p lies within the range.
func (r InChunkRange) Contains(p InChunkPos) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y &&
		p.Z >= r.Min.Z && p.Z <= r.Max.Z
}

// Volume returns the number of positions in the range.
func (r InChunkRange) Volume() int {
	return (r.Max.X - r.Min.X + 1) * (r.Max.Y - r.Min.Y + 1) * (r.Max.Z - r.Min.Z + 1)
}
