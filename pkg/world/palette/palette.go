// Package palette implements palette-compressed chunk storage.
//
// A Storage keeps every distinct value once in a palette and one index per
// voxel. The index array is absent while the chunk holds a single value and
// is widened from 8 to 16 bits as the palette grows.
package palette

import (
	"errors"
	"fmt"

	"github.com/OCharnyshevich/worldgen/pkg/world/coord"
)

const (
	// byteCutoff is the largest palette length addressable with 8-bit indices.
	byteCutoff = 256

	// Serialized data lengths, in uint16 words.
	u8DataLen  = coord.Dim3 / 2
	u16DataLen = coord.Dim3
)

var (
	ErrIllegalPaletteLength = errors.New("palette: illegal palette length")
	ErrIllegalDataLength    = errors.New("palette: illegal data array length")
	ErrIllegalIndex         = errors.New("palette: index out of palette range")
)

// Storage is a palette-compressed dense grid of coord.Dim3 values.
// It is not safe for concurrent mutation; concurrent readers are fine once writes stop.
type Storage[T comparable] struct {
	palette []T
	u8      []uint8
	u16     []uint16
}

// New returns a singleton storage where every position holds fill.
func New[T comparable](fill T) *Storage[T] {
	return &Storage[T]{palette: []T{fill}}
}

// FromSerialized rebuilds a storage from SerializedPalette and SerializedData output.
func FromSerialized[T comparable](palette []T, data []uint16) (*Storage[T], error) {
	if len(palette) == 0 || len(palette) > coord.Dim3 {
		return nil, fmt.Errorf("%w: %d", ErrIllegalPaletteLength, len(palette))
	}
	s := &Storage[T]{palette: append([]T(nil), palette...)}

	switch len(data) {
	case 0, 1:
		return s, nil
	case u8DataLen:
		s.u8 = make([]uint8, coord.Dim3)
		for i, w := range data {
			s.u8[2*i] = uint8(w)
			s.u8[2*i+1] = uint8(w >> 8)
		}
		for _, idx := range s.u8 {
			if int(idx) >= len(palette) {
				return nil, fmt.Errorf("%w: %d >= %d", ErrIllegalIndex, idx, len(palette))
			}
		}
	case u16DataLen:
		s.u16 = append([]uint16(nil), data...)
		for _, idx := range s.u16 {
			if int(idx) >= len(palette) {
				return nil, fmt.Errorf("%w: %d >= %d", ErrIllegalIndex, idx, len(palette))
			}
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrIllegalDataLength, len(data))
	}
	return s, nil
}

// Width returns the active index width in bits: 0, 8 or 16.
func (s *Storage[T]) Width() int {
	switch {
	case s.u16 != nil:
		return 16
	case s.u8 != nil:
		return 8
	default:
		return 0
	}
}

// Palette returns the palette entries. The slice must not be modified.
func (s *Storage[T]) Palette() []T { return s.palette }

// SerializedPalette returns a copy of the palette for interchange.
func (s *Storage[T]) SerializedPalette() []T {
	return append([]T(nil), s.palette...)
}

// SerializedData returns the index array as uint16 words: one word for a
// singleton, Dim3/2 words of little-endian byte pairs for 8-bit indices, or
// Dim3 words for 16-bit indices.
func (s *Storage[T]) SerializedData() []uint16 {
	switch s.Width() {
	case 8:
		out := make([]uint16, u8DataLen)
		for i := range out {
			out[i] = uint16(s.u8[2*i]) | uint16(s.u8[2*i+1])<<8
		}
		return out
	case 16:
		return append([]uint16(nil), s.u16...)
	default:
		return []uint16{0}
	}
}

func (s *Storage[T]) index(i int) int {
	switch {
	case s.u16 != nil:
		return int(s.u16[i])
	case s.u8 != nil:
		return int(s.u8[i])
	default:
		return 0
	}
}

// Get returns the value at pos.
func (s *Storage[T]) Get(pos coord.InChunkPos) T {
	return s.palette[s.index(pos.Index())]
}

// Put stores v at pos and returns the previous value.
func (s *Storage[T]) Put(pos coord.InChunkPos, v T) T {
	i := pos.Index()
	pi := s.getOrInsert(v, i)
	s.ensureFits(pi)

	var old int
	switch s.Width() {
	case 0:
		// ensureFits leaves a singleton only when pi is 0.
		return s.palette[0]
	case 8:
		old = int(s.u8[i])
		s.u8[i] = uint8(pi)
	case 16:
		old = int(s.u16[i])
		s.u16[i] = uint16(pi)
	}
	return s.palette[old]
}

// Fill stores v at every position of r, writing whole X rows at a time.
func (s *Storage[T]) Fill(r coord.InChunkRange, v T) {
	pi := s.getOrInsert(v, r.Min.Index())
	s.ensureFits(pi)

	switch s.Width() {
	case 0:
		return
	case 8:
		for y := r.Min.Y; y <= r.Max.Y; y++ {
			for z := r.Min.Z; z <= r.Max.Z; z++ {
				start := y*coord.Dim2 + z*coord.Dim + r.Min.X
				end := y*coord.Dim2 + z*coord.Dim + r.Max.X
				row := s.u8[start : end+1]
				for k := range row {
					row[k] = uint8(pi)
				}
			}
		}
	case 16:
		for y := r.Min.Y; y <= r.Max.Y; y++ {
			for z := r.Min.Z; z <= r.Max.Z; z++ {
				start := y*coord.Dim2 + z*coord.Dim + r.Min.X
				end := y*coord.Dim2 + z*coord.Dim + r.Max.X
				row := s.u16[start : end+1]
				for k := range row {
					row[k] = uint16(pi)
				}
			}
		}
	}
}

// Optimize drops unreferenced palette entries and shrinks the index width.
func (s *Storage[T]) Optimize() {
	s.gc(-1)
}

// Each calls fn for every position in XZY index order.
func (s *Storage[T]) Each(fn func(pos coord.InChunkPos, v T)) {
	for i := 0; i < coord.Dim3; i++ {
		fn(coord.FromIndex(i), s.palette[s.index(i)])
	}
}

// CopyDense writes every value into out in XZY index order. out must hold coord.Dim3 values.
func (s *Storage[T]) CopyDense(out []T) {
	if len(out) < coord.Dim3 {
		panic(fmt.Sprintf("palette: dense buffer of %d values, need %d", len(out), coord.Dim3))
	}
	for i := 0; i < coord.Dim3; i++ {
		out[i] = s.palette[s.index(i)]
	}
}

// Clone returns a deep copy.
func (s *Storage[T]) Clone() *Storage[T] {
	c := &Storage[T]{palette: append([]T(nil), s.palette...)}
	if s.u8 != nil {
		c.u8 = append([]uint8(nil), s.u8...)
	}
	if s.u16 != nil {
		c.u16 = append([]uint16(nil), s.u16...)
	}
	return c
}

// Equal reports whether both storages have identical palettes and index arrays.
func (s *Storage[T]) Equal(o *Storage[T]) bool {
	if len(s.palette) != len(o.palette) || s.Width() != o.Width() {
		return false
	}
	for i := range s.palette {
		if s.palette[i] != o.palette[i] {
			return false
		}
	}
	for i := 0; i < coord.Dim3 && s.Width() != 0; i++ {
		if s.index(i) != o.index(i) {
			return false
		}
	}
	return true
}

// getOrInsert returns the palette index of v, appending it when missing.
// A full palette is garbage-collected first, ignoring the position about to be overwritten.
func (s *Storage[T]) getOrInsert(v T, ignored int) int {
	for i, e := range s.palette {
		if e == v {
			return i
		}
	}
	if len(s.palette) >= coord.Dim3 {
		s.gc(ignored)
	}
	if len(s.palette) >= coord.Dim3 {
		panic("palette: no free palette slot after gc")
	}
	s.palette = append(s.palette, v)
	return len(s.palette) - 1
}

// ensureFits widens the index array until it can address pi.
func (s *Storage[T]) ensureFits(pi int) {
	for {
		switch s.Width() {
		case 0:
			if pi == 0 {
				return
			}
		case 8:
			if pi < byteCutoff {
				return
			}
		case 16:
			return
		}
		s.upgrade()
	}
}

func (s *Storage[T]) upgrade() {
	switch s.Width() {
	case 0:
		s.u8 = make([]uint8, coord.Dim3)
	case 8:
		s.u16 = make([]uint16, coord.Dim3)
		for i, v := range s.u8 {
			s.u16[i] = uint16(v)
		}
		s.u8 = nil
	default:
		panic("palette: upgrade past 16-bit indices")
	}
}

// gc compacts the palette to entries referenced by the index array.
// ignored is a linear index excluded from the scan, or -1.
func (s *Storage[T]) gc(ignored int) {
	if s.Width() == 0 {
		return
	}
	used := make([]bool, len(s.palette))
	count := 0
	for i := 0; i < coord.Dim3; i++ {
		if i == ignored {
			continue
		}
		if idx := s.index(i); !used[idx] {
			used[idx] = true
			count++
		}
	}

	switch {
	case count == len(s.palette):
		return
	case count <= 1:
		keep := s.palette[0]
		for i, u := range used {
			if u {
				keep = s.palette[i]
				break
			}
		}
		s.palette = []T{keep}
		s.u8, s.u16 = nil, nil
		return
	}

	remap := make([]int, len(s.palette))
	compact := make([]T, 0, count)
	for i, u := range used {
		if u {
			remap[i] = len(compact)
			compact = append(compact, s.palette[i])
		}
	}

	oldIndex := make([]int, coord.Dim3)
	for i := range oldIndex {
		oldIndex[i] = s.index(i)
	}
	s.palette = compact
	if count <= byteCutoff {
		s.u8, s.u16 = make([]uint8, coord.Dim3), nil
		for i, idx := range oldIndex {
			s.u8[i] = uint8(remap[idx])
		}
	} else {
		s.u8, s.u16 = nil, make([]uint16, coord.Dim3)
		for i, idx := range oldIndex {
			s.u16[i] = uint16(remap[idx])
		}
	}
}
