package world

import (
	"sync/atomic"

	"github.com/OCharnyshevich/worldgen/pkg/world/gen"
)

// generatorPool hands out per-worker generators. Generators carry their own
// column caches and must not be shared; the pool keeps idle ones for reuse.
type generatorPool struct {
	src     gen.Source
	pool    chan gen.Generator
	created atomic.Int32
}

func newGeneratorPool(src gen.Source, size int) *generatorPool {
	return &generatorPool{
		src:  src,
		pool: make(chan gen.Generator, size),
	}
}

func (p *generatorPool) Get() gen.Generator {
	select {
	case g := <-p.pool:
		return g
	default:
		p.created.Add(1)
		return p.src.NewGenerator()
	}
}

func (p *generatorPool) Put(g gen.Generator) {
	select {
	case p.pool <- g:
	default:
		// full, drop it
	}
}
