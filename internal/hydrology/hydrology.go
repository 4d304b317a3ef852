// Package hydrology classifies a built graph: it samples climate noise,
// floods oceans in from the map border, marks coasts, derives downslope and
// watershed pointers, traces rivers and finally assigns a biome to every node.
//
// The steps depend on each other and run in order on a single goroutine,
// except the initial noise sampling which is spread over a worker group.
package hydrology

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/worldgen/internal/graph"
	"github.com/OCharnyshevich/worldgen/pkg/world/biome"
	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

// lakeThreshold is the fraction of water corners that makes a center water.
const lakeThreshold = 0.3

// River sources are picked among corners whose elevation lies in this band.
const (
	riverMinElevation = 1.0
	riverMaxElevation = 3.5
)

// riverSalt decorrelates river picking from site picking.
const riverSalt = 0x5bd1e995

// Noise samples the climate axes at a world point.
type Noise interface {
	Climate(x, z float64) (elevation, temperature, moisture float64)
}

// Options controls one pipeline run. A zero special biome id disables
// the matching override.
type Options struct {
	Seed            uint64
	SizeChunksXZ    int
	WatershedRounds int
	Workers         int

	Ocean registry.ID
	Beach registry.ID
	River registry.ID
}

// Result reports what the pipeline did.
type Result struct {
	WatershedRounds    int
	WatershedConverged bool
	Rivers             int
	CoverageGaps       int
}

// Run classifies g in place. The graph is read-only for callers afterwards.
func Run(ctx context.Context, g *graph.Graph, biomes *biome.Registry, noise Noise, opts Options, log *slog.Logger) (Result, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	var res Result

	if err := assignNoise(ctx, g, noise, opts.Workers); err != nil {
		return res, fmt.Errorf("assign noise: %w", err)
	}

	var ocean *biome.Definition
	if opts.Ocean != 0 {
		def, ok := biomes.ByID(opts.Ocean)
		if !ok {
			return res, fmt.Errorf("ocean biome %d: %w", opts.Ocean, registry.ErrNotFound)
		}
		ocean = def
	}
	markWaterCorners(g, ocean)
	floodOceans(g)
	markCoasts(g)
	calculateDownslopes(g)
	res.WatershedRounds, res.WatershedConverged = calculateWatersheds(g, opts.WatershedRounds)
	if !res.WatershedConverged {
		log.Debug("watershed did not converge", "rounds", res.WatershedRounds)
	}

	rng := graph.NewRand(opts.Seed ^ riverSalt)
	res.Rivers = createRivers(g, rng, opts.SizeChunksXZ/2, opts.River)

	gaps, err := assignBiomes(g, biomes, rng, opts, log)
	if err != nil {
		return res, err
	}
	res.CoverageGaps = gaps
	if gaps > 0 {
		log.Warn("no biome matches noise, picking randomly", "nodes", gaps)
	}
	return res, nil
}

func climateAt(noise Noise, p graph.Point) biome.Climate {
	e, t, m := noise.Climate(p.X(), p.Y())
	return biome.Climate{Elevation: e, Temperature: t, Moisture: m}
}

// assignNoise samples every node. Nodes are independent, so batches run in parallel.
func assignNoise(ctx context.Context, g *graph.Graph, noise Noise, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	const batch = 256

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	spread := func(n int, fn func(i int)) {
		for start := 0; start < n; start += batch {
			end := min(start+batch, n)
			eg.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				for i := start; i < end; i++ {
					fn(i)
				}
				return nil
			})
		}
	}
	spread(len(g.Centers), func(i int) { g.Centers[i].Noise = climateAt(noise, g.Centers[i].Point) })
	spread(len(g.Corners), func(i int) { g.Corners[i].Noise = climateAt(noise, g.Corners[i].Point) })
	spread(len(g.Edges), func(i int) { g.Edges[i].Noise = climateAt(noise, g.Edges[i].Midpoint) })
	return eg.Wait()
}

// markWaterCorners sets the water precondition: border corners and corners
// whose climate lies in the ocean biome's elevation and moisture ranges.
func markWaterCorners(g *graph.Graph, ocean *biome.Definition) {
	for i := range g.Corners {
		q := &g.Corners[i]
		q.Water = q.Border
		if ocean != nil && ocean.Elevation.Contains(q.Noise.Elevation) && ocean.Moisture.Contains(q.Noise.Moisture) {
			q.Water = true
		}
	}
}

// floodOceans marks centers on the border as ocean and spreads ocean to
// every water center connected to one.
func floodOceans(g *graph.Graph) {
	var queue []int
	for i := range g.Centers {
		p := &g.Centers[i]
		numWater := 0
		for _, qi := range p.Corners {
			q := &g.Corners[qi]
			if q.Border && !p.Ocean {
				p.Ocean = true
				queue = append(queue, i)
			}
			if q.Water {
				numWater++
			}
		}
		p.Water = p.Ocean || float64(numWater) >= float64(len(p.Corners))*lakeThreshold
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, ri := range g.Centers[p].Neighbors {
			r := &g.Centers[ri]
			if r.Water && !r.Ocean {
				r.Ocean = true
				queue = append(queue, ri)
			}
		}
	}
}

// markCoasts derives coast flags for centers, then ocean, coast and water for corners.
func markCoasts(g *graph.Graph) {
	for i := range g.Centers {
		p := &g.Centers[i]
		numOcean, numLand := 0, 0
		for _, ri := range p.Neighbors {
			r := &g.Centers[ri]
			if r.Ocean {
				numOcean++
			}
			if !r.Water {
				numLand++
			}
		}
		p.Coast = numOcean > 0 && numLand > 0
	}
	for i := range g.Corners {
		q := &g.Corners[i]
		numOcean, numLand := 0, 0
		for _, pi := range q.Touches {
			p := &g.Centers[pi]
			if p.Ocean {
				numOcean++
			}
			if !p.Water {
				numLand++
			}
		}
		q.Ocean = len(q.Touches) > 0 && numOcean == len(q.Touches)
		q.Coast = numOcean > 0 && numLand > 0
		q.Water = q.Border || (numLand != len(q.Touches) && !q.Coast)
	}
}

// lower reports whether corner a sorts below corner b by (elevation, index).
func lower(g *graph.Graph, a, b int) bool {
	ea, eb := g.Corners[a].Noise.Elevation, g.Corners[b].Noise.Elevation
	if ea != eb {
		return ea < eb
	}
	return a < b
}

// calculateDownslopes points every corner at its lowest adjacent corner,
// or at itself when it is a local minimum.
func calculateDownslopes(g *graph.Graph) {
	for i := range g.Corners {
		r := i
		for _, s := range g.Corners[i].Adjacent {
			if lower(g, s, r) {
				r = s
			}
		}
		g.Corners[i].Downslope = r
	}
}

// calculateWatersheds follows downslope pointers towards the coast for at
// most rounds rounds. Each round reads the previous round's pointers.
// The cap bounds the work on large maps and is not a convergence guarantee.
func calculateWatersheds(g *graph.Graph, rounds int) (int, bool) {
	for i := range g.Corners {
		q := &g.Corners[i]
		q.Watershed = i
		if !q.Ocean && !q.Coast {
			q.Watershed = q.Downslope
		}
		q.WatershedSize = 0
	}

	prev := make([]int, len(g.Corners))
	converged := false
	done := 0
	for done < rounds {
		for i := range g.Corners {
			prev[i] = g.Corners[i].Watershed
		}
		done++
		changed := false
		for i := range g.Corners {
			q := &g.Corners[i]
			if prev[i] == i {
				continue
			}
			ws := &g.Corners[prev[i]]
			if q.Ocean || q.Coast || ws.Coast || g.Corners[prev[prev[i]]].Ocean {
				continue
			}
			if next := prev[q.Downslope]; next != q.Watershed {
				q.Watershed = next
				changed = true
			}
		}
		if !changed {
			converged = true
			break
		}
	}

	for i := range g.Corners {
		g.Corners[g.Corners[i].Watershed].WatershedSize++
	}
	return done, converged
}

// createRivers traces attempts rivers from random corners down to the coast.
// It returns how many sources produced at least one river segment.
func createRivers(g *graph.Graph, rng *rand.Rand, attempts int, river registry.ID) int {
	if len(g.Corners) == 0 {
		return 0
	}
	traced := 0
	for range attempts {
		q := rng.IntN(len(g.Corners))
		src := &g.Corners[q]
		if src.Ocean || src.Noise.Elevation < riverMinElevation || src.Noise.Elevation > riverMaxElevation {
			continue
		}
		segments := 0
		// Downslope strictly descends by (elevation, index), so the walk ends.
		for !g.Corners[q].Coast {
			down := g.Corners[q].Downslope
			if down == q {
				break
			}
			ei := g.EdgeBetween(q, down)
			if ei == graph.None {
				break
			}
			e := &g.Edges[ei]
			e.River++
			if river != 0 {
				e.Biome = river
			}
			g.Corners[q].River++
			g.Corners[down].River++
			segments++
			q = down
		}
		if segments > 0 {
			traced++
		}
	}
	return traced
}
