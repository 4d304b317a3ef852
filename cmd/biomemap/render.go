package main

import (
	"context"
	"image"
	"image/color"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/worldgen/pkg/world/biome"
	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

// columnSource is the part of the world the renderer reads.
type columnSource interface {
	BiomesAt(x, z int) []biome.Entry
}

// render draws a size x size pixel map centered on the origin, one pixel
// per step blocks. Each pixel mixes the biome colors by their weights.
func render(ctx context.Context, src columnSource, biomes *biome.Registry, size, step int) (*image.RGBA, error) {
	colors := make(map[registry.ID]uint32, biomes.Len())
	biomes.Each(func(id registry.ID, d *biome.Definition) { colors[id] = d.Color })

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	half := size * step / 2

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for py := 0; py < size; py++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			z := py*step - half
			for px := 0; px < size; px++ {
				img.SetRGBA(px, py, mix(src.BiomesAt(px*step-half, z), colors))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return img, nil
}

func mix(entries []biome.Entry, colors map[registry.ID]uint32) color.RGBA {
	var r, g, b float64
	for _, e := range entries {
		c := colors[e.ID]
		r += float64(c>>16&0xff) * e.Weight
		g += float64(c>>8&0xff) * e.Weight
		b += float64(c&0xff) * e.Weight
	}
	return color.RGBA{R: clamp8(r), G: clamp8(g), B: clamp8(b), A: 0xff}
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
