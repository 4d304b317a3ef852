package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/OCharnyshevich/worldgen/pkg/world/biome"
	"github.com/OCharnyshevich/worldgen/pkg/world/registry"
)

type halves struct{ left, right registry.ID }

func (h halves) BiomesAt(x, _ int) []biome.Entry {
	switch {
	case x < -4:
		return []biome.Entry{{ID: h.left, Weight: 1}}
	case x > 4:
		return []biome.Entry{{ID: h.right, Weight: 1}}
	}
	return []biome.Entry{{ID: h.left, Weight: 0.5}, {ID: h.right, Weight: 0.5}}
}

func TestRender(t *testing.T) {
	biomes, err := biome.NewRegistry(
		&biome.Definition{Name: registry.Core("red"), Color: 0xff0000},
		&biome.Definition{Name: registry.Core("blue"), Color: 0x0000ff},
	)
	if err != nil {
		t.Fatal(err)
	}
	red, _ := biomes.IDOf(registry.Core("red"))
	blue, _ := biomes.IDOf(registry.Core("blue"))

	img, err := render(context.Background(), halves{red, blue}, biomes, 16, 2)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Fatalf("bounds = %v", b)
	}

	tests := []struct {
		px   int
		want color.RGBA
	}{
		{0, color.RGBA{R: 255, A: 255}},         // x = -16
		{15, color.RGBA{B: 255, A: 255}},        // x = 14
		{8, color.RGBA{R: 128, B: 128, A: 255}}, // x = 0
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.px, 3); got != tt.want {
			t.Errorf("pixel %d = %v, want %v", tt.px, got, tt.want)
		}
	}
}

func TestRenderCanceled(t *testing.T) {
	biomes, err := biome.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := render(ctx, halves{}, biomes, 8, 1); err == nil {
		t.Error("render with a canceled context succeeded")
	}
}

func TestWritePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	path := filepath.Join(t.TempDir(), "map.png")
	if err := writePNG(path, img); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if got.Bounds() != img.Bounds() {
		t.Errorf("bounds = %v, want %v", got.Bounds(), img.Bounds())
	}
	if r, g, b, _ := got.At(2, 1).RGBA(); r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Errorf("pixel = %v", got.At(2, 1))
	}

	if err := writePNG(filepath.Join(t.TempDir(), "missing", "map.png"), img); err == nil {
		t.Error("writePNG into a missing directory succeeded")
	}
}
