package noise

import (
	"math"
	"testing"
)

func TestFbmDeterministic(t *testing.T) {
	f1 := NewFbm(12345, []float64{1, 2, 2, 1})
	f2 := NewFbm(12345, []float64{1, 2, 2, 1})

	for i := 0; i < 100; i++ {
		x := float64(i) * 0.1
		y := float64(i) * 0.2
		if f1.Eval2(x, y) != f2.Eval2(x, y) {
			t.Fatalf("Eval2 not deterministic at (%f, %f)", x, y)
		}
		if f1.Eval4(x, y, -x, -y) != f2.Eval4(x, y, -x, -y) {
			t.Fatalf("Eval4 not deterministic at (%f, %f)", x, y)
		}
	}
}

func TestFbmRange(t *testing.T) {
	f := NewFbm(42, []float64{-4, 1, 1, 0})

	for i := 0; i < 10000; i++ {
		x := float64(i)*0.37 - 500
		y := float64(i)*0.53 - 500
		v := f.Eval2(x, y)
		if math.IsNaN(v) || v < -1.1 || v > 1.1 {
			t.Fatalf("Eval2(%f, %f) = %f, out of range", x, y, v)
		}
	}
}

func TestDifferentSeedsDifferentNoise(t *testing.T) {
	f1 := NewFbm(1, []float64{1, 1})
	f2 := NewFbm(2, []float64{1, 1})

	different := false
	for i := 0; i < 100; i++ {
		x := float64(i) * 0.1
		y := float64(i) * 0.2
		if f1.Eval2(x, y) != f2.Eval2(x, y) {
			different = true
			break
		}
	}
	if !different {
		t.Error("different seeds should produce different noise")
	}
}

func TestZeroAmplitudesAreSilent(t *testing.T) {
	f := NewFbm(7, []float64{0, 0})
	if v := f.Eval2(3.3, 4.4); v != 0 {
		t.Errorf("Eval2 with zero amplitudes = %f, want 0", v)
	}
}

func TestTorusWraps(t *testing.T) {
	f := NewFbm(99, []float64{1, 2, 2, 1})
	for i := 0; i < 50; i++ {
		x := float64(i) * 0.013
		y := float64(i) * 0.029
		a := Torus(f, x, y)
		b := Torus(f, x+1, y-1)
		if math.Abs(a-b) > 1e-9 {
			t.Fatalf("Torus(%f, %f) = %f but shifted by one period = %f", x, y, a, b)
		}
	}
}

func TestTorusSmoothness(t *testing.T) {
	f := NewFbm(456, []float64{1, 2, 2, 1})

	prev := Torus(f, 0, 0)
	step := 0.0005
	for i := 1; i < 1000; i++ {
		curr := Torus(f, float64(i)*step, 0)
		if diff := math.Abs(curr - prev); diff > 0.1 {
			t.Fatalf("noise changed too rapidly at step %d: diff=%f", i, diff)
		}
		prev = curr
	}
}

func TestMapRange(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-1.5, 0},
		{0, 2.5},
		{1.5, 5},
		{3, 7.5},
	}
	for _, tt := range tests {
		if got := MapRange(-1.5, 1.5, 0, 5, tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("MapRange(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestProviderClimate(t *testing.T) {
	p1 := NewProvider(2024)
	p2 := NewProvider(2024)
	for i := 0; i < 200; i++ {
		x := float64(i)*13.7 - 1000
		z := float64(i)*-7.1 + 300
		e1, t1, m1 := p1.Climate(x, z)
		e2, t2, m2 := p2.Climate(x, z)
		if e1 != e2 || t1 != t2 || m1 != m2 {
			t.Fatalf("Climate(%f, %f) differs between providers", x, z)
		}
		for _, v := range []float64{e1, t1, m1} {
			if math.IsNaN(v) || v < -1 || v > 6 {
				t.Fatalf("Climate(%f, %f) axis = %f, far outside [0, 5]", x, z, v)
			}
		}
	}

	e, tmp, m := p1.Climate(10, 10)
	if e == tmp && tmp == m {
		t.Error("climate axes are identical; seeds are not decorrelated")
	}
}

func TestPerlinDeterministic(t *testing.T) {
	a := NewPerlin(5)
	b := NewPerlin(5)
	for i := 0; i < 100; i++ {
		x, y := float64(i)*0.31, float64(i)*0.17
		if a.Eval2(x, y) != b.Eval2(x, y) {
			t.Fatalf("Perlin Eval2 not deterministic at (%f, %f)", x, y)
		}
	}
}
