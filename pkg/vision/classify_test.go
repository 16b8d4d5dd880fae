package vision

import (
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func assertBinary(t *testing.T, name string, m *Mask, w, h int) {
	t.Helper()
	if m.Width != w || m.Height != h || len(m.Pix) != w*h {
		t.Fatalf("%s: expected %dx%d mask, got %dx%d (%d pix)", name, w, h, m.Width, m.Height, len(m.Pix))
	}
	for i, v := range m.Pix {
		if v > 1 {
			t.Fatalf("%s: pixel %d has value %d, expected 0 or 1", name, i, v)
		}
	}
}

func TestNavigableMask_StrictThreshold(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want uint8
	}{
		{"bright ground", color.RGBA{200, 190, 180, 255}, 1},
		{"exactly at threshold", color.RGBA{170, 170, 170, 255}, 0},
		{"one channel at threshold", color.RGBA{171, 171, 170, 255}, 0},
		{"just above", color.RGBA{171, 171, 171, 255}, 1},
		{"dark rock", color.RGBA{90, 70, 60, 255}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NavigableMask(solid(4, 3, tt.c), DefaultNavigable)
			assertBinary(t, "navigable", m, 4, 3)
			if m.At(2, 1) != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, m.At(2, 1))
			}
		})
	}
}

func TestObstacleMask_IsComplement(t *testing.T) {
	img := solid(10, 6, color.RGBA{0, 0, 0, 255})
	for x := 0; x < 5; x++ {
		img.SetRGBA(x, 2, color.RGBA{220, 220, 220, 255})
	}

	nav := NavigableMask(img, DefaultNavigable)
	obs := ObstacleMask(nav)
	assertBinary(t, "obstacle", obs, 10, 6)

	for i := range nav.Pix {
		if nav.Pix[i]+obs.Pix[i] != 1 {
			t.Fatalf("pixel %d: navigable=%d obstacle=%d, expected exactly one set", i, nav.Pix[i], obs.Pix[i])
		}
	}
	if obs.Count() != 60-5 {
		t.Errorf("Expected 55 obstacle pixels, got %d", obs.Count())
	}
}

func TestSampleMask_InclusiveBounds(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want uint8
	}{
		{"sample gold", color.RGBA{180, 150, 20, 255}, 1},
		{"low corner", color.RGBA{120, 100, 0, 255}, 1},
		{"high corner", color.RGBA{233, 210, 58, 255}, 1},
		{"blue too high", color.RGBA{180, 150, 59, 255}, 0},
		{"red too low", color.RGBA{119, 150, 20, 255}, 0},
		{"ground", color.RGBA{200, 190, 180, 255}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := SampleMask(solid(3, 3, tt.c), DefaultSampleLow, DefaultSampleHigh)
			assertBinary(t, "sample", m, 3, 3)
			if m.At(1, 1) != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, m.At(1, 1))
			}
		})
	}
}

func TestSelectPixels_SubImage(t *testing.T) {
	img := solid(8, 8, color.RGBA{0, 0, 0, 255})
	img.SetRGBA(5, 5, color.RGBA{255, 255, 255, 255})

	sub := img.SubImage(image.Rect(4, 4, 8, 8)).(*image.RGBA)
	m := NavigableMask(sub, DefaultNavigable)
	assertBinary(t, "sub", m, 4, 4)
	if m.At(1, 1) != 1 || m.Count() != 1 {
		t.Errorf("Expected single pixel at (1,1), got count %d", m.Count())
	}
}

func TestRoverCoords(t *testing.T) {
	m := NewMask(320, 160)
	m.Set(160, 159) // bottom center
	m.Set(0, 0)     // top left
	m.Set(319, 100)

	xs, ys := RoverCoords(m)
	if len(xs) != 3 || len(ys) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(xs))
	}

	// Row-major order: (0,0), (319,100), (160,159)
	want := [][2]float64{{160, 160}, {60, -159}, {1, 0}}
	for i, w := range want {
		if xs[i] != w[0] || ys[i] != w[1] {
			t.Errorf("point %d: expected (%v, %v), got (%v, %v)", i, w[0], w[1], xs[i], ys[i])
		}
	}
}

func TestRoverCoords_Empty(t *testing.T) {
	xs, ys := RoverCoords(NewMask(10, 10))
	if len(xs) != 0 || len(ys) != 0 {
		t.Errorf("Expected no points, got %d", len(xs))
	}
}

func TestVisionImage(t *testing.T) {
	nav := NewMask(2, 1)
	nav.Set(0, 0)
	obs := nav.Not()
	sample := NewMask(2, 1)
	sample.Set(1, 0)

	img := VisionImage(obs, sample, nav)
	if got := img.RGBAAt(0, 0); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("Expected navigable blue, got %v", got)
	}
	if got := img.RGBAAt(1, 0); got != (color.RGBA{255, 255, 0, 255}) {
		t.Errorf("Expected obstacle+sample yellow, got %v", got)
	}
}

func TestDestination(t *testing.T) {
	dst := Destination(320, 160, 5, 6)
	want := [4]Point{{155, 154}, {165, 154}, {165, 144}, {155, 144}}
	if dst != want {
		t.Errorf("Expected %v, got %v", want, dst)
	}
}

func TestDegenerate(t *testing.T) {
	if degenerate(DefaultSource) {
		t.Error("Default source should not be degenerate")
	}
	line := [4]Point{{0, 0}, {1, 1}, {2, 2}, {3, 0}}
	if !degenerate(line) {
		t.Error("Collinear points should be degenerate")
	}
}
