package enginetest_test

import (
	"image"
	"testing"

	"github.com/ironsheep/image-transform/internal/engine"
	"github.com/ironsheep/image-transform/internal/engine/bildengine"
	"github.com/ironsheep/image-transform/internal/engine/enginetest"
	"github.com/ironsheep/image-transform/internal/engine/imagingengine"
)

// compareBackends runs op on the same source with both backends and checks
// that the resulting canvases have the same size and that the sampled pixels
// agree within tol.
func compareBackends(t *testing.T, path string, op func(engine.Backend) error, samples []image.Point, tol int) {
	t.Helper()
	run := func(f engine.Factory) engine.Backend {
		t.Helper()
		b, err := f(path, nil)
		if err != nil {
			t.Fatalf("factory failed: %v", err)
		}
		if err := b.StartProcess(); err != nil {
			t.Fatalf("StartProcess failed: %v", err)
		}
		if op != nil {
			if err := op(b); err != nil {
				t.Fatalf("%v: operation failed: %v", b.Kind(), err)
			}
		}
		return b
	}
	a, b := run(bildengine.New), run(imagingengine.New)

	if a.Width() != b.Width() || a.Height() != b.Height() {
		t.Fatalf("dimensions: bild %dx%d, imaging %dx%d", a.Width(), a.Height(), b.Width(), b.Height())
	}
	if samples == nil {
		for y := 0; y < a.Height(); y++ {
			for x := 0; x < a.Width(); x++ {
				samples = append(samples, image.Pt(x, y))
			}
		}
	}
	for _, p := range samples {
		pa, pb := enginetest.Pixel(t, a, p.X, p.Y), enginetest.Pixel(t, b, p.X, p.Y)
		if !enginetest.Near(pa, pb, tol) {
			t.Errorf("pixel %v: bild %v, imaging %v", p, pa, pb)
		}
	}
}

func TestBackendParity_EXIFOrientation(t *testing.T) {
	dir := t.TempDir()
	for tag := uint16(1); tag <= 8; tag++ {
		path := enginetest.WriteEXIFJPEG(t, dir, "in.jpg", enginetest.HalfSplit(20, 10), tag)
		compareBackends(t, path, nil, nil, 2)
	}
}

func TestBackendParity_RightAngleRotation(t *testing.T) {
	path := enginetest.WritePNG(t, t.TempDir(), "in.png", enginetest.Pattern(40, 20))
	for _, deg := range []float64{90, 180, 270, -90} {
		compareBackends(t, path, func(b engine.Backend) error {
			return b.RotateImage(deg)
		}, nil, 0)
	}
}

func TestBackendParity_Rotation(t *testing.T) {
	path := enginetest.WritePNG(t, t.TempDir(), "in.png", enginetest.Solid(100, 50, enginetest.Gray))

	tests := []struct {
		deg  float64
		w, h int
	}{
		{30, 112, 93},
		{-10, 107, 67},
		{45, 106, 106},
		{135, 106, 106},
	}
	for _, tt := range tests {
		// The corners are background and the center is source.
		samples := []image.Point{
			{1, 1}, {tt.w - 2, 1}, {1, tt.h - 2}, {tt.w - 2, tt.h - 2},
			{tt.w / 2, tt.h / 2},
		}
		compareBackends(t, path, func(b engine.Backend) error {
			b.SetBackground(enginetest.Green)
			return b.RotateImage(tt.deg)
		}, samples, 4)
	}
}

func TestBackendParity_Composite(t *testing.T) {
	dir := t.TempDir()
	base := enginetest.WritePNG(t, dir, "base.png", enginetest.Solid(20, 20, enginetest.Red))
	logo := enginetest.WritePNG(t, dir, "logo.png", enginetest.Pattern(10, 10))

	tests := []struct {
		x, y, opacity int
	}{
		{5, 5, 50},
		{15, 15, 100},
		{-4, 2, 30},
	}
	for _, tt := range tests {
		compareBackends(t, base, func(b engine.Backend) error {
			var overlay engine.Backend
			var err error
			if b.Kind() == engine.Bild {
				overlay, err = bildengine.New(logo, nil)
			} else {
				overlay, err = imagingengine.New(logo, nil)
			}
			if err != nil {
				return err
			}
			if err := overlay.StartProcess(); err != nil {
				return err
			}
			return b.CompositeImage(overlay, tt.x, tt.y, tt.opacity)
		}, nil, 3)
	}
}
