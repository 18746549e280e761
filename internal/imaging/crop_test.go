package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestCropRect(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 80)

	tests := []struct {
		name                string
		width, height, x, y int
		want                image.Rectangle
	}{
		{"inside", 50, 40, 10, 10, image.Rect(10, 10, 60, 50)},
		{"full", 100, 80, 0, 0, bounds},
		{"overhang right", 50, 20, 80, 0, image.Rect(80, 0, 100, 20)},
		{"overhang bottom", 20, 50, 0, 60, image.Rect(0, 60, 20, 80)},
		{"larger than image", 500, 500, 0, 0, bounds},
		{"negative offset", 30, 30, -10, -10, image.Rect(0, 0, 20, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CropRect(bounds, tt.width, tt.height, tt.x, tt.y)
			if err != nil {
				t.Fatalf("CropRect failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCropRect_Invalid(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 80)

	tests := []struct {
		name                string
		width, height, x, y int
	}{
		{"zero width", 0, 10, 0, 0},
		{"negative height", 10, -5, 0, 0},
		{"outside right", 10, 10, 100, 0},
		{"outside bottom", 10, 10, 0, 200},
		{"before origin", 10, 10, -20, -20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CropRect(bounds, tt.width, tt.height, tt.x, tt.y)
			if !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("got %v, want ErrInvalidGeometry", err)
			}
		})
	}
}

func TestSquareRect(t *testing.T) {
	tests := []struct {
		width, height int
		want          image.Rectangle
	}{
		{800, 600, image.Rect(100, 0, 700, 600)},
		{600, 800, image.Rect(0, 100, 600, 700)},
		{500, 500, image.Rect(0, 0, 500, 500)},
		{101, 100, image.Rect(0, 0, 100, 100)},
		{1920, 1080, image.Rect(420, 0, 1500, 1080)},
	}

	for _, tt := range tests {
		got := SquareRect(tt.width, tt.height)
		if got != tt.want {
			t.Errorf("SquareRect(%d, %d): got %v, want %v", tt.width, tt.height, got, tt.want)
		}
		if got.Dx() != got.Dy() {
			t.Errorf("SquareRect(%d, %d) is not square: %v", tt.width, tt.height, got)
		}
	}
}

func TestResizeTarget(t *testing.T) {
	tests := []struct {
		name          string
		curW, curH    int
		width, height int
		wantW, wantH  int
	}{
		{"aspect", 1920, 1080, 800, 0, 800, 450},
		{"aspect rounds up", 300, 200, 100, 0, 100, 67},
		{"half pixel rounds up", 100, 75, 50, 0, 50, 38},
		{"explicit height", 1920, 1080, 800, 800, 800, 800},
		{"width clamped", 640, 480, 1000, 0, 640, 480},
		{"width clamped explicit height", 640, 480, 1000, 100, 640, 100},
		{"same size", 640, 480, 640, 0, 640, 480},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := ResizeTarget(tt.curW, tt.curH, tt.width, tt.height)
			if err != nil {
				t.Fatalf("ResizeTarget failed: %v", err)
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestResizeTarget_Invalid(t *testing.T) {
	tests := []struct {
		name             string
		curW, curH, w, h int
	}{
		{"zero width", 100, 100, 0, 0},
		{"negative width", 100, 100, -5, 0},
		{"negative height", 100, 100, 50, -1},
		{"empty image", 0, 0, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ResizeTarget(tt.curW, tt.curH, tt.w, tt.h)
			if !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("got %v, want ErrInvalidGeometry", err)
			}
		})
	}
}

func TestRotatedSize(t *testing.T) {
	tests := []struct {
		width, height int
		deg           float64
		wantW, wantH  int
	}{
		{100, 50, 30, 112, 93},
		{100, 50, -10, 107, 67},
		{100, 50, 0, 100, 50},
		{100, 50, 90, 50, 100},
		{40, 20, 45, 42, 42},
		{100, 40, 210, 107, 85},
	}

	for _, tt := range tests {
		w, h := RotatedSize(tt.width, tt.height, tt.deg)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("RotatedSize(%d, %d, %v): got %dx%d, want %dx%d",
				tt.width, tt.height, tt.deg, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestFitCenter(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	green := color.NRGBA{0, 255, 0, 255}
	src := ToNRGBA(createInMemoryImage(10, 10, red))

	if got := FitCenter(src, 10, 10, green); got != src {
		t.Error("FitCenter copied an image already at the target size")
	}

	padded := FitCenter(src, 12, 12, green)
	if padded.Bounds() != image.Rect(0, 0, 12, 12) {
		t.Fatalf("padded bounds: got %v, want 12x12", padded.Bounds())
	}
	if got := padded.NRGBAAt(0, 0); got != green {
		t.Errorf("padded corner: got %v, want background", got)
	}
	if got := padded.NRGBAAt(6, 6); got != red {
		t.Errorf("padded center: got %v, want red", got)
	}

	cropped := FitCenter(src, 9, 11, green)
	if cropped.Bounds() != image.Rect(0, 0, 9, 11) {
		t.Fatalf("cropped bounds: got %v, want 9x11", cropped.Bounds())
	}
	if got := cropped.NRGBAAt(4, 5); got != red {
		t.Errorf("cropped center: got %v, want red", got)
	}
}
