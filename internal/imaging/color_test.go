package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestParseBackground(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#ff0000", color.NRGBA{255, 0, 0, 255}},
		{"00FF00", color.NRGBA{0, 255, 0, 255}},
		{"#00f", color.NRGBA{0, 0, 255, 255}},
		{"#ffffff", color.NRGBA{255, 255, 255, 255}},
		{"", color.NRGBA{}},
		{"transparent", color.NRGBA{}},
		{"None", color.NRGBA{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBackground(tt.in)
			if err != nil {
				t.Fatalf("ParseBackground failed: %v", err)
			}
			if n := color.NRGBAModel.Convert(got).(color.NRGBA); n != tt.want {
				t.Errorf("got %v, want %v", n, tt.want)
			}
		})
	}
}

func TestParseBackground_Invalid(t *testing.T) {
	for _, in := range []string{"#12", "#gggggg", "red"} {
		if _, err := ParseBackground(in); err == nil {
			t.Errorf("ParseBackground(%q) should fail", in)
		}
	}
}

func TestMultiplyAlpha(t *testing.T) {
	tests := []struct {
		opacity int
		alpha   uint8
		want    uint8
	}{
		{100, 255, 255},
		{150, 200, 200},
		{50, 255, 128},
		{50, 100, 50},
		{25, 200, 50},
		{0, 255, 0},
		{-10, 255, 0},
	}

	for _, tt := range tests {
		img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
		for i := 3; i < len(img.Pix); i += 4 {
			img.Pix[i-3] = 10
			img.Pix[i] = tt.alpha
		}

		MultiplyAlpha(img, tt.opacity)

		for i := 3; i < len(img.Pix); i += 4 {
			if img.Pix[i] != tt.want {
				t.Fatalf("opacity %d alpha %d: got %d, want %d", tt.opacity, tt.alpha, img.Pix[i], tt.want)
			}
			if img.Pix[i-3] != 10 {
				t.Fatalf("opacity %d changed color channels", tt.opacity)
			}
		}
	}
}
