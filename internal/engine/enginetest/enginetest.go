// Package enginetest runs the behavior every engine.Backend must share
// against a backend factory, and provides the fixtures those checks use.
package enginetest

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ironsheep/image-transform/internal/engine"
	"github.com/ironsheep/image-transform/internal/imaging"
)

var (
	Red   = color.NRGBA{255, 0, 0, 255}
	Green = color.NRGBA{0, 255, 0, 255}
	Blue  = color.NRGBA{0, 0, 255, 255}
	White = color.NRGBA{255, 255, 255, 255}
	Gray  = color.NRGBA{128, 128, 128, 255}
)

// Solid returns a width x height image filled with c.
func Solid(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// Pattern returns an image with a different color in each quadrant: red
// top-left, green top-right, blue bottom-left, white bottom-right.
func Pattern(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			switch {
			case x < width/2 && y < height/2:
				img.SetNRGBA(x, y, Red)
			case y < height/2:
				img.SetNRGBA(x, y, Green)
			case x < width/2:
				img.SetNRGBA(x, y, Blue)
			default:
				img.SetNRGBA(x, y, White)
			}
		}
	}
	return img
}

// WritePNG encodes img into dir/name and returns the path.
func WritePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return writeFile(t, dir, name, buf.Bytes())
}

// WriteJPEG encodes img into dir/name and returns the path.
func WriteJPEG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	return writeFile(t, dir, name, buf.Bytes())
}

// WriteEXIFJPEG encodes img as a JPEG whose EXIF block carries the given
// orientation tag.
func WriteEXIFJPEG(t *testing.T, dir, name string, img image.Image, orientation uint16) string {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}

	var tiff bytes.Buffer
	tiff.WriteString("MM")
	binary.Write(&tiff, binary.BigEndian, uint16(42))
	binary.Write(&tiff, binary.BigEndian, uint32(8))
	binary.Write(&tiff, binary.BigEndian, uint16(1))
	binary.Write(&tiff, binary.BigEndian, uint16(0x0112))
	binary.Write(&tiff, binary.BigEndian, uint16(3))
	binary.Write(&tiff, binary.BigEndian, uint32(1))
	binary.Write(&tiff, binary.BigEndian, orientation)
	binary.Write(&tiff, binary.BigEndian, uint16(0))
	binary.Write(&tiff, binary.BigEndian, uint32(0))

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	var app1 bytes.Buffer
	app1.Write([]byte{0xFF, 0xE1})
	binary.Write(&app1, binary.BigEndian, uint16(len(payload)+2))
	app1.Write(payload)

	data := buf.Bytes()
	out := append([]byte{}, data[:2]...)
	out = append(out, app1.Bytes()...)
	out = append(out, data[2:]...)
	return writeFile(t, dir, name, out)
}

// WriteAnimatedGIF writes a 3-frame 20x20 GIF: white, then a red patch in
// the top-left 10x10, then a blue patch in the bottom-right 10x10.
func WriteAnimatedGIF(t *testing.T, dir, name string) string {
	t.Helper()
	pal := color.Palette{color.NRGBA{}, Red, Green, Blue, White}
	frame := func(r image.Rectangle, idx uint8) *image.Paletted {
		pm := image.NewPaletted(r, pal)
		for i := range pm.Pix {
			pm.Pix[i] = idx
		}
		return pm
	}
	g := &gif.GIF{
		Image: []*image.Paletted{
			frame(image.Rect(0, 0, 20, 20), 4),
			frame(image.Rect(0, 0, 10, 10), 1),
			frame(image.Rect(10, 10, 20, 20), 3),
		},
		Delay:    []int{10, 20, 30},
		Disposal: []byte{gif.DisposalNone, gif.DisposalNone, gif.DisposalNone},
		Config:   image.Config{ColorModel: pal, Width: 20, Height: 20},
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("failed to encode gif: %v", err)
	}
	return writeFile(t, dir, name, buf.Bytes())
}

// WriteBlinkingGIF writes a 3-frame 10x10 GIF: solid red, then a fully
// transparent frame revealed by clearing the red one, then red again.
func WriteBlinkingGIF(t *testing.T, dir, name string) string {
	t.Helper()
	pal := color.Palette{color.NRGBA{}, Red}
	frame := func(idx uint8) *image.Paletted {
		pm := image.NewPaletted(image.Rect(0, 0, 10, 10), pal)
		for i := range pm.Pix {
			pm.Pix[i] = idx
		}
		return pm
	}
	g := &gif.GIF{
		Image:    []*image.Paletted{frame(1), frame(0), frame(1)},
		Delay:    []int{10, 10, 10},
		Disposal: []byte{gif.DisposalBackground, gif.DisposalNone, gif.DisposalNone},
		Config:   image.Config{ColorModel: pal, Width: 10, Height: 10},
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("failed to encode gif: %v", err)
	}
	return writeFile(t, dir, name, buf.Bytes())
}

// HalfSplit returns a width x height image whose left half is red and right
// half is blue.
func HalfSplit(width, height int) *image.NRGBA {
	img := Solid(width, height, Blue)
	for y := 0; y < height; y++ {
		for x := 0; x < width/2; x++ {
			img.SetNRGBA(x, y, Red)
		}
	}
	return img
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// Near reports whether every channel of a and b differs by at most tol.
func Near(a, b color.NRGBA, tol int) bool {
	d := func(x, y uint8) bool {
		v := int(x) - int(y)
		return v <= tol && v >= -tol
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

// Pixel returns the pixel at (x, y) of the first frame of b.
func Pixel(t *testing.T, b engine.Backend, x, y int) color.NRGBA {
	t.Helper()
	c := b.Canvas()
	if !c.Valid() {
		t.Fatal("backend has no decoded image")
	}
	return c.Frames[0].Image.NRGBAAt(x, y)
}

// Run checks the shared Backend contract against backends built by f.
func Run(t *testing.T, f engine.Factory) {
	open := func(t *testing.T, path string) engine.Backend {
		t.Helper()
		b, err := f(path, nil)
		if err != nil {
			t.Fatalf("factory failed: %v", err)
		}
		return b
	}
	start := func(t *testing.T, path string) engine.Backend {
		t.Helper()
		b := open(t, path)
		if err := b.StartProcess(); err != nil {
			t.Fatalf("StartProcess failed: %v", err)
		}
		return b
	}

	t.Run("StartProcess", func(t *testing.T) {
		b := start(t, WritePNG(t, t.TempDir(), "in.png", Pattern(80, 60)))
		if b.Width() != 80 || b.Height() != 60 {
			t.Errorf("dimensions: got %dx%d, want 80x60", b.Width(), b.Height())
		}
		before := b.Canvas()
		if err := b.StartProcess(); err != nil {
			t.Fatalf("second StartProcess failed: %v", err)
		}
		if b.Canvas() != before {
			t.Error("second StartProcess decoded the source again")
		}
	})

	t.Run("NotStarted", func(t *testing.T) {
		b := open(t, WritePNG(t, t.TempDir(), "in.png", Pattern(8, 8)))
		if b.Width() != 0 || b.Height() != 0 {
			t.Errorf("dimensions before decode: got %dx%d, want 0x0", b.Width(), b.Height())
		}
		if err := b.ResizeImage(4, 0); !errors.Is(err, imaging.ErrNotStarted) {
			t.Errorf("ResizeImage: got %v, want ErrNotStarted", err)
		}
		if err := b.WriteImage(filepath.Join(t.TempDir(), "out.png")); !errors.Is(err, imaging.ErrNotStarted) {
			t.Errorf("WriteImage: got %v, want ErrNotStarted", err)
		}
	})

	t.Run("AllowList", func(t *testing.T) {
		path := WritePNG(t, t.TempDir(), "in.png", Pattern(8, 8))
		b := open(t, path)
		b.SetAllowType("jpeg")
		if err := b.CheckFileType(path); !errors.Is(err, imaging.ErrUnsupportedFormat) {
			t.Errorf("CheckFileType: got %v, want ErrUnsupportedFormat", err)
		}
		if err := b.StartProcess(); !errors.Is(err, imaging.ErrUnsupportedFormat) {
			t.Errorf("StartProcess: got %v, want ErrUnsupportedFormat", err)
		}
		b.SetAllowType("image/jpeg", "image/png")
		if err := b.StartProcess(); err != nil {
			t.Errorf("StartProcess after widening allow-list: %v", err)
		}
	})

	t.Run("RejectsVector", func(t *testing.T) {
		svg := `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`
		path := writeFile(t, t.TempDir(), "logo.svg", []byte(svg))
		b := open(t, path)
		b.SetAllowType("svg+xml", "png")
		if err := b.StartProcess(); !errors.Is(err, imaging.ErrUnsupportedFormat) {
			t.Errorf("StartProcess: got %v, want ErrUnsupportedFormat", err)
		}
	})

	t.Run("Crop", func(t *testing.T) {
		b := start(t, WritePNG(t, t.TempDir(), "in.png", Pattern(80, 60)))
		if err := b.CropImage(30, 20, 45, 35); err != nil {
			t.Fatalf("CropImage failed: %v", err)
		}
		if b.Width() != 30 || b.Height() != 20 {
			t.Errorf("dimensions: got %dx%d, want 30x20", b.Width(), b.Height())
		}
		if got := Pixel(t, b, 5, 5); got != White {
			t.Errorf("cropped pixel: got %v, want white", got)
		}
	})

	t.Run("CropClipped", func(t *testing.T) {
		b := start(t, WritePNG(t, t.TempDir(), "in.png", Pattern(80, 60)))
		if err := b.CropImage(50, 50, 60, 40); err != nil {
			t.Fatalf("CropImage failed: %v", err)
		}
		if b.Width() != 20 || b.Height() != 20 {
			t.Errorf("dimensions: got %dx%d, want 20x20", b.Width(), b.Height())
		}
	})

	t.Run("CropInvalid", func(t *testing.T) {
		b := start(t, WritePNG(t, t.TempDir(), "in.png", Pattern(80, 60)))
		if err := b.CropImage(10, 10, 200, 200); !errors.Is(err, imaging.ErrInvalidGeometry) {
			t.Errorf("got %v, want ErrInvalidGeometry", err)
		}
		if b.Width() != 80 || b.Height() != 60 {
			t.Errorf("failed crop changed dimensions to %dx%d", b.Width(), b.Height())
		}
	})

	t.Run("CropSquare", func(t *testing.T) {
		b := start(t, WritePNG(t, t.TempDir(), "in.png", Pattern(80, 60)))
		if err := b.CropSquare(60); err != nil {
			t.Fatalf("CropSquare failed: %v", err)
		}
		if b.Width() != 60 || b.Height() != 60 {
			t.Errorf("dimensions: got %dx%d, want 60x60", b.Width(), b.Height())
		}
		// The square spans x 10..70, so the left half is still red on top.
		if got := Pixel(t, b, 5, 5); !Near(got, Red, 8) {
			t.Errorf("top-left pixel: got %v, want red", got)
		}
		if got := Pixel(t, b, 55, 55); !Near(got, White, 8) {
			t.Errorf("bottom-right pixel: got %v, want white", got)
		}

		if err := b.CropSquare(0); !errors.Is(err, imaging.ErrInvalidGeometry) {
			t.Errorf("CropSquare(0): got %v, want ErrInvalidGeometry", err)
		}
	})

	t.Run("CropSquareResamples", func(t *testing.T) {
		b := start(t, WritePNG(t, t.TempDir(), "in.png", Solid(60, 80, Gray)))
		if err := b.CropSquare(25); err != nil {
			t.Fatalf("CropSquare failed: %v", err)
		}
		if b.Width() != 25 || b.Height() != 25 {
			t.Errorf("dimensions: got %dx%d, want 25x25", b.Width(), b.Height())
		}
	})

	t.Run("Resize", func(t *testing.T) {
		b := start(t, WritePNG(t, t.TempDir(), "in.png", Solid(192, 108, Gray)))
		if err := b.ResizeImage(80, 0); err != nil {
			t.Fatalf("ResizeImage failed: %v", err)
		}
		if b.Width() != 80 || b.Height() != 45 {
			t.Errorf("dimensions: got %dx%d, want 80x45", b.Width(), b.Height())
		}
		if got := Pixel(t, b, 40, 20); !Near(got, Gray, 2) {
			t.Errorf("resized pixel: got %v, want gray", got)
		}
	})

	t.Run("ResizeClampsWidth", func(t *testing.T) {
		b := start(t, WritePNG(t, t.TempDir(), "in.png", Solid(64, 48, Gray)))
		if err := b.ResizeImage(1000, 0); err != nil {
			t.Fatalf("ResizeImage failed: %v", err)
		}
		if b.Width() != 64 || b.Height() != 48 {
			t.Errorf("dimensions: got %dx%d, want 64x48", b.Width(), b.Height())
		}
		if err := b.ResizeImage(32, 10); err != nil {
			t.Fatalf("ResizeImage failed: %v", err)
		}
		if b.Width() != 32 || b.Height() != 10 {
			t.Errorf("dimensions: got %dx%d, want 32x10", b.Width(), b.Height())
		}
		if err := b.ResizeImage(0, 0); !errors.Is(err, imaging.ErrInvalidGeometry) {
			t.Errorf("ResizeImage(0, 0): got %v, want ErrInvalidGeometry", err)
		}
	})

	t.Run("RotateRightAngle", func(t *testing.T) {
		b := start(t, WritePNG(t, t.TempDir(), "in.png", Pattern(40, 20)))
		if err := b.RotateImage(90); err != nil {
			t.Fatalf("RotateImage failed: %v", err)
		}
		if b.Width() != 20 || b.Height() != 40 {
			t.Fatalf("dimensions: got %dx%d, want 20x40", b.Width(), b.Height())
		}
		// Clockwise: the red top-left quadrant moves to the top-right.
		if got := Pixel(t, b, 15, 5); got != Red {
			t.Errorf("top-right pixel: got %v, want red", got)
		}
		if got := Pixel(t, b, 5, 5); got != Blue {
			t.Errorf("top-left pixel: got %v, want blue", got)
		}
	})

	t.Run("RotateClockwise", func(t *testing.T) {
		// A horizontal white bar on a transparent 100x40 canvas.
		src := image.NewNRGBA(image.Rect(0, 0, 100, 40))
		for y := 15; y < 25; y++ {
			for x := 0; x < 100; x++ {
				src.SetNRGBA(x, y, White)
			}
		}
		b := start(t, WritePNG(t, t.TempDir(), "in.png", src))
		if err := b.RotateImage(30); err != nil {
			t.Fatalf("RotateImage failed: %v", err)
		}
		if b.Width() <= 100 || b.Height() <= 40 {
			t.Fatalf("bounds did not grow: %dx%d", b.Width(), b.Height())
		}

		// Rotated clockwise, the bar runs from the top-left to the
		// bottom-right corner.
		img := b.Canvas().Frames[0].Image
		w, h := img.Bounds().Dx(), img.Bounds().Dy()
		alpha := func(x0, y0, x1, y1 int) int {
			sum := 0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					sum += int(img.NRGBAAt(x, y).A)
				}
			}
			return sum
		}
		topLeft := alpha(0, 0, w/3, h/3)
		topRight := alpha(w-w/3, 0, w, h/3)
		bottomRight := alpha(w-w/3, h-h/3, w, h)
		if topLeft <= 4*topRight || bottomRight <= 4*topRight {
			t.Errorf("bar is not rotated clockwise: top-left %d, top-right %d, bottom-right %d",
				topLeft, topRight, bottomRight)
		}
	})

	t.Run("RotateBackground", func(t *testing.T) {
		b := start(t, WritePNG(t, t.TempDir(), "in.png", Solid(40, 20, Gray)))
		b.SetBackground(Green)
		if err := b.RotateImage(45); err != nil {
			t.Fatalf("RotateImage failed: %v", err)
		}
		if got := Pixel(t, b, 0, 0); !Near(got, Green, 2) {
			t.Errorf("corner pixel: got %v, want background green", got)
		}
		c := Pixel(t, b, b.Width()/2, b.Height()/2)
		if !Near(c, Gray, 4) {
			t.Errorf("center pixel: got %v, want gray", c)
		}
	})

	t.Run("Sharpen", func(t *testing.T) {
		b := start(t, WritePNG(t, t.TempDir(), "in.png", Solid(16, 16, Gray)))
		if err := b.SharpenImage(50); err != nil {
			t.Fatalf("SharpenImage failed: %v", err)
		}
		// The kernel sums to 1, so flat areas keep their value.
		if got := Pixel(t, b, 8, 8); !Near(got, Gray, 2) {
			t.Errorf("center pixel: got %v, want %v", got, Gray)
		}
		if b.Width() != 16 || b.Height() != 16 {
			t.Errorf("dimensions: got %dx%d, want 16x16", b.Width(), b.Height())
		}
	})

	t.Run("SharpenEdges", func(t *testing.T) {
		src := Solid(16, 16, color.NRGBA{100, 100, 100, 255})
		for y := 0; y < 16; y++ {
			for x := 8; x < 16; x++ {
				src.SetNRGBA(x, y, color.NRGBA{160, 160, 160, 255})
			}
		}
		b := start(t, WritePNG(t, t.TempDir(), "in.png", src))
		if err := b.SharpenImage(100); err != nil {
			t.Fatalf("SharpenImage failed: %v", err)
		}
		// Contrast across the edge increases.
		dark, light := Pixel(t, b, 7, 8), Pixel(t, b, 8, 8)
		if dark.R >= 100 || light.R <= 160 {
			t.Errorf("edge not sharpened: dark %v, light %v", dark, light)
		}
	})

	t.Run("SharpenDegenerate", func(t *testing.T) {
		b := start(t, WritePNG(t, t.TempDir(), "in.png", Solid(8, 8, Gray)))
		if err := b.SharpenImage(105.26); !errors.Is(err, imaging.ErrDegenerateKernel) {
			t.Errorf("got %v, want ErrDegenerateKernel", err)
		}
	})

	t.Run("Composite", func(t *testing.T) {
		dir := t.TempDir()
		base := start(t, WritePNG(t, dir, "base.png", Solid(20, 20, Red)))
		overlay := start(t, WritePNG(t, dir, "overlay.png", Solid(10, 10, Blue)))

		if err := base.CompositeImage(overlay, 5, 5, 50); err != nil {
			t.Fatalf("CompositeImage failed: %v", err)
		}
		if got := Pixel(t, base, 10, 10); !Near(got, color.NRGBA{127, 0, 128, 255}, 3) {
			t.Errorf("blended pixel: got %v, want about (127,0,128)", got)
		}
		if got := Pixel(t, base, 2, 2); got != Red {
			t.Errorf("pixel outside overlay: got %v, want red", got)
		}
		// The overlay's alpha was scaled in place.
		if got := Pixel(t, overlay, 0, 0); !Near(got, color.NRGBA{0, 0, 255, 128}, 1) {
			t.Errorf("overlay pixel after composite: got %v, want alpha 128", got)
		}
	})

	t.Run("CompositeOpaque", func(t *testing.T) {
		dir := t.TempDir()
		base := start(t, WritePNG(t, dir, "base.png", Solid(20, 20, Red)))
		overlay := start(t, WritePNG(t, dir, "overlay.png", Solid(10, 10, Blue)))

		if err := base.CompositeImage(overlay, 15, 15, 100); err != nil {
			t.Fatalf("CompositeImage failed: %v", err)
		}
		if got := Pixel(t, base, 17, 17); got != Blue {
			t.Errorf("covered pixel: got %v, want blue", got)
		}
		if base.Width() != 20 || base.Height() != 20 {
			t.Errorf("dimensions: got %dx%d, want 20x20", base.Width(), base.Height())
		}
	})

	t.Run("CompositeInvalidOverlay", func(t *testing.T) {
		dir := t.TempDir()
		base := start(t, WritePNG(t, dir, "base.png", Solid(20, 20, Red)))
		notStarted := open(t, WritePNG(t, dir, "overlay.png", Solid(4, 4, Blue)))

		if err := base.CompositeImage(notStarted, 0, 0, 100); !errors.Is(err, imaging.ErrInvalidOverlay) {
			t.Errorf("not started overlay: got %v, want ErrInvalidOverlay", err)
		}
		if err := base.CompositeImage(nil, 0, 0, 100); !errors.Is(err, imaging.ErrInvalidOverlay) {
			t.Errorf("nil overlay: got %v, want ErrInvalidOverlay", err)
		}
		if got := Pixel(t, base, 0, 0); got != Red {
			t.Errorf("failed composite changed pixels: got %v", got)
		}
	})

	t.Run("WriteFormats", func(t *testing.T) {
		dir := t.TempDir()
		b := start(t, WritePNG(t, dir, "in.png", Pattern(40, 30)))

		tests := []struct {
			name string
			mime string
		}{
			{"out.png", "image/png"},
			{"out.jpg", "image/jpeg"},
			{"out.jpeg", "image/jpeg"},
			{"out.gif", "image/gif"},
			{"out.bmp", "image/bmp"},
			{"out.tiff", "image/jpeg"},
		}
		for _, tt := range tests {
			dest := filepath.Join(dir, tt.name)
			if err := b.WriteImage(dest); err != nil {
				t.Errorf("WriteImage(%s) failed: %v", tt.name, err)
				continue
			}
			mt, err := mimetype.DetectFile(dest)
			if err != nil {
				t.Errorf("detect %s: %v", tt.name, err)
				continue
			}
			if !mt.Is(tt.mime) {
				t.Errorf("%s written as %s, want %s", tt.name, mt.String(), tt.mime)
			}
			info, err := imaging.Probe(dest)
			if err != nil {
				t.Errorf("probe %s: %v", tt.name, err)
				continue
			}
			if info.Width != 40 || info.Height != 30 {
				t.Errorf("%s dimensions: got %dx%d, want 40x30", tt.name, info.Width, info.Height)
			}
		}
	})

	t.Run("WritePNGLossless", func(t *testing.T) {
		dir := t.TempDir()
		src := Pattern(24, 24)
		b := start(t, WritePNG(t, dir, "in.png", src))
		dest := filepath.Join(dir, "out.png")
		if err := b.WriteImage(dest); err != nil {
			t.Fatalf("WriteImage failed: %v", err)
		}

		again := start(t, dest)
		if !bytes.Equal(again.Canvas().Frames[0].Image.Pix, src.Pix) {
			t.Error("PNG round trip changed pixels")
		}
	})

	t.Run("WriteFailure", func(t *testing.T) {
		b := start(t, WritePNG(t, t.TempDir(), "in.png", Pattern(8, 8)))
		err := b.WriteImage(filepath.Join(t.TempDir(), "missing", "out.png"))
		if !errors.Is(err, imaging.ErrIO) {
			t.Errorf("got %v, want ErrIO", err)
		}
		if b.CreatedPath(true) != "" {
			t.Errorf("CreatedPath after failed write: got %q, want empty", b.CreatedPath(true))
		}
	})

	t.Run("CreatedPath", func(t *testing.T) {
		dir := t.TempDir()
		b := start(t, WritePNG(t, dir, "in.png", Pattern(8, 8)))
		if b.CreatedPath(true) != "" {
			t.Errorf("CreatedPath before write: got %q", b.CreatedPath(true))
		}

		dest := filepath.Join(dir, "out.png")
		if err := b.WriteImage(dest); err != nil {
			t.Fatalf("WriteImage failed: %v", err)
		}
		if got := b.CreatedPath(false); got != dest {
			t.Errorf("CreatedPath(false) without root: got %q, want %q", got, dest)
		}

		b.SetRootPath(dir)
		if got := b.CreatedPath(true); got != dest {
			t.Errorf("CreatedPath(true): got %q, want %q", got, dest)
		}
		if got, want := b.CreatedPath(false), dest[len(dir):]; got != want {
			t.Errorf("CreatedPath(false): got %q, want %q", got, want)
		}
	})

	t.Run("AnimatedGIF", func(t *testing.T) {
		dir := t.TempDir()
		b := start(t, WriteAnimatedGIF(t, dir, "in.gif"))
		c := b.Canvas()
		if !c.Animated || len(c.Frames) != 3 {
			t.Fatalf("got animated=%v with %d frames, want 3 animated frames", c.Animated, len(c.Frames))
		}

		if err := b.ResizeImage(10, 0); err != nil {
			t.Fatalf("ResizeImage failed: %v", err)
		}
		for i, f := range b.Canvas().Frames {
			if f.Image.Bounds().Dx() != 10 || f.Image.Bounds().Dy() != 10 {
				t.Errorf("frame %d: got %v, want 10x10", i, f.Image.Bounds())
			}
		}

		dest := filepath.Join(dir, "out.gif")
		if err := b.WriteImage(dest); err != nil {
			t.Fatalf("WriteImage failed: %v", err)
		}
		fh, err := os.Open(dest)
		if err != nil {
			t.Fatalf("open output: %v", err)
		}
		defer fh.Close()
		g, err := gif.DecodeAll(fh)
		if err != nil {
			t.Fatalf("decode output: %v", err)
		}
		if len(g.Image) != 3 {
			t.Errorf("output frames: got %d, want 3", len(g.Image))
		}
		if g.Config.Width != 10 || g.Config.Height != 10 {
			t.Errorf("output screen: got %dx%d, want 10x10", g.Config.Width, g.Config.Height)
		}
		if g.Delay[2] != 30 {
			t.Errorf("frame 2 delay: got %d, want 30", g.Delay[2])
		}
	})

	t.Run("AnimatedGIFClears", func(t *testing.T) {
		dir := t.TempDir()
		b := start(t, WriteBlinkingGIF(t, dir, "in.gif"))
		if got := b.Canvas().Frames[1].Image.NRGBAAt(5, 5); got.A != 0 {
			t.Fatalf("decoded frame 1: got %v, want transparent", got)
		}

		dest := filepath.Join(dir, "out.gif")
		if err := b.WriteImage(dest); err != nil {
			t.Fatalf("WriteImage failed: %v", err)
		}
		fh, err := os.Open(dest)
		if err != nil {
			t.Fatalf("open output: %v", err)
		}
		defer fh.Close()
		out, err := imaging.DecodeGIF(fh)
		if err != nil {
			t.Fatalf("decode output: %v", err)
		}
		if len(out.Frames) != 3 {
			t.Fatalf("output frames: got %d, want 3", len(out.Frames))
		}
		want := []color.NRGBA{Red, {}, Red}
		for i, w := range want {
			if got := out.Frames[i].Image.NRGBAAt(5, 5); got != w {
				t.Errorf("frame %d pixel: got %v, want %v", i, got, w)
			}
		}
	})

	t.Run("EXIFMirroredTags", func(t *testing.T) {
		dir := t.TempDir()
		for _, tag := range []uint16{2, 4, 5, 7} {
			b := start(t, WriteEXIFJPEG(t, dir, "in.jpg", HalfSplit(20, 10), tag))
			if b.Width() != 20 || b.Height() != 10 {
				t.Errorf("tag %d: got %dx%d, want the stored 20x10", tag, b.Width(), b.Height())
				continue
			}
			if left := Pixel(t, b, 2, 5); left.R < 200 || left.B > 60 {
				t.Errorf("tag %d: left pixel got %v, want red", tag, left)
			}
		}
	})

	t.Run("RotateBounds", func(t *testing.T) {
		tests := []struct {
			deg          float64
			wantW, wantH int
		}{
			{30, 112, 93},
			{-10, 107, 67},
			{45, 106, 106},
		}
		for _, tt := range tests {
			b := start(t, WritePNG(t, t.TempDir(), "in.png", Solid(100, 50, Gray)))
			if err := b.RotateImage(tt.deg); err != nil {
				t.Fatalf("RotateImage(%v) failed: %v", tt.deg, err)
			}
			if b.Width() != tt.wantW || b.Height() != tt.wantH {
				t.Errorf("RotateImage(%v): got %dx%d, want %dx%d", tt.deg, b.Width(), b.Height(), tt.wantW, tt.wantH)
			}
		}
	})

	t.Run("EXIFOrientation", func(t *testing.T) {
		// Stored landscape with the red half on the left, tagged as needing
		// a 90 degree clockwise turn.
		src := Solid(40, 20, Blue)
		for y := 0; y < 20; y++ {
			for x := 0; x < 20; x++ {
				src.SetNRGBA(x, y, Red)
			}
		}
		b := start(t, WriteEXIFJPEG(t, t.TempDir(), "in.jpg", src, 6))
		if b.Width() != 20 || b.Height() != 40 {
			t.Fatalf("dimensions: got %dx%d, want 20x40", b.Width(), b.Height())
		}
		top, bottom := Pixel(t, b, 10, 5), Pixel(t, b, 10, 35)
		if top.R < 200 || top.B > 60 {
			t.Errorf("top pixel: got %v, want red", top)
		}
		if bottom.B < 200 || bottom.R > 60 {
			t.Errorf("bottom pixel: got %v, want blue", bottom)
		}
	})

	t.Run("Strip", func(t *testing.T) {
		b := open(t, WritePNG(t, t.TempDir(), "in.png", Pattern(8, 8)))
		if err := b.StripImage(); err != nil {
			t.Errorf("StripImage before decode: %v", err)
		}
		if err := b.StartProcess(); err != nil {
			t.Fatalf("StartProcess failed: %v", err)
		}
		if err := b.StripImage(); err != nil {
			t.Errorf("StripImage: %v", err)
		}
		if b.Width() != 8 {
			t.Errorf("StripImage changed the image")
		}
	})

	t.Run("Destroy", func(t *testing.T) {
		b := start(t, WritePNG(t, t.TempDir(), "in.png", Pattern(8, 8)))
		if err := b.DestroyImage(); err != nil {
			t.Fatalf("DestroyImage failed: %v", err)
		}
		if b.Canvas() != nil {
			t.Error("Canvas after DestroyImage is not nil")
		}
		if b.Width() != 0 {
			t.Errorf("Width after DestroyImage: got %d, want 0", b.Width())
		}
		if err := b.DestroyImage(); !errors.Is(err, imaging.ErrDestroyed) {
			t.Errorf("second DestroyImage: got %v, want ErrDestroyed", err)
		}
		if err := b.RotateImage(90); !errors.Is(err, imaging.ErrDestroyed) {
			t.Errorf("RotateImage after destroy: got %v, want ErrDestroyed", err)
		}
		if err := b.StartProcess(); !errors.Is(err, imaging.ErrDestroyed) {
			t.Errorf("StartProcess after destroy: got %v, want ErrDestroyed", err)
		}
	})

	t.Run("Quality", func(t *testing.T) {
		dir := t.TempDir()
		noise := image.NewNRGBA(image.Rect(0, 0, 64, 64))
		for y := 0; y < 64; y++ {
			for x := 0; x < 64; x++ {
				v := uint8(x*37 + y*91 + x*y*13)
				noise.SetNRGBA(x, y, color.NRGBA{v, v ^ 0x5a, 255 - v, 255})
			}
		}
		b := start(t, WritePNG(t, dir, "in.png", noise))

		sizes := make(map[int]int64)
		for _, q := range []int{10, 95} {
			b.SetCompressionQuality(q)
			dest := filepath.Join(dir, "q.jpg")
			if err := b.WriteImage(dest); err != nil {
				t.Fatalf("WriteImage failed: %v", err)
			}
			st, err := os.Stat(dest)
			if err != nil {
				t.Fatalf("stat: %v", err)
			}
			sizes[q] = st.Size()
		}
		if sizes[10] >= sizes[95] {
			t.Errorf("quality 10 (%d bytes) not smaller than quality 95 (%d bytes)", sizes[10], sizes[95])
		}
	})
}
