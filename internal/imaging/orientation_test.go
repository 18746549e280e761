package imaging

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

// exifJPEG encodes img as a JPEG carrying a minimal EXIF block with the
// given orientation tag.
func exifJPEG(t *testing.T, img image.Image, orientation uint16) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}

	var tiff bytes.Buffer
	tiff.WriteString("MM")
	binary.Write(&tiff, binary.BigEndian, uint16(42))
	binary.Write(&tiff, binary.BigEndian, uint32(8))
	binary.Write(&tiff, binary.BigEndian, uint16(1))      // one IFD entry
	binary.Write(&tiff, binary.BigEndian, uint16(0x0112)) // Orientation
	binary.Write(&tiff, binary.BigEndian, uint16(3))      // SHORT
	binary.Write(&tiff, binary.BigEndian, uint32(1))
	binary.Write(&tiff, binary.BigEndian, orientation)
	binary.Write(&tiff, binary.BigEndian, uint16(0))
	binary.Write(&tiff, binary.BigEndian, uint32(0)) // no next IFD

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	var app1 bytes.Buffer
	app1.Write([]byte{0xFF, 0xE1})
	binary.Write(&app1, binary.BigEndian, uint16(len(payload)+2))
	app1.Write(payload)

	data := buf.Bytes()
	out := make([]byte, 0, len(data)+app1.Len())
	out = append(out, data[:2]...) // SOI
	out = append(out, app1.Bytes()...)
	out = append(out, data[2:]...)
	return out
}

func TestOrientationFromEXIF(t *testing.T) {
	tests := []struct {
		tag  int
		want Orientation
		deg  float64
	}{
		{1, OrientationNormal, 0},
		{3, OrientationRotate180, 180},
		{6, OrientationRotate90CW, 90},
		{8, OrientationRotate90CCW, 270},
		{2, OrientationUnknown, 0},
		{0, OrientationUnknown, 0},
		{9, OrientationUnknown, 0},
	}

	for _, tt := range tests {
		got := OrientationFromEXIF(tt.tag)
		if got != tt.want {
			t.Errorf("OrientationFromEXIF(%d): got %v, want %v", tt.tag, got, tt.want)
		}
		if d := got.ClockwiseDegrees(); d != tt.deg {
			t.Errorf("%v.ClockwiseDegrees(): got %v, want %v", got, d, tt.deg)
		}
	}
}

func TestReadEXIFOrientation(t *testing.T) {
	img := createInMemoryImage(16, 8, color.RGBA{200, 100, 50, 255})

	for _, tag := range []uint16{1, 3, 6, 8} {
		o, ok := ReadEXIFOrientation(bytes.NewReader(exifJPEG(t, img, tag)))
		if !ok {
			t.Errorf("tag %d: EXIF not found", tag)
			continue
		}
		if want := OrientationFromEXIF(int(tag)); o != want {
			t.Errorf("tag %d: got %v, want %v", tag, o, want)
		}
	}
}

func TestReadEXIFOrientation_NoEXIF(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createInMemoryImage(8, 8, color.White), nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}

	o, ok := ReadEXIFOrientation(&buf)
	if ok || o != OrientationUnknown {
		t.Errorf("got (%v, %v), want (unknown, false)", o, ok)
	}
}

func TestRotateRightAngle(t *testing.T) {
	// Red top-left quadrant of a 40x20 image.
	src := createPatternImage(40, 20)

	tests := []struct {
		deg          float64
		wantW, wantH int
		// where the red quadrant ends up
		redX, redY int
	}{
		{0, 40, 20, 0, 0},
		{90, 20, 40, 15, 0},
		{180, 40, 20, 39, 19},
		{270, 20, 40, 0, 39},
		{-90, 20, 40, 0, 39},
		{450, 20, 40, 15, 0},
	}

	for _, tt := range tests {
		out, ok := RotateRightAngle(src, tt.deg)
		if !ok {
			t.Fatalf("RotateRightAngle(%v) not handled", tt.deg)
		}
		if out.Bounds().Dx() != tt.wantW || out.Bounds().Dy() != tt.wantH {
			t.Errorf("RotateRightAngle(%v): got %dx%d, want %dx%d",
				tt.deg, out.Bounds().Dx(), out.Bounds().Dy(), tt.wantW, tt.wantH)
		}
		if c := out.NRGBAAt(tt.redX, tt.redY); c != (color.NRGBA{255, 0, 0, 255}) {
			t.Errorf("RotateRightAngle(%v): pixel (%d,%d) = %v, want red", tt.deg, tt.redX, tt.redY, c)
		}
	}

	if _, ok := RotateRightAngle(src, 45); ok {
		t.Error("RotateRightAngle(45) should not be handled")
	}
}

func TestCorrectOrientation(t *testing.T) {
	c := NewCanvas(createPatternImage(40, 20), FormatJPEG)
	c.Metadata.Orientation = OrientationRotate90CW

	if err := CorrectOrientation(c); err != nil {
		t.Fatalf("CorrectOrientation failed: %v", err)
	}
	if c.Width() != 20 || c.Height() != 40 {
		t.Errorf("dimensions: got %dx%d, want 20x40", c.Width(), c.Height())
	}
	if c.Metadata.Orientation != OrientationNormal {
		t.Errorf("orientation: got %v, want normal", c.Metadata.Orientation)
	}

	// A second correction is a no-op.
	if err := CorrectOrientation(c); err != nil {
		t.Fatalf("second CorrectOrientation failed: %v", err)
	}
	if c.Width() != 20 || c.Height() != 40 {
		t.Errorf("second correction changed dimensions to %dx%d", c.Width(), c.Height())
	}
}
