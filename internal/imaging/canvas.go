package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Frame is one fully specified raster of a canvas.
//
// Frames of a coalesced animation are complete images: each one already
// contains everything the previous frames left on screen.
type Frame struct {
	// Image is the frame's pixels, always 8-bit non-premultiplied RGBA with
	// bounds starting at (0,0).
	Image *image.NRGBA

	// Delay is the display time in 100ths of a second (GIF only).
	Delay int

	// Disposal is the GIF disposal method the frame was decoded with.
	Disposal byte

	// Palette is the source palette, reused when re-encoding to GIF.
	Palette color.Palette
}

// Metadata is the subset of embedded metadata a canvas keeps track of.
type Metadata struct {
	// Orientation is the current orientation state of the pixels.
	Orientation Orientation

	// EXIF reports whether the source carried an EXIF block.
	EXIF bool
}

// Canvas is the in-memory decoded image owned by one backend.
//
// A static image is a canvas with a single frame. An animated GIF is
// coalesced on decode so every transform can run on each frame the same way.
type Canvas struct {
	Frames    []Frame
	LoopCount int
	Format    Format
	Animated  bool
	Metadata  Metadata
}

// NewCanvas wraps a single decoded image into a canvas, converting it to NRGBA.
func NewCanvas(img image.Image, format Format) *Canvas {
	return &Canvas{
		Frames: []Frame{{Image: ToNRGBA(img)}},
		Format: format,
		Metadata: Metadata{
			Orientation: OrientationNormal,
		},
	}
}

// ToNRGBA returns img as an *image.NRGBA with bounds starting at (0,0).
// Images already in that shape are returned as is.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}

// Width returns the width of the first frame.
func (c *Canvas) Width() int {
	if c == nil || len(c.Frames) == 0 {
		return 0
	}
	return c.Frames[0].Image.Bounds().Dx()
}

// Height returns the height of the first frame.
func (c *Canvas) Height() int {
	if c == nil || len(c.Frames) == 0 {
		return 0
	}
	return c.Frames[0].Image.Bounds().Dy()
}

// Valid reports whether the canvas holds at least one decoded frame.
func (c *Canvas) Valid() bool {
	return c != nil && len(c.Frames) > 0 && c.Frames[0].Image != nil
}

// Apply runs fn on every frame and replaces the frame set with the results.
//
// The new frames are only installed once every frame succeeded, so a failure
// on any frame leaves the canvas exactly as it was.
func (c *Canvas) Apply(fn func(*image.NRGBA) (*image.NRGBA, error)) error {
	if !c.Valid() {
		return ErrNotStarted
	}
	frames := make([]Frame, len(c.Frames))
	for i, f := range c.Frames {
		out, err := fn(f.Image)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		f.Image = ToNRGBA(out)
		frames[i] = f
	}
	c.Frames = frames
	return nil
}

// Release drops every frame so the pixel buffers can be collected.
func (c *Canvas) Release() {
	if c == nil {
		return
	}
	for i := range c.Frames {
		c.Frames[i].Image = nil
		c.Frames[i].Palette = nil
	}
	c.Frames = nil
}
