package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
)

// DecodeGIF decodes every frame of a GIF and coalesces them.
//
// Coalescing composes each frame onto the logical screen according to the
// previous frame's disposal method, so every Frame in the result is a full
// screen-sized image that can be cropped or resized on its own. Single-frame
// GIFs produce a canvas with Animated set to false.
func DecodeGIF(r io.Reader) (*Canvas, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode gif: %v", ErrUnsupportedFormat, err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("%w: gif has no frames", ErrUnsupportedFormat)
	}

	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		for _, f := range g.Image {
			screen = screen.Union(f.Bounds())
		}
	}

	c := &Canvas{
		Frames:    make([]Frame, 0, len(g.Image)),
		LoopCount: g.LoopCount,
		Format:    FormatGIF,
		Animated:  len(g.Image) > 1,
		Metadata:  Metadata{Orientation: OrientationNormal},
	}

	acc := image.NewNRGBA(screen)
	for i, f := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var delay int
		if i < len(g.Delay) {
			delay = g.Delay[i]
		}

		var saved *image.NRGBA
		if disposal == gif.DisposalPrevious {
			saved = cloneNRGBA(acc)
		}

		draw.Draw(acc, f.Bounds(), f, f.Bounds().Min, draw.Over)
		c.Frames = append(c.Frames, Frame{
			Image:    ToNRGBA(cloneNRGBA(acc)),
			Delay:    delay,
			Disposal: disposal,
			Palette:  f.Palette,
		})

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(acc, f.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			acc = saved
		}
	}
	return c, nil
}

// EncodeGIF writes the canvas as a GIF.
//
// Frames are de-coalesced first: every frame after the first is reduced to
// the bounding box of the pixels that differ from the frame before it. A
// transparent pixel in a GIF frame leaves the screen untouched, so a frame
// that turns visible pixels transparent cannot clear them itself. The frame
// before it is then stored with DisposalBackground, grown to cover the
// cleared pixels, and the frame repaints that whole area. Colors are mapped
// onto the frame's source palette when it has one, otherwise onto Plan9 with
// a transparent entry, using Floyd-Steinberg dithering.
func EncodeGIF(w io.Writer, c *Canvas) error {
	if !c.Valid() {
		return ErrNotStarted
	}

	rects, disposals := frameLayout(c.Frames)
	out := &gif.GIF{LoopCount: c.LoopCount}
	for i, f := range c.Frames {
		rect := rects[i]
		pal := framePalette(f.Palette, hasTransparent(f.Image, rect))
		pm := image.NewPaletted(rect, pal)
		draw.FloydSteinberg.Draw(pm, rect, f.Image, rect.Min)

		out.Image = append(out.Image, pm)
		out.Delay = append(out.Delay, f.Delay)
		out.Disposal = append(out.Disposal, disposals[i])
		if i == 0 {
			out.Config = image.Config{
				ColorModel: pal,
				Width:      f.Image.Bounds().Dx(),
				Height:     f.Image.Bounds().Dy(),
			}
		}
	}

	if err := gif.EncodeAll(w, out); err != nil {
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	return nil
}

// frameLayout picks the stored rectangle and disposal method of every frame.
func frameLayout(frames []Frame) ([]image.Rectangle, []byte) {
	rects := make([]image.Rectangle, len(frames))
	disposals := make([]byte, len(frames))
	for i, f := range frames {
		disposals[i] = gif.DisposalNone
		if i == 0 {
			rects[i] = f.Image.Bounds()
			continue
		}

		prev := frames[i-1].Image
		rect := diffBounds(prev, f.Image)
		if cleared := clearedBounds(prev, f.Image); !cleared.Empty() {
			disposals[i-1] = gif.DisposalBackground
			rects[i-1] = rects[i-1].Union(cleared)
			rect = rect.Union(rects[i-1])
		}
		if rect.Empty() {
			// Identical frame: keep its display time with a 1x1 no-op patch.
			rect = image.Rect(0, 0, 1, 1)
		}
		rects[i] = rect.Intersect(f.Image.Bounds())
	}
	return rects, disposals
}

// clearedBounds returns the smallest rectangle containing every pixel that is
// visible in a and fully transparent in b.
func clearedBounds(a, b *image.NRGBA) image.Rectangle {
	if a.Bounds() != b.Bounds() {
		return image.Rectangle{}
	}
	var r image.Rectangle
	bounds := b.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		ia := a.PixOffset(bounds.Min.X, y)
		ib := b.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if a.Pix[ia+3] != 0 && b.Pix[ib+3] == 0 {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
			ia += 4
			ib += 4
		}
	}
	return r
}

func hasTransparent(img *image.NRGBA, r image.Rectangle) bool {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.Pix[i+3] == 0 {
				return true
			}
			i += 4
		}
	}
	return false
}

// diffBounds returns the smallest rectangle containing every pixel that
// differs between a and b. Frames of different sizes differ everywhere.
func diffBounds(a, b *image.NRGBA) image.Rectangle {
	if a.Bounds() != b.Bounds() {
		return b.Bounds()
	}
	bounds := b.Bounds()
	minX, minY := bounds.Max.X, bounds.Max.Y
	maxX, maxY := bounds.Min.X-1, bounds.Min.Y-1
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		ia := a.PixOffset(bounds.Min.X, y)
		ib := b.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if a.Pix[ia] != b.Pix[ib] || a.Pix[ia+1] != b.Pix[ib+1] ||
				a.Pix[ia+2] != b.Pix[ib+2] || a.Pix[ia+3] != b.Pix[ib+3] {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
			ia += 4
			ib += 4
		}
	}
	if maxX < minX {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// framePalette returns the palette a frame is quantized onto. Source
// palettes are reused, gaining a transparent entry when the frame needs one
// and the palette lacks it.
func framePalette(src color.Palette, transparent bool) color.Palette {
	if len(src) > 0 && len(src) <= 256 {
		if !transparent || paletteHasTransparent(src) {
			return src
		}
		if len(src) < 256 {
			pal := make(color.Palette, 0, len(src)+1)
			pal = append(pal, src...)
			return append(pal, color.NRGBA{})
		}
	}
	pal := make(color.Palette, 0, 256)
	pal = append(pal, color.NRGBA{})
	pal = append(pal, palette.Plan9[:255]...)
	return pal
}

func paletteHasTransparent(p color.Palette) bool {
	for _, c := range p {
		if _, _, _, a := c.RGBA(); a == 0 {
			return true
		}
	}
	return false
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
