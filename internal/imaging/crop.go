package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// CropRect returns the sub-rectangle of bounds selected by a width x height
// crop at offset (x, y).
//
// The requested area is clipped to bounds, so a crop hanging over the right or
// bottom edge keeps only the part that exists. A crop with no overlap, or a
// non-positive width or height, fails with ErrInvalidGeometry.
func CropRect(bounds image.Rectangle, width, height, x, y int) (image.Rectangle, error) {
	if width <= 0 || height <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: crop size %dx%d", ErrInvalidGeometry, width, height)
	}
	r := image.Rect(x, y, x+width, y+height).Add(bounds.Min).Intersect(bounds)
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: crop (%d,%d) %dx%d outside image bounds %v",
			ErrInvalidGeometry, x, y, width, height, bounds)
	}
	return r, nil
}

// SquareRect returns the centered square with the side of the smaller
// dimension of a width x height image.
//
// Landscape images lose (width-height)/2 pixels on the left and right,
// portrait and square images lose (height-width)/2 on the top and bottom:
//
//	800x600 -> (100,0)-(700,600)
//	600x800 -> (0,100)-(600,700)
func SquareRect(width, height int) image.Rectangle {
	if width > height {
		x := (width - height) / 2
		return image.Rect(x, 0, x+height, height)
	}
	y := (height - width) / 2
	return image.Rect(0, y, width, y+width)
}

// ResizeTarget computes the output size of a resize request on a
// curWidth x curHeight image.
//
// The requested width never exceeds the current width. A height of 0 keeps
// the aspect ratio: ceil(width / curWidth * curHeight).
func ResizeTarget(curWidth, curHeight, width, height int) (int, int, error) {
	if curWidth <= 0 || curHeight <= 0 {
		return 0, 0, fmt.Errorf("%w: empty image", ErrInvalidGeometry)
	}
	if width > curWidth {
		width = curWidth
	}
	if width <= 0 || height < 0 {
		return 0, 0, fmt.Errorf("%w: resize to %dx%d", ErrInvalidGeometry, width, height)
	}
	if height == 0 {
		height = int(math.Ceil(float64(width) / float64(curWidth) * float64(curHeight)))
	}
	return width, height, nil
}

// RotatedSize returns the canvas size of a width x height image rotated by
// deg degrees with its bounds grown to fit: the rotated rectangle's bounding
// box, rounded to whole pixels.
//
//	100x50 at 30 -> 112x93
//	100x50 at -10 -> 107x67
func RotatedSize(width, height int, deg float64) (int, int) {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	sin, cos = math.Abs(sin), math.Abs(cos)
	w := float64(width)*cos + float64(height)*sin
	h := float64(width)*sin + float64(height)*cos
	return int(math.Round(w)), int(math.Round(h))
}

// FitCenter centers img on a width x height canvas, cropping what overhangs
// and filling uncovered pixels with bg. Images already of that size are
// returned unchanged.
func FitCenter(img *image.NRGBA, width, height int, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	return imaging.PasteCenter(imaging.New(width, height, bg), img)
}
