package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ParseBackground parses a rotation fill color.
//
// Accepted values are "#RGB" or "#RRGGBB" hex strings (the leading '#' is
// optional) and the keywords "transparent" or "" for a fully transparent fill.
func ParseBackground(s string) (color.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "transparent" || s == "none" {
		return color.NRGBA{}, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("invalid background color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// MultiplyAlpha scales the alpha channel of img in place by opacity/100.
//
// This is destructive: the original alpha values are lost. Opacity values of
// 100 or more leave the image untouched and values below 0 make it fully
// transparent.
func MultiplyAlpha(img *image.NRGBA, opacity int) {
	if opacity >= 100 {
		return
	}
	if opacity < 0 {
		opacity = 0
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			a := uint32(img.Pix[i+3])
			img.Pix[i+3] = uint8((a*uint32(opacity) + 50) / 100)
			i += 4
		}
	}
}
