// Package bildengine is the image backend built on github.com/anthonynsimon/bild.
//
// bild works on premultiplied *image.RGBA buffers and rotates clockwise for
// positive angles; results are converted back to the shared NRGBA canvas
// after every operation. EXIF orientation is only honored for JPEG sources.
package bildengine

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"

	"github.com/ironsheep/image-transform/internal/engine"
	"github.com/ironsheep/image-transform/internal/imaging"
)

// Backend implements engine.Backend with bild primitives.
type Backend struct {
	engine.Base
}

// New returns a bild backend for the source at path. Nothing is decoded
// until StartProcess.
func New(path string, log *logrus.Entry) (engine.Backend, error) {
	return &Backend{Base: engine.NewBase(engine.Bild, path, log)}, nil
}

func (b *Backend) StartProcess() error {
	mime, done, err := b.Prepare()
	if err != nil || done {
		return err
	}

	var c *imaging.Canvas
	switch imaging.FormatFromMIME(mime) {
	case imaging.FormatGIF:
		c, err = decodeGIF(b.Source())
	case imaging.FormatJPEG:
		c, err = decodeJPEG(b.Source())
	default:
		c, err = decodeStatic(b.Source(), imaging.FormatFromMIME(mime))
	}
	if err != nil {
		return err
	}
	b.SetCanvas(c)
	return nil
}

func decodeStatic(path string, format imaging.Format) (*imaging.Canvas, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", imaging.ErrUnsupportedFormat, path, err)
	}
	return imaging.NewCanvas(img, format), nil
}

func decodeGIF(path string) (*imaging.Canvas, error) {
	f, err := imaging.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return imaging.DecodeGIF(f)
}

// decodeJPEG decodes a JPEG and rotates it upright according to its EXIF
// orientation tag.
func decodeJPEG(path string) (*imaging.Canvas, error) {
	c, err := decodeStatic(path, imaging.FormatJPEG)
	if err != nil {
		return nil, err
	}
	if err := imaging.OrientJPEG(c, path); err != nil {
		return nil, err
	}
	return c, nil
}

func (b *Backend) CropImage(width, height, x, y int) error {
	c, err := b.Ready()
	if err != nil {
		return err
	}
	return c.Apply(func(img *image.NRGBA) (*image.NRGBA, error) {
		r, err := imaging.CropRect(img.Bounds(), width, height, x, y)
		if err != nil {
			return nil, err
		}
		return imaging.ToNRGBA(transform.Crop(img, r)), nil
	})
}

func (b *Backend) CropSquare(size int) error {
	c, err := b.Ready()
	if err != nil {
		return err
	}
	if size <= 0 {
		return fmt.Errorf("%w: square size %d", imaging.ErrInvalidGeometry, size)
	}
	return c.Apply(func(img *image.NRGBA) (*image.NRGBA, error) {
		square := transform.Crop(img, imaging.SquareRect(img.Bounds().Dx(), img.Bounds().Dy()))
		return imaging.ToNRGBA(transform.Resize(square, size, size, transform.Lanczos)), nil
	})
}

// StripImage is a no-op: bild never carries metadata past decoding.
func (b *Backend) StripImage() error {
	return nil
}

func (b *Backend) RotateImage(degrees float64) error {
	c, err := b.Ready()
	if err != nil {
		return err
	}
	bg := b.Background()
	err = c.Apply(func(img *image.NRGBA) (*image.NRGBA, error) {
		if out, ok := imaging.RotateRightAngle(img, degrees); ok {
			return out, nil
		}
		w, h := imaging.RotatedSize(img.Bounds().Dx(), img.Bounds().Dy(), degrees)
		rotated := transform.Rotate(img, degrees, &transform.RotationOptions{ResizeBounds: true})
		return imaging.FitCenter(fill(rotated, bg), w, h, bg), nil
	})
	if err != nil {
		return err
	}
	b.ResetOrientation()
	return nil
}

// fill composes img over a solid background. Transparent backgrounds keep
// the uncovered corners transparent.
func fill(img image.Image, bg color.Color) *image.NRGBA {
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if _, _, _, a := bg.RGBA(); a > 0 {
		xdraw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)
	}
	xdraw.Draw(dst, dst.Bounds(), img, bounds.Min, xdraw.Over)
	return dst
}

func (b *Backend) ResizeImage(width, height int) error {
	c, err := b.Ready()
	if err != nil {
		return err
	}
	w, h, err := imaging.ResizeTarget(c.Width(), c.Height(), width, height)
	if err != nil {
		return err
	}
	return c.Apply(func(img *image.NRGBA) (*image.NRGBA, error) {
		return imaging.ToNRGBA(transform.Resize(img, w, h, transform.Lanczos)), nil
	})
}

func (b *Backend) SharpenImage(amount float64) error {
	c, err := b.Ready()
	if err != nil {
		return err
	}
	k, err := imaging.SharpenKernel(amount)
	if err != nil {
		return err
	}

	kernel := convolution.NewKernel(3, 3)
	flat := k.Flat()
	copy(kernel.Matrix, flat[:])

	return c.Apply(func(img *image.NRGBA) (*image.NRGBA, error) {
		out := convolution.Convolve(img, kernel, &convolution.Options{KeepAlpha: true})
		return imaging.ToNRGBA(out), nil
	})
}

func (b *Backend) CompositeImage(overlay engine.Backend, x, y, opacity int) error {
	c, err := b.Ready()
	if err != nil {
		return err
	}
	ov, err := b.OverlayFrame(overlay, opacity)
	if err != nil {
		return err
	}
	return c.Apply(func(img *image.NRGBA) (*image.NRGBA, error) {
		dst := image.NewNRGBA(img.Bounds())
		copy(dst.Pix, img.Pix)
		xdraw.Copy(dst, image.Pt(x, y), ov, ov.Bounds(), xdraw.Over, nil)
		return dst, nil
	})
}

func (b *Backend) WriteImage(path string) error {
	c, err := b.Ready()
	if err != nil {
		return err
	}

	format := imaging.OutputFormat(path)
	first := c.Frames[0].Image
	err = imaging.WriteFile(path, func(w io.Writer) error {
		switch format {
		case imaging.FormatPNG:
			enc := png.Encoder{CompressionLevel: png.BestCompression}
			return enc.Encode(w, first)
		case imaging.FormatGIF:
			return imaging.EncodeGIF(w, c)
		case imaging.FormatWebP:
			return imaging.EncodeWebP(w, first, b.Quality())
		case imaging.FormatBMP:
			return imgio.BMPEncoder()(w, first)
		default:
			return imgio.JPEGEncoder(b.Quality())(w, first)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	b.RecordCreated(path)
	return nil
}
