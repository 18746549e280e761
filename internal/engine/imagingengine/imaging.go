// Package imagingengine is the image backend built on
// github.com/disintegration/imaging.
//
// The imaging library rotates counter-clockwise for positive angles, so
// RotateImage negates the caller's clockwise angle. EXIF orientation is read
// for JPEG sources and corrected through the shared canvas helpers, so mirrored
// tags are left as stored.
package imagingengine

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/image-transform/internal/engine"
	canvas "github.com/ironsheep/image-transform/internal/imaging"
)

// Backend implements engine.Backend with disintegration/imaging primitives.
type Backend struct {
	engine.Base
}

// New returns an imaging backend for the source at path.
func New(path string, log *logrus.Entry) (engine.Backend, error) {
	return &Backend{Base: engine.NewBase(engine.Imaging, path, log)}, nil
}

func (b *Backend) StartProcess() error {
	mime, done, err := b.Prepare()
	if err != nil || done {
		return err
	}

	format := canvas.FormatFromMIME(mime)
	if format == canvas.FormatGIF {
		f, err := canvas.OpenFile(b.Source())
		if err != nil {
			return err
		}
		defer f.Close()

		c, err := canvas.DecodeGIF(f)
		if err != nil {
			return err
		}
		b.SetCanvas(c)
		return nil
	}

	img, err := imaging.Open(b.Source())
	if err != nil {
		return fmt.Errorf("%w: failed to decode %s: %v", canvas.ErrUnsupportedFormat, b.Source(), err)
	}
	c := canvas.NewCanvas(img, format)
	if format == canvas.FormatJPEG {
		if err := canvas.OrientJPEG(c, b.Source()); err != nil {
			return err
		}
	}
	b.SetCanvas(c)
	return nil
}

func (b *Backend) CropImage(width, height, x, y int) error {
	c, err := b.Ready()
	if err != nil {
		return err
	}
	return c.Apply(func(img *image.NRGBA) (*image.NRGBA, error) {
		r, err := canvas.CropRect(img.Bounds(), width, height, x, y)
		if err != nil {
			return nil, err
		}
		return imaging.Crop(img, r), nil
	})
}

func (b *Backend) CropSquare(size int) error {
	c, err := b.Ready()
	if err != nil {
		return err
	}
	if size <= 0 {
		return fmt.Errorf("%w: square size %d", canvas.ErrInvalidGeometry, size)
	}
	return c.Apply(func(img *image.NRGBA) (*image.NRGBA, error) {
		square := imaging.Crop(img, canvas.SquareRect(img.Bounds().Dx(), img.Bounds().Dy()))
		return imaging.Resize(square, size, size, imaging.Lanczos), nil
	})
}

// StripImage drops the metadata recorded for the canvas.
func (b *Backend) StripImage() error {
	b.StripMetadata()
	return nil
}

func (b *Backend) RotateImage(degrees float64) error {
	c, err := b.Ready()
	if err != nil {
		return err
	}
	bg := b.Background()
	err = c.Apply(func(img *image.NRGBA) (*image.NRGBA, error) {
		if out, ok := canvas.RotateRightAngle(img, degrees); ok {
			return out, nil
		}
		w, h := canvas.RotatedSize(img.Bounds().Dx(), img.Bounds().Dy(), degrees)
		return canvas.FitCenter(imaging.Rotate(img, -degrees, bg), w, h, bg), nil
	})
	if err != nil {
		return err
	}
	b.ResetOrientation()
	return nil
}

func (b *Backend) ResizeImage(width, height int) error {
	c, err := b.Ready()
	if err != nil {
		return err
	}
	w, h, err := canvas.ResizeTarget(c.Width(), c.Height(), width, height)
	if err != nil {
		return err
	}
	return c.Apply(func(img *image.NRGBA) (*image.NRGBA, error) {
		return imaging.Resize(img, w, h, imaging.Lanczos), nil
	})
}

func (b *Backend) SharpenImage(amount float64) error {
	c, err := b.Ready()
	if err != nil {
		return err
	}
	k, err := canvas.SharpenKernel(amount)
	if err != nil {
		return err
	}
	flat := k.Flat()
	return c.Apply(func(img *image.NRGBA) (*image.NRGBA, error) {
		return imaging.Convolve3x3(img, flat, nil), nil
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
	// Opacity is already folded into the overlay's alpha.
	return c.Apply(func(img *image.NRGBA) (*image.NRGBA, error) {
		return imaging.Overlay(img, ov, image.Pt(x, y), 1.0), nil
	})
}

func (b *Backend) WriteImage(path string) error {
	c, err := b.Ready()
	if err != nil {
		return err
	}

	format := canvas.OutputFormat(path)
	first := c.Frames[0].Image
	err = canvas.WriteFile(path, func(w io.Writer) error {
		switch format {
		case canvas.FormatPNG:
			return imaging.Encode(w, first, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
		case canvas.FormatGIF:
			return canvas.EncodeGIF(w, c)
		case canvas.FormatWebP:
			return canvas.EncodeWebP(w, first, b.Quality())
		case canvas.FormatBMP:
			return imaging.Encode(w, first, imaging.BMP)
		default:
			return imaging.Encode(w, first, imaging.JPEG, imaging.JPEGQuality(b.Quality()))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	b.RecordCreated(path)
	return nil
}
