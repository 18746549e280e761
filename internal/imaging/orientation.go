package imaging

import (
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// Orientation is the state of a canvas with respect to its stored rotation.
type Orientation int

const (
	OrientationUnknown Orientation = iota
	OrientationNormal
	OrientationRotate180
	OrientationRotate90CW
	OrientationRotate90CCW
)

func (o Orientation) String() string {
	switch o {
	case OrientationNormal:
		return "normal"
	case OrientationRotate180:
		return "rotate-180"
	case OrientationRotate90CW:
		return "rotate-90-cw"
	case OrientationRotate90CCW:
		return "rotate-90-ccw"
	default:
		return "unknown"
	}
}

// OrientationFromEXIF maps an EXIF orientation tag value to a state.
// Tags describing mirrored images are not corrected and map to Unknown.
func OrientationFromEXIF(tag int) Orientation {
	switch tag {
	case 1:
		return OrientationNormal
	case 3:
		return OrientationRotate180
	case 6:
		return OrientationRotate90CW
	case 8:
		return OrientationRotate90CCW
	default:
		return OrientationUnknown
	}
}

// ClockwiseDegrees returns the clockwise rotation that brings an image in
// this state upright.
func (o Orientation) ClockwiseDegrees() float64 {
	switch o {
	case OrientationRotate180:
		return 180
	case OrientationRotate90CW:
		return 90
	case OrientationRotate90CCW:
		return 270
	default:
		return 0
	}
}

// ReadEXIFOrientation reads the orientation tag from an EXIF block in r.
// Sources without EXIF or without the tag report (Unknown, false).
func ReadEXIFOrientation(r io.Reader) (Orientation, bool) {
	x, err := exif.Decode(r)
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return OrientationUnknown, false
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return OrientationUnknown, true
	}
	v, err := tag.Int(0)
	if err != nil {
		return OrientationUnknown, true
	}
	return OrientationFromEXIF(v), true
}

// OrientJPEG records the EXIF orientation of the JPEG at path on c and
// rotates c upright. Mirrored orientations are left as stored.
func OrientJPEG(c *Canvas, path string) error {
	f, err := OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	c.Metadata.Orientation, c.Metadata.EXIF = ReadEXIFOrientation(f)
	return CorrectOrientation(c)
}

// CorrectOrientation rotates every frame of c upright according to its
// recorded orientation and leaves the canvas in the Normal state.
func CorrectOrientation(c *Canvas) error {
	deg := c.Metadata.Orientation.ClockwiseDegrees()
	if deg != 0 {
		err := c.Apply(func(img *image.NRGBA) (*image.NRGBA, error) {
			out, _ := RotateRightAngle(img, deg)
			return out, nil
		})
		if err != nil {
			return err
		}
	}
	c.Metadata.Orientation = OrientationNormal
	return nil
}

// RotateRightAngle rotates img clockwise by deg when deg is a multiple of 90,
// by transposing pixels exactly. It reports false for any other angle.
func RotateRightAngle(img image.Image, deg float64) (*image.NRGBA, bool) {
	turns := math.Mod(deg, 360)
	if turns < 0 {
		turns += 360
	}
	switch turns {
	case 0:
		return imaging.Clone(img), true
	case 90:
		return imaging.Rotate270(img), true
	case 180:
		return imaging.Rotate180(img), true
	case 270:
		return imaging.Rotate90(img), true
	default:
		return nil, false
	}
}
