// Package engine defines the contract shared by the image backends, the
// registry that reports which backends are available on this host, and the
// policy that picks one of them for a source file.
//
// Backends live in sub-packages and register a Factory from an init function
// guarded by a build tag, so a binary built with -tags nobild or -tags
// noimaging simply reports that backend as unavailable.
package engine

import (
	"image/color"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/image-transform/internal/imaging"
)

// Kind identifies a concrete backend.
type Kind int

const (
	// None is the zero Kind; it never names a usable backend.
	None Kind = iota

	// Bild is backend A, built on github.com/anthonynsimon/bild.
	Bild

	// Imaging is backend B, built on github.com/disintegration/imaging.
	Imaging
)

// Backend names accepted by Resolve.
const (
	NameBild    = "bild"
	NameImaging = "imaging"
	NameAuto    = "auto"
)

func (k Kind) String() string {
	switch k {
	case Bild:
		return NameBild
	case Imaging:
		return NameImaging
	default:
		return "none"
	}
}

// ParseKind maps a backend name to its Kind, ignoring case.
func ParseKind(name string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameBild:
		return Bild, true
	case NameImaging:
		return Imaging, true
	default:
		return None, false
	}
}

// Backend owns one decoded image and applies the transform operations to it.
//
// A Backend is not safe for concurrent use. Every transform replaces the
// canvas with a new frame set only when all frames succeeded; on error the
// canvas is left unchanged.
type Backend interface {
	Kind() Kind
	Source() string

	// SetAllowType replaces the MIME allow-list used by CheckFileType.
	SetAllowType(types ...string)
	// CheckFileType probes the content type of path against the allow-list.
	CheckFileType(path string) error
	// StartProcess decodes the source. Calling it again is a no-op.
	StartProcess() error

	SetRootPath(path string)
	RootPath() string
	SetCompressionQuality(quality int)
	SetBackground(c color.Color)

	Width() int
	Height() int

	CropImage(width, height, x, y int) error
	CropSquare(size int) error
	StripImage() error
	// RotateImage rotates clockwise by degrees around the center.
	RotateImage(degrees float64) error
	ResizeImage(width, height int) error
	SharpenImage(amount float64) error
	// CompositeImage blends overlay's first frame onto every frame at (x, y).
	// With opacity below 100 the overlay's alpha is scaled in place.
	CompositeImage(overlay Backend, x, y, opacity int) error

	WriteImage(path string) error
	CreatedPath(full bool) string
	DestroyImage() error

	// Canvas exposes the decoded image for overlay borrowing.
	Canvas() *imaging.Canvas
}

// Factory builds a backend for the source file at path.
type Factory func(path string, log *logrus.Entry) (Backend, error)
