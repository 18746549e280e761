package imagetransform

import "github.com/ironsheep/image-transform/internal/imaging"

// Errors returned by pipelines. Match them with errors.Is.
var (
	ErrIO                 = imaging.ErrIO
	ErrUnsupportedLibrary = imaging.ErrUnsupportedLibrary
	ErrInitialization     = imaging.ErrInitialization
	ErrUnsupportedFormat  = imaging.ErrUnsupportedFormat
	ErrInvalidOverlay     = imaging.ErrInvalidOverlay
	ErrInvalidGeometry    = imaging.ErrInvalidGeometry
	ErrDegenerateKernel   = imaging.ErrDegenerateKernel
	ErrNotStarted         = imaging.ErrNotStarted
	ErrDestroyed          = imaging.ErrDestroyed
)
