package imaging

import "errors"

// Error taxonomy shared by the engine packages and re-exported by the
// top-level package. Callers match with errors.Is.
var (
	// ErrIO reports a missing source or a filesystem failure.
	ErrIO = errors.New("image: i/o error")

	// ErrUnsupportedLibrary reports that no backend is usable on this host.
	ErrUnsupportedLibrary = errors.New("image: no image library available")

	// ErrInitialization reports a backend that was selected but could not be built.
	ErrInitialization = errors.New("image: backend initialization failed")

	// ErrUnsupportedFormat reports a vector source or a MIME type outside the allow-list.
	ErrUnsupportedFormat = errors.New("image: unsupported file format")

	// ErrInvalidOverlay reports a composite overlay that holds no decoded image.
	ErrInvalidOverlay = errors.New("image: invalid overlay image")

	// ErrInvalidGeometry reports a crop or resize request with no usable area.
	ErrInvalidGeometry = errors.New("image: invalid geometry")

	// ErrDegenerateKernel reports a sharpen amount whose kernel sums to zero.
	ErrDegenerateKernel = errors.New("image: degenerate sharpen kernel")

	// ErrNotStarted reports a transform issued before StartProcess.
	ErrNotStarted = errors.New("image: processing not started")

	// ErrDestroyed reports use of a backend after DestroyImage.
	ErrDestroyed = errors.New("image: image already destroyed")
)
