package imagetransform

import (
	"github.com/ironsheep/image-transform/internal/engine"
	_ "github.com/ironsheep/image-transform/internal/engine/bildengine"    // Register backend A
	_ "github.com/ironsheep/image-transform/internal/engine/imagingengine" // Register backend B
)

// Backend identifies the engine a pipeline runs on.
type Backend = engine.Kind

const (
	BackendBild    Backend = engine.Bild
	BackendImaging Backend = engine.Imaging
)

// Detector reports whether a backend can be used on this host.
type Detector = engine.Detector

// IsBildAvailable reports whether the bild backend is usable.
func IsBildAvailable() bool { return engine.IsBildAvailable() }

// IsImagingAvailable reports whether the imaging backend is usable.
func IsImagingAvailable() bool { return engine.IsImagingAvailable() }

// ResolveBackend returns the backend New would pick for requested and a
// source with extension ext.
func ResolveBackend(requested, ext string) (Backend, error) {
	return engine.Resolve(engine.Default(), requested, ext)
}
