package engine

import (
	"fmt"
	"strings"

	"github.com/ironsheep/image-transform/internal/imaging"
)

type resolveOptions struct {
	gifGate bool
}

// ResolveOption adjusts backend resolution.
type ResolveOption func(*resolveOptions)

// WithGIFGate restores the older policy that never hands GIF sources to the
// imaging backend, even when it is available.
func WithGIFGate() ResolveOption {
	return func(o *resolveOptions) {
		o.gifGate = true
	}
}

// Resolve picks the backend for a source with extension ext.
//
// An empty request means "bild". The lookup then falls through in order:
//
//  1. "auto" or "imaging": imaging, when available
//  2. "bild" (or fall-through from 1): bild, when available
//  3. anything else: retried once as "auto"
//
// So with both backends available "auto" yields imaging, while a literal
// "bild" always gets bild. ErrUnsupportedLibrary is returned when nothing
// is available.
func Resolve(d Detector, requested, ext string, opts ...ResolveOption) (Kind, error) {
	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}

	name := strings.ToLower(strings.TrimSpace(requested))
	if name == "" {
		name = NameBild
	}
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))

	if k, ok := resolve(d, name, ext, o); ok {
		return k, nil
	}
	if name != NameAuto {
		if k, ok := resolve(d, NameAuto, ext, o); ok {
			return k, nil
		}
	}
	return None, fmt.Errorf("%w: requested %q", imaging.ErrUnsupportedLibrary, requested)
}

func resolve(d Detector, name, ext string, o resolveOptions) (Kind, bool) {
	switch name {
	case NameAuto, NameImaging:
		if !(o.gifGate && ext == "gif") && d.Available(Imaging) {
			return Imaging, true
		}
		fallthrough
	case NameBild:
		if d.Available(Bild) {
			return Bild, true
		}
	}
	return None, false
}
