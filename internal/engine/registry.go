package engine

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/image-transform/internal/imaging"
)

// DisableEnv names the environment variable holding a comma-separated list
// of backend names to treat as unavailable, e.g. IMAGE_TRANSFORM_DISABLE=imaging.
const DisableEnv = "IMAGE_TRANSFORM_DISABLE"

// Detector reports whether a backend can be used on this host.
type Detector interface {
	Available(kind Kind) bool
}

// Registry holds the backend factories compiled into the binary.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Kind]Factory)}
}

// Register adds or replaces the factory for kind.
func (r *Registry) Register(kind Kind, f Factory) {
	r.mu.Lock()
	r.factories[kind] = f
	r.mu.Unlock()
}

// Available reports whether kind has a factory and is not disabled through
// the environment. It never panics.
func (r *Registry) Available(kind Kind) bool {
	r.mu.RLock()
	_, ok := r.factories[kind]
	r.mu.RUnlock()
	return ok && !disabled(kind)
}

// New instantiates the backend registered for kind.
//
// A kind with no factory yields ErrUnsupportedLibrary; a factory that fails
// yields ErrInitialization wrapping the cause.
func (r *Registry) New(kind Kind, path string, log *logrus.Entry) (Backend, error) {
	r.mu.RLock()
	f, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", imaging.ErrUnsupportedLibrary, kind)
	}

	b, err := f(path, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", imaging.ErrInitialization, kind, err)
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s returned no backend", imaging.ErrInitialization, kind)
	}
	return b, nil
}

func disabled(kind Kind) bool {
	v := os.Getenv(DisableEnv)
	if v == "" {
		return false
	}
	for _, name := range strings.Split(v, ",") {
		if k, ok := ParseKind(name); ok && k == kind {
			return true
		}
	}
	return false
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry backends register into.
func Default() *Registry { return defaultRegistry }

// Register adds a factory to the default registry. Backend packages call it
// from init.
func Register(kind Kind, f Factory) { defaultRegistry.Register(kind, f) }

// Available reports whether kind is usable according to the default registry.
func Available(kind Kind) bool { return defaultRegistry.Available(kind) }

// IsBildAvailable reports whether backend A can be used.
func IsBildAvailable() bool { return Available(Bild) }

// IsImagingAvailable reports whether backend B can be used.
func IsImagingAvailable() bool { return Available(Imaging) }
