package imagetransform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/image-transform/internal/engine"
	"github.com/ironsheep/image-transform/internal/imaging"
)

// Source describes the file a pipeline was built for.
type Source struct {
	// Path is the source path as given to New.
	Path string `json:"path"`

	// MIME is the content-detected MIME type.
	MIME string `json:"mime"`
}

// Pipeline drives one backend through a sequence of edits on one image.
//
// Configuration setters return the pipeline so they can be chained; pixel
// operations return an error and leave the image unchanged when they fail.
// A Pipeline is not safe for concurrent use.
type Pipeline struct {
	id      string
	source  Source
	backend engine.Backend
	cfg     OutputConfig
	created time.Time
	log     *logrus.Entry
	result  *Result
}

// New validates the source, resolves a backend and instantiates it.
//
// The requested backend (WithBackend) defaults to "bild". "auto" prefers
// "imaging"; any request for a backend that is not available falls back to
// the other one.
//
// Errors:
//   - ErrIO: the source does not exist or cannot be read
//   - ErrUnsupportedLibrary: no backend is available
//   - ErrInitialization: the selected backend could not be built
func New(path string, opts ...Option) (*Pipeline, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: source %s does not exist: %v", ErrIO, path, err)
	}
	mime, err := imaging.DetectMIME(path)
	if err != nil {
		return nil, err
	}

	var ropts []engine.ResolveOption
	if o.gifGate {
		ropts = append(ropts, engine.WithGIFGate())
	}
	detector := o.detector
	if detector == nil {
		detector = o.registry
	}
	kind, err := engine.Resolve(detector, o.backend, imaging.Extension(path), ropts...)
	if err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger = Logger()
	}
	id := uuid.NewString()
	log := logger.WithFields(logrus.Fields{
		"pipeline": id,
		"source":   path,
	})

	b, err := o.registry.New(kind, path, log)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		id:      id,
		source:  Source{Path: path, MIME: mime},
		backend: b,
		created: o.now(),
		log:     log.WithField("backend", kind.String()),
	}

	cfg := DefaultOutputConfig()
	if o.config != nil {
		cfg = *o.config
	}
	p.Configure(cfg)

	p.log.WithField("mime", mime).Debug("pipeline created")
	return p, nil
}

// ID returns the pipeline's unique id, also attached to its log entries.
func (p *Pipeline) ID() string { return p.id }

// Source returns the source descriptor.
func (p *Pipeline) Source() Source { return p.source }

// Backend returns the backend the pipeline resolved to.
func (p *Pipeline) Backend() Backend { return p.backend.Kind() }

// Config returns the current output configuration.
func (p *Pipeline) Config() OutputConfig { return p.cfg }

// Configure replaces the output configuration and pushes the backend-facing
// settings (quality, allow-list, root path, background) down to the backend.
func (p *Pipeline) Configure(cfg OutputConfig) *Pipeline {
	if len(cfg.AllowedTypes) == 0 {
		cfg = cfg.WithAllowedTypes()
	}
	p.cfg = cfg
	p.backend.SetCompressionQuality(cfg.Quality)
	p.backend.SetAllowType(cfg.AllowedTypes...)
	p.backend.SetRootPath(cfg.RootPath)
	p.backend.SetBackground(cfg.Background)
	return p
}

// SetAllowType replaces the MIME allow-list checked by StartProcess.
func (p *Pipeline) SetAllowType(types ...string) *Pipeline {
	return p.Configure(p.cfg.WithAllowedTypes(types...))
}

// CheckFileType probes path against the current allow-list.
func (p *Pipeline) CheckFileType(path string) error {
	return p.backend.CheckFileType(path)
}

// SetCompressionQuality sets the quality (0-100) for lossy encoders.
func (p *Pipeline) SetCompressionQuality(q int) *Pipeline {
	return p.Configure(p.cfg.WithQuality(q))
}

// SetRootPath sets the root stripped from CreatedPath(false).
func (p *Pipeline) SetRootPath(root string) *Pipeline {
	return p.Configure(p.cfg.WithRootPath(root))
}

// RootPath returns the configured root path, or "" when none is set.
func (p *Pipeline) RootPath() string { return p.backend.RootPath() }

// SetRootRelative makes destinations relative to the root path.
func (p *Pipeline) SetRootRelative(relative bool) *Pipeline {
	return p.Configure(p.cfg.WithRootRelative(relative))
}

// SaveByDate enables date bucketing for the day of t. A zero t uses the
// pipeline's construction time.
func (p *Pipeline) SaveByDate(t time.Time) *Pipeline {
	if t.IsZero() {
		t = p.created
	}
	return p.Configure(p.cfg.WithDateBucket(t))
}

// SetOutputExtension forces the extension, and so the format, of every write.
func (p *Pipeline) SetOutputExtension(ext string) *Pipeline {
	return p.Configure(p.cfg.WithForcedExtension(ext))
}

// StartProcess decodes the source. It is a no-op when already decoded.
func (p *Pipeline) StartProcess() error {
	if err := p.backend.StartProcess(); err != nil {
		p.log.WithError(err).Warn("failed to start processing")
		return err
	}
	return nil
}

// Width returns the width of the (first frame of the) decoded image.
func (p *Pipeline) Width() int { return p.backend.Width() }

// Height returns the height of the (first frame of the) decoded image.
func (p *Pipeline) Height() int { return p.backend.Height() }

// CropImage keeps the width x height rectangle at (x, y).
func (p *Pipeline) CropImage(width, height, x, y int) error {
	return p.backend.CropImage(width, height, x, y)
}

// CropSquare crops the centered square of the smaller side and resamples it
// to size x size.
func (p *Pipeline) CropSquare(size int) error {
	return p.backend.CropSquare(size)
}

// StripImage removes embedded metadata. It always succeeds.
func (p *Pipeline) StripImage() error {
	return p.backend.StripImage()
}

// RotateImage rotates clockwise by degrees.
func (p *Pipeline) RotateImage(degrees float64) error {
	return p.backend.RotateImage(degrees)
}

// ResizeImage scales to width x height. Widths above the current width are
// clamped; a height of 0 keeps the aspect ratio.
func (p *Pipeline) ResizeImage(width, height int) error {
	return p.backend.ResizeImage(width, height)
}

// SharpenImage applies the 3x3 sharpen kernel for amount.
func (p *Pipeline) SharpenImage(amount float64) error {
	return p.backend.SharpenImage(amount)
}

// CompositeImage blends overlay onto this image at (x, y).
//
// With opacity below 100 the overlay's alpha is scaled in place; do not
// reuse the overlay afterwards.
func (p *Pipeline) CompositeImage(overlay *Pipeline, x, y, opacity int) error {
	if overlay == nil || overlay.backend == nil {
		return fmt.Errorf("%w: nil overlay", ErrInvalidOverlay)
	}
	return p.backend.CompositeImage(overlay.backend, x, y, opacity)
}

// ResolveOutputPath returns the path WriteImage would write dest to.
func (p *Pipeline) ResolveOutputPath(dest string) string {
	return resolveOutputPath(p.cfg, dest)
}

// WriteImage resolves dest, creates its directory and encodes the image
// there. The format follows the final extension; unknown extensions are
// written as JPEG.
func (p *Pipeline) WriteImage(dest string) error {
	start := time.Now()
	final := p.ResolveOutputPath(dest)

	if dir := filepath.Dir(final); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: failed to create %s: %v", ErrIO, dir, err)
		}
	}

	if err := p.backend.WriteImage(final); err != nil {
		p.log.WithError(err).WithField("destination", final).Warn("failed to write image")
		return err
	}

	var size int64
	if stat, err := os.Stat(final); err == nil {
		size = stat.Size()
	}
	p.result = &Result{
		Source:      p.source.Path,
		Destination: final,
		Width:       p.Width(),
		Height:      p.Height(),
		SizeBytes:   size,
		Elapsed:     time.Since(start),
		Backend:     p.Backend().String(),
	}
	p.log.WithFields(logrus.Fields{
		"destination": final,
		"width":       p.result.Width,
		"height":      p.result.Height,
		"bytes":       size,
	}).Info("image written")
	return nil
}

// CreatedPath returns the last written path. Unless full is set, the
// configured root path is stripped from its front.
func (p *Pipeline) CreatedPath(full bool) string {
	return p.backend.CreatedPath(full)
}

// Result reports the last successful write, or nil before one.
func (p *Pipeline) Result() *Result { return p.result }

// DestroyImage releases the decoded image. The pipeline cannot transform or
// write afterwards.
func (p *Pipeline) DestroyImage() error {
	return p.backend.DestroyImage()
}

// Close releases the decoded image if it has not been released yet.
func (p *Pipeline) Close() error {
	if err := p.backend.DestroyImage(); err != nil && !errors.Is(err, ErrDestroyed) {
		return err
	}
	return nil
}
