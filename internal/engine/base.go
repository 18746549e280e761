package engine

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/image-transform/internal/imaging"
)

// Base carries the state every backend shares: source, allow-list,
// quality, root path, the last written path and the canvas itself.
// Backends embed it and implement only the pixel operations.
type Base struct {
	Log *logrus.Entry

	kind       Kind
	source     string
	allow      imaging.AllowList
	quality    int
	rootPath   string
	created    string
	background color.Color
	canvas     *imaging.Canvas
	destroyed  bool
}

// NewBase initializes the shared state for a backend of kind reading path.
// A nil log is replaced by one that discards everything.
func NewBase(kind Kind, path string, log *logrus.Entry, allow ...string) Base {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	if len(allow) == 0 {
		allow = imaging.DefaultAllowTypes
	}
	return Base{
		Log:        log.WithField("backend", kind.String()),
		kind:       kind,
		source:     path,
		allow:      imaging.NewAllowList(allow...),
		quality:    imaging.DefaultQuality,
		background: color.NRGBA{},
	}
}

func (b *Base) Kind() Kind     { return b.kind }
func (b *Base) Source() string { return b.source }

func (b *Base) SetAllowType(types ...string) {
	b.allow = imaging.NewAllowList(types...)
}

// AllowedTypes returns the current allow-list, sorted.
func (b *Base) AllowedTypes() []string { return b.allow.Types() }

func (b *Base) CheckFileType(path string) error {
	_, err := imaging.CheckFileType(path, b.allow)
	return err
}

func (b *Base) SetRootPath(path string) { b.rootPath = path }
func (b *Base) RootPath() string        { return b.rootPath }

func (b *Base) SetCompressionQuality(quality int) {
	b.quality = imaging.ClampQuality(quality)
}

// Quality returns the compression quality applied by lossy encoders.
func (b *Base) Quality() int { return b.quality }

func (b *Base) SetBackground(c color.Color) {
	if c == nil {
		c = color.NRGBA{}
	}
	b.background = c
}

// Background returns the fill color for areas uncovered by rotation.
func (b *Base) Background() color.Color { return b.background }

func (b *Base) Width() int  { return b.canvas.Width() }
func (b *Base) Height() int { return b.canvas.Height() }

func (b *Base) Canvas() *imaging.Canvas {
	if b.destroyed {
		return nil
	}
	return b.canvas
}

// Started reports whether the source has been decoded.
func (b *Base) Started() bool { return b.canvas.Valid() }

// Prepare runs the checks common to every StartProcess. It reports done when
// the source is already decoded, and otherwise returns the detected MIME
// type of a source that passed the allow-list and is not a vector image.
func (b *Base) Prepare() (mime string, done bool, err error) {
	if b.destroyed {
		return "", false, imaging.ErrDestroyed
	}
	if b.Started() {
		return "", true, nil
	}
	mime, err = imaging.CheckFileType(b.source, b.allow)
	if err != nil {
		return mime, false, err
	}
	if err := imaging.RejectVector(b.source, mime); err != nil {
		return mime, false, err
	}
	return mime, false, nil
}

// SetCanvas installs a freshly decoded canvas.
func (b *Base) SetCanvas(c *imaging.Canvas) {
	b.canvas = c
	b.Log.WithFields(logrus.Fields{
		"width":  c.Width(),
		"height": c.Height(),
		"frames": len(c.Frames),
	}).Debug("decoded source")
}

// Ready returns the canvas, or ErrDestroyed / ErrNotStarted.
func (b *Base) Ready() (*imaging.Canvas, error) {
	if b.destroyed {
		return nil, imaging.ErrDestroyed
	}
	if !b.canvas.Valid() {
		return nil, imaging.ErrNotStarted
	}
	return b.canvas, nil
}

// OverlayFrame validates overlay and returns the frame to blend.
//
// When opacity is below 100, the overlay's alpha channel is scaled in place
// on every frame; the overlay is consumed by the call.
func (b *Base) OverlayFrame(overlay Backend, opacity int) (*image.NRGBA, error) {
	if overlay == nil {
		return nil, fmt.Errorf("%w: nil overlay", imaging.ErrInvalidOverlay)
	}
	oc := overlay.Canvas()
	if !oc.Valid() {
		return nil, fmt.Errorf("%w: overlay %s has no decoded image", imaging.ErrInvalidOverlay, overlay.Source())
	}
	if opacity < 100 {
		for _, f := range oc.Frames {
			imaging.MultiplyAlpha(f.Image, opacity)
		}
	}
	return oc.Frames[0].Image, nil
}

// RecordCreated remembers the path of a successful write.
func (b *Base) RecordCreated(path string) {
	b.created = path
	b.Log.WithField("path", path).Debug("wrote image")
}

// CreatedPath returns the last written path. Unless full is set, a leading
// root path is stripped when it ends at a path element boundary.
func (b *Base) CreatedPath(full bool) string {
	if full || b.rootPath == "" {
		return b.created
	}
	root := strings.TrimRight(b.rootPath, `/\`)
	rest, ok := strings.CutPrefix(b.created, root)
	if !ok || (rest != "" && !os.IsPathSeparator(rest[0]) && rest[0] != '/') {
		return b.created
	}
	return rest
}

// StripMetadata clears the metadata recorded on the canvas.
func (b *Base) StripMetadata() {
	if b.canvas == nil {
		return
	}
	b.canvas.Metadata = imaging.Metadata{Orientation: b.canvas.Metadata.Orientation}
}

// ResetOrientation marks the canvas as upright after an explicit rotation.
func (b *Base) ResetOrientation() {
	if b.canvas != nil {
		b.canvas.Metadata.Orientation = imaging.OrientationNormal
	}
}

func (b *Base) DestroyImage() error {
	if b.destroyed {
		return imaging.ErrDestroyed
	}
	b.canvas.Release()
	b.canvas = nil
	b.destroyed = true
	b.Log.Debug("destroyed image")
	return nil
}
