package imagetransform

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/image-transform/internal/engine"
)

// Option configures a Pipeline during New.
//
// Example:
//
//	p, err := imagetransform.New("in.gif",
//	    imagetransform.WithBackend("auto"),
//	    imagetransform.WithConfig(imagetransform.DefaultOutputConfig().WithQuality(60)),
//	)
type Option func(*options)

type options struct {
	backend  string
	logger   *logrus.Logger
	config   *OutputConfig
	detector engine.Detector
	registry *engine.Registry
	gifGate  bool
	now      func() time.Time
}

func defaultOptions() options {
	return options{
		registry: engine.Default(),
		now:      time.Now,
	}
}

// WithBackend requests a backend by name: "bild", "imaging" or "auto".
// Unknown or unavailable names fall back as described on New.
func WithBackend(name string) Option {
	return func(o *options) {
		o.backend = name
	}
}

// WithLogger overrides the package logger for one pipeline.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithConfig sets the initial output configuration.
func WithConfig(c OutputConfig) Option {
	return func(o *options) {
		o.config = &c
	}
}

// WithGIFGate keeps GIF sources away from the imaging backend, matching the
// older selection policy.
func WithGIFGate() Option {
	return func(o *options) {
		o.gifGate = true
	}
}

// WithDetector replaces the capability detector consulted during backend
// resolution.
func WithDetector(d Detector) Option {
	return func(o *options) {
		o.detector = d
	}
}

// WithClock sets the clock used for the construction time, which is the
// default date bucket.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
