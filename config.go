package imagetransform

import (
	"image/color"
	"strings"
	"time"

	"github.com/ironsheep/image-transform/internal/imaging"
)

// DateBucketLayout is the time layout of the date bucket segment.
const DateBucketLayout = "2006/01/02/"

// OutputConfig holds the settings read when a pipeline writes its image.
//
// OutputConfig is a value: the With methods return an updated copy and
// never modify the receiver, so a config can be shared between pipelines.
type OutputConfig struct {
	// Quality is the compression quality (0-100) for lossy encoders.
	Quality int

	// AllowedTypes lists the accepted MIME subtypes of the source.
	AllowedTypes []string

	// RootPath is stripped from CreatedPath(false) results and, with
	// RootRelative, prepended to every destination.
	RootPath string

	// RootRelative makes destinations relative to RootPath.
	RootRelative bool

	// DateBucketing inserts DateBucket before the destination's base name.
	DateBucketing bool

	// DateBucket is the resolved "YYYY/MM/DD/" segment.
	DateBucket string

	// ForcedExtension replaces the destination's extension when set.
	ForcedExtension string

	// Location is the time zone date buckets are computed in.
	Location *time.Location

	// Background fills the corners uncovered by non right-angle rotations.
	Background color.Color

	bucketTime time.Time
}

// DefaultOutputConfig returns quality 75, the default allow-list, UTC date
// buckets and a transparent rotation background.
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Quality:      imaging.DefaultQuality,
		AllowedTypes: append([]string(nil), imaging.DefaultAllowTypes...),
		Location:     time.UTC,
		Background:   color.NRGBA{},
	}
}

func (c OutputConfig) WithQuality(q int) OutputConfig {
	c.Quality = imaging.ClampQuality(q)
	return c
}

// WithAllowedTypes replaces the allow-list. Entries may be subtypes ("png"),
// full MIME types ("image/png") or comma-separated lists of either. A list
// with no entries restores the default allow-list.
func (c OutputConfig) WithAllowedTypes(types ...string) OutputConfig {
	c.AllowedTypes = imaging.NewAllowList(types...).Types()
	if len(c.AllowedTypes) == 0 {
		c.AllowedTypes = append([]string(nil), imaging.DefaultAllowTypes...)
	}
	return c
}

func (c OutputConfig) WithRootPath(root string) OutputConfig {
	c.RootPath = root
	return c
}

func (c OutputConfig) WithRootRelative(relative bool) OutputConfig {
	c.RootRelative = relative
	return c
}

// WithDateBucket enables date bucketing for the calendar day of t in the
// config's Location.
func (c OutputConfig) WithDateBucket(t time.Time) OutputConfig {
	c.DateBucketing = true
	c.bucketTime = t
	c.DateBucket = t.In(c.location()).Format(DateBucketLayout)
	return c
}

// WithoutDateBucket disables date bucketing.
func (c OutputConfig) WithoutDateBucket() OutputConfig {
	c.DateBucketing = false
	c.DateBucket = ""
	c.bucketTime = time.Time{}
	return c
}

// WithLocation sets the time zone for date buckets, re-resolving an already
// enabled bucket.
func (c OutputConfig) WithLocation(loc *time.Location) OutputConfig {
	c.Location = loc
	if c.DateBucketing {
		c.DateBucket = c.bucketTime.In(c.location()).Format(DateBucketLayout)
	}
	return c
}

// WithForcedExtension makes every write use ext ("webp" or ".webp").
// An empty ext keeps the destination's own extension.
func (c OutputConfig) WithForcedExtension(ext string) OutputConfig {
	c.ForcedExtension = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	return c
}

func (c OutputConfig) WithBackground(bg color.Color) OutputConfig {
	c.Background = bg
	return c
}

// WithBackgroundHex sets the rotation background from "#RRGGBB", "#RGB" or
// "transparent".
func (c OutputConfig) WithBackgroundHex(s string) (OutputConfig, error) {
	bg, err := imaging.ParseBackground(s)
	if err != nil {
		return c, err
	}
	c.Background = bg
	return c, nil
}

func (c OutputConfig) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
