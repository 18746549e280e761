package imagetransform

import (
	"fmt"
	"time"
)

// Result summarizes a successful WriteImage.
type Result struct {
	Source      string        `json:"source"`
	Destination string        `json:"destination"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	SizeBytes   int64         `json:"size_bytes"`
	Elapsed     time.Duration `json:"elapsed"`
	Backend     string        `json:"backend"`
}

// SizeKB returns the written file size in whole kilobytes.
func (r Result) SizeKB() int64 { return r.SizeBytes / 1024 }

func (r Result) String() string {
	return fmt.Sprintf("%s -> %s (%dx%d, %d KB, %.2f ms, %s)",
		r.Source, r.Destination, r.Width, r.Height, r.SizeKB(),
		float64(r.Elapsed.Microseconds())/1000, r.Backend)
}
