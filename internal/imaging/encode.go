package imaging

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/gen2brain/webp"
)

// DefaultQuality is the compression quality used until one is configured.
const DefaultQuality = 75

// ClampQuality limits q to the 0-100 range encoders accept.
func ClampQuality(q int) int {
	if q < 0 {
		return 0
	}
	if q > 100 {
		return 100
	}
	return q
}

// EncodeWebP writes img as a lossy WebP at the given quality.
func EncodeWebP(w io.Writer, img image.Image, quality int) error {
	if err := webp.Encode(w, img, webp.Options{Quality: ClampQuality(quality)}); err != nil {
		return fmt.Errorf("failed to encode webp: %w", err)
	}
	return nil
}

// WriteFile creates path and streams the output of encode into it.
//
// Filesystem failures are wrapped with ErrIO; encoder failures are returned
// as they are. A partially written file is removed on error.
func WriteFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", ErrIO, path, err)
	}

	bw := bufio.NewWriter(f)
	if err := encode(bw); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("%w: failed to write %s: %v", ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: failed to close %s: %v", ErrIO, path, err)
	}
	return nil
}

// OpenFile opens a source file, wrapping failures with ErrIO.
func OpenFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open image: %v", ErrIO, err)
	}
	return f, nil
}
