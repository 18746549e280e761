package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "github.com/gen2brain/webp" // Register WebP format decoder
	_ "golang.org/x/image/bmp"    // Register BMP format decoder
)

// DefaultAllowTypes is the MIME subtype allow-list both backends start with.
var DefaultAllowTypes = []string{"jpg", "jpeg", "png", "gif", "webp", "bmp", "x-ms-bmp"}

// AllowList is a set of accepted MIME subtypes ("jpeg", "png", ...).
//
// Entries are stored lowercase without the "image/" prefix so that
// "image/PNG", "png" and " png " all name the same type.
type AllowList map[string]struct{}

// NewAllowList builds an allow-list from MIME types or subtypes.
//
// Each argument may itself be a comma-separated list, so both
// NewAllowList("jpeg", "png") and NewAllowList("jpeg,png") work.
func NewAllowList(types ...string) AllowList {
	list := make(AllowList)
	for _, t := range types {
		for _, part := range strings.Split(t, ",") {
			sub := MIMESubtype(part)
			if sub == "" {
				continue
			}
			list[sub] = struct{}{}
		}
	}
	return list
}

// Contains reports whether mime (full type or subtype) is allowed.
func (l AllowList) Contains(mime string) bool {
	_, ok := l[MIMESubtype(mime)]
	return ok
}

// Types returns the allowed subtypes in sorted order.
func (l AllowList) Types() []string {
	out := make([]string, 0, len(l))
	for t := range l {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// MIMESubtype normalizes "image/PNG; charset=binary" to "png".
func MIMESubtype(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return strings.TrimPrefix(mime, "image/")
}

// DetectMIME probes the file's content and returns its MIME type.
//
// Detection reads the file header; the extension is never consulted.
func DetectMIME(path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to probe %s: %v", ErrIO, path, err)
	}
	return mt.String(), nil
}

// CheckFileType probes path and fails with ErrUnsupportedFormat unless its
// MIME type is in allow. The detected MIME type is returned on success.
func CheckFileType(path string, allow AllowList) (string, error) {
	mime, err := DetectMIME(path)
	if err != nil {
		return "", err
	}
	if !allow.Contains(mime) {
		return mime, fmt.Errorf("%w: %s is %s", ErrUnsupportedFormat, path, mime)
	}
	return mime, nil
}

// SourceInfo contains metadata about an image file, read without decoding
// its pixels.
type SourceInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// MIME is the content-detected MIME type, e.g. "image/jpeg".
	MIME string `json:"mime"`

	// Format is the codec derived from MIME.
	Format Format `json:"format"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Probe returns dimensions, type and size of the image at path.
//
// Parameters:
//   - path: Path to the image file.
//
// Returns:
//   - *SourceInfo: Metadata about the image.
//   - error: ErrIO if the file cannot be read, ErrUnsupportedFormat if its
//     header cannot be decoded by any registered decoder.
//
// Dimensions come from image.DecodeConfig, so for JPEG sources they are the
// stored dimensions before any EXIF orientation is applied.
func Probe(path string) (*SourceInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to stat file: %v", ErrIO, err)
	}

	mime, err := DetectMIME(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open image: %v", ErrIO, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode header: %v", ErrUnsupportedFormat, err)
	}

	return &SourceInfo{
		Width:         cfg.Width,
		Height:        cfg.Height,
		MIME:          mime,
		Format:        FormatFromMIME(mime),
		FileSizeBytes: stat.Size(),
	}, nil
}

// RejectVector fails with ErrUnsupportedFormat when the source is an SVG,
// judged by its detected MIME type or, failing that, its extension.
func RejectVector(path, mime string) error {
	if FormatFromMIME(mime) == FormatSVG || FormatFromExtension(Extension(path)) == FormatSVG {
		return fmt.Errorf("%w: vector source %s", ErrUnsupportedFormat, path)
	}
	return nil
}
