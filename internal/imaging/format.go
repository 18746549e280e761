package imaging

import (
	"path/filepath"
	"strings"
)

// Format identifies an image codec.
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatGIF     Format = "gif"
	FormatWebP    Format = "webp"
	FormatBMP     Format = "bmp"
	FormatSVG     Format = "svg"
	FormatUnknown Format = "unknown"
)

// Extension returns the lowercase extension of path without the leading dot.
func Extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// FormatFromExtension maps a file extension (with or without dot) to a Format.
//
// Unrecognized extensions map to FormatUnknown; writers treat that as JPEG.
func FormatFromExtension(ext string) Format {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return FormatJPEG
	case "png":
		return FormatPNG
	case "gif":
		return FormatGIF
	case "webp":
		return FormatWebP
	case "bmp":
		return FormatBMP
	case "svg", "svgz":
		return FormatSVG
	default:
		return FormatUnknown
	}
}

// FormatFromMIME maps a MIME type such as "image/png" to a Format.
func FormatFromMIME(mime string) Format {
	switch MIMESubtype(mime) {
	case "jpeg", "jpg", "pjpeg":
		return FormatJPEG
	case "png":
		return FormatPNG
	case "gif":
		return FormatGIF
	case "webp":
		return FormatWebP
	case "bmp", "x-ms-bmp":
		return FormatBMP
	case "svg+xml", "svg":
		return FormatSVG
	default:
		return FormatUnknown
	}
}

// OutputFormat returns the encoder used for a destination path: the format
// of its extension, or JPEG when the extension is not a writable raster type.
func OutputFormat(path string) Format {
	switch f := FormatFromExtension(Extension(path)); f {
	case FormatUnknown, FormatSVG:
		return FormatJPEG
	default:
		return f
	}
}
