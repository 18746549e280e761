// Package imaging provides the canvas model and the backend-neutral helpers
// both image backends build on.
//
// A Canvas holds one or more frames of 8-bit non-premultiplied RGBA pixels.
// Static images have a single frame; animated GIFs are coalesced on decode so
// every frame is a complete screen and transforms can run frame by frame.
// All coordinates are 0-based with (0,0) at the top-left corner, X increasing
// rightward and Y increasing downward.
//
// # Geometry
//
// CropRect, SquareRect and ResizeTarget compute the rectangles and output
// sizes used by the crop, square-crop and resize operations. Crops are
// clipped to the image bounds; resizes never upscale the width.
//
// # Orientation
//
// Orientation tracks whether pixels are stored upright. EXIF tags 3, 6 and 8
// map to 180 degree and quarter turns; RotateRightAngle performs those turns
// by exact pixel transposition.
//
// # Codecs
//
// Decoders for JPEG, PNG, GIF, WebP and BMP are registered with the image
// package on import. Source types are detected from file content with
// DetectMIME; the file extension only decides the output encoder.
//
// # Thread Safety
//
// A Canvas is not safe for concurrent use. The helper functions are
// stateless and can be called concurrently on different images.
//
// # Error Handling
//
// Errors wrap one of the sentinel values declared in errors.go, so callers
// can match them with errors.Is.
package imaging
