// Package imagetransform applies a fixed set of raster edits to an image file
// through one of two interchangeable backends.
//
// # Backends
//
// Two backends implement the same operations:
//
//   - "bild": built on github.com/anthonynsimon/bild. Used when no backend
//     is requested. EXIF orientation is honored for JPEG sources.
//   - "imaging": built on github.com/disintegration/imaging. Preferred by
//     "auto". Orientation is corrected at decode time and StripImage drops
//     recorded metadata.
//
// A backend is available when it was compiled in (build tags nobild and
// noimaging remove them) and is not listed in IMAGE_TRANSFORM_DISABLE.
// Requests for an unavailable backend fall back to the other one; New fails
// with ErrUnsupportedLibrary only when neither can be used.
//
// # Usage
//
//	p, err := imagetransform.New("photo.jpg", imagetransform.WithBackend("auto"))
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	if err := p.StartProcess(); err != nil {
//	    return err
//	}
//	p.SetCompressionQuality(60).SaveByDate(time.Now())
//	if err := p.ResizeImage(800, 0); err != nil {
//	    return err
//	}
//	if err := p.WriteImage("out/photo.jpg"); err != nil {
//	    return err
//	}
//	fmt.Println(p.CreatedPath(false))
//
// # Geometry and Orientation
//
// Coordinates have their origin at the top-left corner. Positive rotation
// angles turn the image clockwise on both backends. Sources whose EXIF
// orientation is 3, 6 or 8 are turned upright on decode and their
// orientation is considered normal afterwards.
//
// # Animated Images
//
// Animated GIFs are coalesced into full frames on decode; every transform is
// applied to each frame with the same parameters, and frames are
// de-coalesced again when written as GIF. Other output formats receive the
// first frame.
//
// # Concurrency
//
// A Pipeline is not safe for concurrent use. Use one pipeline per image.
// Decoded pixels are held until Close (or DestroyImage) is called.
package imagetransform
