// Package canonical turns arbitrary uploaded photo bytes into the one
// canonical representation the rest of the system works with: an upright,
// bounded, JPEG re-encoding. The transformation is stateless and
// deterministic for identical input bytes.
package canonical

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"

	"stillwriter/internal/apperr"
)

// ContentType is the content type of every canonical image.
const ContentType = "image/jpeg"

// jpegQuality is the fixed re-encode quality for canonical images.
const jpegQuality = 85

// allowedContentTypes is the closed set of upload types accepted before any
// hashing, storage, or model work happens.
var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/heic": {},
	"image/heif": {},
}

// AllowedContentType reports whether the declared upload content type is in
// the accepted set.
func AllowedContentType(ct string) bool {
	_, ok := allowedContentTypes[ct]
	return ok
}

// Canonicalizer re-encodes uploads as upright JPEGs bounded by MaxWidth and
// MaxHeight. The zero value is not usable; construct with New.
type Canonicalizer struct {
	maxWidth  int
	maxHeight int
}

// New returns a Canonicalizer bounding output dimensions to maxWidth x maxHeight.
func New(maxWidth, maxHeight int) *Canonicalizer {
	return &Canonicalizer{maxWidth: maxWidth, maxHeight: maxHeight}
}

// Canonicalize decodes data, applies the EXIF orientation fix, bounds the
// dimensions preserving aspect ratio (never upscaling), and re-encodes as
// JPEG. It returns the canonical bytes and final dimensions.
func (c *Canonicalizer) Canonicalize(data []byte) ([]byte, int, int, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", apperr.ErrImageDecode, err)
	}

	// Rotation is applied before resizing so the bounds check sees the
	// display geometry.
	img = applyOrientation(img, orientation(data))

	// Collapse alpha/paletted/CMYK modes to a plain tri-channel raster before
	// re-encoding.
	nrgba := imaging.Clone(img)

	width := nrgba.Bounds().Dx()
	height := nrgba.Bounds().Dy()

	// Uniform downscale only; images already within bounds keep their size.
	widthRatio := float64(c.maxWidth) / float64(width)
	heightRatio := float64(c.maxHeight) / float64(height)
	ratio := min(widthRatio, heightRatio)

	var out image.Image = nrgba
	if ratio < 1 {
		newWidth := int(float64(width) * ratio)
		newHeight := int(float64(height) * ratio)
		out = imaging.Resize(nrgba, newWidth, newHeight, imaging.Lanczos)
		width, height = newWidth, newHeight
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, 0, 0, fmt.Errorf("%w: encode: %v", apperr.ErrImageDecode, err)
	}

	log.Debug().
		Int("width", width).
		Int("height", height).
		Int("bytes", buf.Len()).
		Msg("Canonicalized image")

	return buf.Bytes(), width, height, nil
}

// applyOrientation rotates the decoded image upright according to the EXIF
// orientation tag. Only the pure-rotation values are handled; the mirrored
// variants do not occur in photos from real cameras.
func applyOrientation(img image.Image, orient uint16) image.Image {
	switch orient {
	case 3:
		return imaging.Rotate180(img)
	case 6:
		return imaging.Rotate270(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

// orientation reads the EXIF orientation tag from the original bytes.
// Missing or unreadable metadata is not an error; 0 means "leave as is".
func orientation(data []byte) uint16 {
	exifData, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil {
		log.Debug().Err(err).Msg("No readable EXIF metadata, skipping orientation fix")
		return 0
	}
	return uint16(exifData.Orientation)
}
