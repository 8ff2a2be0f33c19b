// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // registers the WebP decoder with image.Decode
)

// ImageConverter decodes any registered image format (JPEG, PNG, GIF, BMP,
// TIFF, WebP) and encodes it as Format.
type ImageConverter struct {
	Format imaging.Format
}

// NewImageConverter returns a converter encoding to the format named by ext
// (".png", ".jpg", ".gif", ".tif", ".bmp").
func NewImageConverter(ext string) (*ImageConverter, error) {
	f, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, fmt.Errorf("unsupported target format %q: %w", ext, err)
	}
	return &ImageConverter{Format: f}, nil
}

// Convert decodes r and encodes the image to w.
func (c *ImageConverter) Convert(r io.Reader, w io.Writer) error {
	img, err := imaging.Decode(r)
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}
	if err := imaging.Encode(w, img, c.Format); err != nil {
		return fmt.Errorf("encoding %s: %w", c.Format, err)
	}
	return nil
}
