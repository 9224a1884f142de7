// Package imaging normalizes uploaded produce photos for inference and display.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

const (
	// DisplayWidth is the width of the preview shown next to the upload form.
	DisplayWidth = 300
	// MaxPixels bounds the decoded size of an upload (width*height).
	MaxPixels = 40_000_000
	// maxAspect caps thumbnail height at maxAspect*maxWidth.
	maxAspect = 3
)

var (
	// ErrUnsupportedFormat is returned for anything that is not a JPEG or PNG.
	ErrUnsupportedFormat = errors.New("unsupported image format, expected jpeg or png")
	// ErrTooLarge is returned for images whose dimensions exceed MaxPixels.
	ErrTooLarge = errors.New("image dimensions too large")
)

// Upload is a decoded user image.
type Upload struct {
	Image  image.Image
	Format string // "jpeg" or "png"
	Size   int    // Original byte size
}

// Decode parses JPEG or PNG bytes.
func Decode(data []byte) (*Upload, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedFormat
		}
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if format != "jpeg" && format != "png" {
		return nil, ErrUnsupportedFormat
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", format, err)
	}
	return &Upload{Image: img, Format: format, Size: len(data)}, nil
}

// PNG re-encodes the upload as PNG, the format sent to inference.
func (u *Upload) PNG() ([]byte, error) {
	return encodePNG(u.Image)
}

// ThumbnailDataURL returns a PNG data URL of the upload scaled to maxWidth.
func (u *Upload) ThumbnailDataURL(maxWidth int) (string, error) {
	data, err := encodePNG(Thumbnail(u.Image, maxWidth))
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Thumbnail scales img to maxWidth keeping its aspect ratio. Images already
// narrower than maxWidth are scaled up, as the preview column has a fixed width.
// Very tall images are bounded by a height of 3*maxWidth instead.
func Thumbnail(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || maxWidth <= 0 {
		return img
	}
	maxHeight := maxAspect * maxWidth
	width := maxWidth
	height := b.Dy() * maxWidth / b.Dx()
	if height > maxHeight {
		height = maxHeight
		width = max(b.Dx()*maxHeight/b.Dy(), 1)
	}
	height = max(height, 1)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
