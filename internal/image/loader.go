// Package image decodes and downsamples raster images into the fixed-size
// pixel samples the extraction pipeline consumes.
package image

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/brandtint/brandtint/internal/colour"
)

const (
	// SampleSize is the fixed square resolution extraction operates on.
	// Downscaling to it bounds clustering cost regardless of input size.
	SampleSize = 100

	// MaxImageBytes caps the size of an encoded image payload.
	MaxImageBytes = 20 << 20

	// MaxDimension caps either side of a decoded image.
	MaxDimension = 8192
)

// DecodePixels validates and decodes an encoded raster image and returns
// its pixels downsampled to SampleSize x SampleSize in row-major order.
// Supported formats: JPEG, PNG, GIF, WebP. Payloads beyond the byte or
// dimension ceilings are rejected before full decode.
func DecodePixels(data []byte) ([]colour.RGB, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("image too large: %d bytes (maximum: %d)", len(data), MaxImageBytes)
	}

	// Check dimensions from the header before decoding pixel data.
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unsupported or invalid image format: %w", err)
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return nil, fmt.Errorf("image dimensions %dx%d exceed maximum of %d", cfg.Width, cfg.Height, MaxDimension)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("image has zero dimension")
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	return SamplePixels(img), nil
}

// LoadFilePixels loads an image file and returns its downsampled pixels.
func LoadFilePixels(path string) ([]colour.RGB, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if info.Size() > MaxImageBytes {
		return nil, fmt.Errorf("image too large: %d bytes (maximum: %d)", info.Size(), MaxImageBytes)
	}

	data, err := os.ReadFile(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}

	return DecodePixels(data)
}

// SamplePixels downsamples a decoded image to SampleSize x SampleSize and
// returns the pixels in row-major order.
func SamplePixels(img image.Image) []colour.RGB {
	scaled := image.NewRGBA(image.Rect(0, 0, SampleSize, SampleSize))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	pixels := make([]colour.RGB, 0, SampleSize*SampleSize)
	for y := 0; y < SampleSize; y++ {
		for x := 0; x < SampleSize; x++ {
			r, g, b, _ := scaled.At(x, y).RGBA()
			pixels = append(pixels, colour.RGB{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
			})
		}
	}
	return pixels
}
