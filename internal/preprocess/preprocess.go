// Package preprocess normalizes invoice photos and scans for OCR.
//
// The chain always runs in the same order:
//
//  1. per-pixel scale-and-offset (contrast, brightness)
//  2. optional Gaussian smoothing of size 2*blur+1
//  3. luminance conversion
//  4. fixed 5x5 Gaussian denoise
//  5. CLAHE over an 8x8 tile grid with clip limit 1.0
//
// The output always has the dimensions of the decoded input.
package preprocess

import (
	"image"
)

const (
	// DenoiseKernelSize is the side of the fixed smoothing pass (stage 4)
	DenoiseKernelSize = 5
	// ClipLimit caps per-tile amplification in CLAHE (stage 5)
	ClipLimit = 1.0
	// TileGrid is the number of CLAHE tiles along each axis
	TileGrid = 8
)

// Transform runs the full enhancement chain over an already decoded image
func Transform(img image.Image, cfg Config) *image.Gray {
	adjusted := ScaleOffset(img, cfg.Contrast, cfg.Brightness)
	adjusted = GaussianBlur(adjusted, cfg.BlurRadius)
	gray := Luminance(adjusted)
	gray = Denoise(gray)
	return CLAHE(gray, ClipLimit, TileGrid, TileGrid)
}

// TransformBytes decodes raw upload bytes and runs the enhancement chain.
// Undecodable input fails with ErrDecode.
func TransformBytes(data []byte, contentType string, cfg Config) (*image.Gray, error) {
	img, err := Decode(data, contentType)
	if err != nil {
		return nil, err
	}
	return Transform(img, cfg), nil
}
