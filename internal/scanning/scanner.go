package scanning

import "image"

// Scanner turns a preprocessed invoice image into raw text. Implementations
// may return an empty string; noisy output is expected.
type Scanner interface {
	// ReadText runs OCR over img
	ReadText(img image.Image) (string, error)
	// Close closes the scanner and releases resources
	Close() error
}
