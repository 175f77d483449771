//go:build !gosseract

package scanning

import (
	"errors"
	"image"
)

// ErrGosseractNotEnabled is returned when the binary was built without the
// gosseract tag. Rebuild with:
//
//	go build -tags gosseract ./cmd/invoice-analyzer
var ErrGosseractNotEnabled = errors.New("in-process tesseract support not enabled (build with -tags gosseract)")

// Gosseract is a placeholder for the in-process Tesseract scanner
type Gosseract struct{}

// NewGosseract always fails in builds without the gosseract tag
func NewGosseract(language string) (*Gosseract, error) {
	return nil, ErrGosseractNotEnabled
}

func (g *Gosseract) ReadText(img image.Image) (string, error) {
	return "", ErrGosseractNotEnabled
}

func (g *Gosseract) Close() error {
	return nil
}
