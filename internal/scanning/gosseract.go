//go:build gosseract

package scanning

import (
	"fmt"
	"image"

	"github.com/otiai10/gosseract/v2"
	"github.com/zombor/invoice-analyzer/internal/preprocess"
)

// Gosseract implements the Scanner interface with the in-process Tesseract
// bindings. A fresh client is used per image since clients are not safe for
// concurrent use.
type Gosseract struct {
	language      string
	clientFactory func() *gosseract.Client
}

// NewGosseract creates a Gosseract scanner. It is only available in builds
// tagged gosseract, since the bindings need the Tesseract and Leptonica
// headers at compile time.
func NewGosseract(language string) (*Gosseract, error) {
	if language == "" {
		language = "eng"
	}
	return &Gosseract{
		language:      language,
		clientFactory: gosseract.NewClient,
	}, nil
}

// ReadText runs OCR over img
func (g *Gosseract) ReadText(img image.Image) (string, error) {
	data, err := preprocess.EncodePNG(img)
	if err != nil {
		return "", err
	}

	client := g.clientFactory()
	defer client.Close()

	if err := client.SetLanguage(g.language); err != nil {
		return "", fmt.Errorf("setting language %q: %w", g.language, err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("setting image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognizing text: %w", err)
	}
	return text, nil
}

// Close is a no-op; clients are closed after every image
func (g *Gosseract) Close() error {
	return nil
}
