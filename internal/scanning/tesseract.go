package scanning

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"
	"strings"
	"time"

	"github.com/zombor/invoice-analyzer/internal/preprocess"
)

// Tesseract implements the Scanner interface by running the tesseract binary.
// The binary path is fixed at construction.
type Tesseract struct {
	binaryPath string
	language   string
	timeout    time.Duration
}

// NewTesseract creates a Tesseract scanner for the binary at binaryPath
// (looked up on PATH when it has no slash).
func NewTesseract(binaryPath, language string) (*Tesseract, error) {
	if binaryPath == "" {
		binaryPath = "tesseract"
	}
	if language == "" {
		language = "eng"
	}

	resolved, err := exec.LookPath(binaryPath)
	if err != nil {
		return nil, fmt.Errorf("locating tesseract binary %q: %w", binaryPath, err)
	}

	return &Tesseract{
		binaryPath: resolved,
		language:   language,
		timeout:    60 * time.Second,
	}, nil
}

// BinaryPath returns the resolved path of the OCR binary
func (t *Tesseract) BinaryPath() string {
	return t.binaryPath
}

// ReadText pipes img as PNG through "tesseract stdin stdout"
func (t *Tesseract) ReadText(img image.Image) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	data, err := preprocess.EncodePNG(img)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, t.binaryPath, "stdin", "stdout", "-l", t.language)
	cmd.Stdin = bytes.NewReader(data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running tesseract: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// Close is a no-op; every call runs its own process
func (t *Tesseract) Close() error {
	return nil
}
