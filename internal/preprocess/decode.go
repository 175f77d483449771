package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ErrDecode is returned when the uploaded bytes are not a readable image
var ErrDecode = errors.New("image could not be decoded")

// ErrTooLarge is wrapped together with ErrDecode when the declared image size
// exceeds MaxPixels
var ErrTooLarge = errors.New("image exceeds the pixel limit")

// MaxPixels bounds width*height of a decoded upload. The check runs on the
// header before any pixel buffer is allocated.
const MaxPixels = 1 << 26

// pdfDPI is the resolution PDF pages are rasterized at
const pdfDPI = 300.0

type format int

const (
	formatRaster format = iota
	formatPDF
	formatHEIC
)

// Decode turns raw upload bytes into an image. PDFs are rasterized from their
// first page and HEIC/HEIF photos are decoded in pure Go. The format is taken
// from the file signature; the content type only decides when the bytes are
// not recognized. Every failure wraps ErrDecode.
func Decode(data []byte, contentType string) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}

	var (
		img image.Image
		err error
	)
	switch detectFormat(data, strings.ToLower(strings.TrimSpace(contentType))) {
	case formatPDF:
		img, err = pdfFirstPage(data)
	case formatHEIC:
		img, err = decodeHEIC(data)
	default:
		img, err = decodeRaster(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: zero-sized image", ErrDecode)
	}
	return img, nil
}

func detectFormat(data []byte, mimeType string) format {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return formatPDF
	case isHEICFormat(data):
		return formatHEIC
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		return formatRaster
	}

	switch {
	case mimeType == "application/pdf":
		return formatPDF
	case isHEICMimeType(mimeType):
		return formatHEIC
	}
	return formatRaster
}

// checkPixels rejects images whose declared size exceeds MaxPixels
func checkPixels(w, h int) error {
	if int64(w)*int64(h) > MaxPixels {
		return fmt.Errorf("%w: %dx%d", ErrTooLarge, w, h)
	}
	return nil
}

func decodeRaster(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := checkPixels(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	// Phone photos carry their rotation in EXIF
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

func decodeHEIC(data []byte) (image.Image, error) {
	cfg, err := heic.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := checkPixels(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	return heic.Decode(bytes.NewReader(data))
}

// EncodePNG encodes an image as PNG bytes
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfFirstPage renders the first page of a PDF (invoices are usually single page)
func pdfFirstPage(data []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	// Page bounds are in points (1/72 inch)
	bound, err := doc.Bound(0)
	if err != nil {
		return nil, fmt.Errorf("reading PDF page size: %w", err)
	}
	scale := pdfDPI / 72.0
	if err := checkPixels(int(float64(bound.Dx())*scale), int(float64(bound.Dy())*scale)); err != nil {
		return nil, err
	}

	img, err := doc.ImageDPI(0, pdfDPI)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

// isHEICFormat checks for an ftyp box with a HEIC-family brand at offset 4
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}
