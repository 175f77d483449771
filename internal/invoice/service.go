package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zombor/invoice-analyzer/internal/extract"
	"github.com/zombor/invoice-analyzer/internal/preprocess"
	"github.com/zombor/invoice-analyzer/internal/scanning"
)

// Service handles invoice operations
type Service struct {
	store   Store
	scanner scanning.Scanner
}

// NewService creates a new Service
func NewService(store Store, scanner scanning.Scanner) *Service {
	return &Service{
		store:   store,
		scanner: scanner,
	}
}

// Preview runs the enhancement chain and returns the processed image as PNG.
// Undecodable input fails with preprocess.ErrDecode.
func (s *Service) Preview(upload Upload, cfg preprocess.Config) ([]byte, error) {
	processed, err := preprocess.TransformBytes(upload.Data, upload.ContentType, cfg)
	if err != nil {
		return nil, fmt.Errorf("preprocessing %s: %w", upload.Filename, err)
	}
	return preprocess.EncodePNG(processed)
}

// Analyze processes uploads strictly in order and returns the records for
// which both a date and a total were found. Those records, and only those,
// are appended to the store. A failing image is skipped without aborting the
// batch; only a store write failure is returned as an error.
func (s *Service) Analyze(uploads []Upload, cfg preprocess.Config) ([]Record, error) {
	results := make([]Record, 0, len(uploads))
	for _, upload := range uploads {
		record, ok := s.analyzeOne(upload, cfg)
		if ok {
			results = append(results, record)
		}
	}

	if len(results) == 0 {
		return results, nil
	}
	if err := s.store.Append(results); err != nil {
		return nil, fmt.Errorf("saving invoices: %w", err)
	}
	return results, nil
}

// ListInvoices returns every persisted record
func (s *Service) ListInvoices() []Record {
	return s.store.Load()
}

func (s *Service) analyzeOne(upload Upload, cfg preprocess.Config) (Record, bool) {
	processed, err := preprocess.TransformBytes(upload.Data, upload.ContentType, cfg)
	if err != nil {
		slog.Warn("Skipping image", "filename", upload.Filename, "error", err)
		return Record{}, false
	}

	text, err := s.scanner.ReadText(processed)
	if err != nil {
		slog.Warn("Skipping image, OCR failed", "filename", upload.Filename, "error", err)
		return Record{}, false
	}
	logOCRText(upload.Filename, text)

	fields := extract.All(text)
	if !fields.Complete() {
		slog.Info("Invoice fields not found",
			"filename", upload.Filename,
			"date_found", fields.Date.Found,
			"total_found", fields.Total.Found,
		)
		return Record{}, false
	}

	return Record{
		Filename: upload.Filename,
		Date:     fields.Date.Value,
		Total:    fields.Total.Value,
		Note:     strings.TrimSpace(text),
	}, true
}

// logOCRText logs the non-blank OCR lines, numbered, at debug level
func logOCRText(filename, text string) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	var b strings.Builder
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fmt.Fprintf(&b, "%03d: %s\n", i+1, line)
	}
	slog.Debug("OCR output", "filename", filename, "text", b.String())
}
