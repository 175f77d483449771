package invoice

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/zombor/invoice-analyzer/internal/preprocess"
)

// maxUploadSize bounds a whole request (high-resolution phone photos add up)
const maxUploadSize = int64(50 << 20) // 50MB

// maxMemory is how much of a multipart body is kept in memory before spilling to disk
const maxMemory = int64(32 << 20)

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON writes v as a JSON response
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// jsonError writes an {"error": message} response
func jsonError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}

// parseUpload parses a multipart body. Requests that are not multipart are
// not an error; they simply carry no files.
func parseUpload(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	err := r.ParseMultipartForm(maxMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

// uploadErrorMessage turns a form parsing error into a user-facing message
func uploadErrorMessage(err error) string {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return "Upload is too large. Maximum size is 50MB. Please compress or resize your images."
	}
	return "Error parsing form"
}

// formLookup reports the submitted value of a form field and whether it was supplied
func formLookup(r *http.Request) func(string) (string, bool) {
	return func(name string) (string, bool) {
		values, ok := r.PostForm[name]
		if !ok || len(values) == 0 {
			return "", false
		}
		return values[0], true
	}
}

// readUpload reads one multipart file into memory
func readUpload(fh *multipart.FileHeader) (Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return Upload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Upload{}, err
	}
	return Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// uploadedFiles returns the files submitted under field, in submission order
func uploadedFiles(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[field]
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleListInvoices returns every saved invoice
func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ListInvoices())
}

// handlePreview returns the processed version of a single image as PNG
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if err := parseUpload(w, r); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		jsonError(w, uploadErrorMessage(err), http.StatusBadRequest)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	files := uploadedFiles(r, "image")
	if len(files) == 0 {
		jsonError(w, "No file uploaded", http.StatusBadRequest)
		return
	}

	cfg, err := preprocess.ParseConfig(formLookup(r))
	if err != nil {
		slog.Warn("Invalid preview parameters", "error", err)
		jsonError(w, "Invalid parameters", http.StatusBadRequest)
		return
	}

	upload, err := readUpload(files[0])
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", files[0].Filename)
		jsonError(w, "Error reading file", http.StatusInternalServerError)
		return
	}

	data, err := s.service.Preview(upload, cfg)
	if err != nil {
		slog.Error("Error processing preview", "filename", upload.Filename, "error", err)
		jsonError(w, "Processing failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

// handleAnalyze extracts date and total from every uploaded image and saves
// the complete results. Malformed parameters fall back to the defaults.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := parseUpload(w, r); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		jsonError(w, uploadErrorMessage(err), http.StatusBadRequest)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	cfg, err := preprocess.ParseConfig(formLookup(r))
	if err != nil {
		slog.Warn("Invalid analyze parameters, using defaults", "error", err)
		cfg = preprocess.DefaultConfig()
	}

	files := uploadedFiles(r, "images")
	uploads := make([]Upload, 0, len(files))
	for _, fh := range files {
		upload, err := readUpload(fh)
		if err != nil {
			slog.Warn("Skipping unreadable upload", "filename", fh.Filename, "error", err)
			continue
		}
		uploads = append(uploads, upload)
	}

	results, err := s.service.Analyze(uploads, cfg)
	if err != nil {
		slog.Error("Error analyzing invoices", "error", err)
		jsonError(w, "Failed to save invoices", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, results)
}
