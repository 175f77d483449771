package invoice

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store defines the interface for the append-only invoice log
type Store interface {
	// Append adds records after the existing ones, preserving their order
	Append(records []Record) error

	// Load returns every stored record in append order. Missing or
	// unreadable storage yields an empty list.
	Load() []Record

	// Close releases the underlying storage
	Close() error
}

// JSONStore keeps every record in a single indented JSON array. Each append
// rewrites the whole file.
type JSONStore struct {
	path string
	// mu serializes the load-append-rewrite cycle within the process
	mu sync.Mutex
}

// NewJSONStore creates a JSONStore writing to path, creating its directory
func NewJSONStore(path string) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &JSONStore{path: path}, nil
}

// Path returns the location of the JSON file
func (s *JSONStore) Path() string {
	return s.path
}

// Load returns all stored records
func (s *JSONStore) Load() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		slog.Warn("Failed to load invoices", "path", s.path, "error", err)
		return []Record{}
	}
	return records
}

// Append loads the existing records, adds records at the end and replaces
// the file in one rename.
func (s *JSONStore) Append(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read()
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil:
	case errors.As(err, &syntaxErr) || errors.As(err, &typeErr):
		// Unparsable content is set aside rather than silently overwritten
		backup := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().UnixNano())
		if renameErr := os.Rename(s.path, backup); renameErr != nil {
			return fmt.Errorf("moving corrupt invoice file aside: %w", renameErr)
		}
		slog.Warn("Invoice file was corrupt, starting a new one", "path", s.path, "backup", backup)
		existing = []Record{}
	default:
		return fmt.Errorf("reading invoices: %w", err)
	}

	data, err := encodeRecords(append(existing, records...))
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("writing invoices: %w", err)
	}
	return nil
}

// Close is a no-op; the file is only open during reads and writes
func (s *JSONStore) Close() error {
	return nil
}

// read returns the stored records. A missing file is an empty store.
func (s *JSONStore) read() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding invoices: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// encodeRecords renders records as a 4-space indented array. Non-ASCII text
// and HTML characters are written as-is.
func encodeRecords(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("marshaling invoices: %w", err)
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data to a temp file next to path and renames it into place
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
