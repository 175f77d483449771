package invoice

// Record is one analyzed invoice. Records are only produced, and persisted,
// when both the date and the total were found.
type Record struct {
	Filename string `json:"filename"`
	Date     string `json:"date"`
	Total    string `json:"total"`
	Note     string `json:"note"` // full OCR text
}

// Upload is a single image submitted for analysis or preview
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}
