package model

import "time"

// Page is the text of one source page. Number is 1-based.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Document is plain text handed over by ingestion/OCR. When Pages is set,
// Text is expected to be the pages joined by blank lines.
type Document struct {
	ID       string `json:"id"`
	Context  string `json:"context,omitempty"`
	Text     string `json:"text"`
	Pages    []Page `json:"pages,omitempty"`
	ImageDir string `json:"image_dir,omitempty"`
}

// DocumentRecord is what gets persisted after a document is processed.
type DocumentRecord struct {
	ID          string             `json:"id"`
	Context     string             `json:"context,omitempty"`
	Summary     string             `json:"summary"`
	Extraction  ExtractionMetadata `json:"extraction"`
	Redaction   RedactionSummary   `json:"redaction"`
	Mentions    []*ExtractedEntity `json:"mentions,omitempty"`
	ProcessedAt time.Time          `json:"processed_at"`
}
