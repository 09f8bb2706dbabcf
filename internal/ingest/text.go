package ingest

import (
	"fmt"
	"os"
	"strings"

	"github.com/openfoia/foiagraph/internal/core/model"
)

// LoadText reads a UTF-8 text file. Form feeds, as written by pdftotext and
// most OCR exporters, mark page boundaries.
func LoadText(path string) (model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to read text file '%s': %w", path, err)
	}
	return FromText(DocumentID(path), string(data)), nil
}

// FromText builds a document from raw text, splitting pages on form feeds.
func FromText(id, text string) model.Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if !strings.Contains(text, "\f") {
		return model.Document{ID: id, Text: text}
	}

	var pages []model.Page
	for i, part := range strings.Split(text, "\f") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pages = append(pages, model.Page{Number: i + 1, Text: part})
	}
	return assemble(id, pages)
}
