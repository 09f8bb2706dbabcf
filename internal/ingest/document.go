// Package ingest turns files on disk into documents ready for extraction.
package ingest

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/openfoia/foiagraph/internal/core/model"
)

const pageSeparator = "\n\n"

// DocumentID derives a document id from a file name.
func DocumentID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// assemble joins page texts with blank lines.
func assemble(id string, pages []model.Page) model.Document {
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	return model.Document{
		ID:    id,
		Text:  strings.Join(texts, pageSeparator),
		Pages: pages,
	}
}

// LoadFile picks a loader by extension: PDFs go through the text layer,
// anything else is read as plain text.
func LoadFile(ctx context.Context, path string, logger *zap.Logger) (model.Document, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return PDFTextSource{Logger: logger}.Load(ctx, path)
	}
	return LoadText(path)
}
