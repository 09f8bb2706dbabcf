package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/openfoia/foiagraph/internal/core/model"
)

// PDFTextSource reads the embedded text layer of a PDF. Scanned pages with no
// text layer come back empty and are left out.
type PDFTextSource struct {
	Logger *zap.Logger
}

func (s PDFTextSource) Load(ctx context.Context, path string) (model.Document, error) {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]model.Page, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return model.Document{}, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("Skipping unreadable PDF page", zap.String("path", path), zap.Int("page", i), zap.Error(err))
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, model.Page{Number: i, Text: text})
	}

	logger.Debug("Loaded PDF text layer",
		zap.String("path", path),
		zap.Int("pages", total),
		zap.Int("pages_with_text", len(pages)))
	return assemble(DocumentID(path), pages), nil
}
