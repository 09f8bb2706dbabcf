package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/openfoia/foiagraph/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "FBI-2024-001.txt")
	require.NoError(t, os.WriteFile(path, []byte("John Smith works at Acme Corp.\r\n\r\nSigned."), 0o600))

	doc, err := LoadText(path)
	require.NoError(t, err)
	assert.Equal(t, "FBI-2024-001", doc.ID)
	assert.Equal(t, "John Smith works at Acme Corp.\n\nSigned.", doc.Text)
	assert.Empty(t, doc.Pages)
}

func TestLoadText_Missing(t *testing.T) {
	_, err := LoadText(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestFromText_FormFeedPages(t *testing.T) {
	doc := FromText("d", "page one text\n\fpage two\f\f  page four ")

	assert.Equal(t, []model.Page{
		{Number: 1, Text: "page one text"},
		{Number: 2, Text: "page two"},
		{Number: 4, Text: "page four"},
	}, doc.Pages)
	assert.Equal(t, "page one text\n\npage two\n\npage four", doc.Text)
}

func TestPDFTextSource_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not a pdf"), 0o600))

	_, err := PDFTextSource{}.Load(context.Background(), path)
	assert.ErrorContains(t, err, "opening PDF")
}

func TestDocumentID(t *testing.T) {
	assert.Equal(t, "release", DocumentID("/data/in/release.pdf"))
	assert.Equal(t, "archive.tar", DocumentID("archive.tar.gz"))
}

func TestLoadFile_DispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "memo.txt")
	require.NoError(t, os.WriteFile(txt, []byte("Acme Corp"), 0o600))
	doc, err := LoadFile(context.Background(), txt, nil)
	require.NoError(t, err)
	assert.Equal(t, "memo", doc.ID)
	assert.Equal(t, "Acme Corp", doc.Text)

	pdfPath := filepath.Join(dir, "scan.PDF")
	require.NoError(t, os.WriteFile(pdfPath, []byte("not really a pdf"), 0o600))
	_, err = LoadFile(context.Background(), pdfPath, nil)
	assert.ErrorContains(t, err, "opening PDF")
}
