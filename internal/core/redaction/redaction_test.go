package redaction

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanText_CaseInsensitiveCounts(t *testing.T) {
	d := NewDetector(Options{})
	s := d.ScanText("Withheld under (b)(1). See also (b)(1) and (B)(6).")

	require.Len(t, s.ExemptionsCited, 2)
	assert.Equal(t, "(b)(1)", s.ExemptionsCited[0].Code)
	assert.Equal(t, "National security", s.ExemptionsCited[0].Description)
	assert.Equal(t, 2, s.ExemptionsCited[0].Count)
	assert.Equal(t, "(b)(6)", s.ExemptionsCited[1].Code)
	assert.Equal(t, 1, s.ExemptionsCited[1].Count)
	assert.Equal(t, 3, s.TotalExemptionCitations)
	assert.Nil(t, s.VisualRedactionCount)
}

func TestScanText_LawEnforcementSubclauses(t *testing.T) {
	d := NewDetector(Options{})
	s := d.ScanText("(b)(7)(C) (b)(7)(c) (b)(7)(E) (b)(7) (b)(7), and (b)(7)")

	got := map[string]int{}
	for _, c := range s.ExemptionsCited {
		got[c.Code] = c.Count
	}
	assert.Equal(t, map[string]int{
		"(b)(7)":    3,
		"(b)(7)(C)": 2,
		"(b)(7)(E)": 1,
	}, got)
	assert.Equal(t, 6, s.TotalExemptionCitations)
	assert.Equal(t, []string{"(b)(7)", "(b)(7)(C)", "(b)(7)(E)"}, s.Codes())
}

func TestScanText_NoCitations(t *testing.T) {
	s := NewDetector(Options{}).ScanText("nothing withheld here (c)(1)")
	assert.Empty(t, s.ExemptionsCited)
	assert.NotNil(t, s.ExemptionsCited)
	assert.Zero(t, s.TotalExemptionCitations)
}

func TestCodes(t *testing.T) {
	codes := Codes()
	assert.Contains(t, codes, "(b)(9)")
	assert.Contains(t, codes, "(b)(7)(F)")
	assert.Len(t, codes, 15)
}

// page returns a white 100x100 page with the first darkRows rows black.
func page(darkRows int) image.Image {
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			v := uint8(255)
			if y < darkRows {
				v = 0
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestCountVisualRedactions(t *testing.T) {
	d := NewDetector(Options{})
	n, err := d.CountVisualRedactions(context.Background(), Images{page(5), page(0), page(1), page(10)})
	require.NoError(t, err)
	// 5% -> 5, blank -> 0, exactly 1% is not above the minimum, 10% -> 10
	assert.Equal(t, 15, n)
}

func TestCountVisualRedactions_Threshold(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 40, B: 40, A: 255})
		}
	}

	n, err := NewDetector(Options{}).CountVisualRedactions(context.Background(), Images{img})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = NewDetector(Options{DarkThreshold: 50}).CountVisualRedactions(context.Background(), Images{img})
	require.NoError(t, err)
	assert.Equal(t, 100, n)
}

func TestAnalyze_WithImages(t *testing.T) {
	d := NewDetector(Options{})
	s, err := d.Analyze(context.Background(), "(b)(5)", Images{page(5)})
	require.NoError(t, err)
	require.NotNil(t, s.VisualRedactionCount)
	assert.Equal(t, 5, *s.VisualRedactionCount)
	assert.Equal(t, 1, s.TotalExemptionCitations)
}

type failingSource struct{}

func (failingSource) EachPage(ctx context.Context, fn func(int, image.Image) error) error {
	return errors.New("renderer unavailable")
}

func TestAnalyze_SourceError(t *testing.T) {
	s, err := NewDetector(Options{}).Analyze(context.Background(), "(b)(3)", failingSource{})
	assert.Error(t, err)
	assert.Equal(t, 1, s.TotalExemptionCitations)
	assert.Nil(t, s.VisualRedactionCount)
}

func TestDirImageSource(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "page-002.png"), page(10))
	writePNG(t, filepath.Join(dir, "page-001.png"), page(5))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o600))

	var seen []int
	var dark []int
	err := DirImageSource{Dir: dir}.EachPage(context.Background(), func(p int, img image.Image) error {
		seen = append(seen, p)
		g := color.GrayModel.Convert(img.At(0, 7)).(color.Gray)
		dark = append(dark, int(g.Y))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, seen)
	// row 7 is white on the 5%-page and black on the 10%-page
	assert.Equal(t, []int{255, 0}, dark)

	n, err := NewDetector(Options{}).CountVisualRedactions(context.Background(), DirImageSource{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 15, n)
}

func TestDirImageSource_MissingDir(t *testing.T) {
	err := DirImageSource{Dir: filepath.Join(t.TempDir(), "nope")}.EachPage(context.Background(), func(int, image.Image) error { return nil })
	assert.Error(t, err)
}

func TestDirImageSource_RejectsOversizedPagesBeforeDecoding(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "page-001.png"), page(5))

	d := NewDetector(Options{MaxPagePixels: 5000})
	src := d.DirPages(dir)
	assert.Equal(t, 5000, src.MaxPixels)

	called := false
	err := src.EachPage(context.Background(), func(int, image.Image) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.False(t, called)

	n, err := NewDetector(Options{}).CountVisualRedactions(context.Background(), NewDetector(Options{}).DirPages(dir))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestDirImageSource_CorruptHeader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page-001.png"), []byte("not an image"), 0o600))

	err := DirImageSource{Dir: dir}.EachPage(context.Background(), func(int, image.Image) error { return nil })
	assert.ErrorContains(t, err, "failed to read page image header")
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}
