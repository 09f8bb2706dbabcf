package redaction

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// DefaultMaxPagePixels fits a letter page scanned at 600 dpi with room to spare.
const DefaultMaxPagePixels = 64_000_000

// ErrImageTooLarge is returned for page images over the pixel limit.
var ErrImageTooLarge = errors.New("page image exceeds pixel limit")

// PageImageSource yields rendered page images in page order.
type PageImageSource interface {
	EachPage(ctx context.Context, fn func(page int, img image.Image) error) error
}

// Images is an in-memory PageImageSource. Pages are numbered from 1.
type Images []image.Image

func (s Images) EachPage(ctx context.Context, fn func(page int, img image.Image) error) error {
	for i, img := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(i+1, img); err != nil {
			return err
		}
	}
	return nil
}

// DirImageSource reads pre-rendered page images (.png, .jpg, .jpeg) from a
// directory, in lexical file name order. Image headers are checked against
// MaxPixels (DefaultMaxPagePixels when zero) before any pixel data is decoded.
type DirImageSource struct {
	Dir       string
	MaxPixels int
}

func (s DirImageSource) EachPage(ctx context.Context, fn func(page int, img image.Image) error) error {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return fmt.Errorf("failed to read page image dir '%s': %w", s.Dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := decodeFile(filepath.Join(s.Dir, name), s.maxPixels())
		if err != nil {
			return err
		}
		if err := fn(i+1, img); err != nil {
			return err
		}
	}
	return nil
}

func (s DirImageSource) maxPixels() int {
	if s.MaxPixels <= 0 {
		return DefaultMaxPagePixels
	}
	return s.MaxPixels
}

func decodeFile(path string, maxPixels int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page image '%s': %w", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read page image header '%s': %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxPixels/cfg.Height {
		return nil, fmt.Errorf("%w: '%s' is %dx%d", ErrImageTooLarge, path, cfg.Width, cfg.Height)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind page image '%s': %w", path, err)
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode page image '%s': %w", path, err)
	}
	return img, nil
}

// CountVisualRedactions estimates blacked-out regions. This is a coarse
// approximation: it measures the share of near-black pixels on each page and
// converts it to a count at one redaction per percent of dark area, on pages
// whose dark share exceeds the minimum ratio. It does not find regions, so
// dark photographs or heavy rules inflate the count and small redactions on
// light pages are missed.
func (d *Detector) CountVisualRedactions(ctx context.Context, pages PageImageSource) (int, error) {
	total := 0
	err := pages.EachPage(ctx, func(page int, img image.Image) error {
		ratio := d.darkRatio(img)
		if ratio > d.minDarkRatio {
			n := int(ratio * 100)
			total += n
			d.logger.Debug("Dark area on page",
				zap.Int("page", page),
				zap.Float64("dark_ratio", ratio),
				zap.Int("estimated_redactions", n))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (d *Detector) darkRatio(img image.Image) float64 {
	b := img.Bounds()
	area := b.Dx() * b.Dy()
	if area <= 0 {
		return 0
	}

	dark := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if g.Y < d.darkThreshold {
				dark++
			}
		}
	}
	return float64(dark) / float64(area)
}
