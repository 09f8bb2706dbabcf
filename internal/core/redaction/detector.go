// Package redaction finds statutory exemption citations in released text and
// estimates how much of the page imagery is blacked out.
package redaction

import (
	"context"
	"regexp"

	"github.com/openfoia/foiagraph/internal/core/model"
	"github.com/openfoia/foiagraph/internal/metrics"
	"go.uber.org/zap"
)

type exemption struct {
	code        string
	description string
	pattern     *regexp.Regexp
}

// exemptions is matched case-insensitively and reported in this order.
// Bare (b)(7) only counts when no sub-clause follows it.
var exemptions = []exemption{
	{"(b)(1)", "National security", regexp.MustCompile(`(?i)\(b\)\(1\)`)},
	{"(b)(2)", "Internal personnel rules", regexp.MustCompile(`(?i)\(b\)\(2\)`)},
	{"(b)(3)", "Statutory exemption", regexp.MustCompile(`(?i)\(b\)\(3\)`)},
	{"(b)(4)", "Trade secrets", regexp.MustCompile(`(?i)\(b\)\(4\)`)},
	{"(b)(5)", "Deliberative process", regexp.MustCompile(`(?i)\(b\)\(5\)`)},
	{"(b)(6)", "Personal privacy", regexp.MustCompile(`(?i)\(b\)\(6\)`)},
	{"(b)(7)", "Law enforcement", regexp.MustCompile(`(?i)\(b\)\(7\)(?:[^(]|$)`)},
	{"(b)(7)(A)", "Law enforcement - interference", regexp.MustCompile(`(?i)\(b\)\(7\)\(A\)`)},
	{"(b)(7)(B)", "Law enforcement - fair trial", regexp.MustCompile(`(?i)\(b\)\(7\)\(B\)`)},
	{"(b)(7)(C)", "Law enforcement - privacy", regexp.MustCompile(`(?i)\(b\)\(7\)\(C\)`)},
	{"(b)(7)(D)", "Law enforcement - confidential source", regexp.MustCompile(`(?i)\(b\)\(7\)\(D\)`)},
	{"(b)(7)(E)", "Law enforcement - techniques", regexp.MustCompile(`(?i)\(b\)\(7\)\(E\)`)},
	{"(b)(7)(F)", "Law enforcement - safety", regexp.MustCompile(`(?i)\(b\)\(7\)\(F\)`)},
	{"(b)(8)", "Financial institutions", regexp.MustCompile(`(?i)\(b\)\(8\)`)},
	{"(b)(9)", "Geological information", regexp.MustCompile(`(?i)\(b\)\(9\)`)},
}

// Codes returns every exemption code the detector recognises.
func Codes() []string {
	out := make([]string, len(exemptions))
	for i, e := range exemptions {
		out[i] = e.code
	}
	return out
}

type Options struct {
	// DarkThreshold is the grayscale level (0-255) below which a pixel is dark.
	DarkThreshold int
	// MinDarkRatio is the dark fraction a page must exceed to count at all.
	MinDarkRatio float64
	// MaxPagePixels caps the width*height of a page image read from disk.
	MaxPagePixels int
	Logger        *zap.Logger
}

type Detector struct {
	darkThreshold uint8
	minDarkRatio  float64
	maxPagePixels int
	logger        *zap.Logger
}

func NewDetector(opts Options) *Detector {
	if opts.DarkThreshold <= 0 || opts.DarkThreshold > 255 {
		opts.DarkThreshold = 30
	}
	if opts.MinDarkRatio <= 0 {
		opts.MinDarkRatio = 0.01
	}
	if opts.MaxPagePixels <= 0 {
		opts.MaxPagePixels = DefaultMaxPagePixels
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Detector{
		darkThreshold: uint8(opts.DarkThreshold),
		minDarkRatio:  opts.MinDarkRatio,
		maxPagePixels: opts.MaxPagePixels,
		logger:        opts.Logger,
	}
}

// DirPages reads page images from dir under the detector's size limit.
func (d *Detector) DirPages(dir string) DirImageSource {
	return DirImageSource{Dir: dir, MaxPixels: d.maxPagePixels}
}

// ScanText counts exemption citations in text.
func (d *Detector) ScanText(text string) model.RedactionSummary {
	summary := model.RedactionSummary{ExemptionsCited: []model.ExemptionCitation{}}
	for _, ex := range exemptions {
		n := len(ex.pattern.FindAllStringIndex(text, -1))
		if n == 0 {
			continue
		}
		summary.ExemptionsCited = append(summary.ExemptionsCited, model.ExemptionCitation{
			Code:        ex.code,
			Description: ex.description,
			Count:       n,
		})
		summary.TotalExemptionCitations += n
		metrics.ExemptionCitations.WithLabelValues(ex.code).Add(float64(n))
	}
	return summary
}

// Analyze scans text and, when pages is non-nil, estimates the number of
// visual redactions from the page imagery. VisualRedactionCount stays nil
// without imagery.
func (d *Detector) Analyze(ctx context.Context, text string, pages PageImageSource) (model.RedactionSummary, error) {
	summary := d.ScanText(text)
	if pages == nil {
		return summary, nil
	}

	count, err := d.CountVisualRedactions(ctx, pages)
	if err != nil {
		return summary, err
	}
	summary.VisualRedactionCount = &count
	return summary, nil
}
