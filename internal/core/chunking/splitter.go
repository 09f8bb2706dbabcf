// Package chunking splits document text into paragraph-aligned chunks sized
// for a single extraction call.
package chunking

import (
	"strings"
	"unicode/utf8"
)

// ParagraphSeparator delimits paragraphs. Chunks joined with it reproduce
// the original text.
const ParagraphSeparator = "\n\n"

// DefaultMaxChars is used when a non-positive size is configured.
const DefaultMaxChars = 8000

var sepLen = utf8.RuneCountInString(ParagraphSeparator)

// Splitter partitions text without ever cutting inside a paragraph.
type Splitter struct {
	MaxChars int
}

func NewSplitter(maxChars int) *Splitter {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Splitter{MaxChars: maxChars}
}

// Split returns the ordered chunks of text. Lengths are counted in runes.
// A chunk exceeds MaxChars only when it holds a single paragraph that is
// itself too long. Runs of blank lines are packed like any other paragraph,
// so a chunk may be whitespace only. A lone blank line joins the previous
// chunk or an oversized neighbour; when neither can take it, it becomes an
// empty chunk. Empty text yields no chunks.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= s.MaxChars {
		return []string{text}
	}

	var (
		chunks  []string
		current []string
		curLen  int
	)

	reset := func() {
		current = nil
		curLen = 0
	}
	flush := func() {
		chunks = append(chunks, strings.Join(current, ParagraphSeparator))
		reset()
	}
	// attachBlank moves a lone blank line onto the previous chunk when that
	// keeps it within bounds, or when that chunk is already an oversized
	// single paragraph.
	attachBlank := func() bool {
		if len(current) != 1 || current[0] != "" || len(chunks) == 0 {
			return false
		}
		last := len(chunks) - 1
		n := utf8.RuneCountInString(chunks[last])
		if n+sepLen > s.MaxChars && n <= s.MaxChars {
			return false
		}
		chunks[last] += ParagraphSeparator
		reset()
		return true
	}

	for _, para := range strings.Split(text, ParagraphSeparator) {
		paraLen := utf8.RuneCountInString(para)
		if len(current) > 0 && curLen+sepLen+paraLen > s.MaxChars {
			loneBlank := len(current) == 1 && current[0] == ""
			switch {
			case !loneBlank:
				flush()
			case attachBlank():
			case paraLen > s.MaxChars:
				// rides along with the oversized paragraph
			default:
				flush()
			}
		}
		if len(current) > 0 {
			curLen += sepLen
		}
		current = append(current, para)
		curLen += paraLen
	}
	if !attachBlank() {
		flush()
	}

	return chunks
}
