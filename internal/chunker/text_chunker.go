package chunker

import (
	"errors"
	"strconv"
	"unicode"

	"adsight/internal/domain"
)

// Defaults for the chunk window, in runes.
const (
	DefaultMaxSize = 500
	DefaultOverlap = 50
)

// ErrOverlapTooLarge is returned when the configured overlap is not smaller
// than the maximum chunk size.
var ErrOverlapTooLarge = errors.New("chunk overlap must be smaller than max chunk size")

// TextChunker splits a document into overlapping windows of at most maxSize
// runes. Cut points snap to the best boundary available inside the window:
// paragraph break, then line break, then sentence-ending punctuation, then
// whitespace, then a hard cut. The next window starts overlap runes before
// the previous cut, so no boundary is fully lost between chunks.
type TextChunker struct {
	maxSize int
	overlap int
}

// NewTextChunker creates a chunker. Zero values select the defaults.
func NewTextChunker(maxSize, overlap int) (*TextChunker, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= maxSize {
		return nil, ErrOverlapTooLarge
	}
	return &TextChunker{maxSize: maxSize, overlap: overlap}, nil
}

// Chunk splits the document text. An empty document yields no chunks; a
// document within the size limit yields exactly one chunk equal to the text.
func (c *TextChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	runes := []rune(document.Text)
	if len(runes) == 0 {
		return nil, nil
	}

	var chunks []domain.Chunk
	emit := func(start, end, idx int) {
		chunks = append(chunks, domain.Chunk{
			DocumentID: document.ID,
			ChunkID:    document.ID + ":" + strconv.Itoa(idx),
			Text:       string(runes[start:end]),
			Index:      idx,
			Metadata:   document.Metadata,
		})
	}

	start, idx := 0, 0
	for start < len(runes) {
		if len(runes)-start <= c.maxSize {
			emit(start, len(runes), idx)
			break
		}
		cut := bestCut(runes, start, start+c.maxSize)
		emit(start, cut, idx)
		idx++
		// Back up by the overlap, but always make forward progress even
		// when the boundary landed inside the overlap region.
		next := cut - c.overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks, nil
}

// bestCut picks a cut position in (start, end], preferring the latest
// boundary of the strongest class. The boundary character(s) stay with the
// earlier chunk so that concatenating chunks reconstructs the source.
func bestCut(runes []rune, start, end int) int {
	// Paragraph break.
	for p := end - 2; p > start; p-- {
		if runes[p] == '\n' && runes[p+1] == '\n' {
			return p + 2
		}
	}
	// Line break.
	for p := end - 1; p > start; p-- {
		if runes[p] == '\n' {
			return p + 1
		}
	}
	// Sentence-ending punctuation.
	for p := end - 1; p > start; p-- {
		if runes[p] == '.' || runes[p] == '!' || runes[p] == '?' {
			return p + 1
		}
	}
	// Any whitespace.
	for p := end - 1; p > start; p-- {
		if unicode.IsSpace(runes[p]) {
			return p + 1
		}
	}
	// No boundary in the window: hard cut at the size limit.
	return end
}
