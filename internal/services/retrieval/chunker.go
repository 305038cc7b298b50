package retrieval

// Chunker splits document text into fixed-size overlapping spans.
// Boundaries are purely positional, so re-chunking the same text always
// yields identical chunks.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 400
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	return &Chunker{size: size, overlap: overlap}
}

// Span is one chunk boundary within the source text.
type Span struct {
	Start int
	End   int
	Text  string
}

// Split walks the text with stride size-overlap. The final chunk ends
// exactly at the text end; a trailing remainder shorter than the stride
// is absorbed into it rather than emitted as its own fragment.
func (c *Chunker) Split(text string) []Span {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	stride := c.size - c.overlap
	spans := make([]Span, 0, len(runes)/stride+1)
	for start := 0; ; start += stride {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		spans = append(spans, Span{Start: start, End: end, Text: string(runes[start:end])})
		if end == len(runes) {
			break
		}
	}
	return spans
}
