// Package chunker splits long text into overlapping pieces that prefer to
// end on a sentence boundary.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// Default sizes, in bytes.
const (
	DefaultSize    = 2000
	DefaultOverlap = 200

	// lookahead is how far past the nominal end a sentence boundary may be.
	lookahead = 100
)

// Options controls chunk size and overlap. The zero Options means
// DefaultOptions; a positive Size with Overlap 0 means no overlap.
type Options struct {
	Size    int
	Overlap int
}

// DefaultOptions returns {Size: 2000, Overlap: 200}.
func DefaultOptions() Options {
	return Options{Size: DefaultSize, Overlap: DefaultOverlap}
}

func (o Options) normalize() (size, overlap int) {
	if o == (Options{}) {
		return DefaultSize, DefaultOverlap
	}
	size, overlap = o.Size, o.Overlap
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = 0
	}
	return size, overlap
}

// Split chunks text with DefaultOptions.
func Split(text string) []string {
	return Chunk(text, DefaultOptions())
}

// Chunk splits text into trimmed, non-empty chunks. Consecutive chunks share
// up to opts.Overlap bytes and together cover the whole input. Each step
// advances by at least one byte, so any overlap terminates.
func Chunk(text string, opts Options) []string {
	size, overlap := opts.normalize()

	var chunks []string
	for _, s := range spans(text, size, overlap) {
		if piece := strings.TrimSpace(text[s.start:s.end]); piece != "" {
			chunks = append(chunks, piece)
		}
	}
	return chunks
}

// span is a half-open byte range of the source text.
type span struct {
	start, end int
}

func spans(text string, size, overlap int) []span {
	n := len(text)
	if n == 0 {
		return nil
	}

	var out []span
	start := 0
	for start < n {
		end := start + size
		if end < n {
			end = sentenceEnd(text, start, end, size)
		} else {
			end = n
		}
		out = append(out, span{start, end})
		if end == n {
			break
		}

		// Step back by the overlap, but always make progress.
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = alignStart(text, next, start)

		// The rest fits in one window: emit it whole and stop.
		if n-start < size {
			if start < n {
				out = append(out, span{start, n})
			}
			break
		}
	}
	return out
}

// sentenceEnd looks for the last ". ", "! " or "? " between the middle of
// the window and lookahead bytes past its end. Without one it keeps the hard
// cut, moved off any partial rune.
func sentenceEnd(text string, start, end, size int) int {
	n := len(text)
	for i := min(end+lookahead, n) - 1; i > start+size/2; i-- {
		if i+1 < n && isTerminal(text[i]) && text[i+1] == ' ' {
			return i + 1
		}
	}
	return alignEnd(text, end, start)
}

func isTerminal(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

// alignEnd moves a cut back to a rune start, staying above start.
func alignEnd(text string, end, start int) int {
	i := end
	for i > start+1 && i < len(text) && !utf8.RuneStart(text[i]) {
		i--
	}
	if i < len(text) && !utf8.RuneStart(text[i]) {
		return forward(text, end)
	}
	return i
}

// alignStart moves the next start back to a rune start without reaching
// prev. If that is impossible it moves forward instead.
func alignStart(text string, next, prev int) int {
	i := next
	for i > prev+1 && i < len(text) && !utf8.RuneStart(text[i]) {
		i--
	}
	if i < len(text) && !utf8.RuneStart(text[i]) {
		return forward(text, next)
	}
	return i
}

func forward(text string, i int) int {
	for i < len(text) && !utf8.RuneStart(text[i]) {
		i++
	}
	return i
}
