// Package source holds the immutable source text for a single curlee
// file and the span/line-map machinery every later pipeline stage
// threads through unchanged.
package source

import "sort"

// Span is a half-open byte range [Start, End) into a File's contents.
// Spans are assigned once by the lexer and never mutated afterwards;
// every token, AST node, symbol, and bytecode instruction carries one.
type Span struct {
	Start int
	End   int
}

// Zero reports whether the span covers no bytes at all.
func (s Span) Zero() bool {
	return s.Start == s.End
}

// Join returns the smallest span covering both s and other.
func Join(s, other Span) Span {
	start := s.Start
	if other.Start < start {
		start = other.Start
	}
	end := s.End
	if other.End > end {
		end = other.End
	}
	return Span{Start: start, End: end}
}

// File is an immutable {path, contents} pair. It owns the byte slice
// for the lifetime of a pipeline invocation; tokens refer back to it
// through their Spans (each token's Lexeme is its own string copy).
type File struct {
	Path     string
	Contents []byte

	lineMap *LineMap
}

// New wraps path/contents into a File with a lazily built LineMap.
func New(path string, contents []byte) *File {
	return &File{Path: path, Contents: contents}
}

// Len returns the number of bytes in the file.
func (f *File) Len() int {
	return len(f.Contents)
}

// Text returns the substring of Contents covered by span, clamped to
// the file's bounds.
func (f *File) Text(span Span) string {
	start := clamp(span.Start, 0, len(f.Contents))
	end := clamp(span.End, start, len(f.Contents))
	return string(f.Contents[start:end])
}

// LineMap returns the File's LineMap, building it on first use.
func (f *File) LineMap() *LineMap {
	if f.lineMap == nil {
		f.lineMap = buildLineMap(f.Contents)
	}
	return f.lineMap
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LineMap maps byte offsets into a source buffer to 1-based (line,
// column) pairs and back. Line 1 starts at offset 0; every '\n' begins
// a new line. Columns are 1-based byte offsets within the line.
type LineMap struct {
	// lineStarts[i] is the byte offset where line i+1 begins.
	lineStarts []int
	length     int
}

func buildLineMap(contents []byte) *LineMap {
	starts := []int{0}
	for i, b := range contents {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineMap{lineStarts: starts, length: len(contents)}
}

// OffsetToLineCol converts a byte offset to a 1-based (line, column)
// pair. Offsets past end-of-file clamp to the file's final position.
func (lm *LineMap) OffsetToLineCol(offset int) (line, col int) {
	offset = clamp(offset, 0, lm.length)

	// binary search for the last line start <= offset
	i := sort.Search(len(lm.lineStarts), func(i int) bool {
		return lm.lineStarts[i] > offset
	})
	lineIdx := i - 1
	if lineIdx < 0 {
		lineIdx = 0
	}
	return lineIdx + 1, offset - lm.lineStarts[lineIdx] + 1
}

// LineStartOffset returns the byte offset of the n-th line (1-based).
// A line number outside the valid range clamps to end-of-file.
func (lm *LineMap) LineStartOffset(n int) int {
	if n < 1 || n > len(lm.lineStarts) {
		return lm.length
	}
	return lm.lineStarts[n-1]
}

// LineEndOffset returns the byte offset one past the last byte of the
// n-th line, excluding its trailing newline.
func (lm *LineMap) LineEndOffset(n int) int {
	start := lm.LineStartOffset(n)
	next := lm.LineStartOffset(n + 1)
	if n >= len(lm.lineStarts) {
		return lm.length
	}
	// next points just past the '\n' that ended line n; back up over it.
	end := next - 1
	if end < start {
		end = start
	}
	return end
}

// LineCount returns the total number of lines in the source, including
// a trailing empty line if the file ends with a newline.
func (lm *LineMap) LineCount() int {
	return len(lm.lineStarts)
}
