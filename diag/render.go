package diag

import (
	"strconv"
	"strings"

	"github.com/curlee-lang/curlee/source"
)

// Render produces the deterministic, human-readable form of a single
// diagnostic against the file it was raised for:
//
//	<path>:<line>:<col>: <severity>: <message>
//	  |
//	  | <source line>
//	  |   <spaces>^^^
//	note: <related.message>
//
// A diagnostic without a span renders as "<path>: <severity>: <message>".
// Zero-length spans render a single caret. Spans covering more than one
// line render a caret on the first line only.
func Render(d Diagnostic, file *source.File) string {
	var b strings.Builder

	if d.Span == nil {
		b.WriteString(file.Path)
		b.WriteString(": ")
		b.WriteString(d.Severity.String())
		b.WriteString(": ")
		b.WriteString(d.Message)
		writeRelated(&b, d.Related)
		return b.String()
	}

	lm := file.LineMap()
	line, col := lm.OffsetToLineCol(d.Span.Start)

	b.WriteString(file.Path)
	b.WriteString(":")
	b.WriteString(strconv.Itoa(line))
	b.WriteString(":")
	b.WriteString(strconv.Itoa(col))
	b.WriteString(": ")
	b.WriteString(d.Severity.String())
	b.WriteString(": ")
	b.WriteString(d.Message)
	b.WriteString("\n  |\n  | ")

	lineStart := lm.LineStartOffset(line)
	lineEnd := lm.LineEndOffset(line)
	b.WriteString(file.Text(source.Span{Start: lineStart, End: lineEnd}))
	b.WriteString("\n  |   ")

	for i := 0; i < col-1; i++ {
		b.WriteByte(' ')
	}

	caretWidth := d.Span.End - d.Span.Start
	if caretWidth <= 0 {
		caretWidth = 1
	}
	// Clamp the caret run so it never runs past the rendered line when
	// the span crosses into a following line.
	maxWidth := lineEnd - d.Span.Start
	if maxWidth < 1 {
		maxWidth = 1
	}
	if caretWidth > maxWidth {
		caretWidth = maxWidth
	}
	for i := 0; i < caretWidth; i++ {
		b.WriteByte('^')
	}

	writeRelated(&b, d.Related)
	return b.String()
}

// RenderAll renders a slice of diagnostics joined by newlines. The
// caller is expected to have already called Sort on diags so output
// order is deterministic.
func RenderAll(diags []Diagnostic, file *source.File) string {
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = Render(d, file)
	}
	return strings.Join(parts, "\n")
}

func writeRelated(b *strings.Builder, related []Related) {
	for _, r := range related {
		b.WriteString("\nnote: ")
		b.WriteString(r.Message)
	}
}

