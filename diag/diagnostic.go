// Package diag defines the structured diagnostics every pipeline stage
// returns in place of a fatal error: a Diagnostic carries a severity, a
// message, an optional primary span, and related notes, and is always
// rendered deterministically (see render.go).
package diag

import (
	"fmt"
	"sort"

	"github.com/curlee-lang/curlee/source"
)

// Severity classifies a Diagnostic. Lower values sort first when two
// diagnostics share the same primary span start.
type Severity int

const (
	// SeverityError marks a diagnostic that aborts the pipeline stage
	// that produced it.
	SeverityError Severity = iota
	// SeverityWarning marks a non-fatal diagnostic.
	SeverityWarning
	// SeverityNote marks context attached to another diagnostic, or a
	// standalone informational record (e.g. the verifier's "refinement
	// assumed, not proved" notes).
	SeverityNote
)

// String renders the severity the way it appears in rendered output.
// An out-of-range Severity value renders as "error" — the documented
// fallback for unknown severities.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "error"
	}
}

// Related attaches a secondary span and message to a Diagnostic, e.g.
// "previous definition here".
type Related struct {
	Message string
	Span    source.Span
}

// Diagnostic is the unit of structured error/warning/note reporting
// produced by every pipeline stage. A Diagnostic without a Span renders
// as "<path>: <severity>: <message>" rather than pointing at source.
type Diagnostic struct {
	Severity Severity
	Message  string
	Span     *source.Span
	Related  []Related
}

// Error implements the error interface so a Diagnostic can be returned
// or wrapped anywhere Go expects an error, e.g. from codec or CLI code.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// New constructs an error-severity diagnostic with a primary span.
func New(message string, span source.Span) Diagnostic {
	s := span
	return Diagnostic{Severity: SeverityError, Message: message, Span: &s}
}

// NewWarning constructs a warning-severity diagnostic with a primary span.
func NewWarning(message string, span source.Span) Diagnostic {
	s := span
	return Diagnostic{Severity: SeverityWarning, Message: message, Span: &s}
}

// NewNote constructs a note-severity diagnostic with a primary span.
func NewNote(message string, span source.Span) Diagnostic {
	s := span
	return Diagnostic{Severity: SeverityNote, Message: message, Span: &s}
}

// WithRelated returns a copy of d with an additional related note
// appended.
func (d Diagnostic) WithRelated(message string, span source.Span) Diagnostic {
	d.Related = append(append([]Related{}, d.Related...), Related{Message: message, Span: span})
	return d
}

// Sort orders diagnostics by (span.start, severity, message), the
// stable ordering key required by spec §3/§7/§8. Diagnostics without a
// span sort as if their span started at -1, i.e. before any spanned
// diagnostic — there are no such diagnostics produced by this module's
// stages in practice, but the ordering must still be total.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		as, bs := spanStart(a), spanStart(b)
		if as != bs {
			return as < bs
		}
		if a.Severity != b.Severity {
			return a.Severity < b.Severity
		}
		return a.Message < b.Message
	})
}

func spanStart(d Diagnostic) int {
	if d.Span == nil {
		return -1
	}
	return d.Span.Start
}
