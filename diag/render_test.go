package diag

import (
	"strings"
	"testing"

	"github.com/curlee-lang/curlee/source"
)

func TestRenderPointsAtSpan(t *testing.T) {
	file := source.New("test.curlee", []byte("abc\ndefg\nhi\n"))
	d := New("bad", source.Span{Start: 5, End: 7})

	got := Render(d, file)

	if !strings.Contains(got, "test.curlee:2:2: error: bad") {
		t.Errorf("render header missing, got:\n%s", got)
	}
	if !strings.Contains(got, "| defg") {
		t.Errorf("render source line missing, got:\n%s", got)
	}
	if !strings.Contains(got, "^^") {
		t.Errorf("render caret missing, got:\n%s", got)
	}
}

func TestRenderNoSpan(t *testing.T) {
	file := source.New("test.curlee", []byte("x"))
	d := Diagnostic{Severity: SeverityWarning, Message: "oops"}

	got := Render(d, file)
	want := "test.curlee: warning: oops"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderZeroLengthSpanCaret(t *testing.T) {
	file := source.New("test.curlee", []byte("abc"))
	d := New("zero", source.Span{Start: 1, End: 1})

	got := Render(d, file)
	if !strings.Contains(got, "^") {
		t.Errorf("expected single caret, got:\n%s", got)
	}
}

func TestSortOrdering(t *testing.T) {
	diags := []Diagnostic{
		NewNote("c", source.Span{Start: 5, End: 5}),
		New("a", source.Span{Start: 1, End: 1}),
		NewWarning("b", source.Span{Start: 1, End: 1}),
	}
	Sort(diags)

	if diags[0].Message != "a" || diags[1].Message != "b" || diags[2].Message != "c" {
		t.Errorf("unexpected order: %v, %v, %v", diags[0].Message, diags[1].Message, diags[2].Message)
	}
}

func TestUnknownSeverityFallsBackToError(t *testing.T) {
	var s Severity = 99
	if s.String() != "error" {
		t.Errorf("unknown severity = %q, want %q", s.String(), "error")
	}
}
