package vm

import (
	"github.com/curlee-lang/curlee/source"
)

// RuntimeError is a typed VM failure tagged with the span of the
// opcode that raised it, generalizing
// informatter-nilan/vm/errors.go's RuntimeError (a bare message) with
// the span attribution spec.md §4.K requires. RunWithFuel's fail
// closure constructs one for every failure path and folds its
// Error() into VmResult.Error; vm is a core package with no CLI-only
// logging texture, so Error() returns the plain message rather than
// a stderr-style decorated string.
type RuntimeError struct {
	Message string
	Span    source.Span
}

func (e RuntimeError) Error() string {
	return e.Message
}
