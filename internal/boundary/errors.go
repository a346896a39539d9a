package boundary

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the dispatcher. Every kind is converted
// into a structurally valid result at the boundary; the host only ever
// sees the message under the reserved error key.
type Kind int

const (
	// KindDecode: malformed boundary buffers (bad strides, null pointers
	// with nonzero counts, out-of-range indices).
	KindDecode Kind = iota
	// KindDispatch: unknown command key.
	KindDispatch
	// KindValidation: missing or out-of-range config parameters, rejected
	// before any geometry is touched.
	KindValidation
	// KindExecution: algorithm failure on valid-shaped but degenerate or
	// unsolvable input, including recovered internal panics.
	KindExecution
)

func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindDispatch:
		return "dispatch"
	case KindValidation:
		return "validation"
	case KindExecution:
		return "execution"
	}
	return "unknown"
}

// Error is the failure value carried from any layer back to the dispatcher.
// Key names the offending config key when the failure is attributable to
// one, and is empty otherwise.
type Error struct {
	Kind Kind
	Key  string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Decodef builds a decode error.
func Decodef(format string, args ...any) *Error {
	return &Error{Kind: KindDecode, Msg: fmt.Sprintf(format, args...)}
}

// Dispatchf builds a dispatch error.
func Dispatchf(format string, args ...any) *Error {
	return &Error{Kind: KindDispatch, Msg: fmt.Sprintf(format, args...)}
}

// Validationf builds a validation error attributed to key.
func Validationf(key, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Key: key, Msg: fmt.Sprintf(format, args...)}
}

// Executionf builds an execution error.
func Executionf(format string, args ...any) *Error {
	return &Error{Kind: KindExecution, Msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err. Errors that did not originate in this
// package count as execution failures: they escaped an algorithm rather
// than the marshalling or validation layers.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindExecution
}
