package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrorKind classifies a calculator failure.
type ErrorKind string

const (
	KindUnmatchedBrackets ErrorKind = "unmatched_brackets"
	KindNoOpeningBracket  ErrorKind = "no_opening_bracket"
	KindDivideByZero      ErrorKind = "divide_by_zero"
	KindMathDomain        ErrorKind = "math_domain"
	KindGeneric           ErrorKind = "error"
)

// Sentinel errors, one per ErrorKind. A *CalcError matches its sentinel with errors.Is.
var (
	ErrUnmatchedBrackets = errors.New("unmatched brackets")
	ErrNoOpeningBracket  = errors.New("no opening bracket")
	ErrDivideByZero      = errors.New("cannot divide by zero")
	ErrMathDomain        = errors.New("math error")
	ErrGeneric           = errors.New("error")
)

var kindSentinels = map[ErrorKind]error{
	KindUnmatchedBrackets: ErrUnmatchedBrackets,
	KindNoOpeningBracket:  ErrNoOpeningBracket,
	KindDivideByZero:      ErrDivideByZero,
	KindMathDomain:        ErrMathDomain,
	KindGeneric:           ErrGeneric,
}

var kindMessages = map[ErrorKind]string{
	KindUnmatchedBrackets: "Error: Unmatched brackets",
	KindNoOpeningBracket:  "Error: No opening bracket",
	KindDivideByZero:      "Cannot divide by zero.",
	KindMathDomain:        "Math Error",
	KindGeneric:           "Error",
}

// CalcError is a non-fatal calculator failure. Its Message is what the output
// display shows; Err carries the underlying cause (e.g. an evaluator syntax error).
type CalcError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewCalcError creates a CalcError for the given operation.
func NewCalcError(kind ErrorKind, op string, cause error) *CalcError {
	return &CalcError{Kind: kind, Op: op, Err: cause}
}

func (e *CalcError) Error() string {
	base := kindSentinels[e.Kind]
	if base == nil {
		base = ErrGeneric
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, base, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, base)
}

// Message returns the text shown on the output display.
func (e *CalcError) Message() string {
	if msg, ok := kindMessages[e.Kind]; ok {
		return msg
	}
	return kindMessages[KindGeneric]
}

func (e *CalcError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for this error's kind.
func (e *CalcError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf extracts the ErrorKind from err, or "" when err is not a calculator failure.
func KindOf(err error) ErrorKind {
	var ce *CalcError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
