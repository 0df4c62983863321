// Package fault defines the error taxonomy shared by the harness. Every error
// surfaced to a test script is a *Error carrying one of the Kinds below.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how a session must react to it.
type Kind int

const (
	// Configuration errors are detected before or at Start: unknown ports,
	// unsupported paths, bad timestamps.
	Configuration Kind = iota
	// Transport errors mean the device could not be reached.
	Transport
	// Mismatch errors are recorded as failed results, never raised.
	Mismatch
	// Timeout errors mean the device did not settle.
	Timeout
	// Usage errors mean the script called an operation out of order.
	Usage
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Transport:
		return "transport"
	case Mismatch:
		return "mismatch"
	case Timeout:
		return "timeout"
	case Usage:
		return "usage"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Fatal reports whether errors of this kind abort a session.
func (k Kind) Fatal() bool {
	return k != Mismatch
}

// Error is a classified error. Op names the harness operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}

	return fmt.Sprintf("%s error in %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same Kind when that error has no cause,
// which lets callers test with errors.Is(err, fault.ErrTimeout).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Err == nil && t.Op == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrConfiguration = &Error{Kind: Configuration}
	ErrTransport     = &Error{Kind: Transport}
	ErrMismatch      = &Error{Kind: Mismatch}
	ErrTimeout       = &Error{Kind: Timeout}
	ErrUsage         = &Error{Kind: Usage}
)

// New wraps err with a kind and an operation name.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func newf(kind Kind, op, format string, args ...interface{}) *Error {
	return New(kind, op, fmt.Errorf(format, args...))
}

// Configf returns a configuration error.
func Configf(op, format string, args ...interface{}) *Error {
	return newf(Configuration, op, format, args...)
}

// Transportf returns a transport error.
func Transportf(op, format string, args ...interface{}) *Error {
	return newf(Transport, op, format, args...)
}

// Timeoutf returns a timeout error.
func Timeoutf(op, format string, args ...interface{}) *Error {
	return newf(Timeout, op, format, args...)
}

// Usagef returns a usage error.
func Usagef(op, format string, args ...interface{}) *Error {
	return newf(Usage, op, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}

	return 0, false
}

// IsFatal reports whether err must abort a session. Unclassified errors are
// treated as transport failures and are fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	kind, ok := KindOf(err)
	if !ok {
		return true
	}

	return kind.Fatal()
}

// Classify returns err unchanged when it already carries a kind and wraps it
// as kind otherwise.
func Classify(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}

	if _, ok := KindOf(err); ok {
		return err
	}

	return New(kind, op, err)
}
