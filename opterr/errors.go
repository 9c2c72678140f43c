// Package opterr defines the error taxonomy shared by the optimization
// packages. Every failure surfaced by the library is one of three kinds:
// a point outside the declared search space (Domain), a surrogate that
// cannot be trained (Fit), or an invalid configuration (Configuration).
package opterr

import (
	"errors"
	"fmt"
)

// Kind classifies an optimization error.
type Kind int

const (
	// KindUnknown is the zero value; errors of this kind carry no class.
	KindUnknown Kind = iota
	// KindDomain marks a point value outside its dimension's bounds or
	// category set. Domain errors are raised before any model fitting.
	KindDomain
	// KindFit marks a surrogate model that cannot be trained, typically
	// because the observation set is empty or degenerate.
	KindFit
	// KindConfiguration marks an invalid option or option combination.
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindDomain:
		return "domain"
	case KindFit:
		return "fit"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Error is an optimization error with a kind and optional operation context.
type Error struct {
	// Kind classifies the error.
	Kind Kind
	// Op is the operation that caused the error, e.g. "space.Transform".
	Op string
	// Message describes what went wrong.
	Message string
	// Err is the underlying error, if any.
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target matches this error's kind. It lets callers
// write errors.Is(err, opterr.Domain("")) style checks via the sentinel
// helpers below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Domain creates a domain error with a formatted message.
func Domain(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDomain, Message: fmt.Sprintf(format, args...)}
}

// Fit creates a fit error with a formatted message.
func Fit(format string, args ...interface{}) *Error {
	return &Error{Kind: KindFit, Message: fmt.Sprintf(format, args...)}
}

// Configuration creates a configuration error with a formatted message.
func Configuration(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and operation context to an existing error.
// It returns nil if err is nil.
func Wrap(err error, kind Kind, op string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Message: "operation failed", Err: err}
}

// WithOp returns a copy of the error with operation context attached.
func (e *Error) WithOp(op string) *Error {
	if e == nil {
		return nil
	}
	c := *e
	c.Op = op
	return &c
}

// IsKind reports whether err is an optimization error of the given kind.
func IsKind(err error, kind Kind) bool {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// IsDomain reports whether err is a domain error.
func IsDomain(err error) bool { return IsKind(err, KindDomain) }

// IsFit reports whether err is a fit error.
func IsFit(err error) bool { return IsKind(err, KindFit) }

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool { return IsKind(err, KindConfiguration) }
