package wirecall

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an Error into the closed set of failure categories
// shared by all transports and the surrounding framework.
type ErrorKind int

const (
	// KindOther is any failure outside the more specific kinds.
	KindOther ErrorKind = iota
	// KindSerialization is any failure to encode or decode a request,
	// response or parameter, or to write or flush the channel mid-message.
	KindSerialization
	// KindUnknownMethod means the server has no handler for the method.
	KindUnknownMethod
	// KindIllegalState means the call sequence contract was violated.
	KindIllegalState
	// KindTransportEOF means the peer closed the channel cleanly between
	// calls, as opposed to mid-message.
	KindTransportEOF
)

func (k ErrorKind) String() string {
	switch k {
	case KindSerialization:
		return "serialization error"
	case KindUnknownMethod:
		return "unknown method"
	case KindIllegalState:
		return "illegal state"
	case KindTransportEOF:
		return "transport EOF"
	default:
		return "error"
	}
}

// Error is the error surface of the transport layer: a kind from a closed
// set, a human-readable message, and an optional underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

// NewError returns an Error with no underlying cause.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf returns an Error with a formatted message and no underlying cause.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError returns an Error that retains cause for errors.Is/As traversal.
func WrapError(kind ErrorKind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Cause returns the underlying error, if any.
func (e *Error) Cause() error {
	return e.cause
}

// ErrorKindOf returns the kind of the outermost *Error in err's chain, or
// KindOther if there is none.
func ErrorKindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}

// IsTransportEOF reports whether err signals a clean end-of-stream at a call
// boundary.
func IsTransportEOF(err error) bool {
	return ErrorKindOf(err) == KindTransportEOF
}
