package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error into the stable taxonomy exposed to clients.
type Kind int

const (
	NotFound Kind = iota + 1
	Forbidden
	InsufficientFunds
	InvalidInput
	Conflict
	Timeout
)

// String returns the stable name of the kind.
func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case InsufficientFunds:
		return "insufficient_funds"
	case InvalidInput:
		return "invalid_input"
	case Conflict:
		return "conflict"
	case Timeout:
		return "timeout"
	}
	return "unknown"
}

// Error carries a kind plus one concise, client-visible message. The
// message must never leak internal state; wrap internal causes with
// fmt.Errorf instead and keep them server-side.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err is (or wraps) an Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the kind from err, or zero if err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
