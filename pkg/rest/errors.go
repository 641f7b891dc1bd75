package rest

import (
	"errors"
	"fmt"
)

// Kind classifies why a request could not produce a Response.
type Kind int

const (
	KindInvalidURL Kind = iota + 1
	KindTransportFailure
	KindEncodingFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid url"
	case KindTransportFailure:
		return "transport failure"
	case KindEncodingFailure:
		return "encoding failure"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against an *Error of the matching kind.
var (
	ErrInvalidURL = &Error{Kind: KindInvalidURL}
	ErrTransport  = &Error{Kind: KindTransportFailure}
	ErrEncoding   = &Error{Kind: KindEncodingFailure}

	// ErrRequestReused is returned when a terminal verb is invoked on a Request twice.
	ErrRequestReused = errors.New("rest: request already executed")
)

// Error is the single failure type surfaced by terminal verb operations.
type Error struct {
	Kind    Kind
	Verb    Verb
	URL     string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	prefix := "rest"
	if e.Verb != "" {
		prefix = fmt.Sprintf("rest %s %s", e.Verb, e.URL)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so callers can match against the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}
