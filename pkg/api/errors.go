package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// DefaultErrorMessage is used when a failed response carries no message of its own.
const DefaultErrorMessage = "An error occurred"

// Kind classifies an upstream failure.
type Kind uint8

const (
	// KindUnknown covers failures that are neither transport nor status related:
	// undecodable bodies, malformed requests, caller cancellation.
	KindUnknown Kind = iota
	// KindNetwork means no response was received.
	KindNetwork
	// KindHTTP means the server answered with a non-2xx status other than 404.
	KindHTTP
	// KindNotFound means the server answered 404.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// Error is the single error shape every API call fails with.
type Error struct {
	Err        error  // transport or decode error, nil for status failures
	Message    string // user-facing message
	Op         string // "GET /character/1"
	StatusCode int    // 0 when no response was received
	Kind       Kind
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api: %s: %d %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether the request never got a response.
func (e *Error) IsNetworkError() bool {
	return e.Kind == KindNetwork
}

// HasStatus reports whether the upstream answered with a status code.
func (e *Error) HasStatus() bool {
	return e.StatusCode > 0
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// IsNetworkError reports whether err is an API error without a response.
func IsNetworkError(err error) bool {
	return KindOf(err) == KindNetwork
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// StatusCode returns the upstream status carried by err, if any.
func StatusCode(err error) (int, bool) {
	if e, ok := AsError(err); ok && e.HasStatus() {
		return e.StatusCode, true
	}
	return 0, false
}

func transportError(op string, err error) *Error {
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindUnknown, Op: op, Message: "Request canceled", Err: err}
	}
	return &Error{Kind: KindNetwork, Op: op, Message: "Network Error", Err: err}
}

func statusError(op string, status int, message string) *Error {
	if message == "" {
		message = DefaultErrorMessage
	}
	kind := KindHTTP
	if status == http.StatusNotFound {
		kind = KindNotFound
	}
	return &Error{Kind: kind, Op: op, StatusCode: status, Message: message}
}

func unknownError(op, message string, err error) *Error {
	return &Error{Kind: KindUnknown, Op: op, Message: message, Err: err}
}
