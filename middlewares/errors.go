package middlewares

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// PanicError is a handler panic caught by Recover.
type PanicError struct {
	Value any
	Stack []byte // nil when stack capture is off
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// StatusCode is the response status for a panic.
func (e *PanicError) StatusCode() int { return http.StatusInternalServerError }

// TimeoutError is returned by Timeout when the deadline passed before the
// handler wrote a response.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return "request timed out after " + e.Duration.String()
}

// Unwrap makes errors.Is(err, context.DeadlineExceeded) hold.
func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// StatusCode is the response status for a timed out request.
func (e *TimeoutError) StatusCode() int { return http.StatusGatewayTimeout }
