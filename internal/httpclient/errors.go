package httpclient

import (
	"errors"
	"fmt"
)

// Transport errors.
// Callers treat all of them as "try a different candidate"; the distinction
// matters for logging and for tests.
var (
	// ErrInvalidProxyAddress is returned when the proxy address is not in
	// "host:port" format.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrUnexpectedStatus is returned for non-2xx responses. The concrete
	// error is a *StatusError carrying the status code.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrBodyTooLarge is returned when a response body exceeds the configured
	// maximum size.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrMalformedResponse is returned when a JSON response cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d from %s", ErrUnexpectedStatus, e.StatusCode, e.URL)
}

// Unwrap allows errors.Is(err, ErrUnexpectedStatus).
func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}
