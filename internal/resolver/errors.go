package resolver

import (
	"errors"
	"fmt"

	"github.com/nao1215/litfeed/internal/model"
)

// Resolution failures. None of them is fatal: the scheduler treats every
// error from Resolve as "try a different candidate".
var (
	// ErrDepthExceeded is returned when following hub, redirect or rejected
	// pages would go deeper than MaxDepth.
	ErrDepthExceeded = errors.New("resolution depth exceeded")

	// ErrInvalidTitle is returned when the title validator rejects a
	// candidate. No network call is made in that case.
	ErrInvalidTitle = errors.New("invalid title")

	// ErrEmptyPage is returned when a fetched page has no text.
	ErrEmptyPage = errors.New("empty page")

	// ErrRejected is returned when the quality scorer rejects a page and no
	// link is left to follow. The concrete error is a *RejectionError.
	ErrRejected = errors.New("rejected by quality scorer")
)

// RejectionError carries the scorer verdict of a rejected page.
type RejectionError struct {
	Identifier string
	Reason     model.RejectReason
}

// Error implements error.
func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %q: %s", ErrRejected, e.Identifier, e.Reason)
}

// Unwrap allows errors.Is(err, ErrRejected). Empty pages also match ErrEmptyPage.
func (e *RejectionError) Unwrap() []error {
	if e.Reason == model.ReasonEmpty {
		return []error{ErrRejected, ErrEmptyPage}
	}
	return []error{ErrRejected}
}

// IsRejection reports whether err is an expected quality rejection rather
// than a transport failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrRejected) || errors.Is(err, ErrInvalidTitle) || errors.Is(err, ErrDepthExceeded)
}
