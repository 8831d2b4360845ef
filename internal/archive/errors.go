package archive

import (
	"errors"
	"fmt"
)

// Archive errors.
var (
	// ErrPageNotFound is returned when the archive has no page with the
	// requested title.
	ErrPageNotFound = errors.New("page not found")

	// ErrEmptyIdentifier is returned when a page title or search term is empty.
	ErrEmptyIdentifier = errors.New("empty identifier")

	// ErrAPI is returned when the archive answers with an API error object.
	// The concrete error is an *APIError.
	ErrAPI = errors.New("archive API error")
)

// APIError is an error object returned by the archive API.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrAPI, e.Code, e.Info)
}

// Unwrap allows errors.Is(err, ErrAPI) and maps missing pages to ErrPageNotFound.
func (e *APIError) Unwrap() []error {
	if e.Code == "missingtitle" || e.Code == "invalidtitle" {
		return []error{ErrAPI, ErrPageNotFound}
	}
	return []error{ErrAPI}
}
