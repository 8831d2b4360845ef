package feed

import "errors"

var (
	// ErrBusy is returned by LoadMore while another load is running.
	ErrBusy = errors.New("feed is already loading")

	// ErrInvalidCount is returned by LoadMore for a non-positive count.
	ErrInvalidCount = errors.New("count must be positive")
)
