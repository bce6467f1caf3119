package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned before any request when no API key is configured.
	ErrMissingAPIKey = errors.New("api key is required")

	// ErrInvalidPageSize is returned before any request when the page size is not positive.
	ErrInvalidPageSize = errors.New("records per page must be positive")

	// ErrMalformedBody is returned when the response is not a datatable document.
	ErrMalformedBody = errors.New("malformed datatable body")
)

// FetchError is the single failure kind of the fetcher. StatusCode is set
// only when the server answered with a non-2xx status.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch failed: http %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
