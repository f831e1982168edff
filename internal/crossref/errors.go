package crossref

import (
	"errors"
	"fmt"
)

// Common errors returned by the Crossref client.
var (
	// ErrRateLimited indicates the API answered 429.
	ErrRateLimited = errors.New("crossref rate limit exceeded")

	// ErrNetworkError indicates a transport failure.
	ErrNetworkError = errors.New("network error communicating with crossref")

	// ErrInvalidResponse indicates a body that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from crossref")

	// ErrTooManyFailures is returned by Fetcher.Run once the failure budget is spent.
	ErrTooManyFailures = errors.New("too many crossref failures")
)

// APIError represents a non-success HTTP status from the works endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("crossref API error (status %d): %s", e.StatusCode, e.Message)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
