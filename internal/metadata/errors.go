// Package metadata looks up bibliographic metadata for a DOI against the
// Crossref and OpenAlex APIs and maps the responses into normalized entries.
package metadata

import (
	"errors"
	"fmt"
)

// Common errors returned by the lookup clients.
var (
	// ErrNotFound indicates the DOI is unknown to the service.
	ErrNotFound = errors.New("DOI not found")

	// ErrRateLimited indicates the service rate limit was exceeded.
	ErrRateLimited = errors.New("metadata service rate limit exceeded")

	// ErrInvalidDOI indicates the input does not look like a DOI.
	ErrInvalidDOI = errors.New("invalid DOI")
)

// APIError represents an unexpected response from a metadata service.
type APIError struct {
	Service    string
	StatusCode int
	DOI        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d) for DOI %s", e.Service, e.StatusCode, e.DOI)
}

// IsNotFound returns true if the error indicates an unknown DOI.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}
