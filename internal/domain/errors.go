package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for domain operations
var (
	// ErrMovieNotFound indicates the requested movie does not exist
	ErrMovieNotFound = errors.New("movie not found")

	// ErrInvalidPage indicates a page index below 1
	ErrInvalidPage = errors.New("page index must be >= 1")

	// ErrCatalogOffline indicates the catalog API is unreachable
	ErrCatalogOffline = errors.New("catalog API is unreachable")
)

// TransportError is returned by every catalog fetch that fails at the
// network level or answers with a non-2xx status.
type TransportError struct {
	URL        string
	StatusCode int   // 0 when no response was received
	Err        error // underlying cause, nil for plain status failures
}

func (e *TransportError) Error() string {
	if e == nil {
		return "transport error"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("GET %s: transport error", e.URL)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is maps HTTP status codes onto domain sentinels.
func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrMovieNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrCatalogOffline:
		return e.StatusCode == 0 && !errors.Is(e.Err, context.Canceled) && !errors.Is(e.Err, context.DeadlineExceeded)
	}
	return false
}
