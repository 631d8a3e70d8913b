package integrations

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single HTTP request.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a resource doesn't exist in the service.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-2xx responses).
	ErrNetwork = errors.New("network error")

	// ErrRateLimited is wrapped into ErrNetwork for 429 responses.
	ErrRateLimited = errors.New("rate limited")

	// ErrMalformed is returned when a response body cannot be decoded.
	ErrMalformed = errors.New("malformed response")
)

// NewHTTPClient creates an HTTP client with the given timeout.
// A non-positive timeout uses [DefaultTimeout].
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// NormalizeName trims a taxon name and collapses inner runs of whitespace,
// which is how names typed by users usually differ from canonical ones.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
