package release

import (
	"errors"
	"fmt"
)

// ErrNoCandidates is returned when enumeration completes successfully
// but yields zero usable tags. This is distinct from an enumeration
// failure: the index answered, there is just nothing to probe.
var ErrNoCandidates = errors.New("release index returned no usable tags")

// EnumerationError is returned when a page of the release index cannot
// be fetched or decoded. It is fatal to a scan.
//
// Design decision: We carry the HTTP status and a bounded body excerpt
// rather than a bare message because the common failure modes (rate
// limiting, bad credentials, unknown repository) are only
// distinguishable from the index's response body.
type EnumerationError struct {
	// URL is the page request that failed.
	URL string

	// StatusCode is the HTTP status of the failed page.
	// Zero when the transport failed before any response arrived.
	StatusCode int

	// Body holds a bounded excerpt of the response body.
	Body string

	// Err is the underlying transport or decode error, if any.
	Err error
}

// Error implements the error interface.
func (e *EnumerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("release enumeration failed: GET %s: %v", e.URL, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("release enumeration failed: GET %s returned %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("release enumeration failed: GET %s returned %d", e.URL, e.StatusCode)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *EnumerationError) Unwrap() error {
	return e.Err
}
