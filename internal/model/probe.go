package model

import "time"

// ProbeResult records the outcome of probing one version candidate.
// Results are append-only: the search controller collects them in probe
// order and never re-sorts, so the slice doubles as a timeline.
type ProbeResult struct {
	// Version is the normalized release tag that was probed.
	Version string `json:"version"`

	// URL is the full asset URL the probe requested.
	URL string `json:"url"`

	// Status is the classified outcome.
	Status ProbeStatus `json:"status"`

	// StatusText is the human-readable status for serialized output.
	StatusText string `json:"status_text"`

	// StatusCode is the raw HTTP status code. Zero when no response
	// arrived (StatusNetworkFailed).
	StatusCode int `json:"status_code"`

	// Location is the redirect target from the Location header.
	// Only set for StatusRedirect.
	Location string `json:"location,omitempty"`

	// Duration is how long the probe round-trip took.
	Duration time.Duration `json:"duration_ns"`

	// Error is the transport error text for StatusNetworkFailed.
	// Network failures are data, not errors, so the text travels in the
	// result rather than up the call stack.
	Error string `json:"error,omitempty"`
}

// IsHit returns true if this probe confirmed the version exists.
func (p ProbeResult) IsHit() bool {
	return p.Status.IsHit()
}
