package model

// ProbeStatus classifies the outcome of a single asset probe.
// Every probe ends in exactly one class, so callers can switch on the
// status without re-inspecting raw HTTP codes.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons. The String() method provides human-readable
// output, and StatusText in ProbeResult carries it into serialized reports.
type ProbeStatus int

const (
	// StatusUnknown is the zero value for a result that was never probed.
	// It must never appear in a finished report.
	StatusUnknown ProbeStatus = iota

	// StatusFound indicates the versioned asset answered (HTTP 200 or 206).
	// A ranged request commonly yields 206; servers that ignore the Range
	// header return 200. Both confirm the asset exists at this version.
	StatusFound

	// StatusRedirect indicates the server redirected the probe
	// (HTTP 301, 302, 307, or 308). Redirects are recorded but never
	// counted as hits: login walls and CDN front-ends redirect every
	// path, matching or not.
	StatusRedirect

	// StatusAbsent indicates the asset does not exist (HTTP 404).
	// This is the expected outcome for every non-matching candidate.
	StatusAbsent

	// StatusNetworkFailed indicates no HTTP response arrived at all
	// (timeout, refused connection, DNS failure). Network failures are
	// absorbed into the result so one flaky probe cannot abort a sweep.
	StatusNetworkFailed

	// StatusOther covers any remaining response code (403, 500, 503, ...).
	// These are never hits but always surface in output, since a wall of
	// 403s usually means a WAF is filtering the probes.
	StatusOther
)

// String returns a human-readable representation of the probe status.
func (s ProbeStatus) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusRedirect:
		return "redirect"
	case StatusAbsent:
		return "absent"
	case StatusNetworkFailed:
		return "network_failed"
	case StatusOther:
		return "other"
	default:
		return "unknown"
	}
}

// IsHit returns true if the status confirms the probed version exists.
// Only StatusFound qualifies; redirects and unexpected codes never do.
func (s ProbeStatus) IsHit() bool {
	return s == StatusFound
}

// ClassifyStatusCode maps a raw HTTP status code to a ProbeStatus.
// Callers that received no response at all must use StatusNetworkFailed
// directly; there is no status code to classify in that case.
func ClassifyStatusCode(code int) ProbeStatus {
	switch code {
	case 200, 206:
		return StatusFound
	case 301, 302, 307, 308:
		return StatusRedirect
	case 404:
		return StatusAbsent
	default:
		return StatusOther
	}
}
